// go-rf230
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-rf230.
//
// go-rf230 is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-rf230 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-rf230; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

/*
Package ieee802154 models IEEE 802.15.4 MAC frames and converts them to and
from their on-air MPDU representation.

An address block takes one of two shapes. LocalAddresses is used when both
endpoints share a PAN: the PAN ID is sent once, after the destination address,
and the PAN ID compression bit is set. FullAddresses is used between PANs and
allows either endpoint to be elided:

	frame := &ieee802154.Frame{
	    Type:           ieee802154.FrameTypeData,
	    SequenceNumber: 7,
	    Addresses: ieee802154.LocalAddresses{
	        Source: ieee802154.ShortAddress(0x1234),
	        Destination: ieee802154.FullAddress{
	            Address: ieee802154.ShortAddress(0x5678),
	            PANID:   0xABCD,
	        },
	    },
	    Payload: []byte("hello"),
	}
	mpdu, err := frame.Encode()

Multi-byte fields are little-endian. Encode never writes the frame check
sequence; radios append it in hardware, but MPDULength accounts for it.
*/
package ieee802154
