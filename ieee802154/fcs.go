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

package ieee802154

import (
	"encoding/binary"

	"github.com/sigurn/crc16"
)

// The 802.15.4 FCS is CRC-16/KERMIT: polynomial 0x1021, reflected, zero init
var fcsTable = crc16.MakeTable(crc16.CRC16_KERMIT)

// FCS computes the frame check sequence over an MPDU without its FCS
func FCS(mpdu []byte) uint16 {
	return crc16.Checksum(mpdu, fcsTable)
}

// AppendFCS returns mpdu followed by its FCS, least significant byte first
func AppendFCS(mpdu []byte) []byte {
	return binary.LittleEndian.AppendUint16(mpdu, FCS(mpdu))
}

// CheckFCS reports whether the trailing two bytes of psdu are its FCS
func CheckFCS(psdu []byte) bool {
	if len(psdu) < FCSLength {
		return false
	}
	n := len(psdu) - FCSLength
	return binary.LittleEndian.Uint16(psdu[n:]) == FCS(psdu[:n])
}
