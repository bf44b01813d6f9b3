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

import "errors"

// Codec errors
var (
	// ErrOversizeFrame is returned when a payload or MPDU exceeds the 127 byte limit
	ErrOversizeFrame = errors.New("frame exceeds maximum MPDU length")
	// ErrMalformedFrame is returned when received bytes do not form a valid MPDU
	ErrMalformedFrame = errors.New("malformed frame")
	// ErrInvalidAddresses is returned for an address block that has no wire representation
	ErrInvalidAddresses = errors.New("invalid address block")
)
