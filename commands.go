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

package rf230

// SPI command bytes. Register commands carry the 6-bit register address in
// their low bits.
const (
	cmdRegisterRead     = 0b10000000
	cmdRegisterWrite    = 0b11000000
	cmdFrameBufferRead  = 0b00100000
	cmdFrameBufferWrite = 0b01100000
	cmdSRAMRead         = 0b00000000
	cmdSRAMWrite        = 0b01000000
)

const registerAddressMask = 0x3F

// fcsLength is added to the PHR on frame buffer writes; the radio computes
// and transmits the FCS itself
const fcsLength = 2
