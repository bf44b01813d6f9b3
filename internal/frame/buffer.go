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

// Package frame provides the bounded receive buffer and frame-buffer constants for RF230 communication
package frame

import (
	"errors"
	"fmt"
)

// Frame buffer size limits
const (
	MaxPSDULength = 127  // Largest PSDU the radio accepts, FCS included
	PHRLengthMask = 0x7F // Reserved top bit of the PHY header
)

// ErrIndexOutOfRange is returned, or panicked with, when a buffer slot beyond
// the received length is accessed
var ErrIndexOutOfRange = errors.New("frame buffer index out of range")

// ErrBufferFull is returned when appending to a buffer holding MaxPSDULength bytes
var ErrBufferFull = errors.New("frame buffer full")

// Buffer holds one received PSDU in fixed storage. Slots at or beyond Len()
// are never readable.
type Buffer struct {
	data [MaxPSDULength]byte
	n    int
}

// Len returns the number of bytes received
func (b *Buffer) Len() int {
	return b.n
}

// At returns the byte at index i. Accessing an index outside [0, Len()) is a
// programming error and panics with an error wrapping ErrIndexOutOfRange.
func (b *Buffer) At(i int) byte {
	v, err := b.Get(i)
	if err != nil {
		panic(err)
	}
	return v
}

// Get returns the byte at index i or an error wrapping ErrIndexOutOfRange
func (b *Buffer) Get(i int) (byte, error) {
	if i < 0 || i >= b.n {
		return 0, fmt.Errorf("%w: index %d, length %d", ErrIndexOutOfRange, i, b.n)
	}
	return b.data[i], nil
}

// Bytes returns the received bytes. The slice aliases the buffer.
func (b *Buffer) Bytes() []byte {
	return b.data[:b.n:b.n]
}

// Append stores v after the last received byte
func (b *Buffer) Append(v byte) error {
	if b.n >= MaxPSDULength {
		return ErrBufferFull
	}
	b.data[b.n] = v
	b.n++
	return nil
}

// Reset discards the contents
func (b *Buffer) Reset() {
	b.n = 0
}
