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

package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuffer_AppendAndRead(t *testing.T) {
	t.Parallel()

	var buf Buffer
	for _, b := range []byte{0x10, 0x20, 0x30} {
		require.NoError(t, buf.Append(b))
	}

	assert.Equal(t, 3, buf.Len())
	assert.Equal(t, byte(0x20), buf.At(1))
	assert.Equal(t, []byte{0x10, 0x20, 0x30}, buf.Bytes())

	v, err := buf.Get(2)
	require.NoError(t, err)
	assert.Equal(t, byte(0x30), v)
}

func TestBuffer_OutOfRange(t *testing.T) {
	t.Parallel()

	var buf Buffer
	require.NoError(t, buf.Append(0x01))

	for _, idx := range []int{-1, 1, MaxPSDULength} {
		_, err := buf.Get(idx)
		require.ErrorIs(t, err, ErrIndexOutOfRange)
	}

	assert.PanicsWithError(t, "frame buffer index out of range: index 1, length 1", func() {
		buf.At(1)
	})
}

func TestBuffer_Full(t *testing.T) {
	t.Parallel()

	var buf Buffer
	for i := 0; i < MaxPSDULength; i++ {
		require.NoError(t, buf.Append(byte(i)))
	}
	require.ErrorIs(t, buf.Append(0xFF), ErrBufferFull)

	buf.Reset()
	assert.Equal(t, 0, buf.Len())
	assert.Empty(t, buf.Bytes())
}
