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

package testing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
)

func readRegister(t *testing.T, v *VirtualRadio, addr byte) byte {
	t.Helper()
	require.NoError(t, v.SelectPin().Out(gpio.Low))
	_, err := v.Transfer(0x80 | addr)
	require.NoError(t, err)
	value, err := v.Transfer(0)
	require.NoError(t, err)
	require.NoError(t, v.SelectPin().Out(gpio.High))
	return value
}

func writeRegister(t *testing.T, v *VirtualRadio, addr, value byte) {
	t.Helper()
	require.NoError(t, v.SelectPin().Out(gpio.Low))
	_, err := v.Transfer(0xC0 | addr)
	require.NoError(t, err)
	_, err = v.Transfer(value)
	require.NoError(t, err)
	require.NoError(t, v.SelectPin().Out(gpio.High))
}

func TestVirtualRadio_TransitionTakesBusyPolls(t *testing.T) {
	t.Parallel()

	v := NewVirtualRadio()
	v.SetState(StateTRXOff)
	writeRegister(t, v, RegTRXState, StateRXOn)

	assert.Equal(t, byte(StateTransitionInProgress), readRegister(t, v, RegTRXStatus))
	assert.Equal(t, byte(StateTransitionInProgress), readRegister(t, v, RegTRXStatus))
	assert.Equal(t, byte(StateRXOn), readRegister(t, v, RegTRXStatus))
}

func TestVirtualRadio_RequiresSelect(t *testing.T) {
	t.Parallel()

	v := NewVirtualRadio()
	_, err := v.Transfer(0x80)
	require.ErrorIs(t, err, ErrNotSelected)
	assert.Equal(t, 0, v.Transfers())
}

func TestVirtualRadio_ControlPinSleepAndTX(t *testing.T) {
	t.Parallel()

	v := NewVirtualRadio()
	v.SetState(StateTRXOff)
	require.NoError(t, v.ControlPin().Out(gpio.High))
	assert.Equal(t, byte(StateSleep), v.State())
	require.NoError(t, v.ControlPin().Out(gpio.Low))
	assert.Equal(t, byte(StateTRXOff), v.State())

	writeRegister(t, v, RegIRQMask, IRQTRXEnd)
	v.SetState(StatePLLOn)
	require.NoError(t, v.ControlPin().Out(gpio.High))
	assert.Equal(t, 1, v.TXStarts())
	assert.True(t, v.WaitForEdge(time.Second))
	assert.Equal(t, byte(IRQTRXEnd), readRegister(t, v, RegIRQStatus))
	assert.Equal(t, byte(0), readRegister(t, v, RegIRQStatus))
}

func TestVirtualRadio_InjectMPDUAppendsFCS(t *testing.T) {
	t.Parallel()

	v := NewVirtualRadio()
	v.InjectMPDU([]byte{0x41, 0x88, 0x01}, 0x33)
	phr, data := v.FrameBuffer()
	assert.Equal(t, byte(5), phr)
	assert.Len(t, data, 5)
	assert.Equal(t, []byte{0x41, 0x88, 0x01}, data[:3])
}
