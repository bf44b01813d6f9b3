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

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRadioState_Codes(t *testing.T) {
	t.Parallel()

	want := map[RadioState]byte{
		StatePOn:                  0x00,
		StateBusyRX:               0x01,
		StateBusyTX:               0x02,
		StateRXOn:                 0x06,
		StateTRXOff:               0x08,
		StatePLLOn:                0x09,
		StateSleep:                0x0F,
		StateRXOnNoClk:            0x1C,
		StateTransitionInProgress: 0x1F,
	}
	assert.Len(t, RadioStates(), len(want))
	for _, s := range RadioStates() {
		assert.Equal(t, want[s], s.Code(), s.String())
	}
}

func TestStateFromCode(t *testing.T) {
	t.Parallel()

	known := make(map[byte]bool)
	for _, s := range RadioStates() {
		known[s.Code()] = true
	}

	for code := byte(0); code <= trxStatusMask; code++ {
		s, err := stateFromCode(code)
		if known[code] {
			require.NoError(t, err)
			assert.Equal(t, code, s.Code())
			continue
		}
		var se *StateError
		require.ErrorAs(t, err, &se, "code 0x%02X", code)
		assert.Equal(t, code, se.Code)
	}
}

func TestRadioState_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "STATE_TRANSITION_IN_PROGRESS", StateTransitionInProgress.String())
	assert.Equal(t, "RX_ON_NOCLK", StateRXOnNoClk.String())
	assert.Equal(t, "UNKNOWN(0x13)", RadioState(0x13).String())
}

func TestTransceiverState_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "uninitialized", TransceiverUninitialized.String())
	assert.Equal(t, "idle", TransceiverIdle.String())
	assert.Equal(t, "receiving", TransceiverReceiving.String())
	assert.Equal(t, "transmitting", TransceiverTransmitting.String())
}
