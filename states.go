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

import "fmt"

// RadioState is an operating state of the RF230 as reported in TRX_STATUS
type RadioState uint8

// Basic operating mode states, valued with their hardware codes
const (
	StatePOn                  RadioState = 0x00
	StateBusyRX               RadioState = 0x01
	StateBusyTX               RadioState = 0x02
	StateRXOn                 RadioState = 0x06
	StateTRXOff               RadioState = 0x08
	StatePLLOn                RadioState = 0x09
	StateSleep                RadioState = 0x0F
	StateRXOnNoClk            RadioState = 0x1C
	StateTransitionInProgress RadioState = 0x1F
)

// Code returns the 5-bit hardware code of the state
func (s RadioState) Code() byte {
	return byte(s)
}

// String returns the datasheet name of the state
func (s RadioState) String() string {
	switch s {
	case StatePOn:
		return "P_ON"
	case StateBusyRX:
		return "BUSY_RX"
	case StateBusyTX:
		return "BUSY_TX"
	case StateRXOn:
		return "RX_ON"
	case StateTRXOff:
		return "TRX_OFF"
	case StatePLLOn:
		return "PLL_ON"
	case StateSleep:
		return "SLEEP"
	case StateRXOnNoClk:
		return "RX_ON_NOCLK"
	case StateTransitionInProgress:
		return "STATE_TRANSITION_IN_PROGRESS"
	default:
		return fmt.Sprintf("UNKNOWN(0x%02X)", byte(s))
	}
}

// isTransient reports whether the radio leaves the state on its own
func (s RadioState) isTransient() bool {
	return s == StateBusyRX || s == StateBusyTX || s == StateTransitionInProgress
}

// RadioStates returns every known state
func RadioStates() []RadioState {
	return []RadioState{
		StatePOn, StateBusyRX, StateBusyTX, StateRXOn, StateTRXOff,
		StatePLLOn, StateSleep, StateRXOnNoClk, StateTransitionInProgress,
	}
}

// stateFromCode maps a TRX_STATUS code to a RadioState
func stateFromCode(code byte) (RadioState, error) {
	s := RadioState(code)
	switch s {
	case StatePOn, StateBusyRX, StateBusyTX, StateRXOn, StateTRXOff,
		StatePLLOn, StateSleep, StateRXOnNoClk, StateTransitionInProgress:
		return s, nil
	default:
		return 0, &StateError{Code: code}
	}
}

// TransceiverState is the state of the Device as seen by its users
type TransceiverState int

// Transceiver states
const (
	TransceiverUninitialized TransceiverState = iota
	TransceiverIdle
	TransceiverReceiving
	TransceiverTransmitting
)

// String returns the state name
func (s TransceiverState) String() string {
	switch s {
	case TransceiverUninitialized:
		return "uninitialized"
	case TransceiverIdle:
		return "idle"
	case TransceiverReceiving:
		return "receiving"
	case TransceiverTransmitting:
		return "transmitting"
	default:
		return fmt.Sprintf("TransceiverState(%d)", int(s))
	}
}
