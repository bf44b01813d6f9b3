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
	"fmt"
	"sync/atomic"

	"github.com/ZaparooProject/go-rf230/ieee802154"
)

// Event is the outcome of one HandleInterrupt call
type Event int

// Interrupt events, in the priority order HandleInterrupt checks them
const (
	EventNone Event = iota
	EventBatteryLow
	EventBufferAccessViolation
	EventSendDone
	EventFrameReceived
	EventFrameDropped
	EventRXStart
	EventPLLUnlock
	EventPLLLock
)

// String returns the event name
func (e Event) String() string {
	switch e {
	case EventNone:
		return "none"
	case EventBatteryLow:
		return "battery low"
	case EventBufferAccessViolation:
		return "frame buffer access violation"
	case EventSendDone:
		return "send done"
	case EventFrameReceived:
		return "frame received"
	case EventFrameDropped:
		return "frame dropped"
	case EventRXStart:
		return "rx start"
	case EventPLLUnlock:
		return "pll unlock"
	case EventPLLLock:
		return "pll lock"
	default:
		return fmt.Sprintf("Event(%d)", int(e))
	}
}

// EventHandler is called with every event other than EventNone
type EventHandler func(Event)

// Diagnostics counts interrupt events since the device was created
type Diagnostics struct {
	BatteryLow             uint64
	BufferAccessViolations uint64
	SendsCompleted         uint64
	FramesReceived         uint64
	FramesDropped          uint64
	RXStarts               uint64
	PLLUnlocks             uint64
	PLLLocks               uint64
}

type diagnostics struct {
	counters [EventPLLLock + 1]atomic.Uint64
}

func (d *diagnostics) record(e Event) {
	if e > EventNone && int(e) < len(d.counters) {
		d.counters[e].Add(1)
	}
}

func (d *diagnostics) snapshot() Diagnostics {
	return Diagnostics{
		BatteryLow:             d.counters[EventBatteryLow].Load(),
		BufferAccessViolations: d.counters[EventBufferAccessViolation].Load(),
		SendsCompleted:         d.counters[EventSendDone].Load(),
		FramesReceived:         d.counters[EventFrameReceived].Load(),
		FramesDropped:          d.counters[EventFrameDropped].Load(),
		RXStarts:               d.counters[EventRXStart].Load(),
		PLLUnlocks:             d.counters[EventPLLUnlock].Load(),
		PLLLocks:               d.counters[EventPLLLock].Load(),
	}
}

// Diagnostics returns the event counters. It is safe to call concurrently
// with the other methods.
func (d *Device) Diagnostics() Diagnostics {
	return d.diag.snapshot()
}

// HandleInterrupt reads IRQ_STATUS once and services the highest priority
// pending source only: BAT_LOW, TRX_UR, TRX_END, RX_START, PLL_UNLOCK, PLL_LOCK.
// Reading IRQ_STATUS clears it, so lower priority sources raised together
// with a higher one are not reported.
//
// TRX_END completes a transmission with the reader's SendDone, or delivers a
// received frame with FrameReceived. BAT_LOW and TRX_UR serviced during a
// transmission also end it with SendDone, since a TRX_END read in the same
// IRQ_STATUS value is lost. HandleInterrupt never polls the radio
// state and does not block.
func (d *Device) HandleInterrupt() (Event, error) {
	status, err := d.ReadRegister(RegIRQStatus)
	if err != nil {
		return EventNone, err
	}

	var event Event
	switch {
	case status&IRQBatLow != 0:
		event = EventBatteryLow
		d.abortTransmission()
	case status&IRQTRXUR != 0:
		event = EventBufferAccessViolation
		d.abortTransmission()
	case status&IRQTRXEnd != 0:
		event, err = d.handleTRXEnd()
	case status&IRQRXStart != 0:
		event = EventRXStart
	case status&IRQPLLUnlock != 0:
		event = EventPLLUnlock
	case status&IRQPLLLock != 0:
		event = EventPLLLock
	default:
		event = EventNone
	}

	if d.pins.IRQ != nil {
		if ackErr := d.pins.IRQ.Acknowledge(); ackErr != nil && err == nil {
			err = fmt.Errorf("acknowledge interrupt: %w", ackErr)
		}
	}
	if err != nil {
		return event, err
	}

	if event != EventNone {
		debugf("HandleInterrupt: status 0x%02X: %s", status, event)
		d.diag.record(event)
		if d.events != nil {
			d.events(event)
		}
	}
	return event, nil
}

// abortTransmission returns a transmitting facade to Idle
func (d *Device) abortTransmission() {
	if d.state != TransceiverTransmitting {
		return
	}
	debugln("transmission ended by a higher priority interrupt")
	d.state = TransceiverIdle
	d.reader.SendDone()
}

func (d *Device) handleTRXEnd() (Event, error) {
	if d.state == TransceiverTransmitting {
		d.state = TransceiverIdle
		d.reader.SendDone()
		return EventSendDone, nil
	}

	buf, lqi, err := d.ReadFrame()
	if err != nil {
		return EventNone, err
	}

	psdu := buf.Bytes()
	if len(psdu) < ieee802154.FCSLength {
		debugf("dropping %d byte frame", len(psdu))
		return EventFrameDropped, nil
	}
	f, err := ieee802154.Decode(psdu[:len(psdu)-ieee802154.FCSLength])
	if err != nil {
		debugf("dropping undecodable frame: %v", err)
		return EventFrameDropped, nil
	}

	d.lastLQI.Store(uint32(lqi))
	d.reader.FrameReceived(f)
	return EventFrameReceived, nil
}
