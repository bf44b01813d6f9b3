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

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// Bus is the byte-oriented duplex SPI primitive the driver runs on.
// Chip select is not driven by the bus; the driver owns it through Pins.Select.
type Bus interface {
	// Configure sets clock rate, mode and word size
	Configure(params BusParams) error

	// Transfer clocks out one byte and returns the byte clocked in
	Transfer(b byte) (byte, error)
}

// BusParams are the SPI settings the RF230 requires
type BusParams struct {
	Frequency   physic.Frequency
	Mode        spi.Mode
	BitsPerWord int
}

// RF230 SPI constants: MSB first, CPOL 0, CPHA 0, 8 bit words.
// 4 MHz keeps the clock within the synchronous limit for every MCU clock setting.
const (
	busFrequency   = 4 * physic.MegaHertz
	busMode        = spi.Mode0
	busBitsPerWord = 8
)

// DefaultBusParams returns the settings Init applies to the bus
func DefaultBusParams() BusParams {
	return BusParams{
		Frequency:   busFrequency,
		Mode:        busMode,
		BitsPerWord: busBitsPerWord,
	}
}

// String returns a readable description of the parameters
func (p BusParams) String() string {
	return fmt.Sprintf("%s mode %d %d bits", p.Frequency, p.Mode&spi.Mode3, p.BitsPerWord)
}

// Pin is a digital output. periph.io gpio.PinOut satisfies it.
type Pin interface {
	Out(l gpio.Level) error
}

// InterruptLine enables and acknowledges the radio's IRQ input
type InterruptLine interface {
	// Enable arms the interrupt
	Enable() error
	// Acknowledge clears a pending interrupt at the controller
	Acknowledge() error
}

// Pins are the control lines wired to the radio.
//
// Select is the active-low SEL line. Control is SLP_TR, which starts a
// transmission from PLL_ON and puts the radio to sleep from TRX_OFF. Reset is
// the active-low RST line. IRQ may be nil when interrupts are polled.
type Pins struct {
	Select  Pin
	Control Pin
	Reset   Pin
	IRQ     InterruptLine
}

func (p Pins) validate() error {
	if p.Select == nil || p.Control == nil || p.Reset == nil {
		return fmt.Errorf("%w: select, control and reset pins are required", ErrInvalidParameter)
	}
	return nil
}

// busName returns a name for the bus for error messages
func busName(bus Bus) string {
	if s, ok := bus.(fmt.Stringer); ok {
		return s.String()
	}
	return ""
}
