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

// Package spi provides the Linux SPI and GPIO transport for the RF230
package spi

import (
	"errors"
	"fmt"
	"time"

	rf230 "github.com/ZaparooProject/go-rf230"
	"github.com/hashicorp/go-multierror"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// Transport errors
var (
	ErrInvalidConfig = errors.New("invalid SPI transport config")
	ErrPinNotFound   = errors.New("GPIO pin not found")
	ErrNotConfigured = errors.New("SPI bus not configured")
)

// Config names the SPI device and GPIO lines wired to the radio
type Config struct {
	// BusName is an spireg name such as "/dev/spidev0.0" or "SPI0.0"
	BusName string
	// SelectPin drives SEL. The kernel chip select is not used because one
	// RF230 command spans several transfers.
	SelectPin string
	// ControlPin drives SLP_TR
	ControlPin string
	// ResetPin drives RST
	ResetPin string
	// IRQPin reads IRQ; optional
	IRQPin string
}

func (c Config) validate() error {
	if c.BusName == "" {
		return fmt.Errorf("%w: bus name required", ErrInvalidConfig)
	}
	if c.SelectPin == "" || c.ControlPin == "" || c.ResetPin == "" {
		return fmt.Errorf("%w: select, control and reset pins required", ErrInvalidConfig)
	}
	return nil
}

// conn is the part of spi.Conn the transport uses
type conn interface {
	Tx(w, r []byte) error
}

type connectFunc func(f physic.Frequency, mode spi.Mode, bits int) (conn, error)

// Transport implements rf230.Bus over a Linux spidev device
type Transport struct {
	connect connectFunc
	conn    conn
	closer  func() error
	sel     gpio.PinIO
	control gpio.PinIO
	reset   gpio.PinIO
	irq     *IRQLine
	busName string
}

var _ rf230.Bus = (*Transport)(nil)

// New initializes periph.io, opens the SPI port and resolves the GPIO pins
func New(cfg Config) (*Transport, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}

	port, err := spireg.Open(cfg.BusName)
	if err != nil {
		return nil, fmt.Errorf("failed to open SPI bus %s: %w", cfg.BusName, err)
	}

	pins := make([]gpio.PinIO, 0, 4)
	for _, name := range []string{cfg.SelectPin, cfg.ControlPin, cfg.ResetPin, cfg.IRQPin} {
		if name == "" {
			pins = append(pins, nil)
			continue
		}
		p := gpioreg.ByName(name)
		if p == nil {
			_ = port.Close()
			return nil, fmt.Errorf("%w: %s", ErrPinNotFound, name)
		}
		pins = append(pins, p)
	}

	connect := func(f physic.Frequency, mode spi.Mode, bits int) (conn, error) {
		c, err := port.Connect(f, mode, bits)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	return newTransport(cfg.BusName, connect, port.Close, pins[0], pins[1], pins[2], pins[3]), nil
}

// newTransport is the internal constructor used by tests
func newTransport(busName string, connect connectFunc, closer func() error,
	sel, control, reset, irq gpio.PinIO,
) *Transport {
	t := &Transport{
		connect: connect,
		closer:  closer,
		sel:     sel,
		control: control,
		reset:   reset,
		busName: busName,
	}
	if irq != nil {
		t.irq = &IRQLine{pin: irq}
	}
	return t
}

// Configure connects to the port. Chip select is left to the SEL GPIO.
func (t *Transport) Configure(params rf230.BusParams) error {
	c, err := t.connect(params.Frequency, params.Mode|spi.NoCS, params.BitsPerWord)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", t.busName, err)
	}
	t.conn = c
	return nil
}

// Transfer exchanges one byte
func (t *Transport) Transfer(b byte) (byte, error) {
	if t.conn == nil {
		return 0, ErrNotConfigured
	}
	w := [1]byte{b}
	var r [1]byte
	if err := t.conn.Tx(w[:], r[:]); err != nil {
		return 0, fmt.Errorf("SPI transfer on %s: %w", t.busName, err)
	}
	return r[0], nil
}

// String returns the bus name
func (t *Transport) String() string {
	return t.busName
}

// Pins returns the control lines for rf230.New
func (t *Transport) Pins() rf230.Pins {
	pins := rf230.Pins{
		Select:  t.sel,
		Control: t.control,
		Reset:   t.reset,
	}
	if t.irq != nil {
		pins.IRQ = t.irq
	}
	return pins
}

// IRQ returns the interrupt line, or nil when no IRQ pin was configured
func (t *Transport) IRQ() *IRQLine {
	return t.irq
}

// Close releases the port and halts the pins
func (t *Transport) Close() error {
	var result *multierror.Error
	for _, p := range []gpio.PinIO{t.sel, t.control, t.reset} {
		if p == nil {
			continue
		}
		if err := p.Halt(); err != nil {
			result = multierror.Append(result, fmt.Errorf("halt %s: %w", p, err))
		}
	}
	if t.irq != nil {
		if err := t.irq.pin.Halt(); err != nil {
			result = multierror.Append(result, fmt.Errorf("halt %s: %w", t.irq.pin, err))
		}
	}
	if t.closer != nil {
		if err := t.closer(); err != nil {
			result = multierror.Append(result, fmt.Errorf("close %s: %w", t.busName, err))
		}
	}
	t.conn = nil
	return result.ErrorOrNil()
}

// IRQLine is the radio's IRQ output, active high
type IRQLine struct {
	pin gpio.PinIO
}

// Enable configures the pin as an input with rising edge detection
func (l *IRQLine) Enable() error {
	if err := l.pin.In(gpio.PullDown, gpio.RisingEdge); err != nil {
		return fmt.Errorf("configure IRQ pin %s: %w", l.pin, err)
	}
	return nil
}

// Acknowledge is a no-op: the radio drops IRQ when IRQ_STATUS is read and
// WaitForEdge consumes the edge
func (*IRQLine) Acknowledge() error {
	return nil
}

// WaitForEdge blocks until a rising edge or timeout; -1 waits forever
func (l *IRQLine) WaitForEdge(timeout time.Duration) bool {
	return l.pin.WaitForEdge(timeout)
}

// Level returns the current IRQ level
func (l *IRQLine) Level() gpio.Level {
	return l.pin.Read()
}
