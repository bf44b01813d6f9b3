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
	"errors"
	"fmt"

	"periph.io/x/conn/v3/gpio"
)

// ErrTransactionClosed is returned when a closed BusTransaction is used
var ErrTransactionClosed = errors.New("bus transaction closed")

// BusTransaction owns the chip select line for one SPI exchange. The radio
// treats everything clocked between select going low and going high again as
// a single command, so every register, SRAM and frame buffer access runs in
// exactly one transaction.
//
// Close releases the select line. It is safe to call more than once; the
// line is driven high only on the first call.
type BusTransaction struct {
	bus    Bus
	sel    Pin
	closed bool
}

// BeginTransaction drives sel low and returns the open transaction
func BeginTransaction(bus Bus, sel Pin) (*BusTransaction, error) {
	if err := sel.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("%w: assert select: %w", ErrPinControl, err)
	}
	return &BusTransaction{bus: bus, sel: sel}, nil
}

// Transfer exchanges one byte with the radio
func (t *BusTransaction) Transfer(b byte) (byte, error) {
	if t.closed {
		return 0, ErrTransactionClosed
	}
	return t.bus.Transfer(b)
}

// Write clocks out data, discarding the bytes clocked in
func (t *BusTransaction) Write(data ...byte) error {
	for _, b := range data {
		if _, err := t.Transfer(b); err != nil {
			return err
		}
	}
	return nil
}

// Close drives select high once
func (t *BusTransaction) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true
	if err := t.sel.Out(gpio.High); err != nil {
		return fmt.Errorf("%w: release select: %w", ErrPinControl, err)
	}
	return nil
}
