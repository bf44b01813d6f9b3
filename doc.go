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

/*
Package rf230 drives the Atmel AT86RF230 IEEE 802.15.4 radio over SPI.

The RF230 is a 2.4 GHz transceiver controlled through a small register file,
a 128 byte frame buffer and a hardware state machine. This package speaks the
chip's SPI command protocol, walks the state machine with bounded polling,
services its interrupt and exposes the result as an ieee802154.Transceiver.

Features:
  - Register, SRAM and frame buffer access, one chip select cycle per command
  - Reserved register bits preserved on every write
  - Bounded state transitions with typed timeout errors
  - Interrupt dispatch with send completion, frame reception and diagnostics
  - Linux SPI and GPIO support through periph.io

Basic Usage:

	import (
	    "github.com/ZaparooProject/go-rf230"
	    "github.com/ZaparooProject/go-rf230/ieee802154"
	    "github.com/ZaparooProject/go-rf230/transport/spi"
	)

	transport, err := spi.New(spi.Config{
	    BusName:    "/dev/spidev0.0",
	    SelectPin:  "GPIO8",
	    ControlPin: "GPIO24",
	    ResetPin:   "GPIO25",
	    IRQPin:     "GPIO23",
	})
	if err != nil {
	    log.Fatal(err)
	}
	defer transport.Close()

	device, err := rf230.New(transport, transport.Pins())
	if err != nil {
	    log.Fatal(err)
	}

	err = device.Init(ieee802154.Params{Reader: ieee802154.ReaderFuncs{
	    OnFrameReceived: func(f *ieee802154.Frame) { fmt.Println(f) },
	}})
	if err != nil {
	    log.Fatal(err)
	}
	if err := device.EnableRX(); err != nil {
	    log.Fatal(err)
	}

Interrupts:

HandleInterrupt must be called whenever the IRQ line rises. The interrupt
package runs a goroutine that does so for a transport/spi IRQ line.

Error Handling:

Errors wrap sentinels that can be inspected:

	if errors.Is(err, rf230.ErrTransitionTimeout) {
	    // the radio did not reach the requested state
	}

IsRetryable reports whether repeating an operation may help; an unknown
TRX_STATUS code is retryable.

Thread Safety:

Device operations are not thread-safe, and HandleInterrupt must not overlap
with other calls. Serialize access with a lock shared with the interrupt
dispatcher.
*/
package rf230
