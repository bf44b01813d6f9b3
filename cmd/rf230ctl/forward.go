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

package main

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"
	"go.bug.st/serial"

	"github.com/ZaparooProject/go-rf230/ieee802154"
)

// recordSync starts every forwarded record
const recordSync = 0xA5

var errEmptyFrame = errors.New("empty frame")

// forwarder copies received frames to a serial port as
// [sync, length, LQI, PSDU...] records. The PSDU ends with a recomputed FCS.
type forwarder struct {
	w       io.Writer
	log     *logrus.Entry
	mu      sync.Mutex
	records int
}

func newForwarder(w io.Writer, log *logrus.Entry) *forwarder {
	return &forwarder{w: w, log: log}
}

// openForwarder opens a serial port in 8N1 mode
func openForwarder(portName string, baud int, log *logrus.Entry) (*forwarder, io.Closer, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", portName, err)
	}
	return newForwarder(port, log.WithField("port", portName)), port, nil
}

func encodeRecord(psdu []byte, lqi uint8) ([]byte, error) {
	if len(psdu) == 0 {
		return nil, errEmptyFrame
	}
	if len(psdu) > ieee802154.MaxMPDULength {
		return nil, ieee802154.ErrOversizeFrame
	}
	rec := make([]byte, 0, len(psdu)+3)
	rec = append(rec, recordSync, byte(len(psdu)), lqi)
	return append(rec, psdu...), nil
}

// Forward writes one record for f
func (f *forwarder) Forward(frame *ieee802154.Frame, lqi uint8) error {
	mpdu, err := frame.Encode()
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	psdu := ieee802154.AppendFCS(mpdu)
	rec, err := encodeRecord(psdu, lqi)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.w.Write(rec); err != nil {
		return fmt.Errorf("forward frame: %w", err)
	}
	f.records++
	f.log.WithFields(logrus.Fields{"seq": frame.SequenceNumber, "len": len(psdu)}).Debug("forwarded frame")
	return nil
}

// Records returns the number of records written
func (f *forwarder) Records() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.records
}
