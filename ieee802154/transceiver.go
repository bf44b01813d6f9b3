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

package ieee802154

// Reader receives completion and reception events from a Transceiver.
// Methods may be called from the interrupt path and must not block.
type Reader interface {
	// FrameReceived is called when a frame has been received
	FrameReceived(frame *Frame)
	// SendDone is called when a frame has been sent
	SendDone()
}

// ReaderFuncs adapts a pair of functions to the Reader interface.
// Nil functions are ignored.
type ReaderFuncs struct {
	OnFrameReceived func(frame *Frame)
	OnSendDone      func()
}

// FrameReceived calls OnFrameReceived
func (r ReaderFuncs) FrameReceived(frame *Frame) {
	if r.OnFrameReceived != nil {
		r.OnFrameReceived(frame)
	}
}

// SendDone calls OnSendDone
func (r ReaderFuncs) SendDone() {
	if r.OnSendDone != nil {
		r.OnSendDone()
	}
}

// Params configures a Transceiver during Init
type Params struct {
	// Reader is notified of received frames and send completion
	Reader Reader
}

// Transceiver is implemented by radios that send and receive 802.15.4 frames
type Transceiver interface {
	// Init prepares the radio for use
	Init(params Params) error
	// EnableRX enables reception. Received frames are passed to the Reader.
	EnableRX() error
	// DisableRX disables reception
	DisableRX() error
	// Send transmits the frame. It returns once transmission has started;
	// the Reader's SendDone is called on completion.
	Send(frame *Frame) error
}
