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
	"time"

	"github.com/ZaparooProject/go-rf230/ieee802154"
)

// Option is a functional option for configuring a Device
type Option func(*Device) error

// WithTransitionRetries sets how many times DriveTo polls TRX_STATUS before
// giving up with ErrTransitionTimeout
func WithTransitionRetries(polls int) Option {
	return func(d *Device) error {
		if polls < 1 {
			return fmt.Errorf("%w: transition retries must be at least 1, got %d", ErrInvalidParameter, polls)
		}
		d.config.TransitionRetries = polls
		return nil
	}
}

// WithPollInterval sets the delay between TRX_STATUS polls during DriveTo
func WithPollInterval(interval time.Duration) Option {
	return func(d *Device) error {
		if interval < 0 {
			return fmt.Errorf("%w: negative poll interval %s", ErrInvalidParameter, interval)
		}
		d.config.PollInterval = interval
		return nil
	}
}

// WithReader sets the reader notified of received frames and send completion.
// A reader passed to Init replaces it.
func WithReader(reader ieee802154.Reader) Option {
	return func(d *Device) error {
		d.reader = reader
		return nil
	}
}

// WithPartNumberCheck makes Init fail with ErrDeviceNotFound unless PART_NUM
// identifies an RF230
func WithPartNumberCheck(enabled bool) Option {
	return func(d *Device) error {
		d.config.CheckPartNumber = enabled
		return nil
	}
}

// WithAutoCRC controls whether Init enables hardware FCS generation
func WithAutoCRC(enabled bool) Option {
	return func(d *Device) error {
		d.config.AutoCRC = enabled
		return nil
	}
}

// WithEventHandler registers a function called with every event HandleInterrupt produces
func WithEventHandler(handler EventHandler) Option {
	return func(d *Device) error {
		d.events = handler
		return nil
	}
}
