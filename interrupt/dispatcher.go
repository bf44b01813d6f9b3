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

// Package interrupt services RF230 interrupts from a goroutine
package interrupt

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	rf230 "github.com/ZaparooProject/go-rf230"
)

// ErrAlreadyRunning is returned by Start on a running dispatcher
var ErrAlreadyRunning = errors.New("dispatcher already running")

// EdgeSource reports rising edges of the IRQ line.
// transport/spi.IRQLine satisfies it.
type EdgeSource interface {
	WaitForEdge(timeout time.Duration) bool
}

// Handler services one interrupt. *rf230.Device satisfies it.
type Handler interface {
	HandleInterrupt() (rf230.Event, error)
}

// Config configures the dispatcher
type Config struct {
	// Lock is held around every HandleInterrupt call. Share it with other
	// users of the device so calls never overlap. A private lock is used
	// when nil.
	Lock sync.Locker
	// WaitTimeout bounds each wait for an edge so Stop is noticed
	WaitTimeout time.Duration
}

// DefaultConfig returns default dispatcher configuration
func DefaultConfig() *Config {
	return &Config{
		WaitTimeout: 100 * time.Millisecond,
	}
}

// Callbacks receive dispatcher results. They run on the dispatcher goroutine
// outside the lock.
type Callbacks struct {
	OnEvent func(event rf230.Event)
	OnError func(err error)
}

// Metrics tracks dispatcher activity
type Metrics struct {
	Interrupts  int64         // Edges serviced
	Events      int64         // Interrupts that produced an event
	Errors      int64         // HandleInterrupt failures
	LastLatency time.Duration // Duration of the last HandleInterrupt call
}

// Dispatcher waits for IRQ edges and calls HandleInterrupt for each
type Dispatcher struct {
	handler     Handler
	source      EdgeSource
	lock        sync.Locker
	callbacks   Callbacks
	mu          sync.Mutex // guards stopChan and done
	stopChan    chan struct{}
	done        chan struct{}
	waitTimeout time.Duration
	running     atomic.Bool
	interrupts  atomic.Int64
	events      atomic.Int64
	errors      atomic.Int64
	lastLatency atomic.Int64 // in nanoseconds
}

// NewDispatcher creates a dispatcher. A nil config uses DefaultConfig.
func NewDispatcher(handler Handler, source EdgeSource, config *Config, callbacks Callbacks) *Dispatcher {
	if config == nil {
		config = DefaultConfig()
	}
	lock := config.Lock
	if lock == nil {
		lock = &sync.Mutex{}
	}
	timeout := config.WaitTimeout
	if timeout <= 0 {
		timeout = DefaultConfig().WaitTimeout
	}
	return &Dispatcher{
		handler:     handler,
		source:      source,
		lock:        lock,
		callbacks:   callbacks,
		waitTimeout: timeout,
	}
}

// Start runs the dispatch loop until Stop is called or ctx is done
func (d *Dispatcher) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	d.stopChan = make(chan struct{})
	d.done = make(chan struct{})
	go d.loop(ctx, d.stopChan, d.done)
	return nil
}

func (d *Dispatcher) loop(ctx context.Context, stop, done chan struct{}) {
	defer close(done)
	defer d.running.Store(false)

	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		default:
		}

		if !d.source.WaitForEdge(d.waitTimeout) {
			continue
		}
		d.service()
	}
}

func (d *Dispatcher) service() {
	start := time.Now()
	d.lock.Lock()
	event, err := d.handler.HandleInterrupt()
	d.lock.Unlock()

	d.interrupts.Add(1)
	d.lastLatency.Store(time.Since(start).Nanoseconds())

	if err != nil {
		d.errors.Add(1)
		if d.callbacks.OnError != nil {
			d.callbacks.OnError(err)
		}
		return
	}
	if event == rf230.EventNone {
		return
	}
	d.events.Add(1)
	if d.callbacks.OnEvent != nil {
		d.callbacks.OnEvent(event)
	}
}

// Stop ends the dispatch loop and waits for it to exit or ctx to be done
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	stop, done := d.stopChan, d.done
	if stop == nil {
		d.mu.Unlock()
		return nil
	}
	select {
	case <-stop:
	default:
		close(stop)
	}
	d.mu.Unlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Running reports whether the dispatch loop is active
func (d *Dispatcher) Running() bool {
	return d.running.Load()
}

// GetMetrics returns current operational metrics
func (d *Dispatcher) GetMetrics() Metrics {
	return Metrics{
		Interrupts:  d.interrupts.Load(),
		Events:      d.events.Load(),
		Errors:      d.errors.Load(),
		LastLatency: time.Duration(d.lastLatency.Load()),
	}
}
