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

package interrupt

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	rf230 "github.com/ZaparooProject/go-rf230"
	"github.com/ZaparooProject/go-rf230/ieee802154"
	testutil "github.com/ZaparooProject/go-rf230/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type simBus struct {
	radio *testutil.VirtualRadio
}

func (b simBus) Configure(p rf230.BusParams) error {
	return b.radio.Configure(p.Frequency, p.Mode, p.BitsPerWord)
}

func (b simBus) Transfer(v byte) (byte, error) {
	return b.radio.Transfer(v)
}

// scriptedHandler returns queued results
type scriptedHandler struct {
	results []error
	mu      sync.Mutex
	calls   int
}

func (h *scriptedHandler) HandleInterrupt() (rf230.Event, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls++
	if len(h.results) == 0 {
		return rf230.EventPLLLock, nil
	}
	err := h.results[0]
	h.results = h.results[1:]
	return rf230.EventNone, err
}

// chanSource delivers one edge per value sent on the channel
type chanSource chan struct{}

func (c chanSource) WaitForEdge(timeout time.Duration) bool {
	select {
	case <-c:
		return true
	case <-time.After(timeout):
		return false
	}
}

func TestDispatcher_DeliversFrames(t *testing.T) {
	t.Parallel()

	radio := testutil.NewVirtualRadio()
	device, err := rf230.New(simBus{radio: radio}, rf230.Pins{
		Select:  radio.SelectPin(),
		Control: radio.ControlPin(),
		Reset:   radio.ResetPin(),
		IRQ:     radio.IRQLine(),
	})
	require.NoError(t, err)

	var mu sync.Mutex
	var received []*ieee802154.Frame
	require.NoError(t, device.Init(ieee802154.Params{Reader: ieee802154.ReaderFuncs{
		OnFrameReceived: func(f *ieee802154.Frame) {
			mu.Lock()
			defer mu.Unlock()
			received = append(received, f)
		},
	}}))
	require.NoError(t, device.EnableRX())

	lock := &sync.Mutex{}
	dispatcher := NewDispatcher(device, radio.IRQLine(), &Config{
		Lock:        lock,
		WaitTimeout: 10 * time.Millisecond,
	}, Callbacks{})
	require.NoError(t, dispatcher.Start(context.Background()))
	require.ErrorIs(t, dispatcher.Start(context.Background()), ErrAlreadyRunning)

	frame := &ieee802154.Frame{
		Type:           ieee802154.FrameTypeData,
		SequenceNumber: 3,
		Addresses: ieee802154.FullAddresses{
			Destination: &ieee802154.FullAddress{Address: ieee802154.ShortAddress(0xFFFF), PANID: 0xFFFF},
		},
		Payload: []byte{0x42},
	}
	mpdu, err := frame.Encode()
	require.NoError(t, err)
	radio.InjectMPDU(mpdu, 0x80)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 1
	}, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, dispatcher.Stop(ctx))
	assert.False(t, dispatcher.Running())

	metrics := dispatcher.GetMetrics()
	assert.Equal(t, int64(1), metrics.Interrupts)
	assert.Equal(t, int64(1), metrics.Events)
	assert.Zero(t, metrics.Errors)

	lock.Lock()
	assert.Equal(t, uint8(0x80), device.LastLinkQuality())
	lock.Unlock()
}

func TestDispatcher_CallbacksAndErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("bus failure")
	handler := &scriptedHandler{results: []error{boom}}
	source := make(chanSource)

	var mu sync.Mutex
	var gotErrs []error
	var gotEvents []rf230.Event
	dispatcher := NewDispatcher(handler, source, &Config{WaitTimeout: 5 * time.Millisecond}, Callbacks{
		OnEvent: func(e rf230.Event) {
			mu.Lock()
			defer mu.Unlock()
			gotEvents = append(gotEvents, e)
		},
		OnError: func(err error) {
			mu.Lock()
			defer mu.Unlock()
			gotErrs = append(gotErrs, err)
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, dispatcher.Start(ctx))
	source <- struct{}{}
	source <- struct{}{}

	assert.Eventually(t, func() bool {
		return dispatcher.GetMetrics().Interrupts == 2
	}, time.Second, time.Millisecond)

	cancel()
	assert.Eventually(t, func() bool { return !dispatcher.Running() }, time.Second, time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, gotErrs, 1)
	require.ErrorIs(t, gotErrs[0], boom)
	assert.Equal(t, []rf230.Event{rf230.EventPLLLock}, gotEvents)

	metrics := dispatcher.GetMetrics()
	assert.Equal(t, int64(1), metrics.Errors)
	assert.Equal(t, int64(1), metrics.Events)
}

func TestDispatcher_StopWithoutStart(t *testing.T) {
	t.Parallel()

	dispatcher := NewDispatcher(&scriptedHandler{}, make(chanSource), nil, Callbacks{})
	require.NoError(t, dispatcher.Stop(context.Background()))
	assert.False(t, dispatcher.Running())
}

func TestDispatcher_StartStopFromOtherGoroutines(t *testing.T) {
	t.Parallel()

	dispatcher := NewDispatcher(&scriptedHandler{}, make(chanSource), &Config{WaitTimeout: time.Millisecond}, Callbacks{})

	for i := 0; i < 10; i++ {
		started := make(chan error, 1)
		go func() { started <- dispatcher.Start(context.Background()) }()
		require.NoError(t, <-started)

		var wg sync.WaitGroup
		for j := 0; j < 2; j++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, dispatcher.Stop(context.Background()))
			}()
		}
		wg.Wait()
		assert.False(t, dispatcher.Running())
	}
}
