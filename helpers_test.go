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
	"testing"

	"github.com/ZaparooProject/go-rf230/ieee802154"
	testutil "github.com/ZaparooProject/go-rf230/internal/testing"
	"github.com/stretchr/testify/require"
)

// simBus adapts the virtual radio to the Bus interface
type simBus struct {
	radio *testutil.VirtualRadio
}

func (b simBus) Configure(p BusParams) error {
	return b.radio.Configure(p.Frequency, p.Mode, p.BitsPerWord)
}

func (b simBus) Transfer(v byte) (byte, error) {
	return b.radio.Transfer(v)
}

func simPins(radio *testutil.VirtualRadio) Pins {
	return Pins{
		Select:  radio.SelectPin(),
		Control: radio.ControlPin(),
		Reset:   radio.ResetPin(),
		IRQ:     radio.IRQLine(),
	}
}

func newTestDevice(t *testing.T, opts ...Option) (*Device, *testutil.VirtualRadio) {
	t.Helper()
	radio := testutil.NewVirtualRadio()
	opts = append([]Option{WithTransitionRetries(50)}, opts...)
	device, err := New(simBus{radio: radio}, simPins(radio), opts...)
	require.NoError(t, err)
	return device, radio
}

// recordingReader counts upcalls
type recordingReader struct {
	frames   []*ieee802154.Frame
	sendDone int
}

func (r *recordingReader) FrameReceived(f *ieee802154.Frame) {
	r.frames = append(r.frames, f)
}

func (r *recordingReader) SendDone() {
	r.sendDone++
}

func (r *recordingReader) upcalls() int {
	return len(r.frames) + r.sendDone
}

func newInitializedDevice(t *testing.T, opts ...Option) (*Device, *testutil.VirtualRadio, *recordingReader) {
	t.Helper()
	device, radio := newTestDevice(t, opts...)
	reader := &recordingReader{}
	require.NoError(t, device.Init(ieee802154.Params{Reader: reader}))
	return device, radio, reader
}

func localDataFrame(payload []byte) *ieee802154.Frame {
	return &ieee802154.Frame{
		Type:           ieee802154.FrameTypeData,
		AckRequest:     true,
		SequenceNumber: 7,
		Addresses: ieee802154.LocalAddresses{
			Source: ieee802154.ShortAddress(0x1234),
			Destination: ieee802154.FullAddress{
				Address: ieee802154.ShortAddress(0x5678),
				PANID:   0xABCD,
			},
		},
		Payload: payload,
	}
}
