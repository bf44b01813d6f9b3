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

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func localShortAddresses() LocalAddresses {
	return LocalAddresses{
		Source:      ShortAddress(0x1234),
		Destination: FullAddress{Address: ShortAddress(0x5678), PANID: 0xABCD},
	}
}

func TestAddressMode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, AddressModeShort, ShortAddress(0).Mode())
	assert.Equal(t, AddressModeShort, ShortAddress(0xFFFF).Mode())
	assert.Equal(t, AddressModeLong, LongAddress(0).Mode())
	assert.Equal(t, AddressModeLong, LongAddress(0xFFFFFFFFFFFFFFFF).Mode())
	assert.Equal(t, uint8(0b10), uint8(ShortAddress(1).Mode()))
	assert.Equal(t, uint8(0b11), uint8(LongAddress(1).Mode()))
}

func TestLocalAddresses_Accessors(t *testing.T) {
	t.Parallel()

	for _, src := range []Address{ShortAddress(1), LongAddress(2)} {
		addrs := LocalAddresses{Source: src, Destination: FullAddress{Address: LongAddress(3), PANID: 9}}

		assert.True(t, addrs.IsWithinPAN())
		pan, ok := addrs.SourcePANID()
		assert.False(t, ok)
		assert.Zero(t, pan)
		assert.Equal(t, src, addrs.SourceAddress())
		assert.Equal(t, src.Mode(), addrs.SourceMode())
		assert.Equal(t, AddressModeLong, addrs.DestinationMode())

		dstPAN, ok := addrs.DestinationPANID()
		assert.True(t, ok)
		assert.Equal(t, uint16(9), dstPAN)
	}
}

func TestFullAddresses_AbsentEndpoints(t *testing.T) {
	t.Parallel()

	addrs := FullAddresses{}
	assert.False(t, addrs.IsWithinPAN())
	assert.Equal(t, AddressModeNone, addrs.SourceMode())
	assert.Equal(t, AddressModeNone, addrs.DestinationMode())
	assert.Nil(t, addrs.SourceAddress())
	assert.Nil(t, addrs.DestinationAddress())
	_, ok := addrs.SourcePANID()
	assert.False(t, ok)
	_, ok = addrs.DestinationPANID()
	assert.False(t, ok)
	assert.Equal(t, 0, AddressBlockLength(addrs))
}

func TestEncode_LocalShortAddresses(t *testing.T) {
	t.Parallel()

	frm := &Frame{
		Type:           FrameTypeData,
		AckRequest:     true,
		SequenceNumber: 0x42,
		Addresses:      localShortAddresses(),
		Payload:        []byte{0xDE, 0xAD},
	}

	out, err := frm.Encode()
	require.NoError(t, err)

	// data | ack request | intra-PAN
	assert.Equal(t, byte(0x61), out[0])
	assert.Equal(t, byte(0x88), out[1])
	assert.Equal(t, byte(0x42), out[2])
	assert.Equal(t, []byte{0x78, 0x56, 0xCD, 0xAB, 0x34, 0x12}, out[3:9])
	assert.Equal(t, []byte{0xDE, 0xAD}, out[9:])
	assert.Len(t, out, frm.MPDULength()-FCSLength)
}

func TestEncode_FrameControlBits(t *testing.T) {
	t.Parallel()

	tests := getFrameControlTestCases()
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			out, err := tt.frame.Encode()
			require.NoError(t, err)
			assert.Equal(t, tt.wantFC0, out[0], "frame control low byte")
			assert.Equal(t, tt.wantFC1, out[1], "frame control high byte")
		})
	}
}

func getFrameControlTestCases() []struct {
	frame   *Frame
	name    string
	wantFC0 byte
	wantFC1 byte
} {
	panA := &FullAddress{Address: LongAddress(0x0102030405060708), PANID: 1}
	panB := &FullAddress{Address: ShortAddress(0x0001), PANID: 2}
	return []struct {
		frame   *Frame
		name    string
		wantFC0 byte
		wantFC1 byte
	}{
		{
			name:    "ack without addresses",
			frame:   &Frame{Type: FrameTypeAck, Addresses: FullAddresses{}},
			wantFC0: 0x02,
			wantFC1: 0x00,
		},
		{
			name: "beacon with security and pending",
			frame: &Frame{
				Type: FrameTypeBeacon, SecurityEnabled: true, FramePending: true,
				Addresses: FullAddresses{Source: panB},
			},
			wantFC0: 0x18,
			wantFC1: 0x80,
		},
		{
			name:    "mac command between PANs",
			frame:   &Frame{Type: FrameTypeMACCommand, Addresses: FullAddresses{Source: panA, Destination: panB}},
			wantFC0: 0x03,
			wantFC1: 0xC8,
		},
		{
			name:    "unrecognized type is masked to three bits",
			frame:   &Frame{Type: FrameType(0xFD), Addresses: FullAddresses{Destination: panA}},
			wantFC0: 0x05,
			wantFC1: 0x0C,
		},
	}
}

func TestEncode_AddressBlockOrder(t *testing.T) {
	t.Parallel()

	frm := &Frame{
		Type: FrameTypeData,
		Addresses: FullAddresses{
			Source:      &FullAddress{Address: LongAddress(0x1122334455667788), PANID: 0x0A0B},
			Destination: &FullAddress{Address: ShortAddress(0xBEEF), PANID: 0xCAFE},
		},
	}

	out, err := frm.Encode()
	require.NoError(t, err)
	want := []byte{
		0xEF, 0xBE, // destination address
		0xFE, 0xCA, // destination PAN
		0x88, 0x77, 0x66, 0x55, 0x44, 0x33, 0x22, 0x11, // source address
		0x0B, 0x0A, // source PAN
	}
	assert.Equal(t, want, out[3:])
}

func TestEncode_Oversize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		addrs   Addresses
		name    string
		payload int
	}{
		{name: "payload above limit", addrs: FullAddresses{}, payload: MaxPayloadLength + 1},
		{name: "mpdu above limit with addresses", addrs: localShortAddresses(), payload: MaxPayloadLength},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			frm := &Frame{Type: FrameTypeData, Addresses: tt.addrs, Payload: make([]byte, tt.payload)}
			out, err := frm.Encode()
			require.ErrorIs(t, err, ErrOversizeFrame)
			assert.Nil(t, out)
		})
	}
}

func TestEncode_MaxPayloadWithoutAddresses(t *testing.T) {
	t.Parallel()

	frm := &Frame{Type: FrameTypeData, Addresses: FullAddresses{}, Payload: bytes.Repeat([]byte{0x5A}, MaxPayloadLength)}
	out, err := frm.Encode()
	require.NoError(t, err)
	assert.Equal(t, MaxMPDULength, frm.MPDULength())
	assert.Len(t, out, MaxMPDULength-FCSLength)
}

func TestEncode_InvalidAddresses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		addrs Addresses
		name  string
	}{
		{name: "nil block", addrs: nil},
		{name: "local without source", addrs: LocalAddresses{Destination: FullAddress{Address: ShortAddress(1)}}},
		{name: "local without destination", addrs: LocalAddresses{Source: ShortAddress(1)}},
		{name: "full with empty destination", addrs: FullAddresses{Destination: &FullAddress{PANID: 1}}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := (&Frame{Addresses: tt.addrs}).Encode()
			require.ErrorIs(t, err, ErrInvalidAddresses)
		})
	}
}

func TestMPDULength(t *testing.T) {
	t.Parallel()

	short := ShortAddress(0x0001)
	long := LongAddress(0x0203040506070809)
	variants := []struct {
		addrs     Addresses
		name      string
		blockSize int
	}{
		{name: "no addresses", addrs: FullAddresses{}, blockSize: 0},
		{name: "destination only", addrs: FullAddresses{Destination: &FullAddress{Address: short}}, blockSize: 4},
		{name: "source only long", addrs: FullAddresses{Source: &FullAddress{Address: long}}, blockSize: 10},
		{
			name:      "both long between PANs",
			addrs:     FullAddresses{Source: &FullAddress{Address: long}, Destination: &FullAddress{Address: long}},
			blockSize: 20,
		},
		{name: "local short", addrs: LocalAddresses{Source: short, Destination: FullAddress{Address: short}}, blockSize: 6},
		{name: "local long", addrs: LocalAddresses{Source: long, Destination: FullAddress{Address: long}}, blockSize: 18},
	}

	for _, v := range variants {
		v := v
		t.Run(v.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, v.blockSize, AddressBlockLength(v.addrs))
			for _, n := range []int{0, 1, 17, MaxPayloadLength - v.blockSize} {
				frm := &Frame{Type: FrameTypeData, Addresses: v.addrs, Payload: make([]byte, n)}
				assert.Equal(t, 2+1+v.blockSize+n+2, frm.MPDULength())

				out, err := frm.Encode()
				require.NoError(t, err)
				assert.Len(t, out, frm.MPDULength()-FCSLength)
			}
		})
	}
}

func TestDecode_RoundTrip(t *testing.T) {
	t.Parallel()

	frames := []*Frame{
		{Type: FrameTypeData, SequenceNumber: 255, Addresses: localShortAddresses(), Payload: []byte("abc")},
		{Type: FrameTypeAck, SequenceNumber: 1, Addresses: FullAddresses{}},
		{
			Type: FrameTypeMACCommand, AckRequest: true, FramePending: true,
			Addresses: FullAddresses{
				Source:      &FullAddress{Address: LongAddress(0xAABBCCDDEEFF0011), PANID: 0x1111},
				Destination: &FullAddress{Address: ShortAddress(0xFFFF), PANID: 0xFFFF},
			},
			Payload: []byte{0x04},
		},
		{
			Type:      FrameType(6),
			Addresses: LocalAddresses{Source: LongAddress(7), Destination: FullAddress{Address: ShortAddress(8), PANID: 9}},
		},
	}

	for _, want := range frames {
		out, err := want.Encode()
		require.NoError(t, err)

		got, err := Decode(out)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestDecode_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		wantErr error
		name    string
		data    []byte
	}{
		{name: "too short", data: []byte{0x01, 0x00}, wantErr: ErrMalformedFrame},
		{name: "reserved destination mode", data: []byte{0x01, 0x04, 0x00}, wantErr: ErrMalformedFrame},
		{name: "truncated address", data: []byte{0x01, 0x08, 0x00, 0x01}, wantErr: ErrMalformedFrame},
		{name: "intra-PAN without source", data: []byte{0x41, 0x08, 0x00, 0x01, 0x02, 0x03, 0x04}, wantErr: ErrMalformedFrame},
		{name: "too long", data: make([]byte, MaxMPDULength), wantErr: ErrOversizeFrame},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			frm, err := Decode(tt.data)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, frm)
		})
	}
}

func TestReaderFuncs(t *testing.T) {
	t.Parallel()

	var received *Frame
	sent := 0
	var r Reader = ReaderFuncs{
		OnFrameReceived: func(f *Frame) { received = f },
		OnSendDone:      func() { sent++ },
	}

	frm := &Frame{}
	r.FrameReceived(frm)
	r.SendDone()
	assert.Same(t, frm, received)
	assert.Equal(t, 1, sent)

	assert.NotPanics(t, func() {
		ReaderFuncs{}.FrameReceived(frm)
		ReaderFuncs{}.SendDone()
	})
}
