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
	"encoding/binary"
	"fmt"
)

// Frame size limits
const (
	// MaxMPDULength is the largest MAC protocol data unit, FCS included
	MaxMPDULength = 127
	// MaxPayloadLength is the largest payload, reached when both addresses are elided
	MaxPayloadLength = MaxMPDULength - 5
	// FrameControlLength is the size of the frame control field
	FrameControlLength = 2
	// SequenceNumberLength is the size of the sequence number field
	SequenceNumberLength = 1
	// FCSLength is the size of the frame check sequence appended by the radio
	FCSLength = 2
	// MinMPDULength is the smallest MPDU: frame control, sequence number and FCS
	MinMPDULength = FrameControlLength + SequenceNumberLength + FCSLength
)

// Frame control bits, first byte
const (
	fcfFrameTypeMask   = 0x07
	fcfSecurityEnabled = 1 << 3
	fcfFramePending    = 1 << 4
	fcfAckRequest      = 1 << 5
	fcfIntraPAN        = 1 << 6
)

// Frame control bits, second byte
const (
	fcfDstModeShift = 2
	fcfSrcModeShift = 6
	fcfModeMask     = 0x03
)

// FrameType is the 3-bit frame type. Values other than the four defined
// types are preserved as-is and masked to 3 bits on encode.
type FrameType uint8

// Defined frame types
const (
	FrameTypeBeacon     FrameType = 0
	FrameTypeData       FrameType = 1
	FrameTypeAck        FrameType = 2
	FrameTypeMACCommand FrameType = 3
)

// Code returns the 3-bit wire value of the frame type
func (t FrameType) Code() uint8 {
	return uint8(t) & fcfFrameTypeMask
}

// IsOther reports whether the frame type is not one of the defined types
func (t FrameType) IsOther() bool {
	return t > FrameTypeMACCommand
}

// String returns a human readable name for the frame type
func (t FrameType) String() string {
	switch t {
	case FrameTypeBeacon:
		return "beacon"
	case FrameTypeData:
		return "data"
	case FrameTypeAck:
		return "ack"
	case FrameTypeMACCommand:
		return "mac-command"
	default:
		return fmt.Sprintf("other(%d)", uint8(t))
	}
}

// Frame is an IEEE 802.15.4 MAC protocol data unit before wire encoding.
// The frame check sequence is not part of the frame; the radio computes it.
type Frame struct {
	// Addresses is the address block. Use FullAddresses{} for frames without addresses.
	Addresses Addresses
	// Payload is the MAC payload, at most MaxPayloadLength bytes
	Payload []byte
	Type    FrameType
	// SecurityEnabled is encoded but no security processing is performed
	SecurityEnabled bool
	// FramePending indicates the sender has more frames queued for the recipient
	FramePending bool
	// AckRequest asks the recipient to acknowledge the frame
	AckRequest bool
	// SequenceNumber wraps modulo 256; duplicates are detected by upper layers
	SequenceNumber uint8
}

// MPDULength returns the on-air length of the frame including the FCS
func (f *Frame) MPDULength() int {
	return FrameControlLength + SequenceNumberLength + AddressBlockLength(f.Addresses) +
		len(f.Payload) + FCSLength
}

// Encode serializes the frame into MPDU bytes, least significant byte first
// for every multi-byte field. The returned slice excludes the FCS; its length
// is MPDULength() - FCSLength.
func (f *Frame) Encode() ([]byte, error) {
	if f.Addresses == nil {
		return nil, fmt.Errorf("%w: nil address block", ErrInvalidAddresses)
	}
	if err := f.Addresses.validate(); err != nil {
		return nil, err
	}
	if len(f.Payload) > MaxPayloadLength {
		return nil, fmt.Errorf("%w: payload is %d bytes, maximum %d",
			ErrOversizeFrame, len(f.Payload), MaxPayloadLength)
	}
	total := f.MPDULength()
	if total > MaxMPDULength {
		return nil, fmt.Errorf("%w: MPDU is %d bytes, maximum %d", ErrOversizeFrame, total, MaxMPDULength)
	}

	out := make([]byte, 0, total-FCSLength)
	out = append(out, f.frameControlLow(), f.frameControlHigh(), f.SequenceNumber)
	out = appendAddressBlock(out, f.Addresses)
	out = append(out, f.Payload...)
	return out, nil
}

func (f *Frame) frameControlLow() byte {
	b := f.Type.Code()
	if f.SecurityEnabled {
		b |= fcfSecurityEnabled
	}
	if f.FramePending {
		b |= fcfFramePending
	}
	if f.AckRequest {
		b |= fcfAckRequest
	}
	if f.Addresses.IsWithinPAN() {
		b |= fcfIntraPAN
	}
	return b
}

func (f *Frame) frameControlHigh() byte {
	return byte(f.Addresses.DestinationMode())<<fcfDstModeShift |
		byte(f.Addresses.SourceMode())<<fcfSrcModeShift
}

// Decode parses MPDU bytes (without the FCS) into a Frame. Field presence is
// inferred from the addressing-mode bits and the PAN ID compression bit, the
// same way Encode derives its output length.
func Decode(data []byte) (*Frame, error) {
	if len(data) < FrameControlLength+SequenceNumberLength {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the frame header", ErrMalformedFrame, len(data))
	}
	if len(data) > MaxMPDULength-FCSLength {
		return nil, fmt.Errorf("%w: %d bytes", ErrOversizeFrame, len(data))
	}

	fc0, fc1 := data[0], data[1]
	frm := &Frame{
		Type:            FrameType(fc0 & fcfFrameTypeMask),
		SecurityEnabled: fc0&fcfSecurityEnabled != 0,
		FramePending:    fc0&fcfFramePending != 0,
		AckRequest:      fc0&fcfAckRequest != 0,
		SequenceNumber:  data[2],
	}

	dstMode := AddressMode((fc1 >> fcfDstModeShift) & fcfModeMask)
	srcMode := AddressMode((fc1 >> fcfSrcModeShift) & fcfModeMask)
	intraPAN := fc0&fcfIntraPAN != 0

	r := reader{buf: data, off: FrameControlLength + SequenceNumberLength}

	dst, err := r.fullAddress(dstMode)
	if err != nil {
		return nil, fmt.Errorf("destination: %w", err)
	}

	var src *FullAddress
	if intraPAN {
		if dst == nil || srcMode == AddressModeNone {
			return nil, fmt.Errorf("%w: PAN ID compression set without both addresses", ErrMalformedFrame)
		}
		addr, addrErr := r.address(srcMode)
		if addrErr != nil {
			return nil, fmt.Errorf("source: %w", addrErr)
		}
		frm.Addresses = LocalAddresses{Source: addr, Destination: *dst}
	} else {
		src, err = r.fullAddress(srcMode)
		if err != nil {
			return nil, fmt.Errorf("source: %w", err)
		}
		frm.Addresses = FullAddresses{Source: src, Destination: dst}
	}

	if rest := data[r.off:]; len(rest) > 0 {
		frm.Payload = append([]byte(nil), rest...)
	}
	return frm, nil
}

// reader walks the address block of an MPDU
type reader struct {
	buf []byte
	off int
}

func (r *reader) take(n int) ([]byte, error) {
	if r.off+n > len(r.buf) {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d",
			ErrMalformedFrame, n, r.off, len(r.buf))
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *reader) address(mode AddressMode) (Address, error) {
	switch mode {
	case AddressModeNone:
		return nil, nil
	case AddressModeShort:
		b, err := r.take(2)
		if err != nil {
			return nil, err
		}
		return ShortAddress(binary.LittleEndian.Uint16(b)), nil
	case AddressModeLong:
		b, err := r.take(8)
		if err != nil {
			return nil, err
		}
		return LongAddress(binary.LittleEndian.Uint64(b)), nil
	default:
		return nil, fmt.Errorf("%w: reserved addressing mode %s", ErrMalformedFrame, mode)
	}
}

func (r *reader) fullAddress(mode AddressMode) (*FullAddress, error) {
	addr, err := r.address(mode)
	if err != nil || addr == nil {
		return nil, err
	}
	pan, err := r.take(2)
	if err != nil {
		return nil, err
	}
	return &FullAddress{Address: addr, PANID: binary.LittleEndian.Uint16(pan)}, nil
}
