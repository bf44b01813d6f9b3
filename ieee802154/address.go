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

// AddressMode is the 2-bit addressing mode carried in the frame control field
type AddressMode uint8

const (
	// AddressModeNone indicates the address (and its PAN ID) is not present.
	AddressModeNone AddressMode = 0b00
	// AddressModeShort indicates a 16-bit short address.
	AddressModeShort AddressMode = 0b10
	// AddressModeLong indicates a 64-bit extended address.
	AddressModeLong AddressMode = 0b11
)

// String returns a human readable name for the addressing mode
func (m AddressMode) String() string {
	switch m {
	case AddressModeNone:
		return "none"
	case AddressModeShort:
		return "short"
	case AddressModeLong:
		return "long"
	default:
		return fmt.Sprintf("reserved(%02b)", uint8(m))
	}
}

// Address is either a ShortAddress or a LongAddress.
// The interface is sealed; no other implementations exist.
type Address interface {
	// Mode returns the addressing mode of this address
	Mode() AddressMode
	// Len returns the number of bytes the address occupies on the wire
	Len() int
	appendTo(b []byte) []byte
}

// ShortAddress is a 16-bit address assigned by a PAN coordinator
type ShortAddress uint16

// Mode returns AddressModeShort
func (ShortAddress) Mode() AddressMode { return AddressModeShort }

// Len returns 2
func (ShortAddress) Len() int { return 2 }

func (a ShortAddress) appendTo(b []byte) []byte {
	return binary.LittleEndian.AppendUint16(b, uint16(a))
}

func (a ShortAddress) String() string {
	return fmt.Sprintf("%04x", uint16(a))
}

// LongAddress is a 64-bit extended (IEEE) address
type LongAddress uint64

// Mode returns AddressModeLong
func (LongAddress) Mode() AddressMode { return AddressModeLong }

// Len returns 8
func (LongAddress) Len() int { return 8 }

func (a LongAddress) appendTo(b []byte) []byte {
	return binary.LittleEndian.AppendUint64(b, uint64(a))
}

func (a LongAddress) String() string {
	var raw [8]byte
	binary.BigEndian.PutUint64(raw[:], uint64(a))
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x:%02x:%02x",
		raw[0], raw[1], raw[2], raw[3], raw[4], raw[5], raw[6], raw[7])
}

// modeOf returns the addressing mode of a possibly absent address
func modeOf(a Address) AddressMode {
	if a == nil {
		return AddressModeNone
	}
	return a.Mode()
}

// FullAddress is an address together with the PAN it belongs to
type FullAddress struct {
	Address Address
	PANID   uint16
}

// Addresses is the address block of a frame. It has exactly two legal shapes:
// LocalAddresses (both endpoints in one PAN, source PAN ID elided) and
// FullAddresses (independent, optional endpoints each carrying a PAN ID).
type Addresses interface {
	// IsWithinPAN reports whether the PAN ID compression bit is set
	IsWithinPAN() bool
	SourceMode() AddressMode
	DestinationMode() AddressMode
	// SourcePANID returns the source PAN ID when it is transmitted
	SourcePANID() (uint16, bool)
	// SourceAddress returns nil when the source address is absent
	SourceAddress() Address
	DestinationPANID() (uint16, bool)
	DestinationAddress() Address
	validate() error
}

// LocalAddresses addresses a frame exchanged inside a single PAN.
// The PAN ID is carried once, with the destination.
type LocalAddresses struct {
	Source      Address
	Destination FullAddress
}

// IsWithinPAN always returns true
func (LocalAddresses) IsWithinPAN() bool { return true }

// SourceMode returns the addressing mode of the source address
func (a LocalAddresses) SourceMode() AddressMode { return modeOf(a.Source) }

// DestinationMode returns the addressing mode of the destination address
func (a LocalAddresses) DestinationMode() AddressMode { return modeOf(a.Destination.Address) }

// SourcePANID never returns a PAN ID; it is implied by the destination
func (LocalAddresses) SourcePANID() (uint16, bool) { return 0, false }

// SourceAddress returns the source address
func (a LocalAddresses) SourceAddress() Address { return a.Source }

// DestinationPANID returns the shared PAN ID
func (a LocalAddresses) DestinationPANID() (uint16, bool) { return a.Destination.PANID, true }

// DestinationAddress returns the destination address
func (a LocalAddresses) DestinationAddress() Address { return a.Destination.Address }

func (a LocalAddresses) validate() error {
	if a.Source == nil || a.Destination.Address == nil {
		return fmt.Errorf("%w: intra-PAN addressing requires both source and destination", ErrInvalidAddresses)
	}
	return nil
}

// FullAddresses addresses a frame between PANs. Either endpoint may be nil.
type FullAddresses struct {
	Source      *FullAddress
	Destination *FullAddress
}

// IsWithinPAN always returns false
func (FullAddresses) IsWithinPAN() bool { return false }

// SourceMode returns AddressModeNone when the source is absent
func (a FullAddresses) SourceMode() AddressMode {
	if a.Source == nil {
		return AddressModeNone
	}
	return modeOf(a.Source.Address)
}

// DestinationMode returns AddressModeNone when the destination is absent
func (a FullAddresses) DestinationMode() AddressMode {
	if a.Destination == nil {
		return AddressModeNone
	}
	return modeOf(a.Destination.Address)
}

// SourcePANID returns the source PAN ID if a source is present
func (a FullAddresses) SourcePANID() (uint16, bool) {
	if a.Source == nil {
		return 0, false
	}
	return a.Source.PANID, true
}

// SourceAddress returns the source address or nil
func (a FullAddresses) SourceAddress() Address {
	if a.Source == nil {
		return nil
	}
	return a.Source.Address
}

// DestinationPANID returns the destination PAN ID if a destination is present
func (a FullAddresses) DestinationPANID() (uint16, bool) {
	if a.Destination == nil {
		return 0, false
	}
	return a.Destination.PANID, true
}

// DestinationAddress returns the destination address or nil
func (a FullAddresses) DestinationAddress() Address {
	if a.Destination == nil {
		return nil
	}
	return a.Destination.Address
}

func (a FullAddresses) validate() error {
	if a.Source != nil && a.Source.Address == nil {
		return fmt.Errorf("%w: source PAN without source address", ErrInvalidAddresses)
	}
	if a.Destination != nil && a.Destination.Address == nil {
		return fmt.Errorf("%w: destination PAN without destination address", ErrInvalidAddresses)
	}
	return nil
}

// AddressBlockLength returns the number of bytes the address block occupies
// on the wire, between the sequence number and the payload.
func AddressBlockLength(a Addresses) int {
	if a == nil {
		return 0
	}
	n := 0
	if dst := a.DestinationAddress(); dst != nil {
		n += dst.Len()
	}
	if _, ok := a.DestinationPANID(); ok {
		n += 2
	}
	if src := a.SourceAddress(); src != nil {
		n += src.Len()
	}
	if _, ok := a.SourcePANID(); ok {
		n += 2
	}
	return n
}

// appendAddressBlock writes destination address, destination PAN ID, source
// address and source PAN ID, each least significant byte first.
func appendAddressBlock(b []byte, a Addresses) []byte {
	if dst := a.DestinationAddress(); dst != nil {
		b = dst.appendTo(b)
	}
	if pan, ok := a.DestinationPANID(); ok {
		b = binary.LittleEndian.AppendUint16(b, pan)
	}
	if src := a.SourceAddress(); src != nil {
		b = src.appendTo(b)
	}
	if pan, ok := a.SourcePANID(); ok {
		b = binary.LittleEndian.AppendUint16(b, pan)
	}
	return b
}
