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
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/ZaparooProject/go-rf230/ieee802154"
	"github.com/ZaparooProject/go-rf230/internal/frame"
	"github.com/ZaparooProject/go-rf230/internal/retry"
	"github.com/hashicorp/go-multierror"
	"periph.io/x/conn/v3/gpio"
)

// FrameBuffer holds one PSDU read from the radio's frame buffer
type FrameBuffer = frame.Buffer

const (
	sramSize = 128
	// resetPulse is the minimum RST low time
	resetPulse = 1 * time.Microsecond
)

// DeviceConfig contains configuration options for the Device
type DeviceConfig struct {
	// TransitionRetries bounds the TRX_STATUS polls of one DriveTo call
	TransitionRetries int
	// PollInterval is the delay between polls
	PollInterval time.Duration
	// CheckPartNumber makes Init verify PART_NUM
	CheckPartNumber bool
	// AutoCRC makes Init enable TX_AUTO_CRC_ON
	AutoCRC bool
}

// DefaultDeviceConfig returns default device configuration
func DefaultDeviceConfig() *DeviceConfig {
	return &DeviceConfig{
		TransitionRetries: 1000,
		PollInterval:      0,
		CheckPartNumber:   true,
		AutoCRC:           true,
	}
}

// Device drives an RF230 over SPI and implements ieee802154.Transceiver.
//
// Thread Safety: Device is NOT thread-safe. Calls must not overlap, which
// includes HandleInterrupt. interrupt.Dispatcher takes a lock shared with
// the caller for this purpose.
type Device struct {
	bus       Bus
	reader    ieee802154.Reader
	events    EventHandler
	config    *DeviceConfig
	pins      Pins
	diag      diagnostics
	state     TransceiverState
	busParams BusParams
	lastLQI   atomic.Uint32
}

var _ ieee802154.Transceiver = (*Device)(nil)

// New creates a new RF230 device on the given bus and pins
func New(bus Bus, pins Pins, opts ...Option) (*Device, error) {
	if bus == nil {
		return nil, fmt.Errorf("%w: nil bus", ErrInvalidParameter)
	}
	if err := pins.validate(); err != nil {
		return nil, err
	}

	device := &Device{
		bus:       bus,
		pins:      pins,
		config:    DefaultDeviceConfig(),
		busParams: DefaultBusParams(),
		reader:    ieee802154.ReaderFuncs{},
	}

	for _, opt := range opts {
		if err := opt(device); err != nil {
			return nil, err
		}
	}

	return device, nil
}

// Config returns a copy of the device configuration
func (d *Device) Config() DeviceConfig {
	return *d.config
}

// TransceiverState returns the state of the transceiver facade
func (d *Device) TransceiverState() TransceiverState {
	return d.state
}

// LastLinkQuality returns the LQI reported with the most recently received frame
func (d *Device) LastLinkQuality() uint8 {
	return uint8(d.lastLQI.Load())
}

// withTransaction runs fn inside one bus transaction
func (d *Device) withTransaction(fn func(tx *BusTransaction) error) (err error) {
	tx, err := BeginTransaction(d.bus, d.pins.Select)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := tx.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(tx)
}

// ReadRegister reads one register
func (d *Device) ReadRegister(reg Register) (byte, error) {
	var value byte
	err := d.withTransaction(func(tx *BusTransaction) error {
		if err := tx.Write(reg.ReadCommand()); err != nil {
			return NewTransportReadError("ReadRegister", busName(d.bus), err)
		}
		v, err := tx.Transfer(0)
		if err != nil {
			return NewTransportReadError("ReadRegister", busName(d.bus), err)
		}
		value = v
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", reg, err)
	}
	return value, nil
}

// WriteRegister writes value to reg with its reserved bits forced to their reset value
func (d *Device) WriteRegister(reg Register, value byte) error {
	err := d.withTransaction(func(tx *BusTransaction) error {
		if err := tx.Write(reg.WriteCommand(), reg.CleanForWrite(value)); err != nil {
			return NewTransportWriteError("WriteRegister", busName(d.bus), err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("write %s: %w", reg, err)
	}
	return nil
}

func checkSRAMRange(address byte, n int) error {
	if n < 0 || int(address)+n > sramSize {
		return fmt.Errorf("%w: SRAM access of %d bytes at 0x%02X", ErrInvalidParameter, n, address)
	}
	return nil
}

// ReadSRAM reads n bytes of frame buffer memory starting at address
func (d *Device) ReadSRAM(address byte, n int) ([]byte, error) {
	if err := checkSRAMRange(address, n); err != nil {
		return nil, err
	}

	data := make([]byte, n)
	err := d.withTransaction(func(tx *BusTransaction) error {
		if err := tx.Write(cmdSRAMRead, address); err != nil {
			return NewTransportReadError("ReadSRAM", busName(d.bus), err)
		}
		for i := range data {
			b, err := tx.Transfer(0)
			if err != nil {
				return NewTransportReadError("ReadSRAM", busName(d.bus), err)
			}
			data[i] = b
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// WriteSRAM writes data to frame buffer memory starting at address
func (d *Device) WriteSRAM(address byte, data []byte) error {
	if err := checkSRAMRange(address, len(data)); err != nil {
		return err
	}

	return d.withTransaction(func(tx *BusTransaction) error {
		if err := tx.Write(cmdSRAMWrite, address); err != nil {
			return NewTransportWriteError("WriteSRAM", busName(d.bus), err)
		}
		if err := tx.Write(data...); err != nil {
			return NewTransportWriteError("WriteSRAM", busName(d.bus), err)
		}
		return nil
	})
}

// WriteFrame loads an MPDU without its FCS into the frame buffer. Data longer
// than ieee802154.MaxPayloadLength is rejected before the bus is touched.
func (d *Device) WriteFrame(data []byte) error {
	if len(data) > ieee802154.MaxPayloadLength {
		debugf("WriteFrame: rejecting %d bytes", len(data))
		return NewDataTooLargeError("WriteFrame", busName(d.bus))
	}

	return d.withTransaction(func(tx *BusTransaction) error {
		if err := tx.Write(cmdFrameBufferWrite, byte(len(data)+fcsLength)); err != nil {
			return NewTransportWriteError("WriteFrame", busName(d.bus), err)
		}
		if err := tx.Write(data...); err != nil {
			return NewTransportWriteError("WriteFrame", busName(d.bus), err)
		}
		return nil
	})
}

// ReadFrame reads the received PSDU, FCS included, and the LQI that follows it
func (d *Device) ReadFrame() (*FrameBuffer, uint8, error) {
	buf := new(FrameBuffer)
	var lqi byte

	err := d.withTransaction(func(tx *BusTransaction) error {
		if err := tx.Write(cmdFrameBufferRead); err != nil {
			return NewTransportReadError("ReadFrame", busName(d.bus), err)
		}
		phr, err := tx.Transfer(0)
		if err != nil {
			return NewTransportReadError("ReadFrame", busName(d.bus), err)
		}
		length := int(phr & frame.PHRLengthMask)
		for i := 0; i < length; i++ {
			b, err := tx.Transfer(0)
			if err != nil {
				return NewTransportReadError("ReadFrame", busName(d.bus), err)
			}
			if err := buf.Append(b); err != nil {
				return err
			}
		}
		lqi, err = tx.Transfer(0)
		if err != nil {
			return NewTransportReadError("ReadFrame", busName(d.bus), err)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return buf, lqi, nil
}

// State reads TRX_STATUS and returns the radio state. An unknown code yields
// a retryable *StateError.
func (d *Device) State() (RadioState, error) {
	status, err := d.ReadRegister(RegTRXStatus)
	if err != nil {
		return 0, err
	}
	return stateFromCode(status & trxStatusMask)
}

// WriteStateRegister commands a state change through TRX_STATE. The radio
// ignores commands its transition diagram does not allow from the current state.
func (d *Device) WriteStateRegister(state RadioState) error {
	return d.WriteRegister(RegTRXState, state.Code())
}

// DriveTo moves the radio to TRX_OFF, RX_ON or PLL_ON
func (d *Device) DriveTo(target RadioState) error {
	return d.DriveToContext(context.Background(), target)
}

// DriveToContext moves the radio to target, one legal transition per poll.
// It gives up after DeviceConfig.TransitionRetries polls with a
// *TransitionError wrapping ErrTransitionTimeout, or when ctx is done.
func (d *Device) DriveToContext(ctx context.Context, target RadioState) error {
	switch target {
	case StateTRXOff, StateRXOn, StatePLLOn:
	default:
		return fmt.Errorf("%w: %s", ErrInvalidTargetState, target)
	}

	polls := 0
	last := target
	_, err := retry.WithRetry(ctx, retry.Config{
		Description: "drive to " + target.String(),
		MaxRetries:  d.config.TransitionRetries - 1,
		RetryDelay:  d.config.PollInterval,
	}, func() (struct{}, bool, error) {
		polls++
		current, err := d.State()
		if err != nil {
			return struct{}{}, false, err
		}
		last = current
		if current == target {
			return struct{}{}, false, nil
		}
		return struct{}{}, true, d.stepToward(current, target)
	})

	if errors.Is(err, retry.ErrRetriesExhausted) {
		debugf("DriveTo %s: still %s after %d polls", target, last, polls)
		return &TransitionError{Err: ErrTransitionTimeout, Target: target, Last: last, Polls: polls}
	}
	if err != nil {
		return fmt.Errorf("drive to %s: %w", target, err)
	}
	return nil
}

// stepToward issues the single action that moves current closer to target
func (d *Device) stepToward(current, target RadioState) error {
	switch {
	case current.isTransient():
		return nil
	case current == StateSleep || current == StateRXOnNoClk:
		if err := d.pins.Control.Out(gpio.Low); err != nil {
			return fmt.Errorf("%w: wake: %w", ErrPinControl, err)
		}
		return nil
	case current == StatePOn:
		return d.WriteStateRegister(StateTRXOff)
	default:
		return d.WriteStateRegister(target)
	}
}

// Init configures the bus and pins, programs the radio and leaves it in TRX_OFF.
// A non-nil params.Reader replaces the reader set with WithReader.
func (d *Device) Init(params ieee802154.Params) error {
	if params.Reader != nil {
		d.reader = params.Reader
	}

	if err := d.bus.Configure(d.busParams); err != nil {
		return fmt.Errorf("configure bus: %w", err)
	}
	if err := d.pins.Select.Out(gpio.High); err != nil {
		return fmt.Errorf("%w: select: %w", ErrPinControl, err)
	}
	if err := d.pins.Reset.Out(gpio.High); err != nil {
		return fmt.Errorf("%w: reset: %w", ErrPinControl, err)
	}
	if err := d.pins.Control.Out(gpio.Low); err != nil {
		return fmt.Errorf("%w: control: %w", ErrPinControl, err)
	}

	if d.config.CheckPartNumber {
		part, err := d.PartNumber()
		if err != nil {
			return err
		}
		if part != PartNumberRF230 {
			return fmt.Errorf("%w: part number 0x%02X", ErrDeviceNotFound, part)
		}
	}

	if err := d.DriveTo(StateTRXOff); err != nil {
		return err
	}

	if d.config.AutoCRC {
		pwr, err := d.ReadRegister(RegPhyTxPwr)
		if err != nil {
			return err
		}
		if err := d.WriteRegister(RegPhyTxPwr, pwr|phyTxPwrAutoCRC); err != nil {
			return err
		}
	}

	if err := d.WriteRegister(RegIRQMask, defaultIRQMask); err != nil {
		return err
	}
	// Reading IRQ_STATUS clears interrupts raised during power up
	if _, err := d.ReadRegister(RegIRQStatus); err != nil {
		return err
	}
	if d.pins.IRQ != nil {
		if err := d.pins.IRQ.Enable(); err != nil {
			return fmt.Errorf("enable interrupt: %w", err)
		}
	}

	d.state = TransceiverIdle
	debugf("RF230 initialized on %s (%s)", busName(d.bus), d.busParams)
	return nil
}

func (d *Device) checkReady() error {
	switch d.state {
	case TransceiverUninitialized:
		return ErrNotInitialized
	case TransceiverTransmitting:
		return ErrBusy
	default:
		return nil
	}
}

// EnableRX drives the radio to RX_ON
func (d *Device) EnableRX() error {
	if err := d.checkReady(); err != nil {
		return err
	}
	if err := d.DriveTo(StateRXOn); err != nil {
		return err
	}
	d.state = TransceiverReceiving
	return nil
}

// DisableRX drives the radio to TRX_OFF. It is also allowed while
// transmitting and then abandons the transmission without SendDone.
func (d *Device) DisableRX() error {
	if d.state == TransceiverUninitialized {
		return ErrNotInitialized
	}
	if err := d.DriveTo(StateTRXOff); err != nil {
		return err
	}
	d.state = TransceiverIdle
	return nil
}

// Send encodes f, loads it into the frame buffer and starts transmission.
// Completion is reported through the reader's SendDone by HandleInterrupt.
func (d *Device) Send(f *ieee802154.Frame) error {
	if f == nil {
		return fmt.Errorf("%w: nil frame", ErrInvalidParameter)
	}
	if err := d.checkReady(); err != nil {
		return err
	}

	data, err := f.Encode()
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	if err := d.WriteFrame(data); err != nil {
		return err
	}
	if err := d.DriveTo(StatePLLOn); err != nil {
		return err
	}

	if err := d.pins.Control.Out(gpio.High); err != nil {
		return fmt.Errorf("%w: start transmission: %w", ErrPinControl, err)
	}
	if err := d.pins.Control.Out(gpio.Low); err != nil {
		return fmt.Errorf("%w: start transmission: %w", ErrPinControl, err)
	}

	d.state = TransceiverTransmitting
	debugf("Send: %d byte MPDU seq %d", len(data)+fcsLength, f.SequenceNumber)
	return nil
}

// Reset pulses RST. The radio returns to its reset configuration, so Init
// must be called again.
func (d *Device) Reset() error {
	if err := d.pins.Reset.Out(gpio.Low); err != nil {
		return fmt.Errorf("%w: reset: %w", ErrPinControl, err)
	}
	time.Sleep(resetPulse)
	if err := d.pins.Reset.Out(gpio.High); err != nil {
		return fmt.Errorf("%w: reset: %w", ErrPinControl, err)
	}
	d.state = TransceiverUninitialized
	return nil
}

// PartNumber reads PART_NUM; 0x02 identifies an RF230
func (d *Device) PartNumber() (byte, error) {
	return d.ReadRegister(RegPartNum)
}

// VersionNumber reads VERSION_NUM
func (d *Device) VersionNumber() (byte, error) {
	return d.ReadRegister(RegVersionNum)
}

// ManufacturerID reads the JEDEC manufacturer ID from MAN_ID_0 and MAN_ID_1
func (d *Device) ManufacturerID() (uint16, error) {
	lo, err := d.ReadRegister(RegManID0)
	if err != nil {
		return 0, err
	}
	hi, err := d.ReadRegister(RegManID1)
	if err != nil {
		return 0, err
	}
	return uint16(lo) | uint16(hi)<<8, nil
}

func (d *Device) writeRegisters(regs []Register, value uint64) error {
	for i, reg := range regs {
		if err := d.WriteRegister(reg, byte(value>>(8*i))); err != nil {
			return err
		}
	}
	return nil
}

// SetShortAddress programs the short address used by the address filter
func (d *Device) SetShortAddress(addr ieee802154.ShortAddress) error {
	return d.writeRegisters([]Register{RegShortAddr0, RegShortAddr1}, uint64(addr))
}

// SetPANID programs the PAN ID used by the address filter
func (d *Device) SetPANID(panID uint16) error {
	return d.writeRegisters([]Register{RegPANID0, RegPANID1}, uint64(panID))
}

// SetIEEEAddress programs the extended address used by the address filter
func (d *Device) SetIEEEAddress(addr ieee802154.LongAddress) error {
	return d.writeRegisters([]Register{
		RegIEEEAddr0, RegIEEEAddr1, RegIEEEAddr2, RegIEEEAddr3,
		RegIEEEAddr4, RegIEEEAddr5, RegIEEEAddr6, RegIEEEAddr7,
	}, uint64(addr))
}

// Close parks the control line low and closes the bus if it is an io.Closer
func (d *Device) Close() error {
	var result *multierror.Error
	if err := d.pins.Control.Out(gpio.Low); err != nil {
		result = multierror.Append(result, fmt.Errorf("%w: control: %w", ErrPinControl, err))
	}
	if closer, ok := d.bus.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("close bus: %w", err))
		}
	}
	d.state = TransceiverUninitialized
	return result.ErrorOrNil()
}
