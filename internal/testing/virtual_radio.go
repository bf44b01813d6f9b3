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

// Package testing provides a simulated RF230 for driver tests
package testing

import (
	"errors"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"

	"github.com/ZaparooProject/go-rf230/ieee802154"
)

// Register addresses and values the simulation acts on
const (
	RegTRXStatus = 0x01
	RegTRXState  = 0x02
	RegPhyTxPwr  = 0x05
	RegIRQMask   = 0x0E
	RegIRQStatus = 0x0F
	RegPartNum   = 0x1C

	IRQTRXEnd = 1 << 3
)

// Radio state codes
const (
	StatePOn                  = 0x00
	StateBusyRX               = 0x01
	StateBusyTX               = 0x02
	StateForceTRXOff          = 0x03 // TRX_CMD only
	CmdTXStart                = 0x02 // TRX_CMD only
	StateRXOn                 = 0x06
	StateTRXOff               = 0x08
	StatePLLOn                = 0x09
	StateSleep                = 0x0F
	StateRXOnNoClk            = 0x1C
	StateTransitionInProgress = 0x1F
)

// ErrNotSelected is returned by Transfer while the select line is high
var ErrNotSelected = errors.New("virtual radio: transfer without chip select")

var resetValues = map[byte]byte{
	0x03: 0x19, 0x08: 0x2B, 0x09: 0xC7, 0x0E: 0xFF, 0x11: 0x02, 0x12: 0xF0,
	0x1A: 0x5F, 0x1B: 0x20, 0x1C: 0x02, 0x1D: 0x02, 0x1E: 0x1F,
	0x2C: 0x38, 0x2D: 0xEA, 0x2E: 0xC2,
}

type accessMode int

const (
	accessNone accessMode = iota
	accessRegisterRead
	accessRegisterWrite
	accessFrameRead
	accessFrameWrite
	accessSRAMRead
	accessSRAMWrite
)

// RegisterWrite records one register write as it arrived on the bus
type RegisterWrite struct {
	Address byte
	Value   byte
}

// BusConfig records the last bus configuration
type BusConfig struct {
	Frequency   physic.Frequency
	Mode        spi.Mode
	BitsPerWord int
}

// VirtualRadio simulates an RF230 behind an SPI bus: the command decoder,
// register file, frame buffer and the TRX state diagram. All methods are
// safe for concurrent use.
type VirtualRadio struct {
	transferErr   error
	pinErr        error
	edges         chan struct{}
	script        []byte
	sent          [][]byte
	writes        []RegisterWrite
	busConfig     BusConfig
	mu            sync.Mutex
	regs          [64]byte
	frameBuf      [128]byte
	transfers     int
	selectLows    int
	selectHighs   int
	txStarts      int
	irqEnables    int
	irqAcks       int
	configures    int
	pending       int
	busyPolls     int
	index         int
	address       byte
	frameLen      byte
	lqi           byte
	state         byte
	target        byte
	mode          accessMode
	control       gpio.Level
	selected      bool
}

// NewVirtualRadio creates a radio in P_ON with reset register values.
// Transitions and busy states last two TRX_STATUS reads.
func NewVirtualRadio() *VirtualRadio {
	v := &VirtualRadio{
		edges:     make(chan struct{}, 1),
		busyPolls: 2,
		state:     StatePOn,
	}
	v.resetRegisters()
	return v
}

func (v *VirtualRadio) resetRegisters() {
	v.regs = [64]byte{}
	for addr, value := range resetValues {
		v.regs[addr] = value
	}
}

// SetBusyPolls sets how many TRX_STATUS reads a transition or busy state lasts
func (v *VirtualRadio) SetBusyPolls(n int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.busyPolls = n
}

// SetState forces the radio state. Busy and transition states settle after
// the configured number of polls: BUSY_RX to RX_ON, BUSY_TX to PLL_ON and
// STATE_TRANSITION_IN_PROGRESS to TRX_OFF.
func (v *VirtualRadio) SetState(code byte) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state = code
	v.pending = 0
	switch code {
	case StateBusyRX:
		v.target, v.pending = StateRXOn, v.busyPolls
	case StateBusyTX:
		v.target, v.pending = StatePLLOn, v.busyPolls
	case StateTransitionInProgress:
		v.target, v.pending = StateTRXOff, v.busyPolls
	}
	if v.pending == 0 && isBusy(code) {
		v.state = v.target
	}
	// SLEEP and RX_ON_NOCLK are only reachable with SLP_TR high
	if code == StateSleep || code == StateRXOnNoClk {
		v.control = gpio.High
	}
}

// State returns the simulated state code
func (v *VirtualRadio) State() byte {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// ScriptStatus queues raw TRX_STATUS values returned by the next reads ahead
// of the simulated state. Unknown codes may be scripted.
func (v *VirtualRadio) ScriptStatus(codes ...byte) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.script = append(v.script, codes...)
}

// Register returns the raw value of a register
func (v *VirtualRadio) Register(addr byte) byte {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.regs[addr&0x3F]
}

// SetRegister sets the raw value of a register without side effects
func (v *VirtualRadio) SetRegister(addr, value byte) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.regs[addr&0x3F] = value
}

// RegisterWrites returns every register write received
func (v *VirtualRadio) RegisterWrites() []RegisterWrite {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]RegisterWrite(nil), v.writes...)
}

// SetTransferError makes every later Transfer fail with err; nil clears it
func (v *VirtualRadio) SetTransferError(err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.transferErr = err
}

// SetPinError makes every later pin write fail with err; nil clears it
func (v *VirtualRadio) SetPinError(err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pinErr = err
}

// Transfers returns the number of bytes exchanged
func (v *VirtualRadio) Transfers() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.transfers
}

// SelectCounts returns how often the select line was driven low and high
func (v *VirtualRadio) SelectCounts() (low, high int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.selectLows, v.selectHighs
}

// Selected reports whether the select line is low
func (v *VirtualRadio) Selected() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.selected
}

// ControlLevel returns the level of SLP_TR
func (v *VirtualRadio) ControlLevel() gpio.Level {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.control
}

// TXStarts returns the number of transmissions started
func (v *VirtualRadio) TXStarts() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.txStarts
}

// SentFrames returns the frame buffer contents, FCS excluded, of every transmission
func (v *VirtualRadio) SentFrames() [][]byte {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([][]byte, len(v.sent))
	for i, f := range v.sent {
		out[i] = append([]byte(nil), f...)
	}
	return out
}

// FrameBuffer returns the PHR and the frame buffer contents it covers
func (v *VirtualRadio) FrameBuffer() (phr byte, data []byte) {
	v.mu.Lock()
	defer v.mu.Unlock()
	n := int(v.frameLen & 0x7F)
	return v.frameLen, append([]byte(nil), v.frameBuf[:n]...)
}

// SRAM returns n bytes of frame buffer memory at addr
func (v *VirtualRadio) SRAM(addr byte, n int) []byte {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]byte(nil), v.frameBuf[addr:int(addr)+n]...)
}

// BusConfig returns the last bus configuration and how many times it was set
func (v *VirtualRadio) BusConfig() (BusConfig, int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.busConfig, v.configures
}

// IRQCounts returns how often the interrupt line was enabled and acknowledged
func (v *VirtualRadio) IRQCounts() (enables, acks int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.irqEnables, v.irqAcks
}

// InjectFrame places a received PSDU, FCS included, in the frame buffer and
// raises TRX_END
func (v *VirtualRadio) InjectFrame(psdu []byte, lqi byte) {
	v.mu.Lock()
	defer v.mu.Unlock()
	n := copy(v.frameBuf[:], psdu)
	v.frameLen = byte(n)
	v.lqi = lqi
	v.raiseLocked(IRQTRXEnd)
}

// InjectMPDU is InjectFrame with a valid FCS appended to mpdu
func (v *VirtualRadio) InjectMPDU(mpdu []byte, lqi byte) {
	v.InjectFrame(ieee802154.AppendFCS(append([]byte(nil), mpdu...)), lqi)
}

// RaiseIRQ sets bits in IRQ_STATUS regardless of IRQ_MASK and signals an edge
func (v *VirtualRadio) RaiseIRQ(bits byte) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.regs[RegIRQStatus] |= bits
	v.signalLocked()
}

func (v *VirtualRadio) raiseLocked(bits byte) {
	v.regs[RegIRQStatus] |= bits & v.regs[RegIRQMask]
	v.signalLocked()
}

func (v *VirtualRadio) signalLocked() {
	select {
	case v.edges <- struct{}{}:
	default:
	}
}

// WaitForEdge blocks until an interrupt is raised or timeout expires.
// A negative timeout waits forever.
func (v *VirtualRadio) WaitForEdge(timeout time.Duration) bool {
	if timeout < 0 {
		<-v.edges
		return true
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-v.edges:
		return true
	case <-timer.C:
		return false
	}
}

// Configure records the bus settings
func (v *VirtualRadio) Configure(freq physic.Frequency, mode spi.Mode, bitsPerWord int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.busConfig = BusConfig{Frequency: freq, Mode: mode, BitsPerWord: bitsPerWord}
	v.configures++
	return nil
}

// Transfer decodes one byte of an SPI command
func (v *VirtualRadio) Transfer(b byte) (byte, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.transferErr != nil {
		return 0, v.transferErr
	}
	if !v.selected {
		return 0, ErrNotSelected
	}
	v.transfers++

	if v.mode == accessNone {
		v.mode = decodeCommand(b)
		v.address = b & 0x3F
		v.index = 0
		return 0, nil
	}

	defer func() { v.index++ }()
	switch v.mode {
	case accessRegisterRead:
		if v.index == 0 {
			return v.readRegisterLocked(v.address), nil
		}
	case accessRegisterWrite:
		if v.index == 0 {
			v.writeRegisterLocked(v.address, b)
		}
	case accessFrameRead:
		n := int(v.frameLen & 0x7F)
		switch {
		case v.index == 0:
			return v.frameLen, nil
		case v.index <= n:
			return v.frameBuf[v.index-1], nil
		case v.index == n+1:
			return v.lqi, nil
		}
	case accessFrameWrite:
		if v.index == 0 {
			v.frameLen = b
		} else if v.index-1 < len(v.frameBuf) {
			v.frameBuf[v.index-1] = b
		}
	case accessSRAMRead:
		if v.index == 0 {
			v.address = b
			return 0, nil
		}
		if i := int(v.address) + v.index - 1; i < len(v.frameBuf) {
			return v.frameBuf[i], nil
		}
	case accessSRAMWrite:
		if v.index == 0 {
			v.address = b
			return 0, nil
		}
		if i := int(v.address) + v.index - 1; i < len(v.frameBuf) {
			v.frameBuf[i] = b
		}
	}
	return 0, nil
}

func decodeCommand(b byte) accessMode {
	switch {
	case b&0xC0 == 0x80:
		return accessRegisterRead
	case b&0xC0 == 0xC0:
		return accessRegisterWrite
	case b&0xE0 == 0x20:
		return accessFrameRead
	case b&0xE0 == 0x60:
		return accessFrameWrite
	case b&0xE0 == 0x00:
		return accessSRAMRead
	default:
		return accessSRAMWrite
	}
}

func (v *VirtualRadio) readRegisterLocked(addr byte) byte {
	switch addr {
	case RegTRXStatus:
		if len(v.script) > 0 {
			code := v.script[0]
			v.script = v.script[1:]
			return code
		}
		v.advanceLocked()
		return v.state
	case RegIRQStatus:
		status := v.regs[RegIRQStatus]
		v.regs[RegIRQStatus] = 0
		return status
	default:
		return v.regs[addr]
	}
}

func (v *VirtualRadio) writeRegisterLocked(addr, value byte) {
	v.writes = append(v.writes, RegisterWrite{Address: addr, Value: value})
	switch addr {
	case RegTRXStatus, RegIRQStatus, RegPartNum:
	case RegTRXState:
		v.regs[addr] = value
		v.commandLocked(value & 0x1F)
	default:
		v.regs[addr] = value
	}
}

// advanceLocked moves an in-progress transition one poll closer to its end
func (v *VirtualRadio) advanceLocked() {
	if !isBusy(v.state) {
		return
	}
	if v.pending > 0 {
		v.pending--
		return
	}
	v.state = v.target
}

func (v *VirtualRadio) beginTransitionLocked(target byte) {
	if v.busyPolls == 0 {
		v.state = target
		return
	}
	v.state = StateTransitionInProgress
	v.target = target
	v.pending = v.busyPolls
}

func isBusy(code byte) bool {
	return code == StateBusyRX || code == StateBusyTX || code == StateTransitionInProgress
}

// commandLocked applies a TRX_CMD following the RF230 state diagram
func (v *VirtualRadio) commandLocked(cmd byte) {
	switch cmd {
	case StateForceTRXOff:
		if v.state != StateSleep {
			v.state = StateTRXOff
			v.pending = 0
		}
	case StateTRXOff:
		switch v.state {
		case StatePOn, StateRXOn, StatePLLOn:
			v.beginTransitionLocked(StateTRXOff)
		}
	case StateRXOn, StatePLLOn:
		switch v.state {
		case StateTRXOff, StateRXOn, StatePLLOn:
			if v.state != cmd {
				v.beginTransitionLocked(cmd)
			}
		}
	case CmdTXStart:
		if v.state == StatePLLOn {
			v.startTXLocked()
		}
	}
}

// startTXLocked transmits the frame buffer. Transmission completes at once:
// the radio returns to PLL_ON and raises TRX_END.
func (v *VirtualRadio) startTXLocked() {
	n := int(v.frameLen & 0x7F)
	if n >= 2 {
		n -= 2
	}
	v.sent = append(v.sent, append([]byte(nil), v.frameBuf[:n]...))
	v.txStarts++
	v.state = StatePLLOn
	v.raiseLocked(IRQTRXEnd)
}

func (v *VirtualRadio) setSelectLocked(l gpio.Level) {
	if l == gpio.Low {
		v.selectLows++
		v.selected = true
		v.mode = accessNone
		return
	}
	v.selectHighs++
	v.selected = false
	v.mode = accessNone
}

func (v *VirtualRadio) setControlLocked(l gpio.Level) {
	rising := l == gpio.High && v.control == gpio.Low
	falling := l == gpio.Low && v.control == gpio.High
	v.control = l
	switch {
	case rising && v.state == StatePLLOn:
		v.startTXLocked()
	case rising && v.state == StateTRXOff:
		v.state = StateSleep
	case rising && v.state == StateRXOn:
		v.state = StateRXOnNoClk
	case falling && v.state == StateSleep:
		v.state = StateTRXOff
	case falling && v.state == StateRXOnNoClk:
		v.state = StateRXOn
	}
}

func (v *VirtualRadio) setResetLocked(l gpio.Level) {
	if l == gpio.Low {
		v.resetRegisters()
		v.state = StateTRXOff
		v.pending = 0
		v.script = nil
	}
}

// Pin is one simulated control line
type Pin struct {
	radio *VirtualRadio
	set   func(*VirtualRadio, gpio.Level)
	level gpio.Level
}

// Out drives the line
func (p *Pin) Out(l gpio.Level) error {
	p.radio.mu.Lock()
	defer p.radio.mu.Unlock()
	if p.radio.pinErr != nil {
		return p.radio.pinErr
	}
	p.level = l
	p.set(p.radio, l)
	return nil
}

// SelectPin returns the SEL line
func (v *VirtualRadio) SelectPin() *Pin {
	return &Pin{radio: v, set: (*VirtualRadio).setSelectLocked, level: gpio.High}
}

// ControlPin returns the SLP_TR line
func (v *VirtualRadio) ControlPin() *Pin {
	return &Pin{radio: v, set: (*VirtualRadio).setControlLocked}
}

// ResetPin returns the RST line
func (v *VirtualRadio) ResetPin() *Pin {
	return &Pin{radio: v, set: (*VirtualRadio).setResetLocked, level: gpio.High}
}

// IRQLine is the simulated interrupt input
type IRQLine struct {
	radio *VirtualRadio
}

// IRQLine returns the interrupt input
func (v *VirtualRadio) IRQLine() *IRQLine {
	return &IRQLine{radio: v}
}

// Enable counts enable calls
func (l *IRQLine) Enable() error {
	l.radio.mu.Lock()
	defer l.radio.mu.Unlock()
	l.radio.irqEnables++
	return nil
}

// Acknowledge counts acknowledge calls
func (l *IRQLine) Acknowledge() error {
	l.radio.mu.Lock()
	defer l.radio.mu.Unlock()
	l.radio.irqAcks++
	return nil
}

// WaitForEdge waits for an interrupt
func (l *IRQLine) WaitForEdge(timeout time.Duration) bool {
	return l.radio.WaitForEdge(timeout)
}
