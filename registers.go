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

import "fmt"

// Register describes one RF230 register
type Register struct {
	// Address is the 6-bit register address
	Address uint8
	// ResetValue is the value after hardware reset
	ResetValue uint8
	// ReservedMask has a 1 for every reserved bit. Reserved bits hold
	// trim values and must keep their reset value on every write.
	ReservedMask uint8
}

// CleanForWrite returns value with every reserved bit replaced by its reset value
func (r Register) CleanForWrite(value uint8) uint8 {
	return (value &^ r.ReservedMask) | (r.ResetValue & r.ReservedMask)
}

// ReadCommand returns the SPI command byte that reads the register
func (r Register) ReadCommand() byte {
	return cmdRegisterRead | r.Address&registerAddressMask
}

// WriteCommand returns the SPI command byte that writes the register
func (r Register) WriteCommand() byte {
	return cmdRegisterWrite | r.Address&registerAddressMask
}

// String returns the datasheet name of the register
func (r Register) String() string {
	if name, ok := registerNames[r.Address]; ok {
		return name
	}
	return fmt.Sprintf("REG_0x%02X", r.Address)
}

// Register map
var (
	RegTRXStatus  = Register{Address: 0x01, ResetValue: 0x00, ReservedMask: 0b00100000}
	RegTRXState   = Register{Address: 0x02, ResetValue: 0x00, ReservedMask: 0x00}
	RegTRXCtrl0   = Register{Address: 0x03, ResetValue: 0x19, ReservedMask: 0x00}
	RegPhyTxPwr   = Register{Address: 0x05, ResetValue: 0x00, ReservedMask: 0b01110000}
	RegPhyRSSI    = Register{Address: 0x06, ResetValue: 0x00, ReservedMask: 0b01100000}
	RegPhyEDLevel = Register{Address: 0x07, ResetValue: 0x00, ReservedMask: 0x00}
	RegPhyCCCCA   = Register{Address: 0x08, ResetValue: 0x2B, ReservedMask: 0x00}
	RegCCAThres   = Register{Address: 0x09, ResetValue: 0xC7, ReservedMask: 0b11110000}
	RegIRQMask    = Register{Address: 0x0E, ResetValue: 0xFF, ReservedMask: 0b00110000}
	RegIRQStatus  = Register{Address: 0x0F, ResetValue: 0x00, ReservedMask: 0b00110000}
	RegVRegCtrl   = Register{Address: 0x10, ResetValue: 0x00, ReservedMask: 0b00110011}
	RegBatMon     = Register{Address: 0x11, ResetValue: 0x02, ReservedMask: 0b11000000}
	RegXOSCCtrl   = Register{Address: 0x12, ResetValue: 0xF0, ReservedMask: 0x00}
	RegPLLCF      = Register{Address: 0x1A, ResetValue: 0x5F, ReservedMask: 0b01111111}
	RegPLLDCU     = Register{Address: 0x1B, ResetValue: 0x20, ReservedMask: 0b01111111}
	RegPartNum    = Register{Address: 0x1C, ResetValue: 0x02, ReservedMask: 0x00}
	RegVersionNum = Register{Address: 0x1D, ResetValue: 0x02, ReservedMask: 0x00}
	RegManID0     = Register{Address: 0x1E, ResetValue: 0x1F, ReservedMask: 0x00}
	RegManID1     = Register{Address: 0x1F, ResetValue: 0x00, ReservedMask: 0x00}
	RegShortAddr0 = Register{Address: 0x20, ResetValue: 0x00, ReservedMask: 0x00}
	RegShortAddr1 = Register{Address: 0x21, ResetValue: 0x00, ReservedMask: 0x00}
	RegPANID0     = Register{Address: 0x22, ResetValue: 0x00, ReservedMask: 0x00}
	RegPANID1     = Register{Address: 0x23, ResetValue: 0x00, ReservedMask: 0x00}
	RegIEEEAddr0  = Register{Address: 0x24, ResetValue: 0x00, ReservedMask: 0x00}
	RegIEEEAddr1  = Register{Address: 0x25, ResetValue: 0x00, ReservedMask: 0x00}
	RegIEEEAddr2  = Register{Address: 0x26, ResetValue: 0x00, ReservedMask: 0x00}
	RegIEEEAddr3  = Register{Address: 0x27, ResetValue: 0x00, ReservedMask: 0x00}
	RegIEEEAddr4  = Register{Address: 0x28, ResetValue: 0x00, ReservedMask: 0x00}
	RegIEEEAddr5  = Register{Address: 0x29, ResetValue: 0x00, ReservedMask: 0x00}
	RegIEEEAddr6  = Register{Address: 0x2A, ResetValue: 0x00, ReservedMask: 0x00}
	RegIEEEAddr7  = Register{Address: 0x2B, ResetValue: 0x00, ReservedMask: 0x00}
	RegXAHCtrl    = Register{Address: 0x2C, ResetValue: 0x38, ReservedMask: 0b00000001}
	RegCSMASeed0  = Register{Address: 0x2D, ResetValue: 0xEA, ReservedMask: 0x00}
	RegCSMASeed1  = Register{Address: 0x2E, ResetValue: 0xC2, ReservedMask: 0b00010000}
)

// IRQ_STATUS / IRQ_MASK bits
const (
	IRQPLLLock   = 1 << 0
	IRQPLLUnlock = 1 << 1
	IRQRXStart   = 1 << 2
	IRQTRXEnd    = 1 << 3
	IRQTRXUR     = 1 << 6 // frame buffer access violation
	IRQBatLow    = 1 << 7
)

// defaultIRQMask enables every interrupt source HandleInterrupt services
const defaultIRQMask = IRQPLLLock | IRQPLLUnlock | IRQRXStart | IRQTRXEnd | IRQTRXUR | IRQBatLow

// Other register fields
const (
	phyTxPwrAutoCRC = 1 << 7 // TX_AUTO_CRC_ON in PHY_TX_PWR
	trxStatusMask   = 0x1F   // TRX_STATUS field of the TRX_STATUS register
	// PartNumberRF230 is the PART_NUM value of an AT86RF230
	PartNumberRF230 = 0x02
)

var registerTable = []Register{
	RegTRXStatus, RegTRXState, RegTRXCtrl0, RegPhyTxPwr, RegPhyRSSI, RegPhyEDLevel,
	RegPhyCCCCA, RegCCAThres, RegIRQMask, RegIRQStatus, RegVRegCtrl, RegBatMon,
	RegXOSCCtrl, RegPLLCF, RegPLLDCU, RegPartNum, RegVersionNum, RegManID0, RegManID1,
	RegShortAddr0, RegShortAddr1, RegPANID0, RegPANID1,
	RegIEEEAddr0, RegIEEEAddr1, RegIEEEAddr2, RegIEEEAddr3,
	RegIEEEAddr4, RegIEEEAddr5, RegIEEEAddr6, RegIEEEAddr7,
	RegXAHCtrl, RegCSMASeed0, RegCSMASeed1,
}

var registerNames = map[uint8]string{
	0x01: "TRX_STATUS", 0x02: "TRX_STATE", 0x03: "TRX_CTRL_0", 0x05: "PHY_TX_PWR",
	0x06: "PHY_RSSI", 0x07: "PHY_ED_LEVEL", 0x08: "PHY_CC_CCA", 0x09: "CCA_THRES",
	0x0E: "IRQ_MASK", 0x0F: "IRQ_STATUS", 0x10: "VREG_CTRL", 0x11: "BATMON",
	0x12: "XOSC_CTRL", 0x1A: "PLL_CF", 0x1B: "PLL_DCU", 0x1C: "PART_NUM",
	0x1D: "VERSION_NUM", 0x1E: "MAN_ID_0", 0x1F: "MAN_ID_1",
	0x20: "SHORT_ADDR_0", 0x21: "SHORT_ADDR_1", 0x22: "PAN_ID_0", 0x23: "PAN_ID_1",
	0x24: "IEEE_ADDR_0", 0x25: "IEEE_ADDR_1", 0x26: "IEEE_ADDR_2", 0x27: "IEEE_ADDR_3",
	0x28: "IEEE_ADDR_4", 0x29: "IEEE_ADDR_5", 0x2A: "IEEE_ADDR_6", 0x2B: "IEEE_ADDR_7",
	0x2C: "XAH_CTRL", 0x2D: "CSMA_SEED_0", 0x2E: "CSMA_SEED_1",
}

// Registers returns every register in address order
func Registers() []Register {
	return append([]Register(nil), registerTable...)
}

// RegisterByAddress looks up a register by its address
func RegisterByAddress(address uint8) (Register, bool) {
	for _, r := range registerTable {
		if r.Address == address {
			return r, true
		}
	}
	return Register{}, false
}
