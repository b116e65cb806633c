/*
 * wondercore - Per-port I/O bus read/write side effects
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package core

import (
	"github.com/handheld-sim/wondercore/internal/cartridge"
	"github.com/handheld-sim/wondercore/internal/iobus"
)

// Cartridge bank-register port assignment, taken from original_source's
// io_bus.rs read_io/write_io match arms (cart_ports.rs/bank_access.rs supply
// the read_ram_bank/write_ram_bank etc. bodies those arms call): 0xC0 is the
// linear-offset register, 0xC1/0xC2/0xC3 are the RAM/ROM0/ROM1 low-byte bank
// registers shared by both mappers, 0xCF shadows the linear offset. B_2003
// additionally exposes 16-bit banking through 0xD0-0xD5 as L/H pairs
// (RAM, ROM0, ROM1 in that order); B_2001 leaves those as open bus.
const (
	portCartLinearOff = 0xC0
	portCartRAMBankL  = 0xC1
	portCartROM0BankL = 0xC2
	portCartROM1BankL = 0xC3
	portCartCF        = 0xCF // linear-offset shadow, B_2003 only

	portCartRAMBankL16  = 0xD0
	portCartRAMBankH    = 0xD1
	portCartROM0BankL16 = 0xD2
	portCartROM0BankH   = 0xD3
	portCartROM1BankL16 = 0xD4
	portCartROM1BankH   = 0xD5
)

// InPort implements cpu.Bus / the console's port read path: decode the
// address, dispatch to the port's read contract, or return open-bus.
func (m *Machine) InPort(addr uint16) uint8 {
	port, ok := iobus.Decode(addr)
	if !ok {
		return iobus.OpenBusValue
	}
	return m.readPort(port)
}

// OutPort implements cpu.Bus / the console's port write path.
func (m *Machine) OutPort(addr uint16, value uint8) {
	port, ok := iobus.Decode(addr)
	if !ok {
		return
	}
	m.writePort(port, value)
}

func (m *Machine) readPort(port uint8) uint8 {
	switch {
	case port >= 0x20 && port <= 0x3F:
		return m.Port.Get(port) & scrLUTReadMask(port)
	case port == portGDMACtrl:
		v := m.Port.Get(port) & 0xC0
		m.Port.Set(port, 0)
		return v
	case port == portSysCtrl2:
		if !m.Mem.Color {
			return iobus.OpenBusValue
		}
		return m.Port.Get(port)
	case port == portIntEnable:
		return m.Port.Get(port) | 1<<6
	case port == portSerial:
		return 0x84
	case port == portIntCause:
		v := m.Port.Get(port)
		m.Port.Set(port, v&^0xF2)
		return v
	case port == portKeyScan:
		scanBits := m.Port.Get(port) & 0x70
		return m.Port.Get(port) | m.Keypad.Poll(scanBits)
	case port == portIntClear:
		return 0
	case port == portNMICtrl:
		m.Port.Set(port, m.Port.Get(port)&0x10)
		return m.Port.Get(port)
	case port == 0x4C, port == 0x50: // SDMA source/counter high: bits 4-7 undefined
		return m.Port.Get(port) & 0x0F
	case port == 0x4D, port == 0x51:
		return 0
	case port == portIEEPStat:
		return 0x83
	case port == portIEEPData0:
		return byte(m.IEEPROM.OutputLatch)
	case port == portIEEPData1:
		return byte(m.IEEPROM.OutputLatch >> 8)
	case port >= portCEEPData0 && port <= portCEEPTrig:
		if m.Cart.EEPROMBacked == nil {
			return iobus.OpenBusValue
		}
		return m.readCartEEPROM(port)
	case port == portCartLinearOff:
		return m.Cart.LinearOff
	case port == portCartRAMBankL:
		return m.Cart.Banks[cartridge.RAMBankL]
	case port == portCartROM0BankL:
		return m.Cart.Banks[cartridge.ROM0BankL]
	case port == portCartROM1BankL:
		return m.Cart.Banks[cartridge.ROM1BankL]
	case port == portCartCF:
		if m.Cart.Mapper != cartridge.B2003 {
			return iobus.OpenBusValue
		}
		return m.Cart.LinearOff
	case port == portCartRAMBankL16, port == portCartRAMBankH,
		port == portCartROM0BankL16, port == portCartROM0BankH,
		port == portCartROM1BankL16, port == portCartROM1BankH:
		if m.Cart.Mapper != cartridge.B2003 {
			return iobus.OpenBusValue
		}
		return m.cartBankHigh(port)
	default:
		return m.Port.Get(port)
	}
}

func (m *Machine) writePort(port uint8, value uint8) {
	switch {
	case port == 0x02:
		// LCD line counter, maintained by the display controller; read-only
	case port >= 0x20 && port <= 0x3F:
		m.Port.MaskWrite(port, value, 0x77)
	case port == portGDMASrcL:
		m.Port.MaskWrite(port, value, 0xFE)
	case port == portGDMASrcH:
		m.Port.MaskWrite(port, value, 0x0F)
	case port == portGDMADstL, port == portGDMACntL:
		m.Port.MaskWrite(port, value, 0xFE)
	case port == portGDMACtrl:
		m.Port.Set(port, value)
		if value&0x80 != 0 && m.Mem.Color {
			setup := m.GDMA.Trigger(&m.Port, m)
			if debugMsk&debugDMA != 0 {
				m.log.Debug("gdma trigger", "ctrl", value, "started", setup > 0)
			}
			if setup > 0 {
				m.Advance(setup)
			}
		}
	case port == portSDMACtrl:
		m.Port.Set(port, value)
		if value&0x80 != 0 && m.Mem.Color {
			m.SDMA.Trigger(&m.Port)
			m.sdmaTicksOwed = 0
			if debugMsk&debugDMA != 0 {
				m.log.Debug("sdma trigger", "ctrl", value)
			}
		}
	case port == portSysCtrl2:
		m.Port.Set(port, value)
	// Writing a HBLANK/VBLANK reload byte also loads the corresponding live
	// counter byte immediately (io_bus.rs's write_io 0xA4-0xA7 arms); the
	// live counter ports themselves are read-only.
	case port == portHBlankRldL:
		m.Port.Set(port, value)
		m.Port.Set(portHBlankCntL, value)
	case port == portHBlankRldH:
		m.Port.Set(port, value)
		m.Port.Set(portHBlankCntH, value)
	case port == portVBlankRldL:
		m.Port.Set(port, value)
		m.Port.Set(portVBlankCntL, value)
	case port == portVBlankRldH:
		m.Port.Set(port, value)
		m.Port.Set(portVBlankCntH, value)
	case port == portHBlankCntL, port == portHBlankCntH, port == portVBlankCntL, port == portVBlankCntH:
		// read-only live counters; writes have no effect
	case port == portIntEnable:
		m.Port.Set(port, value|1<<6)
	case port == portSerial:
		// write-only status register, ignored
	case port == portIntCause:
		// read-only; writes have no effect
	case port == portKeyScan:
		m.Port.Set(port, value)
		scanBits := value & 0x70
		poll := m.Keypad.Poll(scanBits)
		if poll != 0 {
			m.raiseIntCause(intCauseKey)
		}
	case port == portIntClear:
		m.Port.Set(portIntCause, m.Port.Get(portIntCause)&^value)
	case port == portNMICtrl:
		m.Port.Set(port, value&0x10)
	case port == portIEEPData0:
		m.IEEPROM.InputLatch = m.IEEPROM.InputLatch&0xFF00 | uint16(value)
	case port == portIEEPData1:
		m.IEEPROM.InputLatch = m.IEEPROM.InputLatch&0x00FF | uint16(value)<<8
	case port == portIEEPCmd0:
		m.ieepCmdLo = value
	case port == portIEEPCmd1:
		m.ieepCmdHi = value
	case port == portIEEPStat:
		m.Port.Set(port, value&0xF0)
		m.commitIEEPCommand(value)
	case port == portIEEPExtra:
		m.Port.Set(port, value)
	case port >= portCEEPData0 && port <= portCEEPTrig:
		m.writeCartEEPROM(port, value)
	case port == portCartLinearOff:
		m.Cart.LinearOff = value
	case port == portCartRAMBankL:
		m.Cart.Banks[cartridge.RAMBankL] = value
	case port == portCartROM0BankL:
		m.Cart.Banks[cartridge.ROM0BankL] = value
	case port == portCartROM1BankL:
		m.Cart.Banks[cartridge.ROM1BankL] = value
	case port == portCartCF:
		// write-only shadow of the linear-offset register; no side effect
	case port == portCartRAMBankL16:
		if m.Cart.Mapper == cartridge.B2003 {
			m.Cart.Banks[cartridge.RAMBankL] = value
		}
	case port == portCartRAMBankH:
		if m.Cart.Mapper == cartridge.B2003 {
			m.Cart.Banks[cartridge.RAMBankH] = value
		}
	case port == portCartROM0BankL16:
		if m.Cart.Mapper == cartridge.B2003 {
			m.Cart.Banks[cartridge.ROM0BankL] = value
		}
	case port == portCartROM0BankH:
		if m.Cart.Mapper == cartridge.B2003 {
			m.Cart.Banks[cartridge.ROM0BankH] = value
		}
	case port == portCartROM1BankL16:
		if m.Cart.Mapper == cartridge.B2003 {
			m.Cart.Banks[cartridge.ROM1BankL] = value
		}
	case port == portCartROM1BankH:
		if m.Cart.Mapper == cartridge.B2003 {
			m.Cart.Banks[cartridge.ROM1BankH] = value
		}
	default:
		m.Port.Set(port, value)
	}
}

// scrLUTReadMask implements §4.2's "masked to 0x77 (some to 0x70)": the even
// ports of 0x28-0x2E and 0x38-0x3E mask to 0x70, losing the low nibble,
// matching io_bus.rs's read_io SCR_LUT arms.
func scrLUTReadMask(port uint8) uint8 {
	if port&0x08 != 0 && port&1 == 0 {
		return 0x70
	}
	return 0x77
}

func (m *Machine) cartBankHigh(port uint8) uint8 {
	switch port {
	case portCartRAMBankL16:
		return m.Cart.Banks[cartridge.RAMBankL]
	case portCartRAMBankH:
		return m.Cart.Banks[cartridge.RAMBankH]
	case portCartROM0BankL16:
		return m.Cart.Banks[cartridge.ROM0BankL]
	case portCartROM0BankH:
		return m.Cart.Banks[cartridge.ROM0BankH]
	case portCartROM1BankL16:
		return m.Cart.Banks[cartridge.ROM1BankL]
	default:
		return m.Cart.Banks[cartridge.ROM1BankH]
	}
}

// Internal EEPROM command-port staging: ports 0xBC/0xBD stage the low/high
// command-latch bytes; the nibble written to 0xBE (portIEEPStat) selects the
// operation that commits them (§4.2 "nibble operation", §4.3, §8 scenario 6):
// 1 executes the command and makes the output latch readable through
// 0xBA/0xBB, 2 executes with the data latch staged through 0xBA/0xBB, 4
// executes the command alone. Any other nibble is ignored. ieepCmdLo/Hi live
// on Machine rather than eeprom.Device because they are I/O-bus staging
// registers, not part of the device's own state machine.
//
// Address validation (§4.3): operations other than nibble 1 targeting byte
// offset 0x60 or above are dropped whole, protecting the factory-set bytes
// from write and erase while leaving them readable.

func (m *Machine) commitIEEPCommand(value uint8) {
	op := value >> 4
	word := uint16(m.ieepCmdLo) | uint16(m.ieepCmdHi)<<8
	if op != 1 {
		mask := uint16(1)<<uint(m.IEEPROM.AddressBits) - 1
		if int(word&mask)*2 >= 0x60 {
			return
		}
	}
	switch op {
	case 1, 2, 4:
		m.IEEPROM.Command(word)
	}
}

// Cartridge EEPROM staging mirrors the internal device's: 0xC4/0xC5 are the
// data latch ports, 0xC6/0xC7 stage the command word, and the nibble written
// to 0xC8 selects the operation that commits it (§4.3), with no address
// guard — only the internal device protects factory bytes.
func (m *Machine) readCartEEPROM(port uint8) uint8 {
	dev := m.Cart.EEPROMBacked
	switch port {
	case portCEEPData0:
		return byte(dev.OutputLatch)
	case portCEEPData1:
		return byte(dev.OutputLatch >> 8)
	case portCEEPTrig:
		return 2 // always ready
	default:
		return m.Port.Get(port)
	}
}

func (m *Machine) writeCartEEPROM(port uint8, value uint8) {
	dev := m.Cart.EEPROMBacked
	if dev == nil {
		return
	}
	switch port {
	case portCEEPData0:
		dev.InputLatch = dev.InputLatch&0xFF00 | uint16(value)
	case portCEEPData1:
		dev.InputLatch = dev.InputLatch&0x00FF | uint16(value)<<8
	case portCEEPCmd0:
		m.ceepCmdLo = value
	case portCEEPCmd1:
		m.ceepCmdHi = value
	case portCEEPTrig:
		word := uint16(m.ceepCmdLo) | uint16(m.ceepCmdHi)<<8
		switch value >> 4 {
		case 1, 2, 4:
			dev.Command(word)
		}
	}
}
