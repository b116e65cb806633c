/*
 * wondercore - Cartridge ROM/SRAM and bank-register mapper
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

// Package cartridge parses the ROM footer, holds ROM/SRAM backing storage,
// and resolves the bank registers for the two mapper variants.
package cartridge

import (
	"errors"
	"fmt"

	"github.com/handheld-sim/wondercore/internal/eeprom"
)

// Mapper selects the cartridge's address-translation discipline.
type Mapper int

const (
	B2001 Mapper = iota // 8-bit bank registers
	B2003               // 16-bit combined bank registers
)

// Bank register indices.
const (
	RAMBankL = iota
	RAMBankH
	ROM0BankL
	ROM0BankH
	ROM1BankL
	ROM1BankH
	numBanks
)

const footerSize = 16

// Cartridge is the banked ROM + optional SRAM/EEPROM backing a game.
type Cartridge struct {
	ROM    []byte
	SRAM   []byte
	Mapper Mapper

	Banks     [numBanks]uint8
	LinearOff uint8

	Color       bool
	Rewritable  bool
	EEPROMBacked *eeprom.Device // nil unless the footer selects EEPROM save backing

	romBanks  int
	sramBanks int
}

// Reset puts the bank registers back to their power-on value (0xFF).
func (c *Cartridge) Reset() {
	for i := range c.Banks {
		c.Banks[i] = 0xFF
	}
	c.LinearOff = 0
}

// Load parses a ROM's 16-byte footer and constructs a Cartridge. save is the
// save-file contents if one existed on disk, or nil if it must be zero-filled.
func Load(rom []byte, save []byte) (*Cartridge, error) {
	if len(rom) < footerSize {
		return nil, errors.New("cartridge: ROM too small to contain a footer")
	}
	footer := rom[len(rom)-footerSize:]

	c := &Cartridge{ROM: rom}
	c.Color = footer[0x7]&0x01 != 0

	switch footer[0xD] {
	case 0:
		c.Mapper = B2001
	case 1:
		c.Mapper = B2003
	default:
		return nil, fmt.Errorf("cartridge: unsupported mapper id %#x", footer[0xD])
	}

	saveSize, eepromBits, err := saveLayout(footer[0xB])
	if err != nil {
		return nil, err
	}

	switch {
	case eepromBits > 0:
		c.Rewritable = false
		dev := eeprom.New(saveSize, eepromBits)
		if len(save) > 0 {
			copy(dev.Contents, save)
		}
		c.EEPROMBacked = dev
	case saveSize > 0:
		c.Rewritable = true
		c.SRAM = make([]byte, saveSize)
		if len(save) > 0 {
			copy(c.SRAM, save)
		}
	default:
		c.Rewritable = true
		c.SRAM = nil
	}

	c.romBanks = bankCount(len(c.ROM))
	c.sramBanks = bankCount(len(c.SRAM))
	c.Reset()
	return c, nil
}

func bankCount(size int) int {
	const bankSize = 0x10000
	if size == 0 {
		return 0
	}
	n := size / bankSize
	if n == 0 {
		n = 1
	}
	return n
}

func saveLayout(b byte) (size int, eepromBits int, err error) {
	switch b {
	case 0x00:
		return 0, 0, nil
	case 0x01, 0x02:
		return 32 * 1024, 0, nil
	case 0x03:
		return 128 * 1024, 0, nil
	case 0x04:
		return 256 * 1024, 0, nil
	case 0x05:
		return 512 * 1024, 0, nil
	case 0x10:
		return 128, 6, nil
	case 0x20:
		return 2 * 1024, 10, nil
	case 0x50:
		return 1024, 10, nil
	default:
		return 0, 0, fmt.Errorf("cartridge: unsupported save type %#x", b)
	}
}

// bankIndex resolves an 8-bit or 16-bit bank register pair per the mapper
// variant, wrapped modulo the number of available banks.
func (c *Cartridge) bankIndex(lo, hi uint8, banks int) int {
	var idx int
	switch c.Mapper {
	case B2001:
		idx = int(lo)
	case B2003:
		idx = int(hi)<<8 | int(lo)
	}
	if banks == 0 {
		return 0
	}
	return idx % banks
}

// ReadROM0 reads a byte from the ROM-bank-0 window (physical 0x20000-0x2FFFF).
func (c *Cartridge) ReadROM0(offset uint32) uint8 {
	return c.readROMBank(c.Banks[ROM0BankL], c.Banks[ROM0BankH], offset)
}

// ReadROM1 reads a byte from the ROM-bank-1 window (physical 0x30000-0x3FFFF).
func (c *Cartridge) ReadROM1(offset uint32) uint8 {
	return c.readROMBank(c.Banks[ROM1BankL], c.Banks[ROM1BankH], offset)
}

func (c *Cartridge) readROMBank(lo, hi uint8, offset uint32) uint8 {
	if c.romBanks == 0 {
		return 0x90
	}
	bank := c.bankIndex(lo, hi, c.romBanks)
	addr := bank*0x10000 + int(offset)
	if addr >= len(c.ROM) {
		return 0x90
	}
	return c.ROM[addr]
}

// ReadLinear reads a byte from the linear-ROM window (physical
// 0x40000-0xFFFFF), address = ((linear_off<<20) + (phys-0x40000)) mod ROM size.
func (c *Cartridge) ReadLinear(physOffsetFrom0x40000 uint32) uint8 {
	if len(c.ROM) == 0 {
		return 0x90
	}
	addr := (uint64(c.LinearOff)<<20 + uint64(physOffsetFrom0x40000)) % uint64(len(c.ROM))
	return c.ROM[addr]
}

// ReadSRAM reads a byte from the SRAM window (physical 0x10000-0x1FFFF).
// EEPROM-backed cartridges and cartridges without SRAM read as open bus (0x90).
func (c *Cartridge) ReadSRAM(offset uint32) uint8 {
	if c.EEPROMBacked != nil {
		return 0x90
	}
	if c.sramBanks == 0 {
		return 0x90
	}
	bank := c.bankIndex(c.Banks[RAMBankL], c.Banks[RAMBankH], c.sramBanks)
	addr := bank*0x10000 + int(offset)
	if addr >= len(c.SRAM) {
		return 0x90
	}
	return c.SRAM[addr]
}

// WriteSRAM writes a byte to the SRAM window. Writes are dropped when the
// cartridge is non-rewritable, EEPROM-backed, or has no SRAM banks.
func (c *Cartridge) WriteSRAM(offset uint32, value uint8) {
	if !c.Rewritable || c.EEPROMBacked != nil {
		return
	}
	if c.sramBanks == 0 {
		return
	}
	bank := c.bankIndex(c.Banks[RAMBankL], c.Banks[RAMBankH], c.sramBanks)
	addr := bank*0x10000 + int(offset)
	if addr >= len(c.SRAM) {
		return
	}
	c.SRAM[addr] = value
}

// InSRAMWindow reports whether a 20-bit physical address falls in the
// cartridge SRAM window, used by the DMA engines to abort on entry.
func InSRAMWindow(phys uint32) bool {
	return phys >= 0x10000 && phys <= 0x1FFFF
}
