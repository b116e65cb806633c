/*
 * wondercore - Memory bus: WRAM, cartridge windows, owner arbitration
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

// Package membus implements the 20-bit physical address space: WRAM plus the
// cartridge SRAM/ROM/linear windows, and the CPU/DMA bus-ownership variant.
package membus

import "github.com/handheld-sim/wondercore/internal/cartridge"

// Owner identifies who may issue the next memory access.
type Owner int

const (
	OwnerNone Owner = iota
	OwnerCPU
	OwnerDMA
)

const (
	wramLowSize = 0x4000
	wramEnd     = 0x10000
)

// Bus is the 20-bit physical memory space.
type Bus struct {
	WRAM  [wramEnd]byte
	Cart  *cartridge.Cartridge
	Owner Owner
	Color bool // extended WRAM (0x4000-0xFFFF) only readable/writable in color mode
}

// AddressMask wraps an address to the 20-bit physical space.
const AddressMask = 0xFFFFF

// ReadByte reads one byte from the 20-bit physical address space.
func (b *Bus) ReadByte(phys uint32) uint8 {
	phys &= AddressMask
	switch {
	case phys < wramLowSize:
		return b.WRAM[phys]
	case phys < wramEnd:
		if !b.Color {
			return 0x90
		}
		return b.WRAM[phys]
	case phys < 0x20000:
		if b.Cart == nil {
			return 0x90
		}
		return b.Cart.ReadSRAM(phys - 0x10000)
	case phys < 0x30000:
		if b.Cart == nil {
			return 0x90
		}
		return b.Cart.ReadROM0(phys - 0x20000)
	case phys < 0x40000:
		if b.Cart == nil {
			return 0x90
		}
		return b.Cart.ReadROM1(phys - 0x30000)
	default:
		if b.Cart == nil {
			return 0x90
		}
		return b.Cart.ReadLinear(phys - 0x40000)
	}
}

// WriteByte writes one byte to the 20-bit physical address space.
func (b *Bus) WriteByte(phys uint32, value uint8) {
	phys &= AddressMask
	switch {
	case phys < wramLowSize:
		b.WRAM[phys] = value
	case phys < wramEnd:
		if b.Color {
			b.WRAM[phys] = value
		}
	case phys < 0x20000:
		if b.Cart != nil {
			b.Cart.WriteSRAM(phys-0x10000, value)
		}
	default:
		// ROM windows and the linear window are not writable.
	}
}

// InSRAMWindow reports whether phys falls in the cartridge SRAM window.
func InSRAMWindow(phys uint32) bool {
	return cartridge.InSRAMWindow(phys & AddressMask)
}
