/*
 * wondercore - I/O bus port file and open-bus address decode
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

// Package iobus holds the 256-entry port register file and the open-bus
// address decode rule. Per-port read/write side effects that need knowledge
// of other devices (EEPROM, keypad, DMA, cartridge) live on the Machine that
// owns a Ports value, per the centralized-state design this codebase follows.
package iobus

// OpenBusValue is returned on any open-bus read and is the value discarded on
// any open-bus write.
const OpenBusValue = 0x90

// Ports is the raw 256-byte port register file.
type Ports struct {
	Regs [256]byte
}

// Decode applies the open-bus addressing rule: a 16-bit port address is
// open-bus if bit 8 is set. A register-indexed access (addr above 0xFF, as
// with IN AL, DX when DX carries more than a byte) additionally mirrors to
// open-bus once the low-byte port exceeds 0xB8. On a valid access it returns
// the port index and ok=true.
func Decode(addr uint16) (port uint8, ok bool) {
	if addr&0x100 != 0 {
		return 0, false
	}
	port = uint8(addr)
	if addr > 0xFF && port > 0xB8 {
		return 0, false
	}
	return port, true
}

// Get returns the raw stored byte at port, without applying any read-side
// masking or side effects.
func (p *Ports) Get(port uint8) byte {
	return p.Regs[port]
}

// Set stores a raw byte at port, without applying any write-side masking or
// side effects.
func (p *Ports) Set(port uint8, value byte) {
	p.Regs[port] = value
}

// MaskWrite stores value&mask at port and returns the stored byte, the shape
// used by the generic masked-register ports (palette LUTs, GDMA address
// registers) that have no further side effect beyond masking.
func (p *Ports) MaskWrite(port uint8, value, mask byte) byte {
	p.Regs[port] = value & mask
	return p.Regs[port]
}
