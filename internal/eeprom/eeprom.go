/*
 * wondercore - 3-wire serial EEPROM device
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

// Package eeprom implements the 3-wire serial EEPROM state machine shared by
// the internal device and the optional cartridge EEPROM.
package eeprom

// Opcode is the 2-bit operation carried in the command latch.
const (
	OpExtended = 0 // sub-op selects EWDS/WRAL/ERAL/EWEN
	OpWrite    = 1
	OpRead     = 2
	OpErase    = 3
)

// Extended sub-operations, valid only when Opcode == OpExtended.
const (
	SubEWDS = 0 // disable writes
	SubWRAL = 1 // write all
	SubERAL = 2 // erase all
	SubEWEN = 3 // enable writes
)

// Device is a parallel-latch presentation of a 3-wire serial EEPROM.
type Device struct {
	Contents     []byte // backing storage, byte-addressed
	AddressBits  int    // 6 or 10
	InputLatch   uint16
	OutputLatch  uint16
	CommandLatch uint16
	WriteEnabled bool
	// Guard makes ERASE ignore addresses at or above the given byte offset;
	// WRITE bypasses it and WRAL/ERAL fill the whole array without
	// consulting it. Used by the internal EEPROM to protect factory-set
	// bytes. Zero disables the guard.
	Guard int
}

// New builds a Device with the given backing size and address width. Write
// enable is reset to true, matching the reinit behavior the device presents
// across power cycles.
func New(size int, addressBits int) *Device {
	return &Device{
		Contents:     make([]byte, size),
		AddressBits:  addressBits,
		WriteEnabled: true,
	}
}

// Reset clears the latches and re-enables writes, leaving Contents untouched
// (the EEPROM's storage is persistent across power cycles; only the
// write-enable flag resets).
func (d *Device) Reset() {
	d.InputLatch = 0
	d.OutputLatch = 0
	d.CommandLatch = 0
	d.WriteEnabled = true
}

func (d *Device) startBit() uint16 {
	return 1 << uint(d.AddressBits+2)
}

// address extracts the low AddressBits bits of the command latch (§4.3, §3;
// confirmed against original_source/src/bus/io_bus/eeprom.rs's write_comm:
// `(comm & ((1 << address_bits) - 1))`), not a shifted field — the address
// occupies the bottom of the word, below the opcode and start bit.
func (d *Device) address() int {
	return int(d.CommandLatch & ((1 << uint(d.AddressBits)) - 1))
}

func (d *Device) opcode() int {
	return int((d.CommandLatch >> uint(d.AddressBits+0)) & 0x3)
}

func (d *Device) subop() int {
	return int((d.CommandLatch >> uint(d.AddressBits-2)) & 0x3)
}

// Command latches a new command word and performs its side effect
// immediately (the device has no multi-cycle shift-register timing in this
// model; the command arrives fully formed through the parallel latch).
func (d *Device) Command(word uint16) {
	d.CommandLatch = word

	if word&d.startBit() == 0 {
		return
	}

	addr := d.address()
	op := d.opcode()

	switch op {
	case OpExtended:
		switch d.subop() {
		case SubEWDS:
			d.WriteEnabled = false
		case SubEWEN:
			d.WriteEnabled = true
		case SubERAL:
			if d.WriteEnabled {
				for i := range d.Contents {
					d.Contents[i] = 0xFF
				}
			}
		case SubWRAL:
			if d.WriteEnabled {
				lo := byte(d.InputLatch)
				hi := byte(d.InputLatch >> 8)
				for i := 0; i+1 < len(d.Contents); i += 2 {
					d.Contents[i] = lo
					d.Contents[i+1] = hi
				}
			}
		}
	case OpWrite:
		if !d.WriteEnabled {
			return
		}
		// WRITE always bypasses Guard (§4.3: the guard only applies "if
		// opcode != 1"); of the other operations only ERASE consults it.
		d.storeRaw(addr, d.InputLatch)
	case OpRead:
		d.OutputLatch = d.load(addr)
	case OpErase:
		if !d.WriteEnabled {
			return
		}
		d.store(addr, 0xFFFF)
	}
}

func (d *Device) store(addr int, value uint16) {
	off := addr * 2
	if d.Guard > 0 && off >= d.Guard {
		return
	}
	d.storeRaw(addr, value)
}

func (d *Device) storeRaw(addr int, value uint16) {
	off := addr * 2
	if off+1 >= len(d.Contents) {
		return
	}
	d.Contents[off] = byte(value)
	d.Contents[off+1] = byte(value >> 8)
}

func (d *Device) load(addr int) uint16 {
	off := addr * 2
	if off+1 >= len(d.Contents) {
		return 0xFFFF
	}
	return uint16(d.Contents[off]) | uint16(d.Contents[off+1])<<8
}
