/*
 * wondercore - 3-wire serial EEPROM device test set
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

package eeprom

import "testing"

// command builds a command word the way the 3-wire latch presents it: a
// start bit above the opcode field, the opcode above the address field, and
// the address in the low AddressBits bits.
func command(addressBits, op, addr int) uint16 {
	start := uint16(1) << uint(addressBits+2)
	return start | uint16(op)<<uint(addressBits) | uint16(addr)
}

// Scenario 6: 10-bit internal EEPROM containing bytes [0x100]=0x34,
// [0x101]=0x12; a READ of addr=0x80 must return (0x34, 0x12), i.e.
// OutputLatch == 0x1234. addr=0x80 against a 10-bit address space names byte
// offset 0x100 (addr*2), not 0x440 — the bug this test pins down shifted the
// command latch right by 2 bits before masking, which put two opcode bits
// into the address and aimed every operation at the wrong offset.
func TestCommandReadScenario6(t *testing.T) {
	d := New(2048, 10)
	d.Contents[0x100] = 0x34
	d.Contents[0x101] = 0x12

	d.Command(command(10, OpRead, 0x80))

	if d.OutputLatch != 0x1234 {
		t.Errorf("OutputLatch = %#04x, want 0x1234", d.OutputLatch)
	}
}

func TestAddressMasksLowBitsOnly(t *testing.T) {
	d := New(2048, 10)
	// opcode READ (2) sits directly above the 10-bit address field; if
	// address() shifted instead of masking, this op bit would leak into
	// the computed address and the test below would fail.
	word := command(10, OpRead, 0x3FF)
	d.CommandLatch = word
	if got := d.address(); got != 0x3FF {
		t.Errorf("address() = %#x, want 0x3ff", got)
	}
	if got := d.opcode(); got != OpRead {
		t.Errorf("opcode() = %d, want %d", got, OpRead)
	}
}

func TestCommandWriteRoundTrip(t *testing.T) {
	d := New(128, 6)
	d.InputLatch = 0xBEEF
	d.Command(command(6, OpWrite, 5))

	if got := d.load(5); got != 0xBEEF {
		t.Errorf("load(5) = %#04x, want 0xbeef", got)
	}
	if d.Contents[10] != 0xEF || d.Contents[11] != 0xBE {
		t.Errorf("Contents[10:12] = %02x %02x, want ef be", d.Contents[10], d.Contents[11])
	}
}

// WRITE bypasses the protect guard (§4.3: the guard applies "if opcode !=
// 1"); of the other operations only ERASE consults it.
func TestCommandWriteBypassesGuard(t *testing.T) {
	d := New(128, 6)
	d.Guard = 4
	d.InputLatch = 0x1111
	d.Command(command(6, OpWrite, 5))

	if got := d.load(5); got != 0x1111 {
		t.Errorf("load(5) = %#04x, want 0x1111 (write must bypass guard)", got)
	}
}

func TestCommandEraseRespectsGuard(t *testing.T) {
	d := New(128, 6)
	for i := range d.Contents {
		d.Contents[i] = 0xAA
	}
	d.Guard = 4 // byte offset 4 == addr 2

	d.Command(command(6, OpErase, 2))
	if got := d.load(2); got != 0xAAAA {
		t.Errorf("load(2) = %#04x, want 0xaaaa (erase must respect guard)", got)
	}

	d.Command(command(6, OpErase, 1)) // byte offset 2, below the guard
	if got := d.load(1); got != 0xFFFF {
		t.Errorf("load(1) = %#04x, want 0xffff (erase below the guard must succeed)", got)
	}
}

func TestWriteDisableBlocksWriteAndErase(t *testing.T) {
	d := New(128, 6)
	d.Command(command(6, OpExtended, SubEWDS<<uint(6-2)))
	if d.WriteEnabled {
		t.Fatal("EWDS did not clear WriteEnabled")
	}

	d.InputLatch = 0x4242
	d.Command(command(6, OpWrite, 1))
	if got := d.load(1); got != 0xFFFF {
		t.Errorf("load(1) = %#04x, want 0xffff (write while disabled must be a no-op)", got)
	}

	d.Command(command(6, OpErase, 1))
	if got := d.load(1); got != 0xFFFF {
		t.Errorf("load(1) = %#04x after disabled erase, want unchanged 0xffff", got)
	}

	d.Command(command(6, OpExtended, SubEWEN<<uint(6-2)))
	if !d.WriteEnabled {
		t.Fatal("EWEN did not set WriteEnabled")
	}
	d.Command(command(6, OpWrite, 1))
	if got := d.load(1); got != 0x4242 {
		t.Errorf("load(1) = %#04x, want 0x4242 after re-enabling writes", got)
	}
}

func TestCommandEraseAll(t *testing.T) {
	d := New(16, 6)
	d.Contents[0] = 0x00
	d.Command(command(6, OpExtended, SubERAL<<uint(6-2)))
	for i, b := range d.Contents {
		if b != 0xFF {
			t.Fatalf("Contents[%d] = %#02x after ERAL, want 0xff", i, b)
		}
	}
}

func TestCommandWriteAll(t *testing.T) {
	d := New(16, 6)
	d.InputLatch = 0x1234
	d.Command(command(6, OpExtended, SubWRAL<<uint(6-2)))
	for i := 0; i+1 < len(d.Contents); i += 2 {
		if d.Contents[i] != 0x34 || d.Contents[i+1] != 0x12 {
			t.Fatalf("Contents[%d:%d] = %02x %02x, want 34 12", i, i+1, d.Contents[i], d.Contents[i+1])
		}
	}
}

// A command word with the start bit clear is a shift-only cycle with no
// side effect in this parallel-latch model.
func TestCommandWithoutStartBitIsNoOp(t *testing.T) {
	d := New(16, 6)
	d.InputLatch = 0xABCD
	d.Command(uint16(OpWrite) << 6) // start bit (bit 8) clear
	for i, b := range d.Contents {
		if b != 0 {
			t.Fatalf("Contents[%d] = %#02x, want untouched 0 (no start bit)", i, b)
		}
	}
}

func TestResetPreservesContents(t *testing.T) {
	d := New(16, 6)
	d.Contents[0] = 0x55
	d.WriteEnabled = false
	d.CommandLatch = 0xFFFF
	d.OutputLatch = 0xFFFF
	d.InputLatch = 0xFFFF

	d.Reset()

	if !d.WriteEnabled {
		t.Error("Reset did not re-enable writes")
	}
	if d.CommandLatch != 0 || d.OutputLatch != 0 || d.InputLatch != 0 {
		t.Error("Reset did not clear latches")
	}
	if d.Contents[0] != 0x55 {
		t.Error("Reset must not touch Contents")
	}
}
