/*
 * wondercore - Shift/rotate instruction family
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

package cpu

// shiftOp identifies one of the eight operations reachable through the
// 0xD0-0xD3 group escape (ModR/M reg field 0-7).
type shiftOp int

const (
	shROL shiftOp = iota
	shROR
	shRCL
	shRCR
	shSHL
	shSHR
	shSHLUndoc // reg==6 aliases SHL on the V30MZ, same as the 8086 family
	shSAR
)

// shift8/16 apply one shift/rotate step to v by count positions (count is
// masked the way the 8086 family masks it: mod 32, matching §4.1's "the
// shift count is taken modulo 32" note), updating C/O per-step and Z/S/P
// only for the final result (SHL/SHR/SAR) — rotates leave Z/S/P untouched,
// matching the classic contract the teacher's flag-adjacent ops preserve.
func (c *CPU) shift8(op shiftOp, v uint8, count uint8) uint8 {
	count &= 0x1F
	if count == 0 {
		return v
	}
	r := v
	var lastCarry bool
	for i := uint8(0); i < count; i++ {
		switch op {
		case shROL:
			lastCarry = r&0x80 != 0
			r = r<<1 | b2u8(lastCarry)
		case shROR:
			lastCarry = r&1 != 0
			r = r>>1 | b2u8(lastCarry)<<7
		case shRCL:
			in := b2u8(c.flag(FlagC))
			lastCarry = r&0x80 != 0
			r = r<<1 | in
			c.setFlag(FlagC, lastCarry)
		case shRCR:
			in := b2u8(c.flag(FlagC))
			lastCarry = r&1 != 0
			r = r>>1 | in<<7
			c.setFlag(FlagC, lastCarry)
		case shSHL, shSHLUndoc:
			lastCarry = r&0x80 != 0
			r <<= 1
		case shSHR:
			lastCarry = r&1 != 0
			r >>= 1
		case shSAR:
			lastCarry = r&1 != 0
			r = uint8(int8(r) >> 1)
		}
	}
	switch op {
	case shROL, shROR:
		c.setFlag(FlagC, lastCarry)
	case shSHL, shSHLUndoc, shSHR, shSAR:
		c.setFlag(FlagC, lastCarry)
		c.updateFlagsLogic8(r)
		c.setFlag(FlagC, lastCarry)
	}
	if count == 1 {
		switch op {
		case shROL, shRCL:
			c.setFlag(FlagV, (r&0x80 != 0) != c.flag(FlagC))
		case shROR, shRCR:
			c.setFlag(FlagV, (r&0x80 != 0) != (r&0x40 != 0))
		case shSHL, shSHLUndoc:
			c.setFlag(FlagV, (r&0x80 != 0) != c.flag(FlagC))
		case shSAR:
			c.setFlag(FlagV, false)
		}
	}
	return r
}

func (c *CPU) shift16(op shiftOp, v uint16, count uint8) uint16 {
	count &= 0x1F
	if count == 0 {
		return v
	}
	r := v
	var lastCarry bool
	for i := uint8(0); i < count; i++ {
		switch op {
		case shROL:
			lastCarry = r&0x8000 != 0
			r = r<<1 | uint16(b2u8(lastCarry))
		case shROR:
			lastCarry = r&1 != 0
			r = r>>1 | uint16(b2u8(lastCarry))<<15
		case shRCL:
			in := uint16(b2u8(c.flag(FlagC)))
			lastCarry = r&0x8000 != 0
			r = r<<1 | in
			c.setFlag(FlagC, lastCarry)
		case shRCR:
			in := uint16(b2u8(c.flag(FlagC)))
			lastCarry = r&1 != 0
			r = r>>1 | in<<15
			c.setFlag(FlagC, lastCarry)
		case shSHL, shSHLUndoc:
			lastCarry = r&0x8000 != 0
			r <<= 1
		case shSHR:
			lastCarry = r&1 != 0
			r >>= 1
		case shSAR:
			lastCarry = r&1 != 0
			r = uint16(int16(r) >> 1)
		}
	}
	switch op {
	case shROL, shROR:
		c.setFlag(FlagC, lastCarry)
	case shSHL, shSHLUndoc, shSHR, shSAR:
		c.setFlag(FlagC, lastCarry)
		c.updateFlagsLogic16(r)
		c.setFlag(FlagC, lastCarry)
	}
	if count == 1 {
		switch op {
		case shROL, shRCL, shSHL, shSHLUndoc:
			c.setFlag(FlagV, (r&0x8000 != 0) != c.flag(FlagC))
		case shROR, shRCR:
			c.setFlag(FlagV, (r&0x8000 != 0) != (r&0x4000 != 0))
		case shSAR:
			c.setFlag(FlagV, false)
		}
	}
	return r
}

func b2u8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// execShiftRM8/16 implement the 0xD0-0xD3 group escape: D0/D1 shift by 1,
// D2/D3 shift by CL.
func (c *CPU) execShiftRM8(m modrm, byCL bool) {
	count := uint8(1)
	if byCL {
		count = c.getReg8(RegCL)
		c.cycles += 4 * int(count)
	}
	r := c.shift8(shiftOp(m.reg), c.readRM8(m), count)
	c.writeRM8(m, r)
}

func (c *CPU) execShiftRM16(m modrm, byCL bool) {
	count := uint8(1)
	if byCL {
		count = c.getReg8(RegCL)
		c.cycles += 4 * int(count)
	}
	r := c.shift16(shiftOp(m.reg), c.readRM16(m), count)
	c.writeRM16(m, r)
}

// execShiftRMImm8/16 implement the 0xC0/0xC1 group escape: the shift count
// is an immediate byte following the ModR/M encoding.
func (c *CPU) execShiftRMImm8(m modrm) {
	count := c.fetchByte()
	c.cycles += int(count & 0x1F)
	r := c.shift8(shiftOp(m.reg), c.readRM8(m), count)
	c.writeRM8(m, r)
}

func (c *CPU) execShiftRMImm16(m modrm) {
	count := c.fetchByte()
	c.cycles += int(count & 0x1F)
	r := c.shift16(shiftOp(m.reg), c.readRM16(m), count)
	c.writeRM16(m, r)
}

// execTestRM8/16 implements TEST r/m, r (no result write-back).
func (c *CPU) execTestRM8(m modrm) {
	r := c.readRM8(m) & c.getReg8(m.reg)
	c.updateFlagsLogic8(r)
}

func (c *CPU) execTestRM16(m modrm) {
	r := c.readRM16(m) & *c.reg16(m.reg)
	c.updateFlagsLogic16(r)
}

func (c *CPU) execTestAccImm8() {
	imm := c.fetchByte()
	c.updateFlagsLogic8(c.getReg8(RegAL) & imm)
}

func (c *CPU) execTestAccImm16() {
	imm := c.fetchWord()
	c.updateFlagsLogic16(c.AW & imm)
}

// execNotNeg implements the NOT/NEG forms of the 0xF6/0xF7 group escape.
func (c *CPU) execNot8(m modrm)  { c.writeRM8(m, ^c.readRM8(m)) }
func (c *CPU) execNot16(m modrm) { c.writeRM16(m, ^c.readRM16(m)) }

func (c *CPU) execNeg8(m modrm) {
	v := c.readRM8(m)
	r := c.updateFlagsSub8(0, uint16(v), 0)
	c.setFlag(FlagC, v != 0)
	c.writeRM8(m, r)
}

func (c *CPU) execNeg16(m modrm) {
	v := c.readRM16(m)
	r := c.updateFlagsSub16(0, uint32(v), 0)
	c.setFlag(FlagC, v != 0)
	c.writeRM16(m, r)
}
