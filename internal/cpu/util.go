/*
 * wondercore - Register aliasing, ModR/M resolution, flag helpers
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

import "log/slog"

// inPort/outPort wrap the Bus port accessors with the IO trace gate.
func (c *CPU) inPort(port uint16) uint8 {
	v := c.Bus.InPort(port)
	if debugMsk&debugIO != 0 {
		slog.Debug("in", "port", port, "value", v)
	}
	return v
}

func (c *CPU) outPort(port uint16, v uint8) {
	if debugMsk&debugIO != 0 {
		slog.Debug("out", "port", port, "value", v)
	}
	c.Bus.OutPort(port, v)
}

// reg16 returns a pointer to the 16-bit general register named by index, so
// that writes update both halves atomically (§9 register aliasing).
func (c *CPU) reg16(index uint8) *uint16 {
	switch index & 7 {
	case RegAW:
		return &c.AW
	case RegCW:
		return &c.CW
	case RegDW:
		return &c.DW
	case RegBW:
		return &c.BW
	case RegSP:
		return &c.SP
	case RegBP:
		return &c.BP
	case RegIX:
		return &c.IX
	default:
		return &c.IY
	}
}

// getReg8/setReg8 expose the eight 8-bit halves as views over the four
// 16-bit registers: writing AL must leave AH intact and vice versa.
func (c *CPU) getReg8(index uint8) uint8 {
	switch index & 7 {
	case RegAL:
		return uint8(c.AW)
	case RegCL:
		return uint8(c.CW)
	case RegDL:
		return uint8(c.DW)
	case RegBL:
		return uint8(c.BW)
	case RegAH:
		return uint8(c.AW >> 8)
	case RegCH:
		return uint8(c.CW >> 8)
	case RegDH:
		return uint8(c.DW >> 8)
	default:
		return uint8(c.BW >> 8)
	}
}

func (c *CPU) setReg8(index uint8, v uint8) {
	switch index & 7 {
	case RegAL:
		c.AW = c.AW&0xFF00 | uint16(v)
	case RegCL:
		c.CW = c.CW&0xFF00 | uint16(v)
	case RegDL:
		c.DW = c.DW&0xFF00 | uint16(v)
	case RegBL:
		c.BW = c.BW&0xFF00 | uint16(v)
	case RegAH:
		c.AW = c.AW&0x00FF | uint16(v)<<8
	case RegCH:
		c.CW = c.CW&0x00FF | uint16(v)<<8
	case RegDH:
		c.DW = c.DW&0x00FF | uint16(v)<<8
	default:
		c.BW = c.BW&0x00FF | uint16(v)<<8
	}
}

// modrm is the decoded second instruction byte plus whatever displacement
// followed it.
type modrm struct {
	mod     uint8
	reg     uint8
	rm      uint8
	isReg   bool
	offset  uint16 // valid when !isReg
	seg     int    // default/overridden segment for the memory operand
	eaCost  int    // effective-address cycle penalty, §4.1
	dispLen int    // bytes of displacement consumed, for cycle/length bookkeeping
}

// baseExpr evaluates the r/m base expression table in §4.1.
func (c *CPU) baseExpr(rm uint8) (value uint16, usesBP bool) {
	switch rm {
	case 0:
		return c.BW + c.IX, false
	case 1:
		return c.BW + c.IY, false
	case 2:
		return c.BP + c.IX, true
	case 3:
		return c.BP + c.IY, true
	case 4:
		return c.IX, false
	case 5:
		return c.IY, false
	case 6:
		return c.BP, true
	default:
		return c.BW, false
	}
}

// fetchModRM decodes a ModR/M byte at PC, consuming it and any displacement.
func (c *CPU) fetchModRM() modrm {
	b := c.fetchByte()
	m := modrm{mod: b >> 6, reg: (b >> 3) & 7, rm: b & 7}

	if m.mod == 3 {
		m.isReg = true
		return m
	}

	base, usesBP := c.baseExpr(m.rm)
	m.seg = SegDS0
	if usesBP {
		m.seg = SegSS
	}

	switch {
	case m.mod == 0 && m.rm == 6:
		m.offset = c.fetchWord()
		m.seg = SegDS0
		m.dispLen = 2
		m.eaCost = 6
	case m.mod == 0:
		m.offset = base
		m.eaCost = c.eaCostFor(m.rm, 0)
	case m.mod == 1:
		disp := int16(int8(c.fetchByte()))
		m.offset = base + uint16(disp)
		m.dispLen = 1
		m.eaCost = c.eaCostFor(m.rm, 1)
	case m.mod == 2:
		disp := int16(c.fetchWord())
		m.offset = base + uint16(disp)
		m.dispLen = 2
		m.eaCost = c.eaCostFor(m.rm, 1)
	}

	if c.override.active {
		m.seg = c.override.seg
	}

	c.cycles += m.eaCost
	return m
}

// eaCostFor returns the effective-address cycle penalty (§4.1): 5 for
// base-only, 7 for base+displacement, 8 for base+index, 9 for
// base+index+displacement. rm values 4-7 (IX, IY, BP, BW alone) are
// base-only; 0-3 combine a base register with an index register.
func (c *CPU) eaCostFor(rm uint8, dispBytes int) int {
	baseOnly := rm >= 4
	switch {
	case baseOnly && dispBytes == 0:
		return 5
	case baseOnly && dispBytes > 0:
		return 7
	case dispBytes == 0:
		return 8
	default:
		return 9
	}
}

func (c *CPU) segValue(m modrm) uint16 {
	return c.Segs[m.seg]
}

// readRM8/writeRM8/readRM16/writeRM16 dereference a decoded ModR/M operand.
func (c *CPU) readRM8(m modrm) uint8 {
	if m.isReg {
		return c.getReg8(m.rm)
	}
	return c.Bus.ReadByte(c.physical(c.segValue(m), m.offset))
}

func (c *CPU) writeRM8(m modrm, v uint8) {
	if m.isReg {
		c.setReg8(m.rm, v)
		return
	}
	c.Bus.WriteByte(c.physical(c.segValue(m), m.offset), v)
}

func (c *CPU) readRM16(m modrm) uint16 {
	if m.isReg {
		return *c.reg16(m.rm)
	}
	phys := c.physical(c.segValue(m), m.offset)
	lo := c.Bus.ReadByte(phys)
	hi := c.Bus.ReadByte((phys + 1) & 0xFFFFF)
	return uint16(lo) | uint16(hi)<<8
}

func (c *CPU) writeRM16(m modrm, v uint16) {
	if m.isReg {
		*c.reg16(m.rm) = v
		return
	}
	phys := c.physical(c.segValue(m), m.offset)
	c.Bus.WriteByte(phys, uint8(v))
	c.Bus.WriteByte((phys+1)&0xFFFFF, uint8(v>>8))
}

// fetchByte/fetchWord read the next instruction byte(s) at PC and advance it;
// per §4.1 a fetch that crosses a segment boundary simply wraps the 16-bit
// offset without changing the segment.
func (c *CPU) fetchByte() uint8 {
	v := c.Bus.ReadByte(c.physical(c.Segs[SegPS], c.PC))
	c.PC++
	return v
}

func (c *CPU) fetchWord() uint16 {
	lo := c.fetchByte()
	hi := c.fetchByte()
	return uint16(lo) | uint16(hi)<<8
}

// push predecrements SP by 2 and stores into segment SS (§4.1 Stack).
func (c *CPU) push(v uint16) {
	c.SP -= 2
	phys := c.physical(c.Segs[SegSS], c.SP)
	c.Bus.WriteByte(phys, uint8(v))
	c.Bus.WriteByte((phys+1)&0xFFFFF, uint8(v>>8))
}

// pop reads from segment SS then postincrements SP by 2.
func (c *CPU) pop() uint16 {
	phys := c.physical(c.Segs[SegSS], c.SP)
	lo := c.Bus.ReadByte(phys)
	hi := c.Bus.ReadByte((phys + 1) & 0xFFFFF)
	c.SP += 2
	return uint16(lo) | uint16(hi)<<8
}

// updateFlagsAdd8/16 implement the §4.1 add flag contract.
func (c *CPU) updateFlagsAdd8(a, b uint16, cin uint16) uint8 {
	r := a + b + cin
	c.setFlag(FlagZ, r&0xFF == 0)
	c.setFlag(FlagS, r&0x80 != 0)
	c.setFlag(FlagC, r > 0xFF)
	c.setFlag(FlagH, (a&0xF)+(b&0xF)+cin > 0xF)
	c.setFlag(FlagV, (a^r)&(b^r)&0x80 != 0)
	c.setFlag(FlagP, parity(uint8(r)))
	return uint8(r)
}

func (c *CPU) updateFlagsAdd16(a, b uint32, cin uint32) uint16 {
	r := a + b + cin
	c.setFlag(FlagZ, r&0xFFFF == 0)
	c.setFlag(FlagS, r&0x8000 != 0)
	c.setFlag(FlagC, r > 0xFFFF)
	c.setFlag(FlagH, (a&0xF)+(b&0xF)+cin > 0xF)
	c.setFlag(FlagV, (a^r)&(b^r)&0x8000 != 0)
	c.setFlag(FlagP, parity(uint8(r)))
	return uint16(r)
}

// updateFlagsSub8/16 implement the §4.1 subtract flag contract: a-b-cin.
func (c *CPU) updateFlagsSub8(a, b uint16, cin uint16) uint8 {
	r := a - b - cin
	c.setFlag(FlagC, a < b+cin)
	c.setFlag(FlagH, (a&0xF) < (b&0xF)+cin)
	c.setFlag(FlagV, (a^b)&(a^r)&0x80 != 0)
	c.setFlag(FlagZ, r&0xFF == 0)
	c.setFlag(FlagS, r&0x80 != 0)
	c.setFlag(FlagP, parity(uint8(r)))
	return uint8(r)
}

func (c *CPU) updateFlagsSub16(a, b uint32, cin uint32) uint16 {
	r := a - b - cin
	c.setFlag(FlagC, a < b+cin)
	c.setFlag(FlagH, (a&0xF) < (b&0xF)+cin)
	c.setFlag(FlagV, (a^b)&(a^r)&0x8000 != 0)
	c.setFlag(FlagZ, r&0xFFFF == 0)
	c.setFlag(FlagS, r&0x8000 != 0)
	c.setFlag(FlagP, parity(uint8(r)))
	return uint16(r)
}

// updateFlagsLogic sets S/Z/P from the result and clears C/V; H is left
// unspecified by §4.1 but must not be relied on by callers.
func (c *CPU) updateFlagsLogic8(r uint8) {
	c.setFlag(FlagC, false)
	c.setFlag(FlagV, false)
	c.setFlag(FlagZ, r == 0)
	c.setFlag(FlagS, r&0x80 != 0)
	c.setFlag(FlagP, parity(r))
}

func (c *CPU) updateFlagsLogic16(r uint16) {
	c.setFlag(FlagC, false)
	c.setFlag(FlagV, false)
	c.setFlag(FlagZ, r == 0)
	c.setFlag(FlagS, r&0x8000 != 0)
	c.setFlag(FlagP, parity(uint8(r)))
}

func b2u16(b bool) uint16 {
	if b {
		return 1
	}
	return 0
}

func b2u32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
