/*
 * wondercore - Data-movement instruction family
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

func (c *CPU) execMovRM8(toRM bool) {
	m := c.fetchModRM()
	if toRM {
		c.writeRM8(m, c.getReg8(m.reg))
	} else {
		c.setReg8(m.reg, c.readRM8(m))
	}
}

func (c *CPU) execMovRM16(toRM bool) {
	m := c.fetchModRM()
	if toRM {
		c.writeRM16(m, *c.reg16(m.reg))
	} else {
		*c.reg16(m.reg) = c.readRM16(m)
	}
}

// execMovSegRM moves a segment register to/from r/m16 (ModR/M reg field
// selects one of the 4 segment registers).
func (c *CPU) execMovSegRM(toRM bool) {
	m := c.fetchModRM()
	seg := int(m.reg & 3)
	if toRM {
		c.writeRM16(m, c.Segs[seg])
	} else {
		c.Segs[seg] = c.readRM16(m)
	}
}

func (c *CPU) execMovRegImm8(reg uint8) {
	c.setReg8(reg, c.fetchByte())
}

func (c *CPU) execMovRegImm16(reg uint8) {
	*c.reg16(reg) = c.fetchWord()
}

func (c *CPU) execMovRMImm8() {
	m := c.fetchModRM()
	c.writeRM8(m, c.fetchByte())
}

func (c *CPU) execMovRMImm16() {
	m := c.fetchModRM()
	c.writeRM16(m, c.fetchWord())
}

// execMovAccMem/execMovMemAcc implement the AL/AW <-> [imm16] direct-address
// forms (0xA0-0xA3), which always use the default data segment (or its
// override).
func (c *CPU) execMovAccMem8() {
	off := c.fetchWord()
	seg := c.Segs[SegDS0]
	if c.override.active {
		seg = c.Segs[c.override.seg]
	}
	c.setReg8(RegAL, c.Bus.ReadByte(c.physical(seg, off)))
}

func (c *CPU) execMovAccMem16() {
	off := c.fetchWord()
	seg := c.Segs[SegDS0]
	if c.override.active {
		seg = c.Segs[c.override.seg]
	}
	phys := c.physical(seg, off)
	lo := c.Bus.ReadByte(phys)
	hi := c.Bus.ReadByte((phys + 1) & 0xFFFFF)
	c.AW = uint16(lo) | uint16(hi)<<8
}

func (c *CPU) execMovMemAcc8() {
	off := c.fetchWord()
	seg := c.Segs[SegDS0]
	if c.override.active {
		seg = c.Segs[c.override.seg]
	}
	c.Bus.WriteByte(c.physical(seg, off), c.getReg8(RegAL))
}

func (c *CPU) execMovMemAcc16() {
	off := c.fetchWord()
	seg := c.Segs[SegDS0]
	if c.override.active {
		seg = c.Segs[c.override.seg]
	}
	phys := c.physical(seg, off)
	c.Bus.WriteByte(phys, uint8(c.AW))
	c.Bus.WriteByte((phys+1)&0xFFFFF, uint8(c.AW>>8))
}

// execLEA loads the effective address itself (not its contents) into reg.
func (c *CPU) execLEA() {
	m := c.fetchModRM()
	*c.reg16(m.reg) = m.offset
}

// execXCHG swaps a register/memory pair.
func (c *CPU) execXCHG8(m modrm) {
	a := c.getReg8(m.reg)
	b := c.readRM8(m)
	c.setReg8(m.reg, b)
	c.writeRM8(m, a)
}

func (c *CPU) execXCHG16(m modrm) {
	a := *c.reg16(m.reg)
	b := c.readRM16(m)
	*c.reg16(m.reg) = b
	c.writeRM16(m, a)
}

func (c *CPU) execXCHGAcc(reg uint8) {
	r := c.reg16(reg)
	c.AW, *r = *r, c.AW
}

// execPushReg16/execPopReg16 implement the one-byte PUSH/POP r16 forms
// (0x50-0x5F).
func (c *CPU) execPushReg16(reg uint8) { c.push(*c.reg16(reg)) }
func (c *CPU) execPopReg16(reg uint8)  { *c.reg16(reg) = c.pop() }

// execPushSeg/execPopSeg implement PUSH/POP of a segment register.
func (c *CPU) execPushSeg(seg int) { c.push(c.Segs[seg]) }
func (c *CPU) execPopSeg(seg int)  { c.Segs[seg] = c.pop() }

func (c *CPU) execPushRM16(m modrm) { c.push(c.readRM16(m)) }
func (c *CPU) execPopRM16(m modrm)  { c.writeRM16(m, c.pop()) }

// execPushF/execPopF move the whole PSW to/from the stack.
func (c *CPU) execPushF() { c.push(c.PSW) }
func (c *CPU) execPopF() {
	c.PSW = c.pop()
	c.PSW = (c.PSW | pswForceOnMask) &^ pswForceOffMask
}

// execLDS/execLES load a far pointer (offset, then segment) into reg and a
// segment register (DS0 or DS1).
func (c *CPU) execLDS(seg int) {
	m := c.fetchModRM()
	phys := c.physical(c.segValue(m), m.offset)
	lo := c.Bus.ReadByte(phys)
	hi := c.Bus.ReadByte((phys + 1) & 0xFFFFF)
	slo := c.Bus.ReadByte((phys + 2) & 0xFFFFF)
	shi := c.Bus.ReadByte((phys + 3) & 0xFFFFF)
	*c.reg16(m.reg) = uint16(lo) | uint16(hi)<<8
	c.Segs[seg] = uint16(slo) | uint16(shi)<<8
}

// execSALC sets AL to 0xFF or 0x00 from the carry flag.
func (c *CPU) execSALC() {
	if c.flag(FlagC) {
		c.setReg8(RegAL, 0xFF)
	} else {
		c.setReg8(RegAL, 0x00)
	}
}

// execTRANS (XLAT) loads AL from [BW + AL] in the data segment (or its
// override).
func (c *CPU) execTRANS() {
	off := c.BW + uint16(c.getReg8(RegAL))
	seg := c.Segs[SegDS0]
	if c.override.active {
		seg = c.Segs[c.override.seg]
	}
	c.setReg8(RegAL, c.Bus.ReadByte(c.physical(seg, off)))
}

func (c *CPU) execCBW() {
	if c.AW&0x80 != 0 {
		c.AW |= 0xFF00
	} else {
		c.AW &^= 0xFF00
	}
}

func (c *CPU) execCWD() {
	if c.AW&0x8000 != 0 {
		c.DW = 0xFFFF
	} else {
		c.DW = 0
	}
}
