/*
 * wondercore - Arithmetic/logical instruction family
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

// aluOp identifies one of the eight ADD/OR/ADC/SBB/AND/SUB/XOR/CMP groups
// that share the 0x00-0x3D encoding pattern.
type aluOp int

const (
	opADD aluOp = iota
	opOR
	opADC
	opSBB
	opAND
	opSUB
	opXOR
	opCMP
)

func (c *CPU) alu8(op aluOp, a, b uint8) uint8 {
	switch op {
	case opADD:
		return c.updateFlagsAdd8(uint16(a), uint16(b), 0)
	case opADC:
		return c.updateFlagsAdd8(uint16(a), uint16(b), b2u16(c.flag(FlagC)))
	case opSUB, opCMP:
		return c.updateFlagsSub8(uint16(a), uint16(b), 0)
	case opSBB:
		return c.updateFlagsSub8(uint16(a), uint16(b), b2u16(c.flag(FlagC)))
	case opOR:
		r := a | b
		c.updateFlagsLogic8(r)
		return r
	case opAND:
		r := a & b
		c.updateFlagsLogic8(r)
		return r
	default: // opXOR
		r := a ^ b
		c.updateFlagsLogic8(r)
		return r
	}
}

func (c *CPU) alu16(op aluOp, a, b uint16) uint16 {
	switch op {
	case opADD:
		return c.updateFlagsAdd16(uint32(a), uint32(b), 0)
	case opADC:
		return c.updateFlagsAdd16(uint32(a), uint32(b), b2u32(c.flag(FlagC)))
	case opSUB, opCMP:
		return c.updateFlagsSub16(uint32(a), uint32(b), 0)
	case opSBB:
		return c.updateFlagsSub16(uint32(a), uint32(b), b2u32(c.flag(FlagC)))
	case opOR:
		r := a | b
		c.updateFlagsLogic16(r)
		return r
	case opAND:
		r := a & b
		c.updateFlagsLogic16(r)
		return r
	default: // opXOR
		r := a ^ b
		c.updateFlagsLogic16(r)
		return r
	}
}

// execAluRM8 handles the "op r/m8, r8" and "op r8, r/m8" forms (opcodes
// xx0 and xx2 of each group).
func (c *CPU) execAluRM8(op aluOp, toRM bool) {
	m := c.fetchModRM()
	if toRM {
		r := c.alu8(op, c.readRM8(m), c.getReg8(m.reg))
		if op != opCMP {
			c.writeRM8(m, r)
		}
	} else {
		r := c.alu8(op, c.getReg8(m.reg), c.readRM8(m))
		if op != opCMP {
			c.setReg8(m.reg, r)
		}
	}
}

func (c *CPU) execAluRM16(op aluOp, toRM bool) {
	m := c.fetchModRM()
	if toRM {
		r := c.alu16(op, c.readRM16(m), *c.reg16(m.reg))
		if op != opCMP {
			c.writeRM16(m, r)
		}
	} else {
		r := c.alu16(op, *c.reg16(m.reg), c.readRM16(m))
		if op != opCMP {
			*c.reg16(m.reg) = r
		}
	}
}

// execAluAccImm8/16 handle the "op AL, imm8"/"op AW, imm16" forms (opcodes
// xx4/xx5 of each group).
func (c *CPU) execAluAccImm8(op aluOp) {
	imm := c.fetchByte()
	r := c.alu8(op, c.getReg8(RegAL), imm)
	if op != opCMP {
		c.setReg8(RegAL, r)
	}
}

func (c *CPU) execAluAccImm16(op aluOp) {
	imm := c.fetchWord()
	r := c.alu16(op, c.AW, imm)
	if op != opCMP {
		c.AW = r
	}
}

// execGroup1 implements the 0x80/0x81/0x82/0x83 immediate-ALU escape group,
// where the ModR/M reg field selects which of the eight ALU ops to apply.
func (c *CPU) execGroup1(wide bool, signExtend bool) {
	m := c.fetchModRM()
	op := aluOp(m.reg)

	if wide {
		var imm uint16
		if signExtend {
			imm = uint16(int16(int8(c.fetchByte())))
		} else {
			imm = c.fetchWord()
		}
		r := c.alu16(op, c.readRM16(m), imm)
		if op != opCMP {
			c.writeRM16(m, r)
		}
		return
	}

	imm := c.fetchByte()
	r := c.alu8(op, c.readRM8(m), imm)
	if op != opCMP {
		c.writeRM8(m, r)
	}
}

// execIncDecReg16 implements INC/DEC r16 (0x40-0x4F): these do not affect
// the carry flag, per the 8086-family convention the V30MZ preserves.
func (c *CPU) execIncDecReg16(reg uint8, inc bool) {
	r := c.reg16(reg)
	carry := c.flag(FlagC)
	if inc {
		*r = c.updateFlagsAdd16(uint32(*r), 1, 0)
	} else {
		*r = c.updateFlagsSub16(uint32(*r), 1, 0)
	}
	c.setFlag(FlagC, carry)
}

// execIncDecRM8/16 implement the INC/DEC forms of the 0xFE/0xFF group escape.
func (c *CPU) execIncDecRM8(m modrm, inc bool) {
	carry := c.flag(FlagC)
	v := c.readRM8(m)
	var r uint8
	if inc {
		r = c.updateFlagsAdd8(uint16(v), 1, 0)
	} else {
		r = c.updateFlagsSub8(uint16(v), 1, 0)
	}
	c.setFlag(FlagC, carry)
	c.writeRM8(m, r)
}

func (c *CPU) execIncDecRM16(m modrm, inc bool) {
	carry := c.flag(FlagC)
	v := c.readRM16(m)
	var r uint16
	if inc {
		r = c.updateFlagsAdd16(uint32(v), 1, 0)
	} else {
		r = c.updateFlagsSub16(uint32(v), 1, 0)
	}
	c.setFlag(FlagC, carry)
	c.writeRM16(m, r)
}

// execMul8/16 and execIMul8/16 implement unsigned/signed multiply; per
// §4.1 only C and V are defined after MUL/IMUL (set iff the upper half is
// significant), Z/S/P/H are left unspecified.
// MUL/IMUL charge extra cycles on top of opCycles' group-3 base: 8086-class
// parts take longer for a multiply than the group's NOT/NEG/TEST forms, and
// the 16-bit forms take longer still (§4.1 sub-op extra cost).
func (c *CPU) execMul8(m modrm) {
	v := uint16(c.getReg8(RegAL)) * uint16(c.readRM8(m))
	c.AW = v
	overflow := v>>8 != 0
	c.setFlag(FlagC, overflow)
	c.setFlag(FlagV, overflow)
	c.cycles += 70
}

func (c *CPU) execMul16(m modrm) {
	v := uint32(c.AW) * uint32(c.readRM16(m))
	c.AW = uint16(v)
	c.DW = uint16(v >> 16)
	overflow := v>>16 != 0
	c.setFlag(FlagC, overflow)
	c.setFlag(FlagV, overflow)
	c.cycles += 118
}

func (c *CPU) execIMul8(m modrm) {
	v := int16(int8(c.getReg8(RegAL))) * int16(int8(c.readRM8(m)))
	c.AW = uint16(v)
	overflow := v != int16(int8(uint8(v)))
	c.setFlag(FlagC, overflow)
	c.setFlag(FlagV, overflow)
	c.cycles += 74
}

func (c *CPU) execIMul16(m modrm) {
	v := int32(int16(c.AW)) * int32(int16(c.readRM16(m)))
	c.AW = uint16(v)
	c.DW = uint16(v >> 16)
	overflow := v != int32(int16(uint16(v)))
	c.setFlag(FlagC, overflow)
	c.setFlag(FlagV, overflow)
	c.cycles += 122
}

// execDiv8/16 implement unsigned divide. A zero divisor delivers
// VectorDivideError (§7). The V30MZ's AW==0x8000 divisor==0 edge case from
// §9's open question is treated the same as any other divide-by-zero: the
// dividend value does not change the outcome, only the divisor does.
func (c *CPU) execDiv8(m modrm) bool {
	c.cycles += 80
	divisor := c.readRM8(m)
	if divisor == 0 {
		return false
	}
	dividend := c.AW
	q := dividend / uint16(divisor)
	r := dividend % uint16(divisor)
	if q > 0xFF {
		return false
	}
	c.setReg8(RegAL, uint8(q))
	c.setReg8(RegAH, uint8(r))
	return true
}

func (c *CPU) execDiv16(m modrm) bool {
	c.cycles += 144
	divisor := c.readRM16(m)
	if divisor == 0 {
		return false
	}
	dividend := uint32(c.DW)<<16 | uint32(c.AW)
	q := dividend / uint32(divisor)
	r := dividend % uint32(divisor)
	if q > 0xFFFF {
		return false
	}
	c.AW = uint16(q)
	c.DW = uint16(r)
	return true
}

func (c *CPU) execIDiv8(m modrm) bool {
	c.cycles += 101
	divisor := int8(c.readRM8(m))
	if divisor == 0 {
		return false
	}
	dividend := int16(c.AW)
	q := dividend / int16(divisor)
	r := dividend % int16(divisor)
	if q > 127 || q < -128 {
		return false
	}
	c.setReg8(RegAL, uint8(q))
	c.setReg8(RegAH, uint8(r))
	return true
}

func (c *CPU) execIDiv16(m modrm) bool {
	c.cycles += 165
	divisor := int16(c.readRM16(m))
	if divisor == 0 {
		return false
	}
	dividend := int32(c.DW)<<16 | int32(c.AW)
	q := dividend / int32(divisor)
	r := dividend % int32(divisor)
	if q > 32767 || q < -32768 {
		return false
	}
	c.AW = uint16(q)
	c.DW = uint16(r)
	return true
}

// BCD adjusts. §9 flags the undocumented-flag-behavior ambiguity for these;
// ADJ4A/ADJ4S define Z/S/P from the adjusted result and set C/H as the
// classic 8086 adjust contract does, while ADJBA/ADJBS set only C/H and
// leave Z/S/P untouched.
func (c *CPU) execADJ4A() {
	al := c.getReg8(RegAL)
	af := c.flag(FlagH)
	cf := c.flag(FlagC)
	if al&0xF > 9 || af {
		al += 6
		c.setFlag(FlagH, true)
	} else {
		c.setFlag(FlagH, false)
	}
	if al > 0x9F || cf {
		al += 0x60
		c.setFlag(FlagC, true)
	} else {
		c.setFlag(FlagC, false)
	}
	c.setReg8(RegAL, al)
	c.setFlag(FlagZ, al == 0)
	c.setFlag(FlagS, al&0x80 != 0)
	c.setFlag(FlagP, parity(al))
}

func (c *CPU) execADJ4S() {
	al := c.getReg8(RegAL)
	af := c.flag(FlagH)
	cf := c.flag(FlagC)
	if al&0xF > 9 || af {
		al -= 6
		c.setFlag(FlagH, true)
	} else {
		c.setFlag(FlagH, false)
	}
	if al > 0x9F || cf {
		al -= 0x60
		c.setFlag(FlagC, true)
	} else {
		c.setFlag(FlagC, false)
	}
	c.setReg8(RegAL, al)
	c.setFlag(FlagZ, al == 0)
	c.setFlag(FlagS, al&0x80 != 0)
	c.setFlag(FlagP, parity(al))
}

func (c *CPU) execADJBA() {
	al := c.getReg8(RegAL)
	ah := c.getReg8(RegAH)
	if al&0xF > 9 || c.flag(FlagH) {
		al += 6
		ah++
		c.setFlag(FlagH, true)
		c.setFlag(FlagC, true)
	} else {
		c.setFlag(FlagH, false)
		c.setFlag(FlagC, false)
	}
	c.setReg8(RegAL, al&0x0F)
	c.setReg8(RegAH, ah)
}

func (c *CPU) execADJBS() {
	al := c.getReg8(RegAL)
	ah := c.getReg8(RegAH)
	if al&0xF > 9 || c.flag(FlagH) {
		al -= 6
		ah--
		c.setFlag(FlagH, true)
		c.setFlag(FlagC, true)
	} else {
		c.setFlag(FlagH, false)
		c.setFlag(FlagC, false)
	}
	c.setReg8(RegAL, al&0x0F)
	c.setReg8(RegAH, ah)
}

// execCVTBD (AAM) converts AL to unpacked digits in AH:AL in the given base
// (the instruction's immediate byte, 10 in the standard encoding).
func (c *CPU) execCVTBD(base uint8) bool {
	if base == 0 {
		return false
	}
	al := c.getReg8(RegAL)
	c.setReg8(RegAH, al/base)
	c.setReg8(RegAL, al%base)
	c.updateFlagsLogic8(c.getReg8(RegAL))
	return true
}

// execCVTDB (AAD) converts unpacked BCD AH:AL to a binary value in AL.
func (c *CPU) execCVTDB(base uint8) {
	al := c.getReg8(RegAL)
	ah := c.getReg8(RegAH)
	v := ah*base + al
	c.setReg8(RegAL, v)
	c.setReg8(RegAH, 0)
	c.updateFlagsLogic8(v)
}

// execMulImm implements the three-operand MUL imm forms (opcodes 0x69/0x6B,
// §4.1): reg16 <- mem16 * imm16 (or imm8 sign-extended). C and V are set iff
// the 32-bit product does not fit in the low 16 bits as a sign-extended
// value, matching the two-operand IMUL contract.
func (c *CPU) execMulImm(m modrm, wide bool) {
	src := int32(int16(c.readRM16(m)))
	var factor int32
	if wide {
		factor = int32(int16(c.fetchWord()))
	} else {
		factor = int32(int8(c.fetchByte()))
	}
	result := src * factor
	lo := int16(result)
	overflow := result != int32(lo)
	*c.reg16(m.reg) = uint16(lo)
	c.setFlag(FlagC, overflow)
	c.setFlag(FlagV, overflow)
	c.setFlag(FlagZ, lo == 0)
	c.setFlag(FlagS, lo < 0)
	c.setFlag(FlagP, parity(uint8(lo)))
}

// execPushImm pushes a 16-bit immediate (0x68) or a sign-extended 8-bit
// immediate (0x6A).
func (c *CPU) execPushImm(signExtendByte bool) {
	if signExtendByte {
		c.push(uint16(int16(int8(c.fetchByte()))))
	} else {
		c.push(c.fetchWord())
	}
}

// execPushAll/execPopAll implement PUSHR/POPR (0x60/0x61), the V30 extension
// that pushes or pops all eight general registers in one instruction. SP is
// pushed at its pre-push value and is not restored by POPR (it is
// recomputed from the pop sequence itself), matching the 80186 PUSHA/POPA
// convention this opcode pair is modeled on.
func (c *CPU) execPushAll() {
	sp := c.SP
	c.push(c.AW)
	c.push(c.CW)
	c.push(c.DW)
	c.push(c.BW)
	c.push(sp)
	c.push(c.BP)
	c.push(c.IX)
	c.push(c.IY)
}

func (c *CPU) execPopAll() {
	c.IY = c.pop()
	c.IX = c.pop()
	c.BP = c.pop()
	c.pop() // discard the pushed SP value
	c.BW = c.pop()
	c.DW = c.pop()
	c.CW = c.pop()
	c.AW = c.pop()
}
