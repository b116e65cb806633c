/*
 * wondercore - Control-flow instruction family
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

// condTrue evaluates the 0x70-0x7F conditional-branch condition table.
func (c *CPU) condTrue(cc uint8) bool {
	switch cc & 0xF {
	case 0x0: // JO
		return c.flag(FlagV)
	case 0x1: // JNO
		return !c.flag(FlagV)
	case 0x2: // JB/JC
		return c.flag(FlagC)
	case 0x3: // JAE/JNC
		return !c.flag(FlagC)
	case 0x4: // JE/JZ
		return c.flag(FlagZ)
	case 0x5: // JNE/JNZ
		return !c.flag(FlagZ)
	case 0x6: // JBE
		return c.flag(FlagC) || c.flag(FlagZ)
	case 0x7: // JA
		return !c.flag(FlagC) && !c.flag(FlagZ)
	case 0x8: // JS
		return c.flag(FlagS)
	case 0x9: // JNS
		return !c.flag(FlagS)
	case 0xA: // JP/JPE
		return c.flag(FlagP)
	case 0xB: // JNP/JPO
		return !c.flag(FlagP)
	case 0xC: // JL
		return c.flag(FlagS) != c.flag(FlagV)
	case 0xD: // JGE
		return c.flag(FlagS) == c.flag(FlagV)
	case 0xE: // JLE
		return c.flag(FlagZ) || (c.flag(FlagS) != c.flag(FlagV))
	default: // JG
		return !c.flag(FlagZ) && (c.flag(FlagS) == c.flag(FlagV))
	}
}

// execJcc implements the short (8-bit displacement) conditional branches.
func (c *CPU) execJcc(cc uint8) {
	disp := int8(c.fetchByte())
	if c.condTrue(cc) {
		c.PC = uint16(int16(c.PC) + int16(disp))
	}
}

// execJmpShort/Near/Far and CALL variants.
func (c *CPU) execJmpShort() {
	disp := int8(c.fetchByte())
	c.PC = uint16(int16(c.PC) + int16(disp))
}

func (c *CPU) execJmpNear() {
	disp := int16(c.fetchWord())
	c.PC = uint16(int16(c.PC) + disp)
}

func (c *CPU) execJmpFar() {
	off := c.fetchWord()
	seg := c.fetchWord()
	c.PC = off
	c.Segs[SegPS] = seg
}

func (c *CPU) execCallNear() {
	disp := int16(c.fetchWord())
	ret := c.PC
	c.PC = uint16(int16(c.PC) + disp)
	c.push(ret)
}

func (c *CPU) execCallFar() {
	off := c.fetchWord()
	seg := c.fetchWord()
	c.push(c.Segs[SegPS])
	c.push(c.PC)
	c.PC = off
	c.Segs[SegPS] = seg
}

func (c *CPU) execRetNear(popBytes uint16) {
	c.PC = c.pop()
	if popBytes != 0 {
		c.SP += popBytes
	}
}

func (c *CPU) execRetFar(popBytes uint16) {
	c.PC = c.pop()
	c.Segs[SegPS] = c.pop()
	if popBytes != 0 {
		c.SP += popBytes
	}
}

// execLoop implements LOOP/LOOPE/LOOPNE: decrement CW, branch if CW!=0 and
// the loop condition (if any) holds.
func (c *CPU) execLoop(kind repKind) {
	disp := int8(c.fetchByte())
	c.CW--
	take := c.CW != 0
	switch kind {
	case repEqual:
		take = take && c.flag(FlagZ)
	case repNotEqual:
		take = take && !c.flag(FlagZ)
	}
	if take {
		c.PC = uint16(int16(c.PC) + int16(disp))
	}
}

func (c *CPU) execJCXZ() {
	disp := int8(c.fetchByte())
	if c.CW == 0 {
		c.PC = uint16(int16(c.PC) + int16(disp))
	}
}

// raiseFault rewinds PC to the start of the instruction currently executing
// before dispatching vector (§7: "failures within a single step ... roll
// back to instruction-start PC before pushing exception state"). It is used
// by traps raised mid-instruction (divide error, BRKV, CHKIND, invalid
// opcode) as opposed to BRK/RETI and the boundary-sampled interrupt dispatch,
// which push the already-advanced PC because they are normal control flow
// rather than a failure within the instruction in progress.
func (c *CPU) raiseFault(vector uint8) {
	c.PC = c.prefixPC
	c.raiseException(vector)
}

// raiseException performs the BRK-style push-and-vector-load sequence
// (§4.1 Interrupt dispatch / §7): push PSW, PS, PC, then load PC/PS from the
// vector table at physical address vector*4 (IP then CS, per the 8086-family
// convention). Interrupts are disabled and trace is cleared on entry, since
// a trap handler that wants nested interrupts re-enables them explicitly.
func (c *CPU) raiseException(vector uint8) {
	if debugMsk&debugIRQ != 0 {
		slog.Debug("irq", "vector", vector, "ps", c.Segs[SegPS], "pc", c.PC)
	}
	// The handler's first instruction is not a REP resume, even when this
	// dispatch preempted one; the rewound PC makes the REP restart cleanly
	// after RETI.
	c.pendingRepResume = false
	c.push(c.PSW)
	c.push(c.Segs[SegPS])
	c.push(c.PC)
	c.setFlag(FlagI, false)
	c.setFlag(FlagB, false)
	vecAddr := uint32(vector) * 4
	lo := c.Bus.ReadByte(vecAddr)
	hi := c.Bus.ReadByte(vecAddr + 1)
	c.PC = uint16(lo) | uint16(hi)<<8
	slo := c.Bus.ReadByte(vecAddr + 2)
	shi := c.Bus.ReadByte(vecAddr + 3)
	c.Segs[SegPS] = uint16(slo) | uint16(shi)<<8
	c.halted = false
}

// execBRK is the software-interrupt form: BRK imm8 vectors through imm8.
func (c *CPU) execBRK() {
	vector := c.fetchByte()
	c.raiseException(vector)
}

// execBRKV raises VectorOverflow only if V is set.
func (c *CPU) execBRKV() {
	if c.flag(FlagV) {
		c.raiseFault(VectorOverflow)
	}
}

// execRETI pops PC, PS, PSW in reverse push order (§4.1).
func (c *CPU) execRETI() {
	c.PC = c.pop()
	c.Segs[SegPS] = c.pop()
	c.PSW = c.pop()
	c.PSW = (c.PSW | pswForceOnMask) &^ pswForceOffMask
}

// execCHKIND implements CHKIND r16, m16&16: bounds-check r16 against a
// [lower,upper) pair in memory, raising VectorBounds when reg < lower or
// reg >= upper. Comparisons are unsigned.
func (c *CPU) execCHKIND(m modrm) {
	v := *c.reg16(m.reg)
	phys := c.physical(c.segValue(m), m.offset)
	lo := uint16(c.Bus.ReadByte(phys)) | uint16(c.Bus.ReadByte((phys+1)&0xFFFFF))<<8
	hi := uint16(c.Bus.ReadByte((phys+2)&0xFFFFF)) | uint16(c.Bus.ReadByte((phys+3)&0xFFFFF))<<8
	if v < lo || v >= hi {
		c.raiseFault(VectorBounds)
	}
}

// execPREPARE (ENTER) builds a stack frame: push BP, copy level-1 enclosing
// frame pointers for nested scopes (at most 30, the level being 5 bits), then
// reserve imm16 bytes of locals. Note
// this core does not re-push the new frame pointer for level > 0 the way the
// 80186 manual describes; the hardware it models doesn't either.
func (c *CPU) execPREPARE() {
	locals := c.fetchWord()
	level := c.fetchByte() & 0x1F
	c.push(c.BP)
	frame := c.SP
	for i := uint8(1); i < level; i++ {
		c.BP -= 2
		phys := c.physical(c.Segs[SegSS], c.BP)
		lo := c.Bus.ReadByte(phys)
		hi := c.Bus.ReadByte((phys + 1) & 0xFFFFF)
		c.push(uint16(lo) | uint16(hi)<<8)
	}
	c.BP = frame
	c.SP -= locals
}

// execDISPOSE (LEAVE) tears the frame back down.
func (c *CPU) execDISPOSE() {
	c.SP = c.BP
	c.BP = c.pop()
}

// Flag-control and misc single-byte instructions.
func (c *CPU) execCLC() { c.setFlag(FlagC, false) }
func (c *CPU) execSTC() { c.setFlag(FlagC, true) }
func (c *CPU) execCMC() { c.setFlag(FlagC, !c.flag(FlagC)) }
func (c *CPU) execCLI() { c.setFlag(FlagI, false) }
func (c *CPU) execSTI() { c.setFlag(FlagI, true) }
func (c *CPU) execCLD() { c.setFlag(FlagD, false) }
func (c *CPU) execSTD() { c.setFlag(FlagD, true) }
func (c *CPU) execHLT() { c.halted = true }
func (c *CPU) execNOP() {}

// setOverride records a segment-override prefix, active for exactly the one
// instruction that follows it (§4.1).
func (c *CPU) setOverride(seg int) {
	c.override.active = true
	c.override.seg = seg
}
