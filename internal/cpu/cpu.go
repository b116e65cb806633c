/*
 * wondercore - Fetch/decode/execute loop and interrupt dispatch
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

// Step decodes and executes exactly one instruction (including any prefix
// bytes that precede it), returning the number of cycles it cost, then
// checks for a pending interrupt. It is the unit of progress the scheduler
// (internal/core) advances the rest of the machine by.
func (c *CPU) Step() int {
	if c.halted {
		c.checkInterrupts()
		return 1
	}

	c.prefixPC = c.PC
	c.override = segOverride{}
	c.cycles = 0
	rep := repNone
	trace := c.flag(FlagB)

prefixLoop:
	for {
		op := c.fetchByte()
		switch op {
		case 0x26:
			c.setOverride(SegDS1)
		case 0x2E:
			c.setOverride(SegPS)
		case 0x36:
			c.setOverride(SegSS)
		case 0x3E:
			c.setOverride(SegDS0)
		case 0xF0: // BUSLOCK: single-bus system, nothing to lock
		case 0xF2:
			rep = repNotEqual
		case 0xF3:
			rep = repEqual
		default:
			c.execute(op, rep)
			break prefixLoop
		}
	}

	// Single-step break: B sampled at instruction start, and an instruction
	// that cleared it (POPF, BRK's exception entry) suppresses its own trap.
	if trace && c.flag(FlagB) {
		c.raiseException(VectorSingleStep)
	}
	c.checkInterrupts()
	if c.cycles < 1 {
		c.cycles = 1
	}
	return c.cycles
}

// execute dispatches a single (non-prefix) opcode byte, charging its base
// cycle cost from opCycles before running its handler (§4.1 Cycle
// accounting). Handlers layer effective-address and REP per-iteration costs
// on top via fetchModRM and runString.
func (c *CPU) execute(op uint8, rep repKind) {
	if c.pendingRepResume {
		c.pendingRepResume = false
	} else {
		c.cycles += int(opCycles[op])
	}

	if debugMsk&debugInst != 0 {
		slog.Debug("inst", "ps", c.Segs[SegPS], "pc", c.prefixPC, "op", op)
	}

	switch {
	case op <= 0x3D && op&0xC0 == 0 && op&0x7 <= 5 && (op&0x7) != 6 && (op&0x7) != 7:
		c.execAluGroup(op, rep)
		return
	}

	switch op {
	case 0x06, 0x0E, 0x16, 0x1E:
		c.execPushSeg(int(op >> 3 & 3))
	case 0x07, 0x17, 0x1F:
		c.execPopSeg(int(op >> 3 & 3))
	case 0x27:
		c.execADJ4A()
	case 0x2F:
		c.execADJ4S()
	case 0x37:
		c.execADJBA()
	case 0x3F:
		c.execADJBS()
	case 0x60:
		c.execPushAll()
	case 0x61:
		c.execPopAll()
	case 0x68:
		c.execPushImm(false)
	case 0x69:
		m := c.fetchModRM()
		c.execMulImm(m, true)
	case 0x6A:
		c.execPushImm(true)
	case 0x6B:
		m := c.fetchModRM()
		c.execMulImm(m, false)
	case 0x6C:
		c.resumeIfMore(c.execINM8(rep))
	case 0x6D:
		c.resumeIfMore(c.execINM16(rep))
	case 0x6E:
		c.resumeIfMore(c.execOUTM8(rep))
	case 0x6F:
		c.resumeIfMore(c.execOUTM16(rep))
	case 0x40, 0x41, 0x42, 0x43, 0x44, 0x45, 0x46, 0x47:
		c.execIncDecReg16(op&7, true)
	case 0x48, 0x49, 0x4A, 0x4B, 0x4C, 0x4D, 0x4E, 0x4F:
		c.execIncDecReg16(op&7, false)
	case 0x50, 0x51, 0x52, 0x53, 0x54, 0x55, 0x56, 0x57:
		c.execPushReg16(op & 7)
	case 0x58, 0x59, 0x5A, 0x5B, 0x5C, 0x5D, 0x5E, 0x5F:
		c.execPopReg16(op & 7)
	case 0x62:
		m := c.fetchModRM()
		c.execCHKIND(m)
	case 0x70, 0x71, 0x72, 0x73, 0x74, 0x75, 0x76, 0x77,
		0x78, 0x79, 0x7A, 0x7B, 0x7C, 0x7D, 0x7E, 0x7F:
		c.execJcc(op & 0xF)
	case 0x80:
		c.execGroup1(false, false)
	case 0x81:
		c.execGroup1(true, false)
	case 0x82:
		c.execGroup1(false, false)
	case 0x83:
		c.execGroup1(true, true)
	case 0x84:
		m := c.fetchModRM()
		c.execTestRM8(m)
	case 0x85:
		m := c.fetchModRM()
		c.execTestRM16(m)
	case 0x86:
		m := c.fetchModRM()
		c.execXCHG8(m)
	case 0x87:
		m := c.fetchModRM()
		c.execXCHG16(m)
	case 0x88:
		c.execMovRM8(true)
	case 0x89:
		c.execMovRM16(true)
	case 0x8A:
		c.execMovRM8(false)
	case 0x8B:
		c.execMovRM16(false)
	case 0x8C:
		c.execMovSegRM(true)
	case 0x8D:
		c.execLEA()
	case 0x8E:
		c.execMovSegRM(false)
	case 0x8F:
		m := c.fetchModRM()
		c.execPopRM16(m)
	case 0x90:
		c.execNOP()
	case 0x91, 0x92, 0x93, 0x94, 0x95, 0x96, 0x97:
		c.execXCHGAcc(op & 7)
	case 0x98:
		c.execCBW()
	case 0x99:
		c.execCWD()
	case 0x9A:
		c.execCallFar()
	case 0x9B: // POLL: the poll pin is never asserted on this SoC
	case 0x9C:
		c.execPushF()
	case 0x9D:
		c.execPopF()
	case 0x9E: // SAHF
		c.PSW = c.PSW&0xFF00 | uint16(c.getReg8(RegAH))
		c.PSW = (c.PSW | pswForceOnMask) &^ pswForceOffMask
	case 0x9F: // LAHF
		c.setReg8(RegAH, uint8(c.PSW))
	case 0xA0:
		c.execMovAccMem8()
	case 0xA1:
		c.execMovAccMem16()
	case 0xA2:
		c.execMovMemAcc8()
	case 0xA3:
		c.execMovMemAcc16()
	case 0xA4:
		c.resumeIfMore(c.execMOVBK8(rep))
	case 0xA5:
		c.resumeIfMore(c.execMOVBK16(rep))
	case 0xA6:
		c.resumeIfMore(c.execCMPBK8(rep))
	case 0xA7:
		c.resumeIfMore(c.execCMPBK16(rep))
	case 0xA8:
		c.execTestAccImm8()
	case 0xA9:
		c.execTestAccImm16()
	case 0xAA:
		c.resumeIfMore(c.execSTM8(rep))
	case 0xAB:
		c.resumeIfMore(c.execSTM16(rep))
	case 0xAC:
		c.resumeIfMore(c.execLDM8(rep))
	case 0xAD:
		c.resumeIfMore(c.execLDM16(rep))
	case 0xB0, 0xB1, 0xB2, 0xB3, 0xB4, 0xB5, 0xB6, 0xB7:
		c.execMovRegImm8(op & 7)
	case 0xB8, 0xB9, 0xBA, 0xBB, 0xBC, 0xBD, 0xBE, 0xBF:
		c.execMovRegImm16(op & 7)
	case 0xC0:
		m := c.fetchModRM()
		c.execShiftRMImm8(m)
	case 0xC1:
		m := c.fetchModRM()
		c.execShiftRMImm16(m)
	case 0xC2:
		c.execRetNear(c.fetchWord())
	case 0xC3:
		c.execRetNear(0)
	case 0xC4:
		c.execLDS(SegDS1)
	case 0xC5:
		c.execLDS(SegDS0)
	case 0xC6:
		c.execMovRMImm8()
	case 0xC7:
		c.execMovRMImm16()
	case 0xC8:
		c.execPREPARE()
	case 0xC9:
		c.execDISPOSE()
	case 0xCA:
		c.execRetFar(c.fetchWord())
	case 0xCB:
		c.execRetFar(0)
	case 0xCC:
		c.raiseException(VectorBreakpoint)
	case 0xCD:
		c.execBRK()
	case 0xCE:
		c.execBRKV()
	case 0xCF:
		c.execRETI()
	case 0xD0:
		m := c.fetchModRM()
		c.execShiftRM8(m, false)
	case 0xD1:
		m := c.fetchModRM()
		c.execShiftRM16(m, false)
	case 0xD2:
		m := c.fetchModRM()
		c.execShiftRM8(m, true)
	case 0xD3:
		m := c.fetchModRM()
		c.execShiftRM16(m, true)
	case 0xD4:
		if !c.execCVTBD(c.fetchByte()) {
			c.raiseFault(VectorDivideError)
		}
	case 0xD5:
		c.execCVTDB(c.fetchByte())
	case 0xD6:
		c.execSALC()
	case 0xD7:
		c.execTRANS()
	case 0xD8, 0xD9, 0xDA, 0xDB, 0xDC, 0xDD, 0xDE, 0xDF:
		// FPO1: no coprocessor attached; consume the ModR/M byte and move on.
		c.fetchModRM()
	case 0xE0:
		c.execLoop(repNotEqual)
	case 0xE1:
		c.execLoop(repEqual)
	case 0xE2:
		c.execLoop(repNone)
	case 0xE3:
		c.execJCXZ()
	case 0xE4:
		port := uint16(c.fetchByte())
		c.setReg8(RegAL, c.inPort(port))
	case 0xE5:
		port := uint16(c.fetchByte())
		lo := c.inPort(port)
		hi := c.inPort(port + 1)
		c.AW = uint16(lo) | uint16(hi)<<8
	case 0xE6:
		port := uint16(c.fetchByte())
		c.outPort(port, c.getReg8(RegAL))
	case 0xE7:
		port := uint16(c.fetchByte())
		c.outPort(port, uint8(c.AW))
		c.outPort(port+1, uint8(c.AW>>8))
	case 0xE8:
		c.execCallNear()
	case 0xE9:
		c.execJmpNear()
	case 0xEA:
		c.execJmpFar()
	case 0xEB:
		c.execJmpShort()
	case 0xEC:
		c.setReg8(RegAL, c.inPort(c.DW))
	case 0xED:
		lo := c.inPort(c.DW)
		hi := c.inPort(c.DW + 1)
		c.AW = uint16(lo) | uint16(hi)<<8
	case 0xEE:
		c.outPort(c.DW, c.getReg8(RegAL))
	case 0xEF:
		c.outPort(c.DW, uint8(c.AW))
		c.outPort(c.DW+1, uint8(c.AW>>8))
	case 0xF4:
		c.execHLT()
	case 0xF5:
		c.execCMC()
	case 0xF6:
		c.execGroup3(false)
	case 0xF7:
		c.execGroup3(true)
	case 0xF8:
		c.execCLC()
	case 0xF9:
		c.execSTC()
	case 0xFA:
		c.execCLI()
	case 0xFB:
		c.execSTI()
	case 0xFC:
		c.execCLD()
	case 0xFD:
		c.execSTD()
	case 0xFE:
		c.execGroup4()
	case 0xFF:
		c.execGroup5()
	default:
		c.raiseFault(VectorInvalidOp)
	}
}

// resumeIfMore implements §9's REP-interruption rewind: when a string
// instruction's runString loop still has iterations left (CW!=0 and no
// early-exit condition met), it rewinds PC to the prefix byte so the next
// Step() refetches and redecodes the same prefixed instruction rather than
// advancing to whatever follows it, and marks the resumed execute() call to
// skip re-charging the opcode's one-time base cost.
func (c *CPU) resumeIfMore(more bool) {
	if more {
		c.PC = c.prefixPC
		c.pendingRepResume = true
	}
}

// execAluGroup decodes one of the eight ALU groups' six encoding forms
// sharing the 0x00-0x3D pattern: group*8 + {0:rm8,r8 1:rm16,r16 2:r8,rm8
// 3:r16,rm16 4:AL,imm8 5:AW,imm16}.
func (c *CPU) execAluGroup(op uint8, rep repKind) {
	_ = rep
	group := aluOp(op >> 3)
	switch op & 7 {
	case 0:
		c.execAluRM8(group, true)
	case 1:
		c.execAluRM16(group, true)
	case 2:
		c.execAluRM8(group, false)
	case 3:
		c.execAluRM16(group, false)
	case 4:
		c.execAluAccImm8(group)
	case 5:
		c.execAluAccImm16(group)
	}
}

// execGroup3 implements the 0xF6/0xF7 TEST/NOT/NEG/MUL/IMUL/DIV/IDIV escape.
func (c *CPU) execGroup3(wide bool) {
	m := c.fetchModRM()
	switch m.reg {
	case 0, 1:
		if wide {
			imm := c.fetchWord()
			c.updateFlagsLogic16(c.readRM16(m) & imm)
		} else {
			imm := c.fetchByte()
			c.updateFlagsLogic8(c.readRM8(m) & imm)
		}
	case 2:
		if wide {
			c.execNot16(m)
		} else {
			c.execNot8(m)
		}
	case 3:
		if wide {
			c.execNeg16(m)
		} else {
			c.execNeg8(m)
		}
	case 4:
		if wide {
			c.execMul16(m)
		} else {
			c.execMul8(m)
		}
	case 5:
		if wide {
			c.execIMul16(m)
		} else {
			c.execIMul8(m)
		}
	case 6:
		var ok bool
		if wide {
			ok = c.execDiv16(m)
		} else {
			ok = c.execDiv8(m)
		}
		if !ok {
			c.raiseFault(VectorDivideError)
		}
	case 7:
		var ok bool
		if wide {
			ok = c.execIDiv16(m)
		} else {
			ok = c.execIDiv8(m)
		}
		if !ok {
			c.raiseFault(VectorDivideError)
		}
	}
}

// execGroup4 implements the 0xFE INC/DEC rm8 escape.
func (c *CPU) execGroup4() {
	m := c.fetchModRM()
	switch m.reg {
	case 0:
		c.execIncDecRM8(m, true)
	case 1:
		c.execIncDecRM8(m, false)
	default:
		c.raiseFault(VectorInvalidOp)
	}
}

// execGroup5 implements the 0xFF INC/DEC/CALL/JMP/PUSH rm16 escape.
func (c *CPU) execGroup5() {
	m := c.fetchModRM()
	switch m.reg {
	case 0:
		c.execIncDecRM16(m, true)
	case 1:
		c.execIncDecRM16(m, false)
	case 2:
		target := c.readRM16(m)
		ret := c.PC
		c.PC = target
		c.push(ret)
	case 3:
		phys := c.physical(c.segValue(m), m.offset)
		off := uint16(c.Bus.ReadByte(phys)) | uint16(c.Bus.ReadByte((phys+1)&0xFFFFF))<<8
		seg := uint16(c.Bus.ReadByte((phys+2)&0xFFFFF)) | uint16(c.Bus.ReadByte((phys+3)&0xFFFFF))<<8
		c.push(c.Segs[SegPS])
		c.push(c.PC)
		c.PC = off
		c.Segs[SegPS] = seg
	case 4:
		c.PC = c.readRM16(m)
	case 5:
		phys := c.physical(c.segValue(m), m.offset)
		off := uint16(c.Bus.ReadByte(phys)) | uint16(c.Bus.ReadByte((phys+1)&0xFFFFF))<<8
		seg := uint16(c.Bus.ReadByte((phys+2)&0xFFFFF)) | uint16(c.Bus.ReadByte((phys+3)&0xFFFFF))<<8
		c.PC = off
		c.Segs[SegPS] = seg
	case 6:
		c.execPushRM16(m)
	default:
		c.raiseFault(VectorInvalidOp)
	}
}

// checkInterrupts scans the interrupt-cause bits in priority order (§4.1)
// and dispatches the highest-priority pending one, or the NMI unconditionally.
// It runs at every instruction boundary, including between REP iterations: a
// REP-prefixed string instruction's Step() only runs one iteration per call
// (resumeIfMore rewinds PC to the prefix byte when iterations remain), so
// this check sees a genuine boundary after every single iteration, not just
// at the start and end of the whole chain.
func (c *CPU) checkInterrupts() {
	if c.Bus.NMIPending() {
		c.raiseException(VectorNMI)
		c.Bus.ClearNMI()
		return
	}

	if !c.flag(FlagI) {
		return
	}

	pending := c.Bus.IntCause() & c.Bus.IntEnable()
	if pending == 0 {
		return
	}

	base := c.Bus.IntBase() & 0xF8
	for _, bit := range interruptPriority {
		if pending&(1<<bit) != 0 {
			c.raiseException(base | bit)
			return
		}
	}
}
