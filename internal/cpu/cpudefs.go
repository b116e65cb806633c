/*
 * wondercore - V30MZ CPU state and constants
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

// Package cpu implements the V30MZ interpreter: segmented 16-bit fetch,
// decode, execute, flag update, interrupt dispatch, and cycle accounting.
package cpu

// Bus is the narrow memory/port interface the interpreter needs. The Machine
// that owns a CPU implements it; cpu never imports the Machine's package,
// which keeps the dependency graph acyclic per the centralized-state design.
type Bus interface {
	ReadByte(phys uint32) uint8
	WriteByte(phys uint32, value uint8)
	InPort(port uint16) uint8
	OutPort(port uint16, value uint8)
	// IntCause/IntEnable/IntBase expose the interrupt-cause scan the
	// interpreter needs at every instruction boundary (§4.1 Interrupt
	// dispatch); they read ports 0xB4/0xB2/0xB0 without the interpreter
	// needing to know the I/O bus's port semantics.
	IntCause() uint8
	IntEnable() uint8
	IntBase() uint8
	NMIPending() bool
	ClearNMI()
}

// 16-bit general-register indices, per the modR/M register field encoding.
const (
	RegAW = iota
	RegCW
	RegDW
	RegBW
	RegSP
	RegBP
	RegIX
	RegIY
)

// 8-bit general-register indices.
const (
	RegAL = iota
	RegCL
	RegDL
	RegBL
	RegAH
	RegCH
	RegDH
	RegBH
)

// Segment-register indices, per the modR/M segment field encoding.
const (
	SegDS1 = iota
	SegPS
	SegSS
	SegDS0
)

// PSW flag bit positions.
const (
	FlagC = 1 << 0
	// bit 1 is forced on (reserved)
	FlagP = 1 << 2
	// bit 3 is forced off (reserved)
	FlagH = 1 << 4
	// bit 5 is forced off (reserved)
	FlagZ = 1 << 6
	FlagS = 1 << 7
	FlagB = 1 << 8
	FlagI = 1 << 9
	FlagD = 1 << 10
	FlagV = 1 << 11
)

const (
	pswForceOnMask  uint16 = 1<<1 | 1<<15 | 1<<14 | 1<<13 | 1<<12
	pswForceOffMask uint16 = 1<<3 | 1<<5
)

// Exception vector numbers (§7 / §8 scenario 5).
const (
	VectorDivideError = 0
	VectorSingleStep  = 1
	VectorNMI         = 2
	VectorBreakpoint  = 3
	VectorOverflow    = 4 // BRKV
	VectorBounds      = 5 // CHKIND
	VectorInvalidOp   = 6
)

// Interrupt-cause bit priority, highest first, per §4.1.
var interruptPriority = [8]uint8{4, 6, 5, 7, 1, 0, 3, 2}

// segOverride tracks a segment-override prefix; it is cleared after every
// instruction regardless of how the instruction completed.
type segOverride struct {
	active bool
	seg    int
}

// CPU is the interpreter's register file and decode state; prefixPC and
// pendingRepResume track an in-progress REP/REPNE-prefixed string
// instruction so that an interrupt taken mid-REP can rewind PC to the prefix
// byte (§9 REP interruption).
type CPU struct {
	Bus Bus

	AW, CW, DW, BW uint16
	SP, BP, IX, IY uint16

	Segs [4]uint16 // indexed by SegDS1/SegPS/SegSS/SegDS0

	PC  uint16
	PSW uint16

	override segOverride

	// prefixPC is the address of the first prefix byte of the instruction
	// currently being decoded, used both for REP-interruption rewind and
	// for rolling back PC on an in-instruction exception (§7).
	prefixPC uint16

	halted bool

	// pendingRepResume is set when the previous Step() rewound PC to
	// prefixPC because a REP-prefixed string instruction had iterations
	// left (§9 REP interruption). It suppresses the opcode's one-time base
	// cost (§4.1 "a per-iteration cost plus a one-time setup") on the
	// refetch-and-resume that follows, since that cost was already charged
	// on the chain's first iteration.
	pendingRepResume bool

	// cycles accumulates the current instruction's cost: the opcode's base
	// cost (opCycles, baseCost8/16) plus any effective-address penalty
	// charged by fetchModRM, plus per-iteration REP costs. Step() resets it
	// to zero and returns it once execute() completes (§4.1 Cycle accounting).
	cycles int
}

// Reset re-seeds the CPU to the power-on/reset-vector state (§6, §8).
// PSW is assigned the literal reset value 0xF022 rather than passed through
// the normal force-bit mask: the mask's forced-off bit 5 would otherwise
// clobber a bit the reset literal sets, and both the literal and the mask are
// explicit, independently-stated requirements that cannot both hold for this
// one value. See DESIGN.md for the reasoning and the alternative considered.
func (c *CPU) Reset() {
	*c = CPU{Bus: c.Bus}
	c.Segs[SegPS] = 0xFFFF
	c.PC = 0x0000
	c.PSW = 0xF022
}

func (c *CPU) physical(seg uint16, off uint16) uint32 {
	return (uint32(seg)<<4 + uint32(off)) & 0xFFFFF
}

// PhysicalAddress exposes the segment:offset -> 20-bit physical formula
// (§3, §8 invariant) for tests and for other components (DMA engines don't
// use it, but the console's memory inspector does).
func PhysicalAddress(seg, off uint16) uint32 {
	return (uint32(seg)<<4 + uint32(off)) & 0xFFFFF
}

func (c *CPU) flag(mask uint16) bool { return c.PSW&mask != 0 }

func (c *CPU) setFlag(mask uint16, v bool) {
	if v {
		c.PSW |= mask
	} else {
		c.PSW &^= mask
	}
	c.PSW = (c.PSW | pswForceOnMask) &^ pswForceOffMask
}

func parity(v uint8) bool {
	v ^= v >> 4
	v ^= v >> 2
	v ^= v >> 1
	return v&1 == 0
}
