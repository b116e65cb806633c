/*
 * wondercore - Block/string instruction family
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

// repKind distinguishes the REP/REPNE prefixes seen by a string instruction;
// repNone instructions still run their single iteration through the same
// path so MOVBK/CMPBK/STM/LDM/INM/OUTM share one body each.
type repKind int

const (
	repNone repKind = iota
	repEqual
	repNotEqual
)

func (c *CPU) srcSeg() uint16 {
	if c.override.active {
		return c.Segs[c.override.seg]
	}
	return c.Segs[SegDS0]
}

// step applies the direction flag to an index register.
func (c *CPU) step(reg *uint16, n uint16) {
	if c.flag(FlagD) {
		*reg -= n
	} else {
		*reg += n
	}
}

// runString is the shared REP-prefixed execution body: it runs exactly one
// iteration (the caller's Step() is the per-iteration unit of progress, not
// the whole chain), decrements CW, and reports whether another iteration is
// still due. The caller (cpu.go's resumeIfMore) rewinds PC to c.prefixPC when
// true so the instruction is refetched and resumed next Step() — the
// mechanism §9's "REP interruption" relies on to let a pending interrupt
// take effect between iterations rather than only before or after the chain.
//
// zExit gates the Z-flag early-exit check: per §4.1, "CMP-family variants
// additionally exit when the Z condition opposite to the prefix's sense is
// reached" — only CMPBK uses it. MOVBK/STM/LDM/INM/OUTM set zExit=false and
// repeat purely on CW, since they carry no flag semantics of their own to
// test.
func (c *CPU) runString(kind repKind, iterCost int, zExit bool, body func()) bool {
	if kind == repNone {
		body()
		return false
	}
	if c.CW == 0 {
		return false
	}
	body()
	c.cycles += iterCost
	c.CW--
	if zExit {
		if kind == repEqual && !c.flag(FlagZ) {
			return false
		}
		if kind == repNotEqual && c.flag(FlagZ) {
			return false
		}
	}
	return c.CW != 0
}

// execMOVBK: MOV [IY], [IX] (direction per D flag), both byte and word forms.
func (c *CPU) execMOVBK8(kind repKind) bool {
	return c.runString(kind, repIterCost8, false, func() {
		v := c.Bus.ReadByte(c.physical(c.srcSeg(), c.IX))
		c.Bus.WriteByte(c.physical(c.Segs[SegDS1], c.IY), v)
		c.step(&c.IX, 1)
		c.step(&c.IY, 1)
	})
}

func (c *CPU) execMOVBK16(kind repKind) bool {
	return c.runString(kind, repIterCost16, false, func() {
		phys := c.physical(c.srcSeg(), c.IX)
		lo := c.Bus.ReadByte(phys)
		hi := c.Bus.ReadByte((phys + 1) & 0xFFFFF)
		dst := c.physical(c.Segs[SegDS1], c.IY)
		c.Bus.WriteByte(dst, lo)
		c.Bus.WriteByte((dst+1)&0xFFFFF, hi)
		c.step(&c.IX, 2)
		c.step(&c.IY, 2)
	})
}

// execCMPBK: CMP [IX], [IY], sets flags like CMP r/m, updates ZF for repeat
// termination.
func (c *CPU) execCMPBK8(kind repKind) bool {
	return c.runString(kind, repIterCost8, true, func() {
		a := c.Bus.ReadByte(c.physical(c.srcSeg(), c.IX))
		b := c.Bus.ReadByte(c.physical(c.Segs[SegDS1], c.IY))
		c.updateFlagsSub8(uint16(a), uint16(b), 0)
		c.step(&c.IX, 1)
		c.step(&c.IY, 1)
	})
}

func (c *CPU) execCMPBK16(kind repKind) bool {
	return c.runString(kind, repIterCost16, true, func() {
		pa := c.physical(c.srcSeg(), c.IX)
		pb := c.physical(c.Segs[SegDS1], c.IY)
		a := uint16(c.Bus.ReadByte(pa)) | uint16(c.Bus.ReadByte((pa+1)&0xFFFFF))<<8
		b := uint16(c.Bus.ReadByte(pb)) | uint16(c.Bus.ReadByte((pb+1)&0xFFFFF))<<8
		c.updateFlagsSub16(uint32(a), uint32(b), 0)
		c.step(&c.IX, 2)
		c.step(&c.IY, 2)
	})
}

// execSTM: store AL/AW at [IY], advancing IY; used to fill or initialize
// buffers.
func (c *CPU) execSTM8(kind repKind) bool {
	return c.runString(kind, repIterCost8, false, func() {
		c.Bus.WriteByte(c.physical(c.Segs[SegDS1], c.IY), c.getReg8(RegAL))
		c.step(&c.IY, 1)
	})
}

func (c *CPU) execSTM16(kind repKind) bool {
	return c.runString(kind, repIterCost16, false, func() {
		phys := c.physical(c.Segs[SegDS1], c.IY)
		c.Bus.WriteByte(phys, uint8(c.AW))
		c.Bus.WriteByte((phys+1)&0xFFFFF, uint8(c.AW>>8))
		c.step(&c.IY, 2)
	})
}

// execLDM: load AL/AW from [IX], advancing IX.
func (c *CPU) execLDM8(kind repKind) bool {
	return c.runString(kind, repIterCost8, false, func() {
		c.setReg8(RegAL, c.Bus.ReadByte(c.physical(c.srcSeg(), c.IX)))
		c.step(&c.IX, 1)
	})
}

func (c *CPU) execLDM16(kind repKind) bool {
	return c.runString(kind, repIterCost16, false, func() {
		phys := c.physical(c.srcSeg(), c.IX)
		lo := c.Bus.ReadByte(phys)
		hi := c.Bus.ReadByte((phys + 1) & 0xFFFFF)
		c.AW = uint16(lo) | uint16(hi)<<8
		c.step(&c.IX, 2)
	})
}

// execINM/execOUTM move between an I/O port (addressed by DW) and [IY]/[IX].
func (c *CPU) execINM8(kind repKind) bool {
	return c.runString(kind, repIterCost8, false, func() {
		v := c.inPort(c.DW)
		c.Bus.WriteByte(c.physical(c.Segs[SegDS1], c.IY), v)
		c.step(&c.IY, 1)
	})
}

func (c *CPU) execOUTM8(kind repKind) bool {
	return c.runString(kind, repIterCost8, false, func() {
		v := c.Bus.ReadByte(c.physical(c.srcSeg(), c.IX))
		c.outPort(c.DW, v)
		c.step(&c.IX, 1)
	})
}

func (c *CPU) execINM16(kind repKind) bool {
	return c.runString(kind, repIterCost16, false, func() {
		lo := c.inPort(c.DW)
		hi := c.inPort(c.DW + 1)
		phys := c.physical(c.Segs[SegDS1], c.IY)
		c.Bus.WriteByte(phys, lo)
		c.Bus.WriteByte((phys+1)&0xFFFFF, hi)
		c.step(&c.IY, 2)
	})
}

func (c *CPU) execOUTM16(kind repKind) bool {
	return c.runString(kind, repIterCost16, false, func() {
		phys := c.physical(c.srcSeg(), c.IX)
		lo := c.Bus.ReadByte(phys)
		hi := c.Bus.ReadByte((phys + 1) & 0xFFFFF)
		c.outPort(c.DW, lo)
		c.outPort(c.DW+1, hi)
		c.step(&c.IX, 2)
	})
}
