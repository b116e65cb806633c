/*
 * wondercore - General DMA and sound DMA engines
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

// Package dma implements the general-purpose DMA engine (GDMA) and the sound
// DMA engine (SDMA), each an independent state machine that shares the
// bus-ownership variant defined by the memory bus.
package dma

// MemAccessor is the narrow memory interface the DMA engines need; it is
// satisfied by the Machine without either package importing the other.
type MemAccessor interface {
	ReadByte(phys uint32) uint8
	WriteByte(phys uint32, value uint8)
	InSRAMWindow(phys uint32) bool
	ClaimDMA()
	ReleaseDMA()
}

// PortAccessor lets the DMA engines write back the final source/dest/counter
// register values and clear their trigger bit, mirroring the hardware's
// control-port side effects on completion.
type PortAccessor interface {
	Get(port uint8) byte
	Set(port uint8, value byte)
}

// GDMA is the general-purpose DMA engine (§4.5).
type GDMA struct {
	active      bool
	source      uint32
	dest        uint16
	counter     uint16
	direction   int // +1 or -1
	cyclesOwed  int
}

// Active reports whether a transfer is in progress.
func (g *GDMA) Active() bool { return g.active }

// Trigger latches the source/dest/counter/direction registers from the port
// file and begins a transfer, per the write-to-0x48-with-bit7-set contract.
// It returns the one-time setup cost in cycles, or 0 if the trigger aborts
// immediately (zero counter or source already in SRAM).
func (g *GDMA) Trigger(p PortAccessor, mem MemAccessor) int {
	source := uint32(p.Get(0x40)) | uint32(p.Get(0x41))<<8 | uint32(p.Get(0x42))<<16
	dest := uint16(p.Get(0x44)) | uint16(p.Get(0x45))<<8
	counter := uint16(p.Get(0x46)) | uint16(p.Get(0x47))<<8
	ctrl := p.Get(0x48)

	if counter == 0 || mem.InSRAMWindow(source) {
		p.Set(0x48, ctrl&^0x80)
		return 0
	}

	g.active = true
	g.source = source
	g.dest = dest
	g.counter = counter
	if ctrl&0x40 != 0 {
		g.direction = -1
	} else {
		g.direction = 1
	}
	mem.ClaimDMA()
	return 7
}

// Tick transfers one byte (the caller is expected to invoke Tick once every 2
// cycles per §4.5's "one byte per 2 cycles" schedule).
func (g *GDMA) Tick(p PortAccessor, mem MemAccessor) {
	if !g.active {
		return
	}

	if mem.InSRAMWindow(g.source) {
		g.finish(p, mem)
		return
	}

	value := mem.ReadByte(g.source)
	mem.WriteByte(uint32(g.dest), value)

	g.source = uint32(int64(g.source) + int64(g.direction))
	g.dest = uint16(int32(g.dest) + int32(g.direction))
	g.counter--

	if g.counter == 0 {
		g.finish(p, mem)
	}
}

func (g *GDMA) finish(p PortAccessor, mem MemAccessor) {
	g.active = false
	p.Set(0x40, byte(g.source))
	p.Set(0x41, byte(g.source>>8))
	p.Set(0x42, byte(g.source>>16))
	p.Set(0x44, byte(g.dest))
	p.Set(0x45, byte(g.dest>>8))
	p.Set(0x46, 0)
	p.Set(0x47, 0)
	p.Set(0x48, p.Get(0x48)&^0x80)
	mem.ReleaseDMA()
}

// SDMA is the sound DMA engine (§4.6): it fetches samples into sound channel
// 2's output register (port 0x89) at a rate derived from the control port,
// sharing the memory bus with the CPU rather than seizing it.
type SDMA struct {
	active        bool
	source        uint32
	counter       uint32
	shadowSource  uint32
	shadowCounter uint32
	direction     int
	rate          int // ticks per sample, in units of 128 scheduler ticks
}

// Active reports whether the engine is running.
func (s *SDMA) Active() bool { return s.active }

// Rate returns ticks-per-sample for bits[1:0] of the control port, per §4.6's
// {0->6, 1->4, 2->2, 3->1} table.
func Rate(ctrl byte) int {
	switch ctrl & 0x3 {
	case 0:
		return 6
	case 1:
		return 4
	case 2:
		return 2
	default:
		return 1
	}
}

// Trigger latches source/counter and begins the engine on a write to 0x52
// with bit 7 set.
func (s *SDMA) Trigger(p PortAccessor) {
	source := uint32(p.Get(0x4A)) | uint32(p.Get(0x4B))<<8 | uint32(p.Get(0x4C))<<16
	counter := uint32(p.Get(0x4E)) | uint32(p.Get(0x4F))<<8 | uint32(p.Get(0x50))<<16
	ctrl := p.Get(0x52)

	s.active = true
	s.source = source
	s.counter = counter
	s.shadowSource = source
	s.shadowCounter = counter
	s.rate = Rate(ctrl)
	if ctrl&0x40 != 0 {
		s.direction = -1
	} else {
		s.direction = 1
	}
}

// Sample performs one sample fetch, per the hold/repeat contract in §4.6.
func (s *SDMA) Sample(p PortAccessor, mem MemAccessor) {
	if !s.active {
		return
	}

	ctrl := p.Get(0x52)
	if ctrl&0x20 != 0 { // hold bit
		p.Set(0x89, 0x00)
	} else {
		value := mem.ReadByte(s.source)
		p.Set(0x89, value)
		s.source = uint32(int64(s.source) + int64(s.direction))
		s.counter--
	}

	if s.counter == 0 {
		if ctrl&0x10 != 0 { // repeat bit
			s.source = s.shadowSource
			s.counter = s.shadowCounter
		} else {
			s.active = false
			p.Set(0x52, ctrl&^0x80)
		}
	}
}

// TickInterval returns the number of 128-cycle periods between samples.
func (s *SDMA) TickInterval() int { return s.rate }
