/*
 * wondercore - General DMA and sound DMA engine test set
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

package dma

import "testing"

type testPorts struct {
	regs [256]byte
}

func (p *testPorts) Get(port uint8) byte        { return p.regs[port] }
func (p *testPorts) Set(port uint8, value byte) { p.regs[port] = value }

type testMem struct {
	mem       [0x100000]byte
	sramStart uint32
	sramEnd   uint32
	claims    int
	releases  int
}

func (m *testMem) ReadByte(phys uint32) uint8     { return m.mem[phys] }
func (m *testMem) WriteByte(phys uint32, v uint8) { m.mem[phys] = v }
func (m *testMem) InSRAMWindow(phys uint32) bool {
	return phys >= m.sramStart && phys <= m.sramEnd
}
func (m *testMem) ClaimDMA()   { m.claims++ }
func (m *testMem) ReleaseDMA() { m.releases++ }

func newMem() *testMem {
	return &testMem{sramStart: 0x10000, sramEnd: 0x1FFFF}
}

func setGDMARegs(p *testPorts, source uint32, dest, counter uint16, ctrl byte) {
	p.Set(0x40, byte(source))
	p.Set(0x41, byte(source>>8))
	p.Set(0x42, byte(source>>16))
	p.Set(0x44, byte(dest))
	p.Set(0x45, byte(dest>>8))
	p.Set(0x46, byte(counter))
	p.Set(0x47, byte(counter>>8))
	p.Set(0x48, ctrl)
}

func TestGDMATriggerAbortsOnZeroCounter(t *testing.T) {
	var g GDMA
	p := &testPorts{}
	mem := newMem()
	setGDMARegs(p, 0x5000, 0x8000, 0, 0x80)

	cycles := g.Trigger(p, mem)

	if cycles != 0 {
		t.Errorf("Trigger cycles = %d, want 0 (abort)", cycles)
	}
	if g.Active() {
		t.Error("GDMA must not be active after a zero-counter trigger")
	}
	if p.Get(0x48)&0x80 != 0 {
		t.Error("trigger bit must be cleared on abort")
	}
	if mem.claims != 0 {
		t.Error("ClaimDMA must not be called on an aborted trigger")
	}
}

func TestGDMATriggerAbortsWhenSourceInSRAM(t *testing.T) {
	var g GDMA
	p := &testPorts{}
	mem := newMem()
	setGDMARegs(p, 0x10500, 0x8000, 4, 0x80)

	cycles := g.Trigger(p, mem)

	if cycles != 0 {
		t.Errorf("Trigger cycles = %d, want 0 (abort)", cycles)
	}
	if g.Active() {
		t.Error("GDMA must not be active when source starts inside the SRAM window")
	}
	if p.Get(0x48)&0x80 != 0 {
		t.Error("trigger bit must be cleared on abort")
	}
}

func TestGDMATriggerStartsTransfer(t *testing.T) {
	var g GDMA
	p := &testPorts{}
	mem := newMem()
	setGDMARegs(p, 0x5000, 0x8000, 4, 0x80)

	cycles := g.Trigger(p, mem)

	if cycles != 7 {
		t.Errorf("Trigger cycles = %d, want 7", cycles)
	}
	if !g.Active() {
		t.Fatal("GDMA should be active after a valid trigger")
	}
	if mem.claims != 1 {
		t.Errorf("ClaimDMA calls = %d, want 1", mem.claims)
	}
}

func TestGDMATriggerDirectionBit(t *testing.T) {
	var g GDMA
	p := &testPorts{}
	mem := newMem()
	setGDMARegs(p, 0x5000, 0x8000, 4, 0x80|0x40)
	g.Trigger(p, mem)
	if g.direction != -1 {
		t.Errorf("direction = %d, want -1 when bit 6 is set", g.direction)
	}
}

func TestGDMATickTransfersAndTerminates(t *testing.T) {
	var g GDMA
	p := &testPorts{}
	mem := newMem()
	mem.mem[0x5000] = 0xAA
	mem.mem[0x5001] = 0xBB
	setGDMARegs(p, 0x5000, 0x8000, 2, 0x80)
	g.Trigger(p, mem)

	g.Tick(p, mem)
	if mem.mem[0x8000] != 0xAA {
		t.Errorf("mem[0x8000] = %#02x, want 0xaa", mem.mem[0x8000])
	}
	if !g.Active() {
		t.Fatal("GDMA should still be active with 1 byte remaining")
	}

	g.Tick(p, mem)
	if mem.mem[0x8001] != 0xBB {
		t.Errorf("mem[0x8001] = %#02x, want 0xbb", mem.mem[0x8001])
	}
	if g.Active() {
		t.Error("GDMA should finish once counter reaches 0")
	}
	if mem.releases != 1 {
		t.Errorf("ReleaseDMA calls = %d, want 1", mem.releases)
	}
	if p.Get(0x48)&0x80 != 0 {
		t.Error("trigger bit must be cleared on completion")
	}
	if p.Get(0x46) != 0 || p.Get(0x47) != 0 {
		t.Error("counter registers must read back 0 on completion")
	}
}

// If the source pointer walks into the SRAM window mid-transfer, the engine
// aborts immediately rather than reading through cartridge SRAM.
func TestGDMATickAbortsWhenSourceEntersSRAM(t *testing.T) {
	var g GDMA
	p := &testPorts{}
	mem := newMem()
	setGDMARegs(p, 0x0FFFF, 0x8000, 4, 0x80)
	g.Trigger(p, mem)

	g.Tick(p, mem) // transfers from 0xffff, then steps source to 0x10000
	if !g.Active() {
		t.Fatal("GDMA should still be active after the byte at 0xffff")
	}
	g.Tick(p, mem) // source is now inside the SRAM window: abort before transferring
	if g.Active() {
		t.Error("GDMA must abort once the source pointer enters the SRAM window")
	}
	if mem.releases != 1 {
		t.Errorf("ReleaseDMA calls = %d, want 1", mem.releases)
	}
}

func TestSDMARate(t *testing.T) {
	cases := map[byte]int{0: 6, 1: 4, 2: 2, 3: 1, 0x7C: 6, 0x04: 6}
	for ctrl, want := range cases {
		if got := Rate(ctrl); got != want {
			t.Errorf("Rate(%#02x) = %d, want %d", ctrl, got, want)
		}
	}
}

func TestSDMATriggerLatchesShadowRegisters(t *testing.T) {
	var s SDMA
	p := &testPorts{}
	p.Set(0x4A, 0x00)
	p.Set(0x4B, 0x50)
	p.Set(0x4C, 0x00)
	p.Set(0x4E, 0x04)
	p.Set(0x4F, 0x00)
	p.Set(0x50, 0x00)
	p.Set(0x52, 0x80)

	s.Trigger(p)

	if !s.Active() {
		t.Fatal("SDMA should be active after Trigger")
	}
	if s.shadowSource != s.source || s.shadowCounter != s.counter {
		t.Error("Trigger must latch shadow source/counter equal to the live ones")
	}
	if s.direction != 1 {
		t.Errorf("direction = %d, want 1", s.direction)
	}
}

func TestSDMASampleWritesChannelOutput(t *testing.T) {
	var s SDMA
	p := &testPorts{}
	mem := newMem()
	mem.mem[0x5000] = 0x77
	p.Set(0x4A, 0x00)
	p.Set(0x4B, 0x50)
	p.Set(0x4E, 0x01)
	p.Set(0x52, 0x80)
	s.Trigger(p)

	s.Sample(p, mem)

	if p.Get(0x89) != 0x77 {
		t.Errorf("port 0x89 = %#02x, want 0x77", p.Get(0x89))
	}
	if s.Active() {
		t.Error("SDMA should stop after the last sample with repeat disabled")
	}
	if p.Get(0x52)&0x80 != 0 {
		t.Error("trigger bit must clear once the engine stops")
	}
}

func TestSDMASampleHoldBitOutputsZero(t *testing.T) {
	var s SDMA
	p := &testPorts{}
	mem := newMem()
	mem.mem[0x5000] = 0x77
	p.Set(0x4A, 0x00)
	p.Set(0x4B, 0x50)
	p.Set(0x4E, 0x02)
	p.Set(0x52, 0x80|0x20) // hold bit set

	s.Trigger(p)
	s.Sample(p, mem)

	if p.Get(0x89) != 0x00 {
		t.Errorf("port 0x89 = %#02x, want 0x00 while hold bit is set", p.Get(0x89))
	}
	if !s.Active() {
		t.Error("hold must not advance the counter, so the engine stays active")
	}
}

func TestSDMASampleRepeatReloadsShadow(t *testing.T) {
	var s SDMA
	p := &testPorts{}
	mem := newMem()
	mem.mem[0x6000] = 0x01
	p.Set(0x4A, 0x00)
	p.Set(0x4B, 0x60)
	p.Set(0x4E, 0x01)
	p.Set(0x52, 0x80|0x10) // repeat bit set

	s.Trigger(p)
	s.Sample(p, mem)

	if !s.Active() {
		t.Error("SDMA with repeat set must stay active after exhausting the counter")
	}
	if s.source != s.shadowSource || s.counter != s.shadowCounter {
		t.Error("repeat must reload source/counter from the shadow registers")
	}
}
