/*
 * wondercore - Machine: centralized state and scheduler loop
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

// Package core owns the Machine: the single struct that holds every
// peripheral's state and mediates between them, per §9's "centralize state"
// design note. It also runs the scheduler loop that distributes CPU cycles
// to the display, sound, and DMA clocks (§5), modeled on the teacher's
// core.Start()/CycleCPU()/event.Advance() shape.
package core

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/handheld-sim/wondercore/internal/cartridge"
	"github.com/handheld-sim/wondercore/internal/cpu"
	"github.com/handheld-sim/wondercore/internal/display"
	"github.com/handheld-sim/wondercore/internal/dma"
	"github.com/handheld-sim/wondercore/internal/eeprom"
	"github.com/handheld-sim/wondercore/internal/event"
	"github.com/handheld-sim/wondercore/internal/iobus"
	"github.com/handheld-sim/wondercore/internal/keypad"
	"github.com/handheld-sim/wondercore/internal/membus"
	"github.com/handheld-sim/wondercore/internal/sound"
)

// Port indices named in §4.2's contract table.
const (
	portGDMASrcL  = 0x40
	portGDMASrcM  = 0x41
	portGDMASrcH  = 0x42
	portGDMADstL  = 0x44
	portGDMADstH  = 0x45
	portGDMACntL  = 0x46
	portGDMACntH  = 0x47
	portGDMACtrl  = 0x48
	portSDMACtrl  = 0x52
	portSysCtrl2   = 0x60
	portBlankCtrl  = 0xA2 // bit0 HBLANK enable, bit1 HBLANK reload-on-underflow, bit2 VBLANK enable, bit3 VBLANK reload-on-underflow
	portHBlankRldL = 0xA4
	portHBlankRldH = 0xA5
	portVBlankRldL = 0xA6
	portVBlankRldH = 0xA7
	portHBlankCntL = 0xA8
	portHBlankCntH = 0xA9
	portVBlankCntL = 0xAA
	portVBlankCntH = 0xAB
	portIntBase    = 0xB0
	portIntEnable = 0xB2
	portSerial    = 0xB3
	portIntCause  = 0xB4
	portKeyScan   = 0xB5
	portIntClear  = 0xB6
	portNMICtrl   = 0xB7
	portIEEPData0 = 0xBA
	portIEEPData1 = 0xBB
	portIEEPCmd0  = 0xBC
	portIEEPCmd1  = 0xBD
	portIEEPStat  = 0xBE
	portIEEPExtra = 0xBF
	portCEEPData0 = 0xC4
	portCEEPData1 = 0xC5
	portCEEPCmd0  = 0xC6
	portCEEPCmd1  = 0xC7
	portCEEPTrig  = 0xC8
)

// Interrupt-cause bits (§4.1 priority table) that this package raises:
// DISPLINE/VBLANK on display scanline events, the two counter bits from the
// HBLANK/VBLANK down-counters, and KEY from SetKey and the 0xB5 write path.
const (
	intCauseKey           = 1 << 1
	intCauseDispLine      = 1 << 4
	intCauseVBlank        = 1 << 6
	intCauseVBlankCounter = 1 << 5
	intCauseHBlankCounter = 1 << 7
)

// LCD line announcement ports: 0x02 is the live scanline (read-only), 0x03
// the DISPLINE compare value.
const (
	portLCDLine    = 0x02
	portLCDCompare = 0x03
)

// Machine is the single struct holding every peripheral's state (§9). All
// component "methods" operate directly on its fields or on the sub-structs it
// owns disjointly; nothing here retains a long-lived reference to any other
// peripheral, which is what keeps the dependency graph acyclic.
type Machine struct {
	CPU  cpu.CPU
	Mem  membus.Bus
	Port iobus.Ports
	Cart *cartridge.Cartridge

	IEEPROM eeprom.Device // internal EEPROM, port 0xBA-0xBF

	// ieepCmdLo/Hi and ceepCmdLo/Hi stage the command-latch bytes written to
	// 0xBC/0xBD (internal) and 0xC6/0xC7 (cartridge) until a write to the
	// trigger port (0xBE, 0xC8) commits them (§4.3, §8 scenario 6).
	ieepCmdLo, ieepCmdHi byte
	ceepCmdLo, ceepCmdHi byte

	Keypad  keypad.Keypad
	Display display.Controller
	Sound   sound.Unit
	GDMA    dma.GDMA
	SDMA    dma.SDMA

	events event.Queue

	nmiPending bool

	// sdmaTicksOwed accumulates 128-cycle sound ticks until the SDMA's own
	// rate-derived interval elapses (§4.6, "in units of 128 scheduler ticks").
	sdmaTicksOwed int

	log *slog.Logger
}

// romInfoSeed is OR'd into port 0xA0 at power-on (§3 "ports are created once
// at power-on with specific seed values"); bit 1 additionally marks the color
// hardware model.
const romInfoSeed = 0x84

// New constructs a Machine from a loaded cartridge and wires the CPU's Bus
// back to the Machine itself, then resets every component to its power-on
// state (§3, §6).
func New(cart *cartridge.Cartridge, log *slog.Logger) *Machine {
	if log == nil {
		log = slog.Default()
	}
	m := &Machine{Cart: cart, log: log}
	m.CPU.Bus = m
	m.Mem.Cart = cart
	m.Mem.Color = cart.Color
	// The color model carries a 2 KiB 10-bit internal EEPROM, the monochrome
	// model a 128-byte 6-bit one.
	if cart.Color {
		m.IEEPROM = eeprom.Device{Contents: make([]byte, 0x800), AddressBits: 10, WriteEnabled: true, Guard: 0x60}
	} else {
		m.IEEPROM = eeprom.Device{Contents: make([]byte, 128), AddressBits: 6, WriteEnabled: true, Guard: 0x60}
	}
	m.Reset()
	return m
}

// Reset re-seeds every peripheral to its power-on state (§3, §6, §5
// cancellation) and abandons any in-flight DMA.
func (m *Machine) Reset() {
	m.CPU.Reset()
	m.Mem.Owner = membus.OwnerNone
	m.Cart.Reset()
	m.IEEPROM.Reset()
	m.Keypad = keypad.Keypad{}
	m.Display.Reset()
	m.Sound.Reset()
	m.GDMA = dma.GDMA{}
	m.SDMA = dma.SDMA{}
	m.events = event.Queue{}
	m.nmiPending = false

	for i := range m.Port.Regs {
		m.Port.Regs[i] = 0
	}
	info := uint8(romInfoSeed)
	if m.Mem.Color {
		m.Port.Set(portSysCtrl2, 0x80)
		info |= 0x02
	}
	m.Port.Set(0xA0, m.Port.Get(0xA0)|info)

	m.events.Add(event.OwnerDisplay, m.onDisplayEvent, display.CyclesPerLine, 0)
	m.events.Add(event.OwnerSound, m.onSoundEvent, soundTickCycles, 0)
}

const soundTickCycles = 128

// Step advances the machine by one unit of scheduler progress (§5): if a DMA
// engine owns the memory bus, it ticks that engine only and the CPU is
// blocked; otherwise the CPU executes one instruction. It returns the number
// of cycles consumed, which the caller feeds to Advance to drive the
// peripheral clocks.
func (m *Machine) Step() int {
	var cycles int
	switch m.Mem.Owner {
	case membus.OwnerDMA:
		m.GDMA.Tick(&m.Port, m)
		cycles = 2
	default:
		cycles = m.CPU.Step()
	}
	m.Advance(cycles)
	return cycles
}

// Advance distributes cycles to the peripheral clocks (§5): the display
// controller's scanline counter, the sound unit's 128-cycle mix tick, and
// the sound-DMA sample clock, all driven through the relative-time event
// queue so each fires exactly on its own period regardless of how many
// cycles a single CPU instruction or DMA tick contributed.
func (m *Machine) Advance(cycles int) {
	if cycles <= 0 {
		return
	}
	if debugMsk&debugEvent != 0 {
		m.log.Debug("advance", "cycles", cycles)
	}
	m.events.Advance(cycles)
}

func (m *Machine) onDisplayEvent(int) {
	newLine, enteredVBlank, _ := m.Display.Advance(display.CyclesPerLine)
	if newLine {
		m.Port.Set(portLCDLine, uint8(m.Display.Line()))
		if m.Port.Get(portLCDLine) == m.Port.Get(portLCDCompare) {
			m.raiseIntCause(intCauseDispLine)
		}
		if enteredVBlank {
			m.raiseIntCause(intCauseVBlank)
			m.tickVBlankCounter()
		}
		m.tickHBlankCounter()
	}
	m.events.Add(event.OwnerDisplay, m.onDisplayEvent, display.CyclesPerLine, 0)
}

// raiseIntCause sets bit of INT_CAUSE masked by INT_ENABLE (0xB2), matching
// io_bus.rs's `self.ports[0xB4] |= bit & self.ports[0xB2]` throughout: a
// disabled interrupt source never latches its cause bit at all.
func (m *Machine) raiseIntCause(bit uint8) {
	m.Port.Set(portIntCause, m.Port.Get(portIntCause)|(bit&m.Port.Get(portIntEnable)))
}

// tickHBlankCounter implements the 16-bit HBLANK down-counter at
// 0xA8:0xA9, run once per scanline only while BLANK_CTRL (0xA2) bit 0 is
// set. On reaching 1 it raises HBLANK_COUNTER (bit 7 of INT_CAUSE) and
// either reloads from 0xA4:0xA5 (bit 1 set) or clears to zero, per
// io_bus.rs's hblank().
func (m *Machine) tickHBlankCounter() {
	ctrl := m.Port.Get(portBlankCtrl)
	if ctrl&1 == 0 {
		return
	}
	lo, hi := m.Port.Get(portHBlankCntL), m.Port.Get(portHBlankCntH)
	counter := uint16(lo) | uint16(hi)<<8
	if counter == 1 {
		m.raiseIntCause(intCauseHBlankCounter)
		if ctrl&2 != 0 {
			m.Port.Set(portHBlankCntL, m.Port.Get(portHBlankRldL))
			m.Port.Set(portHBlankCntH, m.Port.Get(portHBlankRldH))
		} else {
			m.Port.Set(portHBlankCntL, 0)
			m.Port.Set(portHBlankCntH, 0)
		}
		return
	}
	counter--
	m.Port.Set(portHBlankCntL, uint8(counter))
	m.Port.Set(portHBlankCntH, uint8(counter>>8))
}

// tickVBlankCounter mirrors tickHBlankCounter for the VBLANK down-counter at
// 0xAA:0xAB (BLANK_CTRL bit 2 enable, bit 3 reload, reload source
// 0xA6:0xA7), stepped once per frame on entry to VBLANK rather than once per
// scanline, per io_bus.rs's vblank().
func (m *Machine) tickVBlankCounter() {
	ctrl := m.Port.Get(portBlankCtrl)
	if ctrl&4 == 0 {
		return
	}
	lo, hi := m.Port.Get(portVBlankCntL), m.Port.Get(portVBlankCntH)
	counter := uint16(lo) | uint16(hi)<<8
	if counter == 1 {
		m.raiseIntCause(intCauseVBlankCounter)
		if ctrl&8 != 0 {
			m.Port.Set(portVBlankCntL, m.Port.Get(portVBlankRldL))
			m.Port.Set(portVBlankCntH, m.Port.Get(portVBlankRldH))
		} else {
			m.Port.Set(portVBlankCntL, 0)
			m.Port.Set(portVBlankCntH, 0)
		}
		return
	}
	counter--
	m.Port.Set(portVBlankCntL, uint8(counter))
	m.Port.Set(portVBlankCntH, uint8(counter>>8))
}

func (m *Machine) onSoundEvent(int) {
	m.Sound.Tick(&m.Port, m)
	if m.SDMA.Active() {
		m.sdmaTicksOwed++
		for m.sdmaTicksOwed >= m.SDMA.TickInterval() {
			m.sdmaTicksOwed -= m.SDMA.TickInterval()
			m.SDMA.Sample(&m.Port, m)
		}
	}
	m.events.Add(event.OwnerSound, m.onSoundEvent, soundTickCycles, 0)
}

// ReadByte/WriteByte/InSRAMWindow/ClaimDMA/ReleaseDMA satisfy dma.MemAccessor.
func (m *Machine) ReadByte(phys uint32) uint8      { return m.Mem.ReadByte(phys) }
func (m *Machine) WriteByte(phys uint32, v uint8)  { m.Mem.WriteByte(phys, v) }
func (m *Machine) InSRAMWindow(phys uint32) bool   { return membus.InSRAMWindow(phys) }
func (m *Machine) ClaimDMA()                       { m.Mem.Owner = membus.OwnerDMA }
func (m *Machine) ReleaseDMA()                     { m.Mem.Owner = membus.OwnerNone }

// IntCause/IntEnable/IntBase/NMIPending/ClearNMI satisfy cpu.Bus.
func (m *Machine) IntCause() uint8  { return m.Port.Get(portIntCause) }
func (m *Machine) IntEnable() uint8 { return m.Port.Get(portIntEnable) }
func (m *Machine) IntBase() uint8   { return m.Port.Get(portIntBase) }
func (m *Machine) NMIPending() bool { return m.nmiPending }
func (m *Machine) ClearNMI()        { m.nmiPending = false }

// SetKey forwards a keypad edge from the host shell (§4.7, §6) and raises the
// KEY interrupt-cause bit (masked by INT_ENABLE) on a newly-pressed,
// currently-scanned button.
func (m *Machine) SetKey(bit uint16, pressed bool) {
	rising := m.Keypad.SetKey(bit, pressed)
	scanBits := m.Port.Get(portKeyScan) & 0x70
	if rising && keypad.AnyRisingEnabled(bit, scanBits) {
		m.raiseIntCause(intCauseKey)
	}
}

// Frame returns the most recently completed frame's decoded pixels (§6).
func (m *Machine) Frame() *[display.Width * display.Height]uint32 {
	return &m.Display.Frame
}

// LoadROM swaps in a new cartridge and resets the machine (§10.1's IPL/ROM
// load command).
func (m *Machine) LoadROM(rom, save []byte) error {
	cart, err := cartridge.Load(rom, save)
	if err != nil {
		return fmt.Errorf("core: load ROM: %w", err)
	}
	m.Cart = cart
	m.Mem.Cart = cart
	m.Mem.Color = cart.Color
	m.Reset()
	return nil
}

// Command is a value posted to the scheduler goroutine from the interactive
// console or the host shell (§5, §10.1), replacing the teacher's
// master.Packet variants with the handheld's own external events. Queries
// (CmdShowRegs, CmdShowPorts) route through the same channel as mutating
// commands so the console never touches Machine fields from a different
// goroutine than the one running Step.
type Command struct {
	Kind CommandKind
	Key  uint16
	Down bool
	ROM  []byte
	Save []byte

	PortLo, PortHi uint8

	Reply     chan error
	ReplyText chan string
}

// CommandKind enumerates the Command variants the scheduler accepts.
type CommandKind int

const (
	CmdSetKey CommandKind = iota
	CmdReset
	CmdLoadROM
	CmdRun
	CmdStop
	CmdStep
	CmdShowRegs
	CmdShowPorts
)

// Scheduler runs the Machine's Step loop on its own goroutine (§5, §10.1),
// selecting over a done channel and a command channel the way the teacher's
// core.Start() selects over done/master.
type Scheduler struct {
	wg      sync.WaitGroup
	done    chan struct{}
	cmds    chan Command
	running bool

	Machine *Machine
	log     *slog.Logger
}

// NewScheduler builds a Scheduler around an already-constructed Machine.
func NewScheduler(m *Machine, log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{
		Machine: m,
		done:    make(chan struct{}),
		cmds:    make(chan Command, 16),
		running: true,
		log:     log,
	}
}

// Commands exposes the channel external collaborators post Command values
// to; the console reader and host shell never touch the Machine directly.
func (s *Scheduler) Commands() chan<- Command { return s.cmds }

// Start runs the scheduler loop until Stop is called (§5, §10.1).
func (s *Scheduler) Start() {
	s.wg.Add(1)
	defer s.wg.Done()
	for {
		if s.running {
			s.Machine.Step()
			select {
			case <-s.done:
				s.log.Info("scheduler stopped")
				return
			case cmd := <-s.cmds:
				s.process(cmd)
			default:
			}
			continue
		}
		// Paused: block until a command or shutdown arrives rather than
		// spinning.
		select {
		case <-s.done:
			s.log.Info("scheduler stopped")
			return
		case cmd := <-s.cmds:
			s.process(cmd)
		}
	}
}

func (s *Scheduler) process(cmd Command) {
	switch cmd.Kind {
	case CmdSetKey:
		s.Machine.SetKey(cmd.Key, cmd.Down)
	case CmdReset:
		s.Machine.Reset()
	case CmdLoadROM:
		err := s.Machine.LoadROM(cmd.ROM, cmd.Save)
		if cmd.Reply != nil {
			cmd.Reply <- err
		} else if err != nil {
			s.log.Error(err.Error())
		}
	case CmdRun:
		s.running = true
	case CmdStop:
		s.running = false
	case CmdStep:
		s.Machine.Step()
	case CmdShowRegs:
		if cmd.ReplyText != nil {
			cmd.ReplyText <- s.Machine.RegsText()
		}
	case CmdShowPorts:
		if cmd.ReplyText != nil {
			cmd.ReplyText <- s.Machine.PortsText(cmd.PortLo, cmd.PortHi)
		}
	}
}

// Stop shuts the scheduler down gracefully, matching the teacher's
// timeout-bounded core.Stop().
func (s *Scheduler) Stop() {
	close(s.done)
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		s.log.Warn("timed out waiting for scheduler to finish")
	}
}
