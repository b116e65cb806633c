/*
 * wondercore - 4-channel wavetable sound unit
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

// Package sound implements the 4-channel wavetable sound unit: four waveform
// samplers whose registers live in the I/O port file, channel 2's voice mode
// (the sound-DMA target), channel 3's frequency sweep, and channel 4's LFSR
// noise generator. The unit samples its registers from the port file on every
// tick rather than latching them on port writes, so a port write takes effect
// on the next mix tick with no wiring in the port decoder. Mixing to a host
// audio sink is out of scope; the unit exposes the mixed sample and keeps the
// LFSR read-back ports current.
package sound

// Ports is the port-file access the unit needs each tick; satisfied by
// iobus.Ports.
type Ports interface {
	Get(port uint8) byte
	Set(port uint8, value byte)
}

// MemReader reads waveform bytes out of WRAM; satisfied by the Machine.
type MemReader interface {
	ReadByte(phys uint32) uint8
}

// Sound register ports.
const (
	portFreqBase   = 0x80 // 0x80-0x87: 11-bit frequency pairs, channels 1-4
	portVolBase    = 0x88 // 0x88-0x8B: packed left/right 4-bit volumes
	portVoiceOut   = 0x89 // channel 2 voice sample, fed by the sound DMA
	portSweepStep  = 0x8C
	portSweepTime  = 0x8D
	portNoiseCtrl  = 0x8E
	portWaveBase   = 0x8F // waveform table base, in 64-byte units
	portControl    = 0x90
	portOutputCtrl = 0x91
	portLFSRLo     = 0x92
	portLFSRHi     = 0x93
	portVoiceVol   = 0x94
)

// Control register (0x90) bits.
const (
	ctrlEnb1  = 1 << 0
	ctrlEnb2  = 1 << 1
	ctrlEnb3  = 1 << 2
	ctrlEnb4  = 1 << 3
	ctrlVoice = 1 << 5
	ctrlSweep = 1 << 6
	ctrlNoise = 1 << 7
)

// channel is one waveform sampler: 32 4-bit samples stepped at the channel's
// programmed period. Voice and noise modes override its output, never its
// stepping state.
type channel struct {
	waveform    [16]byte
	frequency   uint16
	sampleClock uint16
	sampleIdx   int
	sample      uint8
}

func (c *channel) tick() uint8 {
	if c.sampleClock > 0 {
		c.sampleClock--
	}
	if c.sampleClock == 0 {
		c.sampleClock = c.frequency
		c.sampleIdx = (c.sampleIdx + 1) & 0x1F
		b := c.waveform[c.sampleIdx/2]
		c.sample = (b >> ((uint(c.sampleIdx) & 1) * 4)) & 0x0F
	}
	return c.sample
}

// Unit owns the four channels and the sweep/noise clocks.
type Unit struct {
	ch [4]channel

	sweepClock int
	stepClock  int

	noiseClock  uint16
	noiseActive bool
	noiseSample uint8

	// Output is the most recent mixed sample, for a host sink to read.
	Output uint8
}

// Reset clears all channel and clock state.
func (u *Unit) Reset() {
	*u = Unit{}
}

// Tick advances the unit by one 128-cycle sound tick (§5): refresh waveforms
// and frequencies from the port file and WRAM, step sweep and noise, tick the
// enabled channels, and mix the result through the per-channel volume
// registers and the output divider. Returns the mixed sample.
func (u *Unit) Tick(p Ports, mem MemReader) uint8 {
	ctrl := p.Get(portControl)

	u.stepSweep(p, ctrl)
	u.stepNoise(p, ctrl)
	u.loadWaveforms(p, mem)
	u.loadFrequencies(p)

	samples := u.channelOutputs(p, ctrl)

	var left, right int
	for i := 0; i < 4; i++ {
		vol := p.Get(portVolBase + uint8(i))
		l := int(samples[i]) * int(vol>>4)
		r := int(samples[i]) * int(vol&0xF)

		if i == 1 && ctrl&ctrlVoice != 0 {
			// Voice mode replaces channel 2's volume path with the coarse
			// full/half enables in the voice volume register.
			voice := int(samples[1])
			vv := p.Get(portVoiceVol)
			switch {
			case vv&0x1 != 0:
				r = voice
			case vv&0x2 != 0:
				r = voice >> 1
			default:
				r = 0
			}
			switch {
			case vv&0x4 != 0:
				l = voice
			case vv&0x8 != 0:
				l = voice >> 1
			default:
				l = 0
			}
		}
		left += l
		right += r
	}

	// The output control's divider bits scale the speaker mix; the headphone
	// bit selects the same mix here since there is no host sink behind it.
	shift := uint(p.Get(portOutputCtrl)>>1) & 3
	u.Output = uint8((left + right) >> shift)
	return u.Output
}

// channelOutputs ticks each enabled channel and applies the voice and noise
// output overrides for channels 2 and 4.
func (u *Unit) channelOutputs(p Ports, ctrl uint8) [4]uint8 {
	var out [4]uint8

	if ctrl&ctrlEnb1 != 0 {
		out[0] = u.ch[0].tick()
	}

	var sample2 uint8
	if ctrl&ctrlEnb2 != 0 {
		sample2 = u.ch[1].tick()
	}
	if ctrl&ctrlVoice != 0 {
		out[1] = p.Get(portVoiceOut)
	} else {
		out[1] = sample2
	}

	if ctrl&ctrlEnb3 != 0 {
		out[2] = u.ch[2].tick()
	}

	var sample4 uint8
	if ctrl&ctrlEnb4 != 0 {
		sample4 = u.ch[3].tick()
	}
	if u.noiseActive {
		out[3] = u.noiseSample
	} else {
		out[3] = sample4
	}

	return out
}

// loadWaveforms refreshes all four channels' 16-byte waveforms from WRAM at
// the table base in port 0x8F (in 64-byte units), channel n at base + n*16.
func (u *Unit) loadWaveforms(p Ports, mem MemReader) {
	base := uint32(p.Get(portWaveBase)) << 6
	for c := range u.ch {
		for i := 0; i < 16; i++ {
			u.ch[c].waveform[i] = mem.ReadByte(base + uint32(c*16+i))
		}
	}
}

// loadFrequencies refreshes the channel periods from the 11-bit frequency
// registers: the stored value counts up toward 2048, so the period is the
// remainder.
func (u *Unit) loadFrequencies(p Ports) {
	for c := range u.ch {
		lo := p.Get(portFreqBase + uint8(c*2))
		hi := p.Get(portFreqBase + uint8(c*2) + 1)
		f := uint16(lo) | uint16(hi)<<8
		u.ch[c].frequency = 2048 - f&0x7FF
	}
}

// stepSweep advances channel 3's frequency sweep: every 8192 sweep clocks,
// once the step timer in 0x8D expires, the signed step in 0x8C is added to
// the 11-bit frequency in 0x84:0x85 and written back; a result above 2047
// wraps to 0 and one below 0 wraps to 2047.
func (u *Unit) stepSweep(p Ports, ctrl uint8) {
	if ctrl&ctrlSweep == 0 || ctrl&ctrlEnb3 == 0 {
		return
	}
	u.sweepClock++
	if u.sweepClock <= 8192 {
		return
	}
	u.sweepClock = 0
	if u.stepClock > 0 {
		u.stepClock--
		return
	}
	u.stepClock = int(p.Get(portSweepTime)&0x1F) - 1
	if u.stepClock < 0 {
		u.stepClock = 0
	}
	step := int16(int8(p.Get(portSweepStep)))
	old := int16(uint16(p.Get(0x84)) | uint16(p.Get(0x85))<<8)
	old &= 0x7FF
	next := old + step
	if next > 2047 {
		next = 0
	} else if next < 0 {
		next = 2047
	}
	p.Set(0x84, uint8(next))
	p.Set(0x85, uint8(uint16(next)>>8))
}

// lfsrTapBit maps the noise control's 3-bit tap select to the LFSR bit index
// XOR'd with bit 7 to produce the next random bit.
var lfsrTapBit = [8]uint{14, 10, 13, 4, 8, 6, 9, 11}

// stepNoise runs channel 4's LFSR: at the channel period, shift the 15-bit
// register one left, feeding back bit 7 XOR the selected tap bit, publish it
// through the read-back ports 0x92:0x93, and hold the channel's output at
// 0xFF or 0x00 from the generated bit. The reset bit (0x8E bit 3) clears the
// LFSR and self-clears.
func (u *Unit) stepNoise(p Ports, ctrl uint8) {
	if ctrl&ctrlNoise == 0 || ctrl&ctrlEnb4 == 0 {
		u.noiseActive = false
		return
	}
	noiseCtrl := p.Get(portNoiseCtrl)
	if noiseCtrl&0x10 == 0 {
		return
	}

	if u.noiseClock > 0 {
		u.noiseClock--
		return
	}
	freq := uint16(p.Get(0x86)) | uint16(p.Get(0x87))<<8
	u.noiseClock = (2048 - freq) & 0x1FF

	if noiseCtrl&0x08 != 0 {
		p.Set(portLFSRLo, 0)
		p.Set(portLFSRHi, 0)
		p.Set(portNoiseCtrl, noiseCtrl&0xF7)
	}

	lfsr := (uint16(p.Get(portLFSRLo)) | uint16(p.Get(portLFSRHi))<<8) & 0x7FFF
	tap := (lfsr >> lfsrTapBit[noiseCtrl&7]) & 1
	random := (lfsr>>7)&1 ^ tap
	lfsr = (lfsr<<1)&0x7FFF | random
	p.Set(portLFSRLo, uint8(lfsr))
	p.Set(portLFSRHi, uint8(lfsr>>8))

	u.noiseActive = true
	if random != 0 {
		u.noiseSample = 0xFF
	} else {
		u.noiseSample = 0x00
	}
}
