/*
 * wondercore - Tile/sprite display controller
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

// Package display implements the scanline clock and tile/sprite decode
// contracts for the display controller. Pixel presentation to a host window
// is explicitly out of scope (see SPEC_FULL.md §1, §12); this package owns
// the frame buffer and the scanline-driven interrupt/counter side effects
// that the rest of the machine depends on.
package display

const (
	Width  = 224
	Height = 144

	CyclesPerLine = 256
	linesPerFrame = 159
)

// Controller owns the decoded RGB framebuffer and the scanline counter that
// drives HBLANK/VBLANK and the DISPLINE interrupt cause bits.
type Controller struct {
	Frame [Width * Height]uint32

	line        int
	lineCycles  int
}

// Reset returns the controller to line 0.
func (c *Controller) Reset() {
	c.line = 0
	c.lineCycles = 0
}

// Line returns the current scanline, 0..linesPerFrame-1.
func (c *Controller) Line() int { return c.line }

// Advance accounts cycles against the current scanline and reports whether a
// new scanline was entered, whether that scanline started VBLANK (line ==
// Height), and whether a full frame completed.
func (c *Controller) Advance(cycles int) (newLine, enteredVBlank, frameDone bool) {
	c.lineCycles += cycles
	if c.lineCycles < CyclesPerLine {
		return false, false, false
	}
	c.lineCycles -= CyclesPerLine
	c.line++
	if c.line == Height {
		enteredVBlank = true
	}
	if c.line >= linesPerFrame {
		c.line = 0
		frameDone = true
	}
	return true, enteredVBlank, frameDone
}

// DecodeTileRow decodes one 8x1 pixel strip of a 2bpp tile into an index
// slice, the contract display RAM consumers (sprites, background layers)
// share regardless of how those tiles are ultimately composited into Frame.
func DecodeTileRow(planeLo, planeHi byte) [8]uint8 {
	var out [8]uint8
	for i := 0; i < 8; i++ {
		bit := uint(7 - i)
		lo := (planeLo >> bit) & 1
		hi := (planeHi >> bit) & 1
		out[i] = lo | hi<<1
	}
	return out
}
