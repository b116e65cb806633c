/*
 * wondercore - Opcode base cycle-cost table
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

// opCycles is the base cost, in cycles, charged for each primary opcode
// before any effective-address penalty (added by fetchModRM) or REP
// per-iteration cost (added by runString) is layered on top. Values follow
// the 8086/V30 family's well-known base timings; group-escape opcodes
// (0x80-0x83, 0xC0/C1, 0xD0-0xD3, 0xF6/F7, 0xFE/FF, 0x8F) charge a
// representative base here and the sub-op handlers are free to add to
// c.cycles for variants that cost more (MUL/DIV do, in alu_ops.go).
var opCycles = [256]uint8{
	// 0x00-0x0F
	3, 3, 3, 3, 4, 4, 3, 5, 3, 3, 3, 3, 4, 4, 3, 0,
	// 0x10-0x1F
	3, 3, 3, 3, 4, 4, 3, 5, 3, 3, 3, 3, 4, 4, 3, 5,
	// 0x20-0x2F
	3, 3, 3, 3, 4, 4, 2, 4, 3, 3, 3, 3, 4, 4, 2, 4,
	// 0x30-0x3F
	3, 3, 3, 3, 4, 4, 2, 4, 3, 3, 3, 3, 4, 4, 2, 4,
	// 0x40-0x4F (INC/DEC reg16)
	2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2,
	// 0x50-0x5F (PUSH/POP reg16)
	4, 4, 4, 4, 4, 4, 4, 4, 5, 5, 5, 5, 5, 5, 5, 5,
	// 0x60-0x6F
	10, 9, 5, 0, 0, 0, 0, 0, 4, 38, 4, 29, 5, 5, 5, 5,
	// 0x70-0x7F (Jcc)
	4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4,
	// 0x80-0x8F
	4, 4, 4, 4, 5, 5, 4, 4, 2, 2, 2, 2, 2, 2, 2, 5,
	// 0x90-0x9F
	3, 3, 3, 3, 3, 3, 3, 3, 2, 5, 9, 10, 4, 4, 2, 2,
	// 0xA0-0xAF
	4, 4, 4, 4, 5, 5, 5, 5, 4, 4, 5, 5, 5, 5, 5, 5,
	// 0xB0-0xBF
	2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2,
	// 0xC0-0xCF
	3, 3, 10, 8, 5, 5, 2, 2, 8, 3, 10, 8, 6, 10, 8, 6,
	// 0xD0-0xDF
	2, 2, 2, 2, 7, 10, 2, 3, 1, 1, 1, 1, 1, 1, 1, 1,
	// 0xE0-0xEF
	5, 5, 5, 4, 5, 5, 5, 5, 5, 5, 9, 4, 5, 5, 5, 5,
	// 0xF0-0xFF
	1, 0, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2,
}

// repIterCost8/16 are the per-iteration costs runString charges for each
// iteration of a REP-prefixed block instruction (§4.1: "a per-iteration
// cost plus a one-time setup" — the one-time setup is opCycles above).
const (
	repIterCost8  = 2
	repIterCost16 = 3
)
