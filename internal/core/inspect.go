/*
 * wondercore - Machine inspection helpers for the interactive console
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

package core

import "fmt"

// RegsText renders the CPU's register file for the console's "show regs".
func (m *Machine) RegsText() string {
	c := &m.CPU
	return fmt.Sprintf(
		"AW=%04X CW=%04X DW=%04X BW=%04X SP=%04X BP=%04X IX=%04X IY=%04X\n"+
			"DS1=%04X PS=%04X SS=%04X DS0=%04X PC=%04X PSW=%04X",
		c.AW, c.CW, c.DW, c.BW, c.SP, c.BP, c.IX, c.IY,
		c.Segs[0], c.Segs[1], c.Segs[2], c.Segs[3], c.PC, c.PSW,
	)
}

// PortsText renders the inclusive port range [lo, hi] for "show ports".
func (m *Machine) PortsText(lo, hi uint8) string {
	out := ""
	for p := int(lo); p <= int(hi); p++ {
		if p > 0 && p%8 == 0 {
			out += "\n"
		}
		out += fmt.Sprintf("%02X=%02X ", p, m.Port.Get(uint8(p)))
	}
	return out
}
