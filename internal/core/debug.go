/*
 * wondercore - Machine-level trace toggles
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

import "errors"

const (
	// Debug options.
	debugDMA = 1 << iota
	debugEvent
)

var debugOption = map[string]int{
	"DMA":   debugDMA,   // Trace GDMA/SDMA trigger and completion.
	"EVENT": debugEvent, // Trace the scanline/sound event queue.
}

var debugMsk int

// Debug enables one of the machine's trace categories, set via the
// "DEBUG MACHINE" config line.
func Debug(opt string) error {
	flag, ok := debugOption[opt]
	if !ok {
		return errors.New("machine debug option invalid: " + opt)
	}
	debugMsk |= flag
	return nil
}
