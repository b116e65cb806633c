/*
 * wondercore - Keypad matrix
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

// Package keypad implements the 12-button matrix poll/edge-detect device.
package keypad

// Button bit positions within the 12-bit pressed mask.
const (
	Y1 = 1 << iota
	Y2
	Y3
	Y4
	X1
	X2
	X3
	X4
	Start
	A
	B
)

// Scan group enable bits, as presented in bits 6:4 of port 0xB5.
const (
	ScanY      = 1 << 4
	ScanX      = 1 << 5
	ScanAction = 1 << 6
)

const (
	yMask      = Y1 | Y2 | Y3 | Y4
	xMask      = X1 | X2 | X3 | X4
	actionMask = Start | A | B
)

// Keypad tracks which buttons are currently pressed and the last scan result.
type Keypad struct {
	Mask uint16 // 12-bit pressed mask
}

// SetKey updates the pressed mask for one button. It reports whether the
// button transitioned from released to pressed (a 0->1 edge), which the
// caller uses to decide whether to raise the KEY interrupt-cause bit.
func (k *Keypad) SetKey(bit uint16, pressed bool) (rising bool) {
	was := k.Mask&bit != 0
	if pressed {
		k.Mask |= bit
	} else {
		k.Mask &^= bit
	}
	return pressed && !was
}

// Poll returns the 4-bit nibble formed by OR-ing together whichever button
// groups are enabled in scanBits (bits 6:4 of port 0xB5), masked into the low
// nibble the way the hardware exposes it on read of 0xB5.
func (k *Keypad) Poll(scanBits uint8) uint8 {
	var bits uint16
	if scanBits&ScanY != 0 {
		bits |= k.Mask & yMask
	}
	if scanBits&ScanX != 0 {
		bits |= (k.Mask & xMask) >> 4
	}
	if scanBits&ScanAction != 0 {
		bits |= (k.Mask & actionMask) >> 8
	}
	return uint8(bits) & 0x0F
}

// AnyRisingEnabled reports whether bit is both a rising edge and currently
// selected by scanBits, the condition under which the KEY interrupt-cause
// bit should be OR'd in.
func AnyRisingEnabled(bit uint16, scanBits uint8) bool {
	switch {
	case bit&yMask != 0:
		return scanBits&ScanY != 0
	case bit&xMask != 0:
		return scanBits&ScanX != 0
	case bit&actionMask != 0:
		return scanBits&ScanAction != 0
	}
	return false
}
