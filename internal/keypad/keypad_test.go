/*
 * wondercore - Keypad matrix test set
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

package keypad

import "testing"

func TestSetKeyRisingEdge(t *testing.T) {
	var k Keypad
	if rising := k.SetKey(A, true); !rising {
		t.Error("pressing a released button should report a rising edge")
	}
	if k.Mask&A == 0 {
		t.Error("Mask should have A set after pressing it")
	}
}

func TestSetKeyNoRisingEdgeWhileHeld(t *testing.T) {
	var k Keypad
	k.SetKey(A, true)
	if rising := k.SetKey(A, true); rising {
		t.Error("pressing an already-pressed button should not report a rising edge")
	}
}

func TestSetKeyRelease(t *testing.T) {
	var k Keypad
	k.SetKey(A, true)
	if rising := k.SetKey(A, false); rising {
		t.Error("releasing a button should never report a rising edge")
	}
	if k.Mask&A != 0 {
		t.Error("Mask should clear A after releasing it")
	}
}

func TestPollYGroup(t *testing.T) {
	var k Keypad
	k.SetKey(Y1, true)
	k.SetKey(Y3, true)
	if got := k.Poll(ScanY); got != (Y1 | Y3) {
		t.Errorf("Poll(ScanY) = %#x, want %#x", got, Y1|Y3)
	}
}

func TestPollXGroupShiftsDown(t *testing.T) {
	var k Keypad
	k.SetKey(X1, true)
	k.SetKey(X4, true)
	if got := k.Poll(ScanX); got != (Y1 | Y4) {
		t.Errorf("Poll(ScanX) = %#x, want %#x (X bits reported in the low nibble)", got, Y1|Y4)
	}
}

func TestPollActionGroupShiftsDown(t *testing.T) {
	var k Keypad
	k.SetKey(Start, true)
	k.SetKey(B, true)
	got := k.Poll(ScanAction)
	want := uint8((Start | B) >> 8)
	if got != want {
		t.Errorf("Poll(ScanAction) = %#x, want %#x", got, want)
	}
}

func TestPollUnselectedGroupIsZero(t *testing.T) {
	var k Keypad
	k.SetKey(Y1, true)
	if got := k.Poll(ScanX | ScanAction); got != 0 {
		t.Errorf("Poll with Y unselected = %#x, want 0", got)
	}
}

func TestPollCombinesMultipleGroups(t *testing.T) {
	var k Keypad
	k.SetKey(Y1, true)
	k.SetKey(X1, true)
	got := k.Poll(ScanY | ScanX)
	want := uint8(Y1 | Y1) // Y1 present, X1 shifts into Y1's bit position
	if got != want {
		t.Errorf("Poll(ScanY|ScanX) = %#x, want %#x", got, want)
	}
}

func TestAnyRisingEnabled(t *testing.T) {
	cases := []struct {
		bit      uint16
		scanBits uint8
		want     bool
	}{
		{Y2, ScanY, true},
		{Y2, ScanX | ScanAction, false},
		{X3, ScanX, true},
		{X3, ScanY, false},
		{A, ScanAction, true},
		{A, ScanY | ScanX, false},
	}
	for _, c := range cases {
		if got := AnyRisingEnabled(c.bit, c.scanBits); got != c.want {
			t.Errorf("AnyRisingEnabled(%#x, %#x) = %v, want %v", c.bit, c.scanBits, got, c.want)
		}
	}
}
