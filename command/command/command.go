/*
 * wondercore - Command interface
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

// Package command holds the names shared between the console's parser and
// reader: the set of top-level verbs and the keypad button name table used
// by "set key".
package command

import "github.com/handheld-sim/wondercore/internal/keypad"

// Verbs is the list of top-level console commands, used for tab completion.
var Verbs = []string{"show", "set", "attach", "reset", "step", "continue", "stop", "debug", "quit"}

// KeyNames maps the lowercase button names accepted by "set key" to the
// keypad package's bit constants.
var KeyNames = map[string]uint16{
	"y1":    keypad.Y1,
	"y2":    keypad.Y2,
	"y3":    keypad.Y3,
	"y4":    keypad.Y4,
	"x1":    keypad.X1,
	"x2":    keypad.X2,
	"x3":    keypad.X3,
	"x4":    keypad.X4,
	"start": keypad.Start,
	"a":     keypad.A,
	"b":     keypad.B,
}
