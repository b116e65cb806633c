/*
 * wondercore - Debug options configuration.
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

// Package debugconfig registers the "DEBUG" config model that turns on the
// CPU's and the machine's trace categories from a config file line, e.g.
// "DEBUG CPU INST, IRQ" or "DEBUG MACHINE DMA".
package debugconfig

import (
	"errors"
	"strings"

	config "github.com/handheld-sim/wondercore/config/configparser"
	"github.com/handheld-sim/wondercore/internal/core"
	"github.com/handheld-sim/wondercore/internal/cpu"
)

func init() {
	config.RegisterModel("DEBUG", config.TypeOptions, setDebug)
}

func setDebug(_ uint16, target string, options []config.Option) error {
	switch strings.ToUpper(target) {
	case "CPU":
		return applyDebug(options, cpu.Debug)
	case "MACHINE":
		return applyDebug(options, core.Debug)
	default:
		return errors.New("debug target invalid: " + target)
	}
}

func applyDebug(options []config.Option, enable func(string) error) error {
	for _, opt := range options {
		if err := enable(strings.ToUpper(opt.Name)); err != nil {
			return err
		}
		for _, value := range opt.Value {
			if err := enable(strings.ToUpper(*value)); err != nil {
				return err
			}
		}
	}
	return nil
}
