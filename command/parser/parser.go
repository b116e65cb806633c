/*
 * wondercore - Console command parser
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

// Package parser turns one line of console input into a core.Command posted
// to the running Scheduler, mirroring the teacher's cmdLine/cmdList shape but
// scoped to machine inspection rather than SIMH-style device attach/detach.
package parser

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	cmdnames "github.com/handheld-sim/wondercore/command/command"
	"github.com/handheld-sim/wondercore/internal/core"
)

type handler func(args []string, sched *core.Scheduler) (quit bool, err error)

var cmdList = map[string]handler{
	"show":     cmdShow,
	"set":      cmdSet,
	"attach":   cmdAttach,
	"reset":    cmdReset,
	"step":     cmdStep,
	"continue": cmdContinue,
	"stop":     cmdStop,
	"debug":    cmdDebug,
	"quit":     cmdQuit,
}

// VerboseHook is installed by main so the "debug" command can flip the
// logger's verbose toggle without this package knowing about the handler.
var VerboseHook func(on bool)

// ProcessCommand parses and dispatches one line of console input.
func ProcessCommand(line string, sched *core.Scheduler) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}

	verb := strings.ToLower(fields[0])
	fn, ok := cmdList[verb]
	if !ok {
		return false, errors.New("unknown command: " + fields[0])
	}
	return fn(fields[1:], sched)
}

// CompleteCmd returns tab-completion candidates for the liner reader.
func CompleteCmd(line string) []string {
	fields := strings.Fields(line)
	if len(fields) > 1 || (len(fields) == 1 && strings.HasSuffix(line, " ")) {
		return completeArgs(fields)
	}

	prefix := ""
	if len(fields) == 1 {
		prefix = strings.ToLower(fields[0])
	}
	var out []string
	for _, v := range cmdnames.Verbs {
		if strings.HasPrefix(v, prefix) {
			out = append(out, v)
		}
	}
	return out
}

func completeArgs(fields []string) []string {
	if len(fields) == 0 {
		return nil
	}
	switch strings.ToLower(fields[0]) {
	case "show":
		return prefixMatch([]string{"show regs", "show ports"}, fields)
	case "set":
		return prefixMatch([]string{"set key"}, fields)
	}
	return nil
}

func prefixMatch(candidates []string, fields []string) []string {
	want := strings.ToLower(strings.Join(fields, " "))
	var out []string
	for _, c := range candidates {
		if strings.HasPrefix(c, want) {
			out = append(out, c)
		}
	}
	return out
}

func cmdShow(args []string, sched *core.Scheduler) (bool, error) {
	if len(args) == 0 {
		return false, errors.New("show requires an argument: regs or ports")
	}
	reply := make(chan string, 1)
	switch strings.ToLower(args[0]) {
	case "regs":
		sched.Commands() <- core.Command{Kind: core.CmdShowRegs, ReplyText: reply}
	case "ports":
		lo, hi, err := parsePortRange(args[1:])
		if err != nil {
			return false, err
		}
		sched.Commands() <- core.Command{Kind: core.CmdShowPorts, PortLo: lo, PortHi: hi, ReplyText: reply}
	default:
		return false, errors.New("show: unknown target " + args[0])
	}
	fmt.Println(<-reply)
	return false, nil
}

func parsePortRange(args []string) (lo, hi uint8, err error) {
	switch len(args) {
	case 0:
		return 0x00, 0xFF, nil
	case 1:
		v, err := strconv.ParseUint(args[0], 16, 8)
		if err != nil {
			return 0, 0, errors.New("show ports: invalid port " + args[0])
		}
		return uint8(v), uint8(v), nil
	default:
		loV, err1 := strconv.ParseUint(args[0], 16, 8)
		hiV, err2 := strconv.ParseUint(args[1], 16, 8)
		if err1 != nil || err2 != nil {
			return 0, 0, errors.New("show ports: invalid range " + args[0] + " " + args[1])
		}
		return uint8(loV), uint8(hiV), nil
	}
}

func cmdSet(args []string, sched *core.Scheduler) (bool, error) {
	if len(args) != 3 || strings.ToLower(args[0]) != "key" {
		return false, errors.New("usage: set key <name> <0|1>")
	}
	bit, ok := cmdnames.KeyNames[strings.ToLower(args[1])]
	if !ok {
		return false, errors.New("set key: unknown button " + args[1])
	}
	down := args[2] == "1"
	if !down && args[2] != "0" {
		return false, errors.New("set key: state must be 0 or 1")
	}
	sched.Commands() <- core.Command{Kind: core.CmdSetKey, Key: bit, Down: down}
	return false, nil
}

func cmdAttach(args []string, sched *core.Scheduler) (bool, error) {
	if len(args) < 2 || strings.ToLower(args[0]) != "rom" {
		return false, errors.New("usage: attach rom <path> [<save-path>]")
	}
	rom, err := os.ReadFile(args[1])
	if err != nil {
		return false, fmt.Errorf("attach rom: %w", err)
	}
	var save []byte
	if len(args) >= 3 {
		save, err = os.ReadFile(args[2])
		if err != nil && !os.IsNotExist(err) {
			return false, fmt.Errorf("attach rom: %w", err)
		}
	}
	reply := make(chan error, 1)
	sched.Commands() <- core.Command{Kind: core.CmdLoadROM, ROM: rom, Save: save, Reply: reply}
	return false, <-reply
}

func cmdReset(_ []string, sched *core.Scheduler) (bool, error) {
	sched.Commands() <- core.Command{Kind: core.CmdReset}
	return false, nil
}

func cmdStep(_ []string, sched *core.Scheduler) (bool, error) {
	sched.Commands() <- core.Command{Kind: core.CmdStep}
	return false, nil
}

func cmdContinue(_ []string, sched *core.Scheduler) (bool, error) {
	sched.Commands() <- core.Command{Kind: core.CmdRun}
	return false, nil
}

func cmdStop(_ []string, sched *core.Scheduler) (bool, error) {
	sched.Commands() <- core.Command{Kind: core.CmdStop}
	return false, nil
}

// cmdDebug flips console log verbosity: "debug on" mirrors every record to
// stderr, "debug off" restores level-gated output.
func cmdDebug(args []string, _ *core.Scheduler) (bool, error) {
	if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
		return false, errors.New("usage: debug <on|off>")
	}
	if VerboseHook == nil {
		return false, errors.New("debug: logging not configured")
	}
	VerboseHook(args[0] == "on")
	return false, nil
}

func cmdQuit(_ []string, _ *core.Scheduler) (bool, error) {
	return true, nil
}
