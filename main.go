/*
 * wondercore - Main process.
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

package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	getopt "github.com/pborman/getopt/v2"

	"github.com/handheld-sim/wondercore/command/parser"
	"github.com/handheld-sim/wondercore/command/reader"
	config "github.com/handheld-sim/wondercore/config/configparser"
	"github.com/handheld-sim/wondercore/internal/cartridge"
	"github.com/handheld-sim/wondercore/internal/core"
	logger "github.com/handheld-sim/wondercore/util/logger"

	_ "github.com/handheld-sim/wondercore/config/debugconfig"
)

var Logger *slog.Logger

func main() {
	optConfig := getopt.StringLong("config", 'c', "", "Configuration file")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optROM := getopt.StringLong("rom", 'r', "", "Cartridge ROM image")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	var file *os.File
	if *optLogFile != "" {
		file, _ = os.Create(*optLogFile)
	}
	programLevel := new(slog.LevelVar)
	programLevel.Set(slog.LevelDebug)
	debug := false
	handler := logger.New(file, &slog.HandlerOptions{Level: programLevel, AddSource: false}, &debug)
	Logger = slog.New(handler)
	slog.SetDefault(Logger)
	parser.VerboseHook = func(on bool) {
		debug = on
		handler.SetVerbose(&debug)
	}

	Logger.Info("wondercore started")

	if *optROM == "" {
		Logger.Error("please specify a cartridge ROM with --rom")
		os.Exit(1)
	}

	if *optConfig != "" {
		if _, err := os.Stat(*optConfig); err != nil {
			Logger.Error("configuration file not found: " + *optConfig)
			os.Exit(1)
		}
		if err := config.LoadConfigFile(*optConfig); err != nil {
			Logger.Error(err.Error())
			os.Exit(1)
		}
	}

	rom, err := os.ReadFile(*optROM)
	if err != nil {
		Logger.Error("reading ROM: " + err.Error())
		os.Exit(1)
	}

	savePath := *optROM + ".sav"
	save, err := os.ReadFile(savePath)
	if err != nil && !os.IsNotExist(err) {
		Logger.Error("reading save file: " + err.Error())
		os.Exit(1)
	}

	cart, err := cartridge.Load(rom, save)
	if err != nil {
		Logger.Error("loading cartridge: " + err.Error())
		os.Exit(1)
	}

	machine := core.New(cart, Logger)
	sched := core.NewScheduler(machine, Logger)
	go sched.Start()

	consoleDone := make(chan struct{})
	go func() {
		reader.ConsoleReader(sched)
		close(consoleDone)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigChan:
	case <-consoleDone:
	}

	Logger.Info("shutting down")
	sched.Stop()
	Logger.Info("stopped")
}
