/*
 * wondercore - Wrapper for slog
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

// Package logger adapts slog to the console's two-sink logging need: every
// record goes to the session log file, and additionally to stderr when
// either the record is above debug level or the interactive "verbose"
// toggle (normally driven by the console's "debug" command) is on.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Handler is an slog.Handler that fans a formatted record out to a log file
// and, conditionally, to stderr. The two sinks share one text-rendering path
// so the on-screen and on-disk copies of a record always agree.
type Handler struct {
	sink    io.Writer
	next    slog.Handler
	mu      sync.Mutex
	verbose *bool
}

func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{sink: h.sink, next: h.next.WithAttrs(attrs), verbose: h.verbose}
}

func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{sink: h.sink, next: h.next.WithGroup(name), verbose: h.verbose}
}

// Handle renders a record as "<timestamp> <LEVEL>: <message> <attrs...>",
// one line per record, and writes it to whichever sinks are currently live.
func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	line := h.render(r)

	h.mu.Lock()
	defer h.mu.Unlock()

	var err error
	if h.sink != nil {
		_, err = h.sink.Write(line)
	}
	if (h.verbose != nil && *h.verbose) || r.Level > slog.LevelDebug {
		_, err = os.Stderr.Write(line)
	}
	return err
}

func (h *Handler) render(r slog.Record) []byte {
	var b strings.Builder
	b.WriteString(r.Time.Format("2006/01/02 15:04:05"))
	b.WriteByte(' ')
	b.WriteString(r.Level.String())
	b.WriteByte(':')
	b.WriteByte(' ')
	b.WriteString(r.Message)
	r.Attrs(func(a slog.Attr) bool {
		b.WriteByte(' ')
		b.WriteString(a.Value.String())
		return true
	})
	b.WriteByte('\n')
	return []byte(b.String())
}

// SetVerbose wires the handler to a live toggle (the console's "debug"
// command flips the bool the caller passed to New): when the pointee is
// true, every record reaches stderr regardless of level. The pointer is
// retained, not its value, so later flips take effect.
func (h *Handler) SetVerbose(verbose *bool) {
	h.verbose = verbose
}

// New builds a Handler that writes to file and, while *verbose is true or
// the record is above debug level, to stderr. A nil file (no --log flag)
// leaves only the stderr sink.
func New(file io.Writer, opts *slog.HandlerOptions, verbose *bool) *Handler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	if f, ok := file.(*os.File); ok && f == nil {
		file = nil
	}
	textSink := file
	if textSink == nil {
		textSink = io.Discard
	}
	return &Handler{
		sink: file,
		next: slog.NewTextHandler(textSink, &slog.HandlerOptions{
			Level:     opts.Level,
			AddSource: opts.AddSource,
		}),
		verbose: verbose,
	}
}
