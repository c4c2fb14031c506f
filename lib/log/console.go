/**
 * Copyright 2025 Adobe. All rights reserved.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License. You may obtain a copy
 * of the License at http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software distributed under
 * the License is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR REPRESENTATIONS
 * OF ANY KIND, either express or implied. See the License for the specific language
 * governing permissions and limitations under the License.
 */

package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Attributes used by WithFunc, they are rendered as the line prefix instead of key=value
const (
	packKey = "pack"
	funcKey = "func"
)

// ConsoleHandler prints one line per record, the layout is readable next to go test output:
//
//	15:04:05 INFO  [pack.func] message key=value...
type ConsoleHandler struct {
	opts *slog.HandlerOptions
	w    io.Writer
	mu   *sync.Mutex

	useTimestamp bool
	palette      *consolePalette

	// Pre-rendered attrs from WithAttrs and the current group prefix
	pack, fun string
	prefixed  string
	group     string
}

type consolePalette struct {
	time, source, key *color.Color
	levels            map[slog.Level]*color.Color
}

func newConsolePalette(enabled bool) *consolePalette {
	p := &consolePalette{
		time:   color.New(color.FgHiBlack),
		source: color.New(color.Faint),
		key:    color.New(color.FgCyan),
		levels: map[slog.Level]*color.Color{
			slog.LevelDebug: color.New(color.FgMagenta),
			slog.LevelInfo:  color.New(color.FgBlue),
			slog.LevelWarn:  color.New(color.FgYellow),
			slog.LevelError: color.New(color.FgRed, color.Bold),
		},
	}
	for _, c := range append([]*color.Color{p.time, p.source, p.key}, p.levelColors()...) {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p *consolePalette) levelColors() []*color.Color {
	out := make([]*color.Color, 0, len(p.levels))
	for _, c := range p.levels {
		out = append(out, c)
	}
	return out
}

func (p *consolePalette) level(l slog.Level) *color.Color {
	switch {
	case l >= slog.LevelError:
		return p.levels[slog.LevelError]
	case l >= slog.LevelWarn:
		return p.levels[slog.LevelWarn]
	case l >= slog.LevelInfo:
		return p.levels[slog.LevelInfo]
	}
	return p.levels[slog.LevelDebug]
}

// NewConsoleHandler creates the handler, colors are enabled when w is a terminal
func NewConsoleHandler(w io.Writer, opts *slog.HandlerOptions) *ConsoleHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return &ConsoleHandler{
		opts:         opts,
		w:            w,
		mu:           &sync.Mutex{},
		useTimestamp: true,
		palette:      newConsolePalette(isTerminal(w) && os.Getenv("NO_COLOR") == ""),
	}
}

func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

// SetUseColor overrides the terminal detection
func (h *ConsoleHandler) SetUseColor(useColor bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.palette = newConsolePalette(useColor)
}

// SetUseTimestamp enables or disables the time prefix
func (h *ConsoleHandler) SetUseTimestamp(useTimestamp bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.useTimestamp = useTimestamp
}

func (h *ConsoleHandler) minLevel() slog.Level {
	if h.opts.Level == nil {
		return slog.LevelInfo
	}
	return h.opts.Level.Level()
}

// Enabled implements slog.Handler
func (h *ConsoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.minLevel()
}

// Handle implements slog.Handler
func (h *ConsoleHandler) Handle(_ context.Context, r slog.Record) error {
	var buf strings.Builder

	if h.useTimestamp && !r.Time.IsZero() {
		// Debug runs are usually about timings, so milliseconds are shown there
		layout := time.TimeOnly
		if h.minLevel() <= slog.LevelDebug {
			layout = "15:04:05.000"
		}
		buf.WriteString(h.palette.time.Sprint(r.Time.Format(layout)))
		buf.WriteByte(' ')
	}

	buf.WriteString(h.palette.level(r.Level).Sprintf("%-5s", levelName(r.Level)))
	buf.WriteByte(' ')

	pack, fun := h.pack, h.fun
	var attrs strings.Builder
	attrs.WriteString(h.prefixed)
	r.Attrs(func(a slog.Attr) bool {
		if h.group == "" && (a.Key == packKey || a.Key == funcKey) {
			if a.Key == packKey {
				pack = a.Value.String()
			} else {
				fun = a.Value.String()
			}
			return true
		}
		h.writeAttr(&attrs, h.group, a)
		return true
	})

	if pack != "" {
		source := pack
		if fun != "" {
			source += "." + fun
		}
		buf.WriteString(h.palette.source.Sprint("[" + source + "]"))
		buf.WriteByte(' ')
	}
	buf.WriteString(r.Message)
	buf.WriteString(attrs.String())
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, buf.String())
	return err
}

// writeAttr renders attribute as " group.key=value", groups are flattened
func (h *ConsoleHandler) writeAttr(buf *strings.Builder, group string, a slog.Attr) {
	if h.opts.ReplaceAttr != nil && a.Value.Kind() != slog.KindGroup {
		var groups []string
		if group != "" {
			groups = strings.Split(group, ".")
		}
		a = h.opts.ReplaceAttr(groups, a)
	}
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		sub := group
		if a.Key != "" {
			sub = joinGroup(group, a.Key)
		}
		for _, ga := range a.Value.Group() {
			h.writeAttr(buf, sub, ga)
		}
		return
	}

	buf.WriteByte(' ')
	buf.WriteString(h.palette.key.Sprint(joinGroup(group, a.Key)))
	buf.WriteByte('=')
	buf.WriteString(formatValue(a.Value))
}

func joinGroup(group, key string) string {
	if group == "" {
		return key
	}
	return group + "." + key
}

func formatValue(v slog.Value) string {
	var s string
	switch v.Kind() {
	case slog.KindTime:
		return v.Time().Format(time.RFC3339)
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindString:
		s = v.String()
	default:
		if err, ok := v.Any().(error); ok {
			s = err.Error()
		} else {
			s = v.String()
		}
	}
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return strconv.Quote(s)
	}
	return s
}

func levelName(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	}
	return "DEBUG"
}

// WithAttrs implements slog.Handler, the attributes are rendered once here
func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	var buf strings.Builder
	buf.WriteString(h.prefixed)
	for _, a := range attrs {
		if h.group == "" && a.Key == packKey {
			clone.pack = a.Value.String()
			continue
		}
		if h.group == "" && a.Key == funcKey {
			clone.fun = a.Value.String()
			continue
		}
		h.writeAttr(&buf, h.group, a)
	}
	clone.prefixed = buf.String()
	return &clone
}

// WithGroup implements slog.Handler
func (h *ConsoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.group = joinGroup(h.group, name)
	return &clone
}
