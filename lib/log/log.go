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

// Package log provides structured logging for the starter kit clients, fixtures and CLI. It
// keeps one process-wide slog logger, packages are getting it through WithFunc.
package log

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"go.opentelemetry.io/contrib/bridges/otelslog"
)

type Level = slog.Level

const (
	LevelDebug Level = slog.LevelDebug
	LevelInfo  Level = slog.LevelInfo
	LevelWarn  Level = slog.LevelWarn
	LevelError Level = slog.LevelError
)

// Output formats
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Config describes how the global logger is built
type Config struct {
	Level        string `json:"level" yaml:"level"`                 // debug, info, warn, error
	Format       string `json:"format" yaml:"format"`               // console or json
	UseTimestamp bool   `json:"use_timestamp" yaml:"use_timestamp"` // Prefix the lines with time
	UseCaller    bool   `json:"use_caller" yaml:"use_caller"`       // Add source file:line to the records
}

// DefaultConfig returns default logging configuration
func DefaultConfig() *Config {
	return &Config{
		Level:        "info",
		Format:       FormatConsole,
		UseTimestamp: true,
	}
}

type state struct {
	mu     sync.RWMutex
	logger *slog.Logger
	level  Level
	out    io.Writer

	// Handler writing to out, the otel bridge is added on top of it
	local   slog.Handler
	bridged bool
}

var global = &state{out: os.Stdout}

func init() {
	_ = Initialize(DefaultConfig())
}

// ParseLevel converts string level to slog.Level, empty means info
func ParseLevel(levelStr string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("invalid log level %q", levelStr)
}

// SetOutput changes the writer used by the next Initialize call
func SetOutput(w io.Writer) {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.out = w
}

// Initialize rebuilds the global logger. The otel bridge stays when it was set up before.
func Initialize(config *Config) error {
	level, err := ParseLevel(config.Level)
	if err != nil {
		return err
	}
	opts := &slog.HandlerOptions{Level: level}
	if config.UseCaller {
		if opts.ReplaceAttr, err = relativeSource(); err != nil {
			return err
		}
		opts.AddSource = true
	}

	global.mu.Lock()
	defer global.mu.Unlock()

	switch config.Format {
	case FormatJSON:
		global.local = slog.NewJSONHandler(global.out, opts)
	case FormatConsole, "":
		h := NewConsoleHandler(global.out, opts)
		h.SetUseTimestamp(config.UseTimestamp)
		global.local = h
	default:
		return fmt.Errorf("invalid log format %q", config.Format)
	}
	global.level = level
	global.rebuild()
	return nil
}

// rebuild should be called with the lock held
func (s *state) rebuild() {
	if !s.bridged {
		s.logger = slog.New(s.local)
		return
	}
	s.logger = slog.New(fanout{s.local, otelslog.NewHandler("qa-starter-kit")})
}

// relativeSource shows the source path relative to the module root
func relativeSource() (func([]string, slog.Attr) slog.Attr, error) {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return nil, errors.New("unable to determine module root directory")
	}
	root := filepath.Dir(filepath.Dir(filepath.Dir(file)))
	return func(_ /*groups*/ []string, a slog.Attr) slog.Attr {
		source, ok := a.Value.Any().(*slog.Source)
		if !ok || a.Key != slog.SourceKey {
			return a
		}
		rel, err := filepath.Rel(root, source.File)
		if err != nil {
			rel = source.File
		}
		return slog.String(slog.SourceKey, rel+":"+strconv.Itoa(source.Line))
	}, nil
}

// SetupOtelIntegration duplicates every record into the OpenTelemetry log bridge, records are
// exported by the global LoggerProvider installed by monitoring
func SetupOtelIntegration() error {
	global.mu.Lock()
	defer global.mu.Unlock()

	global.bridged = true
	global.rebuild()
	return nil
}

// fanout passes the record to every enabled handler
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}

// GetLevel returns the configured minimal level
func GetLevel() Level {
	global.mu.RLock()
	defer global.mu.RUnlock()
	return global.level
}

func current() *slog.Logger {
	global.mu.RLock()
	defer global.mu.RUnlock()
	return global.logger
}

// WithFunc returns the logger which marks the records with package and function, the console
// handler shows them as [pack.func] prefix
func WithFunc(pack, fun string) *slog.Logger {
	if pack == "" {
		pack = "unknown"
	}
	if fun == "" {
		fun = "unknown"
	}
	return current().With(packKey, pack, funcKey, fun)
}

// Info logs on the global logger
func Info(msg string, args ...any) {
	current().Info(msg, args...)
}

// Error logs on the global logger
func Error(msg string, args ...any) {
	current().Error(msg, args...)
}
