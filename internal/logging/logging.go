// file: internal/logging/logging.go
// version: 1.1.0
// guid: 4b8d2e60-7a1f-4c39-95e2-c1d0f6a8b3e7

// Package logging wires zap into the line-oriented log callbacks used by
// the startlist writer and the multiplayer mutator.
package logging

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LineFunc receives one human-readable log line.
type LineFunc func(line string)

// New builds a zap logger. format "json" selects the production encoder,
// anything else the development console encoder.
func New(levelStr, format string) *zap.Logger {
	level := zapcore.InfoLevel
	switch strings.ToLower(levelStr) {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	}

	var cfg zap.Config
	if format == "json" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.DisableStacktrace = true
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// Lines adapts a zap logger into a LineFunc. Leading and trailing blank
// lines used for visual grouping are dropped; empty lines are skipped.
func Lines(l *zap.Logger) LineFunc {
	if l == nil {
		return Discard
	}
	return func(line string) {
		line = strings.Trim(line, "\n")
		if line == "" {
			return
		}
		l.Info(line)
	}
}

// Discard drops every line.
func Discard(string) {}

// Writer prints lines verbatim to w.
func Writer(w io.Writer) LineFunc {
	var mu sync.Mutex
	return func(line string) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintln(w, line)
	}
}

// OrDiscard returns f, or Discard when f is nil.
func OrDiscard(f LineFunc) LineFunc {
	if f == nil {
		return Discard
	}
	return f
}

// Recorder collects lines in memory.
type Recorder struct {
	mu    sync.Mutex
	lines []string
}

// Log appends a line. It has the LineFunc signature.
func (r *Recorder) Log(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, line)
}

// Lines returns a copy of the recorded lines.
func (r *Recorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}

// String joins the recorded lines with newlines.
func (r *Recorder) String() string {
	return strings.Join(r.Lines(), "\n")
}
