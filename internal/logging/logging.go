// Package logging wraps log/slog so the rest of the module depends on this
// package rather than on slog directly, keeping the structured-logging
// backend swappable without touching call sites.
package logging

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Level aliases slog.Level so callers never import log/slog themselves.
type Level = slog.Level

const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// Logger wraps slog.Logger with the module's defaults.
type Logger struct {
	*slog.Logger
}

// Config controls how a Logger renders output.
type Config struct {
	Level  Level
	Output io.Writer
	JSON   bool
}

// DefaultConfig returns text logging at info level to stderr.
func DefaultConfig() Config {
	return Config{Level: LevelInfo, Output: os.Stderr}
}

// New builds a Logger from cfg.
func New(cfg Config) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: cfg.Level}

	var handler slog.Handler
	if cfg.JSON {
		handler = slog.NewJSONHandler(cfg.Output, opts)
	} else {
		handler = slog.NewTextHandler(cfg.Output, opts)
	}
	return &Logger{Logger: slog.New(handler)}
}

// Discard returns a Logger that drops everything. Safe zero-ish default for
// callers that do not inject one.
func Discard() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// LineWriter adapts a Logger into an io.Writer that buffers arbitrary writes
// and logs one entry per complete newline-delimited line, used to route a
// subprocess's stderr into structured logs instead of losing it or
// interleaving it with the rest of the module's output. Writes are not
// assumed to align with line boundaries.
type LineWriter struct {
	log   *Logger
	level Level
	field string

	mu  sync.Mutex
	buf bytes.Buffer
}

// NewLineWriter returns a LineWriter that logs each complete line under
// "subprocess output" with the line attached as field.
func NewLineWriter(log *Logger, level Level, field string) *LineWriter {
	if log == nil {
		log = Discard()
	}
	return &LineWriter{log: log, level: level, field: field}
}

// Write implements io.Writer, buffering p and logging each complete line it
// finds. A trailing partial line is held until the next Write or Close.
func (w *LineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.buf.Write(p)
	for {
		line, err := w.buf.ReadString('\n')
		if err != nil {
			w.buf.Reset()
			w.buf.WriteString(line)
			break
		}
		w.log.Log(nil, w.level, "subprocess output", w.field, strings.TrimSuffix(line, "\n"))
	}
	return len(p), nil
}

// Close flushes any buffered partial line as a final log entry.
func (w *LineWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.buf.Len() > 0 {
		w.log.Log(nil, w.level, "subprocess output", w.field, w.buf.String())
		w.buf.Reset()
	}
	return nil
}
