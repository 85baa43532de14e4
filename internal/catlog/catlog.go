// Package catlog provides the leveled logger used across catgen: an
// INFO level always on, and a DEBUG level gated behind -d/--debug,
// built on the standard library's log package the way the teacher
// library's own examples and tests set up their loggers.
package catlog

import (
	"fmt"
	"io"
	"log"
	"os"
)

// Level is a logging verbosity level.
type Level int

const (
	// Info is always emitted.
	Info Level = iota
	// Debug is only emitted when the logger was created with debug
	// enabled.
	Debug
)

// Logger wraps a standard library *log.Logger with an INFO/DEBUG gate.
type Logger struct {
	debug bool
	l     *log.Logger
}

// New creates a Logger writing to w, with debug-level messages enabled
// iff debugEnabled is true.
func New(w io.Writer, debugEnabled bool) *Logger {
	return &Logger{
		debug: debugEnabled,
		l:     log.New(w, "", log.LstdFlags),
	}
}

// NewFileAndStderr opens path for appending (creating it if necessary)
// and returns a Logger that writes to both the file and stderr. The
// caller is responsible for closing the returned file handle via the
// second return value when done.
func NewFileAndStderr(path string, debugEnabled bool) (*Logger, *os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("catlog: open log file: %w", err)
	}

	return New(io.MultiWriter(f, os.Stderr), debugEnabled), f, nil
}

// Infof logs at INFO level, always emitted.
func (lg *Logger) Infof(format string, args ...any) {
	lg.l.Printf("[INFO] "+format, args...)
}

// Debugf logs at DEBUG level, emitted only when debug logging is enabled.
func (lg *Logger) Debugf(format string, args ...any) {
	if !lg.debug {
		return
	}
	lg.l.Printf("[DEBUG] "+format, args...)
}

// Warnf logs a warning, always emitted.
func (lg *Logger) Warnf(format string, args ...any) {
	lg.l.Printf("[WARN] "+format, args...)
}

// Errorf logs an error, always emitted.
func (lg *Logger) Errorf(format string, args ...any) {
	lg.l.Printf("[ERROR] "+format, args...)
}

// IsDebug reports whether debug-level logging is enabled.
func (lg *Logger) IsDebug() bool {
	return lg.debug
}
