// Package uilog implements ugdb's structured logging (spec.md §7,
// SPEC_FULL.md §2.3): a JSONL file appender under --log_dir, guarded by an
// advisory file lock so two ugdb processes sharing a log directory don't
// interleave mid-line, plus an in-memory ring buffer the Console container
// tails without re-reading the file. Grounded on the teacher's
// internal/activitylog.Logger (New/Close, one JSON-line-per-event append,
// a disabled/no-op mode), adapted from per-agent-hook events to ugdb's
// parser/protocol/OOB event vocabulary.
package uilog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

// Level is the severity of one logged line.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Line is one structured log entry.
type Line struct {
	Time      time.Time `json:"time"`
	Level     Level     `json:"level"`
	Component string    `json:"component"`
	Message   string    `json:"message"`
}

const ringSize = 500

// Logger appends JSONL lines to a file (when enabled) and always keeps the
// last ringSize lines in memory for the TUI to tail.
type Logger struct {
	mu    sync.Mutex
	file  *os.File
	lock  *flock.Flock
	ring  []Line
	ringI int
	nowFn func() time.Time
}

// New opens (creating if necessary) the log file under dir named
// "ugdb.log" and returns a Logger appending to it. When enabled is false,
// no file is created or written; only the in-memory ring buffer is kept.
func New(enabled bool, dir string) (*Logger, error) {
	l := &Logger{nowFn: time.Now}
	if !enabled {
		return l, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("uilog: create log dir: %w", err)
	}
	path := filepath.Join(dir, "ugdb.log")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("uilog: open log file: %w", err)
	}
	l.file = f
	l.lock = flock.New(path + ".lock")
	return l, nil
}

// Nop returns a Logger that writes no file and keeps only the in-memory
// ring buffer, for tests and contexts with no log directory configured.
func Nop() *Logger {
	return &Logger{nowFn: time.Now}
}

// Close releases the file handle and lock, if any were opened.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

func (l *Logger) append(level Level, component, message string) {
	line := Line{Time: l.nowFn(), Level: level, Component: component, Message: message}

	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.ring) < ringSize {
		l.ring = append(l.ring, line)
	} else {
		l.ring[l.ringI] = line
		l.ringI = (l.ringI + 1) % ringSize
	}

	if l.file == nil {
		return
	}
	data, err := json.Marshal(line)
	if err != nil {
		return
	}
	data = append(data, '\n')

	if l.lock != nil {
		if locked, err := l.lock.TryLock(); err == nil && locked {
			defer l.lock.Unlock()
		}
	}
	l.file.Write(data)
}

// Debug, Info, Warn, and Error append one structured line at the named
// component.
func (l *Logger) Debug(component, format string, args ...any) {
	l.append(LevelDebug, component, fmt.Sprintf(format, args...))
}
func (l *Logger) Info(component, format string, args ...any) {
	l.append(LevelInfo, component, fmt.Sprintf(format, args...))
}
func (l *Logger) Warn(component, format string, args ...any) {
	l.append(LevelWarn, component, fmt.Sprintf(format, args...))
}
func (l *Logger) Error(component, format string, args ...any) {
	l.append(LevelError, component, fmt.Sprintf(format, args...))
}

// Tail returns up to n of the most recent lines, oldest first, for the
// Console container to render without re-reading the log file.
func (l *Logger) Tail(n int) []Line {
	l.mu.Lock()
	defer l.mu.Unlock()

	total := len(l.ring)
	if n > total {
		n = total
	}
	out := make([]Line, 0, n)
	if total < ringSize {
		// Ring not yet wrapped: l.ring is already oldest-first.
		start := total - n
		return append(out, l.ring[start:total]...)
	}
	// Wrapped: oldest entry is at l.ringI.
	for i := 0; i < n; i++ {
		idx := (l.ringI + (total - n) + i) % ringSize
		out = append(out, l.ring[idx])
	}
	return out
}
