package uilog

import (
	"context"
	"log/slog"
)

// SlogHandler adapts a Logger to slog.Handler so packages built against the
// standard library's structured logging (internal/miservice) feed the same
// ring buffer and JSONL file as the rest of the TUI's log output, component
// fixed at construction time (one handler per logging call site).
type SlogHandler struct {
	logger    *Logger
	component string
	attrs     []slog.Attr
}

// NewSlogHandler returns a handler that appends through logger under the
// given component name.
func NewSlogHandler(logger *Logger, component string) *SlogHandler {
	return &SlogHandler{logger: logger, component: component}
}

func (h *SlogHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *SlogHandler) Handle(_ context.Context, rec slog.Record) error {
	msg := rec.Message
	rec.Attrs(func(a slog.Attr) bool {
		msg += " " + a.String()
		return true
	})
	for _, a := range h.attrs {
		msg += " " + a.String()
	}
	switch {
	case rec.Level >= slog.LevelError:
		h.logger.Error(h.component, "%s", msg)
	case rec.Level >= slog.LevelWarn:
		h.logger.Warn(h.component, "%s", msg)
	case rec.Level >= slog.LevelInfo:
		h.logger.Info(h.component, "%s", msg)
	default:
		h.logger.Debug(h.component, "%s", msg)
	}
	return nil
}

func (h *SlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &SlogHandler{logger: h.logger, component: h.component, attrs: append(append([]slog.Attr(nil), h.attrs...), attrs...)}
}

func (h *SlogHandler) WithGroup(string) slog.Handler {
	return h
}
