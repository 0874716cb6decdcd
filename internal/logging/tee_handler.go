package logging

import (
	"context"
	"log/slog"
)

// teeHandler forwards each record to every sink that accepts its level. The
// daemon uses this to mirror console output into the session log, the stream
// hub, and per-item log files.
type teeHandler struct {
	sinks []slog.Handler
}

func newTeeHandler(sinks ...slog.Handler) slog.Handler {
	live := make([]slog.Handler, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			live = append(live, s)
		}
	}
	switch len(live) {
	case 0:
		return NoopHandler{}
	case 1:
		return live[0]
	}
	return &teeHandler{sinks: live}
}

func (h *teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, sink := range h.sinks {
		if sink.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *teeHandler) Handle(ctx context.Context, record slog.Record) error {
	var firstErr error
	remaining := 0
	for _, sink := range h.sinks {
		if sink.Enabled(ctx, record.Level) {
			remaining++
		}
	}
	for _, sink := range h.sinks {
		if !sink.Enabled(ctx, record.Level) {
			continue
		}
		rec := record
		if remaining > 1 {
			rec = record.Clone()
		}
		remaining--
		if err := sink.Handle(ctx, rec); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (h *teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(h.sinks))
	for i, sink := range h.sinks {
		next[i] = sink.WithAttrs(attrs)
	}
	return &teeHandler{sinks: next}
}

func (h *teeHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(h.sinks))
	for i, sink := range h.sinks {
		next[i] = sink.WithGroup(name)
	}
	return &teeHandler{sinks: next}
}

// TeeLogger duplicates base's output into the extra handlers. A nil base
// yields a logger writing only to the extras.
func TeeLogger(base *slog.Logger, extras ...slog.Handler) *slog.Logger {
	if base == nil {
		return slog.New(newTeeHandler(extras...))
	}
	all := append([]slog.Handler{base.Handler()}, extras...)
	return slog.New(newTeeHandler(all...))
}

// TeeHandler combines several handlers into one that writes to all of them.
func TeeHandler(handlers ...slog.Handler) slog.Handler {
	return newTeeHandler(handlers...)
}
