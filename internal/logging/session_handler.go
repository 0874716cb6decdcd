package logging

import (
	"context"
	"log/slog"
)

// FieldSessionID is the standardized structured logging key for daemon session identifiers.
const FieldSessionID = "session_id"

// WithSession returns a logger whose records all carry the given session ID.
// The daemon mints one ID per run so log lines from a single run group together.
func WithSession(logger *slog.Logger, sessionID string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if sessionID == "" {
		return logger
	}
	return slog.New(&sessionHandler{base: logger.Handler(), id: sessionID})
}

// sessionHandler stamps every record with a session_id attribute before
// delegating to the wrapped handler.
type sessionHandler struct {
	base slog.Handler
	id   string
}

func (h *sessionHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.base.Enabled(ctx, level)
}

func (h *sessionHandler) Handle(ctx context.Context, record slog.Record) error {
	record.AddAttrs(slog.String(FieldSessionID, h.id))
	return h.base.Handle(ctx, record)
}

func (h *sessionHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &sessionHandler{base: h.base.WithAttrs(attrs), id: h.id}
}

func (h *sessionHandler) WithGroup(name string) slog.Handler {
	return &sessionHandler{base: h.base.WithGroup(name), id: h.id}
}
