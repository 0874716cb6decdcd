package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"confab/internal/logging"
	"confab/internal/queue"
	"confab/internal/services"
)

func (m *Manager) workerLogger(id int) *slog.Logger {
	if m.logger == nil {
		return logging.NewNop()
	}
	name := fmt.Sprintf("worker-%d", id)
	return m.logger.With(
		logging.String(logging.FieldComponent, "workflow-"+name),
		logging.String(logging.FieldWorker, name),
	)
}

// stageLogger routes stage output to the per-item log file so the daemon log
// stays readable; the stream hub still receives every record for live tails.
func (m *Manager) stageLogger(ctx context.Context, workerLogger *slog.Logger, item *queue.Item) *slog.Logger {
	base := workerLogger
	if base == nil {
		base = m.logger
	}
	if base == nil {
		base = logging.NewNop()
	}

	if item != nil {
		path, err := m.itemLogs.Ensure(item)
		if err != nil {
			base.Warn("item log unavailable", logging.Error(err))
		} else if handler, logErr := m.itemLogs.CreateHandler(path); logErr != nil {
			base.Warn("failed to create item log writer", logging.Error(logErr))
		} else {
			base = slog.New(handler).With(logging.Int64(logging.FieldItemID, item.ID))
		}
	}

	logger := logging.WithContext(ctx, base)
	if m.cfg != nil {
		if stageName, ok := services.StageFromContext(ctx); ok {
			if override := stageOverrideLevel(m.cfg.Logging.StageOverrides, stageName); override != "" {
				logger = logging.WithLevelOverride(logger, parseStageLevel(override))
			}
		}
	}
	return logger
}

func stageOverrideLevel(overrides map[string]string, stageName string) string {
	if len(overrides) == 0 {
		return ""
	}
	stageName = strings.ToLower(strings.TrimSpace(stageName))
	if stageName == "" {
		return ""
	}
	for key, value := range overrides {
		if strings.ToLower(strings.TrimSpace(key)) == stageName {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func parseStageLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func withStageContext(ctx context.Context, workerID int, stageName string, item *queue.Item, requestID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if item != nil {
		ctx = services.WithItemID(ctx, item.ID)
	}
	if stageName != "" {
		ctx = services.WithStage(ctx, stageName)
	}
	ctx = services.WithWorker(ctx, fmt.Sprintf("worker-%d", workerID))
	if requestID != "" {
		ctx = services.WithRequestID(ctx, requestID)
	}
	return ctx
}

func deriveStageLabel(status queue.Status) string {
	if status == "" {
		return ""
	}
	parts := strings.Fields(strings.ReplaceAll(string(status), "_", " "))
	for i, part := range parts {
		if part == "" {
			continue
		}
		runes := []rune(strings.ToLower(part))
		runes[0] = unicode.ToUpper(runes[0])
		parts[i] = string(runes)
	}
	return strings.Join(parts, " ")
}
