package workflow

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"confab/internal/logging"
	"confab/internal/notifications"
	"confab/internal/queue"
	"confab/internal/services"
)

func (m *Manager) handleStageFailure(ctx context.Context, stageName string, item *queue.Item, stageErr error) {
	base := m.logger
	if base == nil {
		base = logging.NewNop()
	}
	logger := logging.WithContext(ctx, base).With(logging.String(logging.FieldComponent, "workflow-manager"))

	message := m.classifyStageFailure(stageName, stageErr)
	resolved := services.FailureStatus(stageErr)
	if resolved == queue.StatusReview {
		item.SetReview(message)
	} else {
		item.SetFailed(message)
	}

	logger.Error("stage failed",
		logging.Error(stageErr),
		logging.String("resolved_status", string(resolved)),
		logging.String("error_message", strings.TrimSpace(message)),
		logging.Alert("stage_failure"),
		logging.String(logging.FieldEventType, "stage_failure"),
	)

	if err := m.store.Update(ctx, item); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("daemon shutting down, could not update stage failure")
		} else {
			logger.Error("failed to persist stage failure", logging.Error(err))
		}
	}

	m.setLastItem(item)
	m.notifyStageFailure(ctx, logger, item, resolved, message)
}

func (m *Manager) notifyStageFailure(ctx context.Context, logger *slog.Logger, item *queue.Item, resolved queue.Status, message string) {
	if m.notifier == nil {
		return
	}

	event := notifications.EventItemFailed
	payload := notifications.Payload{"title": item.Title, "error": message}
	if resolved == queue.StatusReview {
		event = notifications.EventReviewRequired
		payload = notifications.Payload{"title": item.Title, "reason": message}
	}

	if err := m.notifier.Publish(ctx, event, payload); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("daemon shutting down, could not send failure notification")
		} else {
			logger.Debug("stage failure notification failed", logging.Error(err))
		}
	}
}

func (m *Manager) classifyStageFailure(stageName string, stageErr error) string {
	if stageErr == nil {
		return m.stageFailureMessage(stageName, "failed without error detail")
	}
	if message := strings.TrimSpace(services.UserMessage(stageErr)); message != "" {
		return message
	}
	return m.stageFailureMessage(stageName, "failed")
}

func (m *Manager) stageFailureMessage(stageName, defaultMsg string) string {
	if stageName != "" {
		return stageName + " " + defaultMsg
	}
	return "workflow " + defaultMsg
}
