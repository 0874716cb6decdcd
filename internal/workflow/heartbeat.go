package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"confab/internal/logging"
	"confab/internal/queue"
)

const defaultHeartbeatInterval = 15 * time.Second

// HeartbeatMonitor keeps last_heartbeat fresh for items a worker is
// processing and reclaims items whose worker went silent.
type HeartbeatMonitor struct {
	store    *queue.Store
	logger   *slog.Logger
	interval time.Duration
	timeout  time.Duration
}

func NewHeartbeatMonitor(store *queue.Store, logger *slog.Logger, interval, timeout time.Duration) *HeartbeatMonitor {
	if interval <= 0 {
		interval = defaultHeartbeatInterval
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &HeartbeatMonitor{store: store, logger: logger, interval: interval, timeout: timeout}
}

// ReclaimStaleItems rolls items whose stage stopped heartbeating back to
// their landing status so another worker can pick them up. A zero timeout
// disables reclamation.
func (h *HeartbeatMonitor) ReclaimStaleItems(ctx context.Context, logger *slog.Logger) error {
	if h.timeout <= 0 {
		return nil
	}
	reclaimed, err := h.store.ReclaimStaleProcessing(ctx, time.Now().Add(-h.timeout))
	if err != nil {
		return err
	}
	if reclaimed > 0 {
		logger.Info("reclaimed stale items", logging.Int64("count", reclaimed))
	}
	return nil
}

// StartLoop ticks heartbeats for one item until ctx is cancelled.
func (h *HeartbeatMonitor) StartLoop(ctx context.Context, wg *sync.WaitGroup, itemID int64) {
	defer wg.Done()
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	logger := logging.WithContext(ctx, h.logger.With(logging.String(logging.FieldComponent, "workflow-heartbeat")))

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.beat(ctx, logger, itemID)
		}
	}
}

func (h *HeartbeatMonitor) beat(ctx context.Context, logger *slog.Logger, itemID int64) {
	err := h.store.UpdateHeartbeat(ctx, itemID)
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		logger.Info("daemon shutting down, heartbeat update cancelled")
	default:
		logger.Warn("heartbeat update failed", logging.Error(err))
	}
}
