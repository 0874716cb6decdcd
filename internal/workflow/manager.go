package workflow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"confab/internal/config"
	"confab/internal/logging"
	"confab/internal/notifications"
	"confab/internal/queue"
)

// Manager coordinates queue processing using registered stage handlers.
type Manager struct {
	cfg          *config.Config
	store        *queue.Store
	logger       *slog.Logger
	pollInterval time.Duration
	notifier     notifications.Service

	heartbeat *HeartbeatMonitor
	itemLogs  *ItemLogger

	stages      []pipelineStage
	stageByProc map[queue.Status]pipelineStage
	claimOrder  []queue.Status
	workers     int

	mu       sync.RWMutex
	running  bool
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	lastErr  error
	lastItem *queue.Item
}

// NewManager constructs a workflow manager with the default notifier.
func NewManager(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Manager {
	return NewManagerWithStream(cfg, store, logger, notifications.NewService(cfg), nil)
}

// NewManagerWithNotifier constructs a workflow manager with a custom notifier (used in tests).
func NewManagerWithNotifier(cfg *config.Config, store *queue.Store, logger *slog.Logger, notifier notifications.Service) *Manager {
	return NewManagerWithStream(cfg, store, logger, notifier, nil)
}

// NewManagerWithStream constructs a workflow manager that also publishes item
// logs to the provided stream hub for live tailing.
func NewManagerWithStream(cfg *config.Config, store *queue.Store, logger *slog.Logger, notifier notifications.Service, hub *logging.StreamHub) *Manager {
	workers := cfg.Workflow.Workers
	if workers < 1 {
		workers = 1
	}
	return &Manager{
		cfg:          cfg,
		store:        store,
		logger:       logger,
		notifier:     notifier,
		pollInterval: time.Duration(cfg.Workflow.QueuePollInterval) * time.Second,
		heartbeat: NewHeartbeatMonitor(
			store,
			logger,
			time.Duration(cfg.Workflow.HeartbeatInterval)*time.Second,
			time.Duration(cfg.Workflow.HeartbeatTimeout)*time.Second,
		),
		itemLogs: NewItemLogger(cfg, hub),
		workers:  workers,
	}
}
