package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/gofrs/flock"

	"confab/internal/config"
	"confab/internal/deps"
	"confab/internal/logging"
	"confab/internal/media/audio"
	"confab/internal/notifications"
	"confab/internal/preflight"
	"confab/internal/prompts"
	"confab/internal/queue"
	"confab/internal/workflow"
)

// Daemon coordinates the background processing services and enforces
// single-instance execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *queue.Store
	workflow *workflow.Manager
	notifier notifications.Service
	prompts  *prompts.Store
	watcher  *inboxWatcher
	api      *apiServer
	logPath  string

	hub     *logging.StreamHub
	archive *logging.EventArchive

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	Workflow     workflow.StatusSummary
	Dependencies []deps.Status
	QueueDBPath  string
	LockFilePath string
	InboxDir     string
	LogDir       string
}

// New constructs a daemon with initialized dependencies. The log hub,
// archive, notifier, and prompt store may be nil; the matching API surfaces
// degrade to no-ops without them.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger, wf *workflow.Manager, logPath string, hub *logging.StreamHub, archive *logging.EventArchive, notifier notifications.Service, promptStore *prompts.Store) (*Daemon, error) {
	if cfg == nil || store == nil || logger == nil || wf == nil {
		return nil, errors.New("daemon requires config, store, logger, and workflow manager")
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "confabd.lock")
	d := &Daemon{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		workflow: wf,
		notifier: notifier,
		prompts:  promptStore,
		logPath:  logPath,
		hub:      hub,
		archive:  archive,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	d.watcher = newInboxWatcher(cfg, store, notifier, logger)

	api, err := newAPIServer(cfg, d, logger)
	if err != nil {
		return nil, fmt.Errorf("configure api server: %w", err)
	}
	d.api = api
	return d, nil
}

// Start acquires the daemon lock and launches the workflow manager, the
// inbox watcher, and the HTTP API.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another confab daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	if err := d.workflow.Start(d.ctx); err != nil {
		d.abortStart()
		return fmt.Errorf("start workflow: %w", err)
	}
	d.watcher.Start(d.ctx)
	if err := d.api.start(d.ctx); err != nil {
		d.workflow.Stop()
		d.watcher.Stop()
		d.abortStart()
		return err
	}

	d.running.Store(true)
	d.logger.Info("confab daemon started", logging.String("lock", d.lockPath))
	return nil
}

func (d *Daemon) abortStart() {
	_ = d.lock.Unlock()
	if d.cancel != nil {
		d.cancel()
	}
	d.ctx = nil
	d.cancel = nil
}

// Stop stops background processing and releases the daemon lock. Items a
// worker held mid-stage are rolled back to their stage start so the next
// daemon run resumes them immediately.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.workflow.Stop()
	if rolled, err := d.store.RollbackProcessing(context.Background()); err != nil {
		d.logger.Warn("failed to roll back in-flight items", logging.Error(err))
	} else if rolled > 0 {
		d.logger.Info("rolled back in-flight items for next start", logging.Int64("count", rolled))
	}
	d.watcher.Stop()
	d.api.stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("confab daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// ListQueue returns queue items filtered by optional statuses.
func (d *Daemon) ListQueue(ctx context.Context, statuses []queue.Status) ([]*queue.Item, error) {
	if d.store == nil {
		return nil, errors.New("queue store unavailable")
	}
	if len(statuses) == 0 {
		return d.store.List(ctx)
	}
	return d.store.List(ctx, statuses...)
}

// ClearQueue removes all queue items.
func (d *Daemon) ClearQueue(ctx context.Context) (int64, error) {
	if d.store == nil {
		return 0, errors.New("queue store unavailable")
	}
	return d.store.Clear(ctx)
}

// ClearCompleted removes only completed queue items.
func (d *Daemon) ClearCompleted(ctx context.Context) (int64, error) {
	if d.store == nil {
		return 0, errors.New("queue store unavailable")
	}
	return d.store.ClearCompleted(ctx)
}

// ClearFailed removes only failed queue items.
func (d *Daemon) ClearFailed(ctx context.Context) (int64, error) {
	if d.store == nil {
		return 0, errors.New("queue store unavailable")
	}
	return d.store.ClearFailed(ctx)
}

// ResetStuck transitions in-flight items back to their stage start for retry.
func (d *Daemon) ResetStuck(ctx context.Context) (int64, error) {
	if d.store == nil {
		return 0, errors.New("queue store unavailable")
	}
	return d.store.ResetStuckProcessing(ctx)
}

// RetryFailed resets failed and review items (optionally a subset) back to
// their stage start.
func (d *Daemon) RetryFailed(ctx context.Context, ids []int64) (int64, error) {
	if d.store == nil {
		return 0, errors.New("queue store unavailable")
	}
	return d.store.RetryFailed(ctx, ids...)
}

// CancelItems routes waiting items to review with a user-stop reason. Items
// a worker currently holds are left untouched.
func (d *Daemon) CancelItems(ctx context.Context, ids []int64) (int64, error) {
	if d.store == nil {
		return 0, errors.New("queue store unavailable")
	}
	return d.store.CancelWaiting(ctx, ids...)
}

// RemoveItem deletes a queue item.
func (d *Daemon) RemoveItem(ctx context.Context, id int64) (bool, error) {
	if d.store == nil {
		return false, errors.New("queue store unavailable")
	}
	return d.store.Remove(ctx, id)
}

// Requeue parks an idle item at the given waiting status so the matching
// stage re-runs it. Returns false when a worker holds the item.
func (d *Daemon) Requeue(ctx context.Context, id int64, target queue.Status, stage string) (bool, error) {
	if d.store == nil {
		return false, errors.New("queue store unavailable")
	}
	return d.store.Requeue(ctx, id, target, stage)
}

// QueueHealth returns aggregate queue diagnostics.
func (d *Daemon) QueueHealth(ctx context.Context) (queue.HealthSummary, error) {
	if d.store == nil {
		return queue.HealthSummary{}, errors.New("queue store unavailable")
	}
	return d.store.Health(ctx)
}

// DatabaseHealth returns detailed database diagnostics.
func (d *Daemon) DatabaseHealth(ctx context.Context) (queue.DatabaseHealth, error) {
	if d.store == nil {
		return queue.DatabaseHealth{}, errors.New("queue store unavailable")
	}
	return d.store.CheckHealth(ctx)
}

// TestNotification pushes a test message through the configured notifier.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	if d.cfg == nil {
		return false, "configuration unavailable", errors.New("configuration unavailable")
	}
	if strings.TrimSpace(d.cfg.Notifications.NtfyTopic) == "" {
		return false, "ntfy topic not configured", nil
	}
	notifier := d.notifier
	if notifier == nil {
		notifier = notifications.NewService(d.cfg)
	}
	if err := notifier.Publish(ctx, notifications.EventTest, nil); err != nil {
		return false, "failed to send notification", err
	}
	return true, "test notification sent", nil
}

// AddFile enqueues a recording for processing.
func (d *Daemon) AddFile(ctx context.Context, sourcePath string) (*queue.Item, error) {
	if d.store == nil {
		return nil, errors.New("queue store unavailable")
	}
	trimmed := strings.TrimSpace(sourcePath)
	if trimmed == "" {
		return nil, errors.New("source path is required")
	}
	absPath, err := filepath.Abs(trimmed)
	if err != nil {
		return nil, fmt.Errorf("resolve source path: %w", err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("stat source file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("source path %q is a directory", absPath)
	}
	if !audio.IsSupportedSource(info.Name()) {
		return nil, fmt.Errorf("unsupported audio extension %q", strings.ToLower(filepath.Ext(info.Name())))
	}
	item, err := d.store.NewRecording(ctx, absPath)
	if err != nil {
		return nil, fmt.Errorf("enqueue recording: %w", err)
	}
	d.logger.Info("recording queued",
		logging.Int64(logging.FieldItemID, item.ID),
		logging.String("source", absPath))
	if d.notifier != nil {
		if err := d.notifier.Publish(ctx, notifications.EventRecordingQueued, notifications.Payload{"title": item.Title}); err != nil {
			d.logger.Warn("queued notification failed", logging.Error(err))
		}
	}
	return item, nil
}

// LogPath returns the path to the daemon log file.
func (d *Daemon) LogPath() string {
	return d.logPath
}

// APIAddr returns the bound HTTP API address, or empty when the API is
// disabled or not yet listening.
func (d *Daemon) APIAddr() string {
	if d.api == nil || d.api.listener == nil {
		return ""
	}
	return d.api.listener.Addr().String()
}

// LogStream returns the live log hub, if one was attached.
func (d *Daemon) LogStream() *logging.StreamHub {
	return d.hub
}

// LogArchive returns the on-disk log event archive, if one was attached.
func (d *Daemon) LogArchive() *logging.EventArchive {
	return d.archive
}

// Prompts returns the prompt store, if one was attached.
func (d *Daemon) Prompts() *prompts.Store {
	return d.prompts
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	summary := d.workflow.Status(ctx)
	return Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		Workflow:     summary,
		Dependencies: preflight.CheckSystemDeps(d.cfg),
		QueueDBPath:  filepath.Join(d.cfg.Paths.LogDir, "queue.db"),
		LockFilePath: d.lockPath,
		InboxDir:     d.cfg.Paths.InboxDir,
		LogDir:       d.cfg.Paths.LogDir,
	}
}
