package daemon

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"log/slog"

	"confab/internal/config"
	"confab/internal/logging"
	"confab/internal/media/audio"
	"confab/internal/notifications"
	"confab/internal/queue"
)

type fileSnapshot struct {
	size    int64
	modTime time.Time
}

// inboxWatcher polls the inbox directory and enqueues recordings dropped
// into it. A file is enqueued only after its size and modification time hold
// still across two polls, so half-copied recordings never enter the queue.
type inboxWatcher struct {
	cfg      *config.Config
	store    *queue.Store
	notifier notifications.Service
	logger   *slog.Logger

	dir          string
	pollInterval time.Duration

	pending map[string]fileSnapshot
	seen    map[string]struct{}

	mu      sync.Mutex
	running bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func newInboxWatcher(cfg *config.Config, store *queue.Store, notifier notifications.Service, logger *slog.Logger) *inboxWatcher {
	if cfg == nil || store == nil {
		return nil
	}
	dir := strings.TrimSpace(cfg.Paths.InboxDir)
	if dir == "" {
		return nil
	}

	poll := time.Duration(cfg.Workflow.InboxPollInterval) * time.Second
	if poll <= 0 {
		poll = 10 * time.Second
	}

	watcherLogger := logger
	if watcherLogger != nil {
		watcherLogger = watcherLogger.With(logging.String("component", "inbox-watcher"))
	}

	return &inboxWatcher{
		cfg:          cfg,
		store:        store,
		notifier:     notifier,
		logger:       watcherLogger,
		dir:          dir,
		pollInterval: poll,
		pending:      make(map[string]fileSnapshot),
		seen:         make(map[string]struct{}),
	}
}

func (w *inboxWatcher) Start(ctx context.Context) {
	if w == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.ctx = runCtx
	w.cancel = cancel
	w.running = true

	w.wg.Add(1)
	go w.loop()
}

func (w *inboxWatcher) Stop() {
	if w == nil {
		return
	}
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	cancel := w.cancel
	w.running = false
	w.cancel = nil
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	w.wg.Wait()
}

func (w *inboxWatcher) loop() {
	defer w.wg.Done()

	w.poll()

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.poll()
		}
	}
}

func (w *inboxWatcher) poll() {
	ctx := w.ctx
	if ctx == nil {
		return
	}

	entries, err := os.ReadDir(w.dir)
	if err != nil {
		w.log().Warn("inbox scan failed", logging.Error(err))
		return
	}

	current := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") || !audio.IsSupportedSource(name) {
			continue
		}
		path := filepath.Join(w.dir, name)
		current[path] = struct{}{}
		if _, done := w.seen[path]; done {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		snap := fileSnapshot{size: info.Size(), modTime: info.ModTime()}
		prev, ok := w.pending[path]
		if !ok || prev.size != snap.size || !prev.modTime.Equal(snap.modTime) {
			// Still settling; check again next poll.
			w.pending[path] = snap
			continue
		}
		w.enqueue(ctx, path)
	}

	for path := range w.pending {
		if _, ok := current[path]; !ok {
			delete(w.pending, path)
		}
	}
	for path := range w.seen {
		if _, ok := current[path]; !ok {
			delete(w.seen, path)
		}
	}
}

func (w *inboxWatcher) enqueue(ctx context.Context, path string) {
	existing, err := w.store.FindBySourcePath(ctx, path)
	if err != nil {
		w.log().Warn("inbox dedupe lookup failed", logging.Error(err), logging.String("source", path))
		return
	}
	delete(w.pending, path)
	if existing != nil {
		w.seen[path] = struct{}{}
		return
	}

	item, err := w.store.NewRecording(ctx, path)
	if err != nil {
		w.log().Error("failed to enqueue inbox recording", logging.Error(err), logging.String("source", path))
		return
	}
	w.seen[path] = struct{}{}
	w.log().Info("inbox recording queued",
		logging.Int64(logging.FieldItemID, item.ID),
		logging.String("source", path))
	if w.notifier != nil {
		if err := w.notifier.Publish(ctx, notifications.EventRecordingQueued, notifications.Payload{"title": item.Title}); err != nil {
			w.log().Warn("queued notification failed", logging.Error(err))
		}
	}
}

func (w *inboxWatcher) log() *slog.Logger {
	if w.logger != nil {
		return w.logger
	}
	return logging.NewNop()
}
