package daemon

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"confab/internal/config"
	"confab/internal/logging"
	"confab/internal/queue"
	"confab/internal/testsupport"
)

func newTestWatcher(t *testing.T, cfg *config.Config) (*inboxWatcher, *queue.Store) {
	t.Helper()
	if err := os.MkdirAll(cfg.Paths.InboxDir, 0o755); err != nil {
		t.Fatalf("mkdir inbox: %v", err)
	}
	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	w := newInboxWatcher(cfg, store, nil, logging.NewNop())
	if w == nil {
		t.Fatal("expected watcher for configured inbox")
	}
	w.ctx = context.Background()
	return w, store
}

func TestInboxWatcherEnqueuesSettledFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	w, store := newTestWatcher(t, cfg)
	ctx := context.Background()

	path := filepath.Join(cfg.Paths.InboxDir, "standup.wav")
	if err := os.WriteFile(path, []byte("RIFF fake audio"), 0o644); err != nil {
		t.Fatalf("write recording: %v", err)
	}

	// First sighting only records a snapshot.
	w.poll()
	items, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("items after first poll = %d, want 0", len(items))
	}

	// Unchanged on the second poll, so it is considered settled.
	w.poll()
	items, err = store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("items after second poll = %d, want 1", len(items))
	}
	if items[0].SourcePath != path {
		t.Fatalf("source path = %q, want %q", items[0].SourcePath, path)
	}
	if items[0].Status != queue.StatusPending {
		t.Fatalf("status = %s, want %s", items[0].Status, queue.StatusPending)
	}

	// Further polls must not enqueue the same file again.
	w.poll()
	items, _ = store.List(ctx)
	if len(items) != 1 {
		t.Fatalf("items after third poll = %d, want 1", len(items))
	}
}

func TestInboxWatcherWaitsForGrowingFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	w, store := newTestWatcher(t, cfg)
	ctx := context.Background()

	path := filepath.Join(cfg.Paths.InboxDir, "long-recording.mp3")
	if err := os.WriteFile(path, []byte("partial"), 0o644); err != nil {
		t.Fatalf("write recording: %v", err)
	}
	w.poll()

	// The file grows between polls, so the snapshot resets.
	if err := os.WriteFile(path, []byte("partial plus more data"), 0o644); err != nil {
		t.Fatalf("grow recording: %v", err)
	}
	w.poll()
	items, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("items while growing = %d, want 0", len(items))
	}

	w.poll()
	items, _ = store.List(ctx)
	if len(items) != 1 {
		t.Fatalf("items after settling = %d, want 1", len(items))
	}
}

func TestInboxWatcherSkipsUnsupportedEntries(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	w, store := newTestWatcher(t, cfg)

	if err := os.WriteFile(filepath.Join(cfg.Paths.InboxDir, "agenda.txt"), []byte("notes"), 0o644); err != nil {
		t.Fatalf("write text file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(cfg.Paths.InboxDir, ".partial.wav"), []byte("tmp"), 0o644); err != nil {
		t.Fatalf("write dot file: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(cfg.Paths.InboxDir, "archive"), 0o755); err != nil {
		t.Fatalf("mkdir subdir: %v", err)
	}

	w.poll()
	w.poll()

	items, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("items = %d, want 0", len(items))
	}
}

func TestInboxWatcherDedupesKnownSource(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	w, store := newTestWatcher(t, cfg)
	ctx := context.Background()

	path := filepath.Join(cfg.Paths.InboxDir, "uploaded.flac")
	if err := os.WriteFile(path, []byte("fLaC"), 0o644); err != nil {
		t.Fatalf("write recording: %v", err)
	}
	if _, err := store.NewRecording(ctx, path); err != nil {
		t.Fatalf("NewRecording: %v", err)
	}

	w.poll()
	w.poll()

	items, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1 (no duplicate)", len(items))
	}
}

func TestInboxWatcherStartStop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Workflow.InboxPollInterval = 1
	w, store := newTestWatcher(t, cfg)
	ctx := context.Background()

	path := filepath.Join(cfg.Paths.InboxDir, "retro.m4a")
	if err := os.WriteFile(path, []byte("ftypM4A"), 0o644); err != nil {
		t.Fatalf("write recording: %v", err)
	}

	w.Start(ctx)
	defer w.Stop()

	deadline := time.Now().Add(5 * time.Second)
	for {
		items, err := store.List(ctx)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(items) == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("recording was not enqueued before deadline (items = %d)", len(items))
		}
		time.Sleep(50 * time.Millisecond)
	}

	w.Stop()
	// Stop is idempotent.
	w.Stop()
}
