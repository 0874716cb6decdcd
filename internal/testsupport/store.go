package testsupport

import (
	"context"
	"testing"

	"confab/internal/config"
	"confab/internal/queue"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewRecording creates a queue item for tests using the provided store.
func NewRecording(t testing.TB, store *queue.Store, sourcePath string) *queue.Item {
	t.Helper()

	item, err := store.NewRecording(context.Background(), sourcePath)
	if err != nil {
		t.Fatalf("store.NewRecording: %v", err)
	}
	return item
}
