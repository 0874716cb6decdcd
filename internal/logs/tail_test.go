package logs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"confab/internal/logs"
)

func TestLastLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "confab.log")
	if err := os.WriteFile(path, []byte("a\nb\nc\n"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	result, err := logs.LastLines(path, 2)
	if err != nil {
		t.Fatalf("LastLines: %v", err)
	}
	if len(result.Lines) != 2 || result.Lines[0] != "b" || result.Lines[1] != "c" {
		t.Fatalf("unexpected lines: %#v", result.Lines)
	}
	if result.Offset == 0 {
		t.Fatal("expected offset to advance")
	}
}

func TestLastLinesMissingFile(t *testing.T) {
	result, err := logs.LastLines(filepath.Join(t.TempDir(), "absent.log"), 5)
	if err != nil {
		t.Fatalf("LastLines: %v", err)
	}
	if len(result.Lines) != 0 || result.Offset != 0 {
		t.Fatalf("expected empty result, got %#v", result)
	}
}

func TestReadSinceReturnsAppendedLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "confab.log")
	if err := os.WriteFile(path, []byte("start\n"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	initial, err := logs.LastLines(path, 1)
	if err != nil {
		t.Fatalf("initial tail: %v", err)
	}
	if len(initial.Lines) != 1 {
		t.Fatalf("expected initial line, got %#v", initial.Lines)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	done := make(chan struct{})
	go func(offset int64) {
		res, err := logs.ReadSince(ctx, path, offset, 5*time.Second)
		if err != nil {
			t.Errorf("follow error: %v", err)
		}
		if len(res.Lines) != 1 || res.Lines[0] != "later" {
			t.Errorf("unexpected follow lines: %#v", res.Lines)
		}
		close(done)
	}(initial.Offset)

	time.Sleep(200 * time.Millisecond)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open append: %v", err)
	}
	if _, err := f.WriteString("later\n"); err != nil {
		t.Fatalf("append log: %v", err)
	}
	_ = f.Close()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("follow did not return")
	}
}

func TestReadSinceClampsStaleOffset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "confab.log")
	if err := os.WriteFile(path, []byte("one\n"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	res, err := logs.ReadSince(context.Background(), path, 9999, 0)
	if err != nil {
		t.Fatalf("ReadSince: %v", err)
	}
	if len(res.Lines) != 0 {
		t.Fatalf("expected no lines past clamped offset, got %#v", res.Lines)
	}
	if res.Offset != 4 {
		t.Fatalf("expected offset clamped to file size, got %d", res.Offset)
	}
}
