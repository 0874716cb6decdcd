package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"confab/internal/api"
	"confab/internal/logging"
)

// syncBuffer is a thread-safe wrapper around bytes.Buffer for use in tests.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Len()
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

var _ io.Writer = (*syncBuffer)(nil)

func TestLogsTailFile(t *testing.T) {
	env := setupCLITestEnv(t)

	if err := os.WriteFile(env.logPath, []byte("first\nsecond\nthird\n"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	out, _, err := runCLI(t, []string{"logs", "--lines", "2"}, "", env.configPath)
	if err != nil {
		t.Fatalf("logs --lines: %v", err)
	}
	requireContains(t, out, "second")
	requireContains(t, out, "third")
	if strings.Contains(out, "first") {
		t.Fatalf("expected only the last two lines, got %q", out)
	}
}

func TestLogsFromDaemonAPI(t *testing.T) {
	env := setupCLITestEnv(t)

	env.hub.Publish(logging.LogEvent{
		Level:     "INFO",
		Message:   "transcription started",
		Component: "workflow",
		Stage:     "transcription",
		ItemID:    3,
	})

	out, _, err := runCLI(t, []string{"logs", "--lines", "5"}, env.apiAddr, env.configPath)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	requireContains(t, out, "INFO")
	requireContains(t, out, "[workflow]")
	requireContains(t, out, "Item #3 (transcription) - transcription started")
}

func TestLogsEmpty(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"logs"}, env.apiAddr, env.configPath)
	if err != nil {
		t.Fatalf("logs empty: %v", err)
	}
	requireContains(t, out, "No log entries available")
}

func TestLogsFollowFile(t *testing.T) {
	env := setupCLITestEnv(t)

	if err := appendLine(env.logPath, "first"); err != nil {
		t.Fatalf("append first: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cmd := newRootCommand()
	cmd.SetArgs([]string{"--config", env.configPath, "logs", "--follow"})
	cmd.SetContext(ctx)
	// Use syncBuffer to avoid a data race between the command goroutine and
	// the test's output polling.
	stdout := &syncBuffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(&bytes.Buffer{})

	done := make(chan error, 1)
	go func() {
		done <- cmd.Execute()
	}()

	waitFor(t, 2*time.Second, func() bool { return stdout.Len() > 0 })
	if err := appendLine(env.logPath, "second"); err != nil {
		t.Fatalf("append second: %v", err)
	}
	waitFor(t, 2*time.Second, func() bool { return strings.Contains(stdout.String(), "second") })
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("execute: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("logs --follow did not exit")
	}
}

func TestLogsFollowDaemonAPI(t *testing.T) {
	env := setupCLITestEnv(t)

	env.hub.Publish(logging.LogEvent{Level: "INFO", Message: "seed entry", Component: "daemon"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cmd := newRootCommand()
	cmd.SetArgs([]string{"--api", env.apiAddr, "--config", env.configPath, "logs", "--follow"})
	cmd.SetContext(ctx)
	stdout := &syncBuffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(&bytes.Buffer{})

	done := make(chan error, 1)
	go func() {
		done <- cmd.Execute()
	}()

	waitFor(t, 2*time.Second, func() bool { return strings.Contains(stdout.String(), "seed entry") })
	env.hub.Publish(logging.LogEvent{Level: "INFO", Message: "followed entry", Component: "daemon"})
	waitFor(t, 2*time.Second, func() bool { return strings.Contains(stdout.String(), "followed entry") })
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("execute: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("logs --follow did not exit")
	}
}

func TestFormatAPILogEventDetails(t *testing.T) {
	evt := api.LogEvent{
		Timestamp: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		Level:     "warn",
		Message:   "chunk retry scheduled",
		Component: "transcription",
		Stage:     "transcription",
		ItemID:    7,
		Details: []api.DetailField{
			{Label: "Attempt", Value: "2"},
		},
	}
	line := formatAPILogEvent(evt)
	requireContains(t, line, "2026-03-14 09:30:00 WARN")
	requireContains(t, line, "[transcription]")
	requireContains(t, line, "Item #7 (transcription) - chunk retry scheduled")
	requireContains(t, line, "\n    - Attempt: 2")
}
