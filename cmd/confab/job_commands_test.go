package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"confab/internal/queue"
	"confab/internal/testsupport"
)

func seedProcessedItem(t *testing.T, env *cliTestEnv) *queue.Item {
	t.Helper()

	item := testsupport.NewRecording(t, env.store, filepath.Join(env.baseDir, "planning.m4a"))
	item.Status = queue.StatusCompleted
	item.TranscriptFile = filepath.Join(env.baseDir, "planning.transcript.json")
	item.ConversationFile = filepath.Join(env.baseDir, "planning.conversation.csv")
	if err := env.store.Update(context.Background(), item); err != nil {
		t.Fatalf("update item: %v", err)
	}
	return item
}

func TestRealignCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()
	item := seedProcessedItem(t, env)

	out, _, err := runCLI(t, []string{"realign", fmt.Sprint(item.ID)}, env.apiAddr, env.configPath)
	if err != nil {
		t.Fatalf("realign: %v", err)
	}
	requireContains(t, out, fmt.Sprintf("Item %d queued for realignment", item.ID))

	updated, err := env.store.GetByID(ctx, item.ID)
	if err != nil || updated == nil {
		t.Fatalf("lookup item: %v", err)
	}
	if updated.Status != queue.StatusTranscribed {
		t.Fatalf("expected transcribed status, got %s", updated.Status)
	}
	if updated.ProgressStage != "Realign requested" {
		t.Fatalf("unexpected progress stage %q", updated.ProgressStage)
	}
}

func TestRealignCommandNoTranscript(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	item := testsupport.NewRecording(t, env.store, filepath.Join(env.baseDir, "bare.m4a"))
	item.Status = queue.StatusCompleted
	if err := env.store.Update(ctx, item); err != nil {
		t.Fatalf("update item: %v", err)
	}

	_, _, err := runCLI(t, []string{"realign", fmt.Sprint(item.ID)}, env.apiAddr, env.configPath)
	want := fmt.Sprintf("item %d has no transcript artifacts", item.ID)
	if err == nil || !strings.Contains(err.Error(), want) {
		t.Fatalf("expected %q, got %v", want, err)
	}
}

func TestSummarizeCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()
	item := seedProcessedItem(t, env)

	out, _, err := runCLI(t, []string{"summarize", fmt.Sprint(item.ID)}, env.apiAddr, env.configPath)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	requireContains(t, out, fmt.Sprintf("Item %d queued for summarization", item.ID))

	updated, err := env.store.GetByID(ctx, item.ID)
	if err != nil || updated == nil {
		t.Fatalf("lookup item: %v", err)
	}
	if updated.Status != queue.StatusAligned {
		t.Fatalf("expected aligned status, got %s", updated.Status)
	}
}

func TestSummarizeCommandOffline(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()
	item := seedProcessedItem(t, env)

	out, _, err := runCLI(t, []string{"summarize", fmt.Sprint(item.ID)}, "", env.configPath)
	if err != nil {
		t.Fatalf("summarize offline: %v", err)
	}
	requireContains(t, out, fmt.Sprintf("Item %d queued for summarization", item.ID))

	updated, err := env.store.GetByID(ctx, item.ID)
	if err != nil || updated == nil {
		t.Fatalf("lookup item: %v", err)
	}
	if updated.Status != queue.StatusAligned {
		t.Fatalf("expected aligned status, got %s", updated.Status)
	}
}

func TestRealignCommandNotFound(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"realign", "9999"}, env.apiAddr, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "queue item 9999 not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
}
