package main

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"confab/internal/testsupport"
)

func TestShowCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	item := testsupport.NewRecording(t, env.store, filepath.Join(env.baseDir, "alpha-standup.m4a"))
	item.AudioSeconds = 1860
	item.Speedup = 1.5
	item.ChunkCount = 4
	item.TranscriptFile = filepath.Join(env.baseDir, "transcript.json")
	if err := env.store.Update(ctx, item); err != nil {
		t.Fatalf("update item: %v", err)
	}

	out, _, err := runCLI(t, []string{"show", fmt.Sprintf("%d", item.ID)}, env.apiAddr, env.configPath)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	requireContains(t, out, fmt.Sprintf("Item #%d", item.ID))
	requireContains(t, out, "Title: Alpha Standup")
	requireContains(t, out, "Status: Pending")
	requireContains(t, out, "Duration: 31m00s")
	requireContains(t, out, "Speedup: 1.50x")
	requireContains(t, out, "Chunks: 4")
	requireContains(t, out, "Artifacts:")
	requireContains(t, out, "Transcript: "+item.TranscriptFile)
}

func TestShowCommandJSON(t *testing.T) {
	env := setupCLITestEnv(t)

	item := testsupport.NewRecording(t, env.store, filepath.Join(env.baseDir, "alpha-standup.m4a"))

	out, _, err := runCLI(t, []string{"show", fmt.Sprintf("%d", item.ID), "--json"}, env.apiAddr, env.configPath)
	if err != nil {
		t.Fatalf("show --json: %v", err)
	}

	var detail map[string]any
	if err := json.Unmarshal([]byte(out), &detail); err != nil {
		t.Fatalf("invalid JSON: %v\noutput: %s", err, out)
	}
	if detail["id"] != float64(item.ID) {
		t.Fatalf("expected id %d, got %v", item.ID, detail["id"])
	}
	if detail["title"] != "Alpha Standup" {
		t.Fatalf("expected title Alpha Standup, got %v", detail["title"])
	}
}

func TestShowCommandNotFound(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"show", "9999"}, env.apiAddr, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "queue item 9999 not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestShowCommandReviewReason(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	item := testsupport.NewRecording(t, env.store, filepath.Join(env.baseDir, "alpha-standup.m4a"))
	item.SetReview("diarization unavailable")
	if err := env.store.Update(ctx, item); err != nil {
		t.Fatalf("update item: %v", err)
	}

	out, _, err := runCLI(t, []string{"show", fmt.Sprintf("%d", item.ID)}, env.apiAddr, env.configPath)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	requireContains(t, out, "Status: Review")
	requireContains(t, out, "Needs review: diarization unavailable")
}
