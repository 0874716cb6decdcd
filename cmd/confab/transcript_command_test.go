package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"confab/internal/queue"
	"confab/internal/testsupport"
)

const conversationFixture = "timestamp_start,timestamp_end,speaker,text\n" +
	"00:00,00:05,Alice,Kicking things off\n" +
	"00:05,00:12,Bob,Status update from infra\n"

func seedConversationItem(t *testing.T, env *cliTestEnv) *queue.Item {
	t.Helper()

	item := testsupport.NewRecording(t, env.store, filepath.Join(env.baseDir, "alpha-standup.m4a"))
	convPath := filepath.Join(env.baseDir, "alpha-standup.conversation.csv")
	if err := os.WriteFile(convPath, []byte(conversationFixture), 0o644); err != nil {
		t.Fatalf("write conversation fixture: %v", err)
	}
	item.Status = queue.StatusCompleted
	item.ConversationFile = convPath
	if err := env.store.Update(context.Background(), item); err != nil {
		t.Fatalf("update item: %v", err)
	}
	return item
}

func TestTranscriptCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	item := seedConversationItem(t, env)

	out, _, err := runCLI(t, []string{"transcript", fmt.Sprint(item.ID)}, env.apiAddr, env.configPath)
	if err != nil {
		t.Fatalf("transcript: %v", err)
	}
	requireContains(t, out, "Alpha Standup")
	requireContains(t, out, "[00:00 - 00:05] Alice: Kicking things off")
	requireContains(t, out, "[00:05 - 00:12] Bob: Status update from infra")
}

func TestTranscriptCommandOffline(t *testing.T) {
	env := setupCLITestEnv(t)
	item := seedConversationItem(t, env)

	out, _, err := runCLI(t, []string{"transcript", fmt.Sprint(item.ID)}, "", env.configPath)
	if err != nil {
		t.Fatalf("transcript offline: %v", err)
	}
	requireContains(t, out, "[00:00 - 00:05] Alice: Kicking things off")
}

func TestTranscriptCommandRawCSV(t *testing.T) {
	env := setupCLITestEnv(t)
	item := seedConversationItem(t, env)

	out, _, err := runCLI(t, []string{"transcript", fmt.Sprint(item.ID), "--csv"}, env.apiAddr, env.configPath)
	if err != nil {
		t.Fatalf("transcript --csv: %v", err)
	}
	requireContains(t, out, "timestamp_start,timestamp_end,speaker,text")
	requireContains(t, out, "00:00,00:05,Alice,Kicking things off")
}

func TestTranscriptCommandJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	item := seedConversationItem(t, env)

	out, _, err := runCLI(t, []string{"transcript", fmt.Sprint(item.ID), "--json"}, env.apiAddr, env.configPath)
	if err != nil {
		t.Fatalf("transcript --json: %v", err)
	}
	var payload struct {
		ID         int64 `json:"id"`
		Utterances []struct {
			Speaker string `json:"speaker"`
			Text    string `json:"text"`
		} `json:"utterances"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("parse json output: %v\n%s", err, out)
	}
	if payload.ID != item.ID {
		t.Fatalf("expected id %d, got %d", item.ID, payload.ID)
	}
	if len(payload.Utterances) != 2 || payload.Utterances[0].Speaker != "Alice" {
		t.Fatalf("unexpected utterances: %+v", payload.Utterances)
	}
}

func TestTranscriptCommandNoConversation(t *testing.T) {
	env := setupCLITestEnv(t)
	item := testsupport.NewRecording(t, env.store, filepath.Join(env.baseDir, "bare.m4a"))

	_, _, err := runCLI(t, []string{"transcript", fmt.Sprint(item.ID)}, env.apiAddr, env.configPath)
	want := fmt.Sprintf("item %d has no conversation yet", item.ID)
	if err == nil || !strings.Contains(err.Error(), want) {
		t.Fatalf("expected %q, got %v", want, err)
	}
}

func TestTranscriptCommandNotFound(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"transcript", "9999"}, env.apiAddr, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
}
