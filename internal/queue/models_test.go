package queue

import (
	"testing"
	"time"
)

func TestParseStatus(t *testing.T) {
	cases := []struct {
		input string
		want  Status
		ok    bool
	}{
		{"pending", StatusPending, true},
		{"  Transcribing ", StatusTranscribing, true},
		{"REVIEW", StatusReview, true},
		{"", "", false},
		{"ripping", "", false},
	}
	for _, tc := range cases {
		got, ok := ParseStatus(tc.input)
		if ok != tc.ok {
			t.Fatalf("ParseStatus(%q): expected ok=%v, got %v", tc.input, tc.ok, ok)
		}
		if ok && got != tc.want {
			t.Fatalf("ParseStatus(%q): expected %s, got %s", tc.input, tc.want, got)
		}
	}
}

func TestClaimTargetAndRollbackStatus(t *testing.T) {
	cases := []struct {
		landing    Status
		processing Status
	}{
		{StatusPending, StatusPreparing},
		{StatusPrepared, StatusTranscribing},
		{StatusTranscribed, StatusAligning},
		{StatusAligned, StatusSummarizing},
	}
	for _, tc := range cases {
		target, ok := ClaimTarget(tc.landing)
		if !ok || target != tc.processing {
			t.Fatalf("ClaimTarget(%s): expected %s, got %s ok=%v", tc.landing, tc.processing, target, ok)
		}
		back, ok := RollbackStatus(tc.processing)
		if !ok || back != tc.landing {
			t.Fatalf("RollbackStatus(%s): expected %s, got %s ok=%v", tc.processing, tc.landing, back, ok)
		}
	}

	if _, ok := ClaimTarget(StatusCompleted); ok {
		t.Fatal("expected completed to have no claim target")
	}
	if _, ok := RollbackStatus(StatusPending); ok {
		t.Fatal("expected pending to have no rollback status")
	}

	if got := len(ClaimableStatuses()); got != len(cases) {
		t.Fatalf("expected %d claimable statuses, got %d", len(cases), got)
	}
	if got := len(ProcessingStatuses()); got != len(cases) {
		t.Fatalf("expected %d processing statuses, got %d", len(cases), got)
	}
}

func TestStatusPredicates(t *testing.T) {
	for _, status := range []Status{StatusPending, StatusPrepared, StatusTranscribed, StatusAligned} {
		if !IsWaitingStatus(status) {
			t.Fatalf("expected %s to be waiting", status)
		}
		if IsProcessingStatus(status) {
			t.Fatalf("did not expect %s to be processing", status)
		}
	}
	for _, status := range []Status{StatusPreparing, StatusTranscribing, StatusAligning, StatusSummarizing} {
		if !IsProcessingStatus(status) {
			t.Fatalf("expected %s to be processing", status)
		}
		if IsWaitingStatus(status) {
			t.Fatalf("did not expect %s to be waiting", status)
		}
	}
	for _, status := range []Status{StatusCompleted, StatusFailed, StatusReview} {
		if IsWaitingStatus(status) || IsProcessingStatus(status) {
			t.Fatalf("expected %s to be terminal-ish, got waiting/processing", status)
		}
	}

	if !IsUserStopReason("stop requested by user") {
		t.Fatal("expected case-insensitive user stop match")
	}
	if IsUserStopReason("transcript rejected") {
		t.Fatal("did not expect arbitrary reason to match user stop")
	}
}

func TestProgressHelpers(t *testing.T) {
	item := &Item{Status: StatusPreparing, ErrorMessage: "old failure"}
	item.InitProgress("Preparing", "Starting")
	if item.ProgressStage != "Preparing" {
		t.Fatalf("expected stage set, got %q", item.ProgressStage)
	}
	if item.ErrorMessage != "" {
		t.Fatal("expected error message cleared")
	}

	// A resumed item keeps its existing stage label.
	item.ProgressStage = "Transcribing"
	item.InitProgress("Preparing", "Restarting")
	if item.ProgressStage != "Transcribing" {
		t.Fatalf("expected existing stage preserved, got %q", item.ProgressStage)
	}

	item.SetProgress("Transcribing", "Uploading", 40)
	if item.ProgressPercent != 40 || item.ProgressMessage != "Uploading" {
		t.Fatalf("unexpected progress: %+v", item)
	}

	item.SetProgressComplete("Transcribing", "Done")
	if item.ProgressPercent != 100 {
		t.Fatalf("expected 100%%, got %f", item.ProgressPercent)
	}
}

func TestSetFailedAndSetReview(t *testing.T) {
	now := time.Now().UTC()
	item := &Item{Status: StatusTranscribing, LastHeartbeat: &now}
	item.SetFailed("provider exploded")
	if item.Status != StatusFailed {
		t.Fatalf("expected failed status, got %s", item.Status)
	}
	if item.ErrorMessage != "provider exploded" || item.ProgressStage != "Failed" {
		t.Fatalf("unexpected failure fields: %+v", item)
	}
	if item.LastHeartbeat != nil {
		t.Fatal("expected heartbeat cleared on failure")
	}

	item = &Item{Status: StatusPending, LastHeartbeat: &now}
	item.SetReview(UserStopReason)
	if item.Status != StatusReview || !item.NeedsReview {
		t.Fatalf("expected review status, got %+v", item)
	}
	if item.ReviewReason != UserStopReason || item.ProgressStage != "Review" {
		t.Fatalf("unexpected review fields: %+v", item)
	}
	if item.LastHeartbeat != nil {
		t.Fatal("expected heartbeat cleared on review")
	}
}

func TestChunkPathsRoundTrip(t *testing.T) {
	item := &Item{}
	paths := []string{"/staging/item-1/chunk_000.m4a", "/staging/item-1/chunk_001.m4a"}
	if err := item.SetChunkPaths(paths); err != nil {
		t.Fatalf("SetChunkPaths: %v", err)
	}
	if item.ChunkCount != 2 {
		t.Fatalf("expected chunk count 2, got %d", item.ChunkCount)
	}

	got, err := item.ChunkPaths()
	if err != nil {
		t.Fatalf("ChunkPaths: %v", err)
	}
	if len(got) != 2 || got[0] != paths[0] || got[1] != paths[1] {
		t.Fatalf("unexpected chunk paths: %v", got)
	}

	if err := item.SetChunkPaths(nil); err != nil {
		t.Fatalf("SetChunkPaths clear: %v", err)
	}
	if item.ChunksJSON != "" || item.ChunkCount != 0 {
		t.Fatalf("expected chunk fields cleared, got %+v", item)
	}

	item.ChunksJSON = "{not json"
	if _, err := item.ChunkPaths(); err == nil {
		t.Fatal("expected error for malformed chunk payload")
	}
}

func TestStagingRoot(t *testing.T) {
	item := Item{ID: 7, Title: "Weekly Sync: Q3 Planning"}
	got := item.StagingRoot("/staging")
	if got != "/staging/item-7-weekly-sync--q3-planning" {
		t.Fatalf("unexpected staging root: %q", got)
	}

	item = Item{ID: 9}
	if got := item.StagingRoot("/staging"); got != "/staging/item-9" {
		t.Fatalf("expected bare item segment, got %q", got)
	}

	if got := item.StagingRoot("  "); got != "" {
		t.Fatalf("expected empty result for blank base, got %q", got)
	}
}
