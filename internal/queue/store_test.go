package queue_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"confab/internal/queue"
	"confab/internal/testsupport"
)

func TestOpenInitializesSchema(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	item, err := store.NewRecording(ctx, "/recordings/team_sync-2026.m4a")
	if err != nil {
		t.Fatalf("NewRecording failed: %v", err)
	}
	if item.ID == 0 {
		t.Fatal("expected item ID to be assigned")
	}
	if item.Status != queue.StatusPending {
		t.Fatalf("expected new item pending, got %s", item.Status)
	}
	if item.Title != "Team Sync 2026" {
		t.Fatalf("expected title inferred from filename, got %q", item.Title)
	}

	fetched, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched == nil || fetched.SourcePath != "/recordings/team_sync-2026.m4a" {
		t.Fatalf("unexpected fetched item: %#v", fetched)
	}

	found, err := store.FindBySourcePath(ctx, "/recordings/team_sync-2026.m4a")
	if err != nil {
		t.Fatalf("FindBySourcePath failed: %v", err)
	}
	if found == nil || found.ID != item.ID {
		t.Fatalf("expected to find inserted item, got %#v", found)
	}
}

func TestNewRecordingRequiresSourcePath(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	if _, err := store.NewRecording(ctx, "  "); err == nil {
		t.Fatal("expected error when source path missing")
	}
}

func TestClaimNext(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	first, err := store.NewRecording(ctx, "/recordings/first.m4a")
	if err != nil {
		t.Fatalf("NewRecording: %v", err)
	}
	second, err := store.NewRecording(ctx, "/recordings/second.m4a")
	if err != nil {
		t.Fatalf("NewRecording: %v", err)
	}

	claimed, err := store.ClaimNext(ctx, queue.ClaimableStatuses()...)
	if err != nil {
		t.Fatalf("ClaimNext: %v", err)
	}
	if claimed == nil || claimed.ID != first.ID {
		t.Fatalf("expected oldest item claimed first, got %#v", claimed)
	}
	if claimed.Status != queue.StatusPreparing {
		t.Fatalf("expected claimed item preparing, got %s", claimed.Status)
	}
	if claimed.LastHeartbeat == nil {
		t.Fatal("expected heartbeat set on claim")
	}

	claimed, err = store.ClaimNext(ctx, queue.ClaimableStatuses()...)
	if err != nil {
		t.Fatalf("ClaimNext second: %v", err)
	}
	if claimed == nil || claimed.ID != second.ID {
		t.Fatalf("expected second item claimed, got %#v", claimed)
	}

	claimed, err = store.ClaimNext(ctx, queue.ClaimableStatuses()...)
	if err != nil {
		t.Fatalf("ClaimNext empty: %v", err)
	}
	if claimed != nil {
		t.Fatalf("expected nil when nothing claimable, got %#v", claimed)
	}
}

func TestClaimNextAdvancesEachLandingStatus(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	cases := []struct {
		landing  queue.Status
		expected queue.Status
	}{
		{queue.StatusPending, queue.StatusPreparing},
		{queue.StatusPrepared, queue.StatusTranscribing},
		{queue.StatusTranscribed, queue.StatusAligning},
		{queue.StatusAligned, queue.StatusSummarizing},
	}
	for i, tc := range cases {
		item, err := store.NewRecording(ctx, fmt.Sprintf("/recordings/landing-%d.m4a", i))
		if err != nil {
			t.Fatalf("NewRecording: %v", err)
		}
		item.Status = tc.landing
		if err := store.Update(ctx, item); err != nil {
			t.Fatalf("Update: %v", err)
		}

		claimed, err := store.ClaimNext(ctx, tc.landing)
		if err != nil {
			t.Fatalf("ClaimNext %s: %v", tc.landing, err)
		}
		if claimed == nil || claimed.ID != item.ID {
			t.Fatalf("%s: expected item claimed, got %#v", tc.landing, claimed)
		}
		if claimed.Status != tc.expected {
			t.Fatalf("%s: expected status %s, got %s", tc.landing, tc.expected, claimed.Status)
		}
	}
}

func TestResetStuckProcessing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	cases := []struct {
		name          string
		initialStatus queue.Status
		expected      queue.Status
	}{
		{"preparing", queue.StatusPreparing, queue.StatusPending},
		{"transcribing", queue.StatusTranscribing, queue.StatusPrepared},
		{"aligning", queue.StatusAligning, queue.StatusTranscribed},
		{"summarizing", queue.StatusSummarizing, queue.StatusAligned},
	}
	var ids []int64
	for i, tc := range cases {
		item, err := store.NewRecording(ctx, fmt.Sprintf("/recordings/reset-%d.m4a", i))
		if err != nil {
			t.Fatalf("NewRecording failed: %v", err)
		}
		item.Status = tc.initialStatus
		item.ProgressStage = tc.name
		if err := store.Update(ctx, item); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		ids = append(ids, item.ID)
	}

	count, err := store.ResetStuckProcessing(ctx)
	if err != nil {
		t.Fatalf("ResetStuckProcessing failed: %v", err)
	}
	if int(count) != len(cases) {
		t.Fatalf("expected %d items reset, got %d", len(cases), count)
	}

	for idx, tc := range cases {
		updated, err := store.GetByID(ctx, ids[idx])
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if updated.Status != tc.expected {
			t.Fatalf("%s: expected status %s, got %s", tc.name, tc.expected, updated.Status)
		}
		if updated.LastHeartbeat != nil {
			t.Fatalf("%s: expected heartbeat cleared", tc.name)
		}
	}
}

func TestItemsByStatusOrdering(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	if _, err := store.NewRecording(ctx, "/recordings/a.m4a"); err != nil {
		t.Fatalf("NewRecording failed: %v", err)
	}
	b, err := store.NewRecording(ctx, "/recordings/b.m4a")
	if err != nil {
		t.Fatalf("NewRecording failed: %v", err)
	}
	b.Status = queue.StatusPrepared
	if err := store.Update(ctx, b); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	items, err := store.ItemsByStatus(ctx, queue.StatusPrepared)
	if err != nil {
		t.Fatalf("ItemsByStatus failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected one prepared item, got %d", len(items))
	}
	if items[0].ID != b.ID {
		t.Fatalf("expected item B, got %d", items[0].ID)
	}
}

func TestListSupportsStatusFilter(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	a, err := store.NewRecording(ctx, "/recordings/a.m4a")
	if err != nil {
		t.Fatalf("NewRecording failed: %v", err)
	}
	b, err := store.NewRecording(ctx, "/recordings/b.m4a")
	if err != nil {
		t.Fatalf("NewRecording failed: %v", err)
	}
	b.Status = queue.StatusPrepared
	if err := store.Update(ctx, b); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	c, err := store.NewRecording(ctx, "/recordings/c.m4a")
	if err != nil {
		t.Fatalf("NewRecording failed: %v", err)
	}
	c.Status = queue.StatusFailed
	c.ErrorMessage = "boom"
	if err := store.Update(ctx, c); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	items, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if items[0].ID != a.ID || items[1].ID != b.ID || items[2].ID != c.ID {
		t.Fatalf("expected order A,B,C, got IDs %d,%d,%d", items[0].ID, items[1].ID, items[2].ID)
	}

	filtered, err := store.List(ctx, queue.StatusPrepared, queue.StatusFailed)
	if err != nil {
		t.Fatalf("Filtered list failed: %v", err)
	}
	if len(filtered) != 2 {
		t.Fatalf("expected 2 items, got %d", len(filtered))
	}
	if filtered[0].ID != b.ID || filtered[1].ID != c.ID {
		t.Fatalf("unexpected filtered order: got %d,%d", filtered[0].ID, filtered[1].ID)
	}
}

func TestRetryFailed(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	a, err := store.NewRecording(ctx, "/recordings/a.m4a")
	if err != nil {
		t.Fatalf("NewRecording: %v", err)
	}
	b, err := store.NewRecording(ctx, "/recordings/b.m4a")
	if err != nil {
		t.Fatalf("NewRecording: %v", err)
	}
	a.SetFailed("boom")
	if err := store.Update(ctx, a); err != nil {
		t.Fatalf("Update: %v", err)
	}
	b.SetReview(queue.UserStopReason)
	if err := store.Update(ctx, b); err != nil {
		t.Fatalf("Update: %v", err)
	}

	updated, err := store.RetryFailed(ctx)
	if err != nil {
		t.Fatalf("RetryFailed all: %v", err)
	}
	if updated != 2 {
		t.Fatalf("expected 2 items retried, got %d", updated)
	}

	item, err := store.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if item.Status != queue.StatusPending {
		t.Fatalf("expected item A pending, got %s", item.Status)
	}
	if item.ErrorMessage != "" {
		t.Fatalf("expected error message cleared, got %q", item.ErrorMessage)
	}

	reviewed, err := store.GetByID(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if reviewed.Status != queue.StatusPending {
		t.Fatalf("expected item B pending, got %s", reviewed.Status)
	}
	if reviewed.NeedsReview || reviewed.ReviewReason != "" {
		t.Fatalf("expected review fields cleared, got needs_review=%v reason=%q", reviewed.NeedsReview, reviewed.ReviewReason)
	}

	// Mark B failed again and retry targeted selection.
	reviewed.SetFailed("boom again")
	if err := store.Update(ctx, reviewed); err != nil {
		t.Fatalf("Update: %v", err)
	}
	updated, err = store.RetryFailed(ctx, b.ID)
	if err != nil {
		t.Fatalf("RetryFailed targeted: %v", err)
	}
	if updated != 1 {
		t.Fatalf("expected 1 item retried, got %d", updated)
	}
}

func TestCancelWaiting(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	waiting, err := store.NewRecording(ctx, "/recordings/waiting.m4a")
	if err != nil {
		t.Fatalf("NewRecording: %v", err)
	}
	claimed, err := store.NewRecording(ctx, "/recordings/claimed.m4a")
	if err != nil {
		t.Fatalf("NewRecording: %v", err)
	}
	claimed.Status = queue.StatusTranscribing
	if err := store.Update(ctx, claimed); err != nil {
		t.Fatalf("Update: %v", err)
	}

	updated, err := store.CancelWaiting(ctx, waiting.ID, claimed.ID)
	if err != nil {
		t.Fatalf("CancelWaiting: %v", err)
	}
	if updated != 1 {
		t.Fatalf("expected 1 item cancelled, got %d", updated)
	}

	cancelled, err := store.GetByID(ctx, waiting.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if cancelled.Status != queue.StatusReview {
		t.Fatalf("expected review status, got %s", cancelled.Status)
	}
	if !cancelled.NeedsReview || !queue.IsUserStopReason(cancelled.ReviewReason) {
		t.Fatalf("expected user stop review, got needs_review=%v reason=%q", cancelled.NeedsReview, cancelled.ReviewReason)
	}
	if cancelled.ProgressStage != "Review" {
		t.Fatalf("expected Review progress stage, got %q", cancelled.ProgressStage)
	}

	untouched, err := store.GetByID(ctx, claimed.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if untouched.Status != queue.StatusTranscribing {
		t.Fatalf("expected in-flight item untouched, got %s", untouched.Status)
	}

	if updated, err = store.CancelWaiting(ctx); err != nil || updated != 0 {
		t.Fatalf("expected no-op for empty id list, got updated=%d err=%v", updated, err)
	}
}

func TestRollbackProcessing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	inFlight, err := store.NewRecording(ctx, "/recordings/in-flight.m4a")
	if err != nil {
		t.Fatalf("NewRecording: %v", err)
	}
	inFlight.Status = queue.StatusSummarizing
	if err := store.Update(ctx, inFlight); err != nil {
		t.Fatalf("Update: %v", err)
	}
	done, err := store.NewRecording(ctx, "/recordings/done.m4a")
	if err != nil {
		t.Fatalf("NewRecording: %v", err)
	}
	done.Status = queue.StatusCompleted
	if err := store.Update(ctx, done); err != nil {
		t.Fatalf("Update: %v", err)
	}

	rolled, err := store.RollbackProcessing(ctx)
	if err != nil {
		t.Fatalf("RollbackProcessing: %v", err)
	}
	if rolled != 1 {
		t.Fatalf("expected 1 item rolled back, got %d", rolled)
	}

	item, err := store.GetByID(ctx, inFlight.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if item.Status != queue.StatusAligned {
		t.Fatalf("expected aligned landing status, got %s", item.Status)
	}
	if item.ProgressMessage != queue.DaemonStopReason {
		t.Fatalf("expected daemon stop message, got %q", item.ProgressMessage)
	}
	if item.LastHeartbeat != nil {
		t.Fatal("expected heartbeat cleared")
	}

	finished, err := store.GetByID(ctx, done.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if finished.Status != queue.StatusCompleted {
		t.Fatalf("expected completed item untouched, got %s", finished.Status)
	}
}

func TestRequeue(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	item, err := store.NewRecording(ctx, "/recordings/requeue.m4a")
	if err != nil {
		t.Fatalf("NewRecording: %v", err)
	}
	item.Status = queue.StatusCompleted
	item.ErrorMessage = "stale error"
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("Update: %v", err)
	}

	ok, err := store.Requeue(ctx, item.ID, queue.StatusTranscribed, "Realign requested")
	if err != nil {
		t.Fatalf("Requeue: %v", err)
	}
	if !ok {
		t.Fatal("expected requeue to land")
	}

	requeued, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if requeued.Status != queue.StatusTranscribed {
		t.Fatalf("expected transcribed status, got %s", requeued.Status)
	}
	if requeued.ProgressStage != "Realign requested" {
		t.Fatalf("expected requeue stage, got %q", requeued.ProgressStage)
	}
	if requeued.ErrorMessage != "" {
		t.Fatalf("expected error cleared, got %q", requeued.ErrorMessage)
	}

	held, err := store.NewRecording(ctx, "/recordings/held.m4a")
	if err != nil {
		t.Fatalf("NewRecording: %v", err)
	}
	held.Status = queue.StatusAligning
	if err := store.Update(ctx, held); err != nil {
		t.Fatalf("Update: %v", err)
	}
	ok, err = store.Requeue(ctx, held.ID, queue.StatusAligned, "Summarize requested")
	if err != nil {
		t.Fatalf("Requeue: %v", err)
	}
	if ok {
		t.Fatal("expected requeue to skip an item a worker holds")
	}

	if _, err := store.Requeue(ctx, item.ID, queue.StatusCompleted, "Nope"); err == nil {
		t.Fatal("expected error for non-waiting target status")
	}
}

func TestUpdateHeartbeat(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	item, err := store.NewRecording(ctx, "/recordings/heartbeat.m4a")
	if err != nil {
		t.Fatalf("NewRecording: %v", err)
	}
	item.Status = queue.StatusPreparing
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("Update: %v", err)
	}

	if err := store.UpdateHeartbeat(ctx, item.ID); err != nil {
		t.Fatalf("UpdateHeartbeat: %v", err)
	}

	updated, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if updated.LastHeartbeat == nil {
		t.Fatal("expected last heartbeat to be set")
	}
}

func TestReclaimStaleProcessing(t *testing.T) {
	t.Run("all statuses", func(t *testing.T) {
		cfg := testsupport.NewConfig(t)
		store := testsupport.MustOpenStore(t, cfg)

		ctx := context.Background()
		past := time.Now().Add(-2 * time.Hour).UTC()
		cases := []struct {
			name       string
			processing queue.Status
			expected   queue.Status
		}{
			{"preparing", queue.StatusPreparing, queue.StatusPending},
			{"transcribing", queue.StatusTranscribing, queue.StatusPrepared},
			{"aligning", queue.StatusAligning, queue.StatusTranscribed},
			{"summarizing", queue.StatusSummarizing, queue.StatusAligned},
		}
		var ids []int64
		for i, tc := range cases {
			item, err := store.NewRecording(ctx, fmt.Sprintf("/recordings/stale-%d.m4a", i))
			if err != nil {
				t.Fatalf("NewRecording: %v", err)
			}
			item.Status = tc.processing
			item.LastHeartbeat = &past
			if err := store.Update(ctx, item); err != nil {
				t.Fatalf("Update: %v", err)
			}
			ids = append(ids, item.ID)
		}

		count, err := store.ReclaimStaleProcessing(
			ctx,
			time.Now().Add(-1*time.Hour),
			queue.StatusPreparing,
			queue.StatusTranscribing,
			queue.StatusAligning,
			queue.StatusSummarizing,
		)
		if err != nil {
			t.Fatalf("ReclaimStaleProcessing: %v", err)
		}
		if int(count) != len(cases) {
			t.Fatalf("expected %d items reclaimed, got %d", len(cases), count)
		}

		for idx, tc := range cases {
			updated, err := store.GetByID(ctx, ids[idx])
			if err != nil {
				t.Fatalf("GetByID: %v", err)
			}
			if updated.Status != tc.expected {
				t.Fatalf("%s: expected status %s after reclaim, got %s", tc.name, tc.expected, updated.Status)
			}
			if updated.LastHeartbeat != nil {
				t.Fatalf("%s: expected heartbeat cleared, got %v", tc.name, updated.LastHeartbeat)
			}
		}
	})

	t.Run("filtered statuses", func(t *testing.T) {
		cfg := testsupport.NewConfig(t)
		store := testsupport.MustOpenStore(t, cfg)

		ctx := context.Background()
		past := time.Now().Add(-2 * time.Hour).UTC()

		transcribing, err := store.NewRecording(ctx, "/recordings/stale-transcribing.m4a")
		if err != nil {
			t.Fatalf("NewRecording transcribing: %v", err)
		}
		transcribing.Status = queue.StatusTranscribing
		transcribing.LastHeartbeat = &past
		if err := store.Update(ctx, transcribing); err != nil {
			t.Fatalf("Update transcribing: %v", err)
		}

		summarizing, err := store.NewRecording(ctx, "/recordings/stale-summarizing.m4a")
		if err != nil {
			t.Fatalf("NewRecording summarizing: %v", err)
		}
		summarizing.Status = queue.StatusSummarizing
		summarizing.LastHeartbeat = &past
		if err := store.Update(ctx, summarizing); err != nil {
			t.Fatalf("Update summarizing: %v", err)
		}

		count, err := store.ReclaimStaleProcessing(ctx, time.Now().Add(-1*time.Hour), queue.StatusSummarizing)
		if err != nil {
			t.Fatalf("ReclaimStaleProcessing filtered: %v", err)
		}
		if count != 1 {
			t.Fatalf("expected 1 item reclaimed, got %d", count)
		}

		reclaimed, err := store.GetByID(ctx, summarizing.ID)
		if err != nil {
			t.Fatalf("GetByID summarizing: %v", err)
		}
		if reclaimed.Status != queue.StatusAligned {
			t.Fatalf("expected summarizing item rolled back to aligned, got %s", reclaimed.Status)
		}
		if reclaimed.LastHeartbeat != nil {
			t.Fatalf("expected summarizing heartbeat cleared, got %v", reclaimed.LastHeartbeat)
		}

		unchanged, err := store.GetByID(ctx, transcribing.ID)
		if err != nil {
			t.Fatalf("GetByID transcribing: %v", err)
		}
		if unchanged.Status != queue.StatusTranscribing {
			t.Fatalf("expected transcribing item untouched, got %s", unchanged.Status)
		}
		if unchanged.LastHeartbeat == nil || !unchanged.LastHeartbeat.Equal(past) {
			t.Fatalf("expected transcribing heartbeat unchanged, got %v", unchanged.LastHeartbeat)
		}
	})
}

func TestUpdateProgressPreservesHeartbeat(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	item, err := store.NewRecording(ctx, "/recordings/progress.m4a")
	if err != nil {
		t.Fatalf("NewRecording: %v", err)
	}
	item.Status = queue.StatusTranscribing
	past := time.Now().Add(-5 * time.Minute).UTC()
	item.LastHeartbeat = &past
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("Update: %v", err)
	}

	if err := store.UpdateHeartbeat(ctx, item.ID); err != nil {
		t.Fatalf("UpdateHeartbeat: %v", err)
	}

	before, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID before progress: %v", err)
	}
	if before.LastHeartbeat == nil {
		t.Fatal("expected heartbeat set before progress update")
	}
	origHeartbeat := *before.LastHeartbeat

	before.ProgressStage = "Transcribing"
	before.ProgressPercent = 42.5
	before.ProgressMessage = "Uploading chunk 2"
	if err := store.UpdateProgress(ctx, before); err != nil {
		t.Fatalf("UpdateProgress: %v", err)
	}

	after, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID after progress: %v", err)
	}
	if after.LastHeartbeat == nil {
		t.Fatal("expected heartbeat preserved after progress update")
	}
	if !after.LastHeartbeat.Equal(origHeartbeat) {
		t.Fatalf("expected heartbeat unchanged, before %v after %v", origHeartbeat, after.LastHeartbeat)
	}
	if after.ProgressStage != "Transcribing" || after.ProgressMessage != "Uploading chunk 2" {
		t.Fatalf("expected progress fields persisted, got stage=%q message=%q", after.ProgressStage, after.ProgressMessage)
	}
	if after.ProgressPercent != 42.5 {
		t.Fatalf("expected progress percent 42.5, got %f", after.ProgressPercent)
	}
}

func TestClearVariants(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	seed := func(status queue.Status, n int) {
		t.Helper()
		for i := 0; i < n; i++ {
			item, err := store.NewRecording(ctx, fmt.Sprintf("/recordings/%s-%d.m4a", status, i))
			if err != nil {
				t.Fatalf("NewRecording: %v", err)
			}
			item.Status = status
			if err := store.Update(ctx, item); err != nil {
				t.Fatalf("Update: %v", err)
			}
		}
	}
	seed(queue.StatusCompleted, 2)
	seed(queue.StatusFailed, 1)
	seed(queue.StatusPending, 1)

	removed, err := store.ClearCompleted(ctx)
	if err != nil {
		t.Fatalf("ClearCompleted: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 completed removed, got %d", removed)
	}

	removed, err = store.ClearFailed(ctx)
	if err != nil {
		t.Fatalf("ClearFailed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 failed removed, got %d", removed)
	}

	removed, err = store.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 remaining item removed, got %d", removed)
	}
}

func TestHealthBuckets(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	statuses := []queue.Status{
		queue.StatusPending,
		queue.StatusPrepared,
		queue.StatusTranscribing,
		queue.StatusFailed,
		queue.StatusReview,
		queue.StatusCompleted,
	}
	for i, status := range statuses {
		item, err := store.NewRecording(ctx, fmt.Sprintf("/recordings/health-%d.m4a", i))
		if err != nil {
			t.Fatalf("NewRecording: %v", err)
		}
		item.Status = status
		if err := store.Update(ctx, item); err != nil {
			t.Fatalf("Update: %v", err)
		}
	}

	health, err := store.Health(ctx)
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if health.Total != len(statuses) {
		t.Fatalf("expected total %d, got %d", len(statuses), health.Total)
	}
	if health.Pending != 2 {
		t.Fatalf("expected 2 pending (waiting), got %d", health.Pending)
	}
	if health.Processing != 1 {
		t.Fatalf("expected 1 processing, got %d", health.Processing)
	}
	if health.Failed != 1 || health.Review != 1 || health.Completed != 1 {
		t.Fatalf("unexpected buckets: %+v", health)
	}
}

func TestCheckHealthReportsColumns(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	if _, err := store.NewRecording(ctx, "/recordings/check.m4a"); err != nil {
		t.Fatalf("NewRecording: %v", err)
	}

	health, err := store.CheckHealth(ctx)
	if err != nil {
		t.Fatalf("CheckHealth: %v", err)
	}
	if !health.DatabaseExists || !health.DatabaseReadable || !health.TableExists {
		t.Fatalf("expected healthy database, got %+v", health)
	}
	if len(health.MissingColumns) != 0 {
		t.Fatalf("expected no missing columns, got %v", health.MissingColumns)
	}
	if !health.IntegrityCheck {
		t.Fatal("expected integrity check to pass")
	}
	if health.TotalItems != 1 {
		t.Fatalf("expected 1 item, got %d", health.TotalItems)
	}
}
