package queue_test

import (
	"context"
	"testing"

	"confab/internal/queue"
	"confab/internal/testsupport"
)

func TestRecordTimingRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	records := []queue.TimingRecord{
		{Provider: "openai", Speedup: 1.5, AudioSeconds: 1800, ProcessingSeconds: 120},
		{Provider: "openai", Chunked: true, Speedup: 2.0, AudioSeconds: 5400, ProcessingSeconds: 410},
		{Provider: "assemblyai", Speedup: 1.0, AudioSeconds: 900, ProcessingSeconds: 95},
	}
	for i := range records {
		if err := store.RecordTiming(ctx, &records[i]); err != nil {
			t.Fatalf("RecordTiming %d: %v", i, err)
		}
		if records[i].ID == 0 {
			t.Fatalf("expected ID assigned for record %d", i)
		}
		if records[i].CreatedAt.IsZero() {
			t.Fatalf("expected CreatedAt set for record %d", i)
		}
	}

	fetched, err := store.RecentTimings(ctx, 0)
	if err != nil {
		t.Fatalf("RecentTimings: %v", err)
	}
	if len(fetched) != len(records) {
		t.Fatalf("expected %d records, got %d", len(records), len(fetched))
	}
	// Newest first.
	if fetched[0].Provider != "assemblyai" || fetched[2].Provider != "openai" {
		t.Fatalf("unexpected ordering: %q, %q, %q", fetched[0].Provider, fetched[1].Provider, fetched[2].Provider)
	}
	if !fetched[1].Chunked {
		t.Fatal("expected chunked flag preserved")
	}
	if fetched[1].Speedup != 2.0 || fetched[1].AudioSeconds != 5400 || fetched[1].ProcessingSeconds != 410 {
		t.Fatalf("unexpected record values: %+v", fetched[1])
	}
}

func TestRecordTimingValidation(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	if err := store.RecordTiming(ctx, nil); err == nil {
		t.Fatal("expected error for nil record")
	}
	if err := store.RecordTiming(ctx, &queue.TimingRecord{AudioSeconds: 10, ProcessingSeconds: 5}); err == nil {
		t.Fatal("expected error for missing provider")
	}
	if err := store.RecordTiming(ctx, &queue.TimingRecord{Provider: "openai", AudioSeconds: 0, ProcessingSeconds: 5}); err == nil {
		t.Fatal("expected error for non-positive audio duration")
	}
	if err := store.RecordTiming(ctx, &queue.TimingRecord{Provider: "openai", AudioSeconds: 10, ProcessingSeconds: -1}); err == nil {
		t.Fatal("expected error for non-positive processing duration")
	}

	rec := queue.TimingRecord{Provider: "openai", AudioSeconds: 10, ProcessingSeconds: 5}
	if err := store.RecordTiming(ctx, &rec); err != nil {
		t.Fatalf("RecordTiming: %v", err)
	}
	if rec.Speedup != 1.0 {
		t.Fatalf("expected speedup normalized to 1.0, got %v", rec.Speedup)
	}
}

func TestRecentTimingsHonorsLimit(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		rec := queue.TimingRecord{Provider: "openai", AudioSeconds: 100, ProcessingSeconds: 10}
		if err := store.RecordTiming(ctx, &rec); err != nil {
			t.Fatalf("RecordTiming %d: %v", i, err)
		}
	}

	fetched, err := store.RecentTimings(ctx, 2)
	if err != nil {
		t.Fatalf("RecentTimings: %v", err)
	}
	if len(fetched) != 2 {
		t.Fatalf("expected 2 records, got %d", len(fetched))
	}
}
