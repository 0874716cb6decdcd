package queue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// TimingRecord captures how long one transcription run took relative to the
// audio it processed. Completed runs append records; the estimator reads them
// back to predict processing time for new recordings.
type TimingRecord struct {
	ID                int64
	Provider          string
	Chunked           bool
	Speedup           float64
	AudioSeconds      float64
	ProcessingSeconds float64
	CreatedAt         time.Time
}

// RecordTiming appends a timing record for a completed transcription run.
func (s *Store) RecordTiming(ctx context.Context, rec *TimingRecord) error {
	if rec == nil {
		return errors.New("timing record is nil")
	}
	rec.Provider = strings.TrimSpace(rec.Provider)
	if rec.Provider == "" {
		return errors.New("timing record provider is required")
	}
	if rec.AudioSeconds <= 0 || rec.ProcessingSeconds <= 0 {
		return fmt.Errorf("timing record durations must be positive (audio %.2f, processing %.2f)",
			rec.AudioSeconds, rec.ProcessingSeconds)
	}
	if rec.Speedup <= 0 {
		rec.Speedup = 1.0
	}

	now := time.Now().UTC()
	rec.CreatedAt = now
	res, err := s.execRetry(
		ctx,
		`INSERT INTO timing_records (
            provider, chunked, speedup, audio_seconds, processing_seconds, created_at
        ) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.Provider,
		boolToInt(rec.Chunked),
		rec.Speedup,
		rec.AudioSeconds,
		rec.ProcessingSeconds,
		now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert timing record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("timing record id: %w", err)
	}
	rec.ID = id
	return nil
}

// RecentTimings returns the newest timing records, most recent first. A
// non-positive limit applies a default cap.
func (s *Store) RecentTimings(ctx context.Context, limit int) ([]TimingRecord, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, provider, chunked, speedup, audio_seconds, processing_seconds, created_at
         FROM timing_records ORDER BY created_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query timing records: %w", err)
	}
	defer rows.Close()

	var records []TimingRecord
	for rows.Next() {
		var (
			rec        TimingRecord
			chunked    int
			createdRaw string
		)
		if err := rows.Scan(&rec.ID, &rec.Provider, &chunked, &rec.Speedup, &rec.AudioSeconds, &rec.ProcessingSeconds, &createdRaw); err != nil {
			return nil, fmt.Errorf("scan timing record: %w", err)
		}
		rec.Chunked = chunked != 0
		if created, err := parseTimeString(createdRaw); err == nil {
			rec.CreatedAt = created
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
