package queue

import (
	"context"
	"fmt"
	"time"
)

// ResetStuckProcessing resets items in processing states back to the start of their current stage.
func (s *Store) ResetStuckProcessing(ctx context.Context) (int64, error) {
	res, err := s.execRetry(
		ctx,
		`UPDATE queue_items
         SET status = CASE status
             WHEN ? THEN ?
             WHEN ? THEN ?
             WHEN ? THEN ?
             WHEN ? THEN ?
             ELSE status
         END,
             progress_stage = 'Reset from stuck processing',
             progress_percent = 0, progress_message = NULL, last_heartbeat = NULL, updated_at = ?
         WHERE status IN (?, ?, ?, ?)`,
		StatusPreparing, StatusPending,
		StatusTranscribing, StatusPrepared,
		StatusAligning, StatusTranscribed,
		StatusSummarizing, StatusAligned,
		time.Now().UTC().Format(time.RFC3339Nano),
		StatusPreparing,
		StatusTranscribing,
		StatusAligning,
		StatusSummarizing,
	)
	if err != nil {
		return 0, fmt.Errorf("reset stuck items: %w", err)
	}
	return res.RowsAffected()
}

// UpdateHeartbeat updates the last heartbeat timestamp for an in-flight item.
func (s *Store) UpdateHeartbeat(ctx context.Context, id int64) error {
	now := time.Now().UTC()
	if err := s.execDiscard(
		ctx,
		`UPDATE queue_items SET last_heartbeat = ?, updated_at = ? WHERE id = ?`,
		now.Format(time.RFC3339Nano),
		now.Format(time.RFC3339Nano),
		id,
	); err != nil {
		return fmt.Errorf("update heartbeat: %w", err)
	}
	return nil
}

// ReclaimStaleProcessing returns items stuck in processing back to the start of
// their current stage when heartbeats expire. When statuses are provided only
// those processing statuses are eligible; otherwise all of them are.
func (s *Store) ReclaimStaleProcessing(ctx context.Context, cutoff time.Time, statuses ...Status) (int64, error) {
	eligible := make([]Status, 0, len(statuses))
	for _, status := range statuses {
		if IsProcessingStatus(status) {
			eligible = append(eligible, status)
		}
	}
	if len(statuses) == 0 {
		eligible = ProcessingStatuses()
	}
	if len(eligible) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	args := make([]any, 0, len(eligible)+10)
	args = append(args,
		StatusPreparing, StatusPending,
		StatusTranscribing, StatusPrepared,
		StatusAligning, StatusTranscribed,
		StatusSummarizing, StatusAligned,
		now.Format(time.RFC3339Nano),
	)
	for _, status := range eligible {
		args = append(args, status)
	}
	args = append(args, cutoff.UTC().Format(time.RFC3339Nano))

	query := `UPDATE queue_items
        SET status = CASE status
            WHEN ? THEN ?
            WHEN ? THEN ?
            WHEN ? THEN ?
            WHEN ? THEN ?
            ELSE status
        END,
            progress_stage = 'Reclaimed from stale processing',
            progress_percent = 0, progress_message = NULL, last_heartbeat = NULL, updated_at = ?
        WHERE status IN (` + makePlaceholders(len(eligible)) + `) AND last_heartbeat IS NOT NULL AND last_heartbeat < ?`

	res, err := s.execRetry(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("reclaim stale items: %w", err)
	}
	return res.RowsAffected()
}

// RollbackProcessing returns every in-flight item to the start of its current
// stage with the daemon stop reason, so interrupted stages re-run on the next
// start instead of waiting out the heartbeat timeout.
func (s *Store) RollbackProcessing(ctx context.Context) (int64, error) {
	res, err := s.execRetry(
		ctx,
		`UPDATE queue_items
         SET status = CASE status
             WHEN ? THEN ?
             WHEN ? THEN ?
             WHEN ? THEN ?
             WHEN ? THEN ?
             ELSE status
         END,
             progress_stage = 'Interrupted',
             progress_percent = 0, progress_message = ?, last_heartbeat = NULL, updated_at = ?
         WHERE status IN (?, ?, ?, ?)`,
		StatusPreparing, StatusPending,
		StatusTranscribing, StatusPrepared,
		StatusAligning, StatusTranscribed,
		StatusSummarizing, StatusAligned,
		DaemonStopReason,
		time.Now().UTC().Format(time.RFC3339Nano),
		StatusPreparing,
		StatusTranscribing,
		StatusAligning,
		StatusSummarizing,
	)
	if err != nil {
		return 0, fmt.Errorf("rollback in-flight items: %w", err)
	}
	return res.RowsAffected()
}

// CancelWaiting moves waiting items into review with the user stop reason.
// Items mid-stage are left untouched so a stage never loses its claim; the
// affected-row count tells callers whether the cancel landed.
func (s *Store) CancelWaiting(ctx context.Context, ids ...int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	waiting := ClaimableStatuses()
	args := make([]any, 0, len(ids)+len(waiting)+4)
	args = append(args, StatusReview, UserStopReason, UserStopReason, time.Now().UTC().Format(time.RFC3339Nano))
	for _, status := range waiting {
		args = append(args, status)
	}
	for _, id := range ids {
		args = append(args, id)
	}
	query := `UPDATE queue_items
        SET status = ?, progress_stage = 'Review', progress_percent = 0,
            progress_message = ?, needs_review = 1, review_reason = ?,
            last_heartbeat = NULL, updated_at = ?
        WHERE status IN (` + makePlaceholders(len(waiting)) + `) AND id IN (` + makePlaceholders(len(ids)) + `)`
	res, err := s.execRetry(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("cancel waiting items: %w", err)
	}
	return res.RowsAffected()
}

// Requeue parks an idle item at the given waiting status so the matching
// stage picks it up again. Items a worker currently holds are left untouched
// and report false.
func (s *Store) Requeue(ctx context.Context, id int64, target Status, stage string) (bool, error) {
	if !IsWaitingStatus(target) {
		return false, fmt.Errorf("requeue target %q is not a waiting status", target)
	}

	processing := ProcessingStatuses()
	args := make([]any, 0, len(processing)+4)
	args = append(args, target, stage, time.Now().UTC().Format(time.RFC3339Nano), id)
	for _, status := range processing {
		args = append(args, status)
	}
	query := `UPDATE queue_items
        SET status = ?, progress_stage = ?, progress_percent = 0,
            progress_message = NULL, error_message = NULL, needs_review = 0,
            review_reason = NULL, last_heartbeat = NULL, updated_at = ?
        WHERE id = ? AND status NOT IN (` + makePlaceholders(len(processing)) + `)`
	res, err := s.execRetry(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("requeue item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// RetryFailed moves failed and review items back to pending for reprocessing.
func (s *Store) RetryFailed(ctx context.Context, ids ...int64) (int64, error) {
	if len(ids) == 0 {
		res, err := s.execRetry(
			ctx,
			`UPDATE queue_items
            SET status = ?, progress_stage = 'Retry requested', progress_percent = 0,
                progress_message = NULL, error_message = NULL, needs_review = 0,
                review_reason = NULL, updated_at = ?
            WHERE status IN (?, ?)`,
			StatusPending,
			time.Now().UTC().Format(time.RFC3339Nano),
			StatusFailed,
			StatusReview,
		)
		if err != nil {
			return 0, fmt.Errorf("retry failed items: %w", err)
		}
		return res.RowsAffected()
	}

	placeholders := makePlaceholders(len(ids))
	args := make([]any, 0, len(ids)+4)
	args = append(args, StatusPending, time.Now().UTC().Format(time.RFC3339Nano), StatusFailed, StatusReview)
	for _, id := range ids {
		args = append(args, id)
	}
	query := `UPDATE queue_items
        SET status = ?, progress_stage = 'Retry requested', progress_percent = 0,
            progress_message = NULL, error_message = NULL, needs_review = 0,
            review_reason = NULL, updated_at = ?
        WHERE status IN (?, ?) AND id IN (` + placeholders + `)`
	res, err := s.execRetry(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("retry selected items: %w", err)
	}
	return res.RowsAffected()
}
