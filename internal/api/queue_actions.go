package api

import (
	"context"

	"confab/internal/queue"
)

// QueueActionService captures queue operations needed by per-item
// retry/cancel/remove workflows.
type QueueActionService interface {
	Describe(ctx context.Context, id int64) (*QueueItem, error)
	Retry(ctx context.Context, ids []int64) (int64, error)
	Cancel(ctx context.Context, ids []int64) (int64, error)
	Remove(ctx context.Context, ids []int64) (int64, error)
}

type RetryItemOutcome string

const (
	RetryItemUpdated    RetryItemOutcome = "retried"
	RetryItemNotFound   RetryItemOutcome = "not_found"
	RetryItemNotRetried RetryItemOutcome = "not_failed"
)

type RetryItemResult struct {
	ID      int64            `json:"id"`
	Outcome RetryItemOutcome `json:"outcome"`
}

type RetryItemsResult struct {
	UpdatedCount int64             `json:"updatedCount"`
	Items        []RetryItemResult `json:"items"`
}

type CancelItemOutcome string

const (
	CancelItemCancelled        CancelItemOutcome = "cancelled"
	CancelItemNotFound         CancelItemOutcome = "not_found"
	CancelItemInProgress       CancelItemOutcome = "in_progress"
	CancelItemAlreadyCompleted CancelItemOutcome = "already_completed"
	CancelItemAlreadyStopped   CancelItemOutcome = "already_stopped"
)

type CancelItemResult struct {
	ID          int64             `json:"id"`
	Outcome     CancelItemOutcome `json:"outcome"`
	PriorStatus string            `json:"priorStatus,omitempty"`
}

type CancelItemsResult struct {
	UpdatedCount int64              `json:"updatedCount"`
	Items        []CancelItemResult `json:"items"`
}

type RemoveItemOutcome string

const (
	RemoveItemRemoved  RemoveItemOutcome = "removed"
	RemoveItemNotFound RemoveItemOutcome = "not_found"
)

type RemoveItemResult struct {
	ID      int64             `json:"id"`
	Outcome RemoveItemOutcome `json:"outcome"`
}

type RemoveItemsResult struct {
	RemovedCount int64              `json:"removedCount"`
	Items        []RemoveItemResult `json:"items"`
}

// RetryFailedItemsByID validates IDs and retries only failed or review items.
func RetryFailedItemsByID(ctx context.Context, service QueueActionService, ids []int64) (RetryItemsResult, error) {
	result := RetryItemsResult{Items: make([]RetryItemResult, 0, len(ids))}
	for _, id := range ids {
		item, err := service.Describe(ctx, id)
		if err != nil {
			return RetryItemsResult{}, err
		}
		if item == nil {
			result.Items = append(result.Items, RetryItemResult{ID: id, Outcome: RetryItemNotFound})
			continue
		}
		status, ok := queue.ParseStatus(item.Status)
		if !ok || (status != queue.StatusFailed && status != queue.StatusReview) {
			result.Items = append(result.Items, RetryItemResult{ID: id, Outcome: RetryItemNotRetried})
			continue
		}
		updated, err := service.Retry(ctx, []int64{id})
		if err != nil {
			return RetryItemsResult{}, err
		}
		if updated > 0 {
			result.UpdatedCount += updated
			result.Items = append(result.Items, RetryItemResult{ID: id, Outcome: RetryItemUpdated})
			continue
		}
		result.Items = append(result.Items, RetryItemResult{ID: id, Outcome: RetryItemNotRetried})
	}
	return result, nil
}

// CancelItemsByID cancels items waiting between stages. Items mid-stage report
// in_progress so transports can surface a conflict instead of interrupting a
// running stage.
func CancelItemsByID(ctx context.Context, service QueueActionService, ids []int64) (CancelItemsResult, error) {
	result := CancelItemsResult{Items: make([]CancelItemResult, 0, len(ids))}
	for _, id := range ids {
		item, err := service.Describe(ctx, id)
		if err != nil {
			return CancelItemsResult{}, err
		}
		if item == nil {
			result.Items = append(result.Items, CancelItemResult{ID: id, Outcome: CancelItemNotFound})
			continue
		}
		status, ok := queue.ParseStatus(item.Status)
		if ok {
			switch {
			case queue.IsProcessingStatus(status):
				result.Items = append(result.Items, CancelItemResult{ID: id, Outcome: CancelItemInProgress, PriorStatus: item.Status})
				continue
			case status == queue.StatusCompleted:
				result.Items = append(result.Items, CancelItemResult{ID: id, Outcome: CancelItemAlreadyCompleted, PriorStatus: item.Status})
				continue
			case status == queue.StatusFailed || status == queue.StatusReview:
				result.Items = append(result.Items, CancelItemResult{ID: id, Outcome: CancelItemAlreadyStopped, PriorStatus: item.Status})
				continue
			}
		}

		updated, err := service.Cancel(ctx, []int64{id})
		if err != nil {
			return CancelItemsResult{}, err
		}
		if updated > 0 {
			result.UpdatedCount += updated
			result.Items = append(result.Items, CancelItemResult{ID: id, Outcome: CancelItemCancelled, PriorStatus: item.Status})
			continue
		}
		// A worker claimed the item between the lookup and the update.
		result.Items = append(result.Items, CancelItemResult{ID: id, Outcome: CancelItemInProgress, PriorStatus: item.Status})
	}
	return result, nil
}

// RemoveItemsByID removes queue items one-by-one so each ID can report
// removed/not_found.
func RemoveItemsByID(ctx context.Context, service QueueActionService, ids []int64) (RemoveItemsResult, error) {
	result := RemoveItemsResult{Items: make([]RemoveItemResult, 0, len(ids))}
	for _, id := range ids {
		removed, err := service.Remove(ctx, []int64{id})
		if err != nil {
			return RemoveItemsResult{}, err
		}
		if removed > 0 {
			result.RemovedCount += removed
			result.Items = append(result.Items, RemoveItemResult{ID: id, Outcome: RemoveItemRemoved})
			continue
		}
		result.Items = append(result.Items, RemoveItemResult{ID: id, Outcome: RemoveItemNotFound})
	}
	return result, nil
}
