package main

import (
	"context"
	"strings"

	"confab/internal/api"
	"confab/internal/queue"
)

// queueAPI abstracts the queue operations shared by the daemon HTTP path and
// the direct-store fallback used when the daemon is down.
type queueAPI interface {
	Stats(ctx context.Context) (map[string]int, error)
	List(ctx context.Context, statuses []string) ([]api.QueueItem, error)
	Describe(ctx context.Context, id int64) (*api.QueueItem, error)
	Clear(ctx context.Context, scope string) (int64, error)
	RetryAll(ctx context.Context) (int64, error)
	Retry(ctx context.Context, ids []int64) (api.RetryItemsResult, error)
	Cancel(ctx context.Context, ids []int64) (api.CancelItemsResult, error)
	Remove(ctx context.Context, ids []int64) (api.RemoveItemsResult, error)
	Health(ctx context.Context) (api.QueueHealthResponse, error)
	DatabaseHealth(ctx context.Context) (api.DatabaseHealthResponse, error)
}

// resolveQueueAPI prefers the daemon HTTP API so commands observe in-flight
// state, and falls back to opening the queue database directly. The returned
// cleanup must be called when the command finishes.
func (c *commandContext) resolveQueueAPI(ctx context.Context) (queueAPI, func(), error) {
	noop := func() {}
	client, err := c.apiClient()
	if err != nil {
		return nil, noop, err
	}
	if client != nil {
		if _, err := client.QueueHealth(ctx); err == nil {
			return &queueHTTPAdapter{client: client}, noop, nil
		} else if !api.IsUnavailable(err) {
			return nil, noop, err
		}
	}

	store, err := queue.Open(c.configValue())
	if err != nil {
		return nil, noop, err
	}
	adapter := &queueStoreAdapter{
		store:   store,
		service: api.NewQueueService(store),
	}
	return adapter, func() { _ = store.Close() }, nil
}

// --- HTTP adapter ---

type queueHTTPAdapter struct {
	client *api.Client
}

func (a *queueHTTPAdapter) Stats(ctx context.Context) (map[string]int, error) {
	status, err := a.client.Status(ctx)
	if err != nil {
		return nil, err
	}
	return status.Workflow.QueueStats, nil
}

func (a *queueHTTPAdapter) List(ctx context.Context, statuses []string) ([]api.QueueItem, error) {
	return a.client.QueueList(ctx, statuses...)
}

func (a *queueHTTPAdapter) Describe(ctx context.Context, id int64) (*api.QueueItem, error) {
	item, err := a.client.QueueItem(ctx, id)
	if err != nil {
		if api.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (a *queueHTTPAdapter) Clear(ctx context.Context, scope string) (int64, error) {
	resp, err := a.client.ClearQueue(ctx, scope)
	if err != nil {
		return 0, err
	}
	return resp.RemovedCount, nil
}

func (a *queueHTTPAdapter) RetryAll(ctx context.Context) (int64, error) {
	resp, err := a.client.RetryAllFailed(ctx)
	if err != nil {
		return 0, err
	}
	return resp.UpdatedCount, nil
}

func (a *queueHTTPAdapter) Retry(ctx context.Context, ids []int64) (api.RetryItemsResult, error) {
	result := api.RetryItemsResult{Items: make([]api.RetryItemResult, 0, len(ids))}
	for _, id := range ids {
		resp, err := a.client.RetryItem(ctx, id)
		if err != nil {
			switch {
			case api.IsNotFound(err):
				result.Items = append(result.Items, api.RetryItemResult{ID: id, Outcome: api.RetryItemNotFound})
				continue
			case api.IsConflict(err):
				result.Items = append(result.Items, api.RetryItemResult{ID: id, Outcome: api.RetryItemNotRetried})
				continue
			}
			return api.RetryItemsResult{}, err
		}
		result.UpdatedCount += resp.UpdatedCount
		result.Items = append(result.Items, resp.Items...)
	}
	return result, nil
}

func (a *queueHTTPAdapter) Cancel(ctx context.Context, ids []int64) (api.CancelItemsResult, error) {
	result := api.CancelItemsResult{Items: make([]api.CancelItemResult, 0, len(ids))}
	for _, id := range ids {
		resp, err := a.client.CancelItem(ctx, id)
		if err != nil {
			switch {
			case api.IsNotFound(err):
				result.Items = append(result.Items, api.CancelItemResult{ID: id, Outcome: api.CancelItemNotFound})
				continue
			case api.IsConflict(err):
				result.Items = append(result.Items, api.CancelItemResult{ID: id, Outcome: cancelConflictOutcome(err)})
				continue
			}
			return api.CancelItemsResult{}, err
		}
		result.UpdatedCount += resp.UpdatedCount
		result.Items = append(result.Items, resp.Items...)
	}
	return result, nil
}

// cancelConflictOutcome distinguishes the two 409 causes by the server
// message so the per-item report stays accurate over HTTP.
func cancelConflictOutcome(err error) api.CancelItemOutcome {
	if strings.Contains(strings.ToLower(err.Error()), "already completed") {
		return api.CancelItemAlreadyCompleted
	}
	return api.CancelItemInProgress
}

func (a *queueHTTPAdapter) Remove(ctx context.Context, ids []int64) (api.RemoveItemsResult, error) {
	result := api.RemoveItemsResult{Items: make([]api.RemoveItemResult, 0, len(ids))}
	for _, id := range ids {
		resp, err := a.client.RemoveItem(ctx, id)
		if err != nil {
			if api.IsNotFound(err) {
				result.Items = append(result.Items, api.RemoveItemResult{ID: id, Outcome: api.RemoveItemNotFound})
				continue
			}
			return api.RemoveItemsResult{}, err
		}
		result.RemovedCount += resp.RemovedCount
		result.Items = append(result.Items, resp.Items...)
	}
	return result, nil
}

func (a *queueHTTPAdapter) Health(ctx context.Context) (api.QueueHealthResponse, error) {
	return a.client.QueueHealth(ctx)
}

func (a *queueHTTPAdapter) DatabaseHealth(ctx context.Context) (api.DatabaseHealthResponse, error) {
	return a.client.DatabaseHealth(ctx)
}

// --- Store adapter ---

type queueStoreAdapter struct {
	store   *queue.Store
	service *api.QueueService
}

func (a *queueStoreAdapter) Stats(ctx context.Context) (map[string]int, error) {
	return a.service.Stats(ctx)
}

func (a *queueStoreAdapter) List(ctx context.Context, statuses []string) ([]api.QueueItem, error) {
	var filters []queue.Status
	for _, s := range statuses {
		if parsed, ok := queue.ParseStatus(s); ok {
			filters = append(filters, parsed)
		}
	}
	return a.service.List(ctx, filters...)
}

func (a *queueStoreAdapter) Describe(ctx context.Context, id int64) (*api.QueueItem, error) {
	return a.service.Describe(ctx, id)
}

func (a *queueStoreAdapter) Clear(ctx context.Context, scope string) (int64, error) {
	switch scope {
	case "failed":
		return a.store.ClearFailed(ctx)
	case "all":
		return a.store.Clear(ctx)
	default:
		return a.store.ClearCompleted(ctx)
	}
}

func (a *queueStoreAdapter) RetryAll(ctx context.Context) (int64, error) {
	return a.store.RetryFailed(ctx)
}

func (a *queueStoreAdapter) Retry(ctx context.Context, ids []int64) (api.RetryItemsResult, error) {
	return api.RetryFailedItemsByID(ctx, storeQueueActions{a}, ids)
}

func (a *queueStoreAdapter) Cancel(ctx context.Context, ids []int64) (api.CancelItemsResult, error) {
	return api.CancelItemsByID(ctx, storeQueueActions{a}, ids)
}

func (a *queueStoreAdapter) Remove(ctx context.Context, ids []int64) (api.RemoveItemsResult, error) {
	return api.RemoveItemsByID(ctx, storeQueueActions{a}, ids)
}

func (a *queueStoreAdapter) Health(ctx context.Context) (api.QueueHealthResponse, error) {
	summary, err := a.store.Health(ctx)
	if err != nil {
		return api.QueueHealthResponse{}, err
	}
	return api.FromHealthSummary(summary), nil
}

func (a *queueStoreAdapter) DatabaseHealth(ctx context.Context) (api.DatabaseHealthResponse, error) {
	health, err := a.store.CheckHealth(ctx)
	if err != nil {
		return api.DatabaseHealthResponse{}, err
	}
	return api.FromDatabaseHealth(health), nil
}

// storeQueueActions adapts the store adapter to the per-item action helpers.
type storeQueueActions struct {
	adapter *queueStoreAdapter
}

func (s storeQueueActions) Describe(ctx context.Context, id int64) (*api.QueueItem, error) {
	return s.adapter.service.Describe(ctx, id)
}

func (s storeQueueActions) Retry(ctx context.Context, ids []int64) (int64, error) {
	return s.adapter.store.RetryFailed(ctx, ids...)
}

func (s storeQueueActions) Cancel(ctx context.Context, ids []int64) (int64, error) {
	return s.adapter.store.CancelWaiting(ctx, ids...)
}

func (s storeQueueActions) Remove(ctx context.Context, ids []int64) (int64, error) {
	var removed int64
	for _, id := range ids {
		ok, err := s.adapter.store.Remove(ctx, id)
		if err != nil {
			return removed, err
		}
		if ok {
			removed++
		}
	}
	return removed, nil
}
