package api

import (
	"context"

	"confab/internal/queue"
)

// QueueReader is the slice of the queue store the read-only API needs.
type QueueReader interface {
	List(ctx context.Context, statuses ...queue.Status) ([]*queue.Item, error)
	Stats(ctx context.Context) (map[queue.Status]int, error)
	GetByID(ctx context.Context, id int64) (*queue.Item, error)
	Health(ctx context.Context) (queue.HealthSummary, error)
}

// QueueService answers queue queries with API DTOs instead of store models.
// A nil service or reader degrades to empty results rather than panicking.
type QueueService struct {
	store QueueReader
}

func NewQueueService(store QueueReader) *QueueService {
	if store == nil {
		return nil
	}
	return &QueueService{store: store}
}

func (s *QueueService) ready() bool {
	return s != nil && s.store != nil
}

// List returns queue items filtered by status.
func (s *QueueService) List(ctx context.Context, statuses ...queue.Status) ([]QueueItem, error) {
	if !s.ready() {
		return nil, nil
	}
	items, err := s.store.List(ctx, statuses...)
	if err != nil {
		return nil, err
	}
	return FromQueueItems(items), nil
}

// Stats returns per-status item counts keyed by status string.
func (s *QueueService) Stats(ctx context.Context) (map[string]int, error) {
	if !s.ready() {
		return nil, nil
	}
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return MergeQueueStats(stats), nil
}

// Describe fetches a single queue item, nil when the id is unknown.
func (s *QueueService) Describe(ctx context.Context, id int64) (*QueueItem, error) {
	if !s.ready() {
		return nil, nil
	}
	item, err := s.store.GetByID(ctx, id)
	if err != nil || item == nil {
		return nil, err
	}
	dto := FromQueueItem(item)
	return &dto, nil
}

// Health returns queue counts grouped by pipeline phase.
func (s *QueueService) Health(ctx context.Context) (QueueHealthResponse, error) {
	if !s.ready() {
		return QueueHealthResponse{}, nil
	}
	summary, err := s.store.Health(ctx)
	if err != nil {
		return QueueHealthResponse{}, err
	}
	return FromHealthSummary(summary), nil
}
