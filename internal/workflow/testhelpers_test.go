package workflow_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"confab/internal/conversation"
	"confab/internal/notifications"
	"confab/internal/queue"
	"confab/internal/services/diarize"
	"confab/internal/stage"
)

type stubStage struct {
	name        string
	prepareHook func(*queue.Item)
	executeHook func(*queue.Item)
	prepareErr  error
	executeErr  error
	health      stage.Health

	mu       sync.Mutex
	executed int
}

func newStubStage(name string) *stubStage {
	return &stubStage{name: name, health: stage.Healthy(name)}
}

func (s *stubStage) Prepare(_ context.Context, item *queue.Item) error {
	if s.prepareHook != nil {
		s.prepareHook(item)
	}
	return s.prepareErr
}

func (s *stubStage) Execute(_ context.Context, item *queue.Item) error {
	s.mu.Lock()
	s.executed++
	s.mu.Unlock()
	if s.executeHook != nil {
		s.executeHook(item)
	}
	return s.executeErr
}

func (s *stubStage) HealthCheck(context.Context) stage.Health {
	return s.health
}

func (s *stubStage) executions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.executed
}

type recordingNotifier struct {
	mu       sync.Mutex
	events   []notifications.Event
	payloads []notifications.Payload
}

func (r *recordingNotifier) Publish(_ context.Context, event notifications.Event, payload notifications.Payload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	r.payloads = append(r.payloads, payload)
	return nil
}

func (r *recordingNotifier) snapshot() []notifications.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]notifications.Event, len(r.events))
	copy(out, r.events)
	return out
}

func (r *recordingNotifier) payloadFor(event notifications.Event) notifications.Payload {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, ev := range r.events {
		if ev == event {
			return r.payloads[i]
		}
	}
	return nil
}

func waitForStatus(t *testing.T, store *queue.Store, itemID int64, want queue.Status) *queue.Item {
	t.Helper()
	deadline := time.After(30 * time.Second)
	for {
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for status %s", want)
		default:
		}
		updated, err := store.GetByID(context.Background(), itemID)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if updated != nil && updated.Status == want {
			return updated
		}
		time.Sleep(25 * time.Millisecond)
	}
}

type scriptedSpeech struct {
	segments []conversation.TranscriptSegment
}

func (s *scriptedSpeech) Transcribe(context.Context, string) ([]conversation.TranscriptSegment, error) {
	return s.segments, nil
}

func (s *scriptedSpeech) TranscribeChunks(context.Context, []string, int) ([]conversation.TranscriptSegment, error) {
	return s.segments, nil
}

type scriptedSpeakers struct {
	result diarize.Result
}

func (s *scriptedSpeakers) Process(context.Context, string) (diarize.Result, error) {
	return s.result, nil
}

func (s *scriptedSpeakers) ProcessChunks(context.Context, []string, int) (diarize.Result, error) {
	return s.result, nil
}

type scriptedDocs struct {
	body    string
	gotText string
}

func (s *scriptedDocs) Summarize(_ context.Context, conversationText string) (string, error) {
	s.gotText = conversationText
	return s.body, nil
}
