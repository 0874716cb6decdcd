package summarization_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"confab/internal/config"
	"confab/internal/conversation"
	"confab/internal/notifications"
	"confab/internal/queue"
	"confab/internal/services"
	"confab/internal/summarization"
	"confab/internal/testsupport"
)

type fakeDocs struct {
	body    string
	err     error
	gotText string
}

func (f *fakeDocs) Summarize(_ context.Context, conversationText string) (string, error) {
	f.gotText = conversationText
	return f.body, f.err
}

type fakeNotifier struct {
	events   []notifications.Event
	payloads []notifications.Payload
}

func (f *fakeNotifier) Publish(_ context.Context, event notifications.Event, payload notifications.Payload) error {
	f.events = append(f.events, event)
	f.payloads = append(f.payloads, payload)
	return nil
}

func newConversationItem(t *testing.T, cfg *config.Config, store *queue.Store, utterances []conversation.Utterance) *queue.Item {
	t.Helper()

	item := testsupport.NewRecording(t, store, filepath.Join(cfg.Paths.InboxDir, "weekly sync.m4a"))
	root := item.StagingRoot(cfg.Paths.StagingDir)
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatalf("mkdir staging root: %v", err)
	}
	item.ConversationFile = filepath.Join(root, "conversation.csv")
	file, err := os.Create(item.ConversationFile)
	if err != nil {
		t.Fatalf("create conversation artifact: %v", err)
	}
	if err := conversation.WriteCSV(file, utterances); err != nil {
		t.Fatalf("write conversation artifact: %v", err)
	}
	if err := file.Close(); err != nil {
		t.Fatalf("close conversation artifact: %v", err)
	}
	return item
}

func TestSummarizerWritesDocument(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := newConversationItem(t, cfg, store, []conversation.Utterance{
		{Start: 0, End: 8, Speaker: "A", Text: "Morning. Quick updates first."},
		{Start: 8, End: 12, Speaker: "B", Text: "Thanks, go ahead."},
	})

	docs := &fakeDocs{body: "# Weekly Sync\n\n- Updates shared"}
	notifier := &fakeNotifier{}
	handler := summarization.NewWithDependencies(cfg, store, docs, notifier, nil)

	if err := handler.Prepare(context.Background(), item); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := handler.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if !strings.Contains(docs.gotText, "[00:00-00:08] A: Morning. Quick updates first.") {
		t.Errorf("model input missing rendered utterance:\n%s", docs.gotText)
	}

	if item.DocumentFile == "" {
		t.Fatal("DocumentFile not set")
	}
	if got := filepath.Base(item.DocumentFile); got != item.Title+".md" {
		t.Errorf("document name = %q, want %q", got, item.Title+".md")
	}
	data, err := os.ReadFile(item.DocumentFile)
	if err != nil {
		t.Fatalf("read document: %v", err)
	}
	if string(data) != "# Weekly Sync\n\n- Updates shared\n" {
		t.Errorf("document content = %q", string(data))
	}

	if item.ProgressStage != "Summarized" {
		t.Errorf("progress stage = %q, want Summarized", item.ProgressStage)
	}
	if len(notifier.events) != 1 || notifier.events[0] != notifications.EventDocumentReady {
		t.Fatalf("notifier events = %v, want one document_ready", notifier.events)
	}
	if notifier.payloads[0]["documentPath"] != item.DocumentFile {
		t.Errorf("payload documentPath = %q, want %q", notifier.payloads[0]["documentPath"], item.DocumentFile)
	}
}

func TestSummarizerMergesSpeakerRunsFromEditedCSV(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	// Consecutive same-speaker rows, as the aligner persists them or as a
	// transcript edit leaves them after relabeling.
	item := newConversationItem(t, cfg, store, []conversation.Utterance{
		{Start: 0, End: 4, Speaker: "Alice", Text: "Morning."},
		{Start: 4, End: 8, Speaker: "Alice", Text: "Quick updates first."},
		{Start: 8, End: 12, Speaker: "Bob", Text: "Thanks, go ahead."},
	})

	docs := &fakeDocs{body: "# Standup"}
	handler := summarization.NewWithDependencies(cfg, store, docs, nil, nil)
	if err := handler.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if !strings.Contains(docs.gotText, "[00:00-00:08] Alice: Morning. Quick updates first.") {
		t.Errorf("model input missing merged Alice run:\n%s", docs.gotText)
	}
	if strings.Contains(docs.gotText, "[00:00-00:04]") {
		t.Errorf("model input still carries an unmerged row:\n%s", docs.gotText)
	}
	if got := strings.Count(docs.gotText, "Alice:"); got != 1 {
		t.Errorf("Alice appears %d times in model input, want 1", got)
	}
}

func TestSummarizerMissingConversationIsValidation(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewRecording(t, store, filepath.Join(cfg.Paths.InboxDir, "sync.m4a"))

	handler := summarization.NewWithDependencies(cfg, store, &fakeDocs{}, nil, nil)
	err := handler.Execute(context.Background(), item)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("Execute error = %v, want ErrValidation", err)
	}
	if got := services.FailureStatus(err); got != queue.StatusReview {
		t.Errorf("FailureStatus = %q, want %q", got, queue.StatusReview)
	}
}

func TestSummarizerMissingServiceIsConfiguration(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := newConversationItem(t, cfg, store, []conversation.Utterance{
		{Start: 0, End: 2, Speaker: "A", Text: "Hi."},
	})

	handler := summarization.NewWithDependencies(cfg, store, nil, nil, nil)
	err := handler.Execute(context.Background(), item)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("Execute error = %v, want ErrConfiguration", err)
	}
}

func TestSummarizerPropagatesModelFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := newConversationItem(t, cfg, store, []conversation.Utterance{
		{Start: 0, End: 2, Speaker: "A", Text: "Hi."},
	})

	docs := &fakeDocs{err: services.Wrap(
		services.ErrExternalTool, "summarize", "generate summary",
		"Summary generation failed", errors.New("rate limited"))}
	notifier := &fakeNotifier{}
	handler := summarization.NewWithDependencies(cfg, store, docs, notifier, nil)

	err := handler.Execute(context.Background(), item)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("Execute error = %v, want ErrExternalTool", err)
	}
	if len(notifier.events) != 0 {
		t.Errorf("notifier events = %v, want none on failure", notifier.events)
	}
}

func TestSummarizerHealthCheck(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ready := summarization.NewWithDependencies(cfg, store, &fakeDocs{}, nil, nil)
	if health := ready.HealthCheck(context.Background()); !health.Ready {
		t.Errorf("health with service = %+v, want ready", health)
	}

	missing := summarization.NewWithDependencies(cfg, store, nil, nil, nil)
	if health := missing.HealthCheck(context.Background()); health.Ready {
		t.Errorf("health without service = %+v, want not ready", health)
	}
}
