package summarization

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"log/slog"

	"confab/internal/config"
	"confab/internal/conversation"
	"confab/internal/fileutil"
	"confab/internal/logging"
	"confab/internal/notifications"
	"confab/internal/prompts"
	"confab/internal/queue"
	"confab/internal/services"
	"confab/internal/services/summarize"
	"confab/internal/stage"
	"confab/internal/textutil"
)

const fallbackDocumentName = "summary"

// DocumentService turns a formatted conversation into a markdown summary.
type DocumentService interface {
	Summarize(ctx context.Context, conversationText string) (string, error)
}

// Summarizer runs the summarization stage: it renders the conversation for
// the model and writes the resulting markdown document.
type Summarizer struct {
	store    *queue.Store
	cfg      *config.Config
	logger   *slog.Logger
	notifier notifications.Service
	docs     DocumentService
}

// New constructs the summarization handler using the configured model.
func New(cfg *config.Config, store *queue.Store, promptStore *prompts.Store, notifier notifications.Service, logger *slog.Logger) *Summarizer {
	var docs DocumentService
	svc, err := summarize.NewService(summarize.Config{
		APIKey:            cfg.SummaryKey(),
		Model:             cfg.Summary.Model,
		BaseURL:           cfg.Summary.BaseURL,
		TimeoutSeconds:    cfg.Summary.TimeoutSeconds,
		FormattingEnabled: cfg.Summary.FormattingEnabled,
	}, promptStore, logger)
	if err != nil {
		logger.Warn("summary service unavailable", logging.Error(err))
	} else {
		docs = svc
	}
	return NewWithDependencies(cfg, store, docs, notifier, logger)
}

// NewWithDependencies allows injecting the document service (used in tests).
func NewWithDependencies(cfg *config.Config, store *queue.Store, docs DocumentService, notifier notifications.Service, logger *slog.Logger) *Summarizer {
	return &Summarizer{
		store:    store,
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "summarization"),
		notifier: notifier,
		docs:     docs,
	}
}

func (s *Summarizer) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, s.logger)
	item.InitProgress("Summarizing", "Starting summary generation")
	logger.Info(
		"starting summarization",
		logging.String("conversation_file", strings.TrimSpace(item.ConversationFile)),
		logging.String("model", s.cfg.Summary.Model),
	)
	return nil
}

func (s *Summarizer) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, s.logger)

	utterances, err := stage.ReadConversation(item.ConversationFile)
	if err != nil {
		return err
	}
	if s.docs == nil {
		return services.Wrap(
			services.ErrConfiguration, "summarization", "summary provider",
			"Summary API key required; set summary.api_key or OPENAI_API_KEY", nil)
	}

	s.persistProgress(ctx, item, "Summarizing", "Generating summary", 30)

	// Collapse same-speaker runs here, after any manual edits to the CSV,
	// so edited speaker labels merge the way freshly aligned ones do.
	merged := conversation.MergeConsecutive(utterances)

	body, err := s.docs.Summarize(ctx, conversation.FormatForModel(merged))
	if err != nil {
		return err
	}

	path, err := s.writeDocument(item, body)
	if err != nil {
		return err
	}
	item.DocumentFile = path
	item.SetProgressComplete("Summarized", "Summary ready")

	logger.Info(
		"summarization completed",
		logging.String("document_file", path),
		logging.Int("document_bytes", len(body)),
		logging.Int("merged_rows", len(merged)),
	)

	if s.notifier != nil {
		err := s.notifier.Publish(ctx, notifications.EventDocumentReady, notifications.Payload{
			"title":        item.Title,
			"documentPath": path,
		})
		if err != nil {
			logger.Warn("failed to send document notification", logging.Error(err))
		}
	}
	return nil
}

func (s *Summarizer) writeDocument(item *queue.Item, body string) (string, error) {
	root := item.StagingRoot(s.cfg.Paths.StagingDir)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return "", services.Wrap(
			services.ErrConfiguration, "summarization", "create staging root",
			"Failed to create staging directory", err)
	}

	name := textutil.SanitizeFileName(item.Title)
	if name == "" {
		name = fallbackDocumentName
	}
	path := filepath.Join(root, name+".md")
	if err := fileutil.WriteAtomic(path, []byte(body+"\n"), 0o644); err != nil {
		return "", services.Wrap(
			services.ErrTransient, "summarization", "write document",
			"Failed to write summary document", err)
	}
	return path, nil
}

func (s *Summarizer) persistProgress(ctx context.Context, item *queue.Item, stageName, message string, percent float64) {
	item.SetProgress(stageName, message, percent)
	if s.store == nil {
		return
	}
	if err := s.store.UpdateProgress(ctx, item); err != nil {
		logging.WithContext(ctx, s.logger).Warn("failed to persist progress", logging.Error(err))
	}
}

// HealthCheck reports readiness of the summary provider.
func (s *Summarizer) HealthCheck(ctx context.Context) stage.Health {
	const name = "summarization"
	if s.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if s.docs == nil {
		return stage.Unhealthy(name, "summary API key missing")
	}
	return stage.Healthy(name)
}
