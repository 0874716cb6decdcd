package alignment

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"log/slog"

	"confab/internal/config"
	"confab/internal/conversation"
	"confab/internal/logging"
	"confab/internal/notifications"
	"confab/internal/queue"
	"confab/internal/services"
	"confab/internal/stage"
)

const conversationFileName = "conversation.csv"

// Aligner runs the alignment stage: it merges the transcript with the
// diarization intervals into a speaker-attributed conversation.
type Aligner struct {
	store    *queue.Store
	cfg      *config.Config
	logger   *slog.Logger
	notifier notifications.Service
}

func New(cfg *config.Config, store *queue.Store, notifier notifications.Service, logger *slog.Logger) *Aligner {
	return &Aligner{
		store:    store,
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "alignment"),
		notifier: notifier,
	}
}

func (a *Aligner) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, a.logger)
	item.InitProgress("Aligning", "Starting alignment")
	logger.Info(
		"starting alignment",
		logging.String("transcript_file", strings.TrimSpace(item.TranscriptFile)),
		logging.String("diarization_file", strings.TrimSpace(item.DiarizationFile)),
	)
	return nil
}

func (a *Aligner) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, a.logger)

	transcript, err := stage.ReadTranscript(item.TranscriptFile)
	if err != nil {
		return err
	}
	speakers, err := stage.ReadDiarization(item.DiarizationFile)
	if err != nil {
		return err
	}

	a.persistProgress(ctx, item, "Aligning", "Attributing speakers", 40)

	// One row per transcript segment. Merging same-speaker runs happens at
	// summarize time so the persisted table stays editable per segment.
	utterances := conversation.Align(transcript, speakers)
	if len(utterances) == 0 {
		return services.Wrap(
			services.ErrValidation, "alignment", "align segments",
			"Alignment produced no utterances; rerun transcription", nil)
	}

	if len(speakers) == 0 {
		item.NeedsReview = true
		item.ReviewReason = "diarization produced no speaker turns; all rows attributed to " + conversation.UnknownSpeaker
		logging.WarnWithContext(logger, "aligning without diarization", "diarization_empty",
			logging.String(logging.FieldErrorHint, "check the diarization provider, then realign"),
			logging.String(logging.FieldImpact, "conversation rows carry no speaker attribution"),
		)
	}

	path, err := a.writeConversation(item, utterances)
	if err != nil {
		return err
	}
	item.ConversationFile = path
	item.SetProgressComplete("Aligned", "Conversation ready")

	logger.Info(
		"alignment completed",
		logging.Int("utterances", len(utterances)),
		logging.Int("speaker_segments", len(speakers)),
	)

	if a.notifier != nil {
		err := a.notifier.Publish(ctx, notifications.EventConversationReady, notifications.Payload{
			"title":      item.Title,
			"utterances": strconv.Itoa(len(utterances)),
		})
		if err != nil {
			logger.Warn("failed to send conversation notification", logging.Error(err))
		}
	}
	return nil
}

func (a *Aligner) writeConversation(item *queue.Item, utterances []conversation.Utterance) (string, error) {
	root := item.StagingRoot(a.cfg.Paths.StagingDir)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return "", services.Wrap(
			services.ErrConfiguration, "alignment", "create staging root",
			"Failed to create staging directory", err)
	}

	path := filepath.Join(root, conversationFileName)
	file, err := os.Create(path)
	if err != nil {
		return "", services.Wrap(
			services.ErrTransient, "alignment", "write conversation",
			"Failed to write conversation artifact", err)
	}
	if err := conversation.WriteCSV(file, utterances); err != nil {
		file.Close()
		return "", services.Wrap(
			services.ErrTransient, "alignment", "write conversation",
			"Failed to write conversation artifact", err)
	}
	if err := file.Close(); err != nil {
		return "", services.Wrap(
			services.ErrTransient, "alignment", "write conversation",
			"Failed to write conversation artifact", err)
	}
	return path, nil
}

func (a *Aligner) persistProgress(ctx context.Context, item *queue.Item, stageName, message string, percent float64) {
	item.SetProgress(stageName, message, percent)
	if a.store == nil {
		return
	}
	if err := a.store.UpdateProgress(ctx, item); err != nil {
		logging.WithContext(ctx, a.logger).Warn("failed to persist progress", logging.Error(err))
	}
}

// HealthCheck reports readiness. Alignment needs only the staging directory.
func (a *Aligner) HealthCheck(ctx context.Context) stage.Health {
	const name = "alignment"
	if a.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if strings.TrimSpace(a.cfg.Paths.StagingDir) == "" {
		return stage.Unhealthy(name, "staging directory not configured")
	}
	return stage.Healthy(name)
}
