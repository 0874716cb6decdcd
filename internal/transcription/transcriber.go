package transcription

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"log/slog"

	"confab/internal/config"
	"confab/internal/conversation"
	"confab/internal/logging"
	"confab/internal/queue"
	"confab/internal/services"
	"confab/internal/services/diarize"
	"confab/internal/services/transcribe"
	"confab/internal/stage"
	"confab/internal/textutil"
)

const (
	transcriptFileName  = "transcript.json"
	diarizationFileName = "diarization.json"
)

// SpeechService produces timestamped transcript segments from prepared audio.
type SpeechService interface {
	Transcribe(ctx context.Context, path string) ([]conversation.TranscriptSegment, error)
	TranscribeChunks(ctx context.Context, paths []string, chunkMinutes int) ([]conversation.TranscriptSegment, error)
}

// SpeakerService produces speaker-labeled intervals, optionally alongside a
// transcript when the provider does both in one pass.
type SpeakerService interface {
	Process(ctx context.Context, path string) (diarize.Result, error)
	ProcessChunks(ctx context.Context, paths []string, chunkMinutes int) (diarize.Result, error)
}

// Transcriber runs the transcription stage: it calls the configured
// providers and persists the transcript and diarization artifacts.
type Transcriber struct {
	store    *queue.Store
	cfg      *config.Config
	logger   *slog.Logger
	speech   SpeechService
	speakers SpeakerService
}

// New constructs the transcription handler using providers from config.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Transcriber {
	var speech SpeechService
	if cfg.Transcription.Provider == config.ProviderOpenAI {
		svc, err := transcribe.NewService(transcribe.Config{
			APIKey:         cfg.TranscriptionKey(),
			Model:          cfg.Transcription.Model,
			BaseURL:        cfg.Transcription.BaseURL,
			TimeoutSeconds: cfg.Transcription.TimeoutSeconds,
		})
		if err != nil {
			logger.Warn("transcription service unavailable", logging.Error(err))
		} else {
			speech = svc
		}
	}

	var speakers SpeakerService
	if usesSpeakerAPI(cfg) {
		client, err := diarize.NewClient(diarize.Config{
			APIKey:              cfg.DiarizationKey(),
			BaseURL:             cfg.Diarization.BaseURL,
			PollIntervalSeconds: cfg.Diarization.PollIntervalSeconds,
			TimeoutSeconds:      cfg.Diarization.TimeoutSeconds,
		})
		if err != nil {
			logger.Warn("diarization service unavailable", logging.Error(err))
		} else {
			speakers = client
		}
	}

	return NewWithDependencies(cfg, store, logger, speech, speakers)
}

// NewWithDependencies allows injecting provider clients (used in tests).
func NewWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, speech SpeechService, speakers SpeakerService) *Transcriber {
	return &Transcriber{
		store:    store,
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "transcription"),
		speech:   speech,
		speakers: speakers,
	}
}

func usesSpeakerAPI(cfg *config.Config) bool {
	return cfg.Transcription.Provider == config.ProviderAssemblyAI ||
		cfg.Diarization.Provider == config.ProviderAssemblyAI
}

func (t *Transcriber) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, t.logger)
	item.InitProgress("Transcribing", "Starting transcription")
	logger.Info(
		"starting transcription",
		logging.String("provider", t.cfg.Transcription.Provider),
		logging.String("prepared_file", strings.TrimSpace(item.PreparedFile)),
		logging.Int("chunks", item.ChunkCount),
	)
	return nil
}

func (t *Transcriber) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, t.logger)

	prepared := strings.TrimSpace(item.PreparedFile)
	if prepared == "" {
		return services.Wrap(
			services.ErrValidation, "transcription", "locate prepared audio",
			"No prepared audio recorded; rerun preparation", nil)
	}
	if _, err := os.Stat(prepared); err != nil {
		return services.Wrap(
			services.ErrValidation, "transcription", "locate prepared audio",
			"Prepared audio missing from staging; rerun preparation", err)
	}
	chunks, err := item.ChunkPaths()
	if err != nil {
		return services.Wrap(
			services.ErrValidation, "transcription", "read chunk list",
			"Chunk list is corrupt; rerun preparation", err)
	}

	started := time.Now()
	var (
		transcript []conversation.TranscriptSegment
		speakers   []conversation.SpeakerSegment
	)

	switch t.cfg.Transcription.Provider {
	case config.ProviderAssemblyAI:
		transcript, speakers, err = t.runCombined(ctx, prepared, chunks)
	case config.ProviderOpenAI:
		transcript, speakers, err = t.runSplit(ctx, prepared, chunks)
	default:
		return services.Wrap(
			services.ErrConfiguration, "transcription", "select provider",
			fmt.Sprintf("Unsupported transcription provider %q; set transcription.provider to openai or assemblyai", t.cfg.Transcription.Provider), nil)
	}
	if err != nil {
		return err
	}
	if len(transcript) == 0 {
		return services.Wrap(
			services.ErrValidation, "transcription", "collect segments",
			"Transcription produced no text; the recording may be silent", nil)
	}

	if err := t.writeArtifacts(item, transcript, speakers); err != nil {
		return err
	}

	elapsed := time.Since(started)
	t.recordTiming(ctx, item, len(chunks) > 0, elapsed)

	item.SetProgressComplete("Transcribed", "Transcript ready")
	logger.Info(
		"transcription completed",
		logging.Int("transcript_segments", len(transcript)),
		logging.Int("speaker_segments", len(speakers)),
		logging.Duration("elapsed", elapsed),
	)
	return nil
}

// runCombined drives one AssemblyAI-style job that yields both interval sets.
func (t *Transcriber) runCombined(ctx context.Context, prepared string, chunks []string) ([]conversation.TranscriptSegment, []conversation.SpeakerSegment, error) {
	if t.speakers == nil {
		return nil, nil, services.Wrap(
			services.ErrConfiguration, "transcription", "combined provider",
			"Diarization API key required; set diarization.api_key or ASSEMBLYAI_API_KEY", nil)
	}

	var (
		result diarize.Result
		err    error
	)
	if len(chunks) > 0 {
		result, err = t.speakers.ProcessChunks(ctx, chunks, t.cfg.Audio.ChunkMinutes)
	} else {
		result, err = t.speakers.Process(ctx, prepared)
	}
	if err != nil {
		return nil, nil, err
	}
	return cleanTranscript(result.Transcript), result.Speakers, nil
}

// runSplit transcribes through the speech provider and labels speakers
// through the diarization provider when one is configured.
func (t *Transcriber) runSplit(ctx context.Context, prepared string, chunks []string) ([]conversation.TranscriptSegment, []conversation.SpeakerSegment, error) {
	if t.speech == nil {
		return nil, nil, services.Wrap(
			services.ErrConfiguration, "transcription", "speech provider",
			"Transcription API key required; set transcription.api_key or OPENAI_API_KEY", nil)
	}

	var (
		transcript []conversation.TranscriptSegment
		err        error
	)
	if len(chunks) > 0 {
		transcript, err = t.speech.TranscribeChunks(ctx, chunks, t.cfg.Audio.ChunkMinutes)
	} else {
		transcript, err = t.speech.Transcribe(ctx, prepared)
	}
	if err != nil {
		return nil, nil, err
	}

	if !t.cfg.DiarizationEnabled() {
		return transcript, nil, nil
	}
	if t.speakers == nil {
		return nil, nil, services.Wrap(
			services.ErrConfiguration, "transcription", "speaker provider",
			"Diarization API key required; set diarization.api_key or ASSEMBLYAI_API_KEY", nil)
	}

	var result diarize.Result
	if len(chunks) > 0 {
		result, err = t.speakers.ProcessChunks(ctx, chunks, t.cfg.Audio.ChunkMinutes)
	} else {
		result, err = t.speakers.Process(ctx, prepared)
	}
	if err != nil {
		return nil, nil, err
	}
	return transcript, result.Speakers, nil
}

func (t *Transcriber) writeArtifacts(item *queue.Item, transcript []conversation.TranscriptSegment, speakers []conversation.SpeakerSegment) error {
	root := item.StagingRoot(t.cfg.Paths.StagingDir)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return services.Wrap(
			services.ErrConfiguration, "transcription", "create staging root",
			"Failed to create staging directory", err)
	}

	transcriptData, err := conversation.EncodeTranscript(transcript)
	if err != nil {
		return services.Wrap(services.ErrValidation, "transcription", "encode transcript", "", err)
	}
	transcriptPath := filepath.Join(root, transcriptFileName)
	if err := os.WriteFile(transcriptPath, transcriptData, 0o644); err != nil {
		return services.Wrap(
			services.ErrTransient, "transcription", "write transcript",
			"Failed to write transcript artifact", err)
	}

	if speakers == nil {
		speakers = []conversation.SpeakerSegment{}
	}
	diarizationData, err := conversation.EncodeDiarization(speakers)
	if err != nil {
		return services.Wrap(services.ErrValidation, "transcription", "encode diarization", "", err)
	}
	diarizationPath := filepath.Join(root, diarizationFileName)
	if err := os.WriteFile(diarizationPath, diarizationData, 0o644); err != nil {
		return services.Wrap(
			services.ErrTransient, "transcription", "write diarization",
			"Failed to write diarization artifact", err)
	}

	item.TranscriptFile = transcriptPath
	item.DiarizationFile = diarizationPath
	return nil
}

// recordTiming appends a timing sample for the estimator. Failures only log.
func (t *Transcriber) recordTiming(ctx context.Context, item *queue.Item, chunked bool, elapsed time.Duration) {
	if t.store == nil {
		return
	}
	rec := &queue.TimingRecord{
		Provider:          t.cfg.Transcription.Provider,
		Chunked:           chunked,
		Speedup:           item.Speedup,
		AudioSeconds:      item.AudioSeconds,
		ProcessingSeconds: elapsed.Seconds(),
	}
	if err := t.store.RecordTiming(ctx, rec); err != nil {
		logging.WithContext(ctx, t.logger).Warn("failed to record timing sample", logging.Error(err))
	}
}

// cleanTranscript normalizes combined-provider text and drops segments that
// clean to nothing.
func cleanTranscript(segments []conversation.TranscriptSegment) []conversation.TranscriptSegment {
	cleaned := make([]conversation.TranscriptSegment, 0, len(segments))
	for _, segment := range segments {
		text := textutil.CleanSegmentText(segment.Text)
		if text == "" {
			continue
		}
		segment.Text = text
		cleaned = append(cleaned, segment)
	}
	return cleaned
}

// HealthCheck verifies provider configuration for the transcription stage.
func (t *Transcriber) HealthCheck(ctx context.Context) stage.Health {
	const name = "transcription"
	if t.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	switch t.cfg.Transcription.Provider {
	case config.ProviderOpenAI:
		if t.speech == nil {
			return stage.Unhealthy(name, "transcription API key missing")
		}
		if t.cfg.DiarizationEnabled() && t.speakers == nil {
			return stage.Unhealthy(name, "diarization API key missing")
		}
	case config.ProviderAssemblyAI:
		if t.speakers == nil {
			return stage.Unhealthy(name, "diarization API key missing")
		}
	default:
		return stage.Unhealthy(name, fmt.Sprintf("unsupported provider %q", t.cfg.Transcription.Provider))
	}
	return stage.Healthy(name)
}
