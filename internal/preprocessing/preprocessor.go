package preprocessing

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"log/slog"

	"confab/internal/config"
	"confab/internal/logging"
	"confab/internal/media/audio"
	"confab/internal/queue"
	"confab/internal/services"
	"confab/internal/stage"
)

const preparedFileName = "prepared.m4a"

// Preprocessor converts inbox recordings into mono 16kHz audio sized for
// the transcription providers, speeding up and chunking long meetings.
type Preprocessor struct {
	store  *queue.Store
	cfg    *config.Config
	logger *slog.Logger
}

// New constructs the preprocessing handler.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Preprocessor {
	return &Preprocessor{
		store:  store,
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "preprocessing"),
	}
}

func (p *Preprocessor) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, p.logger)
	item.InitProgress("Preparing", "Starting audio preparation")
	logger.Info(
		"starting audio preparation",
		logging.String("source_path", strings.TrimSpace(item.SourcePath)),
	)
	return nil
}

func (p *Preprocessor) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, p.logger)

	source := strings.TrimSpace(item.SourcePath)
	if source == "" {
		return services.Wrap(
			services.ErrValidation, "preprocessing", "locate recording",
			"Recording has no source path; re-add the file", nil)
	}
	if _, err := os.Stat(source); err != nil {
		return services.Wrap(
			services.ErrValidation, "preprocessing", "locate recording",
			"Recording file missing from inbox; re-add it", err)
	}

	info, err := probeAudio(ctx, p.cfg.FFprobeBinary(), source)
	if err != nil {
		if errors.Is(err, audio.ErrNoAudioStream) {
			return services.Wrap(
				services.ErrValidation, "preprocessing", "probe recording",
				"File has no audio stream; only audio recordings can be processed", err)
		}
		return services.Wrap(
			services.ErrExternalTool, "preprocessing", "probe recording",
			"ffprobe could not inspect the recording; confirm the file is valid audio", err)
	}

	speedup := audio.OptimalSpeedup(
		info.DurationSeconds/60,
		float64(p.cfg.Audio.TargetDurationMinutes),
		p.cfg.Audio.MaxSpeedup,
	)
	logger.Info(
		"recording probed",
		logging.Float64("duration_seconds", info.DurationSeconds),
		logging.Int64("size_bytes", info.SizeBytes),
		logging.Float64("speedup", speedup),
	)
	p.persistProgress(ctx, item, "Preparing", "Converting audio", 20)

	root := item.StagingRoot(p.cfg.Paths.StagingDir)
	if root == "" {
		return services.Wrap(
			services.ErrConfiguration, "preprocessing", "resolve staging root",
			"Staging directory not configured; set paths.staging_dir", nil)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return services.Wrap(
			services.ErrConfiguration, "preprocessing", "create staging root",
			"Failed to create staging directory; set paths.staging_dir to a writable location", err)
	}

	prepared := filepath.Join(root, preparedFileName)
	if err := prepareAudio(ctx, p.cfg.FFmpegBinary(), source, prepared, speedup); err != nil {
		return services.Wrap(
			services.ErrExternalTool, "preprocessing", "prepare audio",
			"ffmpeg conversion failed; check the recording and the ffmpeg installation", err)
	}

	preparedInfo, err := probeAudio(ctx, p.cfg.FFprobeBinary(), prepared)
	if err != nil {
		return services.Wrap(
			services.ErrExternalTool, "preprocessing", "probe prepared audio",
			"ffprobe could not inspect the prepared audio", err)
	}

	item.PreparedFile = prepared
	item.Speedup = speedup
	item.AudioSeconds = preparedInfo.DurationSeconds
	if err := item.SetChunkPaths(nil); err != nil {
		return services.Wrap(services.ErrValidation, "preprocessing", "reset chunks", "", err)
	}

	if p.needsChunking(preparedInfo.DurationSeconds) {
		p.persistProgress(ctx, item, "Preparing", "Splitting into chunks", 70)
		chunks, err := splitAudio(ctx, p.cfg.FFmpegBinary(), prepared, filepath.Join(root, "chunks"), p.cfg.Audio.ChunkMinutes)
		if err != nil {
			return services.Wrap(
				services.ErrExternalTool, "preprocessing", "split audio",
				"ffmpeg chunking failed; check audio.chunk_minutes", err)
		}
		if err := item.SetChunkPaths(chunks); err != nil {
			return services.Wrap(
				services.ErrValidation, "preprocessing", "record chunks",
				"Failed to record chunk paths", err)
		}
		logger.Info("prepared audio chunked", logging.Int("chunks", len(chunks)))
	}

	item.SetProgressComplete("Prepared", "Audio prepared")
	logger.Info(
		"audio preparation completed",
		logging.String("prepared_file", prepared),
		logging.Float64("prepared_seconds", preparedInfo.DurationSeconds),
		logging.Float64("speedup", speedup),
		logging.Int("chunks", item.ChunkCount),
	)
	return nil
}

// HealthCheck verifies the audio tooling and staging directory.
func (p *Preprocessor) HealthCheck(ctx context.Context) stage.Health {
	const name = "preprocessing"
	if p.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if strings.TrimSpace(p.cfg.Paths.StagingDir) == "" {
		return stage.Unhealthy(name, "staging directory not configured")
	}
	for _, binary := range []string{p.cfg.FFmpegBinary(), p.cfg.FFprobeBinary()} {
		if _, err := exec.LookPath(binary); err != nil {
			return stage.Unhealthy(name, fmt.Sprintf("binary %q not found", binary))
		}
	}
	return stage.Healthy(name)
}

// needsChunking reports whether the prepared duration exceeds the chunk
// threshold.
func (p *Preprocessor) needsChunking(preparedSeconds float64) bool {
	threshold := p.cfg.Audio.ChunkThresholdMinutes
	if threshold <= 0 || p.cfg.Audio.ChunkMinutes <= 0 {
		return false
	}
	return preparedSeconds > float64(threshold*60)
}

func (p *Preprocessor) persistProgress(ctx context.Context, item *queue.Item, stageName, message string, percent float64) {
	item.SetProgress(stageName, message, percent)
	if p.store == nil {
		return
	}
	if err := p.store.UpdateProgress(ctx, item); err != nil {
		logging.WithContext(ctx, p.logger).Warn("failed to persist progress", logging.Error(err))
	}
}
