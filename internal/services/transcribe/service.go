package transcribe

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"confab/internal/conversation"
	"confab/internal/services"
	"confab/internal/textutil"
)

// MaxUploadBytes is the per-file request limit the Whisper endpoint accepts.
const MaxUploadBytes = 25 * 1024 * 1024

const defaultTimeout = 10 * time.Minute

// Config captures the runtime settings for an OpenAI-compatible
// transcription endpoint.
type Config struct {
	APIKey         string
	Model          string
	BaseURL        string
	TimeoutSeconds int
}

// Service transcribes prepared audio files.
type Service struct {
	cfg    Config
	client *openai.Client
}

// NewService constructs a transcription service from the supplied settings.
func NewService(cfg Config) (*Service, error) {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.Model = strings.TrimSpace(cfg.Model)
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	if cfg.APIKey == "" {
		return nil, services.Wrap(
			services.ErrConfiguration, "transcribe", "new service",
			"Transcription API key required; set transcription.api_key or OPENAI_API_KEY", nil)
	}
	if cfg.Model == "" {
		cfg.Model = openai.Whisper1
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	clientConfig.HTTPClient = &http.Client{Timeout: timeout}

	return &Service{cfg: cfg, client: openai.NewClientWithConfig(clientConfig)}, nil
}

// Model returns the configured model name for logging.
func (s *Service) Model() string {
	return s.cfg.Model
}

// Transcribe converts one audio file into cleaned transcript segments.
// Segments whose cleaned text is empty are dropped; a response with no usable
// segments falls back to one segment covering the reported duration.
func (s *Service) Transcribe(ctx context.Context, path string) ([]conversation.TranscriptSegment, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, services.Wrap(
			services.ErrNotFound, "transcribe", "stat audio",
			"Prepared audio file missing", err)
	}
	if info.Size() > MaxUploadBytes {
		return nil, services.Wrap(
			services.ErrValidation, "transcribe", "check size",
			fmt.Sprintf("Audio file is %.1fMB but the API accepts at most 25MB; raise audio.max_speedup or lower audio.chunk_threshold_minutes",
				float64(info.Size())/(1024*1024)), nil)
	}

	resp, err := s.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    s.cfg.Model,
		FilePath: path,
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return nil, services.Wrap(
			services.ErrExternalTool, "transcribe", "create transcription",
			fmt.Sprintf("Transcription request for %s failed", filepath.Base(path)), err)
	}

	segments := make([]conversation.TranscriptSegment, 0, len(resp.Segments))
	for _, segment := range resp.Segments {
		text := textutil.CleanSegmentText(segment.Text)
		if text == "" {
			continue
		}
		segments = append(segments, conversation.TranscriptSegment{
			Start: segment.Start,
			End:   segment.End,
			Text:  text,
		})
	}
	if len(segments) == 0 {
		if text := textutil.CleanSegmentText(resp.Text); text != "" {
			segments = append(segments, conversation.TranscriptSegment{
				Start: 0,
				End:   resp.Duration,
				Text:  text,
			})
		}
	}
	return segments, nil
}

// TranscribeChunks transcribes each chunk in order and shifts its segment
// times by the chunk's position. Chunks that produce no segments are skipped.
func (s *Service) TranscribeChunks(ctx context.Context, paths []string, chunkMinutes int) ([]conversation.TranscriptSegment, error) {
	if chunkMinutes <= 0 {
		return nil, services.Wrap(
			services.ErrValidation, "transcribe", "chunk length",
			fmt.Sprintf("Invalid chunk length %d", chunkMinutes), nil)
	}

	merged := make([]conversation.TranscriptSegment, 0)
	for i, path := range paths {
		segments, err := s.Transcribe(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("chunk %d/%d: %w", i+1, len(paths), err)
		}
		offset := float64(i * chunkMinutes * 60)
		for _, segment := range segments {
			segment.Start += offset
			segment.End += offset
			merged = append(merged, segment)
		}
	}
	return merged, nil
}
