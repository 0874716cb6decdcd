package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/sys/unix"

	"confab/internal/config"
	"confab/internal/deps"
	"confab/internal/services/diarize"
)

// CheckTranscription verifies the speech-to-text API is reachable and the
// key is valid.
func CheckTranscription(ctx context.Context, cfg *config.Config) Result {
	return checkOpenAICompatible(ctx, "Transcription API", cfg.TranscriptionKey(), cfg.Transcription.BaseURL)
}

// CheckSummary verifies the summarization API is reachable and the key is
// valid.
func CheckSummary(ctx context.Context, cfg *config.Config) Result {
	return checkOpenAICompatible(ctx, "Summary API", cfg.SummaryKey(), cfg.Summary.BaseURL)
}

// CheckDiarization verifies the speaker-labeling API accepts the configured
// key. It uses a 30-second timeout and a single attempt (no retries).
func CheckDiarization(ctx context.Context, cfg *config.Config) Result {
	const name = "Diarization API"

	if cfg.DiarizationKey() == "" {
		return Result{Name: name, Detail: "API key missing"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client, err := diarize.NewClient(diarize.Config{
		APIKey:  cfg.DiarizationKey(),
		BaseURL: cfg.Diarization.BaseURL,
	})
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	if err := client.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeAPIError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "API reachable"}
}

// checkOpenAICompatible probes an OpenAI-compatible endpoint by listing
// models, which validates both reachability and the API key.
func checkOpenAICompatible(ctx context.Context, name, apiKey, baseURL string) Result {
	if strings.TrimSpace(apiKey) == "" {
		return Result{Name: name, Detail: "API key missing"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	clientCfg := openai.DefaultConfig(apiKey)
	if base := strings.TrimSpace(baseURL); base != "" {
		clientCfg.BaseURL = base
	}
	clientCfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	client := openai.NewClientWithConfig(clientCfg)

	if _, err := client.ListModels(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeAPIError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "API reachable"}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSystemDeps evaluates all system-level dependencies for the given
// config. Both the daemon and the CLI status command use this to avoid
// duplicating the requirements list. API checks are not included here
// because only the CLI status path uses them.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "FFmpeg",
			Command:     deps.ResolveFFmpegPath(cfg.FFmpegBinary()),
			Description: "Required for audio preparation, speed-up, and chunking",
		},
		{
			Name:        "FFprobe",
			Command:     deps.ResolveFFprobePath(cfg.FFprobeBinary()),
			Description: "Required for recording inspection",
		},
	}
	return deps.CheckBinaries(requirements)
}

// summarizeAPIError produces a human-readable summary for API health check failures.
func summarizeAPIError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (API unreachable)"
	}
	return err.Error()
}
