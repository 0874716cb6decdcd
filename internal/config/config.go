package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Provider names accepted by the transcription and diarization sections.
const (
	ProviderOpenAI     = "openai"
	ProviderAssemblyAI = "assemblyai"
	ProviderNone       = "none"
)

// Paths contains directory and API bind configuration.
type Paths struct {
	InboxDir   string `toml:"inbox_dir"`
	StagingDir string `toml:"staging_dir"`
	LogDir     string `toml:"log_dir"`
	APIBind    string `toml:"api_bind"`
	APIToken   string `toml:"api_token"`
}

// Workflow contains daemon timing, worker, and pipeline behavior settings.
type Workflow struct {
	Workers            int  `toml:"workers"`
	QueuePollInterval  int  `toml:"queue_poll_interval"`
	ErrorRetryInterval int  `toml:"error_retry_interval"`
	HeartbeatInterval  int  `toml:"heartbeat_interval"`
	HeartbeatTimeout   int  `toml:"heartbeat_timeout"`
	InboxPollInterval  int  `toml:"inbox_poll_interval"`
	AutoSummarize      bool `toml:"auto_summarize"`
}

// Audio contains preprocessing settings: speed-up targets and chunking.
type Audio struct {
	TargetDurationMinutes int     `toml:"target_duration_minutes"`
	MaxSpeedup            float64 `toml:"max_speedup"`
	ChunkMinutes          int     `toml:"chunk_minutes"`
	ChunkThresholdMinutes int     `toml:"chunk_threshold_minutes"`
}

// Transcription selects and configures the speech-to-text provider.
type Transcription struct {
	Provider       string `toml:"provider"`
	Model          string `toml:"model"`
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Diarization selects and configures the speaker-labeling provider.
type Diarization struct {
	Provider            string `toml:"provider"`
	APIKey              string `toml:"api_key"`
	BaseURL             string `toml:"base_url"`
	PollIntervalSeconds int    `toml:"poll_interval_seconds"`
	TimeoutSeconds      int    `toml:"timeout_seconds"`
}

// Summary configures the document summarization model.
type Summary struct {
	Model             string `toml:"model"`
	APIKey            string `toml:"api_key"`
	BaseURL           string `toml:"base_url"`
	TimeoutSeconds    int    `toml:"timeout_seconds"`
	FormattingEnabled bool   `toml:"formatting_enabled"`
}

// Prompts locates the editable prompt store.
type Prompts struct {
	Dir string `toml:"dir"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic         string `toml:"ntfy_topic"`
	RequestTimeout    int    `toml:"request_timeout"`
	Queued            bool   `toml:"queued"`
	ConversationReady bool   `toml:"conversation_ready"`
	DocumentReady     bool   `toml:"document_ready"`
	Errors            bool   `toml:"errors"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format         string            `toml:"format"`
	Level          string            `toml:"level"`
	RetentionDays  int               `toml:"retention_days"`
	StageOverrides map[string]string `toml:"stage_overrides"`
}

// Config encapsulates all configuration values for Confab.
//
// Configuration sections by subsystem:
//   - Paths: inbox/staging/log directories and API bind address
//   - Workflow: worker pool size, polling intervals, heartbeats, auto-summarize
//   - Audio: speed-up target and chunking thresholds for preprocessing
//   - Transcription: speech-to-text provider selection and credentials
//   - Diarization: speaker-labeling provider selection and credentials
//   - Summary: summarization model and two-agent formatting toggle
//   - Prompts: prompt store directory
//   - Notifications: ntfy push notification settings
//   - Logging: log format, level, and retention
type Config struct {
	Paths         Paths         `toml:"paths"`
	Workflow      Workflow      `toml:"workflow"`
	Audio         Audio         `toml:"audio"`
	Transcription Transcription `toml:"transcription"`
	Diarization   Diarization   `toml:"diarization"`
	Summary       Summary       `toml:"summary"`
	Prompts       Prompts       `toml:"prompts"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/confab/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("confab.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.InboxDir, c.Paths.StagingDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable name used for audio preparation.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable name used for audio inspection.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

// TranscriptionKey returns the resolved transcription API key.
func (c *Config) TranscriptionKey() string {
	return strings.TrimSpace(c.Transcription.APIKey)
}

// DiarizationKey returns the resolved diarization API key.
func (c *Config) DiarizationKey() string {
	return strings.TrimSpace(c.Diarization.APIKey)
}

// SummaryKey returns the summarization API key, falling back to the
// transcription key when the summary section has none of its own.
func (c *Config) SummaryKey() string {
	if key := strings.TrimSpace(c.Summary.APIKey); key != "" {
		return key
	}
	if c.Transcription.Provider == ProviderOpenAI {
		return c.TranscriptionKey()
	}
	return ""
}

// DiarizationEnabled reports whether a diarization provider is configured.
func (c *Config) DiarizationEnabled() bool {
	return c.Diarization.Provider != ProviderNone
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
