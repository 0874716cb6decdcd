package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeWorkflow()
	c.normalizeAudio()
	c.normalizeTranscription()
	c.normalizeDiarization()
	c.normalizeSummary()
	if err := c.normalizePrompts(); err != nil {
		return err
	}
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.InboxDir) == "" {
		c.Paths.InboxDir = defaultInboxDir
	}
	if c.Paths.InboxDir, err = expandPath(c.Paths.InboxDir); err != nil {
		return fmt.Errorf("paths.inbox_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StagingDir) == "" {
		c.Paths.StagingDir = defaultStagingDir
	}
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	return nil
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.Workers <= 0 {
		c.Workflow.Workers = defaultWorkers
	}
	if c.Workflow.QueuePollInterval <= 0 {
		c.Workflow.QueuePollInterval = defaultQueuePollInterval
	}
	if c.Workflow.ErrorRetryInterval <= 0 {
		c.Workflow.ErrorRetryInterval = defaultErrorRetryInterval
	}
	if c.Workflow.InboxPollInterval <= 0 {
		c.Workflow.InboxPollInterval = defaultInboxPollInterval
	}
	if c.Workflow.HeartbeatInterval <= 0 {
		c.Workflow.HeartbeatInterval = defaultHeartbeatInterval
	}
	if c.Workflow.HeartbeatTimeout <= 0 {
		c.Workflow.HeartbeatTimeout = defaultHeartbeatTimeout
	}
}

func (c *Config) normalizeAudio() {
	if c.Audio.TargetDurationMinutes <= 0 {
		c.Audio.TargetDurationMinutes = defaultTargetDurationMinutes
	}
	if c.Audio.MaxSpeedup <= 0 {
		c.Audio.MaxSpeedup = defaultMaxSpeedup
	}
	if c.Audio.ChunkMinutes <= 0 {
		c.Audio.ChunkMinutes = defaultChunkMinutes
	}
	if c.Audio.ChunkThresholdMinutes <= 0 {
		c.Audio.ChunkThresholdMinutes = defaultChunkThresholdMinutes
	}
}

func (c *Config) normalizeTranscription() {
	c.Transcription.Provider = strings.ToLower(strings.TrimSpace(c.Transcription.Provider))
	if c.Transcription.Provider == "" {
		c.Transcription.Provider = defaultTranscriptionProvider
	}
	c.Transcription.Model = strings.TrimSpace(c.Transcription.Model)
	if c.Transcription.Model == "" {
		c.Transcription.Model = defaultTranscriptionModel
	}
	c.Transcription.BaseURL = strings.TrimSpace(c.Transcription.BaseURL)
	if c.Transcription.TimeoutSeconds <= 0 {
		c.Transcription.TimeoutSeconds = defaultTranscriptionTimeout
	}
	c.Transcription.APIKey = strings.TrimSpace(c.Transcription.APIKey)
	if c.Transcription.APIKey == "" {
		switch c.Transcription.Provider {
		case ProviderAssemblyAI:
			c.Transcription.APIKey = strings.TrimSpace(os.Getenv("ASSEMBLYAI_API_KEY"))
		default:
			c.Transcription.APIKey = strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
		}
	}
}

func (c *Config) normalizeDiarization() {
	c.Diarization.Provider = strings.ToLower(strings.TrimSpace(c.Diarization.Provider))
	if c.Diarization.Provider == "" {
		c.Diarization.Provider = defaultDiarizationProvider
	}
	c.Diarization.BaseURL = strings.TrimSpace(c.Diarization.BaseURL)
	if c.Diarization.BaseURL == "" {
		c.Diarization.BaseURL = defaultDiarizationBaseURL
	}
	if c.Diarization.PollIntervalSeconds <= 0 {
		c.Diarization.PollIntervalSeconds = defaultDiarizationPollInterval
	}
	if c.Diarization.TimeoutSeconds <= 0 {
		c.Diarization.TimeoutSeconds = defaultDiarizationTimeout
	}
	c.Diarization.APIKey = strings.TrimSpace(c.Diarization.APIKey)
	if c.Diarization.APIKey == "" {
		c.Diarization.APIKey = strings.TrimSpace(os.Getenv("ASSEMBLYAI_API_KEY"))
	}
	if c.Diarization.APIKey == "" && c.Transcription.Provider == ProviderAssemblyAI {
		c.Diarization.APIKey = c.Transcription.APIKey
	}
}

func (c *Config) normalizeSummary() {
	c.Summary.Model = strings.TrimSpace(c.Summary.Model)
	if c.Summary.Model == "" {
		c.Summary.Model = defaultSummaryModel
	}
	c.Summary.BaseURL = strings.TrimSpace(c.Summary.BaseURL)
	if c.Summary.TimeoutSeconds <= 0 {
		c.Summary.TimeoutSeconds = defaultSummaryTimeout
	}
	c.Summary.APIKey = strings.TrimSpace(c.Summary.APIKey)
	if c.Summary.APIKey == "" {
		if value := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); value != "" {
			c.Summary.APIKey = value
		}
	}
}

func (c *Config) normalizePrompts() error {
	var err error
	if strings.TrimSpace(c.Prompts.Dir) == "" {
		c.Prompts.Dir = defaultPromptsDir
	}
	if c.Prompts.Dir, err = expandPath(c.Prompts.Dir); err != nil {
		return fmt.Errorf("prompts.dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
