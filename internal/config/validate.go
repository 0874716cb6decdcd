package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateDiarization(); err != nil {
		return err
	}
	if err := c.validateSummary(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateAudio(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTranscription() error {
	switch c.Transcription.Provider {
	case ProviderOpenAI, ProviderAssemblyAI:
	default:
		return fmt.Errorf("transcription.provider must be %q or %q", ProviderOpenAI, ProviderAssemblyAI)
	}
	if c.Transcription.APIKey == "" {
		envVar := "OPENAI_API_KEY"
		if c.Transcription.Provider == ProviderAssemblyAI {
			envVar = "ASSEMBLYAI_API_KEY"
		}
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/confab/config.toml"
		}
		return fmt.Errorf("transcription.api_key is required. Set %s env var or edit %s (create with 'confab config init')", envVar, defaultPath)
	}
	if c.Transcription.Model == "" {
		return errors.New("transcription.model must be set")
	}
	if c.Transcription.TimeoutSeconds <= 0 {
		return errors.New("transcription.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateDiarization() error {
	switch c.Diarization.Provider {
	case ProviderAssemblyAI:
	case ProviderNone:
		return nil
	default:
		return fmt.Errorf("diarization.provider must be %q or %q", ProviderAssemblyAI, ProviderNone)
	}
	if c.Diarization.APIKey == "" {
		return errors.New("diarization.api_key must be set when diarization.provider is \"assemblyai\" (or set ASSEMBLYAI_API_KEY)")
	}
	if c.Diarization.PollIntervalSeconds <= 0 {
		return errors.New("diarization.poll_interval_seconds must be positive")
	}
	if c.Diarization.TimeoutSeconds <= 0 {
		return errors.New("diarization.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateSummary() error {
	if c.Workflow.AutoSummarize && c.SummaryKey() == "" {
		return errors.New("summary.api_key must be set when workflow.auto_summarize is true (or set OPENAI_API_KEY)")
	}
	if c.Summary.Model == "" {
		return errors.New("summary.model must be set")
	}
	if c.Summary.TimeoutSeconds <= 0 {
		return errors.New("summary.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if err := ensurePositiveMap(map[string]int{
		"workflow.workers":              c.Workflow.Workers,
		"workflow.queue_poll_interval":  c.Workflow.QueuePollInterval,
		"workflow.error_retry_interval": c.Workflow.ErrorRetryInterval,
		"workflow.inbox_poll_interval":  c.Workflow.InboxPollInterval,
	}); err != nil {
		return err
	}
	if c.Workflow.HeartbeatInterval <= 0 {
		return errors.New("workflow.heartbeat_interval must be positive")
	}
	if c.Workflow.HeartbeatTimeout <= 0 {
		return errors.New("workflow.heartbeat_timeout must be positive")
	}
	if c.Workflow.HeartbeatTimeout <= c.Workflow.HeartbeatInterval {
		return errors.New("workflow.heartbeat_timeout must be greater than workflow.heartbeat_interval")
	}
	return nil
}

func (c *Config) validateAudio() error {
	if err := ensurePositiveMap(map[string]int{
		"audio.target_duration_minutes": c.Audio.TargetDurationMinutes,
		"audio.chunk_minutes":           c.Audio.ChunkMinutes,
		"audio.chunk_threshold_minutes": c.Audio.ChunkThresholdMinutes,
	}); err != nil {
		return err
	}
	if c.Audio.MaxSpeedup < 1.0 || c.Audio.MaxSpeedup > 3.0 {
		return errors.New("audio.max_speedup must be between 1.0 and 3.0")
	}
	if c.Audio.ChunkThresholdMinutes < c.Audio.ChunkMinutes {
		return errors.New("audio.chunk_threshold_minutes must be at least audio.chunk_minutes")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
