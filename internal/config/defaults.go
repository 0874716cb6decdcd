package config

const (
	defaultInboxDir   = "~/.local/share/confab/inbox"
	defaultStagingDir = "~/.local/share/confab/staging"
	defaultLogDir     = "~/.local/share/confab/logs"
	defaultPromptsDir = "~/.config/confab/prompts"
	defaultAPIBind    = "127.0.0.1:7610"

	defaultWorkers            = 2
	defaultQueuePollInterval  = 5
	defaultErrorRetryInterval = 10
	defaultHeartbeatInterval  = 15
	defaultHeartbeatTimeout   = 120
	defaultInboxPollInterval  = 10

	defaultTargetDurationMinutes = 30
	defaultMaxSpeedup            = 3.0
	defaultChunkMinutes          = 10
	defaultChunkThresholdMinutes = 15

	defaultTranscriptionProvider = ProviderOpenAI
	defaultTranscriptionModel    = "whisper-1"
	defaultTranscriptionTimeout  = 600

	defaultDiarizationProvider     = ProviderAssemblyAI
	defaultDiarizationBaseURL      = "https://api.assemblyai.com"
	defaultDiarizationPollInterval = 5
	defaultDiarizationTimeout      = 1800

	defaultSummaryModel   = "gpt-4o"
	defaultSummaryTimeout = 300

	defaultNotifyRequestTimeout = 10

	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogRetentionDays = 60
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			InboxDir:   defaultInboxDir,
			StagingDir: defaultStagingDir,
			LogDir:     defaultLogDir,
			APIBind:    defaultAPIBind,
		},
		Workflow: Workflow{
			Workers:            defaultWorkers,
			QueuePollInterval:  defaultQueuePollInterval,
			ErrorRetryInterval: defaultErrorRetryInterval,
			HeartbeatInterval:  defaultHeartbeatInterval,
			HeartbeatTimeout:   defaultHeartbeatTimeout,
			InboxPollInterval:  defaultInboxPollInterval,
			AutoSummarize:      true,
		},
		Audio: Audio{
			TargetDurationMinutes: defaultTargetDurationMinutes,
			MaxSpeedup:            defaultMaxSpeedup,
			ChunkMinutes:          defaultChunkMinutes,
			ChunkThresholdMinutes: defaultChunkThresholdMinutes,
		},
		Transcription: Transcription{
			Provider:       defaultTranscriptionProvider,
			Model:          defaultTranscriptionModel,
			TimeoutSeconds: defaultTranscriptionTimeout,
		},
		Diarization: Diarization{
			Provider:            defaultDiarizationProvider,
			BaseURL:             defaultDiarizationBaseURL,
			PollIntervalSeconds: defaultDiarizationPollInterval,
			TimeoutSeconds:      defaultDiarizationTimeout,
		},
		Summary: Summary{
			Model:             defaultSummaryModel,
			TimeoutSeconds:    defaultSummaryTimeout,
			FormattingEnabled: true,
		},
		Prompts: Prompts{
			Dir: defaultPromptsDir,
		},
		Notifications: Notifications{
			RequestTimeout:    defaultNotifyRequestTimeout,
			Queued:            true,
			ConversationReady: true,
			DocumentReady:     true,
			Errors:            true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
