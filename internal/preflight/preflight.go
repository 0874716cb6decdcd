package preflight

import (
	"context"

	"confab/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// Checks are only run when the corresponding feature is enabled.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	// Pipeline directories (always checked)
	results = append(results,
		CheckDirectoryAccess("Inbox directory", cfg.Paths.InboxDir),
		CheckDirectoryAccess("Staging directory", cfg.Paths.StagingDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	)

	// Transcription API (only the OpenAI-compatible provider has a
	// models endpoint to probe)
	if cfg.Transcription.Provider == config.ProviderOpenAI {
		results = append(results, CheckTranscription(ctx, cfg))
	}

	// Diarization API (also covers combined transcription via AssemblyAI)
	if usesDiarizationAPI(cfg) {
		results = append(results, CheckDiarization(ctx, cfg))
	}

	// Summary API (only when it resolves to a distinct endpoint from
	// transcription, otherwise that check already covers it)
	if cfg.Workflow.AutoSummarize && summaryUsesDistinctEndpoint(cfg) {
		results = append(results, CheckSummary(ctx, cfg))
	}

	return results
}

// usesDiarizationAPI returns true when any stage will call the
// speaker-labeling endpoint.
func usesDiarizationAPI(cfg *config.Config) bool {
	return cfg.Transcription.Provider == config.ProviderAssemblyAI ||
		cfg.Diarization.Provider == config.ProviderAssemblyAI
}

// summaryUsesDistinctEndpoint returns true when the summary config resolves
// to a different API key or base URL than transcription.
func summaryUsesDistinctEndpoint(cfg *config.Config) bool {
	if cfg.Transcription.Provider != config.ProviderOpenAI {
		return true
	}
	return cfg.SummaryKey() != cfg.TranscriptionKey() ||
		cfg.Summary.BaseURL != cfg.Transcription.BaseURL
}
