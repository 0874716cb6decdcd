package daemonctl

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"confab/internal/api"
	"confab/internal/config"
	"confab/internal/preflight"
	"confab/internal/queue"
)

// StatusSnapshot aggregates daemon-reported status with offline fallbacks and
// derived display checks.
type StatusSnapshot struct {
	api.DaemonStatus
	SystemChecks      []api.StatusLine
	DirectoryChecks   []api.StatusLine
	DependencySummary api.DependencySummary
}

// BuildStatusSnapshot collects daemon status over HTTP. When the daemon is
// down it fills queue stats from the local database and resolves dependency
// availability directly.
func BuildStatusSnapshot(ctx context.Context, cfg *config.Config) (*StatusSnapshot, error) {
	if cfg == nil {
		return nil, errors.New("configuration not available")
	}

	snapshot := &StatusSnapshot{}
	if status, err := probeStatus(ctx, cfg); err == nil {
		snapshot.DaemonStatus = *status
	}

	if !snapshot.Running {
		queryCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()

		store, openErr := queue.Open(cfg)
		if openErr == nil {
			stats, statsErr := store.Stats(queryCtx)
			_ = store.Close()
			if statsErr == nil {
				snapshot.Workflow.QueueStats = api.MergeQueueStats(stats)
			}
		}

		if snapshot.LogDir == "" {
			snapshot.LogDir = cfg.Paths.LogDir
		}
		if snapshot.InboxDir == "" {
			snapshot.InboxDir = cfg.Paths.InboxDir
		}
		if snapshot.QueueDBPath == "" {
			snapshot.QueueDBPath = filepath.Join(cfg.Paths.LogDir, "queue.db")
		}
	}

	if len(snapshot.Dependencies) == 0 {
		snapshot.Dependencies = ResolveDependencies(cfg)
	}

	snapshot.SystemChecks = BuildSystemChecks(cfg, snapshot.Running, snapshot.Workflow.Running)
	snapshot.DirectoryChecks = BuildDirectoryChecks(cfg)
	snapshot.DependencySummary = BuildDependencySummary(snapshot.Dependencies)
	return snapshot, nil
}

// ResolveDependencies returns current binary dependency availability for
// status output.
func ResolveDependencies(cfg *config.Config) []api.DependencyStatus {
	if cfg == nil {
		return nil
	}
	return api.FromDependencyStatuses(preflight.CheckSystemDeps(cfg))
}

// BuildSystemChecks resolves status lines that combine runtime state and
// config checks.
func BuildSystemChecks(cfg *config.Config, daemonRunning, workflowRunning bool) []api.StatusLine {
	lines := make([]api.StatusLine, 0, 6)
	if daemonRunning {
		lines = append(lines, api.StatusLine{Label: "Confab", Severity: "ok", Detail: "Running"})
		if workflowRunning {
			lines = append(lines, api.StatusLine{Label: "Workflow", Severity: "ok", Detail: "Processing active"})
		} else {
			lines = append(lines, api.StatusLine{Label: "Workflow", Severity: "warn", Detail: "Stopped"})
		}
	} else {
		lines = append(lines, api.StatusLine{Label: "Confab", Severity: "warn", Detail: "Not running (run `confab start`)"})
	}

	inbox := preflight.ProbeInbox(cfg.Paths.InboxDir)
	if inbox.Count == 0 {
		lines = append(lines, api.StatusLine{Label: "Inbox", Severity: "info", Detail: inbox.Detail()})
	} else {
		lines = append(lines, api.StatusLine{Label: "Inbox", Severity: "ok", Detail: inbox.Detail()})
	}

	transcription := preflight.CheckTranscriptionFromConfig(cfg)
	if transcription.Passed {
		lines = append(lines, api.StatusLine{Label: "Transcription", Severity: "ok", Detail: transcription.Detail})
	} else {
		lines = append(lines, api.StatusLine{Label: "Transcription", Severity: "warn", Detail: transcription.Detail})
	}

	diarization := preflight.CheckDiarizationFromConfig(cfg)
	switch {
	case diarization.Passed && strings.EqualFold(strings.TrimSpace(diarization.Detail), "Disabled"):
		lines = append(lines, api.StatusLine{Label: "Diarization", Severity: "info", Detail: diarization.Detail})
	case diarization.Passed:
		lines = append(lines, api.StatusLine{Label: "Diarization", Severity: "ok", Detail: diarization.Detail})
	default:
		lines = append(lines, api.StatusLine{Label: "Diarization", Severity: "warn", Detail: diarization.Detail})
	}

	summary := preflight.CheckSummaryFromConfig(cfg)
	switch {
	case summary.Passed && strings.HasPrefix(summary.Detail, "Manual"):
		lines = append(lines, api.StatusLine{Label: "Summarization", Severity: "info", Detail: summary.Detail})
	case summary.Passed:
		lines = append(lines, api.StatusLine{Label: "Summarization", Severity: "ok", Detail: summary.Detail})
	default:
		lines = append(lines, api.StatusLine{Label: "Summarization", Severity: "warn", Detail: summary.Detail})
	}

	if strings.TrimSpace(cfg.Notifications.NtfyTopic) != "" {
		lines = append(lines, api.StatusLine{Label: "Notifications", Severity: "ok", Detail: "Configured"})
	} else {
		lines = append(lines, api.StatusLine{Label: "Notifications", Severity: "warn", Detail: "Not configured"})
	}

	return lines
}

// BuildDirectoryChecks resolves pipeline directory readiness.
func BuildDirectoryChecks(cfg *config.Config) []api.StatusLine {
	lines := make([]api.StatusLine, 0, 3)
	for _, dir := range []struct {
		label string
		path  string
	}{
		{label: "Inbox", path: cfg.Paths.InboxDir},
		{label: "Staging", path: cfg.Paths.StagingDir},
		{label: "Logs", path: cfg.Paths.LogDir},
	} {
		result := preflight.CheckDirectoryAccess(dir.label, dir.path)
		severity := "error"
		if result.Passed {
			severity = "ok"
		}
		lines = append(lines, api.StatusLine{
			Label:    dir.label,
			Severity: severity,
			Detail:   result.Detail,
		})
	}
	return lines
}

// BuildDependencySummary computes aggregate dependency readiness.
func BuildDependencySummary(deps []api.DependencyStatus) api.DependencySummary {
	if len(deps) == 0 {
		return api.DependencySummary{
			Severity: "info",
			Detail:   "No dependency checks configured",
		}
	}

	missingRequired := 0
	missingOptional := 0
	for _, dep := range deps {
		if dep.Available {
			continue
		}
		if dep.Optional {
			missingOptional++
		} else {
			missingRequired++
		}
	}

	missingCount := missingRequired + missingOptional
	available := len(deps) - missingCount
	severity := "ok"
	if missingRequired > 0 {
		severity = "error"
	} else if missingOptional > 0 {
		severity = "warn"
	}
	detail := fmt.Sprintf("%d/%d available (missing: %d required, %d optional)", available, len(deps), missingRequired, missingOptional)
	if missingCount == 0 {
		detail = fmt.Sprintf("%d/%d available", available, len(deps))
	}

	return api.DependencySummary{
		Total:           len(deps),
		Available:       available,
		MissingRequired: missingRequired,
		MissingOptional: missingOptional,
		Severity:        severity,
		Detail:          detail,
	}
}
