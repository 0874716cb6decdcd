package preflight

import (
	"fmt"
	"os"
	"strings"
	"time"

	"confab/internal/config"
	"confab/internal/media/audio"
)

// CheckTranscriptionFromConfig evaluates transcription readiness from config
// alone. Connectivity is probed separately when the daemon starts.
func CheckTranscriptionFromConfig(cfg *config.Config) Result {
	const name = "Transcription"

	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	switch cfg.Transcription.Provider {
	case config.ProviderOpenAI:
		if cfg.TranscriptionKey() == "" {
			return Result{Name: name, Detail: "Missing API key"}
		}
		return Result{Name: name, Passed: true, Detail: providerDetail(config.ProviderOpenAI, cfg.Transcription.Model)}
	case config.ProviderAssemblyAI:
		if cfg.DiarizationKey() == "" {
			return Result{Name: name, Detail: "Missing API key"}
		}
		return Result{Name: name, Passed: true, Detail: providerDetail(config.ProviderAssemblyAI, "")}
	default:
		return Result{Name: name, Detail: fmt.Sprintf("Unsupported provider %q", cfg.Transcription.Provider)}
	}
}

// CheckDiarizationFromConfig evaluates speaker-labeling readiness from config
// alone.
func CheckDiarizationFromConfig(cfg *config.Config) Result {
	const name = "Diarization"

	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	if !cfg.DiarizationEnabled() && cfg.Transcription.Provider != config.ProviderAssemblyAI {
		return Result{Name: name, Passed: true, Detail: "Disabled"}
	}
	if cfg.DiarizationKey() == "" {
		return Result{Name: name, Detail: "Missing API key"}
	}
	return Result{Name: name, Passed: true, Detail: providerDetail(cfg.Diarization.Provider, "")}
}

// CheckSummaryFromConfig evaluates summarization readiness from config alone.
func CheckSummaryFromConfig(cfg *config.Config) Result {
	const name = "Summary"

	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	if !cfg.Workflow.AutoSummarize {
		return Result{Name: name, Passed: true, Detail: "Manual (auto-summarize disabled)"}
	}
	if cfg.SummaryKey() == "" {
		return Result{Name: name, Detail: "Missing API key"}
	}
	return Result{Name: name, Passed: true, Detail: providerDetail("", cfg.Summary.Model)}
}

func providerDetail(provider, model string) string {
	switch {
	case provider != "" && model != "":
		return fmt.Sprintf("Configured (%s, %s)", provider, model)
	case provider != "":
		return fmt.Sprintf("Configured (%s)", provider)
	case model != "":
		return fmt.Sprintf("Configured (%s)", model)
	default:
		return "Configured"
	}
}

// InboxProbe reports the current inbox snapshot.
type InboxProbe struct {
	Dir    string
	Count  int
	Newest string
}

// ProbeInbox counts the recordings waiting in the inbox directory.
func ProbeInbox(dir string) InboxProbe {
	probe := InboxProbe{Dir: strings.TrimSpace(dir)}
	if probe.Dir == "" {
		return probe
	}
	entries, err := os.ReadDir(probe.Dir)
	if err != nil {
		return probe
	}

	var newest time.Time
	for _, entry := range entries {
		if entry.IsDir() || !audio.IsSupportedSource(entry.Name()) {
			continue
		}
		probe.Count++
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(newest) {
			newest = info.ModTime()
			probe.Newest = entry.Name()
		}
	}
	return probe
}

// Detail renders a display-friendly summary for status UIs.
func (p InboxProbe) Detail() string {
	switch {
	case p.Count == 0:
		return "No recordings waiting"
	case p.Count == 1:
		return fmt.Sprintf("1 recording waiting (%s)", p.Newest)
	default:
		return fmt.Sprintf("%d recordings waiting (newest: %s)", p.Count, p.Newest)
	}
}
