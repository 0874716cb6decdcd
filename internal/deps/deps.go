package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement defines an external dependency Confab relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Required returns the external binaries audio preprocessing needs.
func Required() []Requirement {
	return []Requirement{
		{Name: "FFmpeg", Command: "ffmpeg", Description: "Audio preparation, speed-up, and chunking"},
		{Name: "FFprobe", Command: "ffprobe", Description: "Recording duration and size probing"},
	}
}

// Check evaluates the standard requirement set.
func Check() []Status {
	return CheckBinaries(Required())
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Available = false
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Available = false
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// MissingRequired filters statuses down to unavailable non-optional entries.
func MissingRequired(statuses []Status) []Status {
	missing := make([]Status, 0)
	for _, status := range statuses {
		if !status.Available && !status.Optional {
			missing = append(missing, status)
		}
	}
	return missing
}

// ResolveFFmpegPath returns the ffmpeg binary to execute, defaulting to
// "ffmpeg" when no override is configured.
func ResolveFFmpegPath(configured string) string {
	if trimmed := strings.TrimSpace(configured); trimmed != "" {
		return trimmed
	}
	return "ffmpeg"
}

// ResolveFFprobePath returns the ffprobe binary to execute, defaulting to
// "ffprobe" when no override is configured.
func ResolveFFprobePath(configured string) string {
	if trimmed := strings.TrimSpace(configured); trimmed != "" {
		return trimmed
	}
	return "ffprobe"
}
