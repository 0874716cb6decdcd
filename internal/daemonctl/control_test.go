package daemonctl

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"confab/internal/api"
	"confab/internal/config"
)

func TestDeriveLogDir(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = "/var/lib/confab/logs"

	cases := []struct {
		name        string
		lockPath    string
		queueDBPath string
		cfg         *config.Config
		want        string
	}{
		{name: "lock path wins", lockPath: "/run/confab/confabd.lock", queueDBPath: "/data/queue.db", cfg: &cfg, want: "/run/confab"},
		{name: "queue db fallback", queueDBPath: "/data/queue.db", cfg: &cfg, want: "/data"},
		{name: "config fallback", cfg: &cfg, want: "/var/lib/confab/logs"},
		{name: "nothing known", want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DeriveLogDir(tc.lockPath, tc.queueDBPath, tc.cfg); got != tc.want {
				t.Fatalf("DeriveLogDir = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestForceKillProcessRefusesSelf(t *testing.T) {
	dir := t.TempDir()
	pidPath := filepath.Join(dir, "confabd.pid")
	if err := os.WriteFile(pidPath, []byte(fmt.Sprintf("%d\n", os.Getpid())), 0o644); err != nil {
		t.Fatalf("write pid file: %v", err)
	}

	if _, err := ForceKillProcess(pidPath, "", 0); err == nil || !strings.Contains(err.Error(), "refusing to kill current process") {
		t.Fatalf("expected self-kill refusal, got %v", err)
	}
}

func TestForceKillProcessRequiresPID(t *testing.T) {
	pidPath := filepath.Join(t.TempDir(), "confabd.pid")
	if _, err := ForceKillProcess(pidPath, "", 0); err == nil || !strings.Contains(err.Error(), "unable to determine daemon pid") {
		t.Fatalf("expected missing pid error, got %v", err)
	}
}

func TestBuildDependencySummary(t *testing.T) {
	deps := []api.DependencyStatus{
		{Name: "FFmpeg", Available: true},
		{Name: "FFprobe", Available: false},
		{Name: "Extra", Available: false, Optional: true},
	}

	summary := BuildDependencySummary(deps)
	if summary.Severity != "error" {
		t.Fatalf("expected error severity, got %q", summary.Severity)
	}
	if summary.Available != 1 || summary.MissingRequired != 1 || summary.MissingOptional != 1 {
		t.Fatalf("unexpected counts: %+v", summary)
	}
	if !strings.Contains(summary.Detail, "1/3 available") {
		t.Fatalf("unexpected detail: %q", summary.Detail)
	}

	healthy := BuildDependencySummary([]api.DependencyStatus{{Name: "FFmpeg", Available: true}})
	if healthy.Severity != "ok" || healthy.Detail != "1/1 available" {
		t.Fatalf("unexpected healthy summary: %+v", healthy)
	}
}

func TestBuildSystemChecks(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.InboxDir = t.TempDir()
	cfg.Transcription.APIKey = "key"
	cfg.Diarization.APIKey = "key"
	cfg.Workflow.AutoSummarize = false
	cfg.Notifications.NtfyTopic = ""

	lines := BuildSystemChecks(&cfg, false, false)
	byLabel := make(map[string]api.StatusLine, len(lines))
	for _, line := range lines {
		byLabel[line.Label] = line
	}

	if got := byLabel["Confab"]; got.Severity != "warn" || !strings.Contains(got.Detail, "confab start") {
		t.Fatalf("unexpected daemon line: %+v", got)
	}
	if got := byLabel["Transcription"]; got.Severity != "ok" {
		t.Fatalf("unexpected transcription line: %+v", got)
	}
	if got := byLabel["Summarization"]; got.Severity != "info" {
		t.Fatalf("unexpected summarization line: %+v", got)
	}
	if got := byLabel["Notifications"]; got.Severity != "warn" {
		t.Fatalf("unexpected notifications line: %+v", got)
	}

	running := BuildSystemChecks(&cfg, true, true)
	byLabel = make(map[string]api.StatusLine, len(running))
	for _, line := range running {
		byLabel[line.Label] = line
	}
	if got := byLabel["Confab"]; got.Severity != "ok" || got.Detail != "Running" {
		t.Fatalf("unexpected running daemon line: %+v", got)
	}
	if got := byLabel["Workflow"]; got.Severity != "ok" {
		t.Fatalf("unexpected workflow line: %+v", got)
	}
}
