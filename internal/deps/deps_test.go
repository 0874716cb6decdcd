package deps

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}

	if !results[0].Available {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available dependency: %s", results[0].Detail)
	}

	if results[1].Available {
		t.Fatalf("expected missing binary to be unavailable")
	}
	if results[1].Detail == "" {
		t.Fatalf("expected detail message for missing binary")
	}
	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}
}

func TestCheckBinariesUnconfiguredCommand(t *testing.T) {
	results := CheckBinaries([]Requirement{{Name: "Blank", Command: "   "}})
	if len(results) != 1 || results[0].Available {
		t.Fatalf("expected unavailable result, got %#v", results)
	}
	if results[0].Detail != "command not configured" {
		t.Fatalf("unexpected detail: %s", results[0].Detail)
	}
}

func TestRequiredCoversAudioTooling(t *testing.T) {
	commands := make(map[string]bool)
	for _, req := range Required() {
		commands[req.Command] = true
		if req.Optional {
			t.Fatalf("requirement %s should not be optional", req.Name)
		}
	}
	for _, want := range []string{"ffmpeg", "ffprobe"} {
		if !commands[want] {
			t.Fatalf("Required() missing %q", want)
		}
	}
}

func TestMissingRequired(t *testing.T) {
	statuses := []Status{
		{Name: "A", Available: true},
		{Name: "B", Available: false, Optional: true},
		{Name: "C", Available: false},
	}
	missing := MissingRequired(statuses)
	if len(missing) != 1 || missing[0].Name != "C" {
		t.Fatalf("MissingRequired() = %#v", missing)
	}
}

func TestResolveBinaryPaths(t *testing.T) {
	if got := ResolveFFmpegPath(""); got != "ffmpeg" {
		t.Fatalf("ResolveFFmpegPath(\"\") = %q", got)
	}
	if got := ResolveFFmpegPath(" /opt/ffmpeg/bin/ffmpeg "); got != "/opt/ffmpeg/bin/ffmpeg" {
		t.Fatalf("ResolveFFmpegPath(override) = %q", got)
	}
	if got := ResolveFFprobePath("  "); got != "ffprobe" {
		t.Fatalf("ResolveFFprobePath(blank) = %q", got)
	}
}
