package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func newTestConsoleLogger(buf *bytes.Buffer, level slog.Level) *slog.Logger {
	lvl := new(slog.LevelVar)
	lvl.Set(level)
	return slog.New(newPrettyHandler(buf, lvl, false))
}

func TestPrettyHandlerHeader(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestConsoleLogger(&buf, slog.LevelInfo)

	logger.With(
		slog.String(FieldComponent, "workflow"),
		slog.String(FieldWorker, "worker-1"),
		slog.Int64(FieldItemID, 7),
		slog.String(FieldStage, "transcribing"),
	).Info("stage started")

	line := buf.String()
	if !strings.Contains(line, " INFO [workflow] ") {
		t.Errorf("header missing level/component: %q", line)
	}
	if !strings.Contains(line, "Worker-1 · Item #7 (transcribing)") {
		t.Errorf("header missing subject: %q", line)
	}
	if !strings.Contains(line, "– stage started") {
		t.Errorf("header missing message: %q", line)
	}
}

func TestPrettyHandlerInfoBullets(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestConsoleLogger(&buf, slog.LevelInfo)

	logger.Info("transcription complete",
		slog.Int64(FieldItemID, 3),
		slog.String("provider", "openai"),
		slog.Int("transcript_segments", 42),
	)

	out := buf.String()
	if !strings.Contains(out, "    - Provider: openai") {
		t.Errorf("missing provider bullet: %q", out)
	}
	if !strings.Contains(out, "    - Segments: 42") {
		t.Errorf("missing segments bullet: %q", out)
	}
	if strings.Contains(out, "item_id") {
		t.Errorf("item_id should render in the subject, not as a bullet: %q", out)
	}
}

func TestPrettyHandlerSuppressesRepeatedInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestConsoleLogger(&buf, slog.LevelInfo)
	itemLogger := logger.With(slog.Int64(FieldItemID, 9))

	itemLogger.Info("progress", slog.String("provider", "openai"))
	first := buf.String()
	buf.Reset()
	itemLogger.Info("progress again", slog.String("provider", "openai"))
	second := buf.String()

	if !strings.Contains(first, "Provider: openai") {
		t.Fatalf("first line should carry the field: %q", first)
	}
	if strings.Contains(second, "Provider: openai") {
		t.Fatalf("repeated identical field should be suppressed: %q", second)
	}
}

func TestPrettyHandlerDebugDumpsAllAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestConsoleLogger(&buf, slog.LevelDebug)

	logger.Debug("poll tick",
		slog.String("source_path", "/tmp/inbox/a.m4a"),
		slog.Int("attempt", 2),
	)

	out := buf.String()
	if !strings.Contains(out, "    source_path: /tmp/inbox/a.m4a") {
		t.Errorf("debug output missing raw attr: %q", out)
	}
	if !strings.Contains(out, "    attempt: 2") {
		t.Errorf("debug output missing raw attr: %q", out)
	}
}

func TestPrettyHandlerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestConsoleLogger(&buf, slog.LevelWarn)

	logger.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("info line emitted below level: %q", buf.String())
	}
	logger.Warn("visible")
	if !strings.Contains(buf.String(), "WARN") {
		t.Fatalf("warn line missing: %q", buf.String())
	}
}

func TestFormatSubject(t *testing.T) {
	tests := []struct {
		worker, itemID, stage string
		want                  string
	}{
		{"", "", "", ""},
		{"worker-1", "", "", "Worker-1"},
		{"", "4", "", "Item #4"},
		{"", "", "aligning", "aligning"},
		{"worker-2", "11", "summarizing", "Worker-2 · Item #11 (summarizing)"},
	}
	for _, tt := range tests {
		if got := FormatSubject(tt.worker, tt.itemID, tt.stage); got != tt.want {
			t.Errorf("FormatSubject(%q,%q,%q) = %q, want %q", tt.worker, tt.itemID, tt.stage, got, tt.want)
		}
	}
}
