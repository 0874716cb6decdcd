package conversation_test

import (
	"testing"

	"confab/internal/conversation"
)

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00"},
		{5, "00:05"},
		{59.9, "00:59"},
		{60, "01:00"},
		{65.2, "01:05"},
		{754, "12:34"},
		{3600, "60:00"},
		{6005, "100:05"},
		{-3, "00:00"},
	}
	for _, tt := range tests {
		if got := conversation.FormatTimestamp(tt.seconds); got != tt.want {
			t.Errorf("FormatTimestamp(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestParseTimestamp(t *testing.T) {
	valid := []struct {
		value string
		want  float64
	}{
		{"00:00", 0},
		{"00:05", 5},
		{"01:05", 65},
		{"12:34", 754},
		{"100:05", 6005},
		{"5:09", 309},
	}
	for _, tt := range valid {
		got, err := conversation.ParseTimestamp(tt.value)
		if err != nil {
			t.Errorf("ParseTimestamp(%q) returned error: %v", tt.value, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseTimestamp(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}

	invalid := []string{"", "1005", "01:60", "-1:05", "01:-5", "ab:cd", "1:2:3"}
	for _, value := range invalid {
		if _, err := conversation.ParseTimestamp(value); err == nil {
			t.Errorf("ParseTimestamp(%q) succeeded, want error", value)
		}
	}
}

func TestTimestampRoundTrip(t *testing.T) {
	for _, seconds := range []float64{0, 7, 59, 60, 61, 599, 3600, 5999, 6005} {
		formatted := conversation.FormatTimestamp(seconds)
		parsed, err := conversation.ParseTimestamp(formatted)
		if err != nil {
			t.Fatalf("ParseTimestamp(%q): %v", formatted, err)
		}
		if parsed != seconds {
			t.Errorf("round trip %v -> %q -> %v", seconds, formatted, parsed)
		}
	}
}
