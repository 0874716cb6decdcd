package logging

import (
	"log/slog"
	"strings"
)

type infoField struct {
	label string
	value string
}

const infoAttrLimit = 8

// infoHighlightKeys lists attrs shown first, in this order, when present.
var infoHighlightKeys = []string{
	FieldAlert,
	FieldEventType,
	"title",
	"processing_status",
	FieldProgressStage,
	FieldProgressPercent,
	FieldProgressMessage,
	FieldProgressETA,
	"command",
	"error_message",
	FieldErrorCode,
	FieldErrorHint,
	FieldErrorDetailPath,
	"status",
	"provider",
	"diarization_provider",
	"model",
	"audio_duration",
	"speedup",
	"chunk_count",
	"transcript_segments",
	"speaker_turns",
	"utterance_count",
	"merged_rows",
	"unknown_count",
	"estimate_seconds",
	"confidence",
	"estimate_source",
	"sample_count",
	"stage_duration",
	"probe_duration",
	"transcribe_duration",
	"summary_duration",
	"upload_bytes",
	"prepared_bytes",
	"document_bytes",
	"notification_type",
	"reason",
}

// infoLabels maps attr keys to their console labels; keys absent here are
// titleized from their snake_case form.
var infoLabels = map[string]string{
	FieldAlert:             "Alert",
	FieldEventType:         "Event",
	FieldErrorCode:         "Error Code",
	FieldErrorHint:         "Hint",
	FieldErrorDetailPath:   "Error Detail",
	FieldItemID:            "Item",
	FieldStage:             "Stage",
	"title":                "Title",
	"processing_status":    "Status",
	"status":               "Status",
	FieldProgressStage:     "Progress Stage",
	FieldProgressMessage:   "Progress",
	FieldProgressETA:       "ETA",
	"provider":             "Provider",
	"diarization_provider": "Diarization",
	"model":                "Model",
	"audio_duration":       "Duration",
	"speedup":              "Speed-up",
	"chunk_count":          "Chunks",
	"transcript_segments":  "Segments",
	"speaker_turns":        "Speaker Turns",
	"utterance_count":      "Utterances",
	"merged_rows":          "Merged Rows",
	"unknown_count":        "Unattributed",
	"estimate_seconds":     "Estimate",
	"confidence":           "Confidence",
	"estimate_source":      "Source",
	"sample_count":         "Samples",
	"stage_duration":       "Duration",
	"probe_duration":       "Probe Time",
	"transcribe_duration":  "Transcribe Time",
	"summary_duration":     "Summary Time",
	"upload_bytes":         "Uploaded",
	"prepared_bytes":       "Audio Size",
	"document_bytes":       "Document",
	"notification_type":    "Notification",
	"reason":               "Reason",
}

// selectInfoFields formats the attrs worth showing at info level, highlight
// keys first, and counts the rest as hidden. limit=0 means unlimited;
// includeDebug admits keys normally reserved for debug output.
func selectInfoFields(attrs []kv, limit int, includeDebug bool) ([]infoField, int) {
	if len(attrs) == 0 {
		return nil, 0
	}
	if limit < 0 {
		limit = 0
	}

	ordered := make([]kv, 0, len(attrs))
	taken := make([]bool, len(attrs))
	for _, key := range infoHighlightKeys {
		for idx, attr := range attrs {
			if !taken[idx] && attr.key == key {
				taken[idx] = true
				ordered = append(ordered, attr)
				break
			}
		}
	}
	for idx, attr := range attrs {
		if !taken[idx] {
			ordered = append(ordered, attr)
		}
	}

	result := make([]infoField, 0, infoAttrLimit)
	hidden := 0
	for _, attr := range ordered {
		if skipInfoKey(attr.key) {
			continue
		}
		if !includeDebug && isDebugOnlyKey(attr.key) {
			hidden++
			continue
		}
		val := formatValueForKey(attr.key, attr.value, attrs)
		if !includeDebug && shouldHideInfoValue(attr.key, val) {
			hidden++
			continue
		}
		if limit > 0 && len(result) >= limit {
			hidden++
			continue
		}
		result = append(result, infoField{label: displayLabel(attr.key), value: val})
	}
	return result, hidden
}

// formatValueForKey picks a human rendering based on the key's naming
// convention: byte sizes, durations, percentages, yes/no booleans.
func formatValueForKey(key string, v slog.Value, attrs []kv) string {
	v = v.Resolve()

	switch {
	case isByteSizeKey(key) && v.Kind() == slog.KindInt64:
		return formatBytes(v.Int64())
	case isByteSizeKey(key) && v.Kind() == slog.KindUint64:
		return formatBytes(int64(v.Uint64()))
	case isDurationKey(key) && v.Kind() == slog.KindDuration:
		return formatDurationHuman(v.Duration())
	case isPercentKey(key) && v.Kind() == slog.KindFloat64:
		return formatPercent(v.Float64())
	case v.Kind() == slog.KindBool:
		if v.Bool() {
			return "yes"
		}
		return "no"
	}

	value := formatValue(v)
	if key == "error" || key == "error_message" {
		value = truncateErrorValue(value, attrValue(attrs, FieldErrorDetailPath))
	}
	return value
}

func isByteSizeKey(key string) bool {
	return key == "size" ||
		strings.HasSuffix(key, "_bytes") ||
		strings.HasSuffix(key, "_size")
}

func isDurationKey(key string) bool {
	switch key {
	case "elapsed", "duration", "backoff":
		return true
	}
	return strings.HasSuffix(key, "_duration") ||
		strings.HasSuffix(key, "_elapsed") ||
		strings.HasSuffix(key, "_latency")
}

func isPercentKey(key string) bool {
	return key == FieldProgressPercent || strings.HasSuffix(key, "_percent")
}

func truncateErrorValue(value, detailPath string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	const maxLen = 200
	if len(value) > maxLen {
		value = value[:maxLen] + "…"
	}
	if strings.TrimSpace(detailPath) != "" &&
		!strings.Contains(value, "error_detail_path") &&
		!strings.Contains(value, "detail_path") {
		value += " (see error_detail_path)"
	}
	return value
}

// skipInfoKey filters out attrs the header already carries.
func skipInfoKey(key string) bool {
	switch key {
	case "", FieldItemID, FieldStage, FieldWorker, FieldComponent:
		return true
	}
	return false
}

// isDebugOnlyKey hides plumbing detail (paths, correlation ids, transport
// counters) from info output; debug records still show everything.
func isDebugOnlyKey(key string) bool {
	if key == "" {
		return true
	}
	switch key {
	case FieldCorrelationID,
		"attempt",
		"poll_interval",
		"heartbeat_age",
		"chunk_index",
		"request_bytes",
		"response_bytes",
		"http_status",
		"duration_seconds",
		"segment_count":
		return true
	}
	if strings.Contains(key, "correlation") {
		return true
	}
	if strings.HasSuffix(key, "_id") && key != FieldItemID {
		return true
	}
	if strings.HasPrefix(key, "ffprobe.") {
		return true
	}
	return strings.Contains(key, "_path") ||
		strings.Contains(key, "_dir") ||
		strings.Contains(key, "_file")
}

func shouldHideInfoValue(key, value string) bool {
	switch key {
	case "error_message", "error", "command", "reason":
		return false
	}
	return len(value) > 120
}

func displayLabel(key string) string {
	if label, ok := infoLabels[key]; ok {
		return label
	}
	return titleizeKey(key)
}

func titleizeKey(key string) string {
	if key == "" {
		return ""
	}
	parts := strings.FieldsFunc(key, func(r rune) bool {
		return r == '_' || r == '-'
	})
	if len(parts) == 0 {
		return strings.ToUpper(key[:1]) + strings.ToLower(key[1:])
	}
	for i, part := range parts {
		parts[i] = capitalizeASCII(part)
	}
	return strings.Join(parts, " ")
}

func capitalizeASCII(value string) string {
	switch len(value) {
	case 0:
		return ""
	case 1:
		return strings.ToUpper(value)
	}
	lower := strings.ToLower(value)
	return strings.ToUpper(lower[:1]) + lower[1:]
}

// infoSummaryKey scopes the repeated-field cache: by item when known, else by
// title, else by component.
func infoSummaryKey(component, itemID string, attrs []kv) string {
	itemID = strings.TrimSpace(itemID)
	if itemID != "" {
		return itemID
	}
	if title := attrValue(attrs, "title"); title != "" {
		return "title:" + title
	}
	return component
}

func attrValue(attrs []kv, key string) string {
	for _, attr := range attrs {
		if attr.key == key {
			return attrString(attr.value)
		}
	}
	return ""
}
