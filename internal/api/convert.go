package api

import (
	"fmt"
	"slices"
	"sort"
	"time"

	"confab/internal/conversation"
	"confab/internal/deps"
	"confab/internal/logging"
	"confab/internal/prompts"
	"confab/internal/queue"
	"confab/internal/stage"
	"confab/internal/timing"
	"confab/internal/workflow"
)

// FromQueueItem converts a queue record to its API representation.
func FromQueueItem(item *queue.Item) QueueItem {
	if item == nil {
		return QueueItem{}
	}

	dto := QueueItem{
		ID:         item.ID,
		Title:      item.Title,
		SourcePath: item.SourcePath,
		Status:     string(item.Status),
		Progress: QueueProgress{
			Stage:   item.ProgressStage,
			Percent: item.ProgressPercent,
			Message: item.ProgressMessage,
		},
		ErrorMessage:     item.ErrorMessage,
		PreparedFile:     item.PreparedFile,
		TranscriptFile:   item.TranscriptFile,
		DiarizationFile:  item.DiarizationFile,
		ConversationFile: item.ConversationFile,
		DocumentFile:     item.DocumentFile,
		AudioSeconds:     item.AudioSeconds,
		Speedup:          item.Speedup,
		ChunkCount:       item.ChunkCount,
		NeedsReview:      item.NeedsReview,
		ReviewReason:     item.ReviewReason,
	}
	if !item.CreatedAt.IsZero() {
		dto.CreatedAt = item.CreatedAt.UTC().Format(dateTimeFormat)
	}
	if !item.UpdatedAt.IsZero() {
		dto.UpdatedAt = item.UpdatedAt.UTC().Format(dateTimeFormat)
	}
	return dto
}

// FromQueueItems converts a slice of queue records into API DTOs.
func FromQueueItems(items []*queue.Item) []QueueItem {
	if len(items) == 0 {
		return nil
	}
	out := make([]QueueItem, 0, len(items))
	for _, item := range items {
		out = append(out, FromQueueItem(item))
	}
	return out
}

// FromStatusSummary converts a workflow status summary to API payload.
func FromStatusSummary(summary workflow.StatusSummary) WorkflowStatus {
	wf := WorkflowStatus{
		Running:     summary.Running,
		Workers:     summary.Workers,
		QueueStats:  MergeQueueStats(summary.QueueStats),
		StageHealth: StageHealthSlice(summary.StageHealth),
	}
	if summary.LastError != "" {
		wf.LastError = summary.LastError
	}
	if summary.LastItem != nil {
		last := FromQueueItem(summary.LastItem)
		wf.LastItem = &last
	}
	return wf
}

// MergeQueueStats produces a string-keyed representation of queue stats.
func MergeQueueStats(stats map[queue.Status]int) map[string]int {
	out := make(map[string]int, len(stats))
	for status, count := range stats {
		out[string(status)] = count
	}
	return out
}

// StageHealthSlice converts a stage health map into a deterministic slice.
func StageHealthSlice(health map[string]stage.Health) []StageHealth {
	if len(health) == 0 {
		return nil
	}
	names := make([]string, 0, len(health))
	for name := range health {
		names = append(names, name)
	}
	slices.Sort(names)

	out := make([]StageHealth, 0, len(names))
	for _, name := range names {
		h := health[name]
		out = append(out, StageHealth{Name: name, Ready: h.Ready, Detail: h.Detail})
	}
	return out
}

// FromHealthSummary converts queue phase counts to API payload.
func FromHealthSummary(summary queue.HealthSummary) QueueHealthResponse {
	return QueueHealthResponse{
		Total:      summary.Total,
		Pending:    summary.Pending,
		Processing: summary.Processing,
		Failed:     summary.Failed,
		Review:     summary.Review,
		Completed:  summary.Completed,
	}
}

// FromDatabaseHealth converts queue database diagnostics to API payload.
func FromDatabaseHealth(health queue.DatabaseHealth) DatabaseHealthResponse {
	return DatabaseHealthResponse{
		DBPath:           health.DBPath,
		DatabaseExists:   health.DatabaseExists,
		DatabaseReadable: health.DatabaseReadable,
		SchemaVersion:    health.SchemaVersion,
		TableExists:      health.TableExists,
		ColumnsPresent:   health.ColumnsPresent,
		MissingColumns:   health.MissingColumns,
		IntegrityCheck:   health.IntegrityCheck,
		TotalItems:       health.TotalItems,
		Error:            health.Error,
	}
}

// FromUtterances converts aligned conversation rows to API payload.
func FromUtterances(rows []conversation.Utterance) []Utterance {
	if len(rows) == 0 {
		return nil
	}
	out := make([]Utterance, 0, len(rows))
	for _, row := range rows {
		out = append(out, Utterance{Start: row.Start, End: row.End, Speaker: row.Speaker, Text: row.Text})
	}
	return out
}

// ToUtterances converts API rows back into conversation form.
func ToUtterances(rows []Utterance) []conversation.Utterance {
	if len(rows) == 0 {
		return nil
	}
	out := make([]conversation.Utterance, 0, len(rows))
	for _, row := range rows {
		out = append(out, conversation.Utterance{Start: row.Start, End: row.End, Speaker: row.Speaker, Text: row.Text})
	}
	return out
}

// FromLogEvents converts stream hub records to transport form.
func FromLogEvents(events []logging.LogEvent) []LogEvent {
	if len(events) == 0 {
		return nil
	}
	out := make([]LogEvent, 0, len(events))
	for _, evt := range events {
		var details []DetailField
		if len(evt.Details) > 0 {
			details = make([]DetailField, 0, len(evt.Details))
			for _, detail := range evt.Details {
				details = append(details, DetailField{Label: detail.Label, Value: detail.Value})
			}
		}
		out = append(out, LogEvent{
			Sequence:      evt.Sequence,
			Timestamp:     evt.Timestamp,
			Level:         evt.Level,
			Message:       evt.Message,
			Component:     evt.Component,
			Stage:         evt.Stage,
			ItemID:        evt.ItemID,
			Worker:        evt.Worker,
			CorrelationID: evt.CorrelationID,
			Fields:        evt.Fields,
			Details:       details,
		})
	}
	return out
}

// FromDependencyStatuses converts dependency checks to API payload with a
// derived severity per entry.
func FromDependencyStatuses(checks []deps.Status) []DependencyStatus {
	if len(checks) == 0 {
		return nil
	}
	out := make([]DependencyStatus, 0, len(checks))
	for _, check := range checks {
		severity := "ok"
		if !check.Available {
			severity = "error"
			if check.Optional {
				severity = "warn"
			}
		}
		out = append(out, DependencyStatus{
			Name:        check.Name,
			Command:     check.Command,
			Description: check.Description,
			Optional:    check.Optional,
			Available:   check.Available,
			Detail:      check.Detail,
			Severity:    severity,
		})
	}
	return out
}

// BuildDependencySummary computes aggregate dependency readiness.
func BuildDependencySummary(statuses []DependencyStatus) DependencySummary {
	if len(statuses) == 0 {
		return DependencySummary{
			Severity: "info",
			Detail:   "No dependency checks configured",
		}
	}

	missingRequired := 0
	missingOptional := 0
	for _, dep := range statuses {
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
	available := len(statuses) - missingCount
	severity := "ok"
	if missingRequired > 0 {
		severity = "error"
	} else if missingOptional > 0 {
		severity = "warn"
	}
	detail := fmt.Sprintf("%d/%d available (missing: %d required, %d optional)", available, len(statuses), missingRequired, missingOptional)
	if missingCount == 0 {
		detail = fmt.Sprintf("%d/%d available", available, len(statuses))
	}

	return DependencySummary{
		Total:           len(statuses),
		Available:       available,
		MissingRequired: missingRequired,
		MissingOptional: missingOptional,
		Severity:        severity,
		Detail:          detail,
	}
}

// FromEstimate converts a timing prediction to API payload.
func FromEstimate(minutes float64, est timing.Estimate) EstimateResponse {
	return EstimateResponse{
		Minutes:    minutes,
		Seconds:    est.Seconds,
		Confidence: est.Confidence,
		Source:     est.Source,
	}
}

// FromPromptEntries converts prompt store entries to API payload.
func FromPromptEntries(entries []prompts.Entry) []PromptEntry {
	if len(entries) == 0 {
		return nil
	}
	out := make([]PromptEntry, 0, len(entries))
	for _, entry := range entries {
		out = append(out, PromptEntry{Key: entry.Key, Value: entry.Value})
	}
	return out
}

// FormatTime converts a time to RFC3339 or returns empty string.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}

// SortQueueItemsNewestFirst orders queue items by CreatedAt descending,
// breaking ties by ID descending.
func SortQueueItemsNewestFirst(items []QueueItem) []QueueItem {
	if len(items) == 0 {
		return nil
	}
	sorted := make([]QueueItem, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool {
		ti := ParseQueueTime(sorted[i].CreatedAt)
		tj := ParseQueueTime(sorted[j].CreatedAt)
		if ti.Equal(tj) {
			return sorted[i].ID > sorted[j].ID
		}
		return ti.After(tj)
	})
	return sorted
}

// ParseQueueTime parses API timestamps for display formatting.
func ParseQueueTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	return time.Time{}
}
