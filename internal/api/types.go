package api

import "time"

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// QueueItem describes a queue entry in a transport-friendly format.
type QueueItem struct {
	ID               int64         `json:"id"`
	Title            string        `json:"title"`
	SourcePath       string        `json:"sourcePath"`
	Status           string        `json:"status"`
	Progress         QueueProgress `json:"progress"`
	ErrorMessage     string        `json:"errorMessage"`
	CreatedAt        string        `json:"createdAt,omitempty"`
	UpdatedAt        string        `json:"updatedAt,omitempty"`
	PreparedFile     string        `json:"preparedFile,omitempty"`
	TranscriptFile   string        `json:"transcriptFile,omitempty"`
	DiarizationFile  string        `json:"diarizationFile,omitempty"`
	ConversationFile string        `json:"conversationFile,omitempty"`
	DocumentFile     string        `json:"documentFile,omitempty"`
	AudioSeconds     float64       `json:"audioSeconds,omitempty"`
	Speedup          float64       `json:"speedup,omitempty"`
	ChunkCount       int           `json:"chunkCount,omitempty"`
	NeedsReview      bool          `json:"needsReview"`
	ReviewReason     string        `json:"reviewReason,omitempty"`
}

// QueueProgress captures stage progress information for a queue entry.
type QueueProgress struct {
	Stage   string  `json:"stage"`
	Percent float64 `json:"percent"`
	Message string  `json:"message"`
}

// WorkflowStatus summarizes workflow execution state.
type WorkflowStatus struct {
	Running     bool           `json:"running"`
	Workers     int            `json:"workers"`
	QueueStats  map[string]int `json:"queueStats"`
	LastError   string         `json:"lastError,omitempty"`
	LastItem    *QueueItem     `json:"lastItem,omitempty"`
	StageHealth []StageHealth  `json:"stageHealth"`
}

// StageHealth mirrors readiness reporting for workflow stages.
type StageHealth struct {
	Name   string `json:"name"`
	Ready  bool   `json:"ready"`
	Detail string `json:"detail,omitempty"`
}

// DependencyStatus captures availability of an external dependency.
type DependencyStatus struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
	Severity    string `json:"severity,omitempty"`
}

// DependencySummary aggregates dependency readiness for status output.
type DependencySummary struct {
	Total           int    `json:"total"`
	Available       int    `json:"available"`
	MissingRequired int    `json:"missingRequired"`
	MissingOptional int    `json:"missingOptional"`
	Severity        string `json:"severity"`
	Detail          string `json:"detail"`
}

// StatusLine is a labelled severity row for human-facing status summaries.
type StatusLine struct {
	Label    string `json:"label"`
	Severity string `json:"severity"`
	Detail   string `json:"detail"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running      bool               `json:"running"`
	PID          int                `json:"pid"`
	QueueDBPath  string             `json:"queueDbPath"`
	LockFilePath string             `json:"lockFilePath"`
	InboxDir     string             `json:"inboxDir,omitempty"`
	LogDir       string             `json:"logDir,omitempty"`
	Workflow     WorkflowStatus     `json:"workflow"`
	Dependencies []DependencyStatus `json:"dependencies"`
}

// QueueStatsResponse provides a normalized queue stats payload.
type QueueStatsResponse struct {
	Counts map[string]int `json:"counts"`
}

// QueueListResponse wraps a collection of queue items for API responses.
type QueueListResponse struct {
	Items []QueueItem `json:"items"`
}

// QueueItemResponse wraps a single queue item.
type QueueItemResponse struct {
	Item QueueItem `json:"item"`
}

// QueueHealthResponse reports queue counts grouped by pipeline phase.
type QueueHealthResponse struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	Processing int `json:"processing"`
	Failed     int `json:"failed"`
	Review     int `json:"review"`
	Completed  int `json:"completed"`
}

// QueueClearResponse reports how many items a clear request deleted.
type QueueClearResponse struct {
	Scope        string `json:"scope"`
	RemovedCount int64  `json:"removedCount"`
}

// DatabaseHealthResponse reports queue database diagnostics.
type DatabaseHealthResponse struct {
	DBPath           string   `json:"dbPath"`
	DatabaseExists   bool     `json:"databaseExists"`
	DatabaseReadable bool     `json:"databaseReadable"`
	SchemaVersion    string   `json:"schemaVersion"`
	TableExists      bool     `json:"tableExists"`
	ColumnsPresent   []string `json:"columnsPresent,omitempty"`
	MissingColumns   []string `json:"missingColumns,omitempty"`
	IntegrityCheck   bool     `json:"integrityCheck"`
	TotalItems       int      `json:"totalItems"`
	Error            string   `json:"error,omitempty"`
}

// QueueRetryResponse reports how many items a bulk retry re-queued.
type QueueRetryResponse struct {
	UpdatedCount int64 `json:"updatedCount"`
}

// Utterance is one aligned conversation row.
type Utterance struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker"`
	Text    string  `json:"text"`
}

// TranscriptResponse carries the aligned conversation for a queue item.
type TranscriptResponse struct {
	ID         int64       `json:"id"`
	Title      string      `json:"title"`
	Path       string      `json:"path"`
	Utterances []Utterance `json:"utterances"`
}

// TranscriptUpdateRequest replaces the aligned conversation wholesale.
type TranscriptUpdateRequest struct {
	Utterances []Utterance `json:"utterances"`
}

// DocumentResponse carries the summary document for a queue item.
type DocumentResponse struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Path    string `json:"path"`
	Content string `json:"content"`
}

// DocumentUpdateRequest replaces the summary document body.
type DocumentUpdateRequest struct {
	Content string `json:"content"`
}

// EstimateResponse reports a processing-time prediction.
type EstimateResponse struct {
	Minutes    float64 `json:"minutes"`
	Seconds    float64 `json:"seconds"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source"`
}

// PromptEntry is one prompt key/value pair.
type PromptEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// PromptListResponse wraps the prompt store contents.
type PromptListResponse struct {
	Prompts []PromptEntry `json:"prompts"`
}

// PromptUpdateRequest sets a prompt value.
type PromptUpdateRequest struct {
	Value string `json:"value"`
}

// DetailField is a labelled value attached to a log event.
type DetailField struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// LogEvent is a structured log record in transport form.
type LogEvent struct {
	Sequence      uint64            `json:"seq"`
	Timestamp     time.Time         `json:"ts"`
	Level         string            `json:"level"`
	Message       string            `json:"msg"`
	Component     string            `json:"component,omitempty"`
	Stage         string            `json:"stage,omitempty"`
	ItemID        int64             `json:"itemId,omitempty"`
	Worker        string            `json:"worker,omitempty"`
	CorrelationID string            `json:"correlationId,omitempty"`
	Fields        map[string]string `json:"fields,omitempty"`
	Details       []DetailField     `json:"details,omitempty"`
}

// LogStreamResponse carries log events plus the cursor for the next fetch.
type LogStreamResponse struct {
	Events []LogEvent `json:"events"`
	Next   uint64     `json:"next"`
}

// NotifyTestResponse reports the outcome of a test notification.
type NotifyTestResponse struct {
	Sent   bool   `json:"sent"`
	Detail string `json:"detail"`
}
