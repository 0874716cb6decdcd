package queue

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a queue item.
type Status string

const (
	StatusPending      Status = "pending"
	StatusPreparing    Status = "preparing"
	StatusPrepared     Status = "prepared"
	StatusTranscribing Status = "transcribing"
	StatusTranscribed  Status = "transcribed"
	StatusAligning     Status = "aligning"
	StatusAligned      Status = "aligned"
	StatusSummarizing  Status = "summarizing"
	StatusCompleted    Status = "completed"
	StatusFailed       Status = "failed"
	StatusReview       Status = "review"
)

// UserStopReason is the review reason set when a user cancels an item.
const UserStopReason = "Stop requested by user"

// DaemonStopReason is the progress message set when in-flight items are rolled
// back because the daemon shut down.
const DaemonStopReason = "Daemon stopped"

var allStatuses = []Status{
	StatusPending,
	StatusPreparing,
	StatusPrepared,
	StatusTranscribing,
	StatusTranscribed,
	StatusAligning,
	StatusAligned,
	StatusSummarizing,
	StatusCompleted,
	StatusFailed,
	StatusReview,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var processingStatuses = map[Status]struct{}{
	StatusPreparing:    {},
	StatusTranscribing: {},
	StatusAligning:     {},
	StatusSummarizing:  {},
}

// waitingStatuses are the landing statuses where an item sits between stages
// and may be claimed by a worker or cancelled.
var waitingStatuses = map[Status]struct{}{
	StatusPending:     {},
	StatusPrepared:    {},
	StatusTranscribed: {},
	StatusAligned:     {},
}

type statusTransition struct {
	from Status
	to   Status
}

var stageClaimTransitions = []statusTransition{
	{from: StatusPending, to: StatusPreparing},
	{from: StatusPrepared, to: StatusTranscribing},
	{from: StatusTranscribed, to: StatusAligning},
	{from: StatusAligned, to: StatusSummarizing},
}

var stageRollbackTransitions = []statusTransition{
	{from: StatusPreparing, to: StatusPending},
	{from: StatusTranscribing, to: StatusPrepared},
	{from: StatusAligning, to: StatusTranscribed},
	{from: StatusSummarizing, to: StatusAligned},
}

// ClaimTarget returns the processing status a worker moves an item into when it
// claims work sitting at the given landing status.
func ClaimTarget(status Status) (Status, bool) {
	for _, transition := range stageClaimTransitions {
		if transition.from == status {
			return transition.to, true
		}
	}
	return "", false
}

// RollbackStatus returns the landing status an in-flight item falls back to
// when its stage is abandoned (stale heartbeat, daemon shutdown).
func RollbackStatus(status Status) (Status, bool) {
	for _, transition := range stageRollbackTransitions {
		if transition.from == status {
			return transition.to, true
		}
	}
	return "", false
}

// ClaimableStatuses returns the ordered landing statuses a worker may claim from.
func ClaimableStatuses() []Status {
	statuses := make([]Status, len(stageClaimTransitions))
	for i, transition := range stageClaimTransitions {
		statuses[i] = transition.from
	}
	return statuses
}

// ProcessingStatuses returns the ordered in-flight statuses.
func ProcessingStatuses() []Status {
	statuses := make([]Status, len(stageRollbackTransitions))
	for i, transition := range stageRollbackTransitions {
		statuses[i] = transition.from
	}
	return statuses
}

// DatabaseHealth captures diagnostic information about the queue database.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	SchemaVersion    string
	TableExists      bool
	ColumnsPresent   []string
	MissingColumns   []string
	IntegrityCheck   bool
	TotalItems       int
	Error            string
}

// HealthSummary describes aggregated queue counts per key lifecycle states.
type HealthSummary struct {
	Total      int
	Pending    int
	Processing int
	Failed     int
	Review     int
	Completed  int
}

// Item represents a queue item persisted in SQLite.
type Item struct {
	ID               int64
	SourcePath       string
	Title            string
	Status           Status
	PreparedFile     string
	ChunksJSON       string
	TranscriptFile   string
	DiarizationFile  string
	ConversationFile string
	DocumentFile     string
	AudioSeconds     float64
	Speedup          float64
	ChunkCount       int
	ErrorMessage     string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	ProgressStage    string
	ProgressPercent  float64
	ProgressMessage  string
	LastHeartbeat    *time.Time
	NeedsReview      bool
	ReviewReason     string
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsProcessing returns true when the status reflects an in-flight operation.
func (i Item) IsProcessing() bool {
	_, ok := processingStatuses[i.Status]
	return ok
}

// IsProcessingStatus reports whether a status reflects an in-flight operation.
func IsProcessingStatus(status Status) bool {
	_, ok := processingStatuses[status]
	return ok
}

// IsWaitingStatus reports whether a status is a landing status between stages.
// Only waiting items may be claimed by a worker or cancelled by the user.
func IsWaitingStatus(status Status) bool {
	_, ok := waitingStatuses[status]
	return ok
}

// IsUserStopReason reports whether a review reason represents a user-initiated stop.
func IsUserStopReason(reason string) bool {
	return strings.EqualFold(strings.TrimSpace(reason), UserStopReason)
}

// InitProgress resets progress fields for a new stage.
// If ProgressStage is currently empty, it is set to the provided stage value;
// otherwise the existing stage is preserved (to support resume scenarios).
// ProgressMessage is set to message, ProgressPercent is reset to 0,
// and ErrorMessage is cleared.
func (i *Item) InitProgress(stage, message string) {
	if i.ProgressStage == "" {
		i.ProgressStage = stage
	}
	i.ProgressMessage = message
	i.ProgressPercent = 0
	i.ErrorMessage = ""
}

// SetProgress updates all three progress fields atomically.
// Use this instead of setting ProgressStage, ProgressPercent, and ProgressMessage individually.
func (i *Item) SetProgress(stage, message string, percent float64) {
	i.ProgressStage = stage
	i.ProgressMessage = message
	i.ProgressPercent = percent
}

// SetProgressComplete sets progress to 100% with the given stage and message.
// Convenience method for stage completion.
func (i *Item) SetProgressComplete(stage, message string) {
	i.SetProgress(stage, message, 100)
}

// SetFailed marks the item as failed with the given error message.
// Clears heartbeat and sets progress fields appropriately.
func (i *Item) SetFailed(message string) {
	i.Status = StatusFailed
	i.ErrorMessage = message
	i.ProgressPercent = 0
	i.ProgressMessage = message
	i.LastHeartbeat = nil
	i.ProgressStage = "Failed"
}

// SetReview parks the item for manual intervention with the given reason.
func (i *Item) SetReview(reason string) {
	i.Status = StatusReview
	i.NeedsReview = true
	i.ReviewReason = reason
	i.ProgressPercent = 0
	i.ProgressMessage = reason
	i.LastHeartbeat = nil
	i.ProgressStage = "Review"
}
