// Package api defines wire-format types, converters, and the HTTP client for
// the daemon API. It translates internal queue models into transport-friendly
// DTOs so the CLI and other consumers render results without coupling to
// internal types.
//
// # Key Types
//
// QueueItem: transport representation of a queue entry with progress, artifact
// paths, audio metrics, and review state.
//
// WorkflowStatus: worker pool state, queue stats, stage health, and last item.
//
// DaemonStatus: aggregated runtime information including dependencies.
//
// LogEvent/LogStreamResponse: structured log payloads for live tailing.
//
// Client: HTTP client covering every daemon endpoint, used by the CLI.
//
// # Converters
//
// FromQueueItem: queue.Item -> QueueItem with RFC3339 timestamps.
//
// FromStatusSummary: workflow.StatusSummary -> WorkflowStatus.
//
// FromUtterances/ToUtterances: conversation rows <-> transport rows for
// transcript fetch and edit round trips.
//
// # Design Notes
//
// DTOs use camelCase JSON tags for JavaScript/TypeScript consumers. Internal
// enums (queue.Status) are exposed as lowercase strings. Timestamps use
// RFC3339 with milliseconds.
//
// Action helpers (retry, cancel, remove) report a per-ID outcome so multi-ID
// requests can partially succeed; cancel distinguishes in_progress items so
// the HTTP layer can answer 409 without interrupting a running stage.
package api
