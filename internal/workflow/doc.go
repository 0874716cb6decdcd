// Package workflow advances queue items through the configured processing
// stages.
//
// The Manager runs a pool of identical workers. Each worker claims the next
// waiting item directly into its processing status, reclaims stale work via
// heartbeats, and feeds the item into the registered stage handler
// (preprocessing, transcription, alignment, summarization) while capturing
// progress and failure metadata. The manager also aggregates queue stats,
// calls stage health checks, and emits failure notifications.
//
// Stage output is routed to a per-item log file so the daemon log stays
// readable; the shared stream hub still receives every record for live tails.
//
// Add new lifecycle stages by extending StageSet, updating the queue status
// enums, and teaching ConfigureStages how to chain them; this package is the
// authoritative home for that coordination logic.
package workflow
