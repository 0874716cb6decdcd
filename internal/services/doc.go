// Package services defines shared utilities consumed by the workflow stage
// handlers and the provider integrations.
//
// Key responsibilities:
//   - Context helpers that stamp queue item IDs, stage names, workers, and
//     correlation identifiers for logging and tracing.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent queue statuses (failed vs review).
//
// Use these helpers when wiring new stage logic so operational behaviour
// (error handling, observability, retries) stays uniform across the pipeline.
package services
