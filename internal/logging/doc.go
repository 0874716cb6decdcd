// Package logging assembles the structured slog loggers and formatting
// helpers used across Confab services.
//
// It owns the configurable console/JSON handlers, centralizes level and
// output plumbing, and exposes context-aware helpers so stage code can
// automatically tag log lines with queue item IDs, stages, workers, and
// correlation IDs. The package also provides a no-op logger for tests and
// wiring code that cannot fail, plus an in-memory stream hub and on-disk
// event archive backing the log-tail API.
//
// Prefer these constructors over hand-rolled slog setup so new components
// emit data with the same shape and routing as the rest of the system.
package logging
