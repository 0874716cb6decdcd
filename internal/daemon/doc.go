// Package daemon coordinates the long-running Confab process and its
// integration points.
//
// It wires configuration, queue storage, the workflow manager, the inbox
// watcher, and the HTTP API into a single lifecycle with flock-based locking
// to prevent multiple instances. The daemon exposes queue maintenance
// helpers, handles manual file ingestion, reports dependency health, and owns
// the notifications triggered when recordings enter or leave the pipeline.
//
// Keep orchestration logic here: individual pipeline stages live in their own
// packages while the daemon focuses on startup, shutdown, and high level
// coordination.
package daemon
