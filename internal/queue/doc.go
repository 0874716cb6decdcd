// Package queue persists recording jobs in SQLite and exposes helpers for
// driving their lifecycle.
//
// The Store manages database connections, schema initialization, stats
// queries, heartbeat tracking, stuck-item recovery, and the status
// transitions workers use to claim and land work. Queue items capture
// source and artifact paths, audio properties, progress, and review flags so
// stages can coordinate without additional state. Completed transcription
// runs append to the timing_records table, which backs processing-time
// estimates.
//
// The database is treated as transient storage for in-flight jobs rather than
// a long-term archive. Schema changes bump the version in schema.go; users
// clear the database to adopt the new schema.
//
// Treat this package as the single source of truth for queue semantics; when
// you add new statuses or columns, update schema.sql and bump schemaVersion.
package queue
