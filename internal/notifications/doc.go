// Package notifications delivers pipeline events via pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and gracefully degrades to a no-op when notifications are
// disabled. Enumerated event types cover the pipeline milestones (queued,
// conversation ready, summary ready, failures) so stage handlers can emit
// consistent messages without duplicating HTTP glue, and per-event toggles in
// the notifications config section suppress the ones the user opted out of.
//
// Extend this package if you need alternative transports; all workflow code
// depends only on the simple Service interface.
package notifications
