// Package logs tails daemon log files with bounded memory usage.
//
// The CLI prefers the daemon's HTTP log stream; this package backs the offline
// fallback that reads LogDir/confab.log directly when no daemon is running.
// LastLines grabs the trailing window and ReadSince resumes from a byte offset
// for follow mode.
package logs
