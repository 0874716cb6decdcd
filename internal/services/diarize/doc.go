// Package diarize provides an AssemblyAI-compatible speaker-labeling client.
//
// # Job Lifecycle
//
// A job runs in three HTTP calls: upload the audio bytes, submit a transcript
// request with speaker_labels enabled, then poll the transcript resource until
// the provider reports completed, error, or failed. Completed jobs yield one
// utterance list that this package splits into matching transcript and speaker
// interval sets, converting the provider's millisecond timestamps to seconds.
//
// # Entry Points
//
// NewClient: construct a client from Config.
// Client.Process: run one audio file through upload, submit, and poll.
// Client.ProcessChunks: run split chunks in order, offsetting their intervals.
// Client.HealthCheck: verify the API key and endpoint reachability.
//
// # Retry Behaviour
//
// Individual HTTP calls retry on 408/429/5xx and network timeouts with
// exponential backoff (base 1s, max 10s), honoring Retry-After headers.
// Polling is bounded by the configured job timeout; context cancellation
// aborts both immediately.
package diarize
