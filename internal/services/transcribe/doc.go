// Package transcribe provides the Whisper-compatible speech-to-text client.
//
// This package handles:
//   - Segment-timestamped transcription of prepared audio files
//   - The 25MB upload guard the hosted API enforces
//   - Chunked transcription with per-chunk time offsets
//
// Segment text is normalized before it leaves this package, so downstream
// alignment always sees cleaned sentences.
package transcribe
