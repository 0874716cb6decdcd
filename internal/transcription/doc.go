// Package transcription turns prepared audio into transcript and diarization
// artifacts.
//
// Two provider arrangements are supported. With OpenAI transcription the
// stage calls the speech service for text and, when diarization is enabled,
// AssemblyAI for speaker intervals. With AssemblyAI transcription a single
// job returns both interval sets, and the stage normalizes the transcript
// text itself since the provider applies no cleanup.
//
// Both artifacts are always written, including an empty diarization file
// when no speaker provider is configured, so alignment reads a uniform pair.
// Each completed run also appends a timing sample used by queue estimates.
package transcription
