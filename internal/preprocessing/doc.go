// Package preprocessing orchestrates the audio preparation stage for queued
// recordings.
//
// The handler probes the source recording, picks a speed-up factor that
// brings long meetings near the configured target duration, converts to mono
// 16kHz AAC through ffmpeg, and splits the prepared file into fixed-length
// chunks when it exceeds the chunk threshold. The prepared artifact paths,
// effective duration, and speed-up land on the queue item for the
// transcription stage.
package preprocessing
