// Package audio prepares meeting recordings for transcription.
//
// Preparation downmixes to mono, resamples to 16kHz, and optionally speeds
// playback up through a chained atempo filter so long recordings fit provider
// upload limits. Long prepared files can be segmented into fixed-length
// chunks with stream copy.
//
// External tool invocations run through a package-level command runner that
// tests override, so the argument construction and the pure helpers
// (OptimalSpeedup, AtempoChain) are testable without ffmpeg installed.
//
// Primary entry points:
//   - Probe: duration and size via ffprobe
//   - Prepare: transcode with downmix, resample, and speed-up
//   - Split: segment a prepared file into chunks
package audio
