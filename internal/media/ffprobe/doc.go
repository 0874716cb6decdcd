// Package ffprobe shells out to ffprobe and parses its JSON output into
// typed results.
//
// Inspect runs the probe; the Result helpers answer the questions the
// pipeline cares about for meeting recordings: how many audio streams exist
// (AudioStreamCount, PrimaryAudio), how long the media runs
// (DurationSeconds, falling back to the audio stream when the container
// omits a duration), its size on disk (SizeBytes), and the sample rate of
// the primary audio stream (SampleRateHz).
package ffprobe
