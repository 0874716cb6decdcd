package audio

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"confab/internal/media/ffprobe"
)

// ChunkPattern is the ffmpeg segment filename pattern used by Split.
const ChunkPattern = "chunk_%03d.m4a"

// ErrNoAudioStream reports a probed file that carries no usable audio.
var ErrNoAudioStream = errors.New("no audio stream found")

var supportedExtensions = map[string]bool{
	".wav":  true,
	".mp3":  true,
	".m4a":  true,
	".flac": true,
	".aac":  true,
}

// IsSupportedSource reports whether the file name carries a recording
// extension the pipeline accepts from the inbox.
func IsSupportedSource(name string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(name))]
}

// Info describes a probed recording.
type Info struct {
	DurationSeconds float64
	SizeBytes       int64
	SampleRateHz    int
	Channels        int
}

// runCommand executes an external binary and returns its combined output.
// Package-level so tests can intercept invocations.
var runCommand = func(ctx context.Context, binary string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	return cmd.CombinedOutput()
}

// probeMedia is the ffprobe function used by this package.
var probeMedia = ffprobe.Inspect

// SetCommandRunnerForTests overrides external command execution during tests.
func SetCommandRunnerForTests(fn func(context.Context, string, ...string) ([]byte, error)) func() {
	previous := runCommand
	runCommand = fn
	return func() {
		runCommand = previous
	}
}

// SetProbeForTests overrides the ffprobe runner during tests.
func SetProbeForTests(fn func(context.Context, string, string) (ffprobe.Result, error)) func() {
	previous := probeMedia
	probeMedia = fn
	return func() {
		probeMedia = previous
	}
}

// Probe inspects a recording and returns its duration and size. The size
// falls back to the file size on disk when ffprobe does not report one.
func Probe(ctx context.Context, ffprobeBinary, path string) (Info, error) {
	result, err := probeMedia(ctx, ffprobeBinary, path)
	if err != nil {
		return Info{}, err
	}

	info := Info{
		DurationSeconds: result.DurationSeconds(),
		SizeBytes:       result.SizeBytes(),
		SampleRateHz:    result.SampleRateHz(),
	}
	if stream, ok := result.PrimaryAudio(); ok {
		info.Channels = stream.Channels
	} else {
		return Info{}, fmt.Errorf("probe %s: %w", filepath.Base(path), ErrNoAudioStream)
	}
	if info.DurationSeconds <= 0 {
		return Info{}, fmt.Errorf("probe %s: could not determine duration", filepath.Base(path))
	}
	if info.SizeBytes == 0 {
		if stat, err := os.Stat(path); err == nil {
			info.SizeBytes = stat.Size()
		}
	}
	return info, nil
}

// Prepare transcodes source into a mono 16kHz AAC file at dest, applying the
// speed-up factor through a chained atempo filter.
func Prepare(ctx context.Context, ffmpegBinary, source, dest string, speedup float64) error {
	ffmpegBinary = strings.TrimSpace(ffmpegBinary)
	if ffmpegBinary == "" {
		ffmpegBinary = "ffmpeg"
	}
	if strings.TrimSpace(source) == "" {
		return errors.New("prepare audio: empty source path")
	}
	if strings.TrimSpace(dest) == "" {
		return errors.New("prepare audio: empty destination path")
	}

	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-vn",
		"-sn",
		"-dn",
		"-ac", "1",
		"-ar", "16000",
	}
	if chain := AtempoChain(speedup); chain != "" {
		args = append(args, "-filter:a", chain)
	}
	args = append(args, "-c:a", "aac", "-b:a", "64k", dest)

	if output, err := runCommand(ctx, ffmpegBinary, args...); err != nil {
		return fmt.Errorf("ffmpeg prepare: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

// Split segments a prepared file into fixed-length chunks with stream copy
// and returns the ordered chunk paths.
func Split(ctx context.Context, ffmpegBinary, source, destDir string, chunkMinutes int) ([]string, error) {
	ffmpegBinary = strings.TrimSpace(ffmpegBinary)
	if ffmpegBinary == "" {
		ffmpegBinary = "ffmpeg"
	}
	if chunkMinutes <= 0 {
		return nil, fmt.Errorf("split audio: invalid chunk length %d", chunkMinutes)
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("split audio: %w", err)
	}

	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-f", "segment",
		"-segment_time", strconv.Itoa(chunkMinutes * 60),
		"-c", "copy",
		filepath.Join(destDir, ChunkPattern),
	}
	if output, err := runCommand(ctx, ffmpegBinary, args...); err != nil {
		return nil, fmt.Errorf("ffmpeg split: %w: %s", err, strings.TrimSpace(string(output)))
	}

	chunks, err := filepath.Glob(filepath.Join(destDir, "chunk_*.m4a"))
	if err != nil {
		return nil, fmt.Errorf("split audio: %w", err)
	}
	if len(chunks) == 0 {
		return nil, errors.New("split audio: ffmpeg produced no chunks")
	}
	sort.Strings(chunks)
	return chunks, nil
}

// OptimalSpeedup returns the playback factor that brings a recording close to
// the target duration. Recordings at or under the target stay at 1.0; longer
// ones scale proportionally, clamped to maxSpeedup.
func OptimalSpeedup(durationMinutes, targetMinutes, maxSpeedup float64) float64 {
	if targetMinutes <= 0 {
		return 1.0
	}
	if maxSpeedup < 1.0 || maxSpeedup > 3.0 {
		maxSpeedup = 3.0
	}
	if durationMinutes <= targetMinutes {
		return 1.0
	}
	speedup := durationMinutes / targetMinutes
	if speedup > maxSpeedup {
		speedup = maxSpeedup
	}
	return math.Round(speedup*100) / 100
}

// AtempoChain builds an ffmpeg audio filter expression for the given factor.
// A single atempo link only accepts [0.5, 2.0], so factors outside that range
// chain multiple links. Factors at 1.0 (or invalid) return an empty string.
func AtempoChain(speedup float64) string {
	if speedup <= 0 || math.Abs(speedup-1.0) < 1e-9 {
		return ""
	}

	var links []float64
	remaining := speedup
	for remaining > 2.0 {
		links = append(links, 2.0)
		remaining /= 2.0
	}
	for remaining < 0.5 {
		links = append(links, 0.5)
		remaining /= 0.5
	}
	links = append(links, remaining)

	parts := make([]string, len(links))
	for i, link := range links {
		parts[i] = "atempo=" + strconv.FormatFloat(link, 'f', -1, 64)
	}
	return strings.Join(parts, ",")
}
