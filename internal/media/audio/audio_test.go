package audio

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"confab/internal/media/ffprobe"
)

func TestOptimalSpeedup(t *testing.T) {
	cases := []struct {
		name     string
		duration float64
		target   float64
		max      float64
		want     float64
	}{
		{"short recording stays at unity", 20, 30, 3.0, 1.0},
		{"exactly at target stays at unity", 30, 30, 3.0, 1.0},
		{"scales proportionally", 45, 30, 3.0, 1.5},
		{"clamps to max", 120, 30, 3.0, 3.0},
		{"honors lower max", 120, 30, 2.5, 2.5},
		{"invalid max falls back to hard ceiling", 240, 30, 0, 3.0},
		{"invalid target stays at unity", 90, 0, 3.0, 1.0},
		{"rounds to two decimals", 50, 30, 3.0, 1.67},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := OptimalSpeedup(tc.duration, tc.target, tc.max)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("OptimalSpeedup(%v, %v, %v) = %v, want %v", tc.duration, tc.target, tc.max, got, tc.want)
			}
		})
	}
}

func TestAtempoChain(t *testing.T) {
	cases := []struct {
		speedup float64
		want    string
	}{
		{1.0, ""},
		{0, ""},
		{-2, ""},
		{1.5, "atempo=1.5"},
		{2.0, "atempo=2"},
		{2.5, "atempo=2,atempo=1.25"},
		{3.0, "atempo=2,atempo=1.5"},
		{0.25, "atempo=0.5,atempo=0.5"},
	}
	for _, tc := range cases {
		if got := AtempoChain(tc.speedup); got != tc.want {
			t.Errorf("AtempoChain(%v) = %q, want %q", tc.speedup, got, tc.want)
		}
	}
}

func TestPrepareBuildsFilterChain(t *testing.T) {
	var gotBinary string
	var gotArgs []string
	restore := SetCommandRunnerForTests(func(_ context.Context, binary string, args ...string) ([]byte, error) {
		gotBinary = binary
		gotArgs = args
		return nil, nil
	})
	defer restore()

	if err := Prepare(context.Background(), "ffmpeg", "/in/source.m4a", "/out/prepared.m4a", 2.0); err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if gotBinary != "ffmpeg" {
		t.Fatalf("binary = %q", gotBinary)
	}

	joined := strings.Join(gotArgs, " ")
	for _, fragment := range []string{"-ac 1", "-ar 16000", "-filter:a atempo=2", "-c:a aac"} {
		if !strings.Contains(joined, fragment) {
			t.Errorf("args missing %q: %s", fragment, joined)
		}
	}
	if gotArgs[len(gotArgs)-1] != "/out/prepared.m4a" {
		t.Errorf("last arg = %q, want destination", gotArgs[len(gotArgs)-1])
	}
}

func TestPrepareSkipsFilterAtUnitySpeed(t *testing.T) {
	var gotArgs []string
	restore := SetCommandRunnerForTests(func(_ context.Context, _ string, args ...string) ([]byte, error) {
		gotArgs = args
		return nil, nil
	})
	defer restore()

	if err := Prepare(context.Background(), "ffmpeg", "/in/a.m4a", "/out/b.m4a", 1.0); err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if strings.Contains(strings.Join(gotArgs, " "), "-filter:a") {
		t.Fatalf("unexpected filter at 1.0x: %v", gotArgs)
	}
}

func TestPrepareReportsToolFailure(t *testing.T) {
	restore := SetCommandRunnerForTests(func(_ context.Context, _ string, _ ...string) ([]byte, error) {
		return []byte("atempo out of range\n"), errors.New("exit status 1")
	})
	defer restore()

	err := Prepare(context.Background(), "ffmpeg", "/in/a.m4a", "/out/b.m4a", 1.5)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "atempo out of range") {
		t.Fatalf("error missing tool output: %v", err)
	}
}

func TestSplitReturnsSortedChunks(t *testing.T) {
	destDir := filepath.Join(t.TempDir(), "chunks")

	var gotArgs []string
	restore := SetCommandRunnerForTests(func(_ context.Context, _ string, args ...string) ([]byte, error) {
		gotArgs = args
		// Simulate ffmpeg writing segments out of order.
		for _, name := range []string{"chunk_002.m4a", "chunk_000.m4a", "chunk_001.m4a"} {
			if err := os.WriteFile(filepath.Join(destDir, name), []byte("x"), 0o644); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	defer restore()

	chunks, err := Split(context.Background(), "ffmpeg", "/in/prepared.m4a", destDir, 10)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("len(chunks) = %d, want 3", len(chunks))
	}
	for i, want := range []string{"chunk_000.m4a", "chunk_001.m4a", "chunk_002.m4a"} {
		if filepath.Base(chunks[i]) != want {
			t.Errorf("chunks[%d] = %q, want %q", i, filepath.Base(chunks[i]), want)
		}
	}

	joined := strings.Join(gotArgs, " ")
	for _, fragment := range []string{"-f segment", "-segment_time 600", "-c copy"} {
		if !strings.Contains(joined, fragment) {
			t.Errorf("args missing %q: %s", fragment, joined)
		}
	}
}

func TestSplitRejectsInvalidChunkLength(t *testing.T) {
	if _, err := Split(context.Background(), "ffmpeg", "/in/a.m4a", t.TempDir(), 0); err == nil {
		t.Fatal("expected error for zero chunk length")
	}
}

func TestSplitFailsWhenNoChunksProduced(t *testing.T) {
	restore := SetCommandRunnerForTests(func(_ context.Context, _ string, _ ...string) ([]byte, error) {
		return nil, nil
	})
	defer restore()

	if _, err := Split(context.Background(), "ffmpeg", "/in/a.m4a", t.TempDir(), 10); err == nil {
		t.Fatal("expected error when ffmpeg produces nothing")
	}
}

func TestProbeReadsDurationAndSize(t *testing.T) {
	restore := SetProbeForTests(func(_ context.Context, _, _ string) (ffprobe.Result, error) {
		return ffprobe.Result{
			Streams: []ffprobe.Stream{
				{Index: 0, CodecType: "audio", Channels: 2, SampleRate: "44100"},
			},
			Format: ffprobe.Format{Duration: "125.5", Size: "2048"},
		}, nil
	})
	defer restore()

	info, err := Probe(context.Background(), "ffprobe", "/in/recording.m4a")
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	if math.Abs(info.DurationSeconds-125.5) > 1e-9 {
		t.Errorf("DurationSeconds = %v", info.DurationSeconds)
	}
	if info.SizeBytes != 2048 {
		t.Errorf("SizeBytes = %d", info.SizeBytes)
	}
	if info.Channels != 2 || info.SampleRateHz != 44100 {
		t.Errorf("stream metadata = %+v", info)
	}
}

func TestProbeFallsBackToDiskSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recording.m4a")
	if err := os.WriteFile(path, []byte("0123456789"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	restore := SetProbeForTests(func(_ context.Context, _, _ string) (ffprobe.Result, error) {
		return ffprobe.Result{
			Streams: []ffprobe.Stream{{CodecType: "audio", Duration: "60"}},
		}, nil
	})
	defer restore()

	info, err := Probe(context.Background(), "ffprobe", path)
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	if info.SizeBytes != 10 {
		t.Errorf("SizeBytes = %d, want 10 from disk", info.SizeBytes)
	}
	if math.Abs(info.DurationSeconds-60) > 1e-9 {
		t.Errorf("DurationSeconds = %v, want stream fallback", info.DurationSeconds)
	}
}

func TestProbeRejectsNonAudio(t *testing.T) {
	restore := SetProbeForTests(func(_ context.Context, _, _ string) (ffprobe.Result, error) {
		return ffprobe.Result{
			Streams: []ffprobe.Stream{{CodecType: "video"}},
			Format:  ffprobe.Format{Duration: "60"},
		}, nil
	})
	defer restore()

	if _, err := Probe(context.Background(), "ffprobe", "/in/movie.mkv"); err == nil {
		t.Fatal("expected error for file without audio")
	}
}

func TestIsSupportedSource(t *testing.T) {
	accepted := []string{"meeting.m4a", "Standup.MP3", "call.wav", "sync.flac", "huddle.aac"}
	for _, name := range accepted {
		if !IsSupportedSource(name) {
			t.Errorf("IsSupportedSource(%q) = false, want true", name)
		}
	}
	rejected := []string{"notes.txt", "meeting.mkv", "archive.zip", "m4a", ""}
	for _, name := range rejected {
		if IsSupportedSource(name) {
			t.Errorf("IsSupportedSource(%q) = true, want false", name)
		}
	}
}
