package preprocessing

import (
	"context"

	"confab/internal/media/audio"
)

var (
	probeAudio   = audio.Probe
	prepareAudio = audio.Prepare
	splitAudio   = audio.Split
)

// SetProbeForTests overrides audio probing during tests.
func SetProbeForTests(fn func(context.Context, string, string) (audio.Info, error)) func() {
	previous := probeAudio
	probeAudio = fn
	return func() {
		probeAudio = previous
	}
}

// SetPrepareForTests overrides audio conversion during tests.
func SetPrepareForTests(fn func(context.Context, string, string, string, float64) error) func() {
	previous := prepareAudio
	prepareAudio = fn
	return func() {
		prepareAudio = previous
	}
}

// SetSplitForTests overrides audio chunking during tests.
func SetSplitForTests(fn func(context.Context, string, string, string, int) ([]string, error)) func() {
	previous := splitAudio
	splitAudio = fn
	return func() {
		splitAudio = previous
	}
}
