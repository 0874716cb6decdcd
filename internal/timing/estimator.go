package timing

import (
	"math"
	"sort"
	"strings"
)

// Estimate sources, from most to least specific history.
const (
	SourceProfile  = "profile"
	SourceProvider = "provider"
	SourceAll      = "all"
	SourceDefault  = "default"
)

// speedupTolerance bounds how far a sample's speed-up may drift from the
// requested profile and still count as an exact profile match. The bound is
// exclusive: a drift of exactly 0.1 falls through to the provider tier.
const speedupTolerance = 0.1

// Sample is one historical observation of a completed transcription run.
type Sample struct {
	Provider          string
	Chunked           bool
	Speedup           float64
	AudioSeconds      float64
	ProcessingSeconds float64
}

// Profile describes the configuration an estimate is requested for.
type Profile struct {
	Provider     string
	Chunked      bool
	Speedup      float64
	ChunkMinutes int
}

// Estimate is a predicted processing duration with a confidence score and the
// history tier that produced it.
type Estimate struct {
	Seconds    float64
	Confidence float64
	Source     string
}

// ForDuration predicts how long processing a recording of the given length
// will take. Historical samples are filtered in three tiers: exact profile
// match (provider, chunking flag, speed-up within tolerance), then same
// provider, then all samples. The first non-empty tier supplies a median
// per-minute rate. With no usable history a fixed formula applies.
func ForDuration(durationMinutes float64, profile Profile, samples []Sample) Estimate {
	if durationMinutes < 0 {
		durationMinutes = 0
	}
	if profile.Speedup <= 0 {
		profile.Speedup = 1.0
	}

	tiers := []struct {
		source string
		match  func(Sample) bool
	}{
		{SourceProfile, func(s Sample) bool {
			return sameProvider(s.Provider, profile.Provider) &&
				s.Chunked == profile.Chunked &&
				math.Abs(s.Speedup-profile.Speedup) < speedupTolerance
		}},
		{SourceProvider, func(s Sample) bool {
			return sameProvider(s.Provider, profile.Provider)
		}},
		{SourceAll, func(Sample) bool { return true }},
	}

	for _, tier := range tiers {
		rates := perMinuteRates(samples, tier.match)
		if len(rates) == 0 {
			continue
		}
		seconds := median(rates) * durationMinutes
		return Estimate{
			Seconds:    seconds,
			Confidence: confidenceFor(rates),
			Source:     tier.source,
		}
	}

	return defaultEstimate(durationMinutes, profile)
}

func sameProvider(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func perMinuteRates(samples []Sample, match func(Sample) bool) []float64 {
	var rates []float64
	for _, sample := range samples {
		if sample.AudioSeconds <= 0 || sample.ProcessingSeconds <= 0 {
			continue
		}
		if !match(sample) {
			continue
		}
		rates = append(rates, sample.ProcessingSeconds/(sample.AudioSeconds/60.0))
	}
	return rates
}

func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// confidenceFor scores the spread of the matched rates. Three or more samples
// earn 1 minus the coefficient of variation, clamped to [0.1, 1.0]; one or two
// samples always score 0.5.
func confidenceFor(rates []float64) float64 {
	if len(rates) < 3 {
		return 0.5
	}
	mean := 0.0
	for _, rate := range rates {
		mean += rate
	}
	mean /= float64(len(rates))
	if mean == 0 {
		return 0.1
	}
	variance := 0.0
	for _, rate := range rates {
		diff := rate - mean
		variance += diff * diff
	}
	variance /= float64(len(rates))
	cov := math.Sqrt(variance) / mean
	confidence := 1 - cov
	if confidence < 0.1 {
		return 0.1
	}
	if confidence > 1.0 {
		return 1.0
	}
	return confidence
}

// defaultEstimate is the no-history formula: a per-minute base rate divided by
// the speed-up, plus per-chunk upload overhead when chunking applies, plus a
// fixed startup overhead.
func defaultEstimate(durationMinutes float64, profile Profile) Estimate {
	base := 60.0
	if sameProvider(profile.Provider, "assemblyai") {
		base = 30.0
	}
	seconds := durationMinutes * base / profile.Speedup
	if profile.Chunked {
		chunkMinutes := profile.ChunkMinutes
		if chunkMinutes <= 0 {
			chunkMinutes = 10
		}
		// Truncating division; a trailing partial chunk adds no overhead.
		chunks := int(durationMinutes / float64(chunkMinutes))
		if chunks < 1 {
			chunks = 1
		}
		seconds += float64(chunks) * 30.0
	}
	seconds += 60.0
	return Estimate{Seconds: seconds, Confidence: 0.3, Source: SourceDefault}
}
