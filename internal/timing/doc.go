// Package timing predicts processing durations from historical run records.
//
// The estimator degrades across three history tiers (exact profile, same
// provider, all samples) and falls back to a fixed per-minute formula when no
// history exists. Confidence reflects the spread of the matched samples.
package timing
