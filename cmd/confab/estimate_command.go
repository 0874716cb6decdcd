package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"confab/internal/api"
	"confab/internal/queue"
	"confab/internal/timing"
)

func newEstimateCommand(ctx *commandContext) *cobra.Command {
	var speedup float64
	var chunking bool

	cmd := &cobra.Command{
		Use:   "estimate <minutes>",
		Short: "Estimate processing time for a recording length",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			minutes, err := strconv.ParseFloat(strings.TrimSpace(args[0]), 64)
			if err != nil || minutes < 0 {
				return fmt.Errorf("invalid minutes value %q", args[0])
			}

			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			if client != nil {
				resp, estErr := client.Estimate(cmd.Context(), minutes, chunking, speedup)
				if estErr == nil {
					return printEstimate(cmd, ctx, resp)
				}
				if !api.IsUnavailable(estErr) {
					return estErr
				}
			}

			cfg := ctx.configValue()
			store, err := queue.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.RecentTimings(cmd.Context(), 50)
			if err != nil {
				return err
			}
			samples := make([]timing.Sample, 0, len(records))
			for _, rec := range records {
				samples = append(samples, timing.Sample{
					Provider:          rec.Provider,
					Chunked:           rec.Chunked,
					Speedup:           rec.Speedup,
					AudioSeconds:      rec.AudioSeconds,
					ProcessingSeconds: rec.ProcessingSeconds,
				})
			}
			profile := timing.Profile{
				Provider:     cfg.Transcription.Provider,
				Chunked:      chunking,
				Speedup:      speedup,
				ChunkMinutes: cfg.Audio.ChunkMinutes,
			}
			estimate := timing.ForDuration(minutes, profile, samples)
			return printEstimate(cmd, ctx, api.FromEstimate(minutes, estimate))
		},
	}

	cmd.Flags().Float64Var(&speedup, "speedup", 0, "Assume audio speed-up factor (0 uses the default)")
	cmd.Flags().BoolVar(&chunking, "chunking", false, "Assume chunked transcription")
	return cmd
}

func printEstimate(cmd *cobra.Command, ctx *commandContext, resp api.EstimateResponse) error {
	if ctx.jsonMode() {
		return writeJSON(cmd, resp)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Audio duration: %s\n", formatAudioDuration(resp.Minutes*60))
	fmt.Fprintf(out, "Estimated processing time: %s\n", formatAudioDuration(resp.Seconds))
	fmt.Fprintf(out, "Confidence: %.0f%% (%s)\n", resp.Confidence*100, estimateSourceLabel(resp.Source))
	return nil
}

func estimateSourceLabel(source string) string {
	switch source {
	case timing.SourceProfile:
		return "based on matching profile history"
	case timing.SourceProvider:
		return "based on provider history"
	case timing.SourceAll:
		return "based on all recorded history"
	default:
		return "based on built-in defaults"
	}
}
