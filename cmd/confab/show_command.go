package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"confab/internal/api"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <itemID>",
		Short: "Show queue item details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parsePositiveIDs(args)
			if err != nil {
				return err
			}

			q, done, err := ctx.resolveQueueAPI(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			item, err := q.Describe(cmd.Context(), ids[0])
			if err != nil {
				return err
			}
			if item == nil {
				return fmt.Errorf("queue item %d not found", ids[0])
			}
			if ctx.jsonMode() {
				return writeJSON(cmd, item)
			}
			printItemDetail(cmd.OutOrStdout(), item)
			return nil
		},
	}
}

func printItemDetail(out io.Writer, item *api.QueueItem) {
	fmt.Fprintf(out, "Item #%d\n", item.ID)
	fmt.Fprintf(out, "Title: %s\n", displayTitle(*item))
	fmt.Fprintf(out, "Status: %s\n", formatStatusLabel(item.Status))
	fmt.Fprintf(out, "Source: %s\n", item.SourcePath)
	if item.AudioSeconds > 0 {
		fmt.Fprintf(out, "Duration: %s\n", formatAudioDuration(item.AudioSeconds))
	}
	if item.Speedup > 1 {
		fmt.Fprintf(out, "Speedup: %.2fx\n", item.Speedup)
	}
	if item.ChunkCount > 1 {
		fmt.Fprintf(out, "Chunks: %d\n", item.ChunkCount)
	}
	if created := formatDisplayTime(item.CreatedAt); created != "" {
		fmt.Fprintf(out, "Created: %s\n", created)
	}
	if updated := formatDisplayTime(item.UpdatedAt); updated != "" {
		fmt.Fprintf(out, "Updated: %s\n", updated)
	}
	if progress := formatProgress(*item); progress != "-" {
		fmt.Fprintf(out, "Progress: %s\n", progress)
	}
	if message := strings.TrimSpace(item.ErrorMessage); message != "" {
		fmt.Fprintf(out, "Error: %s\n", message)
	}
	if item.NeedsReview {
		reason := strings.TrimSpace(item.ReviewReason)
		if reason == "" {
			reason = "unspecified"
		}
		fmt.Fprintf(out, "Needs review: %s\n", reason)
	}

	artifacts := []struct {
		label string
		path  string
	}{
		{"Prepared audio", item.PreparedFile},
		{"Transcript", item.TranscriptFile},
		{"Diarization", item.DiarizationFile},
		{"Conversation", item.ConversationFile},
		{"Document", item.DocumentFile},
	}
	var present []string
	for _, artifact := range artifacts {
		if strings.TrimSpace(artifact.path) != "" {
			present = append(present, fmt.Sprintf("  %s: %s", artifact.label, artifact.path))
		}
	}
	if len(present) > 0 {
		fmt.Fprintln(out, "Artifacts:")
		for _, line := range present {
			fmt.Fprintln(out, line)
		}
	}
}
