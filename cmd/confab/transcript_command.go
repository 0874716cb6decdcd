package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"confab/internal/api"
	"confab/internal/conversation"
	"confab/internal/queue"
)

func newTranscriptCommand(ctx *commandContext) *cobra.Command {
	var rawCSV bool

	cmd := &cobra.Command{
		Use:   "transcript <itemID>",
		Short: "Print the aligned conversation for a queue item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parsePositiveIDs(args)
			if err != nil {
				return err
			}
			id := ids[0]

			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			if client != nil {
				if rawCSV {
					data, exportErr := client.Export(cmd.Context(), id, "csv")
					if exportErr == nil {
						_, writeErr := cmd.OutOrStdout().Write(data)
						return writeErr
					}
					if !api.IsUnavailable(exportErr) {
						return exportErr
					}
				} else {
					resp, fetchErr := client.Transcript(cmd.Context(), id)
					if fetchErr == nil {
						return printTranscript(cmd, ctx, resp)
					}
					if !api.IsUnavailable(fetchErr) {
						return fetchErr
					}
				}
			}

			store, err := queue.Open(ctx.configValue())
			if err != nil {
				return err
			}
			defer store.Close()

			item, err := store.GetByID(cmd.Context(), id)
			if err != nil {
				return err
			}
			if item == nil {
				return fmt.Errorf("queue item %d not found", id)
			}
			if item.ConversationFile == "" {
				return fmt.Errorf("item %d has no conversation yet", id)
			}

			if rawCSV {
				data, err := os.ReadFile(item.ConversationFile)
				if errors.Is(err, fs.ErrNotExist) {
					return fmt.Errorf("conversation file for item %d is missing", id)
				}
				if err != nil {
					return err
				}
				_, writeErr := cmd.OutOrStdout().Write(data)
				return writeErr
			}

			f, err := os.Open(item.ConversationFile)
			if errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("conversation file for item %d is missing", id)
			}
			if err != nil {
				return err
			}
			defer f.Close()

			utterances, err := conversation.ReadCSV(f)
			if err != nil {
				return fmt.Errorf("parse conversation: %w", err)
			}
			return printTranscript(cmd, ctx, api.TranscriptResponse{
				ID:         item.ID,
				Title:      item.Title,
				Path:       item.ConversationFile,
				Utterances: api.FromUtterances(utterances),
			})
		},
	}

	cmd.Flags().BoolVar(&rawCSV, "csv", false, "Print the raw conversation CSV")
	return cmd
}

func printTranscript(cmd *cobra.Command, ctx *commandContext, resp api.TranscriptResponse) error {
	if ctx.jsonMode() {
		return writeJSON(cmd, resp)
	}
	out := cmd.OutOrStdout()
	if resp.Title != "" {
		fmt.Fprintf(out, "%s\n\n", resp.Title)
	}
	for _, utt := range resp.Utterances {
		fmt.Fprintf(out, "[%s - %s] %s: %s\n",
			conversation.FormatTimestamp(utt.Start),
			conversation.FormatTimestamp(utt.End),
			utt.Speaker,
			utt.Text,
		)
	}
	return nil
}
