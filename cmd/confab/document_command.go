package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"confab/internal/api"
	"confab/internal/queue"
)

func newDocumentCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "document <itemID>",
		Short: "Print the summary document for a queue item",
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
				resp, fetchErr := client.Document(cmd.Context(), id)
				if fetchErr == nil {
					return printDocument(cmd, ctx, resp)
				}
				if !api.IsUnavailable(fetchErr) {
					return fetchErr
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
			if item.DocumentFile == "" {
				return fmt.Errorf("item %d has no summary document yet", id)
			}
			data, err := os.ReadFile(item.DocumentFile)
			if errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("document file for item %d is missing", id)
			}
			if err != nil {
				return err
			}
			return printDocument(cmd, ctx, api.DocumentResponse{
				ID:      item.ID,
				Title:   item.Title,
				Path:    item.DocumentFile,
				Content: string(data),
			})
		},
	}
}

func printDocument(cmd *cobra.Command, ctx *commandContext, resp api.DocumentResponse) error {
	if ctx.jsonMode() {
		return writeJSON(cmd, resp)
	}
	fmt.Fprint(cmd.OutOrStdout(), resp.Content)
	if len(resp.Content) > 0 && resp.Content[len(resp.Content)-1] != '\n' {
		fmt.Fprintln(cmd.OutOrStdout())
	}
	return nil
}
