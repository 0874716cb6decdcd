package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"confab/internal/api"
	"confab/internal/media/audio"
	"confab/internal/queue"
)

func newAddCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add <path>",
		Short: "Add an audio recording to the processing queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			absPath, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}

			info, err := os.Stat(absPath)
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("file does not exist: %s", absPath)
				}
				return fmt.Errorf("inspect file: %w", err)
			}
			if info.IsDir() {
				return fmt.Errorf("%s is a directory", absPath)
			}
			if !audio.IsSupportedSource(info.Name()) {
				return fmt.Errorf("unsupported audio extension %q", strings.ToLower(filepath.Ext(info.Name())))
			}

			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			if client != nil {
				item, uploadErr := client.Upload(cmd.Context(), absPath)
				if uploadErr == nil {
					return printQueuedRecording(cmd, ctx, item, absPath)
				}
				if !api.IsUnavailable(uploadErr) {
					return uploadErr
				}
			}

			store, err := queue.Open(ctx.configValue())
			if err != nil {
				return err
			}
			defer store.Close()

			item, err := store.NewRecording(cmd.Context(), absPath)
			if err != nil {
				return err
			}
			return printQueuedRecording(cmd, ctx, api.FromQueueItem(item), absPath)
		},
	}
}

func printQueuedRecording(cmd *cobra.Command, ctx *commandContext, item api.QueueItem, absPath string) error {
	if ctx.jsonMode() {
		return writeJSON(cmd, item)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Queued recording as item #%d (%s)\n", item.ID, filepath.Base(absPath))
	return nil
}
