package main

import (
	"github.com/spf13/cobra"
)

func newCancelCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <itemID...>",
		Short: "Cancel queued recordings before they process",
		Args:  cobra.MinimumNArgs(1),
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

			result, err := q.Cancel(cmd.Context(), ids)
			if err != nil {
				return err
			}
			if ctx.jsonMode() {
				return writeQueueCancelResultJSON(cmd, result)
			}
			printQueueCancelResult(cmd.OutOrStdout(), result)
			return nil
		},
	}
}
