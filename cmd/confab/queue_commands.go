package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and manage the recording queue",
	}

	queueCmd.AddCommand(newQueueStatusCommand(ctx))
	queueCmd.AddCommand(newQueueListCommand(ctx))
	queueCmd.AddCommand(newQueueClearCommand(ctx))
	queueCmd.AddCommand(newQueueRetryCommand(ctx))
	queueCmd.AddCommand(newQueueRemoveCommand(ctx))
	queueCmd.AddCommand(newQueueHealthSubcommand(ctx))

	return queueCmd
}

func newQueueStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show queue status summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			q, done, err := ctx.resolveQueueAPI(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			stats, err := q.Stats(cmd.Context())
			if err != nil {
				return err
			}
			if ctx.jsonMode() {
				return writeJSON(cmd, map[string]any{"stats": stats})
			}
			rows := buildQueueStatusRows(stats)
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
				return nil
			}
			table := renderTable([]string{"Status", "Count"}, rows, []columnAlignment{alignLeft, alignRight})
			fmt.Fprint(cmd.OutOrStdout(), table)
			return nil
		},
	}
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	var listStatuses []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List queue items",
		RunE: func(cmd *cobra.Command, args []string) error {
			q, done, err := ctx.resolveQueueAPI(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			items, err := q.List(cmd.Context(), listStatuses)
			if err != nil {
				return err
			}
			if ctx.jsonMode() {
				return writeJSON(cmd, map[string]any{"items": items})
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
				return nil
			}
			table := renderTable(
				[]string{"ID", "Title", "Status", "Created", "Duration"},
				buildQueueListRows(items),
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight},
			)
			fmt.Fprint(cmd.OutOrStdout(), table)
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&listStatuses, "status", "s", nil, "Filter by queue status (repeatable)")
	return cmd
}

func newQueueClearCommand(ctx *commandContext) *cobra.Command {
	var clearFailed bool
	var clearAll bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove completed queue items",
		RunE: func(cmd *cobra.Command, args []string) error {
			if clearFailed && clearAll {
				return errors.New("specify only one of --failed or --all")
			}
			scope := "completed"
			switch {
			case clearFailed:
				scope = "failed"
			case clearAll:
				scope = "all"
			}

			q, done, err := ctx.resolveQueueAPI(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			removed, err := q.Clear(cmd.Context(), scope)
			if err != nil {
				return err
			}
			if ctx.jsonMode() {
				return writeJSON(cmd, map[string]any{"removed": removed, "scope": scope})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d %s\n", removed, bulkClearLabel(scope))
			return nil
		},
	}

	cmd.Flags().BoolVar(&clearFailed, "failed", false, "Remove only failed items")
	cmd.Flags().BoolVar(&clearAll, "all", false, "Remove every queue item")
	return cmd
}

func newQueueRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry [itemID...]",
		Short: "Retry failed queue items",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, done, err := ctx.resolveQueueAPI(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			out := cmd.OutOrStdout()
			if len(args) == 0 {
				updated, err := q.RetryAll(cmd.Context())
				if err != nil {
					return err
				}
				if ctx.jsonMode() {
					return writeJSON(cmd, map[string]any{"updated": updated})
				}
				fmt.Fprintf(out, "Retried %d failed items\n", updated)
				return nil
			}

			ids, err := parsePositiveIDs(args)
			if err != nil {
				return err
			}
			result, err := q.Retry(cmd.Context(), ids)
			if err != nil {
				return err
			}
			if ctx.jsonMode() {
				return writeQueueRetryResultJSON(cmd, result)
			}
			printQueueRetryResult(out, result)
			return nil
		},
	}
}

func newQueueRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <itemID...>",
		Short: "Remove queue items by id",
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

			result, err := q.Remove(cmd.Context(), ids)
			if err != nil {
				return err
			}
			if ctx.jsonMode() {
				return writeQueueRemoveResultJSON(cmd, result)
			}
			printQueueRemoveResult(cmd.OutOrStdout(), result)
			return nil
		},
	}
}

func newQueueHealthSubcommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show queue health summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			q, done, err := ctx.resolveQueueAPI(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			health, err := q.Health(cmd.Context())
			if err != nil {
				return err
			}
			if ctx.jsonMode() {
				return writeJSON(cmd, health)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Total: %d\nPending: %d\nProcessing: %d\nFailed: %d\nReview: %d\nCompleted: %d\n",
				health.Total,
				health.Pending,
				health.Processing,
				health.Failed,
				health.Review,
				health.Completed,
			)
			return nil
		},
	}
}
