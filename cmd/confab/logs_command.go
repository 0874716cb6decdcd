package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"confab/internal/api"
	"confab/internal/config"
	"confab/internal/logging"
	"confab/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var follow bool
	var lines int
	var component string
	var stage string
	var level string
	var itemID int64

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Display daemon logs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			filter := api.LogQuery{
				Component: component,
				Stage:     stage,
				Level:     level,
				ItemID:    itemID,
			}
			if err := streamLogsFromAPI(cmd, ctx, filter, lines, follow); err == nil {
				return nil
			} else if !api.IsUnavailable(err) {
				return err
			}
			return tailLogFile(cmd, cfg, lines, follow)
		},
	}

	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Follow log output")
	cmd.Flags().IntVarP(&lines, "lines", "n", 10, "Number of lines to show (0 for all)")
	cmd.Flags().StringVar(&component, "component", "", "Filter by component")
	cmd.Flags().StringVar(&stage, "stage", "", "Filter by pipeline stage")
	cmd.Flags().StringVar(&level, "level", "", "Minimum log level (debug, info, warn, error)")
	cmd.Flags().Int64Var(&itemID, "item", 0, "Filter by queue item id")
	return cmd
}

func streamLogsFromAPI(cmd *cobra.Command, ctx *commandContext, filter api.LogQuery, lines int, follow bool) error {
	client, err := ctx.apiClient()
	if err != nil {
		return err
	}
	if client == nil {
		return api.ErrUnavailable
	}

	query := filter
	query.Limit = lines
	query.Tail = true
	if query.Limit <= 0 {
		query.Limit = 200
	}

	printed := false
	for {
		resp, err := client.Logs(cmd.Context(), query)
		if err != nil {
			return cancelledOK(err)
		}
		for _, evt := range resp.Events {
			fmt.Fprintln(cmd.OutOrStdout(), formatAPILogEvent(evt))
			printed = true
		}
		if !follow {
			if !printed {
				fmt.Fprintln(cmd.OutOrStdout(), "No log entries available")
			}
			return nil
		}
		query.Since = resp.Next
		query.Limit = 200
		query.Tail = false
		query.Follow = true
		select {
		case <-cmd.Context().Done():
			return nil
		default:
		}
	}
}

// tailLogFile reads the on-disk log directly when the daemon is not running.
func tailLogFile(cmd *cobra.Command, cfg *config.Config, lines int, follow bool) error {
	path := filepath.Join(cfg.Paths.LogDir, logging.LogFileName)
	tail, err := logs.LastLines(path, lines)
	if err != nil {
		return err
	}

	printed := false
	for _, line := range tail.Lines {
		fmt.Fprintln(cmd.OutOrStdout(), line)
		printed = true
	}
	if !follow {
		if !printed {
			fmt.Fprintln(cmd.OutOrStdout(), "No log entries available")
		}
		return nil
	}

	offset := tail.Offset
	for {
		chunk, err := logs.ReadSince(cmd.Context(), path, offset, time.Second)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		for _, line := range chunk.Lines {
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
		offset = chunk.Offset
		select {
		case <-cmd.Context().Done():
			return nil
		default:
		}
	}
}

func formatAPILogEvent(evt api.LogEvent) string {
	ts := evt.Timestamp.Format("2006-01-02 15:04:05")
	level := strings.ToUpper(strings.TrimSpace(evt.Level))
	if level == "" {
		level = "INFO"
	}
	parts := []string{ts, level}
	if component := strings.TrimSpace(evt.Component); component != "" {
		parts = append(parts, fmt.Sprintf("[%s]", component))
	}
	subject := composeSubject(evt.ItemID, evt.Stage)
	line := strings.Join(parts, " ")
	if subject != "" {
		line += " " + subject
	}
	message := strings.TrimSpace(evt.Message)
	if message != "" {
		line += " - " + message
	}
	if len(evt.Details) == 0 {
		return line
	}
	builder := strings.Builder{}
	builder.WriteString(line)
	for _, detail := range evt.Details {
		if strings.TrimSpace(detail.Label) == "" || strings.TrimSpace(detail.Value) == "" {
			continue
		}
		builder.WriteString("\n    - ")
		builder.WriteString(detail.Label)
		builder.WriteString(": ")
		builder.WriteString(detail.Value)
	}
	return builder.String()
}

func composeSubject(itemID int64, stage string) string {
	stage = strings.TrimSpace(stage)
	switch {
	case itemID > 0 && stage != "":
		return fmt.Sprintf("Item #%d (%s)", itemID, stage)
	case itemID > 0:
		return fmt.Sprintf("Item #%d", itemID)
	default:
		return stage
	}
}
