package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"confab/internal/api"
	"confab/internal/notifications"
)

func newNotifyTestCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "notify-test",
		Short: "Send a test notification",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			if client != nil {
				resp, notifyErr := client.NotifyTest(cmd.Context())
				if notifyErr == nil {
					switch {
					case resp.Detail != "":
						fmt.Fprintln(out, resp.Detail)
					case resp.Sent:
						fmt.Fprintln(out, "Test notification sent")
					default:
						fmt.Fprintln(out, "Notification not sent")
					}
					return nil
				}
				if !api.IsUnavailable(notifyErr) {
					return notifyErr
				}
			}

			cfg := ctx.configValue()
			if strings.TrimSpace(cfg.Notifications.NtfyTopic) == "" {
				fmt.Fprintln(out, "ntfy topic not configured")
				return nil
			}
			notifier := notifications.NewService(cfg)
			if err := notifier.Publish(cmd.Context(), notifications.EventTest, nil); err != nil {
				return fmt.Errorf("failed to send notification: %w", err)
			}
			fmt.Fprintln(out, "Test notification sent")
			return nil
		},
	}
}
