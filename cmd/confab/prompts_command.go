package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"confab/internal/api"
	"confab/internal/prompts"
)

func newPromptsCommand(ctx *commandContext) *cobra.Command {
	promptsCmd := &cobra.Command{
		Use:   "prompts",
		Short: "Manage summarization prompt overrides",
	}

	promptsCmd.AddCommand(newPromptsListCommand(ctx))
	promptsCmd.AddCommand(newPromptsGetCommand(ctx))
	promptsCmd.AddCommand(newPromptsSetCommand(ctx))
	promptsCmd.AddCommand(newPromptsDeleteCommand(ctx))
	promptsCmd.AddCommand(newPromptsReloadCommand(ctx))

	return promptsCmd
}

func newPromptsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List prompt overrides",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := fetchPromptEntries(cmd, ctx, false)
			if err != nil {
				return err
			}
			if ctx.jsonMode() {
				return writeJSON(cmd, map[string]any{"prompts": entries})
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No prompt overrides configured")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				rows = append(rows, []string{entry.Key, promptPreview(entry.Value)})
			}
			table := renderTable([]string{"Key", "Value"}, rows, []columnAlignment{alignLeft, alignLeft})
			fmt.Fprint(cmd.OutOrStdout(), table)
			return nil
		},
	}
}

func newPromptsGetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print a prompt override",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]

			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			if client != nil {
				entry, fetchErr := client.Prompt(cmd.Context(), key)
				if fetchErr == nil {
					return printPromptEntry(cmd, ctx, entry)
				}
				if api.IsNotFound(fetchErr) {
					return fmt.Errorf("no prompt override for %q", key)
				}
				if !api.IsUnavailable(fetchErr) {
					return fetchErr
				}
			}

			store, err := openPromptStore(ctx)
			if err != nil {
				return err
			}
			value, ok := store.Get(key)
			if !ok {
				return fmt.Errorf("no prompt override for %q", key)
			}
			return printPromptEntry(cmd, ctx, api.PromptEntry{Key: key, Value: value})
		},
	}
}

func newPromptsSetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store a prompt override",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]

			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			if client != nil {
				entry, setErr := client.SetPrompt(cmd.Context(), key, value)
				if setErr == nil {
					if ctx.jsonMode() {
						return writeJSON(cmd, entry)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Prompt %q updated\n", entry.Key)
					return nil
				}
				if !api.IsUnavailable(setErr) {
					return setErr
				}
			}

			store, err := openPromptStore(ctx)
			if err != nil {
				return err
			}
			if err := store.Set(key, value); err != nil {
				return err
			}
			if ctx.jsonMode() {
				return writeJSON(cmd, api.PromptEntry{Key: key, Value: value})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Prompt %q updated\n", key)
			return nil
		},
	}
}

func newPromptsDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <key>",
		Short: "Remove a prompt override",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]

			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			if client != nil {
				deleteErr := client.DeletePrompt(cmd.Context(), key)
				if deleteErr == nil {
					fmt.Fprintf(cmd.OutOrStdout(), "Prompt %q deleted\n", key)
					return nil
				}
				if api.IsNotFound(deleteErr) {
					return fmt.Errorf("no prompt override for %q", key)
				}
				if !api.IsUnavailable(deleteErr) {
					return deleteErr
				}
			}

			store, err := openPromptStore(ctx)
			if err != nil {
				return err
			}
			if err := store.Delete(key); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Prompt %q deleted\n", key)
			return nil
		},
	}
}

func newPromptsReloadCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Reload prompt overrides from disk",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := fetchPromptEntries(cmd, ctx, true)
			if err != nil {
				return err
			}
			if ctx.jsonMode() {
				return writeJSON(cmd, map[string]any{"prompts": entries})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reloaded %d prompt overrides\n", len(entries))
			return nil
		},
	}
}

func fetchPromptEntries(cmd *cobra.Command, ctx *commandContext, reload bool) ([]api.PromptEntry, error) {
	client, err := ctx.apiClient()
	if err != nil {
		return nil, err
	}
	if client != nil {
		var entries []api.PromptEntry
		var fetchErr error
		if reload {
			entries, fetchErr = client.ReloadPrompts(cmd.Context())
		} else {
			entries, fetchErr = client.Prompts(cmd.Context())
		}
		if fetchErr == nil {
			return entries, nil
		}
		if !api.IsUnavailable(fetchErr) {
			return nil, fetchErr
		}
	}

	store, err := openPromptStore(ctx)
	if err != nil {
		return nil, err
	}
	if reload {
		if err := store.Reload(); err != nil {
			return nil, err
		}
	}
	return api.FromPromptEntries(store.List()), nil
}

func openPromptStore(ctx *commandContext) (*prompts.Store, error) {
	return prompts.NewStore(ctx.configValue().Prompts.Dir, nil)
}

func printPromptEntry(cmd *cobra.Command, ctx *commandContext, entry api.PromptEntry) error {
	if ctx.jsonMode() {
		return writeJSON(cmd, entry)
	}
	fmt.Fprintln(cmd.OutOrStdout(), entry.Value)
	return nil
}

// promptPreview compresses a prompt body to one table-friendly line.
func promptPreview(value string) string {
	line := strings.TrimSpace(value)
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = strings.TrimSpace(line[:idx])
	}
	if len(line) > 60 {
		line = line[:57] + "..."
	}
	return line
}
