package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"confab/internal/api"
	"confab/internal/queue"
)

func newRealignCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "realign <itemID>",
		Short: "Re-run speaker alignment from existing transcripts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRequeueJob(cmd, ctx, args[0], requeueJobSpec{
				verb:   "realignment",
				target: queue.StatusTranscribed,
				stage:  "Realign requested",
				apiCall: func(jobCtx context.Context, client *api.Client, id int64) (api.QueueItem, error) {
					return client.Realign(jobCtx, id)
				},
				artifactGate: func(item *queue.Item) error {
					if item.TranscriptFile == "" {
						return fmt.Errorf("item %d has no transcript artifacts", item.ID)
					}
					return nil
				},
			})
		},
	}
}

func newSummarizeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "summarize <itemID>",
		Short: "Re-run summarization from the aligned conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRequeueJob(cmd, ctx, args[0], requeueJobSpec{
				verb:   "summarization",
				target: queue.StatusAligned,
				stage:  "Summarize requested",
				apiCall: func(jobCtx context.Context, client *api.Client, id int64) (api.QueueItem, error) {
					return client.Summarize(jobCtx, id)
				},
				artifactGate: func(item *queue.Item) error {
					if item.ConversationFile == "" {
						return fmt.Errorf("item %d has no conversation artifact", item.ID)
					}
					return nil
				},
			})
		},
	}
}

type requeueJobSpec struct {
	verb         string
	target       queue.Status
	stage        string
	apiCall      func(ctx context.Context, client *api.Client, id int64) (api.QueueItem, error)
	artifactGate func(item *queue.Item) error
}

// runRequeueJob asks the daemon to rewind an item to an earlier status, or
// performs the same transition against the local store when the daemon is
// down. The artifact gate mirrors the daemon's own checks so offline requests
// fail the same way.
func runRequeueJob(cmd *cobra.Command, ctx *commandContext, arg string, spec requeueJobSpec) error {
	ids, err := parsePositiveIDs([]string{arg})
	if err != nil {
		return err
	}
	id := ids[0]

	client, err := ctx.apiClient()
	if err != nil {
		return err
	}
	if client != nil {
		item, callErr := spec.apiCall(cmd.Context(), client, id)
		if callErr == nil {
			return printRequeuedJob(cmd, ctx, item, id, spec.verb)
		}
		if api.IsNotFound(callErr) {
			return fmt.Errorf("queue item %d not found", id)
		}
		if !api.IsUnavailable(callErr) {
			return callErr
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
	if err := spec.artifactGate(item); err != nil {
		return err
	}
	ok, err := store.Requeue(cmd.Context(), id, spec.target, spec.stage)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("item %d is mid-stage", id)
	}
	refreshed, err := store.GetByID(cmd.Context(), id)
	if err != nil || refreshed == nil {
		return printRequeuedJob(cmd, ctx, api.QueueItem{ID: id}, id, spec.verb)
	}
	return printRequeuedJob(cmd, ctx, api.FromQueueItem(refreshed), id, spec.verb)
}

func printRequeuedJob(cmd *cobra.Command, ctx *commandContext, item api.QueueItem, id int64, verb string) error {
	if ctx.jsonMode() {
		return writeJSON(cmd, item)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Item %d queued for %s\n", id, verb)
	return nil
}
