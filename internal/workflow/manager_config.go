package workflow

import "confab/internal/queue"

// ConfigureStages registers the concrete stage handlers the workflow will run.
// Stages claim items from their landing status and park them at the next one;
// when auto-summarize is off, alignment completes the item directly and the
// summarization stage only picks up items re-queued on demand.
func (m *Manager) ConfigureStages(set StageSet) {
	var stages []pipelineStage

	if set.Preparer != nil {
		stages = append(stages, pipelineStage{
			name:             "preprocessing",
			handler:          set.Preparer,
			startStatus:      queue.StatusPending,
			processingStatus: queue.StatusPreparing,
			doneStatus:       queue.StatusPrepared,
		})
	}
	if set.Transcriber != nil {
		stages = append(stages, pipelineStage{
			name:             "transcription",
			handler:          set.Transcriber,
			startStatus:      queue.StatusPrepared,
			processingStatus: queue.StatusTranscribing,
			doneStatus:       queue.StatusTranscribed,
		})
	}
	if set.Aligner != nil {
		alignedDone := queue.StatusAligned
		if set.Summarizer == nil || !m.cfg.Workflow.AutoSummarize {
			alignedDone = queue.StatusCompleted
		}
		stages = append(stages, pipelineStage{
			name:             "alignment",
			handler:          set.Aligner,
			startStatus:      queue.StatusTranscribed,
			processingStatus: queue.StatusAligning,
			doneStatus:       alignedDone,
		})
	}
	if set.Summarizer != nil {
		stages = append(stages, pipelineStage{
			name:             "summarization",
			handler:          set.Summarizer,
			startStatus:      queue.StatusAligned,
			processingStatus: queue.StatusSummarizing,
			doneStatus:       queue.StatusCompleted,
		})
	}

	byProc := make(map[queue.Status]pipelineStage, len(stages))
	claimOrder := make([]queue.Status, 0, len(stages))
	for _, stg := range stages {
		byProc[stg.processingStatus] = stg
		claimOrder = append(claimOrder, stg.startStatus)
	}

	m.mu.Lock()
	m.stages = stages
	m.stageByProc = byProc
	m.claimOrder = claimOrder
	m.mu.Unlock()
}
