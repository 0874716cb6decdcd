package workflow

import (
	"confab/internal/queue"
	"confab/internal/stage"
)

// StageSet bundles the concrete pipeline handlers the manager orchestrates.
type StageSet struct {
	Preparer    stage.Handler
	Transcriber stage.Handler
	Aligner     stage.Handler
	Summarizer  stage.Handler
}

type pipelineStage struct {
	name             string
	handler          stage.Handler
	startStatus      queue.Status
	processingStatus queue.Status
	doneStatus       queue.Status
}
