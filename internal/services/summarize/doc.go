// Package summarize turns speaker-labeled conversations into Markdown
// meeting documents using a chat completion model.
//
// Two prompts from the prompt store drive the work: a content prompt that
// extracts the summary, decisions, and action items, and a formatting prompt
// that normalizes the Markdown. The formatting pass is optional and degrades
// to a deterministic cleanup when disabled or failing.
package summarize
