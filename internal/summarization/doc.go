// Package summarization renders the aligned conversation for the summary
// model and writes the returned markdown next to the other staging artifacts.
// The document file is named after the recording title. A completed run
// publishes a document-ready notification.
package summarization
