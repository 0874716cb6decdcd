// Package alignment merges the transcript and diarization artifacts into a
// speaker-attributed conversation CSV. Transcript segments with no
// overlapping speaker interval are attributed to Unknown, and consecutive
// utterances from one speaker collapse into a single row. A completed run
// publishes a conversation-ready notification.
package alignment
