// Package conversation holds the speaker-attribution core: aligning
// transcript segments against an independently produced diarization
// timeline, merging consecutive same-speaker utterances, and the
// timestamp/CSV conventions the rest of the pipeline persists.
//
// Align and MergeConsecutive are pure functions over their inputs so
// stages can recompute a conversation at any time (for example after a
// manual speaker correction) and always get the same answer for the
// same artifacts.
package conversation
