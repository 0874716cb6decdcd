package conversation

import "strings"

// MergeConsecutive collapses runs of consecutive utterances that share a
// speaker into one utterance spanning the run: text is space-joined and the
// end timestamp extends to the last row of the run. A speaker change always
// flushes the current run, so a returning speaker starts a new row rather
// than folding into an earlier one.
func MergeConsecutive(utterances []Utterance) []Utterance {
	if len(utterances) == 0 {
		return nil
	}
	merged := make([]Utterance, 0, len(utterances))
	current := utterances[0]
	current.Text = strings.TrimSpace(current.Text)
	for _, utt := range utterances[1:] {
		text := strings.TrimSpace(utt.Text)
		if utt.Speaker == current.Speaker {
			current.Text += " " + text
			current.End = utt.End
			continue
		}
		current.Text = strings.TrimSpace(current.Text)
		merged = append(merged, current)
		current = utt
		current.Text = text
	}
	current.Text = strings.TrimSpace(current.Text)
	return append(merged, current)
}
