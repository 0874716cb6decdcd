package conversation

import (
	"fmt"
	"strings"
)

// FormatForModel renders the conversation one utterance per line in the
// shape the summarizing model receives:
//
//	[MM:SS-MM:SS] Speaker: text
func FormatForModel(utterances []Utterance) string {
	lines := make([]string, len(utterances))
	for i, utt := range utterances {
		lines[i] = fmt.Sprintf("[%s-%s] %s: %s",
			FormatTimestamp(utt.Start), FormatTimestamp(utt.End), utt.Speaker, utt.Text)
	}
	return strings.Join(lines, "\n")
}
