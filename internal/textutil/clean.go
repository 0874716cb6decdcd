package textutil

import (
	"strings"
	"unicode"
)

// CleanSegmentText normalizes a raw transcript segment: whitespace runs
// collapse to single spaces, the first letter is capitalized, and a period is
// appended when the text does not already end in terminal punctuation.
// Returns "" when nothing remains after cleaning; callers drop such segments.
func CleanSegmentText(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return ""
	}
	runes := []rune(text)
	runes[0] = unicode.ToUpper(runes[0])
	switch runes[len(runes)-1] {
	case '.', '!', '?':
		return string(runes)
	}
	return string(runes) + "."
}
