package logging

import "strings"

// FormatSubject builds the "Worker-1 · Item #7 (transcribing)" subject that
// prefixes console lines. Any of the three parts may be empty; the worker name
// is title-cased so worker-1 reads as Worker-1.
func FormatSubject(worker, itemID, stage string) string {
	var b strings.Builder
	if w := strings.TrimSpace(worker); w != "" {
		b.WriteString(strings.ToUpper(w[:1]))
		b.WriteString(strings.ToLower(w[1:]))
	}
	itemID = strings.TrimSpace(itemID)
	stage = strings.TrimSpace(stage)
	if itemID == "" && stage == "" {
		return b.String()
	}
	if b.Len() > 0 {
		b.WriteString(" · ")
	}
	switch {
	case itemID == "":
		b.WriteString(stage)
	case stage == "":
		b.WriteString("Item #" + itemID)
	default:
		b.WriteString("Item #" + itemID + " (" + stage + ")")
	}
	return b.String()
}
