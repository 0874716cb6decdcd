package textutil

import (
	"regexp"
	"strings"
)

var headingPattern = regexp.MustCompile(`^(#{1,6})\s*(.+)$`)

// BasicMarkdownCleanup applies deterministic formatting fixes to generated
// markdown: heading markers get exactly one space before their text, every
// heading is followed by a blank line, and runs of three or more blank lines
// collapse to two. Used when no formatting model is available to restructure
// a document.
func BasicMarkdownCleanup(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	cleaned := make([]string, 0, len(lines))

	for i, line := range lines {
		trimmed := strings.TrimRight(line, " \t")
		if match := headingPattern.FindStringSubmatch(strings.TrimSpace(trimmed)); match != nil {
			cleaned = append(cleaned, match[1]+" "+strings.TrimSpace(match[2]))
			if i+1 < len(lines) && strings.TrimSpace(lines[i+1]) != "" {
				cleaned = append(cleaned, "")
			}
			continue
		}
		cleaned = append(cleaned, trimmed)
	}

	collapsed := make([]string, 0, len(cleaned))
	blanks := 0
	for _, line := range cleaned {
		if strings.TrimSpace(line) == "" {
			blanks++
			if blanks > 2 {
				continue
			}
			collapsed = append(collapsed, "")
			continue
		}
		blanks = 0
		collapsed = append(collapsed, line)
	}

	return strings.TrimSpace(strings.Join(collapsed, "\n"))
}

// StripCodeFences removes a code fence wrapping an entire document, including
// a language tag on the opening fence. Text that is not fully fenced is
// returned unchanged.
func StripCodeFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return text
	}
	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 {
		return text
	}
	if strings.TrimSpace(lines[len(lines)-1]) != "```" {
		return text
	}
	return strings.TrimSpace(strings.Join(lines[1:len(lines)-1], "\n"))
}
