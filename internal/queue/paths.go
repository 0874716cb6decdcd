package queue

import (
	"fmt"
	"path/filepath"
	"strings"

	"confab/internal/textutil"
)

// StagingRoot returns the per-item staging directory rooted at base. The
// segment always carries the item ID so two recordings with the same title
// never share artifacts.
func (i Item) StagingRoot(base string) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return ""
	}
	segment := fmt.Sprintf("item-%d", i.ID)
	if title := sanitizeSegment(i.Title); title != "" {
		segment = segment + "-" + strings.ToLower(title)
	}
	return filepath.Join(base, segment)
}

func sanitizeSegment(value string) string {
	value = textutil.SanitizeFileName(value)
	if value == "" {
		return ""
	}
	value = strings.ReplaceAll(value, " ", "-")
	value = strings.Trim(value, "-_")
	return value
}
