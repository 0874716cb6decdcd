package textutil

import "strings"

// SanitizeFileName makes a recording title safe to embed in artifact and
// export file names. Path separators, colons, and asterisks become dashes;
// characters that are outright hostile to shells and SMB mounts are dropped.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch r {
		case '/', '\\', ':', '*':
			b.WriteByte('-')
		case '?', '"', '<', '>', '|':
			// dropped
		default:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
