package prompts

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
)

// Keys used by the summarization stage.
const (
	KeySummaryContent    = "summary.content"
	KeySummaryFormatting = "summary.formatting"
)

//go:embed defaults
var defaultsFS embed.FS

// defaultPrompts returns the embedded prompts keyed by dot notation.
func defaultPrompts() (map[string]string, error) {
	values := make(map[string]string)
	err := fs.WalkDir(defaultsFS, "defaults", func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !strings.HasSuffix(path, ".txt") {
			return nil
		}
		data, err := defaultsFS.ReadFile(path)
		if err != nil {
			return err
		}
		rel := strings.TrimPrefix(path, "defaults/")
		key := strings.ReplaceAll(strings.TrimSuffix(rel, ".txt"), "/", ".")
		values[key] = strings.TrimSpace(string(data))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read embedded prompts: %w", err)
	}
	return values, nil
}
