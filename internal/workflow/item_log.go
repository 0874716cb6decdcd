package workflow

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"confab/internal/config"
	"confab/internal/logging"
	"confab/internal/queue"
)

// ItemLogger manages the dedicated log file each queue item accumulates as it
// moves through the pipeline.
type ItemLogger struct {
	baseDir string
	hub     *logging.StreamHub
	cfg     *config.Config
}

// NewItemLogger creates a new item logger rooted under the log directory.
func NewItemLogger(cfg *config.Config, hub *logging.StreamHub) *ItemLogger {
	dir := ""
	if cfg != nil && strings.TrimSpace(cfg.Paths.LogDir) != "" {
		dir = filepath.Join(cfg.Paths.LogDir, "items")
	}
	return &ItemLogger{
		baseDir: dir,
		hub:     hub,
		cfg:     cfg,
	}
}

// Path returns the log file for an item. The name derives from the item ID
// alone so the API can locate it without a database column.
func (l *ItemLogger) Path(item *queue.Item) string {
	if l == nil || item == nil || l.baseDir == "" {
		return ""
	}
	return filepath.Join(l.baseDir, fmt.Sprintf("item-%d.log", item.ID))
}

// Ensure prepares the log directory and returns the item's log path.
func (l *ItemLogger) Ensure(item *queue.Item) (string, error) {
	if item == nil {
		return "", fmt.Errorf("queue item is nil")
	}
	if strings.TrimSpace(l.baseDir) == "" {
		return "", fmt.Errorf("item log directory not configured")
	}
	path := l.Path(item)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("ensure item log directory: %w", err)
	}
	return path, nil
}

// CreateHandler builds a slog.Handler appending to the specified path. Records
// also publish to the daemon stream so live tails observe per-item progress.
func (l *ItemLogger) CreateHandler(path string) (slog.Handler, error) {
	level := "info"
	format := "json"
	if l.cfg != nil {
		if strings.TrimSpace(l.cfg.Logging.Level) != "" {
			level = l.cfg.Logging.Level
		}
		if strings.TrimSpace(l.cfg.Logging.Format) != "" {
			format = l.cfg.Logging.Format
		}
	}
	logger, err := logging.New(logging.Options{
		Level:            level,
		Format:           format,
		OutputPaths:      []string{path},
		ErrorOutputPaths: []string{path},
	})
	if err != nil {
		return nil, err
	}
	return logging.WithStream(logger, l.hub).Handler(), nil
}
