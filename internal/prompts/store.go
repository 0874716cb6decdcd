package prompts

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"confab/internal/fileutil"
	"confab/internal/logging"
)

// Entry is one prompt with its dot-notation key.
type Entry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Store provides thread-safe access to a directory of prompt files. Keys map
// to relative paths: "summary.content" is stored as summary/content.txt.
type Store struct {
	dir    string
	logger *slog.Logger
	mu     sync.RWMutex
	values map[string]string
}

var keySegmentPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// NewStore opens the prompt directory, writes embedded defaults for any
// missing keys, and loads every prompt file into memory.
func NewStore(dir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "prompts")

	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("prompt directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create prompt directory: %w", err)
	}

	s := &Store{
		dir:    dir,
		logger: logger,
		values: make(map[string]string),
	}
	if err := s.seedDefaults(); err != nil {
		return nil, err
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Dir returns the directory backing the store.
func (s *Store) Dir() string {
	return s.dir
}

// Get returns the prompt stored under key.
func (s *Store) Get(key string) (string, bool) {
	key, err := normalizeKey(key)
	if err != nil {
		return "", false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	value, found := s.values[key]
	return value, found
}

// Set stores a prompt under key and writes it through to disk.
func (s *Store) Set(key, value string) error {
	key, err := normalizeKey(key)
	if err != nil {
		return err
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return errors.New("prompt content cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path, err := s.keyPath(key)
	if err != nil {
		return err
	}
	if err := writePromptFile(path, value); err != nil {
		return err
	}
	s.values[key] = value

	s.logger.Debug("stored prompt", logging.String("key", key), logging.Int("bytes", len(value)))
	return nil
}

// Delete removes a prompt and its backing file.
func (s *Store) Delete(key string) error {
	key, err := normalizeKey(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.values[key]; !exists {
		return fmt.Errorf("prompt %q not found", key)
	}
	path, err := s.keyPath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove prompt file: %w", err)
	}
	delete(s.values, key)

	s.logger.Debug("deleted prompt", logging.String("key", key))
	return nil
}

// List returns all prompts sorted by key.
func (s *Store) List() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]Entry, 0, len(s.values))
	for key, value := range s.values {
		entries = append(entries, Entry{Key: key, Value: value})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Key < entries[j].Key
	})
	return entries
}

// Reload replaces the in-memory map with a fresh scan of the directory.
func (s *Store) Reload() error {
	values := make(map[string]string)
	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".txt") {
			return nil
		}
		rel, err := filepath.Rel(s.dir, path)
		if err != nil {
			return err
		}
		key, ok := relToKey(rel)
		if !ok {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read prompt %s: %w", rel, err)
		}
		values[key] = strings.TrimSpace(string(data))
		return nil
	})
	if err != nil {
		return fmt.Errorf("scan prompt directory: %w", err)
	}

	s.mu.Lock()
	s.values = values
	s.mu.Unlock()

	s.logger.Debug("loaded prompts", logging.Int("prompt_count", len(values)), logging.String("dir", s.dir))
	return nil
}

// seedDefaults writes embedded prompts for keys that have no file yet.
// Existing files are never overwritten.
func (s *Store) seedDefaults() error {
	defaults, err := defaultPrompts()
	if err != nil {
		return err
	}
	for key, value := range defaults {
		path, err := s.keyPath(key)
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); err == nil {
			continue
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("stat prompt %s: %w", key, err)
		}
		if err := writePromptFile(path, value); err != nil {
			return err
		}
		s.logger.Debug("seeded default prompt", logging.String("key", key))
	}
	return nil
}

func (s *Store) keyPath(key string) (string, error) {
	key, err := normalizeKey(key)
	if err != nil {
		return "", err
	}
	parts := strings.Split(key, ".")
	last := len(parts) - 1
	return filepath.Join(s.dir, filepath.Join(parts[:last]...), parts[last]+".txt"), nil
}

func normalizeKey(key string) (string, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return "", errors.New("prompt key cannot be empty")
	}
	for _, segment := range strings.Split(key, ".") {
		if !keySegmentPattern.MatchString(segment) {
			return "", fmt.Errorf("invalid prompt key %q", key)
		}
	}
	return key, nil
}

func relToKey(rel string) (string, bool) {
	rel = strings.TrimSuffix(rel, ".txt")
	parts := strings.Split(rel, string(filepath.Separator))
	for _, part := range parts {
		if !keySegmentPattern.MatchString(part) {
			return "", false
		}
	}
	return strings.Join(parts, "."), true
}

// writePromptFile writes content atomically so a reload mid-save never
// observes a truncated prompt.
func writePromptFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create prompt directory: %w", err)
	}
	if err := fileutil.WriteAtomic(path, []byte(content+"\n"), 0o644); err != nil {
		return fmt.Errorf("write prompt file: %w", err)
	}
	return nil
}
