package logging

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// EventArchive journals stream events to disk as JSON lines so the daemon API
// can replay history after the in-memory ring buffer rolls over. A nil archive
// is valid and drops everything.
type EventArchive struct {
	path string

	mu  sync.Mutex
	out *os.File
	enc *json.Encoder
}

// NewEventArchive starts a fresh journal at path, truncating any previous
// run's contents. An empty path disables archiving and returns nil, nil.
func NewEventArchive(path string) (*EventArchive, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, nil
	}
	if err := ensureLogDir(path); err != nil {
		return nil, fmt.Errorf("ensure archive dir: %w", err)
	}
	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", path, err)
	}
	return &EventArchive{path: path, out: out, enc: json.NewEncoder(out)}, nil
}

// Append journals one event. Write failures are swallowed: losing archive
// history must never take down the logging pipeline.
func (a *EventArchive) Append(evt LogEvent) {
	if a == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.enc == nil && !a.reopen() {
		return
	}
	_ = a.enc.Encode(evt)
}

// ReadSince returns archived events with sequence numbers greater than since,
// at most limit of them (0 meaning all), plus the highest sequence seen while
// scanning.
func (a *EventArchive) ReadSince(since uint64, limit int) ([]LogEvent, uint64, error) {
	if a == nil {
		return nil, since, nil
	}
	in, err := os.Open(a.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, since, nil
		}
		return nil, since, fmt.Errorf("open archive %s: %w", a.path, err)
	}
	defer in.Close()

	var events []LogEvent
	highest := since
	dec := json.NewDecoder(in)
	for {
		var evt LogEvent
		if err := dec.Decode(&evt); err != nil {
			if errors.Is(err, io.EOF) {
				return events, highest, nil
			}
			return events, highest, fmt.Errorf("decode archive %s: %w", a.path, err)
		}
		if evt.Sequence > highest {
			highest = evt.Sequence
		}
		if evt.Sequence <= since {
			continue
		}
		events = append(events, evt)
		if limit > 0 && len(events) >= limit {
			return events, highest, nil
		}
	}
}

// Path returns the journal location, or "" for a nil archive.
func (a *EventArchive) Path() string {
	if a == nil {
		return ""
	}
	return a.path
}

// Close releases the journal file handle.
func (a *EventArchive) Close() error {
	if a == nil {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	var err error
	if a.out != nil {
		err = a.out.Close()
	}
	a.out = nil
	a.enc = nil
	return err
}

func (a *EventArchive) reopen() bool {
	out, err := os.OpenFile(a.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return false
	}
	a.out = out
	a.enc = json.NewEncoder(out)
	return true
}
