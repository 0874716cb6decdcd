package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"confab/internal/config"
)

// Store persists queue items and timing samples in a SQLite database under
// the log directory. All methods are safe for concurrent use; writes that
// collide with another connection's lock are retried with backoff.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode  = 5
	busyMaxAttempts = 5
	busyBaseDelay   = 10 * time.Millisecond
	busyMaxDelay    = 200 * time.Millisecond
)

// Open connects to (or creates) the queue database and verifies its schema.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.LogDir, "queue.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// execRetry runs a write statement, retrying while SQLite reports the
// database busy.
func (s *Store) execRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx = ensureContext(ctx)
	var res sql.Result
	err := withBusyRetry(ctx, func() (opErr error) {
		res, opErr = s.db.ExecContext(ctx, query, args...)
		return opErr
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// execDiscard is execRetry for statements whose result is irrelevant.
func (s *Store) execDiscard(ctx context.Context, query string, args ...any) error {
	ctx = ensureContext(ctx)
	return withBusyRetry(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query, args...)
		return err
	})
}

func withBusyRetry(ctx context.Context, op func() error) error {
	var err error
	for attempt, delay := 0, busyBaseDelay; ; attempt++ {
		err = op()
		if err == nil || !isSQLiteBusy(err) || attempt+1 >= busyMaxAttempts {
			return err
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if delay *= 2; delay > busyMaxDelay {
			delay = busyMaxDelay
		}
	}
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}
