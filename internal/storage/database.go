package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite" // Registers the sqlite driver

	"github.com/conorfennell/dailyhabit/internal/apperrors"
	"github.com/conorfennell/dailyhabit/internal/clock"
)

// MemoryPath opens a private in-memory database, mostly useful in tests.
const MemoryPath = ":memory:"

// DB represents a wrapper around the SQL database connection.
//
// A DB is meant to be opened once per process and handed to every component
// that needs it. It holds a single connection, so statements from concurrent
// callers are serialized and each write is one statement or one transaction.
type DB struct {
	conn  *sql.DB
	path  string
	log   *zap.Logger
	clock clock.Clock
}

// Option configures Open.
type Option func(*DB)

// WithLogger sets the logger used for migrations and store events.
func WithLogger(log *zap.Logger) Option {
	return func(db *DB) {
		if log != nil {
			db.log = log
		}
	}
}

// WithClock sets the clock used for completed_at and version timestamps.
func WithClock(c clock.Clock) Option {
	return func(db *DB) {
		if c != nil {
			db.clock = c
		}
	}
}

// Open creates a new database connection and ensures the schema is up to date.
// It is safe to call repeatedly on the same file. Any failure is reported as
// apperrors.ErrStorageUnavailable and nothing is retried.
func Open(ctx context.Context, path string, opts ...Option) (*DB, error) {
	db := &DB{
		path:  path,
		log:   zap.NewNop(),
		clock: clock.System{},
	}
	for _, opt := range opts {
		opt(db)
	}

	conn, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %w", apperrors.ErrStorageUnavailable, err)
	}

	// SQLite allows one writer; a single connection also keeps an in-memory
	// database alive for the life of the handle.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: failed to connect to database: %w", apperrors.ErrStorageUnavailable, err)
	}

	if path != MemoryPath {
		if _, err := conn.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
			conn.Close()
			return nil, fmt.Errorf("%w: failed to enable WAL: %w", apperrors.ErrStorageUnavailable, err)
		}
	}

	if err := initSchema(ctx, conn, db.log, db.now()); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: %w", apperrors.ErrStorageUnavailable, err)
	}

	db.conn = conn
	db.log.Debug("database opened", zap.String("path", path))
	return db, nil
}

// dsn builds a modernc connection string. Foreign keys and the busy timeout
// are per-connection settings, so they go in the DSN rather than a one-off Exec.
func dsn(path string) string {
	const pragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if path == MemoryPath {
		return "file::memory:?" + pragmas
	}
	return "file:" + path + "?" + pragmas
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}
	return db.conn.Close()
}

// Path returns the file the store was opened on.
func (db *DB) Path() string {
	return db.path
}

func (db *DB) now() time.Time {
	return db.clock.Now().UTC()
}

// Within runs fn inside a transaction, committing when fn returns nil and
// rolling back otherwise.
func (db *DB) Within(ctx context.Context, fn func(tx *Tx) error) error {
	sqlTx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(&Tx{tx: sqlTx, now: db.now}); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			db.log.Warn("rollback failed", zap.Error(rbErr))
		}
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Reset drops every table and recreates an empty store. It destroys all user
// history and exists only as an explicit recovery action.
func (db *DB) Reset(ctx context.Context) error {
	db.log.Warn("resetting store", zap.String("path", db.path))

	err := db.Within(ctx, func(tx *Tx) error {
		for _, table := range tables {
			if _, err := tx.tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
				return fmt.Errorf("failed to drop table %s: %w", table, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	return initSchema(ctx, db.conn, db.log, db.now())
}

// Remove deletes the database file and its WAL side files. Use it when Open
// keeps failing and the data cannot be recovered; the next Open starts fresh.
func Remove(path string) error {
	if path == MemoryPath || strings.TrimSpace(path) == "" {
		return nil
	}

	var errs []error
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("failed to remove %s: %w", p, err))
		}
	}
	return errors.Join(errs...)
}

// Tx is a store transaction handed out by Within.
type Tx struct {
	tx  *sql.Tx
	now func() time.Time
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", s, err)
	}
	return t, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
