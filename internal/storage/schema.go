package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/conorfennell/dailyhabit/internal/apperrors"
)

// schema is the base structure every database starts from. Columns added after
// the first release live in migrations so that old and new files converge
// through the same path.
const schema = `
-- The 'content' table is the reconciled catalog. Rows are never deleted.
CREATE TABLE IF NOT EXISTS content (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL,
    body TEXT NOT NULL
);

-- One row per day the app was opened on.
CREATE TABLE IF NOT EXISTS day_status (
    date_key TEXT PRIMARY KEY,          -- YYYY-MM-DD
    content_id INTEGER NOT NULL,
    completed INTEGER NOT NULL DEFAULT 0,
    completed_at TEXT,                  -- RFC 3339, UTC

    FOREIGN KEY(content_id) REFERENCES content(id)
);

CREATE TABLE IF NOT EXISTS catalog_version (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    version INTEGER NOT NULL DEFAULT 0,
    last_updated TEXT NOT NULL,
    item_count INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS user_preferences (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    reminders_enabled INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS generated_history (
    id TEXT PRIMARY KEY,
    request TEXT NOT NULL,
    body TEXT NOT NULL,
    created_at TEXT NOT NULL
);
`

// tables lists every table in drop order (children first).
var tables = []string{"day_status", "generated_history", "content", "catalog_version", "user_preferences"}

// migration is one additive schema step. When column is set the step is
// skipped if table already has it, which keeps every step idempotent.
type migration struct {
	name   string
	table  string
	column string
	stmt   string
}

// migrations are applied in order on every open. Never remove or reorder
// entries; append new ones.
var migrations = []migration{
	{
		name:   "content.release_key",
		table:  "content",
		column: "release_key",
		stmt:   `ALTER TABLE content ADD COLUMN release_key TEXT NOT NULL DEFAULT ''`,
	},
	{
		name:   "content.fingerprint",
		table:  "content",
		column: "fingerprint",
		stmt:   `ALTER TABLE content ADD COLUMN fingerprint TEXT NOT NULL DEFAULT ''`,
	},
	{
		name:   "user_preferences.schedules",
		table:  "user_preferences",
		column: "schedules",
		stmt:   `ALTER TABLE user_preferences ADD COLUMN schedules TEXT NOT NULL DEFAULT '[{"hour":8,"minute":0}]'`,
	},
	{
		name:   "user_preferences.external_schedule_ref",
		table:  "user_preferences",
		column: "external_schedule_ref",
		stmt:   `ALTER TABLE user_preferences ADD COLUMN external_schedule_ref TEXT`,
	},
	{
		name:  "idx_content_release_key",
		table: "content",
		stmt:  `CREATE INDEX IF NOT EXISTS idx_content_release_key ON content(release_key, id)`,
	},
	{
		name:  "idx_day_status_completed",
		table: "day_status",
		stmt:  `CREATE INDEX IF NOT EXISTS idx_day_status_completed ON day_status(completed, date_key)`,
	},
}

// initSchema creates the base tables, applies migrations and makes sure the
// singleton rows exist.
func initSchema(ctx context.Context, conn *sql.DB, log *zap.Logger, now time.Time) error {
	if _, err := conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	applyMigrations(ctx, conn, log, migrations)

	if err := ensureSingletons(ctx, conn, now); err != nil {
		return err
	}
	return nil
}

// applyMigrations runs each step independently. A failed step is logged and
// skipped: every step only adds structure, so the store keeps working on the
// schema it already has.
func applyMigrations(ctx context.Context, conn *sql.DB, log *zap.Logger, steps []migration) (applied, skipped int) {
	for _, m := range steps {
		if m.column != "" {
			exists, err := columnExists(ctx, conn, m.table, m.column)
			if err != nil {
				log.Warn("migration check failed, skipping",
					zap.String("migration", m.name),
					zap.Error(fmt.Errorf("%w: %w", apperrors.ErrSchemaMigration, err)))
				skipped++
				continue
			}
			if exists {
				skipped++
				continue
			}
		}

		if _, err := conn.ExecContext(ctx, m.stmt); err != nil {
			log.Warn("migration failed, skipping",
				zap.String("migration", m.name),
				zap.Error(fmt.Errorf("%w: %w", apperrors.ErrSchemaMigration, err)))
			skipped++
			continue
		}
		log.Debug("migration applied", zap.String("migration", m.name))
		applied++
	}

	log.Debug("schema migrations complete", zap.Int("applied", applied), zap.Int("skipped", skipped))
	return applied, skipped
}

// columnExists checks PRAGMA table_info for column.
func columnExists(ctx context.Context, conn *sql.DB, table, column string) (bool, error) {
	rows, err := conn.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, fmt.Errorf("failed to read table info for %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid       int
			name      string
			ctype     string
			notnull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			return false, fmt.Errorf("failed to scan table info for %s: %w", table, err)
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}

func ensureSingletons(ctx context.Context, conn *sql.DB, now time.Time) error {
	if _, err := conn.ExecContext(ctx, `
		INSERT OR IGNORE INTO catalog_version (id, version, last_updated, item_count)
		VALUES (1, 0, ?, 0)
	`, formatTime(now)); err != nil {
		return fmt.Errorf("failed to ensure catalog version row: %w", err)
	}
	if _, err := conn.ExecContext(ctx, `
		INSERT OR IGNORE INTO user_preferences (id) VALUES (1)
	`); err != nil {
		return fmt.Errorf("failed to ensure user preferences row: %w", err)
	}
	return nil
}
