package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/conorfennell/dailyhabit/internal/apperrors"
	"github.com/conorfennell/dailyhabit/internal/domain"
)

func scanDayStatus(row interface{ Scan(...any) error }) (*domain.DayStatus, error) {
	var (
		ds          domain.DayStatus
		completed   int
		completedAt sql.NullString
	)
	if err := row.Scan(&ds.DateKey, &ds.ContentID, &completed, &completedAt); err != nil {
		return nil, err
	}
	ds.Completed = completed == 1
	if completedAt.Valid {
		t, err := parseTime(completedAt.String)
		if err != nil {
			return nil, err
		}
		ds.CompletedAt = &t
	}
	return &ds, nil
}

func dayStatus(ctx context.Context, q querier, dateKey string) (*domain.DayStatus, error) {
	ds, err := scanDayStatus(q.QueryRowContext(ctx, `
		SELECT date_key, content_id, completed, completed_at
		FROM day_status WHERE date_key = ?
	`, dateKey))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Day not visited yet
		}
		return nil, fmt.Errorf("failed to get day status for %s: %w", dateKey, err)
	}
	return ds, nil
}

// GetDayStatus retrieves the log entry for dateKey, or nil if the day was
// never visited.
func (db *DB) GetDayStatus(ctx context.Context, dateKey string) (*domain.DayStatus, error) {
	return dayStatus(ctx, db.conn, dateKey)
}

// UpsertDayStatus writes the entry for dateKey, overwriting content, completion
// and completion time if a row already exists.
func (db *DB) UpsertDayStatus(ctx context.Context, dateKey string, contentID int64, completed bool) error {
	var completedAt any
	if completed {
		completedAt = formatTime(db.now())
	}

	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO day_status (date_key, content_id, completed, completed_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(date_key) DO UPDATE SET
			content_id = excluded.content_id,
			completed = excluded.completed,
			completed_at = excluded.completed_at
	`, dateKey, contentID, boolToInt(completed), completedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert day status for %s: %w", dateKey, err)
	}
	return nil
}

// AssignDay records contentID as the item for dateKey unless the day already
// has one, and returns whichever row is stored. The first assignment of a day
// always wins, even with concurrent callers.
func (db *DB) AssignDay(ctx context.Context, dateKey string, contentID int64) (domain.DayStatus, error) {
	var stored *domain.DayStatus
	err := db.Within(ctx, func(tx *Tx) error {
		if _, err := tx.tx.ExecContext(ctx, `
			INSERT INTO day_status (date_key, content_id, completed)
			VALUES (?, ?, 0)
			ON CONFLICT(date_key) DO NOTHING
		`, dateKey, contentID); err != nil {
			return fmt.Errorf("failed to assign content %d to %s: %w", contentID, dateKey, err)
		}

		ds, err := dayStatus(ctx, tx.tx, dateKey)
		if err != nil {
			return err
		}
		if ds == nil {
			return fmt.Errorf("day status for %s missing after assignment: %w", dateKey, apperrors.ErrNotFound)
		}
		stored = ds
		return nil
	})
	if err != nil {
		return domain.DayStatus{}, err
	}
	return *stored, nil
}

// MarkCompleted flips dateKey to completed. The first completion time is kept
// when the day is completed again. Returns apperrors.ErrNotFound when the day
// has no row.
func (db *DB) MarkCompleted(ctx context.Context, dateKey string) (domain.DayStatus, error) {
	var stored *domain.DayStatus
	err := db.Within(ctx, func(tx *Tx) error {
		res, err := tx.tx.ExecContext(ctx, `
			UPDATE day_status
			SET completed = 1, completed_at = COALESCE(completed_at, ?)
			WHERE date_key = ?
		`, formatTime(tx.now()), dateKey)
		if err != nil {
			return fmt.Errorf("failed to mark %s completed: %w", dateKey, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read rows affected for %s: %w", dateKey, err)
		}
		if n == 0 {
			return fmt.Errorf("day status for %s: %w", dateKey, apperrors.ErrNotFound)
		}

		ds, err := dayStatus(ctx, tx.tx, dateKey)
		if err != nil {
			return err
		}
		stored = ds
		return nil
	})
	if err != nil {
		return domain.DayStatus{}, err
	}

	db.log.Debug("day completed", zap.String("date_key", dateKey))
	return *stored, nil
}

// GetCompletedKeysInRange returns the completed days between startKey and
// endKey inclusive.
func (db *DB) GetCompletedKeysInRange(ctx context.Context, startKey, endKey string) (map[string]struct{}, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT date_key FROM day_status
		WHERE completed = 1 AND date_key >= ? AND date_key <= ?
	`, startKey, endKey)
	if err != nil {
		return nil, fmt.Errorf("failed to get completed days between %s and %s: %w", startKey, endKey, err)
	}
	defer rows.Close()

	keys := make(map[string]struct{})
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan completed day: %w", err)
		}
		keys[key] = struct{}{}
	}
	return keys, rows.Err()
}

// CompletedKeys returns every completed day in ascending order.
func (db *DB) CompletedKeys(ctx context.Context) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT date_key FROM day_status
		WHERE completed = 1
		ORDER BY date_key ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get completed days: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan completed day: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// CountCompleted returns the number of completed days.
func (db *DB) CountCompleted(ctx context.Context) (int, error) {
	var count int
	if err := db.conn.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM day_status WHERE completed = 1
	`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count completed days: %w", err)
	}
	return count, nil
}
