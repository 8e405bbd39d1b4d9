package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/conorfennell/dailyhabit/internal/apperrors"
	"github.com/conorfennell/dailyhabit/internal/domain"
)

// SaveGenerated stores a generated text together with the request that
// produced it.
func (db *DB) SaveGenerated(ctx context.Context, request, text string) (domain.GeneratedEntry, error) {
	if strings.TrimSpace(request) == "" || strings.TrimSpace(text) == "" {
		return domain.GeneratedEntry{}, fmt.Errorf("%w: request and text are required", apperrors.ErrInvalidInput)
	}

	entry := domain.GeneratedEntry{
		ID:        uuid.NewString(),
		Request:   request,
		Text:      text,
		CreatedAt: db.now(),
	}
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO generated_history (id, request, body, created_at)
		VALUES (?, ?, ?, ?)
	`, entry.ID, entry.Request, entry.Text, formatTime(entry.CreatedAt))
	if err != nil {
		return domain.GeneratedEntry{}, fmt.Errorf("failed to save generated entry: %w", err)
	}
	return entry, nil
}

// ListGenerated returns saved entries, newest first.
func (db *DB) ListGenerated(ctx context.Context) ([]domain.GeneratedEntry, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, request, body, created_at
		FROM generated_history
		ORDER BY created_at DESC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list generated entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.GeneratedEntry
	for rows.Next() {
		var (
			e         domain.GeneratedEntry
			createdAt string
		)
		if err := rows.Scan(&e.ID, &e.Request, &e.Text, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan generated entry: %w", err)
		}
		if e.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DeleteGenerated removes a saved entry. Generated history is the only user
// data that can be deleted one row at a time.
func (db *DB) DeleteGenerated(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM generated_history WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete generated entry %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected for generated entry %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("generated entry %s: %w", id, apperrors.ErrNotFound)
	}
	return nil
}
