package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/conorfennell/dailyhabit/internal/apperrors"
	"github.com/conorfennell/dailyhabit/internal/domain"
)

const contentColumns = `id, title, body, release_key, fingerprint`

func scanContent(row interface{ Scan(...any) error }) (*domain.ContentItem, error) {
	var item domain.ContentItem
	if err := row.Scan(&item.ID, &item.Title, &item.Body, &item.ReleaseKey, &item.Fingerprint); err != nil {
		return nil, err
	}
	return &item, nil
}

func findContent(ctx context.Context, q querier, what, query string, args ...any) (*domain.ContentItem, error) {
	item, err := scanContent(q.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Content not found
		}
		return nil, fmt.Errorf("failed to find content by %s: %w", what, err)
	}
	return item, nil
}

func contentByReleaseKey(ctx context.Context, q querier, key string) (*domain.ContentItem, error) {
	return findContent(ctx, q, "release key "+key, `
		SELECT `+contentColumns+`
		FROM content WHERE release_key = ?
		ORDER BY id ASC LIMIT 1
	`, key)
}

func insertContent(ctx context.Context, q querier, item domain.ContentItem) (int64, error) {
	res, err := q.ExecContext(ctx, `
		INSERT INTO content (title, body, release_key, fingerprint)
		VALUES (?, ?, ?, ?)
	`, item.Title, item.Body, item.ReleaseKey, item.Fingerprint)
	if err != nil {
		return 0, fmt.Errorf("failed to insert content %q: %w", item.ReleaseKey, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for content %q: %w", item.ReleaseKey, err)
	}
	return id, nil
}

func updateContent(ctx context.Context, q querier, id int64, item domain.ContentItem) error {
	res, err := q.ExecContext(ctx, `
		UPDATE content
		SET title = ?, body = ?, release_key = ?, fingerprint = ?
		WHERE id = ?
	`, item.Title, item.Body, item.ReleaseKey, item.Fingerprint, id)
	if err != nil {
		return fmt.Errorf("failed to update content %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected for content %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("content %d: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

// GetContentCount returns the number of catalog rows.
func (db *DB) GetContentCount(ctx context.Context) (int, error) {
	var count int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM content`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count content: %w", err)
	}
	return count, nil
}

// GetContentByID retrieves a catalog row by its storage id.
func (db *DB) GetContentByID(ctx context.Context, id int64) (*domain.ContentItem, error) {
	return findContent(ctx, db.conn, fmt.Sprintf("id %d", id), `
		SELECT `+contentColumns+` FROM content WHERE id = ?
	`, id)
}

// GetContentByReleaseKey retrieves the item scheduled for key. When several
// items share a release key the lowest id wins.
func (db *DB) GetContentByReleaseKey(ctx context.Context, key string) (*domain.ContentItem, error) {
	return contentByReleaseKey(ctx, db.conn, key)
}

// GetMostRecentContentBefore returns the newest item released on or before
// key. Rows without a release key are never considered.
func (db *DB) GetMostRecentContentBefore(ctx context.Context, key string) (*domain.ContentItem, error) {
	return findContent(ctx, db.conn, "release key <= "+key, `
		SELECT `+contentColumns+`
		FROM content
		WHERE release_key != '' AND release_key <= ?
		ORDER BY release_key DESC, id ASC
		LIMIT 1
	`, key)
}

// GetContentByOrdinal returns the n-th catalog row (zero-based) ordered by id.
func (db *DB) GetContentByOrdinal(ctx context.Context, n int) (*domain.ContentItem, error) {
	return findContent(ctx, db.conn, fmt.Sprintf("ordinal %d", n), `
		SELECT `+contentColumns+`
		FROM content
		ORDER BY id ASC
		LIMIT 1 OFFSET ?
	`, n)
}

// InsertContent adds a catalog row and returns its id.
func (db *DB) InsertContent(ctx context.Context, item domain.ContentItem) (int64, error) {
	return insertContent(ctx, db.conn, item)
}

// UpdateContent overwrites the fields of an existing row, keeping its id.
func (db *DB) UpdateContent(ctx context.Context, id int64, item domain.ContentItem) error {
	return updateContent(ctx, db.conn, id, item)
}

// GetContentByReleaseKey is the transactional variant used by reconciliation.
func (tx *Tx) GetContentByReleaseKey(ctx context.Context, key string) (*domain.ContentItem, error) {
	return contentByReleaseKey(ctx, tx.tx, key)
}

// InsertContent is the transactional variant used by reconciliation.
func (tx *Tx) InsertContent(ctx context.Context, item domain.ContentItem) (int64, error) {
	return insertContent(ctx, tx.tx, item)
}

// UpdateContent is the transactional variant used by reconciliation.
func (tx *Tx) UpdateContent(ctx context.Context, id int64, item domain.ContentItem) error {
	return updateContent(ctx, tx.tx, id, item)
}

// GetCatalogVersion reads the catalog version singleton.
func (db *DB) GetCatalogVersion(ctx context.Context) (domain.CatalogVersion, error) {
	var (
		cv          domain.CatalogVersion
		lastUpdated string
	)
	err := db.conn.QueryRowContext(ctx, `
		SELECT version, last_updated, item_count FROM catalog_version WHERE id = 1
	`).Scan(&cv.Version, &lastUpdated, &cv.ItemCount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.CatalogVersion{}, nil
		}
		return domain.CatalogVersion{}, fmt.Errorf("failed to get catalog version: %w", err)
	}
	if cv.LastUpdated, err = parseTime(lastUpdated); err != nil {
		return domain.CatalogVersion{}, err
	}
	return cv, nil
}

// SetCatalogVersion records version as applied with count items. The stored
// version never decreases; a lower version is ignored.
func (db *DB) SetCatalogVersion(ctx context.Context, version, count int) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO catalog_version (id, version, last_updated, item_count)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			version = excluded.version,
			last_updated = excluded.last_updated,
			item_count = excluded.item_count
		WHERE excluded.version >= catalog_version.version
	`, version, formatTime(db.now()), count)
	if err != nil {
		return fmt.Errorf("failed to set catalog version %d: %w", version, err)
	}
	return nil
}
