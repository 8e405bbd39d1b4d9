package storage

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conorfennell/dailyhabit/internal/apperrors"
	"github.com/conorfennell/dailyhabit/internal/clock"
)

func TestUpsertDayStatus_OneRowPerDay(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	a := insertTestContent(t, db, "A", "2025-09-01")
	b := insertTestContent(t, db, "B", "2025-09-02")

	require.NoError(t, db.UpsertDayStatus(ctx, "2025-09-01", a, false))
	require.NoError(t, db.UpsertDayStatus(ctx, "2025-09-01", b, true))

	ds, err := db.GetDayStatus(ctx, "2025-09-01")
	require.NoError(t, err)
	require.NotNil(t, ds)
	assert.Equal(t, b, ds.ContentID)
	assert.True(t, ds.Completed)
	assert.NotNil(t, ds.CompletedAt)

	var rows int
	require.NoError(t, db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM day_status`).Scan(&rows))
	assert.Equal(t, 1, rows)
}

func TestAssignDay_FirstWriterWins(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	a := insertTestContent(t, db, "A", "2025-09-01")
	b := insertTestContent(t, db, "B", "2025-09-02")

	ds, err := db.AssignDay(ctx, "2025-09-01", a)
	require.NoError(t, err)
	assert.Equal(t, a, ds.ContentID)
	assert.False(t, ds.Completed)
	assert.Nil(t, ds.CompletedAt)

	ds, err = db.AssignDay(ctx, "2025-09-01", b)
	require.NoError(t, err)
	assert.Equal(t, a, ds.ContentID, "a second assignment must not replace the first")
}

func TestAssignDay_Concurrent(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	ids := make([]int64, 8)
	for i := range ids {
		ids[i] = insertTestContent(t, db, fmt.Sprintf("Item %d", i), "2025-09-01")
	}

	var wg sync.WaitGroup
	results := make([]int64, len(ids))
	errs := make([]error, len(ids))
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id int64) {
			defer wg.Done()
			ds, err := db.AssignDay(ctx, "2025-09-01", id)
			results[i] = ds.ContentID
			errs[i] = err
		}(i, id)
	}
	wg.Wait()

	for i := range ids {
		require.NoError(t, errs[i])
		assert.Equal(t, results[0], results[i], "every caller must observe the same assignment")
	}
}

func TestMarkCompleted(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t, WithClock(newStepClock()))

	id := insertTestContent(t, db, "A", "2025-09-01")
	_, err := db.AssignDay(ctx, "2025-09-01", id)
	require.NoError(t, err)

	first, err := db.MarkCompleted(ctx, "2025-09-01")
	require.NoError(t, err)
	assert.True(t, first.Completed)
	require.NotNil(t, first.CompletedAt)

	second, err := db.MarkCompleted(ctx, "2025-09-01")
	require.NoError(t, err)
	assert.True(t, second.Completed)
	require.NotNil(t, second.CompletedAt)
	assert.True(t, first.CompletedAt.Equal(*second.CompletedAt), "completion time must not move")

	_, err = db.MarkCompleted(ctx, "2025-09-02")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCompletedAtIsUTC(t *testing.T) {
	ctx := context.Background()
	zone := time.FixedZone("UTC+10", 10*60*60)
	db := newTestDB(t, WithClock(clock.Fixed(time.Date(2025, 9, 1, 7, 30, 0, 0, zone))))

	id := insertTestContent(t, db, "A", "2025-09-01")
	_, err := db.AssignDay(ctx, "2025-09-01", id)
	require.NoError(t, err)

	ds, err := db.MarkCompleted(ctx, "2025-09-01")
	require.NoError(t, err)
	require.NotNil(t, ds.CompletedAt)
	assert.Equal(t, time.Date(2025, 8, 31, 21, 30, 0, 0, time.UTC), ds.CompletedAt.UTC())
}

func TestCompletedQueries(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	id := insertTestContent(t, db, "A", "2025-09-01")
	for _, key := range []string{"2025-08-31", "2025-09-01", "2025-09-02", "2025-09-05", "2025-10-01"} {
		_, err := db.AssignDay(ctx, key, id)
		require.NoError(t, err)
	}
	for _, key := range []string{"2025-08-31", "2025-09-01", "2025-09-05", "2025-10-01"} {
		_, err := db.MarkCompleted(ctx, key)
		require.NoError(t, err)
	}

	inRange, err := db.GetCompletedKeysInRange(ctx, "2025-09-01", "2025-09-30")
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{
		"2025-09-01": {},
		"2025-09-05": {},
	}, inRange)

	all, err := db.CompletedKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-08-31", "2025-09-01", "2025-09-05", "2025-10-01"}, all)

	count, err := db.CountCompleted(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}
