package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conorfennell/dailyhabit/internal/apperrors"
)

func TestGeneratedHistory(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t, WithClock(newStepClock()))

	older, err := db.SaveGenerated(ctx, "calm", "first text")
	require.NoError(t, err)
	newer, err := db.SaveGenerated(ctx, "focus", "second text")
	require.NoError(t, err)
	assert.NotEqual(t, older.ID, newer.ID)

	entries, err := db.ListGenerated(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, newer.ID, entries[0].ID)
	assert.Equal(t, "focus", entries[0].Request)
	assert.Equal(t, "second text", entries[0].Text)
	assert.True(t, newer.CreatedAt.Equal(entries[0].CreatedAt))
	assert.Equal(t, older.ID, entries[1].ID)

	require.NoError(t, db.DeleteGenerated(ctx, older.ID))
	entries, err = db.ListGenerated(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, newer.ID, entries[0].ID)

	err = db.DeleteGenerated(ctx, older.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSaveGenerated_RequiresText(t *testing.T) {
	db := newTestDB(t)

	_, err := db.SaveGenerated(context.Background(), "calm", "   ")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = db.SaveGenerated(context.Background(), "", "text")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}
