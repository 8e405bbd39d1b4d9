package datekey

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyAndParse(t *testing.T) {
	d := time.Date(2025, time.September, 5, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "2025-09-05", Key(d))

	parsed, err := Parse("2025-09-05")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.September, 5, 0, 0, 0, 0, time.UTC), parsed)
}

func TestKeyUsesOwnLocation(t *testing.T) {
	saoPaulo := time.FixedZone("BRT", -3*60*60)
	// 01:00 UTC on the 6th is still the 5th in UTC-3.
	d := time.Date(2025, time.September, 6, 1, 0, 0, 0, time.UTC).In(saoPaulo)
	assert.Equal(t, "2025-09-05", Key(d))
}

func TestParseRejectsMalformed(t *testing.T) {
	testCases := []string{"", "2025-9-1", "2025-02-30", "20250901", "2025-09-01T00:00:00Z", "abcd-ef-gh"}
	for _, key := range testCases {
		t.Run(key, func(t *testing.T) {
			_, err := Parse(key)
			assert.Error(t, err)
			assert.False(t, Valid(key))
		})
	}
}

func TestPrevNext(t *testing.T) {
	testCases := []struct {
		key  string
		prev string
		next string
	}{
		{"2025-09-01", "2025-08-31", "2025-09-02"},
		{"2025-01-01", "2024-12-31", "2025-01-02"},
		{"2024-03-01", "2024-02-29", "2024-03-02"},
		{"2023-03-01", "2023-02-28", "2023-03-02"},
	}

	for _, tc := range testCases {
		t.Run(tc.key, func(t *testing.T) {
			prev, err := Prev(tc.key)
			require.NoError(t, err)
			assert.Equal(t, tc.prev, prev)

			next, err := Next(tc.key)
			require.NoError(t, err)
			assert.Equal(t, tc.next, next)
		})
	}
}

func TestIsNextDay(t *testing.T) {
	assert.True(t, IsNextDay("2025-09-01", "2025-09-02"))
	assert.True(t, IsNextDay("2025-12-31", "2026-01-01"))
	assert.False(t, IsNextDay("2025-09-01", "2025-09-03"))
	assert.False(t, IsNextDay("2025-09-02", "2025-09-01"))
	assert.False(t, IsNextDay("2025-09-01", "2025-09-01"))
	assert.False(t, IsNextDay("garbage", "2025-09-01"))
}

func TestMonthMatrix(t *testing.T) {
	t.Run("september 2025 starts on monday", func(t *testing.T) {
		grid := MonthMatrix(time.Date(2025, time.September, 17, 0, 0, 0, 0, time.UTC))

		assert.Equal(t, "2025-08-31", Key(grid[0][0]))
		assert.Equal(t, "2025-09-01", Key(grid[0][1]))
		assert.Equal(t, "2025-10-11", Key(grid[5][6]))
	})

	t.Run("month starting on sunday", func(t *testing.T) {
		grid := MonthMatrix(time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC))
		assert.Equal(t, "2025-06-01", Key(grid[0][0]))
	})

	t.Run("every row starts on sunday and days are consecutive", func(t *testing.T) {
		grid := MonthMatrix(time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC))
		prev := grid[0][0].AddDate(0, 0, -1)
		for w := range grid {
			assert.Equal(t, time.Sunday, grid[w][0].Weekday())
			for d := range grid[w] {
				assert.True(t, IsNextDay(Key(prev), Key(grid[w][d])))
				prev = grid[w][d]
			}
		}
	})
}
