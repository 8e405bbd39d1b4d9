// Package progress derives completion statistics from the day log.
package progress

import (
	"context"
	"fmt"
	"sort"

	"github.com/conorfennell/dailyhabit/internal/apperrors"
	"github.com/conorfennell/dailyhabit/internal/datekey"
)

// Store is the read side of the persistent store used for statistics.
type Store interface {
	CompletedKeys(ctx context.Context) ([]string, error)
}

// Stats are the figures shown on the progress screen.
// CurrentStreak never exceeds LongestStreak.
type Stats struct {
	TotalCompleted int
	LongestStreak  int
	CurrentStreak  int
	Level          Level
}

// Compute loads every completed day once and derives the statistics as of
// todayKey. An empty log yields zero values, not an error.
func Compute(ctx context.Context, store Store, todayKey string) (Stats, error) {
	if !datekey.Valid(todayKey) {
		return Stats{}, fmt.Errorf("%w: date key %q", apperrors.ErrInvalidInput, todayKey)
	}

	keys, err := store.CompletedKeys(ctx)
	if err != nil {
		return Stats{}, err
	}

	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}

	longest := LongestStreak(keys)
	return Stats{
		TotalCompleted: len(set),
		LongestStreak:  longest,
		CurrentStreak:  CurrentStreak(set, todayKey),
		Level:          LevelFor(longest),
	}, nil
}

// LongestStreak returns the longest run of consecutive days in keys. keys
// need not be sorted and may contain duplicates.
func LongestStreak(keys []string) int {
	if len(keys) == 0 {
		return 0
	}

	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)

	longest, run := 0, 0
	prev := ""
	for _, k := range sorted {
		switch {
		case k == prev:
			continue
		case prev != "" && datekey.IsNextDay(prev, k):
			run++
		default:
			run = 1
		}
		if run > longest {
			longest = run
		}
		prev = k
	}
	return longest
}

// CurrentStreak counts completed days walking back from todayKey. It is 0 when
// today itself is not completed.
func CurrentStreak(completed map[string]struct{}, todayKey string) int {
	streak := 0
	key := todayKey
	for {
		if _, ok := completed[key]; !ok {
			return streak
		}
		streak++

		prev, err := datekey.Prev(key)
		if err != nil {
			return streak
		}
		key = prev
	}
}
