// Package datekey maps calendar dates to canonical YYYY-MM-DD keys and back.
package datekey

import (
	"fmt"
	"time"
)

// Layout is the canonical key layout.
const Layout = "2006-01-02"

// Key returns the YYYY-MM-DD key of t in t's own location.
func Key(t time.Time) string {
	return t.Format(Layout)
}

// Parse converts a key into midnight UTC of that day.
// Anything that does not round-trip through Key is rejected, so "2025-9-1"
// and "2025-02-30" are both errors.
func Parse(key string) (time.Time, error) {
	t, err := time.ParseInLocation(Layout, key, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date key %q: %w", key, err)
	}
	if Key(t) != key {
		return time.Time{}, fmt.Errorf("invalid date key %q", key)
	}
	return t, nil
}

// Valid reports whether key is a well-formed date key.
func Valid(key string) bool {
	_, err := Parse(key)
	return err == nil
}

// Midnight returns UTC midnight of the calendar day t falls on in its own location.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Prev returns the key of the day before key.
func Prev(key string) (string, error) {
	return shift(key, -1)
}

// Next returns the key of the day after key.
func Next(key string) (string, error) {
	return shift(key, 1)
}

func shift(key string, days int) (string, error) {
	t, err := Parse(key)
	if err != nil {
		return "", err
	}
	return Key(t.AddDate(0, 0, days)), nil
}

// IsNextDay reports whether next is exactly one calendar day after prev.
// Malformed keys are never consecutive.
func IsNextDay(prev, next string) bool {
	n, err := Next(prev)
	if err != nil {
		return false
	}
	return n == next && Valid(next)
}

// MonthStart returns the first day of the month containing t, at UTC midnight.
func MonthStart(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

// MonthMatrix returns a 6x7 Sunday-start grid of consecutive days covering the
// month that contains view. Cell [0][0] is the Sunday on or before the 1st.
func MonthMatrix(view time.Time) [6][7]time.Time {
	first := MonthStart(view)
	start := first.AddDate(0, 0, -int(first.Weekday()))

	var grid [6][7]time.Time
	for week := 0; week < 6; week++ {
		for day := 0; day < 7; day++ {
			grid[week][day] = start.AddDate(0, 0, week*7+day)
		}
	}
	return grid
}

// SameMonth reports whether a and b fall in the same calendar month.
func SameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}
