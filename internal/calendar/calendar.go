// Package calendar projects the day log onto a month grid.
package calendar

import (
	"context"
	"time"

	"github.com/conorfennell/dailyhabit/internal/datekey"
)

// Store is the range query the projection needs.
type Store interface {
	GetCompletedKeysInRange(ctx context.Context, startKey, endKey string) (map[string]struct{}, error)
}

// Cell is one day of the grid.
type Cell struct {
	Date           time.Time
	DateKey        string
	InCurrentMonth bool
	Completed      bool
}

// Month is a Sunday-start 6x7 grid covering the viewed month, padded with
// days of the neighbouring months.
type Month struct {
	Matrix   [6][7]Cell
	StartKey string
	EndKey   string
}

// LoadMonth builds the grid for the month containing view. Completion flags
// come from a single range query over the whole visible span.
func LoadMonth(ctx context.Context, store Store, view time.Time) (Month, error) {
	days := datekey.MonthMatrix(view)
	first := datekey.MonthStart(view)

	m := Month{
		StartKey: datekey.Key(days[0][0]),
		EndKey:   datekey.Key(days[5][6]),
	}

	completed, err := store.GetCompletedKeysInRange(ctx, m.StartKey, m.EndKey)
	if err != nil {
		return Month{}, err
	}

	for w, week := range days {
		for d, day := range week {
			key := datekey.Key(day)
			_, done := completed[key]
			m.Matrix[w][d] = Cell{
				Date:           day,
				DateKey:        key,
				InCurrentMonth: datekey.SameMonth(day, first),
				Completed:      done,
			}
		}
	}
	return m, nil
}

// Cells returns the grid in reading order.
func (m Month) Cells() []Cell {
	cells := make([]Cell, 0, 42)
	for _, week := range m.Matrix {
		cells = append(cells, week[:]...)
	}
	return cells
}
