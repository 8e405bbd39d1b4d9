package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/conorfennell/dailyhabit/internal/calendar"
	"github.com/conorfennell/dailyhabit/internal/progress"
)

type statsOutput struct {
	TotalCompleted int     `json:"total_completed"`
	LongestStreak  int     `json:"longest_streak"`
	CurrentStreak  int     `json:"current_streak"`
	Level          string  `json:"level"`
	LevelProgress  float64 `json:"level_progress"`
}

// NewStatsCommand prints completion totals and streaks.
func NewStatsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show completion totals and streaks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := a.store(ctx)
			if err != nil {
				return err
			}

			stats, err := progress.Compute(ctx, db, a.assigner(db).TodayKey())
			if err != nil {
				return err
			}

			out := statsOutput{
				TotalCompleted: stats.TotalCompleted,
				LongestStreak:  stats.LongestStreak,
				CurrentStreak:  stats.CurrentStreak,
				Level:          stats.Level.Name,
				LevelProgress:  stats.Level.Progress(stats.LongestStreak),
			}
			return a.emit(cmd.OutOrStdout(), out, func(w io.Writer) error {
				fmt.Fprintf(w, "total completed: %d\n", out.TotalCompleted)
				fmt.Fprintf(w, "current streak:  %d\n", out.CurrentStreak)
				fmt.Fprintf(w, "longest streak:  %d\n", out.LongestStreak)
				fmt.Fprintf(w, "level:           %s (%.0f%%)\n", out.Level, out.LevelProgress*100)
				return nil
			})
		},
	}
}

// NewMonthCommand prints a month grid with completed days marked.
func NewMonthCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "month [YYYY-MM]",
		Short: "Show a month with completed days marked",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			view := a.clock.Now()
			if len(args) == 1 {
				t, err := time.Parse("2006-01", args[0])
				if err != nil {
					return fmt.Errorf("invalid month %q, expected YYYY-MM", args[0])
				}
				view = t
			}

			db, err := a.store(ctx)
			if err != nil {
				return err
			}
			month, err := calendar.LoadMonth(ctx, db, view)
			if err != nil {
				return err
			}

			return a.emit(cmd.OutOrStdout(), month.Cells(), func(w io.Writer) error {
				return writeMonth(w, view, month)
			})
		},
	}
}

// writeMonth renders the grid. Completed days carry a trailing "*"; days of
// neighbouring months are shown as dots.
func writeMonth(w io.Writer, view time.Time, month calendar.Month) error {
	fmt.Fprintf(w, "%s %d\n", view.Month(), view.Year())
	fmt.Fprintln(w, " Su  Mo  Tu  We  Th  Fr  Sa")
	for _, week := range month.Matrix {
		var b strings.Builder
		for _, c := range week {
			switch {
			case !c.InCurrentMonth:
				b.WriteString("  . ")
			case c.Completed:
				fmt.Fprintf(&b, " %2d*", c.Date.Day())
			default:
				fmt.Fprintf(&b, " %2d ", c.Date.Day())
			}
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(b.String(), " ")); err != nil {
			return err
		}
	}
	return nil
}
