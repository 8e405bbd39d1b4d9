package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/conorfennell/dailyhabit/internal/apperrors"
	"github.com/conorfennell/dailyhabit/internal/domain"
)

type prefsOutput struct {
	RemindersEnabled    bool     `json:"reminders_enabled"`
	Schedules           []string `json:"schedules"`
	ExternalScheduleRef string   `json:"external_schedule_ref,omitempty"`
}

// NewPrefsCommand groups the reminder preference commands.
func NewPrefsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or change reminder preferences",
	}
	cmd.AddCommand(newPrefsShowCommand(a))
	cmd.AddCommand(newPrefsSetCommand(a))
	return cmd
}

func newPrefsShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show reminder preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.store(cmd.Context())
			if err != nil {
				return err
			}
			prefs, err := db.GetPreferences(cmd.Context())
			if err != nil {
				return err
			}
			return a.writePrefs(cmd.OutOrStdout(), prefs)
		},
	}
}

func newPrefsSetCommand(a *app) *cobra.Command {
	var (
		enabled bool
		at      []string
		ref     string
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change reminder preferences",
		Long:  "Change reminder preferences. Only the flags given are changed; --at replaces every schedule.",
		Example: `  dailyhabit prefs set --enabled --at 07:30 --at 21:00
  dailyhabit prefs set --enabled=false`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := a.store(ctx)
			if err != nil {
				return err
			}
			prefs, err := db.GetPreferences(ctx)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("enabled") {
				prefs.RemindersEnabled = enabled
			}
			if flags.Changed("at") {
				prefs.Schedules = prefs.Schedules[:0]
				for _, s := range at {
					t, err := time.Parse("15:04", s)
					if err != nil {
						return fmt.Errorf("%w: reminder time %q, expected HH:MM", apperrors.ErrInvalidInput, s)
					}
					prefs.Schedules = append(prefs.Schedules, domain.Schedule{Hour: t.Hour(), Minute: t.Minute()})
				}
			}
			if flags.Changed("ref") {
				prefs.ExternalScheduleRef = ref
			}

			if err := db.SavePreferences(ctx, prefs); err != nil {
				return err
			}
			return a.writePrefs(cmd.OutOrStdout(), prefs)
		},
	}

	cmd.Flags().BoolVar(&enabled, "enabled", false, "turn reminders on or off")
	cmd.Flags().StringSliceVar(&at, "at", nil, "reminder time as HH:MM (repeatable)")
	cmd.Flags().StringVar(&ref, "ref", "", "identifier of the externally scheduled reminder (empty clears it)")

	return cmd
}

func (a *app) writePrefs(w io.Writer, prefs domain.UserPreferences) error {
	out := prefsOutput{
		RemindersEnabled:    prefs.RemindersEnabled,
		Schedules:           []string{},
		ExternalScheduleRef: prefs.ExternalScheduleRef,
	}
	for _, s := range prefs.Schedules {
		out.Schedules = append(out.Schedules, fmt.Sprintf("%02d:%02d", s.Hour, s.Minute))
	}

	return a.emit(w, out, func(w io.Writer) error {
		state := "off"
		if out.RemindersEnabled {
			state = "on"
		}
		fmt.Fprintf(w, "reminders: %s\n", state)
		for _, s := range out.Schedules {
			fmt.Fprintf(w, "  at %s\n", s)
		}
		if out.ExternalScheduleRef != "" {
			fmt.Fprintf(w, "scheduled as: %s\n", out.ExternalScheduleRef)
		}
		return nil
	})
}
