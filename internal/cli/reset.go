package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conorfennell/dailyhabit/internal/apperrors"
	"github.com/conorfennell/dailyhabit/internal/storage"
)

// NewResetCommand wipes the database. If the file cannot be opened at all it
// is removed instead, so the next run starts from an empty store.
func NewResetCommand(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all history and start over",
		Long:  "Delete every day, completion, preference and saved text. This cannot be undone.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("%w: reset deletes all history, pass --yes to confirm", apperrors.ErrPrecondition)
			}

			ctx := cmd.Context()
			db, err := a.store(ctx)
			if errors.Is(err, apperrors.ErrStorageUnavailable) {
				a.log.Warn("database unreadable, removing file", zap.String("path", a.cfg.DB.Path), zap.Error(err))
				if err := storage.Remove(a.cfg.DB.Path); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", a.cfg.DB.Path)
				return nil
			}
			if err != nil {
				return err
			}

			if err := db.Reset(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "database reset")
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")
	return cmd
}
