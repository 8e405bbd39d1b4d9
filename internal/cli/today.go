package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conorfennell/dailyhabit/internal/apperrors"
	"github.com/conorfennell/dailyhabit/internal/catalog"
	"github.com/conorfennell/dailyhabit/internal/storage"
)

type todayOutput struct {
	DateKey   string `json:"date_key"`
	ContentID int64  `json:"content_id,omitempty"`
	Title     string `json:"title,omitempty"`
	Body      string `json:"body,omitempty"`
	Completed bool   `json:"completed"`
}

// NewTodayCommand shows today's item, assigning one on the first visit.
func NewTodayCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Show today's item",
		Long:  "Show today's item. When a catalog is configured it is reconciled first.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := a.store(ctx)
			if err != nil {
				return err
			}
			a.refreshCatalog(ctx, db)

			today, err := a.assigner(db).GetOrAssignToday(ctx)
			if err != nil {
				return err
			}

			out := todayOutput{DateKey: today.DateKey, Completed: today.Completed}
			if today.Content != nil {
				out.ContentID = today.Content.ID
				out.Title = today.Content.Title
				out.Body = today.Content.Body
			}

			return a.emit(cmd.OutOrStdout(), out, func(w io.Writer) error {
				if today.Content == nil {
					fmt.Fprintf(w, "%s: the catalog is empty, nothing to show yet\n", today.DateKey)
					return nil
				}
				mark := " "
				if today.Completed {
					mark = "x"
				}
				fmt.Fprintf(w, "[%s] %s  %s\n", mark, today.DateKey, today.Content.Title)
				if today.Content.Body != "" {
					fmt.Fprintf(w, "\n%s\n", today.Content.Body)
				}
				return nil
			})
		},
	}
}

// refreshCatalog reconciles the configured catalog. Failures are logged and
// the caller carries on with whatever the store already holds.
func (a *app) refreshCatalog(ctx context.Context, db *storage.DB) {
	if a.cfg.Catalog.Path == "" {
		return
	}
	bundle, err := catalog.LoadSource(ctx, a.catalogSource(), a.log)
	if err != nil {
		a.log.Warn("catalog not loaded", zap.Error(err))
		return
	}
	if _, err := catalog.NewReconciler(db, a.log).Reconcile(ctx, bundle); err != nil {
		a.log.Warn("catalog not reconciled", zap.Error(err))
	}
}

// NewCompleteCommand marks today as done.
func NewCompleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "complete",
		Short: "Mark today's item as done",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := a.store(ctx)
			if err != nil {
				return err
			}

			ds, err := a.assigner(db).MarkTodayCompleted(ctx)
			if errors.Is(err, apperrors.ErrPrecondition) {
				return fmt.Errorf("%w (run \"dailyhabit today\" first)", err)
			}
			if err != nil {
				return err
			}

			return a.emit(cmd.OutOrStdout(), ds, func(w io.Writer) error {
				fmt.Fprintf(w, "%s completed\n", ds.DateKey)
				return nil
			})
		},
	}
}
