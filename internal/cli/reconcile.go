package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/conorfennell/dailyhabit/internal/apperrors"
	"github.com/conorfennell/dailyhabit/internal/catalog"
)

type reconcileOutput struct {
	Version  int  `json:"version"`
	Inserted int  `json:"inserted"`
	Updated  int  `json:"updated"`
	Total    int  `json:"total"`
	Changed  bool `json:"changed"`
}

// NewReconcileCommand applies the configured catalog to the store.
func NewReconcileCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Apply the configured catalog to the database",
		Long: "Load the catalog given by --catalog (fetching --repo first when set) and apply it. " +
			"Nothing happens when the database already holds this catalog version or a newer one.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if a.cfg.Catalog.Path == "" {
				return fmt.Errorf("%w: no catalog configured (use --catalog)", apperrors.ErrInvalidInput)
			}

			bundle, err := catalog.LoadSource(ctx, a.catalogSource(), a.log)
			if err != nil {
				return err
			}

			db, err := a.store(ctx)
			if err != nil {
				return err
			}
			res, err := catalog.NewReconciler(db, a.log).Reconcile(ctx, bundle)
			if err != nil {
				return err
			}

			out := reconcileOutput{
				Version:  bundle.Version,
				Inserted: res.Inserted,
				Updated:  res.Updated,
				Total:    res.Total,
				Changed:  res.Changed,
			}
			return a.emit(cmd.OutOrStdout(), out, func(w io.Writer) error {
				if !res.Changed {
					fmt.Fprintf(w, "catalog already at version %d or newer (%d items)\n", bundle.Version, res.Total)
					return nil
				}
				fmt.Fprintf(w, "catalog version %d: %d new, %d updated, %d total\n",
					bundle.Version, res.Inserted, res.Updated, res.Total)
				return nil
			})
		},
	}
}
