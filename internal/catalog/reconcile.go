// Package catalog reconciles a bundled content catalog into the store.
package catalog

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/conorfennell/dailyhabit/internal/apperrors"
	"github.com/conorfennell/dailyhabit/internal/digest"
	"github.com/conorfennell/dailyhabit/internal/domain"
	"github.com/conorfennell/dailyhabit/internal/storage"
)

// Bundle is a versioned catalog as shipped with the app.
type Bundle struct {
	Version int                  `yaml:"version" validate:"min=0"`
	Items   []domain.BundledItem `yaml:"items" validate:"unique=ReleaseKey,dive"`
}

// Result summarizes a reconciliation run.
type Result struct {
	Updated  int
	Inserted int
	Total    int
	// Changed is false when the stored catalog was already at or past the
	// bundle's version and nothing was attempted.
	Changed bool
}

// Store is the part of the persistent store reconciliation needs.
type Store interface {
	GetCatalogVersion(ctx context.Context) (domain.CatalogVersion, error)
	SetCatalogVersion(ctx context.Context, version, count int) error
	Within(ctx context.Context, fn func(tx *storage.Tx) error) error
}

type outcome int

const (
	unchanged outcome = iota
	inserted
	updated
)

// Reconciler applies bundles to a Store.
type Reconciler struct {
	store    Store
	log      *zap.Logger
	validate *validator.Validate
}

// NewReconciler returns a Reconciler over store. A nil log discards output.
func NewReconciler(store Store, log *zap.Logger) *Reconciler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reconciler{
		store:    store,
		log:      log.Named("catalog"),
		validate: domain.NewValidator(),
	}
}

// Reconcile brings the stored catalog in line with bundle. Items are matched
// by release key, so ids, and every day status pointing at them, survive an
// edit. Rows missing from the bundle are left alone.
//
// When an item fails to apply, the items before it stay committed, the version
// is not advanced and the error wraps apperrors.ErrReconcilePartial. Running
// the same bundle again is safe.
func (r *Reconciler) Reconcile(ctx context.Context, bundle Bundle) (Result, error) {
	current, err := r.store.GetCatalogVersion(ctx)
	if err != nil {
		return Result{}, err
	}

	if current.Version >= bundle.Version {
		r.log.Debug("catalog already up to date",
			zap.Int("stored_version", current.Version),
			zap.Int("bundle_version", bundle.Version))
		return Result{Total: current.ItemCount}, nil
	}

	if err := r.validate.Struct(bundle); err != nil {
		return Result{}, fmt.Errorf("%w: catalog version %d: %w", apperrors.ErrInvalidInput, bundle.Version, err)
	}

	r.log.Info("reconciling catalog",
		zap.Int("stored_version", current.Version),
		zap.Int("bundle_version", bundle.Version),
		zap.Int("items", len(bundle.Items)))

	var res Result
	for i, item := range bundle.Items {
		o, err := r.apply(ctx, item)
		if err != nil {
			r.log.Error("catalog item failed, version not advanced",
				zap.String("release_key", item.ReleaseKey),
				zap.Int("applied", i),
				zap.Error(err))
			return res, fmt.Errorf("%w: item %d (%s) after %d inserted and %d updated: %w",
				apperrors.ErrReconcilePartial, i, item.ReleaseKey, res.Inserted, res.Updated, err)
		}
		switch o {
		case inserted:
			res.Inserted++
		case updated:
			res.Updated++
		}
	}

	if err := r.store.SetCatalogVersion(ctx, bundle.Version, len(bundle.Items)); err != nil {
		return res, fmt.Errorf("%w: recording catalog version %d: %w", apperrors.ErrReconcilePartial, bundle.Version, err)
	}

	res.Total = len(bundle.Items)
	res.Changed = true

	r.log.Info("reconciliation complete",
		zap.Int("version", bundle.Version),
		zap.Int("inserted", res.Inserted),
		zap.Int("updated", res.Updated),
		zap.Int("total", res.Total))
	return res, nil
}

// apply inserts or updates a single item in its own transaction.
func (r *Reconciler) apply(ctx context.Context, item domain.BundledItem) (outcome, error) {
	content := domain.ContentItem{
		Title:       item.Title,
		Body:        item.Body,
		ReleaseKey:  item.ReleaseKey,
		Fingerprint: digest.Fingerprint(item.Title, item.Body, item.ReleaseKey),
	}

	result := unchanged
	err := r.store.Within(ctx, func(tx *storage.Tx) error {
		existing, err := tx.GetContentByReleaseKey(ctx, item.ReleaseKey)
		if err != nil {
			return err
		}

		if existing == nil {
			r.log.Info("new catalog item, inserting", zap.String("release_key", item.ReleaseKey))
			if _, err := tx.InsertContent(ctx, content); err != nil {
				return err
			}
			result = inserted
			return nil
		}

		if existing.Fingerprint == content.Fingerprint {
			return nil
		}

		r.log.Info("catalog item changed, updating",
			zap.String("release_key", item.ReleaseKey),
			zap.Int64("id", existing.ID))
		if err := tx.UpdateContent(ctx, existing.ID, content); err != nil {
			return err
		}
		result = updated
		return nil
	})
	if err != nil {
		return unchanged, err
	}
	return result, nil
}
