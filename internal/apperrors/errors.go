// Package apperrors defines the error kinds shared across the engine.
// Callers match them with errors.Is; concrete errors wrap them with context.
package apperrors

import "errors"

var (
	// ErrStorageUnavailable means the store could not be opened. Fatal to the caller.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrSchemaMigration marks a skipped migration step. Never returned from Open.
	ErrSchemaMigration = errors.New("schema migration failed")
	// ErrPrecondition is a caller error, e.g. completing a day that was never assigned.
	ErrPrecondition = errors.New("precondition violation")
	// ErrReconcilePartial means some catalog items were applied but the version was not advanced.
	ErrReconcilePartial = errors.New("reconciliation partially applied")
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
)
