package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Opener hands out one shared DB per database file. Concurrent Open calls for
// the same path collapse into a single underlying connection.
//
// An Opener is process-scoped state: create it at startup, pass it (or the DB
// it returns) to whatever needs the store, and Close it on shutdown.
type Opener struct {
	opts  []Option
	group singleflight.Group

	mu  sync.Mutex
	dbs map[string]*DB
}

// NewOpener returns an Opener that applies opts to every database it opens.
func NewOpener(opts ...Option) *Opener {
	return &Opener{
		opts: opts,
		dbs:  make(map[string]*DB),
	}
}

// Open returns the shared DB for path, opening it on first use.
func (o *Opener) Open(ctx context.Context, path string) (*DB, error) {
	key, err := handleKey(path)
	if err != nil {
		return nil, err
	}

	if db := o.lookup(key); db != nil {
		return db, nil
	}

	v, err, _ := o.group.Do(key, func() (any, error) {
		if db := o.lookup(key); db != nil {
			return db, nil
		}
		db, err := Open(ctx, path, o.opts...)
		if err != nil {
			return nil, err
		}
		o.mu.Lock()
		o.dbs[key] = db
		o.mu.Unlock()
		return db, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*DB), nil
}

func (o *Opener) lookup(key string) *DB {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.dbs[key]
}

// Len reports how many databases o currently holds open.
func (o *Opener) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.dbs)
}

// Close closes every database opened through o.
func (o *Opener) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	var errs []error
	for key, db := range o.dbs {
		if err := db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close %s: %w", key, err))
		}
		delete(o.dbs, key)
	}
	return errors.Join(errs...)
}

func handleKey(path string) (string, error) {
	if path == MemoryPath {
		return path, nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve database path %s: %w", path, err)
	}
	return abs, nil
}
