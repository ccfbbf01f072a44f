// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package favorites persists favorited works and reconciles save state with
// search and detail results. Repository implementations are the raw key to
// entry store; Service adds change notification, per-key write
// serialization, and toggling.
package favorites

import (
	"context"
	"fmt"

	"github.com/pdiddy/bookfinder/pkg/types"
)

// Repository is the local favorites store, keyed by work id.
type Repository interface {
	// List returns every entry ordered by save time, newest first.
	List(ctx context.Context) ([]types.FavoriteEntry, error)

	// Upsert inserts e or replaces the entry with the same id.
	Upsert(ctx context.Context, e types.FavoriteEntry) error

	// Delete removes the entry for id. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error

	// Exists reports whether id is stored.
	Exists(ctx context.Context, id string) (bool, error)

	Close() error
}

// Open returns the repository selected by cfg.Driver.
func Open(ctx context.Context, cfg types.FavoritesConfig) (Repository, error) {
	switch cfg.Driver {
	case types.DriverSQLite, "":
		return NewSQLiteRepository(cfg.Path)
	case types.DriverPostgres:
		return NewPostgresRepository(ctx, cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown favorites driver %q", cfg.Driver)
	}
}
