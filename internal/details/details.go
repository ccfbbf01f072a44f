// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package details resolves a single work by id. Resolution never fails: any
// remote problem yields the fallback record. Successful records are cached
// and concurrent lookups of one key share a request.
package details

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/pdiddy/bookfinder/internal/metrics"
	"github.com/pdiddy/bookfinder/internal/normalize"
	"github.com/pdiddy/bookfinder/internal/openlibrary"
	"github.com/pdiddy/bookfinder/pkg/types"
)

// Fetcher loads the raw detail document of a work key.
type Fetcher interface {
	GetWorkDetails(ctx context.Context, workKey string) (*openlibrary.WorkDetails, error)
}

// SavedChecker reports whether a work id is in the favorites store.
type SavedChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// Resolver turns work ids into canonical Work records.
type Resolver struct {
	fetcher Fetcher
	cache   *lru.Cache[string, types.Work]
	group   singleflight.Group
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithMetrics records fallbacks and cache hits.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Resolver) { r.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// NewResolver returns a Resolver caching up to cacheSize works. A cacheSize
// of zero disables caching.
func NewResolver(fetcher Fetcher, cacheSize int, opts ...Option) (*Resolver, error) {
	r := &Resolver{
		fetcher: fetcher,
		logger:  slog.Default(),
	}
	if cacheSize > 0 {
		cache, err := lru.New[string, types.Work](cacheSize)
		if err != nil {
			return nil, fmt.Errorf("creating detail cache: %w", err)
		}
		r.cache = cache
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Resolve returns the canonical record for id, whose ID is "/works/<key>"
// whether or not id carried the prefix. On any failure, including a blank
// id, it returns normalize.Fallback(id).
func (r *Resolver) Resolve(ctx context.Context, id string) types.Work {
	key := types.WorkKey(id)
	if key == "" || strings.Contains(key, "/") {
		r.logger.Debug("unresolvable work id", "id", id)
		r.metrics.IncDetailFallback()
		return normalize.Fallback(id)
	}

	if r.cache != nil {
		if w, ok := r.cache.Get(key); ok {
			r.metrics.IncDetailCacheHit()
			return w
		}
	}

	// The shared fetch outlives any single caller; each caller stops
	// waiting when its own context ends.
	ch := r.group.DoChan(key, func() (any, error) {
		doc, err := r.fetcher.GetWorkDetails(context.WithoutCancel(ctx), key)
		if err != nil {
			return nil, err
		}
		w := normalize.Details(key, *doc)
		if r.cache != nil {
			r.cache.Add(key, w)
		}
		return w, nil
	})

	var err error
	select {
	case res := <-ch:
		if res.Err == nil {
			return res.Val.(types.Work)
		}
		err = res.Err
	case <-ctx.Done():
		err = ctx.Err()
	}
	r.logger.Warn("work details unavailable, using fallback",
		"id", id, "error_type", openlibrary.ErrorTypeLabel(err), "error", err)
	r.metrics.IncDetailFallback()
	return normalize.Fallback(id)
}

// View resolves id and joins it with the favorites store. The store error is
// returned as is; there is no fallback for saved state.
func (r *Resolver) View(ctx context.Context, id string, saved SavedChecker) (types.WorkView, error) {
	w := r.Resolve(ctx, id)
	ok, err := saved.Exists(ctx, w.ID)
	if err != nil {
		return types.WorkView{Work: w}, fmt.Errorf("checking saved state of %s: %w", w.ID, err)
	}
	return types.WorkView{Work: w, IsSaved: ok}, nil
}
