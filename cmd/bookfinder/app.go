// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/viper"

	"github.com/pdiddy/bookfinder/internal/details"
	"github.com/pdiddy/bookfinder/internal/favorites"
	"github.com/pdiddy/bookfinder/internal/metrics"
	"github.com/pdiddy/bookfinder/internal/openlibrary"
	"github.com/pdiddy/bookfinder/internal/paging"
	"github.com/pdiddy/bookfinder/internal/secrets"
	"github.com/pdiddy/bookfinder/internal/session"
	"github.com/pdiddy/bookfinder/pkg/types"
)

// setConfigDefaults registers every config key with its default so that
// environment overrides apply to keys absent from the config file.
func setConfigDefaults(v *viper.Viper) {
	d := types.DefaultConfig()
	v.SetDefault("catalog.base_url", d.Catalog.BaseURL)
	v.SetDefault("catalog.user_agent", d.Catalog.UserAgent)
	v.SetDefault("catalog.timeout", d.Catalog.Timeout)
	v.SetDefault("catalog.page_size", d.Catalog.PageSize)
	v.SetDefault("catalog.requests_per_second", d.Catalog.RequestsPerSecond)
	v.SetDefault("catalog.max_retries", d.Catalog.MaxRetries)
	v.SetDefault("session.debounce", d.Session.Debounce)
	v.SetDefault("details.cache_size", d.Details.CacheSize)
	v.SetDefault("favorites.driver", string(d.Favorites.Driver))
	v.SetDefault("favorites.path", d.Favorites.Path)
	v.SetDefault("favorites.dsn", d.Favorites.DSN)
}

// loadConfig decodes v into a validated Config, filling the favorites DSN
// from secrets when it is not configured.
func loadConfig(v *viper.Viper, secretValues map[string]string) (types.Config, error) {
	cfg := types.DefaultConfig()
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decoding config: %w", err)
	}
	secrets.ApplyFavorites(&cfg.Favorites, secretValues)
	if err := cfg.Validate(); err != nil {
		return types.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// app holds the components one command invocation works with.
type app struct {
	cfg       types.Config
	metrics   *metrics.Metrics
	client    *openlibrary.Client
	engine    *paging.Engine
	favorites *favorites.Service
	resolver  *details.Resolver
	logger    *slog.Logger
}

// newApp wires the catalog client, search engine, favorites store and detail
// resolver from cfg.
func newApp(ctx context.Context, cfg types.Config, m *metrics.Metrics) (*app, error) {
	logger := slog.Default()

	client := openlibrary.NewClient(cfg.Catalog,
		openlibrary.WithMetrics(m),
		openlibrary.WithLogger(logger.With("component", "catalog")),
	)

	repo, err := favorites.Open(ctx, cfg.Favorites)
	if err != nil {
		return nil, fmt.Errorf("opening favorites store: %w", err)
	}

	resolver, err := details.NewResolver(client, cfg.Details.CacheSize,
		details.WithMetrics(m),
		details.WithLogger(logger.With("component", "details")),
	)
	if err != nil {
		repo.Close()
		return nil, err
	}

	return &app{
		cfg:     cfg,
		metrics: m,
		client:  client,
		engine: paging.NewEngine(client, cfg.Catalog.PageSize,
			paging.WithMetrics(m),
			paging.WithLogger(logger.With("component", "paging")),
		),
		favorites: favorites.NewService(repo,
			favorites.WithLogger(logger.With("component", "favorites")),
		),
		resolver: resolver,
		logger:   logger,
	}, nil
}

// newController returns a query session controller on the app's engine.
func (a *app) newController() *session.Controller {
	return session.New(a.engine,
		session.WithDebounce(a.cfg.Session.Debounce),
		session.WithLogger(a.logger.With("component", "session")),
	)
}

func (a *app) Close() error {
	return a.favorites.Close()
}

// openApp loads configuration and wires an app for a command.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig(viper.GetViper(), loadedSecrets)
	if err != nil {
		return nil, err
	}
	return newApp(ctx, cfg, appMetrics)
}
