package types

import (
	"fmt"
	"net/url"
	"time"
)

// HTTPConfig holds shared HTTP settings used by components that make
// network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "bookfinder/0.1"). Open Library asks clients to identify themselves.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// CatalogConfig holds settings for the remote catalog client.
type CatalogConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL is the catalog root (default https://openlibrary.org).
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// PageSize is the fixed number of documents requested per page (default 20).
	PageSize int `json:"page_size" yaml:"page_size" mapstructure:"page_size"`

	// RequestsPerSecond caps the outgoing request rate (default 3).
	RequestsPerSecond int `json:"requests_per_second" yaml:"requests_per_second" mapstructure:"requests_per_second"`

	// MaxRetries is the number of retries on HTTP 429 and 5xx (default 2).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// SessionConfig holds settings for the query session controller.
type SessionConfig struct {
	// Debounce is the quiescence window before a typed query starts a
	// search (default 300ms).
	Debounce time.Duration `json:"debounce" yaml:"debounce" mapstructure:"debounce"`
}

// DetailsConfig holds settings for detail resolution.
type DetailsConfig struct {
	// CacheSize is the number of resolved works kept in memory. Zero
	// disables caching.
	CacheSize int `json:"cache_size" yaml:"cache_size" mapstructure:"cache_size"`
}

// FavoritesDriver selects the favorites store backend.
type FavoritesDriver string

const (
	DriverSQLite   FavoritesDriver = "sqlite"
	DriverPostgres FavoritesDriver = "postgres"
)

// FavoritesConfig holds settings for the local favorites store.
type FavoritesConfig struct {
	// Driver selects sqlite (default) or postgres.
	Driver FavoritesDriver `json:"driver" yaml:"driver" mapstructure:"driver"`

	// Path is the SQLite database file (default "bookfinder.db").
	Path string `json:"path" yaml:"path" mapstructure:"path"`

	// DSN is the PostgreSQL connection string, required for the postgres driver.
	DSN string `json:"dsn,omitempty" yaml:"dsn,omitempty" mapstructure:"dsn"`
}

// Config groups all component configurations.
type Config struct {
	Catalog   CatalogConfig   `json:"catalog" yaml:"catalog" mapstructure:"catalog"`
	Session   SessionConfig   `json:"session" yaml:"session" mapstructure:"session"`
	Details   DetailsConfig   `json:"details" yaml:"details" mapstructure:"details"`
	Favorites FavoritesConfig `json:"favorites" yaml:"favorites" mapstructure:"favorites"`
}

// DefaultConfig returns the settings the Open Library client was tuned for.
func DefaultConfig() Config {
	return Config{
		Catalog: CatalogConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   15 * time.Second,
				UserAgent: "bookfinder/0.1",
			},
			BaseURL:           "https://openlibrary.org",
			PageSize:          20,
			RequestsPerSecond: 3,
			MaxRetries:        2,
		},
		Session: SessionConfig{
			Debounce: 300 * time.Millisecond,
		},
		Details: DetailsConfig{
			CacheSize: 128,
		},
		Favorites: FavoritesConfig{
			Driver: DriverSQLite,
			Path:   "bookfinder.db",
		},
	}
}

// Validate ensures all configuration values are coherent.
func (c Config) Validate() error {
	if c.Catalog.BaseURL == "" {
		return fmt.Errorf("catalog base URL cannot be empty")
	}
	u, err := url.Parse(c.Catalog.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid catalog base URL: %w", err)
	}
	if u.Host == "" {
		return fmt.Errorf("catalog base URL must include a host")
	}
	if c.Catalog.Timeout <= 0 {
		return fmt.Errorf("catalog timeout must be positive")
	}
	if c.Catalog.PageSize <= 0 {
		return fmt.Errorf("page size must be positive")
	}
	if c.Catalog.RequestsPerSecond <= 0 {
		return fmt.Errorf("requests per second must be positive")
	}
	if c.Catalog.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	if c.Catalog.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}
	if c.Session.Debounce < 0 {
		return fmt.Errorf("debounce cannot be negative")
	}
	if c.Details.CacheSize < 0 {
		return fmt.Errorf("details cache size cannot be negative")
	}
	switch c.Favorites.Driver {
	case DriverSQLite:
		if c.Favorites.Path == "" {
			return fmt.Errorf("favorites path cannot be empty for the sqlite driver")
		}
	case DriverPostgres:
		if c.Favorites.DSN == "" {
			return fmt.Errorf("favorites dsn cannot be empty for the postgres driver")
		}
	default:
		return fmt.Errorf("favorites driver must be sqlite or postgres, got %q", c.Favorites.Driver)
	}
	return nil
}
