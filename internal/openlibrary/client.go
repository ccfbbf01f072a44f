// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package openlibrary is the HTTP client for the Open Library catalog: title
// search with page cursors and per-work detail documents. Response documents
// are decoded leniently; turning them into domain records is the job of the
// normalize package.
package openlibrary

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/bookfinder/internal/httputil"
	"github.com/pdiddy/bookfinder/internal/metrics"
	"github.com/pdiddy/bookfinder/pkg/types"
)

const (
	endpointSearch = "search"
	endpointWork   = "work"
)

// Client queries the Open Library API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	limiter    *rate.Limiter
	maxRetries int
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client (tests use this to inject
// an httptest or httpmock transport).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithMetrics records request counts, latency, retries and errors.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient builds a client from cfg. A non-positive RequestsPerSecond
// disables rate limiting.
func NewClient(cfg types.CatalogConfig, opts ...Option) *Client {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	c := &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:  cfg.UserAgent,
		limiter:    rate.NewLimiter(limit, 1),
		maxRetries: cfg.MaxRetries,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search requests one page of title matches.
func (c *Client) Search(ctx context.Context, title string, limit, page int) (*SearchResponse, error) {
	params := url.Values{
		"title": {title},
		"limit": {strconv.Itoa(limit)},
		"page":  {strconv.Itoa(page)},
	}
	u := c.baseURL + "/search.json?" + params.Encode()

	var res SearchResponse
	if err := c.get(ctx, endpointSearch, u, &res); err != nil {
		return nil, fmt.Errorf("searching %q page %d: %w", title, page, err)
	}
	return &res, nil
}

// GetWorkDetails fetches the detail document for a bare work key
// (e.g. "OL468516W"). A "/works/" prefix is tolerated.
func (c *Client) GetWorkDetails(ctx context.Context, workKey string) (*WorkDetails, error) {
	key := types.WorkKey(workKey)
	if key == "" {
		return nil, fmt.Errorf("empty work key")
	}
	u := c.baseURL + "/works/" + url.PathEscape(key) + ".json"

	var res WorkDetails
	if err := c.get(ctx, endpointWork, u, &res); err != nil {
		return nil, fmt.Errorf("fetching work %s: %w", key, err)
	}
	return &res, nil
}

func (c *Client) get(ctx context.Context, endpoint, u string, target any) (err error) {
	start := time.Now()
	c.metrics.IncRequest(endpoint)
	defer func() {
		c.metrics.ObserveDuration(endpoint, time.Since(start))
		if err != nil {
			c.metrics.IncError(ErrorTypeLabel(err))
		}
	}()

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := httputil.DoWithRetryNotify(ctx, c.httpClient, req, c.maxRetries, func(attempt, status int, rerr error) {
		c.metrics.IncRetries()
		c.logger.Debug("retrying catalog request",
			slog.String("url", u),
			slog.Int("attempt", attempt),
			slog.Int("status", status),
			slog.Any("error", rerr),
		)
	})
	if err != nil {
		return classifyError(err, 0)
	}
	defer resp.Body.Close()

	c.logger.Debug("catalog request",
		slog.String("method", http.MethodGet),
		slog.String("url", u),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode != http.StatusOK {
		return classifyError(nil, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return ErrDecode{Err: err}
	}
	return nil
}
