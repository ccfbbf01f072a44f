// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package openlibrary

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/bookfinder/internal/httputil"
	"github.com/pdiddy/bookfinder/internal/metrics"
	"github.com/pdiddy/bookfinder/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = time.Millisecond
}

const gatsbySearchJSON = `{"docs":[{"title":"The Great Gatsby","author_name":["F. Scott Fitzgerald"],"cover_i":8739161,"key":"/works/OL468516W","first_publish_year":1925,"isbn":["9780743273565"]}],"numFound":1000}`

func testConfig(baseURL string) types.CatalogConfig {
	cfg := types.DefaultConfig().Catalog
	cfg.BaseURL = baseURL
	cfg.RequestsPerSecond = 0
	cfg.Timeout = 5 * time.Second
	return cfg
}

func TestSearchSendsQueryParameters(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search.json", r.URL.Path)
		assert.Equal(t, "gatsby", r.URL.Query().Get("title"))
		assert.Equal(t, "20", r.URL.Query().Get("limit"))
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		assert.Equal(t, "bookfinder/0.1", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(gatsbySearchJSON))
	}))
	defer ts.Close()

	c := NewClient(testConfig(ts.URL), WithHTTPClient(ts.Client()))
	res, err := c.Search(context.Background(), "gatsby", 20, 1)
	require.NoError(t, err)

	assert.Equal(t, 1000, res.NumFound)
	require.Len(t, res.Docs, 1)
	assert.Equal(t, "The Great Gatsby", *res.Docs[0].Title)
}

func TestGetWorkDetailsStripsPrefix(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/works/OL468516W.json", r.URL.Path)
		w.Write([]byte(`{"title": "The Great Gatsby", "description": "Jay."}`))
	}))
	defer ts.Close()

	c := NewClient(testConfig(ts.URL), WithHTTPClient(ts.Client()))
	for _, id := range []string{"OL468516W", "/works/OL468516W"} {
		res, err := c.GetWorkDetails(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, "The Great Gatsby", *res.Title)
		assert.Equal(t, Text{Kind: TextPlain, Value: "Jay."}, res.Description)
	}
}

func TestGetWorkDetailsEmptyKey(t *testing.T) {
	c := NewClient(testConfig("http://example.invalid"))
	_, err := c.GetWorkDetails(context.Background(), "/works/")
	assert.Error(t, err)
}

func TestClientErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		label  string
	}{
		{"not found", http.StatusNotFound, "", "not_found"},
		{"rate limited", http.StatusTooManyRequests, "", "rate_limited"},
		{"server error", http.StatusInternalServerError, "", "status"},
		{"bad json", http.StatusOK, "<html>", "decode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer ts.Close()

			m := metrics.New()
			cfg := testConfig(ts.URL)
			cfg.MaxRetries = 1
			c := NewClient(cfg, WithHTTPClient(ts.Client()), WithMetrics(m))

			_, err := c.Search(context.Background(), "x", 20, 1)
			require.Error(t, err)
			assert.Equal(t, tt.label, ErrorTypeLabel(err))
		})
	}
}

func TestClientRetriesThroughHTTPMock(t *testing.T) {
	hc := &http.Client{}
	httpmock.ActivateNonDefault(hc)
	defer httpmock.DeactivateAndReset()

	var calls int32
	httpmock.RegisterResponder(http.MethodGet, "https://openlibrary.org/search.json",
		func(req *http.Request) (*http.Response, error) {
			if atomic.AddInt32(&calls, 1) == 1 {
				return httpmock.NewStringResponse(http.StatusServiceUnavailable, ""), nil
			}
			return httpmock.NewStringResponse(http.StatusOK, gatsbySearchJSON), nil
		})

	m := metrics.New()
	c := NewClient(testConfig("https://openlibrary.org/"), WithHTTPClient(hc), WithMetrics(m))

	res, err := c.Search(context.Background(), "gatsby", 20, 2)
	require.NoError(t, err)
	assert.Len(t, res.Docs, 1)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, 2, httpmock.GetTotalCallCount())
}

func TestClientTransportErrorIsConnection(t *testing.T) {
	hc := &http.Client{}
	httpmock.ActivateNonDefault(hc)
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodGet, "=~^https://openlibrary.org/works/",
		httpmock.NewErrorResponder(errors.New("boom")))

	cfg := testConfig("https://openlibrary.org")
	cfg.MaxRetries = 0
	c := NewClient(cfg, WithHTTPClient(hc))

	_, err := c.GetWorkDetails(context.Background(), "OL1W")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestClientHonoursCancellation(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer ts.Close()

	c := NewClient(testConfig(ts.URL), WithHTTPClient(ts.Client()))
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := c.Search(ctx, "x", 20, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
