// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics bundles the Prometheus collectors shared by the catalog
// client, the search engine, and detail resolution. Every method is safe on a
// nil *Metrics so components can run without instrumentation.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for bookfinder.
type Metrics struct {
	Registry            *prometheus.Registry
	RequestsTotal       *prometheus.CounterVec
	RequestDuration     *prometheus.HistogramVec
	RetriesTotal        prometheus.Counter
	ErrorsTotal         *prometheus.CounterVec
	PagesLoadedTotal    prometheus.Counter
	WorksDroppedTotal   prometheus.Counter
	SupersededTotal     prometheus.Counter
	DetailFallbackTotal prometheus.Counter
	DetailCacheHits     prometheus.Counter
}

// New constructs and registers all collectors on a dedicated registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookfinder_catalog_requests_total",
			Help: "Total HTTP requests issued to the catalog.",
		},
		[]string{"endpoint"},
	)
	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bookfinder_catalog_request_duration_seconds",
			Help:    "Catalog request latency including retries.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)
	retries := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bookfinder_catalog_retries_total",
		Help: "Total number of catalog request retries.",
	})
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookfinder_catalog_errors_total",
			Help: "Total number of catalog errors by type.",
		},
		[]string{"error_type"},
	)
	pages := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bookfinder_search_pages_loaded_total",
		Help: "Search result pages appended to a live session.",
	})
	dropped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bookfinder_search_works_dropped_total",
		Help: "Raw search documents dropped for lacking a key.",
	})
	superseded := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bookfinder_search_superseded_total",
		Help: "Page completions discarded because their session was replaced.",
	})
	fallbacks := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bookfinder_detail_fallbacks_total",
		Help: "Detail resolutions that returned the fallback record.",
	})
	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bookfinder_detail_cache_hits_total",
		Help: "Detail resolutions served from the in-memory cache.",
	})

	registry.MustRegister(requests, duration, retries, errorsTotal, pages, dropped, superseded, fallbacks, cacheHits)

	return &Metrics{
		Registry:            registry,
		RequestsTotal:       requests,
		RequestDuration:     duration,
		RetriesTotal:        retries,
		ErrorsTotal:         errorsTotal,
		PagesLoadedTotal:    pages,
		WorksDroppedTotal:   dropped,
		SupersededTotal:     superseded,
		DetailFallbackTotal: fallbacks,
		DetailCacheHits:     cacheHits,
	}
}

// IncRequest counts a catalog request for endpoint.
func (m *Metrics) IncRequest(endpoint string) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(endpoint).Inc()
}

// ObserveDuration records the latency of a catalog request.
func (m *Metrics) ObserveDuration(endpoint string, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// IncRetries counts one retry.
func (m *Metrics) IncRetries() {
	if m == nil {
		return
	}
	m.RetriesTotal.Inc()
}

// IncError counts an error under its type label.
func (m *Metrics) IncError(errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}

// IncPages counts one appended page.
func (m *Metrics) IncPages() {
	if m == nil {
		return
	}
	m.PagesLoadedTotal.Inc()
}

// AddDropped counts n raw documents that did not become works.
func (m *Metrics) AddDropped(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.WorksDroppedTotal.Add(float64(n))
}

// IncSuperseded counts a discarded stale completion.
func (m *Metrics) IncSuperseded() {
	if m == nil {
		return
	}
	m.SupersededTotal.Inc()
}

// IncDetailFallback counts a fail-soft detail resolution.
func (m *Metrics) IncDetailFallback() {
	if m == nil {
		return
	}
	m.DetailFallbackTotal.Inc()
}

// IncDetailCacheHit counts a cached detail resolution.
func (m *Metrics) IncDetailCacheHit() {
	if m == nil {
		return
	}
	m.DetailCacheHits.Inc()
}
