// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package paging drives page-by-page title searches. A Session owns the
// accumulated, de-duplicated result list for one query and issues at most
// one page request at a time.
package paging

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/pdiddy/bookfinder/internal/metrics"
	"github.com/pdiddy/bookfinder/internal/normalize"
	"github.com/pdiddy/bookfinder/internal/openlibrary"
	"github.com/pdiddy/bookfinder/pkg/types"
)

// DefaultPageSize is the number of documents requested per page.
const DefaultPageSize = 20

// ErrSuperseded is returned by LoadMore and Retry when the session was closed
// while the request was in flight. The result is discarded.
var ErrSuperseded = errors.New("search session superseded")

// Searcher issues one page of a title search.
type Searcher interface {
	Search(ctx context.Context, title string, limit, page int) (*openlibrary.SearchResponse, error)
}

// LoadState is the pagination state of a session.
type LoadState int

const (
	// Idle means the next page can be requested.
	Idle LoadState = iota
	// Loading means a page request is in flight.
	Loading
	// Error means the last page request failed and can be retried.
	Error
	// Exhausted means no further pages exist.
	Exhausted
)

func (s LoadState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Error:
		return "error"
	case Exhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Snapshot is one published state of a session. Works must not be modified
// by receivers.
type Snapshot struct {
	Query string
	Works []types.Work

	// Page is the next page to request; in the Loading and Error states it
	// is the page in flight or the page that failed.
	Page     int
	State    LoadState
	Err      error
	NumFound int
}

// Engine starts search sessions against a Searcher.
type Engine struct {
	searcher Searcher
	pageSize int
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithMetrics records page and drop counts.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine returns an Engine requesting pageSize documents per page. A
// non-positive pageSize selects DefaultPageSize.
func NewEngine(searcher Searcher, pageSize int, opts ...Option) *Engine {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	e := &Engine{
		searcher: searcher,
		pageSize: pageSize,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// PageSize returns the configured page size.
func (e *Engine) PageSize() int {
	return e.pageSize
}

// Start creates an idle session for query positioned at page 1. Nothing is
// fetched until LoadMore. publish receives every state change and is called
// with the session lock held, so it must not call back into the session.
func (e *Engine) Start(ctx context.Context, query string, publish func(Snapshot)) *Session {
	sctx, cancel := context.WithCancel(ctx)
	if publish == nil {
		publish = func(Snapshot) {}
	}
	return &Session{
		engine:  e,
		query:   query,
		ctx:     sctx,
		cancel:  cancel,
		publish: publish,
		seen:    make(map[string]struct{}),
		page:    1,
		state:   Idle,
	}
}

// Session is the result list of one query.
type Session struct {
	engine  *Engine
	query   string
	ctx     context.Context
	cancel  context.CancelFunc
	publish func(Snapshot)

	mu       sync.Mutex
	works    []types.Work
	seen     map[string]struct{}
	page     int
	state    LoadState
	err      error
	numFound int
	closed   bool
}

// Query returns the session's query text.
func (s *Session) Query() string {
	return s.query
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// LoadMore requests the next page when the session is Idle. It is a no-op
// while a page is loading and once the session is exhausted or failed.
func (s *Session) LoadMore(ctx context.Context) error {
	return s.begin(ctx, Idle)
}

// Retry re-requests the failed page when the session is in the Error state,
// keeping the pages already loaded.
func (s *Session) Retry(ctx context.Context) error {
	return s.begin(ctx, Error)
}

// Close cancels any request in flight. Completions arriving afterwards are
// discarded and nothing more is published.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.cancel()
}

func (s *Session) begin(ctx context.Context, from LoadState) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSuperseded
	}
	if s.state != from {
		s.mu.Unlock()
		return nil
	}
	page := s.page
	s.state = Loading
	s.err = nil
	s.publish(s.snapshotLocked())
	s.mu.Unlock()

	return s.fetch(ctx, page)
}

func (s *Session) fetch(ctx context.Context, page int) error {
	fctx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	e := s.engine
	resp, err := e.searcher.Search(fctx, s.query, e.pageSize, page)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		e.metrics.IncSuperseded()
		e.logger.Debug("discarding superseded page", "query", s.query, "page", page)
		return ErrSuperseded
	}

	if err != nil {
		s.state = Error
		s.err = err
		e.logger.Warn("search page failed", "query", s.query, "page", page, "error", err)
		s.publish(s.snapshotLocked())
		return err
	}

	raw := len(resp.Docs)
	dropped := 0
	for _, doc := range resp.Docs {
		w, ok := normalize.Search(doc)
		if !ok {
			dropped++
			continue
		}
		if _, dup := s.seen[w.ID]; dup {
			continue
		}
		s.seen[w.ID] = struct{}{}
		s.works = append(s.works, w)
	}
	s.numFound = resp.NumFound
	e.metrics.IncPages()
	e.metrics.AddDropped(dropped)

	if raw > 0 && page < totalPages(resp.NumFound, e.pageSize) {
		s.state = Idle
		s.page = page + 1
	} else {
		s.state = Exhausted
	}
	e.logger.Debug("search page loaded",
		"query", s.query, "page", page, "raw", raw, "dropped", dropped,
		"num_found", resp.NumFound, "state", s.state)

	s.publish(s.snapshotLocked())
	return nil
}

func (s *Session) snapshotLocked() Snapshot {
	n := len(s.works)
	return Snapshot{
		Query:    s.query,
		Works:    s.works[:n:n],
		Page:     s.page,
		State:    s.state,
		Err:      s.err,
		NumFound: s.numFound,
	}
}

func totalPages(numFound, pageSize int) int {
	if numFound <= 0 {
		return 0
	}
	return (numFound + pageSize - 1) / pageSize
}
