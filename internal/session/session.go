// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session turns a stream of typed query text into search sessions.
// Text is debounced; when it settles on a new query the previous session is
// closed and a fresh one loads its first page. Results of every session flow
// through one stream whose identity never changes.
package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pdiddy/bookfinder/internal/paging"
	"github.com/pdiddy/bookfinder/internal/stream"
)

// DefaultDebounce is the quiescence window before typed text becomes a search.
const DefaultDebounce = 300 * time.Millisecond

// Controller owns the current query and its search session.
type Controller struct {
	engine   *paging.Engine
	debounce time.Duration
	feed     *stream.Broadcaster[paging.Snapshot]
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	gen    atomic.Uint64
	loads  sync.WaitGroup

	mu          sync.Mutex
	query       string
	seq         uint64
	timer       *time.Timer
	active      *paging.Session
	activeQuery string
	started     bool
	closed      bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithDebounce sets the debounce window.
func WithDebounce(d time.Duration) Option {
	return func(c *Controller) { c.debounce = d }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// New returns a Controller running sessions on engine.
func New(engine *paging.Engine, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		engine:   engine,
		debounce: DefaultDebounce,
		feed:     stream.New[paging.Snapshot](),
		logger:   slog.Default(),
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetQuery replaces the query text. The search starts once no further text
// arrives within the debounce window, and only if the settled text differs
// from the active session's query.
func (c *Controller) SetQuery(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	c.query = text
	c.seq++
	seq := c.seq
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.debounce, func() { c.settle(seq) })
}

// Query returns the latest query text.
func (c *Controller) Query() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

// Subscribe returns a subscription on the results stream. The latest
// snapshot, if any, is delivered first.
func (c *Controller) Subscribe() *stream.Subscription[paging.Snapshot] {
	return c.feed.Subscribe()
}

// Current returns the latest published snapshot.
func (c *Controller) Current() (paging.Snapshot, bool) {
	return c.feed.Last()
}

// Refresh restarts the active query from page 1.
func (c *Controller) Refresh() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || !c.started {
		return
	}
	c.startLocked(c.activeQuery)
}

// LoadMore requests the next page of the active session.
func (c *Controller) LoadMore(ctx context.Context) error {
	sess := c.session()
	if sess == nil {
		return nil
	}
	return sess.LoadMore(ctx)
}

// Retry re-requests the failed page of the active session.
func (c *Controller) Retry(ctx context.Context) error {
	sess := c.session()
	if sess == nil {
		return nil
	}
	return sess.Retry(ctx)
}

// Close stops the debounce timer and the active session, waits for
// in-flight loads to finish and ends every subscription.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
	}
	if c.active != nil {
		c.active.Close()
	}
	c.cancel()
	c.mu.Unlock()

	c.loads.Wait()
	c.feed.Close()
}

func (c *Controller) session() *paging.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

func (c *Controller) settle(seq uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || seq != c.seq {
		return
	}
	if c.started && c.query == c.activeQuery {
		return
	}
	c.startLocked(c.query)
}

// startLocked replaces the active session with one for query. The old
// session is closed before the generation moves so it can no longer publish.
func (c *Controller) startLocked(query string) {
	if c.active != nil {
		c.active.Close()
		c.active = nil
	}
	gen := c.gen.Add(1)
	c.activeQuery = query
	c.started = true

	if strings.TrimSpace(query) == "" {
		c.feed.Publish(paging.Snapshot{Query: query, State: paging.Exhausted})
		return
	}

	c.logger.Debug("starting search session", "query", query, "generation", gen)
	sess := c.engine.Start(c.ctx, query, func(s paging.Snapshot) {
		if c.gen.Load() != gen {
			return
		}
		c.feed.Publish(s)
	})
	c.active = sess

	c.loads.Add(1)
	go func() {
		defer c.loads.Done()
		if err := sess.LoadMore(c.ctx); err != nil && !errors.Is(err, paging.ErrSuperseded) {
			c.logger.Debug("first page failed", "query", query, "error", err)
		}
	}()
}
