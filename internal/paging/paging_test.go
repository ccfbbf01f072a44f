// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package paging

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/bookfinder/internal/metrics"
	"github.com/pdiddy/bookfinder/internal/openlibrary"
)

// --- test helpers ---

type call struct {
	title       string
	limit, page int
}

// fakeSearcher serves scripted pages. A page with an entry in errs fails
// once with that error.
type fakeSearcher struct {
	mu    sync.Mutex
	pages map[int]string
	errs  map[int]error
	calls []call
}

func (f *fakeSearcher) Search(_ context.Context, title string, limit, page int) (*openlibrary.SearchResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{title, limit, page})
	if err, ok := f.errs[page]; ok {
		delete(f.errs, page)
		return nil, err
	}
	var resp openlibrary.SearchResponse
	if err := json.Unmarshal([]byte(f.pages[page]), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (f *fakeSearcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// recorder collects published snapshots.
type recorder struct {
	mu    sync.Mutex
	snaps []Snapshot
}

func (r *recorder) publish(s Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, s)
}

func (r *recorder) states() []LoadState {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []LoadState
	for _, s := range r.snaps {
		out = append(out, s.State)
	}
	return out
}

func ids(snap Snapshot) []string {
	var out []string
	for _, w := range snap.Works {
		out = append(out, w.ID)
	}
	return out
}

// --- tests ---

func TestLoadMore_GatsbyFirstPage(t *testing.T) {
	s := &fakeSearcher{pages: map[int]string{
		1: `{"docs":[{"key":"W1","title":"The Great Gatsby","author_name":["F. Scott Fitzgerald"],"cover_i":123,"first_publish_year":1925}],"numFound":100}`,
	}}
	rec := &recorder{}
	sess := NewEngine(s, 20).Start(context.Background(), "gatsby", rec.publish)

	require.NoError(t, sess.LoadMore(context.Background()))

	snap := sess.Snapshot()
	require.Len(t, snap.Works, 1)
	w := snap.Works[0]
	assert.Equal(t, "W1", w.ID)
	assert.Equal(t, "The Great Gatsby", w.Title)
	assert.Equal(t, "F. Scott Fitzgerald", w.Author)
	assert.Equal(t, "https://covers.openlibrary.org/b/id/123-M.jpg", w.CoverURL)
	assert.Equal(t, 1925, w.PublishYear)

	assert.Equal(t, Idle, snap.State, "100 results over pages of 20 leave more to load")
	assert.Equal(t, 2, snap.Page)
	assert.Equal(t, 100, snap.NumFound)
	assert.Equal(t, []LoadState{Loading, Idle}, rec.states())
	assert.Equal(t, []call{{"gatsby", 20, 1}}, s.calls)
}

func TestLoadMore_DedupAcrossPages(t *testing.T) {
	s := &fakeSearcher{pages: map[int]string{
		1: `{"docs":[{"key":"/works/A"},{"key":"/works/B"}],"numFound":4}`,
		2: `{"docs":[{"key":"/works/B"},{"key":"/works/C"}],"numFound":4}`,
	}}
	sess := NewEngine(s, 2).Start(context.Background(), "q", nil)
	ctx := context.Background()

	require.NoError(t, sess.LoadMore(ctx))
	require.NoError(t, sess.LoadMore(ctx))

	snap := sess.Snapshot()
	assert.Equal(t, []string{"/works/A", "/works/B", "/works/C"}, ids(snap))
	assert.Equal(t, Exhausted, snap.State, "page 2 of ceil(4/2) is the last")

	require.NoError(t, sess.LoadMore(ctx), "loading past the end is a no-op")
	assert.Equal(t, 2, s.callCount())
}

func TestLoadMore_KeylessDocsDroppedButCounted(t *testing.T) {
	m := metrics.New()
	s := &fakeSearcher{pages: map[int]string{
		1: `{"docs":[{"title":"no key"},{"title":"no key either"}],"numFound":10}`,
		2: `{"docs":[{"key":"/works/Z"}],"numFound":10}`,
	}}
	sess := NewEngine(s, 2, WithMetrics(m)).Start(context.Background(), "q", nil)

	require.NoError(t, sess.LoadMore(context.Background()))
	snap := sess.Snapshot()
	assert.Empty(t, snap.Works)
	assert.Equal(t, Idle, snap.State, "raw documents keep pagination alive")

	require.NoError(t, sess.LoadMore(context.Background()))
	assert.Equal(t, []string{"/works/Z"}, ids(sess.Snapshot()))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.WorksDroppedTotal))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.PagesLoadedTotal))
}

func TestLoadMore_EmptyPageExhausts(t *testing.T) {
	s := &fakeSearcher{pages: map[int]string{
		1: `{"docs":[],"numFound":500}`,
	}}
	sess := NewEngine(s, 20).Start(context.Background(), "q", nil)

	require.NoError(t, sess.LoadMore(context.Background()))
	assert.Equal(t, Exhausted, sess.Snapshot().State)
}

func TestLoadMore_ErrorRetainsPagesAndRetries(t *testing.T) {
	boom := errors.New("connection reset")
	s := &fakeSearcher{
		pages: map[int]string{
			1: `{"docs":[{"key":"/works/A"}],"numFound":3}`,
			2: `{"docs":[{"key":"/works/B"}],"numFound":3}`,
		},
		errs: map[int]error{2: boom},
	}
	rec := &recorder{}
	sess := NewEngine(s, 1).Start(context.Background(), "q", rec.publish)
	ctx := context.Background()

	require.NoError(t, sess.LoadMore(ctx))
	err := sess.LoadMore(ctx)
	require.ErrorIs(t, err, boom)

	snap := sess.Snapshot()
	assert.Equal(t, Error, snap.State)
	assert.Equal(t, 2, snap.Page)
	assert.ErrorIs(t, snap.Err, boom)
	assert.Equal(t, []string{"/works/A"}, ids(snap), "loaded pages survive a failure")

	require.NoError(t, sess.LoadMore(ctx), "load more is ignored in the error state")
	assert.Equal(t, 2, s.callCount())

	require.NoError(t, sess.Retry(ctx))
	snap = sess.Snapshot()
	assert.Equal(t, Idle, snap.State)
	assert.NoError(t, snap.Err)
	assert.Equal(t, []string{"/works/A", "/works/B"}, ids(snap))
	assert.Equal(t, []call{{"q", 1, 1}, {"q", 1, 2}, {"q", 1, 2}}, s.calls)

	require.NoError(t, sess.Retry(ctx), "retry outside the error state is a no-op")
	assert.Equal(t, 3, s.callCount())
}

// blockingSearcher holds every request until released.
type blockingSearcher struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingSearcher) Search(ctx context.Context, _ string, _, _ int) (*openlibrary.SearchResponse, error) {
	b.started <- struct{}{}
	<-b.release
	return &openlibrary.SearchResponse{NumFound: 1, Docs: []openlibrary.SearchDoc{{Key: strPtr("/works/LATE")}}}, nil
}

func strPtr(s string) *string { return &s }

func TestLoadMore_SingleRequestInFlight(t *testing.T) {
	b := &blockingSearcher{started: make(chan struct{}, 2), release: make(chan struct{})}
	sess := NewEngine(b, 20).Start(context.Background(), "q", nil)

	done := make(chan error, 1)
	go func() { done <- sess.LoadMore(context.Background()) }()
	<-b.started

	assert.Equal(t, Loading, sess.Snapshot().State)
	require.NoError(t, sess.LoadMore(context.Background()), "second load while loading is a no-op")
	assert.Empty(t, b.started)

	close(b.release)
	require.NoError(t, <-done)
	assert.Equal(t, Exhausted, sess.Snapshot().State)
}

func TestClose_DiscardsLateCompletion(t *testing.T) {
	m := metrics.New()
	b := &blockingSearcher{started: make(chan struct{}, 1), release: make(chan struct{})}
	rec := &recorder{}
	sess := NewEngine(b, 20, WithMetrics(m)).Start(context.Background(), "old", rec.publish)

	done := make(chan error, 1)
	go func() { done <- sess.LoadMore(context.Background()) }()
	<-b.started

	sess.Close()
	close(b.release)

	require.ErrorIs(t, <-done, ErrSuperseded)
	snap := sess.Snapshot()
	assert.Empty(t, snap.Works, "late results never land")
	assert.Equal(t, []LoadState{Loading}, rec.states(), "nothing published after close")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SupersededTotal))

	assert.ErrorIs(t, sess.LoadMore(context.Background()), ErrSuperseded)
}

func TestSnapshotWorksAreStable(t *testing.T) {
	s := &fakeSearcher{pages: map[int]string{
		1: `{"docs":[{"key":"/works/A"}],"numFound":2}`,
		2: `{"docs":[{"key":"/works/B"}],"numFound":2}`,
	}}
	sess := NewEngine(s, 1).Start(context.Background(), "q", nil)

	require.NoError(t, sess.LoadMore(context.Background()))
	first := sess.Snapshot()
	require.NoError(t, sess.LoadMore(context.Background()))

	assert.Equal(t, []string{"/works/A"}, ids(first), "earlier snapshots do not grow")
	assert.Equal(t, []string{"/works/A", "/works/B"}, ids(sess.Snapshot()))
}

func TestLoadStateString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "loading", Loading.String())
	assert.Equal(t, "error", Error.String())
	assert.Equal(t, "exhausted", Exhausted.String())
	assert.Equal(t, "unknown", LoadState(42).String())
}

func TestNewEngineDefaultsPageSize(t *testing.T) {
	assert.Equal(t, DefaultPageSize, NewEngine(&fakeSearcher{}, 0).PageSize())
}
