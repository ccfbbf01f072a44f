// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package favorites

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pdiddy/bookfinder/internal/stream"
	"github.com/pdiddy/bookfinder/pkg/types"
)

// Snapshot is one published state of the favorites list. Err is set when the
// list could not be read; Entries then holds the last good list.
type Snapshot struct {
	Entries []types.FavoriteEntry
	Err     error
}

// Service wraps a Repository with per-key write serialization and a
// publish-on-change list stream.
type Service struct {
	repo   Repository
	locks  *keyLocks
	feed   *stream.Broadcaster[Snapshot]
	now    func() time.Time
	logger *slog.Logger

	// refreshMu orders list-and-publish so a stale list never overwrites a
	// newer one on the stream.
	refreshMu sync.Mutex
	loaded    bool
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the save-time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService returns a Service over repo.
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		locks:  newKeyLocks(),
		feed:   stream.New[Snapshot](),
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe returns a subscription on the favorites list. The first
// subscriber triggers the initial load.
func (s *Service) Subscribe(ctx context.Context) *stream.Subscription[Snapshot] {
	s.refreshMu.Lock()
	loaded := s.loaded
	s.refreshMu.Unlock()
	if !loaded {
		s.Refresh(ctx)
	}
	return s.feed.Subscribe()
}

// Refresh reads the list and publishes it. A read failure is published as
// Snapshot.Err alongside the previous entries.
func (s *Service) Refresh(ctx context.Context) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	entries, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Warn("listing favorites failed", "error", err)
		prev, _ := s.feed.Last()
		s.feed.Publish(Snapshot{Entries: prev.Entries, Err: err})
		return
	}
	s.loaded = true
	s.feed.Publish(Snapshot{Entries: entries})
}

// List returns the stored entries, newest first.
func (s *Service) List(ctx context.Context) ([]types.FavoriteEntry, error) {
	return s.repo.List(ctx)
}

// Exists reports whether id is saved. Ids match with or without the
// "/works/" prefix.
func (s *Service) Exists(ctx context.Context, id string) (bool, error) {
	id = types.CanonicalWorkID(id)
	unlock := s.locks.lock(id)
	defer unlock()
	return s.repo.Exists(ctx, id)
}

// Save stores a snapshot of w under its canonical id, replacing any earlier
// one.
func (s *Service) Save(ctx context.Context, w types.Work) error {
	if err := validID(w.ID); err != nil {
		return err
	}
	w.ID = types.CanonicalWorkID(w.ID)
	unlock := s.locks.lock(w.ID)
	err := s.repo.Upsert(ctx, types.NewFavoriteEntry(w, s.now()))
	unlock()
	if err != nil {
		return err
	}
	s.Refresh(ctx)
	return nil
}

// Remove deletes id. Removing an unsaved id is not an error.
func (s *Service) Remove(ctx context.Context, id string) error {
	if err := validID(id); err != nil {
		return err
	}
	id = types.CanonicalWorkID(id)
	unlock := s.locks.lock(id)
	err := s.repo.Delete(ctx, id)
	unlock()
	if err != nil {
		return err
	}
	s.Refresh(ctx)
	return nil
}

// Toggle flips the saved state of w and returns the new state. The
// existence check and the write run under the work's key lock.
func (s *Service) Toggle(ctx context.Context, w types.Work) (bool, error) {
	if err := validID(w.ID); err != nil {
		return false, err
	}
	w.ID = types.CanonicalWorkID(w.ID)

	saved, err := s.toggle(ctx, w)
	if err != nil {
		return false, err
	}
	s.logger.Debug("favorite toggled", "id", w.ID, "saved", saved)
	s.Refresh(ctx)
	return saved, nil
}

func (s *Service) toggle(ctx context.Context, w types.Work) (bool, error) {
	unlock := s.locks.lock(w.ID)
	defer unlock()

	exists, err := s.repo.Exists(ctx, w.ID)
	if err != nil {
		return false, err
	}
	if exists {
		if err := s.repo.Delete(ctx, w.ID); err != nil {
			return false, err
		}
		return false, nil
	}
	if err := s.repo.Upsert(ctx, types.NewFavoriteEntry(w, s.now())); err != nil {
		return false, err
	}
	return true, nil
}

// Close ends every subscription and closes the repository.
func (s *Service) Close() error {
	s.feed.Close()
	return s.repo.Close()
}

func validID(id string) error {
	if types.WorkKey(id) == "" {
		return fmt.Errorf("favorite id cannot be empty")
	}
	return nil
}
