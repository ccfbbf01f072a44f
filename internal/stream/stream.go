// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package stream is a publish-on-change broadcaster of state snapshots.
// Each subscriber receives the latest value; a slow subscriber skips
// intermediate values instead of blocking the publisher.
package stream

import "sync"

// Broadcaster fans snapshots of type T out to subscribers.
type Broadcaster[T any] struct {
	mu      sync.Mutex
	subs    map[uint64]chan T
	next    uint64
	last    T
	hasLast bool
	closed  bool
}

// New returns an empty broadcaster.
func New[T any]() *Broadcaster[T] {
	return &Broadcaster[T]{subs: make(map[uint64]chan T)}
}

// Subscription is a cancellable handle on a Broadcaster. C yields snapshots
// and is closed by Cancel or when the broadcaster closes.
type Subscription[T any] struct {
	C      <-chan T
	cancel func()
	once   sync.Once
}

// Cancel releases the subscription. It is safe to call more than once.
func (s *Subscription[T]) Cancel() {
	s.once.Do(s.cancel)
}

// Subscribe registers a subscriber. If a value has been published it is
// delivered immediately.
func (b *Broadcaster[T]) Subscribe() *Subscription[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan T, 1)
	if b.closed {
		close(ch)
		return &Subscription[T]{C: ch, cancel: func() {}}
	}

	id := b.next
	b.next++
	b.subs[id] = ch
	if b.hasLast {
		ch <- b.last
	}
	return &Subscription[T]{C: ch, cancel: func() { b.remove(id) }}
}

// Publish records v as the latest value and delivers it to every subscriber,
// replacing any value a subscriber has not consumed yet.
func (b *Broadcaster[T]) Publish(v T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.last = v
	b.hasLast = true
	for _, ch := range b.subs {
		offer(ch, v)
	}
}

// Last returns the most recently published value.
func (b *Broadcaster[T]) Last() (T, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last, b.hasLast
}

// Close closes every subscriber channel. Later publishes are ignored.
func (b *Broadcaster[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		close(ch)
		delete(b.subs, id)
	}
}

func (b *Broadcaster[T]) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok := b.subs[id]; ok {
		close(ch)
		delete(b.subs, id)
	}
}

// offer sends v on a one-slot channel, dropping a stale unread value first.
// Callers hold b.mu, so no other sender races for the slot.
func offer[T any](ch chan T, v T) {
	select {
	case ch <- v:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- v:
	default:
	}
}
