package locking

import (
	"context"
	"sync"
)

// ListingLocker serializes the conflict-check-and-insert sequence for a single
// listing. The check-then-act between the availability predicate and the
// reservation insert would otherwise race under concurrent overlapping
// requests.
type ListingLocker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

type lockEntry struct {
	ch   chan struct{}
	refs int
}

// KeyedMutex is an in-process ListingLocker keyed by listing identifier.
// Storage adapters with real transactions (Mongo sessions) do not need it;
// the in-memory adapter does.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*lockEntry)}
}

// Acquire blocks until the key's lock is held or the context is cancelled.
// The returned release function must be called exactly once.
func (m *KeyedMutex) Acquire(ctx context.Context, key string) (func(), error) {
	m.mu.Lock()
	entry, ok := m.locks[key]
	if !ok {
		entry = &lockEntry{ch: make(chan struct{}, 1)}
		m.locks[key] = entry
	}
	entry.refs++
	m.mu.Unlock()

	select {
	case entry.ch <- struct{}{}:
	case <-ctx.Done():
		m.put(key, entry)
		return nil, ctx.Err()
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			<-entry.ch
			m.put(key, entry)
		})
	}
	return release, nil
}

func (m *KeyedMutex) put(key string, entry *lockEntry) {
	m.mu.Lock()
	entry.refs--
	if entry.refs == 0 {
		delete(m.locks, key)
	}
	m.mu.Unlock()
}

var _ ListingLocker = (*KeyedMutex)(nil)
