package lock

import (
	"context"
	"sync"
)

// Locker serializes state transitions per entity identifier. Acquire blocks
// until the lock is held or ctx is done; the returned release function must
// be called on every exit path.
type Locker interface {
	Acquire(ctx context.Context, entityID string) (release func(), err error)
}

// KeyedMutex is the in-process Locker for single-instance deployments: one
// mutex per live entity id, dropped from the table once nobody holds or
// waits for it.
type KeyedMutex struct {
	mu      sync.Mutex
	entries map[string]*keyedEntry
}

type keyedEntry struct {
	ch   chan struct{}
	refs int
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{entries: make(map[string]*keyedEntry)}
}

func (k *KeyedMutex) Acquire(ctx context.Context, entityID string) (func(), error) {
	k.mu.Lock()
	entry, ok := k.entries[entityID]
	if !ok {
		entry = &keyedEntry{ch: make(chan struct{}, 1)}
		k.entries[entityID] = entry
	}
	entry.refs++
	k.mu.Unlock()

	select {
	case entry.ch <- struct{}{}:
		return func() {
			<-entry.ch
			k.unref(entityID, entry)
		}, nil
	case <-ctx.Done():
		k.unref(entityID, entry)
		return nil, ctx.Err()
	}
}

func (k *KeyedMutex) unref(entityID string, entry *keyedEntry) {
	k.mu.Lock()
	entry.refs--
	if entry.refs == 0 {
		delete(k.entries, entityID)
	}
	k.mu.Unlock()
}

var _ Locker = (*KeyedMutex)(nil)
