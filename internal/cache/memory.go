package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// MemoryTier is the process-local cache tier: a mutex-guarded map with
// absolute expiry and a background sweep. Values are stored as JSON so a read
// returns exactly the bytes a write produced, same as the shared tier.
type MemoryTier struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	done    chan struct{}
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

func NewMemoryTier() *MemoryTier {
	t := &MemoryTier{
		entries: make(map[string]memoryEntry),
		done:    make(chan struct{}),
	}
	go t.cleanup()
	return t
}

// Close stops the background sweep goroutine.
func (t *MemoryTier) Close() {
	close(t.done)
}

func (t *MemoryTier) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	t.mu.Lock()
	t.entries[key] = memoryEntry{data: data, expiresAt: time.Now().Add(ttl)}
	t.mu.Unlock()
	return nil
}

func (t *MemoryTier) TryGet(_ context.Context, key string, dest any) (bool, error) {
	t.mu.RLock()
	entry, ok := t.entries[key]
	t.mu.RUnlock()

	if !ok || !time.Now().Before(entry.expiresAt) {
		return false, nil
	}
	if err := json.Unmarshal(entry.data, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (t *MemoryTier) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			t.mu.Lock()
			now := time.Now()
			for key, entry := range t.entries {
				if now.After(entry.expiresAt) {
					delete(t.entries, key)
				}
			}
			t.mu.Unlock()
		case <-t.done:
			return
		}
	}
}

var _ Tier = (*MemoryTier)(nil)
