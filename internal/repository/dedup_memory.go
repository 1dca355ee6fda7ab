package repository

import (
	"context"
	"sync"
	"time"
)

// MemoryDedup is the process-local deduplicator. Restarts forget all
// history, and concurrent instances don't see each other's markers; both
// are accepted for single-instance deployments.
type MemoryDedup struct {
	mu   sync.Mutex
	seen map[string]time.Time
	now  func() time.Time
}

func NewMemoryDedup() *MemoryDedup {
	return &MemoryDedup{seen: make(map[string]time.Time), now: time.Now}
}

// ShouldProcess returns true the first time an event id is seen within
// the TTL window. Expired markers are swept lazily on each call.
func (d *MemoryDedup) ShouldProcess(_ context.Context, eventID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	for id, at := range d.seen {
		if now.Sub(at) >= dedupTTL {
			delete(d.seen, id)
		}
	}

	if _, ok := d.seen[eventID]; ok {
		return false, nil
	}
	d.seen[eventID] = now
	return true, nil
}
