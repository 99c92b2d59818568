package idalloc

import (
	"context"
	"sync"
)

// MemoryRegistry is a process-local Registry.
type MemoryRegistry struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

// NewMemoryRegistry creates a registry that already holds existing.
func NewMemoryRegistry(existing ...string) *MemoryRegistry {
	r := &MemoryRegistry{ids: make(map[string]struct{}, len(existing))}
	for _, id := range existing {
		r.ids[id] = struct{}{}
	}
	return r
}

func (r *MemoryRegistry) Claim(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.ids[id]; ok {
		return false, nil
	}
	r.ids[id] = struct{}{}
	return true, nil
}

// Len returns the number of claimed identifiers.
func (r *MemoryRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ids)
}
