// Package registry maps pool keys to bullet pools
package registry

import (
	"maps"
	"slices"
	"sync"

	"github.com/lixenwraith/danmaku/bullet"
)

// Registry owns the pools of one simulation keyed by name
// Lookups take the read lock; pools themselves are not guarded here
type Registry struct {
	mu    sync.RWMutex
	pools map[string]*bullet.Pool
}

func New() *Registry {
	return &Registry{pools: make(map[string]*bullet.Pool)}
}

// Register adds pool by key, replacing any previous pool
func (r *Registry) Register(key string, pool *bullet.Pool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pools[key] = pool
}

// Get retrieves a pool by key
func (r *Registry) Get(key string) (*bullet.Pool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.pools[key]
	return p, ok
}

// GetOrCreate returns the pool under key, building it with capacity and opts when absent
// The sprite defaults to the key unless opts set one
func (r *Registry) GetOrCreate(key string, capacity int, opts ...bullet.Option) *bullet.Pool {
	if p, ok := r.Get(key); ok {
		return p
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.pools[key]; ok {
		return p
	}
	opts = append([]bullet.Option{bullet.WithSprite(key)}, opts...)
	p := bullet.NewPool(capacity, opts...)
	r.pools[key] = p
	return p
}

// Remove drops a pool, reporting whether it was present
func (r *Registry) Remove(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.pools[key]
	delete(r.pools, key)
	return ok
}

// Keys returns all registered keys sorted
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.pools))
}

// Each calls fn for every pool in key order
// The key set is copied first, so fn may register or remove pools
func (r *Registry) Each(fn func(key string, pool *bullet.Pool)) {
	for _, key := range r.Keys() {
		if p, ok := r.Get(key); ok {
			fn(key, p)
		}
	}
}

// Pools returns the pools in key order
func (r *Registry) Pools() []*bullet.Pool {
	keys := r.Keys()
	out := make([]*bullet.Pool, 0, len(keys))
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, k := range keys {
		if p, ok := r.pools[k]; ok {
			out = append(out, p)
		}
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.pools)
}
