package status

import (
	"iter"
	"maps"
	"slices"
	"sync"
)

// MetricMap lazily allocates one metric of type T per key
// Only registration locks; callers cache the returned pointer and update it lock-free
type MetricMap[T any] struct {
	mu    sync.RWMutex
	items map[string]*T
}

func NewMetricMap[T any]() *MetricMap[T] {
	return &MetricMap[T]{items: make(map[string]*T)}
}

// Get returns the metric for key, allocating it on first use
func (m *MetricMap[T]) Get(key string) *T {
	m.mu.RLock()
	ptr, ok := m.items[key]
	m.mu.RUnlock()
	if ok {
		return ptr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if ptr, ok := m.items[key]; ok {
		return ptr
	}
	ptr = new(T)
	m.items[key] = ptr
	return ptr
}

// Has reports whether key is registered without registering it
func (m *MetricMap[T]) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.items[key]
	return ok
}

// Keys returns registered keys sorted
func (m *MetricMap[T]) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Sorted(maps.Keys(m.items))
}

// All yields metrics in key order over a snapshot of the key set
// The loop body may register new keys; they are not visited
func (m *MetricMap[T]) All() iter.Seq2[string, *T] {
	return func(yield func(string, *T) bool) {
		m.mu.RLock()
		keys := slices.Sorted(maps.Keys(m.items))
		ptrs := make([]*T, len(keys))
		for i, k := range keys {
			ptrs[i] = m.items[k]
		}
		m.mu.RUnlock()

		for i, k := range keys {
			if !yield(k, ptrs[i]) {
				return
			}
		}
	}
}

func (m *MetricMap[T]) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
