package status

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Metric keys published by the simulation
const (
	BulletSpawned  = "bullet.spawned"
	BulletEvicted  = "bullet.evicted"
	BulletExpired  = "bullet.expired"
	BulletCollided = "bullet.collided"
	BulletAlive    = "bullet.alive"

	EngineTicks  = "engine.ticks"
	EngineStepMs = "engine.step_ms"

	PlayerHits = "player.hits"

	FireRequests = "fire.requests"
	FireUnknown  = "fire.unknown"
	FireDropped  = "fire.dropped"

	PatternSelected = "pattern.selected"
)

// Registry is the central metrics facade
// Pools and the driver cache pointers at construction; hot loops write directly to atomics
type Registry struct {
	Bools   *MetricMap[atomic.Bool]
	Ints    *MetricMap[atomic.Int64]
	Floats  *MetricMap[AtomicFloat]
	Strings *MetricMap[AtomicString]
}

// NewRegistry creates an initialized Registry
func NewRegistry() *Registry {
	return &Registry{
		Bools:   NewMetricMap[atomic.Bool](),
		Ints:    NewMetricMap[atomic.Int64](),
		Floats:  NewMetricMap[AtomicFloat](),
		Strings: NewMetricMap[AtomicString](),
	}
}

// TotalCount returns total metrics across all types
func (r *Registry) TotalCount() int {
	return r.Bools.Count() + r.Ints.Count() + r.Floats.Count() + r.Strings.Count()
}

// Snapshot copies every metric into a plain map, keys in all four namespaces are unique by convention
func (r *Registry) Snapshot() map[string]any {
	out := make(map[string]any, r.TotalCount())
	for k, p := range r.Bools.All() {
		out[k] = p.Load()
	}
	for k, p := range r.Ints.All() {
		out[k] = p.Load()
	}
	for k, p := range r.Floats.All() {
		out[k] = p.Get()
	}
	for k, p := range r.Strings.All() {
		out[k] = p.Load()
	}
	return out
}

// Summary renders selected metrics as "key=value" pairs in the given order
// Missing keys are skipped without registering them
func (r *Registry) Summary(keys ...string) string {
	var b strings.Builder
	for _, k := range keys {
		var s string
		switch {
		case r.Ints.Has(k):
			s = fmt.Sprintf("%s=%d", k, r.Ints.Get(k).Load())
		case r.Floats.Has(k):
			s = fmt.Sprintf("%s=%.2f", k, r.Floats.Get(k).Get())
		case r.Strings.Has(k):
			s = fmt.Sprintf("%s=%s", k, r.Strings.Get(k).Load())
		case r.Bools.Has(k):
			s = fmt.Sprintf("%s=%t", k, r.Bools.Get(k).Load())
		default:
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(s)
	}
	return b.String()
}
