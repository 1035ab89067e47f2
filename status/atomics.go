package status

import (
	"math"
	"sync/atomic"
)

// MaxStringLen bounds string metrics; pattern names longer than this are truncated
const MaxStringLen = 64

// AtomicFloat is a float64 stored as its bit pattern; the zero value reads 0.0
type AtomicFloat struct {
	bits atomic.Uint64
}

func (f *AtomicFloat) Set(val float64) {
	f.bits.Store(math.Float64bits(val))
}

func (f *AtomicFloat) Get() float64 {
	return math.Float64frombits(f.bits.Load())
}

// Add atomically adds delta and returns the new value
func (f *AtomicFloat) Add(delta float64) float64 {
	return f.update(func(cur float64, _ bool) float64 { return cur + delta })
}

// Smooth folds sample into an exponential moving average with weight alpha in (0,1]
// The first sample on an unset value seeds the average directly
func (f *AtomicFloat) Smooth(sample, alpha float64) float64 {
	return f.update(func(cur float64, unset bool) float64 {
		if unset {
			return sample
		}
		return cur + alpha*(sample-cur)
	})
}

// update applies fn in a CAS loop; unset reports the all-zero bit pattern
func (f *AtomicFloat) update(fn func(cur float64, unset bool) float64) float64 {
	for {
		old := f.bits.Load()
		next := fn(math.Float64frombits(old), old == 0)
		if f.bits.CompareAndSwap(old, math.Float64bits(next)) {
			return next
		}
	}
}

// AtomicString holds a short label; the zero value reads ""
type AtomicString struct {
	ptr atomic.Pointer[string]
}

// Store sets the value, truncated to MaxStringLen bytes
func (s *AtomicString) Store(val string) {
	if len(val) > MaxStringLen {
		val = val[:MaxStringLen]
	}
	s.ptr.Store(&val)
}

func (s *AtomicString) Load() string {
	if p := s.ptr.Load(); p != nil {
		return *p
	}
	return ""
}
