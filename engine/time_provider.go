package engine

import "time"

// TimeProvider supplies real time to the clock; tests substitute a manual source
type TimeProvider interface {
	Now() time.Time
}

// MonotonicTimeProvider reads the system clock with its monotonic component
type MonotonicTimeProvider struct{}

func NewMonotonicTimeProvider() MonotonicTimeProvider {
	return MonotonicTimeProvider{}
}

// Now returns the current time with monotonic clock reading
func (MonotonicTimeProvider) Now() time.Time {
	return time.Now()
}
