package engine

import (
	"sync"
	"sync/atomic"
	"time"
)

// PausableClock measures simulation time, which stands still while paused
type PausableClock struct {
	mu sync.RWMutex

	source    TimeProvider
	startTime time.Time

	isPaused        atomic.Bool
	pauseStartTime  time.Time     // When current pause started (real time)
	totalPausedTime time.Duration // Cumulative pause duration
}

// NewPausableClock creates a running clock on the system time
func NewPausableClock() *PausableClock {
	return NewPausableClockWith(NewMonotonicTimeProvider())
}

// NewPausableClockWith creates a running clock reading source
func NewPausableClockWith(source TimeProvider) *PausableClock {
	return &PausableClock{
		source:    source,
		startTime: source.Now(),
	}
}

// Elapsed returns simulation time since creation, excluding pauses
func (pc *PausableClock) Elapsed() time.Duration {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	if pc.isPaused.Load() {
		// Frozen at the pause point
		return pc.pauseStartTime.Sub(pc.startTime) - pc.totalPausedTime
	}
	return pc.source.Now().Sub(pc.startTime) - pc.totalPausedTime
}

// Pause stops time advancement; repeated calls are no-ops
func (pc *PausableClock) Pause() {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	if pc.isPaused.CompareAndSwap(false, true) {
		pc.pauseStartTime = pc.source.Now()
	}
}

// Resume continues time advancement; repeated calls are no-ops
func (pc *PausableClock) Resume() {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	if pc.isPaused.CompareAndSwap(true, false) {
		pc.totalPausedTime += pc.source.Now().Sub(pc.pauseStartTime)
		pc.pauseStartTime = time.Time{}
	}
}

// Toggle flips the pause state and returns the new state
func (pc *PausableClock) Toggle() bool {
	if pc.IsPaused() {
		pc.Resume()
		return false
	}
	pc.Pause()
	return true
}

func (pc *PausableClock) IsPaused() bool {
	return pc.isPaused.Load()
}

// TotalPauseDuration returns cumulative pause time, including a pause in progress
func (pc *PausableClock) TotalPauseDuration() time.Duration {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	total := pc.totalPausedTime
	if pc.isPaused.Load() {
		total += pc.source.Now().Sub(pc.pauseStartTime)
	}
	return total
}
