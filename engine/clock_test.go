package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type manualTime struct {
	mu  sync.Mutex
	now time.Time
}

func (m *manualTime) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *manualTime) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}

// TestPausableClockExcludesPauses verifies paused time is not counted
func TestPausableClockExcludesPauses(t *testing.T) {
	src := &manualTime{now: time.Unix(1000, 0)}
	clock := NewPausableClockWith(src)

	src.Advance(2 * time.Second)
	if got := clock.Elapsed(); got != 2*time.Second {
		t.Errorf("Expected 2s, got %v", got)
	}

	clock.Pause()
	clock.Pause()
	src.Advance(5 * time.Second)
	if got := clock.Elapsed(); got != 2*time.Second {
		t.Errorf("Expected frozen 2s while paused, got %v", got)
	}
	if got := clock.TotalPauseDuration(); got != 5*time.Second {
		t.Errorf("Expected 5s pause in progress, got %v", got)
	}

	clock.Resume()
	clock.Resume()
	src.Advance(time.Second)
	if got := clock.Elapsed(); got != 3*time.Second {
		t.Errorf("Expected 3s after resume, got %v", got)
	}
}

// TestPausableClockToggle verifies Toggle reports the new state
func TestPausableClockToggle(t *testing.T) {
	clock := NewPausableClockWith(&manualTime{now: time.Unix(0, 0)})
	if !clock.Toggle() || !clock.IsPaused() {
		t.Error("Expected first toggle to pause")
	}
	if clock.Toggle() || clock.IsPaused() {
		t.Error("Expected second toggle to resume")
	}
}

// TestSchedulerClampsDelta verifies a stalled clock steps at most MaxStepDelta
func TestSchedulerClampsDelta(t *testing.T) {
	src := &manualTime{now: time.Unix(0, 0)}
	sim := newTestSimulation(t)
	pool := sim.Pool("")
	cs := NewClockScheduler(sim, NewPausableClockWith(src), 60)

	var frames int
	cs.OnFrame(func(*Frame) { frames++ })

	last := cs.Clock().Elapsed()
	cs.tick(&last)
	if frames != 0 {
		t.Errorf("Expected no step without elapsed time, got %d", frames)
	}

	src.Advance(3 * time.Second)
	cs.tick(&last)
	if frames != 1 {
		t.Fatalf("Expected one frame, got %d", frames)
	}
	if e := pool.Elapsed(); e != 0.25 {
		t.Errorf("Expected clamped dt 0.25, got %v", e)
	}
}

// TestSchedulerRunsUntilCancelled verifies steps happen and Run returns on cancel
func TestSchedulerRunsUntilCancelled(t *testing.T) {
	sim := newTestSimulation(t)
	cs := NewClockScheduler(sim, nil, 200)
	cs.SetLogger(quietLogger())

	var frames atomic.Int64
	cs.OnFrame(func(f *Frame) { frames.Add(1) })

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	if err := cs.Run(ctx); err != nil {
		t.Fatalf("Run returned %v", err)
	}
	if frames.Load() == 0 {
		t.Error("Expected at least one frame")
	}
	if uint64(frames.Load()) != sim.Ticks() {
		t.Errorf("Expected frame count %d to match ticks %d", frames.Load(), sim.Ticks())
	}
}

// TestSchedulerPausedSkipsSteps verifies no steps while the clock is paused
func TestSchedulerPausedSkipsSteps(t *testing.T) {
	sim := newTestSimulation(t)
	clock := NewPausableClock()
	clock.Pause()
	cs := NewClockScheduler(sim, clock, 200)
	cs.SetLogger(quietLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	_ = cs.Run(ctx)

	if sim.Ticks() != 0 {
		t.Errorf("Expected no ticks while paused, got %d", sim.Ticks())
	}
}

// TestSchedulerDefaultRate verifies non-positive rates fall back
func TestSchedulerDefaultRate(t *testing.T) {
	cs := NewClockScheduler(NewSimulation(nil), nil, 0)
	if cs.Interval() != time.Second/60 {
		t.Errorf("Expected 1/60s interval, got %v", cs.Interval())
	}
}
