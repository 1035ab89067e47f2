package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/lixenwraith/danmaku/parameter"
)

// FrameFunc receives every published frame on the scheduler goroutine
type FrameFunc func(*Frame)

// ClockScheduler steps a Simulation on a fixed interval using pausable time
// dt is measured from the clock rather than assumed, so late ticks catch up
// up to parameter.MaxStepDelta per step
type ClockScheduler struct {
	sim      *Simulation
	clock    *PausableClock
	interval time.Duration
	maxDelta time.Duration
	onFrame  FrameFunc
	logger   *slog.Logger
}

// NewClockScheduler creates a scheduler running tickRate steps per second
// A non-positive tickRate falls back to parameter.DefaultTickRate
func NewClockScheduler(sim *Simulation, clock *PausableClock, tickRate int) *ClockScheduler {
	if tickRate <= 0 {
		tickRate = parameter.DefaultTickRate
	}
	if clock == nil {
		clock = NewPausableClock()
	}
	return &ClockScheduler{
		sim:      sim,
		clock:    clock,
		interval: time.Second / time.Duration(tickRate),
		maxDelta: time.Duration(parameter.MaxStepDelta * float64(time.Second)),
		logger:   slog.Default(),
	}
}

// OnFrame registers the per-frame callback, must be called before Run
func (cs *ClockScheduler) OnFrame(fn FrameFunc) {
	cs.onFrame = fn
}

// SetLogger replaces the default logger, must be called before Run
func (cs *ClockScheduler) SetLogger(l *slog.Logger) {
	if l != nil {
		cs.logger = l
	}
}

func (cs *ClockScheduler) Clock() *PausableClock { return cs.clock }

func (cs *ClockScheduler) Interval() time.Duration { return cs.interval }

// Run steps the simulation until ctx is done
// Paused ticks are skipped without advancing the simulation
func (cs *ClockScheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(cs.interval)
	defer ticker.Stop()

	cs.logger.Debug("scheduler started", "interval", cs.interval)
	last := cs.clock.Elapsed()

	for {
		select {
		case <-ctx.Done():
			cs.logger.Debug("scheduler stopped", "ticks", cs.sim.Ticks())
			return nil
		case <-ticker.C:
		}

		if cs.clock.IsPaused() {
			last = cs.clock.Elapsed()
			continue
		}
		cs.tick(&last)
	}
}

// tick advances by the clock time since last, clamped to maxDelta
func (cs *ClockScheduler) tick(last *time.Duration) {
	now := cs.clock.Elapsed()
	delta := now - *last
	*last = now
	if delta <= 0 {
		return
	}
	if delta > cs.maxDelta {
		cs.logger.Debug("step delta clamped", "delta", delta)
		delta = cs.maxDelta
	}

	frame := cs.sim.Step(float32(delta.Seconds()))
	if cs.onFrame != nil {
		cs.onFrame(frame)
	}
}
