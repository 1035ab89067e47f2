// Package engine drives the bullet pools: it drains fire requests, steps every pool and publishes frames
package engine

import (
	"log/slog"
	"math"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lixenwraith/danmaku/bullet"
	"github.com/lixenwraith/danmaku/event"
	"github.com/lixenwraith/danmaku/parameter"
	"github.com/lixenwraith/danmaku/pattern"
	"github.com/lixenwraith/danmaku/registry"
	"github.com/lixenwraith/danmaku/status"
	"github.com/lixenwraith/danmaku/vmath"
)

// DefaultPool is the pool key used when a fire request names none
const DefaultPool = "default"

// Simulation owns the pattern library, the pools and the fire queue
// Step runs on one goroutine; Trigger, Fire, Reset, SetPlayer and Frame are safe from any goroutine
type Simulation struct {
	library  *pattern.Library
	pools    *registry.Registry
	queue    *event.FireQueue
	executor *pattern.Executor
	logger   *slog.Logger

	defaultPool  string
	poolCapacity int
	poolOptions  []bullet.Option

	// Player position packed as two float32 bit patterns
	player atomic.Uint64
	tick   atomic.Uint64
	frame  atomic.Pointer[Frame]
	reset  atomic.Bool

	pending []event.FireRequest

	statusReg     *status.Registry
	statTicks     *atomic.Int64
	statStepMs    *status.AtomicFloat
	statRequests  *atomic.Int64
	statUnknown   *atomic.Int64
	statDropped   *atomic.Int64
	statHitsTotal *atomic.Int64
}

// Option configures a Simulation
type Option func(*Simulation)

// WithLogger sets the logger for fire diagnostics
func WithLogger(l *slog.Logger) Option {
	return func(s *Simulation) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStatus publishes engine and pool metrics to reg
func WithStatus(reg *status.Registry) Option {
	return func(s *Simulation) {
		if reg != nil {
			s.statusReg = reg
		}
	}
}

// WithPoolCapacity sets the capacity of pools created on first use
func WithPoolCapacity(n int) Option {
	return func(s *Simulation) { s.poolCapacity = n }
}

// WithPoolOptions appends options applied to pools created on first use
func WithPoolOptions(opts ...bullet.Option) Option {
	return func(s *Simulation) { s.poolOptions = append(s.poolOptions, opts...) }
}

// WithDefaultPool renames the pool used by requests without a pool key
func WithDefaultPool(key string) Option {
	return func(s *Simulation) { s.defaultPool = key }
}

// WithRegistry uses an existing pool registry
func WithRegistry(r *registry.Registry) Option {
	return func(s *Simulation) {
		if r != nil {
			s.pools = r
		}
	}
}

// NewSimulation creates a simulation over lib; a nil lib starts empty
func NewSimulation(lib *pattern.Library, opts ...Option) *Simulation {
	if lib == nil {
		lib = pattern.NewLibrary()
	}
	s := &Simulation{
		library:      lib,
		pools:        registry.New(),
		queue:        event.NewFireQueue(),
		executor:     pattern.NewExecutor(),
		logger:       slog.Default(),
		defaultPool:  DefaultPool,
		poolCapacity: parameter.DefaultPoolCapacity,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.statusReg == nil {
		s.statusReg = status.NewRegistry()
	}

	s.statTicks = s.statusReg.Ints.Get(status.EngineTicks)
	s.statStepMs = s.statusReg.Floats.Get(status.EngineStepMs)
	s.statRequests = s.statusReg.Ints.Get(status.FireRequests)
	s.statUnknown = s.statusReg.Ints.Get(status.FireUnknown)
	s.statDropped = s.statusReg.Ints.Get(status.FireDropped)
	s.statHitsTotal = s.statusReg.Ints.Get(status.PlayerHits)

	s.frame.Store(&Frame{})
	return s
}

// Pool returns the pool under key, creating it with the simulation's pool settings
func (s *Simulation) Pool(key string) *bullet.Pool {
	if key == "" {
		key = s.defaultPool
	}
	opts := append([]bullet.Option{bullet.WithMetrics(s.statusReg)}, s.poolOptions...)
	return s.pools.GetOrCreate(key, s.poolCapacity, opts...)
}

// Trigger queues a fire request for the next Step
// Returns false when the queue is full; the request is counted in fire.dropped
func (s *Simulation) Trigger(req event.FireRequest) bool {
	if s.queue.Push(req) {
		return true
	}
	s.statDropped.Add(1)
	return false
}

// Fire queues pattern name into the default pool from the origin
func (s *Simulation) Fire(name string) bool {
	return s.Trigger(event.FireRequest{Pattern: name})
}

// SetPlayer moves the collision target
func (s *Simulation) SetPlayer(pos vmath.Vec2) {
	s.player.Store(uint64(math.Float32bits(pos.X))<<32 | uint64(math.Float32bits(pos.Y)))
}

// Player returns the collision target
func (s *Simulation) Player() vmath.Vec2 {
	v := s.player.Load()
	return vmath.Vec2{X: math.Float32frombits(uint32(v >> 32)), Y: math.Float32frombits(uint32(v))}
}

// Step advances the simulation by dt seconds:
// fire requests are executed, then every pool ticks, collides and applies modifiers,
// then a new Frame is published
func (s *Simulation) Step(dt float32) *Frame {
	start := time.Now()

	if s.reset.Swap(false) {
		s.pools.Each(func(_ string, p *bullet.Pool) { p.Reset() })
	}

	s.pending = s.queue.Consume(s.pending[:0])
	for _, req := range s.pending {
		s.execute(req)
	}

	player := s.Player()
	pools := s.pools.Pools()
	hits := make([]int, len(pools))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, pool := range pools {
		g.Go(func() error {
			pool.Tick(dt)
			hits[i] = pool.CheckCollisions(player)
			pool.ApplyModifiers(pool.Elapsed())
			return nil
		})
	}
	// Pool passes never fail; Wait is the join barrier
	_ = g.Wait()

	f := &Frame{
		Tick:   s.tick.Add(1),
		Player: player,
		Pools:  make([]*bullet.Frame, len(pools)),
	}
	for i, pool := range pools {
		f.Hits += hits[i]
		f.Pools[i] = pool.Snapshot(nil)
	}
	s.frame.Store(f)

	s.statTicks.Add(1)
	if f.Hits > 0 {
		s.statHitsTotal.Add(int64(f.Hits))
	}
	s.statStepMs.Smooth(float64(time.Since(start).Microseconds())/1000, 0.1)
	return f
}

func (s *Simulation) execute(req event.FireRequest) {
	s.statRequests.Add(1)

	p, ok := s.library.Get(req.Pattern)
	if !ok {
		s.statUnknown.Add(1)
		s.logger.Debug("fire request for unknown pattern", "pattern", req.Pattern, "pool", req.Pool)
		return
	}

	s.executor.SetTarget(s.Player())
	n := s.executor.FireAt(p, s.Pool(req.Pool), req.Origin, req.Rotation)
	s.logger.Debug("pattern fired", "pattern", req.Pattern, "pool", req.Pool, "bullets", n)
}

// Frame returns the most recently published frame, never nil
func (s *Simulation) Frame() *Frame {
	return s.frame.Load()
}

// Reset empties every pool at the start of the next Step
// Requests queued before that Step still fire into the emptied pools
func (s *Simulation) Reset() {
	s.reset.Store(true)
}

func (s *Simulation) Library() *pattern.Library { return s.library }

func (s *Simulation) Pools() *registry.Registry { return s.pools }

func (s *Simulation) Status() *status.Registry { return s.statusReg }

// Ticks returns the number of completed steps
func (s *Simulation) Ticks() uint64 { return s.tick.Load() }
