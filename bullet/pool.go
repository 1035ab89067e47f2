// Package bullet implements the fixed-capacity structure-of-arrays projectile pool
//
// Slot allocation is a ring buffer: Add always writes at the cursor and advances it,
// so once the pool is full the oldest slot is overwritten even if still alive.
// Liveness is carried by age alone: age >= 0 is alive, FreeSlotAge marks a free slot.
package bullet

import (
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/lixenwraith/danmaku/parameter"
	"github.com/lixenwraith/danmaku/physics"
	"github.com/lixenwraith/danmaku/status"
	"github.com/lixenwraith/danmaku/vmath"
)

// ErrCapacityMisuse is the panic value root for invalid capacity or out-of-range slot access
var ErrCapacityMisuse = errors.New("bullet pool capacity misuse")

// IsAlive is the single liveness predicate used by tick, collision and extraction
func IsAlive(age float32) bool {
	return age >= 0
}

// Pool owns every slot of one bullet population
// Not safe for concurrent mutation; one driver goroutine owns a pool
type Pool struct {
	id       uuid.UUID
	sprite   string
	capacity int
	cursor   int
	count    int
	elapsed  float32

	playerRadius      float32
	playerRadiusSq    float32
	parallelThreshold int
	chunkSize         int

	// Slot arrays, all len == capacity
	age      []float32
	lifetime []float32
	position []vmath.Vec2
	rotation []float32
	speed    []float32
	angular  []float32
	accel    []float32

	modifiers []Modifier

	// Per-target scratch for ApplyModifiers, allocated on first use
	shadow [targetCount][]float32

	// Removal scratch reused across passes
	removals      []int
	chunkRemovals [][]int

	metrics *poolMetrics
}

type poolMetrics struct {
	spawned  *atomic.Int64
	evicted  *atomic.Int64
	expired  *atomic.Int64
	collided *atomic.Int64
	alive    *atomic.Int64
}

// Option configures a Pool at construction
type Option func(*Pool)

// WithSprite tags the pool with the sprite key renderers batch on
func WithSprite(sprite string) Option {
	return func(p *Pool) { p.sprite = sprite }
}

// WithPlayerRadius sets the collision radius in world units
func WithPlayerRadius(r float32) Option {
	return func(p *Pool) {
		p.playerRadius = r
		p.playerRadiusSq = r * r
	}
}

// WithParallelThreshold sets the capacity above which Tick splits work across goroutines
// Zero or negative disables parallel ticking
func WithParallelThreshold(n int) Option {
	return func(p *Pool) { p.parallelThreshold = n }
}

// WithChunkSize sets the slots integrated per goroutine during parallel Tick
func WithChunkSize(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.chunkSize = n
		}
	}
}

// WithMetrics publishes spawn/evict/expire/collide counters and the alive gauge
// Counters are shared by key, so several pools on one registry aggregate
func WithMetrics(reg *status.Registry) Option {
	return func(p *Pool) {
		if reg == nil {
			return
		}
		p.metrics = &poolMetrics{
			spawned:  reg.Ints.Get(status.BulletSpawned),
			evicted:  reg.Ints.Get(status.BulletEvicted),
			expired:  reg.Ints.Get(status.BulletExpired),
			collided: reg.Ints.Get(status.BulletCollided),
			alive:    reg.Ints.Get(status.BulletAlive),
		}
	}
}

// NewPool allocates a pool of capacity free slots
// Panics with ErrCapacityMisuse when capacity is not positive
func NewPool(capacity int, opts ...Option) *Pool {
	if capacity <= 0 {
		panic(fmt.Errorf("%w: capacity %d", ErrCapacityMisuse, capacity))
	}

	p := &Pool{
		id:                uuid.New(),
		capacity:          capacity,
		playerRadius:      parameter.PlayerRadius,
		playerRadiusSq:    parameter.PlayerRadius * parameter.PlayerRadius,
		parallelThreshold: parameter.ParallelThreshold,
		chunkSize:         parameter.ParallelChunkSize,
		age:               make([]float32, capacity),
		lifetime:          make([]float32, capacity),
		position:          make([]vmath.Vec2, capacity),
		rotation:          make([]float32, capacity),
		speed:             make([]float32, capacity),
		angular:           make([]float32, capacity),
		accel:             make([]float32, capacity),
	}
	for _, opt := range opts {
		opt(p)
	}

	for i := range p.age {
		p.age[i] = parameter.FreeSlotAge
	}

	if p.parallel() {
		chunks := (capacity + p.chunkSize - 1) / p.chunkSize
		p.chunkRemovals = make([][]int, chunks)
	}

	return p
}

// Add writes a fresh bullet at the cursor and returns the slot index
// An alive occupant is replaced, not double counted. O(1)
func (p *Pool) Add(lifetime float32, pos vmath.Vec2, rotation, speed, angular float32) int {
	if p.capacity == 0 {
		panic(fmt.Errorf("%w: add on zero-capacity pool", ErrCapacityMisuse))
	}

	i := p.cursor
	if IsAlive(p.age[i]) {
		if p.metrics != nil {
			p.metrics.evicted.Add(1)
		}
	} else {
		p.count++
		if p.metrics != nil {
			p.metrics.alive.Add(1)
		}
	}

	p.age[i] = 0
	p.lifetime[i] = lifetime
	p.position[i] = pos
	p.rotation[i] = rotation
	p.speed[i] = speed
	p.angular[i] = angular
	p.accel[i] = 0

	p.cursor = (i + 1) % p.capacity

	if p.metrics != nil {
		p.metrics.spawned.Add(1)
	}
	return i
}

// Tick integrates every alive slot by dt and expires those past their lifetime
// Speed gains acceleration*dt after the move
// Expired slots are collected during the pass and released afterwards
// dt == 0 is an exact no-op
func (p *Pool) Tick(dt float32) {
	if dt == 0 {
		return
	}
	p.elapsed += dt
	if p.count == 0 {
		return
	}

	if !p.parallel() {
		p.removals = p.integrate(0, p.capacity, dt, p.removals[:0])
	} else {
		p.integrateParallel(dt)
	}

	n := p.release(p.removals)
	if p.metrics != nil && n > 0 {
		p.metrics.expired.Add(int64(n))
	}
}

// integrate advances slots [lo,hi) and appends expired indices to out
// Touches only its own index range, so disjoint ranges run concurrently
func (p *Pool) integrate(lo, hi int, dt float32, out []int) []int {
	age := p.age[lo:hi]
	for j := range age {
		if !IsAlive(age[j]) {
			continue
		}
		i := lo + j
		p.position[i], p.rotation[i] = physics.Advance(p.position[i], p.rotation[i], p.speed[i], p.angular[i], dt)
		p.speed[i] += p.accel[i] * dt
		age[j] += dt
		if age[j] > p.lifetime[i] {
			out = append(out, i)
		}
	}
	return out
}

func (p *Pool) integrateParallel(dt float32) {
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))

	for c := range p.chunkRemovals {
		lo := c * p.chunkSize
		hi := min(lo+p.chunkSize, p.capacity)
		g.Go(func() error {
			p.chunkRemovals[c] = p.integrate(lo, hi, dt, p.chunkRemovals[c][:0])
			return nil
		})
	}
	// integrate never fails; Wait is the join barrier
	_ = g.Wait()

	p.removals = p.removals[:0]
	for _, r := range p.chunkRemovals {
		p.removals = append(p.removals, r...)
	}
}

func (p *Pool) parallel() bool {
	return p.parallelThreshold > 0 && p.capacity > p.parallelThreshold && p.capacity > p.chunkSize
}

// CheckCollisions removes every alive bullet strictly inside the player radius
// Returns the number of bullets removed
func (p *Pool) CheckCollisions(player vmath.Vec2) int {
	if p.count == 0 {
		return 0
	}

	p.removals = p.removals[:0]
	for i, a := range p.age {
		if IsAlive(a) && physics.CircleHit(p.position[i], player, p.playerRadiusSq) {
			p.removals = append(p.removals, i)
		}
	}

	n := p.release(p.removals)
	if p.metrics != nil && n > 0 {
		p.metrics.collided.Add(int64(n))
	}
	return n
}

// release tombstones collected slots; indices stay valid since nothing is compacted
func (p *Pool) release(indices []int) int {
	n := 0
	for _, i := range indices {
		if !IsAlive(p.age[i]) {
			continue
		}
		p.age[i] = parameter.FreeSlotAge
		n++
	}
	p.count -= n
	if p.metrics != nil && n > 0 {
		p.metrics.alive.Add(-int64(n))
	}
	return n
}

// Reset frees every slot and drops modifiers; identity and options are kept
func (p *Pool) Reset() {
	if p.metrics != nil && p.count > 0 {
		p.metrics.alive.Add(-int64(p.count))
	}
	for i := range p.age {
		p.age[i] = parameter.FreeSlotAge
	}
	p.count = 0
	p.cursor = 0
	p.elapsed = 0
	p.modifiers = nil
}

// Count returns the number of alive slots
func (p *Pool) Count() int { return p.count }

// Capacity returns the fixed slot count
func (p *Pool) Capacity() int { return p.capacity }

// Cursor returns the slot the next Add writes
func (p *Pool) Cursor() int { return p.cursor }

// Elapsed returns accumulated tick time, the modifier time variable
func (p *Pool) Elapsed() float32 { return p.elapsed }

func (p *Pool) ID() uuid.UUID { return p.id }

func (p *Pool) Sprite() string { return p.sprite }

// PlayerRadius returns the collision radius in world units
func (p *Pool) PlayerRadius() float32 {
	return p.playerRadius
}
