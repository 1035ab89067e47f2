package pattern

import (
	"iter"
	"math"

	"github.com/lixenwraith/danmaku/bullet"
	"github.com/lixenwraith/danmaku/parameter"
	"github.com/lixenwraith/danmaku/vmath"
)

// Executor runs compiled patterns against pools
// Seed buffers are reused between firings, so an Executor belongs to one goroutine
type Executor struct {
	seedSpeed float32
	target    vmath.Vec2
	cur, next []Seed
}

// NewExecutor creates an executor whose initial seed moves at parameter.DefaultSeedSpeed
func NewExecutor() *Executor {
	return &Executor{seedSpeed: parameter.DefaultSeedSpeed}
}

// SetTarget sets the point aimed bullets turn toward
func (e *Executor) SetTarget(target vmath.Vec2) {
	e.target = target
}

// Fire runs p from a single seed at the origin facing rotation 0
// Returns the number of bullets written
func (e *Executor) Fire(p *Pattern, pool *bullet.Pool) int {
	return e.FireAt(p, pool, vmath.Vec2{}, 0)
}

// FireAt runs p from a single seed at origin facing rotation
func (e *Executor) FireAt(p *Pattern, pool *bullet.Pool, origin vmath.Vec2, rotation float32) int {
	if p == nil || pool == nil {
		return 0
	}

	e.cur = append(e.cur[:0], Seed{Position: origin, Rotation: rotation, Speed: e.seedSpeed})
	emitted := 0

	for _, op := range p.Ops {
		switch op := op.(type) {
		case Ring:
			e.next = op.Expand(e.next[:0], e.cur)
			e.cur, e.next = e.next, e.cur
		case Arc:
			e.next = op.Expand(e.next[:0], e.cur)
			e.cur, e.next = e.next, e.cur
		case Bullet:
			emitted += op.Emit(pool, e.cur, e.target)
		}
		if len(e.cur) == 0 {
			break
		}
	}
	return emitted
}

// Expand appends the ring expansion of seeds to dst
// Count is evaluated at t=0; negative or NaN counts produce no seeds
func (r Ring) Expand(dst, seeds []Seed) []Seed {
	n := ringCount(r.Count.Eval(0))
	if n == 0 {
		return dst
	}
	step := vmath.TwoPi / float32(n)
	for _, s := range seeds {
		for i := 0; i < n; i++ {
			rot := s.Rotation + float32(i)*step
			dst = append(dst, Seed{
				Position: vmath.V2Add(s.Position, vmath.V2Scale(vmath.V2FromAngle(rot), r.Radius)),
				Rotation: rot,
				Speed:    s.Speed,
			})
		}
	}
	return dst
}

func ringCount(v float64) int {
	if math.IsNaN(v) || v < 1 {
		return 0
	}
	if v > parameter.MaxRingCount {
		return parameter.MaxRingCount
	}
	return int(v)
}

// Expand appends the arc fan of seeds to dst
// Count 1 passes seeds through unchanged, count 0 drops them
func (a Arc) Expand(dst, seeds []Seed) []Seed {
	switch a.Count {
	case 0:
		return dst
	case 1:
		return append(dst, seeds...)
	}

	step := a.Angle / float32(a.Count-1)
	half := a.Angle / 2
	for _, s := range seeds {
		for i := uint32(0); i < a.Count; i++ {
			dst = append(dst, Seed{
				Position: s.Position,
				Rotation: s.Rotation - half + step*float32(i),
				Speed:    s.Speed,
			})
		}
	}
	return dst
}

// Emit adds one bullet per seed, speed, angular and acceleration evaluated once at t=0
// Range effects (aim, acceleration, modifier) cover the written slots, split in two when the cursor wraps
func (b Bullet) Emit(pool *bullet.Pool, seeds []Seed, target vmath.Vec2) int {
	if len(seeds) == 0 {
		return 0
	}

	speed := b.Speed.Eval32(0)
	angular := b.Angular.Eval32(0)
	var accel float32
	if b.Acceleration != nil {
		accel = b.Acceleration.Eval32(0)
	}
	start := pool.Cursor()

	for _, s := range seeds {
		pool.Add(b.Lifetime, s.Position, s.Rotation, speed, angular)
	}

	for lo, hi := range writtenRanges(start, len(seeds), pool.Capacity()) {
		if b.Aimed {
			pool.AimRange(lo, hi, target)
		}
		if accel != 0 {
			pool.AccelerateRange(lo, hi, accel)
		}
		if b.Modifier != nil {
			pool.AddModifier(bullet.Modifier{
				Start:  lo,
				End:    hi,
				Target: b.Modifier.Target,
				Expr:   b.Modifier.Expr,
				After:  pool.Elapsed() + b.Modifier.Delay,
			})
		}
	}
	return len(seeds)
}

// writtenRanges yields the slot ranges covered by n adds starting at start
// A run of capacity or more covers the whole pool
func writtenRanges(start, n, capacity int) iter.Seq2[int, int] {
	return func(yield func(int, int) bool) {
		if n >= capacity {
			yield(0, capacity)
			return
		}
		end := start + n
		if end <= capacity {
			yield(start, end)
			return
		}
		if !yield(start, capacity) {
			return
		}
		yield(0, end-capacity)
	}
}
