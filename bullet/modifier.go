package bullet

import (
	"fmt"
	"math"
	"strings"

	"github.com/lixenwraith/danmaku/expression"
	"github.com/lixenwraith/danmaku/physics"
	"github.com/lixenwraith/danmaku/vmath"
)

// Target selects the slot property a modifier overwrites
type Target uint8

const (
	TargetSpeed Target = iota
	TargetAngular

	targetCount
)

var noShadow = float32(math.Inf(1))

func (t Target) String() string {
	switch t {
	case TargetSpeed:
		return "speed"
	case TargetAngular:
		return "angular"
	default:
		return fmt.Sprintf("target(%d)", uint8(t))
	}
}

// ParseTarget maps "speed" and "angular" (also "angular_velocity") to a Target
func ParseTarget(s string) (Target, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "speed":
		return TargetSpeed, nil
	case "angular", "angular_velocity":
		return TargetAngular, nil
	default:
		return 0, fmt.Errorf("unknown modifier target %q", s)
	}
}

// Modifier overrides one property of the slot range [Start, End) each tick
// The range is a region of the array, not a set of bullets: when slots in the range
// are recycled by unrelated bullets the modifier keeps applying to them
type Modifier struct {
	Start  int
	End    int
	Target Target
	Expr   *expression.Expression
	// After is the pool elapsed time before which the modifier is skipped
	After float32
}

// AddModifier registers m on the pool
// Panics with ErrCapacityMisuse on a range outside [0, capacity], a nil expression or an unknown target
func (p *Pool) AddModifier(m Modifier) {
	if m.Start < 0 || m.End > p.capacity || m.Start > m.End {
		panic(fmt.Errorf("%w: modifier range [%d,%d) outside capacity %d", ErrCapacityMisuse, m.Start, m.End, p.capacity))
	}
	if m.Expr == nil {
		panic(fmt.Errorf("%w: modifier without expression", ErrCapacityMisuse))
	}
	if m.Target >= targetCount {
		panic(fmt.Errorf("%w: modifier %v", ErrCapacityMisuse, m.Target))
	}
	if m.Start == m.End {
		return
	}
	p.modifiers = append(p.modifiers, m)
}

// Modifiers returns a copy of the registered modifiers
func (p *Pool) Modifiers() []Modifier {
	out := make([]Modifier, len(p.modifiers))
	copy(out, p.modifiers)
	return out
}

// ApplyModifiers evaluates each active modifier once at elapsed and writes the value across its range
// On overlap the newest modifier wins. A modifier whose every slot is already owned, now and from its
// own After onward, by newer modifiers of the same target is dropped; elapsed must not decrease between Resets
func (p *Pool) ApplyModifiers(elapsed float32) {
	if len(p.modifiers) == 0 {
		return
	}
	for i := range p.shadow {
		if p.shadow[i] == nil {
			p.shadow[i] = make([]float32, p.capacity)
		}
		for j := range p.shadow[i] {
			p.shadow[i][j] = noShadow
		}
	}

	t := float64(elapsed)
	// Walk newest first; survivors are packed toward the end of the slice
	keep := len(p.modifiers)
	for i := len(p.modifiers) - 1; i >= 0; i-- {
		m := p.modifiers[i]
		shadow := p.shadow[m.Target][m.Start:m.End]

		// shadow[s] is the earliest After among newer modifiers covering slot s
		cut := max(m.After, elapsed)
		covered := true
		for _, at := range shadow {
			if at > cut {
				covered = false
				break
			}
		}
		if covered {
			continue
		}

		keep--
		p.modifiers[keep] = m

		if elapsed >= m.After {
			v := m.Expr.Eval32(t)
			var dst []float32
			if m.Target == TargetSpeed {
				dst = p.speed[m.Start:m.End]
			} else {
				dst = p.angular[m.Start:m.End]
			}
			for j, at := range shadow {
				if at > elapsed {
					dst[j] = v
				}
			}
		}
		for j := range shadow {
			shadow[j] = min(shadow[j], m.After)
		}
	}

	n := copy(p.modifiers, p.modifiers[keep:])
	clear(p.modifiers[n:])
	p.modifiers = p.modifiers[:n]
}

// AimRange turns every alive slot in [start, end) to face target
func (p *Pool) AimRange(start, end int, target vmath.Vec2) {
	p.checkRange(start, end)
	for i := start; i < end; i++ {
		if IsAlive(p.age[i]) {
			p.rotation[i] = physics.HeadingTo(p.position[i], target, p.rotation[i])
		}
	}
}

// AccelerateRange sets the speed change per second of every alive slot in [start, end)
// Add clears it, so recycled slots start unaccelerated
func (p *Pool) AccelerateRange(start, end int, a float32) {
	p.checkRange(start, end)
	for i := start; i < end; i++ {
		if IsAlive(p.age[i]) {
			p.accel[i] = a
		}
	}
}

func (p *Pool) checkRange(start, end int) {
	if start < 0 || end > p.capacity || start > end {
		panic(fmt.Errorf("%w: range [%d,%d) outside capacity %d", ErrCapacityMisuse, start, end, p.capacity))
	}
}
