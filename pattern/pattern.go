// Package pattern compiles JSON pattern sources into immutable op lists and fires them into bullet pools
package pattern

import (
	"strings"

	"github.com/lixenwraith/danmaku/bullet"
	"github.com/lixenwraith/danmaku/expression"
	"github.com/lixenwraith/danmaku/vmath"
)

// Op is one step of a compiled pattern: Ring, Arc or Bullet
type Op interface {
	opKind() string
}

// Ring replaces every seed with Count seeds spread 2π/n apart, pushed Radius along their new heading
type Ring struct {
	Count  *expression.Expression
	Radius float32
}

// Arc fans every seed into Count seeds across [-Angle/2, +Angle/2] around its rotation
// Angle is in radians
type Arc struct {
	Count uint32
	Angle float32
}

// Bullet emits one bullet per seed and leaves the seeds unchanged
// Aimed bullets turn toward the executor's target once written
type Bullet struct {
	Speed        *expression.Expression
	Angular      *expression.Expression
	Acceleration *expression.Expression
	Lifetime     float32
	Aimed        bool
	Modifier     *ModifierSpec
}

// ModifierSpec is attached to the slot range a Bullet op writes
type ModifierSpec struct {
	Target bullet.Target
	Expr   *expression.Expression
	// Delay is seconds of pool time after firing before the modifier applies
	Delay float32
}

func (Ring) opKind() string   { return "ring" }
func (Arc) opKind() string    { return "arc" }
func (Bullet) opKind() string { return "bullet" }

// Pattern is an ordered op list, read-only once compiled and safe to share between firings
type Pattern struct {
	Name string
	Ops  []Op
}

// Emits reports whether any op writes bullets
func (p *Pattern) Emits() bool {
	for _, op := range p.Ops {
		if _, ok := op.(Bullet); ok {
			return true
		}
	}
	return false
}

// String renders the op chain, e.g. "ring>arc>bullet"
func (p *Pattern) String() string {
	kinds := make([]string, len(p.Ops))
	for i, op := range p.Ops {
		kinds[i] = op.opKind()
	}
	return strings.Join(kinds, ">")
}

// Seed is a transient spawn point flowing through the op chain
type Seed struct {
	Position vmath.Vec2
	Rotation float32
	Speed    float32
}
