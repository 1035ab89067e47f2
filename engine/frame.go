package engine

import (
	"github.com/lixenwraith/danmaku/bullet"
	"github.com/lixenwraith/danmaku/vmath"
)

// Frame is the immutable render view of one step
// Pools are ordered by pool key
type Frame struct {
	Tick   uint64
	Player vmath.Vec2
	Hits   int
	Pools  []*bullet.Frame
}

// Bullets returns the total bullet count across pools
func (f *Frame) Bullets() int {
	n := 0
	for _, p := range f.Pools {
		n += p.Len()
	}
	return n
}
