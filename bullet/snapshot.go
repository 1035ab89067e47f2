package bullet

import (
	"fmt"
	"iter"

	"github.com/google/uuid"

	"github.com/lixenwraith/danmaku/vmath"
)

// Slot is a copy of one slot's state
// Acceleration is the speed change per second
type Slot struct {
	Age          float32
	Lifetime     float32
	Position     vmath.Vec2
	Rotation     float32
	Speed        float32
	Angular      float32
	Acceleration float32
}

// Alive applies IsAlive to the copied age
func (s Slot) Alive() bool {
	return IsAlive(s.Age)
}

// Slot returns a copy of slot i
// Panics with ErrCapacityMisuse when i is out of range
func (p *Pool) Slot(i int) Slot {
	if i < 0 || i >= p.capacity {
		panic(fmt.Errorf("%w: slot %d outside capacity %d", ErrCapacityMisuse, i, p.capacity))
	}
	return Slot{
		Age:          p.age[i],
		Lifetime:     p.lifetime[i],
		Position:     p.position[i],
		Rotation:     p.rotation[i],
		Speed:        p.speed[i],
		Angular:      p.angular[i],
		Acceleration: p.accel[i],
	}
}

// AliveBullets yields (position, rotation) of alive slots in index order
// Values are copies; the sequence is restartable and reads whatever state the pool holds
// when iterated, so call it only after the frame's mutating phases finished
func (p *Pool) AliveBullets() iter.Seq2[vmath.Vec2, float32] {
	return func(yield func(vmath.Vec2, float32) bool) {
		for i, a := range p.age {
			if !IsAlive(a) {
				continue
			}
			if !yield(p.position[i], p.rotation[i]) {
				return
			}
		}
	}
}

// Frame is a render-side copy of one pool's alive bullets
type Frame struct {
	PoolID    uuid.UUID
	Sprite    string
	Positions []vmath.Vec2
	Rotations []float32
}

// Len returns the number of bullets in the frame
func (f *Frame) Len() int {
	return len(f.Positions)
}

// Snapshot copies alive bullets into dst, reusing its buffers, and returns it
// A nil dst allocates a new frame
func (p *Pool) Snapshot(dst *Frame) *Frame {
	if dst == nil {
		dst = &Frame{
			Positions: make([]vmath.Vec2, 0, p.count),
			Rotations: make([]float32, 0, p.count),
		}
	}
	dst.PoolID = p.id
	dst.Sprite = p.sprite
	dst.Positions = dst.Positions[:0]
	dst.Rotations = dst.Rotations[:0]

	for pos, rot := range p.AliveBullets() {
		dst.Positions = append(dst.Positions, pos)
		dst.Rotations = append(dst.Rotations, rot)
	}
	return dst
}
