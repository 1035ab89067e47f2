package physics

import (
	"math"

	"github.com/lixenwraith/danmaku/vmath"
)

// Advance integrates one heading-driven step:
// p' = p + fromAngle(rotation)*speed*dt; rotation' = rotation + angular*dt
// Position uses the heading from before the angular update
func Advance(pos vmath.Vec2, rotation, speed, angular, dt float32) (vmath.Vec2, float32) {
	s, c := math.Sincos(float64(rotation))
	step := speed * dt
	pos.X += float32(c) * step
	pos.Y += float32(s) * step
	return pos, rotation + angular*dt
}

// HeadingTo returns the heading from pos that faces target
// Coincident points keep the fallback heading
func HeadingTo(pos, target vmath.Vec2, fallback float32) float32 {
	d := vmath.V2Sub(target, pos)
	if d.X == 0 && d.Y == 0 {
		return fallback
	}
	return vmath.V2Angle(d)
}
