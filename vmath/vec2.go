// Package vmath provides float32 2D vector and angle helpers for bullet kinematics
package vmath

import "math"

// Vec2 is a float32 2D vector for bullet kinematics
// float32 matches the pool's slot arrays and halves cache footprint versus float64
type Vec2 struct {
	X, Y float32
}

func V2(x, y float32) Vec2 {
	return Vec2{X: x, Y: y}
}

func V2Add(a, b Vec2) Vec2 {
	return Vec2{a.X + b.X, a.Y + b.Y}
}

func V2Sub(a, b Vec2) Vec2 {
	return Vec2{a.X - b.X, a.Y - b.Y}
}

func V2Scale(v Vec2, s float32) Vec2 {
	return Vec2{v.X * s, v.Y * s}
}

func V2MagSq(v Vec2) float32 {
	return v.X*v.X + v.Y*v.Y
}

func V2Mag(v Vec2) float32 {
	return float32(math.Sqrt(float64(V2MagSq(v))))
}

// V2DistSq returns squared distance, sqrt-free for hit tests
func V2DistSq(a, b Vec2) float32 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return dx*dx + dy*dy
}

// V2FromAngle returns the unit vector rotated from +X by angle radians
func V2FromAngle(angle float32) Vec2 {
	s, c := math.Sincos(float64(angle))
	return Vec2{float32(c), float32(s)}
}

// V2Angle returns heading of v in radians, range (-π, π]
func V2Angle(v Vec2) float32 {
	return float32(math.Atan2(float64(v.Y), float64(v.X)))
}

// V2Rotate rotates v counter-clockwise by angle radians
func V2Rotate(v Vec2, angle float32) Vec2 {
	s, c := math.Sincos(float64(angle))
	sf, cf := float32(s), float32(c)
	return Vec2{v.X*cf - v.Y*sf, v.X*sf + v.Y*cf}
}

// V2Finite reports whether both components are neither NaN nor Inf
func V2Finite(v Vec2) bool {
	return isFinite32(v.X) && isFinite32(v.Y)
}

func isFinite32(f float32) bool {
	f64 := float64(f)
	return !math.IsNaN(f64) && !math.IsInf(f64, 0)
}
