package vmath

import "math"

const (
	Pi    = float32(math.Pi)
	TwoPi = float32(2 * math.Pi)
)

// DegToRad converts degrees to radians
func DegToRad(deg float32) float32 {
	return deg * (Pi / 180)
}

// RadToDeg converts radians to degrees
func RadToDeg(rad float32) float32 {
	return rad * (180 / Pi)
}

// WrapAngle folds angle into [0, 2π)
// Headings drift unbounded under angular velocity; wrap before quantizing
func WrapAngle(angle float32) float32 {
	a := float32(math.Mod(float64(angle), float64(TwoPi)))
	if a < 0 {
		a += TwoPi
	}
	return a
}

// Octant returns the 45° sector index [0,8) of a heading, 0 centered on +X
func Octant(angle float32) int {
	a := WrapAngle(angle + Pi/8)
	return int(a/(Pi/4)) & 7
}
