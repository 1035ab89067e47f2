package physics

import "github.com/lixenwraith/danmaku/vmath"

// CircleHit reports whether point lies strictly inside the circle of squared radius radiusSq around center
// Strict compare: a point exactly on the rim does not hit
func CircleHit(point, center vmath.Vec2, radiusSq float32) bool {
	return vmath.V2DistSq(point, center) < radiusSq
}
