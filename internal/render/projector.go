package render

import "math"

// Epsilon is the smallest corrected distance that is projected normally.
// Anything closer means the eye is effectively inside the wall.
const Epsilon = 1e-6

// ColumnHeight returns the on-screen height of a wall hit at dist along
// rayAngle, corrected for fisheye by the offset from viewAngle.
func ColumnHeight(dist, rayAngle, viewAngle float64, screenH int) int {
	corrected := dist * math.Cos(rayAngle-viewAngle)
	// NaN fails every comparison and lands here too.
	if !(corrected >= Epsilon) {
		return screenH
	}
	h := float64(screenH) / corrected
	// Guard the int conversion for hits a hair past epsilon.
	if h > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(h)
}

// MapToMinimap scales map coordinates to minimap pixels.
func MapToMinimap(x, y float64, cellW, cellH int) (int, int) {
	return int(math.Floor(x * float64(cellW))), int(math.Floor(y * float64(cellH)))
}

// RayAngle returns the angle of column i out of n spanning fov around view.
func RayAngle(view, fov float64, i, n int) float64 {
	return view - fov/2 + fov*float64(i)/float64(n)
}
