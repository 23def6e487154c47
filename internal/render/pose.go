package render

import (
	"math"

	"raycast-place/internal/maps"
)

// Pose is the viewer's position in map units and heading in radians.
type Pose struct {
	X, Y    float64
	Heading float64
}

// SpawnPose returns the pose a map declares for new players.
func SpawnPose(m *maps.Map) Pose {
	return Pose{X: m.SpawnX, Y: m.SpawnY, Heading: m.Heading}
}

// Rotate returns the pose turned by delta radians, normalized to [0, 2π).
func (p Pose) Rotate(delta float64) Pose {
	h := math.Mod(p.Heading+delta, 2*math.Pi)
	if h < 0 {
		h += 2 * math.Pi
	}
	p.Heading = h
	return p
}

// Advance returns the pose moved dist units along its heading. Each axis is
// tried separately so the viewer slides along walls instead of sticking.
func (p Pose) Advance(m *maps.Map, dist float64) Pose {
	nx := p.X + dist*math.Cos(p.Heading)
	ny := p.Y + dist*math.Sin(p.Heading)
	if m.CanStand(nx, p.Y) {
		p.X = nx
	}
	if m.CanStand(p.X, ny) {
		p.Y = ny
	}
	return p
}
