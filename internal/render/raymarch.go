package render

import (
	"math"

	"raycast-place/internal/maps"
)

const (
	// DefaultStep is the march increment in map units. Walls are one unit
	// thick, so anything at or below this never skips a cell visibly.
	DefaultStep = 0.01
	// DefaultMaxDistance is how far a ray travels before giving up.
	DefaultMaxDistance = 20.0
)

// Grid is the read-only map view the ray marcher needs.
type Grid interface {
	IsSolid(i, j int) bool
	SymbolAt(i, j int) (maps.Symbol, bool)
}

// RayHit is the result of one cast.
type RayHit struct {
	Hit      bool
	Distance float64     // parametric distance t of the hit sample
	Symbol   maps.Symbol // cell symbol that stopped the ray
	Frac     float64     // offset along the struck face, in [0,1)
	Steps    int         // index k of the hit sample, t = k*step
}

// Cast marches from (ox,oy) along angle in fixed increments of step and
// stops at the first sample inside a solid cell. Samples are taken at
// t = k*step for t < maxDist. visit, when non-nil, sees every sample
// position including the one that hit.
func Cast(g Grid, ox, oy, angle, maxDist, step float64, visit func(x, y float64)) RayHit {
	if !(step > 0) {
		step = DefaultStep
	}
	if math.IsNaN(maxDist) || math.IsInf(maxDist, 0) {
		return RayHit{}
	}

	dx, dy := math.Cos(angle), math.Sin(angle)
	for k := 0; ; k++ {
		t := float64(k) * step
		if t >= maxDist {
			return RayHit{}
		}
		cx := ox + t*dx
		cy := oy + t*dy
		if visit != nil {
			visit(cx, cy)
		}
		i, j := int(math.Floor(cx)), int(math.Floor(cy))
		if g.IsSolid(i, j) {
			sym, _ := g.SymbolAt(i, j)
			return RayHit{
				Hit:      true,
				Distance: t,
				Symbol:   sym,
				Frac:     faceOffset(cx, cy),
				Steps:    k,
			}
		}
	}
}

// faceOffset picks the sub-cell coordinate that runs along the wall face
// the point sits on. A point close to an integer x lies on a vertical face,
// so the texture coordinate follows y, and vice versa.
func faceOffset(x, y float64) float64 {
	fx := x - math.Floor(x)
	fy := y - math.Floor(y)
	ex := math.Min(fx, 1-fx)
	ey := math.Min(fy, 1-fy)
	if ex < ey {
		return fy
	}
	return fx
}
