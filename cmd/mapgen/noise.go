package main

import (
	"math"
	"math/rand"
)

// ValueNoise is seeded 2D lattice noise with smoothstep interpolation.
type ValueNoise struct {
	perm   [512]int
	values [256]float64
}

// NewValueNoise creates a generator whose output depends only on seed.
func NewValueNoise(seed int64) *ValueNoise {
	vn := &ValueNoise{}
	r := rand.New(rand.NewSource(seed))
	for i, p := range r.Perm(256) {
		vn.perm[i] = p
		vn.perm[i+256] = p
	}
	for i := range vn.values {
		vn.values[i] = r.Float64()
	}
	return vn
}

func (vn *ValueNoise) lattice(x, y int) float64 {
	return vn.values[vn.perm[(x&255)+vn.perm[y&255]]]
}

func smoothstep(t float64) float64 {
	return t * t * (3 - 2*t)
}

// At returns noise in [0, 1] at (x, y).
func (vn *ValueNoise) At(x, y float64) float64 {
	x0, y0 := math.Floor(x), math.Floor(y)
	tx, ty := smoothstep(x-x0), smoothstep(y-y0)
	ix, iy := int(x0), int(y0)

	top := lerp(vn.lattice(ix, iy), vn.lattice(ix+1, iy), tx)
	bottom := lerp(vn.lattice(ix, iy+1), vn.lattice(ix+1, iy+1), tx)
	return lerp(top, bottom, ty)
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Fractal sums octaves of noise, each at twice the frequency and half the
// amplitude of the previous, normalized to [0, 1].
func (vn *ValueNoise) Fractal(x, y, freq float64, octaves int) float64 {
	var total, norm float64
	amp := 1.0
	for i := 0; i < octaves; i++ {
		total += vn.At(x*freq, y*freq) * amp
		norm += amp
		freq *= 2
		amp *= 0.5
	}
	return total / norm
}
