package main

import (
	"fmt"
	"math"
	"math/rand"
	"slices"
)

const (
	wallBorder = '0'
	open       = ' '
)

// grid is a row-major level under construction.
type grid struct {
	w, h  int
	cells []byte
}

func newGrid(w, h int) *grid {
	g := &grid{w: w, h: h, cells: make([]byte, w*h)}
	for i := range g.cells {
		g.cells[i] = open
	}
	return g
}

func (g *grid) at(x, y int) byte     { return g.cells[x+y*g.w] }
func (g *grid) set(x, y int, c byte) { g.cells[x+y*g.w] = c }
func (g *grid) isOpen(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.w && y < g.h && g.at(x, y) == open
}

func (g *grid) String() string {
	return string(g.cells)
}

// generate builds a closed level of the given kind.
func generate(kind string, w, h int, seed int64) (*grid, error) {
	g := newGrid(w, h)
	elevation := NewValueNoise(seed)
	detail := NewValueNoise(seed + 1)

	switch kind {
	case "arena":
		for y := 1; y < h-1; y++ {
			for x := 1; x < w-1; x++ {
				if elevation.Fractal(float64(x), float64(y), 0.15, 3) > 0.68 {
					g.set(x, y, wallSymbol(detail, x, y))
				}
			}
		}
	case "caves":
		for y := 1; y < h-1; y++ {
			for x := 1; x < w-1; x++ {
				if elevation.Fractal(float64(x), float64(y), 0.12, 4) > 0.52 {
					g.set(x, y, wallSymbol(detail, x, y))
				}
			}
		}
		for i := 0; i < 2; i++ {
			smooth(g)
		}
	default:
		return nil, fmt.Errorf("unknown generator type %q (available: arena, caves)", kind)
	}

	for x := 0; x < w; x++ {
		g.set(x, 0, wallBorder)
		g.set(x, h-1, wallBorder)
	}
	for y := 0; y < h; y++ {
		g.set(0, y, wallBorder)
		g.set(w-1, y, wallBorder)
	}
	return g, nil
}

// wallSymbol picks palette digit 1..4 from low-frequency noise so
// neighboring walls tend to share a color.
func wallSymbol(detail *ValueNoise, x, y int) byte {
	v := detail.Fractal(float64(x), float64(y), 0.08, 2)
	return byte('1' + min(int(v*4), 3))
}

// smooth applies one cellular automaton pass: a cell becomes wall with five
// or more wall neighbors and opens with three or fewer.
func smooth(g *grid) {
	next := append([]byte(nil), g.cells...)
	for y := 1; y < g.h-1; y++ {
		for x := 1; x < g.w-1; x++ {
			walls := 0
			var sym byte = wallBorder + 1
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if (dx != 0 || dy != 0) && !g.isOpen(x+dx, y+dy) {
						walls++
						if c := g.at(x+dx, y+dy); c != wallBorder {
							sym = c
						}
					}
				}
			}
			switch {
			case walls >= 5 && g.at(x, y) == open:
				next[x+y*g.w] = sym
			case walls <= 3:
				next[x+y*g.w] = open
			}
		}
	}
	g.cells = next
}

type point struct{ x, y int }

// floodFill returns the open cells reachable from p.
func floodFill(g *grid, p point) map[point]bool {
	region := make(map[point]bool)
	if !g.isOpen(p.x, p.y) {
		return region
	}
	stack := []point{p}
	region[p] = true
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, d := range [][2]int{{0, -1}, {0, 1}, {-1, 0}, {1, 0}} {
			n := point{c.x + d[0], c.y + d[1]}
			if region[n] || !g.isOpen(n.x, n.y) {
				continue
			}
			region[n] = true
			stack = append(stack, n)
		}
	}
	return region
}

// ensureConnectivity walls in small pockets and carves corridors from larger
// ones so every open cell is reachable from spawn.
func ensureConnectivity(g *grid, spawn point, rng *rand.Rand) (connected, filled int) {
	const fillThreshold = 6

	reached := floodFill(g, spawn)
	for y := 1; y < g.h-1; y++ {
		for x := 1; x < g.w-1; x++ {
			p := point{x, y}
			if reached[p] || !g.isOpen(x, y) {
				continue
			}
			island := floodFill(g, p)
			if len(island) < fillThreshold {
				for q := range island {
					g.set(q.x, q.y, wallBorder+1)
				}
				filled++
				continue
			}
			carveConnection(g, reached, island, rng)
			for q := range floodFill(g, spawn) {
				reached[q] = true
			}
			connected++
		}
	}
	return connected, filled
}

// carveConnection opens a corridor between the closest cells of two regions.
func carveConnection(g *grid, reached, island map[point]bool, rng *rand.Rand) {
	sample := func(region map[point]bool, limit int) []point {
		pts := make([]point, 0, len(region))
		for p := range region {
			pts = append(pts, p)
		}
		// Sorted first: map order is random and the shuffle must be seed-stable.
		slices.SortFunc(pts, func(a, b point) int {
			if a.y != b.y {
				return a.y - b.y
			}
			return a.x - b.x
		})
		if len(pts) > limit {
			rng.Shuffle(len(pts), func(i, j int) { pts[i], pts[j] = pts[j], pts[i] })
			pts = pts[:limit]
		}
		return pts
	}

	best := math.MaxInt
	var from, to point
	for _, a := range sample(island, 200) {
		for _, b := range sample(reached, 500) {
			if d := abs(a.x-b.x) + abs(a.y-b.y); d < best {
				best, from, to = d, a, b
			}
		}
	}

	x, y := from.x, from.y
	for x != to.x || y != to.y {
		if abs(to.x-x) >= abs(to.y-y) {
			x += sign(to.x - x)
		} else {
			y += sign(to.y - y)
		}
		if x > 0 && y > 0 && x < g.w-1 && y < g.h-1 {
			g.set(x, y, open)
		}
	}
}

// findSpawn searches outward from the center for an open cell whose 3x3
// neighborhood is open too.
func findSpawn(g *grid) (point, bool) {
	cx, cy := g.w/2, g.h/2
	for r := 0; r <= max(g.w, g.h)/2; r++ {
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				if abs(dx) != r && abs(dy) != r {
					continue // ring perimeter only
				}
				x, y := cx+dx, cy+dy
				clear := true
				for ny := y - 1; ny <= y+1 && clear; ny++ {
					for nx := x - 1; nx <= x+1; nx++ {
						if !g.isOpen(nx, ny) {
							clear = false
							break
						}
					}
				}
				if clear {
					return point{x, y}, true
				}
			}
		}
	}
	for y := 1; y < g.h-1; y++ {
		for x := 1; x < g.w-1; x++ {
			if g.isOpen(x, y) {
				return point{x, y}, true
			}
		}
	}
	return point{}, false
}

// bestHeading faces the longest open sight line of the eight compass
// directions from p.
func bestHeading(g *grid, p point) float64 {
	best, heading := -1, 0.0
	for i := 0; i < 8; i++ {
		a := float64(i) * math.Pi / 4
		dx, dy := math.Cos(a), math.Sin(a)
		n := 0
		for t := 1.0; ; t++ {
			x := int(math.Floor(float64(p.x) + 0.5 + t*dx))
			y := int(math.Floor(float64(p.y) + 0.5 + t*dy))
			if !g.isOpen(x, y) {
				break
			}
			n++
		}
		if n > best {
			best, heading = n, a
		}
	}
	return heading
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	if x > 0 {
		return 1
	}
	if x < 0 {
		return -1
	}
	return 0
}
