package main

import (
	"math/rand"
	"testing"
)

func TestBuildProducesLoadableClosedMaps(t *testing.T) {
	for _, kind := range []string{"arena", "caves"} {
		for _, seed := range []int64{1, 2, 42} {
			m, err := build(kind, "Test", 24, 20, seed, 4)
			if err != nil {
				t.Fatalf("%s seed %d: %v", kind, seed, err)
			}
			for x := 0; x < m.Width; x++ {
				if !m.IsSolid(x, 0) || !m.IsSolid(x, m.Height-1) {
					t.Fatalf("%s seed %d: open border at column %d", kind, seed, x)
				}
			}
			if !m.CanStand(m.SpawnX, m.SpawnY) {
				t.Errorf("%s seed %d: spawn on a wall", kind, seed)
			}
			for idx := 0; idx <= m.MaxPaletteIndex(); idx++ {
				if l, ok := m.Legend[idx]; !ok || l.Texture != idx%4 {
					t.Errorf("%s seed %d: legend %d = %+v", kind, seed, idx, l)
				}
			}
		}
	}
}

func TestBuildDeterministic(t *testing.T) {
	a, err := build("caves", "A", 30, 30, 7, 0)
	if err != nil {
		t.Fatal(err)
	}
	b, err := build("caves", "A", 30, 30, 7, 0)
	if err != nil {
		t.Fatal(err)
	}
	ra, rb := a.Rows(), b.Rows()
	for i := range ra {
		if ra[i] != rb[i] {
			t.Fatalf("row %d differs for the same seed", i)
		}
	}
}

func TestEveryOpenCellReachable(t *testing.T) {
	g, err := generate("caves", 32, 32, 9)
	if err != nil {
		t.Fatal(err)
	}
	spawn, ok := findSpawn(g)
	if !ok {
		t.Fatal("no spawn")
	}
	ensureConnectivity(g, spawn, rand.New(rand.NewSource(1)))
	reach := floodFill(g, spawn)
	for y := 0; y < g.h; y++ {
		for x := 0; x < g.w; x++ {
			if g.isOpen(x, y) && !reach[point{x, y}] {
				t.Fatalf("open cell (%d,%d) unreachable from spawn", x, y)
			}
		}
	}
}

func TestUnknownType(t *testing.T) {
	if _, err := generate("dungeon", 10, 10, 1); err == nil {
		t.Error("unknown generator accepted")
	}
}

func TestValueNoiseRange(t *testing.T) {
	n := NewValueNoise(3)
	for y := 0.0; y < 20; y += 0.37 {
		for x := 0.0; x < 20; x += 0.41 {
			if v := n.Fractal(x, y, 0.2, 3); v < 0 || v > 1 {
				t.Fatalf("Fractal(%v,%v) = %v", x, y, v)
			}
		}
	}
}
