package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"raycast-place/internal/maps"
)

func main() {
	genType := flag.String("type", "", "generator type (arena, caves)")
	seed := flag.Int64("seed", 0, "random seed (0 = random)")
	size := flag.String("size", "24x24", "map size as WxH")
	name := flag.String("name", "Arena", "map name")
	textures := flag.Int("textures", 0, "atlas texture count to assign to wall digits (0 = flat colors)")
	out := flag.String("out", "", "output file (default: stdout)")
	flag.Parse()

	if *genType == "" {
		fmt.Fprintln(os.Stderr, "Error: -type is required")
		fmt.Fprintln(os.Stderr, "Usage: mapgen -type arena|caves [-seed N] [-size WxH] [-name Name] [-textures N] [-out file.json]")
		os.Exit(1)
	}

	w, h, err := parseSize(*size)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	fmt.Fprintf(os.Stderr, "Generating %dx%d %s map %q (seed %d)...\n", w, h, *genType, *name, *seed)

	m, err := build(*genType, *name, w, h, *seed, *textures)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "Spawn: (%.1f, %.1f) heading %.3f\n", m.SpawnX, m.SpawnY, m.Heading)

	data, err := maps.MarshalMap(m)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
		os.Exit(1)
	}

	if *out == "" {
		os.Stdout.Write(data)
		os.Stdout.WriteString("\n")
	} else {
		if err := os.WriteFile(*out, append(data, '\n'), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Wrote %s (%d bytes)\n", *out, len(data))
	}

	// Print cell distribution summary
	counts := make(map[maps.Symbol]int)
	for _, row := range m.Rows() {
		for i := 0; i < len(row); i++ {
			counts[maps.Symbol(row[i])]++
		}
	}
	total := w * h
	fmt.Fprintf(os.Stderr, "\nCell distribution:\n")
	if c, ok := counts[maps.Empty]; ok {
		fmt.Fprintf(os.Stderr, "  %-8s %5d (%5.1f%%)\n", "open", c, float64(c)/float64(total)*100)
	}
	for d := '0'; d <= '9'; d++ {
		if c, ok := counts[maps.Symbol(d)]; ok {
			fmt.Fprintf(os.Stderr, "  wall %c   %5d (%5.1f%%)\n", d, c, float64(c)/float64(total)*100)
		}
	}
}

// build generates a level and wraps it as a validated map.
func build(kind, name string, w, h int, seed int64, textures int) (*maps.Map, error) {
	g, err := generate(kind, w, h, seed)
	if err != nil {
		return nil, err
	}
	spawn, ok := findSpawn(g)
	if !ok {
		return nil, fmt.Errorf("no open cell for a spawn point")
	}
	connected, filled := ensureConnectivity(g, spawn, rand.New(rand.NewSource(seed+100)))
	fmt.Fprintf(os.Stderr, "Connectivity: connected %d regions, filled %d pockets\n", connected, filled)

	m, err := maps.New(w, h, g.String())
	if err != nil {
		return nil, err
	}
	m.Name = name
	m.SpawnX = float64(spawn.x) + 0.5
	m.SpawnY = float64(spawn.y) + 0.5
	m.Heading = bestHeading(g, spawn)
	m.Legend = legend(m.MaxPaletteIndex(), textures)

	// Round-trip through the loader so the output is guaranteed loadable.
	data, err := maps.MarshalMap(m)
	if err != nil {
		return nil, err
	}
	return maps.ParseMap(data)
}

// legend assigns evenly spaced hues to digits 0..maxIndex and, when an
// atlas is available, cycles them through its textures.
func legend(maxIndex, textures int) map[int]maps.Legend {
	l := make(map[int]maps.Legend, maxIndex+1)
	for i := 0; i <= maxIndex; i++ {
		c := colorful.Hsv(float64(i)*360/float64(maxIndex+1), 0.45, 0.85)
		entry := maps.Legend{Color: c.Hex(), Texture: -1}
		if textures > 0 {
			entry.Texture = i % textures
		}
		l[i] = entry
	}
	return l
}

func parseSize(s string) (int, int, error) {
	parts := strings.SplitN(s, "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid size %q (expected WxH)", s)
	}
	w, err := strconv.Atoi(parts[0])
	if err != nil || w < 8 {
		return 0, 0, fmt.Errorf("invalid width %q (minimum 8)", parts[0])
	}
	h, err := strconv.Atoi(parts[1])
	if err != nil || h < 8 {
		return 0, 0, fmt.Errorf("invalid height %q (minimum 8)", parts[1])
	}
	return w, h, nil
}
