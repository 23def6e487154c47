package main

import (
	"flag"
	"fmt"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"raycast-place/internal/game"
	"raycast-place/internal/maps"
	"raycast-place/internal/render"
)

const paletteSeed = 1

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "validate":
		if len(args) != 1 {
			fmt.Fprintln(os.Stderr, "Usage: maptools validate <maps-dir>")
			os.Exit(1)
		}
		os.Exit(runValidate(args[0]))
	case "viz":
		if len(args) != 1 {
			fmt.Fprintln(os.Stderr, "Usage: maptools viz <map-file>")
			os.Exit(1)
		}
		runViz(args[0])
	case "stats":
		if len(args) != 1 {
			fmt.Fprintln(os.Stderr, "Usage: maptools stats <map-file>")
			os.Exit(1)
		}
		runStats(args[0])
	case "render":
		os.Exit(runRender(args))
	case "all":
		if len(args) != 1 {
			fmt.Fprintln(os.Stderr, "Usage: maptools all <maps-dir>")
			os.Exit(1)
		}
		os.Exit(runAll(args[0]))
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: maptools <command> <path>

Commands:
  validate <maps-dir>   Validate all maps in directory
  viz      <map-file>   Render map as colored ASCII art
  stats    <map-file>   Show wall distribution and open %
  render   [flags] <map-file> <out.png>
                        Render one frame from the spawn point to a PNG
  all      <maps-dir>   Run validate + viz + stats for all maps`)
}

// --- validate ---

func runValidate(dir string) int {
	allMaps, err := maps.LoadMaps(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FAIL: %v\n", err)
		return 1
	}

	names := make([]string, 0, len(allMaps))
	for name := range allMaps {
		names = append(names, name)
	}
	sort.Strings(names)

	errors := 0
	for _, name := range names {
		m := allMaps[name]
		fmt.Printf("Validating %q...\n", name)
		before := errors

		if idx := m.MaxPaletteIndex(); idx >= game.PaletteSize {
			fmt.Printf("  ERROR: palette index %d exceeds palette size %d\n", idx, game.PaletteSize)
			errors++
		}
		if _, err := render.PaletteFromLegend(game.PaletteSize, paletteSeed, m.Legend); err != nil {
			fmt.Printf("  ERROR: legend: %v\n", err)
			errors++
		}

		// Rays that leave through an open edge never hit anything
		for _, gap := range openEdges(m) {
			fmt.Printf("  WARN: open border cell (%d,%d)\n", gap[0], gap[1])
		}

		if errors == before {
			fmt.Printf("  OK (%dx%d, %d legend entries)\n", m.Width, m.Height, len(m.Legend))
		}
	}

	if errors > 0 {
		fmt.Printf("\n%d error(s) found\n", errors)
		return 1
	}
	fmt.Printf("\nAll %d maps valid\n", len(allMaps))
	return 0
}

// openEdges lists empty cells on the map border.
func openEdges(m *maps.Map) [][2]int {
	var gaps [][2]int
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if x != 0 && y != 0 && x != m.Width-1 && y != m.Height-1 {
				continue
			}
			if !m.IsSolid(x, y) {
				gaps = append(gaps, [2]int{x, y})
			}
		}
	}
	return gaps
}

// --- viz ---

// trueColor returns the 24-bit background escape for c.
func trueColor(c render.Color) string {
	r, g, b := c.RGB()
	return fmt.Sprintf("\033[48;2;%d;%d;%dm", r, g, b)
}

func runViz(path string) {
	m, err := maps.LoadMap(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	pal, err := render.PaletteFromLegend(game.PaletteSize, paletteSeed, m.Legend)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%s (%dx%d)\n", m.Name, m.Width, m.Height)

	spawnX, spawnY := int(math.Floor(m.SpawnX)), int(math.Floor(m.SpawnY))
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			switch idx, ok := m.PaletteIndex(x, y); {
			case x == spawnX && y == spawnY:
				fmt.Print("@@")
			case ok:
				c, _ := pal.ColorFor(idx)
				fmt.Print(trueColor(c), "  ", "\033[0m")
			default:
				fmt.Print("  ")
			}
		}
		fmt.Println()
	}

	fmt.Printf("\nSpawn: (%.3f,%.3f) heading %.3f rad\n", m.SpawnX, m.SpawnY, m.Heading)
	keys := make([]int, 0, len(m.Legend))
	for k := range m.Legend {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	for _, k := range keys {
		l := m.Legend[k]
		if l.Texture >= 0 {
			fmt.Printf("Legend %d: texture %d (fallback %q)\n", k, l.Texture, l.Color)
		} else {
			fmt.Printf("Legend %d: color %q\n", k, l.Color)
		}
	}
}

// --- stats ---

func runStats(path string) {
	m, err := maps.LoadMap(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%s (%dx%d = %d cells)\n\n", m.Name, m.Width, m.Height, m.Width*m.Height)

	counts := make(map[string]int)
	open := 0
	total := m.Width * m.Height

	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			idx, ok := m.PaletteIndex(x, y)
			if !ok {
				counts["empty"]++
				open++
				continue
			}
			counts[fmt.Sprintf("wall %d", idx)]++
		}
	}

	type entry struct {
		name  string
		count int
	}
	var sorted []entry
	for name, count := range counts {
		sorted = append(sorted, entry{name, count})
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].count != sorted[j].count {
			return sorted[i].count > sorted[j].count
		}
		return sorted[i].name < sorted[j].name
	})

	for _, e := range sorted {
		pct := float64(e.count) / float64(total) * 100
		bar := strings.Repeat("█", int(pct/2))
		fmt.Printf("  %-10s %4d (%5.1f%%) %s\n", e.name, e.count, pct, bar)
	}

	fmt.Printf("\nOpen: %d/%d (%.1f%%)\n", open, total, float64(open)/float64(total)*100)
	fmt.Printf("Open border cells: %d\n", len(openEdges(m)))
}

// --- render ---

func runRender(args []string) int {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	width := fs.Int("w", game.DefaultFrameWidth, "frame width in pixels")
	height := fs.Int("h", game.DefaultFrameHeight, "frame height in pixels")
	atlasPath := fs.String("atlas", "", "texture atlas image (optional)")
	heading := fs.Float64("heading", math.NaN(), "override the spawn heading (radians)")
	workers := fs.Int("workers", 1, "concurrent column workers")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "Usage: maptools render [-w N] [-h N] [-atlas file] [-heading rad] <map-file> <out.png>")
		return 1
	}

	m, err := maps.LoadMap(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	pal, err := render.PaletteFromLegend(game.PaletteSize, paletteSeed, m.Legend)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	var atlas *render.Atlas
	if *atlasPath != "" {
		atlas, err = render.LoadAtlasFile(*atlasPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v; rendering flat colors\n", err)
			atlas = nil
		}
	}

	cfg := render.DefaultConfig()
	cfg.Workers = *workers
	sess, err := game.NewSession(m, pal, atlas, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if !math.IsNaN(*heading) {
		p := sess.Pose()
		p.Heading = *heading
		sess.SetPose(p)
	}
	sess.Resize(*width, *height)

	fb, err := sess.Render()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	out := fs.Arg(1)
	f, err := os.Create(out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer f.Close()
	if err := png.Encode(f, fb); err != nil {
		fmt.Fprintf(os.Stderr, "Error: encode %s: %v\n", out, err)
		return 1
	}
	fmt.Printf("Wrote %s (%dx%d)\n", out, fb.Width, fb.Height)
	return 0
}

// --- all ---

func runAll(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading directory: %v\n", err)
		return 1
	}

	// Run validate first
	fmt.Println("=== VALIDATE ===")
	code := runValidate(dir)
	if code != 0 {
		return code
	}

	// Then viz + stats for each map
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		fmt.Printf("\n=== VIZ: %s ===\n", entry.Name())
		runViz(path)
		fmt.Printf("\n=== STATS: %s ===\n", entry.Name())
		runStats(path)
	}

	return 0
}
