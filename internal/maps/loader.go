package maps

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Spawn defines the spawn point in map units.
type Spawn struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// jsonMap is the on-disk JSON format.
type jsonMap struct {
	Name    string                `json:"name"`
	Width   int                   `json:"width"`
	Height  int                   `json:"height"`
	Spawn   Spawn                 `json:"spawn"`
	Heading float64               `json:"heading"`
	Rows    []string              `json:"rows"`
	Legend  map[string]jsonLegend `json:"legend,omitempty"`
}

type jsonLegend struct {
	Color   string `json:"color,omitempty"`
	Texture *int   `json:"texture,omitempty"`
}

// LoadMap reads a JSON map file from disk.
func LoadMap(path string) (*Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read map file: %w", err)
	}
	return ParseMap(data)
}

// ParseMap decodes a JSON map definition. Rows are concatenated row-major, so
// a short or long row surfaces as a MalformedMapError on the total length.
func ParseMap(data []byte) (*Map, error) {
	var jm jsonMap
	if err := json.Unmarshal(data, &jm); err != nil {
		return nil, fmt.Errorf("parse map JSON: %w", err)
	}

	m, err := New(jm.Width, jm.Height, strings.Join(jm.Rows, ""))
	if err != nil {
		return nil, err
	}
	m.Name = jm.Name
	m.SpawnX = jm.Spawn.X
	m.SpawnY = jm.Spawn.Y
	m.Heading = jm.Heading

	if len(jm.Legend) > 0 {
		m.Legend = make(map[int]Legend, len(jm.Legend))
		for k, jl := range jm.Legend {
			idx, err := strconv.Atoi(k)
			if err != nil || idx < 0 || idx > 9 {
				return nil, fmt.Errorf("legend key %q is not a palette index", k)
			}
			l := Legend{Color: jl.Color, Texture: -1}
			if jl.Texture != nil {
				l.Texture = *jl.Texture
			}
			m.Legend[idx] = l
		}
	}

	if !m.CanStand(m.SpawnX, m.SpawnY) {
		return nil, fmt.Errorf("map %q: spawn (%.3f,%.3f) is not on an empty cell", m.Name, m.SpawnX, m.SpawnY)
	}
	return m, nil
}

// MarshalMap encodes a map in the on-disk JSON format.
func MarshalMap(m *Map) ([]byte, error) {
	jm := jsonMap{
		Name:    m.Name,
		Width:   m.Width,
		Height:  m.Height,
		Spawn:   Spawn{X: m.SpawnX, Y: m.SpawnY},
		Heading: m.Heading,
		Rows:    m.Rows(),
	}
	if len(m.Legend) > 0 {
		jm.Legend = make(map[string]jsonLegend, len(m.Legend))
		for idx, l := range m.Legend {
			jl := jsonLegend{Color: l.Color}
			if l.Texture >= 0 {
				tex := l.Texture
				jl.Texture = &tex
			}
			jm.Legend[strconv.Itoa(idx)] = jl
		}
	}
	return json.MarshalIndent(jm, "", "  ")
}

// LoadMaps scans a directory for *.json files, loads each as a Map,
// and returns them indexed by Name.
func LoadMaps(dir string) (map[string]*Map, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read maps directory: %w", err)
	}

	allMaps := make(map[string]*Map)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		m, err := LoadMap(path)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", entry.Name(), err)
		}
		if _, exists := allMaps[m.Name]; exists {
			return nil, fmt.Errorf("duplicate map name %q in %s", m.Name, entry.Name())
		}
		allMaps[m.Name] = m
	}
	if len(allMaps) == 0 {
		return nil, fmt.Errorf("no maps found in %s", dir)
	}

	return allMaps, nil
}

// defaultRows is the 16x16 sample level.
var defaultRows = []string{
	"0000222222220000",
	"1              0",
	"1      11111   0",
	"1     0        0",
	"0     0  1110000",
	"0     3        0",
	"0   10000      0",
	"0   0   11100  0",
	"0   0   0      0",
	"0   0   1  00000",
	"0       1      0",
	"2       1      0",
	"0       0      0",
	"0 0000000      0",
	"0              0",
	"0002222222200000",
}

// DefaultMap returns the built-in sample map used when no map files are available.
func DefaultMap() *Map {
	m, err := New(16, 16, strings.Join(defaultRows, ""))
	if err != nil {
		panic(err) // built-in data
	}
	m.Name = "Sample"
	m.SpawnX = 3.456
	m.SpawnY = 2.345
	m.Heading = 1.523
	return m
}
