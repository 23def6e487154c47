package maps

import (
	"fmt"
	"math"
)

// Symbol is a single map cell character.
type Symbol byte

// Empty marks a cell with no wall.
const Empty Symbol = ' '

// IsEmpty reports whether the symbol is the empty marker.
func (s Symbol) IsEmpty() bool {
	return s == Empty
}

// PaletteIndex returns the palette index encoded by a digit symbol.
func (s Symbol) PaletteIndex() (int, bool) {
	if s < '0' || s > '9' {
		return 0, false
	}
	return int(s - '0'), true
}

// MalformedMapError reports a map definition that cannot be turned into a grid.
type MalformedMapError struct {
	Width, Height int
	Cells         int
	Reason        string
}

func (e *MalformedMapError) Error() string {
	return fmt.Sprintf("malformed map %dx%d (%d cells): %s", e.Width, e.Height, e.Cells, e.Reason)
}

// Legend describes how a palette index is drawn, as read from a map file.
type Legend struct {
	Color   string // "#rrggbb", empty when unset
	Texture int    // atlas index, -1 when unset
}

// Map is an immutable grid of cell symbols.
type Map struct {
	Name    string
	Width   int
	Height  int
	SpawnX  float64
	SpawnY  float64
	Heading float64
	Legend  map[int]Legend

	cells    []Symbol
	maxIndex int
}

// New builds a map from a flat row-major cell string.
func New(width, height int, cells string) (*Map, error) {
	if width <= 0 || height <= 0 {
		return nil, &MalformedMapError{Width: width, Height: height, Cells: len(cells), Reason: "dimensions must be positive"}
	}
	if len(cells) != width*height {
		return nil, &MalformedMapError{
			Width: width, Height: height, Cells: len(cells),
			Reason: fmt.Sprintf("expected %d cells", width*height),
		}
	}

	m := &Map{
		Width:    width,
		Height:   height,
		cells:    make([]Symbol, len(cells)),
		maxIndex: -1,
	}
	for i := 0; i < len(cells); i++ {
		s := Symbol(cells[i])
		if s.IsEmpty() {
			m.cells[i] = s
			continue
		}
		idx, ok := s.PaletteIndex()
		if !ok {
			return nil, &MalformedMapError{
				Width: width, Height: height, Cells: len(cells),
				Reason: fmt.Sprintf("cell (%d,%d) has invalid symbol %q", i%width, i/width, cells[i]),
			}
		}
		if idx > m.maxIndex {
			m.maxIndex = idx
		}
		m.cells[i] = s
	}
	return m, nil
}

// SymbolAt returns the raw symbol at cell (i,j).
func (m *Map) SymbolAt(i, j int) (Symbol, bool) {
	if i < 0 || i >= m.Width || j < 0 || j >= m.Height {
		return Empty, false
	}
	return m.cells[i+j*m.Width], true
}

// IsSolid reports whether cell (i,j) holds a wall. Out-of-range cells are not solid.
func (m *Map) IsSolid(i, j int) bool {
	s, ok := m.SymbolAt(i, j)
	return ok && !s.IsEmpty()
}

// PaletteIndex returns the palette index of the wall at (i,j).
func (m *Map) PaletteIndex(i, j int) (int, bool) {
	s, ok := m.SymbolAt(i, j)
	if !ok {
		return 0, false
	}
	return s.PaletteIndex()
}

// MaxPaletteIndex returns the highest palette index used, or -1 if the map has no walls.
func (m *Map) MaxPaletteIndex() int {
	return m.maxIndex
}

// CanStand reports whether a float position lies inside the map on an empty cell.
func (m *Map) CanStand(x, y float64) bool {
	if x < 0 || y < 0 {
		return false
	}
	i, j := int(math.Floor(x)), int(math.Floor(y))
	if i >= m.Width || j >= m.Height {
		return false
	}
	return !m.IsSolid(i, j)
}

// Rows returns the map as one string per row.
func (m *Map) Rows() []string {
	rows := make([]string, m.Height)
	buf := make([]byte, m.Width)
	for j := 0; j < m.Height; j++ {
		for i := 0; i < m.Width; i++ {
			buf[i] = byte(m.cells[i+j*m.Width])
		}
		rows[j] = string(buf)
	}
	return rows
}
