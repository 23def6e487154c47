package render

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"github.com/lucasb-eyer/go-colorful"

	"raycast-place/internal/maps"
)

// ErrIndexOutOfRange is returned for palette or texture lookups past the end of the table.
var ErrIndexOutOfRange = errors.New("index out of range")

// EntryKind selects how a palette entry is drawn.
type EntryKind int

const (
	SolidColor EntryKind = iota
	Textured
)

func (k EntryKind) String() string {
	switch k {
	case SolidColor:
		return "solid"
	case Textured:
		return "textured"
	default:
		return fmt.Sprintf("EntryKind(%d)", int(k))
	}
}

// Entry is one palette slot. Color is always set so textured entries can
// fall back to a flat fill when no atlas is loaded.
type Entry struct {
	Kind    EntryKind
	Color   Color
	Texture int // atlas index, meaningful only for Textured
}

// Solid returns a SolidColor entry.
func Solid(c Color) Entry {
	return Entry{Kind: SolidColor, Color: c}
}

// Texture returns a Textured entry with a fallback color.
func Texture(index int, fallback Color) Entry {
	return Entry{Kind: Textured, Color: fallback, Texture: index}
}

// Palette maps tile indices to entries. Read-only after construction.
type Palette struct {
	entries []Entry
}

// NewPalette copies the given entries into a palette.
func NewPalette(entries []Entry) *Palette {
	p := &Palette{entries: make([]Entry, len(entries))}
	copy(p.entries, entries)
	return p
}

// RandomPalette builds n solid entries from a PRNG seeded once with seed.
// The same seed always yields the same colors.
func RandomPalette(n int, seed int64) *Palette {
	r := rand.New(rand.NewSource(seed))
	entries := make([]Entry, n)
	for i := range entries {
		c := colorful.Hsv(r.Float64()*360, 0.4+r.Float64()*0.5, 0.5+r.Float64()*0.5)
		entries[i] = Solid(RGB(c.RGB255()))
	}
	return &Palette{entries: entries}
}

// PaletteFromLegend starts from a seeded random palette of n entries and
// applies the map legend on top: colors override the fill, textures switch
// the entry to Textured.
func PaletteFromLegend(n int, seed int64, legend map[int]maps.Legend) (*Palette, error) {
	p := RandomPalette(n, seed)

	keys := make([]int, 0, len(legend))
	for k := range legend {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	for _, idx := range keys {
		l := legend[idx]
		if idx < 0 || idx >= n {
			return nil, fmt.Errorf("legend entry %d: %w (palette has %d entries)", idx, ErrIndexOutOfRange, n)
		}
		e := p.entries[idx]
		if l.Color != "" {
			c, err := colorful.Hex(l.Color)
			if err != nil {
				return nil, fmt.Errorf("legend entry %d color %q: %w", idx, l.Color, err)
			}
			e.Color = RGB(c.RGB255())
		}
		if l.Texture >= 0 {
			e.Kind = Textured
			e.Texture = l.Texture
		}
		p.entries[idx] = e
	}
	return p, nil
}

// Len returns the number of entries.
func (p *Palette) Len() int {
	return len(p.entries)
}

// Entry returns the entry for a tile index.
func (p *Palette) Entry(i int) (Entry, error) {
	if i < 0 || i >= len(p.entries) {
		return Entry{}, fmt.Errorf("palette entry %d of %d: %w", i, len(p.entries), ErrIndexOutOfRange)
	}
	return p.entries[i], nil
}

// ColorFor returns the flat color for a tile index.
func (p *Palette) ColorFor(i int) (Color, error) {
	e, err := p.Entry(i)
	if err != nil {
		return 0, err
	}
	return e.Color, nil
}

// MaxTexture returns the highest atlas index referenced, or -1.
func (p *Palette) MaxTexture() int {
	highest := -1
	for _, e := range p.entries {
		if e.Kind == Textured && e.Texture > highest {
			highest = e.Texture
		}
	}
	return highest
}
