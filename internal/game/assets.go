package game

import (
	"fmt"

	"raycast-place/internal/maps"
	"raycast-place/internal/render"
)

// PaletteSize covers every digit a map can use.
const PaletteSize = 10

// Assets are the read-only render resources shared by every session.
type Assets struct {
	Palettes map[string]*render.Palette // by map name
	Atlas    *render.Atlas              // nil renders flat colors
	Config   render.Config
}

// NewAssets builds one palette per map from its legend, seeding the
// unlisted entries with seed.
func NewAssets(w *World, seed int64, atlas *render.Atlas, cfg render.Config) (*Assets, error) {
	a := &Assets{
		Palettes: make(map[string]*render.Palette, len(w.Maps)),
		Atlas:    atlas,
		Config:   cfg,
	}
	for name, m := range w.Maps {
		pal, err := render.PaletteFromLegend(PaletteSize, seed, m.Legend)
		if err != nil {
			return nil, fmt.Errorf("palette for %q: %w", name, err)
		}
		a.Palettes[name] = pal
	}
	return a, nil
}

// NewSession creates a session for m. A palette referencing textures past
// the end of the atlas fails here rather than mid-frame.
func (a *Assets) NewSession(m *maps.Map) (*Session, error) {
	pal, ok := a.Palettes[m.Name]
	if !ok {
		return nil, fmt.Errorf("no palette for map %q", m.Name)
	}
	return NewSession(m, pal, a.Atlas, a.Config)
}
