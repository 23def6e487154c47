package game

import (
	"errors"
	"fmt"
	"math"

	"raycast-place/internal/maps"
	"raycast-place/internal/render"
)

// Default frame geometry: a square minimap beside a square 3D view.
const (
	DefaultFrameWidth  = 1024
	DefaultFrameHeight = 512
	DefaultFOV         = math.Pi / 3
)

// Session owns everything one viewer needs to produce frames: the map,
// palette, optional atlas, pose, compositor and framebuffer. The pose must
// not be changed while Render runs.
type Session struct {
	m     *maps.Map
	pal   *render.Palette
	atlas *render.Atlas
	pose  Pose
	fov   float64

	comp *render.Compositor
	fb   *render.Framebuffer
}

// NewSession validates that every wall symbol of m resolves in pal and
// every textured entry resolves in atlas, then creates a session posed at
// the map's spawn point. atlas may be nil.
func NewSession(m *maps.Map, pal *render.Palette, atlas *render.Atlas, cfg render.Config) (*Session, error) {
	if m == nil || pal == nil {
		return nil, errors.New("session needs a map and a palette")
	}
	if idx := m.MaxPaletteIndex(); idx >= pal.Len() {
		return nil, fmt.Errorf("map %q uses palette index %d, palette has %d entries: %w",
			m.Name, idx, pal.Len(), render.ErrIndexOutOfRange)
	}
	if atlas != nil {
		if tex := pal.MaxTexture(); tex >= atlas.TileCount() {
			return nil, fmt.Errorf("palette uses texture %d, atlas has %d: %w",
				tex, atlas.TileCount(), render.ErrIndexOutOfRange)
		}
	}

	return &Session{
		m:     m,
		pal:   pal,
		atlas: atlas,
		pose:  render.SpawnPose(m),
		fov:   DefaultFOV,
		comp:  render.NewCompositor(cfg),
		fb:    render.NewFramebuffer(DefaultFrameWidth, DefaultFrameHeight),
	}, nil
}

// Render composes one frame and returns the session's framebuffer, which
// is overwritten by the next call.
func (s *Session) Render() (*render.Framebuffer, error) {
	err := s.comp.RenderFrame(s.fb, render.Scene{
		Map:     s.m,
		Palette: s.pal,
		Atlas:   s.atlas,
		Pose:    s.pose,
		FOV:     s.fov,
	})
	if err != nil {
		return nil, fmt.Errorf("render %q: %w", s.m.Name, err)
	}
	return s.fb, nil
}

// Map returns the session's map.
func (s *Session) Map() *maps.Map { return s.m }

// Pose returns the current viewer pose.
func (s *Session) Pose() Pose { return s.pose }

// SetPose moves the viewer.
func (s *Session) SetPose(p Pose) { s.pose = p }

// FOV returns the horizontal field of view in radians.
func (s *Session) FOV() float64 { return s.fov }

// SetFOV changes the field of view. Non-positive values are ignored.
func (s *Session) SetFOV(fov float64) {
	if fov > 0 && fov < 2*math.Pi {
		s.fov = fov
	}
}

// Resize changes the framebuffer dimensions.
func (s *Session) Resize(width, height int) {
	s.fb.Resize(width, height)
}

// Textures reports whether textured walls are sampled from the atlas.
func (s *Session) Textures() bool {
	return s.atlas != nil && s.comp.Config().Textures
}

// SetTextures turns atlas sampling on or off.
func (s *Session) SetTextures(on bool) {
	s.comp.SetTextures(on)
}

// ToggleTextures flips atlas sampling and returns the new state.
func (s *Session) ToggleTextures() bool {
	s.comp.SetTextures(!s.comp.Config().Textures)
	return s.Textures()
}

// Apply copies a loop snapshot into the session.
func (s *Session) Apply(ps PlayerSnapshot) {
	s.pose = ps.Pose
	s.comp.SetTextures(ps.Textures)
}
