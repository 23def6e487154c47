package render

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"raycast-place/internal/maps"
)

// ErrNoPalette is returned when a scene with a map carries no palette.
var ErrNoPalette = errors.New("scene has no palette")

// Config tunes the compositor.
type Config struct {
	MaxDistance float64
	Step        float64
	Background  Color
	ConeColor   Color
	Textures    bool // sample the atlas for Textured palette entries
	Workers     int  // >1 casts columns concurrently
}

// DefaultConfig matches the sample renderer: white background, grey cone,
// 0.01 step out to 20 units, one worker.
func DefaultConfig() Config {
	return Config{
		MaxDistance: DefaultMaxDistance,
		Step:        DefaultStep,
		Background:  Background,
		ConeColor:   ConeColor,
		Textures:    true,
		Workers:     1,
	}
}

// Scene is everything a frame is computed from.
type Scene struct {
	Map     *maps.Map
	Palette *Palette
	Atlas   *Atlas // optional
	Pose    Pose
	FOV     float64
}

// Compositor draws the minimap, visibility cone and wall columns into a
// framebuffer. It reuses scratch space between frames and must not be
// shared by concurrent RenderFrame calls.
type Compositor struct {
	cfg  Config
	hits []RayHit
}

// NewCompositor creates a compositor.
func NewCompositor(cfg Config) *Compositor {
	if !(cfg.Step > 0) {
		cfg.Step = DefaultStep
	}
	if !(cfg.MaxDistance > 0) || math.IsInf(cfg.MaxDistance, 0) {
		cfg.MaxDistance = DefaultMaxDistance
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Compositor{cfg: cfg}
}

// Config returns the active configuration.
func (c *Compositor) Config() Config {
	return c.cfg
}

// SetTextures toggles atlas sampling.
func (c *Compositor) SetTextures(on bool) {
	c.cfg.Textures = on
}

// RenderFrame overwrites fb with one complete frame of s. The left half
// holds the minimap and cone, the right half the projected walls.
func (c *Compositor) RenderFrame(fb *Framebuffer, s Scene) error {
	fb.Fill(c.cfg.Background)
	m := s.Map
	if fb.Width < 2 || fb.Height < 1 || m == nil {
		return nil
	}
	if s.Palette == nil {
		return ErrNoPalette
	}

	cellW := fb.Width / (m.Width * 2)
	cellH := fb.Height / m.Height
	for j := 0; j < m.Height; j++ {
		for i := 0; i < m.Width; i++ {
			idx, ok := m.PaletteIndex(i, j)
			if !ok {
				continue
			}
			col, err := s.Palette.ColorFor(idx)
			if err != nil {
				return fmt.Errorf("minimap cell (%d,%d): %w", i, j, err)
			}
			fb.DrawRectangle(i*cellW, j*cellH, cellW, cellH, col)
		}
	}

	n := fb.Width / 2
	if cap(c.hits) < n {
		c.hits = make([]RayHit, n)
	}
	c.hits = c.hits[:n]

	column := func(i int) error {
		angle := RayAngle(s.Pose.Heading, s.FOV, i, n)
		hit := Cast(m, s.Pose.X, s.Pose.Y, angle, c.cfg.MaxDistance, c.cfg.Step, nil)
		c.hits[i] = hit
		if !hit.Hit {
			return nil
		}
		return c.drawColumn(fb, s, n+i, angle, hit)
	}

	if c.cfg.Workers > 1 {
		var g errgroup.Group
		g.SetLimit(c.cfg.Workers)
		chunk := (n + c.cfg.Workers - 1) / c.cfg.Workers
		for start := 0; start < n; start += chunk {
			start, end := start, min(start+chunk, n)
			g.Go(func() error {
				for i := start; i < end; i++ {
					if err := column(i); err != nil {
						return err
					}
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	} else {
		for i := 0; i < n; i++ {
			if err := column(i); err != nil {
				return err
			}
		}
	}

	// Cone last and in column order: the output is the same for any worker count.
	for i := 0; i < n; i++ {
		c.drawCone(fb, s.Pose, RayAngle(s.Pose.Heading, s.FOV, i, n), c.hits[i], cellW, cellH, n)
	}
	return nil
}

// drawColumn paints one wall slice centered vertically at screen column x.
func (c *Compositor) drawColumn(fb *Framebuffer, s Scene, x int, angle float64, hit RayHit) error {
	idx, ok := hit.Symbol.PaletteIndex()
	if !ok {
		return fmt.Errorf("wall symbol %q: %w", hit.Symbol, ErrIndexOutOfRange)
	}
	entry, err := s.Palette.Entry(idx)
	if err != nil {
		return err
	}

	h := ColumnHeight(hit.Distance, angle, s.Pose.Heading, fb.Height)
	top := fb.Height/2 - h/2

	if entry.Kind != Textured || !c.cfg.Textures || s.Atlas == nil {
		fb.DrawRectangle(x, top, 1, h, entry.Color)
		return nil
	}

	for y := max(top, 0); y < min(top+h, fb.Height); y++ {
		v := float64(y-top) / float64(h)
		col, err := s.Atlas.Sample(entry.Texture, hit.Frac, v)
		if err != nil {
			return err
		}
		fb.Set(x, y, col)
	}
	return nil
}

// drawCone replays the march samples of one ray onto the minimap, up to and
// including the hit sample. Samples right of limitX are skipped.
func (c *Compositor) drawCone(fb *Framebuffer, p Pose, angle float64, hit RayHit, cellW, cellH, limitX int) {
	dx, dy := math.Cos(angle), math.Sin(angle)
	for k := 0; ; k++ {
		t := float64(k) * c.cfg.Step
		if hit.Hit {
			if k > hit.Steps {
				return
			}
		} else if t >= c.cfg.MaxDistance {
			return
		}
		px, py := MapToMinimap(p.X+t*dx, p.Y+t*dy, cellW, cellH)
		if px >= 0 && px < limitX {
			fb.Set(px, py, c.cfg.ConeColor)
		}
	}
}
