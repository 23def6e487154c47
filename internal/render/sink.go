package render

import (
	"io"
	"sync"
)

// FrameSink receives each finished frame. Implementations present it on
// some surface: a terminal, a socket, an image file.
type FrameSink interface {
	Present(fb *Framebuffer) error
}

// ANSISink presents frames as half-block ANSI art on a terminal stream.
// Resize and SetHUD may be called from other goroutines.
type ANSISink struct {
	w      io.Writer
	engine *Engine

	mu         sync.Mutex
	cols, rows int
	hud        HUD
}

// NewANSISink creates a sink for a cols x rows terminal.
func NewANSISink(w io.Writer, cols, rows int) *ANSISink {
	return &ANSISink{
		w:      w,
		engine: NewEngine(cols, rows),
		cols:   cols,
		rows:   rows,
	}
}

// Resize records a new terminal size; it takes effect on the next frame.
func (s *ANSISink) Resize(cols, rows int) {
	s.mu.Lock()
	s.cols, s.rows = cols, rows
	s.mu.Unlock()
}

// SetHUD replaces the status line content.
func (s *ANSISink) SetHUD(h HUD) {
	s.mu.Lock()
	s.hud = h
	s.mu.Unlock()
}

// Present implements FrameSink.
func (s *ANSISink) Present(fb *Framebuffer) error {
	s.mu.Lock()
	cols, rows, hud := s.cols, s.rows, s.hud
	s.mu.Unlock()

	out := s.engine.Render(fb, hud, cols, rows)
	if out == "" {
		return nil
	}
	_, err := io.WriteString(s.w, out)
	return err
}
