package tui

import (
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"raycast-place/internal/game"
	"raycast-place/internal/render"
)

// StatusRows is the number of terminal rows below the view.
const StatusRows = 1

// Screen presents frames on a local terminal through tcell, two pixels per
// cell using upper half blocks.
type Screen struct {
	screen tcell.Screen

	mu     sync.Mutex
	status string
}

// NewScreen initializes the terminal. Call Fini when done.
func NewScreen() (*Screen, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	return Wrap(screen), nil
}

// Wrap uses an already initialized tcell screen.
func Wrap(screen tcell.Screen) *Screen {
	screen.HideCursor()
	screen.Clear()
	return &Screen{screen: screen}
}

// Fini restores the terminal.
func (s *Screen) Fini() {
	s.screen.Fini()
}

// FrameSize implements game.Display: one pixel per column, two per row.
func (s *Screen) FrameSize() (int, int) {
	cols, rows := s.screen.Size()
	return cols, max(rows-StatusRows, 0) * 2
}

// SetStatus replaces the text of the status row.
func (s *Screen) SetStatus(text string) {
	s.mu.Lock()
	s.status = text
	s.mu.Unlock()
}

// Show implements game.Display.
func (s *Screen) Show(fb *render.Framebuffer, state game.GameState, me game.PlayerSnapshot) error {
	tex := "off"
	if me.Textures {
		tex = "on"
	}
	s.SetStatus(fmt.Sprintf(" %s │ %s │ %d online │ x %.2f y %.2f θ %.3f │ tex %s │ ←→ turn ↑↓ move T textures Q quit",
		me.Name, me.MapName, len(state.Players), me.Pose.X, me.Pose.Y, me.Pose.Heading, tex))
	return s.Present(fb)
}

// Present implements render.FrameSink. Frames of a different size than
// FrameSize are sampled nearest-neighbor.
func (s *Screen) Present(fb *render.Framebuffer) error {
	cols, rows := s.screen.Size()
	viewRows := max(rows-StatusRows, 0)

	if fb.Width > 0 && fb.Height > 0 {
		for y := 0; y < viewRows; y++ {
			top := (2 * y) * fb.Height / (2 * viewRows)
			bottom := (2*y + 1) * fb.Height / (2 * viewRows)
			for x := 0; x < cols; x++ {
				fx := x * fb.Width / cols
				style := tcell.StyleDefault.
					Foreground(tcellColor(fb.Pixel(fx, top))).
					Background(tcellColor(fb.Pixel(fx, bottom)))
				s.screen.SetContent(x, y, render.UpperHalfBlock, nil, style)
			}
		}
	}

	s.mu.Lock()
	status := s.status
	s.mu.Unlock()
	statusStyle := tcell.StyleDefault.
		Foreground(tcell.NewRGBColor(180, 180, 195)).
		Background(tcell.NewRGBColor(15, 18, 30))
	for y := viewRows; y < rows; y++ {
		col := 0
		if y == viewRows {
			for _, r := range status {
				w := runewidth.RuneWidth(r)
				if w == 0 || col+w > cols {
					continue
				}
				s.screen.SetContent(col, y, r, nil, statusStyle)
				col += w
			}
		}
		for ; col < cols; col++ {
			s.screen.SetContent(col, y, ' ', nil, statusStyle)
		}
	}

	s.screen.Show()
	return nil
}

func tcellColor(c render.Color) tcell.Color {
	r, g, b := c.RGB()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

// ActionFor maps a key event to a game action.
func ActionFor(ev *tcell.EventKey) game.Action {
	switch ev.Key() {
	case tcell.KeyUp:
		return game.ActionForward
	case tcell.KeyDown:
		return game.ActionBack
	case tcell.KeyLeft:
		return game.ActionTurnLeft
	case tcell.KeyRight:
		return game.ActionTurnRight
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return game.ActionQuit
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'w', 'W':
			return game.ActionForward
		case 's', 'S':
			return game.ActionBack
		case 'a', 'A':
			return game.ActionTurnLeft
		case 'd', 'D':
			return game.ActionTurnRight
		case 't', 'T':
			return game.ActionToggleTextures
		case 'q', 'Q':
			return game.ActionQuit
		}
	}
	return game.ActionNone
}

// Pump polls terminal events and forwards actions for playerID to input.
// It closes quit when the player quits or the screen is finalized.
func (s *Screen) Pump(playerID string, input chan<- game.InputEvent, quit chan<- struct{}) {
	defer close(quit)
	for {
		switch ev := s.screen.PollEvent().(type) {
		case nil:
			return
		case *tcell.EventResize:
			s.screen.Sync()
		case *tcell.EventKey:
			action := ActionFor(ev)
			switch action {
			case game.ActionNone:
			case game.ActionQuit:
				return
			default:
				select {
				case input <- game.InputEvent{PlayerID: playerID, Action: action}:
				default:
				}
			}
		}
	}
}
