package render

import (
	"fmt"
	"image"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/image/draw"
)

// HUDRows is the number of terminal rows reserved below the view.
const HUDRows = 2

var sentinel = Cell{Ch: '\x00', FgR: 255, BgB: 255, Bold: true}

// HUD is the status line shown under the frame.
type HUD struct {
	Name     string
	MapName  string
	Pose     Pose
	Players  int
	Textures bool
}

// Engine is a per-session double-buffer diff renderer that turns
// framebuffers into half-block ANSI output.
type Engine struct {
	width, height int
	current       [][]Cell
	next          [][]Cell
	scaled        *image.RGBA
	firstFrame    bool
}

// NewEngine creates a renderer for the given terminal dimensions.
func NewEngine(width, height int) *Engine {
	e := &Engine{}
	e.Resize(width, height)
	return e
}

// Resize adjusts the renderer for a new terminal size.
func (e *Engine) Resize(width, height int) {
	e.width = max(width, 0)
	e.height = max(height, 0)
	e.current = e.makeBuffer(sentinel)
	e.next = e.makeBuffer(Cell{})
	viewH := max(e.height-HUDRows, 0)
	e.scaled = image.NewRGBA(image.Rect(0, 0, e.width, viewH*2))
	e.firstFrame = true
}

func (e *Engine) makeBuffer(fill Cell) [][]Cell {
	buf := make([][]Cell, e.height)
	for y := 0; y < e.height; y++ {
		buf[y] = make([]Cell, e.width)
		for x := 0; x < e.width; x++ {
			buf[y][x] = fill
		}
	}
	return buf
}

// Render produces the ANSI byte output for the current frame. Only cells
// that changed since the previous call are emitted.
func (e *Engine) Render(fb *Framebuffer, hud HUD, termW, termH int) string {
	if termW != e.width || termH != e.height {
		e.Resize(termW, termH)
	}
	if e.width == 0 || e.height == 0 {
		return ""
	}

	bgCell := Cell{Ch: ' ', BgR: 10, BgG: 10, BgB: 15}
	for y := 0; y < e.height; y++ {
		for x := 0; x < e.width; x++ {
			e.next[y][x] = bgCell
		}
	}

	viewH := e.scaled.Bounds().Dy() / 2
	if viewH > 0 && fb.Width > 0 && fb.Height > 0 {
		draw.NearestNeighbor.Scale(e.scaled, e.scaled.Bounds(), fb, fb.Bounds(), draw.Src, nil)
		for y := 0; y < viewH; y++ {
			for x := 0; x < e.width; x++ {
				e.next[y][x] = PixelCell(e.scaledAt(x, 2*y), e.scaledAt(x, 2*y+1))
			}
		}
	}

	e.drawHUD(hud)
	return e.emitDiff()
}

func (e *Engine) scaledAt(x, y int) Color {
	i := e.scaled.PixOffset(x, y)
	p := e.scaled.Pix[i : i+3]
	return RGB(p[0], p[1], p[2])
}

func (e *Engine) emitDiff() string {
	var sb strings.Builder
	sb.Grow(16384)

	lastRow, lastCol := -1, -1
	for y := 0; y < e.height; y++ {
		for x := 0; x < e.width; x++ {
			nc := e.next[y][x]
			if nc.Ch == 0 {
				continue // right half of a wide rune
			}
			if e.firstFrame || nc != e.current[y][x] {
				// Only emit cursor position if not consecutive
				if y != lastRow || x != lastCol {
					sb.WriteString(MoveTo(y+1, x+1))
				}
				WriteCellSGR(&sb, nc)
				lastRow = y
				lastCol = x + max(runewidth.RuneWidth(nc.Ch), 1)
			}
		}
	}

	if sb.Len() > 0 {
		sb.WriteString(Reset)
	}

	e.current, e.next = e.next, e.current
	e.firstFrame = false

	return sb.String()
}

// --- HUD ---

func (e *Engine) drawHUD(hud HUD) {
	hudY := e.height - HUDRows
	if hudY < 0 {
		hudY = 0
	}
	bgR, bgG, bgB := uint8(15), uint8(18), uint8(30)

	for y := hudY; y < e.height; y++ {
		for x := 0; x < e.width; x++ {
			e.next[y][x] = Cell{Ch: ' ', BgR: bgR, BgG: bgG, BgB: bgB}
		}
	}

	tex := "off"
	if hud.Textures {
		tex = "on"
	}
	col := e.writeText(hudY, 1, hud.Name, 255, 220, 100, bgR, bgG, bgB, true)
	col = e.writeText(hudY, col, "  │  ", 60, 65, 85, bgR, bgG, bgB, false)
	col = e.writeText(hudY, col, hud.MapName, 180, 180, 195, bgR, bgG, bgB, false)
	col = e.writeText(hudY, col, "  │  ", 60, 65, 85, bgR, bgG, bgB, false)
	col = e.writeText(hudY, col, fmt.Sprintf("%d Online", hud.Players), 180, 180, 195, bgR, bgG, bgB, false)
	col = e.writeText(hudY, col, "  │  ", 60, 65, 85, bgR, bgG, bgB, false)
	e.writeText(hudY, col, fmt.Sprintf("x %.2f  y %.2f  θ %.3f  tex %s", hud.Pose.X, hud.Pose.Y, hud.Pose.Heading, tex),
		100, 220, 220, bgR, bgG, bgB, false)

	if hudY+1 < e.height {
		e.writeText(hudY+1, 1, "←→/AD Turn  ↑↓/WS Move  T Textures  Q Quit", 130, 130, 145, bgR, bgG, bgB, false)
	}
}

// writeText writes colored text starting at col. Wide runes take two
// columns. Returns the next column position.
func (e *Engine) writeText(row, col int, text string, fgR, fgG, fgB, bgR, bgG, bgB uint8, bold bool) int {
	if row < 0 || row >= e.height {
		return col
	}
	for _, r := range text {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if col+w > e.width {
			break
		}
		e.next[row][col] = Cell{Ch: r, FgR: fgR, FgG: fgG, FgB: fgB, BgR: bgR, BgG: bgG, BgB: bgB, Bold: bold}
		for i := 1; i < w; i++ {
			e.next[row][col+i] = Cell{BgR: bgR, BgG: bgG, BgB: bgB}
		}
		col += w
	}
	return col
}
