package render

import (
	"image"
	"image/color"
)

// Framebuffer is a row-major pixel buffer with a top-left origin.
type Framebuffer struct {
	Width, Height int
	Pix           []Color
}

// NewFramebuffer allocates a buffer filled with Background.
func NewFramebuffer(width, height int) *Framebuffer {
	fb := &Framebuffer{}
	fb.Resize(width, height)
	return fb
}

// Resize reallocates the pixels when the size changes.
func (fb *Framebuffer) Resize(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	if width == fb.Width && height == fb.Height && len(fb.Pix) == width*height {
		return
	}
	fb.Width = width
	fb.Height = height
	fb.Pix = make([]Color, width*height)
	fb.Fill(Background)
}

// Fill sets every pixel to c.
func (fb *Framebuffer) Fill(c Color) {
	for i := range fb.Pix {
		fb.Pix[i] = c
	}
}

// Set writes one pixel. Out-of-bounds writes are dropped.
func (fb *Framebuffer) Set(x, y int, c Color) {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return
	}
	fb.Pix[x+y*fb.Width] = c
}

// Pixel returns the color at (x,y), or 0 outside the buffer.
func (fb *Framebuffer) Pixel(x, y int) Color {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return 0
	}
	return fb.Pix[x+y*fb.Width]
}

// DrawRectangle fills a w by h rectangle at (x,y). Pixels outside the
// buffer are skipped, so partially visible rectangles draw their visible part.
func (fb *Framebuffer) DrawRectangle(x, y, w, h int, c Color) {
	x0, y0 := max(x, 0), max(y, 0)
	x1, y1 := min(x+w, fb.Width), min(y+h, fb.Height)
	for cy := y0; cy < y1; cy++ {
		row := fb.Pix[cy*fb.Width : (cy+1)*fb.Width]
		for cx := x0; cx < x1; cx++ {
			row[cx] = c
		}
	}
}

// ColorModel implements image.Image.
func (fb *Framebuffer) ColorModel() color.Model {
	return ColorModel
}

// Bounds implements image.Image.
func (fb *Framebuffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, fb.Width, fb.Height)
}

// At implements image.Image.
func (fb *Framebuffer) At(x, y int) color.Color {
	return fb.Pixel(x, y)
}
