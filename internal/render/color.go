package render

import "image/color"

// Color is a packed 24-bit RGB value: bits 23-16 red, 15-8 green, 7-0 blue.
// The top byte is always zero.
type Color uint32

// RGB packs three channels into a Color.
func RGB(r, g, b uint8) Color {
	return Color(r)<<16 | Color(g)<<8 | Color(b)
}

// RGB unpacks the color channels.
func (c Color) RGB() (uint8, uint8, uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c)
}

// RGBA implements color.Color with full opacity.
func (c Color) RGBA() (r, g, b, a uint32) {
	r8, g8, b8 := c.RGB()
	r = uint32(r8) * 0x101
	g = uint32(g8) * 0x101
	b = uint32(b8) * 0x101
	return r, g, b, 0xffff
}

// ColorModel converts arbitrary colors to Color, dropping alpha.
var ColorModel = color.ModelFunc(func(c color.Color) color.Color {
	if rc, ok := c.(Color); ok {
		return rc
	}
	r, g, b, _ := c.RGBA()
	return RGB(uint8(r>>8), uint8(g>>8), uint8(b>>8))
})

// Frame colors taken from the sample renderer.
var (
	Background = RGB(255, 255, 255)
	ConeColor  = RGB(160, 160, 160)
)
