package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/png"
	"math"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Texture load failures. All of them leave no atlas behind; callers may
// continue with flat palette colors.
var (
	ErrDecode            = errors.New("texture decode failed")
	ErrUnsupportedFormat = errors.New("texture must be a 32 bit RGBA image")
	ErrMalformedAtlas    = errors.New("texture file must contain N square textures packed horizontally")
)

// DecodedImage is the raw output of an image decoder: Channels bytes per
// pixel, rows top to bottom.
type DecodedImage struct {
	Width, Height int
	Channels      int
	Pix           []byte
}

// Decoder turns encoded image bytes into raw pixels.
type Decoder interface {
	Decode(data []byte) (DecodedImage, error)
}

// ImageDecoder decodes any format registered with the image package
// (PNG, BMP and WebP are linked in).
type ImageDecoder struct{}

// Decode implements Decoder.
func (ImageDecoder) Decode(data []byte) (DecodedImage, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return DecodedImage{}, err
	}

	b := img.Bounds()
	out := DecodedImage{
		Width:    b.Dx(),
		Height:   b.Dy(),
		Channels: channelsOf(img),
	}
	out.Pix = make([]byte, 0, out.Width*out.Height*out.Channels)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			switch out.Channels {
			case 4:
				out.Pix = append(out.Pix, c.R, c.G, c.B, c.A)
			case 3:
				out.Pix = append(out.Pix, c.R, c.G, c.B)
			default:
				g := color.GrayModel.Convert(c).(color.Gray)
				out.Pix = append(out.Pix, g.Y)
			}
		}
	}
	return out, nil
}

// channelsOf reports the channel count the source file carried. The
// standard decoders return non-premultiplied types only when the file has
// an alpha channel.
func channelsOf(img image.Image) int {
	switch im := img.(type) {
	case *image.NRGBA, *image.NRGBA64, *image.NYCbCrA:
		return 4
	case *image.Gray, *image.Gray16, *image.Alpha, *image.Alpha16:
		return 1
	case *image.Paletted:
		for _, c := range im.Palette {
			if _, _, _, a := c.RGBA(); a != 0xffff {
				return 4
			}
		}
		return 3
	default:
		return 3
	}
}

// Atlas is a horizontal strip of square textures.
type Atlas struct {
	size  int
	count int
	pix   []Color // pix[x + tex*size + y*size*count]
}

// LoadAtlas decodes an atlas with the default image decoder.
func LoadAtlas(data []byte) (*Atlas, error) {
	return LoadAtlasWith(ImageDecoder{}, data)
}

// LoadAtlasFile reads and decodes an atlas image from disk.
func LoadAtlasFile(path string) (*Atlas, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read atlas %s: %w", path, err)
	}
	a, err := LoadAtlas(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return a, nil
}

// LoadAtlasWith decodes an atlas through dec. The image must be RGBA with
// width equal to an exact multiple of its height.
func LoadAtlasWith(dec Decoder, data []byte) (*Atlas, error) {
	img, err := dec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if img.Channels != 4 {
		return nil, fmt.Errorf("%w: got %d channels", ErrUnsupportedFormat, img.Channels)
	}
	if img.Height <= 0 || img.Width <= 0 || img.Width%img.Height != 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrMalformedAtlas, img.Width, img.Height)
	}
	if len(img.Pix) != img.Width*img.Height*4 {
		return nil, fmt.Errorf("%w: %d bytes for %dx%d", ErrDecode, len(img.Pix), img.Width, img.Height)
	}

	a := &Atlas{
		size:  img.Height,
		count: img.Width / img.Height,
		pix:   make([]Color, img.Width*img.Height),
	}
	for i := range a.pix {
		p := img.Pix[i*4 : i*4+4]
		a.pix[i] = RGB(p[0], p[1], p[2])
	}
	return a, nil
}

// TileSize returns the edge length of each texture in pixels.
func (a *Atlas) TileSize() int {
	return a.size
}

// TileCount returns the number of textures in the strip.
func (a *Atlas) TileCount() int {
	return a.count
}

// Texel returns the pixel at local (x,y) of texture tex. Coordinates are clamped.
func (a *Atlas) Texel(tex, x, y int) (Color, error) {
	if tex < 0 || tex >= a.count {
		return 0, fmt.Errorf("texture %d of %d: %w", tex, a.count, ErrIndexOutOfRange)
	}
	x = clampInt(x, 0, a.size-1)
	y = clampInt(y, 0, a.size-1)
	return a.pix[x+tex*a.size+y*a.size*a.count], nil
}

// Sample returns the nearest texel for u,v in [0,1).
func (a *Atlas) Sample(tex int, u, v float64) (Color, error) {
	x := int(math.Floor(u * float64(a.size)))
	y := int(math.Floor(v * float64(a.size)))
	return a.Texel(tex, x, y)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
