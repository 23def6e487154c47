package render

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
)

// texelAt is the reference pattern painted into test atlases.
func texelAt(x, y int) color.NRGBA {
	return color.NRGBA{R: uint8(x * 7), G: uint8(y * 13), B: uint8(x ^ y), A: 200}
}

// encodePNG encodes img or fails the test.
func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// atlasPNG builds an RGBA strip of count textures, each size x size.
func atlasPNG(t *testing.T, size, count int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, size*count, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size*count; x++ {
			img.SetNRGBA(x, y, texelAt(x, y))
		}
	}
	return encodePNG(t, img)
}

func TestLoadAtlasWellFormed(t *testing.T) {
	const size, count = 8, 5
	a, err := LoadAtlas(atlasPNG(t, size, count))
	if err != nil {
		t.Fatal(err)
	}
	if a.TileCount() != count || a.TileSize() != size {
		t.Fatalf("atlas %d x %dpx, want %d x %dpx", a.TileCount(), a.TileSize(), count, size)
	}

	for k := 0; k < count; k++ {
		got, err := a.Sample(k, 0, 0)
		if err != nil {
			t.Fatal(err)
		}
		src := texelAt(k*size, 0)
		if want := RGB(src.R, src.G, src.B); got != want {
			t.Errorf("Sample(%d,0,0) = %06x, want %06x", k, got, want)
		}
	}
}

func TestAtlasSampleNearest(t *testing.T) {
	const size, count = 4, 2
	a, err := LoadAtlas(atlasPNG(t, size, count))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		tex    int
		u, v   float64
		lx, ly int
	}{
		{0, 0.0, 0.0, 0, 0},
		{0, 0.49, 0.26, 1, 1},
		{1, 0.5, 0.75, 2, 3},
		{1, 0.999, 0.999, 3, 3},
		{1, 1.0, 1.0, 3, 3}, // clamped
	}
	for _, tt := range tests {
		got, err := a.Sample(tt.tex, tt.u, tt.v)
		if err != nil {
			t.Fatal(err)
		}
		src := texelAt(tt.tex*size+tt.lx, tt.ly)
		if want := RGB(src.R, src.G, src.B); got != want {
			t.Errorf("Sample(%d,%v,%v) = %06x, want texel (%d,%d) %06x", tt.tex, tt.u, tt.v, got, tt.lx, tt.ly, want)
		}
	}

	if _, err := a.Sample(count, 0, 0); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Sample past last texture: got %v, want ErrIndexOutOfRange", err)
	}
	if _, err := a.Sample(-1, 0, 0); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Sample(-1): got %v, want ErrIndexOutOfRange", err)
	}
}

func TestLoadAtlasRejects(t *testing.T) {
	opaque := image.NewRGBA(image.Rect(0, 0, 8, 4))
	for i := range opaque.Pix {
		opaque.Pix[i] = 0xff
	}
	gray := image.NewGray(image.Rect(0, 0, 8, 4))
	ragged := image.NewNRGBA(image.Rect(0, 0, 10, 4))
	for i := range ragged.Pix {
		ragged.Pix[i] = 0x80
	}

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"garbage", []byte("not an image"), ErrDecode},
		{"empty", nil, ErrDecode},
		{"rgb without alpha", encodePNG(t, opaque), ErrUnsupportedFormat},
		{"grayscale", encodePNG(t, gray), ErrUnsupportedFormat},
		{"width not a multiple of height", encodePNG(t, ragged), ErrMalformedAtlas},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := LoadAtlas(tt.data)
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
			if a != nil {
				t.Error("failed load must not return an atlas")
			}
		})
	}
}

type stubDecoder struct {
	img DecodedImage
	err error
}

func (d stubDecoder) Decode([]byte) (DecodedImage, error) {
	return d.img, d.err
}

func TestLoadAtlasWithDecoder(t *testing.T) {
	pix := []byte{
		1, 2, 3, 255, 4, 5, 6, 255,
	}
	a, err := LoadAtlasWith(stubDecoder{img: DecodedImage{Width: 2, Height: 1, Channels: 4, Pix: pix}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if a.TileCount() != 2 || a.TileSize() != 1 {
		t.Fatalf("atlas %d x %d", a.TileCount(), a.TileSize())
	}
	if c, _ := a.Texel(1, 0, 0); c != RGB(4, 5, 6) {
		t.Errorf("texel 1 = %06x", c)
	}

	_, err = LoadAtlasWith(stubDecoder{img: DecodedImage{Width: 2, Height: 1, Channels: 3, Pix: pix[:6]}}, nil)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("3 channels: got %v", err)
	}
	_, err = LoadAtlasWith(stubDecoder{err: errors.New("boom")}, nil)
	if !errors.Is(err, ErrDecode) {
		t.Errorf("decoder failure: got %v", err)
	}
}
