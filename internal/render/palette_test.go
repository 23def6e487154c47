package render

import (
	"errors"
	"testing"

	"raycast-place/internal/maps"
)

func TestRandomPaletteStructure(t *testing.T) {
	p := RandomPalette(10, 42)
	if p.Len() != 10 {
		t.Fatalf("Len = %d, want 10", p.Len())
	}
	for i := 0; i < p.Len(); i++ {
		e, err := p.Entry(i)
		if err != nil {
			t.Fatalf("Entry(%d): %v", i, err)
		}
		if e.Kind != SolidColor {
			t.Errorf("entry %d kind = %v, want solid", i, e.Kind)
		}
		if e.Color>>24 != 0 {
			t.Errorf("entry %d color %08x uses the top byte", i, e.Color)
		}
	}
}

func TestRandomPaletteDeterministic(t *testing.T) {
	a, b := RandomPalette(10, 7), RandomPalette(10, 7)
	for i := 0; i < 10; i++ {
		ca, _ := a.ColorFor(i)
		cb, _ := b.ColorFor(i)
		if ca != cb {
			t.Fatalf("entry %d differs for the same seed: %06x vs %06x", i, ca, cb)
		}
	}
}

func TestPaletteIndexOutOfRange(t *testing.T) {
	p := NewPalette([]Entry{Solid(RGB(1, 2, 3))})
	for _, i := range []int{-1, 1, 10} {
		if _, err := p.ColorFor(i); !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("ColorFor(%d): got %v, want ErrIndexOutOfRange", i, err)
		}
	}
	if c, err := p.ColorFor(0); err != nil || c != RGB(1, 2, 3) {
		t.Errorf("ColorFor(0) = %06x, %v", c, err)
	}
}

func TestPaletteFromLegend(t *testing.T) {
	legend := map[int]maps.Legend{
		0: {Color: "#ff8000", Texture: -1},
		2: {Texture: 3},
	}
	p, err := PaletteFromLegend(4, 1, legend)
	if err != nil {
		t.Fatal(err)
	}

	e0, _ := p.Entry(0)
	if e0.Kind != SolidColor || e0.Color != RGB(0xff, 0x80, 0x00) {
		t.Errorf("entry 0 = %+v", e0)
	}
	e2, _ := p.Entry(2)
	if e2.Kind != Textured || e2.Texture != 3 {
		t.Errorf("entry 2 = %+v", e2)
	}
	if p.MaxTexture() != 3 {
		t.Errorf("MaxTexture = %d, want 3", p.MaxTexture())
	}

	if _, err := PaletteFromLegend(2, 1, map[int]maps.Legend{5: {Texture: -1}}); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("legend past palette: got %v", err)
	}
	if _, err := PaletteFromLegend(2, 1, map[int]maps.Legend{0: {Color: "teal", Texture: -1}}); err == nil {
		t.Error("bad hex color should fail")
	}
}

func TestColorPacking(t *testing.T) {
	c := RGB(0x12, 0x34, 0x56)
	if c != 0x123456 {
		t.Fatalf("RGB packed to %08x", uint32(c))
	}
	r, g, b := c.RGB()
	if r != 0x12 || g != 0x34 || b != 0x56 {
		t.Errorf("RGB() = %x %x %x", r, g, b)
	}
}
