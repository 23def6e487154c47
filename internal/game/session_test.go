package game

import (
	"errors"
	"math"
	"testing"

	"raycast-place/internal/maps"
	"raycast-place/internal/render"
)

func TestNewSessionValidatesPalette(t *testing.T) {
	m := maps.DefaultMap() // highest index is 3
	if _, err := NewSession(m, render.RandomPalette(3, 1), nil, render.DefaultConfig()); !errors.Is(err, render.ErrIndexOutOfRange) {
		t.Errorf("short palette: got %v, want ErrIndexOutOfRange", err)
	}
	if _, err := NewSession(m, render.RandomPalette(4, 1), nil, render.DefaultConfig()); err != nil {
		t.Errorf("exact palette: %v", err)
	}
	if _, err := NewSession(nil, render.RandomPalette(4, 1), nil, render.DefaultConfig()); err == nil {
		t.Error("nil map accepted")
	}
}

func TestNewSessionValidatesAtlas(t *testing.T) {
	data := []byte{
		1, 2, 3, 255, 4, 5, 6, 255,
	}
	atlas, err := render.LoadAtlasWith(rawDecoder{w: 2, h: 1, pix: data}, nil)
	if err != nil {
		t.Fatal(err)
	}
	entries := []render.Entry{
		render.Solid(render.RGB(1, 1, 1)),
		render.Texture(1, 0),
		render.Texture(5, 0),
		render.Solid(0),
	}
	_, err = NewSession(maps.DefaultMap(), render.NewPalette(entries), atlas, render.DefaultConfig())
	if !errors.Is(err, render.ErrIndexOutOfRange) {
		t.Errorf("texture past atlas: got %v", err)
	}

	// Without an atlas the same palette is fine; walls use fallback colors.
	if _, err := NewSession(maps.DefaultMap(), render.NewPalette(entries), nil, render.DefaultConfig()); err != nil {
		t.Errorf("no atlas: %v", err)
	}
}

type rawDecoder struct {
	w, h int
	pix  []byte
}

func (d rawDecoder) Decode([]byte) (render.DecodedImage, error) {
	return render.DecodedImage{Width: d.w, Height: d.h, Channels: 4, Pix: d.pix}, nil
}

func TestSessionRender(t *testing.T) {
	m := maps.DefaultMap()
	s, err := NewSession(m, render.RandomPalette(10, 3), nil, render.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if s.Pose() != render.SpawnPose(m) {
		t.Errorf("initial pose %+v, want spawn", s.Pose())
	}
	if s.FOV() != math.Pi/3 {
		t.Errorf("FOV = %v", s.FOV())
	}

	s.Resize(200, 100)
	fb, err := s.Render()
	if err != nil {
		t.Fatal(err)
	}
	if fb.Width != 200 || fb.Height != 100 || len(fb.Pix) != 200*100 {
		t.Fatalf("frame %dx%d (%d pixels)", fb.Width, fb.Height, len(fb.Pix))
	}
	before := append([]render.Color(nil), fb.Pix...)

	s.SetPose(s.Pose().Rotate(math.Pi))
	fb, err = s.Render()
	if err != nil {
		t.Fatal(err)
	}
	same := true
	for i := range before {
		if before[i] != fb.Pix[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("turning around did not change the frame")
	}
}

func TestSessionTextures(t *testing.T) {
	s, err := NewSession(maps.DefaultMap(), render.RandomPalette(4, 1), nil, render.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if s.Textures() {
		t.Error("textures reported on without an atlas")
	}
	s.ToggleTextures()
	s.Apply(PlayerSnapshot{Pose: Pose{X: 2.5, Y: 2.5}, Textures: true})
	if s.Pose().X != 2.5 {
		t.Errorf("Apply did not set pose: %+v", s.Pose())
	}
}
