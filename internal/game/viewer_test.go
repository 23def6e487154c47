package game

import (
	"errors"
	"testing"

	"raycast-place/internal/maps"
	"raycast-place/internal/render"
)

type recordingDisplay struct {
	w, h   int
	frames []PlayerSnapshot
	err    error
}

func (d *recordingDisplay) FrameSize() (int, int) { return d.w, d.h }

func (d *recordingDisplay) Show(fb *render.Framebuffer, _ GameState, me PlayerSnapshot) error {
	if fb.Width != d.w || fb.Height != d.h {
		return errors.New("frame size not applied")
	}
	d.frames = append(d.frames, me)
	return d.err
}

func testAssets(t *testing.T, w *World) *Assets {
	t.Helper()
	a, err := NewAssets(w, 1, nil, render.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func TestWatchRendersUntilChannelCloses(t *testing.T) {
	w := testWorld(t)
	gl := NewGameLoop(w, nil)
	id, _, ch := gl.AddPlayer("alice")
	gl.tick()
	gl.tick()

	gl.RemovePlayer(id) // closes ch after the two buffered states
	d := &recordingDisplay{w: 64, h: 32}
	if err := Watch(make(chan struct{}), ch, id, testAssets(t, w), w, d); err != nil {
		t.Fatal(err)
	}
	if len(d.frames) != 2 {
		t.Errorf("showed %d frames, want 2", len(d.frames))
	}
}

func TestWatchStopsOnQuitAndErrors(t *testing.T) {
	w := testWorld(t)
	gl := NewGameLoop(w, nil)
	id, _, ch := gl.AddPlayer("bob")

	quit := make(chan struct{})
	close(quit)
	if err := Watch(quit, ch, id, testAssets(t, w), w, &recordingDisplay{w: 8, h: 8}); err != nil {
		t.Errorf("quit: %v", err)
	}

	gl.tick()
	boom := errors.New("boom")
	err := Watch(make(chan struct{}), ch, id, testAssets(t, w), w, &recordingDisplay{w: 8, h: 8, err: boom})
	if !errors.Is(err, boom) {
		t.Errorf("display error: got %v", err)
	}
}

func TestNewAssetsUsesLegend(t *testing.T) {
	w := testWorld(t)
	m := w.GetMap(w.DefaultMap)
	m.Legend = map[int]maps.Legend{1: {Color: "#102030", Texture: -1}}
	a := testAssets(t, w)
	c, err := a.Palettes[m.Name].ColorFor(1)
	if err != nil {
		t.Fatal(err)
	}
	if c != render.RGB(0x10, 0x20, 0x30) {
		t.Errorf("legend color = %06x", c)
	}
	if _, err := a.NewSession(m); err != nil {
		t.Error(err)
	}
}
