package game

import (
	"fmt"

	"raycast-place/internal/render"
)

// Display is a surface that shows one player's frames.
type Display interface {
	// FrameSize is the framebuffer size the display wants next.
	FrameSize() (width, height int)
	// Show presents a finished frame along with the state it was drawn from.
	Show(fb *render.Framebuffer, state GameState, me PlayerSnapshot) error
}

// Watch renders one frame per snapshot for playerID and shows it on d.
// It returns nil when quit closes or the loop closes renderCh, and the
// first render or display error otherwise.
func Watch(quit <-chan struct{}, renderCh RenderChan, playerID string, assets *Assets, w *World, d Display) error {
	var sess *Session
	for {
		select {
		case <-quit:
			return nil
		case state, ok := <-renderCh:
			if !ok {
				return nil
			}
			me, ok := state.Find(playerID)
			if !ok {
				continue
			}

			if sess == nil || sess.Map().Name != me.MapName {
				m := w.GetMap(me.MapName)
				if m == nil {
					return fmt.Errorf("player %s is on unknown map %q", playerID, me.MapName)
				}
				var err error
				if sess, err = assets.NewSession(m); err != nil {
					return err
				}
			}

			sess.Apply(me)
			sess.Resize(d.FrameSize())
			fb, err := sess.Render()
			if err != nil {
				return err
			}
			if err := d.Show(fb, state, me); err != nil {
				return err
			}
		}
	}
}
