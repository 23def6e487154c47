package game

import (
	"testing"

	"raycast-place/internal/persistence"
)

func TestAddPlayerSpawnsAndSuffixesDuplicates(t *testing.T) {
	gl := NewGameLoop(testWorld(t), persistence.NewMemoryStore())

	id, snap, _ := gl.AddPlayer("alice")
	if id != "alice" {
		t.Errorf("id = %q", id)
	}
	_, spawn := gl.World().SpawnPoint()
	if snap.Pose != spawn || !snap.Textures {
		t.Errorf("first snapshot %+v, want spawn pose with textures on", snap)
	}

	id2, _, _ := gl.AddPlayer("alice")
	if id2 == "alice" {
		t.Error("second session with the same name reused the id")
	}
	if gl.PlayerCount() != 2 {
		t.Errorf("PlayerCount = %d", gl.PlayerCount())
	}
}

func TestTickAppliesHeldInput(t *testing.T) {
	gl := NewGameLoop(testWorld(t), nil)
	id, snap, ch := gl.AddPlayer("bob")

	gl.InputChan() <- InputEvent{PlayerID: id, Action: ActionTurnRight}
	gl.InputChan() <- InputEvent{PlayerID: "ghost", Action: ActionForward}
	gl.tick()

	state := <-ch
	if state.Tick != 1 {
		t.Errorf("tick = %d", state.Tick)
	}
	me, ok := state.Find(id)
	if !ok {
		t.Fatal("own snapshot missing")
	}
	want := snap.Pose.Rotate(TurnStep)
	if me.Pose != want {
		t.Errorf("pose after one tick %+v, want %+v", me.Pose, want)
	}

	// The latch keeps turning for the rest of the hold window, then stops.
	for i := 0; i < KeyHoldTicks+2; i++ {
		gl.tick()
		select {
		case state = <-ch:
		default:
		}
	}
	me, _ = state.Find(id)
	want = snap.Pose
	for i := 0; i < KeyHoldTicks; i++ {
		want = want.Rotate(TurnStep)
	}
	if me.Pose != want {
		t.Errorf("pose after hold window %+v, want %+v", me.Pose, want)
	}
}

func TestToggleTexturesAction(t *testing.T) {
	gl := NewGameLoop(testWorld(t), nil)
	id, _, ch := gl.AddPlayer("carol")
	gl.InputChan() <- InputEvent{PlayerID: id, Action: ActionToggleTextures}
	gl.tick()
	me, _ := (<-ch).Find(id)
	if me.Textures {
		t.Error("textures still on after toggle")
	}
}

func TestRemovePlayerPersistsPose(t *testing.T) {
	store := persistence.NewMemoryStore()
	gl := NewGameLoop(testWorld(t), store)

	id, _, ch := gl.AddPlayer("dave")
	gl.InputChan() <- InputEvent{PlayerID: id, Action: ActionForward}
	gl.tick()
	moved, _ := (<-ch).Find(id)

	gl.RemovePlayer(id)
	if _, open := <-ch; open {
		t.Error("render channel not closed")
	}
	rec, err := store.LoadPose("dave")
	if err != nil {
		t.Fatal(err)
	}
	if rec.X != moved.Pose.X || rec.Y != moved.Pose.Y || rec.Map != "Sample" {
		t.Errorf("saved %+v, want pose %+v", rec, moved.Pose)
	}

	_, back, _ := gl.AddPlayer("dave")
	if back.Pose != moved.Pose {
		t.Errorf("restored %+v, want %+v", back.Pose, moved.Pose)
	}
}

func TestAddPlayerIgnoresInvalidSavedPose(t *testing.T) {
	store := persistence.NewMemoryStore()
	store.SavePose("erin", persistence.Record{Map: "Sample", X: 0.5, Y: 0.5}) // inside the border wall
	store.SavePose("finn", persistence.Record{Map: "Gone", X: 2.5, Y: 2.5})

	gl := NewGameLoop(testWorld(t), store)
	_, spawn := gl.World().SpawnPoint()
	for _, name := range []string{"erin", "finn"} {
		_, snap, _ := gl.AddPlayer(name)
		if snap.Pose != spawn {
			t.Errorf("%s restored to %+v, want spawn", name, snap.Pose)
		}
	}
}

func TestStopIsIdempotent(t *testing.T) {
	gl := NewGameLoop(testWorld(t), nil)
	done := make(chan struct{})
	go func() {
		gl.Run()
		close(done)
	}()
	gl.Stop()
	gl.Stop()
	<-done
}
