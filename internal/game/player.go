package game

import "raycast-place/internal/render"

// Pose is the viewer position and heading used by the renderer.
type Pose = render.Pose

// Action represents a player input action.
type Action int

const (
	ActionNone Action = iota
	ActionTurnLeft
	ActionTurnRight
	ActionForward
	ActionBack
	ActionToggleTextures
	ActionQuit
)

// key returns the held control an action presses, if any.
func (a Action) key() (Key, bool) {
	switch a {
	case ActionTurnLeft:
		return KeyTurnLeft, true
	case ActionTurnRight:
		return KeyTurnRight, true
	case ActionForward:
		return KeyForward, true
	case ActionBack:
		return KeyBack, true
	default:
		return 0, false
	}
}

// InputEvent carries a player action into the game loop.
type InputEvent struct {
	PlayerID string
	Action   Action
}

// Player holds the game state for a connected player.
type Player struct {
	ID       string
	Name     string
	MapName  string
	Pose     Pose
	Textures bool

	keys *KeyLatch
}

// PlayerSnapshot is a read-only copy of player state for rendering.
type PlayerSnapshot struct {
	ID       string
	Name     string
	MapName  string
	Pose     Pose
	Textures bool
}

// Snapshot returns a read-only copy of the player.
func (p *Player) Snapshot() PlayerSnapshot {
	return PlayerSnapshot{
		ID:       p.ID,
		Name:     p.Name,
		MapName:  p.MapName,
		Pose:     p.Pose,
		Textures: p.Textures,
	}
}
