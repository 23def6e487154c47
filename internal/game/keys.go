package game

// Key is a control the player can hold down.
type Key int

const (
	KeyTurnLeft Key = iota
	KeyTurnRight
	KeyForward
	KeyBack
	numKeys
)

func (k Key) String() string {
	switch k {
	case KeyTurnLeft:
		return "turn-left"
	case KeyTurnRight:
		return "turn-right"
	case KeyForward:
		return "forward"
	case KeyBack:
		return "back"
	default:
		return "unknown"
	}
}

// KeyState reports which controls are down. It is polled once per tick,
// before the frame for that tick is rendered.
type KeyState interface {
	IsKeyDown(k Key) bool
}

// KeyLatch turns discrete key events into held-key state. A press keeps
// the key down for the hold window; Tick counts the window down.
type KeyLatch struct {
	hold      int
	remaining [numKeys]int
}

// NewKeyLatch creates a latch holding each press for hold ticks.
func NewKeyLatch(hold int) *KeyLatch {
	if hold < 1 {
		hold = 1
	}
	return &KeyLatch{hold: hold}
}

// Press marks k as down for the next hold ticks.
func (l *KeyLatch) Press(k Key) {
	if k < 0 || k >= numKeys {
		return
	}
	l.remaining[k] = l.hold
}

// Release clears k immediately.
func (l *KeyLatch) Release(k Key) {
	if k < 0 || k >= numKeys {
		return
	}
	l.remaining[k] = 0
}

// IsKeyDown implements KeyState.
func (l *KeyLatch) IsKeyDown(k Key) bool {
	if k < 0 || k >= numKeys {
		return false
	}
	return l.remaining[k] > 0
}

// Tick advances the latch by one game tick.
func (l *KeyLatch) Tick() {
	for i := range l.remaining {
		if l.remaining[i] > 0 {
			l.remaining[i]--
		}
	}
}

// Steer applies one tick of held controls to pose p on world w.
func Steer(ks KeyState, p Pose, w *World, mapName string) Pose {
	if ks.IsKeyDown(KeyTurnLeft) {
		p = p.Rotate(-TurnStep)
	}
	if ks.IsKeyDown(KeyTurnRight) {
		p = p.Rotate(TurnStep)
	}
	m := w.GetMap(mapName)
	if m == nil {
		return p
	}
	if ks.IsKeyDown(KeyForward) {
		p = p.Advance(m, MoveStep)
	}
	if ks.IsKeyDown(KeyBack) {
		p = p.Advance(m, -MoveStep)
	}
	return p
}
