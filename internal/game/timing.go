package game

import "math"

const TickRate = 20 // ticks per second

// SecsToTicks converts a duration in seconds to game ticks.
func SecsToTicks(s float64) int {
	t := int(s * TickRate)
	if t < 1 {
		t = 1
	}
	return t
}

// Movement constants, per tick while a key is held.
const (
	TurnStep = 2 * math.Pi / 360 // one degree
	MoveStep = 0.1               // map units
)

// KeyHoldTicks is how long a single key event counts as held. Terminals
// only report presses, so auto-repeat keeps the latch alive while a key
// is physically down.
var KeyHoldTicks = SecsToTicks(0.15)
