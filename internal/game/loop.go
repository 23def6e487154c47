package game

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"raycast-place/internal/persistence"
)

const InputChanSize = 256

// GameState is a snapshot sent to each session for rendering.
type GameState struct {
	Players []PlayerSnapshot
	Tick    uint64
}

// Find returns the snapshot of the player with the given ID.
func (gs GameState) Find(id string) (PlayerSnapshot, bool) {
	for _, p := range gs.Players {
		if p.ID == id {
			return p, true
		}
	}
	return PlayerSnapshot{}, false
}

// RenderChan is the per-session channel that receives game state snapshots.
type RenderChan chan GameState

// GameLoop owns every player's pose and advances them at TickRate. Sessions
// send InputEvents and receive GameState snapshots.
type GameLoop struct {
	world     *World
	store     persistence.Storage
	inputCh   chan InputEvent
	tickCount uint64

	mu          sync.RWMutex
	players     map[string]*Player
	renderChans map[string]RenderChan

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewGameLoop creates a game loop. Poses are saved to store on disconnect
// and restored on reconnect.
func NewGameLoop(world *World, store persistence.Storage) *GameLoop {
	if store == nil {
		store = persistence.NewMemoryStore()
	}
	return &GameLoop{
		world:       world,
		store:       store,
		inputCh:     make(chan InputEvent, InputChanSize),
		players:     make(map[string]*Player),
		renderChans: make(map[string]RenderChan),
		stopCh:      make(chan struct{}),
	}
}

// World returns the maps the loop runs on.
func (gl *GameLoop) World() *World {
	return gl.world
}

// InputChan returns the shared input channel for sessions to send events.
func (gl *GameLoop) InputChan() chan<- InputEvent {
	return gl.inputCh
}

// PlayerCount returns the number of connected players.
func (gl *GameLoop) PlayerCount() int {
	gl.mu.RLock()
	defer gl.mu.RUnlock()
	return len(gl.players)
}

// AddPlayer registers a player using their username as identity.
// If the username was seen before, the saved pose is restored.
// Returns the effective player ID, its first snapshot and the render channel.
func (gl *GameLoop) AddPlayer(name string) (string, PlayerSnapshot, RenderChan) {
	mapName, pose := gl.world.SpawnPoint()
	textures := true
	if rec, err := gl.store.LoadPose(name); err == nil {
		if gl.world.CanStand(rec.Map, rec.X, rec.Y) {
			mapName = rec.Map
			pose = Pose{X: rec.X, Y: rec.Y, Heading: rec.Heading}
			textures = rec.Textures
		}
	} else if !errors.Is(err, persistence.ErrNotFound) {
		log.Printf("Load pose for %s: %v", name, err)
	}

	gl.mu.Lock()
	defer gl.mu.Unlock()

	// If this username is already online, add a suffix
	id := name
	if _, online := gl.players[id]; online {
		id = fmt.Sprintf("%s_%04d", name, time.Now().UnixNano()%10000)
	}

	player := &Player{
		ID:       id,
		Name:     name,
		MapName:  mapName,
		Pose:     pose,
		Textures: textures,
		keys:     NewKeyLatch(KeyHoldTicks),
	}
	gl.players[id] = player
	ch := make(RenderChan, 2)
	gl.renderChans[id] = ch
	return id, player.Snapshot(), ch
}

// RemovePlayer saves the player's pose and unregisters them.
func (gl *GameLoop) RemovePlayer(id string) {
	gl.mu.Lock()
	p, ok := gl.players[id]
	if ok {
		delete(gl.players, id)
	}
	if ch, ok := gl.renderChans[id]; ok {
		close(ch)
		delete(gl.renderChans, id)
	}
	gl.mu.Unlock()

	if !ok {
		return
	}
	rec := persistence.Record{
		Map:       p.MapName,
		X:         p.Pose.X,
		Y:         p.Pose.Y,
		Heading:   p.Pose.Heading,
		Textures:  p.Textures,
		UpdatedAt: time.Now(),
	}
	if err := gl.store.SavePose(p.Name, rec); err != nil {
		log.Printf("Save pose for %s: %v", p.Name, err)
	}
}

// Run starts the game loop. Blocks until Stop is called.
func (gl *GameLoop) Run() {
	ticker := time.NewTicker(time.Second / TickRate)
	defer ticker.Stop()

	for {
		select {
		case <-gl.stopCh:
			return
		case <-ticker.C:
			gl.tick()
		}
	}
}

// Stop shuts down the game loop. It is safe to call more than once.
func (gl *GameLoop) Stop() {
	gl.stopOnce.Do(func() { close(gl.stopCh) })
}

func (gl *GameLoop) tick() {
	// Drain all pending input events
	for {
		select {
		case ev := <-gl.inputCh:
			gl.processInput(ev)
		default:
			goto drained
		}
	}
drained:

	gl.mu.Lock()
	gl.tickCount++
	for _, p := range gl.players {
		p.Pose = Steer(p.keys, p.Pose, gl.world, p.MapName)
		p.keys.Tick()
	}

	// Build snapshot and broadcast
	state := GameState{
		Players: make([]PlayerSnapshot, 0, len(gl.players)),
		Tick:    gl.tickCount,
	}
	for _, p := range gl.players {
		state.Players = append(state.Players, p.Snapshot())
	}

	// Non-blocking send to each render channel
	for _, ch := range gl.renderChans {
		select {
		case ch <- state:
		default:
			// Drop frame for slow client
		}
	}
	gl.mu.Unlock()
}

func (gl *GameLoop) processInput(ev InputEvent) {
	gl.mu.Lock()
	defer gl.mu.Unlock()

	player, ok := gl.players[ev.PlayerID]
	if !ok {
		return
	}
	if k, ok := ev.Action.key(); ok {
		player.keys.Press(k)
		return
	}
	if ev.Action == ActionToggleTextures {
		player.Textures = !player.Textures
	}
}
