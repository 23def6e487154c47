package game

import (
	"raycast-place/internal/maps"
	"raycast-place/internal/render"
)

// World wraps multiple Maps and provides game-level helpers.
type World struct {
	Maps       map[string]*maps.Map
	DefaultMap string
}

// NewWorld creates a world from the given map registry.
func NewWorld(allMaps map[string]*maps.Map, defaultMap string) *World {
	return &World{Maps: allMaps, DefaultMap: defaultMap}
}

// SpawnPoint returns the default map's name and spawn pose.
func (w *World) SpawnPoint() (string, Pose) {
	m := w.Maps[w.DefaultMap]
	return w.DefaultMap, render.SpawnPose(m)
}

// CanStand checks if the position is on an empty cell of the named map.
func (w *World) CanStand(mapName string, x, y float64) bool {
	m, ok := w.Maps[mapName]
	if !ok {
		return false
	}
	return m.CanStand(x, y)
}

// GetMap returns the map with the given name, or nil.
func (w *World) GetMap(name string) *maps.Map {
	return w.Maps[name]
}
