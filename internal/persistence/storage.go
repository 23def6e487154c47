package persistence

import (
	"errors"
	"sync"
	"time"
)

// ErrNotFound is returned when no pose has been saved for a player.
var ErrNotFound = errors.New("pose not found")

// Record is a player's last known pose on a map.
type Record struct {
	Map       string    `json:"map"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Heading   float64   `json:"heading"`
	Textures  bool      `json:"textures"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Storage keeps player poses across reconnects and restarts.
type Storage interface {
	SavePose(username string, rec Record) error
	LoadPose(username string) (Record, error)
	Close() error
}

// MemoryStore keeps poses for the lifetime of the process.
type MemoryStore struct {
	mu    sync.RWMutex
	poses map[string]Record
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{poses: make(map[string]Record)}
}

func (ms *MemoryStore) SavePose(username string, rec Record) error {
	ms.mu.Lock()
	ms.poses[username] = rec
	ms.mu.Unlock()
	return nil
}

func (ms *MemoryStore) LoadPose(username string) (Record, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	rec, ok := ms.poses[username]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (ms *MemoryStore) Close() error {
	return nil
}
