package persistence

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// JSONStore persists poses to a local JSON file, rewritten on every save.
type JSONStore struct {
	filePath string
	mutex    sync.RWMutex
	data     *JSONData
}

// JSONData is the on-disk layout of the JSON store.
type JSONData struct {
	Poses map[string]Record `json:"poses"`
}

// NewJSONStore opens filePath, creating it when it does not exist.
func NewJSONStore(filePath string) (*JSONStore, error) {
	store := &JSONStore{
		filePath: filePath,
		data:     &JSONData{Poses: make(map[string]Record)},
	}

	if _, err := os.Stat(filePath); err == nil {
		if err := store.loadFromFile(); err != nil {
			return nil, fmt.Errorf("load JSON store: %w", err)
		}
	} else {
		if err := store.saveToFile(); err != nil {
			return nil, fmt.Errorf("create JSON store file: %w", err)
		}
	}
	return store, nil
}

func (js *JSONStore) loadFromFile() error {
	js.mutex.Lock()
	defer js.mutex.Unlock()

	file, err := os.ReadFile(js.filePath)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(file, js.data); err != nil {
		return err
	}
	if js.data.Poses == nil {
		js.data.Poses = make(map[string]Record)
	}
	return nil
}

func (js *JSONStore) saveToFile() error {
	js.mutex.RLock()
	data, err := json.MarshalIndent(js.data, "", "  ")
	js.mutex.RUnlock()
	if err != nil {
		return err
	}
	return os.WriteFile(js.filePath, data, 0644)
}

// SavePose stores rec under username and flushes the file.
func (js *JSONStore) SavePose(username string, rec Record) error {
	js.mutex.Lock()
	js.data.Poses[username] = rec
	js.mutex.Unlock()

	if err := js.saveToFile(); err != nil {
		return fmt.Errorf("save pose for %s: %w", username, err)
	}
	return nil
}

// LoadPose returns the pose saved for username.
func (js *JSONStore) LoadPose(username string) (Record, error) {
	js.mutex.RLock()
	defer js.mutex.RUnlock()

	rec, ok := js.data.Poses[username]
	if !ok {
		return Record{}, fmt.Errorf("%s: %w", username, ErrNotFound)
	}
	return rec, nil
}

// Close is a no-op; every save is already on disk.
func (js *JSONStore) Close() error {
	return nil
}
