// Package snapshot implements the crash-safe persistence of all live
// session state to a single file, written atomically via a temp file
// plus rename. The on-disk format is private to this
// package: corrupt or empty files are treated as "no state" rather than
// an error.
package snapshot

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/openmohaa/stats-api/internal/loot"
	"github.com/openmohaa/stats-api/internal/model"
)

// DogRecord captures one dog's full live state plus the token and map it
// belongs to, so restore can re-join it exactly.
type DogRecord struct {
	Token       string
	MapID       string
	DogID       uint64
	Name        string
	Position    model.Point
	Speed       model.Vec
	Direction   model.Direction
	Bag         []uint64
	Score       uint64
	GameTimeMs  uint64
	StandingMs  uint64
	Retired     bool
	BagCapacity uint
}

// LootRecord captures one map's loot store wholesale: the slots (a nil
// entry marks a free id), the freed-id FIFO and the set of busy ids.
type LootRecord struct {
	MapID   string
	Slots   []*loot.Item
	FreeIDs []uint64
	Busy    []uint64
}

// State is the full persisted snapshot.
type State struct {
	Dogs  []DogRecord
	Loots []LootRecord
}

// Save writes state to path atomically: a temp file in the same
// directory, then a rename over the destination. Returns an error only
// for I/O failures; the caller (Application) decides whether a missing
// state path means "skip silently".
func Save(path string, state State) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".snapshot-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	enc := json.NewEncoder(tmp)
	if err := enc.Encode(state); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, path)
}

// Load reads and decodes path. A missing, empty, or corrupt file is
// reported via ok=false rather than an error — both mean "no state".
func Load(path string) (state State, ok bool, err error) {
	data, readErr := os.ReadFile(path)
	if readErr != nil {
		if os.IsNotExist(readErr) {
			return State{}, false, nil
		}
		return State{}, false, readErr
	}
	if len(data) == 0 {
		return State{}, false, nil
	}
	if jsonErr := json.Unmarshal(data, &state); jsonErr != nil {
		return State{}, false, nil
	}
	return state, true, nil
}

// EnsurePlaceholder creates an empty file at path if none exists, per
// the recoverFromFile contract: "else create an empty file as a
// placeholder".
func EnsurePlaceholder(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	return f.Close()
}
