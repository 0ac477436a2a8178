package snapshot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/openmohaa/stats-api/internal/loot"
	"github.com/openmohaa/stats-api/internal/model"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")

	want := State{
		Dogs: []DogRecord{{
			Token:       "abc123",
			MapID:       "m1",
			DogID:       7,
			Name:        "alice",
			Position:    model.Point{X: 3, Y: 4},
			Speed:       model.Vec{X: 1, Y: 0},
			Direction:   model.DirEast,
			Bag:         []uint64{1, 2},
			Score:       42,
			GameTimeMs:  1000,
			StandingMs:  0,
			Retired:     false,
			BagCapacity: 3,
		}},
		Loots: []LootRecord{{
			MapID:   "m1",
			Slots:   []*loot.Item{{Type: 0, Position: model.Point{X: 1, Y: 1}}},
			FreeIDs: nil,
			Busy:    nil,
		}},
	}

	if err := Save(path, want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, ok, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !ok {
		t.Fatalf("expected ok=true for a freshly saved file")
	}
	if len(got.Dogs) != 1 || got.Dogs[0].Name != "alice" || got.Dogs[0].Score != 42 {
		t.Fatalf("unexpected dog record: %+v", got.Dogs)
	}
	if len(got.Loots) != 1 || len(got.Loots[0].Slots) != 1 {
		t.Fatalf("unexpected loot record: %+v", got.Loots)
	}
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	state, ok, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("expected no error for a missing file, got %v", err)
	}
	if ok {
		t.Fatalf("expected ok=false for a missing file")
	}
	if len(state.Dogs) != 0 {
		t.Fatalf("expected empty state")
	}
}

func TestLoadCorruptFileIsNotAnError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	_, ok, err := Load(path)
	if err != nil {
		t.Fatalf("expected corrupt content to be reported via ok=false, not error: %v", err)
	}
	if ok {
		t.Fatalf("expected ok=false for corrupt content")
	}
}

func TestEnsurePlaceholderCreatesEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "placeholder.json")
	if err := EnsurePlaceholder(path); err != nil {
		t.Fatalf("ensure placeholder: %v", err)
	}
	_, ok, err := Load(path)
	if err != nil {
		t.Fatalf("load placeholder: %v", err)
	}
	if ok {
		t.Fatalf("expected an empty placeholder file to load as ok=false")
	}
}
