package app

import (
	"context"
	"testing"

	"github.com/openmohaa/stats-api/internal/game"
	"github.com/openmohaa/stats-api/internal/loot"
	"github.com/openmohaa/stats-api/internal/model"
	"github.com/openmohaa/stats-api/internal/statsstore"
)

// fakeStore is a minimal in-memory statsstore.Store double, in the
// teacher's small-hand-rolled-fake style (no mocking framework).
type fakeStore struct {
	rows []statsstore.RetiredPlayer
}

func (f *fakeStore) Save(ctx context.Context, id, name string, score, playTimeMs int) error {
	f.rows = append(f.rows, statsstore.RetiredPlayer{ID: id, Name: name, Score: score, PlayTimeMs: playTimeMs})
	return nil
}

func (f *fakeStore) SaveBatch(ctx context.Context, players []statsstore.RetiredPlayer) error {
	f.rows = append(f.rows, players...)
	return nil
}

func (f *fakeStore) ListTopN(ctx context.Context, offset, limit int) ([]statsstore.Row, error) {
	var out []statsstore.Row
	for i := offset; i < len(f.rows) && len(out) < limit; i++ {
		out = append(out, statsstore.Row{Name: f.rows[i].Name, Score: f.rows[i].Score, PlayTimeMs: f.rows[i].PlayTimeMs})
	}
	return out, nil
}

func (f *fakeStore) Close() {}

func testMap() *model.Map {
	return &model.Map{
		ID:          "m1",
		Name:        "Map One",
		Roads:       []model.Road{{Start: model.Point{X: 0, Y: 0}, End: model.Point{X: 10, Y: 0}}},
		Offices:     []model.Office{{ID: "o1", Position: model.Point{X: 10, Y: 0}, Width: model.OfficeWidth}},
		LootTypes:   []model.LootType{{Name: "gold", Value: 7}},
		DogSpeed:    10,
		BagCapacity: 3,
	}
}

func newTestApp() *Application {
	g := game.New([]*model.Map{testMap()}, 1)
	return New(g, &fakeStore{}, false, "", nil)
}

// TestApplication_PickupThenDropOff runs one dog the length of a road
// over one loot item to an office and checks that it scores.
func TestApplication_PickupThenDropOff(t *testing.T) {
	a := newTestApp()
	ctx := context.Background()

	token, _, err := a.JoinGame(ctx, "m1", "alice")
	if err != nil {
		t.Fatalf("join: %v", err)
	}

	sess, _ := a.game.Session("m1")
	sess.LootStore().Add(loot.Item{Type: 0, Position: model.Point{X: 5, Y: 0}})

	if ok, err := a.Move(ctx, token, DirRight); err != nil || !ok {
		t.Fatalf("move: ok=%v err=%v", ok, err)
	}

	if err := a.Tick(ctx, 1000); err != nil {
		t.Fatalf("tick: %v", err)
	}

	player, ok, err := a.FindPlayerByToken(ctx, token)
	if err != nil || !ok {
		t.Fatalf("find player: ok=%v err=%v", ok, err)
	}
	if player.Dog.Position.X != 10 {
		t.Fatalf("expected dog to reach x=10, got %v", player.Dog.Position.X)
	}
	if len(player.Dog.Bag) != 0 {
		t.Fatalf("expected an empty bag after drop-off, got %v", player.Dog.Bag)
	}
	if player.Dog.Score != 7 {
		t.Fatalf("expected score 7, got %d", player.Dog.Score)
	}
}

// TestApplication_RetirementDrainsToStatsStore checks that a single
// long tick retires a stationary dog and its stats land in the stats
// store with its token invalidated.
func TestApplication_RetirementDrainsToStatsStore(t *testing.T) {
	a := newTestApp()
	store := a.stats.(*fakeStore)
	ctx := context.Background()

	token, _, err := a.JoinGame(ctx, "m1", "bob")
	if err != nil {
		t.Fatalf("join: %v", err)
	}

	if err := a.Tick(ctx, RetirementThresholdMs); err != nil {
		t.Fatalf("tick: %v", err)
	}

	if _, ok, _ := a.FindPlayerByToken(ctx, token); ok {
		t.Fatalf("expected token to be invalidated after retirement")
	}
	if len(store.rows) != 1 || store.rows[0].Name != "bob" {
		t.Fatalf("expected one retired_players row for bob, got %+v", store.rows)
	}
}

func TestApplication_TickRefusedWhileAutoTicking(t *testing.T) {
	a := newTestApp()
	a.autoTicking.Store(true)

	if err := a.Tick(context.Background(), 100); err != ErrAutoTicking {
		t.Fatalf("expected ErrAutoTicking, got %v", err)
	}
}

func TestApplication_ZeroDeltaTickIsNoOp(t *testing.T) {
	a := newTestApp()
	ctx := context.Background()
	token, _, _ := a.JoinGame(ctx, "m1", "carol")

	before, _, _ := a.FindPlayerByToken(ctx, token)
	beforePos := before.Dog.Position

	if err := a.Tick(ctx, 0); err != nil {
		t.Fatalf("tick: %v", err)
	}

	after, _, _ := a.FindPlayerByToken(ctx, token)
	if after.Dog.Position != beforePos {
		t.Fatalf("expected a zero-delta tick to be a no-op")
	}
}
