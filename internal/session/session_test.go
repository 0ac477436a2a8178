package session

import (
	"testing"

	"github.com/openmohaa/stats-api/internal/loot"
	"github.com/openmohaa/stats-api/internal/model"
)

func testMap() *model.Map {
	return &model.Map{
		ID:   "map1",
		Name: "Test",
		Roads: []model.Road{
			{Start: model.Point{X: 0, Y: 0}, End: model.Point{X: 10, Y: 0}},
		},
		Offices: []model.Office{
			{ID: "office1", Position: model.Point{X: 10, Y: 0}, Width: 0.5},
		},
		LootTypes:   []model.LootType{{Name: "key", Value: 7}},
		DogSpeed:    10,
		BagCapacity: 3,
		LootPeriodS: 5,
		LootProbability: 0.5,
	}
}

func TestSession_TickPickupThenDropOff(t *testing.T) {
	m := testMap()
	s := New(m, 42)

	dog := model.NewDog(1, "rex", model.Point{X: 0, Y: 0})
	dog.Speed = model.Vec{X: 10, Y: 0}
	s.AddDog(dog)

	s.LootStore().Add(loot.Item{Type: 0, Position: model.Point{X: 5, Y: 0}})

	s.Tick(1000, 60000)

	if dog.Position.X != 10 || dog.Position.Y != 0 {
		t.Fatalf("expected dog clamped to (10,0), got %+v", dog.Position)
	}
	if len(dog.Bag) != 0 {
		t.Fatalf("expected empty bag after drop-off, got %v", dog.Bag)
	}
	if dog.Score != 7 {
		t.Fatalf("expected score 7, got %d", dog.Score)
	}
}

func TestSession_TickZeroDeltaNoOp(t *testing.T) {
	m := testMap()
	s := New(m, 1)
	dog := model.NewDog(1, "rex", model.Point{X: 0, Y: 0})
	s.AddDog(dog)
	s.Tick(0, 60000)
	if dog.GameTimeMs != 0 {
		t.Fatalf("expected no state change on zero delta tick")
	}
}

func TestSession_RetirementAfterThreshold(t *testing.T) {
	m := testMap()
	s := New(m, 1)
	dog := model.NewDog(1, "rex", model.Point{X: 0, Y: 0})
	s.AddDog(dog)

	s.Tick(60000, 60000)

	if !dog.Retired {
		t.Fatalf("expected dog to retire after standing 60000ms")
	}
}
