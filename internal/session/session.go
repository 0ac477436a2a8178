// Package session implements the live simulation for one map: the dogs
// on it, its loot store, its motion solver and loot generator, and the
// per-tick advance.
package session

import (
	"math/rand"

	"github.com/openmohaa/stats-api/internal/collision"
	"github.com/openmohaa/stats-api/internal/loot"
	"github.com/openmohaa/stats-api/internal/model"
	"github.com/openmohaa/stats-api/internal/motion"
)

// Session owns one map's dogs and loot for the lifetime of the process.
// It is created lazily on first join to a map and never destroyed.
type Session struct {
	Map *model.Map

	dogs  map[uint64]*model.Dog
	store *loot.Store

	solver    *motion.Solver
	generator *loot.Generator

	rng *rand.Rand
}

// New creates a session for m with its own motion solver and loot
// generator, seeded from seed for reproducible tests.
func New(m *model.Map, seed int64) *Session {
	return &Session{
		Map:       m,
		dogs:      make(map[uint64]*model.Dog),
		store:     loot.NewStore(),
		solver:    motion.NewSolver(m),
		generator: loot.NewGenerator(m.LootPeriodS, m.LootProbability, rand.New(rand.NewSource(seed))),
		rng:       rand.New(rand.NewSource(seed ^ 0x5bd1e995)),
	}
}

// AddDog registers dog under its own id; dogs[id].ID == id always holds.
func (s *Session) AddDog(dog *model.Dog) {
	s.dogs[dog.ID] = dog
}

// Dog returns the dog with the given id, if any.
func (s *Session) Dog(id uint64) (*model.Dog, bool) {
	d, ok := s.dogs[id]
	return d, ok
}

// RemoveDog deletes a dog from the session (used when draining retirees).
func (s *Session) RemoveDog(id uint64) {
	delete(s.dogs, id)
}

// Dogs returns the live dog map; callers must not mutate the map itself,
// only the dogs it points to.
func (s *Session) Dogs() map[uint64]*model.Dog {
	return s.dogs
}

// LootStore exposes the session's live loot for snapshotting and state
// queries.
func (s *Session) LootStore() *loot.Store {
	return s.store
}

// RestoreLootStore overwrites the session's loot store wholesale, used
// when recovering from a snapshot file.
func (s *Session) RestoreLootStore(store *loot.Store) {
	s.store = store
}

// RandomPointOnMap picks a uniformly random road and a uniformly random
// integer coordinate along it — used both for loot placement and, when
// configured, for randomized spawn points.
func (s *Session) RandomPointOnMap() model.Point {
	roads := s.Map.Roads
	r := roads[s.rng.Intn(len(roads))]
	return randomPointOnRoad(s.rng, r)
}

func randomPointOnRoad(rng *rand.Rand, r model.Road) model.Point {
	if r.IsHorizontal() {
		xmin, xmax := r.Start.X, r.End.X
		if xmin > xmax {
			xmin, xmax = xmax, xmin
		}
		lo, hi := int(xmin), int(xmax)
		x := lo
		if hi > lo {
			x = lo + rng.Intn(hi-lo+1)
		}
		return model.Point{X: float64(x), Y: r.Start.Y}
	}
	ymin, ymax := r.Start.Y, r.End.Y
	if ymin > ymax {
		ymin, ymax = ymax, ymin
	}
	lo, hi := int(ymin), int(ymax)
	y := lo
	if hi > lo {
		y = lo + rng.Intn(hi-lo+1)
	}
	return model.Point{X: r.Start.X, Y: float64(y)}
}

// Tick advances the session by deltaMs: loot generation, per-dog motion
// and timers, then collision resolution against loot and offices, in
// that fixed order.
func (s *Session) Tick(deltaMs uint64, retirementThresholdMs uint64) {
	if deltaMs == 0 {
		return
	}

	s.generateLoot(deltaMs)

	gatherers := make([]collision.Gatherer, 0, len(s.dogs))
	dogByGatherer := make(map[uint64]*model.Dog, len(s.dogs))
	for id, dog := range s.dogs {
		dog.GameTimeMs += deltaMs
		start := dog.Position
		if dog.Speed.IsZero() {
			dog.StandingTimeMs += deltaMs
			if dog.StandingTimeMs >= retirementThresholdMs {
				dog.Retired = true
			}
		} else {
			dog.StandingTimeMs = 0
		}
		s.solver.Advance(dog, deltaMs)
		gatherers = append(gatherers, collision.Gatherer{
			ID:    id,
			Start: start,
			End:   dog.Position,
			Width: dog.Width,
		})
		dogByGatherer[id] = dog
	}

	visibleLoot := s.store.VisibleIDs()
	items := make([]collision.Item, 0, len(visibleLoot)+len(s.Map.Offices))
	for _, id := range visibleLoot {
		li, _ := s.store.Get(id)
		items = append(items, collision.Item{ID: id, Position: li.Position, Width: li.Width})
	}
	officeBase := uint64(1) << 62 // disjoint namespace from loot ids
	for i, office := range s.Map.Offices {
		items = append(items, collision.Item{
			ID:       officeBase + uint64(i),
			Position: office.Position,
			Width:    office.Width,
		})
	}

	events := collision.FindGatherEvents(items, gatherers)

	for _, ev := range events {
		dog := dogByGatherer[ev.GathererID]
		if dog == nil {
			continue
		}
		if ev.ItemID < officeBase {
			s.resolvePickup(dog, ev.ItemID)
		} else {
			s.resolveDropOff(dog)
		}
	}
}

func (s *Session) generateLoot(deltaMs uint64) {
	count := s.generator.Generate(deltaMs, s.store.Count(), len(s.dogs))
	for i := 0; i < count; i++ {
		pos := s.RandomPointOnMap()
		typeIdx := uint(s.rng.Intn(len(s.Map.LootTypes)))
		s.store.Add(loot.Item{Type: typeIdx, Position: pos})
	}
}

func (s *Session) resolvePickup(dog *model.Dog, lootID uint64) {
	if !s.store.IsLive(lootID) || s.store.IsBusy(lootID) {
		return
	}
	if dog.BagFull(s.Map.BagCapacity) {
		return
	}
	dog.AddToBag(lootID)
	s.store.SetBusy(lootID)
}

func (s *Session) resolveDropOff(dog *model.Dog) {
	if len(dog.Bag) == 0 {
		return
	}
	for _, lootID := range dog.Bag {
		item, ok := s.store.Get(lootID)
		if ok && int(item.Type) < len(s.Map.LootTypes) {
			dog.Score += uint64(s.Map.LootTypes[item.Type].Value)
		}
		s.store.Pop(lootID)
	}
	dog.ClearBag()
}
