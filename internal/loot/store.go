// Package loot implements the per-session live loot container (Store)
// and the probabilistic spawner (Generator) described by the session
// tick's loot-generation phase.
package loot

import "github.com/openmohaa/stats-api/internal/model"

// Item is one live loot instance. Type indexes the map's LootType catalog.
type Item struct {
	Type     uint
	Position model.Point
	Width    float64
}

// Store is a sequence of slots plus a free-id FIFO and a busy set.
// Ids are stable slot indices: an id is always either live (present,
// possibly carried) or free (recyclable).
type Store struct {
	slots    []*Item // nil at a free slot
	freeIDs  []uint64
	busy     map[uint64]bool
}

func NewStore() *Store {
	return &Store{busy: make(map[uint64]bool)}
}

// Add inserts item, recycling a freed slot before growing, and returns
// its id.
func (s *Store) Add(item Item) uint64 {
	if n := len(s.freeIDs); n > 0 {
		id := s.freeIDs[0]
		s.freeIDs = s.freeIDs[1:]
		s.slots[id] = &item
		return id
	}
	id := uint64(len(s.slots))
	s.slots = append(s.slots, &item)
	return id
}

// Get returns the item at id and whether it is live.
func (s *Store) Get(id uint64) (Item, bool) {
	if id >= uint64(len(s.slots)) || s.slots[id] == nil {
		return Item{}, false
	}
	return *s.slots[id], true
}

// IsLive reports whether id currently holds an item (carried or not).
func (s *Store) IsLive(id uint64) bool {
	return id < uint64(len(s.slots)) && s.slots[id] != nil
}

// IsBusy reports whether id is currently carried by some dog.
func (s *Store) IsBusy(id uint64) bool {
	return s.busy[id]
}

// SetBusy marks id as carried. The caller must have checked it was live
// and not already busy.
func (s *Store) SetBusy(id uint64) {
	s.busy[id] = true
}

// Pop frees id: the slot becomes recyclable and the busy flag is cleared.
func (s *Store) Pop(id uint64) {
	if id >= uint64(len(s.slots)) || s.slots[id] == nil {
		return
	}
	s.slots[id] = nil
	delete(s.busy, id)
	s.freeIDs = append(s.freeIDs, id)
}

// Count returns the number of live (not necessarily visible) items.
func (s *Store) Count() int {
	count := 0
	for _, slot := range s.slots {
		if slot != nil {
			count++
		}
	}
	return count
}

// VisibleIDs returns, in slot order, the ids of live items that are not
// currently carried by any dog — what a session exposes to state queries
// and feeds to the collision engine as pickup targets.
func (s *Store) VisibleIDs() []uint64 {
	ids := make([]uint64, 0, len(s.slots))
	for id, slot := range s.slots {
		if slot != nil && !s.busy[uint64(id)] {
			ids = append(ids, uint64(id))
		}
	}
	return ids
}

// Snapshot exposes the internal layout for the snapshot codec: the slots
// (nil for free), the free-id queue and the busy set. The codec must not
// mutate the returned slices/maps.
func (s *Store) Snapshot() (slots []*Item, freeIDs []uint64, busy map[uint64]bool) {
	return s.slots, s.freeIDs, s.busy
}

// Restore overwrites the store wholesale from a previously captured
// snapshot.
func Restore(slots []*Item, freeIDs []uint64, busy map[uint64]bool) *Store {
	if busy == nil {
		busy = make(map[uint64]bool)
	}
	return &Store{slots: slots, freeIDs: freeIDs, busy: busy}
}
