package model

// Map is immutable after load: roads, buildings, offices, the loot-type
// catalog and the per-map tunables that govern every session on it.
type Map struct {
	ID   string
	Name string

	Roads     []Road
	Buildings []Building
	Offices   []Office
	LootTypes []LootType

	DogSpeed     float64
	BagCapacity  uint
	LootPeriodS  float64
	LootProbability float64
}

// RoadIndex precomputes the row/column lookup tables the motion solver
// needs, grouping roads by the integer coordinate of the axis they lie on.
type RoadIndex struct {
	Horizontal map[int][]*Road // keyed by y
	Vertical   map[int][]*Road // keyed by x
}

// BuildRoadIndex groups m's roads by row/column. It must be rebuilt whenever
// the map a session uses changes (it never does after load, but a restored
// session constructs one the same way a freshly-joined one does).
func BuildRoadIndex(m *Map) *RoadIndex {
	idx := &RoadIndex{
		Horizontal: make(map[int][]*Road),
		Vertical:   make(map[int][]*Road),
	}
	for i := range m.Roads {
		r := &m.Roads[i]
		if r.IsHorizontal() {
			y := int(r.Start.Y)
			idx.Horizontal[y] = append(idx.Horizontal[y], r)
		} else {
			x := int(r.Start.X)
			idx.Vertical[x] = append(idx.Vertical[x], r)
		}
	}
	return idx
}

// FirstRoadStart is the deterministic spawn point used when the
// application is not configured to randomize spawn points.
func (m *Map) FirstRoadStart() Point {
	if len(m.Roads) == 0 {
		return Point{}
	}
	return m.Roads[0].Start
}
