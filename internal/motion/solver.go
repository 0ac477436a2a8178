// Package motion constrains a dog's per-tick displacement to the union
// of roads it lies on, clamping at road-boundary collisions.
package motion

import (
	"math"

	"github.com/openmohaa/stats-api/internal/model"
)

// Solver advances dogs along the road network of a single map. SetMap
// rebuilds its road index for a different map.
type Solver struct {
	idx *model.RoadIndex
}

func NewSolver(m *model.Map) *Solver {
	return &Solver{idx: model.BuildRoadIndex(m)}
}

func (s *Solver) SetMap(m *model.Map) {
	s.idx = model.BuildRoadIndex(m)
}

// Advance updates dog.Position for one tick of deltaMs and may zero
// dog.Speed if the dog runs into a road boundary with no adjacent road
// continuing in its direction of travel.
func (s *Solver) Advance(dog *model.Dog, deltaMs uint64) {
	if dog.Speed.IsZero() {
		return
	}

	seconds := float64(deltaMs) / 1000
	target := model.Point{
		X: dog.Position.X + dog.Speed.X*seconds,
		Y: dog.Position.Y + dog.Speed.Y*seconds,
	}

	current := dog.Position
	// A dog's speed is always axis-aligned (move sets exactly one of
	// dx/dy), so the direction of travel never changes mid-tick — only
	// which road's extent bounds it does, as the fixpoint below hands
	// off across intersections.
	horizontal := math.Abs(dog.Speed.X) > math.Abs(dog.Speed.Y)

	for {
		reached, next := s.step(current, target, horizontal)
		if reached {
			current = target
			break
		}
		if distance(current, next) < model.Epsilon {
			current = next
			break
		}
		current = next
	}

	dog.Position = current
	if distance(current, target) >= model.Epsilon {
		dog.Speed = model.Vec{}
	}
}

// step resolves one fixpoint iteration: find the farthest reachable point
// from current toward target along whichever roads contain current's row
// or column, clamped into their extents. reached reports whether target
// itself was attained.
func (s *Solver) step(current, target model.Point, horizontal bool) (reached bool, next model.Point) {
	if horizontal {
		row := int(math.Floor(current.Y + 0.5))
		roads := s.idx.Horizontal[row]
		if len(roads) == 0 {
			col := math.Floor(current.X + 0.5)
			next := model.Point{X: clampToCenter(target.X, col), Y: current.Y}
			return next == target, next
		}
		best := current
		bestDist := -1.0
		for _, r := range roads {
			if !r.Contains(current) {
				continue
			}
			xmin, xmax := r.XRange()
			cx := clamp(target.X, xmin, xmax)
			cand := model.Point{X: cx, Y: current.Y}
			d := distance(current, cand)
			if d > bestDist {
				bestDist = d
				best = cand
			}
		}
		if bestDist < 0 {
			return false, current
		}
		if best == target {
			return true, best
		}
		return false, best
	}

	col := int(math.Floor(current.X + 0.5))
	roads := s.idx.Vertical[col]
	if len(roads) == 0 {
		row := math.Floor(current.Y + 0.5)
		next := model.Point{X: current.X, Y: clampToCenter(target.Y, row)}
		return next == target, next
	}
	best := current
	bestDist := -1.0
	for _, r := range roads {
		if !r.Contains(current) {
			continue
		}
		ymin, ymax := r.YRange()
		cy := clamp(target.Y, ymin, ymax)
		cand := model.Point{X: current.X, Y: cy}
		d := distance(current, cand)
		if d > bestDist {
			bestDist = d
			best = cand
		}
	}
	if bestDist < 0 {
		return false, current
	}
	if best == target {
		return true, best
	}
	return false, best
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// clampToCenter limits cross-road travel to within RoadWidth/2 of the
// column/row center when there is no road entry for it — a lone
// perpendicular crossing with nothing to hand off to.
func clampToCenter(v, center float64) float64 {
	return clamp(v, center-model.RoadWidth/2, center+model.RoadWidth/2)
}

func distance(a, b model.Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}
