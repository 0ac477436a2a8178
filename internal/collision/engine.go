// Package collision implements the swept-circle contact detector:
// given a set of static items and a set of moving gatherers, it returns
// every contact that occurred during the tick, ordered by contact time.
package collision

import (
	"sort"

	"github.com/openmohaa/stats-api/internal/model"
)

// Item is a static disk at Position with radius Width, identified by ID.
type Item struct {
	ID       uint64
	Position model.Point
	Width    float64
}

// Gatherer is a swept disk from Start to End with radius Width,
// identified by ID. A gatherer with Start==End produces no events.
type Gatherer struct {
	ID          uint64
	Start, End  model.Point
	Width       float64
}

// Event is one (gatherer, item) contact, with Time the projection
// parameter in [0,1] along the gatherer's path.
type Event struct {
	ItemID     uint64
	GathererID uint64
	SqDistance float64
	Time       float64
}

// FindGatherEvents returns every contact between items and gatherers,
// ascending by Time. Events with equal Time keep the order in which the
// gatherers, and then the items, were supplied.
func FindGatherEvents(items []Item, gatherers []Gatherer) []Event {
	var events []Event
	for _, g := range gatherers {
		if g.Start == g.End {
			continue
		}
		for _, it := range items {
			sqDist, t, ok := tryCollect(g.Start, g.End, it.Position)
			if !ok {
				continue
			}
			radius := g.Width + it.Width
			if t >= 0 && t <= 1 && sqDist < radius*radius {
				events = append(events, Event{
					ItemID:     it.ID,
					GathererID: g.ID,
					SqDistance: sqDist,
					Time:       t,
				})
			}
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Time < events[j].Time
	})
	return events
}

// tryCollect computes the squared distance from c to segment a-b and the
// projection parameter t = ((c-a)·(b-a)) / |b-a|^2.
func tryCollect(a, b, c model.Point) (sqDistance, t float64, ok bool) {
	ux, uy := c.X-a.X, c.Y-a.Y
	vx, vy := b.X-a.X, b.Y-a.Y
	vLen2 := vx*vx + vy*vy
	if vLen2 == 0 {
		return 0, 0, false
	}
	uDotV := ux*vx + uy*vy
	t = uDotV / vLen2
	uLen2 := ux*ux + uy*uy
	sqDistance = uLen2 - (uDotV*uDotV)/vLen2
	if sqDistance < 0 && sqDistance > -model.Epsilon {
		sqDistance = 0
	}
	return sqDistance, t, true
}
