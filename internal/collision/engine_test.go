package collision

import (
	"testing"

	"github.com/openmohaa/stats-api/internal/model"
)

func TestFindGatherEvents_Empty(t *testing.T) {
	gatherers := []Gatherer{{ID: 0, Start: model.Point{X: 0, Y: 0}, End: model.Point{X: 5, Y: 5}, Width: 0.6}}
	events := FindGatherEvents(nil, gatherers)
	if len(events) != 0 {
		t.Fatalf("expected no events, got %v", events)
	}
}

func TestFindGatherEvents_SingleMidpointHit(t *testing.T) {
	items := []Item{{ID: 0, Position: model.Point{X: 2.5, Y: 2.5}, Width: 0.6}}
	gatherers := []Gatherer{{ID: 0, Start: model.Point{X: 0, Y: 0}, End: model.Point{X: 5, Y: 5}, Width: 0.6}}
	events := FindGatherEvents(items, gatherers)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	e := events[0]
	if e.GathererID != 0 || e.ItemID != 0 {
		t.Fatalf("unexpected ids: %+v", e)
	}
	if abs(e.Time-0.5) > 1e-6 {
		t.Fatalf("expected time~0.5, got %v", e.Time)
	}
	if abs(e.SqDistance) > 1e-6 {
		t.Fatalf("expected sq_distance~0, got %v", e.SqDistance)
	}
}

func TestFindGatherEvents_MultipleOrdered(t *testing.T) {
	items := []Item{
		{ID: 0, Position: model.Point{X: 0, Y: 0}, Width: 0.6},
		{ID: 1, Position: model.Point{X: 2.5, Y: 2.5}, Width: 0.6},
		{ID: 2, Position: model.Point{X: 5, Y: 5}, Width: 0.6},
	}
	gatherers := []Gatherer{{ID: 0, Start: model.Point{X: 0, Y: 0}, End: model.Point{X: 5, Y: 5}, Width: 0.6}}
	events := FindGatherEvents(items, gatherers)
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d: %+v", len(events), events)
	}
	wantTimes := []float64{0, 0.5, 1.0}
	for i, e := range events {
		if e.GathererID != 0 {
			t.Fatalf("expected gatherer 0, got %d", e.GathererID)
		}
		if abs(e.Time-wantTimes[i]) > 1e-6 {
			t.Fatalf("event %d: expected time~%v, got %v", i, wantTimes[i], e.Time)
		}
	}
}

func TestFindGatherEvents_NearMiss(t *testing.T) {
	w := 0.6
	twoW := 2 * w
	items := []Item{{ID: 0, Position: model.Point{X: 2.5, Y: 2.5}, Width: w}}
	gatherers := []Gatherer{{
		ID:    0,
		Start: model.Point{X: 2.5 + twoW, Y: 0},
		End:   model.Point{X: 2.5 + twoW, Y: 2.5},
		Width: w,
	}}
	events := FindGatherEvents(items, gatherers)
	if len(events) != 0 {
		t.Fatalf("expected no events, got %v", events)
	}
}

func TestFindGatherEvents_EqualRadiusNotCollected(t *testing.T) {
	// Gatherer passes exactly radius-sum away from the item: strict
	// inequality means this must NOT be collected.
	items := []Item{{ID: 0, Position: model.Point{X: 1.0, Y: 5}, Width: 0.5}}
	gatherers := []Gatherer{{ID: 0, Start: model.Point{X: 0, Y: 0}, End: model.Point{X: 0, Y: 10}, Width: 0.5}}
	events := FindGatherEvents(items, gatherers)
	if len(events) != 0 {
		t.Fatalf("expected no events on exact radius boundary, got %v", events)
	}
}

func TestFindGatherEvents_ZeroLengthGathererNoEvents(t *testing.T) {
	items := []Item{{ID: 0, Position: model.Point{X: 0, Y: 0}, Width: 5}}
	gatherers := []Gatherer{{ID: 0, Start: model.Point{X: 0, Y: 0}, End: model.Point{X: 0, Y: 0}, Width: 5}}
	events := FindGatherEvents(items, gatherers)
	if len(events) != 0 {
		t.Fatalf("expected no events for zero-length gatherer, got %v", events)
	}
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
