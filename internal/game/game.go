// Package game owns every map's session, lazily creating one on first
// join to that map.
package game

import (
	"fmt"

	"github.com/openmohaa/stats-api/internal/model"
	"github.com/openmohaa/stats-api/internal/session"
)

// Game owns a fixed, load-time set of maps and a lazily-populated set of
// sessions, one per map that has seen at least one join.
type Game struct {
	maps     map[string]*model.Map
	mapOrder []string
	sessions map[string]*session.Session

	seed int64
}

// New creates a Game over maps, keyed by id, preserving load order for
// listing. seed deterministically seeds every session created from it.
func New(maps []*model.Map, seed int64) *Game {
	g := &Game{
		maps:     make(map[string]*model.Map, len(maps)),
		sessions: make(map[string]*session.Session),
		seed:     seed,
	}
	for _, m := range maps {
		g.maps[m.ID] = m
		g.mapOrder = append(g.mapOrder, m.ID)
	}
	return g
}

// Maps returns every loaded map in load order.
func (g *Game) Maps() []*model.Map {
	out := make([]*model.Map, 0, len(g.mapOrder))
	for _, id := range g.mapOrder {
		out = append(out, g.maps[id])
	}
	return out
}

// Map looks up a map by id.
func (g *Game) Map(id string) (*model.Map, bool) {
	m, ok := g.maps[id]
	return m, ok
}

// ErrMapNotFound is returned by Session when id names no loaded map.
var ErrMapNotFound = fmt.Errorf("map not found")

// Session returns the session for mapID, creating it on first access.
func (g *Game) Session(mapID string) (*session.Session, error) {
	if sess, ok := g.sessions[mapID]; ok {
		return sess, nil
	}
	m, ok := g.maps[mapID]
	if !ok {
		return nil, ErrMapNotFound
	}
	sess := session.New(m, g.seed^int64(len(g.sessions)+1))
	g.sessions[mapID] = sess
	return sess, nil
}

// RestoreSession installs sess as the live session for mapID, replacing
// any session already there. Snapshot restore does not call it; it
// obtains sessions through Session, which creates them lazily.
func (g *Game) RestoreSession(mapID string, sess *session.Session) {
	g.sessions[mapID] = sess
}

// Sessions returns every currently-live (mapID, session) pair.
func (g *Game) Sessions() map[string]*session.Session {
	return g.sessions
}
