// Package registry maps opaque bearer tokens to (session, dog) pairs.
// It never holds a pointer into a session's dog map directly — only the
// (mapID, dogID) pair — so Game.Session(mapID).Dog(dogID) is always the
// canonical lookup.
package registry

import (
	"sort"
	"sync/atomic"

	"github.com/openmohaa/stats-api/internal/model"
	"github.com/openmohaa/stats-api/internal/session"
)

// Player is a token's (dog, session) pair, resolved at lookup time.
type Player struct {
	Token   Token
	MapID   string
	Dog     *model.Dog
	Session *session.Session
}

type record struct {
	token Token
	mapID string
	dogID uint64
}

// Registry is not safe for concurrent use by multiple goroutines
// without external synchronization — callers run it on the single
// serialization domain, exactly like every other piece of live game
// state.
type Registry struct {
	tokenToRecord map[Token]*record
	byMapAndName  map[string]map[string]Token
	byMapAndDog   map[string]map[uint64]Token

	nextDogID atomic.Uint64
}

func New() *Registry {
	return &Registry{
		tokenToRecord: make(map[Token]*record),
		byMapAndName:  make(map[string]map[string]Token),
		byMapAndDog:   make(map[string]map[uint64]Token),
	}
}

// NextDogID returns the next process-wide monotonic dog id.
func (r *Registry) NextDogID() uint64 {
	return r.nextDogID.Add(1) - 1
}

// SetNextDogID is used by snapshot restore to resume the counter at
// max(seen_dog_id)+1.
func (r *Registry) SetNextDogID(next uint64) {
	r.nextDogID.Store(next)
}

// Join returns the existing (player, token) for (mapID, userName) if one
// is already live, else creates dog in sess and registers a fresh token.
func (r *Registry) Join(mapID, userName string, sess *session.Session, spawn model.Point, bagCapacity uint) (*Player, Token, error) {
	if names, ok := r.byMapAndName[mapID]; ok {
		if tok, ok := names[userName]; ok {
			rec := r.tokenToRecord[tok]
			dog, _ := sess.Dog(rec.dogID)
			return &Player{Token: tok, MapID: mapID, Dog: dog, Session: sess}, tok, nil
		}
	}

	dog := model.NewDog(r.NextDogID(), userName, spawn)
	sess.AddDog(dog)

	tok, err := r.newUniqueToken()
	if err != nil {
		return nil, Token{}, err
	}

	r.index(tok, mapID, userName, dog.ID)

	return &Player{Token: tok, MapID: mapID, Dog: dog, Session: sess}, tok, nil
}

func (r *Registry) index(tok Token, mapID, userName string, dogID uint64) {
	r.tokenToRecord[tok] = &record{token: tok, mapID: mapID, dogID: dogID}
	if r.byMapAndName[mapID] == nil {
		r.byMapAndName[mapID] = make(map[string]Token)
	}
	r.byMapAndName[mapID][userName] = tok
	if r.byMapAndDog[mapID] == nil {
		r.byMapAndDog[mapID] = make(map[uint64]Token)
	}
	r.byMapAndDog[mapID][dogID] = tok
}

// RestoreJoin re-registers a player at a verbatim stored token, used only
// by snapshot restore. If the (mapID,name) pair or the token already
// exists, the new record silently overwrites it.
func (r *Registry) RestoreJoin(tok Token, mapID, userName string, dog *model.Dog, sess *session.Session) {
	sess.AddDog(dog)
	r.index(tok, mapID, userName, dog.ID)
}

func (r *Registry) newUniqueToken() (Token, error) {
	for {
		tok, err := newToken()
		if err != nil {
			return Token{}, err
		}
		if _, exists := r.tokenToRecord[tok]; !exists {
			return tok, nil
		}
	}
}

// FindByToken resolves tok to its player, if the token is known to sess
// (the caller supplies the session because the registry does not keep a
// pointer to one).
func (r *Registry) FindByToken(tok Token, sess *session.Session) (*Player, bool) {
	rec, ok := r.tokenToRecord[tok]
	if !ok {
		return nil, false
	}
	dog, ok := sess.Dog(rec.dogID)
	if !ok {
		return nil, false
	}
	return &Player{Token: tok, MapID: rec.mapID, Dog: dog, Session: sess}, true
}

// RecordFor exposes the (mapID, dogID) pair for a token without needing
// the session, used by callers that must first locate which session a
// token belongs to (e.g. Application.FindPlayerByToken).
func (r *Registry) RecordFor(tok Token) (mapID string, dogID uint64, ok bool) {
	rec, exists := r.tokenToRecord[tok]
	if !exists {
		return "", 0, false
	}
	return rec.mapID, rec.dogID, true
}

// PlayersInSession returns every player currently registered in sess,
// sorted ascending by dog id.
func (r *Registry) PlayersInSession(mapID string, sess *session.Session) []*Player {
	var players []*Player
	for id, dog := range sess.Dogs() {
		tok, ok := r.tokenFor(mapID, id)
		if !ok {
			continue
		}
		players = append(players, &Player{Token: tok, MapID: mapID, Dog: dog, Session: sess})
	}
	sort.Slice(players, func(i, j int) bool { return players[i].Dog.ID < players[j].Dog.ID })
	return players
}

func (r *Registry) tokenFor(mapID string, dogID uint64) (Token, bool) {
	tok, ok := r.byMapAndDog[mapID][dogID]
	return tok, ok
}

// RecordSummary is one token's (mapID, dogID, userName) triple, used by
// the snapshot codec to enumerate every live registration without
// needing a session to resolve the dog.
type RecordSummary struct {
	Token  Token
	MapID  string
	DogID  uint64
	Name   string
}

// AllRecords returns every currently-registered token, in no particular
// order.
func (r *Registry) AllRecords() []RecordSummary {
	out := make([]RecordSummary, 0, len(r.tokenToRecord))
	for _, names := range r.byMapAndName {
		for name, tok := range names {
			rec := r.tokenToRecord[tok]
			if rec == nil {
				continue
			}
			out = append(out, RecordSummary{Token: tok, MapID: rec.mapID, DogID: rec.dogID, Name: name})
		}
	}
	return out
}

// RetiredStats is the record handed to the stats store for one drained
// player.
type RetiredStats struct {
	Name       string
	Score      uint64
	PlayTimeMs uint64
}

// RemoveRetired removes every retired player in sess from the registry
// and from sess's dog map, returning their final stats.
func (r *Registry) RemoveRetired(mapID string, sess *session.Session) []RetiredStats {
	var out []RetiredStats
	for id, dog := range sess.Dogs() {
		if !dog.Retired {
			continue
		}
		tok, ok := r.tokenFor(mapID, id)
		if ok {
			r.revoke(mapID, tok)
		}
		out = append(out, RetiredStats{Name: dog.Name, Score: dog.Score, PlayTimeMs: dog.GameTimeMs})
		sess.RemoveDog(id)
	}
	return out
}

func (r *Registry) revoke(mapID string, tok Token) {
	rec, ok := r.tokenToRecord[tok]
	if !ok {
		return
	}
	delete(r.tokenToRecord, tok)
	delete(r.byMapAndDog[mapID], rec.dogID)
	if names, ok := r.byMapAndName[mapID]; ok {
		for name, t := range names {
			if t == tok {
				delete(names, name)
				break
			}
		}
	}
}
