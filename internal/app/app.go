// Package app orchestrates the game core: join, action, tick, state
// query, periodic autosave, restore-on-start and retirement drainage
// into the stats store.
package app

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/openmohaa/stats-api/internal/domain"
	"github.com/openmohaa/stats-api/internal/game"
	"github.com/openmohaa/stats-api/internal/metrics"
	"github.com/openmohaa/stats-api/internal/model"
	"github.com/openmohaa/stats-api/internal/registry"
	"github.com/openmohaa/stats-api/internal/statsstore"
	"github.com/openmohaa/stats-api/internal/ticker"
)

// ErrAutoTicking is returned by Tick when the transport calls it while
// the auto-ticker is running; the transport maps this to 400
// badRequest.
var ErrAutoTicking = fmt.Errorf("manual tick is forbidden while the auto-ticker is running")

// ErrMapNotFound mirrors game.ErrMapNotFound for transport-layer 404s.
var ErrMapNotFound = game.ErrMapNotFound

// RetirementThresholdMs is the consecutive-stationary duration after
// which a dog retires.
const RetirementThresholdMs = 60_000

// TickListener is notified after every tick with the delta that just
// elapsed, on the serialization domain.
type TickListener func(deltaMs uint64)

// Application wires Game, Registry and the stats store together behind
// the single serialization domain.
type Application struct {
	game     *game.Game
	registry *registry.Registry
	stats    statsstore.Store
	domain   *domain.Domain
	logger   *zap.SugaredLogger

	randomizeSpawn bool
	stateFile      string

	autoTicking atomic.Bool
	listeners   []TickListener

	tick *ticker.Ticker
}

func New(g *game.Game, stats statsstore.Store, randomizeSpawn bool, stateFile string, logger *zap.SugaredLogger) *Application {
	return &Application{
		game:           g,
		registry:       registry.New(),
		stats:          stats,
		domain:         domain.New(),
		logger:         logger,
		randomizeSpawn: randomizeSpawn,
		stateFile:      stateFile,
	}
}

// OnTick registers a listener invoked after every tick, on the domain.
func (a *Application) OnTick(l TickListener) {
	a.listeners = append(a.listeners, l)
}

// JoinGame finds-or-creates the session for mapID, then joins userName
// into it, spawning the dog at a deterministic or randomized point per
// the randomizeSpawn flag.
func (a *Application) JoinGame(ctx context.Context, mapID, userName string) (token string, dogID uint64, err error) {
	runErr := a.domain.Run(ctx, func() {
		sess, e := a.game.Session(mapID)
		if e != nil {
			err = e
			return
		}
		spawn := sess.Map.FirstRoadStart()
		if a.randomizeSpawn {
			spawn = sess.RandomPointOnMap()
		}
		player, tok, e := a.registry.Join(mapID, userName, sess, spawn, sess.Map.BagCapacity)
		if e != nil {
			err = e
			return
		}
		token = tok.String()
		dogID = player.Dog.ID
	})
	if runErr != nil {
		return "", 0, runErr
	}
	return token, dogID, err
}

// FindPlayerByToken resolves a bearer token to its player, or ok=false
// if the token is unknown.
func (a *Application) FindPlayerByToken(ctx context.Context, token string) (player *registry.Player, ok bool, err error) {
	runErr := a.domain.Run(ctx, func() {
		tok := registry.TokenFromString(token)
		mapID, _, found := a.registry.RecordFor(tok)
		if !found {
			return
		}
		sess, e := a.game.Session(mapID)
		if e != nil {
			err = e
			return
		}
		player, ok = a.registry.FindByToken(tok, sess)
	})
	if runErr != nil {
		return nil, false, runErr
	}
	return player, ok, err
}

// PlayersVisibleTo returns every player in the same session as token's
// player, sorted ascending by dog id, or ok=false if the token is
// unknown.
func (a *Application) PlayersVisibleTo(ctx context.Context, token string) (players []*registry.Player, ok bool, err error) {
	runErr := a.domain.Run(ctx, func() {
		tok := registry.TokenFromString(token)
		mapID, _, found := a.registry.RecordFor(tok)
		if !found {
			return
		}
		sess, e := a.game.Session(mapID)
		if e != nil {
			err = e
			return
		}
		players = a.registry.PlayersInSession(mapID, sess)
		ok = true
	})
	if runErr != nil {
		return nil, false, runErr
	}
	return players, ok, err
}

// Direction is one of "U", "D", "L", "R" or "" (stop).
type Direction string

const (
	DirUp    Direction = "U"
	DirDown  Direction = "D"
	DirLeft  Direction = "L"
	DirRight Direction = "R"
	DirStop  Direction = ""
)

// Move sets the player's speed to ±mapDogSpeed along the requested axis
// (or zero, for DirStop) and updates its facing direction.
func (a *Application) Move(ctx context.Context, token string, dir Direction) (ok bool, err error) {
	runErr := a.domain.Run(ctx, func() {
		tok := registry.TokenFromString(token)
		mapID, _, found := a.registry.RecordFor(tok)
		if !found {
			return
		}
		sess, e := a.game.Session(mapID)
		if e != nil {
			err = e
			return
		}
		player, found := a.registry.FindByToken(tok, sess)
		if !found {
			return
		}
		speed := sess.Map.DogSpeed
		switch dir {
		case DirUp:
			player.Dog.Speed = model.Vec{X: 0, Y: -speed}
			player.Dog.Direction = model.DirNorth
		case DirDown:
			player.Dog.Speed = model.Vec{X: 0, Y: speed}
			player.Dog.Direction = model.DirSouth
		case DirLeft:
			player.Dog.Speed = model.Vec{X: -speed, Y: 0}
			player.Dog.Direction = model.DirWest
		case DirRight:
			player.Dog.Speed = model.Vec{X: speed, Y: 0}
			player.Dog.Direction = model.DirEast
		case DirStop:
			player.Dog.Speed = model.Vec{}
		default:
			err = fmt.Errorf("invalid move direction %q", dir)
			return
		}
		ok = true
	})
	if runErr != nil {
		return false, runErr
	}
	return ok, err
}

// Tick advances every session by deltaMs, drains retired players into
// the stats store, and notifies tick listeners. It is refused while the
// auto-ticker is running.
func (a *Application) Tick(ctx context.Context, deltaMs uint64) error {
	if a.autoTicking.Load() {
		return ErrAutoTicking
	}
	return a.tickLocked(ctx, deltaMs)
}

// tickInternal is called by the auto-ticker, which is exempt from the
// ErrAutoTicking guard (it IS the thing the guard protects against
// manual interleaving with).
func (a *Application) tickInternal(ctx context.Context, deltaMs uint64) error {
	return a.tickLocked(ctx, deltaMs)
}

func (a *Application) tickLocked(ctx context.Context, deltaMs uint64) error {
	if deltaMs == 0 {
		return nil
	}

	start := time.Now()
	var retirees []statsstore.RetiredPlayer

	runErr := a.domain.Run(ctx, func() {
		activeSessions := 0
		activeDogs := 0
		liveLoot := 0
		for mapID, sess := range a.game.Sessions() {
			sess.Tick(deltaMs, RetirementThresholdMs)
			records := a.registry.RemoveRetired(mapID, sess)
			for _, r := range records {
				retirees = append(retirees, statsstore.RetiredPlayer{
					ID:         uuid.NewString(),
					Name:       r.Name,
					Score:      int(r.Score),
					PlayTimeMs: int(r.PlayTimeMs),
				})
			}
			activeSessions++
			activeDogs += len(sess.Dogs())
			liveLoot += sess.LootStore().Count()
		}
		metrics.ActiveSessions.Set(float64(activeSessions))
		metrics.ActiveDogs.Set(float64(activeDogs))
		metrics.LiveLoot.Set(float64(liveLoot))
	})
	if runErr != nil {
		return runErr
	}

	if len(retirees) > 0 {
		if err := a.stats.SaveBatch(ctx, retirees); err != nil {
			if a.logger != nil {
				a.logger.Errorw("failed to persist retired players", "error", err)
			}
		} else {
			metrics.RetirementsTotal.Add(float64(len(retirees)))
		}
	}

	for _, l := range a.listeners {
		l(deltaMs)
	}

	metrics.TickDuration.Observe(time.Since(start).Seconds())
	return nil
}

// Leaderboard returns up to limit rows starting at offset; limit==0
// means "use the 100-row cap", and any limit above 100 is clamped.
func (a *Application) Leaderboard(ctx context.Context, offset, limit int) ([]statsstore.Row, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	return a.stats.ListTopN(ctx, offset, limit)
}

// Maps returns every loaded map.
func (a *Application) Maps() []*model.Map {
	return a.game.Maps()
}

// Map returns a single loaded map by id.
func (a *Application) Map(id string) (*model.Map, bool) {
	return a.game.Map(id)
}
