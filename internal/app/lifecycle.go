package app

import (
	"context"
	"fmt"
	"time"

	"github.com/openmohaa/stats-api/internal/loot"
	"github.com/openmohaa/stats-api/internal/model"
	"github.com/openmohaa/stats-api/internal/registry"
	"github.com/openmohaa/stats-api/internal/snapshot"
	"github.com/openmohaa/stats-api/internal/ticker"
)

// StartAutosave registers a tick listener that accumulates elapsed time
// and calls SaveState once it has crossed period. It is a no-op if
// period is zero (autosave disabled).
func (a *Application) StartAutosave(period time.Duration) {
	if period <= 0 {
		return
	}
	var accumulatedMs uint64
	thresholdMs := uint64(period.Milliseconds())
	a.OnTick(func(deltaMs uint64) {
		accumulatedMs += deltaMs
		if accumulatedMs < thresholdMs {
			return
		}
		accumulatedMs = 0
		if err := a.SaveState(context.Background()); err != nil && a.logger != nil {
			a.logger.Errorw("autosave failed", "error", err)
		}
	})
}

// EnableAutoTicker starts a background ticker that drives Tick every
// period, and flips the guard that makes the manual /api/v1/game/tick
// endpoint return ErrAutoTicking. It is a one-way transition: whichever
// mode is selected at startup holds for the process lifetime.
func (a *Application) EnableAutoTicker(period time.Duration) {
	a.autoTicking.Store(true)
	a.tick = ticker.New(period, func(deltaMs uint64) {
		if err := a.tickInternal(context.Background(), deltaMs); err != nil && a.logger != nil {
			a.logger.Errorw("auto-tick failed", "error", err)
		}
	}, a.logger)
	a.tick.Start()
}

// StopAutoTicker halts the background ticker, if one is running, and
// blocks until its in-flight tick (if any) completes.
func (a *Application) StopAutoTicker() {
	if a.tick != nil {
		a.tick.Stop()
	}
}

// SaveState captures every live session's dogs and loot plus the token
// registry into a single file, atomically.
func (a *Application) SaveState(ctx context.Context) error {
	var state snapshot.State

	runErr := a.domain.Run(ctx, func() {
		for _, rec := range a.registry.AllRecords() {
			sess, err := a.game.Session(rec.MapID)
			if err != nil {
				continue
			}
			dog, ok := sess.Dog(rec.DogID)
			if !ok {
				continue
			}
			state.Dogs = append(state.Dogs, snapshot.DogRecord{
				Token:       rec.Token.String(),
				MapID:       rec.MapID,
				DogID:       dog.ID,
				Name:        dog.Name,
				Position:    dog.Position,
				Speed:       dog.Speed,
				Direction:   dog.Direction,
				Bag:         append([]uint64(nil), dog.Bag...),
				Score:       dog.Score,
				GameTimeMs:  dog.GameTimeMs,
				StandingMs:  dog.StandingTimeMs,
				Retired:     dog.Retired,
				BagCapacity: sess.Map.BagCapacity,
			})
		}

		for mapID, sess := range a.game.Sessions() {
			slots, freeIDs, busy := sess.LootStore().Snapshot()
			rec := snapshot.LootRecord{MapID: mapID}
			rec.Slots = append(rec.Slots, slots...)
			rec.FreeIDs = append(rec.FreeIDs, freeIDs...)
			for id, isBusy := range busy {
				if isBusy {
					rec.Busy = append(rec.Busy, id)
				}
			}
			state.Loots = append(state.Loots, rec)
		}
	})
	if runErr != nil {
		return runErr
	}

	if a.stateFile == "" {
		return nil
	}
	return snapshot.Save(a.stateFile, state)
}

// RecoverFromFile loads the state file at startup. A missing, empty or
// corrupt file is not an error: it is treated as "no prior state", and
// when no file exists at all an empty placeholder is created so a later
// SaveState has somewhere to write. Any other read failure is returned.
func (a *Application) RecoverFromFile(ctx context.Context) error {
	if a.stateFile == "" {
		return nil
	}

	state, ok, err := snapshot.Load(a.stateFile)
	if err != nil {
		return fmt.Errorf("load state file: %w", err)
	}
	if !ok {
		return snapshot.EnsurePlaceholder(a.stateFile)
	}

	return a.domain.Run(ctx, func() {
		lootByMap := make(map[string]snapshot.LootRecord, len(state.Loots))
		for _, lr := range state.Loots {
			lootByMap[lr.MapID] = lr
		}

		var maxDogID uint64
		restoredSessions := make(map[string]bool)

		for mapID := range lootByMap {
			a.ensureRestoredSession(mapID, lootByMap[mapID], restoredSessions)
		}

		for _, dr := range state.Dogs {
			sess, err := a.game.Session(dr.MapID)
			if err != nil {
				if a.logger != nil {
					a.logger.Warnw("dropping restored dog for unknown map", "map", dr.MapID, "dog", dr.DogID)
				}
				continue
			}
			a.ensureRestoredSession(dr.MapID, lootByMap[dr.MapID], restoredSessions)

			dog := &model.Dog{
				ID:             dr.DogID,
				Name:           dr.Name,
				Position:       dr.Position,
				Speed:          dr.Speed,
				Direction:      dr.Direction,
				Bag:            append([]uint64(nil), dr.Bag...),
				Score:          dr.Score,
				GameTimeMs:     dr.GameTimeMs,
				StandingTimeMs: dr.StandingMs,
				Retired:        dr.Retired,
				Width:          model.DogWidth,
			}
			a.registry.RestoreJoin(registry.TokenFromString(dr.Token), dr.MapID, dr.Name, dog, sess)
			if dr.DogID >= maxDogID {
				maxDogID = dr.DogID + 1
			}
		}
		a.registry.SetNextDogID(maxDogID)
	})
}

// ensureRestoredSession lazily creates mapID's session (via Game, which
// also lazily creates one) and, the first time it is touched during
// this restore, overwrites its loot store wholesale from the snapshot.
func (a *Application) ensureRestoredSession(mapID string, lr snapshot.LootRecord, done map[string]bool) {
	if done[mapID] {
		return
	}
	sess, err := a.game.Session(mapID)
	if err != nil {
		return
	}
	done[mapID] = true

	if lr.MapID == "" {
		return
	}
	busy := make(map[uint64]bool, len(lr.Busy))
	for _, id := range lr.Busy {
		busy[id] = true
	}
	restored := loot.Restore(append([]*loot.Item(nil), lr.Slots...), append([]uint64(nil), lr.FreeIDs...), busy)
	sess.RestoreLootStore(restored)
}
