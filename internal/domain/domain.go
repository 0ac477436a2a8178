// Package domain implements the single logical serialization domain:
// an explicit sequential executor that every mutation of
// Game, Session, PlayerRegistry and LootStore goes through. Multiple OS
// worker threads may call Run concurrently, but the domain guarantees
// at-most-one task touches mutable game state at a time, enforced with
// a weighted semaphore of size 1.
package domain

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Domain serializes access to the functions passed to Run.
type Domain struct {
	sem *semaphore.Weighted
}

func New() *Domain {
	return &Domain{sem: semaphore.NewWeighted(1)}
}

// Run blocks until it acquires the domain, executes fn, then releases.
// It is the only way callers (HTTP handlers, the ticker, the autosave
// listener) touch live game state.
func (d *Domain) Run(ctx context.Context, fn func()) error {
	if err := d.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer d.sem.Release(1)
	fn()
	return nil
}
