// Package ticker drives a handler at a fixed period using wall time
// between fires (not the nominal period), so the simulation advances by
// real elapsed time regardless of scheduler jitter.
package ticker

import (
	"time"

	"go.uber.org/zap"
)

// Handler receives the elapsed time, in milliseconds, since its
// previous invocation (or since the ticker started, for the first one).
type Handler func(deltaMs uint64)

// Ticker schedules Handler on a fixed period. A panic or error inside
// Handler is swallowed so a single bad tick never stops the simulation.
type Ticker struct {
	period  time.Duration
	handler Handler
	logger  *zap.SugaredLogger

	stop chan struct{}
	done chan struct{}
}

// New builds a Ticker that will call handler every period once Start is
// called. logger may be nil, in which case swallowed panics are dropped
// silently.
func New(period time.Duration, handler Handler, logger *zap.SugaredLogger) *Ticker {
	return &Ticker{
		period:  period,
		handler: handler,
		logger:  logger,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start begins firing on its own goroutine; it returns immediately.
func (t *Ticker) Start() {
	go t.run()
}

// Stop halts further fires and blocks until the current fire, if any,
// completes.
func (t *Ticker) Stop() {
	close(t.stop)
	<-t.done
}

func (t *Ticker) run() {
	defer close(t.done)

	clock := time.NewTicker(t.period)
	defer clock.Stop()

	last := time.Now()
	for {
		select {
		case <-t.stop:
			return
		case now, ok := <-clock.C:
			if !ok {
				return
			}
			delta := now.Sub(last)
			last = now
			t.fire(uint64(delta.Milliseconds()))
		}
	}
}

func (t *Ticker) fire(deltaMs uint64) {
	defer func() {
		if r := recover(); r != nil {
			if t.logger != nil {
				t.logger.Warnw("tick handler panicked; continuing", "recover", r)
			}
		}
	}()
	t.handler(deltaMs)
}
