package ticker

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestTicker_FiresRepeatedly(t *testing.T) {
	var fires atomic.Int32
	tk := New(10*time.Millisecond, func(deltaMs uint64) {
		fires.Add(1)
	}, nil)

	tk.Start()
	time.Sleep(55 * time.Millisecond)
	tk.Stop()

	if got := fires.Load(); got < 2 {
		t.Fatalf("expected at least 2 fires in 55ms at a 10ms period, got %d", got)
	}
}

func TestTicker_SwallowsPanic(t *testing.T) {
	var fires atomic.Int32
	tk := New(10*time.Millisecond, func(deltaMs uint64) {
		fires.Add(1)
		panic("boom")
	}, nil)

	tk.Start()
	time.Sleep(35 * time.Millisecond)
	tk.Stop()

	if got := fires.Load(); got < 2 {
		t.Fatalf("expected the ticker to keep firing after a panic, got %d fires", got)
	}
}
