package reclaim

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
)

// advanceUntil steps the mock clock one sweep interval at a time until cond
// holds or the deadline passes. The sweep loop runs on its own goroutine,
// so ticks and assertions need a real-time grace window.
func advanceUntil(t *testing.T, clk *clock.Mock, interval time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		clk.Add(interval)
		time.Sleep(5 * time.Millisecond)
		if cond() {
			return
		}
	}
	t.Fatal("condition not reached before deadline")
}

func TestTimerTrigger_SweepsAndStops(t *testing.T) {
	clk := clock.NewMock()
	interval := time.Second
	mgr := New(WithClock(clk), WithSweepInterval(interval))
	defer mgr.Close()

	var released atomic.Int32
	h, err := Acquire(mgr, "a", func() (*testResource, error) {
		return &testResource{released: &released}, nil
	})
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	// Held handle: passes run but release nothing.
	advanceUntil(t, clk, interval, func() bool { return true })
	if released.Load() != 0 {
		t.Fatal("Timer sweep released a held instance")
	}

	h.Close()
	advanceUntil(t, clk, interval, func() bool { return released.Load() == 1 })

	// With nothing tracked the loop deregisters itself.
	trg := mgr.trigger.(*timerTrigger)
	advanceUntil(t, clk, interval, func() bool {
		trg.mu.Lock()
		defer trg.mu.Unlock()
		return !trg.armed
	})
}

func TestTimerTrigger_RearmsOnNextAcquire(t *testing.T) {
	clk := clock.NewMock()
	interval := time.Second
	mgr := New(WithClock(clk), WithSweepInterval(interval))
	defer mgr.Close()

	var released atomic.Int32
	build := func() (*testResource, error) {
		return &testResource{released: &released}, nil
	}

	h, err := Acquire(mgr, "a", build)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	h.Close()
	advanceUntil(t, clk, interval, func() bool { return released.Load() == 1 })

	// The scheduler self-deregistered; a new acquire must arm it again.
	h2, err := Acquire(mgr, "a", build)
	if err != nil {
		t.Fatalf("Re-acquire failed: %v", err)
	}
	h2.Close()
	advanceUntil(t, clk, interval, func() bool { return released.Load() == 2 })
}

func TestTimerTrigger_StopPreventsFurtherSweeps(t *testing.T) {
	clk := clock.NewMock()
	interval := time.Second
	trg := newTimerTrigger(clk, interval)

	var runs atomic.Int32
	trg.Arm(func() int {
		runs.Add(1)
		return 1 // always something left, loop would run forever
	})

	advanceUntil(t, clk, interval, func() bool { return runs.Load() >= 1 })
	trg.Stop()
	time.Sleep(10 * time.Millisecond)

	before := runs.Load()
	clk.Add(interval)
	clk.Add(interval)
	time.Sleep(10 * time.Millisecond)
	if runs.Load() != before {
		t.Fatal("Stopped trigger kept sweeping")
	}

	// Arm after Stop is a no-op.
	trg.Arm(func() int { runs.Add(100); return 0 })
	clk.Add(interval)
	time.Sleep(10 * time.Millisecond)
	if runs.Load() != before {
		t.Fatal("Arm after Stop scheduled work")
	}
}

func TestTimerTrigger_ArmIdempotent(t *testing.T) {
	clk := clock.NewMock()
	trg := newTimerTrigger(clk, time.Second)

	var runs atomic.Int32
	run := func() int { runs.Add(1); return 1 }
	trg.Arm(run)
	trg.Arm(run)
	trg.Arm(run)

	advanceUntil(t, clk, time.Second, func() bool { return runs.Load() >= 2 })

	// One loop only: each tick produces one run, not three.
	ticks := runs.Load()
	clk.Add(time.Second)
	time.Sleep(10 * time.Millisecond)
	if got := runs.Load(); got > ticks+1 {
		t.Fatalf("Expected a single sweep loop, got %d runs for one tick", got-ticks)
	}
	trg.Stop()
}
