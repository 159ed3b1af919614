package reclaim

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Trigger drives periodic sweep passes on behalf of a Manager.
//
// Arm schedules run to be invoked repeatedly until a pass reports zero
// remaining entries, then stops scheduling until armed again. Arm is
// idempotent and callable from any goroutine; run executes on the trigger's
// own goroutine. Stop permanently cancels future invocations.
//
// The built-in implementations cover the common hosts: a background timer
// (the default) and a manual trigger for hosts that only call SweepNow.
// Custom hosts with their own idle-callback primitive can supply their own
// Trigger via WithTrigger.
type Trigger interface {
	Arm(run func() (remaining int))
	Stop()
}

// timerTrigger sweeps on a fixed interval from a background goroutine.
// The goroutine exits once a pass reports nothing left to track and is
// respawned by the next Arm.
type timerTrigger struct {
	clk      clock.Clock
	interval time.Duration

	mu      sync.Mutex
	armed   bool
	rearm   bool
	stopped bool
	done    chan struct{}
}

func newTimerTrigger(clk clock.Clock, interval time.Duration) *timerTrigger {
	return &timerTrigger{
		clk:      clk,
		interval: interval,
		done:     make(chan struct{}),
	}
}

func (t *timerTrigger) Arm(run func() int) {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	if t.armed {
		// A sweep loop is live. Flag it so a loop that is concurrently
		// deciding to exit on an empty pass takes one more look instead.
		t.rearm = true
		t.mu.Unlock()
		return
	}
	t.armed = true
	t.mu.Unlock()

	go t.loop(run)
}

func (t *timerTrigger) loop(run func() int) {
	ticker := t.clk.Ticker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-t.done:
			return
		case <-ticker.C:
			t.mu.Lock()
			stopped := t.stopped
			t.mu.Unlock()
			if stopped {
				return
			}
			if run() > 0 {
				continue
			}
			t.mu.Lock()
			if t.rearm {
				t.rearm = false
				t.mu.Unlock()
				continue
			}
			t.armed = false
			t.mu.Unlock()
			return
		}
	}
}

func (t *timerTrigger) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	t.stopped = true
	close(t.done)
}

// manualTrigger never schedules anything; reclamation happens only through
// explicit SweepNow calls. For headless hosts without a periodic primitive.
type manualTrigger struct{}

// ManualTrigger returns a Trigger that schedules nothing, leaving all
// reclamation to explicit SweepNow calls.
func ManualTrigger() Trigger { return manualTrigger{} }

func (manualTrigger) Arm(func() int) {}
func (manualTrigger) Stop()          {}
