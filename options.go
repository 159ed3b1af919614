package reclaim

import (
	"reflect"
	"time"

	"github.com/benbjohnson/clock"
)

// DefaultSweepInterval is how often the background timer sweeps when no
// interval is configured.
const DefaultSweepInterval = 15 * time.Second

// Option configures a Manager at construction.
type Option func(*Manager)

// WithSweepInterval sets the cadence of the background sweep timer.
// Ignored when a custom Trigger is supplied.
func WithSweepInterval(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.interval = d
		}
	}
}

// WithClock substitutes the clock behind the background sweep timer.
// Intended for tests using a mock clock. Ignored when a custom Trigger is
// supplied.
func WithClock(clk clock.Clock) Option {
	return func(m *Manager) {
		m.clk = clk
	}
}

// WithTrigger replaces the sweep scheduling mechanism entirely. Use
// ManualTrigger() for hosts that drive reclamation through SweepNow only.
func WithTrigger(t Trigger) Option {
	return func(m *Manager) {
		m.trigger = t
	}
}

// WithReleaseErrorHook installs a callback invoked once per failed instance
// release, synchronously on the sweep's goroutine, after the record is torn
// down. The failing instance is forgotten either way.
func WithReleaseErrorHook(fn func(key any, err error)) Option {
	return func(m *Manager) {
		m.onReleaseError = fn
	}
}

// WithEmptyHook installs a callback invoked after a resource type's
// registry reclaimed its last key and was removed from the manager,
// synchronously on the sweep's goroutine.
func WithEmptyHook(fn func(resourceType reflect.Type)) Option {
	return func(m *Manager) {
		m.onEmpty = fn
	}
}

// WithDeterministicRelease makes the zero-th handle Close release the
// instance immediately on the closer's goroutine, instead of marking the
// record idle for the next scheduled sweep. The background timer is not
// armed in this mode.
func WithDeterministicRelease() Option {
	return func(m *Manager) {
		m.deterministic = true
	}
}
