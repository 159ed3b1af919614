package reclaim

import (
	"reflect"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wippyai/reclaim/errors"
)

// registryView is the type-erased face of a keyedRegistry, letting the
// manager sweep and tear down registries of different resource types.
type registryView interface {
	sweep() int
	drain() error
	size() int
}

// Manager owns one keyed registry per resource type and drives their
// reclamation. It is an explicit context object: construct one with New,
// inject it into callers, and tear it down with Close. Multiple independent
// managers may coexist in one process.
//
// Manager is safe for concurrent use.
type Manager struct {
	mu         sync.Mutex
	registries map[reflect.Type]registryView
	closed     bool

	trigger       Trigger
	deterministic bool

	onReleaseError func(key any, err error)
	onEmpty        func(resourceType reflect.Type)

	// trigger construction inputs, only read by New
	clk      clock.Clock
	interval time.Duration
}

// New creates a Manager. Without options it sweeps from a background timer
// every DefaultSweepInterval.
func New(opts ...Option) *Manager {
	m := &Manager{
		registries: make(map[reflect.Type]registryView),
		interval:   DefaultSweepInterval,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.trigger == nil {
		clk := m.clk
		if clk == nil {
			clk = clock.New()
		}
		m.trigger = newTimerTrigger(clk, m.interval)
	}
	return m
}

// Acquire returns a handle for the resource identified by (T, key),
// constructing the instance with build on first use. While a prior handle
// for the key is still open, the same instance is forwarded and build is
// not invoked again.
//
// The key must be comparable and non-nil. build must not re-enter the
// manager for the same resource type.
func Acquire[T Releasable](m *Manager, key any, build func() (T, error)) (*Handle[T], error) {
	if build == nil {
		return nil, errors.Misuse(errors.PhaseAcquire, "nil constructor")
	}
	if key == nil {
		return nil, errors.Misuse(errors.PhaseAcquire, "nil key is reserved")
	}
	if !reflect.TypeOf(key).Comparable() {
		return nil, errors.KeyNotComparable(key)
	}

	rtype := reflect.TypeOf((*T)(nil)).Elem()
	for {
		m.mu.Lock()
		if m.closed {
			m.mu.Unlock()
			return nil, errors.ManagerClosed(errors.PhaseAcquire)
		}
		view, ok := m.registries[rtype]
		if !ok {
			view = newKeyedRegistry[T](m, rtype)
			m.registries[rtype] = view
		}
		m.mu.Unlock()

		reg := view.(*keyedRegistry[T])
		h, err := reg.acquire(key, build)
		if err == errRegistryRetired {
			// Raced a teardown of this registry; drop it and route again.
			m.dropRegistry(rtype, view)
			continue
		}
		if err != nil {
			return nil, err
		}

		if !m.deterministic {
			m.trigger.Arm(m.sweepAll)
		}
		return h, nil
	}
}

// SweepNow runs one synchronous sweep pass over every registry on the
// caller's goroutine and returns the number of keys still tracked. It is
// the escape hatch for hosts without a periodic primitive, and is
// idempotent: a second call with no intervening acquire releases nothing.
func (m *Manager) SweepNow() int {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return 0
	}
	m.mu.Unlock()
	return m.sweepAll()
}

// Len returns the number of keys currently tracked across all registries.
func (m *Manager) Len() int {
	m.mu.Lock()
	views := m.snapshotLocked()
	m.mu.Unlock()

	n := 0
	for _, v := range views {
		n += v.size()
	}
	return n
}

// Close stops the sweep scheduler and releases every instance still
// tracked, aggregating release failures into the returned error. All
// handles should be closed before calling this; instances are torn down
// regardless.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	views := m.snapshotLocked()
	m.registries = make(map[reflect.Type]registryView)
	m.mu.Unlock()

	m.trigger.Stop()

	var err error
	for _, v := range views {
		err = multierr.Append(err, v.drain())
	}
	if err != nil {
		Logger().Warn("manager closed with release failures", zap.Error(err))
	}
	return err
}

func (m *Manager) sweepAll() int {
	m.mu.Lock()
	views := m.snapshotLocked()
	m.mu.Unlock()

	total := 0
	for _, v := range views {
		total += v.sweep()
	}
	return total
}

func (m *Manager) snapshotLocked() []registryView {
	views := make([]registryView, 0, len(m.registries))
	for _, v := range m.registries {
		views = append(views, v)
	}
	return views
}

// registryEmptied removes a retired registry from the type map and, when
// the retirement was caused by reclaiming its last key, fires the
// observability hook. Invoked on the sweep's goroutine, after the registry
// released its own lock.
func (m *Manager) registryEmptied(rtype reflect.Type, view registryView, notify bool) {
	m.dropRegistry(rtype, view)
	if notify && m.onEmpty != nil {
		m.onEmpty(rtype)
	}
}

func (m *Manager) dropRegistry(rtype reflect.Type, view registryView) {
	m.mu.Lock()
	if m.registries[rtype] == view {
		delete(m.registries, rtype)
	}
	m.mu.Unlock()
}

// reportReleaseError surfaces one release failure through the hook and
// otherwise swallows it; a failed release never aborts a sweep pass or an
// unrelated acquire.
func (m *Manager) reportReleaseError(phase errors.Phase, rname string, key any, cause error) {
	err := errors.ReleaseFailed(phase, rname, key, cause)
	Logger().Warn("release failed", zap.String("resource", rname), zap.Any("key", key), zap.Error(cause))
	if m.onReleaseError != nil {
		m.onReleaseError(key, err)
	}
}
