package reclaim

import (
	"sync/atomic"

	"github.com/wippyai/reclaim/errors"
)

// Releasable is the capability a tracked resource must provide. Release is
// called at most once per instance, during a sweep pass or manager teardown,
// after the last handle reference is gone. Release runs while the key's
// registry is locked and must not re-enter the manager for the same
// resource type.
type Releasable interface {
	Release() error
}

// Handle is the forwarding object returned in place of the real resource.
// It carries no resource state of its own; callers reach the instance only
// through Use or Resource while the handle is open.
//
// Each call to Acquire mints a new guard, but all guards issued for a live
// key forward to the same instance and share one liveness count. Closing a
// guard relinquishes exactly one reference; when the count reaches zero the
// instance becomes reclaim-eligible and is released on the next sweep (or
// immediately, with WithDeterministicRelease).
//
// A Handle must be closed exactly once by the caller that acquired it,
// typically with defer. Close is idempotent per guard.
type Handle[T Releasable] struct {
	rec    *record[T]
	trk    *tracker
	closed atomic.Bool
}

// Use invokes fn with the underlying instance. It fails if the handle was
// closed or the instance was torn down by manager Close. The instance stays
// alive for the duration of fn because this guard still holds a reference.
func (h *Handle[T]) Use(fn func(T) error) error {
	if h.closed.Load() || h.rec.gone.Load() {
		return errors.HandleExpired(h.rec.reg.rname)
	}
	return fn(h.rec.instance)
}

// Resource returns the underlying instance. It panics if the handle was
// closed, since the instance may already have been released.
//
// The returned value must not be retained beyond the life of the handle;
// doing so defeats liveness tracking.
func (h *Handle[T]) Resource() T {
	if h.closed.Load() || h.rec.gone.Load() {
		panic(errors.HandleExpired(h.rec.reg.rname))
	}
	return h.rec.instance
}

// Retain mints an additional guard sharing this handle's liveness count,
// for handing the resource to another goroutine with its own Close
// obligation. It fails once this guard is closed.
func (h *Handle[T]) Retain() (*Handle[T], bool) {
	if h.closed.Load() {
		return nil, false
	}
	if !h.trk.retain() {
		return nil, false
	}
	return &Handle[T]{rec: h.rec, trk: h.trk}, true
}

// Close relinquishes this guard's reference. Safe to call repeatedly on the
// same guard; only the first call counts.
func (h *Handle[T]) Close() {
	if !h.closed.CompareAndSwap(false, true) {
		return
	}
	if h.trk.release() {
		h.rec.reg.handleIdle(h.rec)
	}
}
