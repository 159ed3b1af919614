package reclaim

import "sync/atomic"

// tracker counts the outstanding guards of one handle generation.
//
// A generation starts at one reference when the first guard is minted and
// ends, permanently, when the count reaches zero. A dead tracker cannot be
// revived: a later acquire for the same key starts a new generation (with a
// new tracker) bound to the still-live instance, so "became unreachable" is
// a one-shot signal per generation.
type tracker struct {
	refs atomic.Int32
}

func newTracker() *tracker {
	t := &tracker{}
	t.refs.Store(1)
	return t
}

// retain adds a reference. It fails once the count has reached zero,
// because the generation is then already observable as unreachable.
func (t *tracker) retain() bool {
	for {
		n := t.refs.Load()
		if n == 0 {
			return false
		}
		if t.refs.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

// release drops one reference and reports whether this call ended the
// generation. At most one caller ever observes true.
func (t *tracker) release() bool {
	n := t.refs.Add(-1)
	if n < 0 {
		panic("reclaim: handle released more times than retained")
	}
	return n == 0
}

// unreachable reports whether no guard references remain.
func (t *tracker) unreachable() bool {
	return t.refs.Load() == 0
}
