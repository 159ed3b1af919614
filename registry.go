package reclaim

import (
	"errors"
	"reflect"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	rcerrors "github.com/wippyai/reclaim/errors"
)

// errRegistryRetired signals that the caller raced a teardown of the
// registry it was routed to; the manager retries with a fresh one.
var errRegistryRetired = errors.New("registry retired")

// keyedRegistry maps keys to tracking records for one resource type.
// Registries are created lazily by the manager and retire themselves once
// the last key is reclaimed.
type keyedRegistry[T Releasable] struct {
	mgr     *Manager
	rtype   reflect.Type
	rname   string
	mu      sync.Mutex
	records map[any]*record[T]
	retired bool
}

func newKeyedRegistry[T Releasable](mgr *Manager, rtype reflect.Type) *keyedRegistry[T] {
	return &keyedRegistry[T]{
		mgr:     mgr,
		rtype:   rtype,
		rname:   rtype.String(),
		records: make(map[any]*record[T]),
	}
}

// acquire routes to the key's record, creating it on demand.
func (r *keyedRegistry[T]) acquire(key any, build func() (T, error)) (*Handle[T], error) {
	r.mu.Lock()
	if r.retired {
		r.mu.Unlock()
		return nil, errRegistryRetired
	}

	rec, ok := r.records[key]
	if !ok {
		rec = &record[T]{key: key, reg: r}
	}
	h, err := rec.acquire(build)
	if err != nil {
		// Constructor failure on a fresh key: nothing to track. Retire the
		// registry if it holds nothing else, so it does not linger.
		retire := !ok && len(r.records) == 0 && !r.retired
		if retire {
			r.retired = true
		}
		r.mu.Unlock()
		if retire {
			r.mgr.registryEmptied(r.rtype, r, false)
		}
		return nil, err
	}
	if !ok {
		r.records[key] = rec
	}
	r.mu.Unlock()

	Logger().Debug("handle acquired",
		zap.String("resource", r.rname),
		zap.Any("key", key),
		zap.Bool("new_record", !ok))
	return h, nil
}

// sweep reclaims every record whose handle generation is unreachable and
// reports how many keys remain tracked. A release failure never aborts the
// pass; each is reported once through the manager's error hook.
func (r *keyedRegistry[T]) sweep() int {
	type failure struct {
		key any
		err error
	}

	r.mu.Lock()
	if r.retired {
		r.mu.Unlock()
		return 0
	}

	var failures []failure
	released := 0
	for key, rec := range r.records {
		ok, err := rec.reclaimIfIdle()
		if !ok {
			continue
		}
		delete(r.records, key)
		released++
		if err != nil {
			failures = append(failures, failure{key: key, err: err})
		}
	}
	remaining := len(r.records)
	emptied := remaining == 0
	if emptied {
		r.retired = true
	}
	r.mu.Unlock()

	if released > 0 {
		Logger().Debug("sweep pass",
			zap.String("resource", r.rname),
			zap.Int("released", released),
			zap.Int("remaining", remaining))
	}
	for _, f := range failures {
		r.mgr.reportReleaseError(rcerrors.PhaseSweep, r.rname, f.key, f.err)
	}
	if emptied {
		r.mgr.registryEmptied(r.rtype, r, released > 0)
	}
	return remaining
}

// handleIdle is called by a guard whose Close dropped the liveness count to
// zero. In deterministic mode the record is reclaimed immediately; in the
// default batched mode reclamation waits for the next sweep pass.
func (r *keyedRegistry[T]) handleIdle(rec *record[T]) {
	if !r.mgr.deterministic {
		return
	}

	r.mu.Lock()
	if r.retired || r.records[rec.key] != rec {
		r.mu.Unlock()
		return
	}
	// A concurrent acquire may have bound a new generation already.
	ok, err := rec.reclaimIfIdle()
	if !ok {
		r.mu.Unlock()
		return
	}
	delete(r.records, rec.key)
	remaining := len(r.records)
	emptied := remaining == 0
	if emptied {
		r.retired = true
	}
	r.mu.Unlock()

	if err != nil {
		r.mgr.reportReleaseError(rcerrors.PhaseSweep, r.rname, rec.key, err)
	}
	if emptied {
		r.mgr.registryEmptied(r.rtype, r, true)
	}
}

// drain releases every record regardless of outstanding handles. Used only
// by manager teardown; callers are expected to have closed their handles.
func (r *keyedRegistry[T]) drain() error {
	r.mu.Lock()
	r.retired = true
	recs := make([]*record[T], 0, len(r.records))
	for _, rec := range r.records {
		recs = append(recs, rec)
	}
	r.records = make(map[any]*record[T])
	r.mu.Unlock()

	var err error
	for _, rec := range recs {
		if rerr := rec.releaseInstance(); rerr != nil {
			err = multierr.Append(err, rcerrors.ReleaseFailed(rcerrors.PhaseClose, r.rname, rec.key, rerr))
		}
	}
	return err
}

// size returns the number of keys currently tracked.
func (r *keyedRegistry[T]) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}
