package reclaim

import (
	"fmt"
	"sync/atomic"

	"github.com/wippyai/reclaim/errors"
)

// record binds one key to its instance and, while one exists, the liveness
// tracker of the currently issued handle generation.
//
// Methods are not self-synchronizing: the owning registry serializes all
// access under its mutex.
type record[T Releasable] struct {
	key      any
	reg      *keyedRegistry[T]
	instance T
	built    bool
	trk      *tracker // nil until the first handle generation is issued
	gone     atomic.Bool
}

// acquire returns a guard for the record's instance, constructing the
// instance on first use. A constructor failure leaves no partial state.
func (rec *record[T]) acquire(build func() (T, error)) (*Handle[T], error) {
	if !rec.built {
		inst, err := build()
		if err != nil {
			return nil, errors.ConstructorFailed(rec.reg.rname, rec.key, err)
		}
		rec.instance = inst
		rec.built = true
	}

	// Reuse the live generation when one is still reachable. A failed
	// retain means the old generation already hit zero; the instance is
	// still live, so bind a fresh generation to it.
	if rec.trk != nil && rec.trk.retain() {
		return &Handle[T]{rec: rec, trk: rec.trk}, nil
	}
	rec.trk = newTracker()
	return &Handle[T]{rec: rec, trk: rec.trk}, nil
}

// reclaimIfIdle releases the instance if no handle generation is reachable.
// The instance is forgotten regardless of release success, so a poisoned
// instance is abandoned rather than retried.
func (rec *record[T]) reclaimIfIdle() (bool, error) {
	if rec.trk != nil && !rec.trk.unreachable() {
		return false, nil
	}
	err := rec.releaseInstance()
	return true, err
}

func (rec *record[T]) releaseInstance() (err error) {
	rec.gone.Store(true)
	inst := rec.instance
	var zero T
	rec.instance = zero
	rec.built = false
	rec.trk = nil

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("release panicked: %v", r)
		}
	}()
	return inst.Release()
}
