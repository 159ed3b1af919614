// Package reclaim provides cooperative reclamation of expensive resources.
//
// Instead of relying on finalizers, callers receive a forwarding Handle in
// place of the real resource. Handles carry an explicit liveness count:
// every Acquire (and Retain) adds a reference, every Close drops one. Once
// the last reference to a key's handle is gone, the instance is released
// during a deferred sweep pass and a later acquire constructs it afresh.
//
// # Architecture Overview
//
// The library is organized leaf to root:
//
//	reclaim/             Root package: Manager, Acquire, Handle, options
//	├── liveness.go      Per-generation reference counting (one-shot)
//	├── factory.go       Per-key record: construct once, reclaim when idle
//	├── registry.go      Key → record registry for one resource type
//	├── scheduler.go     Trigger abstraction driving periodic sweeps
//	├── manager.go       Type → registry map, hooks, teardown
//	└── errors/          Structured error types
//
// # Quick Start
//
//	mgr := reclaim.New(reclaim.WithSweepInterval(30 * time.Second))
//	defer mgr.Close()
//
//	h, err := reclaim.Acquire(mgr, "index.db", openIndex)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer h.Close()
//
//	err = h.Use(func(idx *Index) error {
//	    return idx.Lookup(q)
//	})
//
// While any handle for "index.db" remains open, further Acquire calls for
// that key forward to the same instance and the constructor does not run
// again. After the last handle is closed, the instance is released by the
// background sweep; hosts without a usable timer can construct the manager
// with reclaim.WithTrigger(reclaim.ManualTrigger()) and call SweepNow.
//
// # Guarantees
//
// Reclamation is best-effort and eventually consistent, never real-time.
// At most one instance exists per (type, key) while its handle is live; a
// handle closed at the exact moment of a sweep may, in rare interleavings,
// be followed by an acquire that constructs a second instance for the key.
// That duplicate is a fresh, correctly tracked instance, not a leak.
//
// There is no way to force-release an instance while handles to it remain
// open: drop every handle and wait for a sweep, or call SweepNow.
//
// # Thread Safety
//
// Manager and Handle are safe for concurrent use. A Handle must be closed
// exactly once by each acquirer; use Retain to hand a resource to another
// goroutine with its own Close obligation.
package reclaim
