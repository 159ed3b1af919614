package reclaim

import (
	stderrors "errors"
	"sync/atomic"
	"testing"

	rcerrors "github.com/wippyai/reclaim/errors"
)

func TestHandle_UseAfterClose(t *testing.T) {
	mgr := newTestManager()
	defer mgr.Close()

	var released atomic.Int32
	h, err := Acquire(mgr, "a", func() (*testResource, error) {
		return &testResource{released: &released}, nil
	})
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	h.Close()
	h.Close() // idempotent per guard

	uerr := h.Use(func(*testResource) error { return nil })
	if uerr == nil {
		t.Fatal("Expected Use after Close to fail")
	}
	if !stderrors.Is(uerr, &rcerrors.Error{Phase: rcerrors.PhaseAcquire, Kind: rcerrors.KindHandleState}) {
		t.Fatalf("Expected handle-expired error, got %v", uerr)
	}

	// Double Close counted once: the instance is released exactly once.
	mgr.SweepNow()
	if released.Load() != 1 {
		t.Fatalf("Expected one release, got %d", released.Load())
	}
}

func TestHandle_ResourcePanicsAfterClose(t *testing.T) {
	mgr := newTestManager()
	defer mgr.Close()

	var released atomic.Int32
	h, err := Acquire(mgr, "a", func() (*testResource, error) {
		return &testResource{released: &released}, nil
	})
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	h.Close()

	defer func() {
		if recover() == nil {
			t.Fatal("Expected Resource after Close to panic")
		}
	}()
	h.Resource()
}

func TestHandle_Retain(t *testing.T) {
	mgr := newTestManager()
	defer mgr.Close()

	var released atomic.Int32
	h1, err := Acquire(mgr, "a", func() (*testResource, error) {
		return &testResource{released: &released}, nil
	})
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	h2, ok := h1.Retain()
	if !ok {
		t.Fatal("Retain on open handle failed")
	}

	h1.Close()
	mgr.SweepNow()
	if released.Load() != 0 {
		t.Fatal("Released while a retained guard was open")
	}
	if err := h2.Use(func(*testResource) error { return nil }); err != nil {
		t.Fatalf("Retained guard broke: %v", err)
	}

	h2.Close()
	mgr.SweepNow()
	if released.Load() != 1 {
		t.Fatalf("Expected one release after last guard closed, got %d", released.Load())
	}

	if _, ok := h1.Retain(); ok {
		t.Fatal("Retain on closed guard should fail")
	}
}

func TestHandle_UseForwardsError(t *testing.T) {
	mgr := newTestManager()
	defer mgr.Close()

	var released atomic.Int32
	h, err := Acquire(mgr, "a", func() (*testResource, error) {
		return &testResource{released: &released, id: 7}, nil
	})
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer h.Close()

	boom := stderrors.New("io failure")
	if got := h.Use(func(r *testResource) error {
		if r.id != 7 {
			t.Errorf("Expected instance id 7, got %d", r.id)
		}
		return boom
	}); got != boom {
		t.Fatalf("Expected fn error forwarded unchanged, got %v", got)
	}
}
