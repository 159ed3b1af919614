package reclaim

import "testing"

func TestTracker_RetainRelease(t *testing.T) {
	trk := newTracker()

	if trk.unreachable() {
		t.Fatal("fresh tracker should be reachable")
	}
	if !trk.retain() {
		t.Fatal("retain on live tracker failed")
	}
	if trk.release() {
		t.Fatal("release with one reference left should not end the generation")
	}
	if !trk.release() {
		t.Fatal("final release should end the generation")
	}
	if !trk.unreachable() {
		t.Fatal("tracker should be unreachable after final release")
	}
}

func TestTracker_NoRevival(t *testing.T) {
	trk := newTracker()
	trk.release()

	// The unreachable signal is one-shot: a dead generation stays dead.
	if trk.retain() {
		t.Fatal("retain on dead tracker should fail")
	}
	if !trk.unreachable() {
		t.Fatal("dead tracker should stay unreachable")
	}
}

func TestTracker_OverReleasePanics(t *testing.T) {
	trk := newTracker()
	trk.release()

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on over-release")
		}
	}()
	trk.release()
}
