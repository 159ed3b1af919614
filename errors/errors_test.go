package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestError_Message(t *testing.T) {
	cause := stderrors.New("disk gone")
	err := ReleaseFailed(PhaseSweep, "*os.File", "/tmp/x", cause)

	msg := err.Error()
	if !strings.Contains(msg, "[sweep]") {
		t.Errorf("Expected phase in message, got %q", msg)
	}
	if !strings.Contains(msg, "release") {
		t.Errorf("Expected kind in message, got %q", msg)
	}
	if !strings.Contains(msg, "*os.File") {
		t.Errorf("Expected resource type in message, got %q", msg)
	}
	if !strings.Contains(msg, "/tmp/x") {
		t.Errorf("Expected key in message, got %q", msg)
	}
	if !strings.Contains(msg, "disk gone") {
		t.Errorf("Expected cause in message, got %q", msg)
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := stderrors.New("boom")
	err := ConstructorFailed("widget", "a", cause)

	if !stderrors.Is(err, cause) {
		t.Error("Expected errors.Is to find the cause")
	}
}

func TestError_Is(t *testing.T) {
	err := Misuse(PhaseAcquire, "nil constructor")

	if !stderrors.Is(err, &Error{Phase: PhaseAcquire, Kind: KindMisuse}) {
		t.Error("Expected match on phase and kind")
	}
	if stderrors.Is(err, &Error{Phase: PhaseSweep, Kind: KindMisuse}) {
		t.Error("Expected mismatch on phase")
	}
	if stderrors.Is(err, &Error{Phase: PhaseAcquire, Kind: KindRelease}) {
		t.Error("Expected mismatch on kind")
	}
}

func TestError_WithoutContext(t *testing.T) {
	err := ManagerClosed(PhaseAcquire)
	msg := err.Error()
	if !strings.Contains(msg, "manager is closed") {
		t.Errorf("Expected detail in message, got %q", msg)
	}
	if strings.Contains(msg, "resource type") {
		t.Errorf("Did not expect resource context, got %q", msg)
	}
}
