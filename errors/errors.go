package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in the resource life-cycle the error occurred
type Phase string

const (
	PhaseAcquire Phase = "acquire" // handle acquisition
	PhaseSweep   Phase = "sweep"   // background reclamation pass
	PhaseClose   Phase = "close"   // manager teardown
)

// Kind categorizes the error
type Kind string

const (
	KindConstructor Kind = "constructor"    // caller-supplied constructor failed
	KindRelease     Kind = "release"        // instance release failed
	KindMisuse      Kind = "misuse"         // invalid key, constructor or handle use
	KindClosed      Kind = "closed"         // operation on a closed manager or handle
	KindHandleState Kind = "handle_expired" // handle used after its liveness ended
)

// Error is the structured error type used throughout the library
type Error struct {
	Key      any
	Cause    error
	Phase    Phase
	Kind     Kind
	Resource string
	Detail   string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Resource != "" {
		b.WriteString(": resource type ")
		b.WriteString(e.Resource)
	}

	if e.Key != nil {
		if e.Resource != "" {
			b.WriteString(", key ")
		} else {
			b.WriteString(": key ")
		}
		fmt.Fprintf(&b, "%v", e.Key)
	}

	if e.Detail != "" {
		if e.Resource != "" || e.Key != nil {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Convenience constructors for common error patterns

// ConstructorFailed wraps a constructor callback failure during acquire
func ConstructorFailed(resource string, key any, cause error) *Error {
	return &Error{
		Phase:    PhaseAcquire,
		Kind:     KindConstructor,
		Resource: resource,
		Key:      key,
		Detail:   "constructor failed",
		Cause:    cause,
	}
}

// ReleaseFailed wraps an instance release failure during a sweep
func ReleaseFailed(phase Phase, resource string, key any, cause error) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindRelease,
		Resource: resource,
		Key:      key,
		Detail:   "release failed",
		Cause:    cause,
	}
}

// Misuse creates a misuse error for invalid caller input
func Misuse(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindMisuse,
		Detail: detail,
	}
}

// KeyNotComparable creates a misuse error for keys that cannot index a registry
func KeyNotComparable(key any) *Error {
	return &Error{
		Phase:  PhaseAcquire,
		Kind:   KindMisuse,
		Detail: fmt.Sprintf("key of type %T is not comparable", key),
	}
}

// ManagerClosed creates an error for operations on a closed manager
func ManagerClosed(phase Phase) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindClosed,
		Detail: "manager is closed",
	}
}

// HandleExpired creates an error for use of a handle whose liveness ended
func HandleExpired(resource string) *Error {
	return &Error{
		Phase:    PhaseAcquire,
		Kind:     KindHandleState,
		Resource: resource,
		Detail:   "handle is closed or its instance was reclaimed",
	}
}
