// Package errors provides structured error types for the reclaim library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). The Error type carries the resource type name and the registry
// key so a single error hook can attribute failures without extra context.
//
// Use the convenience constructors for common patterns:
//
//	err := errors.ConstructorFailed("*sql.DB", "primary", cause)
//	err := errors.ReleaseFailed(errors.PhaseSweep, "*os.File", "/tmp/x", cause)
//
// All errors implement the standard error interface and support errors.Is/As.
// Two *Error values match under errors.Is when Phase and Kind agree, so
// callers can classify without fishing strings:
//
//	if errors.Is(err, &errors.Error{Phase: errors.PhaseAcquire, Kind: errors.KindMisuse}) {
//	    // reject bad input
//	}
package errors
