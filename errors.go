package spsolve

import (
	"errors"
	"fmt"
)

// Every message is prefixed with "spsolve:". Match with errors.Is; the typed
// errors below carry the indices needed for circuit diagnostics.
var (
	// ErrAllocation is returned for a non-positive size or a failed allocation.
	ErrAllocation = errors.New("spsolve: invalid size or allocation failure")

	// ErrSingular means no usable pivot exists at some step.
	ErrSingular = errors.New("spsolve: matrix is singular")

	// ErrNeedsReorder means the cached pivot order became numerically unstable.
	// Recover with OrderAndFactor.
	ErrNeedsReorder = errors.New("spsolve: pivot order unstable, reorder needed")

	// ErrNotFactored is returned by solves and estimates on an unfactored matrix.
	ErrNotFactored = errors.New("spsolve: matrix is not factored")

	// ErrFactored is returned by operations that need the original values.
	ErrFactored = errors.New("spsolve: matrix is already factored")

	ErrIndexOutOfRange   = errors.New("spsolve: index out of range")
	ErrNoElement         = errors.New("spsolve: element does not exist")
	ErrDimensionMismatch = errors.New("spsolve: vector length does not match matrix")
	ErrComplex           = errors.New("spsolve: operation requires a real matrix")
	ErrNotComplex        = errors.New("spsolve: operation requires a complex matrix")
)

// SingularError reports the step and the external row and column at which
// elimination ran out of usable pivots.
type SingularError struct {
	Step int64
	Row  int64
	Col  int64
}

func (e *SingularError) Error() string {
	return fmt.Sprintf("spsolve: matrix is singular at step %d (row %d, col %d)", e.Step, e.Row, e.Col)
}

func (e *SingularError) Unwrap() error { return ErrSingular }

// NeedsReorderError reports where a reused pivot failed the threshold test.
// Steps before Step are eliminated and remain valid.
type NeedsReorderError struct {
	Step int64
	Row  int64
	Col  int64
}

func (e *NeedsReorderError) Error() string {
	return fmt.Sprintf("spsolve: pivot at step %d (row %d, col %d) is too small, reorder needed", e.Step, e.Row, e.Col)
}

func (e *NeedsReorderError) Unwrap() error { return ErrNeedsReorder }
