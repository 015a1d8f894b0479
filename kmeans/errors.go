package kmeans

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameter is returned for invalid build or query parameters.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrNotBuilt is returned when an operation requires Build to have run.
	ErrNotBuilt = errors.New("index not built")

	// ErrAlreadyBuilt is returned when Build is called twice.
	ErrAlreadyBuilt = errors.New("index already built")

	// ErrInvariantViolation is returned when a bounded search terminates
	// without filling its result set. Callers must not request more
	// neighbors than there are indexed points.
	ErrInvariantViolation = errors.New("result set not full after search")
)

// ErrDimensionMismatch indicates a query/dataset dimensionality mismatch.
type ErrDimensionMismatch struct {
	Expected int // Expected dimensions
	Actual   int // Actual dimensions
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}
