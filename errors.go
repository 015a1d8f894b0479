package kmtree

import (
	"errors"

	"github.com/hupe1980/kmtree/kmeans"
)

var (
	// ErrInvalidK is returned when k is not positive.
	ErrInvalidK = errors.New("k must be positive")

	// ErrNotBuilt is returned when an operation requires Build to have run.
	ErrNotBuilt = kmeans.ErrNotBuilt

	// ErrAlreadyBuilt is returned when Build is called twice.
	ErrAlreadyBuilt = kmeans.ErrAlreadyBuilt

	// ErrInvalidParameter is returned for invalid build or query parameters.
	ErrInvalidParameter = kmeans.ErrInvalidParameter

	// ErrInvariantViolation is returned when a bounded search terminates
	// without filling its result set.
	ErrInvariantViolation = kmeans.ErrInvariantViolation
)
