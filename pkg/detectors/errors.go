package detectors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFitted is returned when scoring is attempted before a
	// successful Fit.
	ErrNotFitted = errors.New("detector not fitted")

	// ErrInvalidParameter is returned when detector configuration fails
	// validation at fit time. Wrapped errors carry the detail.
	ErrInvalidParameter = errors.New("invalid parameter")
)

// DimensionError indicates a feature-count mismatch between the fitted
// model and the samples being scored.
type DimensionError struct {
	Expected int
	Actual   int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d features, got %d", e.Expected, e.Actual)
}
