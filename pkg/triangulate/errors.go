package triangulate

import (
	"errors"
	"fmt"
)

// ErrTriangulationFailure is returned when no remaining vertex qualifies
// as an ear. The polygon cannot be processed.
var ErrTriangulationFailure = errors.New("triangulate: no valid ear found")

// ErrTooFewPoints is returned for inputs with fewer than three points.
var ErrTooFewPoints = fmt.Errorf("%w: polygon needs at least 3 points", ErrTriangulationFailure)

// FailureError describes the iteration at which ear selection gave up.
type FailureError struct {
	Iteration int // number of triangles emitted before the failure
	Remaining int // vertices still in the arena
}

func (e *FailureError) Error() string {
	return fmt.Sprintf("triangulate: no valid ear found at iteration %d (%d vertices remaining)",
		e.Iteration, e.Remaining)
}

// Unwrap lets errors.Is match ErrTriangulationFailure.
func (e *FailureError) Unwrap() error {
	return ErrTriangulationFailure
}
