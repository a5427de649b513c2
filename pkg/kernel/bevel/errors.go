package bevel

import (
	"errors"
	"fmt"
)

var (
	// ErrLengthMismatch is returned when two vertex paths of different
	// lengths are stitched together.
	ErrLengthMismatch = errors.New("bevel: paths must have the same length")

	// ErrDegenerateOutline is returned when a miter offset cannot be
	// computed because an outline edge has zero length.
	ErrDegenerateOutline = errors.New("bevel: degenerate outline")

	// ErrInvalidOptions is returned for non-positive thickness or edge
	// divisions.
	ErrInvalidOptions = errors.New("bevel: invalid options")
)

// LengthMismatchError reports the two path lengths that differed.
type LengthMismatchError struct {
	Len1, Len2 int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("bevel: paths must have the same length (%d != %d)", e.Len1, e.Len2)
}

// Unwrap lets errors.Is match ErrLengthMismatch.
func (e *LengthMismatchError) Unwrap() error {
	return ErrLengthMismatch
}

// DegenerateError reports the outline vertex whose miter is undefined.
type DegenerateError struct {
	Vertex int
}

func (e *DegenerateError) Error() string {
	return fmt.Sprintf("bevel: degenerate outline: zero-length edge at vertex %d", e.Vertex)
}

// Unwrap lets errors.Is match ErrDegenerateOutline.
func (e *DegenerateError) Unwrap() error {
	return ErrDegenerateOutline
}
