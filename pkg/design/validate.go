package design

import (
	"fmt"
	"math"

	"github.com/chazu/cutout/pkg/geom"
)

// pointEpsilon is the distance below which two consecutive outline
// points are considered the same.
const pointEpsilon = 1e-12

// ValidationSeverity indicates whether a validation finding blocks
// tessellation or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks tessellation
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	Piece    string // piece name (empty if design-level)
	Message  string
	Severity ValidationSeverity
}

func (e ValidationError) Error() string {
	if e.Piece == "" {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] piece %q: %s", e.Severity, e.Piece, e.Message)
}

// ValidationResult separates blocking errors from warnings.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// OK reports whether the result contains no blocking errors.
func (r ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

// Validate runs all checks on the design. It is read-only.
func Validate(d *Design) ValidationResult {
	var all []ValidationError
	all = append(all, validateNames(d)...)
	all = append(all, validateSettings(d)...)
	all = append(all, validateOutlines(d)...)

	var result ValidationResult
	for _, e := range all {
		if e.Severity == SeverityWarning {
			result.Warnings = append(result.Warnings, e)
		} else {
			result.Errors = append(result.Errors, e)
		}
	}
	return result
}

// validateNames checks that every piece is named and that names are unique.
func validateNames(d *Design) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]int)
	for i, p := range d.Pieces {
		if p.Name == "" {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("piece %d has no name", i),
				Severity: SeverityError,
			})
			continue
		}
		if first, ok := seen[p.Name]; ok {
			errs = append(errs, ValidationError{
				Piece:    p.Name,
				Message:  fmt.Sprintf("duplicate name (pieces %d and %d)", first, i),
				Severity: SeverityError,
			})
			continue
		}
		seen[p.Name] = i
	}
	return errs
}

// validateSettings checks effective thickness and edge divisions.
func validateSettings(d *Design) []ValidationError {
	var errs []ValidationError
	for _, p := range d.Pieces {
		t := d.ThicknessOf(p)
		if !(t > 0) || math.IsInf(t, 0) {
			errs = append(errs, ValidationError{
				Piece:    p.Name,
				Message:  fmt.Sprintf("thickness must be positive, got %v", t),
				Severity: SeverityError,
			})
		}
		if div := d.EdgeDivisionsOf(p); div < 1 {
			errs = append(errs, ValidationError{
				Piece:    p.Name,
				Message:  fmt.Sprintf("divisions must be at least 1, got %d", div),
				Severity: SeverityError,
			})
		}
	}
	return errs
}

// validateOutlines checks point count, repeated points, area and winding.
func validateOutlines(d *Design) []ValidationError {
	var errs []ValidationError
	for _, p := range d.Pieces {
		n := len(p.Outline)
		if n < 3 {
			errs = append(errs, ValidationError{
				Piece:    p.Name,
				Message:  fmt.Sprintf("outline has %d points, need at least 3", n),
				Severity: SeverityError,
			})
			continue
		}

		for i := range p.Outline {
			next := p.Outline[(i+1)%n]
			if p.Outline[i].Equal(next, pointEpsilon) {
				errs = append(errs, ValidationError{
					Piece:    p.Name,
					Message:  fmt.Sprintf("outline points %d and %d coincide", i, (i+1)%n),
					Severity: SeverityError,
				})
				break
			}
		}

		area := geom.SignedArea(p.Outline)
		switch {
		case math.Abs(area) < pointEpsilon:
			errs = append(errs, ValidationError{
				Piece:    p.Name,
				Message:  "outline encloses no area",
				Severity: SeverityError,
			})
		case area < 0:
			errs = append(errs, ValidationError{
				Piece:    p.Name,
				Message:  "outline is clockwise and will be reversed",
				Severity: SeverityWarning,
			})
		}
	}
	return errs
}
