// Package design defines the data structure produced by script
// evaluation: an ordered set of named flat pieces, each an outline
// polygon with its own extrusion settings.
package design

import (
	"fmt"

	"github.com/chazu/cutout/pkg/geom"
	"github.com/chazu/cutout/pkg/kernel"
)

// Defaults contains design-wide settings applied to pieces that leave
// them unset.
type Defaults struct {
	Thickness     float64 `json:"thickness"`
	EdgeDivisions int     `json:"edge_divisions"`
}

// Piece is one flat cut-out shape.
type Piece struct {
	Name          string      `json:"name"`
	Outline       []geom.Vec2 `json:"outline"`
	Thickness     float64     `json:"thickness,omitempty"`      // zero means Defaults.Thickness
	EdgeDivisions int         `json:"edge_divisions,omitempty"` // zero means Defaults.EdgeDivisions
}

// Design is the top-level structure produced by Lisp evaluation.
// It is never mutated after evaluation returns; each evaluation produces
// a new design.
type Design struct {
	Pieces    []*Piece       `json:"pieces"`
	NameIndex map[string]int `json:"name_index"`
	Defaults  Defaults       `json:"defaults"`
}

// New creates an empty Design with default settings.
func New() *Design {
	return &Design{
		NameIndex: make(map[string]int),
		Defaults: Defaults{
			Thickness:     kernel.DefaultThickness,
			EdgeDivisions: kernel.DefaultEdgeDivisions,
		},
	}
}

// AddPiece appends a piece. It does not check for duplicate names; a
// later piece shadows an earlier one in the name index and Validate
// reports the clash.
func (d *Design) AddPiece(p *Piece) {
	d.Pieces = append(d.Pieces, p)
	if p.Name != "" {
		d.NameIndex[p.Name] = len(d.Pieces) - 1
	}
}

// Lookup returns the piece with the given name, or nil.
func (d *Design) Lookup(name string) *Piece {
	i, ok := d.NameIndex[name]
	if !ok {
		return nil
	}
	return d.Pieces[i]
}

// MustLookup returns the piece with the given name, or panics.
func (d *Design) MustLookup(name string) *Piece {
	p := d.Lookup(name)
	if p == nil {
		panic(fmt.Sprintf("design: no piece named %q", name))
	}
	return p
}

// PieceCount returns the number of pieces.
func (d *Design) PieceCount() int {
	return len(d.Pieces)
}

// Names returns piece names in declaration order.
func (d *Design) Names() []string {
	names := make([]string, len(d.Pieces))
	for i, p := range d.Pieces {
		names[i] = p.Name
	}
	return names
}

// ThicknessOf returns the effective thickness of p.
func (d *Design) ThicknessOf(p *Piece) float64 {
	if p.Thickness != 0 {
		return p.Thickness
	}
	return d.Defaults.Thickness
}

// EdgeDivisionsOf returns the effective edge division count of p.
func (d *Design) EdgeDivisionsOf(p *Piece) int {
	if p.EdgeDivisions != 0 {
		return p.EdgeDivisions
	}
	return d.Defaults.EdgeDivisions
}
