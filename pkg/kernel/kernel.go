// Package kernel defines the extrusion kernel interface and the mesh it
// produces. Implementations (bevel, sdfx) turn a triangulated outline
// into a closed solid behind this interface, so the pipeline can swap
// backends without changing the rest of the system.
package kernel

import (
	"errors"
	"image"

	"github.com/chazu/cutout/pkg/geom"
	"github.com/chazu/cutout/pkg/triangulate"
)

// DefaultThickness is the extrusion depth in normalized outline units.
const DefaultThickness = 0.05

// DefaultEdgeDivisions is the number of ring transitions across the
// beveled rim: front ring, back ring and two rings in between.
const DefaultEdgeDivisions = 3

// ErrInvalidProfile is returned for profiles a kernel cannot extrude.
var ErrInvalidProfile = errors.New("kernel: invalid profile")

// Profile is one triangulated outline ready for extrusion.
type Profile struct {
	Name          string
	Points        []geom.Vec2            // counter-clockwise, +y up
	Triangles     []triangulate.Triangle // indices into Points
	Thickness     float64
	EdgeDivisions int
	Texture       image.Image // bound to the front and back faces; may be nil
}

// NewProfile returns a profile with the default thickness and bevel.
func NewProfile(name string, points []geom.Vec2, triangles []triangulate.Triangle) *Profile {
	return &Profile{
		Name:          name,
		Points:        points,
		Triangles:     triangles,
		Thickness:     DefaultThickness,
		EdgeDivisions: DefaultEdgeDivisions,
	}
}

// Kernel is the abstract extrusion kernel interface.
type Kernel interface {
	// Name identifies the backend ("bevel", "sdfx").
	Name() string

	// Extrude builds a closed solid from the profile. It either returns a
	// complete mesh or an error; it never returns a partial mesh.
	Extrude(p *Profile) (*Mesh, error)
}
