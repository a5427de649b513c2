// Package tessellate turns a design into triangle meshes using an
// extrusion kernel. Each piece is triangulated and extruded in
// declaration order; one mesh is produced per piece.
package tessellate

import (
	"errors"
	"fmt"
	"image"

	"github.com/chazu/cutout/pkg/design"
	"github.com/chazu/cutout/pkg/geom"
	"github.com/chazu/cutout/pkg/kernel"
	"github.com/chazu/cutout/pkg/triangulate"
)

// ErrInvalidDesign is returned when design validation reports errors.
var ErrInvalidDesign = errors.New("tessellate: invalid design")

// Profile triangulates piece p of d and returns the kernel input for it.
// A clockwise outline is reversed first.
func Profile(d *design.Design, p *design.Piece) (*kernel.Profile, error) {
	pts := geom.EnsureCCW(p.Outline)
	res, err := triangulate.Triangulate(pts)
	if err != nil {
		return nil, fmt.Errorf("tessellate: piece %q: %w", p.Name, err)
	}
	prof := kernel.NewProfile(p.Name, pts, res.Triangles)
	prof.Thickness = d.ThicknessOf(p)
	prof.EdgeDivisions = d.EdgeDivisionsOf(p)
	return prof, nil
}

// Tessellate produces one mesh per piece of d. It is read-only and
// never mutates the design.
func Tessellate(d *design.Design, k kernel.Kernel) ([]*kernel.Mesh, error) {
	return TessellateTextured(d, k, nil)
}

// TessellateTextured is Tessellate with per-piece textures, keyed by
// piece name. Pieces without an entry get an untextured drawing
// material. The first failing piece aborts the whole run; no partial
// mesh list is returned.
func TessellateTextured(d *design.Design, k kernel.Kernel, textures map[string]image.Image) ([]*kernel.Mesh, error) {
	if d == nil {
		return nil, nil
	}

	if res := design.Validate(d); !res.OK() {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDesign, res.Errors[0])
	}

	meshes := make([]*kernel.Mesh, 0, len(d.Pieces))
	for _, p := range d.Pieces {
		prof, err := Profile(d, p)
		if err != nil {
			return nil, err
		}
		prof.Texture = textures[p.Name]

		mesh, err := k.Extrude(prof)
		if err != nil {
			return nil, fmt.Errorf("tessellate: %s kernel failed for piece %q: %w", k.Name(), p.Name, err)
		}
		meshes = append(meshes, mesh)
	}

	return meshes, nil
}
