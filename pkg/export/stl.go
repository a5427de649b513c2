package export

import (
	"errors"
	"fmt"

	"github.com/chazu/cutout/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ErrNoTriangles is returned when there is nothing to write.
var ErrNoTriangles = errors.New("export: no triangles")

// Triangles flattens meshes into sdfx triangles, dropping UVs, normals
// and materials.
func Triangles(meshes []*kernel.Mesh) []*sdf.Triangle3 {
	var n int
	for _, m := range meshes {
		n += m.TriangleCount()
	}
	out := make([]*sdf.Triangle3, 0, n)
	for _, m := range meshes {
		for i := 0; i < m.TriangleCount(); i++ {
			idx := m.Triangle(i)
			var t sdf.Triangle3
			for k := 0; k < 3; k++ {
				p := m.Position(int(idx[k]))
				t[k] = v3.Vec{X: p.X, Y: p.Y, Z: p.Z}
			}
			out = append(out, &t)
		}
	}
	return out
}

// SaveSTL writes meshes as a single binary STL file.
func SaveSTL(path string, meshes []*kernel.Mesh) error {
	tris := Triangles(meshes)
	if len(tris) == 0 {
		return ErrNoTriangles
	}
	if err := render.SaveSTL(path, tris); err != nil {
		return fmt.Errorf("export: save stl %s: %w", path, err)
	}
	return nil
}
