// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library. The outline becomes a
// 2D polygon SDF, extruded with rounded edges and meshed with marching
// cubes. It serves as a reference solid for the bevel kernel.
package sdfx

import (
	"fmt"
	"math"
	"sort"

	"github.com/chazu/cutout/pkg/geom"
	"github.com/chazu/cutout/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// DefaultMeshCells controls marching cubes tessellation resolution.
const DefaultMeshCells = 200

// faceNormalZ is the |normal.z| above which a triangle belongs to the
// flat front or back face rather than the rim.
const faceNormalZ = 0.99

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct {
	cells int
}

// New returns a new SdfxKernel with the default resolution.
func New() *SdfxKernel {
	return &SdfxKernel{cells: DefaultMeshCells}
}

// NewWithCells returns a SdfxKernel meshing with the given number of
// marching cubes cells along the longest axis.
func NewWithCells(cells int) *SdfxKernel {
	return &SdfxKernel{cells: cells}
}

// Name returns "sdfx".
func (k *SdfxKernel) Name() string {
	return "sdfx"
}

// Solid builds the SDF for a profile: the outline polygon extruded to
// the profile thickness, centered on z = 0, with edges rounded by a
// quarter of the thickness.
func (k *SdfxKernel) Solid(p *kernel.Profile) (sdf.SDF3, error) {
	if len(p.Points) < 3 {
		return nil, fmt.Errorf("%w: outline has %d points, need at least 3", kernel.ErrInvalidProfile, len(p.Points))
	}
	thickness := p.Thickness
	if thickness == 0 {
		thickness = kernel.DefaultThickness
	}

	s2, err := sdf.Polygon2D(geom.ToV2(p.Points))
	if err != nil {
		return nil, fmt.Errorf("sdfx.Polygon2D: %w", err)
	}
	s3, err := sdf.ExtrudeRounded3D(s2, thickness, thickness/4)
	if err != nil {
		return nil, fmt.Errorf("sdfx.ExtrudeRounded3D: %w", err)
	}
	return s3, nil
}

// Extrude converts the profile to a triangle mesh using marching cubes.
// Triangles whose normal is nearly parallel to z form the drawing group,
// the remainder the edge group. UVs use the same planar projection as
// the bevel kernel.
func (k *SdfxKernel) Extrude(p *kernel.Profile) (*kernel.Mesh, error) {
	s, err := k.Solid(p)
	if err != nil {
		return nil, err
	}

	renderer := render.NewMarchingCubesUniform(k.cells)
	triangles := render.ToTriangles(s, renderer)
	if len(triangles) == 0 {
		return nil, fmt.Errorf("%w: marching cubes produced no triangles for %q", kernel.ErrInvalidProfile, p.Name)
	}

	// Faces first, then the rim, each in marching cubes order.
	sort.SliceStable(triangles, func(i, j int) bool {
		return isFace(triangles[i].Normal()) && !isFace(triangles[j].Normal())
	})

	numVerts := len(triangles) * 3
	m := &kernel.Mesh{
		Vertices:  make([]float32, 0, numVerts*3),
		UVs:       make([]float32, 0, numVerts*2),
		Indices:   make([]uint32, 0, numVerts),
		Materials: []kernel.Material{kernel.DrawingMaterial(p.Texture), kernel.EdgeMaterial()},
		PartName:  p.Name,
	}

	faceCount := 0
	for i, tri := range triangles {
		if isFace(tri.Normal()) {
			faceCount += 3
		}
		for j := 0; j < 3; j++ {
			v := tri[j]
			m.Vertices = append(m.Vertices, float32(v.X), float32(v.Y), float32(v.Z))
			m.UVs = append(m.UVs, float32(v.X+0.5), float32(v.Y+0.5))
			m.Indices = append(m.Indices, uint32(i*3+j))
		}
	}

	m.Groups = []kernel.Group{
		{Start: 0, Count: faceCount, MaterialIndex: kernel.MaterialDrawing},
		{Start: faceCount, Count: len(m.Indices) - faceCount, MaterialIndex: kernel.MaterialEdge},
	}
	m.ComputeNormals()
	return m, nil
}

// isFace reports whether a triangle with normal n lies on the flat
// front or back face.
func isFace(n v3.Vec) bool {
	return math.Abs(n.Z) > faceNormalZ
}

// BoundingBox returns the axis-aligned bounding box of the profile's solid.
func (k *SdfxKernel) BoundingBox(p *kernel.Profile) (min, max [3]float64, err error) {
	s, err := k.Solid(p)
	if err != nil {
		return min, max, err
	}
	bb := s.BoundingBox()
	return vecToArray(bb.Min), vecToArray(bb.Max), nil
}

func vecToArray(v v3.Vec) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}
