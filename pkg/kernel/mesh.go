package kernel

import (
	"fmt"
	"image"

	"gonum.org/v1/gonum/spatial/r3"
)

// Material indices used by the extrusion kernels.
const (
	MaterialDrawing = 0 // textured front and back faces
	MaterialEdge    = 1 // untextured rim
)

// Group is a sub-range of the index buffer rendered with one material.
// Start and Count are measured in indices, not triangles.
type Group struct {
	Start         int `json:"start"`
	Count         int `json:"count"`
	MaterialIndex int `json:"materialIndex"`
}

// Material describes how a group is shaded. Texture is an opaque color
// source supplied by the caller and is never inspected by the kernels.
type Material struct {
	Name      string      `json:"name"`
	Metalness float64     `json:"metalness"`
	Roughness float64     `json:"roughness"`
	Color     uint32      `json:"color"` // 0xRRGGBB, used when Texture is nil
	Texture   image.Image `json:"-"`
}

// DrawingMaterial is the textured material of the flat faces.
func DrawingMaterial(texture image.Image) Material {
	return Material{Name: "drawing", Metalness: 0.5, Roughness: 0.5, Color: 0xffffff, Texture: texture}
}

// EdgeMaterial is the plain material of the beveled rim.
func EdgeMaterial() Material {
	return Material{Name: "edge", Metalness: 0.6, Roughness: 0.3, Color: 0xaaaaaa}
}

// Mesh is a triangle mesh suitable for rendering.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, uvs has 2 floats per vertex,
// indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices  []float32  `json:"vertices"`  // [x0,y0,z0, x1,y1,z1, ...]
	Normals   []float32  `json:"normals"`   // [nx0,ny0,nz0, ...]
	UVs       []float32  `json:"uvs"`       // [u0,v0, u1,v1, ...]
	Indices   []uint32   `json:"indices"`   // [i0,i1,i2, ...] triangles
	Groups    []Group    `json:"groups"`    // ordered index-buffer sub-ranges
	Materials []Material `json:"materials"` // indexed by Group.MaterialIndex
	PartName  string     `json:"partName"`  // which design piece this came from
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Position returns the position of vertex i.
func (m *Mesh) Position(i int) r3.Vec {
	return r3.Vec{
		X: float64(m.Vertices[i*3]),
		Y: float64(m.Vertices[i*3+1]),
		Z: float64(m.Vertices[i*3+2]),
	}
}

// Normal returns the normal of vertex i.
func (m *Mesh) Normal(i int) r3.Vec {
	return r3.Vec{
		X: float64(m.Normals[i*3]),
		Y: float64(m.Normals[i*3+1]),
		Z: float64(m.Normals[i*3+2]),
	}
}

// Triangle returns the vertex indices of triangle i.
func (m *Mesh) Triangle(i int) [3]uint32 {
	return [3]uint32{m.Indices[i*3], m.Indices[i*3+1], m.Indices[i*3+2]}
}

// FaceNormal returns the unnormalized normal of triangle i. Its length is
// twice the triangle's area.
func (m *Mesh) FaceNormal(i int) r3.Vec {
	t := m.Triangle(i)
	a := m.Position(int(t[0]))
	b := m.Position(int(t[1]))
	c := m.Position(int(t[2]))
	return r3.Cross(r3.Sub(b, a), r3.Sub(c, a))
}

// ComputeNormals replaces Normals with smooth vertex normals: each
// vertex receives the sum of the area-weighted normals of the faces
// that use it, normalized. Vertices not used by any face get a zero
// normal.
func (m *Mesh) ComputeNormals() {
	acc := make([]r3.Vec, m.VertexCount())
	for i := 0; i < m.TriangleCount(); i++ {
		n := m.FaceNormal(i)
		for _, vi := range m.Triangle(i) {
			acc[vi] = r3.Add(acc[vi], n)
		}
	}

	m.Normals = make([]float32, 0, len(acc)*3)
	for _, n := range acc {
		if r3.Norm(n) > 0 {
			n = r3.Unit(n)
		}
		m.Normals = append(m.Normals, float32(n.X), float32(n.Y), float32(n.Z))
	}
}

// Bounds returns the axis-aligned bounding box of the vertices.
func (m *Mesh) Bounds() (min, max [3]float64) {
	for i := 0; i < m.VertexCount(); i++ {
		p := m.Position(i)
		c := [3]float64{p.X, p.Y, p.Z}
		for k := 0; k < 3; k++ {
			if i == 0 || c[k] < min[k] {
				min[k] = c[k]
			}
			if i == 0 || c[k] > max[k] {
				max[k] = c[k]
			}
		}
	}
	return min, max
}

// Validate checks the structural invariants every kernel must uphold:
// buffer lengths agree, indices are in range and the groups tile the
// index buffer exactly.
func (m *Mesh) Validate() error {
	if len(m.Vertices)%3 != 0 {
		return fmt.Errorf("mesh %q: vertex buffer length %d not divisible by 3", m.PartName, len(m.Vertices))
	}
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("mesh %q: index buffer length %d not divisible by 3", m.PartName, len(m.Indices))
	}
	if m.Normals != nil && len(m.Normals) != len(m.Vertices) {
		return fmt.Errorf("mesh %q: %d normals for %d vertex floats", m.PartName, len(m.Normals), len(m.Vertices))
	}
	if m.UVs != nil && len(m.UVs)/2 != m.VertexCount() {
		return fmt.Errorf("mesh %q: %d uvs for %d vertices", m.PartName, len(m.UVs)/2, m.VertexCount())
	}
	n := uint32(m.VertexCount())
	for i, idx := range m.Indices {
		if idx >= n {
			return fmt.Errorf("mesh %q: index %d at position %d out of range (%d vertices)", m.PartName, idx, i, n)
		}
	}
	next := 0
	for i, g := range m.Groups {
		if g.Start != next {
			return fmt.Errorf("mesh %q: group %d starts at %d, want %d", m.PartName, i, g.Start, next)
		}
		if g.MaterialIndex < 0 || g.MaterialIndex >= len(m.Materials) {
			return fmt.Errorf("mesh %q: group %d uses unknown material %d", m.PartName, i, g.MaterialIndex)
		}
		next += g.Count
	}
	if len(m.Groups) > 0 && next != len(m.Indices) {
		return fmt.Errorf("mesh %q: groups cover %d of %d indices", m.PartName, next, len(m.Indices))
	}
	return nil
}
