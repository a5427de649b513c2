// Package bevel implements the kernel.Kernel interface by lofting a
// triangulated outline into a closed solid: a flat textured front face,
// a flat back face, and a rounded rim built from rings of vertices
// offset along each outline vertex's miter direction.
package bevel

import (
	"fmt"
	"math"

	"github.com/chazu/cutout/pkg/geom"
	"github.com/chazu/cutout/pkg/kernel"
	"github.com/chazu/cutout/pkg/triangulate"
)

// Compile-time interface check.
var _ kernel.Kernel = (*Kernel)(nil)

// collinearEpsilon is the |sin| below which two outline edges are
// treated as parallel and the bisector is not used.
const collinearEpsilon = 1e-9

// Options control the shape of the extruded solid.
type Options struct {
	Thickness     float64 // distance between front and back faces
	EdgeDivisions int     // ring transitions across the rim; rings = EdgeDivisions-1
}

// DefaultOptions returns the kernel package defaults.
func DefaultOptions() Options {
	return Options{
		Thickness:     kernel.DefaultThickness,
		EdgeDivisions: kernel.DefaultEdgeDivisions,
	}
}

func (o Options) validate() error {
	if !(o.Thickness > 0) || math.IsInf(o.Thickness, 0) {
		return fmt.Errorf("%w: thickness must be positive, got %v", ErrInvalidOptions, o.Thickness)
	}
	if o.EdgeDivisions < 1 {
		return fmt.Errorf("%w: edge divisions must be at least 1, got %d", ErrInvalidOptions, o.EdgeDivisions)
	}
	return nil
}

// Kernel implements kernel.Kernel with the beveled extrusion.
type Kernel struct{}

// New returns a new bevel Kernel.
func New() *Kernel {
	return &Kernel{}
}

// Name returns "bevel".
func (k *Kernel) Name() string {
	return "bevel"
}

// Extrude builds the beveled solid for p. Zero thickness or edge
// divisions fall back to the defaults. The profile's texture is bound
// to the drawing material only.
func (k *Kernel) Extrude(p *kernel.Profile) (*kernel.Mesh, error) {
	opts := DefaultOptions()
	if p.Thickness != 0 {
		opts.Thickness = p.Thickness
	}
	if p.EdgeDivisions != 0 {
		opts.EdgeDivisions = p.EdgeDivisions
	}

	m, err := Build(p.Points, p.Triangles, opts)
	if err != nil {
		return nil, err
	}
	m.PartName = p.Name
	m.Materials[kernel.MaterialDrawing].Texture = p.Texture
	return m, nil
}

// Build assembles the mesh for an outline and its triangulation.
//
// Vertex layout, for N outline points and D edge divisions:
//
//	[0, N)             front face, z = -thickness/2
//	[N, 2N)            back face,  z = +thickness/2
//	[2N + iN, 3N + iN) rim ring i, for i in [0, D-1)
//
// Index layout: front triangles (reversed winding), back triangles,
// then the rim strips, front ring to back ring. Group 0 covers the two
// faces, group 1 the rim.
func Build(points []geom.Vec2, triangles []triangulate.Triangle, opts Options) (*kernel.Mesh, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	n := len(points)
	if n < 3 {
		return nil, fmt.Errorf("%w: outline has %d points, need at least 3", kernel.ErrInvalidProfile, n)
	}
	for i, t := range triangles {
		for _, idx := range t {
			if idx < 0 || idx >= n {
				return nil, fmt.Errorf("%w: triangle %d references point %d of %d", kernel.ErrInvalidProfile, i, idx, n)
			}
		}
	}

	offsets := make([]geom.Vec2, n)
	for j := range points {
		o, err := MiterOffset(points, j)
		if err != nil {
			return nil, err
		}
		offsets[j] = o
	}

	rings := opts.EdgeDivisions - 1
	half := opts.Thickness / 2
	numVerts := n * (2 + rings)

	m := &kernel.Mesh{
		Vertices:  make([]float32, 0, numVerts*3),
		UVs:       make([]float32, 0, numVerts*2),
		Materials: []kernel.Material{kernel.DrawingMaterial(nil), kernel.EdgeMaterial()},
	}

	front := make([]uint32, n)
	back := make([]uint32, n)
	for j := range points {
		front[j] = uint32(j)
		back[j] = uint32(j + n)
	}

	for _, p := range points {
		m.Vertices = append(m.Vertices, float32(p.X), float32(p.Y), float32(-half))
	}
	for _, p := range points {
		m.Vertices = append(m.Vertices, float32(p.X), float32(p.Y), float32(half))
	}

	paths := [][]uint32{front}
	for i := 0; i < rings; i++ {
		phase := math.Pi / float64(opts.EdgeDivisions) * float64(i+1)
		ovalX, ovalY := Oval(half, opts.Thickness/4, phase)

		path := make([]uint32, n)
		for j, c := range points {
			ot := offsets[j].Multiply(ovalY)
			m.Vertices = append(m.Vertices, float32(c.X+ot.X), float32(c.Y+ot.Y), float32(-ovalX))
			path[j] = uint32(2*n + i*n + j)
		}
		paths = append(paths, path)
	}
	paths = append(paths, back)

	for i := 0; i < 2+rings; i++ {
		for _, p := range points {
			m.UVs = append(m.UVs, float32(p.X+0.5), float32(p.Y+0.5))
		}
	}

	m.Indices = make([]uint32, 0, len(triangles)*6+n*opts.EdgeDivisions*6)
	for _, t := range triangles {
		m.Indices = append(m.Indices, uint32(t[0]), uint32(t[2]), uint32(t[1]))
	}
	for _, t := range triangles {
		m.Indices = append(m.Indices, uint32(t[0]+n), uint32(t[1]+n), uint32(t[2]+n))
	}
	faceCount := len(m.Indices)

	for i := 0; i+1 < len(paths); i++ {
		tris, err := StitchPaths(paths[i], paths[i+1])
		if err != nil {
			return nil, err
		}
		for _, t := range tris {
			m.Indices = append(m.Indices, t[0], t[1], t[2])
		}
	}

	m.Groups = []kernel.Group{
		{Start: 0, Count: faceCount, MaterialIndex: kernel.MaterialDrawing},
		{Start: faceCount, Count: len(m.Indices) - faceCount, MaterialIndex: kernel.MaterialEdge},
	}

	m.ComputeNormals()
	return m, nil
}

// Oval returns the point at phase on an axis-aligned ellipse with
// half-width a and half-height b: (a cos phase, b sin phase).
func Oval(a, b, phase float64) (x, y float64) {
	return a * math.Cos(phase), b * math.Sin(phase)
}

// MiterOffset returns the unit direction in which outline vertex j is
// pushed outward when building the rim. It is the bisector of the two
// adjacent edges, flipped by the sign of their cross product so that it
// points away from the interior of a counter-clockwise outline.
//
// Parallel edges have no usable bisector: a straight run uses the edge
// normal, a spike points away from its two arms. A zero-length edge is
// an error.
func MiterOffset(points []geom.Vec2, j int) (geom.Vec2, error) {
	n := len(points)
	p := points[(j+n-1)%n]
	c := points[j]
	nx := points[(j+1)%n]

	vCP := p.Sub(c)
	vCN := nx.Sub(c)
	if vCP.IsZero() || vCN.IsZero() {
		return geom.Vec2{}, &DegenerateError{Vertex: j}
	}
	vCP = vCP.Normalize()
	vCN = vCN.Normalize()

	sin := vCP.Cross(vCN)
	if math.Abs(sin) < collinearEpsilon {
		if vCP.Dot(vCN) < 0 {
			d := nx.Sub(p).Normalize()
			return geom.V(d.Y, -d.X), nil
		}
		return vCP.Add(vCN).Normalize().Multiply(-1), nil
	}
	return vCP.Add(vCN).Normalize().Multiply(math.Copysign(1, sin)), nil
}

// StitchPaths joins two closed vertex paths of equal length with a
// strip of quads, each split into two triangles. For outward-facing
// triangles path1 must precede path2 along the extrusion axis.
func StitchPaths(path1, path2 []uint32) ([][3]uint32, error) {
	if len(path1) != len(path2) {
		return nil, &LengthMismatchError{Len1: len(path1), Len2: len(path2)}
	}
	n := len(path1)
	tris := make([][3]uint32, 0, n*2)
	for i := 0; i < n; i++ {
		p11 := path1[i]
		p12 := path1[(i+1)%n]
		p21 := path2[i]
		p22 := path2[(i+1)%n]
		tris = append(tris, [3]uint32{p11, p12, p22}, [3]uint32{p11, p22, p21})
	}
	return tris, nil
}
