// Package triangulate decomposes a simple polygon into triangles by
// greedy ear selection. Among all valid ears the one whose interior
// angle is closest to 60 degrees is clipped first, which keeps the
// resulting triangles close to equilateral.
package triangulate

import (
	"math"

	"github.com/chazu/cutout/pkg/geom"
)

// targetAngle is the interior angle the ear heuristic aims for.
const targetAngle = math.Pi / 3

// Triangle holds three indices into the original point slice. The order
// follows the polygon's winding: counter-clockwise input yields
// counter-clockwise triangles.
type Triangle [3]int

// Result is the output of Triangulate.
type Result struct {
	Triangles []Triangle `json:"triangles"`
}

// candidate is the best ear found so far during a scan of the arena.
type candidate struct {
	diff     float64 // |angle - targetAngle|
	pos      int     // position in the arena
	triangle Triangle
}

// arena tracks the vertices that have not been clipped yet, by their
// original index. Removal is positional; indices stored in the arena
// never change.
type arena struct {
	indices []int
}

func newArena(n int) *arena {
	a := &arena{indices: make([]int, n)}
	for i := range a.indices {
		a.indices[i] = i
	}
	return a
}

func (a *arena) len() int { return len(a.indices) }

// neighbors returns the original indices of the previous, current and
// next vertices around position pos, wrapping cyclically.
func (a *arena) neighbors(pos int) (prev, cur, next int) {
	n := len(a.indices)
	return a.indices[(pos+n-1)%n], a.indices[pos], a.indices[(pos+1)%n]
}

func (a *arena) remove(pos int) {
	a.indices = append(a.indices[:pos], a.indices[pos+1:]...)
}

// Triangulate returns exactly len(points)-2 triangles covering the
// polygon. The polygon must be simple and wound counter-clockwise with
// +y up. When no ear can be found the whole run fails with an error
// wrapping ErrTriangulationFailure; no partial result is returned.
func Triangulate(points []geom.Vec2) (*Result, error) {
	if len(points) < 3 {
		return nil, ErrTooFewPoints
	}

	ar := newArena(len(points))
	triangles := make([]Triangle, 0, len(points)-2)

	for ar.len() > 2 {
		best, ok := bestEar(points, ar)
		if !ok {
			return nil, &FailureError{Iteration: len(triangles), Remaining: ar.len()}
		}
		ar.remove(best.pos)
		triangles = append(triangles, best.triangle)
	}

	return &Result{Triangles: triangles}, nil
}

// bestEar scans every vertex in the arena and returns the valid ear whose
// interior angle is closest to targetAngle. Ties keep the earliest
// position. ok is false when no vertex qualifies.
func bestEar(points []geom.Vec2, ar *arena) (best candidate, ok bool) {
	best.diff = math.Inf(1)

	for pos := 0; pos < ar.len(); pos++ {
		iP, iC, iN := ar.neighbors(pos)
		pP, pC, pN := points[iP], points[iC], points[iN]

		vCP := pP.Sub(pC)
		vCN := pN.Sub(pC)
		if vCP.IsZero() || vCN.IsZero() {
			continue
		}

		angle := InteriorAngle(vCN, vCP)
		if angle >= math.Pi {
			continue
		}
		diff := math.Abs(angle - targetAngle)
		if diff >= best.diff {
			continue
		}
		if containsOther(points, ar, iP, iC, iN) {
			continue
		}

		best = candidate{diff: diff, pos: pos, triangle: Triangle{iP, iC, iN}}
		ok = true
	}

	return best, ok
}

// containsOther reports whether any remaining vertex other than the
// triangle's own corners lies inside or on triangle (iP, iC, iN).
func containsOther(points []geom.Vec2, ar *arena, iP, iC, iN int) bool {
	a, b, c := points[iP], points[iC], points[iN]
	for _, idx := range ar.indices {
		if idx == iP || idx == iC || idx == iN {
			continue
		}
		if PointInTriangle(a, b, c, points[idx]) {
			return true
		}
	}
	return false
}

// InteriorAngle returns the counter-clockwise angle in [0, 2π) swept
// from v1 to v2.
func InteriorAngle(v1, v2 geom.Vec2) float64 {
	n1 := v1.Normalize()
	n2 := v2.Normalize()
	sin := n1.Cross(n2)
	cos := math.Max(-1, math.Min(1, n1.Dot(n2)))
	if sin >= 0 {
		return math.Acos(cos)
	}
	return 2*math.Pi - math.Acos(cos)
}

// sameSide reports whether p1 and p2 lie on the same side of line ab.
// Points on the line count as being on both sides.
func sameSide(a, b, p1, p2 geom.Vec2) bool {
	ab := b.Sub(a)
	c1 := ab.Cross(p1.Sub(a))
	c2 := ab.Cross(p2.Sub(a))
	return c1*c2 >= 0
}

// PointInTriangle reports whether p lies inside or on the boundary of
// triangle abc.
func PointInTriangle(a, b, c, p geom.Vec2) bool {
	return sameSide(a, b, c, p) && sameSide(b, c, a, p) && sameSide(c, a, b, p)
}

// TriangleArea returns the signed area of triangle abc, positive when
// counter-clockwise.
func TriangleArea(a, b, c geom.Vec2) float64 {
	return b.Sub(a).Cross(c.Sub(a)) / 2
}
