package geom

import (
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

// SignedArea returns the shoelace area of the closed polygon.
// It is positive for counter-clockwise winding with +y up.
func SignedArea(points []Vec2) float64 {
	var sum float64
	for i, c := range points {
		n := points[(i+1)%len(points)]
		sum += c.Cross(n)
	}
	return sum / 2
}

// WindingSum accumulates (next.x - cur.x) * (next.y + cur.y) around the
// polygon. A positive sum means clockwise winding with +y up.
func WindingSum(points []Vec2) float64 {
	var sum float64
	for i, c := range points {
		n := points[(i+1)%len(points)]
		sum += (n.X - c.X) * (n.Y + c.Y)
	}
	return sum
}

// IsCCW reports whether the polygon winds counter-clockwise with +y up.
func IsCCW(points []Vec2) bool {
	return WindingSum(points) < 0
}

// Reverse returns a reversed copy of points.
func Reverse(points []Vec2) []Vec2 {
	out := make([]Vec2, len(points))
	for i, p := range points {
		out[len(points)-1-i] = p
	}
	return out
}

// EnsureCCW returns a copy of points wound counter-clockwise.
func EnsureCCW(points []Vec2) []Vec2 {
	if IsCCW(points) {
		out := make([]Vec2, len(points))
		copy(out, points)
		return out
	}
	return Reverse(points)
}

// Dedupe drops points within eps of their predecessor, including a
// closing point that repeats the first one.
func Dedupe(points []Vec2, eps float64) []Vec2 {
	out := make([]Vec2, 0, len(points))
	for _, p := range points {
		if len(out) > 0 && out[len(out)-1].Equal(p, eps) {
			continue
		}
		out = append(out, p)
	}
	for len(out) > 1 && out[len(out)-1].Equal(out[0], eps) {
		out = out[:len(out)-1]
	}
	return out
}

// Bounds returns the axis-aligned bounding box of points.
func Bounds(points []Vec2) (min, max Vec2) {
	min = Vec2{X: math.Inf(1), Y: math.Inf(1)}
	max = Vec2{X: math.Inf(-1), Y: math.Inf(-1)}
	for _, p := range points {
		min.X = math.Min(min.X, p.X)
		min.Y = math.Min(min.Y, p.Y)
		max.X = math.Max(max.X, p.X)
		max.Y = math.Max(max.Y, p.Y)
	}
	return min, max
}

// RegularPolygon returns n points on a circle of the given radius,
// counter-clockwise, starting on the +x axis.
func RegularPolygon(n int, radius float64) []Vec2 {
	points := make([]Vec2, n)
	for i := range points {
		a := 2 * math.Pi * float64(i) / float64(n)
		points[i] = Vec2{X: radius * math.Cos(a), Y: radius * math.Sin(a)}
	}
	return points
}

// ToV2 converts a polygon to sdfx vectors.
func ToV2(points []Vec2) []v2.Vec {
	out := make([]v2.Vec, len(points))
	for i, p := range points {
		out[i] = p.V2()
	}
	return out
}
