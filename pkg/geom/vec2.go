// Package geom provides the 2D vector type and the polygon helpers
// shared by the triangulator, the extrusion kernels and the outline
// extractor.
package geom

import (
	"fmt"
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Vec2 is an immutable 2D vector. Every operation returns a new value.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// V returns the vector (x, y).
func V(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

// Multiply returns v scaled by s.
func (v Vec2) Multiply(s float64) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

// Dot returns the dot product of v and o.
func (v Vec2) Dot(o Vec2) float64 {
	return v.X*o.X + v.Y*o.Y
}

// Cross returns the scalar 2D cross product v.X*o.Y - v.Y*o.X.
// It is positive when o lies counter-clockwise of v.
func (v Vec2) Cross(o Vec2) float64 {
	return v.X*o.Y - v.Y*o.X
}

// Magnitude returns the Euclidean length of v.
func (v Vec2) Magnitude() float64 {
	return math.Hypot(v.X, v.Y)
}

// Normalize returns the unit vector in the direction of v.
// The zero vector normalizes to itself rather than to NaN.
func (v Vec2) Normalize() Vec2 {
	m := v.Magnitude()
	if m == 0 {
		return Vec2{}
	}
	return Vec2{X: v.X / m, Y: v.Y / m}
}

// IsZero reports whether both components are exactly zero.
func (v Vec2) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

// Equal reports whether v and o differ by at most eps in each component.
func (v Vec2) Equal(o Vec2, eps float64) bool {
	return math.Abs(v.X-o.X) <= eps && math.Abs(v.Y-o.Y) <= eps
}

// V2 converts v to the sdfx vector type.
func (v Vec2) V2() v2.Vec {
	return v2.Vec{X: v.X, Y: v.Y}
}

func (v Vec2) String() string {
	return fmt.Sprintf("(%g, %g)", v.X, v.Y)
}
