// Package geom holds the small amount of vector math the simulation needs.
package geom

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Vec3 is a position or velocity. Flat games only use X and Y.
type Vec3 struct {
	X, Y, Z float64
}

// V2 builds a vector on the Z=0 plane.
func V2(x, y float64) Vec3 { return Vec3{X: x, Y: y} }

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

// Len returns the euclidean length.
func (v Vec3) Len() float64 { return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z) }

// Dist returns the euclidean distance between two points.
func (v Vec3) Dist(o Vec3) float64 { return v.Sub(o).Len() }

// Normalize returns a unit vector, or the zero vector for a zero input.
func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l == 0 {
		return Vec3{}
	}
	return v.Scale(1 / l)
}

// Flat drops the height (Z) of a vector.
func (v Vec3) Flat() Vec3 { return Vec3{X: v.X, Y: v.Y} }

// Clamp limits v to [lo, hi].
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	return min(max(v, lo), hi)
}

// Overlap reports whether two circles (or spheres) intersect, using a strict
// distance < ra+rb test. Overlap(a, ra, b, rb) == Overlap(b, rb, a, ra).
func Overlap(a Vec3, ra float64, b Vec3, rb float64) bool {
	return a.Dist(b) < ra+rb
}
