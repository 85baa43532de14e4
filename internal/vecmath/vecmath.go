// Package vecmath provides the small geometric primitives shared across
// catgen's coordinate, ingest and octree packages.
package vecmath

import "math"

// Vec3 is a plain three-component double-precision vector.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns the componentwise sum of v and o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Sub returns the componentwise difference of v and o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Scale returns v scaled by s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Len returns the Euclidean length of v.
func (v Vec3) Len() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// IsFinite reports whether all three components of v are finite.
func (v Vec3) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0) &&
		!math.IsNaN(v.Z) && !math.IsInf(v.Z, 0)
}

// BoundingBox is an axis-aligned box with precomputed centre and dimensions.
type BoundingBox struct {
	Min, Max, Centre, Dim Vec3
}

// NewBoundingBox builds a BoundingBox from its min and max corners.
// Panics-free: callers are expected to pass min <= max componentwise.
func NewBoundingBox(min, max Vec3) BoundingBox {
	centre := Vec3{
		X: (min.X + max.X) / 2.0,
		Y: (min.Y + max.Y) / 2.0,
		Z: (min.Z + max.Z) / 2.0,
	}
	dim := Vec3{
		X: max.X - min.X,
		Y: max.Y - min.Y,
		Z: max.Z - min.Z,
	}

	return BoundingBox{Min: min, Max: max, Centre: centre, Dim: dim}
}

// BoundingBoxOf computes the tight axis-aligned bounding box of points.
// Returns the zero BoundingBox if points is empty.
func BoundingBoxOf(points []Vec3) BoundingBox {
	if len(points) == 0 {
		return BoundingBox{}
	}

	min := Vec3{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	max := Vec3{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}

	for _, p := range points {
		if p.X < min.X {
			min.X = p.X
		}
		if p.Y < min.Y {
			min.Y = p.Y
		}
		if p.Z < min.Z {
			min.Z = p.Z
		}
		if p.X > max.X {
			max.X = p.X
		}
		if p.Y > max.Y {
			max.Y = p.Y
		}
		if p.Z > max.Z {
			max.Z = p.Z
		}
	}

	return NewBoundingBox(min, max)
}
