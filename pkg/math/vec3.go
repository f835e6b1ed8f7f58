// Package math provides the float32 vector and matrix kernel used by the viewer.
package math

import (
	"errors"

	"github.com/chewxy/math32"
)

// ErrZeroVector is returned by operations that require a non-zero operand.
var ErrZeroVector = errors.New("zero-length vector")

// Vec3 is a 3D vector.
type Vec3 struct {
	X, Y, Z float32
}

// Common axis vectors.
var (
	UnitX = Vec3{1, 0, 0}
	UnitY = Vec3{0, 1, 0}
	UnitZ = Vec3{0, 0, 1}
)

// V3 builds a Vec3 from a [3]float32.
func V3(a [3]float32) Vec3 {
	return Vec3{a[0], a[1], a[2]}
}

// Array returns the components as [3]float32.
func (v Vec3) Array() [3]float32 {
	return [3]float32{v.X, v.Y, v.Z}
}

// Add returns v + other.
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

// Sub returns v - other.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// Scale returns v * scalar.
func (v Vec3) Scale(s float32) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Dot returns the dot product.
func (v Vec3) Dot(other Vec3) float32 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Cross returns the cross product.
// Either operand having zero length is reported as ErrZeroVector.
func (v Vec3) Cross(other Vec3) (Vec3, error) {
	if v.Length() == 0 || other.Length() == 0 {
		return Vec3{}, ErrZeroVector
	}
	return Vec3{
		v.Y*other.Z - v.Z*other.Y,
		v.Z*other.X - v.X*other.Z,
		v.X*other.Y - v.Y*other.X,
	}, nil
}

// Length returns the magnitude.
func (v Vec3) Length() float32 {
	return math32.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Normalize returns a unit vector parallel to v.
func (v Vec3) Normalize() (Vec3, error) {
	l := v.Length()
	if l == 0 {
		return Vec3{}, ErrZeroVector
	}
	return Vec3{v.X / l, v.Y / l, v.Z / l}, nil
}

// Lerp interpolates from v towards other. t is clamped to [0, 1].
func (v Vec3) Lerp(other Vec3, t float32) Vec3 {
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return v.Add(other.Sub(v).Scale(t))
}

// Reflect mirrors v about the plane with the given normal.
// normal is expected to be unit length.
func (v Vec3) Reflect(normal Vec3) Vec3 {
	return v.Sub(normal.Scale(2 * v.Dot(normal)))
}

// Project returns the projection of v onto other.
// Projecting onto the zero vector yields NaN components.
func (v Vec3) Project(onto Vec3) Vec3 {
	return onto.Scale(v.Dot(onto) / onto.Dot(onto))
}

// AngleBetween returns the angle to other in radians, in [0, Pi].
// NaN if either vector has zero length.
func (v Vec3) AngleBetween(other Vec3) float32 {
	return math32.Acos(v.Dot(other) / (v.Length() * other.Length()))
}

// Distance returns the distance to another point.
func (v Vec3) Distance(other Vec3) float32 {
	return v.Sub(other).Length()
}

// Min returns the component-wise minimum.
func (v Vec3) Min(other Vec3) Vec3 {
	return Vec3{min(v.X, other.X), min(v.Y, other.Y), min(v.Z, other.Z)}
}

// Max returns the component-wise maximum.
func (v Vec3) Max(other Vec3) Vec3 {
	return Vec3{max(v.X, other.X), max(v.Y, other.Y), max(v.Z, other.Z)}
}
