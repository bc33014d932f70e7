// Package vmath holds the small amount of vector math the simulation needs on
// top of mgl64: zero-safe normalization, Euler rotations and element-wise ops.
package vmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type Vec3 = mgl64.Vec3

var (
	Zero = Vec3{0, 0, 0}
	One  = Vec3{1, 1, 1}
	Up   = Vec3{0, 1, 0}
)

// Normalize returns v scaled to unit length, or the zero vector when v has no length.
func Normalize(v Vec3) Vec3 {
	l := v.Len()
	if l == 0 || math.IsNaN(l) {
		return Zero
	}
	return v.Mul(1 / l)
}

// MulElem multiplies two vectors component-wise.
func MulElem(a, b Vec3) Vec3 {
	return Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

// EulerQuat converts XYZ Euler angles (radians) into a quaternion. Rotations are
// intrinsic in X, then Y, then Z order.
func EulerQuat(e Vec3) mgl64.Quat {
	qx := mgl64.QuatRotate(e[0], Vec3{1, 0, 0})
	qy := mgl64.QuatRotate(e[1], Vec3{0, 1, 0})
	qz := mgl64.QuatRotate(e[2], Vec3{0, 0, 1})
	return qx.Mul(qy).Mul(qz)
}

// RotateEuler rotates v by the XYZ Euler angles e.
func RotateEuler(v, e Vec3) Vec3 {
	if e == Zero {
		return v
	}
	return EulerQuat(e).Rotate(v)
}

// Compose builds the local T*R*S matrix for a transform.
func Compose(position, rotation, scale Vec3) mgl64.Mat4 {
	t := mgl64.Translate3D(position[0], position[1], position[2])
	r := EulerQuat(rotation).Mat4()
	s := mgl64.Scale3D(scale[0], scale[1], scale[2])
	return t.Mul4(r).Mul4(s)
}

// Lerp interpolates between a and b by t.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Clamp01 limits v to [0, 1].
func Clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// Array converts v into a plain triple for serialization.
func Array(v Vec3) [3]float64 {
	return [3]float64{v[0], v[1], v[2]}
}

// FromArray is the inverse of Array.
func FromArray(a [3]float64) Vec3 {
	return Vec3{a[0], a[1], a[2]}
}
