// Package math provides vector, box and plane helpers shared by the model runtime.
//
// Vectors are mgl32 arrays so the parallel vertex arrays of a mesh can be
// handed to a GPU backend without conversion.
package math

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/exp/constraints"
)

// Clamp returns v clamped to [lo, hi].
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SafeNormalize returns v scaled to unit length, or the zero vector when v
// is too short to normalize. It never produces NaN.
func SafeNormalize(v mgl32.Vec3) mgl32.Vec3 {
	l2 := v.Dot(v)
	if l2 < 1e-20 {
		return mgl32.Vec3{}
	}
	return v.Mul(1 / float32(gomath.Sqrt(float64(l2))))
}

// TriangleNormal returns the unnormalized normal of triangle (a, b, c)
// following the right-hand rule: (b-a) x (c-a). Its length is twice the
// triangle's area.
func TriangleNormal(a, b, c mgl32.Vec3) mgl32.Vec3 {
	return b.Sub(a).Cross(c.Sub(a))
}

// Floor32 is math.Floor for float32.
func Floor32(v float32) float32 {
	return float32(gomath.Floor(float64(v)))
}

// Sqrt32 is math.Sqrt for float32.
func Sqrt32(v float32) float32 {
	return float32(gomath.Sqrt(float64(v)))
}

// MinVec returns the component-wise minimum.
func MinVec(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{min(a[0], b[0]), min(a[1], b[1]), min(a[2], b[2])}
}

// MaxVec returns the component-wise maximum.
func MaxVec(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{max(a[0], b[0]), max(a[1], b[1]), max(a[2], b[2])}
}
