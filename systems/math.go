package systems

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Clamp functions for common value ranges

// clampFloat clamps a float32 value between min and max.
func clampFloat(v, minVal, maxVal float32) float32 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// clamp01 clamps a float32 value to the [0, 1] range.
func clamp01(v float32) float32 {
	return clampFloat(v, 0, 1)
}

// Angle normalization

const twoPi = 2 * math.Pi

// normalizeHeading wraps an angle to [0, 2*Pi).
func normalizeHeading(h float32) float32 {
	h = float32(math.Mod(float64(h), twoPi))
	if h < 0 {
		h += twoPi
	}
	if h >= twoPi {
		h = 0
	}
	return h
}

// sinf and cosf keep the float32 call sites readable.
func sinf(x float32) float32 { return float32(math.Sin(float64(x))) }
func cosf(x float32) float32 { return float32(math.Cos(float64(x))) }
func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

// Vector helpers

// epsilonSq is the squared length below which a vector has no usable direction.
const epsilonSq = 1e-12

// NormalizeOrZero returns v scaled to unit length, or the zero vector when v
// has no direction. mgl32's Normalize divides by zero on a zero vector.
func NormalizeOrZero(v mgl32.Vec3) mgl32.Vec3 {
	l2 := v.LenSqr()
	if l2 <= epsilonSq || isNaN3(v) {
		return mgl32.Vec3{}
	}
	return v.Mul(1 / float32(math.Sqrt(float64(l2))))
}

// lerp3 interpolates from a toward b by t.
func lerp3(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

func isNaN3(v mgl32.Vec3) bool {
	return v[0] != v[0] || v[1] != v[1] || v[2] != v[2]
}

// distance returns the Euclidean distance between two points.
func distance(a, b mgl32.Vec3) float32 {
	return b.Sub(a).Len()
}

// worldUp and worldForward are the fixed reference axes.
var (
	worldUp      = mgl32.Vec3{0, 1, 0}
	worldForward = mgl32.Vec3{0, 0, 1}
)

// Facing returns the orientation that looks along velocity with +Y up.
// The rotated -Z axis points along the velocity. A zero velocity yields the
// identity rotation; a vertical velocity falls back to +Z as the up hint.
func Facing(velocity mgl32.Vec3) mgl32.Quat {
	dir := NormalizeOrZero(velocity)
	if dir.LenSqr() == 0 {
		return mgl32.QuatIdent()
	}
	back := dir.Mul(-1)
	up := worldUp
	right := up.Cross(back)
	if right.LenSqr() <= epsilonSq {
		up = worldForward
		right = up.Cross(back)
	}
	right = right.Normalize()
	up = back.Cross(right)
	m := mgl32.Mat3FromCols(right, up, back)
	return mgl32.Mat4ToQuat(m.Mat4()).Normalize()
}
