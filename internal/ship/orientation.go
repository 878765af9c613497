// Copyright 2026 Arobi. All Rights Reserved.

package ship

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Ship-local axes: +Z forward (bow), +Y up, +X starboard.

// QuatIdentity returns the no-rotation quaternion.
func QuatIdentity() quat.Number { return quat.Number{Real: 1} }

// QuatFromAxisAngle builds a rotation of angle radians about axis.
func QuatFromAxisAngle(axis r3.Vec, angle float64) quat.Number {
	n := r3.Norm(axis)
	if n == 0 {
		return QuatIdentity()
	}
	u := r3.Scale(1/n, axis)
	s, c := math.Sincos(angle / 2)
	return quat.Number{Real: c, Imag: u.X * s, Jmag: u.Y * s, Kmag: u.Z * s}
}

// QuatFromAngularVelocity builds the small-angle rotation for ω over dt.
func QuatFromAngularVelocity(omega r3.Vec, dt float64) quat.Number {
	angle := r3.Norm(omega) * dt
	if angle == 0 {
		return QuatIdentity()
	}
	return QuatFromAxisAngle(omega, angle)
}

// QuatNormalize renormalizes to unit length, falling back to identity for
// degenerate input.
func QuatNormalize(q quat.Number) quat.Number {
	n := quat.Abs(q)
	if n == 0 || math.IsNaN(n) {
		return QuatIdentity()
	}
	return quat.Scale(1/n, q)
}

// RotateVec applies the rotation q to v (q v q⁻¹).
func RotateVec(q quat.Number, v r3.Vec) r3.Vec {
	p := quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}
	r := quat.Mul(quat.Mul(q, p), quat.Conj(q))
	return r3.Vec{X: r.Imag, Y: r.Jmag, Z: r.Kmag}
}

// RotateVecInverse applies the inverse rotation of q to v.
func RotateVecInverse(q quat.Number, v r3.Vec) r3.Vec {
	return RotateVec(quat.Conj(q), v)
}

// RollPitch extracts the roll (rotation about the forward axis) and pitch
// (rotation about the starboard axis) tilt angles from an orientation.
func RollPitch(q quat.Number) (roll, pitch float64) {
	right := RotateVec(q, r3.Vec{X: 1})
	forward := RotateVec(q, r3.Vec{Z: 1})
	roll = math.Asin(clamp(right.Y, -1, 1))
	pitch = math.Asin(clamp(forward.Y, -1, 1))
	return roll, pitch
}

// Yaw extracts the heading angle about the vertical axis.
func Yaw(q quat.Number) float64 {
	forward := RotateVec(q, r3.Vec{Z: 1})
	return math.Atan2(forward.X, forward.Z)
}

// TiltAngle returns the angle between the ship's up axis and world up.
func TiltAngle(q quat.Number) float64 {
	up := RotateVec(q, r3.Vec{Y: 1})
	return math.Acos(clamp(up.Y, -1, 1))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
