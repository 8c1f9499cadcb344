package geo

import "math"

// Quat is a rotation quaternion. The zero value is not a valid rotation;
// use Identity or one of the constructors.
type Quat struct {
	X, Y, Z, W float64
}

// Identity is the no-rotation quaternion.
var Identity = Quat{W: 1}

// Normalized returns q scaled to unit length. An all-zero quaternion
// normalizes to Identity.
func (q Quat) Normalized() Quat {
	l := math.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
	if l == 0 {
		return Identity
	}
	return Quat{q.X / l, q.Y / l, q.Z / l, q.W / l}
}

// Dot returns the four-dimensional dot product of q and r.
func (q Quat) Dot(r Quat) float64 {
	return q.X*r.X + q.Y*r.Y + q.Z*r.Z + q.W*r.W
}

// SlerpTo spherically interpolates from q to r by t along the shortest
// arc. Both quaternions should be unit length.
func (q Quat) SlerpTo(r Quat, t float64) Quat {
	cos := q.Dot(r)
	// Take the short way around.
	if cos < 0 {
		r = Quat{-r.X, -r.Y, -r.Z, -r.W}
		cos = -cos
	}
	if cos > 0.9995 {
		// Nearly parallel; fall back to nlerp.
		return Quat{
			X: Lerp(q.X, r.X, t),
			Y: Lerp(q.Y, r.Y, t),
			Z: Lerp(q.Z, r.Z, t),
			W: Lerp(q.W, r.W, t),
		}.Normalized()
	}
	theta := math.Acos(Clamp(cos, -1, 1))
	sin := math.Sin(theta)
	wa := math.Sin((1-t)*theta) / sin
	wb := math.Sin(t*theta) / sin
	return Quat{
		X: wa*q.X + wb*r.X,
		Y: wa*q.Y + wb*r.Y,
		Z: wa*q.Z + wb*r.Z,
		W: wa*q.W + wb*r.W,
	}
}

// Rotate applies the rotation q to vector v.
func (q Quat) Rotate(v Vec3) Vec3 {
	u := Vec3{q.X, q.Y, q.Z}
	s := q.W
	return u.Scale(2 * u.Dot(v)).
		Add(v.Scale(s*s - u.Dot(u))).
		Add(u.Cross(v).Scale(2 * s))
}

// Forward returns the direction the rotation points the canonical
// forward axis (+Y, north in identity orientation) at.
func (q Quat) Forward() Vec3 {
	return q.Rotate(Vec3{Y: 1})
}

// LookAt builds the rotation that points the canonical forward axis
// (+Y) from eye toward target, keeping Up as close to world up as
// possible. If eye and target coincide, Identity is returned.
func LookAt(eye, target Vec3) Quat {
	fwd := target.Sub(eye)
	if fwd.Length() == 0 {
		return Identity
	}
	fwd = fwd.Normalized()

	right := fwd.Cross(Up)
	if right.Length() < 1e-9 {
		// Looking straight up or down; pick an arbitrary right axis.
		right = Vec3{X: 1}
	}
	right = right.Normalized()
	up := right.Cross(fwd)

	// Rotation matrix columns (right, fwd, up) → quaternion.
	m00, m01, m02 := right.X, fwd.X, up.X
	m10, m11, m12 := right.Y, fwd.Y, up.Y
	m20, m21, m22 := right.Z, fwd.Z, up.Z

	trace := m00 + m11 + m22
	var q Quat
	switch {
	case trace > 0:
		s := math.Sqrt(trace+1) * 2
		q = Quat{
			X: (m21 - m12) / s,
			Y: (m02 - m20) / s,
			Z: (m10 - m01) / s,
			W: s / 4,
		}
	case m00 > m11 && m00 > m22:
		s := math.Sqrt(1+m00-m11-m22) * 2
		q = Quat{
			X: s / 4,
			Y: (m01 + m10) / s,
			Z: (m02 + m20) / s,
			W: (m21 - m12) / s,
		}
	case m11 > m22:
		s := math.Sqrt(1+m11-m00-m22) * 2
		q = Quat{
			X: (m01 + m10) / s,
			Y: s / 4,
			Z: (m12 + m21) / s,
			W: (m02 - m20) / s,
		}
	default:
		s := math.Sqrt(1+m22-m00-m11) * 2
		q = Quat{
			X: (m02 + m20) / s,
			Y: (m12 + m21) / s,
			Z: s / 4,
			W: (m10 - m01) / s,
		}
	}
	return q.Normalized()
}
