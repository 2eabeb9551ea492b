package math

import "math"

// Quat is a rotation quaternion; W is the scalar part.
type Quat struct {
	X, Y, Z, W float32
}

// QuatIdentity returns the no-op rotation.
func QuatIdentity() Quat {
	return Quat{W: 1}
}

// QuatFromAxisAngle returns a rotation of angle radians about axis.
// The axis is normalized; a zero axis yields the identity.
func QuatFromAxisAngle(axis Vec3, angle float32) Quat {
	axis = axis.Normalize()
	if axis == Zero {
		return QuatIdentity()
	}
	sin, cos := math.Sincos(float64(angle) / 2)
	v := axis.Scale(float32(sin))
	return Quat{X: v.X, Y: v.Y, Z: v.Z, W: float32(cos)}
}

func (q Quat) vec() Vec3 {
	return Vec3{q.X, q.Y, q.Z}
}

func (q Quat) scale(s float32) Quat {
	return Quat{X: q.X * s, Y: q.Y * s, Z: q.Z * s, W: q.W * s}
}

func (q Quat) add(o Quat) Quat {
	return Quat{X: q.X + o.X, Y: q.Y + o.Y, Z: q.Z + o.Z, W: q.W + o.W}
}

// Dot returns the 4D dot product.
func (q Quat) Dot(o Quat) float32 {
	return q.vec().Dot(o.vec()) + q.W*o.W
}

// Normalize returns q at unit length, or the identity if q is near zero.
func (q Quat) Normalize() Quat {
	l := Sqrt(q.Dot(q))
	if l < 1e-4 {
		return QuatIdentity()
	}
	return q.scale(1 / l)
}

// Conjugate negates the vector part. For unit q it is the inverse rotation.
func (q Quat) Conjugate() Quat {
	return Quat{X: -q.X, Y: -q.Y, Z: -q.Z, W: q.W}
}

// Mul returns the Hamilton product q*o: o is applied first, then q.
func (q Quat) Mul(o Quat) Quat {
	a, b := q.vec(), o.vec()
	v := b.Scale(q.W).Add(a.Scale(o.W)).Add(a.Cross(b))
	return Quat{X: v.X, Y: v.Y, Z: v.Z, W: q.W*o.W - a.Dot(b)}
}

// Rotate applies q to v. q is assumed to be unit length.
func (q Quat) Rotate(v Vec3) Vec3 {
	// v + 2w(u x v) + 2u x (u x v)
	u := q.vec()
	t := u.Cross(v).Scale(2)
	return v.Add(t.Scale(q.W)).Add(u.Cross(t))
}

// Slerp interpolates along the shorter arc from q to o. t is not clamped.
func (q Quat) Slerp(o Quat, t float32) Quat {
	cos := q.Dot(o)
	if cos < 0 {
		o, cos = o.scale(-1), -cos
	}

	// Close enough that sin(theta) would vanish
	if cos > 0.9995 {
		return q.add(o.add(q.scale(-1)).scale(t)).Normalize()
	}

	theta := math.Acos(float64(cos))
	sin := math.Sin(theta)
	wq := float32(math.Sin((1-float64(t))*theta) / sin)
	wo := float32(math.Sin(float64(t)*theta) / sin)
	return q.scale(wq).add(o.scale(wo))
}

// ToMat4 returns the rotation as a matrix.
func (q Quat) ToMat4() Mat4 {
	q = q.Normalize()
	return FromBasis(q.Rotate(Vec3{X: 1}), q.Rotate(Vec3{Y: 1}), q.Rotate(Vec3{Z: 1}), Zero)
}
