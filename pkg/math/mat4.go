package math

// Mat4 is a column-major 4x4 matrix. Mesh transforms only use the affine
// part: columns 0-2 hold the basis, column 3 the translation.
type Mat4 [16]float32

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4{0: 1, 5: 1, 10: 1, 15: 1}
}

// Translate returns a translation matrix.
func Translate(x, y, z float32) Mat4 {
	m := Identity()
	m[12], m[13], m[14] = x, y, z
	return m
}

// Scale returns a scale matrix.
func Scale(x, y, z float32) Mat4 {
	return Mat4{0: x, 5: y, 10: z, 15: 1}
}

// FromBasis builds an affine matrix from basis columns and a translation.
func FromBasis(x, y, z, t Vec3) Mat4 {
	return Mat4{
		x.X, x.Y, x.Z, 0,
		y.X, y.Y, y.Z, 0,
		z.X, z.Y, z.Z, 0,
		t.X, t.Y, t.Z, 1,
	}
}

// Column returns column i (0-3) without its w component.
func (m Mat4) Column(i int) Vec3 {
	return Vec3{m[i*4], m[i*4+1], m[i*4+2]}
}

// TRS composes translation * rotation * scale, the usual local-to-world order.
func TRS(position Vec3, rotation Quat, scale Vec3) Mat4 {
	r := rotation.Normalize()
	return FromBasis(
		r.Rotate(Vec3{X: scale.X}),
		r.Rotate(Vec3{Y: scale.Y}),
		r.Rotate(Vec3{Z: scale.Z}),
		position,
	)
}

// Mul returns m * other.
func (m Mat4) Mul(other Mat4) Mat4 {
	var out Mat4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += m[k*4+row] * other[col*4+k]
			}
			out[col*4+row] = sum
		}
	}
	return out
}

// TransformPoint maps p with w=1. The projective row is ignored.
func (m Mat4) TransformPoint(p Vec3) Vec3 {
	return m.TransformDirection(p).Add(m.Column(3))
}

// TransformDirection maps d with w=0, ignoring translation.
func (m Mat4) TransformDirection(d Vec3) Vec3 {
	return m.Column(0).Scale(d.X).
		Add(m.Column(1).Scale(d.Y)).
		Add(m.Column(2).Scale(d.Z))
}

// AffineInverse inverts the affine part of m. ok is false when the basis
// is singular, in which case the identity is returned.
func (m Mat4) AffineInverse() (inv Mat4, ok bool) {
	a, b, c := m.Column(0), m.Column(1), m.Column(2)

	// Rows of the inverse basis are the cross products of the columns over det
	r0 := b.Cross(c)
	r1 := c.Cross(a)
	r2 := a.Cross(b)
	det := a.Dot(r0)
	if det == 0 {
		return Identity(), false
	}
	r0, r1, r2 = r0.Scale(1/det), r1.Scale(1/det), r2.Scale(1/det)

	t := m.Column(3)
	return Mat4{
		r0.X, r1.X, r2.X, 0,
		r0.Y, r1.Y, r2.Y, 0,
		r0.Z, r1.Z, r2.Z, 0,
		-r0.Dot(t), -r1.Dot(t), -r2.Dot(t), 1,
	}, true
}
