package mesh

import (
	"errors"

	"github.com/Faultbox/strikemesh/pkg/math"
)

// ErrSingularTransform is returned for a matrix that collapses a dimension.
var ErrSingularTransform = errors.New("singular transform matrix")

// Transform converts points between a mesh's local space and world space.
// It is supplied by the scene graph that owns the mesh instance.
type Transform interface {
	TransformPoint(local math.Vec3) math.Vec3
	InverseTransformPoint(world math.Vec3) math.Vec3
}

// RigidTransform is position, rotation and uniform-or-axis scale applied in
// scale, rotate, translate order.
type RigidTransform struct {
	Position math.Vec3
	Rotation math.Quat
	Scale    math.Vec3
}

// IdentityTransform returns a transform that leaves points unchanged.
func IdentityTransform() RigidTransform {
	return RigidTransform{Rotation: math.QuatIdentity(), Scale: math.Vec3{X: 1, Y: 1, Z: 1}}
}

// TransformPoint maps a local point to world space.
func (t RigidTransform) TransformPoint(local math.Vec3) math.Vec3 {
	scaled := math.Vec3{X: local.X * t.Scale.X, Y: local.Y * t.Scale.Y, Z: local.Z * t.Scale.Z}
	return t.Rotation.Normalize().Rotate(scaled).Add(t.Position)
}

// InverseTransformPoint maps a world point to local space.
// Zero scale components map to zero.
func (t RigidTransform) InverseTransformPoint(world math.Vec3) math.Vec3 {
	p := t.Rotation.Normalize().Conjugate().Rotate(world.Sub(t.Position))
	return math.Vec3{X: safeDiv(p.X, t.Scale.X), Y: safeDiv(p.Y, t.Scale.Y), Z: safeDiv(p.Z, t.Scale.Z)}
}

// Matrix returns the equivalent local-to-world matrix.
func (t RigidTransform) Matrix() math.Mat4 {
	return math.TRS(t.Position, t.Rotation, t.Scale)
}

func safeDiv(a, b float32) float32 {
	if b == 0 {
		return 0
	}
	return a / b
}

// TransformNormal maps a local surface normal at local point p to a unit
// world normal. The linear part of tr is sampled at p and the normal goes
// through its inverse transpose, so non-uniform scale keeps it perpendicular
// to the surface. A transform that collapses a dimension yields zero.
func TransformNormal(tr Transform, p, n math.Vec3) math.Vec3 {
	o := tr.TransformPoint(p)
	c0 := tr.TransformPoint(p.Add(math.Vec3{X: 1})).Sub(o)
	c1 := tr.TransformPoint(p.Add(math.Vec3{Y: 1})).Sub(o)
	c2 := tr.TransformPoint(p.Add(math.Vec3{Z: 1})).Sub(o)

	r0, r1, r2 := c1.Cross(c2), c2.Cross(c0), c0.Cross(c1)
	det := c0.Dot(r0)
	if det == 0 {
		return math.Zero
	}
	return r0.Scale(n.X).Add(r1.Scale(n.Y)).Add(r2.Scale(n.Z)).Scale(1 / det).Normalize()
}

// MatrixTransform wraps an arbitrary affine local-to-world matrix.
type MatrixTransform struct {
	local   math.Mat4
	inverse math.Mat4
}

// NewMatrixTransform precomputes the inverse of m.
func NewMatrixTransform(m math.Mat4) (MatrixTransform, error) {
	inv, ok := m.AffineInverse()
	if !ok {
		return MatrixTransform{}, ErrSingularTransform
	}
	return MatrixTransform{local: m, inverse: inv}, nil
}

// TransformPoint maps a local point to world space.
func (t MatrixTransform) TransformPoint(local math.Vec3) math.Vec3 {
	return t.local.TransformPoint(local)
}

// InverseTransformPoint maps a world point to local space.
func (t MatrixTransform) InverseTransformPoint(world math.Vec3) math.Vec3 {
	return t.inverse.TransformPoint(world)
}
