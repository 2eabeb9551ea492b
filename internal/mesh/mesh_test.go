package mesh

import (
	gomath "math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/strikemesh/pkg/math"
)

func quad() ([]math.Vec3, []uint32, []math.Vec3) {
	verts := []math.Vec3{{X: 0}, {X: 1}, {X: 1, Y: 1}, {Y: 1}}
	tris := []uint32{0, 1, 2, 0, 2, 3}
	up := math.Vec3{Z: 1}
	return verts, tris, []math.Vec3{up, up, up, up}
}

func TestNewSnapshot(t *testing.T) {
	verts, tris, normals := quad()
	s, err := NewSnapshot(verts, tris, normals)
	require.NoError(t, err)

	assert.Equal(t, 4, s.VertexCount())
	assert.Equal(t, 2, s.TriangleCount())
	assert.NotEqual(t, ID{}, s.ID)

	other, err := NewSnapshot(verts, tris, normals)
	require.NoError(t, err)
	assert.NotEqual(t, s.ID, other.ID, "each snapshot gets its own identity")
}

func TestValidate(t *testing.T) {
	verts, tris, normals := quad()

	tests := []struct {
		name string
		snap Snapshot
		want error
	}{
		{"no vertices", Snapshot{Triangles: tris}, ErrNoVertices},
		{"no triangles", Snapshot{Vertices: verts, Normals: normals}, ErrNoTriangles},
		{"bad stride", Snapshot{Vertices: verts, Triangles: []uint32{0, 1}, Normals: normals}, ErrTriangleStride},
		{"normal mismatch", Snapshot{Vertices: verts, Triangles: tris, Normals: normals[:3]}, ErrNormalCount},
		{"index out of range", Snapshot{Vertices: verts, Triangles: []uint32{0, 1, 4}, Normals: normals}, ErrIndexOutOfRange},
		{"repeated index", Snapshot{Vertices: verts, Triangles: []uint32{0, 1, 1}, Normals: normals}, ErrDegenerateIndices},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.snap.Validate(), tt.want)
		})
	}
}

func TestBounds(t *testing.T) {
	s := Snapshot{Vertices: []math.Vec3{{X: -1, Y: 2, Z: 0}, {X: 3, Y: -2, Z: 5}, {X: 0, Y: 0, Z: -1}}}
	b := s.Bounds()

	assert.Equal(t, math.Vec3{X: -1, Y: -2, Z: -1}, b.Min)
	assert.Equal(t, math.Vec3{X: 3, Y: 2, Z: 5}, b.Max)
	assert.Equal(t, math.Vec3{X: 1, Y: 0, Z: 2}, b.Center())
}

func TestRigidTransformRoundTrip(t *testing.T) {
	tr := RigidTransform{
		Position: math.Vec3{X: 5, Y: -1, Z: 2},
		Rotation: math.QuatFromAxisAngle(math.Vec3{Y: 1}, float32(gomath.Pi/2)),
		Scale:    math.Vec3{X: 2, Y: 2, Z: 2},
	}
	p := math.Vec3{X: 1, Y: 0, Z: 0}

	world := tr.TransformPoint(p)
	// (1,0,0) scaled to (2,0,0), turned to (0,0,-2), moved by position
	assert.InDelta(t, 5, world.X, 1e-5)
	assert.InDelta(t, -1, world.Y, 1e-5)
	assert.InDelta(t, 0, world.Z, 1e-5)

	back := tr.InverseTransformPoint(world)
	assert.InDelta(t, 0, back.Distance(p), 1e-5)

	viaMatrix, err := NewMatrixTransform(tr.Matrix())
	require.NoError(t, err)
	assert.InDelta(t, 0, viaMatrix.TransformPoint(p).Distance(world), 1e-5)
	assert.InDelta(t, 0, viaMatrix.InverseTransformPoint(world).Distance(p), 1e-4)
}

func TestTransformNormalNonUniformScale(t *testing.T) {
	tr := IdentityTransform()
	tr.Scale = math.Vec3{X: 2, Y: 1, Z: 1}
	tr.Position = math.Vec3{X: 3, Y: -1}

	// Plane x + y = 0 becomes x/2 + y = 0 once X is stretched
	n := math.Vec3{X: 1, Y: 1}.Normalize()
	got := TransformNormal(tr, math.Vec3{X: 1, Y: -1}, n)
	want := math.Vec3{X: 1, Y: 2}.Normalize()
	assert.InDelta(t, 0, got.Distance(want), 1e-5)

	// Still perpendicular to a world tangent of the surface
	tangent := tr.TransformPoint(math.Vec3{X: 1, Y: -1}).Sub(tr.TransformPoint(math.Vec3{}))
	assert.InDelta(t, 0, got.Dot(tangent), 1e-5)

	// Mirroring keeps the normal on the outside of the mirrored surface
	tr.Scale = math.Vec3{X: -1, Y: 1, Z: 1}
	assert.InDelta(t, 0, TransformNormal(tr, math.Vec3{}, math.Vec3{X: 1}).Distance(math.Vec3{X: -1}), 1e-5)

	tr.Scale = math.Vec3{X: 0, Y: 1, Z: 1}
	assert.Equal(t, math.Zero, TransformNormal(tr, math.Vec3{}, n))
}

func TestMatrixTransformSingular(t *testing.T) {
	_, err := NewMatrixTransform(math.Scale(1, 0, 1))
	assert.ErrorIs(t, err, ErrSingularTransform)
}

func TestIdentityTransform(t *testing.T) {
	p := math.Vec3{X: 1, Y: 2, Z: 3}
	id := IdentityTransform()
	assert.Equal(t, p, id.TransformPoint(p))
	assert.Equal(t, p, id.InverseTransformPoint(p))
}
