package velocity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/strikemesh/internal/mesh"
	"github.com/Faultbox/strikemesh/pkg/math"
)

func TestRigidTranslation(t *testing.T) {
	r, err := NewRigidEstimator(triVerts, triIdx, at(0, 0, 0))
	require.NoError(t, err)

	r.Accumulate(0.5)
	r.Update(at(1, 0, 0))
	for _, v := range r.Velocities() {
		assertVec(t, math.Vec3{X: 2}, v, 1e-5)
	}
}

func TestRigidIsUnsmoothed(t *testing.T) {
	r, err := NewRigidEstimator(triVerts, triIdx, at(0, 0, 0))
	require.NoError(t, err)

	r.Accumulate(1)
	r.Update(at(4, 0, 0))
	r.Accumulate(1)
	r.Update(at(4, 0, 0))
	assert.Equal(t, math.Vec3{}, r.Velocities()[0])
}

func TestRigidWithoutTimeIsZero(t *testing.T) {
	r, err := NewRigidEstimator(triVerts, triIdx, at(0, 0, 0))
	require.NoError(t, err)

	r.Update(at(7, 0, 0))
	for _, v := range r.Velocities() {
		assert.Equal(t, math.Vec3{}, v)
	}
}

func TestRigidMatchesUnsmoothedTracker(t *testing.T) {
	start := mesh.IdentityTransform()
	end := at(0.3, -0.2, 0.1)
	end.Rotation = math.QuatFromAxisAngle(math.Vec3{Y: 1}, 0.4)

	r, err := NewRigidEstimator(triVerts, triIdx, start)
	require.NoError(t, err)
	tr, err := NewTracker(triVerts, triIdx, start, Options{})
	require.NoError(t, err)

	r.Accumulate(0.2)
	r.Update(end)
	tr.SetTransform(end)
	tr.Accumulate(0.2)
	tr.Update()

	rv := r.Velocities()
	for i, v := range tr.Velocities() {
		assertVec(t, v, rv[i], 1e-4, "vertex %d", i)
	}

	p := end.TransformPoint(math.Vec3{X: 0.25, Y: 0.25})
	assertVec(t, tr.VelocityAt(p), r.VelocityAt(p), 1e-4)
}

func TestRigidVelocityAtWithoutTriangles(t *testing.T) {
	r, err := NewRigidEstimator(triVerts, nil, at(0, 0, 0))
	require.NoError(t, err)
	r.Accumulate(1)
	r.Update(at(1, 1, 1))
	assert.Equal(t, math.Vec3{}, r.VelocityAt(math.Vec3{X: 1, Y: 1, Z: 1}))
}

func TestNewRigidEstimatorErrors(t *testing.T) {
	_, err := NewRigidEstimator(nil, nil, at(0, 0, 0))
	assert.ErrorIs(t, err, mesh.ErrNoVertices)
}
