package velocity

import (
	"github.com/Faultbox/strikemesh/internal/mesh"
	"github.com/Faultbox/strikemesh/internal/metrics"
	"github.com/Faultbox/strikemesh/internal/picking"
	"github.com/Faultbox/strikemesh/pkg/math"
)

// RigidEstimator computes unsmoothed vertex velocities from the change of a
// single rotation and translation between updates. Scale is ignored.
//
// It only holds for meshes that do not deform, and it reacts to every frame
// spike that Tracker damps. Use it where a cheap rigid-body estimate is
// enough.
type RigidEstimator struct {
	vertices  []math.Vec3
	triangles []uint32

	lastPosition math.Vec3
	lastRotation math.Quat
	velocities   []math.Vec3
	accumulated  float32
}

// NewRigidEstimator starts at pose with zero velocity.
func NewRigidEstimator(vertices []math.Vec3, triangles []uint32, pose mesh.RigidTransform) (*RigidEstimator, error) {
	if err := checkBuffers(vertices, triangles); err != nil {
		return nil, err
	}
	return &RigidEstimator{
		vertices:     vertices,
		triangles:    triangles,
		lastPosition: pose.Position,
		lastRotation: pose.Rotation.Normalize(),
		velocities:   make([]math.Vec3, len(vertices)),
	}, nil
}

// Accumulate adds elapsed frame time. Non-positive dt is ignored.
func (r *RigidEstimator) Accumulate(dt float32) {
	if dt > 0 {
		r.accumulated += dt
	}
}

// Update sets every vertex velocity to its displacement between the previous
// pose and pose, divided by the accumulated time. With no accumulated time
// velocities are zeroed.
func (r *RigidEstimator) Update(pose mesh.RigidTransform) {
	rot := pose.Rotation.Normalize()
	acc := r.accumulated
	for i, v := range r.vertices {
		if acc <= 0 {
			r.velocities[i] = math.Vec3{}
			continue
		}
		before := r.lastRotation.Rotate(v).Add(r.lastPosition)
		after := rot.Rotate(v).Add(pose.Position)
		r.velocities[i] = after.Sub(before).Scale(1 / acc)
	}

	r.lastPosition = pose.Position
	r.lastRotation = rot
	r.accumulated = 0
	metrics.Default.VelocityUpdates.Inc()
}

// VelocityAt samples the velocity at a world point using the last pose.
// Corner distances are measured in local space.
func (r *RigidEstimator) VelocityAt(world math.Vec3) math.Vec3 {
	local := r.lastRotation.Conjugate().Rotate(world.Sub(r.lastPosition))
	tri, ok := nearest(r.vertices, r.triangles, local)
	if !ok {
		return math.Vec3{}
	}

	corners := picking.TriangleVertices(r.triangles, tri)
	var positions [3]math.Vec3
	for k, vi := range corners {
		positions[k] = r.vertices[vi]
	}
	return blend(r.velocities, corners, positions, local)
}

// Velocities returns a copy of the per-vertex velocities.
func (r *RigidEstimator) Velocities() []math.Vec3 {
	out := make([]math.Vec3, len(r.velocities))
	copy(out, r.velocities)
	return out
}
