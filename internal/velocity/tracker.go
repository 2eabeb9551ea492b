// Package velocity tracks per-vertex world-space velocity of a moving mesh
// and samples it at arbitrary contact points.
package velocity

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/strikemesh/internal/logger"
	"github.com/Faultbox/strikemesh/internal/mesh"
	"github.com/Faultbox/strikemesh/internal/metrics"
	"github.com/Faultbox/strikemesh/internal/parallel"
	"github.com/Faultbox/strikemesh/internal/picking"
	"github.com/Faultbox/strikemesh/pkg/math"
)

// DefaultExpectedAttackTime is the smoothing horizon in seconds.
const DefaultExpectedAttackTime = 1

// minSampleDistance stands in for a zero distance when a sample point sits on
// a vertex, so that vertex dominates the blend.
const minSampleDistance = 1e-6

// ErrNilTransform is returned when a tracker is created without a transform.
var ErrNilTransform = errors.New("velocity: nil transform")

// Options configures a Tracker.
type Options struct {
	// ExpectedAttackTime is the accumulated motion, in seconds, after which a
	// raw velocity fully replaces the smoothed one. <= 0 disables smoothing.
	ExpectedAttackTime float32

	// Parallel bounds the fan-out of Update. With more than one worker the
	// tracker's Transform is called from several goroutines at once and must
	// be safe for concurrent reads; RigidTransform and MatrixTransform are.
	Parallel parallel.Options
}

// DefaultOptions returns the standard smoothing horizon.
func DefaultOptions() Options {
	return Options{ExpectedAttackTime: DefaultExpectedAttackTime}
}

// Tracker estimates smoothed per-vertex velocities from successive world
// transforms of a mesh. It tolerates deformation and uneven frame pacing.
//
// A Tracker has a single owner: Accumulate, SetTransform and Update must not
// be called concurrently, and each frame runs Accumulate any number of times
// followed by Update.
type Tracker struct {
	vertices  []math.Vec3
	triangles []uint32
	transform mesh.Transform
	opts      Options

	prev        []math.Vec3
	velocities  []math.Vec3
	accumulated float32

	log *zap.Logger
}

// NewTracker records the current world position of every vertex and starts
// with zero velocity. triangles may be empty, in which case sampling always
// returns zero.
func NewTracker(vertices []math.Vec3, triangles []uint32, tr mesh.Transform, opts Options) (*Tracker, error) {
	if err := checkBuffers(vertices, triangles); err != nil {
		return nil, err
	}
	if tr == nil {
		return nil, ErrNilTransform
	}

	t := &Tracker{
		vertices:   vertices,
		triangles:  triangles,
		transform:  tr,
		opts:       opts,
		prev:       make([]math.Vec3, len(vertices)),
		velocities: make([]math.Vec3, len(vertices)),
		log:        logger.Named("velocity"),
	}
	for i, v := range vertices {
		t.prev[i] = tr.TransformPoint(v)
	}

	t.log.Debug("tracker bound",
		zap.Int("vertices", len(vertices)),
		zap.Int("triangles", len(triangles)/3),
		zap.Float32("expected_attack_time", opts.ExpectedAttackTime))
	return t, nil
}

// NewTrackerForSnapshot binds a tracker to a validated snapshot.
func NewTrackerForSnapshot(s *mesh.Snapshot, tr mesh.Transform, opts Options) (*Tracker, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("velocity: %w", err)
	}
	return NewTracker(s.Vertices, s.Triangles, tr, opts)
}

func checkBuffers(vertices []math.Vec3, triangles []uint32) error {
	if len(vertices) == 0 {
		return fmt.Errorf("velocity: %w", mesh.ErrNoVertices)
	}
	if len(triangles)%3 != 0 {
		return fmt.Errorf("velocity: %w: %d indices", mesh.ErrTriangleStride, len(triangles))
	}
	n := uint32(len(vertices))
	for i, idx := range triangles {
		if idx >= n {
			return fmt.Errorf("velocity: %w: index %d at %d", mesh.ErrIndexOutOfRange, idx, i)
		}
	}
	return nil
}

// SetTransform replaces the world transform read by the next Update and by
// VelocityAt.
func (t *Tracker) SetTransform(tr mesh.Transform) {
	if tr != nil {
		t.transform = tr
	}
}

// Accumulate adds elapsed frame time. Non-positive dt is ignored.
func (t *Tracker) Accumulate(dt float32) {
	if dt > 0 {
		t.accumulated += dt
	}
}

// AccumulatedTime returns the time gathered since the last Update.
func (t *Tracker) AccumulatedTime() float32 {
	return t.accumulated
}

// Update derives each vertex's raw velocity over the accumulated time and
// blends it into the smoothed velocity with weight acc/ExpectedAttackTime,
// clamped to [0, 1]. The accumulator is reset afterwards.
func (t *Tracker) Update() {
	acc := t.accumulated
	weight := float32(1)
	if t.opts.ExpectedAttackTime > 0 {
		weight = math.Clamp(acc/t.opts.ExpectedAttackTime, 0, 1)
	}

	parallel.For(len(t.vertices), t.opts.Parallel, func(i int) {
		cur := t.transform.TransformPoint(t.vertices[i])
		var raw math.Vec3
		if acc > 0 {
			raw = cur.Sub(t.prev[i]).Scale(1 / acc)
		}
		t.velocities[i] = t.velocities[i].Lerp(raw, weight)
		t.prev[i] = cur
	})

	t.accumulated = 0
	metrics.Default.VelocityUpdates.Inc()
}

// VelocityAt returns the smoothed velocity at a world-space point: the
// inverse-distance blend of the velocities at the corners of the nearest
// triangle. Zero when the mesh has no triangles.
func (t *Tracker) VelocityAt(world math.Vec3) math.Vec3 {
	local := t.transform.InverseTransformPoint(world)
	tri, ok := nearest(t.vertices, t.triangles, local)
	if !ok {
		return math.Vec3{}
	}

	corners := picking.TriangleVertices(t.triangles, tri)
	var positions [3]math.Vec3
	for k, vi := range corners {
		positions[k] = t.transform.TransformPoint(t.vertices[vi])
	}
	return blend(t.velocities, corners, positions, world)
}

// Velocity returns the smoothed velocity of vertex i.
func (t *Tracker) Velocity(i int) math.Vec3 {
	return t.velocities[i]
}

// Velocities returns a copy of the smoothed per-vertex velocities.
func (t *Tracker) Velocities() []math.Vec3 {
	out := make([]math.Vec3, len(t.velocities))
	copy(out, t.velocities)
	return out
}

// VertexCount returns the number of tracked vertices.
func (t *Tracker) VertexCount() int {
	return len(t.vertices)
}

func nearest(vertices []math.Vec3, triangles []uint32, local math.Vec3) (int, bool) {
	tri, _, ok := picking.Nearest(vertices, triangles, local)
	result := "hit"
	if !ok {
		result = "miss"
	}
	metrics.Default.NearestQueries.WithLabelValues(result).Inc()
	return tri, ok
}

// blend averages the corner velocities weighted by 1/distance to p.
func blend(velocities []math.Vec3, corners [3]int, positions [3]math.Vec3, p math.Vec3) math.Vec3 {
	var sum math.Vec3
	var weights float32
	for k, vi := range corners {
		w := 1 / max(p.Distance(positions[k]), minSampleDistance)
		sum = sum.Add(velocities[vi].Scale(w))
		weights += w
	}
	return sum.Scale(1 / weights)
}
