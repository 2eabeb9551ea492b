// Package impact combines edge type, mass and velocity at a weapon contact
// point into a single hit report.
package impact

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/strikemesh/internal/adjacency"
	"github.com/Faultbox/strikemesh/internal/classify"
	"github.com/Faultbox/strikemesh/internal/logger"
	"github.com/Faultbox/strikemesh/internal/mass"
	"github.com/Faultbox/strikemesh/internal/mesh"
	"github.com/Faultbox/strikemesh/internal/metrics"
	"github.com/Faultbox/strikemesh/internal/parallel"
	"github.com/Faultbox/strikemesh/internal/picking"
	"github.com/Faultbox/strikemesh/pkg/math"
)

// alignmentExponent sharpens the falloff of energy as motion turns away from
// the surface normal.
const alignmentExponent = 4

const minCornerDistance = 1e-6

// Impact errors.
var (
	ErrNoContact    = errors.New("impact: no triangle near contact point")
	ErrNilTransform = errors.New("impact: nil transform")
)

// VelocitySampler returns the velocity of a body at a world point.
// velocity.Tracker and velocity.RigidEstimator satisfy it.
type VelocitySampler interface {
	VelocityAt(world math.Vec3) math.Vec3
}

// Weapon is a classified, mass-weighted mesh ready for contact queries.
type Weapon struct {
	Mesh      *mesh.Snapshot
	Edges     classify.Result
	Weights   []float32
	TotalMass float32 // kg, spread over Weights
}

// NewWeapon classifies s and computes its mass distribution.
func NewWeapon(s *mesh.Snapshot, cache *adjacency.Cache, p classify.Params, totalMass float32, opts parallel.Options) (*Weapon, error) {
	edges, err := classify.ClassifyMesh(s, cache, p, opts)
	if err != nil {
		return nil, err
	}
	weights, err := mass.ComputeMassesWith(s.Vertices, s.Triangles, opts)
	if err != nil {
		return nil, fmt.Errorf("impact: %w", err)
	}
	return &Weapon{
		Mesh:      s,
		Edges:     edges,
		Weights:   weights,
		TotalMass: totalMass,
	}, nil
}

// Contact describes one hit. Weapon and Target may be nil, meaning at rest.
type Contact struct {
	Point     math.Vec3      // world space
	Transform mesh.Transform // weapon local to world
	Weapon    VelocitySampler
	Target    VelocitySampler
}

// Report is the outcome of a contact query.
type Report struct {
	Triangle   int
	Corners    [3]int
	Nearest    int // corner closest to the contact
	DistanceSq float32

	EdgeType classify.EdgeType // type of the nearest corner
	Score    float32           // inverse-distance blend of corner scores

	MassShare float32 // fraction of total mass on the triangle
	Mass      float32

	Normal           math.Vec3 // world space, unit
	WeaponVelocity   math.Vec3
	TargetVelocity   math.Vec3
	RelativeVelocity math.Vec3

	Alignment float32 // max(dot(normal, dir(relative)), 0)^4
	Energy    float32 // ½·m·|v|² scaled by Alignment
}

// Analyze resolves the contact against the nearest triangle of the weapon.
func (w *Weapon) Analyze(c Contact) (Report, error) {
	if c.Transform == nil {
		return Report{}, ErrNilTransform
	}
	s := w.Mesh
	local := c.Transform.InverseTransformPoint(c.Point)

	tri, distSq, ok := picking.Nearest(s.Vertices, s.Triangles, local)
	if !ok {
		metrics.Default.NearestQueries.WithLabelValues("miss").Inc()
		return Report{}, ErrNoContact
	}
	metrics.Default.NearestQueries.WithLabelValues("hit").Inc()

	r := Report{
		Triangle:   tri,
		Corners:    picking.TriangleVertices(s.Triangles, tri),
		DistanceSq: distSq,
	}

	var weights [3]float32
	var wsum float32
	closest := float32(-1)
	for k, vi := range r.Corners {
		d := local.Distance(s.Vertices[vi])
		if closest < 0 || d < closest {
			closest = d
			r.Nearest = vi
		}
		weights[k] = 1 / max(d, minCornerDistance)
		wsum += weights[k]
	}

	var localNormal math.Vec3
	for k, vi := range r.Corners {
		f := weights[k] / wsum
		r.Score += w.Edges.Scores[vi] * f
		localNormal = localNormal.Add(s.Normals[vi].Scale(f))
	}
	r.EdgeType = w.Edges.Types[r.Nearest]

	r.MassShare = mass.TriangleMass(w.Weights, s.Triangles, tri)
	r.Mass = r.MassShare * w.TotalMass

	r.Normal = mesh.TransformNormal(c.Transform, local, localNormal)

	if c.Weapon != nil {
		r.WeaponVelocity = c.Weapon.VelocityAt(c.Point)
	}
	if c.Target != nil {
		r.TargetVelocity = c.Target.VelocityAt(c.Point)
	}
	r.RelativeVelocity = r.WeaponVelocity.Sub(r.TargetVelocity)

	r.Alignment = Alignment(r.Normal, r.RelativeVelocity)
	r.Energy = KineticEnergy(r.Mass, r.RelativeVelocity) * r.Alignment

	metrics.Default.ImpactsAnalyzed.WithLabelValues(r.EdgeType.String()).Inc()
	logger.Named("impact").Debug("contact analyzed",
		zap.Stringer("mesh", s.ID),
		zap.Int("triangle", tri),
		zap.Stringer("edge", r.EdgeType),
		zap.Float32("score", r.Score),
		zap.Float32("energy", r.Energy))
	return r, nil
}

// KineticEnergy returns ½·m·|v|².
func KineticEnergy(m float32, v math.Vec3) float32 {
	return 0.5 * m * v.LengthSq()
}

// Alignment returns max(dot(normal, dir(v)), 0)^4. It is 0 for zero velocity.
func Alignment(normal, v math.Vec3) float32 {
	dir := v.Normalize()
	d := max(normal.Normalize().Dot(dir), 0)
	return math.Pow(d, alignmentExponent)
}
