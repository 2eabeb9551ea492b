package main

import (
	"flag"
	"fmt"
	stdmath "math"
	"slices"
	"strconv"

	"github.com/aquilax/go-perlin"

	"github.com/Faultbox/strikemesh/internal/adjacency"
	"github.com/Faultbox/strikemesh/internal/classify"
	"github.com/Faultbox/strikemesh/internal/config"
	"github.com/Faultbox/strikemesh/internal/impact"
	"github.com/Faultbox/strikemesh/internal/mass"
	"github.com/Faultbox/strikemesh/internal/mesh"
	"github.com/Faultbox/strikemesh/internal/meshgen"
	"github.com/Faultbox/strikemesh/internal/picking"
	"github.com/Faultbox/strikemesh/internal/velocity"
	"github.com/Faultbox/strikemesh/pkg/formats"
	"github.com/Faultbox/strikemesh/pkg/math"
)

// meshFlags registers the shape noise options shared by every command.
func meshFlags(fs *flag.FlagSet) *meshgen.Noise {
	n := &meshgen.Noise{}
	fs.Func("noise", "Perlin jitter amplitude for generated shapes", func(s string) error {
		f, err := strconv.ParseFloat(s, 32)
		n.Amplitude = float32(f)
		return err
	})
	fs.Int64Var(&n.Seed, "seed", 1, "Noise seed")
	return n
}

// loadMesh builds a named shape or reads an OBJ file.
func loadMesh(arg string, noise meshgen.Noise) (*mesh.Snapshot, error) {
	if slices.Contains(meshgen.Shapes(), arg) {
		return meshgen.Shape(arg, noise)
	}
	obj, err := formats.ParseOBJFile(arg)
	if err != nil {
		return nil, err
	}
	if obj.SkippedTriangles > 0 {
		fmt.Printf("Skipped %d degenerate triangles\n", obj.SkippedTriangles)
	}
	return obj.Snapshot()
}

func cmdClassify(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("classify", flag.ExitOnError)
	verbose := fs.Bool("v", false, "Print every vertex")
	noise := meshFlags(fs)
	fs.Parse(args)

	if fs.NArg() < 1 {
		return usageError("classify [-v] [-noise a] [-seed n] <mesh>")
	}
	s, err := loadMesh(fs.Arg(0), *noise)
	if err != nil {
		return err
	}

	res, err := classify.ClassifyMesh(s, adjacency.NewCache(), cfg.Classifier, cfg.ParallelOptions())
	if err != nil {
		return err
	}

	counts := res.Counts()
	fmt.Printf("Mesh:      %s\n", fs.Arg(0))
	fmt.Printf("Vertices:  %d\n", s.VertexCount())
	fmt.Printf("Triangles: %d\n", s.TriangleCount())
	fmt.Println()
	for t, n := range counts {
		pct := 100 * float64(n) / float64(s.VertexCount())
		fmt.Printf("  %-6s %6d  %5.1f%%\n", classify.EdgeType(t), n, pct)
	}

	if *verbose {
		fmt.Println()
		fmt.Printf("%6s  %-28s  %6s  %s\n", "vertex", "position", "score", "type")
		for i, v := range s.Vertices {
			fmt.Printf("%6d  (%8.4f %8.4f %8.4f)  %6.3f  %s\n", i, v.X, v.Y, v.Z, res.Scores[i], res.Types[i])
		}
	}
	return nil
}

func cmdMass(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("mass", flag.ExitOnError)
	top := fs.Int("n", 10, "Number of heaviest vertices to show")
	noise := meshFlags(fs)
	fs.Parse(args)

	if fs.NArg() < 1 {
		return usageError("mass [-n count] [-noise a] [-seed n] <mesh>")
	}
	s, err := loadMesh(fs.Arg(0), *noise)
	if err != nil {
		return err
	}

	weights, err := mass.ForSnapshot(s, cfg.ParallelOptions())
	if err != nil {
		return err
	}

	lo, hi := mass.Range(weights)
	fmt.Printf("Mesh:     %s\n", fs.Arg(0))
	fmt.Printf("Vertices: %d\n", len(weights))
	fmt.Printf("Weight:   min %.6f  max %.6f  mean %.6f\n", lo, hi, 1/float64(len(weights)))
	fmt.Printf("Mass:     %.3f kg total\n", cfg.Analysis.WeaponMass)
	fmt.Println()
	fmt.Println("Heaviest vertices:")
	for _, i := range mass.Heaviest(weights, *top) {
		v := s.Vertices[i]
		fmt.Printf("  %6d  (%8.4f %8.4f %8.4f)  %.6f  %.4f kg\n",
			i, v.X, v.Y, v.Z, weights[i], weights[i]*cfg.Analysis.WeaponMass)
	}
	return nil
}

func cmdNearest(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("nearest", flag.ExitOnError)
	noise := meshFlags(fs)
	fs.Parse(args)

	if fs.NArg() < 4 {
		return usageError("nearest [-noise a] [-seed n] <mesh> <x> <y> <z>")
	}
	var p [3]float32
	for i := range p {
		f, err := strconv.ParseFloat(fs.Arg(1+i), 32)
		if err != nil {
			return fmt.Errorf("coordinate %q: %w", fs.Arg(1+i), err)
		}
		p[i] = float32(f)
	}
	s, err := loadMesh(fs.Arg(0), *noise)
	if err != nil {
		return err
	}

	point := math.FromArray(p)
	tri, distSq, ok := picking.Nearest(s.Vertices, s.Triangles, point)
	if !ok {
		fmt.Println("No triangle found")
		return nil
	}

	corners := picking.TriangleVertices(s.Triangles, tri)
	a, b, c := s.Vertices[corners[0]], s.Vertices[corners[1]], s.Vertices[corners[2]]
	_, region := picking.PointTriangleDistanceSq(point, a, b, c)
	closest := picking.ClosestPointOnTriangle(point, a, b, c)

	fmt.Printf("Point:    (%g %g %g)\n", point.X, point.Y, point.Z)
	fmt.Printf("Triangle: %d  vertices %d %d %d\n", tri, corners[0], corners[1], corners[2])
	fmt.Printf("Region:   %s\n", region)
	fmt.Printf("Closest:  (%.4f %.4f %.4f)\n", closest.X, closest.Y, closest.Z)
	fmt.Printf("Distance: %.6f (squared %.6f)\n", math.Sqrt(distSq), distSq)
	return nil
}

func cmdSwing(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("swing", flag.ExitOnError)
	ticks := fs.Int("ticks", 25, "Physics ticks in the swing")
	arc := fs.Float64("arc", 120, "Swing arc in degrees")
	jitter := fs.Float64("jitter", 0.3, "Frame time jitter as a fraction of the fixed step")
	rigid := fs.Bool("rigid", false, "Use the unsmoothed rigid-body estimator")
	noise := meshFlags(fs)
	fs.Parse(args)

	if fs.NArg() < 1 {
		return usageError("swing [-ticks n] [-arc deg] [-jitter f] [-rigid] <mesh>")
	}
	s, err := loadMesh(fs.Arg(0), *noise)
	if err != nil {
		return err
	}

	weapon, err := impact.NewWeapon(s, adjacency.NewCache(), cfg.Classifier, cfg.Analysis.WeaponMass, cfg.ParallelOptions())
	if err != nil {
		return err
	}

	// Swing about the grip: rotate around +Z from -arc/2 to +arc/2 while stepping forward
	half := halfArc(*arc)
	axis := math.Vec3{Z: 1}
	from := math.QuatFromAxisAngle(axis, -half)
	to := math.QuatFromAxisAngle(axis, half)
	poseAt := func(t float32) mesh.RigidTransform {
		pose := mesh.IdentityTransform()
		pose.Rotation = from.Slerp(to, t)
		pose.Position = math.Vec3{X: 0.3 * t}
		return pose
	}

	start := poseAt(0)
	var sampler swingBody
	var step func(dt float32, pose mesh.RigidTransform)
	if *rigid {
		r, err := velocity.NewRigidEstimator(s.Vertices, s.Triangles, start)
		if err != nil {
			return err
		}
		sampler = r
		step = func(dt float32, pose mesh.RigidTransform) {
			r.Accumulate(dt)
			r.Update(pose)
		}
	} else {
		tr, err := velocity.NewTrackerForSnapshot(s, start, cfg.VelocityOptions())
		if err != nil {
			return err
		}
		sampler = tr
		step = func(dt float32, pose mesh.RigidTransform) {
			tr.Accumulate(dt)
			tr.SetTransform(pose)
			tr.Update()
		}
	}

	fixed := float32(cfg.Velocity.FixedStep.Seconds())
	frames := perlin.NewPerlin(2, 2, 3, noise.Seed)
	var elapsed float32
	pose := start
	for i := 1; i <= *ticks; i++ {
		j := float32(frames.Noise1D(float64(i)*0.37)) * float32(*jitter)
		dt := fixed * max(0.1, 1+j)
		elapsed += dt
		pose = poseAt(float32(i) / float32(*ticks))
		step(dt, pose)
	}

	lead := leadingVertex(s, pose, sampler.Velocities())
	contact := pose.TransformPoint(s.Vertices[lead])
	r, err := weapon.Analyze(impact.Contact{Point: contact, Transform: pose, Weapon: sampler})
	if err != nil {
		return err
	}

	fmt.Printf("Mesh:       %s\n", fs.Arg(0))
	fmt.Printf("Swing:      %d ticks, %.3fs, %.0f degrees\n", *ticks, elapsed, *arc)
	fmt.Printf("Contact:    vertex %d at (%.4f %.4f %.4f)\n", lead, contact.X, contact.Y, contact.Z)
	fmt.Printf("Triangle:   %d  vertices %d %d %d\n", r.Triangle, r.Corners[0], r.Corners[1], r.Corners[2])
	fmt.Printf("Edge:       %s (score %.3f)\n", r.EdgeType, r.Score)
	fmt.Printf("Mass:       %.4f kg (%.2f%% of weapon)\n", r.Mass, 100*r.MassShare)
	fmt.Printf("Velocity:   (%.3f %.3f %.3f) m/s, |v| %.3f\n",
		r.RelativeVelocity.X, r.RelativeVelocity.Y, r.RelativeVelocity.Z, r.RelativeVelocity.Length())
	fmt.Printf("Normal:     (%.3f %.3f %.3f)\n", r.Normal.X, r.Normal.Y, r.Normal.Z)
	fmt.Printf("Alignment:  %.4f\n", r.Alignment)
	fmt.Printf("Energy:     %.4f J\n", r.Energy)
	return nil
}

// halfArc converts a swing arc in degrees to half its angle in radians.
func halfArc(degrees float64) float32 {
	return float32(degrees * stdmath.Pi / 360)
}

// swingBody is a velocity estimator driven by the swing loop.
type swingBody interface {
	impact.VelocitySampler
	Velocities() []math.Vec3
}

// leadingVertex returns the vertex moving fastest along its own world normal,
// where a swing meets its target first.
func leadingVertex(s *mesh.Snapshot, pose mesh.RigidTransform, velocities []math.Vec3) int {
	best, bestSpeed := 0, float32(0)
	rot := pose.Rotation.Normalize()
	for i, v := range velocities {
		speed := rot.Rotate(s.Normals[i]).Dot(v)
		if speed > bestSpeed {
			best, bestSpeed = i, speed
		}
	}
	return best
}
