// Package classify labels mesh vertices Blunt, Blade or Spike from how their
// neighbors sit relative to the vertex normal.
//
// A flat neighborhood has edge directions perpendicular to the normal
// (|dot| near 0). A tip has neighbors falling away along the normal
// (|dot| near 1). The weighted average of |dot| over a breadth-first walk
// of the adjacency graph decides the type; twice that average is the score.
package classify

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/strikemesh/internal/adjacency"
	"github.com/Faultbox/strikemesh/internal/logger"
	"github.com/Faultbox/strikemesh/internal/mesh"
	"github.com/Faultbox/strikemesh/internal/metrics"
	"github.com/Faultbox/strikemesh/internal/parallel"
	"github.com/Faultbox/strikemesh/pkg/math"
)

const (
	layerCap   = 32  // vertices kept per BFS layer
	stagingCap = 128 // next-layer candidates staged before truncation

	degenerateNormalSq = 1e-6
)

// fallbackNormal replaces normals too short to normalize.
var fallbackNormal = math.Vec3{Y: 1}

// Result holds one score and type per vertex.
type Result struct {
	Scores []float32
	Types  []EdgeType
}

// Counts returns the number of vertices of each type, indexed by EdgeType.
func (r Result) Counts() [EdgeTypeCount]int {
	var c [EdgeTypeCount]int
	for _, t := range r.Types {
		c[t]++
	}
	return c
}

// Classify scores every vertex. Inputs must be consistent: one normal per
// vertex and a graph built from the same vertex buffer.
func Classify(vertices, normals []math.Vec3, g *adjacency.Graph, p Params) Result {
	return ClassifyWith(vertices, normals, g, p, parallel.Options{})
}

// ClassifyWith is Classify with explicit fan-out options.
// Output is identical for every worker count.
func ClassifyWith(vertices, normals []math.Vec3, g *adjacency.Graph, p Params, opts parallel.Options) Result {
	res := Result{
		Scores: make([]float32, len(vertices)),
		Types:  make([]EdgeType, len(vertices)),
	}
	parallel.For(len(vertices), opts, func(i int) {
		res.Scores[i], res.Types[i] = ClassifyVertex(i, vertices, normals, g, p)
	})
	return res
}

// ClassifyMesh validates s, fetches its graph from cache and classifies it.
func ClassifyMesh(s *mesh.Snapshot, cache *adjacency.Cache, p Params, opts parallel.Options) (Result, error) {
	if err := s.Validate(); err != nil {
		return Result{}, fmt.Errorf("classify: %w", err)
	}

	log := logger.Named("classifier")
	if n := countDegenerateNormals(s.Normals); n > 0 {
		log.Warn("degenerate normals replaced with +Y",
			zap.Stringer("mesh", s.ID),
			zap.Int("count", n))
	}

	start := time.Now()
	g := cache.ForSnapshot(s)
	res := ClassifyWith(s.Vertices, s.Normals, g, p, opts)
	elapsed := time.Since(start)

	counts := res.Counts()
	m := metrics.Default
	m.ClassifySeconds.Observe(elapsed.Seconds())
	for t, n := range counts {
		m.ClassifiedVertices.WithLabelValues(EdgeType(t).String()).Add(float64(n))
	}

	log.Info("mesh classified",
		zap.Stringer("mesh", s.ID),
		zap.Int("vertices", len(s.Vertices)),
		zap.Int("blunt", counts[Blunt]),
		zap.Int("blade", counts[Blade]),
		zap.Int("spike", counts[Spike]),
		zap.Duration("took", elapsed))

	return res, nil
}

func countDegenerateNormals(normals []math.Vec3) int {
	n := 0
	for _, nrm := range normals {
		if nrm.LengthSq() < degenerateNormalSq {
			n++
		}
	}
	return n
}

// accumulator sums weighted |dot| contributions for one vertex.
type accumulator struct {
	origin, normal math.Vec3
	p              Params
	weightedSum    float32
	weightSum      float32
}

// add folds in neighbor nb at the given layer weight. It reports false when
// nb is too close to the origin to define a direction.
func (a *accumulator) add(nb math.Vec3, layerWeight float32) bool {
	diff := nb.Sub(a.origin)
	sqr := diff.LengthSq()
	if sqr <= a.p.MinSqrDistance {
		return false
	}
	dir := diff.Scale(1 / math.Sqrt(sqr))
	absDot := math.Abs(a.normal.Dot(dir))

	w := layerWeight
	if a.p.DistanceWeightPower > 0 {
		w *= 1 / math.Pow(sqr, 0.5*a.p.DistanceWeightPower)
	}
	a.weightedSum += absDot * w
	a.weightSum += w
	return true
}

// ClassifyVertex returns the score in [0, 2] and type of vertex v.
//
// At depth 1 the direct neighbors are visited once each. At greater depths
// the walk expands layer by layer without deduplication, so vertices reached
// by several paths contribute several times; later layers are weighted by
// DepthDecay^(hop-1). MaxNeighbors caps how many neighbors each source vertex
// feeds into the next layer and MaxCollected caps total contributions.
func ClassifyVertex(v int, vertices, normals []math.Vec3, g *adjacency.Graph, p Params) (float32, EdgeType) {
	if p.MaxCollected <= 0 {
		return 0, Blunt
	}
	maxCollected := min(p.MaxCollected, MaxCollectedLimit)

	normal := normals[v]
	if nsq := normal.LengthSq(); nsq < degenerateNormalSq {
		normal = fallbackNormal
	} else {
		normal = normal.Scale(1 / math.Sqrt(nsq))
	}
	acc := accumulator{origin: vertices[v], normal: normal, p: p}

	if p.Depth == 1 {
		seen := 0
		for _, nb := range g.NeighborsOf(v) {
			if int(nb) == v {
				continue
			}
			if !acc.add(vertices[nb], 1) {
				continue
			}
			seen++
			if p.MaxNeighbors > 0 && seen >= p.MaxNeighbors {
				break
			}
			if seen >= maxCollected {
				break
			}
		}
	} else {
		walkLayers(v, vertices, g, p, maxCollected, &acc)
	}

	if acc.weightSum <= 0 {
		return 0, Blunt
	}
	avg := acc.weightedSum / acc.weightSum
	return math.Clamp(avg*2, 0, 2), typeFor(avg, p)
}

func walkLayers(v int, vertices []math.Vec3, g *adjacency.Graph, p Params, maxCollected int, acc *accumulator) {
	var layer [layerCap]int32
	var staged [stagingCap]int32

	count := 0
	for _, nb := range g.NeighborsOf(v) {
		if int(nb) == v {
			continue
		}
		if count < layerCap {
			layer[count] = nb
		}
		count++
		if p.MaxNeighbors > 0 && count >= p.MaxNeighbors {
			break
		}
	}
	layerLen := min(count, layerCap)

	collected := 0
	for hop := 1; hop <= p.Depth; hop++ {
		weight := math.Pow(p.DepthDecay, float32(hop-1))
		for _, nb := range layer[:layerLen] {
			if !acc.add(vertices[nb], weight) {
				continue
			}
			collected++
			if collected >= maxCollected {
				break
			}
		}
		if collected >= maxCollected {
			break
		}

		stagedLen := 0
		for _, src := range layer[:layerLen] {
			added := 0
			for _, nb := range g.NeighborsOf(int(src)) {
				if int(nb) == v {
					continue
				}
				if stagedLen < stagingCap {
					staged[stagedLen] = nb
				}
				stagedLen++
				added++
				if p.MaxNeighbors > 0 && added >= p.MaxNeighbors {
					break
				}
			}
			if collected+stagedLen >= maxCollected {
				break
			}
		}

		layerLen = min(stagedLen, layerCap)
		if layerLen == 0 {
			break
		}
		copy(layer[:layerLen], staged[:layerLen])
	}
}
