package classify

import (
	stdmath "math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/strikemesh/internal/adjacency"
	"github.com/Faultbox/strikemesh/internal/mesh"
	"github.com/Faultbox/strikemesh/internal/parallel"
	"github.com/Faultbox/strikemesh/pkg/math"
)

var up = math.Vec3{Y: 1}

func upNormals(n int) []math.Vec3 {
	normals := make([]math.Vec3, n)
	for i := range normals {
		normals[i] = up
	}
	return normals
}

// flatGrid lays a w x h grid in the XZ plane with +Y normals.
func flatGrid(w, h int, height func(x, z int) float32) ([]math.Vec3, []uint32) {
	verts := make([]math.Vec3, 0, w*h)
	for z := 0; z < h; z++ {
		for x := 0; x < w; x++ {
			var y float32
			if height != nil {
				y = height(x, z)
			}
			verts = append(verts, math.Vec3{X: float32(x), Y: y, Z: float32(z)})
		}
	}
	var tris []uint32
	for z := 0; z < h-1; z++ {
		for x := 0; x < w-1; x++ {
			i := uint32(z*w + x)
			tris = append(tris, i, i+1, i+uint32(w), i+1, i+uint32(w)+1, i+uint32(w))
		}
	}
	return verts, tris
}

// narrowCone has its apex at index 0, one unit above a ring of radius 0.1.
func narrowCone(segments int) ([]math.Vec3, []uint32) {
	verts := []math.Vec3{{Y: 1}}
	for i := 0; i < segments; i++ {
		a := 2 * stdmath.Pi * float64(i) / float64(segments)
		verts = append(verts, math.Vec3{
			X: float32(0.1 * stdmath.Cos(a)),
			Z: float32(0.1 * stdmath.Sin(a)),
		})
	}
	var tris []uint32
	for i := 0; i < segments; i++ {
		tris = append(tris, 0, uint32(1+i), uint32(1+(i+1)%segments))
	}
	return verts, tris
}

// fan has vertex 0 at the origin with neighbors 1 (+X), 2 (-Y) and 3 (-X).
func fan() ([]math.Vec3, []uint32) {
	verts := []math.Vec3{{}, {X: 1}, {Y: -1}, {X: -1}}
	return verts, []uint32{0, 1, 2, 0, 2, 3}
}

func depthOne() Params {
	p := DefaultParams()
	p.Depth = 1
	return p
}

func TestFlatGridIsBlunt(t *testing.T) {
	verts, tris := flatGrid(5, 5, nil)
	g := adjacency.Build(len(verts), tris)

	res := Classify(verts, upNormals(len(verts)), g, DefaultParams())
	for i := range verts {
		assert.Equal(t, Blunt, res.Types[i], "vertex %d", i)
		assert.InDelta(t, 0, res.Scores[i], 1e-6, "vertex %d", i)
	}
	assert.Equal(t, [EdgeTypeCount]int{25, 0, 0}, res.Counts())
}

func TestConeTipIsSpike(t *testing.T) {
	verts, tris := narrowCone(8)
	g := adjacency.Build(len(verts), tris)

	score, typ := ClassifyVertex(0, verts, upNormals(len(verts)), g, depthOne())
	assert.Equal(t, Spike, typ)
	assert.InDelta(t, 2/stdmath.Sqrt(1.01), score, 1e-4)
}

func TestDepthDecayZeroMatchesDepthOne(t *testing.T) {
	verts, tris := narrowCone(8)
	g := adjacency.Build(len(verts), tris)
	normals := upNormals(len(verts))

	s1, t1 := ClassifyVertex(0, verts, normals, g, depthOne())
	s3, t3 := ClassifyVertex(0, verts, normals, g, DefaultParams())
	assert.Equal(t, t1, t3)
	assert.InDelta(t, s1, s3, 1e-6)
}

func TestFanIsBlade(t *testing.T) {
	verts, tris := fan()
	g := adjacency.Build(len(verts), tris)

	score, typ := ClassifyVertex(0, verts, upNormals(4), g, depthOne())
	assert.Equal(t, Blade, typ)
	assert.InDelta(t, 2.0/3.0, score, 1e-6)
}

func TestLayeredWalkCountsRepeatedVertices(t *testing.T) {
	verts, tris := fan()
	g := adjacency.Build(len(verts), tris)

	p := DefaultParams()
	p.Depth = 2
	p.DepthDecay = 1

	// hop 1: [1 2 3] -> |dot| 0, 1, 0
	// hop 2: [2 1 3 2] -> |dot| 1, 0, 0, 1
	score, typ := ClassifyVertex(0, verts, upNormals(4), g, p)
	assert.Equal(t, Blade, typ)
	assert.InDelta(t, 2*3.0/7.0, score, 1e-6)
}

func TestMaxCollectedStopsWalk(t *testing.T) {
	verts, tris := fan()
	g := adjacency.Build(len(verts), tris)

	p := DefaultParams()
	p.Depth = 2
	p.DepthDecay = 1
	p.MaxCollected = 3

	score, _ := ClassifyVertex(0, verts, upNormals(4), g, p)
	assert.InDelta(t, 2.0/3.0, score, 1e-6)
}

func TestMaxNeighborsCapsDirectNeighbors(t *testing.T) {
	verts, tris := fan()
	g := adjacency.Build(len(verts), tris)

	p := depthOne()
	p.MaxNeighbors = 1

	score, typ := ClassifyVertex(0, verts, upNormals(4), g, p)
	assert.Equal(t, Blunt, typ)
	assert.InDelta(t, 0, score, 1e-6)
}

func TestMaxNeighborsCapsEachLayerSource(t *testing.T) {
	verts, tris := fan()
	g := adjacency.Build(len(verts), tris)

	p := DefaultParams()
	p.Depth = 2
	p.DepthDecay = 1

	// hop 1: [1 2] -> |dot| 0, 1
	// hop 2: 1 feeds [2], 2 feeds [1 3] -> |dot| 1, 0, 0
	p.MaxNeighbors = 2
	score, typ := ClassifyVertex(0, verts, upNormals(4), g, p)
	assert.Equal(t, Blade, typ)
	assert.InDelta(t, 2*2.0/5.0, score, 1e-6)

	// hop 1: [1], hop 2: 1 feeds [2]
	p.MaxNeighbors = 1
	score, _ = ClassifyVertex(0, verts, upNormals(4), g, p)
	assert.InDelta(t, 1, score, 1e-6)
}

func TestDepthZeroIsBlunt(t *testing.T) {
	verts, tris := narrowCone(8)
	g := adjacency.Build(len(verts), tris)

	p := DefaultParams()
	p.Depth = 0
	score, typ := ClassifyVertex(0, verts, upNormals(len(verts)), g, p)
	assert.Equal(t, Blunt, typ)
	assert.Zero(t, score)

	res := Classify(verts, upNormals(len(verts)), g, p)
	assert.Equal(t, [EdgeTypeCount]int{len(verts), 0, 0}, res.Counts())
}

func TestDistanceWeighting(t *testing.T) {
	verts := []math.Vec3{{}, {X: 1}, {Y: -2}, {X: -1}}
	_, tris := fan()
	g := adjacency.Build(len(verts), tris)

	p := depthOne()
	p.DistanceWeightPower = 2

	// weights 1, 1/4, 1
	score, typ := ClassifyVertex(0, verts, upNormals(4), g, p)
	assert.Equal(t, Blunt, typ)
	assert.InDelta(t, 2*0.25/2.25, score, 1e-6)
}

func TestCoincidentNeighborSkipped(t *testing.T) {
	verts := []math.Vec3{{}, {}, {Y: -1}, {X: -1}}
	_, tris := fan()
	g := adjacency.Build(len(verts), tris)

	score, _ := ClassifyVertex(0, verts, upNormals(4), g, depthOne())
	assert.InDelta(t, 1.0, score, 1e-6)
}

func TestNonPositiveMaxCollected(t *testing.T) {
	verts, tris := narrowCone(8)
	g := adjacency.Build(len(verts), tris)

	for _, mc := range []int{0, -5} {
		p := DefaultParams()
		p.MaxCollected = mc
		score, typ := ClassifyVertex(0, verts, upNormals(len(verts)), g, p)
		assert.Equal(t, Blunt, typ)
		assert.Zero(t, score)
	}
}

func TestIsolatedVertexIsBlunt(t *testing.T) {
	verts := []math.Vec3{{}, {X: 1}, {Z: 1}, {Y: 5}}
	g := adjacency.Build(len(verts), []uint32{0, 1, 2})

	score, typ := ClassifyVertex(3, verts, upNormals(4), g, DefaultParams())
	assert.Equal(t, Blunt, typ)
	assert.Zero(t, score)
}

func TestDegenerateNormalFallsBackToUp(t *testing.T) {
	verts, tris := narrowCone(8)
	g := adjacency.Build(len(verts), tris)

	normals := upNormals(len(verts))
	want, _ := ClassifyVertex(0, verts, normals, g, depthOne())

	normals[0] = math.Vec3{}
	got, typ := ClassifyVertex(0, verts, normals, g, depthOne())
	assert.Equal(t, Spike, typ)
	assert.InDelta(t, want, got, 1e-6)
}

func TestUnnormalizedNormal(t *testing.T) {
	verts, tris := narrowCone(8)
	g := adjacency.Build(len(verts), tris)

	normals := upNormals(len(verts))
	want, _ := ClassifyVertex(0, verts, normals, g, depthOne())

	normals[0] = math.Vec3{Y: 7}
	got, _ := ClassifyVertex(0, verts, normals, g, depthOne())
	assert.InDelta(t, want, got, 1e-6)
}

func bumpyGrid() ([]math.Vec3, []uint32, []math.Vec3) {
	verts, tris := flatGrid(24, 24, func(x, z int) float32 {
		return float32(0.6 * stdmath.Sin(float64(x)*0.7) * stdmath.Cos(float64(z)*0.4))
	})
	normals := make([]math.Vec3, len(verts))
	for i, v := range verts {
		normals[i] = math.Vec3{X: -v.Y * 0.3, Y: 1, Z: v.Y * 0.2}
	}
	return verts, tris, normals
}

func TestClassifyDeterministicAcrossWorkers(t *testing.T) {
	verts, tris, normals := bumpyGrid()
	g := adjacency.Build(len(verts), tris)
	p := DefaultParams()
	p.DepthDecay = 0.5
	p.DistanceWeightPower = 1

	serial := ClassifyWith(verts, normals, g, p, parallel.Options{Workers: 1})
	for _, workers := range []int{2, 4, 8} {
		got := ClassifyWith(verts, normals, g, p, parallel.Options{Workers: workers, BatchSize: 7})
		assert.Equal(t, serial, got, "workers=%d", workers)
	}
}

func TestClassifyScoreAgreesWithClassify(t *testing.T) {
	verts, tris, normals := bumpyGrid()
	g := adjacency.Build(len(verts), tris)

	for _, p := range []Params{DefaultParams(), depthOne(), {Depth: 4, MaxNeighbors: 8, MaxCollected: 64, SplitLow: 0.05, SplitHigh: 0.1, DepthDecay: 0.8}} {
		res := Classify(verts, normals, g, p)
		for i := range verts {
			assert.Equal(t, res.Types[i], ClassifyScore(res.Scores[i], p), "vertex %d", i)
			assert.GreaterOrEqual(t, res.Scores[i], float32(0))
			assert.LessOrEqual(t, res.Scores[i], float32(2))
		}
	}
}

func TestClassifyScore(t *testing.T) {
	p := DefaultParams()
	tests := []struct {
		score float32
		want  EdgeType
	}{
		{0, Blunt},
		{0.4, Blunt},
		{0.41, Blade},
		{1.39, Blade},
		{1.4, Spike},
		{2, Spike},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyScore(tt.score, p), "score %g", tt.score)
	}
}

func TestClassifyMesh(t *testing.T) {
	verts, tris := narrowCone(12)
	s, err := mesh.NewSnapshot(verts, tris, upNormals(len(verts)))
	require.NoError(t, err)

	cache := adjacency.NewCache()
	res, err := ClassifyMesh(s, cache, DefaultParams(), parallel.Options{})
	require.NoError(t, err)
	assert.Len(t, res.Types, len(verts))
	assert.Equal(t, Spike, res.Types[0])
	assert.Equal(t, 1, cache.Len())
}

func TestClassifyMeshRejectsInvalidSnapshot(t *testing.T) {
	s := &mesh.Snapshot{
		ID:        mesh.NewID(),
		Vertices:  []math.Vec3{{}, {X: 1}, {Z: 1}},
		Triangles: []uint32{0, 1, 2},
		Normals:   upNormals(2),
	}
	_, err := ClassifyMesh(s, adjacency.NewCache(), DefaultParams(), parallel.Options{})
	assert.ErrorIs(t, err, mesh.ErrNormalCount)
}
