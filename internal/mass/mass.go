// Package mass spreads unit mass over mesh vertices in proportion to the
// area of the triangles touching them.
package mass

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Faultbox/strikemesh/internal/mesh"
	"github.com/Faultbox/strikemesh/internal/metrics"
	"github.com/Faultbox/strikemesh/internal/parallel"
	"github.com/Faultbox/strikemesh/pkg/math"
)

// ErrZeroArea is returned when the mesh has no surface to distribute mass over.
var ErrZeroArea = errors.New("mesh has zero total area")

// TriangleArea returns |cross(b-a, c-a)| / 2.
func TriangleArea(a, b, c math.Vec3) float32 {
	return b.Sub(a).Cross(c.Sub(a)).Length() / 2
}

// ComputeMasses returns one weight per vertex. Every triangle adds its area to
// each of its three corners; the result is normalized to sum to 1.
func ComputeMasses(vertices []math.Vec3, triangles []uint32) ([]float32, error) {
	return ComputeMassesWith(vertices, triangles, parallel.Options{})
}

// ComputeMassesWith is ComputeMasses with explicit fan-out options.
func ComputeMassesWith(vertices []math.Vec3, triangles []uint32, opts parallel.Options) ([]float32, error) {
	if len(triangles)%3 != 0 {
		return nil, fmt.Errorf("mass: %w: %d indices", mesh.ErrTriangleStride, len(triangles))
	}
	n := uint32(len(vertices))
	for i, idx := range triangles {
		if idx >= n {
			return nil, fmt.Errorf("mass: %w: index %d at %d, %d vertices", mesh.ErrIndexOutOfRange, idx, i, n)
		}
	}

	triCount := len(triangles) / 3
	areas := make([]float32, triCount)
	parallel.For(triCount, opts, func(t int) {
		a, b, c := triangles[t*3], triangles[t*3+1], triangles[t*3+2]
		areas[t] = TriangleArea(vertices[a], vertices[b], vertices[c])
	})

	// Scatter serially; corners are shared between triangles
	weights := make([]float32, len(vertices))
	for t, area := range areas {
		weights[triangles[t*3]] += area
		weights[triangles[t*3+1]] += area
		weights[triangles[t*3+2]] += area
	}

	var sum float32
	for _, w := range weights {
		sum += w
	}
	if sum == 0 {
		return nil, ErrZeroArea
	}
	for i := range weights {
		weights[i] /= sum
	}

	metrics.Default.MassComputations.Inc()
	return weights, nil
}

// ForSnapshot computes the weights of a validated snapshot.
func ForSnapshot(s *mesh.Snapshot, opts parallel.Options) ([]float32, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("mass: %w", err)
	}
	return ComputeMassesWith(s.Vertices, s.Triangles, opts)
}

// TriangleMass returns the summed weight of the corners of triangle tri.
func TriangleMass(weights []float32, triangles []uint32, tri int) float32 {
	return weights[triangles[tri*3]] + weights[triangles[tri*3+1]] + weights[triangles[tri*3+2]]
}

// Heaviest returns up to n vertex indices ordered by descending weight.
// Equal weights keep ascending index order. n <= 0 yields an empty slice.
func Heaviest(weights []float32, n int) []int {
	idx := make([]int, len(weights))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		switch {
		case weights[a] > weights[b]:
			return -1
		case weights[a] < weights[b]:
			return 1
		}
		return 0
	})
	return idx[:max(0, min(n, len(idx)))]
}

// Range returns the smallest and largest weight.
func Range(weights []float32) (lo, hi float32) {
	if len(weights) == 0 {
		return 0, 0
	}
	return slices.Min(weights), slices.Max(weights)
}
