// Package mesh holds read-only mesh snapshots and the world transforms applied to them.
package mesh

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Faultbox/strikemesh/pkg/math"
)

// Snapshot validation errors.
var (
	ErrNoVertices        = errors.New("mesh has no vertices")
	ErrNoTriangles       = errors.New("mesh has no triangles")
	ErrTriangleStride    = errors.New("triangle index count is not a multiple of 3")
	ErrNormalCount       = errors.New("normal count does not match vertex count")
	ErrIndexOutOfRange   = errors.New("triangle index out of range")
	ErrDegenerateIndices = errors.New("triangle references the same vertex twice")
)

// ID identifies one mesh topology. Derived data (adjacency) is cached per ID.
type ID = uuid.UUID

// NewID returns a fresh mesh identity token.
func NewID() ID {
	return uuid.New()
}

// Snapshot is a mesh in local space: positions, a stride-3 index buffer and
// one unit normal per vertex. The analysis packages only read it.
type Snapshot struct {
	ID        ID
	Vertices  []math.Vec3
	Triangles []uint32
	Normals   []math.Vec3
}

// NewSnapshot validates the buffers and wraps them under a new ID.
// The slices are not copied.
func NewSnapshot(vertices []math.Vec3, triangles []uint32, normals []math.Vec3) (*Snapshot, error) {
	s := &Snapshot{
		ID:        NewID(),
		Vertices:  vertices,
		Triangles: triangles,
		Normals:   normals,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the snapshot invariants: non-empty buffers, matching normal
// count, whole triangles, and indices in [0, VertexCount).
func (s *Snapshot) Validate() error {
	if len(s.Vertices) == 0 {
		return ErrNoVertices
	}
	if len(s.Triangles) == 0 {
		return ErrNoTriangles
	}
	if len(s.Triangles)%3 != 0 {
		return fmt.Errorf("%w: %d indices", ErrTriangleStride, len(s.Triangles))
	}
	if len(s.Normals) != len(s.Vertices) {
		return fmt.Errorf("%w: %d normals, %d vertices", ErrNormalCount, len(s.Normals), len(s.Vertices))
	}

	n := uint32(len(s.Vertices))
	for t := 0; t < len(s.Triangles); t += 3 {
		a, b, c := s.Triangles[t], s.Triangles[t+1], s.Triangles[t+2]
		if a >= n || b >= n || c >= n {
			return fmt.Errorf("%w: triangle %d (%d, %d, %d), %d vertices", ErrIndexOutOfRange, t/3, a, b, c, n)
		}
		if a == b || b == c || c == a {
			return fmt.Errorf("%w: triangle %d (%d, %d, %d)", ErrDegenerateIndices, t/3, a, b, c)
		}
	}
	return nil
}

// VertexCount returns the number of vertices.
func (s *Snapshot) VertexCount() int {
	return len(s.Vertices)
}

// TriangleCount returns the number of triangles.
func (s *Snapshot) TriangleCount() int {
	return len(s.Triangles) / 3
}

// Bounds holds an axis-aligned bounding box.
type Bounds struct {
	Min math.Vec3
	Max math.Vec3
}

// Center returns the box midpoint.
func (b Bounds) Center() math.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the box extents.
func (b Bounds) Size() math.Vec3 {
	return b.Max.Sub(b.Min)
}

// Bounds returns the local-space bounding box of the vertices.
func (s *Snapshot) Bounds() Bounds {
	if len(s.Vertices) == 0 {
		return Bounds{}
	}
	b := Bounds{Min: s.Vertices[0], Max: s.Vertices[0]}
	for _, p := range s.Vertices[1:] {
		updateBounds(&b, p)
	}
	return b
}

func updateBounds(b *Bounds, p math.Vec3) {
	if p.X < b.Min.X {
		b.Min.X = p.X
	}
	if p.Y < b.Min.Y {
		b.Min.Y = p.Y
	}
	if p.Z < b.Min.Z {
		b.Min.Z = p.Z
	}
	if p.X > b.Max.X {
		b.Max.X = p.X
	}
	if p.Y > b.Max.Y {
		b.Max.Y = p.Y
	}
	if p.Z > b.Max.Z {
		b.Max.Z = p.Z
	}
}
