// Package meshgen builds procedural weapon-like meshes for tests, benchmarks
// and the command-line tool.
package meshgen

import (
	"errors"
	"fmt"
	stdmath "math"

	"github.com/aquilax/go-perlin"

	"github.com/Faultbox/strikemesh/internal/mesh"
	"github.com/Faultbox/strikemesh/pkg/math"
)

// Generator errors.
var (
	ErrUnknownShape = errors.New("unknown shape")
	ErrInvalidShape = errors.New("invalid shape dimensions")
)

// Noise jitters vertex positions along their normals with Perlin noise.
// A zero Amplitude leaves the mesh untouched.
type Noise struct {
	Amplitude float32
	Frequency float32 // defaults to 1
	Seed      int64
}

// Perlin generator settings: smoothing, frequency and octave count.
const (
	noiseAlpha   = 2.0
	noiseBeta    = 2.0
	noiseOctaves = 3
)

func (n Noise) apply(vertices, normals []math.Vec3) {
	if n.Amplitude == 0 {
		return
	}
	freq := float64(n.Frequency)
	if freq == 0 {
		freq = 1
	}
	p := perlin.NewPerlin(noiseAlpha, noiseBeta, noiseOctaves, n.Seed)
	for i, v := range vertices {
		d := p.Noise3D(float64(v.X)*freq, float64(v.Y)*freq, float64(v.Z)*freq)
		vertices[i] = v.Add(normals[i].Scale(n.Amplitude * float32(d)))
	}
}

// Grid returns a w x h vertex grid in the XZ plane with +Y normals.
func Grid(w, h int, cell float32, n Noise) (*mesh.Snapshot, error) {
	if w < 2 || h < 2 || cell <= 0 {
		return nil, fmt.Errorf("%w: grid %dx%d cell %g", ErrInvalidShape, w, h, cell)
	}

	vertices := make([]math.Vec3, 0, w*h)
	normals := make([]math.Vec3, 0, w*h)
	for z := 0; z < h; z++ {
		for x := 0; x < w; x++ {
			vertices = append(vertices, math.Vec3{X: float32(x) * cell, Z: float32(z) * cell})
			normals = append(normals, math.Vec3{Y: 1})
		}
	}

	triangles := make([]uint32, 0, (w-1)*(h-1)*6)
	for z := 0; z < h-1; z++ {
		for x := 0; x < w-1; x++ {
			i := uint32(z*w + x)
			row := uint32(w)
			triangles = append(triangles, i, i+1, i+row, i+1, i+row+1, i+row)
		}
	}

	n.apply(vertices, normals)
	return mesh.NewSnapshot(vertices, triangles, normals)
}

// Cone returns a closed cone standing on the XZ plane. Vertex 0 is the apex,
// vertices 1..segments form the base ring and the last vertex is the base
// center.
func Cone(segments int, radius, height float32, n Noise) (*mesh.Snapshot, error) {
	if segments < 3 || radius <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: cone segments %d radius %g height %g", ErrInvalidShape, segments, radius, height)
	}

	vertices := []math.Vec3{{Y: height}}
	normals := []math.Vec3{{Y: 1}}
	slope := radius / height
	for i := 0; i < segments; i++ {
		a := 2 * stdmath.Pi * float64(i) / float64(segments)
		x, z := float32(stdmath.Cos(a)), float32(stdmath.Sin(a))
		vertices = append(vertices, math.Vec3{X: radius * x, Z: radius * z})
		normals = append(normals, math.Vec3{X: x, Y: slope, Z: z}.Normalize())
	}
	center := uint32(len(vertices))
	vertices = append(vertices, math.Vec3{})
	normals = append(normals, math.Vec3{Y: -1})

	triangles := make([]uint32, 0, segments*6)
	for i := 0; i < segments; i++ {
		a, b := uint32(1+i), uint32(1+(i+1)%segments)
		triangles = append(triangles, 0, b, a)
		triangles = append(triangles, center, a, b)
	}

	n.apply(vertices, normals)
	return mesh.NewSnapshot(vertices, triangles, normals)
}

// Blade returns a diamond-section blade running up +Y and ending in a point.
// Each of the segments+1 stations holds four vertices: edge +X, flat +Z,
// edge -X, flat -Z. The tip is the last vertex.
func Blade(segments int, length, width, thickness float32, n Noise) (*mesh.Snapshot, error) {
	if segments < 1 || length <= 0 || width <= 0 || thickness <= 0 {
		return nil, fmt.Errorf("%w: blade segments %d length %g width %g thickness %g",
			ErrInvalidShape, segments, length, width, thickness)
	}

	section := [4]math.Vec3{{X: width / 2}, {Z: thickness / 2}, {X: -width / 2}, {Z: -thickness / 2}}
	sectionNormals := [4]math.Vec3{{X: 1}, {Z: 1}, {X: -1}, {Z: -1}}

	var vertices, normals []math.Vec3
	for s := 0; s <= segments; s++ {
		y := length * float32(s) / float32(segments)
		for k := range section {
			vertices = append(vertices, section[k].Add(math.Vec3{Y: y}))
			normals = append(normals, sectionNormals[k])
		}
	}
	tip := uint32(len(vertices))
	vertices = append(vertices, math.Vec3{Y: length + width})
	normals = append(normals, math.Vec3{Y: 1})

	var triangles []uint32
	for s := 0; s < segments; s++ {
		lo, hi := uint32(s*4), uint32((s+1)*4)
		for k := uint32(0); k < 4; k++ {
			next := (k + 1) % 4
			triangles = append(triangles, lo+k, lo+next, hi+k, lo+next, hi+next, hi+k)
		}
	}
	top := uint32(segments * 4)
	for k := uint32(0); k < 4; k++ {
		triangles = append(triangles, top+k, top+(k+1)%4, tip)
	}
	// Base cap
	triangles = append(triangles, 0, 2, 1, 0, 3, 2)

	n.apply(vertices, normals)
	return mesh.NewSnapshot(vertices, triangles, normals)
}

// Shapes lists the names accepted by Shape.
func Shapes() []string {
	return []string{"grid", "cone", "blade"}
}

// Shape builds a named shape at its default size.
func Shape(name string, n Noise) (*mesh.Snapshot, error) {
	switch name {
	case "grid":
		return Grid(16, 16, 0.1, n)
	case "cone":
		return Cone(24, 0.05, 1, n)
	case "blade":
		return Blade(12, 1, 0.08, 0.012, n)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownShape, name)
	}
}

// BladeTip returns the index of the tip vertex of a Blade mesh.
func BladeTip(s *mesh.Snapshot) int {
	return len(s.Vertices) - 1
}
