// Package picking finds the mesh triangle closest to a query point.
package picking

import (
	gomath "math"

	"github.com/Faultbox/strikemesh/pkg/math"
)

// NoTriangle is returned as the index when a query has nothing to match.
const NoTriangle = -1

// Region names the feature of a triangle that holds the closest point.
type Region uint8

const (
	RegionVertexA Region = iota
	RegionVertexB
	RegionEdgeAB
	RegionVertexC
	RegionEdgeAC
	RegionEdgeBC
	RegionFace
)

// String returns a readable region name.
func (r Region) String() string {
	switch r {
	case RegionVertexA:
		return "A"
	case RegionVertexB:
		return "B"
	case RegionEdgeAB:
		return "AB"
	case RegionVertexC:
		return "C"
	case RegionEdgeAC:
		return "AC"
	case RegionEdgeBC:
		return "BC"
	case RegionFace:
		return "face"
	default:
		return "unknown"
	}
}

// PointTriangleDistanceSq returns the squared distance from p to triangle abc
// and the region that holds the closest point.
//
// The checks run in a fixed order; each one assumes every earlier one failed.
// Inside the face the distance is measured along the face normal.
func PointTriangleDistanceSq(p, a, b, c math.Vec3) (float32, Region) {
	q, r := closestPoint(p, a, b, c)
	return p.DistanceSq(q), r
}

// ClosestPointOnTriangle returns the point of triangle abc nearest to p.
// It follows the same region order as PointTriangleDistanceSq and, inside the
// face, returns the projection of p onto the triangle plane.
func ClosestPointOnTriangle(p, a, b, c math.Vec3) math.Vec3 {
	q, _ := closestPoint(p, a, b, c)
	return q
}

func closestPoint(p, a, b, c math.Vec3) (math.Vec3, Region) {
	ab := b.Sub(a)
	ac := c.Sub(a)
	ap := p.Sub(a)

	d1 := ab.Dot(ap)
	d2 := ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return a, RegionVertexA
	}

	bp := p.Sub(b)
	d3 := ab.Dot(bp)
	d4 := ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return b, RegionVertexB
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		return a.Add(ab.Scale(ratio(d1, d1-d3))), RegionEdgeAB
	}

	cp := p.Sub(c)
	d5 := ab.Dot(cp)
	d6 := ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return c, RegionVertexC
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		return a.Add(ac.Scale(ratio(d2, d2-d6))), RegionEdgeAC
	}

	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		return b.Add(c.Sub(b).Scale(ratio(d4-d3, (d4-d3)+(d5-d6)))), RegionEdgeBC
	}

	n := ab.Cross(ac).Normalize()
	if n == math.Zero {
		return closestOnEdges(p, a, b, c)
	}
	return p.Sub(n.Scale(ap.Dot(n))), RegionFace
}

// ratio returns num/den, or 0 when the edge has collapsed to a point.
func ratio(num, den float32) float32 {
	if den == 0 {
		return 0
	}
	return num / den
}

// closestOnEdges handles zero-area triangles, which have no face to project onto.
func closestOnEdges(p, a, b, c math.Vec3) (math.Vec3, Region) {
	best, region := closestOnSegment(p, a, b), RegionEdgeAB
	if q := closestOnSegment(p, a, c); p.DistanceSq(q) < p.DistanceSq(best) {
		best, region = q, RegionEdgeAC
	}
	if q := closestOnSegment(p, b, c); p.DistanceSq(q) < p.DistanceSq(best) {
		best, region = q, RegionEdgeBC
	}
	return best, region
}

func closestOnSegment(p, a, b math.Vec3) math.Vec3 {
	ab := b.Sub(a)
	t := math.Clamp(ratio(p.Sub(a).Dot(ab), ab.LengthSq()), 0, 1)
	return a.Add(ab.Scale(t))
}

// Nearest scans every triangle of a stride-3 index buffer and returns the
// index of the one with the smallest squared distance to p, along with that
// distance. Ties keep the lowest triangle index. Triangles whose distance is
// not a number (non-finite vertices) are skipped; ok is false when nothing
// matched.
func Nearest(vertices []math.Vec3, triangles []uint32, p math.Vec3) (tri int, distSq float32, ok bool) {
	tri = NoTriangle
	distSq = gomath.MaxFloat32

	for i := 0; i+2 < len(triangles); i += 3 {
		a := vertices[triangles[i]]
		b := vertices[triangles[i+1]]
		c := vertices[triangles[i+2]]

		d, _ := PointTriangleDistanceSq(p, a, b, c)
		if gomath.IsNaN(float64(d)) {
			continue
		}
		if d < distSq || tri == NoTriangle {
			distSq = d
			tri = i / 3
		}
	}

	if tri == NoTriangle {
		return NoTriangle, 0, false
	}
	return tri, distSq, true
}

// TriangleVertices returns the three vertex indices of triangle tri.
func TriangleVertices(triangles []uint32, tri int) [3]int {
	base := tri * 3
	return [3]int{int(triangles[base]), int(triangles[base+1]), int(triangles[base+2])}
}
