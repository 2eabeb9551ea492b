package formats

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Faultbox/strikemesh/internal/mesh"
	"github.com/Faultbox/strikemesh/pkg/math"
)

// OBJ format errors.
var (
	ErrOBJSyntax         = errors.New("malformed OBJ statement")
	ErrOBJIndex          = errors.New("OBJ index out of range")
	ErrOBJNoFaces        = errors.New("OBJ has no faces")
	ErrOBJMissingNormals = errors.New("OBJ has no vertex normals")
)

// OBJ is a triangulated Wavefront OBJ mesh with one normal per position.
type OBJ struct {
	Name      string
	Positions []math.Vec3
	Triangles []uint32
	Normals   []math.Vec3 // per position, normalized sum of referenced vn records

	// SkippedTriangles counts fan triangles dropped for repeating a position.
	SkippedTriangles int
}

// objCorner is one face corner: position and normal index, 0-based, -1 if absent.
type objCorner struct {
	pos, normal int
}

// ParseOBJ parses v, vn and f statements. Faces with more than three corners
// are fan-triangulated. Texture coordinates, materials and groups are ignored.
func ParseOBJ(data []byte) (*OBJ, error) {
	obj := &OBJ{}
	var fileNormals []math.Vec3
	var faces [][]objCorner

	scanner := bufio.NewScanner(bytes.NewReader(data))
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || text[0] == '#' {
			continue
		}
		fields := strings.Fields(text)

		switch fields[0] {
		case "v":
			v, err := parseVec3(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			obj.Positions = append(obj.Positions, v)
		case "vn":
			n, err := parseVec3(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			fileNormals = append(fileNormals, n)
		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: %w: face with %d corners", line, ErrOBJSyntax, len(fields)-1)
			}
			face := make([]objCorner, 0, len(fields)-1)
			for _, f := range fields[1:] {
				c, err := parseCorner(f, len(obj.Positions), len(fileNormals))
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", line, err)
				}
				face = append(face, c)
			}
			faces = append(faces, face)
		case "o":
			if obj.Name == "" && len(fields) > 1 {
				obj.Name = strings.Join(fields[1:], " ")
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading OBJ: %w", err)
	}

	if len(faces) == 0 {
		return nil, ErrOBJNoFaces
	}
	if len(fileNormals) == 0 {
		return nil, ErrOBJMissingNormals
	}

	obj.Normals = make([]math.Vec3, len(obj.Positions))
	for _, face := range faces {
		for _, c := range face {
			if c.normal >= 0 {
				obj.Normals[c.pos] = obj.Normals[c.pos].Add(fileNormals[c.normal])
			}
		}
		for i := 1; i+1 < len(face); i++ {
			a, b, c := face[0].pos, face[i].pos, face[i+1].pos
			if a == b || b == c || a == c {
				obj.SkippedTriangles++
				continue
			}
			obj.Triangles = append(obj.Triangles, uint32(a), uint32(b), uint32(c))
		}
	}
	for i, n := range obj.Normals {
		obj.Normals[i] = n.Normalize()
	}

	if len(obj.Triangles) == 0 {
		return nil, ErrOBJNoFaces
	}
	return obj, nil
}

func parseVec3(fields []string) (math.Vec3, error) {
	if len(fields) < 3 {
		return math.Vec3{}, fmt.Errorf("%w: expected 3 components, got %d", ErrOBJSyntax, len(fields))
	}
	var out [3]float32
	for i := range out {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return math.Vec3{}, fmt.Errorf("%w: %v", ErrOBJSyntax, err)
		}
		out[i] = float32(f)
	}
	return math.FromArray(out), nil
}

// parseCorner reads v, v/vt, v//vn or v/vt/vn.
func parseCorner(s string, positions, normals int) (objCorner, error) {
	parts := strings.Split(s, "/")
	if len(parts) > 3 {
		return objCorner{}, fmt.Errorf("%w: corner %q", ErrOBJSyntax, s)
	}

	pos, err := resolveIndex(parts[0], positions)
	if err != nil {
		return objCorner{}, err
	}
	c := objCorner{pos: pos, normal: -1}
	if len(parts) == 3 && parts[2] != "" {
		if c.normal, err = resolveIndex(parts[2], normals); err != nil {
			return objCorner{}, err
		}
	}
	return c, nil
}

// resolveIndex converts a 1-based or negative relative index to 0-based.
func resolveIndex(s string, count int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: index %q", ErrOBJSyntax, s)
	}
	switch {
	case i > 0 && i <= count:
		return i - 1, nil
	case i < 0 && -i <= count:
		return count + i, nil
	}
	return 0, fmt.Errorf("%w: %d of %d", ErrOBJIndex, i, count)
}

// ParseOBJFile reads and parses an OBJ file.
func ParseOBJFile(path string) (*OBJ, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading OBJ file: %w", err)
	}
	return ParseOBJ(data)
}

// Snapshot wraps the parsed buffers in a validated mesh snapshot.
func (o *OBJ) Snapshot() (*mesh.Snapshot, error) {
	return mesh.NewSnapshot(o.Positions, o.Triangles, o.Normals)
}
