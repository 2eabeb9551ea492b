// Package formats provides parsers for mesh interchange formats.
package formats

// Note: Wavefront OBJ (positions, normals, polygon faces) is implemented in obj.go
