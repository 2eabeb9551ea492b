// Package adjacency builds the vertex neighbor graph of a triangle mesh.
package adjacency

import "slices"

// Graph is a compressed undirected neighbor list.
// Neighbors of vertex i are Neighbors[Offsets[i]:Offsets[i+1]].
type Graph struct {
	Offsets   []int32
	Neighbors []int32
}

// Build inserts both directions of every triangle edge, skipping duplicates,
// then flattens the per-vertex lists. Neighbor order follows first insertion,
// so the result is deterministic for a given index buffer.
func Build(vertexCount int, triangles []uint32) *Graph {
	lists := make([][]int32, vertexCount)

	for t := 0; t+2 < len(triangles); t += 3 {
		a, b, c := int32(triangles[t]), int32(triangles[t+1]), int32(triangles[t+2])
		addEdge(lists, a, b)
		addEdge(lists, b, a)
		addEdge(lists, b, c)
		addEdge(lists, c, b)
		addEdge(lists, c, a)
		addEdge(lists, a, c)
	}

	offsets := make([]int32, vertexCount+1)
	total := int32(0)
	for i, list := range lists {
		offsets[i] = total
		total += int32(len(list))
	}
	offsets[vertexCount] = total

	neighbors := make([]int32, 0, total)
	for _, list := range lists {
		neighbors = append(neighbors, list...)
	}

	return &Graph{Offsets: offsets, Neighbors: neighbors}
}

func addEdge(lists [][]int32, from, to int32) {
	if slices.Contains(lists[from], to) {
		return
	}
	lists[from] = append(lists[from], to)
}

// VertexCount returns the number of vertices the graph was built for.
func (g *Graph) VertexCount() int {
	if len(g.Offsets) == 0 {
		return 0
	}
	return len(g.Offsets) - 1
}

// NeighborsOf returns the neighbor set of vertex i. The slice aliases the graph
// and must not be modified.
func (g *Graph) NeighborsOf(i int) []int32 {
	return g.Neighbors[g.Offsets[i]:g.Offsets[i+1]]
}

// Degree returns the number of neighbors of vertex i.
func (g *Graph) Degree(i int) int {
	return int(g.Offsets[i+1] - g.Offsets[i])
}

// HasEdge reports whether j is a neighbor of i.
func (g *Graph) HasEdge(i, j int) bool {
	return slices.Contains(g.NeighborsOf(i), int32(j))
}

// EdgeCount returns the number of undirected edges.
func (g *Graph) EdgeCount() int {
	return len(g.Neighbors) / 2
}
