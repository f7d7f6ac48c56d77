package mesh

// edgeKey is an undirected edge, smaller index first.
type edgeKey struct {
	a, b int32
}

func makeEdgeKey(a, b int32) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{a, b}
}

// edgeBucket remembers the first two triangles using an edge and how many
// used it in total.
type edgeBucket struct {
	tris  [2]int32
	count int32
}

// BuildTriangleNeighbors fills neighbors[3t+e] with the triangle sharing
// edge e of triangle t. An edge shared by exactly two triangles links
// them; an edge used by one triangle, or by three or more, gets
// NoNeighbor. The result is symmetric.
func BuildTriangleNeighbors(elements []int32, numTriangles int, neighbors []int32) {
	edges := make(map[edgeKey]edgeBucket, numTriangles*3/2+1)

	for t := 0; t < numTriangles; t++ {
		tri := elements[3*t : 3*t+3]
		for e := 0; e < 3; e++ {
			a, b := tri[e], tri[(e+1)%3]
			if a == b {
				continue
			}
			key := makeEdgeKey(a, b)
			bucket := edges[key]
			if bucket.count < 2 {
				bucket.tris[bucket.count] = int32(t)
			}
			bucket.count++
			edges[key] = bucket
		}
	}

	for t := 0; t < numTriangles; t++ {
		tri := elements[3*t : 3*t+3]
		for e := 0; e < 3; e++ {
			neighbors[3*t+e] = NoNeighbor
			a, b := tri[e], tri[(e+1)%3]
			if a == b {
				continue
			}
			bucket := edges[makeEdgeKey(a, b)]
			if bucket.count != 2 {
				continue
			}
			other := bucket.tris[0]
			if other == int32(t) {
				other = bucket.tris[1]
			}
			if other != int32(t) {
				neighbors[3*t+e] = other
			}
		}
	}
}

// TriangleNeighbors allocates and returns the adjacency of elements.
func TriangleNeighbors(elements []int32) []int32 {
	n := len(elements) / 3
	neighbors := make([]int32, 3*n)
	BuildTriangleNeighbors(elements, n, neighbors)
	return neighbors
}

// BuildNeighbors computes adjacency for the whole buffer, allocating the
// neighbor array if needed.
func (b *Buffer) BuildNeighbors() {
	if len(b.Neighbors) != 3*b.NumTriangles {
		b.Neighbors = make([]int32, 3*b.NumTriangles)
	}
	BuildTriangleNeighbors(b.Elements, b.NumTriangles, b.Neighbors)
}
