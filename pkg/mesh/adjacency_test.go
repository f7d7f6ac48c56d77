package mesh

import (
	"math/rand"
	"testing"
)

// edgeOf returns the undirected edge e of triangle t.
func edgeOf(elements []int32, t, e int) edgeKey {
	return makeEdgeKey(elements[3*t+e], elements[3*t+(e+1)%3])
}

func TestBuildTriangleNeighborsQuad(t *testing.T) {
	// Two triangles sharing edge 1-2.
	elements := []int32{0, 1, 2, 2, 1, 3}
	neighbors := TriangleNeighbors(elements)

	want := []int32{
		NoNeighbor, 1, NoNeighbor,
		0, NoNeighbor, NoNeighbor,
	}
	for i := range want {
		if neighbors[i] != want[i] {
			t.Errorf("neighbors[%d] = %d, want %d", i, neighbors[i], want[i])
		}
	}
}

func TestBuildTriangleNeighborsSameWinding(t *testing.T) {
	// Both triangles traverse 1->2 in the same direction; the edge is still shared.
	elements := []int32{0, 1, 2, 1, 2, 3}
	neighbors := TriangleNeighbors(elements)
	if neighbors[1] != 1 || neighbors[3] != 0 {
		t.Errorf("undirected sharing not linked: %v", neighbors)
	}
}

func TestBuildTriangleNeighborsNonManifold(t *testing.T) {
	// Three triangles fan off edge 0-1.
	elements := []int32{0, 1, 2, 1, 0, 3, 0, 1, 4}
	neighbors := TriangleNeighbors(elements)

	for tri := 0; tri < 3; tri++ {
		for e := 0; e < 3; e++ {
			if edgeOf(elements, tri, e) == makeEdgeKey(0, 1) && neighbors[3*tri+e] != NoNeighbor {
				t.Errorf("triangle %d edge %d shared by 3 triangles got neighbor %d", tri, e, neighbors[3*tri+e])
			}
		}
	}
}

func TestBuildTriangleNeighborsDegenerateTriangle(t *testing.T) {
	// Triangle 1 repeats vertex 0 and uses edge {0,1} twice on its own.
	elements := []int32{0, 1, 2, 0, 1, 0}
	neighbors := TriangleNeighbors(elements)
	for i := 3; i < 6; i++ {
		if neighbors[i] == 1 {
			t.Errorf("degenerate triangle linked to itself at %d", i)
		}
	}
}

func TestBuildTriangleNeighborsClosedTetrahedron(t *testing.T) {
	elements := []int32{
		0, 2, 1,
		0, 1, 3,
		1, 2, 3,
		2, 0, 3,
	}
	neighbors := TriangleNeighbors(elements)
	for i, n := range neighbors {
		if n == NoNeighbor {
			t.Errorf("closed mesh edge %d has no neighbor", i)
		}
	}
	assertSymmetric(t, elements, neighbors)
}

func TestBuildTriangleNeighborsSymmetricRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	const numVertices = 12
	elements := make([]int32, 0, 3*200)
	for len(elements) < cap(elements) {
		elements = append(elements, int32(rng.Intn(numVertices)))
	}
	neighbors := TriangleNeighbors(elements)
	assertSymmetric(t, elements, neighbors)

	// Every link must correspond to an edge used by exactly two triangles.
	counts := make(map[edgeKey]int)
	for tri := 0; tri < len(elements)/3; tri++ {
		for e := 0; e < 3; e++ {
			if k := edgeOf(elements, tri, e); k.a != k.b {
				counts[k]++
			}
		}
	}
	for tri := 0; tri < len(elements)/3; tri++ {
		for e := 0; e < 3; e++ {
			k := edgeOf(elements, tri, e)
			linked := neighbors[3*tri+e] != NoNeighbor
			if linked && counts[k] != 2 {
				t.Errorf("triangle %d edge %d linked across an edge used %d times", tri, e, counts[k])
			}
		}
	}
}

func assertSymmetric(t *testing.T, elements, neighbors []int32) {
	t.Helper()
	for tri := 0; tri < len(elements)/3; tri++ {
		for e := 0; e < 3; e++ {
			other := neighbors[3*tri+e]
			if other == NoNeighbor {
				continue
			}
			key := edgeOf(elements, tri, e)
			found := false
			for oe := 0; oe < 3; oe++ {
				if edgeOf(elements, int(other), oe) == key && neighbors[3*int(other)+oe] == int32(tri) {
					found = true
				}
			}
			if !found {
				t.Errorf("triangle %d -> %d across %v is not reciprocated", tri, other, key)
			}
		}
	}
}

func TestBufferBuildNeighbors(t *testing.T) {
	b, err := Allocate(4, 2, Options{})
	if err != nil {
		t.Fatal(err)
	}
	copy(b.Elements, []int32{0, 1, 2, 2, 1, 3})
	b.BuildNeighbors()
	if len(b.Neighbors) != 6 || b.Neighbors[1] != 1 || b.Neighbors[3] != 0 {
		t.Errorf("unexpected neighbors %v", b.Neighbors)
	}
	if err := b.Validate(); err != nil {
		t.Errorf("buffer with built neighbors should validate: %v", err)
	}
}
