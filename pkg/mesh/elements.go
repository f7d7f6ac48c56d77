package mesh

import (
	"github.com/go-gl/mathgl/mgl32"

	rmath "github.com/Faultbox/midgard-models/pkg/math"
)

// degenerateSine is the smallest |sin| of a triangle corner angle that
// still counts as a real triangle.
const degenerateSine = 1e-5

// ValidateElements checks that every element lies in
// [firstVertex, firstVertex+numVertices). Indices are never clamped.
func ValidateElements(elements []int32, firstVertex, numVertices int) error {
	if len(elements)%3 != 0 {
		return &ContentIntegrityError{Triangle: -1, Reason: "element count is not a multiple of 3"}
	}
	lo, hi := int64(firstVertex), int64(firstVertex)+int64(numVertices)
	for i, e := range elements {
		if int64(e) < lo || int64(e) >= hi {
			return &ContentIntegrityError{
				Triangle:    i / 3,
				Index:       e,
				FirstVertex: firstVertex,
				NumVertices: numVertices,
			}
		}
	}
	return nil
}

// IsDegenerate reports whether the triangle is coincident or collinear
// within floating tolerance.
func IsDegenerate(a, b, c mgl32.Vec3) bool {
	e1 := b.Sub(a)
	e2 := c.Sub(a)
	scale := rmath.Sqrt32(e1.Dot(e1) * e2.Dot(e2))
	if scale < 1e-12 {
		return true
	}
	n := e1.Cross(e2)
	return rmath.Sqrt32(n.Dot(n)) <= degenerateSine*scale
}

// RemoveDegenerateTriangles returns the triangles of elements that are not
// degenerate, in their original order. Elements must already be valid.
func RemoveDegenerateTriangles(elements []int32, positions []mgl32.Vec3) []int32 {
	out := make([]int32, 0, len(elements))
	for i := 0; i+2 < len(elements); i += 3 {
		e0, e1, e2 := elements[i], elements[i+1], elements[i+2]
		if e0 == e1 || e1 == e2 || e0 == e2 {
			continue
		}
		if IsDegenerate(positions[e0], positions[e1], positions[e2]) {
			continue
		}
		out = append(out, e0, e1, e2)
	}
	return out
}

// SnapVertices rounds every component to the nearest multiple of grid so
// vertices computed independently by different surfaces compare equal.
// A non-positive grid leaves positions untouched.
func SnapVertices(positions []mgl32.Vec3, grid float32) {
	if grid <= 0 {
		return
	}
	inv := 1 / grid
	for i := range positions {
		for c := 0; c < 3; c++ {
			positions[i][c] = rmath.Floor32(positions[i][c]*inv+0.5) * grid
		}
	}
}

// BuildVertexRemapTable assigns new sequential indices to the vertices
// referenced by elements, in order of first use. Unreferenced vertices map
// to -1. It returns the table and the number of referenced vertices.
func BuildVertexRemapTable(elements []int32, numVertices int) (remap []int32, used int) {
	remap = make([]int32, numVertices)
	for i := range remap {
		remap[i] = -1
	}
	for _, e := range elements {
		if remap[e] < 0 {
			remap[e] = int32(used)
			used++
		}
	}
	return remap, used
}
