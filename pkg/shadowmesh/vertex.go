// Package shadowmesh assembles deduplicated triangle batches from many
// surfaces: shadow casters (positions and adjacency, for volume extrusion)
// and light receivers (full tangent basis, batched by material).
package shadowmesh

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Vertex is the 14-float record submitted for deduplication:
// position(3), S(3), T(3), normal(3), texcoord(2).
type Vertex [14]float32

// MakeVertex packs the attributes into a Vertex.
func MakeVertex(pos, s, t, n mgl32.Vec3, tc mgl32.Vec2) Vertex {
	return Vertex{
		pos[0], pos[1], pos[2],
		s[0], s[1], s[2],
		t[0], t[1], t[2],
		n[0], n[1], n[2],
		tc[0], tc[1],
	}
}

// PositionVertex returns a Vertex carrying only a position.
func PositionVertex(pos mgl32.Vec3) Vertex {
	return Vertex{pos[0], pos[1], pos[2]}
}

func (v *Vertex) Position() mgl32.Vec3 { return mgl32.Vec3{v[0], v[1], v[2]} }
func (v *Vertex) SVector() mgl32.Vec3  { return mgl32.Vec3{v[3], v[4], v[5]} }
func (v *Vertex) TVector() mgl32.Vec3  { return mgl32.Vec3{v[6], v[7], v[8]} }
func (v *Vertex) Normal() mgl32.Vec3   { return mgl32.Vec3{v[9], v[10], v[11]} }
func (v *Vertex) TexCoord() mgl32.Vec2 { return mgl32.Vec2{v[12], v[13]} }

// vertexKey is the exact bit pattern of a Vertex. Comparing bits rather
// than floats keeps equality and hashing consistent (+0 and -0 differ,
// a NaN equals itself).
type vertexKey [14]uint32

func keyOf(v *Vertex) vertexKey {
	var k vertexKey
	for i, f := range v {
		k[i] = math.Float32bits(f)
	}
	return k
}

// VertexHash maps vertex content to the index it was first stored at.
// There is no epsilon: callers snap positions first if they want
// approximate welding.
type VertexHash struct {
	index map[vertexKey]int32
}

// NewVertexHash returns an empty hash sized for about n vertices.
func NewVertexHash(n int) *VertexHash {
	return &VertexHash{index: make(map[vertexKey]int32, n)}
}

// Lookup returns the index stored for v.
func (h *VertexHash) Lookup(v *Vertex) (int32, bool) {
	idx, ok := h.index[keyOf(v)]
	return idx, ok
}

// Add returns the index already stored for v, or stores next and reports
// added. Callers append the vertex at next when added is true.
func (h *VertexHash) Add(v *Vertex, next int32) (idx int32, added bool) {
	k := keyOf(v)
	if idx, ok := h.index[k]; ok {
		return idx, false
	}
	h.index[k] = next
	return next, true
}

// Len returns the number of distinct vertices seen.
func (h *VertexHash) Len() int {
	return len(h.index)
}
