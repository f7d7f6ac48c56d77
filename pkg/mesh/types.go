// Package mesh provides the shared geometry buffer every model format fills
// at load time, plus the element, normal, tangent and adjacency builders
// that run over it.
package mesh

import (
	"github.com/go-gl/mathgl/mgl32"

	rmath "github.com/Faultbox/midgard-models/pkg/math"
)

// NoNeighbor marks a triangle edge with no unique neighbor.
const NoNeighbor int32 = -1

// BlendMode describes how a buffer's vertices animate.
type BlendMode int

// Blend modes. Morph and skeletal data are mutually exclusive.
const (
	BlendStatic BlendMode = iota
	BlendMorph
	BlendSkeletal
)

// String returns the blend mode name.
func (b BlendMode) String() string {
	switch b {
	case BlendStatic:
		return "static"
	case BlendMorph:
		return "morph"
	case BlendSkeletal:
		return "skeletal"
	default:
		return "unknown"
	}
}

// Options selects which optional attribute arrays Allocate reserves.
type Options struct {
	LightmapOffsets bool // per-vertex index into the surface's lightmap samples
	VertexColors    bool // baked per-vertex lighting
	Neighbors       bool // triangle adjacency
	MorphFrames     int  // > 0 allocates per-frame vertex snapshots
	Skeletal        bool // allocates 4 bone indices and weights per vertex
}

// MorphFrame is one absolute vertex snapshot of a morph-target mesh.
type MorphFrame struct {
	Vertices []mgl32.Vec3
	Normals  []mgl32.Vec3
}

// Buffer owns a model's vertex and triangle arrays. Surfaces reference
// ranges of it. Triangle i uses Elements[3i:3i+3]; Neighbors[3i+e] is the
// triangle across edge (Elements[3i+e], Elements[3i+(e+1)%3]).
type Buffer struct {
	NumVertices  int
	NumTriangles int

	Elements  []int32
	Neighbors []int32

	Vertices          []mgl32.Vec3
	SVectors          []mgl32.Vec3 // 'S' (right) texture axis
	TVectors          []mgl32.Vec3 // 'T' (down) texture axis
	Normals           []mgl32.Vec3
	TexCoords         []mgl32.Vec2
	LightmapTexCoords []mgl32.Vec2
	LightmapColors    []mgl32.Vec4
	LightmapOffsets   []int32

	// Morph blending; empty when static or skeletal.
	Morph []MorphFrame

	// Skeletal blending; nil when static or morph.
	WeightIndices    [][4]int32
	WeightInfluences []mgl32.Vec4
}

// Blend reports the buffer's animation representation.
func (b *Buffer) Blend() BlendMode {
	switch {
	case len(b.Morph) > 0:
		return BlendMorph
	case b.WeightIndices != nil:
		return BlendSkeletal
	default:
		return BlendStatic
	}
}

// IsAnimated is true for morph and skeletal buffers.
func (b *Buffer) IsAnimated() bool {
	return b.Blend() != BlendStatic
}

// Triangle returns the three vertex indices of triangle i.
func (b *Buffer) Triangle(i int) [3]int32 {
	return [3]int32{b.Elements[3*i], b.Elements[3*i+1], b.Elements[3*i+2]}
}

// Bounds returns the box around vertices [first, first+count).
func (b *Buffer) Bounds(first, count int) (mins, maxs mgl32.Vec3) {
	mins, maxs = rmath.EmptyBounds()
	for _, v := range b.Vertices[first : first+count] {
		rmath.Extend(&mins, &maxs, v)
	}
	return mins, maxs
}

// Pose is per-frame scratch output for animated buffers. Pose evaluation
// writes here and never into the source arrays.
type Pose struct {
	Vertices []mgl32.Vec3
	Normals  []mgl32.Vec3
	SVectors []mgl32.Vec3
	TVectors []mgl32.Vec3
}

// Resize makes every array of p hold n vertices, reusing capacity.
func (p *Pose) Resize(n int) {
	p.Vertices = resizeVec3(p.Vertices, n)
	p.Normals = resizeVec3(p.Normals, n)
	p.SVectors = resizeVec3(p.SVectors, n)
	p.TVectors = resizeVec3(p.TVectors, n)
}

func resizeVec3(s []mgl32.Vec3, n int) []mgl32.Vec3 {
	if cap(s) < n {
		return make([]mgl32.Vec3, n)
	}
	s = s[:n]
	clear(s)
	return s
}
