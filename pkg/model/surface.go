package model

import (
	"github.com/go-gl/mathgl/mgl32"

	rmath "github.com/Faultbox/midgard-models/pkg/math"
	"github.com/Faultbox/midgard-models/pkg/mesh"
	"github.com/Faultbox/midgard-models/pkg/rtexture"
)

// Lightmap constants.
const (
	MaxLightmaps = 4
	// StyleUnused marks an empty light style slot.
	StyleUnused = 255
)

// TexInfo maps world positions to texture space: s = dot(p, Vecs[0].xyz) + Vecs[0].w.
type TexInfo struct {
	Vecs    [2]mgl32.Vec4
	Texture *Texture
	Flags   int
}

// LightmapInfo is the Q1 per-surface lightmap data.
type LightmapInfo struct {
	TexInfo *TexInfo
	// Styles indexes the light style table; StyleUnused ends the list.
	Styles [MaxLightmaps]uint8
	// Samples is RGB [numstyles][tmax][smax][3].
	Samples          []byte
	NormalMapSamples []byte
	StainSamples     []byte
	TextureMins      [2]int
	Extents          [2]int
	LightmapOrigin   [2]int
}

// Size returns the lightmap dimensions in samples.
func (l *LightmapInfo) Size() (smax, tmax int) {
	return l.Extents[0]>>4 + 1, l.Extents[1]>>4 + 1
}

// NumStyles returns how many style slots are in use.
func (l *LightmapInfo) NumStyles() int {
	n := 0
	for n < MaxLightmaps && l.Styles[n] != StyleUnused {
		n++
	}
	return n
}

// Surface is a view into the model's mesh: a range of vertices and
// triangles with a material. Surfaces never own geometry.
type Surface struct {
	Mins, Maxs mgl32.Vec3

	Texture          *Texture
	LightmapTexture  *rtexture.Texture
	DeluxemapTexture *rtexture.Texture

	FirstTriangle int
	NumTriangles  int
	FirstVertex   int
	NumVertices   int

	// FirstShadowMeshTriangle indexes the world shadow mesh, -1 when the
	// surface casts no shadow.
	FirstShadowMeshTriangle int

	Lightmap *LightmapInfo

	// Curved surfaces carry a coarser collision mesh.
	CollisionElements []int32
	CollisionVertices []mgl32.Vec3
}

// Elements returns the surface's slice of the element array.
func (s *Surface) Elements(b *mesh.Buffer) []int32 {
	return b.Elements[3*s.FirstTriangle : 3*(s.FirstTriangle+s.NumTriangles)]
}

// ComputeBounds sets Mins/Maxs from the surface's vertex range.
func (s *Surface) ComputeBounds(b *mesh.Buffer) {
	s.Mins, s.Maxs = rmath.EmptyBounds()
	for _, v := range b.Vertices[s.FirstVertex : s.FirstVertex+s.NumVertices] {
		rmath.Extend(&s.Mins, &s.Maxs, v)
	}
}

// HasCollisionMesh reports whether the surface collides through its own
// triangle mesh.
func (s *Surface) HasCollisionMesh() bool {
	return len(s.CollisionElements) > 0
}
