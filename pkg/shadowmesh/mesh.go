package shadowmesh

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/midgard-models/pkg/rtexture"
)

// Errors returned by the assembler.
var (
	ErrCapacity = errors.New("shadow mesh capacity exceeded")
	ErrFinished = errors.New("shadow mesh already finished")
)

// CapacityError reports a fixed-growth mesh running out of room. It is
// fatal to the assembly session only.
type CapacityError struct {
	MaxVertices  int
	MaxTriangles int
	Material     Material
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("%v: segment for %s holds %d vertices / %d triangles",
		ErrCapacity, e.Material, e.MaxVertices, e.MaxTriangles)
}

func (e *CapacityError) Unwrap() error { return ErrCapacity }

// Kind selects which attributes a mesh stores.
type Kind int

const (
	// KindShadow stores positions and triangle adjacency.
	KindShadow Kind = iota
	// KindLight stores positions, tangent basis, texcoords and a material.
	KindLight
)

// Growth selects what happens when a segment fills up.
type Growth int

const (
	// Fixed fails with a CapacityError once a material's segment is full.
	Fixed Growth = iota
	// Expandable chains a new segment transparently.
	Expandable
)

// Material partitions light meshes so a draw batch never mixes textures.
// Shadow meshes always use the zero Material.
type Material struct {
	Diffuse  *rtexture.Texture
	Specular *rtexture.Texture
	Normal   *rtexture.Texture
}

func (m Material) String() string {
	if m == (Material{}) {
		return "shadow"
	}
	return fmt.Sprintf("%s/%s/%s", m.Diffuse, m.Specular, m.Normal)
}

// Segment is one buffer of the arena. Indices in Elements are local to
// the segment.
type Segment struct {
	Material     Material
	MaxVertices  int
	MaxTriangles int

	Vertices []mgl32.Vec3
	// Light meshes only.
	SVectors  []mgl32.Vec3
	TVectors  []mgl32.Vec3
	Normals   []mgl32.Vec3
	TexCoords []mgl32.Vec2

	Elements []int32
	// Filled by Finish when neighbors are requested.
	Neighbors []int32

	hash *VertexHash
}

func newSegment(kind Kind, mat Material, maxVerts, maxTris int) *Segment {
	s := &Segment{
		Material:     mat,
		MaxVertices:  maxVerts,
		MaxTriangles: maxTris,
		Vertices:     make([]mgl32.Vec3, 0, maxVerts),
		Elements:     make([]int32, 0, 3*maxTris),
		hash:         NewVertexHash(maxVerts),
	}
	if kind == KindLight {
		s.SVectors = make([]mgl32.Vec3, 0, maxVerts)
		s.TVectors = make([]mgl32.Vec3, 0, maxVerts)
		s.Normals = make([]mgl32.Vec3, 0, maxVerts)
		s.TexCoords = make([]mgl32.Vec2, 0, maxVerts)
	}
	return s
}

// NumVertices returns the number of stored vertices.
func (s *Segment) NumVertices() int { return len(s.Vertices) }

// NumTriangles returns the number of stored triangles.
func (s *Segment) NumTriangles() int { return len(s.Elements) / 3 }

func (s *Segment) hasRoom(verts, tris int) bool {
	return len(s.Vertices)+verts <= s.MaxVertices && s.NumTriangles()+tris <= s.MaxTriangles
}

// missing counts the distinct vertices of verts the segment does not hold
// yet, using the same key addVertex stores.
func (s *Segment) missing(verts []Vertex) int {
	n := 0
	for i := range verts {
		v := s.key(verts[i])
		if _, ok := s.hash.Lookup(&v); ok {
			continue
		}
		dup := false
		for j := 0; j < i; j++ {
			if w := s.key(verts[j]); keyOf(&w) == keyOf(&v) {
				dup = true
				break
			}
		}
		if !dup {
			n++
		}
	}
	return n
}

// key is the form of v the segment deduplicates on.
func (s *Segment) key(v Vertex) Vertex {
	if !s.isLight() {
		return PositionVertex(v.Position())
	}
	return v
}

func (s *Segment) isLight() bool { return s.Normals != nil }

// addVertex stores v unless an identical vertex is already present.
// Shadow segments compare positions only.
func (s *Segment) addVertex(v Vertex) int32 {
	v = s.key(v)
	idx, added := s.hash.Add(&v, int32(len(s.Vertices)))
	if !added {
		return idx
	}
	s.Vertices = append(s.Vertices, v.Position())
	if s.isLight() {
		s.SVectors = append(s.SVectors, v.SVector())
		s.TVectors = append(s.TVectors, v.TVector())
		s.Normals = append(s.Normals, v.Normal())
		s.TexCoords = append(s.TexCoords, v.TexCoord())
	}
	return idx
}

// vertex reconstructs the stored record at i.
func (s *Segment) vertex(i int32) Vertex {
	if !s.isLight() {
		return PositionVertex(s.Vertices[i])
	}
	return MakeVertex(s.Vertices[i], s.SVectors[i], s.TVectors[i], s.Normals[i], s.TexCoords[i])
}

// Mesh is a chain of segments produced by a Builder.
type Mesh struct {
	Kind     Kind
	Growth   Growth
	Segments []*Segment
	finished bool
}

// Finished reports whether the mesh is frozen.
func (m *Mesh) Finished() bool { return m.finished }

// NumTriangles returns the total triangle count across all segments.
func (m *Mesh) NumTriangles() int {
	n := 0
	for _, s := range m.Segments {
		n += s.NumTriangles()
	}
	return n
}

// NumVertices returns the total vertex count across all segments.
func (m *Mesh) NumVertices() int {
	n := 0
	for _, s := range m.Segments {
		n += s.NumVertices()
	}
	return n
}

// Locate maps a mesh-wide triangle number to its segment and local index.
func (m *Mesh) Locate(triangle int) (*Segment, int, bool) {
	if triangle < 0 {
		return nil, 0, false
	}
	for _, s := range m.Segments {
		if triangle < s.NumTriangles() {
			return s, triangle, true
		}
		triangle -= s.NumTriangles()
	}
	return nil, 0, false
}

// Free drops every segment.
func (m *Mesh) Free() {
	m.Segments = nil
}

// CalcBoundingVolume scans every segment's vertices once and returns the
// box, its center and the radius of the sphere around the center that
// encloses the box, and so every vertex.
func CalcBoundingVolume(m *Mesh) (mins, maxs, center mgl32.Vec3, radius float32) {
	first := true
	for _, s := range m.Segments {
		for _, v := range s.Vertices {
			if first {
				mins, maxs = v, v
				first = false
				continue
			}
			for i := 0; i < 3; i++ {
				mins[i] = min(mins[i], v[i])
				maxs[i] = max(maxs[i], v[i])
			}
		}
	}
	if first {
		return mins, maxs, center, 0
	}
	center = mins.Add(maxs).Mul(0.5)
	return mins, maxs, center, maxs.Sub(center).Len()
}
