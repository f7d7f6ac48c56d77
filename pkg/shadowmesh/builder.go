package shadowmesh

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/midgard-models/pkg/mesh"
)

// Builder runs one assembly session. It is not safe for concurrent use;
// independent meshes use independent builders.
type Builder struct {
	mesh     *Mesh
	maxVerts int
	maxTris  int
}

// MeshInput is a surface's worth of shared-topology geometry for AddMesh.
// Attribute slices may be nil (zeros are used); Elements index Vertices.
type MeshInput struct {
	Vertices  []mgl32.Vec3
	SVectors  []mgl32.Vec3
	TVectors  []mgl32.Vec3
	Normals   []mgl32.Vec3
	TexCoords []mgl32.Vec2
	Elements  []int32
}

// FinishOptions controls the Finish step.
type FinishOptions struct {
	// Neighbors computes triangle adjacency per segment.
	Neighbors bool
	// Merge coalesces segments sharing a material into one buffer,
	// deduplicating vertices across the old segment boundaries.
	Merge bool
}

// Begin starts a session whose first segment holds maxVerts vertices and
// maxTris triangles for material mat.
func Begin(maxVerts, maxTris int, mat Material, kind Kind, growth Growth) *Builder {
	if kind == KindShadow {
		mat = Material{}
	}
	b := &Builder{
		mesh:     &Mesh{Kind: kind, Growth: growth},
		maxVerts: max(maxVerts, 3),
		maxTris:  max(maxTris, 1),
	}
	b.mesh.Segments = append(b.mesh.Segments, newSegment(kind, mat, b.maxVerts, b.maxTris))
	return b
}

// Mesh returns the mesh under construction.
func (b *Builder) Mesh() *Mesh {
	return b.mesh
}

// segmentFor finds a segment of mat with room for the vertices of verts
// it does not already hold plus tris triangles, chaining a new one when
// the growth policy allows.
func (b *Builder) segmentFor(mat Material, verts []Vertex, tris int) (*Segment, error) {
	if b.mesh.finished {
		return nil, ErrFinished
	}
	if b.mesh.Kind == KindShadow {
		mat = Material{}
	}

	var full *Segment
	for _, s := range b.mesh.Segments {
		if s.Material != mat {
			continue
		}
		if s.hasRoom(s.missing(verts), tris) {
			return s, nil
		}
		full = s
	}

	if full != nil && b.mesh.Growth == Fixed {
		return nil, &CapacityError{MaxVertices: full.MaxVertices, MaxTriangles: full.MaxTriangles, Material: mat}
	}
	if len(verts) > b.maxVerts || tris > b.maxTris {
		return nil, &CapacityError{MaxVertices: b.maxVerts, MaxTriangles: b.maxTris, Material: mat}
	}
	s := newSegment(b.mesh.Kind, mat, b.maxVerts, b.maxTris)
	b.mesh.Segments = append(b.mesh.Segments, s)
	return s, nil
}

// AddVertex deduplicates a single vertex into the segment for mat and
// returns its segment-local index.
func (b *Builder) AddVertex(mat Material, v Vertex) (int32, error) {
	s, err := b.segmentFor(mat, []Vertex{v}, 0)
	if err != nil {
		return -1, err
	}
	return s.addVertex(v), nil
}

// AddTriangle deduplicates the three vertices and appends the triangle.
func (b *Builder) AddTriangle(mat Material, verts [3]Vertex) error {
	s, err := b.segmentFor(mat, verts[:], 1)
	if err != nil {
		return err
	}
	for _, v := range verts {
		s.Elements = append(s.Elements, s.addVertex(v))
	}
	return nil
}

// AddMesh submits every triangle of in, behaving as repeated AddTriangle.
func (b *Builder) AddMesh(mat Material, in MeshInput) error {
	if b.mesh.finished {
		return ErrFinished
	}
	if err := mesh.ValidateElements(in.Elements, 0, len(in.Vertices)); err != nil {
		return err
	}
	for i := 0; i+2 < len(in.Elements); i += 3 {
		var tri [3]Vertex
		for c := 0; c < 3; c++ {
			tri[c] = in.vertex(in.Elements[i+c])
		}
		if err := b.AddTriangle(mat, tri); err != nil {
			return err
		}
	}
	return nil
}

func (in *MeshInput) vertex(i int32) Vertex {
	var s, t, n mgl32.Vec3
	var tc mgl32.Vec2
	if in.SVectors != nil {
		s = in.SVectors[i]
	}
	if in.TVectors != nil {
		t = in.TVectors[i]
	}
	if in.Normals != nil {
		n = in.Normals[i]
	}
	if in.TexCoords != nil {
		tc = in.TexCoords[i]
	}
	return MakeVertex(in.Vertices[i], s, t, n, tc)
}

// Finish freezes the mesh: it optionally merges same-material segments,
// trims every segment to its contents, drops the dedup hashes and
// optionally computes adjacency. The builder cannot be used afterwards.
func (b *Builder) Finish(opts FinishOptions) (*Mesh, error) {
	m := b.mesh
	if m.finished {
		return nil, ErrFinished
	}

	if opts.Merge {
		m.Segments = mergeSegments(m.Kind, m.Segments)
	}

	for _, s := range m.Segments {
		s.hash = nil
		s.Vertices = clip(s.Vertices)
		s.Elements = clip(s.Elements)
		if s.isLight() {
			s.SVectors = clip(s.SVectors)
			s.TVectors = clip(s.TVectors)
			s.Normals = clip(s.Normals)
			s.TexCoords = clip(s.TexCoords)
		}
		s.MaxVertices = s.NumVertices()
		s.MaxTriangles = s.NumTriangles()
		if opts.Neighbors {
			s.Neighbors = make([]int32, len(s.Elements))
			mesh.BuildTriangleNeighbors(s.Elements, s.NumTriangles(), s.Neighbors)
		}
	}

	m.finished = true
	return m, nil
}

// mergeSegments re-adds the triangles of every material group with more
// than one segment into a single segment, in first-appearance order.
func mergeSegments(kind Kind, segs []*Segment) []*Segment {
	var order []Material
	groups := make(map[Material][]*Segment)
	for _, s := range segs {
		if _, ok := groups[s.Material]; !ok {
			order = append(order, s.Material)
		}
		groups[s.Material] = append(groups[s.Material], s)
	}

	out := make([]*Segment, 0, len(order))
	for _, mat := range order {
		group := groups[mat]
		if len(group) == 1 {
			out = append(out, group[0])
			continue
		}
		verts, tris := 0, 0
		for _, s := range group {
			verts += s.NumVertices()
			tris += s.NumTriangles()
		}
		merged := newSegment(kind, mat, verts, tris)
		for _, s := range group {
			for _, e := range s.Elements {
				merged.Elements = append(merged.Elements, merged.addVertex(s.vertex(e)))
			}
		}
		out = append(out, merged)
	}
	return out
}

// Convert rebuilds a finished mesh as another kind, e.g. deriving a
// shadow caster from a light mesh. Converting to KindShadow welds by
// position and computes adjacency.
func Convert(src *Mesh, kind Kind) (*Mesh, error) {
	verts, tris := max(src.NumVertices(), 3), max(src.NumTriangles(), 1)
	b := Begin(verts, tris, Material{}, kind, Expandable)
	for _, s := range src.Segments {
		for i := 0; i+2 < len(s.Elements); i += 3 {
			tri := [3]Vertex{s.vertex(s.Elements[i]), s.vertex(s.Elements[i+1]), s.vertex(s.Elements[i+2])}
			if err := b.AddTriangle(s.Material, tri); err != nil {
				return nil, err
			}
		}
	}
	return b.Finish(FinishOptions{Neighbors: kind == KindShadow})
}

func clip[T any](s []T) []T {
	out := make([]T, len(s))
	copy(out, s)
	return out
}
