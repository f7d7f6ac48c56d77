package mesh

import "github.com/go-gl/mathgl/mgl32"

// Allocate reserves a buffer for numVertices vertices and numTriangles
// triangles. Position, tangent basis, normal and both texcoord sets are
// always allocated; opts selects the rest.
func Allocate(numVertices, numTriangles int, opts Options) (*Buffer, error) {
	if numVertices < 0 || numTriangles < 0 {
		return nil, &AllocationError{Reason: "negative vertex or triangle count"}
	}
	if opts.MorphFrames < 0 {
		return nil, &AllocationError{Reason: "negative morph frame count"}
	}
	if opts.MorphFrames > 0 && opts.Skeletal {
		return nil, &AllocationError{Reason: "morph and skeletal blending are mutually exclusive"}
	}
	animated := opts.MorphFrames > 0 || opts.Skeletal
	if animated && opts.LightmapOffsets {
		return nil, &AllocationError{Reason: "lightmap offsets require a static buffer"}
	}
	if animated && opts.VertexColors {
		return nil, &AllocationError{Reason: "baked vertex colors require a static buffer"}
	}

	b := &Buffer{
		NumVertices:       numVertices,
		NumTriangles:      numTriangles,
		Elements:          make([]int32, 3*numTriangles),
		Vertices:          make([]mgl32.Vec3, numVertices),
		SVectors:          make([]mgl32.Vec3, numVertices),
		TVectors:          make([]mgl32.Vec3, numVertices),
		Normals:           make([]mgl32.Vec3, numVertices),
		TexCoords:         make([]mgl32.Vec2, numVertices),
		LightmapTexCoords: make([]mgl32.Vec2, numVertices),
	}
	if opts.Neighbors {
		b.Neighbors = make([]int32, 3*numTriangles)
		for i := range b.Neighbors {
			b.Neighbors[i] = NoNeighbor
		}
	}
	if opts.VertexColors {
		b.LightmapColors = make([]mgl32.Vec4, numVertices)
	}
	if opts.LightmapOffsets {
		b.LightmapOffsets = make([]int32, numVertices)
	}
	if opts.MorphFrames > 0 {
		b.Morph = make([]MorphFrame, opts.MorphFrames)
		for i := range b.Morph {
			b.Morph[i] = MorphFrame{
				Vertices: make([]mgl32.Vec3, numVertices),
				Normals:  make([]mgl32.Vec3, numVertices),
			}
		}
	}
	if opts.Skeletal {
		b.WeightIndices = make([][4]int32, numVertices)
		b.WeightInfluences = make([]mgl32.Vec4, numVertices)
	}
	return b, nil
}

// Validate checks every buffer invariant: array lengths, element range and
// neighbor range.
func (b *Buffer) Validate() error {
	if len(b.Elements) != 3*b.NumTriangles {
		return &ContentIntegrityError{Triangle: -1, Reason: "element count does not match triangle count"}
	}
	if len(b.Vertices) != b.NumVertices {
		return &ContentIntegrityError{Triangle: -1, Reason: "vertex array does not match vertex count"}
	}
	if err := ValidateElements(b.Elements, 0, b.NumVertices); err != nil {
		return err
	}
	if b.Neighbors == nil {
		return nil
	}
	if len(b.Neighbors) != len(b.Elements) {
		return &ContentIntegrityError{Triangle: -1, Reason: "neighbor count does not match triangle count"}
	}
	for i, n := range b.Neighbors {
		if n != NoNeighbor && (n < 0 || int(n) >= b.NumTriangles) {
			return &ContentIntegrityError{
				Triangle: i / 3,
				Index:    n,
				Reason:   "neighbor out of range",
			}
		}
	}
	return nil
}
