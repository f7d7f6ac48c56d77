package model

import (
	"github.com/bits-and-blooms/bitset"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/midgard-models/pkg/mesh"
	"github.com/Faultbox/midgard-models/pkg/rtexture"
)

// FrameLerp is one weighted frame of a blend.
type FrameLerp struct {
	Frame int
	Lerp  float32
}

// FrameBlend is up to four weighted frames; weights should sum to 1.
type FrameBlend [4]FrameLerp

// SingleFrame returns a blend showing only frame.
func SingleFrame(frame int) FrameBlend {
	return FrameBlend{{Frame: frame, Lerp: 1}}
}

// Entity is one placed instance of a model as handed to the draw slots.
type Entity struct {
	Model *Model

	Matrix        mgl32.Mat4
	InverseMatrix mgl32.Mat4
	Origin        mgl32.Vec3

	Blend    FrameBlend
	Skin     int
	Alpha    float32
	Colormap int
	// Time drives texture and sprite animation.
	Time float64
}

// NewEntity places m with the given model-to-world matrix.
func NewEntity(m *Model, matrix mgl32.Mat4) *Entity {
	return &Entity{
		Model:         m,
		Matrix:        matrix,
		InverseMatrix: matrix.Inv(),
		Origin:        matrix.Col(3).Vec3(),
		Blend:         SingleFrame(0),
		Alpha:         1,
	}
}

// ToLocal transforms a world-space point into model space.
func (e *Entity) ToLocal(p mgl32.Vec3) mgl32.Vec3 {
	return mgl32.TransformCoordinate(p, e.InverseMatrix)
}

// LightSample is the lighting at a point.
type LightSample struct {
	Ambient       mgl32.Vec3
	Diffuse       mgl32.Vec3
	DiffuseNormal mgl32.Vec3
}

// LightInfo collects what a light touches, filled by GetLightInfo.
// Callers may reuse one LightInfo across lights.
type LightInfo struct {
	Mins, Maxs mgl32.Vec3
	Leafs      []int
	LeafPVS    *bitset.BitSet
	Surfaces   []int
	SurfacePVS *bitset.BitSet
}

// Reset clears the lists, keeping their storage.
func (l *LightInfo) Reset(origin mgl32.Vec3, radius float32) {
	r := mgl32.Vec3{radius, radius, radius}
	l.Mins, l.Maxs = origin.Sub(r), origin.Add(r)
	l.Leafs = l.Leafs[:0]
	l.Surfaces = l.Surfaces[:0]
	if l.LeafPVS != nil {
		l.LeafPVS.ClearAll()
	}
	if l.SurfacePVS != nil {
		l.SurfacePVS.ClearAll()
	}
}

// ShadowBatch is one run of shadow caster triangles handed to the
// backend for extrusion.
type ShadowBatch struct {
	Vertices    []mgl32.Vec3
	Elements    []int32
	Neighbors   []int32
	LightOrigin mgl32.Vec3
	LightRadius float32
	Mins, Maxs  mgl32.Vec3
}

// SpriteQuad is a camera-facing quad.
type SpriteQuad struct {
	Texture     *rtexture.Texture
	Orientation int
	Left, Right float32
	Up, Down    float32
	Alpha       float32
}

// Renderer is the draw backend the render slots call into. Pose is nil
// for static geometry.
type Renderer interface {
	DrawSurface(ent *Entity, surface *Surface, pose *mesh.Pose)
	DrawSkySurface(ent *Entity, surface *Surface)
	DrawLitSurface(ent *Entity, surface *Surface, pose *mesh.Pose)
	DrawShadowTriangles(ent *Entity, batch ShadowBatch)
	DrawSprite(ent *Entity, quad SpriteQuad)
}
