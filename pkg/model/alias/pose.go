package alias

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	rmath "github.com/Faultbox/midgard-models/pkg/math"
	"github.com/Faultbox/midgard-models/pkg/mesh"
	"github.com/Faultbox/midgard-models/pkg/model"
)

var posePool = sync.Pool{New: func() any { return new(mesh.Pose) }}

// Evaluate writes the blended vertices, normals and texture axes of b
// for blend into pose. The source buffer is never modified. Frames out
// of range and zero weights are skipped; a blend with nothing left shows
// the base vertices.
func (d *Data) Evaluate(b *mesh.Buffer, blend model.FrameBlend, pose *mesh.Pose) {
	pose.Resize(b.NumVertices)
	evaluated := false
	switch b.Blend() {
	case mesh.BlendMorph:
		evaluated = evaluateMorph(b, blend, pose)
	case mesh.BlendSkeletal:
		evaluated = d.evaluateSkeletal(b, blend, pose)
	}
	if !evaluated {
		copy(pose.Vertices, b.Vertices)
		copy(pose.Normals, b.Normals)
	}
	if len(b.TexCoords) == b.NumVertices {
		mesh.BuildTangentVectors(0, b.NumVertices, pose.Vertices, b.TexCoords, pose.Normals,
			b.Elements, pose.SVectors, pose.TVectors, false)
	}
}

func evaluateMorph(b *mesh.Buffer, blend model.FrameBlend, pose *mesh.Pose) bool {
	used := false
	for _, fl := range blend {
		if fl.Lerp == 0 || fl.Frame < 0 || fl.Frame >= len(b.Morph) {
			continue
		}
		f := &b.Morph[fl.Frame]
		for i := range pose.Vertices {
			pose.Vertices[i] = pose.Vertices[i].Add(f.Vertices[i].Mul(fl.Lerp))
			pose.Normals[i] = pose.Normals[i].Add(f.Normals[i].Mul(fl.Lerp))
		}
		used = true
	}
	for i := range pose.Normals {
		pose.Normals[i] = rmath.SafeNormalize(pose.Normals[i])
	}
	return used
}

// boneMatrices blends the parent-relative bone poses of every frame in
// blend and chains them into model space.
func (d *Data) boneMatrices(blend model.FrameBlend) ([]mgl32.Mat4, bool) {
	nb := len(d.Bones)
	rel := make([]mgl32.Mat4, nb)
	used := false
	for _, fl := range blend {
		if fl.Lerp == 0 || fl.Frame < 0 || fl.Frame >= d.NumPoses {
			continue
		}
		frame := d.Poses[fl.Frame*nb : (fl.Frame+1)*nb]
		for i := range rel {
			rel[i] = rel[i].Add(frame[i].Mul(fl.Lerp))
		}
		used = true
	}
	if !used {
		return nil, false
	}
	abs := rel
	for i, bone := range d.Bones {
		if bone.Parent >= 0 {
			abs[i] = abs[bone.Parent].Mul4(rel[i])
		}
	}
	return abs, true
}

func (d *Data) evaluateSkeletal(b *mesh.Buffer, blend model.FrameBlend, pose *mesh.Pose) bool {
	abs, ok := d.boneMatrices(blend)
	if !ok {
		return false
	}
	skin := make([]mgl32.Mat4, len(abs))
	for i := range abs {
		skin[i] = abs[i].Mul4(d.BaseBonePoseInverse[i])
	}
	for v := range pose.Vertices {
		p := b.Vertices[v].Vec4(1)
		n := b.Normals[v].Vec4(0)
		var outP, outN mgl32.Vec4
		for k, bone := range b.WeightIndices[v] {
			w := b.WeightInfluences[v][k]
			if w == 0 {
				continue
			}
			outP = outP.Add(skin[bone].Mul4x1(p).Mul(w))
			outN = outN.Add(skin[bone].Mul4x1(n).Mul(w))
		}
		pose.Vertices[v] = outP.Vec3()
		pose.Normals[v] = rmath.SafeNormalize(outN.Vec3())
	}
	return true
}
