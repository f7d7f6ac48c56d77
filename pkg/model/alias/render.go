package alias

import (
	"github.com/go-gl/mathgl/mgl32"

	rmath "github.com/Faultbox/midgard-models/pkg/math"
	"github.com/Faultbox/midgard-models/pkg/mesh"
	"github.com/Faultbox/midgard-models/pkg/model"
)

// traceNudge keeps trace end points off the bounding box.
const traceNudge = 0.03125

// posed evaluates the entity's frame blend. The returned pose is nil for
// static meshes; release must be called when the backend is done.
func (d *Data) posed(ent *model.Entity) (pose *mesh.Pose, release func()) {
	b := ent.Model.Mesh
	if b == nil || !b.IsAnimated() {
		return nil, func() {}
	}
	p := posePool.Get().(*mesh.Pose)
	d.Evaluate(b, ent.Blend, p)
	return p, func() { posePool.Put(p) }
}

// skinned returns surface i with the entity's skin applied, and whether
// it should be drawn at all. The result is only valid during the call it
// is passed to.
func (d *Data) skinned(ent *model.Entity, i int) (*model.Surface, bool) {
	m := ent.Model
	s := &m.Surfaces[i]
	tex := d.surfaceTexture(m, ent.Skin, i, ent.Time)
	if tex == nil || tex.MaterialFlags&model.MaterialNoDraw != 0 {
		return nil, false
	}
	if tex != s.Texture {
		c := *s
		c.Texture = tex
		s = &c
	}
	return s, true
}

func surfaceList(m *model.Model) []int {
	if len(m.SurfaceList) > 0 {
		return m.SurfaceList
	}
	list := make([]int, len(m.Surfaces))
	for i := range list {
		list[i] = i
	}
	return list
}

// Draw implements model.Drawer.
func (d *Data) Draw(ent *model.Entity, r model.Renderer) {
	pose, release := d.posed(ent)
	defer release()
	for _, i := range surfaceList(ent.Model) {
		if s, ok := d.skinned(ent, i); ok {
			r.DrawSurface(ent, s, pose)
		}
	}
}

// DrawLight implements model.LightDrawer.
func (d *Data) DrawLight(ent *model.Entity, r model.Renderer, surfaces []int) {
	pose, release := d.posed(ent)
	defer release()
	if len(surfaces) == 0 {
		surfaces = surfaceList(ent.Model)
	}
	for _, i := range surfaces {
		if s, ok := d.skinned(ent, i); ok {
			r.DrawLitSurface(ent, s, pose)
		}
	}
}

// DrawShadowVolume implements model.ShadowVolumeDrawer: each surface of
// the posed mesh goes to the backend as one caster batch.
func (d *Data) DrawShadowVolume(ent *model.Entity, r model.Renderer, lightOrigin mgl32.Vec3, lightRadius float32, surfaces []int, lightMins, lightMaxs mgl32.Vec3) {
	m := ent.Model
	b := m.Mesh
	if b == nil || len(b.Neighbors) != len(b.Elements) {
		return
	}
	if !rmath.BoxesOverlap(m.RotatedMins, m.RotatedMaxs, lightMins, lightMaxs) {
		return
	}
	pose, release := d.posed(ent)
	defer release()
	vertices := b.Vertices
	if pose != nil {
		vertices = pose.Vertices
	}
	if len(surfaces) == 0 {
		surfaces = surfaceList(m)
	}
	for _, i := range surfaces {
		s := &m.Surfaces[i]
		if !s.Texture.CastsShadow() || s.NumTriangles == 0 {
			continue
		}
		r.DrawShadowTriangles(ent, model.ShadowBatch{
			Vertices:    vertices,
			Elements:    s.Elements(b),
			Neighbors:   b.Neighbors[3*s.FirstTriangle : 3*(s.FirstTriangle+s.NumTriangles)],
			LightOrigin: lightOrigin,
			LightRadius: lightRadius,
			Mins:        m.NormalMins,
			Maxs:        m.NormalMaxs,
		})
	}
}

// TraceBox implements model.BoxTracer against the bounding box of the
// frame, which counts as body contents.
func (d *Data) TraceBox(m *model.Model, frame int, start, mins, maxs, end mgl32.Vec3, hitMask int) model.Trace {
	tr := model.NewTrace(end, hitMask)
	if hitMask&model.SuperContentsBody == 0 {
		return tr
	}
	fmins, fmaxs := frameBounds(m, frame)
	// Minkowski sum: sweep a point against the box grown by the mover.
	bmins := fmins.Sub(maxs)
	bmaxs := fmaxs.Sub(mins)

	if rmath.PointInBox(start, bmins, bmaxs) {
		tr.StartSolid = true
		tr.StartSuperContents = model.SuperContentsBody
		if rmath.PointInBox(end, bmins, bmaxs) {
			tr.AllSolid = true
			tr.Fraction, tr.RealFraction = 0, 0
			tr.EndPos = start
			tr.HitSuperContents = model.SuperContentsBody
		}
		return tr
	}

	dir := end.Sub(start)
	enter, axis, ok := rmath.IntersectRayBox(start, dir, bmins, bmaxs)
	if !ok || axis < 0 || enter > 1 {
		tr.InOpen = true
		return tr
	}
	length := rmath.Sqrt32(dir.Dot(dir))
	frac := enter
	if length > 0 {
		frac = max(enter-traceNudge/length, 0)
	}

	var n mgl32.Vec3
	var dist float32
	if dir[axis] > 0 {
		n[axis] = -1
		dist = -bmins[axis]
	} else {
		n[axis] = 1
		dist = bmaxs[axis]
	}
	tr.Fraction, tr.RealFraction = frac, frac
	tr.EndPos = start.Add(dir.Mul(frac))
	tr.Plane = rmath.NewPlane(n, dist)
	tr.HitSuperContents = model.SuperContentsBody
	tr.InOpen = true
	return tr
}

// frameBounds returns the box of a morph frame's vertices. Skeletal and
// static models, and frames out of range, use the model's normal box.
func frameBounds(m *model.Model, frame int) (mins, maxs mgl32.Vec3) {
	if m.Mesh == nil || frame < 0 || frame >= len(m.Mesh.Morph) || len(m.Mesh.Morph[frame].Vertices) == 0 {
		return m.NormalMins, m.NormalMaxs
	}
	mins, maxs = rmath.EmptyBounds()
	for _, v := range m.Mesh.Morph[frame].Vertices {
		rmath.Extend(&mins, &maxs, v)
	}
	return mins, maxs
}
