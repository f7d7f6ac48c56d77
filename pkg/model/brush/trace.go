package brush

import (
	"github.com/bits-and-blooms/bitset"
	"github.com/go-gl/mathgl/mgl32"

	rmath "github.com/Faultbox/midgard-models/pkg/math"
	"github.com/Faultbox/midgard-models/pkg/model"
)

// Collision tuning.
const (
	// impactNudge keeps trace end points this far in front of the hit plane.
	impactNudge = 0.03125
	// triangleThickness is the depth given to collision triangles.
	triangleThickness = 1
)

// TraceBox implements model.BoxTracer. Q1 worlds sweep their clip hulls;
// Q2/Q3 worlds clip against brushes and collision meshes.
func (w *World) TraceBox(m *model.Model, frame int, start, mins, maxs, end mgl32.Vec3, hitMask int) model.Trace {
	if w.Variant == VariantQ1 {
		return w.traceHull(start, mins, maxs, end, hitMask)
	}
	t := newBrushTracer(w, m, start, mins, maxs, end, hitMask)
	t.run()
	return t.finish()
}

// brushTracer holds the state of one swept box query. The marks make
// sure a brush or surface shared by several leafs is tested once.
type brushTracer struct {
	w     *World
	m     *model.Model
	start mgl32.Vec3
	end   mgl32.Vec3
	mins  mgl32.Vec3
	maxs  mgl32.Vec3
	// Sweep bounds.
	absMins mgl32.Vec3
	absMaxs mgl32.Vec3

	brushMarks   *bitset.BitSet
	surfaceMarks *bitset.BitSet

	tr model.Trace
}

func newBrushTracer(w *World, m *model.Model, start, mins, maxs, end mgl32.Vec3, hitMask int) *brushTracer {
	t := &brushTracer{
		w: w, m: m,
		start: start, end: end,
		mins: mins, maxs: maxs,
		brushMarks: bitset.New(uint(len(w.Brushes))),
		tr:         model.NewTrace(end, hitMask),
	}
	if m != nil {
		t.surfaceMarks = bitset.New(uint(len(m.Surfaces)))
	}
	t.absMins = rmath.MinVec(start, end).Add(mins)
	t.absMaxs = rmath.MaxVec(start, end).Add(maxs)
	return t
}

func (t *brushTracer) run() {
	if t.w.Submodel != 0 && t.m != nil {
		// Submodels test their own brush and surface ranges directly.
		for b := t.m.FirstModelBrush; b < t.m.FirstModelBrush+t.m.NumModelBrushes; b++ {
			t.clipBrushIndex(b)
		}
		for s := t.m.FirstModelSurface; s < t.m.FirstModelSurface+t.m.NumModelSurfaces; s++ {
			t.clipSurfaceIndex(s)
		}
		return
	}
	t.w.walkBox(t.absMins, t.absMaxs, func(i int) bool {
		leaf := &t.w.Leafs[i]
		for _, b := range leaf.Brushes {
			t.clipBrushIndex(b)
		}
		if t.m != nil {
			for _, s := range leaf.Surfaces {
				t.clipSurfaceIndex(s)
			}
		}
		return t.tr.AllSolid
	})
}

func (t *brushTracer) clipBrushIndex(b int) {
	if b < 0 || b >= len(t.w.Brushes) || t.brushMarks.Test(uint(b)) {
		return
	}
	t.brushMarks.Set(uint(b))
	brush := &t.w.Brushes[b]
	if brush.SuperContents&t.tr.HitSuperContentsMask == 0 {
		return
	}
	if !rmath.BoxesOverlap(t.absMins, t.absMaxs, brush.Mins, brush.Maxs) {
		return
	}
	t.clipBrush(brush.Sides, brush.SuperContents, brush.Texture)
}

func (t *brushTracer) clipSurfaceIndex(s int) {
	if t.surfaceMarks == nil || s < 0 || s >= len(t.m.Surfaces) || t.surfaceMarks.Test(uint(s)) {
		return
	}
	t.surfaceMarks.Set(uint(s))
	surf := &t.m.Surfaces[s]
	if !surf.HasCollisionMesh() {
		return
	}
	contents := model.SuperContentsSolid
	if surf.Texture != nil && surf.Texture.SuperContents != 0 {
		contents = surf.Texture.SuperContents
	}
	if contents&t.tr.HitSuperContentsMask == 0 {
		return
	}
	if !rmath.BoxesOverlap(t.absMins, t.absMaxs, surf.Mins, surf.Maxs) {
		return
	}
	var sides [5]BrushSide
	verts := surf.CollisionVertices
	for i := 0; i+2 < len(surf.CollisionElements); i += 3 {
		a := verts[surf.CollisionElements[i]]
		b := verts[surf.CollisionElements[i+1]]
		c := verts[surf.CollisionElements[i+2]]
		if !triangleBrush(a, b, c, &sides) {
			continue
		}
		for j := range sides {
			sides[j].Texture = surf.Texture
		}
		t.clipBrush(sides[:], contents, surf.Texture)
		if t.tr.AllSolid {
			return
		}
	}
}

// triangleBrush fills sides with a thin brush around triangle abc: the
// face, a back face triangleThickness behind it and three edge planes.
func triangleBrush(a, b, c mgl32.Vec3, sides *[5]BrushSide) bool {
	n := rmath.SafeNormalize(rmath.TriangleNormal(a, b, c))
	if n == (mgl32.Vec3{}) {
		return false
	}
	d := n.Dot(a)
	sides[0].Plane = rmath.NewPlane(n, d)
	sides[1].Plane = rmath.NewPlane(n.Mul(-1), -d+triangleThickness)
	corners := [3]mgl32.Vec3{a, b, c}
	for i := 0; i < 3; i++ {
		p, q := corners[i], corners[(i+1)%3]
		en := rmath.SafeNormalize(q.Sub(p).Cross(n))
		if en == (mgl32.Vec3{}) {
			return false
		}
		sides[2+i].Plane = rmath.NewPlane(en, en.Dot(p))
	}
	return true
}

// clipBrush clips the sweep against one convex volume, expanding each
// plane by the box corner nearest to it.
func (t *brushTracer) clipBrush(sides []BrushSide, contents int, tex *model.Texture) {
	if len(sides) == 0 {
		return
	}
	enterFrac := float32(-1)
	leaveFrac := float32(1)
	var hitSide *BrushSide
	startOut, getOut := false, false

	for i := range sides {
		side := &sides[i]
		plane := &side.Plane
		corner := rmath.NearestCorner(plane.Normal, t.mins, t.maxs)
		dist := plane.Dist - plane.Normal.Dot(corner)
		d1 := plane.Normal.Dot(t.start) - dist
		d2 := plane.Normal.Dot(t.end) - dist

		if d2 > 0 {
			getOut = true
		}
		if d1 > 0 {
			startOut = true
		}
		// Entirely in front of this face: no contact.
		if d1 > 0 && (d2 >= impactNudge || d2 >= d1) {
			return
		}
		if d1 <= 0 && d2 <= 0 {
			continue
		}
		if d1 > d2 {
			f := max((d1-impactNudge)/(d1-d2), 0)
			if f > enterFrac {
				enterFrac = f
				hitSide = side
			}
		} else {
			f := min((d1+impactNudge)/(d1-d2), 1)
			if f < leaveFrac {
				leaveFrac = f
			}
		}
	}

	if !startOut {
		t.tr.StartSolid = true
		t.tr.StartSuperContents |= contents
		if !getOut {
			t.tr.AllSolid = true
			t.tr.Fraction = 0
			t.tr.RealFraction = 0
			t.tr.HitSuperContents = contents
			t.tr.HitTexture = tex
		}
		return
	}

	if enterFrac < leaveFrac && enterFrac > -1 && enterFrac < t.tr.Fraction && hitSide != nil {
		enterFrac = max(enterFrac, 0)
		t.tr.Fraction = enterFrac
		t.tr.RealFraction = enterFrac
		t.tr.Plane = hitSide.Plane
		t.tr.HitSuperContents = contents
		t.tr.HitSurfaceFlags = hitSide.SurfaceFlags
		t.tr.HitTexture = hitSide.Texture
		if t.tr.HitTexture == nil {
			t.tr.HitTexture = tex
		}
	}
}

func (t *brushTracer) finish() model.Trace {
	tr := t.tr
	if tr.AllSolid {
		tr.EndPos = t.start
		return tr
	}
	tr.EndPos = t.start.Add(t.end.Sub(t.start).Mul(tr.Fraction))
	if !tr.StartSolid {
		tr.InOpen = true
	}
	return tr
}

// solidAt reports whether a box of half-size radius at p overlaps solid.
func (w *World) solidAt(p mgl32.Vec3, radius float32) bool {
	r := mgl32.Vec3{radius, radius, radius}
	tr := w.TraceBox(nil, 0, p, r.Mul(-1), r, p, model.SuperContentsSolid)
	return tr.StartSolid || tr.AllSolid
}

// probeDirections are the 26 neighbors of a unit cube cell, axis
// directions first.
var probeDirections = func() []mgl32.Vec3 {
	dirs := []mgl32.Vec3{
		{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1},
	}
	for x := -1; x <= 1; x++ {
		for y := -1; y <= 1; y++ {
			for z := -1; z <= 1; z++ {
				if abs(x)+abs(y)+abs(z) >= 2 {
					dirs = append(dirs, mgl32.Vec3{float32(x), float32(y), float32(z)})
				}
			}
		}
	}
	return dirs
}()

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// maxProbeSteps bounds how far FindNonSolidLocation searches.
const maxProbeSteps = 8

// FindNonSolidLocation implements model.NonSolidLocator by probing in
// growing shells around in until a box of the given radius fits. The
// input is returned when nothing nearby is free.
func (w *World) FindNonSolidLocation(in mgl32.Vec3, radius float32) mgl32.Vec3 {
	if !w.solidAt(in, radius) {
		return in
	}
	step := max(radius, 1)
	for s := 1; s <= maxProbeSteps; s++ {
		for _, d := range probeDirections {
			p := in.Add(d.Mul(step * float32(s)))
			if !w.solidAt(p, radius) {
				return p
			}
		}
	}
	return in
}
