package brush

import (
	"github.com/go-gl/mathgl/mgl32"

	rmath "github.com/Faultbox/midgard-models/pkg/math"
	"github.com/Faultbox/midgard-models/pkg/model"
)

// MaxHulls is the number of Q1 clipping hulls.
const MaxHulls = 4

// distEpsilon keeps hull trace end points off the plane they hit.
const distEpsilon = 0.03125

// ClipNode is a Q1 clipping node. Negative children are native contents.
type ClipNode struct {
	Plane    int
	Children [2]int32
}

// Hull is a Q1 clipping hull: the world expanded by a fixed box so box
// traces reduce to point traces.
type Hull struct {
	ClipNodes     []ClipNode
	Planes        []rmath.Plane
	FirstClipNode int32
	ClipMins      mgl32.Vec3
	ClipMaxs      mgl32.Vec3
}

// Empty reports whether the hull carries no nodes.
func (h *Hull) Empty() bool {
	return len(h.ClipNodes) == 0 && h.FirstClipNode >= 0
}

// hullSize is a fixed player/monster box.
type hullSize struct {
	mins, maxs mgl32.Vec3
}

var (
	q1HullSizes = [MaxHulls]hullSize{
		{},
		{mgl32.Vec3{-16, -16, -24}, mgl32.Vec3{16, 16, 32}},
		{mgl32.Vec3{-32, -32, -24}, mgl32.Vec3{32, 32, 64}},
		{},
	}
	hlHullSizes = [MaxHulls]hullSize{
		{},
		{mgl32.Vec3{-16, -16, -36}, mgl32.Vec3{16, 16, 36}},
		{mgl32.Vec3{-32, -32, -32}, mgl32.Vec3{32, 32, 32}},
		{mgl32.Vec3{-16, -16, -18}, mgl32.Vec3{16, 16, 18}},
	}
)

// DefaultHullBox returns the clip box of hull i for the world's flavor.
func (w *World) DefaultHullBox(i int) (mgl32.Vec3, mgl32.Vec3) {
	if w.HalfLife {
		return hlHullSizes[i].mins, hlHullSizes[i].maxs
	}
	return q1HullSizes[i].mins, q1HullSizes[i].maxs
}

// MakeHull0 derives hull 0 from the drawing nodes.
func (w *World) MakeHull0() {
	h := &w.Hulls[0]
	h.Planes = w.Planes
	h.ClipNodes = make([]ClipNode, len(w.Nodes))
	for i, n := range w.Nodes {
		cn := ClipNode{Plane: n.Plane}
		for j, c := range n.Children {
			if c < 0 {
				cn.Children[j] = int32(w.Leafs[ChildLeaf(c)].Contents)
			} else {
				cn.Children[j] = c
			}
		}
		h.ClipNodes[i] = cn
	}
	if w.HeadNode < 0 {
		h.FirstClipNode = int32(w.Leafs[ChildLeaf(w.HeadNode)].Contents)
	} else {
		h.FirstClipNode = w.HeadNode
	}
	h.ClipMins, h.ClipMaxs = mgl32.Vec3{}, mgl32.Vec3{}
}

// hullIndexForSize picks the hull a box of the given size collides with.
func (w *World) hullIndexForSize(size mgl32.Vec3) int {
	switch {
	case size[0] < 3:
		return 0
	case size[0] <= 32:
		if w.HalfLife && size[2] < 54 {
			return 3
		}
		return 1
	default:
		return 2
	}
}

// RoundUpToHullSize implements model.HullRounder. Q1 worlds snap the box
// to the clip hull it will collide with; Q2/Q3 collide exactly.
func (w *World) RoundUpToHullSize(mins, maxs mgl32.Vec3) (mgl32.Vec3, mgl32.Vec3) {
	if w.Variant != VariantQ1 {
		return mins, maxs
	}
	i := w.hullIndexForSize(maxs.Sub(mins))
	hmins, hmaxs := w.DefaultHullBox(i)
	if !w.Hulls[i].Empty() {
		hmins, hmaxs = w.Hulls[i].ClipMins, w.Hulls[i].ClipMaxs
	}
	return mins, mins.Add(hmaxs.Sub(hmins))
}

// PointContents returns the native contents at p.
func (h *Hull) PointContents(num int32, p mgl32.Vec3) int {
	for num >= 0 {
		n := &h.ClipNodes[num]
		if h.Planes[n.Plane].Distance(p) < 0 {
			num = n.Children[1]
		} else {
			num = n.Children[0]
		}
	}
	return int(num)
}

// recursiveCheck is the classic Q1 hull sweep. It returns false once the
// trace has been stopped.
func (h *Hull) recursiveCheck(num int32, p1f, p2f float32, p1, p2 mgl32.Vec3, tr *model.Trace) bool {
	if num < 0 {
		if num != ContentsSolid {
			tr.AllSolid = false
			if num == ContentsEmpty {
				tr.InOpen = true
			} else {
				tr.InWater = true
			}
		} else {
			tr.StartSolid = true
		}
		return true
	}

	n := &h.ClipNodes[num]
	plane := &h.Planes[n.Plane]
	t1 := plane.Distance(p1)
	t2 := plane.Distance(p2)

	if t1 >= 0 && t2 >= 0 {
		return h.recursiveCheck(n.Children[0], p1f, p2f, p1, p2, tr)
	}
	if t1 < 0 && t2 < 0 {
		return h.recursiveCheck(n.Children[1], p1f, p2f, p1, p2, tr)
	}

	// Put the crosspoint distEpsilon units on the near side.
	var frac float32
	if t1 < 0 {
		frac = (t1 + distEpsilon) / (t1 - t2)
	} else {
		frac = (t1 - distEpsilon) / (t1 - t2)
	}
	frac = rmath.Clamp(frac, 0, 1)

	midf := p1f + (p2f-p1f)*frac
	mid := p1.Add(p2.Sub(p1).Mul(frac))

	side := 0
	if t1 < 0 {
		side = 1
	}

	if !h.recursiveCheck(n.Children[side], p1f, midf, p1, mid, tr) {
		return false
	}
	if h.PointContents(n.Children[side^1], mid) != ContentsSolid {
		return h.recursiveCheck(n.Children[side^1], midf, p2f, mid, p2, tr)
	}
	if tr.AllSolid {
		return false
	}

	// The other side is solid: this is the impact point.
	if side == 0 {
		tr.Plane = *plane
	} else {
		tr.Plane = rmath.NewPlane(plane.Normal.Mul(-1), -plane.Dist)
	}
	for h.PointContents(h.FirstClipNode, mid) == ContentsSolid {
		frac -= 0.1
		if frac < 0 {
			tr.Fraction = midf
			tr.EndPos = mid
			return false
		}
		midf = p1f + (p2f-p1f)*frac
		mid = p1.Add(p2.Sub(p1).Mul(frac))
	}
	tr.Fraction = midf
	tr.EndPos = mid
	return false
}

// traceHull sweeps a box through the matching Q1 hull.
func (w *World) traceHull(start, mins, maxs, end mgl32.Vec3, hitMask int) model.Trace {
	tr := model.NewTrace(end, hitMask)
	h := &w.Hulls[w.hullIndexForSize(maxs.Sub(mins))]
	if h.Empty() {
		h = &w.Hulls[0]
	}
	if h.Empty() {
		return tr
	}

	// Hull space is offset so the box's mins land on the hull's mins.
	offset := h.ClipMins.Sub(mins)
	p1 := start.Sub(offset)
	p2 := end.Sub(offset)

	tr.StartSuperContents = q1SuperContents(h.PointContents(h.FirstClipNode, p1))
	if hitMask&model.SuperContentsSolid == 0 {
		return tr
	}

	tr.AllSolid = true
	h.recursiveCheck(h.FirstClipNode, 0, 1, p1, p2, &tr)
	if tr.Fraction == 1 {
		tr.EndPos = end
	} else {
		tr.EndPos = tr.EndPos.Add(offset)
		tr.HitSuperContents = model.SuperContentsSolid
	}
	if tr.AllSolid {
		tr.StartSolid = true
		tr.Fraction = 0
		tr.EndPos = start
		tr.HitSuperContents = model.SuperContentsSolid
	}
	tr.RealFraction = tr.Fraction
	return tr
}
