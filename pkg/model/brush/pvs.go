package brush

import (
	"github.com/go-gl/mathgl/mgl32"

	rmath "github.com/Faultbox/midgard-models/pkg/math"
	"github.com/Faultbox/midgard-models/pkg/pvs"
)

// maxNodeStack bounds the explicit stacks of the box walks.
const maxNodeStack = 1024

// LeafAt returns the leaf containing p. Points on a plane go to the front.
func (w *World) LeafAt(p mgl32.Vec3) *Leaf {
	i := w.PointInLeaf(p)
	if i < 0 {
		return nil
	}
	return &w.Leafs[i]
}

// PointInLeaf implements model.LeafLocator.
func (w *World) PointInLeaf(p mgl32.Vec3) int {
	if len(w.Leafs) == 0 {
		return -1
	}
	c := w.HeadNode
	for c >= 0 {
		n := &w.Nodes[c]
		if w.Planes[n.Plane].Distance(p) >= 0 {
			c = n.Children[0]
		} else {
			c = n.Children[1]
		}
	}
	return ChildLeaf(c)
}

// GetPVS implements model.PVSGetter. The row aliases the world's PVS.
func (w *World) GetPVS(p mgl32.Vec3) []byte {
	leaf := w.LeafAt(p)
	if leaf == nil || leaf.Cluster < 0 {
		return nil
	}
	return w.PVS.Row(leaf.Cluster)
}

// FatPVS implements model.FatPVSer.
func (w *World) FatPVS(org mgl32.Vec3, radius float32, buf []byte) (int, bool) {
	if w.PVS == nil {
		return 0, false
	}
	n := w.PVS.BytesPerCluster
	if len(buf) < n {
		return n, false
	}
	pvs.Clear(buf[:n])
	w.fatPVS(w.HeadNode, org, radius, buf[:n])
	return n, true
}

func (w *World) fatPVS(c int32, org mgl32.Vec3, radius float32, buf []byte) {
	for c >= 0 {
		n := &w.Nodes[c]
		d := w.Planes[n.Plane].Distance(org)
		switch {
		case d >= radius:
			// Radius 0 sends on-plane points front, like PointInLeaf.
			c = n.Children[0]
		case d < -radius:
			c = n.Children[1]
		default:
			w.fatPVS(n.Children[0], org, radius, buf)
			c = n.Children[1]
		}
	}
	if leaf := &w.Leafs[ChildLeaf(c)]; leaf.Cluster >= 0 {
		pvs.Or(buf, w.PVS.Row(leaf.Cluster))
	}
}

// walkBox visits every leaf whose region the box may touch until visit
// returns true. It uses a fixed stack and does not allocate.
func (w *World) walkBox(mins, maxs mgl32.Vec3, visit func(leaf int) bool) bool {
	if len(w.Leafs) == 0 {
		return false
	}
	var stack [maxNodeStack]int32
	sp := 0
	c := w.HeadNode
	for {
		if c >= 0 {
			n := &w.Nodes[c]
			switch w.Planes[n.Plane].BoxOnPlaneSide(mins, maxs) {
			case rmath.SideFront:
				c = n.Children[0]
			case rmath.SideBack:
				c = n.Children[1]
			default:
				if sp < maxNodeStack {
					stack[sp] = n.Children[0]
					sp++
				}
				c = n.Children[1]
			}
			continue
		}
		if visit(ChildLeaf(c)) {
			return true
		}
		if sp == 0 {
			return false
		}
		sp--
		c = stack[sp]
	}
}

// BoxTouchingPVS implements model.BoxPVSTester.
func (w *World) BoxTouchingPVS(row []byte, mins, maxs mgl32.Vec3) bool {
	return w.walkBox(mins, maxs, func(i int) bool {
		leaf := &w.Leafs[i]
		return pvs.Test(row, leaf.Cluster) && rmath.BoxesOverlap(mins, maxs, leaf.Mins, leaf.Maxs)
	})
}

// BoxTouchingLeafPVS implements model.BoxLeafPVSTester; bits index leafs.
func (w *World) BoxTouchingLeafPVS(row []byte, mins, maxs mgl32.Vec3) bool {
	return w.walkBox(mins, maxs, func(i int) bool {
		return pvs.Test(row, i) && rmath.BoxesOverlap(mins, maxs, w.Leafs[i].Mins, w.Leafs[i].Maxs)
	})
}

// BoxTouchingVisibleLeafs implements model.BoxVisibleLeafsTester; visible
// holds one flag byte per leaf.
func (w *World) BoxTouchingVisibleLeafs(visible []byte, mins, maxs mgl32.Vec3) bool {
	return w.walkBox(mins, maxs, func(i int) bool {
		return i < len(visible) && visible[i] != 0
	})
}

// FindBoxClusters implements model.BoxClusterFinder. Clusters past
// len(out) are counted but not deduplicated.
func (w *World) FindBoxClusters(mins, maxs mgl32.Vec3, out []int) int {
	n := 0
	w.walkBox(mins, maxs, func(i int) bool {
		cluster := w.Leafs[i].Cluster
		if cluster < 0 {
			return false
		}
		for j := 0; j < min(n, len(out)); j++ {
			if out[j] == cluster {
				return false
			}
		}
		if n < len(out) {
			out[n] = cluster
		}
		n++
		return false
	})
	return n
}
