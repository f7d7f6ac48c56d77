// Package brush implements the BSP world formats (Q1, Q2 and Q3 style
// maps and their submodels): the node/leaf tree, cluster visibility,
// static lighting, collision and the render slots.
//
// A *World is attached to a model.Model as its Data. Node children use a
// single int32: values >= 0 index Nodes, negative values name leaf
// -(child+1).
package brush

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	rmath "github.com/Faultbox/midgard-models/pkg/math"
	"github.com/Faultbox/midgard-models/pkg/mesh"
	"github.com/Faultbox/midgard-models/pkg/model"
	"github.com/Faultbox/midgard-models/pkg/pvs"
	"github.com/Faultbox/midgard-models/pkg/shadowmesh"
)

// Variant selects the BSP flavor.
type Variant int

const (
	VariantQ1 Variant = iota
	VariantQ2
	VariantQ3
)

func (v Variant) String() string {
	switch v {
	case VariantQ1:
		return "q1"
	case VariantQ2:
		return "q2"
	case VariantQ3:
		return "q3"
	default:
		return fmt.Sprintf("Variant(%d)", int(v))
	}
}

// NumAmbients is the number of ambient sound channels stored per leaf.
const NumAmbients = 4

// Node is an interior BSP node.
type Node struct {
	Plane    int
	Children [2]int32
	Mins     mgl32.Vec3
	Maxs     mgl32.Vec3
	// Surfaces lying on this node's plane, as a range of model surfaces.
	FirstSurface int
	NumSurfaces  int
}

// Leaf is a convex region of the world.
type Leaf struct {
	// Contents holds native contents (Q1); Q2/Q3 leafs take theirs from brushes.
	Contents int
	// Cluster indexes the PVS, -1 for solid or unvisited leafs.
	Cluster int
	Area    int
	Mins    mgl32.Vec3
	Maxs    mgl32.Vec3
	// Surfaces and Brushes index model surfaces and World.Brushes.
	Surfaces []int
	Brushes  []int

	AmbientSoundLevel [NumAmbients]uint8
}

// BrushSide is one bounding plane of a convex brush.
type BrushSide struct {
	Plane        rmath.Plane
	Texture      *model.Texture
	SurfaceFlags int
}

// Brush is a convex collision volume.
type Brush struct {
	Sides []BrushSide
	// SuperContents of the volume.
	SuperContents int
	Texture       *model.Texture
	Mins, Maxs    mgl32.Vec3
}

// LeafChild encodes leaf index i as a node child.
func LeafChild(i int) int32 {
	return int32(-(i + 1))
}

// ChildLeaf returns the leaf index of a negative child.
func ChildLeaf(c int32) int {
	return int(-c) - 1
}

// World is the brush-format sub-record. Submodels are shallow copies that
// share every array with the world and differ in their roots.
type World struct {
	Variant  Variant
	HalfLife bool
	// Entities is the raw entity lump.
	Entities string

	Planes   []rmath.Plane
	Nodes    []Node
	Leafs    []Leaf
	HeadNode int32
	Brushes  []Brush

	// Hulls are the Q1 clipping hulls; hull 0 is derived from the nodes.
	Hulls [MaxHulls]Hull

	PVS *pvs.Data
	// ShadowMesh holds every shadow casting triangle of the world and its
	// submodels; surfaces index it by FirstShadowMeshTriangle.
	ShadowMesh *shadowmesh.Mesh
	LightGrid  *LightGrid

	// StyleValue returns the current scale of a light style, 1 for normal.
	// Nil means every style is at normal brightness.
	StyleValue func(style int) float32

	// Submodel is 0 for the world itself.
	Submodel  int
	Submodels []*model.Model

	Skybox string
}

// Format implements model.FormatData.
func (w *World) Format() model.Format {
	switch w.Variant {
	case VariantQ2:
		return model.FormatBrushQ2
	case VariantQ3:
		return model.FormatBrushQ3
	default:
		return model.FormatBrushQ1
	}
}

// Supports implements model.SlotFilter: slots whose data this world
// lacks are reported absent.
func (w *World) Supports(s model.Slot) bool {
	switch s {
	case model.SlotGetPVS, model.SlotFatPVS, model.SlotBoxTouchingPVS, model.SlotFindBoxClusters:
		return w.PVS != nil && w.PVS.NumClusters > 0
	case model.SlotAmbientSoundLevelsForPoint:
		return w.Variant == VariantQ1
	case model.SlotLightPoint:
		return w.Variant != VariantQ3 || w.LightGrid != nil
	default:
		return true
	}
}

// SubmodelCopy returns a world view rooted at headNode for submodel n.
// Q1 submodels also carry their own hull roots.
func (w *World) SubmodelCopy(n int, headNode int32, hullRoots [MaxHulls]int32) *World {
	sub := *w
	sub.Submodel = n
	sub.HeadNode = headNode
	for i := range sub.Hulls {
		sub.Hulls[i].FirstClipNode = hullRoots[i]
	}
	sub.Submodels = nil
	return &sub
}

func (w *World) styleValue(style int) float32 {
	if w.StyleValue == nil {
		return 1
	}
	return w.StyleValue(style)
}

// Validate checks every cross reference of the tree.
func (w *World) Validate() error {
	checkChild := func(n int, c int32) error {
		if c >= 0 && int(c) >= len(w.Nodes) {
			return fmt.Errorf("%w: node %d child %d out of range", mesh.ErrContentIntegrity, n, c)
		}
		if c < 0 && ChildLeaf(c) >= len(w.Leafs) {
			return fmt.Errorf("%w: node %d leaf child %d out of range", mesh.ErrContentIntegrity, n, ChildLeaf(c))
		}
		return nil
	}
	if err := checkChild(-1, w.HeadNode); err != nil {
		return err
	}
	for i := range w.Nodes {
		n := &w.Nodes[i]
		if n.Plane < 0 || n.Plane >= len(w.Planes) {
			return fmt.Errorf("%w: node %d plane %d out of range", mesh.ErrContentIntegrity, i, n.Plane)
		}
		for _, c := range n.Children {
			if err := checkChild(i, c); err != nil {
				return err
			}
		}
	}
	numClusters := 0
	if w.PVS != nil {
		numClusters = w.PVS.NumClusters
	}
	for i := range w.Leafs {
		l := &w.Leafs[i]
		if l.Cluster >= numClusters || l.Cluster < -1 {
			return fmt.Errorf("%w: leaf %d cluster %d out of range", mesh.ErrContentIntegrity, i, l.Cluster)
		}
		for _, b := range l.Brushes {
			if b < 0 || b >= len(w.Brushes) {
				return fmt.Errorf("%w: leaf %d brush %d out of range", mesh.ErrContentIntegrity, i, b)
			}
		}
	}
	return nil
}
