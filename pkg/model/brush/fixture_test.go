package brush

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"

	rmath "github.com/Faultbox/midgard-models/pkg/math"
	"github.com/Faultbox/midgard-models/pkg/mesh"
	"github.com/Faultbox/midgard-models/pkg/model"
	"github.com/Faultbox/midgard-models/pkg/pvs"
)

var (
	big      = float32(1000)
	worldMin = mgl32.Vec3{-big, -big, -big}
	worldMax = mgl32.Vec3{big, big, big}
)

func xPlane(d float32) rmath.Plane {
	return rmath.NewPlane(mgl32.Vec3{1, 0, 0}, d)
}

// corridorWorld is a Q1 map split by the planes x=0, x=64 and x=128:
//
//	leaf1 (x<0, cluster 0) | leaf2 (cluster 1) | leaf3 (cluster 2) | leaf0 (x>=128, solid)
//
// Cluster 0 sees {0,1}, cluster 1 sees everything, cluster 2 sees {1,2}.
func corridorWorld() *World {
	vis := pvs.New(3)
	for _, p := range [][2]int{{0, 0}, {0, 1}, {1, 0}, {1, 1}, {1, 2}, {2, 1}, {2, 2}} {
		vis.Set(p[0], p[1])
	}
	w := &World{
		Variant: VariantQ1,
		Planes:  []rmath.Plane{xPlane(0), xPlane(64), xPlane(128)},
		Nodes: []Node{
			{Plane: 0, Children: [2]int32{1, LeafChild(1)}, Mins: worldMin, Maxs: worldMax},
			{Plane: 1, Children: [2]int32{2, LeafChild(2)}, Mins: mgl32.Vec3{0, -big, -big}, Maxs: worldMax},
			{Plane: 2, Children: [2]int32{LeafChild(0), LeafChild(3)}, Mins: mgl32.Vec3{64, -big, -big}, Maxs: worldMax},
		},
		Leafs: []Leaf{
			{Contents: ContentsSolid, Cluster: -1, Mins: mgl32.Vec3{128, -big, -big}, Maxs: worldMax},
			{Contents: ContentsEmpty, Cluster: 0, Mins: worldMin, Maxs: mgl32.Vec3{0, big, big},
				AmbientSoundLevel: [NumAmbients]uint8{10, 20, 30, 40}},
			{Contents: ContentsEmpty, Cluster: 1, Mins: mgl32.Vec3{0, -big, -big}, Maxs: mgl32.Vec3{64, big, big}},
			{Contents: ContentsWater, Cluster: 2, Mins: mgl32.Vec3{64, -big, -big}, Maxs: mgl32.Vec3{128, big, big}},
		},
		HeadNode: 0,
		PVS:      vis,
	}
	w.MakeHull0()
	return w
}

func corridorModel() *model.Model {
	w := corridorWorld()
	return &model.Model{Name: "maps/corridor.bsp", Type: model.FormatBrushQ1, IsWorldModel: true, Data: w}
}

// boxBrush returns an axial box brush.
func boxBrush(mins, maxs mgl32.Vec3, contents int) Brush {
	b := Brush{SuperContents: contents, Mins: mins, Maxs: maxs}
	for axis := 0; axis < 3; axis++ {
		var n mgl32.Vec3
		n[axis] = 1
		b.Sides = append(b.Sides,
			BrushSide{Plane: rmath.NewPlane(n, maxs[axis])},
			BrushSide{Plane: rmath.NewPlane(n.Mul(-1), -mins[axis])},
		)
	}
	return b
}

// blockWorld is a single-leaf Q3 map holding a solid block from x=64 to
// x=128 that spans ±64 in y and z.
func blockWorld() *World {
	return &World{
		Variant:  VariantQ3,
		HeadNode: LeafChild(0),
		Leafs: []Leaf{
			{Cluster: -1, Mins: worldMin, Maxs: worldMax, Brushes: []int{0}},
		},
		Brushes: []Brush{
			boxBrush(mgl32.Vec3{64, -64, -64}, mgl32.Vec3{128, 64, 64}, model.SuperContentsSolid),
		},
	}
}

var (
	wallTexture = &model.Texture{Name: "base_wall", MaterialFlags: model.MaterialWall}
	skyTexture  = &model.Texture{Name: "sky1", MaterialFlags: model.MaterialSky}
)

// roomModel is a Q3 world with a 64x64 floor quad facing +z at z=0 and a
// sky triangle at z=128, both in one leaf.
func roomModel(t *testing.T) *model.Model {
	t.Helper()
	b, err := mesh.Allocate(7, 3, mesh.Options{Neighbors: true})
	require.NoError(t, err)
	copy(b.Vertices, []mgl32.Vec3{
		{0, 0, 0}, {64, 0, 0}, {0, 64, 0}, {64, 64, 0},
		{0, 0, 128}, {64, 0, 128}, {0, 64, 128},
	})
	copy(b.Elements, []int32{0, 1, 2, 2, 1, 3, 4, 5, 6})

	w := &World{
		Variant:  VariantQ3,
		HeadNode: LeafChild(0),
		Leafs:    []Leaf{{Cluster: -1, Mins: worldMin, Maxs: worldMax, Surfaces: []int{0, 1}}},
	}
	return &model.Model{
		Name:             "maps/room.bsp",
		Type:             model.FormatBrushQ3,
		IsWorldModel:     true,
		NumModelSurfaces: 2,
		Surfaces: []model.Surface{
			{Texture: wallTexture, FirstTriangle: 0, NumTriangles: 2, FirstVertex: 0, NumVertices: 4},
			{Texture: skyTexture, FirstTriangle: 2, NumTriangles: 1, FirstVertex: 4, NumVertices: 3},
		},
		Mesh: b,
		Data: w,
	}
}

// recordingRenderer records every backend call.
type recordingRenderer struct {
	surfaces []*model.Surface
	sky      []*model.Surface
	lit      []*model.Surface
	batches  []model.ShadowBatch
	sprites  []model.SpriteQuad
}

func (r *recordingRenderer) DrawSurface(_ *model.Entity, s *model.Surface, _ *mesh.Pose) {
	r.surfaces = append(r.surfaces, s)
}

func (r *recordingRenderer) DrawSkySurface(_ *model.Entity, s *model.Surface) {
	r.sky = append(r.sky, s)
}

func (r *recordingRenderer) DrawLitSurface(_ *model.Entity, s *model.Surface, _ *mesh.Pose) {
	r.lit = append(r.lit, s)
}

func (r *recordingRenderer) DrawShadowTriangles(_ *model.Entity, b model.ShadowBatch) {
	r.batches = append(r.batches, b)
}

func (r *recordingRenderer) DrawSprite(_ *model.Entity, q model.SpriteQuad) {
	r.sprites = append(r.sprites, q)
}
