package brush

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"

	rmath "github.com/Faultbox/midgard-models/pkg/math"
	"github.com/Faultbox/midgard-models/pkg/model"
)

func twoCellGrid() *LightGrid {
	return &LightGrid{
		CellSize: mgl32.Vec3{64, 64, 128},
		Dims:     [3]int{2, 1, 1},
		Cells: []LightGridCell{
			{Ambient: [3]uint8{128, 0, 0}, Diffuse: [3]uint8{64, 64, 64}},
			{Ambient: [3]uint8{0, 128, 0}},
		},
	}
}

func TestLightGridSample(t *testing.T) {
	g := twoCellGrid()

	mid := g.Sample(mgl32.Vec3{32, 0, 0})
	assertVec(t, mgl32.Vec3{0.5, 0.5, 0}, mid.Ambient)
	assertVec(t, mgl32.Vec3{0.25, 0.25, 0.25}, mid.Diffuse)
	assertVec(t, mgl32.Vec3{0, 0, 1}, mid.DiffuseNormal)

	assertVec(t, mgl32.Vec3{1, 0, 0}, g.Sample(mgl32.Vec3{-500, 0, 0}).Ambient)
	assertVec(t, mgl32.Vec3{0, 1, 0}, g.Sample(mgl32.Vec3{500, 0, 0}).Ambient)
}

func TestLightGridDirection(t *testing.T) {
	g := &LightGrid{
		CellSize: mgl32.Vec3{64, 64, 128},
		Dims:     [3]int{1, 1, 1},
		Cells:    []LightGridCell{{Diffuse: [3]uint8{128, 128, 128}, Pitch: 64, Yaw: 64}},
	}
	s := g.Sample(mgl32.Vec3{})
	assertVec(t, mgl32.Vec3{0, 1, 0}, s.DiffuseNormal)
}

func TestLightGridTooFewCells(t *testing.T) {
	g := twoCellGrid()
	g.Cells = g.Cells[:1]
	assert.Equal(t, model.LightSample{}, g.Sample(mgl32.Vec3{}))
}

func TestLightPointQ3(t *testing.T) {
	w := blockWorld()
	w.LightGrid = twoCellGrid()
	m := &model.Model{Type: model.FormatBrushQ3, Data: w}

	got := model.LightPoint(m, mgl32.Vec3{-500, 0, 0})
	assertVec(t, mgl32.Vec3{1, 0, 0}, got.Ambient)
}

// floorModel is a Q1 world split at z=0 with a lit floor surface on the
// node plane.
func floorModel(style uint8, value float32) *model.Model {
	samples := make([]byte, 3*3*3)
	for i := range samples {
		samples[i] = 255
	}
	lm := &model.LightmapInfo{
		TexInfo: &model.TexInfo{Vecs: [2]mgl32.Vec4{{1, 0, 0, 0}, {0, 1, 0, 0}}},
		Styles:  [model.MaxLightmaps]uint8{style, model.StyleUnused, model.StyleUnused, model.StyleUnused},
		Samples: samples,
		Extents: [2]int{32, 32},
	}
	w := &World{
		Variant: VariantQ1,
		Planes:  []rmath.Plane{rmath.NewPlane(mgl32.Vec3{0, 0, 1}, 0)},
		Nodes: []Node{{
			Plane: 0, Children: [2]int32{LeafChild(1), LeafChild(0)},
			Mins: worldMin, Maxs: worldMax,
			FirstSurface: 0, NumSurfaces: 1,
		}},
		Leafs: []Leaf{
			{Contents: ContentsSolid, Cluster: -1},
			{Contents: ContentsEmpty, Cluster: -1},
		},
		StyleValue: func(s int) float32 {
			if s == int(style) {
				return value
			}
			return 1
		},
	}
	return &model.Model{
		Type:     model.FormatBrushQ1,
		Surfaces: []model.Surface{{Texture: wallTexture, Lightmap: lm}},
		Data:     w,
	}
}

func TestLightPointQ1Lightmap(t *testing.T) {
	m := floorModel(0, 1)
	got := model.LightPoint(m, mgl32.Vec3{8, 8, 10})
	assertVec(t, mgl32.Vec3{1, 1, 1}, got.Ambient)
	assert.Equal(t, mgl32.Vec3{0, 0, 1}, got.DiffuseNormal)

	m = floorModel(5, 0.5)
	got = model.LightPoint(m, mgl32.Vec3{8, 8, 10})
	assertVec(t, mgl32.Vec3{0.5, 0.5, 0.5}, got.Ambient)
}

func TestLightPointQ1OutsideLightmap(t *testing.T) {
	m := floorModel(0, 1)
	got := model.LightPoint(m, mgl32.Vec3{100, 8, 10})
	assert.Equal(t, mgl32.Vec3{}, got.Ambient)

	got = model.LightPoint(m, mgl32.Vec3{8, 8, -10})
	assert.Equal(t, mgl32.Vec3{}, got.Ambient, "below the floor nothing is crossed")
}
