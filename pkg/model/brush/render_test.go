package brush

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-models/pkg/model"
)

func finalizedRoom(t *testing.T) *model.Model {
	t.Helper()
	m := roomModel(t)
	require.NoError(t, Finalize(m, BuildOptions{BuildNormals: true, Neighbors: true}))
	return m
}

func TestDrawSkipsSkyAndNoDraw(t *testing.T) {
	m := finalizedRoom(t)
	ent := model.NewEntity(m, mgl32.Ident4())
	r := &recordingRenderer{}

	model.Draw(ent, r)
	require.Len(t, r.surfaces, 1)
	assert.Same(t, &m.Surfaces[0], r.surfaces[0])

	model.DrawSky(ent, r)
	require.Len(t, r.sky, 1)
	assert.Same(t, &m.Surfaces[1], r.sky[0])

	m.Surfaces[0].Texture = &model.Texture{MaterialFlags: model.MaterialWall | model.MaterialNoDraw}
	r = &recordingRenderer{}
	model.Draw(ent, r)
	assert.Empty(t, r.surfaces)
}

func TestGetLightInfo(t *testing.T) {
	m := finalizedRoom(t)
	ent := model.NewEntity(m, mgl32.Ident4())
	info := &model.LightInfo{}

	origin := mgl32.Vec3{32, 32, 50}
	model.GetLightInfo(ent, origin, 100, info)
	assert.Equal(t, []int{0}, info.Leafs)
	assert.Equal(t, []int{0}, info.Surfaces, "the sky faces away from the light")
	assert.True(t, info.SurfacePVS.Test(0))
	assert.False(t, info.SurfacePVS.Test(1))
	assertVec(t, mgl32.Vec3{0, 0, 0}, info.Mins)
	assertVec(t, mgl32.Vec3{64, 64, 50}, info.Maxs)

	// Reuse: a small light above the floor touches nothing.
	model.GetLightInfo(ent, origin, 10, info)
	assert.Empty(t, info.Surfaces)
	assert.Equal(t, origin, info.Mins)
	assert.Equal(t, origin, info.Maxs)
}

func TestCompileShadowVolume(t *testing.T) {
	room := roomModel(t)
	ent := model.NewEntity(room, mgl32.Ident4())
	sm, err := model.CompileShadowVolume(ent, mgl32.Vec3{32, 32, 50}, 100, []int{0})
	require.NoError(t, err)
	assert.Nil(t, sm, "no shadow mesh before finalization")

	m := finalizedRoom(t)
	ent = model.NewEntity(m, mgl32.Ident4())

	sm, err = model.CompileShadowVolume(ent, mgl32.Vec3{32, 32, 50}, 100, []int{0, 1})
	require.NoError(t, err)
	require.NotNil(t, sm)
	assert.True(t, sm.Finished())
	assert.Equal(t, 2, sm.NumTriangles())
	assert.Equal(t, 4, sm.NumVertices(), "shared corners are welded")
	require.NotNil(t, sm.Segments[0].Neighbors)

	sm, err = model.CompileShadowVolume(ent, mgl32.Vec3{32, 32, -50}, 100, []int{0, 1})
	require.NoError(t, err)
	assert.Equal(t, 0, sm.NumTriangles(), "back faces cast nothing")
}

func TestDrawShadowVolume(t *testing.T) {
	m := finalizedRoom(t)
	ent := model.NewEntity(m, mgl32.Ident4())
	r := &recordingRenderer{}

	origin := mgl32.Vec3{32, 32, 50}
	lightMins, lightMaxs := mgl32.Vec3{-68, -68, -50}, mgl32.Vec3{132, 132, 150}
	model.DrawShadowVolume(ent, r, origin, 100, []int{0, 1}, lightMins, lightMaxs)

	require.Len(t, r.batches, 1, "the sky casts no shadow")
	b := r.batches[0]
	assert.Len(t, b.Elements, 6)
	assert.Len(t, b.Neighbors, 6)
	assert.Equal(t, float32(100), b.LightRadius)
	assert.Equal(t, origin, b.LightOrigin)

	r = &recordingRenderer{}
	model.DrawShadowVolume(ent, r, origin, 100, []int{0}, mgl32.Vec3{500, 500, 500}, mgl32.Vec3{600, 600, 600})
	assert.Empty(t, r.batches)
}

func TestDrawLight(t *testing.T) {
	m := finalizedRoom(t)
	ent := model.NewEntity(m, mgl32.Ident4())
	r := &recordingRenderer{}
	model.DrawLight(ent, r, []int{0, 1})
	require.Len(t, r.lit, 1)
	assert.Same(t, &m.Surfaces[0], r.lit[0])
}

func TestRenderSlotsPresent(t *testing.T) {
	m := roomModel(t)
	for _, s := range []model.Slot{
		model.SlotDrawSky, model.SlotDraw, model.SlotGetLightInfo,
		model.SlotCompileShadowVolume, model.SlotDrawShadowVolume, model.SlotDrawLight,
	} {
		assert.True(t, m.Supports(s), "slot %s", s)
	}
}
