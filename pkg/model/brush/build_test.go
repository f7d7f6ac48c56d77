package brush

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/midgard-models/pkg/mesh"
	"github.com/Faultbox/midgard-models/pkg/model"
)

type spriteLike struct{}

func (spriteLike) Format() model.Format { return model.FormatSprite }

func TestFinalizeRoom(t *testing.T) {
	m := roomModel(t)
	w := m.Data.(*World)
	sub := &model.Model{
		Name:              "*1",
		Type:              model.FormatBrushQ3,
		FirstModelSurface: 1,
		NumModelSurfaces:  1,
		Surfaces:          m.Surfaces,
		Mesh:              m.Mesh,
		Data:              w.SubmodelCopy(1, LeafChild(0), [MaxHulls]int32{}),
	}
	w.Submodels = []*model.Model{sub}

	require.NoError(t, Finalize(m, BuildOptions{BuildNormals: true, Neighbors: true}))

	for i := 0; i < 4; i++ {
		assertVec(t, mgl32.Vec3{0, 0, 1}, m.Mesh.Normals[i])
	}
	assert.Equal(t, int32(1), m.Mesh.Neighbors[1])
	assert.Equal(t, int32(0), m.Mesh.Neighbors[3])
	require.NoError(t, m.Mesh.Validate())

	require.NotNil(t, w.ShadowMesh)
	assert.Equal(t, 2, w.ShadowMesh.NumTriangles())
	assert.Equal(t, 4, w.ShadowMesh.NumVertices())
	assert.Equal(t, 0, m.Surfaces[0].FirstShadowMeshTriangle)
	assert.Equal(t, -1, m.Surfaces[1].FirstShadowMeshTriangle, "sky casts no shadow")

	assert.Equal(t, []int{0, 1}, m.SurfaceList)
	assert.Equal(t, mgl32.Vec3{0, 0, 0}, m.NormalMins)
	assert.Equal(t, mgl32.Vec3{64, 64, 128}, m.NormalMaxs)
	assert.Greater(t, m.Radius, float32(0))

	sw := sub.Data.(*World)
	assert.Same(t, w.ShadowMesh, sw.ShadowMesh, "submodels share the world shadow mesh")
	assert.Equal(t, []int{1}, sub.SurfaceList)
	assert.Equal(t, mgl32.Vec3{0, 0, 128}, sub.NormalMins)
	assert.Equal(t, mgl32.Vec3{64, 64, 128}, sub.NormalMaxs)
}

func TestFinalizeQ1BuildsHull0AndWarns(t *testing.T) {
	m := corridorModel()
	w := m.Data.(*World)
	w.Hulls[0] = Hull{}
	w.PVS.Rows[2] &^= 1 << 2

	core, logs := observer.New(zap.DebugLevel)
	require.NoError(t, Finalize(m, BuildOptions{Logger: zap.New(core)}))

	assert.False(t, w.Hulls[0].Empty())
	assert.Len(t, w.Hulls[0].ClipNodes, len(w.Nodes))

	warnings := logs.FilterMessage("Cluster does not see itself").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, int64(2), warnings[0].ContextMap()["cluster"])
	assert.Equal(t, "maps/corridor.bsp", warnings[0].ContextMap()["model"])

	// No surfaces: bounds come from the root node.
	assert.Equal(t, worldMin, m.NormalMins)
	assert.Equal(t, worldMax, m.NormalMaxs)
}

func TestFinalizeSnapsAndCleansCollision(t *testing.T) {
	m := roomModel(t)
	m.Mesh.Vertices[3] = mgl32.Vec3{64.01, 63.99, 0}
	m.Surfaces[0].CollisionVertices = []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}, {0, 1, 0}}
	m.Surfaces[0].CollisionElements = []int32{0, 1, 2, 0, 1, 3}

	require.NoError(t, Finalize(m, BuildOptions{SnapGrid: 0.5, RemoveDegenerate: true}))
	assert.Equal(t, mgl32.Vec3{64, 64, 0}, m.Mesh.Vertices[3])
	assert.Equal(t, []int32{0, 1, 3}, m.Surfaces[0].CollisionElements, "the collinear triangle is dropped")
}

func TestFinalizeRejectsBadInput(t *testing.T) {
	notBrush := &model.Model{Name: "s.spr", Type: model.FormatSprite, Data: spriteLike{}}
	err := Finalize(notBrush, BuildOptions{})
	assert.True(t, errors.Is(err, ErrNotBrush), "got %v", err)

	m := roomModel(t)
	m.Surfaces[1].NumTriangles = 5
	err = Finalize(m, BuildOptions{})
	assert.True(t, errors.Is(err, mesh.ErrContentIntegrity), "got %v", err)

	m = corridorModel()
	m.Data.(*World).Nodes[0].Plane = 9
	err = Finalize(m, BuildOptions{})
	assert.True(t, errors.Is(err, mesh.ErrContentIntegrity), "got %v", err)
}
