package alias

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-models/pkg/mesh"
	"github.com/Faultbox/midgard-models/pkg/model"
)

const delta = 1e-4

func assertVec(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	for i := 0; i < 3; i++ {
		assert.InDelta(t, want[i], got[i], delta, "component %d of %v", i, got)
	}
}

var (
	bodyTexture = &model.Texture{Name: "body", MaterialFlags: model.MaterialWall}
	headTexture = &model.Texture{Name: "head", MaterialFlags: model.MaterialWall}
)

// morphModel is one triangle in the z=0 plane that rises to z=10 in
// frame 1.
func morphModel(t *testing.T) *model.Model {
	t.Helper()
	b, err := mesh.Allocate(3, 1, mesh.Options{MorphFrames: 2})
	require.NoError(t, err)
	copy(b.Elements, []int32{0, 1, 2})
	base := []mgl32.Vec3{{0, 0, 0}, {10, 0, 0}, {0, 10, 0}}
	copy(b.Vertices, base)
	for f := range b.Morph {
		for i, v := range base {
			b.Morph[f].Vertices[i] = v.Add(mgl32.Vec3{0, 0, float32(10 * f)})
		}
	}
	return &model.Model{
		Name:     "progs/tri.mdl",
		Type:     model.FormatAlias,
		Surfaces: []model.Surface{{Texture: bodyTexture, NumTriangles: 1, NumVertices: 3}},
		Mesh:     b,
		Data:     &Data{SurfaceNames: []string{"body"}},
	}
}

func translate(x, y, z float32) mgl32.Mat4 {
	return mgl32.Translate3D(x, y, z)
}

// skeletalModel has a root bone and a child 10 units above it. Pose 1
// moves the root +10 in x and stretches the child to 20 units.
func skeletalModel(t *testing.T) *model.Model {
	t.Helper()
	b, err := mesh.Allocate(3, 1, mesh.Options{Skeletal: true})
	require.NoError(t, err)
	copy(b.Elements, []int32{0, 1, 2})
	copy(b.Vertices, []mgl32.Vec3{{0, 0, 0}, {0, 0, 10}, {5, 0, 10}})
	copy(b.WeightIndices, [][4]int32{{0}, {1}, {1}})
	copy(b.WeightInfluences, []mgl32.Vec4{{1}, {1}, {1}})

	d := &Data{
		SurfaceNames: []string{"body"},
		Bones:        []Bone{{Name: "root", Parent: -1}, {Name: "child", Parent: 0}},
		NumPoses:     2,
		Poses: []mgl32.Mat4{
			mgl32.Ident4(), translate(0, 0, 10),
			translate(10, 0, 0), translate(0, 0, 20),
		},
		BaseBonePoseInverse: []mgl32.Mat4{mgl32.Ident4(), translate(0, 0, -10)},
	}
	return &model.Model{
		Name:     "models/skel.zym",
		Type:     model.FormatAlias,
		Surfaces: []model.Surface{{Texture: bodyTexture, NumTriangles: 1, NumVertices: 3}},
		Mesh:     b,
		Data:     d,
	}
}

func TestEvaluateMorphBlend(t *testing.T) {
	m := morphModel(t)
	require.NoError(t, Finalize(m, BuildOptions{BuildNormals: true}))
	d := m.Data.(*Data)

	pose := &mesh.Pose{}
	d.Evaluate(m.Mesh, model.FrameBlend{{Frame: 0, Lerp: 0.5}, {Frame: 1, Lerp: 0.5}}, pose)
	require.Len(t, pose.Vertices, 3)
	assertVec(t, mgl32.Vec3{10, 0, 5}, pose.Vertices[1])
	assertVec(t, mgl32.Vec3{0, 0, 1}, pose.Normals[0])

	d.Evaluate(m.Mesh, model.SingleFrame(1), pose)
	assertVec(t, mgl32.Vec3{0, 10, 10}, pose.Vertices[2])

	// Nothing valid in the blend shows the base mesh.
	d.Evaluate(m.Mesh, model.SingleFrame(7), pose)
	assertVec(t, mgl32.Vec3{10, 0, 0}, pose.Vertices[1])
}

func TestEvaluateSkeletal(t *testing.T) {
	m := skeletalModel(t)
	require.NoError(t, Finalize(m, BuildOptions{BuildNormals: true}))
	d := m.Data.(*Data)
	pose := &mesh.Pose{}

	d.Evaluate(m.Mesh, model.SingleFrame(0), pose)
	assertVec(t, mgl32.Vec3{0, 0, 10}, pose.Vertices[1])
	assertVec(t, mgl32.Vec3{5, 0, 10}, pose.Vertices[2])

	d.Evaluate(m.Mesh, model.SingleFrame(1), pose)
	assertVec(t, mgl32.Vec3{10, 0, 0}, pose.Vertices[0])
	assertVec(t, mgl32.Vec3{10, 0, 20}, pose.Vertices[1])
	assertVec(t, mgl32.Vec3{15, 0, 20}, pose.Vertices[2])
	assertVec(t, m.Mesh.Normals[0], pose.Normals[0])

	d.Evaluate(m.Mesh, model.FrameBlend{{Frame: 0, Lerp: 0.5}, {Frame: 1, Lerp: 0.5}}, pose)
	assertVec(t, mgl32.Vec3{5, 0, 0}, pose.Vertices[0])
	assertVec(t, mgl32.Vec3{5, 0, 15}, pose.Vertices[1])

	assert.Equal(t, mgl32.Vec3{0, 0, 10}, m.Mesh.Vertices[1], "source vertices are untouched")
}

func TestFinalizeBounds(t *testing.T) {
	m := morphModel(t)
	require.NoError(t, Finalize(m, BuildOptions{}))
	assert.Equal(t, mgl32.Vec3{0, 0, 0}, m.NormalMins)
	assert.Equal(t, mgl32.Vec3{10, 10, 10}, m.NormalMaxs)
	assert.Equal(t, 2, m.NumFrames)
	assert.Len(t, m.AnimScenes, 2)
	assert.Equal(t, 1, m.NumSkins)
	assert.Equal(t, []int{0}, m.SurfaceList)

	s := skeletalModel(t)
	require.NoError(t, Finalize(s, BuildOptions{}))
	assert.Equal(t, mgl32.Vec3{0, 0, 0}, s.NormalMins)
	assertVec(t, mgl32.Vec3{15, 0, 20}, s.NormalMaxs)
	assert.Equal(t, 2, s.NumFrames)
}

func TestFinalizeRejectsBadData(t *testing.T) {
	m := skeletalModel(t)
	m.Data.(*Data).Bones[0].Parent = 1
	err := Finalize(m, BuildOptions{})
	assert.True(t, errors.Is(err, mesh.ErrContentIntegrity), "got %v", err)

	m = skeletalModel(t)
	m.Mesh.WeightIndices[2][0] = 9
	err = Finalize(m, BuildOptions{})
	assert.True(t, errors.Is(err, mesh.ErrContentIntegrity), "got %v", err)

	m = skeletalModel(t)
	m.Data.(*Data).Poses = m.Data.(*Data).Poses[:3]
	err = Finalize(m, BuildOptions{})
	assert.True(t, errors.Is(err, mesh.ErrContentIntegrity), "got %v", err)

	m = morphModel(t)
	m.Data.(*Data).TagNames = []string{"tag_head"}
	m.Data.(*Data).TagFrames = 2
	err = Finalize(m, BuildOptions{})
	assert.True(t, errors.Is(err, mesh.ErrContentIntegrity), "got %v", err)

	wrong := &model.Model{Type: model.FormatAlias, Data: brushLike{}}
	assert.True(t, errors.Is(Finalize(wrong, BuildOptions{}), ErrNotAlias))
}

type brushLike struct{}

func (brushLike) Format() model.Format { return model.FormatAlias }

func TestTags(t *testing.T) {
	d := &Data{
		TagNames:  []string{"tag_head", "tag_weapon"},
		TagFrames: 2,
		Tags: []mgl32.Mat4{
			translate(0, 0, 0), translate(0, 1, 0),
			translate(1, 0, 0), translate(1, 1, 0),
		},
		OverrideTagNames: [][]string{{"tag_weapon", "tag_head"}},
	}

	got, err := d.GetTagMatrix(1, 1)
	require.NoError(t, err)
	assert.Equal(t, translate(1, 1, 0), got)

	got, err = d.GetTagMatrix(9, 0)
	require.NoError(t, err)
	assert.Equal(t, translate(1, 0, 0), got, "frames clamp to the last")

	_, err = d.GetTagMatrix(0, 2)
	assert.ErrorIs(t, err, ErrTagIndex)

	_, err = (&Data{}).GetTagMatrix(0, 0)
	assert.ErrorIs(t, err, ErrNoTags)

	i, ok := d.GetTagIndexForName(1, "tag_weapon")
	assert.True(t, ok)
	assert.Equal(t, 1, i)

	i, ok = d.GetTagIndexForName(0, "tag_weapon")
	assert.True(t, ok)
	assert.Equal(t, 0, i, "skin 0 reorders its tags")

	_, ok = d.GetTagIndexForName(0, "tag_missing")
	assert.False(t, ok)
}

func TestSkeletalTags(t *testing.T) {
	d := skeletalModel(t).Data.(*Data)

	got, err := d.GetTagMatrix(1, 1)
	require.NoError(t, err)
	assert.Equal(t, mgl32.Vec4{10, 0, 20, 1}, got.Col(3))

	i, ok := d.GetTagIndexForName(0, "child")
	assert.True(t, ok)
	assert.Equal(t, 1, i)

	_, err = d.GetTagMatrix(0, 5)
	assert.ErrorIs(t, err, ErrTagIndex)
}

func TestParseSkinFile(t *testing.T) {
	src := `// red team
replace body skins/body_red

head, skins/head_red
tag_weapon,
tag_head,
`
	sf, err := ParseSkinFile(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, []SkinFileItem{
		{Name: "body", Replacement: "skins/body_red"},
		{Name: "head", Replacement: "skins/head_red"},
	}, sf.Items)
	assert.Equal(t, []string{"tag_weapon", "tag_head"}, sf.Tags)

	repl, ok := sf.Replacement("HEAD")
	assert.True(t, ok)
	assert.Equal(t, "skins/head_red", repl)

	for _, bad := range []string{"garbage", "replace body", ",skins/x"} {
		_, err := ParseSkinFile(strings.NewReader(bad))
		assert.ErrorIs(t, err, ErrSkinSyntax, "input %q", bad)
	}
}

func TestLoadSkinFiles(t *testing.T) {
	fsys := fstest.MapFS{
		"models/player.md3_0.skin": {Data: []byte("body,skins/blue\ntag_weapon,\n")},
		"models/player.md3_1.skin": {Data: []byte("body,skins/red\n")},
		"models/player.md3_3.skin": {Data: []byte("body,skins/gap\n")},
	}
	files, err := LoadSkinFiles(fsys, "models/player.md3")
	require.NoError(t, err)
	require.Len(t, files, 2, "loading stops at the first missing index")

	fsys["models/broken.md3_0.skin"] = &fstest.MapFile{Data: []byte("nonsense")}
	_, err = LoadSkinFiles(fsys, "models/broken.md3")
	assert.ErrorIs(t, err, ErrSkinSyntax)

	none, err := LoadSkinFiles(fsys, "models/none.md3")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestApplySkinFiles(t *testing.T) {
	m := &model.Model{
		Type:     model.FormatAlias,
		Surfaces: []model.Surface{{Texture: bodyTexture}, {Texture: headTexture}},
	}
	d := &Data{SurfaceNames: []string{"body", "head"}}
	m.Data = d

	red := &model.Texture{Name: "skins/body_red", MaterialFlags: model.MaterialWall}
	resolve := func(name string) *model.Texture {
		if name == red.Name {
			return red
		}
		return nil
	}
	files := []*SkinFile{
		{Tags: []string{"tag_head"}},
		{Items: []SkinFileItem{{Name: "body", Replacement: "skins/body_red"}}},
	}
	d.ApplySkinFiles(m, files, resolve)

	assert.Equal(t, 2, m.NumSkins)
	require.Len(t, m.SkinScenes, 2)
	assert.Equal(t, [][]string{{"tag_head"}, nil}, d.OverrideTagNames)

	ent := model.NewEntity(m, mgl32.Ident4())
	ent.Skin = 1
	r := &recordingRenderer{}
	model.Draw(ent, r)
	require.Len(t, r.textures, 2)
	assert.Same(t, red, r.textures[0])
	assert.Same(t, headTexture, r.textures[1], "unnamed surfaces keep their texture")
	assert.Same(t, bodyTexture, m.Surfaces[0].Texture, "the model itself is not modified")
}
