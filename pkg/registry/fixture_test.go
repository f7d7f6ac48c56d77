package registry

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/Faultbox/midgard-models/internal/config"
	"github.com/Faultbox/midgard-models/pkg/mesh"
	"github.com/Faultbox/midgard-models/pkg/model"
	"github.com/Faultbox/midgard-models/pkg/model/alias"
	"github.com/Faultbox/midgard-models/pkg/model/brush"
	"github.com/Faultbox/midgard-models/pkg/model/sprite"
	"github.com/Faultbox/midgard-models/pkg/rtexture"
)

var errBroken = errors.New("broken lump")

// loadTestSprite reads "SPR1" followed by one half-size byte per frame.
func loadTestSprite(ls *LoadSession, data []byte) error {
	d := &sprite.Data{Orientation: sprite.ParallelUpright}
	for _, b := range data[4:] {
		s := float32(b)
		d.Frames = append(d.Frames, sprite.Frame{
			Left: -s, Right: s, Up: s, Down: -s,
			Texture: rtexture.New(ls.Name, int(b)*2, int(b)*2),
		})
	}
	ls.Model.Type = model.FormatSprite
	ls.Model.Data = d
	return nil
}

// loadTestWorld reads "BSPW" followed by the number of submodels.
func loadTestWorld(ls *LoadSession, data []byte) error {
	n := 0
	if len(data) > 4 {
		n = int(data[4])
	}
	w := &brush.World{
		Variant:  brush.VariantQ3,
		Leafs:    []brush.Leaf{{Cluster: -1}},
		HeadNode: brush.LeafChild(0),
	}
	ls.Model.Type = model.FormatBrushQ3
	ls.Model.Data = w
	for i := 1; i <= n; i++ {
		sub := &model.Model{
			Type: model.FormatBrushQ3,
			Data: w.SubmodelCopy(i, brush.LeafChild(0), [brush.MaxHulls]int32{}),
		}
		if err := ls.AddSubmodel(sub); err != nil {
			return err
		}
	}
	return nil
}

// loadTestAlias builds one static triangle named "body" and applies the
// model's skin files.
func loadTestAlias(ls *LoadSession, data []byte) error {
	b, err := mesh.Allocate(3, 1, mesh.Options{MorphFrames: 1})
	if err != nil {
		return err
	}
	copy(b.Elements, []int32{0, 1, 2})
	copy(b.Morph[0].Vertices, []mgl32.Vec3{{0, 0, 0}, {8, 0, 0}, {0, 8, 0}})
	copy(b.Vertices, b.Morph[0].Vertices)

	d := &alias.Data{SurfaceNames: []string{"body"}}
	m := ls.Model
	m.Type = model.FormatAlias
	m.Data = d
	m.Mesh = b
	m.Surfaces = []model.Surface{{
		Texture:      &model.Texture{Name: "body", MaterialFlags: model.MaterialWall},
		NumTriangles: 1,
		NumVertices:  3,
	}}

	files, err := ls.SkinFiles()
	if err != nil {
		return err
	}
	d.ApplySkinFiles(m, files, func(name string) *model.Texture {
		return &model.Texture{Name: name, MaterialFlags: model.MaterialWall}
	})
	return nil
}

func loadBroken(*LoadSession, []byte) error {
	return errBroken
}

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"progs/flame.spr":         {Data: []byte("SPR1\x08\x10")},
		"progs/s_light.spr":       {Data: []byte("SPR1\x04")},
		"progs/player.mdx":        {Data: []byte("MDLX")},
		"progs/player.mdx_0.skin": {Data: []byte("body,skins/blue\n")},
		"progs/player.mdx_1.skin": {Data: []byte("body,skins/red\n")},
		"maps/e1m1.bsp":           {Data: []byte("BSPW\x02")},
		"maps/e1m2.bsp":           {Data: []byte("BSPW\x01")},
		"progs/broken.mdl":        {Data: []byte("FAIL")},
		"progs/garbage.bin":       {Data: []byte("????")},
	}
}

func newTestRegistry(t *testing.T, fsys fstest.MapFS, log *zap.Logger) *Registry {
	t.Helper()
	if log == nil {
		log = zaptest.NewLogger(t)
	}
	opts := OptionsFromConfig(config.Default(), fsys)
	opts.Logger = log
	r := New(opts)
	r.RegisterLoader("sprite", []byte("SPR1"), loadTestSprite)
	r.RegisterLoader("world", []byte("BSPW"), loadTestWorld)
	r.RegisterLoader("alias", []byte("MDLX"), loadTestAlias)
	r.RegisterLoader("broken", []byte("FAIL"), loadBroken)
	require.Equal(t, 0, r.Len())
	return r
}
