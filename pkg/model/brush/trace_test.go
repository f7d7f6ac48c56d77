package brush

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-models/pkg/model"
)

const delta = 1e-3

func assertVec(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	for i := 0; i < 3; i++ {
		assert.InDelta(t, want[i], got[i], delta, "component %d of %v", i, got)
	}
}

func TestHullTraceStopsAtSolid(t *testing.T) {
	m := corridorModel()
	w := m.Data.(*World)

	tr := w.TraceBox(m, 0, mgl32.Vec3{-32, 0, 0}, mgl32.Vec3{}, mgl32.Vec3{}, mgl32.Vec3{200, 0, 0}, model.SuperContentsSolid)
	require.True(t, tr.Hit())
	assert.False(t, tr.StartSolid)
	assert.False(t, tr.AllSolid)
	assert.InDelta(t, 127.96875, tr.EndPos[0], delta)
	assertVec(t, mgl32.Vec3{-1, 0, 0}, tr.Plane.Normal)
	assert.Equal(t, model.SuperContentsSolid, tr.HitSuperContents)
	assert.True(t, tr.InWater, "the sweep crossed the water leaf")
}

func TestHullTraceOpen(t *testing.T) {
	w := corridorWorld()
	end := mgl32.Vec3{100, 0, 0}
	tr := w.TraceBox(nil, 0, mgl32.Vec3{-32, 0, 0}, mgl32.Vec3{}, mgl32.Vec3{}, end, model.SuperContentsSolid)
	assert.Equal(t, float32(1), tr.Fraction)
	assert.Equal(t, end, tr.EndPos)
	assert.False(t, tr.Hit())
}

func TestHullTraceStartSolid(t *testing.T) {
	w := corridorWorld()
	start := mgl32.Vec3{200, 0, 0}
	tr := w.TraceBox(nil, 0, start, mgl32.Vec3{}, mgl32.Vec3{}, mgl32.Vec3{300, 0, 0}, model.SuperContentsSolid)
	assert.True(t, tr.StartSolid)
	assert.True(t, tr.AllSolid)
	assert.Equal(t, float32(0), tr.Fraction)
	assert.Equal(t, start, tr.EndPos)
	assert.Equal(t, model.SuperContentsSolid, tr.StartSuperContents)
}

func TestHullTraceIgnoresSolidOutsideMask(t *testing.T) {
	w := corridorWorld()
	end := mgl32.Vec3{200, 0, 0}
	tr := w.TraceBox(nil, 0, mgl32.Vec3{-32, 0, 0}, mgl32.Vec3{}, mgl32.Vec3{}, end, model.SuperContentsWater)
	assert.Equal(t, float32(1), tr.Fraction)
	assert.Equal(t, end, tr.EndPos)
}

func TestBrushTracePoint(t *testing.T) {
	w := blockWorld()
	tr := w.TraceBox(nil, 0, mgl32.Vec3{}, mgl32.Vec3{}, mgl32.Vec3{}, mgl32.Vec3{200, 0, 0}, model.SuperContentsSolid)
	require.True(t, tr.Hit())
	assert.InDelta(t, (64-impactNudge)/200, tr.Fraction, 1e-5)
	assert.InDelta(t, 63.96875, tr.EndPos[0], delta)
	assertVec(t, mgl32.Vec3{-1, 0, 0}, tr.Plane.Normal)
	assert.True(t, tr.InOpen)
}

func TestBrushTraceBox(t *testing.T) {
	w := blockWorld()
	r := mgl32.Vec3{16, 16, 16}
	tr := w.TraceBox(nil, 0, mgl32.Vec3{}, r.Mul(-1), r, mgl32.Vec3{200, 0, 0}, model.SuperContentsSolid)
	require.True(t, tr.Hit())
	assert.InDelta(t, 47.96875, tr.EndPos[0], delta, "box face stops in front of the brush")
}

func TestBrushTraceMissesBeside(t *testing.T) {
	w := blockWorld()
	end := mgl32.Vec3{200, 100, 0}
	tr := w.TraceBox(nil, 0, mgl32.Vec3{0, 100, 0}, mgl32.Vec3{}, mgl32.Vec3{}, end, model.SuperContentsSolid)
	assert.False(t, tr.Hit())
	assert.Equal(t, end, tr.EndPos)
}

func TestBrushTraceStartInside(t *testing.T) {
	w := blockWorld()
	tr := w.TraceBox(nil, 0, mgl32.Vec3{96, 0, 0}, mgl32.Vec3{}, mgl32.Vec3{}, mgl32.Vec3{300, 0, 0}, model.SuperContentsSolid)
	assert.True(t, tr.StartSolid)
	assert.False(t, tr.AllSolid, "the sweep leaves the brush")

	tr = w.TraceBox(nil, 0, mgl32.Vec3{96, 0, 0}, mgl32.Vec3{}, mgl32.Vec3{}, mgl32.Vec3{100, 0, 0}, model.SuperContentsSolid)
	assert.True(t, tr.AllSolid)
	assert.Equal(t, float32(0), tr.Fraction)
	assert.Equal(t, mgl32.Vec3{96, 0, 0}, tr.EndPos)
}

func TestBrushTraceContentsMask(t *testing.T) {
	w := blockWorld()
	tr := w.TraceBox(nil, 0, mgl32.Vec3{}, mgl32.Vec3{}, mgl32.Vec3{}, mgl32.Vec3{200, 0, 0}, model.SuperContentsWater)
	assert.False(t, tr.Hit())
}

func TestCollisionMeshTrace(t *testing.T) {
	w := &World{
		Variant:  VariantQ3,
		HeadNode: LeafChild(0),
		Leafs:    []Leaf{{Cluster: -1, Mins: worldMin, Maxs: worldMax, Surfaces: []int{0}}},
	}
	m := &model.Model{
		Type: model.FormatBrushQ3,
		Surfaces: []model.Surface{{
			Texture:           wallTexture,
			Mins:              mgl32.Vec3{32, -100, -100},
			Maxs:              mgl32.Vec3{32, 100, 100},
			CollisionVertices: []mgl32.Vec3{{32, -100, -100}, {32, -100, 100}, {32, 100, -100}},
			CollisionElements: []int32{0, 1, 2},
		}},
		Data: w,
	}

	tr := w.TraceBox(m, 0, mgl32.Vec3{0, -10, -10}, mgl32.Vec3{}, mgl32.Vec3{}, mgl32.Vec3{100, -10, -10}, model.SuperContentsSolid)
	require.True(t, tr.Hit())
	assert.InDelta(t, 31.96875, tr.EndPos[0], delta)
	assertVec(t, mgl32.Vec3{-1, 0, 0}, tr.Plane.Normal)
	assert.Same(t, wallTexture, tr.HitTexture)

	// Outside the triangle's hypotenuse.
	tr = w.TraceBox(m, 0, mgl32.Vec3{0, 50, 50}, mgl32.Vec3{}, mgl32.Vec3{}, mgl32.Vec3{100, 50, 50}, model.SuperContentsSolid)
	assert.False(t, tr.Hit())
}

func TestSubmodelTraceUsesOwnBrushes(t *testing.T) {
	w := blockWorld()
	w.Brushes = append(w.Brushes, boxBrush(mgl32.Vec3{300, -8, -8}, mgl32.Vec3{310, 8, 8}, model.SuperContentsSolid))
	sub := w.SubmodelCopy(1, LeafChild(0), [MaxHulls]int32{})
	m := &model.Model{Name: "*1", Type: model.FormatBrushQ3, FirstModelBrush: 1, NumModelBrushes: 1, Data: sub}

	tr := sub.TraceBox(m, 0, mgl32.Vec3{}, mgl32.Vec3{}, mgl32.Vec3{}, mgl32.Vec3{400, 0, 0}, model.SuperContentsSolid)
	require.True(t, tr.Hit())
	assert.InDelta(t, 299.96875, tr.EndPos[0], delta, "the world block is not part of the submodel")
}

func TestFindNonSolidLocation(t *testing.T) {
	w := corridorWorld()
	free := mgl32.Vec3{32, 0, 0}
	assert.Equal(t, free, w.FindNonSolidLocation(free, 0))

	got := w.FindNonSolidLocation(mgl32.Vec3{130, 0, 0}, 0)
	assert.Equal(t, mgl32.Vec3{127, 0, 0}, got)

	deep := mgl32.Vec3{900, 0, 0}
	assert.Equal(t, deep, w.FindNonSolidLocation(deep, 0), "nothing free nearby returns the input")
}

func TestRoundUpToHullSize(t *testing.T) {
	mins, maxs := mgl32.Vec3{-10, -10, -10}, mgl32.Vec3{10, 10, 10}

	q1 := corridorWorld()
	gotMins, gotMaxs := q1.RoundUpToHullSize(mins, maxs)
	assert.Equal(t, mins, gotMins)
	assert.Equal(t, mgl32.Vec3{22, 22, 46}, gotMaxs)

	q1.HalfLife = true
	_, gotMaxs = q1.RoundUpToHullSize(mins, maxs)
	assert.Equal(t, mgl32.Vec3{22, 22, 26}, gotMaxs, "short boxes use the crouch hull")

	gotMins, gotMaxs = q1.RoundUpToHullSize(mgl32.Vec3{}, mgl32.Vec3{1, 1, 1})
	assert.Equal(t, mgl32.Vec3{}, gotMins)
	assert.Equal(t, mgl32.Vec3{}, gotMaxs, "point boxes use hull 0")

	q3 := blockWorld()
	gotMins, gotMaxs = q3.RoundUpToHullSize(mins, maxs)
	assert.Equal(t, mins, gotMins)
	assert.Equal(t, maxs, gotMaxs)
}

func TestContentsMapping(t *testing.T) {
	q1 := corridorWorld()
	tests := []struct {
		native int
		super  int
	}{
		{ContentsEmpty, 0},
		{ContentsSolid, model.SuperContentsSolid},
		{ContentsWater, model.SuperContentsWater},
		{ContentsSlime, model.SuperContentsSlime},
		{ContentsLava, model.SuperContentsLava | model.SuperContentsNoDrop},
		{ContentsSky, model.SuperContentsSky | model.SuperContentsNoDrop},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.super, q1.SuperContentsFromNative(tt.native), "native %d", tt.native)
		assert.Equal(t, tt.native, q1.NativeFromSuperContents(tt.super), "super %#x", tt.super)
	}
	assert.Equal(t, model.SuperContentsWater, q1.SuperContentsFromNative(ContentsCurrentDown))

	q3 := blockWorld()
	native := Q3ContentsWater | Q3ContentsPlayerClip
	super := q3.SuperContentsFromNative(native)
	assert.Equal(t, model.SuperContentsWater|model.SuperContentsPlayerClip, super)
	assert.Equal(t, native, q3.NativeFromSuperContents(super))

	m := &model.Model{Type: model.FormatBrushQ3, Data: q3}
	assert.Equal(t, model.SuperContentsSolid, model.SuperContentsFromNative(m, Q3ContentsSolid))
}
