package model

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/midgard-models/pkg/shadowmesh"
)

// Capability interfaces. A format's sub-record implements the ones it
// supports; consumers resolve them with Capability.

// ContentsMapper converts between native and super contents.
type ContentsMapper interface {
	SuperContentsFromNative(native int) int
	NativeFromSuperContents(super int) int
}

// PVSGetter returns the visibility row for the cluster containing p, or
// nil when p is outside every cluster.
type PVSGetter interface {
	GetPVS(p mgl32.Vec3) []byte
}

// FatPVSer ORs the rows of every cluster within radius of org into buf.
// It returns the row size and false, without writing, when buf is
// shorter than one row.
type FatPVSer interface {
	FatPVS(org mgl32.Vec3, radius float32, buf []byte) (int, bool)
}

// BoxPVSTester reports whether any cluster set in pvs overlaps the box.
type BoxPVSTester interface {
	BoxTouchingPVS(pvs []byte, mins, maxs mgl32.Vec3) bool
}

// BoxLeafPVSTester is BoxPVSTester with pvs indexed by leaf instead of cluster.
type BoxLeafPVSTester interface {
	BoxTouchingLeafPVS(pvs []byte, mins, maxs mgl32.Vec3) bool
}

// BoxVisibleLeafsTester tests against a per-leaf visible flag array.
type BoxVisibleLeafsTester interface {
	BoxTouchingVisibleLeafs(visible []byte, mins, maxs mgl32.Vec3) bool
}

// BoxClusterFinder lists the clusters a box touches, up to len(out), and
// returns the total count found.
type BoxClusterFinder interface {
	FindBoxClusters(mins, maxs mgl32.Vec3, out []int) int
}

// PointLighter samples static lighting at p.
type PointLighter interface {
	LightPoint(m *Model, p mgl32.Vec3) LightSample
}

// NonSolidLocator nudges a point out of solid.
type NonSolidLocator interface {
	FindNonSolidLocation(in mgl32.Vec3, radius float32) mgl32.Vec3
}

// LeafLocator returns the index of the leaf containing p, or -1.
type LeafLocator interface {
	PointInLeaf(p mgl32.Vec3) int
}

// AmbientSoundSampler fills out with the ambient sound levels at p and
// returns how many channels were written.
type AmbientSoundSampler interface {
	AmbientSoundLevelsForPoint(p mgl32.Vec3, out []byte) int
}

// HullRounder widens a box to the nearest collision hull the format has.
type HullRounder interface {
	RoundUpToHullSize(mins, maxs mgl32.Vec3) (mgl32.Vec3, mgl32.Vec3)
}

// BoxTracer sweeps a box from start to end.
type BoxTracer interface {
	TraceBox(m *Model, frame int, start, mins, maxs, end mgl32.Vec3, hitSuperContentsMask int) Trace
}

// SkyDrawer draws the model's sky surfaces.
type SkyDrawer interface {
	DrawSky(ent *Entity, r Renderer)
}

// Drawer draws the model with its static lighting.
type Drawer interface {
	Draw(ent *Entity, r Renderer)
}

// LightInfoGetter gathers the leafs and surfaces a light can reach.
type LightInfoGetter interface {
	GetLightInfo(ent *Entity, lightOrigin mgl32.Vec3, lightRadius float32, info *LightInfo)
}

// ShadowVolumeCompiler builds a static shadow caster mesh for a light.
type ShadowVolumeCompiler interface {
	CompileShadowVolume(ent *Entity, lightOrigin mgl32.Vec3, lightRadius float32, surfaces []int) (*shadowmesh.Mesh, error)
}

// ShadowVolumeDrawer submits shadow casters for a light.
type ShadowVolumeDrawer interface {
	DrawShadowVolume(ent *Entity, r Renderer, lightOrigin mgl32.Vec3, lightRadius float32, surfaces []int, lightMins, lightMaxs mgl32.Vec3)
}

// LightDrawer draws the lit pass of the given surfaces.
type LightDrawer interface {
	DrawLight(ent *Entity, r Renderer, surfaces []int)
}

// Slot names one capability.
type Slot int

const (
	SlotContents Slot = iota
	SlotGetPVS
	SlotFatPVS
	SlotBoxTouchingPVS
	SlotBoxTouchingLeafPVS
	SlotBoxTouchingVisibleLeafs
	SlotFindBoxClusters
	SlotLightPoint
	SlotFindNonSolidLocation
	SlotPointInLeaf
	SlotAmbientSoundLevelsForPoint
	SlotRoundUpToHullSize
	SlotTraceBox
	SlotDrawSky
	SlotDraw
	SlotGetLightInfo
	SlotCompileShadowVolume
	SlotDrawShadowVolume
	SlotDrawLight
	numSlots
)

var slotNames = [numSlots]string{
	"Contents",
	"GetPVS",
	"FatPVS",
	"BoxTouchingPVS",
	"BoxTouchingLeafPVS",
	"BoxTouchingVisibleLeafs",
	"FindBoxClusters",
	"LightPoint",
	"FindNonSolidLocation",
	"PointInLeaf",
	"AmbientSoundLevelsForPoint",
	"RoundUpToHullSize",
	"TraceBox",
	"DrawSky",
	"Draw",
	"GetLightInfo",
	"CompileShadowVolume",
	"DrawShadowVolume",
	"DrawLight",
}

func (s Slot) String() string {
	if s < 0 || s >= numSlots {
		return fmt.Sprintf("Slot(%d)", int(s))
	}
	return slotNames[s]
}

// SlotFilter lets one sub-record type disable slots per instance, e.g. a
// Q3 world has no ambient sound levels although the brush record type
// implements the method.
type SlotFilter interface {
	Supports(s Slot) bool
}

// slotOf maps a capability interface type to its slot.
func slotOf[T any]() (Slot, bool) {
	switch any((*T)(nil)).(type) {
	case *ContentsMapper:
		return SlotContents, true
	case *PVSGetter:
		return SlotGetPVS, true
	case *FatPVSer:
		return SlotFatPVS, true
	case *BoxPVSTester:
		return SlotBoxTouchingPVS, true
	case *BoxLeafPVSTester:
		return SlotBoxTouchingLeafPVS, true
	case *BoxVisibleLeafsTester:
		return SlotBoxTouchingVisibleLeafs, true
	case *BoxClusterFinder:
		return SlotFindBoxClusters, true
	case *PointLighter:
		return SlotLightPoint, true
	case *NonSolidLocator:
		return SlotFindNonSolidLocation, true
	case *LeafLocator:
		return SlotPointInLeaf, true
	case *AmbientSoundSampler:
		return SlotAmbientSoundLevelsForPoint, true
	case *HullRounder:
		return SlotRoundUpToHullSize, true
	case *BoxTracer:
		return SlotTraceBox, true
	case *SkyDrawer:
		return SlotDrawSky, true
	case *Drawer:
		return SlotDraw, true
	case *LightInfoGetter:
		return SlotGetLightInfo, true
	case *ShadowVolumeCompiler:
		return SlotCompileShadowVolume, true
	case *ShadowVolumeDrawer:
		return SlotDrawShadowVolume, true
	case *LightDrawer:
		return SlotDrawLight, true
	}
	return 0, false
}

// Capability resolves capability T on m's format record. The second
// result is false when the format does not provide it; callers must then
// skip the operation or use a neutral result.
func Capability[T any](m *Model) (T, bool) {
	var zero T
	if m == nil || m.Data == nil {
		return zero, false
	}
	c, ok := m.Data.(T)
	if !ok {
		return zero, false
	}
	if f, ok := m.Data.(SlotFilter); ok {
		if slot, known := slotOf[T](); known && !f.Supports(slot) {
			return zero, false
		}
	}
	return c, true
}

// Require is Capability for callers that treat absence as an error.
func Require[T any](m *Model) (T, error) {
	c, ok := Capability[T](m)
	if !ok {
		slot, _ := slotOf[T]()
		return c, fmt.Errorf("%w: %s on %v", ErrUnsupported, slot, m)
	}
	return c, nil
}

var slotProbes = [numSlots]func(*Model) bool{
	SlotContents:                   has[ContentsMapper],
	SlotGetPVS:                     has[PVSGetter],
	SlotFatPVS:                     has[FatPVSer],
	SlotBoxTouchingPVS:             has[BoxPVSTester],
	SlotBoxTouchingLeafPVS:         has[BoxLeafPVSTester],
	SlotBoxTouchingVisibleLeafs:    has[BoxVisibleLeafsTester],
	SlotFindBoxClusters:            has[BoxClusterFinder],
	SlotLightPoint:                 has[PointLighter],
	SlotFindNonSolidLocation:       has[NonSolidLocator],
	SlotPointInLeaf:                has[LeafLocator],
	SlotAmbientSoundLevelsForPoint: has[AmbientSoundSampler],
	SlotRoundUpToHullSize:          has[HullRounder],
	SlotTraceBox:                   has[BoxTracer],
	SlotDrawSky:                    has[SkyDrawer],
	SlotDraw:                       has[Drawer],
	SlotGetLightInfo:               has[LightInfoGetter],
	SlotCompileShadowVolume:        has[ShadowVolumeCompiler],
	SlotDrawShadowVolume:           has[ShadowVolumeDrawer],
	SlotDrawLight:                  has[LightDrawer],
}

func has[T any](m *Model) bool {
	_, ok := Capability[T](m)
	return ok
}

// Supports reports whether slot s is available on m.
func (m *Model) Supports(s Slot) bool {
	if s < 0 || s >= numSlots {
		return false
	}
	return slotProbes[s](m)
}

// Slots lists the slots m supports, in slot order.
func (m *Model) Slots() []Slot {
	var out []Slot
	for s := Slot(0); s < numSlots; s++ {
		if slotProbes[s](m) {
			out = append(out, s)
		}
	}
	return out
}
