package model

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/midgard-models/pkg/shadowmesh"
)

// Format-blind wrappers. Each resolves its capability and falls back to a
// neutral result when the model's format lacks it.

// SuperContentsFromNative maps native contents, 0 when unsupported.
func SuperContentsFromNative(m *Model, native int) int {
	if c, ok := Capability[ContentsMapper](m); ok {
		return c.SuperContentsFromNative(native)
	}
	return 0
}

// NativeFromSuperContents maps super contents, 0 when unsupported.
func NativeFromSuperContents(m *Model, super int) int {
	if c, ok := Capability[ContentsMapper](m); ok {
		return c.NativeFromSuperContents(super)
	}
	return 0
}

// GetPVS returns the row for p, nil when unsupported (no culling).
func GetPVS(m *Model, p mgl32.Vec3) []byte {
	if c, ok := Capability[PVSGetter](m); ok {
		return c.GetPVS(p)
	}
	return nil
}

// FatPVS fills buf, returning false when unsupported.
func FatPVS(m *Model, org mgl32.Vec3, radius float32, buf []byte) (int, bool) {
	if c, ok := Capability[FatPVSer](m); ok {
		return c.FatPVS(org, radius, buf)
	}
	return 0, false
}

// BoxTouchingPVS is true when unsupported, so nothing gets culled.
func BoxTouchingPVS(m *Model, pvs []byte, mins, maxs mgl32.Vec3) bool {
	if c, ok := Capability[BoxPVSTester](m); ok {
		return c.BoxTouchingPVS(pvs, mins, maxs)
	}
	return true
}

// BoxTouchingLeafPVS is true when unsupported.
func BoxTouchingLeafPVS(m *Model, pvs []byte, mins, maxs mgl32.Vec3) bool {
	if c, ok := Capability[BoxLeafPVSTester](m); ok {
		return c.BoxTouchingLeafPVS(pvs, mins, maxs)
	}
	return true
}

// BoxTouchingVisibleLeafs is true when unsupported.
func BoxTouchingVisibleLeafs(m *Model, visible []byte, mins, maxs mgl32.Vec3) bool {
	if c, ok := Capability[BoxVisibleLeafsTester](m); ok {
		return c.BoxTouchingVisibleLeafs(visible, mins, maxs)
	}
	return true
}

// FindBoxClusters returns 0 when unsupported.
func FindBoxClusters(m *Model, mins, maxs mgl32.Vec3, out []int) int {
	if c, ok := Capability[BoxClusterFinder](m); ok {
		return c.FindBoxClusters(mins, maxs, out)
	}
	return 0
}

// LightPoint returns full white ambient when unsupported.
func LightPoint(m *Model, p mgl32.Vec3) LightSample {
	if c, ok := Capability[PointLighter](m); ok {
		return c.LightPoint(m, p)
	}
	return LightSample{Ambient: mgl32.Vec3{1, 1, 1}}
}

// FindNonSolidLocation returns in unchanged when unsupported.
func FindNonSolidLocation(m *Model, in mgl32.Vec3, radius float32) mgl32.Vec3 {
	if c, ok := Capability[NonSolidLocator](m); ok {
		return c.FindNonSolidLocation(in, radius)
	}
	return in
}

// PointInLeaf returns -1 when unsupported.
func PointInLeaf(m *Model, p mgl32.Vec3) int {
	if c, ok := Capability[LeafLocator](m); ok {
		return c.PointInLeaf(p)
	}
	return -1
}

// AmbientSoundLevelsForPoint zeroes out when unsupported.
func AmbientSoundLevelsForPoint(m *Model, p mgl32.Vec3, out []byte) int {
	if c, ok := Capability[AmbientSoundSampler](m); ok {
		return c.AmbientSoundLevelsForPoint(p, out)
	}
	clear(out)
	return 0
}

// RoundUpToHullSize returns the box unchanged when unsupported.
func RoundUpToHullSize(m *Model, mins, maxs mgl32.Vec3) (mgl32.Vec3, mgl32.Vec3) {
	if c, ok := Capability[HullRounder](m); ok {
		return c.RoundUpToHullSize(mins, maxs)
	}
	return mins, maxs
}

// TraceBox returns an unobstructed trace when unsupported.
func TraceBox(m *Model, frame int, start, mins, maxs, end mgl32.Vec3, hitSuperContentsMask int) Trace {
	if c, ok := Capability[BoxTracer](m); ok {
		return c.TraceBox(m, frame, start, mins, maxs, end, hitSuperContentsMask)
	}
	return NewTrace(end, hitSuperContentsMask)
}

// DrawSky is a no-op when unsupported.
func DrawSky(ent *Entity, r Renderer) {
	if c, ok := Capability[SkyDrawer](ent.Model); ok {
		c.DrawSky(ent, r)
	}
}

// Draw is a no-op when unsupported.
func Draw(ent *Entity, r Renderer) {
	if c, ok := Capability[Drawer](ent.Model); ok {
		c.Draw(ent, r)
	}
}

// GetLightInfo resets info to the light's box when unsupported.
func GetLightInfo(ent *Entity, lightOrigin mgl32.Vec3, lightRadius float32, info *LightInfo) {
	if c, ok := Capability[LightInfoGetter](ent.Model); ok {
		c.GetLightInfo(ent, lightOrigin, lightRadius, info)
		return
	}
	info.Reset(lightOrigin, lightRadius)
}

// CompileShadowVolume returns a nil mesh when unsupported.
func CompileShadowVolume(ent *Entity, lightOrigin mgl32.Vec3, lightRadius float32, surfaces []int) (*shadowmesh.Mesh, error) {
	if c, ok := Capability[ShadowVolumeCompiler](ent.Model); ok {
		return c.CompileShadowVolume(ent, lightOrigin, lightRadius, surfaces)
	}
	return nil, nil
}

// DrawShadowVolume is a no-op when unsupported.
func DrawShadowVolume(ent *Entity, r Renderer, lightOrigin mgl32.Vec3, lightRadius float32, surfaces []int, lightMins, lightMaxs mgl32.Vec3) {
	if c, ok := Capability[ShadowVolumeDrawer](ent.Model); ok {
		c.DrawShadowVolume(ent, r, lightOrigin, lightRadius, surfaces, lightMins, lightMaxs)
	}
}

// DrawLight is a no-op when unsupported.
func DrawLight(ent *Entity, r Renderer, surfaces []int) {
	if c, ok := Capability[LightDrawer](ent.Model); ok {
		c.DrawLight(ent, r, surfaces)
	}
}
