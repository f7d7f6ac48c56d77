// Package model defines the runtime model record shared by every format
// and the capability seam consumers dispatch through.
//
// A Model carries exactly one format sub-record in Data. Renderer,
// collision and lighting code never inspect that record directly; they ask
// for a capability (see Capability) or call the neutral wrappers in
// dispatch.go, which treat an absent capability as a no-op.
package model

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	rmath "github.com/Faultbox/midgard-models/pkg/math"
	"github.com/Faultbox/midgard-models/pkg/mesh"
)

// Model flags read from model files.
const (
	FlagRocket = 1 << iota
	FlagGrenade
	FlagGib
	FlagRotate
	FlagTracer
	FlagZombieGib
	FlagTracer2
	FlagTracer3
)

// Model is the top-level runtime record.
type Model struct {
	// Name is the lookup key, e.g. "progs/player.mdl" or "*3" for a submodel.
	Name string
	// CRC of the bytes the model was built from.
	CRC uint32
	// Generation changes on every successful (re)load.
	Generation uuid.UUID

	Loaded       bool
	Used         bool
	IsWorldModel bool
	// Stale is set when the source changed on disk since the last load.
	Stale bool

	Type Format

	Flags     int
	Flags2    int
	NumFrames int
	NumSkins  int
	SyncType  SyncType

	// Bounds at angles 0 0 0.
	NormalMins, NormalMaxs mgl32.Vec3
	// Bounds when only yaw is non-zero.
	YawMins, YawMaxs mgl32.Vec3
	// Bounds under any rotation.
	RotatedMins, RotatedMaxs mgl32.Vec3
	Radius                   float32
	Radius2                  float32

	SkinScenes []AnimScene
	AnimScenes []AnimScene

	// Surface and collision brush ranges of this (sub)model.
	FirstModelSurface int
	NumModelSurfaces  int
	FirstModelBrush   int
	NumModelBrushes   int
	SurfaceList       []int

	Textures []Texture
	Surfaces []Surface
	Mesh     *mesh.Buffer

	// SoundFromCenter offsets sounds to the bounds center.
	SoundFromCenter bool

	Data FormatData
}

// SetBounds stores mins/maxs and derives the yaw, rotated and sphere
// bounds from them.
func (m *Model) SetBounds(mins, maxs mgl32.Vec3) {
	m.NormalMins, m.NormalMaxs = mins, maxs

	var yaw2, r2 float32
	for axis := 0; axis < 3; axis++ {
		a := max(mins[axis]*mins[axis], maxs[axis]*maxs[axis])
		if axis < 2 {
			yaw2 += a
		}
		r2 += a
	}
	yaw := rmath.Sqrt32(yaw2)
	radius := rmath.Sqrt32(r2)

	m.YawMins = mgl32.Vec3{-yaw, -yaw, mins[2]}
	m.YawMaxs = mgl32.Vec3{yaw, yaw, maxs[2]}
	m.RotatedMins = mgl32.Vec3{-radius, -radius, -radius}
	m.RotatedMaxs = mgl32.Vec3{radius, radius, radius}
	m.Radius = radius
	m.Radius2 = radius * radius
}

// BoundsForAngles picks the tightest box valid for the given pitch, yaw
// and roll.
func (m *Model) BoundsForAngles(angles mgl32.Vec3) (mins, maxs mgl32.Vec3) {
	switch {
	case angles[0] != 0 || angles[2] != 0:
		return m.RotatedMins, m.RotatedMaxs
	case angles[1] != 0:
		return m.YawMins, m.YawMaxs
	default:
		return m.NormalMins, m.NormalMaxs
	}
}

// ModelSurfaces returns the surfaces of this (sub)model.
func (m *Model) ModelSurfaces() []Surface {
	end := m.FirstModelSurface + m.NumModelSurfaces
	if m.FirstModelSurface < 0 || end > len(m.Surfaces) {
		return nil
	}
	return m.Surfaces[m.FirstModelSurface:end]
}

// Validate checks that the format tag and sub-record agree and that the
// mesh and every surface range are in bounds.
func (m *Model) Validate() error {
	if m.Data == nil {
		return fmt.Errorf("%w: model %q has no format data", mesh.ErrContentIntegrity, m.Name)
	}
	if got := m.Data.Format(); got != m.Type {
		return fmt.Errorf("%w: model %q is tagged %s but carries %s data",
			mesh.ErrContentIntegrity, m.Name, m.Type, got)
	}
	if m.Mesh == nil {
		if len(m.Surfaces) > 0 {
			return fmt.Errorf("%w: model %q has surfaces but no mesh", mesh.ErrContentIntegrity, m.Name)
		}
		return nil
	}
	if err := m.Mesh.Validate(); err != nil {
		return fmt.Errorf("model %q: %w", m.Name, err)
	}
	for i := range m.Surfaces {
		s := &m.Surfaces[i]
		if s.FirstVertex < 0 || s.NumVertices < 0 || s.FirstVertex+s.NumVertices > m.Mesh.NumVertices ||
			s.FirstTriangle < 0 || s.NumTriangles < 0 || s.FirstTriangle+s.NumTriangles > m.Mesh.NumTriangles {
			return fmt.Errorf("%w: model %q surface %d range out of mesh bounds",
				mesh.ErrContentIntegrity, m.Name, i)
		}
		if err := mesh.ValidateElements(s.Elements(m.Mesh), s.FirstVertex, s.NumVertices); err != nil {
			return fmt.Errorf("model %q surface %d: %w", m.Name, i, err)
		}
	}
	return nil
}

func (m *Model) String() string {
	return fmt.Sprintf("%s (%s)", m.Name, m.Type)
}
