package model

import (
	"github.com/go-gl/mathgl/mgl32"

	rmath "github.com/Faultbox/midgard-models/pkg/math"
)

// Trace is the result of sweeping a box through a model.
type Trace struct {
	// AllSolid is set when the whole move was inside solid.
	AllSolid bool
	// StartSolid is set when the start point was inside solid.
	StartSolid bool
	InOpen     bool
	InWater    bool

	// Fraction of the move completed, 1 when nothing was hit.
	Fraction float32
	// RealFraction ignores the collision epsilon backoff.
	RealFraction float32
	EndPos       mgl32.Vec3
	Plane        rmath.Plane

	StartSuperContents int
	HitSuperContents   int
	HitSurfaceFlags    int
	HitTexture         *Texture

	// HitSuperContentsMask selects which contents stop the trace.
	HitSuperContentsMask int
}

// NewTrace returns a trace that has not hit anything yet.
func NewTrace(end mgl32.Vec3, hitMask int) Trace {
	return Trace{Fraction: 1, RealFraction: 1, EndPos: end, HitSuperContentsMask: hitMask}
}

// Hit reports whether the trace stopped before its end point.
func (t *Trace) Hit() bool {
	return t.Fraction < 1 || t.StartSolid
}
