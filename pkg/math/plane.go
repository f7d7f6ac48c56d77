package math

import "github.com/go-gl/mathgl/mgl32"

// Plane types; the first three mark axial planes for fast side tests.
const (
	PlaneX uint8 = iota
	PlaneY
	PlaneZ
	PlaneNonAxial
)

// Side bits returned by BoxOnPlaneSide.
const (
	SideFront = 1
	SideBack  = 2
	SideBoth  = SideFront | SideBack
)

// Plane is a 3D plane, dot(Normal, p) = Dist.
type Plane struct {
	Normal   mgl32.Vec3
	Dist     float32
	Type     uint8
	SignBits uint8
}

// NewPlane builds a plane with its type and sign bits filled in.
func NewPlane(normal mgl32.Vec3, dist float32) Plane {
	p := Plane{Normal: normal, Dist: dist}
	p.Classify()
	return p
}

// Classify computes Type and SignBits from Normal.
func (p *Plane) Classify() {
	switch {
	case p.Normal[0] == 1:
		p.Type = PlaneX
	case p.Normal[1] == 1:
		p.Type = PlaneY
	case p.Normal[2] == 1:
		p.Type = PlaneZ
	default:
		p.Type = PlaneNonAxial
	}
	p.SignBits = 0
	for i := 0; i < 3; i++ {
		if p.Normal[i] < 0 {
			p.SignBits |= 1 << i
		}
	}
}

// Distance returns the signed distance from the plane to point.
func (p *Plane) Distance(point mgl32.Vec3) float32 {
	if p.Type < PlaneNonAxial {
		return point[p.Type] - p.Dist
	}
	return p.Normal.Dot(point) - p.Dist
}

// BoxOnPlaneSide classifies an axis-aligned box against the plane and
// returns SideFront, SideBack or SideBoth.
func (p *Plane) BoxOnPlaneSide(mins, maxs mgl32.Vec3) int {
	if p.Type < PlaneNonAxial {
		switch {
		case p.Dist <= mins[p.Type]:
			return SideFront
		case p.Dist >= maxs[p.Type]:
			return SideBack
		default:
			return SideBoth
		}
	}

	// Nearest and farthest corners along the normal.
	var near, far mgl32.Vec3
	for i := 0; i < 3; i++ {
		if p.Normal[i] < 0 {
			near[i], far[i] = maxs[i], mins[i]
		} else {
			near[i], far[i] = mins[i], maxs[i]
		}
	}
	sides := 0
	if p.Normal.Dot(far) >= p.Dist {
		sides |= SideFront
	}
	if p.Normal.Dot(near) < p.Dist {
		sides |= SideBack
	}
	return sides
}

// NearestCorner returns the box corner with the smallest projection onto normal.
func NearestCorner(normal, mins, maxs mgl32.Vec3) mgl32.Vec3 {
	var c mgl32.Vec3
	for i := 0; i < 3; i++ {
		if normal[i] < 0 {
			c[i] = maxs[i]
		} else {
			c[i] = mins[i]
		}
	}
	return c
}
