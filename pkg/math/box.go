package math

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"
)

// EmptyBounds returns inverted bounds ready for Extend.
func EmptyBounds() (mins, maxs mgl32.Vec3) {
	big := float32(gomath.MaxFloat32)
	return mgl32.Vec3{big, big, big}, mgl32.Vec3{-big, -big, -big}
}

// Extend grows (mins, maxs) to include p.
func Extend(mins, maxs *mgl32.Vec3, p mgl32.Vec3) {
	*mins = MinVec(*mins, p)
	*maxs = MaxVec(*maxs, p)
}

// BoxesOverlap reports whether two closed axis-aligned boxes intersect.
func BoxesOverlap(amins, amaxs, bmins, bmaxs mgl32.Vec3) bool {
	return amins[0] <= bmaxs[0] && amaxs[0] >= bmins[0] &&
		amins[1] <= bmaxs[1] && amaxs[1] >= bmins[1] &&
		amins[2] <= bmaxs[2] && amaxs[2] >= bmins[2]
}

// PointInBox reports whether p lies inside the closed box.
func PointInBox(p, mins, maxs mgl32.Vec3) bool {
	return p[0] >= mins[0] && p[0] <= maxs[0] &&
		p[1] >= mins[1] && p[1] <= maxs[1] &&
		p[2] >= mins[2] && p[2] <= maxs[2]
}

// IntersectRayBox runs a slab test of the ray origin+t*dir against the box.
// It returns the entry distance and the axis of the face entered through,
// or the exit distance and axis -1 when the origin is already inside.
func IntersectRayBox(origin, dir, mins, maxs mgl32.Vec3) (t float32, axis int, hit bool) {
	tmin := float32(-gomath.MaxFloat32)
	tmax := float32(gomath.MaxFloat32)
	axis = -1

	for i := 0; i < 3; i++ {
		if dir[i] != 0 {
			t1 := (mins[i] - origin[i]) / dir[i]
			t2 := (maxs[i] - origin[i]) / dir[i]
			if t1 > t2 {
				t1, t2 = t2, t1
			}
			if t1 > tmin {
				tmin, axis = t1, i
			}
			tmax = min(tmax, t2)
		} else if origin[i] < mins[i] || origin[i] > maxs[i] {
			return 0, -1, false
		}
	}

	if tmax < tmin || tmax < 0 {
		return 0, -1, false
	}
	if tmin < 0 {
		return tmax, -1, true
	}
	return tmin, axis, true
}
