package mesh

import (
	"github.com/go-gl/mathgl/mgl32"

	rmath "github.com/Faultbox/midgard-models/pkg/math"
)

// BuildNormals writes per-vertex normals for vertices
// [firstVertex, firstVertex+numVertices) as the normalized sum of the
// normals of every triangle using them. With areaWeighting each face
// contributes proportionally to its area, otherwise every face counts once.
// Summation follows element order, so results are deterministic.
func BuildNormals(firstVertex, numVertices int, positions []mgl32.Vec3, elements []int32, normals []mgl32.Vec3, areaWeighting bool) {
	end := firstVertex + numVertices
	clear(normals[firstVertex:end])

	for i := 0; i+2 < len(elements); i += 3 {
		tri := [3]int32{elements[i], elements[i+1], elements[i+2]}
		n := rmath.TriangleNormal(positions[tri[0]], positions[tri[1]], positions[tri[2]])
		if !areaWeighting {
			n = rmath.SafeNormalize(n)
		}
		for _, v := range tri {
			if int(v) >= firstVertex && int(v) < end {
				normals[v] = normals[v].Add(n)
			}
		}
	}

	for i := firstVertex; i < end; i++ {
		normals[i] = rmath.SafeNormalize(normals[i])
	}
}

// BuildTangentVectors accumulates the texture-space S and T axes of every
// triangle into its vertices, then orthogonalizes them against the vertex
// normal. Triangles with zero area or a singular texcoord mapping are
// skipped; no output is ever NaN.
func BuildTangentVectors(firstVertex, numVertices int, positions []mgl32.Vec3, texcoords []mgl32.Vec2, normals []mgl32.Vec3, elements []int32, sVectors, tVectors []mgl32.Vec3, areaWeighting bool) {
	end := firstVertex + numVertices
	clear(sVectors[firstVertex:end])
	clear(tVectors[firstVertex:end])

	for i := 0; i+2 < len(elements); i += 3 {
		tri := [3]int32{elements[i], elements[i+1], elements[i+2]}
		s, t, ok := triangleTangents(
			positions[tri[0]], positions[tri[1]], positions[tri[2]],
			texcoords[tri[0]], texcoords[tri[1]], texcoords[tri[2]],
			areaWeighting,
		)
		if !ok {
			continue
		}
		for _, v := range tri {
			if int(v) >= firstVertex && int(v) < end {
				sVectors[v] = sVectors[v].Add(s)
				tVectors[v] = tVectors[v].Add(t)
			}
		}
	}

	for i := firstVertex; i < end; i++ {
		n := normals[i]
		s := sVectors[i]
		t := tVectors[i]
		sVectors[i] = rmath.SafeNormalize(s.Sub(n.Mul(s.Dot(n))))
		tVectors[i] = rmath.SafeNormalize(t.Sub(n.Mul(t.Dot(n))))
	}
}

func triangleTangents(v0, v1, v2 mgl32.Vec3, t0, t1, t2 mgl32.Vec2, areaWeighting bool) (s, t mgl32.Vec3, ok bool) {
	e1 := v1.Sub(v0)
	e2 := v2.Sub(v0)
	du1, dv1 := t1[0]-t0[0], t1[1]-t0[1]
	du2, dv2 := t2[0]-t0[0], t2[1]-t0[1]

	det := du1*dv2 - du2*dv1
	if det > -1e-12 && det < 1e-12 {
		return s, t, false
	}
	cross := e1.Cross(e2)
	area2 := rmath.Sqrt32(cross.Dot(cross))
	if area2 < 1e-12 {
		return s, t, false
	}

	inv := 1 / det
	s = rmath.SafeNormalize(e1.Mul(dv2).Sub(e2.Mul(dv1)).Mul(inv))
	t = rmath.SafeNormalize(e2.Mul(du1).Sub(e1.Mul(du2)).Mul(inv))
	if areaWeighting {
		s = s.Mul(area2 * 0.5)
		t = t.Mul(area2 * 0.5)
	}
	return s, t, true
}
