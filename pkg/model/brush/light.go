package brush

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	rmath "github.com/Faultbox/midgard-models/pkg/math"
	"github.com/Faultbox/midgard-models/pkg/model"
)

// LightGridCell is one voxel of a Q3 light grid. Pitch and Yaw encode
// the dominant light direction in 256ths of a half turn.
type LightGridCell struct {
	Ambient [3]uint8
	Diffuse [3]uint8
	Pitch   uint8
	Yaw     uint8
}

// LightGrid is a voxel grid of directional lighting covering the world.
type LightGrid struct {
	// Origin is the world position of cell (0,0,0).
	Origin   mgl32.Vec3
	CellSize mgl32.Vec3
	Dims     [3]int
	// Cells are stored x fastest, then y, then z.
	Cells []LightGridCell
}

func (g *LightGrid) cell(x, y, z int) *LightGridCell {
	return &g.Cells[(z*g.Dims[1]+y)*g.Dims[0]+x]
}

// Sample blends the eight cells around p trilinearly.
func (g *LightGrid) Sample(p mgl32.Vec3) model.LightSample {
	var out model.LightSample
	if len(g.Cells) < g.Dims[0]*g.Dims[1]*g.Dims[2] || g.Dims[0] == 0 || g.Dims[1] == 0 || g.Dims[2] == 0 {
		return out
	}

	var pos [3]float32
	var idx [3]int
	for i := 0; i < 3; i++ {
		pos[i] = rmath.Clamp((p[i]-g.Origin[i])/g.CellSize[i], 0, float32(g.Dims[i]-1))
		idx[i] = int(rmath.Floor32(pos[i]))
	}

	const scale = 1.0 / 128
	var normal mgl32.Vec3
	for k := 0; k < 2; k++ {
		bz := blendWeight(pos[2]-float32(idx[2]), k)
		if bz < 0.001 || idx[2]+k >= g.Dims[2] {
			continue
		}
		for j := 0; j < 2; j++ {
			by := blendWeight(pos[1]-float32(idx[1]), j)
			if by < 0.001 || idx[1]+j >= g.Dims[1] {
				continue
			}
			for i := 0; i < 2; i++ {
				bx := blendWeight(pos[0]-float32(idx[0]), i)
				if bx < 0.001 || idx[0]+i >= g.Dims[0] {
					continue
				}
				blend := bx * by * bz
				c := g.cell(idx[0]+i, idx[1]+j, idx[2]+k)
				for ch := 0; ch < 3; ch++ {
					out.Ambient[ch] += blend * scale * float32(c.Ambient[ch])
					out.Diffuse[ch] += blend * scale * float32(c.Diffuse[ch])
				}
				pitch := float64(c.Pitch) * math.Pi / 128
				yaw := float64(c.Yaw) * math.Pi / 128
				sp := math.Sin(pitch)
				normal = normal.Add(mgl32.Vec3{
					float32(math.Cos(yaw) * sp),
					float32(math.Sin(yaw) * sp),
					float32(math.Cos(pitch)),
				}.Mul(blend))
			}
		}
	}
	out.DiffuseNormal = rmath.SafeNormalize(normal)
	return out
}

func blendWeight(frac float32, k int) float32 {
	if k == 0 {
		return 1 - frac
	}
	return frac
}

// LightPoint implements model.PointLighter. Q3 worlds sample the light
// grid; Q1/Q2 worlds read the lightmap of the first surface below p and
// light it from straight above.
func (w *World) LightPoint(m *model.Model, p mgl32.Vec3) model.LightSample {
	if w.Variant == VariantQ3 {
		if w.LightGrid == nil {
			return model.LightSample{Ambient: mgl32.Vec3{1, 1, 1}}
		}
		return w.LightGrid.Sample(p)
	}

	var out model.LightSample
	if m != nil && len(w.Nodes) > 0 {
		w.lightPointNode(m, &out, w.HeadNode, p[0], p[1], p[2]+0.125, p[2]-65536)
	}
	out.DiffuseNormal = mgl32.Vec3{0, 0, 1}
	return out
}

// lightPointNode traces a vertical line from startZ down to endZ and
// accumulates the lightmap at the first lit surface it crosses.
func (w *World) lightPointNode(m *model.Model, out *model.LightSample, c int32, x, y, startZ, endZ float32) bool {
	for c >= 0 {
		n := &w.Nodes[c]
		plane := &w.Planes[n.Plane]
		front := plane.Distance(mgl32.Vec3{x, y, startZ})
		back := plane.Distance(mgl32.Vec3{x, y, endZ})

		side := 0
		if front < 0 {
			side = 1
		}
		if (back < 0) == (front < 0) {
			c = n.Children[side]
			continue
		}

		midZ := startZ + (endZ-startZ)*(front/(front-back))

		if w.lightPointNode(m, out, n.Children[side], x, y, startZ, midZ) {
			return true
		}
		for s := n.FirstSurface; s < n.FirstSurface+n.NumSurfaces && s < len(m.Surfaces); s++ {
			if w.sampleSurface(&m.Surfaces[s], out, mgl32.Vec3{x, y, midZ}) {
				return true
			}
		}
		c = n.Children[side^1]
		startZ = midZ
	}
	return false
}

// sampleSurface adds the bilinearly filtered lightmap of surf at p.
func (w *World) sampleSurface(surf *model.Surface, out *model.LightSample, p mgl32.Vec3) bool {
	lm := surf.Lightmap
	if lm == nil || lm.TexInfo == nil || len(lm.Samples) == 0 || !surf.Texture.Has(model.MaterialWall) {
		return false
	}
	v0, v1 := lm.TexInfo.Vecs[0], lm.TexInfo.Vecs[1]
	ds := int(p.Dot(v0.Vec3())+v0[3]) - lm.TextureMins[0]
	dt := int(p.Dot(v1.Vec3())+v1[3]) - lm.TextureMins[1]
	if ds < 0 || dt < 0 || ds > lm.Extents[0] || dt > lm.Extents[1] {
		return false
	}

	smax, tmax := lm.Size()
	dsFrac, dtFrac := float32(ds&15), float32(dt&15)
	ds >>= 4
	dt >>= 4
	line := smax * 3
	w00 := (16 - dsFrac) * (16 - dtFrac)
	w01 := dsFrac * (16 - dtFrac)
	w10 := (16 - dsFrac) * dtFrac
	w11 := dsFrac * dtFrac

	base := (dt*smax + ds) * 3
	size3 := smax * tmax * 3
	for i := 0; i < lm.NumStyles(); i++ {
		off := base + i*size3
		if off+2 >= len(lm.Samples) {
			break
		}
		scale := w.styleValue(int(lm.Styles[i])) / (256 * 255)
		for ch := 0; ch < 3; ch++ {
			sum := w00*sample(lm.Samples, off+ch) +
				w01*sample(lm.Samples, off+3+ch) +
				w10*sample(lm.Samples, off+line+ch) +
				w11*sample(lm.Samples, off+line+3+ch)
			out.Ambient[ch] += sum * scale
		}
	}
	return true
}

func sample(samples []byte, i int) float32 {
	if i >= len(samples) {
		return 0
	}
	return float32(samples[i])
}

// AmbientSoundLevelsForPoint implements model.AmbientSoundSampler.
func (w *World) AmbientSoundLevelsForPoint(p mgl32.Vec3, out []byte) int {
	clear(out)
	leaf := w.LeafAt(p)
	if leaf == nil {
		return 0
	}
	return copy(out, leaf.AmbientSoundLevel[:])
}
