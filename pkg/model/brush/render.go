package brush

import (
	"github.com/bits-and-blooms/bitset"
	"github.com/go-gl/mathgl/mgl32"

	rmath "github.com/Faultbox/midgard-models/pkg/math"
	"github.com/Faultbox/midgard-models/pkg/model"
	"github.com/Faultbox/midgard-models/pkg/pvs"
	"github.com/Faultbox/midgard-models/pkg/shadowmesh"
)

// DrawSky implements model.SkyDrawer.
func (w *World) DrawSky(ent *model.Entity, r model.Renderer) {
	for _, i := range ent.Model.SurfaceList {
		s := &ent.Model.Surfaces[i]
		if s.Texture.Has(model.MaterialSky) {
			r.DrawSkySurface(ent, s)
		}
	}
}

// Draw implements model.Drawer. Sky and nodraw surfaces are skipped.
func (w *World) Draw(ent *model.Entity, r model.Renderer) {
	for _, i := range ent.Model.SurfaceList {
		s := &ent.Model.Surfaces[i]
		if s.Texture == nil || s.Texture.MaterialFlags&(model.MaterialSky|model.MaterialNoDraw) != 0 {
			continue
		}
		r.DrawSurface(ent, s, nil)
	}
}

// GetLightInfo implements model.LightInfoGetter. lightOrigin is in model
// space. The world model is culled by the PVS at the light; every model
// keeps only surfaces with a triangle facing the light inside its box.
// info's bounds shrink to the lit geometry.
func (w *World) GetLightInfo(ent *model.Entity, lightOrigin mgl32.Vec3, lightRadius float32, info *model.LightInfo) {
	m := ent.Model
	info.Reset(lightOrigin, lightRadius)
	lightMins, lightMaxs := info.Mins, info.Maxs
	if info.LeafPVS == nil {
		info.LeafPVS = bitset.New(uint(len(w.Leafs)))
	}
	if info.SurfacePVS == nil {
		info.SurfacePVS = bitset.New(uint(len(m.Surfaces)))
	}

	litMins, litMaxs := lightOrigin, lightOrigin
	addSurface := func(i int) {
		if info.SurfacePVS.Test(uint(i)) {
			return
		}
		s := &m.Surfaces[i]
		if !rmath.BoxesOverlap(s.Mins, s.Maxs, lightMins, lightMaxs) {
			return
		}
		lit := false
		elements := s.Elements(m.Mesh)
		for t := 0; t+2 < len(elements); t += 3 {
			a := m.Mesh.Vertices[elements[t]]
			b := m.Mesh.Vertices[elements[t+1]]
			c := m.Mesh.Vertices[elements[t+2]]
			if lightOrigin.Sub(a).Dot(rmath.TriangleNormal(a, b, c)) <= 0 {
				continue
			}
			tmins := rmath.MinVec(rmath.MinVec(a, b), c)
			tmaxs := rmath.MaxVec(rmath.MaxVec(a, b), c)
			if !rmath.BoxesOverlap(tmins, tmaxs, lightMins, lightMaxs) {
				continue
			}
			lit = true
			litMins = rmath.MinVec(litMins, rmath.MaxVec(tmins, lightMins))
			litMaxs = rmath.MaxVec(litMaxs, rmath.MinVec(tmaxs, lightMaxs))
		}
		if lit {
			info.SurfacePVS.Set(uint(i))
			info.Surfaces = append(info.Surfaces, i)
		}
	}

	if w.Submodel == 0 && m.IsWorldModel && len(w.Leafs) > 0 {
		row := w.GetPVS(lightOrigin)
		w.walkBox(lightMins, lightMaxs, func(i int) bool {
			leaf := &w.Leafs[i]
			if row != nil && !pvs.Test(row, leaf.Cluster) {
				return false
			}
			if !rmath.BoxesOverlap(leaf.Mins, leaf.Maxs, lightMins, lightMaxs) {
				return false
			}
			if !info.LeafPVS.Test(uint(i)) {
				info.LeafPVS.Set(uint(i))
				info.Leafs = append(info.Leafs, i)
			}
			for _, s := range leaf.Surfaces {
				addSurface(s)
			}
			return false
		})
	} else {
		for _, s := range m.SurfaceList {
			addSurface(s)
		}
	}

	info.Mins, info.Maxs = litMins, litMaxs
}

// CompileShadowVolume implements model.ShadowVolumeCompiler: it gathers
// the shadow mesh triangles of the given surfaces that face the light and
// touch its box into a new welded caster mesh.
func (w *World) CompileShadowVolume(ent *model.Entity, lightOrigin mgl32.Vec3, lightRadius float32, surfaces []int) (*shadowmesh.Mesh, error) {
	m := ent.Model
	if w.ShadowMesh == nil {
		return nil, nil
	}
	r := mgl32.Vec3{lightRadius, lightRadius, lightRadius}
	lightMins, lightMaxs := lightOrigin.Sub(r), lightOrigin.Add(r)

	total := 0
	for _, i := range surfaces {
		total += m.Surfaces[i].NumTriangles
	}
	b := shadowmesh.Begin(3*max(total, 1), max(total, 1), shadowmesh.Material{}, shadowmesh.KindShadow, shadowmesh.Expandable)
	for _, i := range surfaces {
		s := &m.Surfaces[i]
		if s.FirstShadowMeshTriangle < 0 || !rmath.BoxesOverlap(s.Mins, s.Maxs, lightMins, lightMaxs) {
			continue
		}
		for t := 0; t < s.NumTriangles; t++ {
			seg, local, ok := w.ShadowMesh.Locate(s.FirstShadowMeshTriangle + t)
			if !ok {
				break
			}
			e := seg.Elements[3*local : 3*local+3]
			a, bb, c := seg.Vertices[e[0]], seg.Vertices[e[1]], seg.Vertices[e[2]]
			if lightOrigin.Sub(a).Dot(rmath.TriangleNormal(a, bb, c)) <= 0 {
				continue
			}
			tmins := rmath.MinVec(rmath.MinVec(a, bb), c)
			tmaxs := rmath.MaxVec(rmath.MaxVec(a, bb), c)
			if !rmath.BoxesOverlap(tmins, tmaxs, lightMins, lightMaxs) {
				continue
			}
			tri := [3]shadowmesh.Vertex{
				shadowmesh.PositionVertex(a),
				shadowmesh.PositionVertex(bb),
				shadowmesh.PositionVertex(c),
			}
			if err := b.AddTriangle(shadowmesh.Material{}, tri); err != nil {
				return nil, err
			}
		}
	}
	return b.Finish(shadowmesh.FinishOptions{Neighbors: true})
}

// DrawShadowVolume implements model.ShadowVolumeDrawer. Each surface's
// run of the world shadow mesh goes to the backend as one batch.
func (w *World) DrawShadowVolume(ent *model.Entity, r model.Renderer, lightOrigin mgl32.Vec3, lightRadius float32, surfaces []int, lightMins, lightMaxs mgl32.Vec3) {
	if w.ShadowMesh == nil {
		return
	}
	m := ent.Model
	for _, i := range surfaces {
		s := &m.Surfaces[i]
		if s.FirstShadowMeshTriangle < 0 || s.NumTriangles == 0 || !rmath.BoxesOverlap(s.Mins, s.Maxs, lightMins, lightMaxs) {
			continue
		}
		seg, local, ok := w.ShadowMesh.Locate(s.FirstShadowMeshTriangle)
		if !ok {
			continue
		}
		n := min(s.NumTriangles, seg.NumTriangles()-local)
		batch := model.ShadowBatch{
			Vertices:    seg.Vertices,
			Elements:    seg.Elements[3*local : 3*(local+n)],
			LightOrigin: lightOrigin,
			LightRadius: lightRadius,
			Mins:        s.Mins,
			Maxs:        s.Maxs,
		}
		if seg.Neighbors != nil {
			batch.Neighbors = seg.Neighbors[3*local : 3*(local+n)]
		}
		r.DrawShadowTriangles(ent, batch)
	}
}

// DrawLight implements model.LightDrawer.
func (w *World) DrawLight(ent *model.Entity, r model.Renderer, surfaces []int) {
	m := ent.Model
	for _, i := range surfaces {
		s := &m.Surfaces[i]
		if s.Texture == nil || s.Texture.MaterialFlags&(model.MaterialSky|model.MaterialNoDraw) != 0 {
			continue
		}
		r.DrawLitSurface(ent, s, nil)
	}
}
