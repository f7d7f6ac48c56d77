package brush

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-models/internal/logger"
	rmath "github.com/Faultbox/midgard-models/pkg/math"
	"github.com/Faultbox/midgard-models/pkg/mesh"
	"github.com/Faultbox/midgard-models/pkg/model"
	"github.com/Faultbox/midgard-models/pkg/shadowmesh"
)

// ErrNotBrush is returned by Finalize for models without *World data.
var ErrNotBrush = errors.New("not a brush model")

// BuildOptions controls the derived data Finalize computes.
type BuildOptions struct {
	AreaWeightedNormals bool
	BuildNormals        bool
	BuildTangents       bool
	// Neighbors builds adjacency for the render mesh and the shadow mesh.
	Neighbors bool
	// SnapGrid > 0 snaps every vertex before anything else runs.
	SnapGrid float32
	// RemoveDegenerate drops collapsed triangles from collision meshes.
	RemoveDegenerate bool
	Logger           *zap.Logger
}

// Finalize completes a loaded world: it validates the tree and mesh,
// derives normals, bounds and hull 0, assembles the shadow mesh and
// shares the results with every submodel.
func Finalize(m *model.Model, opts BuildOptions) error {
	log := logger.OrNop(opts.Logger).With(zap.String("model", m.Name))

	w, ok := m.Data.(*World)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotBrush, m)
	}
	if err := m.Validate(); err != nil {
		return err
	}
	if err := w.Validate(); err != nil {
		return fmt.Errorf("model %q: %w", m.Name, err)
	}

	b := m.Mesh
	if b != nil {
		mesh.SnapVertices(b.Vertices, opts.SnapGrid)
	}
	for i := range m.Surfaces {
		s := &m.Surfaces[i]
		if s.HasCollisionMesh() {
			mesh.SnapVertices(s.CollisionVertices, opts.SnapGrid)
			if opts.RemoveDegenerate {
				s.CollisionElements = mesh.RemoveDegenerateTriangles(s.CollisionElements, s.CollisionVertices)
			}
		}
		if b == nil || s.NumVertices == 0 {
			continue
		}
		elements := s.Elements(b)
		if opts.BuildNormals && len(b.Normals) == b.NumVertices {
			mesh.BuildNormals(s.FirstVertex, s.NumVertices, b.Vertices, elements, b.Normals, opts.AreaWeightedNormals)
		}
		if opts.BuildTangents && len(b.SVectors) == b.NumVertices && len(b.TexCoords) == b.NumVertices {
			mesh.BuildTangentVectors(s.FirstVertex, s.NumVertices, b.Vertices, b.TexCoords, b.Normals,
				elements, b.SVectors, b.TVectors, opts.AreaWeightedNormals)
		}
		s.ComputeBounds(b)
	}
	if b != nil && opts.Neighbors {
		b.BuildNeighbors()
	}

	if w.Variant == VariantQ1 && w.Hulls[0].Empty() && len(w.Nodes) > 0 {
		w.MakeHull0()
	}

	if b != nil {
		sm, err := buildShadowMesh(m, opts.Neighbors)
		if err != nil {
			return fmt.Errorf("model %q: shadow mesh: %w", m.Name, err)
		}
		w.ShadowMesh = sm
		log.Debug("Built shadow mesh",
			zap.Int("triangles", sm.NumTriangles()),
			zap.Int("vertices", sm.NumVertices()),
			zap.Int("segments", len(sm.Segments)))
	}

	if len(m.SurfaceList) == 0 {
		m.SurfaceList = surfaceRange(m.FirstModelSurface, m.NumModelSurfaces)
	}
	setBrushBounds(m, w)

	for _, sub := range w.Submodels {
		sw, ok := sub.Data.(*World)
		if !ok {
			continue
		}
		sw.ShadowMesh = w.ShadowMesh
		sw.Hulls[0].ClipNodes = w.Hulls[0].ClipNodes
		sw.Hulls[0].Planes = w.Hulls[0].Planes
		if len(sub.SurfaceList) == 0 {
			sub.SurfaceList = surfaceRange(sub.FirstModelSurface, sub.NumModelSurfaces)
		}
		setBrushBounds(sub, sw)
	}

	if w.PVS != nil {
		if ok, bad := w.PVS.Reflexive(); !ok {
			log.Warn("Cluster does not see itself", zap.Int("cluster", bad))
		}
	}

	log.Info("Finalized brush model",
		zap.Stringer("variant", w.Variant),
		zap.Int("surfaces", len(m.Surfaces)),
		zap.Int("leafs", len(w.Leafs)),
		zap.Int("submodels", len(w.Submodels)))
	return nil
}

// buildShadowMesh puts every shadow casting surface into one fixed-size
// mesh. Triangle order follows surface order, so a surface's triangles
// are the run starting at its FirstShadowMeshTriangle.
func buildShadowMesh(m *model.Model, neighbors bool) (*shadowmesh.Mesh, error) {
	b := m.Mesh
	total := 0
	for i := range m.Surfaces {
		if m.Surfaces[i].Texture.CastsShadow() {
			total += m.Surfaces[i].NumTriangles
		}
	}

	sb := shadowmesh.Begin(3*total, total, shadowmesh.Material{}, shadowmesh.KindShadow, shadowmesh.Fixed)
	next := 0
	for i := range m.Surfaces {
		s := &m.Surfaces[i]
		if !s.Texture.CastsShadow() || s.NumTriangles == 0 {
			s.FirstShadowMeshTriangle = -1
			continue
		}
		s.FirstShadowMeshTriangle = next
		err := sb.AddMesh(shadowmesh.Material{}, shadowmesh.MeshInput{
			Vertices: b.Vertices,
			Elements: s.Elements(b),
		})
		if err != nil {
			return nil, err
		}
		next += s.NumTriangles
	}
	return sb.Finish(shadowmesh.FinishOptions{Neighbors: neighbors})
}

func surfaceRange(first, n int) []int {
	list := make([]int, n)
	for i := range list {
		list[i] = first + i
	}
	return list
}

// setBrushBounds derives model bounds from its surfaces, falling back to
// the root node box for surface-less (clip only) models.
func setBrushBounds(m *model.Model, w *World) {
	mins, maxs := rmath.EmptyBounds()
	empty := true
	for _, i := range m.SurfaceList {
		s := &m.Surfaces[i]
		if s.NumVertices == 0 {
			continue
		}
		mins = rmath.MinVec(mins, s.Mins)
		maxs = rmath.MaxVec(maxs, s.Maxs)
		empty = false
	}
	if empty {
		switch {
		case w.HeadNode >= 0 && int(w.HeadNode) < len(w.Nodes):
			n := &w.Nodes[w.HeadNode]
			mins, maxs = n.Mins, n.Maxs
		default:
			return
		}
	}
	m.SetBounds(mins, maxs)
}
