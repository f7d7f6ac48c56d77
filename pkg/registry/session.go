package registry

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-models/internal/config"
	"github.com/Faultbox/midgard-models/pkg/model"
	"github.com/Faultbox/midgard-models/pkg/model/alias"
	"github.com/Faultbox/midgard-models/pkg/model/brush"
	"github.com/Faultbox/midgard-models/pkg/model/sprite"
	"github.com/Faultbox/midgard-models/pkg/shadowmesh"
)

// LoadSession is the state of one model load. Everything a loader
// creates hangs off Model and stays private to the session until the
// registry publishes it.
type LoadSession struct {
	Name    string
	IsWorld bool
	Model   *model.Model
	Source  Source
	Log     *zap.Logger

	// BuildNormals recomputes mesh normals during finalize. Loaders of
	// formats that store good normals clear it.
	BuildNormals bool

	geometry config.GeometryConfig
	shadow   config.ShadowMeshConfig
}

func (r *Registry) newSession(name string, isWorld bool) *LoadSession {
	return &LoadSession{
		Name:         name,
		IsWorld:      isWorld,
		Model:        &model.Model{Name: name, IsWorldModel: isWorld},
		Source:       r.opts.Source,
		Log:          r.log.With(zap.String("model", name)),
		BuildNormals: true,
		geometry:     r.opts.Geometry,
		shadow:       r.opts.ShadowMesh,
	}
}

// ShadowBuilder starts a mesh assembly sized and grown by the session's
// shadow mesh settings.
func (ls *LoadSession) ShadowBuilder(kind shadowmesh.Kind, mat shadowmesh.Material) *shadowmesh.Builder {
	growth := shadowmesh.Fixed
	if ls.shadow.Expandable {
		growth = shadowmesh.Expandable
	}
	return shadowmesh.Begin(ls.shadow.InitialVertices, ls.shadow.InitialTriangles, mat, kind, growth)
}

// FinishShadowMesh completes a builder from ShadowBuilder with the
// session's adjacency and merge settings.
func (ls *LoadSession) FinishShadowMesh(b *shadowmesh.Builder) (*shadowmesh.Mesh, error) {
	return b.Finish(shadowmesh.FinishOptions{
		Neighbors: ls.geometry.BuildNeighbors,
		Merge:     ls.shadow.MergeSegments,
	})
}

// SkinFiles reads the NAME_N.skin files next to the model.
func (ls *LoadSession) SkinFiles() ([]*alias.SkinFile, error) {
	if ls.Source == nil {
		return nil, nil
	}
	return alias.LoadSkinFiles(ls.Source, ls.Name)
}

// AddSubmodel appends a submodel to the world being loaded; it becomes
// "*N" when the world is published.
func (ls *LoadSession) AddSubmodel(sub *model.Model) error {
	w, ok := ls.Model.Data.(*brush.World)
	if !ok {
		return fmt.Errorf("%w: submodels need a brush world, %s has %T", brush.ErrNotBrush, ls.Name, ls.Model.Data)
	}
	w.Submodels = append(w.Submodels, sub)
	return nil
}

// finalize runs the format's finalize step with the session settings.
func (ls *LoadSession) finalize() error {
	m := ls.Model
	g := ls.geometry
	switch m.Type {
	case model.FormatBrushQ1, model.FormatBrushQ2, model.FormatBrushQ3:
		return brush.Finalize(m, brush.BuildOptions{
			AreaWeightedNormals: g.AreaWeightedNormals,
			BuildNormals:        ls.BuildNormals,
			BuildTangents:       true,
			Neighbors:           g.BuildNeighbors,
			SnapGrid:            g.SnapGrid,
			RemoveDegenerate:    g.RemoveDegenerate,
			Logger:              ls.Log,
		})
	case model.FormatAlias:
		return alias.Finalize(m, alias.BuildOptions{
			AreaWeightedNormals: g.AreaWeightedNormals,
			BuildNormals:        ls.BuildNormals,
			Neighbors:           g.BuildNeighbors,
			Logger:              ls.Log,
		})
	case model.FormatSprite:
		return sprite.Finalize(m, ls.Log)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, m.Type)
	}
}
