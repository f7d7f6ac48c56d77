package alias

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-models/internal/logger"
	rmath "github.com/Faultbox/midgard-models/pkg/math"
	"github.com/Faultbox/midgard-models/pkg/mesh"
	"github.com/Faultbox/midgard-models/pkg/model"
)

// BuildOptions controls the derived data Finalize computes.
type BuildOptions struct {
	AreaWeightedNormals bool
	// BuildNormals recomputes the normals of the base mesh and of every
	// morph frame.
	BuildNormals bool
	// Neighbors builds adjacency, which shadow volumes need.
	Neighbors bool
	Logger    *zap.Logger
}

// Finalize validates a loaded alias model and fills in normals,
// adjacency, bounds over every frame and the default animation scenes.
func Finalize(m *model.Model, opts BuildOptions) error {
	log := logger.OrNop(opts.Logger).With(zap.String("model", m.Name))

	d, ok := m.Data.(*Data)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotAlias, m)
	}
	if err := m.Validate(); err != nil {
		return err
	}
	if err := d.Validate(m.Mesh); err != nil {
		return fmt.Errorf("model %q: %w", m.Name, err)
	}

	b := m.Mesh
	if b == nil {
		return fmt.Errorf("%w: alias model %q has no mesh", mesh.ErrContentIntegrity, m.Name)
	}
	if opts.BuildNormals {
		mesh.BuildNormals(0, b.NumVertices, b.Vertices, b.Elements, b.Normals, opts.AreaWeightedNormals)
		for i := range b.Morph {
			f := &b.Morph[i]
			mesh.BuildNormals(0, b.NumVertices, f.Vertices, b.Elements, f.Normals, opts.AreaWeightedNormals)
		}
	}
	if opts.Neighbors {
		b.BuildNeighbors()
		d.ShadowCaster = true
	}

	for i := range m.Surfaces {
		if m.Surfaces[i].NumVertices > 0 {
			m.Surfaces[i].ComputeBounds(b)
		}
	}
	if len(m.SurfaceList) == 0 {
		m.SurfaceList = surfaceList(m)
	}

	frames := d.frameCount(b)
	if m.NumFrames == 0 {
		m.NumFrames = frames
	}
	if len(m.AnimScenes) == 0 {
		m.AnimScenes = make([]model.AnimScene, m.NumFrames)
		for i := range m.AnimScenes {
			m.AnimScenes[i] = model.AnimScene{
				Name: fmt.Sprintf("frame %d", i), FirstFrame: i, FrameCount: 1, Loop: true, FrameRate: 10,
			}
		}
	}
	if m.NumSkins == 0 {
		m.NumSkins = max(len(d.SkinTextures), 1)
	}

	mins, maxs := d.frameBounds(b, frames)
	m.SetBounds(mins, maxs)

	log.Debug("Finalized alias model",
		zap.Stringer("blend", b.Blend()),
		zap.Int("frames", m.NumFrames),
		zap.Int("skins", m.NumSkins),
		zap.Int("tags", len(d.TagNames)),
		zap.Int("bones", len(d.Bones)),
		zap.Float32("radius", m.Radius))
	return nil
}

func (d *Data) frameCount(b *mesh.Buffer) int {
	switch b.Blend() {
	case mesh.BlendMorph:
		return len(b.Morph)
	case mesh.BlendSkeletal:
		return max(d.NumPoses, 1)
	default:
		return 1
	}
}

// frameBounds returns the box enclosing every frame of the animation.
func (d *Data) frameBounds(b *mesh.Buffer, frames int) (mgl32.Vec3, mgl32.Vec3) {
	mins, maxs := rmath.EmptyBounds()
	extend := func(vs []mgl32.Vec3) {
		for _, v := range vs {
			rmath.Extend(&mins, &maxs, v)
		}
	}
	switch b.Blend() {
	case mesh.BlendMorph:
		for i := range b.Morph {
			extend(b.Morph[i].Vertices)
		}
	case mesh.BlendSkeletal:
		pose := &mesh.Pose{}
		for f := 0; f < frames; f++ {
			d.Evaluate(b, model.SingleFrame(f), pose)
			extend(pose.Vertices)
		}
	default:
		extend(b.Vertices)
	}
	if b.NumVertices == 0 {
		return mgl32.Vec3{}, mgl32.Vec3{}
	}
	return mins, maxs
}
