// Package sprite implements billboard models: a list of textured frames
// drawn as quads that face the camera according to the sprite's
// orientation type.
package sprite

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-models/internal/logger"
	rmath "github.com/Faultbox/midgard-models/pkg/math"
	"github.com/Faultbox/midgard-models/pkg/mesh"
	"github.com/Faultbox/midgard-models/pkg/model"
	"github.com/Faultbox/midgard-models/pkg/rtexture"
)

// ErrNotSprite is returned by Finalize for models without *Data.
var ErrNotSprite = errors.New("not a sprite model")

// Orientation selects how a sprite quad is turned toward the viewer.
type Orientation int

const (
	// ParallelUpright faces the view plane but stays vertical.
	ParallelUpright Orientation = iota
	// FacingUpright turns toward the view origin, staying vertical.
	FacingUpright
	// Parallel faces the view plane.
	Parallel
	// Oriented uses the entity's own angles.
	Oriented
	// ParallelOriented faces the view plane, rolled by the entity.
	ParallelOriented
	// Label is drawn in screen space at a fixed pixel size.
	Label
	// LabelScale is a label that shrinks with distance.
	LabelScale
)

var orientationNames = [...]string{
	ParallelUpright:  "parallel_upright",
	FacingUpright:    "facing_upright",
	Parallel:         "parallel",
	Oriented:         "oriented",
	ParallelOriented: "parallel_oriented",
	Label:            "label",
	LabelScale:       "label_scale",
}

func (o Orientation) String() string {
	if o < 0 || int(o) >= len(orientationNames) {
		return fmt.Sprintf("orientation(%d)", int(o))
	}
	return orientationNames[o]
}

// Frame is one image of the sprite. The extents are measured from the
// sprite origin: Left and Down are usually negative.
type Frame struct {
	Name        string
	Left, Right float32
	Up, Down    float32
	Texture     *rtexture.Texture
}

// Data is the sprite-format sub-record.
type Data struct {
	Orientation Orientation
	Frames      []Frame
}

// Format implements model.FormatData.
func (d *Data) Format() model.Format {
	return model.FormatSprite
}

// Draw implements model.Drawer. Every weighted frame of the entity's
// blend becomes one quad, faded by its weight.
func (d *Data) Draw(ent *model.Entity, r model.Renderer) {
	for _, fl := range ent.Blend {
		if fl.Lerp <= 0 || fl.Frame < 0 || fl.Frame >= len(d.Frames) {
			continue
		}
		f := &d.Frames[fl.Frame]
		if f.Texture == nil {
			continue
		}
		r.DrawSprite(ent, model.SpriteQuad{
			Texture:     f.Texture,
			Orientation: int(d.Orientation),
			Left:        f.Left,
			Right:       f.Right,
			Up:          f.Up,
			Down:        f.Down,
			Alpha:       ent.Alpha * fl.Lerp,
		})
	}
}

// Validate checks the orientation and every frame's extents.
func (d *Data) Validate() error {
	if d.Orientation < 0 || int(d.Orientation) >= len(orientationNames) {
		return fmt.Errorf("%w: unknown sprite orientation %d", mesh.ErrContentIntegrity, int(d.Orientation))
	}
	if len(d.Frames) == 0 {
		return fmt.Errorf("%w: sprite has no frames", mesh.ErrContentIntegrity)
	}
	for i, f := range d.Frames {
		if f.Left > f.Right || f.Down > f.Up {
			return fmt.Errorf("%w: sprite frame %d has inverted extents", mesh.ErrContentIntegrity, i)
		}
	}
	return nil
}

// radius is the farthest frame corner from the origin.
func (d *Data) radius() float32 {
	var r2 float32
	for _, f := range d.Frames {
		w := max(f.Left*f.Left, f.Right*f.Right)
		h := max(f.Up*f.Up, f.Down*f.Down)
		r2 = max(r2, w+h)
	}
	return rmath.Sqrt32(r2)
}

// Finalize validates a loaded sprite and sets its bounds, frame count
// and animation scenes. Scenes the loader already built (frame groups)
// are kept but checked against the frame list.
func Finalize(m *model.Model, log *zap.Logger) error {
	log = logger.OrNop(log).With(zap.String("model", m.Name))

	d, ok := m.Data.(*Data)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotSprite, m)
	}
	if err := m.Validate(); err != nil {
		return err
	}
	if err := d.Validate(); err != nil {
		return fmt.Errorf("model %q: %w", m.Name, err)
	}

	if len(m.AnimScenes) == 0 {
		m.AnimScenes = make([]model.AnimScene, len(d.Frames))
		for i, f := range d.Frames {
			name := f.Name
			if name == "" {
				name = fmt.Sprintf("frame %d", i)
			}
			m.AnimScenes[i] = model.AnimScene{Name: name, FirstFrame: i, FrameCount: 1, Loop: true, FrameRate: 10}
		}
	}
	for i, s := range m.AnimScenes {
		if s.FirstFrame < 0 || s.FrameCount < 1 || s.FirstFrame+s.FrameCount > len(d.Frames) {
			return fmt.Errorf("%w: model %q scene %d (%s) is outside the %d frames",
				mesh.ErrContentIntegrity, m.Name, i, s.Name, len(d.Frames))
		}
	}
	m.NumFrames = len(m.AnimScenes)
	m.NumSkins = 1

	// Sprites turn freely, so every bound is the sphere around the origin.
	r := d.radius()
	m.SetBounds(mgl32.Vec3{-r, -r, -r}, mgl32.Vec3{r, r, r})

	log.Debug("Finalized sprite",
		zap.Stringer("orientation", d.Orientation),
		zap.Int("frames", len(d.Frames)),
		zap.Int("scenes", len(m.AnimScenes)),
		zap.Float32("radius", r))
	return nil
}
