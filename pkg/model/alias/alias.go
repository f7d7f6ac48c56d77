// Package alias implements animated character models: morph-target
// meshes with per-frame vertex snapshots and skeletal meshes blended
// from bone poses. Both share tags for attachments and per-skin texture
// and tag name overrides.
package alias

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/midgard-models/pkg/mesh"
	"github.com/Faultbox/midgard-models/pkg/model"
)

var (
	// ErrNoTags is returned for tag queries on a model without tags or bones.
	ErrNoTags = errors.New("model has no tags")
	// ErrTagIndex is returned for an out of range tag.
	ErrTagIndex = errors.New("tag index out of range")
	// ErrNotAlias is returned by Finalize for models without *Data.
	ErrNotAlias = errors.New("not an alias model")
)

// Bone is one joint of a skeleton. Parents always precede children.
type Bone struct {
	Name   string
	Parent int
}

// Data is the alias-format sub-record.
type Data struct {
	// SurfaceNames name the meshes; skin files match them.
	SurfaceNames []string

	// TagNames holds one name per tag; Tags is indexed by
	// frame*len(TagNames)+tag.
	TagNames  []string
	TagFrames int
	Tags      []mgl32.Mat4

	// Skeletal data. Poses is indexed by pose*len(Bones)+bone and holds
	// each bone relative to its parent.
	Bones               []Bone
	NumPoses            int
	Poses               []mgl32.Mat4
	BaseBonePoseInverse []mgl32.Mat4

	// OverrideTagNames replaces TagNames for a skin.
	OverrideTagNames [][]string
	// SkinTextures overrides surface textures per skin; nil entries keep
	// the surface's own texture.
	SkinTextures [][]*model.Texture

	// ShadowCaster is set once the mesh has adjacency for shadow volumes.
	ShadowCaster bool
}

// Format implements model.FormatData.
func (d *Data) Format() model.Format {
	return model.FormatAlias
}

// Supports implements model.SlotFilter.
func (d *Data) Supports(s model.Slot) bool {
	if s == model.SlotDrawShadowVolume {
		return d.ShadowCaster
	}
	return true
}

// IsSkeletal reports whether the model animates through bones.
func (d *Data) IsSkeletal() bool {
	return len(d.Bones) > 0
}

// Validate checks the tag and skeleton tables against b.
func (d *Data) Validate(b *mesh.Buffer) error {
	if len(d.Tags) != d.TagFrames*len(d.TagNames) {
		return fmt.Errorf("%w: %d tag matrices for %d frames of %d tags",
			mesh.ErrContentIntegrity, len(d.Tags), d.TagFrames, len(d.TagNames))
	}
	for i, bone := range d.Bones {
		if bone.Parent >= i || bone.Parent < -1 {
			return fmt.Errorf("%w: bone %d (%s) has parent %d", mesh.ErrContentIntegrity, i, bone.Name, bone.Parent)
		}
	}
	if len(d.Poses) != d.NumPoses*len(d.Bones) {
		return fmt.Errorf("%w: %d pose matrices for %d poses of %d bones",
			mesh.ErrContentIntegrity, len(d.Poses), d.NumPoses, len(d.Bones))
	}
	if d.IsSkeletal() {
		if len(d.BaseBonePoseInverse) != len(d.Bones) {
			return fmt.Errorf("%w: base pose has %d bones, skeleton %d",
				mesh.ErrContentIntegrity, len(d.BaseBonePoseInverse), len(d.Bones))
		}
		if b != nil {
			for v, idx := range b.WeightIndices {
				for k, bone := range idx {
					if b.WeightInfluences[v][k] != 0 && (bone < 0 || int(bone) >= len(d.Bones)) {
						return fmt.Errorf("%w: vertex %d weights bone %d", mesh.ErrContentIntegrity, v, bone)
					}
				}
			}
		}
	}
	return nil
}

// surfaceTexture returns the texture surface i is drawn with for skin.
func (d *Data) surfaceTexture(m *model.Model, skin, i int, time float64) *model.Texture {
	if skin >= 0 && skin < len(m.SkinScenes) {
		skin = m.SkinScenes[skin].Frame(time)
	}
	if skin >= 0 && skin < len(d.SkinTextures) && i < len(d.SkinTextures[skin]) {
		if t := d.SkinTextures[skin][i]; t != nil {
			return t
		}
	}
	return m.Surfaces[i].Texture
}
