package model

import "github.com/Faultbox/midgard-models/pkg/rtexture"

// Texture is a material as the model runtime sees it: the skin layers it
// binds plus the flags that route it to the sky, lit or shadow passes.
type Texture struct {
	Name   string
	Width  int
	Height int

	// MaterialFlags is a combination of the Material* constants.
	MaterialFlags int

	// Q3 shader data.
	SurfaceFlags  int
	SuperContents int
	SurfaceParms  int
	TextureFlags  int

	Skin rtexture.SkinFrame

	// AnimFrames holds the primary and alternate animation sequences,
	// each starting with the texture itself when animated.
	AnimFrames [2][]*Texture

	Colormapping  bool
	SpecularScale float32
	SpecularPower float32
}

// Animated reports whether the texture has a frame sequence or an
// alternate set.
func (t *Texture) Animated() bool {
	return len(t.AnimFrames[0]) > 1 || len(t.AnimFrames[1]) > 0
}

// Frame picks the animation frame for time (seconds) at 5 frames per
// second. alternate selects the second sequence when present.
func (t *Texture) Frame(alternate bool, time float64) *Texture {
	seq := t.AnimFrames[0]
	if alternate && len(t.AnimFrames[1]) > 0 {
		seq = t.AnimFrames[1]
	}
	if len(seq) == 0 {
		return t
	}
	n := int(time*5) % len(seq)
	if n < 0 {
		n += len(seq)
	}
	return seq[n]
}

// Has reports whether every flag in mask is set.
func (t *Texture) Has(mask int) bool {
	return t != nil && t.MaterialFlags&mask == mask
}

// CastsShadow reports whether surfaces using t belong in the shadow mesh.
func (t *Texture) CastsShadow() bool {
	if t == nil {
		return false
	}
	return t.MaterialFlags&(MaterialSky|MaterialNoDraw|MaterialNoShadow|MaterialTransparent) == 0
}
