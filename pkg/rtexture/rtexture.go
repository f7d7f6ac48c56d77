// Package rtexture defines the opaque texture handles the model runtime
// stores by reference. Pixel data and GPU residency belong to the texture
// subsystem; the runtime only compares handles by identity.
package rtexture

// Texture is a handle owned by the texture subsystem.
type Texture struct {
	Name   string
	Width  int
	Height int
	// Native is whatever the backend attached (a GL name, a descriptor...).
	Native any
}

// New returns a handle with the given name and size.
func New(name string, width, height int) *Texture {
	return &Texture{Name: name, Width: width, Height: height}
}

// String returns the texture name, or "<nil>".
func (t *Texture) String() string {
	if t == nil {
		return "<nil>"
	}
	return t.Name
}

// SkinFrame is the set of layers a material can bind. Any layer may be nil.
type SkinFrame struct {
	Stain  *Texture // inverse modulate with background (decals)
	Merged *Texture // original texture without glow
	Base   *Texture // without pants/shirt/glow
	Pants  *Texture
	Shirt  *Texture
	NMap   *Texture // normal map
	Gloss  *Texture
	Glow   *Texture // fullbrights
	Fog    *Texture // alpha of the base texture when not opaque
}
