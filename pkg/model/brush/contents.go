package brush

import "github.com/Faultbox/midgard-models/pkg/model"

// Q1 native contents.
const (
	ContentsEmpty = -1
	ContentsSolid = -2
	ContentsWater = -3
	ContentsSlime = -4
	ContentsLava  = -5
	ContentsSky   = -6
	// Currents are water that pushes.
	ContentsCurrent0    = -9
	ContentsCurrentDown = -14
)

// Q2/Q3 native contents bits.
const (
	Q3ContentsSolid       = 0x00000001
	Q3ContentsLava        = 0x00000008
	Q3ContentsSlime       = 0x00000010
	Q3ContentsWater       = 0x00000020
	Q3ContentsPlayerClip  = 0x00010000
	Q3ContentsMonsterClip = 0x00020000
	Q3ContentsDoNotEnter  = 0x00200000
	Q3ContentsBody        = 0x02000000
	Q3ContentsCorpse      = 0x04000000
	Q3ContentsNoDrop      = 0x80000000
)

// q3Map pairs native bits with super contents bits.
var q3Map = [...]struct{ native, super int }{
	{Q3ContentsSolid, model.SuperContentsSolid},
	{Q3ContentsLava, model.SuperContentsLava},
	{Q3ContentsSlime, model.SuperContentsSlime},
	{Q3ContentsWater, model.SuperContentsWater},
	{Q3ContentsPlayerClip, model.SuperContentsPlayerClip},
	{Q3ContentsMonsterClip, model.SuperContentsMonsterClip},
	{Q3ContentsDoNotEnter, model.SuperContentsDoNotEnter},
	{Q3ContentsBody, model.SuperContentsBody},
	{Q3ContentsCorpse, model.SuperContentsCorpse},
	{Q3ContentsNoDrop, model.SuperContentsNoDrop},
}

// SuperContentsFromNative implements model.ContentsMapper.
func (w *World) SuperContentsFromNative(native int) int {
	if w.Variant == VariantQ1 {
		return q1SuperContents(native)
	}
	super := 0
	for _, m := range q3Map {
		if native&m.native != 0 {
			super |= m.super
		}
	}
	return super
}

// NativeFromSuperContents implements model.ContentsMapper.
func (w *World) NativeFromSuperContents(super int) int {
	if w.Variant == VariantQ1 {
		return q1NativeContents(super)
	}
	native := 0
	for _, m := range q3Map {
		if super&m.super != 0 {
			native |= m.native
		}
	}
	return native
}

func q1SuperContents(native int) int {
	switch {
	case native == ContentsSolid:
		return model.SuperContentsSolid
	case native == ContentsWater:
		return model.SuperContentsWater
	case native == ContentsSlime:
		return model.SuperContentsSlime
	case native == ContentsLava:
		return model.SuperContentsLava | model.SuperContentsNoDrop
	case native == ContentsSky:
		return model.SuperContentsSky | model.SuperContentsNoDrop
	case native <= ContentsCurrent0 && native >= ContentsCurrentDown:
		return model.SuperContentsWater
	default:
		return 0
	}
}

func q1NativeContents(super int) int {
	switch {
	case super&model.SuperContentsSolid != 0:
		return ContentsSolid
	case super&model.SuperContentsSky != 0:
		return ContentsSky
	case super&model.SuperContentsLava != 0:
		return ContentsLava
	case super&model.SuperContentsSlime != 0:
		return ContentsSlime
	case super&model.SuperContentsWater != 0:
		return ContentsWater
	default:
		return ContentsEmpty
	}
}
