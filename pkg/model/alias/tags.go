package alias

import (
	"github.com/go-gl/mathgl/mgl32"
)

// GetTagMatrix returns the model-space matrix of a tag at poseFrame.
// Skeletal models use their bones as tags. Frames past the end clamp to
// the last frame.
func (d *Data) GetTagMatrix(poseFrame, tag int) (mgl32.Mat4, error) {
	if d.IsSkeletal() {
		if tag < 0 || tag >= len(d.Bones) {
			return mgl32.Ident4(), ErrTagIndex
		}
		if d.NumPoses == 0 {
			return mgl32.Ident4(), nil
		}
		poseFrame = clampFrame(poseFrame, d.NumPoses)
		m := d.Poses[poseFrame*len(d.Bones)+tag]
		for p := d.Bones[tag].Parent; p >= 0; p = d.Bones[p].Parent {
			m = d.Poses[poseFrame*len(d.Bones)+p].Mul4(m)
		}
		return m, nil
	}

	if len(d.TagNames) == 0 || d.TagFrames == 0 {
		return mgl32.Ident4(), ErrNoTags
	}
	if tag < 0 || tag >= len(d.TagNames) {
		return mgl32.Ident4(), ErrTagIndex
	}
	poseFrame = clampFrame(poseFrame, d.TagFrames)
	return d.Tags[poseFrame*len(d.TagNames)+tag], nil
}

// GetTagIndexForName looks name up in the skin's override tag names,
// then in the model's own tags or bones.
func (d *Data) GetTagIndexForName(skin int, name string) (int, bool) {
	if skin >= 0 && skin < len(d.OverrideTagNames) {
		for i, n := range d.OverrideTagNames[skin] {
			if n == name {
				return i, true
			}
		}
	}
	if d.IsSkeletal() {
		for i, b := range d.Bones {
			if b.Name == name {
				return i, true
			}
		}
		return -1, false
	}
	for i, n := range d.TagNames {
		if n == name {
			return i, true
		}
	}
	return -1, false
}

func clampFrame(frame, n int) int {
	if frame < 0 {
		return 0
	}
	if frame >= n {
		return n - 1
	}
	return frame
}
