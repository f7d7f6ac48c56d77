package model

// Format tags which sub-record a Model carries.
type Format int

const (
	FormatInvalid Format = iota
	FormatBrushQ1
	FormatSprite
	FormatAlias
	FormatBrushQ2
	FormatBrushQ3
)

func (f Format) String() string {
	switch f {
	case FormatBrushQ1:
		return "brushq1"
	case FormatSprite:
		return "sprite"
	case FormatAlias:
		return "alias"
	case FormatBrushQ2:
		return "brushq2"
	case FormatBrushQ3:
		return "brushq3"
	default:
		return "invalid"
	}
}

// IsBrush reports whether f is one of the BSP world formats.
func (f Format) IsBrush() bool {
	return f == FormatBrushQ1 || f == FormatBrushQ2 || f == FormatBrushQ3
}

// FormatData is the format-specific sub-record of a Model. Exactly one
// implementation is attached per model and its Format must match the
// model's Type.
type FormatData interface {
	Format() Format
}

// SyncType controls whether animated frame groups start in step.
type SyncType int

const (
	SyncSync SyncType = iota
	SyncRand
)

// AnimScene is a named frame range.
type AnimScene struct {
	Name       string
	FirstFrame int
	FrameCount int
	Loop       bool
	FrameRate  float32
}

// Frame returns the frame of the scene to show at time t (seconds).
func (s *AnimScene) Frame(t float64) int {
	if s.FrameCount <= 1 || s.FrameRate <= 0 {
		return s.FirstFrame
	}
	n := int(t * float64(s.FrameRate))
	if s.Loop {
		n %= s.FrameCount
		if n < 0 {
			n += s.FrameCount
		}
	} else if n >= s.FrameCount {
		n = s.FrameCount - 1
	} else if n < 0 {
		n = 0
	}
	return s.FirstFrame + n
}
