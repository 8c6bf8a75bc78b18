package batch

import (
	"pmd-rigview/internal/linemesh"
	"pmd-rigview/internal/skeleton"
)

// Overlay options.
type Overlay struct {
	Selected   int // bone id, 0 for none
	PickRadius float64
	FrameScale float64 // gizmo axis length; 0 uses the selected bone's length / 2
	Axes       float64 // world axes length; 0 hides them
}

// BuildOverlay draws the skeleton and, for the selected bone, its pick
// cylinder and coordinate frame.
func BuildOverlay(sk *skeleton.Skeleton, o Overlay) (*linemesh.Builder, error) {
	b := &linemesh.Builder{}
	if o.Axes > 0 {
		b.AddAxes(o.Axes)
	}
	b.AddSkeleton(sk, linemesh.ColorBone)
	if o.Selected == 0 {
		return b, nil
	}

	bone, err := sk.Bone(o.Selected)
	if err != nil {
		return nil, err
	}
	if _, err := b.AddBone(sk, o.Selected, linemesh.ColorSelected); err != nil {
		return nil, err
	}
	if _, err := b.AddCylinder(sk, o.Selected, o.PickRadius, 4, 16, linemesh.ColorCylinder); err != nil {
		return nil, err
	}
	scale := o.FrameScale
	if scale <= 0 {
		scale = bone.Length / 2
	}
	if _, err := b.AddCoordinateFrame(sk, o.Selected, scale); err != nil {
		return nil, err
	}
	return b, nil
}
