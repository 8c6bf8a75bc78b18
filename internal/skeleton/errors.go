package skeleton

import (
	"errors"
	"fmt"

	"pmd-rigview/internal/mathutil"
)

// Sentinel errors. Every typed error below unwraps to one of these.
var (
	// ErrStructure marks a joint list that breaks root uniqueness or
	// parent-before-child ordering.
	ErrStructure = errors.New("skeleton: invalid joint structure")

	// ErrDegenerateBone marks a non-root joint whose offset is zero-length
	// or not finite.
	ErrDegenerateBone = errors.New("skeleton: degenerate bone")

	// ErrIndex marks a bone id outside [1, BoneCount].
	ErrIndex = errors.New("skeleton: bone index out of range")

	// ErrNotRigid marks a pose matrix that is not a proper rotation, or a
	// pose translation that is not finite.
	ErrNotRigid = errors.New("skeleton: pose is not rigid")
)

// StructureError reports which joint broke the hierarchy invariants.
type StructureError struct {
	Joint  int
	Parent int
	Reason string
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("skeleton: joint %d (parent %d): %s", e.Joint, e.Parent, e.Reason)
}

func (e *StructureError) Unwrap() error { return ErrStructure }

// DegenerateBoneError reports a joint whose offset has no direction.
type DegenerateBoneError struct {
	Joint  int
	Offset mathutil.Vec3
	Length float64
}

func (e *DegenerateBoneError) Error() string {
	if !e.Offset.IsFinite() {
		return fmt.Sprintf("skeleton: joint %d has non-finite offset %v", e.Joint, e.Offset)
	}
	return fmt.Sprintf("skeleton: joint %d has zero-length offset (%g)", e.Joint, e.Length)
}

func (e *DegenerateBoneError) Unwrap() error { return ErrDegenerateBone }

// IndexError reports an out-of-range bone id.
type IndexError struct {
	Bone  int
	Count int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("skeleton: bone %d out of range [1, %d]", e.Bone, e.Count)
}

func (e *IndexError) Unwrap() error { return ErrIndex }
