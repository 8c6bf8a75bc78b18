package skeleton

import "pmd-rigview/internal/mathutil"

// Bone is the segment from a joint's parent to the joint. Its id is the
// joint id. Everything exported here is fixed at build time; the pose
// (relative rotation and translation) lives behind the Skeleton's lock.
type Bone struct {
	ID       int
	Name     string
	Parent   int   // parent bone id, 0 when attached to the root joint
	Children []int // child bone ids, ascending
	Length   float64

	Tangent  mathutil.Vec3
	Normal   mathutil.Vec3
	Binormal mathutil.Vec3

	// AbsoluteRotation has columns [Tangent Normal Binormal]: the segment's
	// orientation against the root frame, independent of ancestry.
	AbsoluteRotation mathutil.Mat3

	// BindRotation and BindTranslation are the pose computed at build time.
	BindRotation    mathutil.Mat3
	BindTranslation mathutil.Vec3

	relative    mathutil.Mat3
	translation mathutil.Vec3
}

// IsRootAttached reports whether the bone starts at the root joint.
func (b *Bone) IsRootAttached() bool {
	return b.Parent == 0
}

// Frame returns the orthonormal basis for a bone pointing along offset.
// The auxiliary axis is the world axis least aligned with the tangent, which
// keeps the cross product away from zero for any direction.
func Frame(offset mathutil.Vec3) (tangent, normal, binormal mathutil.Vec3) {
	tangent = offset.Normalize()
	aux := mathutil.Axis(tangent.MinAbsAxis())
	normal = tangent.Cross(aux).Normalize()
	binormal = tangent.Cross(normal).Normalize()
	return tangent, normal, binormal
}

// newBone computes the frame and bind pose for joint j. parentJoint is j's
// parent; parentBone is nil when parentJoint is the root.
func newBone(j, parentJoint Joint, parentBone *Bone) *Bone {
	t, n, bn := Frame(j.Offset)
	abs := mathutil.Mat3FromColumns(t, n, bn)

	b := &Bone{
		ID:               j.ID,
		Name:             j.Name,
		Parent:           j.Parent,
		Length:           j.Offset.Len(),
		Tangent:          t,
		Normal:           n,
		Binormal:         bn,
		AbsoluteRotation: abs,
	}

	if parentBone == nil {
		b.BindRotation = abs
		b.BindTranslation = parentJoint.Offset
	} else {
		toParent := parentBone.AbsoluteRotation.Transpose()
		b.BindRotation = mathutil.Mat3Mul(toParent, abs)
		b.BindTranslation = toParent.MulVec3(parentJoint.Offset)
	}

	b.relative = b.BindRotation
	b.translation = b.BindTranslation
	return b
}

// local returns T · R for the current pose. Callers hold the skeleton lock.
func (b *Bone) local() mathutil.Mat4 {
	return mathutil.Mat4Chain(mathutil.Translation(b.translation), mathutil.Rotation(b.relative))
}
