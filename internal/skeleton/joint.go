package skeleton

import "pmd-rigview/internal/mathutil"

// RootParent is the parent id carried by the root joint.
const RootParent = -1

// Joint is one node of the input hierarchy. Offset is the position of the
// joint relative to its parent joint. Children is filled in by the builder.
type Joint struct {
	ID       int
	Parent   int
	Offset   mathutil.Vec3
	Name     string
	Children []int
}

// IsRoot reports whether j has no parent.
func (j Joint) IsRoot() bool {
	return j.Parent == RootParent
}

// Validate checks the invariants Build relies on: joint 0 is the only root,
// ids are dense and ascending, every parent id is smaller than its child's,
// every offset is finite, and every non-root offset has a direction.
func Validate(joints []Joint) error {
	if len(joints) == 0 {
		return &StructureError{Joint: -1, Parent: RootParent, Reason: "empty joint list"}
	}
	for i, j := range joints {
		if j.ID != i {
			return &StructureError{Joint: j.ID, Parent: j.Parent,
				Reason: "joint ids must be dense and ascending from 0"}
		}
		if i == 0 {
			if !j.IsRoot() {
				return &StructureError{Joint: 0, Parent: j.Parent, Reason: "joint 0 must be the root"}
			}
			if !j.Offset.IsFinite() {
				return &StructureError{Joint: 0, Parent: j.Parent, Reason: "root offset is not finite"}
			}
			continue
		}
		if j.IsRoot() {
			return &StructureError{Joint: i, Parent: j.Parent, Reason: "more than one root"}
		}
		if j.Parent < 0 || j.Parent >= i {
			return &StructureError{Joint: i, Parent: j.Parent, Reason: "parent must precede child"}
		}
		if l := j.Offset.Len(); !j.Offset.IsFinite() || l < mathutil.Epsilon {
			return &DegenerateBoneError{Joint: i, Offset: j.Offset, Length: l}
		}
	}
	return nil
}
