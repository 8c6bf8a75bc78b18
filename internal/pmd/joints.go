package pmd

import (
	"fmt"

	"pmd-rigview/internal/mathutil"
	"pmd-rigview/internal/skeleton"
)

// CoincidentTolerance is the distance under which a bone is considered to
// sit on its parent.
const CoincidentTolerance = 1e-5

// JointOptions controls how the bone table becomes a joint list.
type JointOptions struct {
	// CollapseCoincident folds bones that sit on their parent into the
	// parent's joint. Without it such bones fail skeleton.Build as
	// degenerate.
	CollapseCoincident bool
}

// JointMap is the result of Joints.
type JointMap struct {
	Joints []skeleton.Joint
	// JointOf maps a PMD bone index to its joint id. Collapsed bones share
	// their parent's joint.
	JointOf []int
}

// Joints converts the bone table into a joint list Build accepts. Joint 0 is
// a synthetic root at the model origin; every PMD bone with no parent hangs
// off it. Ids are assigned depth first, so parents precede children, and
// siblings keep their table order. Offsets are positions minus the parent
// position.
func Joints(m *Model, opts JointOptions) (JointMap, error) {
	n := len(m.Bones)
	children := make([][]int, n)
	var roots []int
	for i, b := range m.Bones {
		switch {
		case b.Parent == NoBone:
			roots = append(roots, i)
		case b.Parent < 0 || b.Parent >= n || b.Parent == i:
			return JointMap{}, fmt.Errorf("pmd: bone %d (%s): invalid parent %d", i, b.Name, b.Parent)
		default:
			children[b.Parent] = append(children[b.Parent], i)
		}
	}

	out := JointMap{
		Joints:  []skeleton.Joint{{ID: 0, Parent: skeleton.RootParent, Name: "root"}},
		JointOf: make([]int, n),
	}
	for i := range out.JointOf {
		out.JointOf[i] = -1
	}

	type item struct{ bone, parentJoint int }
	stack := make([]item, 0, n)
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, item{roots[i], 0})
	}

	jointPos := []mathutil.Vec3{{}}
	visited := 0
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		visited++

		b := m.Bones[it.bone]
		pos := vec(b.Position)
		// Measured from the joint actually used, which differs from the PMD
		// parent when that parent was collapsed.
		offset := pos.Sub(jointPos[it.parentJoint])

		id := it.parentJoint
		if !opts.CollapseCoincident || offset.Len() > CoincidentTolerance {
			id = len(out.Joints)
			out.Joints = append(out.Joints, skeleton.Joint{
				ID:     id,
				Parent: it.parentJoint,
				Offset: offset,
				Name:   b.Name,
			})
			jointPos = append(jointPos, pos)
		}
		out.JointOf[it.bone] = id

		kids := children[it.bone]
		for k := len(kids) - 1; k >= 0; k-- {
			stack = append(stack, item{kids[k], id})
		}
	}

	if visited != n {
		for i, j := range out.JointOf {
			if j < 0 {
				return JointMap{}, fmt.Errorf("pmd: bone %d (%s) is not reachable from a root (parent cycle)",
					i, m.Bones[i].Name)
			}
		}
	}
	return out, nil
}

func vec(v [3]float32) mathutil.Vec3 {
	return mathutil.Vec3{float64(v[0]), float64(v[1]), float64(v[2])}
}
