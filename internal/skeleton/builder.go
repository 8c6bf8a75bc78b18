package skeleton

import "slices"

// Builder constructs bones on demand. Construct may be called for any id in
// any order, any number of times; each bone is allocated once and the result
// does not depend on the order of calls.
type Builder struct {
	joints []Joint
	bones  []*Bone
}

// NewBuilder validates joints and prepares an empty bone arena. The joint
// slice is copied; its Children fields are rebuilt during construction.
func NewBuilder(joints []Joint) (*Builder, error) {
	if err := Validate(joints); err != nil {
		return nil, err
	}
	own := make([]Joint, len(joints))
	for i, j := range joints {
		j.Children = nil
		own[i] = j
	}
	return &Builder{
		joints: own,
		bones:  make([]*Bone, len(own)),
	}, nil
}

// Construct ensures bone id and all of its ancestors exist. The root joint
// owns no bone, so Construct(0) is a no-op.
func (b *Builder) Construct(id int) error {
	if id < 0 || id >= len(b.joints) {
		return &IndexError{Bone: id, Count: len(b.joints) - 1}
	}

	// Walk up to the first ancestor that is already built (or the root),
	// then build back down so every parent precedes its children.
	var pending []int
	for n := id; n > 0 && b.bones[n] == nil; n = b.joints[n].Parent {
		pending = append(pending, n)
	}
	for i := len(pending) - 1; i >= 0; i-- {
		n := pending[i]
		j := b.joints[n]
		parent := b.joints[j.Parent]

		bone := newBone(j, parent, b.bones[j.Parent])
		b.bones[n] = bone

		b.joints[j.Parent].Children = insertSorted(b.joints[j.Parent].Children, n)
		if pb := b.bones[j.Parent]; pb != nil {
			pb.Children = insertSorted(pb.Children, n)
		}
	}
	return nil
}

// Built reports whether bone id has been constructed.
func (b *Builder) Built(id int) bool {
	return id > 0 && id < len(b.bones) && b.bones[id] != nil
}

// Skeleton constructs any remaining bones and hands the arena over to a
// Skeleton. The builder must not be used afterwards.
func (b *Builder) Skeleton() *Skeleton {
	for n := len(b.joints) - 1; n > 0; n-- {
		// Ids were validated in NewBuilder, so Construct cannot fail here.
		_ = b.Construct(n)
	}
	return newSkeleton(b.joints, b.bones)
}

// Build validates joints and constructs every bone.
func Build(joints []Joint) (*Skeleton, error) {
	b, err := NewBuilder(joints)
	if err != nil {
		return nil, err
	}
	return b.Skeleton(), nil
}

func insertSorted(s []int, v int) []int {
	i, found := slices.BinarySearch(s, v)
	if found {
		return s
	}
	return slices.Insert(s, i, v)
}
