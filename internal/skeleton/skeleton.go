package skeleton

import (
	"sync"

	"pmd-rigview/internal/mathutil"
)

// Skeleton owns the joint list and the bone arena. Linkage never changes
// after Build; pose fields and the world-transform cache are guarded by mu.
type Skeleton struct {
	joints []Joint
	bones  []*Bone // indexed by joint id, slot 0 is nil

	mu    sync.RWMutex
	gen   uint64 // bumped on every pose write
	world []cachedWorld
}

type cachedWorld struct {
	m  mathutil.Mat4
	ok bool
}

func newSkeleton(joints []Joint, bones []*Bone) *Skeleton {
	return &Skeleton{
		joints: joints,
		bones:  bones,
		world:  make([]cachedWorld, len(bones)),
	}
}

// BoneCount returns the number of bones: one per non-root joint.
func (s *Skeleton) BoneCount() int {
	return len(s.joints) - 1
}

// Joints returns the joint list with Children populated. Callers must not
// modify it.
func (s *Skeleton) Joints() []Joint {
	return s.joints
}

// Joint returns joint id, including the root.
func (s *Skeleton) Joint(id int) (Joint, bool) {
	if id < 0 || id >= len(s.joints) {
		return Joint{}, false
	}
	return s.joints[id], true
}

// Root returns the root joint.
func (s *Skeleton) Root() Joint {
	return s.joints[0]
}

// Bone returns the bone with the given id.
func (s *Skeleton) Bone(id int) (*Bone, error) {
	if err := s.check(id); err != nil {
		return nil, err
	}
	return s.bones[id], nil
}

// RootBones returns the ids of bones attached directly to the root joint.
func (s *Skeleton) RootBones() []int {
	return s.joints[0].Children
}

func (s *Skeleton) check(id int) error {
	if id < 1 || id > s.BoneCount() {
		return &IndexError{Bone: id, Count: s.BoneCount()}
	}
	return nil
}

// WorldTransform returns parentWorld · T · R for bone id, or T · R for a bone
// attached to the root joint.
func (s *Skeleton) WorldTransform(id int) (mathutil.Mat4, error) {
	if err := s.check(id); err != nil {
		return mathutil.Mat4{}, err
	}

	// Fast path: read lock
	s.mu.RLock()
	if e := s.world[id]; e.ok {
		s.mu.RUnlock()
		return e.m, nil
	}
	gen := s.gen
	path, mats := s.composeLocked(id)
	s.mu.RUnlock()

	// Publish only if no pose write happened in between.
	s.mu.Lock()
	if s.gen == gen {
		for i, n := range path {
			s.world[n] = cachedWorld{m: mats[i], ok: true}
		}
	}
	s.mu.Unlock()

	return mats[0], nil
}

// composeLocked computes world transforms for id and every uncached
// ancestor. path[0] is id; mats[i] is the world transform of path[i].
func (s *Skeleton) composeLocked(id int) ([]int, []mathutil.Mat4) {
	var path []int
	base := mathutil.Mat4Identity()
	for n := id; n > 0; n = s.bones[n].Parent {
		if e := s.world[n]; e.ok {
			base = e.m
			break
		}
		path = append(path, n)
	}

	mats := make([]mathutil.Mat4, len(path))
	for i := len(path) - 1; i >= 0; i-- {
		base = mathutil.Mat4Mul(base, s.bones[path[i]].local())
		mats[i] = base
	}
	return path, mats
}

// WorldTransforms returns every bone's world transform from one consistent
// pose. Slot 0 is the identity.
func (s *Skeleton) WorldTransforms() []mathutil.Mat4 {
	out := make([]mathutil.Mat4, len(s.bones))
	out[0] = mathutil.Mat4Identity()

	s.mu.RLock()
	defer s.mu.RUnlock()
	// Parent ids are always smaller, so one ascending pass sees parents first.
	for n := 1; n < len(s.bones); n++ {
		b := s.bones[n]
		if b.IsRootAttached() {
			out[n] = b.local()
		} else {
			out[n] = mathutil.Mat4Mul(out[b.Parent], b.local())
		}
	}
	return out
}

// WorldStartPoint returns world · (0,0,0,1).
func (s *Skeleton) WorldStartPoint(id int) (mathutil.Vec3, error) {
	w, err := s.WorldTransform(id)
	if err != nil {
		return mathutil.Vec3{}, err
	}
	return w.MulPoint(mathutil.Vec3{}), nil
}

// WorldEndPoint returns world · (length,0,0,1).
func (s *Skeleton) WorldEndPoint(id int) (mathutil.Vec3, error) {
	w, err := s.WorldTransform(id)
	if err != nil {
		return mathutil.Vec3{}, err
	}
	return w.MulPoint(mathutil.Vec3{s.bones[id].Length, 0, 0}), nil
}

// Segment returns both world end points of bone id.
func (s *Skeleton) Segment(id int) (start, end mathutil.Vec3, err error) {
	w, err := s.WorldTransform(id)
	if err != nil {
		return start, end, err
	}
	return w.MulPoint(mathutil.Vec3{}), w.MulPoint(mathutil.Vec3{s.bones[id].Length, 0, 0}), nil
}
