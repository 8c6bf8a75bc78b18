package skeleton

import "pmd-rigview/internal/mathutil"

// RotationTolerance bounds how far a pose matrix may drift from orthonormal.
const RotationTolerance = 1e-6

func isRotation(r mathutil.Mat3) bool {
	return r.IsOrthonormal(RotationTolerance) && r.Det() > 0
}

// RelativeRotation returns the current rotation of bone id against its
// parent bone's frame.
func (s *Skeleton) RelativeRotation(id int) (mathutil.Mat3, error) {
	if err := s.check(id); err != nil {
		return mathutil.Mat3{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bones[id].relative, nil
}

// LocalTranslation returns the current offset of bone id's origin in its
// parent bone's frame.
func (s *Skeleton) LocalTranslation(id int) (mathutil.Vec3, error) {
	if err := s.check(id); err != nil {
		return mathutil.Vec3{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bones[id].translation, nil
}

// SetRelativeRotation replaces the pose rotation of bone id. It returns
// ErrNotRigid unless r is orthonormal with determinant +1.
func (s *Skeleton) SetRelativeRotation(id int, r mathutil.Mat3) error {
	if !isRotation(r) {
		return ErrNotRigid
	}
	return s.update(id, func(b *Bone) { b.relative = r })
}

// SetLocalTranslation replaces the pose translation of bone id.
func (s *Skeleton) SetLocalTranslation(id int, t mathutil.Vec3) error {
	if !t.IsFinite() {
		return ErrNotRigid
	}
	return s.update(id, func(b *Bone) { b.translation = t })
}

// RotateLocal post-multiplies the pose rotation of bone id by r, i.e. rotates
// the bone about axes of its own frame.
func (s *Skeleton) RotateLocal(id int, r mathutil.Mat3) error {
	if !isRotation(r) {
		return ErrNotRigid
	}
	return s.update(id, func(b *Bone) { b.relative = mathutil.Mat3Mul(b.relative, r) })
}

// Roll spins bone id about its own long axis by angle radians.
func (s *Skeleton) Roll(id int, angle float64) error {
	return s.RotateLocal(id, mathutil.RotX(angle))
}

// ResetPose restores the bind pose of every bone.
func (s *Skeleton) ResetPose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.bones[1:] {
		b.relative = b.BindRotation
		b.translation = b.BindTranslation
	}
	s.gen++
	clear(s.world)
}

func (s *Skeleton) update(id int, fn func(*Bone)) error {
	if err := s.check(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.bones[id])
	s.gen++
	s.invalidateLocked(id)
	return nil
}

// invalidateLocked drops cached world transforms for id and its subtree.
// Siblings and ancestors keep theirs.
func (s *Skeleton) invalidateLocked(id int) {
	stack := []int{id}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		s.world[n] = cachedWorld{}
		stack = append(stack, s.bones[n].Children...)
	}
}

// Cached reports whether bone id currently has a cached world transform.
func (s *Skeleton) Cached(id int) bool {
	if s.check(id) != nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.world[id].ok
}
