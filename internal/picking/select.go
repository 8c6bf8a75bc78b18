package picking

import (
	"math"

	"pmd-rigview/internal/mathutil"
	"pmd-rigview/internal/skeleton"
)

// TieTolerance is the world distance under which two hits count as equal;
// the lower bone id wins a tie.
const TieTolerance = 1e-9

// Hit describes the bone nearest along a ray.
type Hit struct {
	Bone  int
	T     float64 // world distance from the ray origin
	Point mathutil.Vec3 // world-space hit point
}

// Pick tests r against every bone of sk, each modelled as a capped cylinder
// of the given radius, and returns the nearest hit. The direction is
// normalized first, so the result does not depend on its length. A zero or
// non-finite direction hits nothing.
func Pick(sk *skeleton.Skeleton, r Ray, radius float64) (Hit, bool) {
	l := r.Direction.Len()
	if !(l > 0) || math.IsInf(l, 0) {
		return Hit{}, false
	}
	r.Direction = r.Direction.Scale(1 / l)

	worlds := sk.WorldTransforms()
	best := Hit{Bone: -1, T: math.Inf(1)}

	for id := 1; id <= sk.BoneCount(); id++ {
		b, err := sk.Bone(id)
		if err != nil {
			continue
		}
		local := r.Transform(worlds[id].RigidInverse())
		t, ok := IntersectCylinder(local, radius, b.Length)
		if !ok {
			continue
		}
		// Ascending ids: a later bone must be strictly nearer to win.
		if t < best.T-TieTolerance {
			best = Hit{Bone: id, T: t}
		}
	}

	if best.Bone < 0 {
		return Hit{}, false
	}
	best.Point = r.At(best.T)
	return best, true
}

// SelectBone returns the id of the nearest bone hit by the ray from origin
// along direction, or ok=false when the ray misses every bone.
func SelectBone(sk *skeleton.Skeleton, origin, direction mathutil.Vec3, radius float64) (id int, ok bool) {
	h, ok := Pick(sk, Ray{Origin: origin, Direction: direction}, radius)
	if !ok {
		return 0, false
	}
	return h.Bone, true
}
