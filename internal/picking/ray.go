// Package picking selects bones under a world-space ray. Each bone is
// treated as a capped cylinder around its local x axis, from 0 to its length.
package picking

import (
	"math"

	"pmd-rigview/internal/mathutil"
)

// RayEpsilon rejects hits at (or behind) the ray origin.
const RayEpsilon = 1e-6

// Ray is a half-line Origin + t·Direction, t > 0. Direction need not be
// unit length; Pick normalizes it.
type Ray struct {
	Origin    mathutil.Vec3
	Direction mathutil.Vec3
}

// At returns the point at parameter t.
func (r Ray) At(t float64) mathutil.Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// Transform maps the ray through m. For rigid m the parameter t of any
// point is unchanged.
func (r Ray) Transform(m mathutil.Mat4) Ray {
	return Ray{Origin: m.MulPoint(r.Origin), Direction: m.MulDir(r.Direction)}
}

// IntersectCylinder intersects r, given in the cylinder's local frame, with
// the closed cylinder of the given radius running along +x from 0 to length.
// It returns the nearest parameter above RayEpsilon.
func IntersectCylinder(r Ray, radius, length float64) (float64, bool) {
	best := math.Inf(1)
	if t, ok := intersectCaps(r, radius, length); ok {
		best = t
	}
	if t, ok := intersectSide(r, radius, length); ok && t < best {
		best = t
	}
	return best, !math.IsInf(best, 1)
}

// intersectCaps tests the two end disks at x=0 and x=length.
func intersectCaps(r Ray, radius, length float64) (float64, bool) {
	dx := r.Direction[0]
	if dx == 0 {
		return 0, false
	}
	r2 := radius * radius
	best := math.Inf(1)
	for _, plane := range [2]float64{0, length} {
		t := (plane - r.Origin[0]) / dx
		if t <= RayEpsilon || t >= best {
			continue
		}
		p := r.At(t)
		if p[1]*p[1]+p[2]*p[2] <= r2 {
			best = t
		}
	}
	return best, !math.IsInf(best, 1)
}

// intersectSide tests the lateral surface y²+z² = radius², keeping roots
// whose x lies within [0, length].
func intersectSide(r Ray, radius, length float64) (float64, bool) {
	oy, oz := r.Origin[1], r.Origin[2]
	dy, dz := r.Direction[1], r.Direction[2]

	a := dy*dy + dz*dz
	if a == 0 {
		// Parallel to the axis: the side is never crossed.
		return 0, false
	}
	b := 2 * (oy*dy + oz*dz)
	c := oy*oy + oz*oz - radius*radius

	disc := b*b - 4*a*c
	if disc < 0 {
		return 0, false
	}
	sq := math.Sqrt(disc)

	for _, t := range [2]float64{(-b - sq) / (2 * a), (-b + sq) / (2 * a)} {
		if t <= RayEpsilon {
			continue
		}
		if x := r.Origin[0] + t*r.Direction[0]; x >= 0 && x <= length {
			return t, true
		}
	}
	return 0, false
}
