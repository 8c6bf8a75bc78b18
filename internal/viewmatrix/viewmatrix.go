package viewmatrix

import (
	"fmt"
	"math"

	"pmd-rigview/internal/mathutil"
)

// DefaultFOV is the vertical field of view in degrees.
const DefaultFOV = 45.0

// maxPitch keeps the eye off the poles, where the +y up vector degenerates.
const maxPitch = 89.0

// Camera orbits Target at Distance. Yaw spins about world +y, pitch raises
// the eye toward +y; both are degrees. Yaw 0, pitch 0 looks down -z.
type Camera struct {
	Target   mathutil.Vec3
	Distance float64
	Yaw      float64
	Pitch    float64

	FOV       float64 // vertical, degrees
	Near, Far float64
	Width     int
	Height    int
}

// Default returns a camera 5 units in front of the origin.
func Default(width, height int) Camera {
	return Camera{
		Distance: 5,
		FOV:      DefaultFOV,
		Near:     0.1,
		Far:      1000,
		Width:    width,
		Height:   height,
	}
}

// Fit aims the camera at a bounding sphere so that it fills the vertical
// field of view.
func (c Camera) Fit(center mathutil.Vec3, radius float64) Camera {
	if radius < 0.001 {
		radius = 0.001
	}
	halfFOV := mathutil.Deg2Rad(c.fov() / 2)
	c.Target = center
	c.Distance = radius / math.Sin(halfFOV)
	if c.Near <= 0 || c.Near > c.Distance-radius {
		c.Near = math.Max((c.Distance-radius)*0.5, 0.001)
	}
	if c.Far < c.Distance+radius {
		c.Far = (c.Distance + radius) * 2
	}
	return c
}

// Orbit returns the camera turned by dYaw and dPitch degrees. Yaw wraps into
// [0, 360); pitch is clamped short of straight up or down.
func (c Camera) Orbit(dYaw, dPitch float64) Camera {
	c.Yaw = mathutil.WrapDegrees(c.Yaw + dYaw)
	c.Pitch = math.Max(-maxPitch, math.Min(maxPitch, c.Pitch+dPitch))
	return c
}

func (c Camera) fov() float64 {
	if c.FOV <= 0 {
		return DefaultFOV
	}
	return c.FOV
}

func (c Camera) aspect() float64 {
	if c.Height <= 0 || c.Width <= 0 {
		return 1
	}
	return float64(c.Width) / float64(c.Height)
}

// Eye returns the world position of the camera.
func (c Camera) Eye() mathutil.Vec3 {
	yaw := mathutil.Deg2Rad(c.Yaw)
	pitch := mathutil.Deg2Rad(c.Pitch)
	dir := mathutil.Vec3{
		math.Cos(pitch) * math.Sin(yaw),
		math.Sin(pitch),
		math.Cos(pitch) * math.Cos(yaw),
	}
	return c.Target.Add(dir.Scale(c.Distance))
}

// View returns the world-to-camera matrix (right-handed, camera looks down -z).
func (c Camera) View() mathutil.Mat4 {
	eye := c.Eye()
	f := c.Target.Sub(eye).Normalize()
	s := f.Cross(mathutil.Vec3{0, 1, 0}).Normalize()
	u := s.Cross(f)
	return mathutil.Mat4{
		s[0], s[1], s[2], -s.Dot(eye),
		u[0], u[1], u[2], -u.Dot(eye),
		-f[0], -f[1], -f[2], f.Dot(eye),
		0, 0, 0, 1,
	}
}

// Projection returns a perspective matrix mapping the view frustum to
// normalized device coordinates in [-1, 1]³.
func (c Camera) Projection() mathutil.Mat4 {
	f := 1 / math.Tan(mathutil.Deg2Rad(c.fov()/2))
	n, fa := c.Near, c.Far
	return mathutil.Mat4{
		f / c.aspect(), 0, 0, 0,
		0, f, 0, 0,
		0, 0, (fa + n) / (n - fa), 2 * fa * n / (n - fa),
		0, 0, -1, 0,
	}
}

// ViewProjection returns Projection × View.
func (c Camera) ViewProjection() mathutil.Mat4 {
	return mathutil.Mat4Mul(c.Projection(), c.View())
}

// Project maps a world point to pixel coordinates (y down) and NDC depth.
// ok is false for points at or behind the eye plane.
func (c Camera) Project(p mathutil.Vec3) (x, y, depth float64, ok bool) {
	clip := c.ViewProjection().MulVec4(p.Point())
	if clip[3] <= 0 {
		return 0, 0, 0, false
	}
	ndc := clip.PerspectiveDivide()
	x = (ndc[0] + 1) / 2 * float64(c.Width)
	y = (1 - ndc[1]) / 2 * float64(c.Height)
	return x, y, ndc[2], true
}

// ScreenRay unprojects pixel (x, y) through the inverse view-projection. The
// origin lies on the near plane and the direction is unit length.
func (c Camera) ScreenRay(x, y float64) (origin, dir mathutil.Vec3, err error) {
	inv, err := c.ViewProjection().Inverse()
	if err != nil {
		return origin, dir, fmt.Errorf("viewmatrix: screen ray: %w", err)
	}
	nx := 2*x/float64(c.Width) - 1
	ny := 1 - 2*y/float64(c.Height)

	near := inv.MulVec4(mathutil.Vec4{nx, ny, -1, 1}).PerspectiveDivide()
	far := inv.MulVec4(mathutil.Vec4{nx, ny, 1, 1}).PerspectiveDivide()
	return near, far.Sub(near).Normalize(), nil
}
