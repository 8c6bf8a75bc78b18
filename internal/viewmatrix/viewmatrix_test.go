package viewmatrix

import (
	"math"
	"testing"

	"pmd-rigview/internal/mathutil"
)

func TestProjectTargetIsCentered(t *testing.T) {
	for _, yaw := range []float64{0, 30, 135, 270} {
		c := Default(320, 200).Orbit(yaw, 20)
		x, y, depth, ok := c.Project(c.Target)
		if !ok {
			t.Fatalf("yaw %g: target not in front of the camera", yaw)
		}
		if math.Abs(x-160) > 1e-9 || math.Abs(y-100) > 1e-9 {
			t.Errorf("yaw %g: target projects to (%g, %g), want (160, 100)", yaw, x, y)
		}
		if depth <= -1 || depth >= 1 {
			t.Errorf("yaw %g: depth %g outside the frustum", yaw, depth)
		}
	}
}

func TestScreenRayRoundTrip(t *testing.T) {
	c := Default(640, 480).Orbit(40, -15)
	c.Target = mathutil.Vec3{1, 2, 3}

	pixels := [][2]float64{{0, 0}, {320, 240}, {639, 10}, {100, 400}}
	for _, px := range pixels {
		origin, dir, err := c.ScreenRay(px[0], px[1])
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(dir.Len()-1) > 1e-9 {
			t.Errorf("dir %v not unit length", dir)
		}
		for _, d := range []float64{1, 7.5} {
			x, y, _, ok := c.Project(origin.Add(dir.Scale(d)))
			if !ok || math.Abs(x-px[0]) > 1e-6 || math.Abs(y-px[1]) > 1e-6 {
				t.Errorf("pixel %v: point at %g projects to (%g, %g, %v)", px, d, x, y, ok)
			}
		}
	}
}

func TestScreenRayThroughCenterHitsTarget(t *testing.T) {
	c := Default(100, 100)
	origin, dir, err := c.ScreenRay(50, 50)
	if err != nil {
		t.Fatal(err)
	}
	if !dir.ApproxEqual(mathutil.Vec3{0, 0, -1}, 1e-7) {
		t.Errorf("dir = %v, want (0,0,-1)", dir)
	}
	if !origin.ApproxEqual(mathutil.Vec3{0, 0, 5 - c.Near}, 1e-7) {
		t.Errorf("origin = %v, want the near plane center", origin)
	}
}

func TestProjectBehindCamera(t *testing.T) {
	c := Default(100, 100)
	if _, _, _, ok := c.Project(mathutil.Vec3{0, 0, 10}); ok {
		t.Error("point behind the eye reported visible")
	}
}

func TestOrbit(t *testing.T) {
	c := Camera{Yaw: 350, Pitch: 80}.Orbit(20, 30)
	if math.Abs(c.Yaw-10) > 1e-9 {
		t.Errorf("Yaw = %g, want 10", c.Yaw)
	}
	if c.Pitch != maxPitch {
		t.Errorf("Pitch = %g, want %g", c.Pitch, maxPitch)
	}
	if c = c.Orbit(-400, -500); math.Abs(c.Yaw-330) > 1e-9 || c.Pitch != -maxPitch {
		t.Errorf("Orbit back = yaw %g pitch %g", c.Yaw, c.Pitch)
	}
}

func TestFit(t *testing.T) {
	c := Default(200, 200).Fit(mathutil.Vec3{0, 1, 0}, 2)
	if want := 2 / math.Sin(mathutil.Deg2Rad(DefaultFOV/2)); math.Abs(c.Distance-want) > 1e-9 {
		t.Errorf("Distance = %g, want %g", c.Distance, want)
	}
	if c.Near >= c.Distance-2 || c.Far <= c.Distance+2 {
		t.Errorf("clip planes %g..%g do not contain the sphere", c.Near, c.Far)
	}
	// The top of the sphere stays inside the image.
	_, y, _, ok := c.Project(mathutil.Vec3{0, 3, 0})
	if !ok || y < 0 {
		t.Errorf("sphere top projects to y=%g, ok=%v", y, ok)
	}
}
