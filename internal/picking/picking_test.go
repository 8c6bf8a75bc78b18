package picking

import (
	"errors"
	"math"
	"testing"

	"pmd-rigview/internal/mathutil"
	"pmd-rigview/internal/skeleton"
)

func vec(x, y, z float64) mathutil.Vec3 { return mathutil.Vec3{x, y, z} }

func build(t *testing.T, joints []skeleton.Joint) *skeleton.Skeleton {
	t.Helper()
	sk, err := skeleton.Build(joints)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return sk
}

func TestIntersectCylinder(t *testing.T) {
	const radius, length = 0.5, 2.0
	tests := []struct {
		name   string
		ray    Ray
		wantOK bool
		wantT  float64
	}{
		{"parallel outside radius", Ray{vec(-1, 0.6, 0), vec(1, 0, 0)}, false, 0},
		{"parallel inside radius hits near cap", Ray{vec(-1, 0.2, 0), vec(1, 0, 0)}, true, 1},
		{"parallel from far side hits far cap", Ray{vec(3, 0, 0.1), vec(-1, 0, 0)}, true, 1},
		{"through axis just before cap", Ray{vec(-1e-3, 0, 0), vec(1, 0, 0)}, true, 1e-3},
		{"through axis just outside side", Ray{vec(1, -0.5-1e-4, 0), vec(0, 1, 0)}, true, 1e-4},
		{"perpendicular through middle", Ray{vec(1, -3, 0), vec(0, 1, 0)}, true, 2.5},
		{"from inside exits side", Ray{vec(1, 0, 0), vec(0, 0, 1)}, true, 0.5},
		{"perpendicular beyond length", Ray{vec(2.5, -3, 0), vec(0, 1, 0)}, false, 0},
		{"pointing away", Ray{vec(1, -3, 0), vec(0, -1, 0)}, false, 0},
		{"diagonal enters cap", Ray{vec(-1, 0, -1), vec(1, 0, 1)}, true, 1},
		{"grazing misses", Ray{vec(1, -3, 0.6), vec(0, 1, 0)}, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := IntersectCylinder(tt.ray, radius, length)
			if ok != tt.wantOK {
				t.Fatalf("IntersectCylinder ok = %v (t=%g), want %v", ok, got, tt.wantOK)
			}
			if ok && math.Abs(got-tt.wantT) > 1e-9 {
				t.Errorf("t = %g, want %g", got, tt.wantT)
			}
		})
	}
}

func TestIntersectCylinderIgnoresOrigin(t *testing.T) {
	// Starting exactly on the near cap must not report t=0.
	got, ok := IntersectCylinder(Ray{vec(0, 0, 0), vec(1, 0, 0)}, 0.5, 2)
	if !ok || math.Abs(got-2) > 1e-12 {
		t.Errorf("IntersectCylinder from cap = %g, %v; want 2, true", got, ok)
	}
}

// twoLevels has bone 1 along +x at z=0 and bone 3 along +x at z=-3; bone 2
// runs from the origin down -z.
func twoLevels() []skeleton.Joint {
	return []skeleton.Joint{
		{ID: 0, Parent: skeleton.RootParent},
		{ID: 1, Parent: 0, Offset: vec(2, 0, 0)},
		{ID: 2, Parent: 0, Offset: vec(0, 0, -3)},
		{ID: 3, Parent: 2, Offset: vec(2, 0, 0)},
	}
}

func TestPickNearest(t *testing.T) {
	sk := build(t, twoLevels())

	tests := []struct {
		name  string
		ray   Ray
		want  int
		wantT float64
	}{
		{"from below reaches bone 3 first", Ray{vec(1, 0, -10), vec(0, 0, 1)}, 3, 6.5},
		{"from above reaches bone 1 first", Ray{vec(1, 0, 10), vec(0, 0, -1)}, 1, 9.5},
		{"down the z bone", Ray{vec(0, 5, -1.5), vec(0, -1, 0)}, 2, 4.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, ok := Pick(sk, tt.ray, 0.5)
			if !ok {
				t.Fatal("Pick missed")
			}
			if h.Bone != tt.want || math.Abs(h.T-tt.wantT) > 1e-9 {
				t.Errorf("Pick = bone %d t=%g, want bone %d t=%g", h.Bone, h.T, tt.want, tt.wantT)
			}
			if want := tt.ray.At(tt.wantT); !h.Point.ApproxEqual(want, 1e-9) {
				t.Errorf("hit point = %v, want %v", h.Point, want)
			}
		})
	}
}

func TestPickMiss(t *testing.T) {
	sk := build(t, twoLevels())
	if h, ok := Pick(sk, Ray{vec(10, 10, 10), vec(1, 0, 0)}, 0.5); ok {
		t.Errorf("Pick = %+v, want miss", h)
	}
	if _, ok := SelectBone(sk, vec(1, 0.6, -10), vec(0, 0, 1), 0.5); ok {
		t.Error("SelectBone hit with the ray outside every radius")
	}
}

func TestPickTieLowerID(t *testing.T) {
	sk := build(t, []skeleton.Joint{
		{ID: 0, Parent: skeleton.RootParent},
		{ID: 1, Parent: 0, Offset: vec(2, 0, 0)},
		{ID: 2, Parent: 0, Offset: vec(2, 0, 0)},
	})
	id, ok := SelectBone(sk, vec(1, 5, 0), vec(0, -1, 0), 0.5)
	if !ok || id != 1 {
		t.Errorf("SelectBone = %d, %v; want 1, true", id, ok)
	}
}

func TestPickScaleInvariant(t *testing.T) {
	sk := build(t, []skeleton.Joint{
		{ID: 0, Parent: skeleton.RootParent},
		{ID: 1, Parent: 0, Offset: vec(2, 0, 0)},
		{ID: 2, Parent: 0, Offset: vec(2, 0, 0)},
	})
	for _, s := range []float64{1e-12, 1e-4, 1, 1e6} {
		h, ok := Pick(sk, Ray{vec(1, 5, 0), vec(0, -s, 0)}, 0.5)
		if !ok || h.Bone != 1 {
			t.Errorf("scale %g: Pick = %+v, %v; want bone 1", s, h, ok)
			continue
		}
		if math.Abs(h.T-4.5) > 1e-9 || !h.Point.ApproxEqual(vec(1, 0.5, 0), 1e-9) {
			t.Errorf("scale %g: hit t=%g point=%v, want 4.5 at (1,0.5,0)", s, h.T, h.Point)
		}
	}

	for _, d := range []mathutil.Vec3{vec(0, 0, 0), vec(0, math.NaN(), 0), vec(math.Inf(1), 0, 0)} {
		if h, ok := Pick(sk, Ray{vec(1, 5, 0), d}, 0.5); ok {
			t.Errorf("direction %v: Pick = %+v, want miss", d, h)
		}
	}
}

func TestPickFollowsRootOffsetAndPose(t *testing.T) {
	sk := build(t, []skeleton.Joint{
		{ID: 0, Parent: skeleton.RootParent, Offset: vec(10, 0, 0)},
		{ID: 1, Parent: 0, Offset: vec(0, 2, 0)},
		{ID: 2, Parent: 1, Offset: vec(2, 0, 0)},
	})

	// Bone 2 runs from (10,2,0) to (12,2,0).
	id, ok := SelectBone(sk, vec(11, 2, 5), vec(0, 0, -1), 0.25)
	if !ok || id != 2 {
		t.Fatalf("SelectBone = %d, %v; want 2, true", id, ok)
	}

	// Quarter turn about the bone's local normal axis. Its bind frame is
	// [x -y -z], so the bone ends up pointing down -z.
	if err := sk.RotateLocal(2, mathutil.RotY(-math.Pi/2)); err != nil {
		t.Fatal(err)
	}
	start, end, _ := sk.Segment(2)
	if !end.ApproxEqual(vec(10, 2, -2), 1e-9) {
		t.Fatalf("posed end = %v, want (10,2,-2)", end)
	}
	if id, ok := SelectBone(sk, vec(11, 2, 5), vec(0, 0, -1), 0.25); ok && id == 2 {
		t.Error("posed bone still hit at its bind position")
	}
	mid := start.Add(end).Scale(0.5)
	id, ok = SelectBone(sk, mid.Sub(vec(5, 0, 0)), vec(1, 0, 0), 0.25)
	if !ok || id != 2 {
		t.Errorf("SelectBone through posed midpoint %v = %d, %v; want 2", mid, id, ok)
	}
}

func TestCursorStep(t *testing.T) {
	c := NewCursor(3)
	if c.Selected() {
		t.Fatal("new cursor has a selection")
	}
	seq := []int{c.Next(), c.Next(), c.Next(), c.Next(), c.Prev(), c.Prev()}
	want := []int{1, 2, 3, 1, 3, 2}
	for i := range want {
		if seq[i] != want[i] {
			t.Fatalf("step sequence = %v, want %v", seq, want)
		}
	}

	c.Clear()
	if got := c.Prev(); got != 3 {
		t.Errorf("Prev from empty = %d, want 3", got)
	}
	if got := c.Step(-7); got != 2 {
		t.Errorf("Step(-7) from 3 = %d, want 2", got)
	}
}

func TestCursorSet(t *testing.T) {
	c := NewCursor(2)
	if err := c.Set(2); err != nil || c.Current() != 2 {
		t.Fatalf("Set(2) = %v, current %d", err, c.Current())
	}
	for _, id := range []int{0, 3, -1} {
		if err := c.Set(id); !errors.Is(err, skeleton.ErrIndex) {
			t.Errorf("Set(%d) = %v, want ErrIndex", id, err)
		}
	}
	if c.Current() != 2 {
		t.Errorf("failed Set changed selection to %d", c.Current())
	}

	if !c.Update(Hit{}, false) || c.Selected() {
		t.Error("miss should clear the selection")
	}
	if !c.Update(Hit{Bone: 1}, true) || c.Current() != 1 {
		t.Error("hit should select bone 1")
	}
	if c.Update(Hit{Bone: 1}, true) {
		t.Error("same hit reported a change")
	}
}
