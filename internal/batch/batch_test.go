package batch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"pmd-rigview/internal/linemesh"
	"pmd-rigview/internal/mathutil"
	"pmd-rigview/internal/postprocess"
	"pmd-rigview/internal/skeleton"
	"pmd-rigview/internal/viewmatrix"
)

func testSkeleton(t *testing.T) *skeleton.Skeleton {
	t.Helper()
	sk, err := skeleton.Build([]skeleton.Joint{
		{ID: 0, Parent: skeleton.RootParent},
		{ID: 1, Parent: 0, Offset: mathutil.Vec3{0, 1, 0}},
		{ID: 2, Parent: 1, Offset: mathutil.Vec3{1, 0, 0}},
	})
	if err != nil {
		t.Fatal(err)
	}
	return sk
}

func TestTurntable(t *testing.T) {
	cam := viewmatrix.Default(8, 8)
	cam.Yaw, cam.Pitch = 300, 15
	frames := Turntable(cam, 4)
	want := []float64{300, 30, 120, 210}
	for i, f := range frames {
		if f.Index != i || math.Abs(f.Yaw-want[i]) > 1e-9 || f.Pitch != 15 {
			t.Errorf("frame %d = %+v, want yaw %g", i, f, want[i])
		}
	}
}

func TestBuildOverlay(t *testing.T) {
	sk := testSkeleton(t)

	plain, err := BuildOverlay(sk, Overlay{})
	if err != nil {
		t.Fatal(err)
	}
	if len(plain.Lines) != 2 {
		t.Errorf("plain overlay has %d lines, want one per bone", len(plain.Lines))
	}

	sel, err := BuildOverlay(sk, Overlay{Selected: 2, PickRadius: 0.1, Axes: 1})
	if err != nil {
		t.Fatal(err)
	}
	// axes + bones + highlight + cylinder (5 rings, 16 long) + frame
	if want := 3 + 2 + 1 + 5*16 + 16 + 3; len(sel.Lines) != want {
		t.Errorf("selected overlay has %d lines, want %d", len(sel.Lines), want)
	}
	if sel.Colors[sel.Lines[5][0]] != linemesh.ColorSelected {
		t.Error("highlight line not in the selection color")
	}

	if _, err := BuildOverlay(sk, Overlay{Selected: 9}); !errors.Is(err, skeleton.ErrIndex) {
		t.Errorf("BuildOverlay(9) = %v, want ErrIndex", err)
	}
}

func TestRun(t *testing.T) {
	sk := testSkeleton(t)
	lines, err := BuildOverlay(sk, Overlay{Selected: 1, PickRadius: 0.1})
	if err != nil {
		t.Fatal(err)
	}

	var logs bytes.Buffer
	cfg := Config{
		OutputDir:   t.TempDir(),
		Lines:       lines,
		Camera:      viewmatrix.Default(0, 0).Fit(mathutil.Vec3{0.5, 0.5, 0}, 1),
		Format:      postprocess.PNG,
		RenderSize:  16,
		Supersample: 2,
		Workers:     3,
		Floor:       true,
		Logger:      log.New(&logs),
	}
	frames := Turntable(cfg.Camera, 5)
	results := Run(context.Background(), cfg, frames)

	if len(results) != 5 {
		t.Fatalf("got %d results", len(results))
	}
	for i, r := range results {
		if !r.Success {
			t.Fatalf("frame %d failed: %s", i, r.Error)
		}
		if r.Frame != i || r.Path != FramePath(cfg, i) {
			t.Errorf("result %d = %+v", i, r)
		}
		if _, err := os.Stat(r.Path); err != nil {
			t.Errorf("frame %d: %v", i, err)
		}
	}
	if filepath.Base(results[3].Path) != "frame_003.png" {
		t.Errorf("frame path = %s", results[3].Path)
	}
	if !bytes.Contains(logs.Bytes(), []byte("turntable finished")) {
		t.Errorf("missing completion log, got %q", logs.String())
	}

	mpath := filepath.Join(cfg.OutputDir, "manifest.json")
	if err := WriteManifest(mpath, Manifest{Model: "arm", Bones: sk.BoneCount(), Size: 16}, results); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(mpath)
	if err != nil {
		t.Fatal(err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	if len(m.Frames) != 5 || m.Frames[2].Image != "frame_002.png" || m.Bones != 2 {
		t.Errorf("manifest = %+v", m)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := Config{
		OutputDir:  t.TempDir(),
		Camera:     viewmatrix.Default(0, 0),
		Format:     postprocess.PNG,
		RenderSize: 4,
		Logger:     log.New(&bytes.Buffer{}),
	}
	results := Run(ctx, cfg, Turntable(cfg.Camera, 3))
	for _, r := range results {
		if r.Success || r.Error != context.Canceled.Error() {
			t.Errorf("result = %+v, want cancelled", r)
		}
	}
	if err := WriteManifest(filepath.Join(cfg.OutputDir, "m.json"), Manifest{}, results); err != nil {
		t.Fatal(err)
	}
}
