package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// rigJSON is a spine standing on the origin with an arm pointing along +x
// from its top.
const rigJSON = `{
  "name": "rig",
  "joints": [
    {"id": 0, "parent": -1, "offset": [0, 0, 0]},
    {"id": 1, "parent": 0, "offset": [0, 2, 0], "name": "spine"},
    {"id": 2, "parent": 1, "offset": [2, 0, 0], "name": "arm"}
  ]
}`

func writeRig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rig.json")
	if err := os.WriteFile(path, []byte(rigJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// run executes the root command with args and returns stdout and stderr.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("RIGVIEW_CONFIG", "")
	var stdout, stderr bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestInfo(t *testing.T) {
	out, logs, err := run(t, "info", writeRig(t))
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	for _, want := range []string{"rig", "2 bones", "spine", "arm", "2.000"} {
		if !strings.Contains(out, want) {
			t.Errorf("info output missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(logs, "Loaded rig: 2 bones") {
		t.Errorf("missing load log, got %q", logs)
	}
}

func TestInfoMissingModel(t *testing.T) {
	if _, _, err := run(t, "info", filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("info on a missing file succeeded")
	}
	if _, _, err := run(t, "info"); err == nil {
		t.Error("info without a model succeeded")
	}
}

func TestPickRay(t *testing.T) {
	out, _, err := run(t, "pick", writeRig(t), "--origin", "1,5,0", "--dir", "0,-1,0")
	if err != nil {
		t.Fatalf("pick: %v", err)
	}
	// The arm's cylinder top is at y = 2.5.
	if !strings.Contains(out, "bone 2") || !strings.Contains(out, "arm") || !strings.Contains(out, "t=2.5000") {
		t.Errorf("pick output = %q", out)
	}

	out, _, err = run(t, "pick", writeRig(t), "--origin", "5,5,5", "--dir", "0,1,0")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "no bone hit") {
		t.Errorf("miss output = %q", out)
	}
}

func TestPickPixel(t *testing.T) {
	// From +x the center ray runs along -x at height 1 and meets the spine.
	out, _, err := run(t, "pick", writeRig(t), "--x", "32", "--y", "32", "--size", "64", "--yaw", "90")
	if err != nil {
		t.Fatalf("pick: %v", err)
	}
	if !strings.Contains(out, "bone 1") || !strings.Contains(out, "spine") {
		t.Errorf("pick output = %q", out)
	}

	// From +z the same ray passes between both bones.
	out, _, err = run(t, "pick", writeRig(t), "--x", "32", "--y", "32", "--size", "64")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "no bone hit") {
		t.Errorf("pick output = %q", out)
	}
}

func TestPickArgs(t *testing.T) {
	path := writeRig(t)
	for _, args := range [][]string{
		{"pick", path},
		{"pick", path, "--x", "1", "--origin", "0,0,0", "--dir", "1,0,0"},
		{"pick", path, "--origin", "0,0", "--dir", "1,0,0"},
	} {
		if _, _, err := run(t, args...); err == nil {
			t.Errorf("%v succeeded", args)
		}
	}
}

func TestRenderSingle(t *testing.T) {
	out := filepath.Join(t.TempDir(), "rig.png")
	stdout, _, err := run(t, "render", writeRig(t), "-o", out, "--size", "24", "--bone", "2")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if fi, err := os.Stat(out); err != nil || fi.Size() == 0 {
		t.Fatalf("output not written: %v", err)
	}
	if !strings.Contains(stdout, "Wrote") {
		t.Errorf("stdout = %q", stdout)
	}

	if _, _, err := run(t, "render", writeRig(t), "-o", out, "--bone", "9"); err == nil {
		t.Error("render with a bad bone id succeeded")
	}
	if _, _, err := run(t, "render", writeRig(t), "-o", filepath.Join(t.TempDir(), "x.jpg")); err == nil {
		t.Error("render to .jpg succeeded")
	}
}

func TestRenderTurntable(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "spin")
	_, _, err := run(t, "render", writeRig(t), "-o", dir, "--frames", "3", "--size", "16", "-f", "png", "-w", "2")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "manifest.json"))
	if err != nil {
		t.Fatal(err)
	}
	var m struct {
		Model  string `json:"model"`
		Frames []struct {
			Image string `json:"image"`
		} `json:"frames"`
	}
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	if m.Model != "rig" || len(m.Frames) != 3 || m.Frames[1].Image != "frame_001.png" {
		t.Errorf("manifest = %+v", m)
	}
}

func TestTree(t *testing.T) {
	out := filepath.Join(t.TempDir(), "rig.dot")
	if _, _, err := run(t, "tree", writeRig(t), "-o", out, "--bone", "2"); err != nil {
		t.Fatalf("tree: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	dot := string(data)
	if !strings.Contains(dot, "b1 -> b2") || !strings.Contains(dot, "gold") {
		t.Errorf("dot = %s", dot)
	}

	if _, _, err := run(t, "tree", writeRig(t), "-o", filepath.Join(t.TempDir(), "t.png")); err == nil {
		t.Error("tree accepted .png")
	}
	if _, _, err := run(t, "tree", writeRig(t), "-o", out, "--bone", "5"); err == nil {
		t.Error("tree accepted a bad bone id")
	}
}

func TestConfigFlag(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "rigview.toml")
	if err := os.WriteFile(cfg, []byte("[[pose]]\nname = \"nope\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, _, err := run(t, "info", writeRig(t), "--config", cfg)
	if err == nil || !strings.Contains(err.Error(), "nope") {
		t.Errorf("pose on an unknown bone = %v", err)
	}
}
