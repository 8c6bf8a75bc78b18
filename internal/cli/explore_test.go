package cli

import (
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"pmd-rigview/internal/mathutil"
	"pmd-rigview/internal/model"
	"pmd-rigview/internal/picking"
)

func testExplorer(t *testing.T) explorerModel {
	t.Helper()
	m, err := model.Load(writeRig(t), model.Options{})
	if err != nil {
		t.Fatal(err)
	}
	sk, err := m.Skeleton()
	if err != nil {
		t.Fatal(err)
	}
	return newExplorerModel(m.Name, sk, 90)
}

func press(m explorerModel, keys ...tea.KeyMsg) (explorerModel, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(k)
		m = next.(explorerModel)
	}
	return m, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestExplorerStep(t *testing.T) {
	tests := []struct {
		name string
		keys []tea.KeyMsg
		want int
	}{
		{"nothing", nil, picking.NoBone},
		{"next", []tea.KeyMsg{runes("]")}, 1},
		{"prev wraps", []tea.KeyMsg{runes("[")}, 2},
		{"next twice", []tea.KeyMsg{runes("]"), runes("]")}, 2},
		{"next wraps", []tea.KeyMsg{runes("]"), runes("]"), runes("]")}, 1},
		{"arrows", []tea.KeyMsg{{Type: tea.KeyDown}, {Type: tea.KeyDown}, {Type: tea.KeyUp}}, 1},
		{"clear", []tea.KeyMsg{runes("]"), runes("c")}, picking.NoBone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := press(testExplorer(t), tt.keys...)
			if got := m.Cursor.Current(); got != tt.want {
				t.Errorf("cursor = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestExplorerRollAndReset(t *testing.T) {
	m := testExplorer(t)

	// Rolling with nothing selected is a no-op.
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyRight})
	if m.Err != nil {
		t.Fatal(m.Err)
	}
	end, _ := m.Skel.WorldEndPoint(2)
	if !end.ApproxEqual(mathutil.Vec3{2, 2, 0}, 1e-9) {
		t.Fatalf("arm moved without a selection: %v", end)
	}

	// A quarter roll of the spine swings the arm around the vertical.
	m, _ = press(m, runes("]"), tea.KeyMsg{Type: tea.KeyRight})
	end, _ = m.Skel.WorldEndPoint(2)
	if end.ApproxEqual(mathutil.Vec3{2, 2, 0}, 1e-6) {
		t.Error("roll did not move the child bone")
	}
	if d := end.Sub(mathutil.Vec3{0, 2, 0}); math.Abs(d.Len()-2) > 1e-9 || math.Abs(end[1]-2) > 1e-9 || math.Abs(end[0]) > 1e-9 {
		t.Errorf("rolled arm end = %v, want on the circle x=0 y=2", end)
	}
	spine, _ := m.Skel.WorldEndPoint(1)
	if !spine.ApproxEqual(mathutil.Vec3{0, 2, 0}, 1e-9) {
		t.Errorf("roll moved the spine itself: %v", spine)
	}

	m, _ = press(m, runes("r"))
	end, _ = m.Skel.WorldEndPoint(2)
	if !end.ApproxEqual(mathutil.Vec3{2, 2, 0}, 1e-9) {
		t.Errorf("reset arm end = %v", end)
	}
	if m.Cursor.Current() != 1 {
		t.Error("reset dropped the selection")
	}
}

func TestExplorerBend(t *testing.T) {
	m, _ := press(testExplorer(t), runes("]"), runes("]"), runes("."))
	end, _ := m.Skel.WorldEndPoint(2)
	start, _ := m.Skel.WorldStartPoint(2)
	if end.ApproxEqual(mathutil.Vec3{2, 2, 0}, 1e-6) {
		t.Error("bend did not move the arm")
	}
	if math.Abs(end.Sub(start).Len()-2) > 1e-9 {
		t.Errorf("bend changed the arm length: %v -> %v", start, end)
	}
}

func TestExplorerQuit(t *testing.T) {
	for _, k := range []tea.KeyMsg{runes("q"), {Type: tea.KeyEsc}, {Type: tea.KeyCtrlC}} {
		_, cmd := press(testExplorer(t), k)
		if cmd == nil {
			t.Fatalf("%s returned no command", k)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s did not quit", k)
		}
	}
}

func TestExplorerView(t *testing.T) {
	m := testExplorer(t)
	if v := m.View(); !strings.Contains(v, "no bone selected") || !strings.Contains(v, "spine") {
		t.Errorf("initial view:\n%s", v)
	}
	m, _ = press(m, runes("["))
	v := m.View()
	if !strings.Contains(v, "bone 2") || !strings.Contains(v, "arm") || !strings.Contains(v, "length 2.000") {
		t.Errorf("selected view:\n%s", v)
	}
}

func TestExplorerScroll(t *testing.T) {
	m := testExplorer(t)
	m.Height = 1
	m, _ = press(m, runes("]"), runes("]"))
	if m.Offset != 1 {
		t.Errorf("offset = %d, want the window to follow the cursor", m.Offset)
	}
	m, _ = press(m, runes("]"))
	if m.Offset != 0 {
		t.Errorf("offset = %d after wrapping", m.Offset)
	}
}
