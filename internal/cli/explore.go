package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"pmd-rigview/internal/config"
	"pmd-rigview/internal/mathutil"
	"pmd-rigview/internal/picking"
	"pmd-rigview/internal/skeleton"
)

// explorerModel is the bubbletea model for stepping through bones and
// posing them from the keyboard.
type explorerModel struct {
	Name   string
	Skel   *skeleton.Skeleton
	Cursor *picking.Cursor
	Step   float64 // degrees per key press
	Height int
	Offset int
	Err    error
}

func newExplorerModel(name string, sk *skeleton.Skeleton, step float64) explorerModel {
	return explorerModel{
		Name:   name,
		Skel:   sk,
		Cursor: picking.NewCursor(sk.BoneCount()),
		Step:   step,
		Height: 12,
	}
}

func (m explorerModel) Init() tea.Cmd {
	return nil
}

func (m explorerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.Err = nil
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "]", "tab", "down", "j":
			m.Cursor.Next()
		case "[", "shift+tab", "up", "k":
			m.Cursor.Prev()
		case "left", "h":
			m.Err = m.rotate(mathutil.RotX(-m.radians()))
		case "right", "l":
			m.Err = m.rotate(mathutil.RotX(m.radians()))
		case ",":
			m.Err = m.rotate(mathutil.RotZ(-m.radians()))
		case ".":
			m.Err = m.rotate(mathutil.RotZ(m.radians()))
		case "r":
			m.Skel.ResetPose()
		case "c":
			m.Cursor.Clear()
		}
		m.scroll()
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-14, 3)
		m.scroll()
	}
	return m, nil
}

func (m explorerModel) radians() float64 {
	return mathutil.Deg2Rad(m.Step)
}

// rotate applies r in the selected bone's own frame.
func (m explorerModel) rotate(r mathutil.Mat3) error {
	if !m.Cursor.Selected() {
		return nil
	}
	return m.Skel.RotateLocal(m.Cursor.Current(), r)
}

// scroll keeps the selected row inside the visible window.
func (m *explorerModel) scroll() {
	cur := m.Cursor.Current() - 1
	if cur < 0 {
		return
	}
	if cur < m.Offset {
		m.Offset = cur
	}
	if cur >= m.Offset+m.Height {
		m.Offset = cur - m.Height + 1
	}
}

func (m explorerModel) View() string {
	var b strings.Builder

	b.WriteString(styleTitle.Render(m.Name))
	b.WriteString("\n")
	b.WriteString(styleDim.Render("[/] bone  ←/→ roll  ,/. bend  r reset  c clear  q quit"))
	b.WriteString("\n\n")

	if id := m.Cursor.Current(); id != picking.NoBone {
		bone, err := m.Skel.Bone(id)
		if err == nil {
			start, end, _ := m.Skel.Segment(id)
			fmt.Fprintf(&b, "%s %s\n", styleSelected.Render(fmt.Sprintf("bone %d", id)), styleValue.Render(boneName(bone.Name)))
			fmt.Fprintf(&b, "  %s\n", styleDim.Render(fmt.Sprintf("parent %d  length %.3f", bone.Parent, bone.Length)))
			fmt.Fprintf(&b, "  %s %s %s\n\n", fmtVec(start), iconArrow, fmtVec(end))
		}
	} else {
		b.WriteString(styleDim.Render("no bone selected"))
		b.WriteString("\n\n")
	}

	if m.Skel.BoneCount() > 0 {
		b.WriteString(boneTable(m.Skel, m.Cursor.Current(), m.Offset+1, m.Height))
		b.WriteString("\n")
	}
	if m.Err != nil {
		b.WriteString(styleIconError.Render(iconError + " " + m.Err.Error()))
		b.WriteString("\n")
	}
	return b.String()
}

func newExploreCmd(configPath *string) *cobra.Command {
	var step float64

	cmd := &cobra.Command{
		Use:   "explore <model>",
		Short: "Step through bones and pose them interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := loadRig(cmd.Context(), *configPath, args[0], config.Flags{})
			if err != nil {
				return err
			}
			p := tea.NewProgram(newExplorerModel(r.model.Name, r.sk, step),
				tea.WithContext(cmd.Context()),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()))
			_, err = p.Run()
			return err
		},
	}

	cmd.Flags().Float64Var(&step, "step", 15, "rotation per key press in degrees")
	return cmd
}
