package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"pmd-rigview/internal/skeleton"
)

// boneTable renders bones [first, first+limit) of sk as a table with the
// selected bone highlighted. limit <= 0 shows every bone.
func boneTable(sk *skeleton.Skeleton, selected, first, limit int) string {
	n := sk.BoneCount()
	last := n
	if limit > 0 {
		last = min(n, first+limit-1)
	}
	first = max(first, 1)

	var rows [][]string
	for id := first; id <= last; id++ {
		b, err := sk.Bone(id)
		if err != nil {
			continue
		}
		start, end, err := sk.Segment(id)
		if err != nil {
			continue
		}
		marker := " "
		if id == selected {
			marker = iconArrow
		}
		rows = append(rows, []string{
			marker,
			strconv.Itoa(id),
			boneName(b.Name),
			strconv.Itoa(b.Parent),
			fmt.Sprintf("%.3f", b.Length),
			fmtVec(start),
			fmtVec(end),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "ID", "Name", "Parent", "Length", "Start", "End").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if row < len(rows) && rows[row][1] == strconv.Itoa(selected) {
				return styleSelected
			}
			switch col {
			case 1, 3:
				return styleNumber
			case 4, 5, 6:
				return styleDim
			}
			return styleValue
		})
	return t.Render()
}
