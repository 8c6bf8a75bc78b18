package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"pmd-rigview/internal/config"
)

func newInfoCmd(configPath *string) *cobra.Command {
	var selected int

	cmd := &cobra.Command{
		Use:   "info <model>",
		Short: "List the bones of a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := loadRig(cmd.Context(), *configPath, args[0], config.Flags{})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, styleTitle.Render(r.model.Name))
			printDetail(out, "%d bones, %d root-attached", r.sk.BoneCount(), len(r.sk.RootBones()))
			if m := r.model.Mesh; m != nil {
				printDetail(out, "%d vertices, %d triangles, %d materials",
					len(m.Positions), len(m.Triangles), len(m.Materials))
			}
			lo, hi := r.model.Bounds()
			printDetail(out, "bounds %s %s %s", fmtVec(lo), iconArrow, fmtVec(hi))
			if r.sk.BoneCount() == 0 {
				return nil
			}
			fmt.Fprintln(out, boneTable(r.sk, selected, 1, 0))
			return nil
		},
	}

	cmd.Flags().IntVarP(&selected, "bone", "b", 0, "highlight a bone id")
	return cmd
}
