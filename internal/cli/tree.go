package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"pmd-rigview/internal/config"
	"pmd-rigview/internal/hierarchy"
)

func newTreeCmd(configPath *string) *cobra.Command {
	var (
		output string
		opts   hierarchy.Options
	)

	cmd := &cobra.Command{
		Use:   "tree <model>",
		Short: "Draw the bone hierarchy as SVG or DOT",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r, err := loadRig(ctx, *configPath, args[0], config.Flags{})
			if err != nil {
				return err
			}
			if opts.Selected != 0 {
				if _, err := r.sk.Bone(opts.Selected); err != nil {
					return err
				}
			}
			dot := hierarchy.ToDOT(r.sk, opts)

			if output == "" {
				output = r.model.Name + ".svg"
			}
			var data []byte
			switch ext := strings.ToLower(filepath.Ext(output)); ext {
			case ".dot", ".gv":
				data = []byte(dot)
			case ".svg":
				if data, err = hierarchy.RenderSVG(ctx, dot); err != nil {
					return err
				}
			default:
				return fmt.Errorf("unsupported tree format %q (use .svg or .dot)", ext)
			}

			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			printSuccess(cmd.OutOrStdout(), "Wrote %s", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (.svg or .dot)")
	cmd.Flags().IntVarP(&opts.Selected, "bone", "b", 0, "bone id to highlight")
	cmd.Flags().BoolVarP(&opts.Detailed, "detailed", "d", false, "add lengths and end points to labels")
	return cmd
}
