package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"pmd-rigview/internal/config"
	"pmd-rigview/internal/mathutil"
	"pmd-rigview/internal/picking"
)

func newPickCmd(configPath *string) *cobra.Command {
	var (
		x, y        float64
		origin, dir []float64
		flags       config.Flags
		angles      func(*config.Flags)
	)

	cmd := &cobra.Command{
		Use:   "pick <model>",
		Short: "Find the bone under a pixel or along a ray",
		Example: `  rigview pick miku.pmd --x 256 --y 140
  rigview pick arm.json --origin 1,5,0 --dir 0,-1,0`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pixel := cmd.Flags().Changed("x") || cmd.Flags().Changed("y")
			byRay := len(origin) > 0 || len(dir) > 0
			switch {
			case pixel == byRay:
				return errors.New("give either --x/--y or --origin/--dir")
			case byRay && (len(origin) != 3 || len(dir) != 3):
				return errors.New("--origin and --dir need three components each")
			}

			angles(&flags)
			r, err := loadRig(cmd.Context(), *configPath, args[0], flags)
			if err != nil {
				return err
			}

			var (
				hit picking.Hit
				ok  bool
			)
			if pixel {
				if hit, ok, err = r.pickPixel(x, y); err != nil {
					return err
				}
			} else {
				ray := picking.Ray{
					Origin:    mathutil.Vec3{origin[0], origin[1], origin[2]},
					Direction: mathutil.Vec3{dir[0], dir[1], dir[2]},
				}
				hit, ok = picking.Pick(r.sk, ray, r.cfg.Picking.Radius)
			}

			out := cmd.OutOrStdout()
			if !ok {
				printError(out, "no bone hit")
				return nil
			}
			b, err := r.sk.Bone(hit.Bone)
			if err != nil {
				return err
			}
			printSuccess(out, "bone %d %s", hit.Bone, styleValue.Render(boneName(b.Name)))
			printDetail(out, "t=%.4f at %s", hit.T, fmtVec(hit.Point))
			return nil
		},
	}

	cmd.Flags().Float64Var(&x, "x", 0, "pixel column")
	cmd.Flags().Float64Var(&y, "y", 0, "pixel row")
	cmd.Flags().Float64SliceVar(&origin, "origin", nil, "world-space ray origin x,y,z")
	cmd.Flags().Float64SliceVar(&dir, "dir", nil, "world-space ray direction x,y,z")
	cmd.Flags().IntVar(&flags.Size, "size", 0, "image size the pixel refers to")
	cmd.Flags().Float64Var(&flags.Radius, "radius", 0, "bone pick radius")
	angles = addAngleFlags(cmd)
	return cmd
}
