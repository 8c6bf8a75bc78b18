package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"pmd-rigview/internal/batch"
	"pmd-rigview/internal/config"
	"pmd-rigview/internal/postprocess"
)

func newRenderCmd(configPath *string) *cobra.Command {
	var (
		output string
		bone   int
		x, y   float64
		axes   float64
		flags  config.Flags
		angles func(*config.Flags)
	)

	cmd := &cobra.Command{
		Use:   "render <model>",
		Short: "Render a preview image or a turntable",
		Long: `Render draws the mesh in bind pose with the posed skeleton on top. The
selected bone, given by --bone or picked with --x/--y, is drawn with its
pick cylinder and coordinate frame.

With --frames above 1 the camera turns around the model and each frame is
written to the output directory together with manifest.json.`,
		Example: `  rigview render miku.pmd -o miku.webp --bone 12
  rigview render miku.pmd --frames 36 -o turntable/`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			angles(&flags)
			r, err := loadRig(ctx, *configPath, args[0], flags)
			if err != nil {
				return err
			}
			turntable := r.cfg.Render.Frames > 1
			if turntable && output != "" {
				r.cfg.Render.OutputDir = output
			}

			if cmd.Flags().Changed("x") || cmd.Flags().Changed("y") {
				hit, ok, err := r.pickPixel(x, y)
				if err != nil {
					return err
				}
				if ok {
					bone = hit.Bone
					logger.Debug("picked bone", "bone", bone, "t", hit.T)
				} else {
					logger.Warn("no bone under pixel", "x", x, "y", y)
				}
			}

			lines, err := batch.BuildOverlay(r.sk, batch.Overlay{
				Selected:   bone,
				PickRadius: r.cfg.Picking.Radius,
				Axes:       axes,
			})
			if err != nil {
				return err
			}

			format, err := postprocess.ParseFormat(r.cfg.Render.Format)
			if err != nil {
				return err
			}
			if !turntable && output != "" {
				if format, err = postprocess.FormatFromPath(output); err != nil {
					return err
				}
			}

			_, radius := r.model.BoundingSphere()
			bcfg := batch.Config{
				OutputDir:   r.cfg.Render.OutputDir,
				Mesh:        r.model.Mesh,
				Lines:       lines,
				Camera:      r.camera(),
				Format:      format,
				RenderSize:  r.cfg.Render.Size,
				Supersample: r.cfg.Render.Supersample,
				Workers:     r.cfg.Render.Workers,
				Floor:       r.cfg.FloorEnabled(),
				FloorY:      r.floorY(),
				FloorExtent: 2 * radius,
				Logger:      logger,
			}
			out := cmd.OutOrStdout()

			if !turntable {
				if output == "" {
					output = r.model.Name + format.Ext()
				}
				img := batch.RenderFrame(bcfg, batch.Frame{Yaw: bcfg.Camera.Yaw, Pitch: bcfg.Camera.Pitch})
				if err := postprocess.WriteFile(output, img, format); err != nil {
					return err
				}
				printSuccess(out, "Wrote %s", output)
				return nil
			}

			if err := os.MkdirAll(bcfg.OutputDir, 0o755); err != nil {
				return err
			}
			results := batch.Run(ctx, bcfg, batch.Turntable(bcfg.Camera, r.cfg.Render.Frames))
			manifest := filepath.Join(bcfg.OutputDir, "manifest.json")
			err = batch.WriteManifest(manifest, batch.Manifest{
				Model:    r.model.Name,
				Bones:    r.sk.BoneCount(),
				Selected: bone,
				Size:     bcfg.RenderSize,
			}, results)
			if err != nil {
				return err
			}

			failed := 0
			for _, res := range results {
				if !res.Success {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d frames failed", failed, len(results))
			}
			printSuccess(out, "Wrote %d frames to %s", len(results), bcfg.OutputDir)
			return ctx.Err()
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output image, or directory for a turntable")
	cmd.Flags().IntVarP(&bone, "bone", "b", 0, "bone id to highlight")
	cmd.Flags().Float64Var(&x, "x", 0, "pick the highlighted bone at this pixel column")
	cmd.Flags().Float64Var(&y, "y", 0, "pick the highlighted bone at this pixel row")
	cmd.Flags().Float64Var(&axes, "axes", 0, "draw world axes of this length")
	cmd.Flags().IntVarP(&flags.Frames, "frames", "n", 0, "turntable frame count")
	cmd.Flags().IntVar(&flags.Size, "size", 0, "output image size in pixels")
	cmd.Flags().StringVarP(&flags.Format, "format", "f", "", "image format: webp, tga or png")
	cmd.Flags().IntVarP(&flags.Workers, "workers", "w", 0, "parallel render workers")
	cmd.Flags().Float64Var(&flags.Radius, "radius", 0, "bone pick radius")
	cmd.Flags().BoolVar(&flags.NoFloor, "no-floor", false, "hide the floor grid")
	angles = addAngleFlags(cmd)
	return cmd
}
