package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"pmd-rigview/internal/config"
	"pmd-rigview/internal/model"
	"pmd-rigview/internal/picking"
	"pmd-rigview/internal/skeleton"
	"pmd-rigview/internal/viewmatrix"
)

// rig is a loaded model with its posed skeleton and resolved settings.
type rig struct {
	cfg   config.Config
	model *model.Model
	sk    *skeleton.Skeleton
}

// loadRig reads the config file, merges flags, loads the model at path and
// applies the configured poses.
func loadRig(ctx context.Context, configPath, path string, flags config.Flags) (*rig, error) {
	logger := loggerFromContext(ctx)

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	cfg.Resolve(flags)

	prog := newProgress(logger)
	m, err := model.Load(path, model.Options{CollapseCoincident: cfg.Collapse()})
	if err != nil {
		return nil, err
	}
	sk, err := m.Skeleton()
	if err != nil {
		return nil, err
	}
	if err := config.ApplyPoses(sk, cfg.Poses); err != nil {
		return nil, err
	}
	prog.done(fmt.Sprintf("Loaded %s: %d bones", m.Name, sk.BoneCount()))
	if len(cfg.Poses) > 0 {
		logger.Debug("applied poses", "count", len(cfg.Poses))
	}

	return &rig{cfg: cfg, model: m, sk: sk}, nil
}

// camera frames the model's bounding sphere at the configured angles.
func (r *rig) camera() viewmatrix.Camera {
	size := r.cfg.Render.Size
	cam := viewmatrix.Default(size, size)
	cam.FOV = r.cfg.Camera.FOV
	cam.Near = r.cfg.Camera.Near
	cam.Far = r.cfg.Camera.Far

	center, radius := r.model.BoundingSphere()
	cam = cam.Fit(center, radius)
	if r.cfg.Camera.Distance > 0 {
		cam.Distance = r.cfg.Camera.Distance
	}
	return cam.Orbit(r.cfg.Camera.Yaw, r.cfg.Camera.Pitch)
}

// floorY is the height of the model's lowest point.
func (r *rig) floorY() float64 {
	lo, _ := r.model.Bounds()
	return lo[1]
}

// pickPixel casts a ray through pixel (x, y) of the configured render size.
func (r *rig) pickPixel(x, y float64) (picking.Hit, bool, error) {
	origin, dir, err := r.camera().ScreenRay(x, y)
	if err != nil {
		return picking.Hit{}, false, err
	}
	h, ok := picking.Pick(r.sk, picking.Ray{Origin: origin, Direction: dir}, r.cfg.Picking.Radius)
	return h, ok, nil
}

// addAngleFlags registers --yaw and --pitch on cmd. The returned function
// copies them into flags when they were set.
func addAngleFlags(cmd *cobra.Command) func(*config.Flags) {
	var yaw, pitch float64
	cmd.Flags().Float64Var(&yaw, "yaw", 0, "camera yaw in degrees")
	cmd.Flags().Float64Var(&pitch, "pitch", 0, "camera pitch in degrees")
	return func(f *config.Flags) {
		if cmd.Flags().Changed("yaw") {
			f.Yaw = &yaw
		}
		if cmd.Flags().Changed("pitch") {
			f.Pitch = &pitch
		}
	}
}
