// Package config loads rigview settings from a TOML file and merges them
// with command-line flags.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config holds all file-configurable settings.
type Config struct {
	Render   Render   `toml:"render"`
	Camera   Camera   `toml:"camera"`
	Picking  Picking  `toml:"picking"`
	Skeleton Skeleton `toml:"skeleton"`
	Poses    []Pose   `toml:"pose"`
}

// Render settings for preview and turntable output.
type Render struct {
	Size        int    `toml:"size"`
	Supersample int    `toml:"supersample"`
	Format      string `toml:"format"`
	Workers     int    `toml:"workers"`
	Frames      int    `toml:"frames"`
	Floor       *bool  `toml:"floor"`
	OutputDir   string `toml:"output_dir"`
}

// Camera placement. A zero Distance frames the whole model.
type Camera struct {
	FOV      float64 `toml:"fov"`
	Near     float64 `toml:"near"`
	Far      float64 `toml:"far"`
	Distance float64 `toml:"distance"`
	Yaw      float64 `toml:"yaw"`
	Pitch    float64 `toml:"pitch"`
}

// Picking settings.
type Picking struct {
	Radius float64 `toml:"radius"`
}

// Skeleton conversion settings.
type Skeleton struct {
	CollapseCoincident *bool `toml:"collapse_coincident"`
}

// Load reads a TOML config file. An empty path returns an empty Config.
// Unknown keys are an error so typos do not pass silently.
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("config: %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// Flags holds CLI flag values that override config file settings. Zero
// values leave the file setting alone.
type Flags struct {
	Size      int
	Format    string
	Workers   int
	Frames    int
	OutputDir string
	Radius    float64
	Yaw       *float64
	Pitch     *float64
	NoFloor   bool
}

// Resolve applies flags over the file settings, then fills defaults.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.Size > 0 {
		c.Render.Size = flags.Size
	}
	if flags.Format != "" {
		c.Render.Format = flags.Format
	}
	if flags.Workers > 0 {
		c.Render.Workers = flags.Workers
	}
	if flags.Frames > 0 {
		c.Render.Frames = flags.Frames
	}
	if flags.OutputDir != "" {
		c.Render.OutputDir = flags.OutputDir
	}
	if flags.Radius > 0 {
		c.Picking.Radius = flags.Radius
	}
	if flags.Yaw != nil {
		c.Camera.Yaw = *flags.Yaw
	}
	if flags.Pitch != nil {
		c.Camera.Pitch = *flags.Pitch
	}
	if flags.NoFloor {
		c.Render.Floor = ptr(false)
	}

	// Defaults for render settings
	if c.Render.Size <= 0 {
		c.Render.Size = 512
	}
	if c.Render.Supersample <= 0 {
		c.Render.Supersample = 2
	}
	if c.Render.Format == "" {
		c.Render.Format = "webp"
	}
	if c.Render.Workers <= 0 {
		c.Render.Workers = runtime.NumCPU()
	}
	if c.Render.Frames <= 0 {
		c.Render.Frames = 1
	}
	if c.Render.Floor == nil {
		c.Render.Floor = ptr(true)
	}
	if c.Render.OutputDir == "" {
		c.Render.OutputDir = "renders"
	}
	if c.Camera.FOV <= 0 {
		c.Camera.FOV = 45
	}
	if c.Camera.Near <= 0 {
		c.Camera.Near = 0.1
	}
	if c.Camera.Far <= c.Camera.Near {
		c.Camera.Far = 1000
	}
	if c.Picking.Radius <= 0 {
		c.Picking.Radius = DefaultPickRadius
	}
	if c.Skeleton.CollapseCoincident == nil {
		c.Skeleton.CollapseCoincident = ptr(true)
	}
}

// DefaultPickRadius matches the half-unit cylinder the picker was tuned for.
const DefaultPickRadius = 0.5

// FloorEnabled reports the resolved floor setting.
func (c *Config) FloorEnabled() bool {
	return c.Render.Floor == nil || *c.Render.Floor
}

// Collapse reports the resolved collapse_coincident setting.
func (c *Config) Collapse() bool {
	return c.Skeleton.CollapseCoincident == nil || *c.Skeleton.CollapseCoincident
}

func ptr[T any](v T) *T { return &v }
