// Package batch renders turntable frames of a rig across a worker pool.
package batch

import (
	"context"
	"fmt"
	"image"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"pmd-rigview/internal/linemesh"
	"pmd-rigview/internal/mathutil"
	"pmd-rigview/internal/model"
	"pmd-rigview/internal/postprocess"
	"pmd-rigview/internal/raster"
	"pmd-rigview/internal/viewmatrix"
)

// Config holds all shared resources for a batch run. Everything in it is
// read-only once Run starts.
type Config struct {
	OutputDir   string
	Mesh        *model.Mesh
	Lines       *linemesh.Builder
	Camera      viewmatrix.Camera
	Format      postprocess.Format
	RenderSize  int
	Supersample int
	Workers     int

	Floor       bool
	FloorY      float64
	FloorExtent float64

	Logger *log.Logger
	// ProgressEvery is the progress log interval; 0 means two seconds.
	ProgressEvery time.Duration
}

// Frame is one camera placement.
type Frame struct {
	Index int
	Yaw   float64
	Pitch float64
}

// Result holds the outcome of rendering one frame.
type Result struct {
	Frame   int
	Yaw     float64
	Pitch   float64
	Path    string
	Success bool
	Error   string
}

// Turntable spreads n frames evenly around a full turn starting at the
// camera's current yaw.
func Turntable(cam viewmatrix.Camera, n int) []Frame {
	frames := make([]Frame, n)
	for i := range frames {
		frames[i] = Frame{
			Index: i,
			Yaw:   mathutil.WrapDegrees(cam.Yaw + 360*float64(i)/float64(n)),
			Pitch: cam.Pitch,
		}
	}
	return frames
}

// FramePath returns the output path of frame i.
func FramePath(cfg Config, i int) string {
	return filepath.Join(cfg.OutputDir, fmt.Sprintf("frame_%03d%s", i, cfg.Format.Ext()))
}

// RenderFrame renders one frame at the configured output size.
func RenderFrame(cfg Config, f Frame) *image.NRGBA {
	cam := cfg.Camera
	cam.Yaw, cam.Pitch = f.Yaw, f.Pitch

	img := raster.Render(raster.Scene{
		Mesh:        cfg.Mesh,
		Lines:       cfg.Lines,
		Camera:      cam,
		Floor:       cfg.Floor,
		FloorY:      cfg.FloorY,
		FloorExtent: cfg.FloorExtent,
	}, cfg.RenderSize, cfg.Supersample)

	if cfg.Supersample > 1 {
		img = postprocess.Downsample(img, cfg.RenderSize)
	}
	return img
}

// Run renders all frames using a worker pool. Frames not started before ctx
// is cancelled are reported with the context error.
func Run(ctx context.Context, cfg Config, frames []Frame) []Result {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	workers := max(cfg.Workers, 1)
	every := cfg.ProgressEvery
	if every <= 0 {
		every = 2 * time.Second
	}

	total := len(frames)
	results := make([]Result, total)
	var processed atomic.Int64

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if p := processed.Load(); p > 0 {
					rate := float64(p) / time.Since(start).Seconds()
					logger.Info("rendering", "done", p, "total", total, "fps", fmt.Sprintf("%.1f", rate))
				}
			}
		}
	}()

	// Worker pool
	frameChan := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range frameChan {
				if err := ctx.Err(); err != nil {
					results[idx] = failed(frames[idx], err.Error())
				} else {
					results[idx] = processFrame(cfg, frames[idx])
				}
				processed.Add(1)
				if r := results[idx]; !r.Success {
					logger.Warn("frame failed", "frame", r.Frame, "err", r.Error)
				} else {
					logger.Debug("frame written", "frame", r.Frame, "path", r.Path)
				}
			}
		}()
	}

	// Send work
	for i := range frames {
		frameChan <- i
	}
	close(frameChan)

	wg.Wait()
	close(done)

	logger.Info("turntable finished", "frames", total, "elapsed", time.Since(start).Round(time.Millisecond))
	return results
}

func failed(f Frame, msg string) Result {
	return Result{Frame: f.Index, Yaw: f.Yaw, Pitch: f.Pitch, Error: msg}
}

func processFrame(cfg Config, f Frame) Result {
	img := RenderFrame(cfg, f)
	path := FramePath(cfg, f.Index)
	if err := postprocess.WriteFile(path, img, cfg.Format); err != nil {
		return failed(f, err.Error())
	}
	return Result{
		Frame:   f.Index,
		Yaw:     f.Yaw,
		Pitch:   f.Pitch,
		Path:    path,
		Success: true,
	}
}
