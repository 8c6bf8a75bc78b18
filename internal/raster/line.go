package raster

import (
	"image/color"
	"math"
)

// DrawLine draws a depth-tested segment width pixels wide. bias is added to
// the depth so lines lying on a surface stay visible.
func DrawLine(fb *FrameBuffer, a, b ScreenVert, c color.NRGBA, width int, bias float64) {
	a, b, ok := clipToViewport(a, b, float64(fb.Width), float64(fb.Height))
	if !ok {
		return
	}
	width = max(width, 1)
	lo := -(width - 1) / 2

	steps := int(math.Ceil(math.Max(math.Abs(b.X-a.X), math.Abs(b.Y-a.Y))))
	if steps == 0 {
		steps = 1
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := int(math.Floor(a.X + (b.X-a.X)*t))
		y := int(math.Floor(a.Y + (b.Y-a.Y)*t))
		z := a.Z + (b.Z-a.Z)*t + bias
		for dy := 0; dy < width; dy++ {
			for dx := 0; dx < width; dx++ {
				fb.set(x+lo+dx, y+lo+dy, z, c)
			}
		}
	}
}

// clipToViewport trims the segment to [0,w]×[0,h] (Liang-Barsky), carrying
// depth along.
func clipToViewport(a, b ScreenVert, w, h float64) (ScreenVert, ScreenVert, bool) {
	dx, dy := b.X-a.X, b.Y-a.Y
	t0, t1 := 0.0, 1.0
	edges := [4][2]float64{
		{-dx, a.X},
		{dx, w - a.X},
		{-dy, a.Y},
		{dy, h - a.Y},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return a, b, false
			}
			continue
		}
		r := q / p
		if p < 0 {
			t0 = math.Max(t0, r)
		} else {
			t1 = math.Min(t1, r)
		}
		if t0 > t1 {
			return a, b, false
		}
	}
	lerp := func(t float64) ScreenVert {
		return ScreenVert{a.X + dx*t, a.Y + dy*t, a.Z + (b.Z-a.Z)*t}
	}
	return lerp(t0), lerp(t1), true
}
