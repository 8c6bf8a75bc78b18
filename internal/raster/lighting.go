package raster

import (
	"image/color"
	"math"

	"pmd-rigview/internal/mathutil"
)

// Light is a directional light. Dir points toward the light in view space,
// where the camera sits at the origin looking down -z.
type Light struct {
	Dir       mathutil.Vec3
	Intensity float64
}

// LightConfig is the preview lighting rig.
type LightConfig struct {
	Ambient float64
	// Sky is a hemisphere fill, strongest on faces turned sideways.
	Sky    float64
	Lights []Light // Lights[0] is the key light and drives the highlight

	Specular  float64
	Shininess float64

	Exposure float64
	Gamma    float64
}

// DefaultLightConfig returns a key light from the upper right, a rim light
// from behind, and hemisphere fill.
func DefaultLightConfig() LightConfig {
	return LightConfig{
		Ambient: 0.55,
		Sky:     0.50,
		Lights: []Light{
			{Dir: mathutil.Vec3{180, 260, 140}.Normalize(), Intensity: 1.50},
			{Dir: mathutil.Vec3{-160, 130, -210}.Normalize(), Intensity: 0.60},
		},
		Specular:  0.45,
		Shininess: 12,
		Exposure:  1.05,
		Gamma:     2.2,
	}
}

// ComputeShade returns the light reaching a face with view-space normal n.
// Faces are lit from both sides.
func (lc *LightConfig) ComputeShade(n mathutil.Vec3) float64 {
	shade := lc.Ambient + lc.Sky*(1-math.Abs(n[1])/2)
	for _, l := range lc.Lights {
		shade += math.Abs(n.Dot(l.Dir)) * l.Intensity
	}
	if len(lc.Lights) > 0 && lc.Specular > 0 {
		half := lc.Lights[0].Dir.Add(mathutil.Vec3{0, 0, 1}).Normalize()
		if ndh := n.Dot(half); ndh > 0 {
			shade += math.Pow(ndh, lc.Shininess) * lc.Specular
		}
	}
	return shade
}

// filmic is the ACES tone curve.
func filmic(x float64) float64 {
	return (x * (2.51*x + 0.03)) / (x*(2.43*x+0.59) + 0.14)
}

// ShadeColor lights an sRGB color in linear space and tone maps the result
// back. Alpha passes through.
func (lc *LightConfig) ShadeColor(c color.NRGBA, shade float64) color.NRGBA {
	k := shade * lc.Exposure
	inv := 1 / lc.Gamma
	enc := func(v uint8) uint8 {
		linear := math.Pow(float64(v)/255, lc.Gamma)
		return clamp255(math.Pow(filmic(linear*k), inv) * 255)
	}
	return color.NRGBA{R: enc(c.R), G: enc(c.G), B: enc(c.B), A: c.A}
}

func clamp255(v float64) uint8 {
	return uint8(math.Max(0, math.Min(255, v)) + 0.5)
}
