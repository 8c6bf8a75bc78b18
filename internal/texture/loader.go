// Package texture finds and decodes the image files a PMD model's
// materials refer to.
package texture

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
)

// Load reads a BMP, TGA, PNG or JPEG file and returns an NRGBA image.
func Load(path string) (*image.NRGBA, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("texture: read %s: %w", path, err)
	}

	var img image.Image
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".bmp":
		img, err = bmp.Decode(bytes.NewReader(raw))
	case ".tga":
		img, err = tga.Decode(bytes.NewReader(raw))
	case ".png", ".jpg", ".jpeg":
		img, _, err = image.Decode(bytes.NewReader(raw))
	default:
		return nil, fmt.Errorf("texture: unknown extension %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("texture: decode %s: %w", path, err)
	}
	return toNRGBA(img), nil
}

func toNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok {
		return n
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

// Average returns the alpha-weighted mean color of img. A fully
// transparent or empty image averages to transparent black.
func Average(img *image.NRGBA) color.NRGBA {
	var r, g, b, a uint64
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := img.NRGBAAt(x, y)
			w := uint64(c.A)
			r += uint64(c.R) * w
			g += uint64(c.G) * w
			b += uint64(c.B) * w
			a += w
		}
	}
	n := uint64(bounds.Dx() * bounds.Dy())
	if a == 0 || n == 0 {
		return color.NRGBA{}
	}
	return color.NRGBA{
		R: uint8((r + a/2) / a),
		G: uint8((g + a/2) / a),
		B: uint8((b + a/2) / a),
		A: uint8((a + n/2) / n),
	}
}
