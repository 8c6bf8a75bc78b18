package postprocess

import (
	"image"

	"golang.org/x/image/draw"
)

// Downsample resolves a supersampled render to size×size. Filtering runs
// on premultiplied alpha so that overlay lines and mesh edges fade into the
// transparent background instead of into black.
func Downsample(img *image.NRGBA, size int) *image.NRGBA {
	b := img.Bounds()
	if b.Dx() == size && b.Dy() == size {
		return img
	}

	scaled := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), premultiply(img), b, draw.Src, nil)
	return unpremultiply(scaled)
}

func premultiply(src *image.NRGBA) *image.RGBA {
	dst := image.NewRGBA(src.Bounds())
	for i := 0; i+3 < len(src.Pix); i += 4 {
		a := uint32(src.Pix[i+3])
		for c := 0; c < 3; c++ {
			dst.Pix[i+c] = uint8((uint32(src.Pix[i+c])*a + 127) / 255)
		}
		dst.Pix[i+3] = uint8(a)
	}
	return dst
}

// unpremultiply converts back to straight alpha. Nearly transparent pixels
// keep black color channels; the filter's rounding makes their hue noise.
func unpremultiply(src *image.RGBA) *image.NRGBA {
	dst := image.NewNRGBA(src.Bounds())
	for i := 0; i+3 < len(src.Pix); i += 4 {
		a := uint32(src.Pix[i+3])
		dst.Pix[i+3] = uint8(a)
		if a <= 1 {
			continue
		}
		for c := 0; c < 3; c++ {
			dst.Pix[i+c] = uint8(min((uint32(src.Pix[i+c])*255+a/2)/a, 255))
		}
	}
	return dst
}
