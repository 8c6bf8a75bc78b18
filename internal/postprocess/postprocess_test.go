package postprocess

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func solid(size int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestDownsample(t *testing.T) {
	c := color.NRGBA{R: 200, G: 40, B: 10, A: 255}
	out := Downsample(solid(8, c), 4)
	if b := out.Bounds(); b.Dx() != 4 || b.Dy() != 4 {
		t.Fatalf("size = %v", b)
	}
	got := out.NRGBAAt(1, 2)
	for i, pair := range [4][2]uint8{{got.R, c.R}, {got.G, c.G}, {got.B, c.B}, {got.A, c.A}} {
		if d := int(pair[0]) - int(pair[1]); d < -1 || d > 1 {
			t.Errorf("channel %d = %d, want %d", i, pair[0], pair[1])
		}
	}

	same := solid(4, c)
	if Downsample(same, 4) != same {
		t.Error("Downsample at target size should return its input")
	}
}

func TestDownsampleNoDarkFringe(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 4; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}
	out := Downsample(img, 4)
	for x := 0; x < 4; x++ {
		p := out.NRGBAAt(x, 2)
		if p.A > 16 && p.R < 240 {
			t.Errorf("pixel %d = %v: edge darkened", x, p)
		}
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"webp", WebP, false},
		{".PNG", PNG, false},
		{"tga", TGA, false},
		{".jpg", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
	if f, err := FormatFromPath("out/frame_001.webp"); err != nil || f != WebP {
		t.Errorf("FormatFromPath = %q, %v", f, err)
	}
}

func TestEncode(t *testing.T) {
	img := solid(4, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	for _, f := range []Format{WebP, TGA, PNG} {
		var buf bytes.Buffer
		if err := Encode(&buf, img, f); err != nil {
			t.Fatalf("Encode(%s): %v", f, err)
		}
		if buf.Len() == 0 {
			t.Errorf("Encode(%s) wrote nothing", f)
		}
		if f == WebP && !bytes.HasPrefix(buf.Bytes(), []byte("RIFF")) {
			t.Errorf("webp output starts with %q", buf.Bytes()[:4])
		}
	}
	if err := Encode(&bytes.Buffer{}, img, "gif"); err == nil {
		t.Error("Encode accepted an unknown format")
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.png")
	if err := WriteFile(path, solid(3, color.NRGBA{A: 255}), PNG); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil || cfg.Width != 3 {
		t.Errorf("DecodeConfig = %+v, %v", cfg, err)
	}
}
