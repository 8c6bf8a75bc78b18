package raster

import (
	"image"
	"image/color"

	"pmd-rigview/internal/linemesh"
	"pmd-rigview/internal/mathutil"
	"pmd-rigview/internal/model"
	"pmd-rigview/internal/viewmatrix"
)

// LineBias lifts overlay lines toward the camera in depth-buffer units.
const LineBias = 2e-4

// Floor colors.
var (
	floorLight = color.NRGBA{R: 150, G: 150, B: 155, A: 255}
	floorDark  = color.NRGBA{R: 105, G: 105, B: 112, A: 255}
)

// Scene is everything one frame draws. Any part may be left empty.
type Scene struct {
	Mesh   *model.Mesh
	Lines  *linemesh.Builder
	Camera viewmatrix.Camera

	Floor       bool
	FloorY      float64
	FloorExtent float64 // half-size of the floor around the camera target
	FloorTiles  int

	Background color.NRGBA
}

// Render draws the scene into a size×size image at size*supersample
// resolution. Callers downsample with postprocess.Downsample.
func Render(s Scene, size, supersample int) *image.NRGBA {
	supersample = max(supersample, 1)
	renderSize := size * supersample

	cam := s.Camera
	cam.Width, cam.Height = renderSize, renderSize
	p := newProjector(cam)

	fb := NewFrameBuffer(renderSize, renderSize)
	fb.Fill(s.Background)
	lc := DefaultLightConfig()

	if s.Floor {
		drawFloor(fb, p, &lc, s)
	}
	if s.Mesh != nil {
		drawMesh(fb, p, &lc, s.Mesh)
	}
	if s.Lines != nil {
		drawLines(fb, p, s.Lines, supersample)
	}
	return fb.Image()
}

// projector caches the camera matrices for one frame.
type projector struct {
	vp     mathutil.Mat4
	view   mathutil.Mat3
	width  float64
	height float64
}

func newProjector(c viewmatrix.Camera) projector {
	return projector{
		vp:     c.ViewProjection(),
		view:   c.View().Linear(),
		width:  float64(c.Width),
		height: float64(c.Height),
	}
}

// clipW is the smallest clip-space w kept; geometry closer than this to the
// eye plane is cut.
const clipW = 1e-5

func (p projector) clip(v mathutil.Vec3) mathutil.Vec4 {
	return p.vp.MulVec4(v.Point())
}

func (p projector) screen(c mathutil.Vec4) ScreenVert {
	ndc := c.PerspectiveDivide()
	return ScreenVert{
		X: (ndc[0] + 1) / 2 * p.width,
		Y: (1 - ndc[1]) / 2 * p.height,
		Z: -ndc[2],
	}
}

// shade lights a flat face given its world-space corners.
func (p projector) shade(lc *LightConfig, a, b, c mathutil.Vec3, col color.NRGBA) (color.NRGBA, bool) {
	n := b.Sub(a).Cross(c.Sub(a))
	if n.Len() < 1e-12 {
		return col, false
	}
	nv := p.view.MulVec3(n).Normalize()
	return lc.ShadeColor(col, lc.ComputeShade(nv)), true
}

func drawMesh(fb *FrameBuffer, p projector, lc *LightConfig, m *model.Mesh) {
	verts := make([]ScreenVert, len(m.Positions))
	visible := make([]bool, len(m.Positions))
	for i, v := range m.Positions {
		c := p.clip(v)
		if visible[i] = c[3] > clipW; visible[i] {
			verts[i] = p.screen(c)
		}
	}

	for _, mat := range m.Materials {
		if mat.Color.A < 8 {
			continue
		}
		for _, tri := range m.Triangles[mat.First : mat.First+mat.Count] {
			if !visible[tri[0]] || !visible[tri[1]] || !visible[tri[2]] {
				continue
			}
			col, ok := p.shade(lc, m.Positions[tri[0]], m.Positions[tri[1]], m.Positions[tri[2]], mat.Color)
			if !ok {
				continue
			}
			RasterizeTriangle(fb, verts[tri[0]], verts[tri[1]], verts[tri[2]], col)
		}
	}
}

// drawFloor lays a checkerboard on the plane y = FloorY under the camera
// target.
func drawFloor(fb *FrameBuffer, p projector, lc *LightConfig, s Scene) {
	tiles := s.FloorTiles
	if tiles < 1 {
		tiles = 8
	}
	ext := s.FloorExtent
	if ext <= 0 {
		ext = 10
	}
	step := 2 * ext / float64(tiles)
	x0, z0 := s.Camera.Target[0]-ext, s.Camera.Target[2]-ext

	for i := 0; i < tiles; i++ {
		for k := 0; k < tiles; k++ {
			col := floorLight
			if (i+k)%2 == 1 {
				col = floorDark
			}
			xa, xb := x0+float64(i)*step, x0+float64(i+1)*step
			za, zb := z0+float64(k)*step, z0+float64(k+1)*step
			q := [4]mathutil.Vec3{
				{xa, s.FloorY, zb}, {xb, s.FloorY, zb},
				{xb, s.FloorY, za}, {xa, s.FloorY, za},
			}
			for _, tri := range [2][3]int{{0, 1, 2}, {2, 3, 0}} {
				a, b, c := q[tri[0]], q[tri[1]], q[tri[2]]
				ca, cb, cc := p.clip(a), p.clip(b), p.clip(c)
				if ca[3] <= clipW || cb[3] <= clipW || cc[3] <= clipW {
					continue
				}
				shaded, ok := p.shade(lc, a, b, c, col)
				if !ok {
					continue
				}
				RasterizeTriangle(fb, p.screen(ca), p.screen(cb), p.screen(cc), shaded)
			}
		}
	}
}

func drawLines(fb *FrameBuffer, p projector, b *linemesh.Builder, width int) {
	for _, l := range b.Lines {
		ca := p.clip(b.Vertices[l[0]])
		cb := p.clip(b.Vertices[l[1]])
		ca, cb, ok := clipNear(ca, cb)
		if !ok {
			continue
		}
		DrawLine(fb, p.screen(ca), p.screen(cb), b.Colors[l[0]], width, LineBias)
	}
}

// clipNear cuts a clip-space segment at w = clipW.
func clipNear(a, b mathutil.Vec4) (mathutil.Vec4, mathutil.Vec4, bool) {
	ina, inb := a[3] > clipW, b[3] > clipW
	switch {
	case ina && inb:
		return a, b, true
	case !ina && !inb:
		return a, b, false
	}
	t := (clipW - a[3]) / (b[3] - a[3])
	var m mathutil.Vec4
	for i := range m {
		m[i] = a[i] + (b[i]-a[i])*t
	}
	if ina {
		return a, m, true
	}
	return m, b, true
}
