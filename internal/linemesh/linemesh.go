// Package linemesh builds line-list geometry for skeleton overlays: bone
// segments, pick cylinders, and coordinate-frame gizmos. Every Add method
// appends to the builder and returns the range of lines it added, so callers
// never track a shared running index.
package linemesh

import (
	"image/color"
	"math"

	"pmd-rigview/internal/mathutil"
	"pmd-rigview/internal/skeleton"
)

// Overlay colors.
var (
	ColorBone      = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	ColorSelected  = color.NRGBA{R: 255, G: 200, B: 40, A: 255}
	ColorCylinder  = color.NRGBA{R: 80, G: 220, B: 255, A: 255}
	ColorTangent   = color.NRGBA{R: 230, G: 60, B: 60, A: 255}
	ColorNormal    = color.NRGBA{R: 60, G: 200, B: 60, A: 255}
	ColorBinormal  = color.NRGBA{R: 70, G: 110, B: 240, A: 255}
	axisColors     = [3]color.NRGBA{ColorTangent, ColorNormal, ColorBinormal}
	defaultSegment = 16
)

// Range is a span of line indices in a Builder.
type Range struct {
	First int
	Count int
}

// End returns the index one past the last line.
func (r Range) End() int { return r.First + r.Count }

// Builder accumulates vertices and index pairs. Each vertex carries a color.
type Builder struct {
	Vertices []mathutil.Vec3
	Colors   []color.NRGBA
	Lines    [][2]uint32
}

// Reset empties the builder, keeping capacity.
func (b *Builder) Reset() {
	b.Vertices = b.Vertices[:0]
	b.Colors = b.Colors[:0]
	b.Lines = b.Lines[:0]
}

// Slice returns the lines of r.
func (b *Builder) Slice(r Range) [][2]uint32 {
	return b.Lines[r.First:r.End()]
}

func (b *Builder) begin() Range {
	return Range{First: len(b.Lines)}
}

func (b *Builder) finish(r Range) Range {
	r.Count = len(b.Lines) - r.First
	return r
}

func (b *Builder) vertex(p mathutil.Vec3, c color.NRGBA) uint32 {
	b.Vertices = append(b.Vertices, p)
	b.Colors = append(b.Colors, c)
	return uint32(len(b.Vertices) - 1)
}

func (b *Builder) line(p, q mathutil.Vec3, c color.NRGBA) {
	i := b.vertex(p, c)
	j := b.vertex(q, c)
	b.Lines = append(b.Lines, [2]uint32{i, j})
}

// AddAxes draws the world x, y and z axes from the origin.
func (b *Builder) AddAxes(length float64) Range {
	r := b.begin()
	for i := 0; i < 3; i++ {
		b.line(mathutil.Vec3{}, mathutil.Axis(i).Scale(length), axisColors[i])
	}
	return b.finish(r)
}

// AddSkeleton draws one line per bone from its world start to world end,
// in ascending bone id order.
func (b *Builder) AddSkeleton(sk *skeleton.Skeleton, c color.NRGBA) Range {
	r := b.begin()
	worlds := sk.WorldTransforms()
	for id := 1; id <= sk.BoneCount(); id++ {
		bone, _ := sk.Bone(id)
		w := worlds[id]
		b.line(w.MulPoint(mathutil.Vec3{}), w.MulPoint(mathutil.Vec3{bone.Length, 0, 0}), c)
	}
	return b.finish(r)
}

// AddBone draws a single bone segment.
func (b *Builder) AddBone(sk *skeleton.Skeleton, id int, c color.NRGBA) (Range, error) {
	start, end, err := sk.Segment(id)
	if err != nil {
		return Range{}, err
	}
	r := b.begin()
	b.line(start, end, c)
	return b.finish(r), nil
}

// AddCoordinateFrame draws the bone's tangent, normal and binormal at its
// world start point, each scale units long.
func (b *Builder) AddCoordinateFrame(sk *skeleton.Skeleton, id int, scale float64) (Range, error) {
	w, err := sk.WorldTransform(id)
	if err != nil {
		return Range{}, err
	}
	r := b.begin()
	origin := w.MulPoint(mathutil.Vec3{})
	for i := 0; i < 3; i++ {
		b.line(origin, w.MulPoint(mathutil.Axis(i).Scale(scale)), axisColors[i])
	}
	return b.finish(r), nil
}

// AddCylinder draws a wireframe of the bone's pick volume: rings+1 circles
// spaced evenly along the bone, joined by segments longitudinal lines.
// Non-positive rings or segments fall back to 1 and 16.
func (b *Builder) AddCylinder(sk *skeleton.Skeleton, id int, radius float64, rings, segments int, c color.NRGBA) (Range, error) {
	w, err := sk.WorldTransform(id)
	if err != nil {
		return Range{}, err
	}
	bone, _ := sk.Bone(id)
	if rings < 1 {
		rings = 1
	}
	if segments < 3 {
		segments = defaultSegment
	}

	at := func(x float64, k int) mathutil.Vec3 {
		a := 2 * math.Pi * float64(k) / float64(segments)
		return w.MulPoint(mathutil.Vec3{x, radius * math.Cos(a), radius * math.Sin(a)})
	}

	r := b.begin()
	for ring := 0; ring <= rings; ring++ {
		x := bone.Length * float64(ring) / float64(rings)
		for k := 0; k < segments; k++ {
			b.line(at(x, k), at(x, k+1), c)
		}
	}
	for k := 0; k < segments; k++ {
		b.line(at(0, k), at(bone.Length, k), c)
	}
	return b.finish(r), nil
}
