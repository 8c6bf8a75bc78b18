// Package model loads a rig from disk. PMD files supply a mesh and a
// skeleton; JSON joint lists supply only the skeleton.
package model

import (
	"encoding/json"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"

	"pmd-rigview/internal/mathutil"
	"pmd-rigview/internal/pmd"
	"pmd-rigview/internal/skeleton"
	"pmd-rigview/internal/texture"
)

// Material is a run of triangles drawn in one color.
type Material struct {
	Color   color.NRGBA
	First   int // first triangle
	Count   int
	Texture string
}

// Mesh is an indexed triangle mesh in model space.
type Mesh struct {
	Positions []mathutil.Vec3
	Normals   []mathutil.Vec3
	Triangles [][3]int
	Materials []Material
}

// Model is a loaded rig.
type Model struct {
	Name   string
	Path   string
	Joints []skeleton.Joint
	Mesh   *Mesh // nil for joint lists
}

// Options control loading.
type Options struct {
	CollapseCoincident bool
}

// Load reads path, choosing the format by extension.
func Load(path string, opts Options) (*Model, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".pmd":
		return loadPMD(path, opts)
	case ".json":
		return loadJSON(path)
	default:
		return nil, fmt.Errorf("model: unsupported format %q for %s", ext, path)
	}
}

func loadPMD(path string, opts Options) (*Model, error) {
	pm, err := pmd.Parse(path)
	if err != nil {
		return nil, err
	}
	jm, err := pmd.Joints(pm, pmd.JointOptions{CollapseCoincident: opts.CollapseCoincident})
	if err != nil {
		return nil, fmt.Errorf("%w in %s", err, path)
	}
	return &Model{
		Name:   pm.Name,
		Path:   path,
		Joints: jm.Joints,
		Mesh:   meshFromPMD(pm, texture.NewCache(texture.BuildIndex(filepath.Dir(path)))),
	}, nil
}

// meshFromPMD converts pm. Materials with a texture found in tex are
// tinted by the texture's mean color; tex may be nil.
func meshFromPMD(pm *pmd.Model, tex *texture.Cache) *Mesh {
	m := &Mesh{
		Positions: make([]mathutil.Vec3, len(pm.Vertices)),
		Normals:   make([]mathutil.Vec3, len(pm.Vertices)),
		Triangles: make([][3]int, len(pm.Indices)/3),
	}
	for i, v := range pm.Vertices {
		m.Positions[i] = vec(v.Position)
		m.Normals[i] = vec(v.Normal)
	}
	for i := range m.Triangles {
		idx := pm.Indices[i*3 : i*3+3]
		m.Triangles[i] = [3]int{int(idx[0]), int(idx[1]), int(idx[2])}
	}

	first := 0
	for _, mat := range pm.Materials {
		n := mat.FaceCount / 3
		c := diffuse(mat.Diffuse)
		if tex != nil && mat.Texture != "" {
			if avg, ok := tex.Average(mat.Texture); ok {
				c = modulate(c, avg)
			}
		}
		m.Materials = append(m.Materials, Material{
			Color:   c,
			First:   first,
			Count:   n,
			Texture: mat.Texture,
		})
		first += n
	}
	// Triangles past the last material keep the default color.
	if first < len(m.Triangles) {
		m.Materials = append(m.Materials, Material{
			Color: DefaultColor,
			First: first,
			Count: len(m.Triangles) - first,
		})
	}
	return m
}

// DefaultColor is used for triangles without a material.
var DefaultColor = color.NRGBA{R: 200, G: 200, B: 200, A: 255}

func diffuse(c [4]float32) color.NRGBA {
	to8 := func(f float32) uint8 {
		return uint8(math.Round(math.Max(0, math.Min(1, float64(f))) * 255))
	}
	return color.NRGBA{R: to8(c[0]), G: to8(c[1]), B: to8(c[2]), A: to8(c[3])}
}

// modulate multiplies the color channels of c by t, keeping c's alpha.
func modulate(c, t color.NRGBA) color.NRGBA {
	mul := func(a, b uint8) uint8 { return uint8((uint16(a)*uint16(b) + 127) / 255) }
	return color.NRGBA{R: mul(c.R, t.R), G: mul(c.G, t.G), B: mul(c.B, t.B), A: c.A}
}

// jointFile is the JSON joint-list format.
type jointFile struct {
	Name   string `json:"name"`
	Joints []struct {
		ID     int        `json:"id"`
		Parent int        `json:"parent"`
		Offset [3]float64 `json:"offset"`
		Name   string     `json:"name,omitempty"`
	} `json:"joints"`
}

func loadJSON(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("model: read %s: %w", path, err)
	}
	var f jointFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("model: parse %s: %w", path, err)
	}
	m := &Model{Name: f.Name, Path: path}
	for _, j := range f.Joints {
		m.Joints = append(m.Joints, skeleton.Joint{
			ID:     j.ID,
			Parent: j.Parent,
			Offset: mathutil.Vec3(j.Offset),
			Name:   j.Name,
		})
	}
	if m.Name == "" {
		m.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return m, nil
}

// Skeleton builds the model's joints.
func (m *Model) Skeleton() (*skeleton.Skeleton, error) {
	sk, err := skeleton.Build(m.Joints)
	if err != nil {
		return nil, fmt.Errorf("model: %s: %w", m.Name, err)
	}
	return sk, nil
}

// Bounds returns the axis-aligned box around the mesh, or around the joint
// positions when there is no mesh.
func (m *Model) Bounds() (lo, hi mathutil.Vec3) {
	var pts []mathutil.Vec3
	if m.Mesh != nil && len(m.Mesh.Positions) > 0 {
		pts = m.Mesh.Positions
	} else {
		pts = JointPositions(m.Joints)
	}
	if len(pts) == 0 {
		return lo, hi
	}
	lo, hi = pts[0], pts[0]
	for _, p := range pts[1:] {
		for k := 0; k < 3; k++ {
			lo[k] = math.Min(lo[k], p[k])
			hi[k] = math.Max(hi[k], p[k])
		}
	}
	return lo, hi
}

// BoundingSphere returns the center and half-diagonal of Bounds.
func (m *Model) BoundingSphere() (mathutil.Vec3, float64) {
	lo, hi := m.Bounds()
	return lo.Add(hi).Scale(0.5), hi.Sub(lo).Len() / 2
}

// JointPositions accumulates offsets into model-space joint positions.
// Joints must be parent-first, as Build requires; a bad parent id yields
// that joint's own offset.
func JointPositions(joints []skeleton.Joint) []mathutil.Vec3 {
	pos := make([]mathutil.Vec3, len(joints))
	for i, j := range joints {
		pos[i] = j.Offset
		if j.Parent >= 0 && j.Parent < i {
			pos[i] = pos[j.Parent].Add(j.Offset)
		}
	}
	return pos
}

func vec(v [3]float32) mathutil.Vec3 {
	return mathutil.Vec3{float64(v[0]), float64(v[1]), float64(v[2])}
}
