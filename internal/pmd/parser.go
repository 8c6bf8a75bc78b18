package pmd

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"

	"golang.org/x/text/encoding/japanese"
)

// Section sizes in bytes.
const (
	headerSize   = 3 + 4 + 20 + 256
	vertexSize   = 38
	materialSize = 70
	boneSize     = 39
)

// ErrTruncated is returned when a section runs past the end of the data.
var ErrTruncated = errors.New("pmd: truncated data")

// Parse reads a PMD file from disk.
func Parse(filepath string) (*Model, error) {
	raw, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("pmd: read %s: %w", filepath, err)
	}
	m, err := Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("%w in %s", err, filepath)
	}
	return m, nil
}

// Decode parses PMD bytes. Sections after the bone table (IK chains,
// morphs, display groups, English names) are ignored.
func Decode(data []byte) (*Model, error) {
	if len(data) < headerSize || string(data[:3]) != "Pmd" {
		return nil, fmt.Errorf("pmd: invalid header")
	}
	r := &reader{data: data, off: 3}
	m := &Model{}
	m.Version = r.readF32()
	m.Name = r.readStr(20)
	m.Comment = r.readStr(256)

	nv, err := r.count(r.readU32(), vertexSize, "vertex")
	if err != nil {
		return nil, err
	}
	m.Vertices = make([]Vertex, nv)
	for i := range m.Vertices {
		v := &m.Vertices[i]
		v.Position = r.readVec3()
		v.Normal = r.readVec3()
		v.UV[0] = r.readF32()
		v.UV[1] = r.readF32()
		v.Bones[0] = r.readU16()
		v.Bones[1] = r.readU16()
		v.Weight = r.readByte()
		v.NoEdge = r.readByte() != 0
	}

	ni, err := r.count(r.readU32(), 2, "index")
	if err != nil {
		return nil, err
	}
	if ni%3 != 0 {
		return nil, fmt.Errorf("pmd: index count %d is not a triangle list", ni)
	}
	m.Indices = make([]uint16, ni)
	for i := range m.Indices {
		idx := r.readU16()
		if int(idx) >= nv {
			return nil, fmt.Errorf("pmd: index %d references vertex %d of %d", i, idx, nv)
		}
		m.Indices[i] = idx
	}

	nm, err := r.count(r.readU32(), materialSize, "material")
	if err != nil {
		return nil, err
	}
	m.Materials = make([]Material, nm)
	covered := 0
	for i := range m.Materials {
		mat := &m.Materials[i]
		for k := 0; k < 4; k++ {
			mat.Diffuse[k] = r.readF32()
		}
		mat.Specularity = r.readF32()
		mat.Specular = r.readVec3()
		mat.Ambient = r.readVec3()
		mat.Toon = r.readByte()
		mat.Edge = r.readByte() != 0
		mat.FaceCount = int(r.readU32())
		mat.Texture = r.readStr(20)
		covered += mat.FaceCount
	}
	if covered > ni {
		return nil, fmt.Errorf("pmd: materials cover %d indices, model has %d", covered, ni)
	}

	nb, err := r.count(uint32(r.readU16()), boneSize, "bone")
	if err != nil {
		return nil, err
	}
	m.Bones = make([]Bone, nb)
	for i := range m.Bones {
		b := &m.Bones[i]
		b.Name = r.readStr(20)
		b.Parent = r.readLink()
		b.Tail = r.readLink()
		b.Kind = BoneKind(r.readByte())
		b.IKParent = r.readLink()
		b.Position = r.readVec3()
		if b.Parent >= nb {
			return nil, fmt.Errorf("pmd: bone %d (%s): parent %d out of range", i, b.Name, b.Parent)
		}
	}

	if r.short {
		return nil, ErrTruncated
	}
	return m, nil
}

type reader struct {
	data  []byte
	off   int
	short bool
}

// count checks that n records of size bytes fit in the remaining data.
func (r *reader) count(n uint32, size int, what string) (int, error) {
	if r.short {
		return 0, ErrTruncated
	}
	if int64(n)*int64(size) > int64(len(r.data)-r.off) {
		return 0, fmt.Errorf("pmd: %d %s records exceed remaining %d bytes: %w",
			n, what, len(r.data)-r.off, ErrTruncated)
	}
	return int(n), nil
}

func (r *reader) take(n int) []byte {
	if r.off+n > len(r.data) {
		r.off = len(r.data)
		r.short = true
		return nil
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}

// readStr reads a fixed-width, NUL-terminated Shift-JIS field.
func (r *reader) readStr(n int) string {
	s := r.take(n)
	if i := bytes.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}
	out, err := japanese.ShiftJIS.NewDecoder().Bytes(s)
	if err != nil {
		return string(s)
	}
	return string(out)
}

func (r *reader) readU16() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (r *reader) readU32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

// readLink reads a bone reference where 0xFFFF means none.
func (r *reader) readLink() int {
	v := r.readU16()
	if v == 0xFFFF {
		return NoBone
	}
	return int(v)
}

func (r *reader) readF32() float32 {
	return math.Float32frombits(r.readU32())
}

func (r *reader) readVec3() [3]float32 {
	return [3]float32{r.readF32(), r.readF32(), r.readF32()}
}

func (r *reader) readByte() byte {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}
