package pmd

// NoBone marks an absent parent, tail or IK link in the bone table.
const NoBone = -1

// Vertex is one skinned vertex. Weight is the influence of Bones[0] in
// percent; Bones[1] takes the rest.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	UV       [2]float32
	Bones    [2]uint16
	Weight   uint8
	NoEdge   bool
}

// Material covers the next FaceCount entries of Model.Indices.
type Material struct {
	Diffuse     [4]float32 // rgba
	Specularity float32
	Specular    [3]float32
	Ambient     [3]float32
	Toon        uint8
	Edge        bool
	FaceCount   int
	Texture     string // may carry a "*sphere" suffix
}

// Bone is one entry of the bone table. Position is in model space.
type Bone struct {
	Name     string
	Parent   int // NoBone for roots
	Tail     int
	Kind     BoneKind
	IKParent int
	Position [3]float32
}

// BoneKind is the PMD bone type byte.
type BoneKind uint8

const (
	BoneRotate BoneKind = iota
	BoneRotateMove
	BoneIK
	BoneUnknown
	BoneIKInfluenced
	BoneRotationInfluenced
	BoneIKTarget
	BoneInvisible
	BoneTwist
	BoneRotationFollow
)

var boneKindNames = [...]string{
	"rotate", "rotate+move", "ik", "unknown", "ik-influenced",
	"rotation-influenced", "ik-target", "invisible", "twist", "rotation-follow",
}

func (k BoneKind) String() string {
	if int(k) < len(boneKindNames) {
		return boneKindNames[k]
	}
	return "unknown"
}

// Model holds the sections of a PMD file this package reads: header,
// geometry, materials and the bone table.
type Model struct {
	Version   float32
	Name      string
	Comment   string
	Vertices  []Vertex
	Indices   []uint16 // triangle list
	Materials []Material
	Bones     []Bone
}
