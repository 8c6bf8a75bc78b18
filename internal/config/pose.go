package config

import (
	"fmt"

	"pmd-rigview/internal/mathutil"
	"pmd-rigview/internal/skeleton"
)

// Pose rotates one bone relative to its bind pose. The bone is chosen by
// id, or by name when Bone is 0. Euler is XYZ degrees about the bone's own
// axes; Roll is an extra spin about its length, applied last.
type Pose struct {
	Bone  int        `toml:"bone"`
	Name  string     `toml:"name"`
	Euler [3]float64 `toml:"euler"`
	Roll  float64    `toml:"roll"`
}

// Rotation returns the local rotation the pose applies.
func (p Pose) Rotation() mathutil.Mat3 {
	q := mathutil.EulerToQuat(
		mathutil.Deg2Rad(p.Euler[0]),
		mathutil.Deg2Rad(p.Euler[1]),
		mathutil.Deg2Rad(p.Euler[2]),
	)
	return mathutil.Mat3Mul(mathutil.QuatToMat3(q), mathutil.RotX(mathutil.Deg2Rad(p.Roll)))
}

// Resolve returns the bone id the pose targets.
func (p Pose) Resolve(sk *skeleton.Skeleton) (int, error) {
	if p.Bone != 0 {
		if _, err := sk.Bone(p.Bone); err != nil {
			return 0, fmt.Errorf("config: pose: %w", err)
		}
		return p.Bone, nil
	}
	if p.Name == "" {
		return 0, fmt.Errorf("config: pose needs a bone id or name")
	}
	for id := 1; id <= sk.BoneCount(); id++ {
		if b, _ := sk.Bone(id); b.Name == p.Name {
			return id, nil
		}
	}
	return 0, fmt.Errorf("config: pose: no bone named %q", p.Name)
}

// ApplyPoses applies every pose in order on top of the current pose.
func ApplyPoses(sk *skeleton.Skeleton, poses []Pose) error {
	for _, p := range poses {
		id, err := p.Resolve(sk)
		if err != nil {
			return err
		}
		if err := sk.RotateLocal(id, p.Rotation()); err != nil {
			return err
		}
	}
	return nil
}
