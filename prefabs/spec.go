package prefabs

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

var ErrBadVector = errors.New("prefabs: vector needs 3 components")

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// ModelSpec describes a scene object and its named children (bones,
// colliders). Size is the full box extent; Radius, when set, makes the object
// a sphere.
type ModelSpec struct {
	Name     string      `yaml:"name"`
	Position []float64   `yaml:"position"`
	Rotation []float64   `yaml:"rotation"`
	Size     []float64   `yaml:"size"`
	Radius   float64     `yaml:"radius"`
	Children []ModelSpec `yaml:"children"`
	Clips    []ClipSpec  `yaml:"clips"`
}

// ClipSpec is an animation clip of a model.
type ClipSpec struct {
	Name     string  `yaml:"name"`
	Duration float64 `yaml:"duration"`
	Loop     bool    `yaml:"loop"`
}

func LoadModelSpec(name string) (ModelSpec, error) {
	return LoadSpec[ModelSpec](name)
}

// Vec3 converts an optional yaml triple.
func Vec3(v []float64) (mgl64.Vec3, error) {
	switch len(v) {
	case 0:
		return mgl64.Vec3{}, nil
	case 3:
		return mgl64.Vec3{v[0], v[1], v[2]}, nil
	default:
		return mgl64.Vec3{}, fmt.Errorf("%w: got %d", ErrBadVector, len(v))
	}
}

// TuningSpec holds simulation constants shared by every level.
type TuningSpec struct {
	ReferenceFPS float64 `yaml:"reference_fps"`
	TiltStep     float64 `yaml:"tilt_step"`
	TiltBound    float64 `yaml:"tilt_bound"`
	BallDropStep float64 `yaml:"ball_drop_step"`
	FloorY       float64 `yaml:"floor_y"`
	SettleTicks  int     `yaml:"settle_ticks"`
	ScaleByDelta bool    `yaml:"scale_by_delta"`
}

func LoadTuningSpec() (TuningSpec, error) {
	return LoadSpec[TuningSpec]("tuning.yaml")
}
