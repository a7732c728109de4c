package levels

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/zeebo/xxh3"
	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidLevel = errors.New("levels: invalid level")
	ErrEmptyCatalog = errors.New("levels: catalog has no levels")
)

// LevelConfig holds the tunables of one level. It is immutable once the
// catalog is built.
type LevelConfig struct {
	Name                     string
	InitialCharacterPosition mgl64.Vec3
	InitialCharacterRotation mgl64.Vec3
	CameraPosition           mgl64.Vec3
	RisingSpeed              float64
	// FallingStartFraction is the share of the initial forward distance
	// travelled before the descent starts.
	FallingStartFraction  float64
	FallingSpeed          float64
	ForwardSpeed          float64
	FlipSpeedPerFlipInput float64
	MinimumFlips          int
	// OnEnter names a script run once when the level is entered.
	OnEnter string
}

// Validate checks what a level must satisfy before it can be played.
func (l LevelConfig) Validate() error {
	if !(l.FallingStartFraction > 0 && l.FallingStartFraction <= 1) {
		return fmt.Errorf("%w %q: falling_start_fraction %v outside (0,1]", ErrInvalidLevel, l.Name, l.FallingStartFraction)
	}
	speeds := []struct {
		name  string
		value float64
	}{
		{"rising_speed", l.RisingSpeed},
		{"falling_speed", l.FallingSpeed},
		{"forward_speed", l.ForwardSpeed},
		{"flip_speed_per_flip_input", l.FlipSpeedPerFlipInput},
	}
	for _, s := range speeds {
		if !(s.value > 0) || math.IsInf(s.value, 0) {
			return fmt.Errorf("%w %q: %s must be > 0, got %v", ErrInvalidLevel, l.Name, s.name, s.value)
		}
	}
	if l.MinimumFlips < 0 {
		return fmt.Errorf("%w %q: minimum_flips must be >= 0, got %d", ErrInvalidLevel, l.Name, l.MinimumFlips)
	}
	if !(l.InitialCharacterPosition.Z() > 0) {
		return fmt.Errorf("%w %q: initial forward distance must be > 0, got %v", ErrInvalidLevel, l.Name, l.InitialCharacterPosition.Z())
	}
	return nil
}

// FlipThresholdDegrees is the tilt, in degrees, that must be reached for the
// attempt to count as having enough flips.
func (l LevelConfig) FlipThresholdDegrees() float64 {
	return -180 * float64(l.MinimumFlips+2)
}

// Catalog is the ordered list of levels.
type Catalog struct {
	levels      []LevelConfig
	fingerprint uint64
}

// New validates levels and builds a catalog from them.
func New(levels ...LevelConfig) (*Catalog, error) {
	if len(levels) == 0 {
		return nil, ErrEmptyCatalog
	}
	for i, l := range levels {
		if err := l.Validate(); err != nil {
			return nil, fmt.Errorf("level %d: %w", i, err)
		}
	}
	return &Catalog{levels: append([]LevelConfig(nil), levels...)}, nil
}

// Len returns the number of levels.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.levels)
}

// Level returns the level at index, or false when out of range.
func (c *Catalog) Level(index int) (LevelConfig, bool) {
	if c == nil || index < 0 || index >= len(c.levels) {
		return LevelConfig{}, false
	}
	return c.levels[index], true
}

// Levels returns a copy of all levels in order.
func (c *Catalog) Levels() []LevelConfig {
	if c == nil {
		return nil
	}
	return append([]LevelConfig(nil), c.levels...)
}

// Names returns the level names in order.
func (c *Catalog) Names() []string {
	names := make([]string, c.Len())
	for i := range names {
		names[i] = c.levels[i].Name
	}
	return names
}

// Fingerprint is a hash of the source bytes the catalog was parsed from. It
// is zero for catalogs built with New.
func (c *Catalog) Fingerprint() uint64 {
	if c == nil {
		return 0
	}
	return c.fingerprint
}

type catalogFile struct {
	Levels []levelSpec `yaml:"levels"`
}

type levelSpec struct {
	Name                     string    `yaml:"name"`
	InitialCharacterPosition []float64 `yaml:"initial_character_position"`
	InitialCharacterRotation []float64 `yaml:"initial_character_rotation"`
	CameraPosition           []float64 `yaml:"camera_position"`
	RisingSpeed              float64   `yaml:"rising_speed"`
	FallingStartFraction     float64   `yaml:"falling_start_fraction"`
	FallingSpeed             float64   `yaml:"falling_speed"`
	ForwardSpeed             float64   `yaml:"forward_speed"`
	FlipSpeedPerFlipInput    float64   `yaml:"flip_speed_per_flip_input"`
	MinimumFlips             int       `yaml:"minimum_flips"`
	OnEnter                  string    `yaml:"on_enter"`
}

// Parse decodes a yaml catalog and validates every level.
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("levels: unmarshal: %w", err)
	}

	levels := make([]LevelConfig, 0, len(file.Levels))
	for i, spec := range file.Levels {
		lvl, err := spec.config()
		if err != nil {
			return nil, fmt.Errorf("level %d: %w", i, err)
		}
		if lvl.Name == "" {
			lvl.Name = fmt.Sprintf("level-%d", i+1)
		}
		levels = append(levels, lvl)
	}

	c, err := New(levels...)
	if err != nil {
		return nil, err
	}
	c.fingerprint = Fingerprint(data)
	return c, nil
}

// Fingerprint hashes raw catalog bytes.
func Fingerprint(data []byte) uint64 {
	return xxh3.Hash(data)
}

func (s levelSpec) config() (LevelConfig, error) {
	pos, err := vec3(s.InitialCharacterPosition, "initial_character_position", true)
	if err != nil {
		return LevelConfig{}, err
	}
	rot, err := vec3(s.InitialCharacterRotation, "initial_character_rotation", false)
	if err != nil {
		return LevelConfig{}, err
	}
	cam, err := vec3(s.CameraPosition, "camera_position", false)
	if err != nil {
		return LevelConfig{}, err
	}
	return LevelConfig{
		Name:                     s.Name,
		InitialCharacterPosition: pos,
		InitialCharacterRotation: rot,
		CameraPosition:           cam,
		RisingSpeed:              s.RisingSpeed,
		FallingStartFraction:     s.FallingStartFraction,
		FallingSpeed:             s.FallingSpeed,
		ForwardSpeed:             s.ForwardSpeed,
		FlipSpeedPerFlipInput:    s.FlipSpeedPerFlipInput,
		MinimumFlips:             s.MinimumFlips,
		OnEnter:                  s.OnEnter,
	}, nil
}

func vec3(v []float64, field string, required bool) (mgl64.Vec3, error) {
	switch {
	case len(v) == 0 && !required:
		return mgl64.Vec3{}, nil
	case len(v) != 3:
		return mgl64.Vec3{}, fmt.Errorf("%w: %s needs 3 components, got %d", ErrInvalidLevel, field, len(v))
	}
	return mgl64.Vec3{v[0], v[1], v[2]}, nil
}
