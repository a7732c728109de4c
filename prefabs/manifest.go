package prefabs

import (
	"errors"
	"fmt"
	"strings"

	"github.com/milk9111/dunk/component"
)

var ErrUnknownRole = errors.New("prefabs: unknown role")

// Manifest maps each role to the model that plays it and names the
// attachments the simulation needs from those models.
type Manifest struct {
	Models       map[string]string `yaml:"models"`
	HandBone     string            `yaml:"hand_bone"`
	GoalCollider string            `yaml:"goal_collider"`
	Clips        ClipNames         `yaml:"clips"`
}

// ClipNames are the character clips the progression logic plays.
type ClipNames struct {
	Idle      string `yaml:"idle"`
	Jump      string `yaml:"jump"`
	Stabilize string `yaml:"stabilize"`
}

func LoadManifest(name string) (Manifest, error) {
	if name == "" {
		name = "manifest.yaml"
	}
	m, err := LoadSpec[Manifest](name)
	if err != nil {
		return Manifest{}, err
	}
	return m.withDefaults(), nil
}

func (m Manifest) withDefaults() Manifest {
	if m.Clips.Idle == "" {
		m.Clips.Idle = "idle"
	}
	if m.Clips.Jump == "" {
		m.Clips.Jump = "jump"
	}
	if m.Clips.Stabilize == "" {
		m.Clips.Stabilize = "stabilize"
	}
	return m
}

// URL returns the model url for role.
func (m Manifest) URL(role component.Role) (string, bool) {
	url, ok := m.Models[role.String()]
	return url, ok && strings.TrimSpace(url) != ""
}

// Validate checks that every required role has a model.
func (m Manifest) Validate() error {
	for name := range m.Models {
		if !knownRole(name) {
			return fmt.Errorf("%w %q", ErrUnknownRole, name)
		}
	}
	for _, role := range component.Roles {
		if _, ok := m.URL(role); !ok && role.Required() {
			return fmt.Errorf("prefabs: manifest: no model for required role %s", role)
		}
	}
	return nil
}

func knownRole(name string) bool {
	for _, role := range component.Roles {
		if role.String() == name {
			return true
		}
	}
	return false
}
