package obj

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/dunk/component"
)

// FeedbackLog records shown messages. Front ends decide how long each stays up.
type FeedbackLog struct {
	Messages []component.MessageID
}

func (f *FeedbackLog) Show(id component.MessageID) {
	f.Messages = append(f.Messages, id)
}

// Last returns the most recent message.
func (f *FeedbackLog) Last() (component.MessageID, bool) {
	if f == nil || len(f.Messages) == 0 {
		return "", false
	}
	return f.Messages[len(f.Messages)-1], true
}

// CameraRig tracks where the level camera was last placed.
type CameraRig struct {
	Position mgl64.Vec3
	Moves    int
}

func (c *CameraRig) MoveTo(p mgl64.Vec3) {
	c.Position = p
	c.Moves++
}

var ErrDuplicateScenery = errors.New("obj: scenery already spawned")

// SceneryRoot parents spawned scenery under a single node.
type SceneryRoot struct {
	Root *Node
}

func NewSceneryRoot() *SceneryRoot {
	return &SceneryRoot{Root: NewNode("scenery")}
}

func (s *SceneryRoot) Spawn(name string, at mgl64.Vec3) error {
	if name == "" {
		return fmt.Errorf("obj: spawn: empty name")
	}
	if _, ok := s.Root.Child(name); ok {
		return fmt.Errorf("%w: %s", ErrDuplicateScenery, name)
	}
	n := NewBox(name, mgl64.Vec3{1, 1, 1})
	n.SetPosition(at)
	s.Root.Add(n)
	return nil
}

var (
	_ component.Feedback = (*FeedbackLog)(nil)
	_ component.Camera   = (*CameraRig)(nil)
	_ component.Scenery  = (*SceneryRoot)(nil)
)
