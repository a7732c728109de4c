package component

import (
	"context"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
)

// Node is a scene object with a readable and writable transform.
type Node interface {
	Name() string
	Position() mgl64.Vec3
	SetPosition(p mgl64.Vec3)
	Rotation() mgl64.Vec3
	SetRotation(r mgl64.Vec3)
	// WorldPosition resolves the node through its parents.
	WorldPosition() mgl64.Vec3
	BoundingBox() cube.BBox
	BoundingSphere() Sphere
	// Child looks up a named descendant such as a bone or a collider.
	Child(name string) (Node, bool)
}

// Animator plays named clips on a character.
type Animator interface {
	Play(clip string, once bool)
	// OnFinished registers fn to run when a clip played once reaches its end.
	OnFinished(fn func(clip string))
}

// LoadResult is delivered exactly once per load request.
type LoadResult struct {
	Role Role
	Node Node
	Err  error
}

// Loader resolves role models asynchronously.
type Loader interface {
	Load(ctx context.Context, role Role, url string) <-chan LoadResult
}

// Feedback displays named messages. Timing and removal belong to the sink.
type Feedback interface {
	Show(id MessageID)
}

// Camera receives the camera position of each level.
type Camera interface {
	MoveTo(p mgl64.Vec3)
}

// Scenery spawns decorative objects requested by level scripts.
type Scenery interface {
	Spawn(name string, at mgl64.Vec3) error
}
