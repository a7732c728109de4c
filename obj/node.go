package obj

import (
	"math"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/dunk/component"
)

// Node is an in-memory scene object. A node with a radius is a sphere,
// otherwise it is a box of the given half extents centred on its origin.
type Node struct {
	name     string
	position mgl64.Vec3
	rotation mgl64.Vec3
	half     mgl64.Vec3
	radius   float64
	clips    []Clip

	parent   *Node
	children []*Node
}

var _ component.Node = (*Node)(nil)

// NewNode creates a point node with no extent.
func NewNode(name string) *Node {
	return &Node{name: name}
}

// NewBox creates a box node with the given full size.
func NewBox(name string, size mgl64.Vec3) *Node {
	return &Node{name: name, half: size.Mul(0.5)}
}

// NewSphere creates a sphere node.
func NewSphere(name string, radius float64) *Node {
	return &Node{name: name, radius: radius}
}

// Add attaches child under n, detaching it from any previous parent.
func (n *Node) Add(child *Node) *Node {
	if n == nil || child == nil || child == n {
		return n
	}
	if child.parent != nil {
		child.parent.remove(child)
	}
	child.parent = n
	n.children = append(n.children, child)
	return n
}

func (n *Node) remove(child *Node) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			return
		}
	}
}

func (n *Node) Name() string { return n.name }

func (n *Node) Position() mgl64.Vec3 { return n.position }

func (n *Node) SetPosition(p mgl64.Vec3) { n.position = p }

func (n *Node) Rotation() mgl64.Vec3 { return n.rotation }

func (n *Node) SetRotation(r mgl64.Vec3) { n.rotation = r }

// Children returns the direct children of n.
func (n *Node) Children() []*Node {
	return append([]*Node(nil), n.children...)
}

// Clips returns the animation clips declared for this node.
func (n *Node) Clips() []Clip {
	return append([]Clip(nil), n.clips...)
}

// Radius returns the sphere radius, zero for boxes.
func (n *Node) Radius() float64 { return n.radius }

func (n *Node) orientation() mgl64.Quat {
	local := mgl64.AnglesToQuat(n.rotation.X(), n.rotation.Y(), n.rotation.Z(), mgl64.XYZ)
	if n.parent == nil {
		return local
	}
	return n.parent.orientation().Mul(local)
}

func (n *Node) WorldPosition() mgl64.Vec3 {
	if n.parent == nil {
		return n.position
	}
	return n.parent.WorldPosition().Add(n.parent.orientation().Rotate(n.position))
}

// BoundingBox returns the world-space axis aligned box around the node's
// rotated extent.
func (n *Node) BoundingBox() cube.BBox {
	c := n.WorldPosition()
	if n.radius > 0 {
		r := mgl64.Vec3{n.radius, n.radius, n.radius}
		lo, hi := c.Sub(r), c.Add(r)
		return cube.Box(lo.X(), lo.Y(), lo.Z(), hi.X(), hi.Y(), hi.Z())
	}

	q := n.orientation()
	lo := mgl64.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi := mgl64.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, sx := range []float64{-1, 1} {
		for _, sy := range []float64{-1, 1} {
			for _, sz := range []float64{-1, 1} {
				corner := q.Rotate(mgl64.Vec3{sx * n.half.X(), sy * n.half.Y(), sz * n.half.Z()})
				for i := 0; i < 3; i++ {
					lo[i] = math.Min(lo[i], corner[i])
					hi[i] = math.Max(hi[i], corner[i])
				}
			}
		}
	}
	lo, hi = c.Add(lo), c.Add(hi)
	return cube.Box(lo.X(), lo.Y(), lo.Z(), hi.X(), hi.Y(), hi.Z())
}

func (n *Node) BoundingSphere() component.Sphere {
	r := n.radius
	if r == 0 {
		r = n.half.Len()
	}
	return component.Sphere{Center: n.WorldPosition(), Radius: r}
}

// Child finds a descendant by name, depth first.
func (n *Node) Child(name string) (component.Node, bool) {
	if c := n.find(name); c != nil {
		return c, true
	}
	return nil, false
}

func (n *Node) find(name string) *Node {
	for _, c := range n.children {
		if c.name == name {
			return c
		}
		if found := c.find(name); found != nil {
			return found
		}
	}
	return nil
}
