package component

import (
	"math"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
)

// Pose is the position and rotation of a scene object. Only Rotation.X (tilt)
// is driven by the flight simulation.
type Pose struct {
	Position mgl64.Vec3
	Rotation mgl64.Vec3
}

// Tilt returns the rotation around the X axis in radians.
func (p Pose) Tilt() float64 {
	return p.Rotation.X()
}

// WithTilt returns a copy of the pose with its X rotation replaced.
func (p Pose) WithTilt(tilt float64) Pose {
	p.Rotation = mgl64.Vec3{tilt, p.Rotation.Y(), p.Rotation.Z()}
	return p
}

// Sphere is a world-space bounding sphere.
type Sphere struct {
	Center mgl64.Vec3
	Radius float64
}

// IntersectsBox reports whether the sphere touches or overlaps the box.
func (s Sphere) IntersectsBox(b cube.BBox) bool {
	if s.Radius < 0 {
		return false
	}
	return BoxPointDistance(b, s.Center) <= s.Radius
}

// BoxPointDistance returns the distance from v to the closest point of b, or
// zero when v is inside b.
func BoxPointDistance(b cube.BBox, v mgl64.Vec3) float64 {
	x := math.Max(b.Min().X()-v.X(), math.Max(0, v.X()-b.Max().X()))
	y := math.Max(b.Min().Y()-v.Y(), math.Max(0, v.Y()-b.Max().Y()))
	z := math.Max(b.Min().Z()-v.Z(), math.Max(0, v.Z()-b.Max().Z()))
	return math.Sqrt(x*x + y*y + z*z)
}
