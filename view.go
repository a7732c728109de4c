package main

import (
	"image/color"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/dunk/common"
	"github.com/milk9111/dunk/component"
)

const (
	pixelsPerUnit = 50.0
	cameraEase    = 0.08
)

var screenRect = Rect{Width: common.BaseWidth, Height: common.BaseHeight}

// sideView projects the world onto the z/y plane as seen from +x. Forward
// (towards the basket at z=0) is to the right.
type sideView struct {
	centerY, centerZ float64
	placed           bool
}

// follow eases the view towards the level camera.
func (v *sideView) follow(target mgl64.Vec3) {
	if !v.placed {
		v.centerY, v.centerZ, v.placed = target.Y(), target.Z(), true
		return
	}
	v.centerY = common.Lerp(v.centerY, target.Y(), cameraEase)
	v.centerZ = common.Lerp(v.centerZ, target.Z(), cameraEase)
}

func (v *sideView) project(p mgl64.Vec3) (float64, float64) {
	x := common.BaseWidth/2 + (v.centerZ-p.Z())*pixelsPerUnit
	y := common.BaseHeight/2 - (p.Y()-v.centerY)*pixelsPerUnit
	return x, y
}

func (v *sideView) rect(b cube.BBox) Rect {
	x0, y0 := v.project(mgl64.Vec3{0, b.Max().Y(), b.Max().Z()})
	x1, y1 := v.project(mgl64.Vec3{0, b.Min().Y(), b.Min().Z()})
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

func (v *sideView) drawBox(screen *ebiten.Image, b cube.BBox, fill color.Color) {
	r := v.rect(b)
	if !r.Intersects(screenRect) {
		return
	}
	vector.FillRect(screen, float32(r.X), float32(r.Y), float32(r.Width), float32(r.Height), fill, false)
}

func (v *sideView) outlineBox(screen *ebiten.Image, b cube.BBox, stroke color.Color) {
	r := v.rect(b)
	if !r.Intersects(screenRect) {
		return
	}
	vector.StrokeRect(screen, float32(r.X), float32(r.Y), float32(r.Width), float32(r.Height), 2, stroke, false)
}

func (v *sideView) drawSphere(screen *ebiten.Image, s component.Sphere, fill color.Color) {
	x, y := v.project(s.Center)
	r := s.Radius * pixelsPerUnit
	if !(Rect{X: x - r, Y: y - r, Width: 2 * r, Height: 2 * r}).Intersects(screenRect) {
		return
	}
	vector.FillCircle(screen, float32(x), float32(y), float32(r), fill, true)
}

func (v *sideView) drawLine(screen *ebiten.Image, from, to mgl64.Vec3, stroke color.Color) {
	x0, y0 := v.project(from)
	x1, y1 := v.project(to)
	vector.StrokeLine(screen, float32(x0), float32(y0), float32(x1), float32(y1), 3, stroke, true)
}
