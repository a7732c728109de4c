package main

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/milk9111/dunk/common"
	"github.com/milk9111/dunk/component"
	"golang.org/x/image/colornames"
	"golang.org/x/image/font/basicfont"
)

// feedbackFrames is how long a message stays up at 60 TPS.
const feedbackFrames = 90

var feedbackText = map[component.MessageID]struct {
	label string
	clr   color.Color
}{
	component.MessageSuccess:       {"DUNK!", colornames.Gold},
	component.MessageFailure:       {"Missed. Try again", colornames.Tomato},
	component.MessageNeedMoreFlips: {"Need more flips!", colornames.Orange},
	component.MessageGameOver:      {"All levels cleared", colornames.Lightgreen},
}

// feedbackOverlay shows the latest message for a fixed number of frames.
// The game over message stays until the window closes.
type feedbackOverlay struct {
	current component.MessageID
	ttl     int
	face    text.Face
}

var _ component.Feedback = (*feedbackOverlay)(nil)

func newFeedbackOverlay() *feedbackOverlay {
	return &feedbackOverlay{face: text.NewGoXFace(basicfont.Face7x13)}
}

func (f *feedbackOverlay) Show(id component.MessageID) {
	f.current = id
	f.ttl = feedbackFrames
	if id == component.MessageGameOver {
		f.ttl = -1
	}
}

func (f *feedbackOverlay) update() {
	if f.ttl <= 0 {
		return
	}
	f.ttl--
	if f.ttl == 0 {
		f.current = ""
	}
}

func (f *feedbackOverlay) draw(screen *ebiten.Image) {
	msg, ok := feedbackText[f.current]
	if !ok {
		return
	}
	const scale = 4
	w, h := text.Measure(msg.label, f.face, 0)
	op := &text.DrawOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate((common.BaseWidth-w*scale)/2, common.BaseHeight/4-h*scale/2)
	op.ColorScale.ScaleWithColor(msg.clr)
	text.Draw(screen, msg.label, f.face, op)
}
