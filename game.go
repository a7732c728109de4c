package main

import (
	"fmt"

	"github.com/ebitenui/ebitenui"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/dunk/common"
	"github.com/milk9111/dunk/component"
	"github.com/milk9111/dunk/levels"
	"github.com/milk9111/dunk/obj"
	"github.com/milk9111/dunk/prefabs"
	"github.com/milk9111/dunk/system"
	"github.com/rs/zerolog"
	"golang.org/x/image/colornames"
)

type Game struct {
	frames int
	debug  bool

	session  *system.Session
	bindings *system.Bindings
	anim     *obj.Animator
	feedback *feedbackOverlay
	camera   *obj.CameraRig
	scenery  *obj.SceneryRoot
	view     sideView

	watcher     *prefabs.Watcher
	catalogName string

	pauseUI    *ebitenui.UI
	gameOverUI *ebitenui.UI
	touches    []ebiten.TouchID
	pads       []ebiten.GamepadID
	quitting   bool

	log zerolog.Logger
}

type gameDeps struct {
	session     *system.Session
	bindings    *system.Bindings
	anim        *obj.Animator
	feedback    *feedbackOverlay
	camera      *obj.CameraRig
	scenery     *obj.SceneryRoot
	watcher     *prefabs.Watcher
	catalogName string
	debug       bool
	log         zerolog.Logger
}

func NewGame(d gameDeps) *Game {
	g := &Game{
		debug:       d.debug,
		session:     d.session,
		bindings:    d.bindings,
		anim:        d.anim,
		feedback:    d.feedback,
		camera:      d.camera,
		scenery:     d.scenery,
		watcher:     d.watcher,
		catalogName: d.catalogName,
		log:         d.log,
	}
	g.pauseUI = NewPauseUI(g)
	g.gameOverUI = NewGameOverUI(g)
	return g
}

func (g *Game) Update() error {
	if g.quitting {
		return ebiten.Termination
	}
	g.frames++
	g.reload()
	g.view.follow(g.camera.Position)

	if g.session.Phase() == component.PhaseGameOver {
		g.gameOverUI.Update()
		return nil
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		if g.session.Paused() {
			g.resume()
		} else {
			g.session.Pause()
		}
	}
	if g.session.Paused() {
		g.pauseUI.Update()
		return nil
	}

	g.readInput()
	delta := 1 / float64(ebiten.TPS())
	g.anim.Update(delta)
	g.session.Tick(delta)
	g.feedback.update()
	return nil
}

// readInput forwards raw press and release edges to the input gate.
func (g *Game) readInput() {
	gate := g.session.Gate()

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		gate.Press(system.SourceKeyboard)
	}
	if inpututil.IsKeyJustReleased(ebiten.KeySpace) {
		gate.Release(system.SourceKeyboard)
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		gate.Press(system.SourcePointer)
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		gate.Release(system.SourcePointer)
	}

	g.touches = inpututil.AppendJustPressedTouchIDs(g.touches[:0])
	if len(g.touches) > 0 {
		gate.Press(system.SourceTouch)
	}
	g.touches = ebiten.AppendTouchIDs(g.touches[:0])
	if len(g.touches) == 0 {
		gate.Release(system.SourceTouch)
	}

	var padPressed, padDown bool
	g.pads = ebiten.AppendGamepadIDs(g.pads[:0])
	for _, id := range g.pads {
		if inpututil.IsStandardGamepadButtonJustPressed(id, ebiten.StandardGamepadButtonRightBottom) {
			padPressed = true
		}
		if ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonRightBottom) {
			padDown = true
		}
	}
	gate.Merge(system.SourceGamepad, padPressed, padDown)
}

// reload applies edited catalogs from disk.
func (g *Game) reload() {
	if g.watcher == nil {
		return
	}
	for _, ch := range g.watcher.Poll() {
		switch ch.Kind {
		case prefabs.ChangeCatalog:
			data, err := levels.Load(g.catalogName)
			if err != nil {
				g.log.Error().Err(err).Str("path", ch.Path).Msg("catalog reload failed")
				continue
			}
			applied, err := g.session.ReloadCatalog(data)
			if err != nil {
				g.log.Error().Err(err).Str("path", ch.Path).Msg("catalog rejected")
				continue
			}
			if applied {
				g.log.Info().Str("path", ch.Path).Msg("catalog reloaded")
			}
		case prefabs.ChangeScript:
			g.log.Info().Str("path", ch.Path).Msg("script changed; used on next level entry")
		case prefabs.ChangeSpec:
			g.log.Info().Str("path", ch.Path).Msg("prefab changed; restart to apply")
		}
	}
	select {
	case err := <-g.watcher.Errors:
		g.log.Warn().Err(err).Msg("watcher")
	default:
	}
}

func (g *Game) resume() {
	g.session.Resume()
}

func (g *Game) quit() {
	g.quitting = true
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colornames.Midnightblue)

	b := g.bindings
	if b.Stadium != nil {
		g.view.drawBox(screen, b.Stadium.BoundingBox(), colornames.Darkolivegreen)
	}
	for _, n := range g.scenery.Root.Children() {
		g.view.drawBox(screen, n.BoundingBox(), colornames.Slategray)
	}

	g.view.drawBox(screen, b.Basket.BoundingBox(), colornames.Lightgray)
	if b.GoalCollider != nil {
		gc := b.GoalCollider.BoundingBox()
		pole := b.Basket.WorldPosition()
		g.view.drawLine(screen, pole, mgl64.Vec3{pole.X(), gc.Min().Y(), pole.Z()}, colornames.Lightgray)
		g.view.outlineBox(screen, gc, colornames.Orangered)
	}

	g.view.drawBox(screen, b.Character.BoundingBox(), colornames.Crimson)
	if b.Hand != nil {
		g.view.drawLine(screen, b.Character.WorldPosition(), b.Hand.WorldPosition(), colornames.Mistyrose)
	}
	g.view.drawSphere(screen, b.Ball.BoundingSphere(), colornames.Orange)

	g.feedback.draw(screen)
	g.drawHUD(screen)

	switch {
	case g.session.Phase() == component.PhaseGameOver:
		g.gameOverUI.Draw(screen)
	case g.session.Paused():
		g.pauseUI.Draw(screen)
	}
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	snap := g.session.Snapshot()
	line := fmt.Sprintf("Level %d/%d %s    Attempt %d    Flips %d",
		snap.Progress.CurrentLevelIndex+1, snap.Progress.LevelCount, snap.Level, snap.Progress.Attempts, snap.Flight.FlipCount)
	ebitenutil.DebugPrint(screen, line)
	if g.debug {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("FPS: %.2f  phase=%s  tilt=%.2f  y=%.2f  z=%.2f",
			ebiten.ActualFPS(), snap.Phase, snap.Flight.Tilt, snap.Pose.Position.Y(), snap.Pose.Position.Z()), 0, 16)
	}
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return common.BaseWidth, common.BaseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return common.BaseWidth, common.BaseHeight
}
