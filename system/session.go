package system

import (
	"context"
	"errors"
	"fmt"

	"github.com/milk9111/dunk/component"
	"github.com/milk9111/dunk/levels"
	"github.com/milk9111/dunk/prefabs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var ErrCatalogTooShort = errors.New("system: catalog does not cover the current level")

// Collaborators are the outside services a session drives. Any may be nil.
type Collaborators struct {
	Animator component.Animator
	Feedback component.Feedback
	Camera   component.Camera
	Scenery  component.Scenery
}

// TickResult describes what one tick did.
type TickResult struct {
	Phase   component.Phase
	Outcome component.Outcome
	Contact component.Contact
	Step    FlightStep
}

// Snapshot is a copy of the session state.
type Snapshot struct {
	Phase    component.Phase
	Progress component.GameProgress
	Flight   component.FlightState
	Pose     component.Pose
	Level    string
	Paused   bool
	// Outcome is the most recent resolved attempt.
	Outcome component.Outcome
}

type Option func(*Session)

func WithLogger(l zerolog.Logger) Option {
	return func(s *Session) { s.log = l }
}

// WithStartLevel begins the session at index instead of the first level.
func WithStartLevel(index int) Option {
	return func(s *Session) { s.progress.CurrentLevelIndex = index }
}

func WithClips(c prefabs.ClipNames) Option {
	return func(s *Session) { s.clips = c }
}

// WithScriptLoader overrides where on_enter scripts are read from.
func WithScriptLoader(load func(name string) ([]byte, error)) Option {
	return func(s *Session) { s.scripts.Load = load }
}

// Session owns one play-through: level progress, the current attempt's
// flight state and the bound scene roles. It is not safe for concurrent use.
type Session struct {
	catalog *levels.Catalog
	next    *levels.Catalog
	tuning  Tuning
	sim     *FlightSimulator
	gate    *InputGate
	collab  Collaborators
	scripts *ScriptRunner
	clips   prefabs.ClipNames

	bindings *Bindings
	level    levels.LevelConfig
	progress component.GameProgress
	flight   component.FlightState
	pose     component.Pose
	phase    component.Phase
	outcome  component.Outcome
	paused   bool
	settle   int
	entered  int
	warned   map[string]bool

	log zerolog.Logger
}

func NewSession(catalog *levels.Catalog, tuning Tuning, collab Collaborators, opts ...Option) (*Session, error) {
	if catalog.Len() == 0 {
		return nil, fmt.Errorf("system: new session: %w", levels.ErrEmptyCatalog)
	}
	if err := tuning.Validate(); err != nil {
		return nil, err
	}

	s := &Session{
		catalog: catalog,
		tuning:  tuning,
		sim:     NewFlightSimulator(tuning),
		gate:    NewInputGate(),
		collab:  collab,
		scripts: &ScriptRunner{Scenery: collab.Scenery},
		clips:   prefabs.ClipNames{Idle: "idle", Jump: "jump", Stabilize: "stabilize"},
		phase:   component.PhaseLoading,
		entered: -1,
		warned:  map[string]bool{},
		log:     log.Logger.With().Str("component", "session").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.scripts.Logger = s.log

	idx := s.progress.CurrentLevelIndex
	if idx < 0 || idx >= catalog.Len() {
		return nil, fmt.Errorf("system: new session: start level %d outside catalog of %d", idx, catalog.Len())
	}
	s.progress.LevelCount = catalog.Len()
	s.level, _ = catalog.Level(idx)
	s.flight = component.NewFlightState(s.level.InitialCharacterPosition.Z())
	s.pose = component.Pose{Position: s.level.InitialCharacterPosition, Rotation: s.level.InitialCharacterRotation}

	if s.collab.Animator != nil {
		s.collab.Animator.OnFinished(s.onClipFinished)
	}
	return s, nil
}

// Gate returns the input gate front ends feed raw input into.
func (s *Session) Gate() *InputGate { return s.gate }

func (s *Session) Phase() component.Phase { return s.phase }

func (s *Session) Progress() component.GameProgress { return s.progress }

// Level returns the active level.
func (s *Session) Level() levels.LevelConfig { return s.level }

// Bindings returns the bound roles, or nil while loading.
func (s *Session) Bindings() *Bindings { return s.bindings }

func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Phase:    s.phase,
		Progress: s.progress,
		Flight:   s.flight,
		Pose:     s.pose,
		Level:    s.level.Name,
		Paused:   s.paused,
		Outcome:  s.outcome,
	}
}

// Attach binds the scene roles and starts the current level.
func (s *Session) Attach(b *Bindings) error {
	if err := b.Validate(); err != nil {
		return err
	}
	s.bindings = b
	s.warned = map[string]bool{}
	s.phase = component.PhaseIdle
	s.log.Info().Str("level", s.level.Name).Int("index", s.progress.CurrentLevelIndex).Msg("session bound")
	s.Replay()
	return nil
}

func (s *Session) Pause() {
	if s.phase == component.PhaseGameOver {
		return
	}
	s.paused = true
}

func (s *Session) Resume() { s.paused = false }

func (s *Session) Paused() bool { return s.paused }

// ReplaceCatalog installs c at the next replay. The current level must
// still exist in c.
func (s *Session) ReplaceCatalog(c *levels.Catalog) error {
	if c.Len() < s.progress.CurrentLevelIndex+1 {
		return fmt.Errorf("%w: %d levels, current index %d", ErrCatalogTooShort, c.Len(), s.progress.CurrentLevelIndex)
	}
	s.next = c
	s.log.Info().Strs("levels", c.Names()).Msg("catalog queued")
	return nil
}

// Replay resets the attempt at the current level. A level entered for the
// first time runs its on_enter script.
func (s *Session) Replay() { s.replay(false) }

// replay resets the attempt. A reload-driven replay does not count as an
// attempt.
func (s *Session) replay(reloaded bool) {
	if s.phase == component.PhaseGameOver {
		return
	}
	swapped := s.installCatalog()

	idx := s.progress.CurrentLevelIndex
	lvl, ok := s.catalog.Level(idx)
	if !ok {
		idx = s.catalog.Len() - 1
		s.log.Warn().Int("index", s.progress.CurrentLevelIndex).Int("levels", s.catalog.Len()).Msg("level index outside catalog; clamped")
		s.progress.CurrentLevelIndex = idx
		lvl, ok = s.catalog.Level(idx)
		if !ok {
			s.log.Error().Msg("catalog has no levels")
			return
		}
	}
	s.level = lvl
	s.gate.Reset()
	s.flight = component.NewFlightState(s.level.InitialCharacterPosition.Z())
	s.pose = component.Pose{Position: s.level.InitialCharacterPosition, Rotation: s.level.InitialCharacterRotation}
	s.settle = 0
	s.outcome = component.OutcomeNone
	if s.bindings == nil {
		return
	}

	if s.collab.Camera != nil {
		s.collab.Camera.MoveTo(s.level.CameraPosition)
	}
	switch {
	case s.entered != idx:
		s.entered = idx
		s.progress.Attempts = 1
		s.enterLevel()
	case swapped:
		if !reloaded {
			s.progress.Attempts++
		}
		s.enterLevel()
	case !reloaded:
		s.progress.Attempts++
	}

	s.phase = component.PhaseIdle
	s.pushPose()
	s.play(s.clips.Idle, false)
	s.carryBall()
	s.log.Debug().Str("level", s.level.Name).Int("attempt", s.progress.Attempts).Msg("replay")
}

// installCatalog swaps in the queued catalog. A queued catalog that no
// longer covers the current level is dropped.
func (s *Session) installCatalog() bool {
	next := s.next
	if next == nil {
		return false
	}
	s.next = nil
	if s.progress.CurrentLevelIndex >= next.Len() {
		s.log.Warn().
			Int("index", s.progress.CurrentLevelIndex).
			Int("levels", next.Len()).
			Msg("queued catalog dropped; current level missing")
		return false
	}
	s.catalog = next
	s.progress.LevelCount = next.Len()
	s.log.Info().Strs("levels", next.Names()).Msg("catalog installed")
	return true
}

// upcomingCount is the level count of the catalog the next replay uses.
func (s *Session) upcomingCount() int {
	if s.next != nil {
		return s.next.Len()
	}
	return s.progress.LevelCount
}

func (s *Session) enterLevel() {
	report, err := s.scripts.Run(context.Background(), s.level, s.progress.CurrentLevelIndex)
	if err != nil {
		s.log.Error().Err(err).Str("level", s.level.Name).Msg("on_enter failed")
		return
	}
	if s.level.OnEnter != "" {
		s.log.Debug().Str("level", s.level.Name).Int("spawned", report.Spawned).Int("failed", report.Failed).Msg("on_enter done")
	}
}

// Tick advances the session by delta seconds.
func (s *Session) Tick(delta float64) TickResult {
	res := TickResult{Phase: s.phase}
	if s.phase == component.PhaseGameOver || s.paused {
		return res
	}

	if s.bindings == nil {
		if len(s.gate.Drain()) > 0 {
			s.log.Debug().Msg("jump ignored while loading")
			s.gate.Rearm()
		}
		return res
	}

	if s.phase == component.PhaseSucceeded || s.phase == component.PhaseFailed {
		s.carryBall()
		if s.settle > 0 {
			s.settle--
		}
		if s.settle == 0 {
			s.Replay()
		}
		res.Phase = s.phase
		return res
	}

	for _, ev := range s.gate.Drain() {
		if ev == EventStartJump && s.phase == component.PhaseIdle {
			s.startJump()
		}
	}

	s.flight.JumpInitiated = s.gate.Initiated()
	s.flight.TouchHeld = s.gate.Held()

	res.Step = s.sim.Step(&s.pose, &s.flight, s.level, delta)
	if res.Step.StartedFalling {
		s.phase = component.PhaseDescending
		s.log.Debug().Float64("z", s.pose.Position.Z()).Float64("y", s.pose.Position.Y()).Msg("descending")
	}
	if res.Step.CrossedFlipThreshold {
		s.log.Debug().Int("flips", s.flight.FlipCount).Msg("enough flips")
	}
	s.pushPose()
	s.carryBall()

	if !s.flight.Flying {
		res.Phase = s.phase
		return res
	}

	res.Contact = s.goalContact()
	switch {
	case res.Contact == component.ContactHit && s.flight.EnoughFlips:
		res.Outcome = s.succeed()
	case res.Contact == component.ContactHit:
		res.Outcome = s.retry(component.OutcomeNearMiss, component.MessageNeedMoreFlips)
	case OutOfBounds(s.bindings.Character, s.tuning.FloorY):
		res.Outcome = s.retry(component.OutcomeFell, component.MessageFailure)
	}
	res.Phase = s.phase
	return res
}

func (s *Session) startJump() {
	s.phase = component.PhaseAscending
	s.flight.JumpInitiated = true
	if s.collab.Animator == nil {
		s.flight.Flying = true
		return
	}
	s.flight.TakingOff = true
	s.collab.Animator.Play(s.clips.Jump, true)
}

func (s *Session) onClipFinished(clip string) {
	if clip != s.clips.Jump || !s.flight.TakingOff || s.phase != component.PhaseAscending {
		return
	}
	s.flight.TakingOff = false
	s.flight.Flying = true
}

func (s *Session) succeed() component.Outcome {
	s.flight.HoldingBall = false
	s.flight.GoalContact = true
	s.flight.Flying = false
	s.show(component.MessageSuccess)
	s.play(s.clips.Stabilize, true)
	s.logOutcome(component.OutcomeDunk)

	upcoming := s.progress
	upcoming.LevelCount = s.upcomingCount()
	if upcoming.IsLastLevel() {
		s.installCatalog()
		s.progress.GameOver = true
		s.phase = component.PhaseGameOver
		s.outcome = component.OutcomeGameOver
		s.show(component.MessageGameOver)
		s.log.Info().Int("levels", s.progress.LevelCount).Msg("game over")
		return component.OutcomeGameOver
	}

	s.progress.CurrentLevelIndex++
	s.phase = component.PhaseSucceeded
	s.outcome = component.OutcomeDunk
	s.settle = s.tuning.SettleTicks
	return component.OutcomeDunk
}

func (s *Session) retry(outcome component.Outcome, msg component.MessageID) component.Outcome {
	s.flight.Flying = false
	if outcome == component.OutcomeNearMiss {
		s.flight.GoalContact = true
	}
	s.show(msg)
	s.logOutcome(outcome)
	s.phase = component.PhaseFailed
	s.outcome = outcome
	s.settle = s.tuning.SettleTicks
	return outcome
}

func (s *Session) logOutcome(o component.Outcome) {
	s.log.Info().
		Str("level", s.level.Name).
		Int("attempt", s.progress.Attempts).
		Str("outcome", o.String()).
		Int("flips", s.flight.FlipCount).
		Int("ticks", s.flight.Ticks).
		Msg("attempt resolved")
}

func (s *Session) goalContact() component.Contact {
	if s.bindings.GoalCollider == nil {
		s.warnOnce("goal_collider", "goal collider missing; contact checks skipped")
		return component.ContactNotReady
	}
	if !s.flight.HoldingBall {
		return component.ContactMiss
	}
	return GoalContact(s.bindings.Ball, s.bindings.GoalCollider)
}

func (s *Session) pushPose() {
	c := s.bindings.Character
	c.SetPosition(s.pose.Position)
	c.SetRotation(s.pose.Rotation)
}

// carryBall keeps a held ball on the hand and drops a released one.
func (s *Session) carryBall() {
	ball := s.bindings.Ball
	if s.flight.HoldingBall {
		if s.bindings.Hand == nil {
			s.warnOnce("hand", "hand attachment missing; ball carry skipped")
			return
		}
		ball.SetPosition(s.bindings.Hand.WorldPosition())
		return
	}

	rest := s.tuning.FloorY + ball.BoundingSphere().Radius
	p := ball.Position()
	if p.Y() <= rest {
		return
	}
	y := p.Y() - s.tuning.BallDropStep
	if y < rest {
		y = rest
	}
	p[1] = y
	ball.SetPosition(p)
}

func (s *Session) show(id component.MessageID) {
	if s.collab.Feedback != nil {
		s.collab.Feedback.Show(id)
	}
}

func (s *Session) play(clip string, once bool) {
	if s.collab.Animator != nil && clip != "" {
		s.collab.Animator.Play(clip, once)
	}
}

func (s *Session) warnOnce(key, msg string) {
	if s.warned[key] {
		return
	}
	s.warned[key] = true
	s.log.Warn().Str("level", s.level.Name).Msg(msg)
}
