package system

import (
	"bytes"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/dunk/component"
	"github.com/milk9111/dunk/levels"
	"github.com/milk9111/dunk/obj"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dt = 1.0 / 60

type fakeAnimator struct {
	played   []string
	handlers []func(string)
}

func (a *fakeAnimator) Play(clip string, _ bool) { a.played = append(a.played, clip) }

func (a *fakeAnimator) OnFinished(fn func(string)) { a.handlers = append(a.handlers, fn) }

func (a *fakeAnimator) finish(clip string) {
	for _, h := range a.handlers {
		h(clip)
	}
}

func (a *fakeAnimator) count(clip string) int {
	n := 0
	for _, c := range a.played {
		if c == clip {
			n++
		}
	}
	return n
}

type rig struct {
	t         *testing.T
	session   *Session
	bindings  *Bindings
	anim      *fakeAnimator
	feedback  *obj.FeedbackLog
	camera    *obj.CameraRig
	character *obj.Node
	ball      *obj.Node
	rim       *obj.Node
	scripts   []string
	logs      *bytes.Buffer
}

func testCatalog(t *testing.T, names ...string) *levels.Catalog {
	t.Helper()
	lvls := make([]levels.LevelConfig, 0, len(names))
	for _, n := range names {
		lvls = append(lvls, testLevel(n))
	}
	c, err := levels.New(lvls...)
	require.NoError(t, err)
	return c
}

// newRig builds a bound session whose goal sits out of reach until a test
// moves it with placeGoalAtBall.
func newRig(t *testing.T, catalog *levels.Catalog, opts ...Option) *rig {
	t.Helper()
	r := &rig{
		t:        t,
		anim:     &fakeAnimator{},
		feedback: &obj.FeedbackLog{},
		camera:   &obj.CameraRig{},
		logs:     &bytes.Buffer{},
	}

	r.character = obj.NewBox("character", mgl64.Vec3{0.6, 1.8, 0.5})
	hand := obj.NewNode("hand_r")
	hand.SetPosition(mgl64.Vec3{0, 0.95, -0.2})
	r.character.Add(hand)
	r.ball = obj.NewSphere("ball", 0.24)
	basket := obj.NewBox("basket", mgl64.Vec3{0.3, 0.2, 0.3})
	r.rim = obj.NewBox("rim_collider", mgl64.Vec3{1.2, 2.4, 1.2})
	r.rim.SetPosition(mgl64.Vec3{0, 1000, 0})
	basket.Add(r.rim)

	r.bindings = &Bindings{Character: r.character, Ball: r.ball, Basket: basket}
	r.bindings.Attach("hand_r", "rim_collider")

	tuning := DefaultTuning()
	tuning.SettleTicks = 3
	all := append([]Option{
		WithLogger(zerolog.New(r.logs)),
		WithScriptLoader(func(name string) ([]byte, error) {
			r.scripts = append(r.scripts, name)
			return []byte(`x := 1`), nil
		}),
	}, opts...)
	s, err := NewSession(catalog, tuning, Collaborators{Animator: r.anim, Feedback: r.feedback, Camera: r.camera}, all...)
	require.NoError(t, err)
	r.session = s
	return r
}

func (r *rig) attach() *rig {
	r.t.Helper()
	require.NoError(r.t, r.session.Attach(r.bindings))
	return r
}

// jump presses and holds the jump key and ends the take-off clip.
func (r *rig) jump() {
	r.session.Gate().JumpPressed()
	r.session.Tick(dt)
	r.anim.finish("jump")
}

// tickUntil ticks until cond holds and returns the last result.
func (r *rig) tickUntil(cond func(TickResult) bool) TickResult {
	r.t.Helper()
	for i := 0; i < 5000; i++ {
		res := r.session.Tick(dt)
		if cond(res) {
			return res
		}
	}
	r.t.Fatal("condition never reached")
	return TickResult{}
}

func (r *rig) placeGoalAtBall() {
	r.rim.SetPosition(r.ball.WorldPosition())
}

func (r *rig) settle() {
	r.t.Helper()
	for i := 0; i < r.session.tuning.SettleTicks; i++ {
		r.session.Tick(dt)
	}
}

func TestSessionDiscardsJumpWhileLoading(t *testing.T) {
	r := newRig(t, testCatalog(t, "one"))
	assert.Equal(t, component.PhaseLoading, r.session.Phase())

	r.session.Gate().JumpPressed()
	res := r.session.Tick(dt)
	assert.Equal(t, component.PhaseLoading, res.Phase)
	assert.False(t, r.session.Gate().Initiated(), "gate is re-armed")
	assert.Empty(t, r.anim.played)

	r.attach()
	assert.Equal(t, component.PhaseIdle, r.session.Phase())
	r.session.Gate().JumpReleased()
	r.jump()
	assert.Equal(t, component.PhaseAscending, r.session.Phase())
}

func TestSessionAttachRequiresRoles(t *testing.T) {
	r := newRig(t, testCatalog(t, "one"))
	r.bindings.Ball = nil
	require.ErrorIs(t, r.session.Attach(r.bindings), ErrNotBound)
	assert.Equal(t, component.PhaseLoading, r.session.Phase())
}

func TestSessionAttachStartsLevel(t *testing.T) {
	cat := testCatalog(t, "one")
	lvl, _ := cat.Level(0)
	r := newRig(t, cat)
	r.attach()

	assert.Equal(t, lvl.CameraPosition, r.camera.Position)
	assert.Equal(t, lvl.InitialCharacterPosition, r.character.Position())
	assert.Equal(t, r.bindings.Hand.WorldPosition(), r.ball.Position(), "ball rides in the hand")
	assert.Equal(t, 1, r.session.Progress().Attempts)
	assert.Equal(t, []string{"idle"}, r.anim.played)
}

func TestSessionOnEnterRunsOncePerLevel(t *testing.T) {
	lvls := []levels.LevelConfig{testLevel("a"), testLevel("b")}
	lvls[0].OnEnter = "a.tengo"
	lvls[1].OnEnter = "b.tengo"
	cat, err := levels.New(lvls...)
	require.NoError(t, err)

	r := newRig(t, cat).attach()
	r.session.Replay()
	r.session.Replay()
	assert.Equal(t, []string{"a.tengo"}, r.scripts)
	assert.Equal(t, 3, r.session.Progress().Attempts)

	r.jump()
	r.tickUntil(func(TickResult) bool { return r.session.Snapshot().Flight.Falling })
	for !r.session.Snapshot().Flight.EnoughFlips {
		r.session.Tick(dt)
	}
	r.placeGoalAtBall()
	r.session.Tick(dt)
	r.settle()
	assert.Equal(t, []string{"a.tengo", "b.tengo"}, r.scripts)
}

func TestSessionSingleJumpTrigger(t *testing.T) {
	r := newRig(t, testCatalog(t, "one")).attach()
	gate := r.session.Gate()
	assert.True(t, gate.JumpPressed())
	assert.False(t, gate.JumpPressed())
	r.session.Tick(dt)
	assert.Equal(t, 1, r.anim.count("jump"))

	gate.JumpReleased()
	gate.JumpPressed()
	r.session.Tick(dt)
	assert.Equal(t, 1, r.anim.count("jump"), "a later press only holds")
}

func TestSessionTakeOffWaitsForClip(t *testing.T) {
	r := newRig(t, testCatalog(t, "one")).attach()
	r.session.Gate().JumpPressed()
	for i := 0; i < 10; i++ {
		r.session.Tick(dt)
	}
	snap := r.session.Snapshot()
	assert.True(t, snap.Flight.TakingOff)
	assert.False(t, snap.Flight.Flying)
	assert.Equal(t, snap.Pose.Position, r.session.Level().InitialCharacterPosition)

	r.anim.finish("idle")
	assert.False(t, r.session.Snapshot().Flight.Flying, "only the take-off clip starts flight")
	r.anim.finish("jump")
	assert.True(t, r.session.Snapshot().Flight.Flying)
	r.session.Tick(dt)
	assert.Less(t, r.character.Position().Z(), 10.0)
}

func TestSessionWithoutAnimatorFliesImmediately(t *testing.T) {
	r := newRig(t, testCatalog(t, "one"))
	s, err := NewSession(testCatalog(t, "one"), DefaultTuning(), Collaborators{}, WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	require.NoError(t, s.Attach(r.bindings))
	s.Gate().JumpPressed()
	s.Tick(dt)
	assert.True(t, s.Snapshot().Flight.Flying)
}

func TestSessionFallingBeforeGoalContact(t *testing.T) {
	cat, err := levels.LoadCatalog("")
	require.NoError(t, err)
	r := newRig(t, cat, WithStartLevel(0))
	r.rim.SetPosition(mgl64.Vec3{0, 6.8, 0})
	r.attach()
	r.jump()
	r.session.Gate().JumpReleased()

	fellAt, hitAt := -1, -1
	for i := 0; i < 2000 && r.session.Phase() != component.PhaseFailed; i++ {
		res := r.session.Tick(dt)
		if res.Step.StartedFalling && fellAt < 0 {
			fellAt = i
			assert.Greater(t, r.character.Position().Z(), 0.0)
		}
		if res.Contact == component.ContactHit && hitAt < 0 {
			hitAt = i
		}
	}
	require.GreaterOrEqual(t, fellAt, 0)
	if hitAt >= 0 {
		assert.Less(t, fellAt, hitAt)
	}
	assert.Equal(t, component.PhaseFailed, r.session.Phase(), "no flips, no dunk")
}

func TestSessionFallRetriesSameLevel(t *testing.T) {
	r := newRig(t, testCatalog(t, "one", "two")).attach()
	r.jump()

	res := r.tickUntil(func(res TickResult) bool { return res.Outcome != component.OutcomeNone })
	assert.Equal(t, component.OutcomeFell, res.Outcome)
	assert.Equal(t, component.PhaseFailed, res.Phase)
	assert.Equal(t, 0, r.session.Progress().CurrentLevelIndex)
	last, _ := r.feedback.Last()
	assert.Equal(t, component.MessageFailure, last)
	assert.Less(t, r.character.BoundingBox().Min().Y(), 0.0)

	r.settle()
	snap := r.session.Snapshot()
	assert.Equal(t, component.PhaseIdle, snap.Phase)
	assert.Equal(t, 0, snap.Progress.CurrentLevelIndex)
	assert.Equal(t, 2, snap.Progress.Attempts)
	assert.True(t, snap.Flight.HoldingBall)
	assert.False(t, snap.Flight.JumpInitiated)
	assert.False(t, r.session.Gate().Initiated())
}

func TestSessionNearMissRetriesSameLevel(t *testing.T) {
	r := newRig(t, testCatalog(t, "one", "two")).attach()
	r.jump()
	r.session.Gate().JumpReleased()
	r.tickUntil(func(res TickResult) bool { return res.Phase == component.PhaseDescending })

	r.placeGoalAtBall()
	res := r.session.Tick(dt)
	assert.Equal(t, component.ContactHit, res.Contact)
	assert.Equal(t, component.OutcomeNearMiss, res.Outcome)
	assert.Equal(t, 0, r.session.Progress().CurrentLevelIndex)
	last, _ := r.feedback.Last()
	assert.Equal(t, component.MessageNeedMoreFlips, last)

	r.settle()
	assert.Equal(t, 0, r.session.Progress().CurrentLevelIndex)
	assert.Equal(t, component.PhaseIdle, r.session.Phase())
}

func TestSessionDunkAdvancesOneLevel(t *testing.T) {
	r := newRig(t, testCatalog(t, "one", "two", "three")).attach()
	r.jump()
	r.tickUntil(func(TickResult) bool { return r.session.Snapshot().Flight.EnoughFlips })

	r.placeGoalAtBall()
	res := r.session.Tick(dt)
	require.Equal(t, component.OutcomeDunk, res.Outcome)
	assert.Equal(t, component.PhaseSucceeded, res.Phase)
	assert.Equal(t, 1, r.session.Progress().CurrentLevelIndex)
	snap := r.session.Snapshot()
	assert.False(t, snap.Flight.HoldingBall)
	assert.True(t, snap.Flight.GoalContact)
	assert.Equal(t, 1, r.anim.count("stabilize"))
	last, _ := r.feedback.Last()
	assert.Equal(t, component.MessageSuccess, last)

	dropped := r.ball.Position().Y()
	r.session.Tick(dt)
	assert.Less(t, r.ball.Position().Y(), dropped, "released ball falls")

	r.settle()
	snap = r.session.Snapshot()
	assert.Equal(t, component.PhaseIdle, snap.Phase)
	assert.Equal(t, "two", snap.Level)
	assert.Equal(t, 1, snap.Progress.CurrentLevelIndex)
	assert.Equal(t, 1, snap.Progress.Attempts)
	assert.True(t, snap.Flight.HoldingBall)
}

func TestSessionReleasedBallRestsOnFloor(t *testing.T) {
	r := newRig(t, testCatalog(t, "one", "two")).attach()
	r.session.tuning.SettleTicks = 1000
	r.jump()
	r.tickUntil(func(TickResult) bool { return r.session.Snapshot().Flight.EnoughFlips })
	r.placeGoalAtBall()
	r.session.Tick(dt)

	for i := 0; i < 500; i++ {
		r.session.Tick(dt)
	}
	assert.InDelta(t, 0.24, r.ball.Position().Y(), 1e-9)
}

func TestSessionLastLevelEndsGame(t *testing.T) {
	r := newRig(t, testCatalog(t, "only")).attach()
	r.jump()
	r.tickUntil(func(TickResult) bool { return r.session.Snapshot().Flight.EnoughFlips })
	r.placeGoalAtBall()

	res := r.session.Tick(dt)
	assert.Equal(t, component.OutcomeGameOver, res.Outcome)
	assert.Equal(t, component.PhaseGameOver, res.Phase)
	assert.True(t, r.session.Progress().GameOver)
	assert.Equal(t, 0, r.session.Progress().CurrentLevelIndex)
	assert.Equal(t, []component.MessageID{component.MessageSuccess, component.MessageGameOver}, r.feedback.Messages)

	pose := r.session.Snapshot().Pose
	pos := r.character.Position()
	ball := r.ball.Position()
	r.session.Gate().JumpPressed()
	for i := 0; i < 100; i++ {
		res = r.session.Tick(dt)
		assert.Equal(t, component.PhaseGameOver, res.Phase)
	}
	r.session.Replay()
	assert.Equal(t, pose, r.session.Snapshot().Pose)
	assert.Equal(t, pos, r.character.Position())
	assert.Equal(t, ball, r.ball.Position())
}

func TestReplayResetsAttempt(t *testing.T) {
	r := newRig(t, testCatalog(t, "one")).attach()
	r.jump()
	r.tickUntil(func(TickResult) bool { return r.session.Snapshot().Flight.EnoughFlips })
	moves := r.camera.Moves

	r.session.Replay()
	snap := r.session.Snapshot()
	lvl := r.session.Level()
	assert.False(t, snap.Flight.Flying)
	assert.False(t, snap.Flight.Falling)
	assert.False(t, snap.Flight.GoalContact)
	assert.False(t, snap.Flight.EnoughFlips)
	assert.False(t, snap.Flight.TouchHeld)
	assert.False(t, snap.Flight.JumpInitiated)
	assert.True(t, snap.Flight.HoldingBall)
	assert.Zero(t, snap.Flight.Tilt)
	assert.Zero(t, snap.Flight.FlipCount)
	assert.Equal(t, lvl.InitialCharacterPosition.Z(), snap.Flight.InitialForwardDistance)
	assert.Equal(t, lvl.InitialCharacterPosition, snap.Pose.Position)
	assert.Equal(t, lvl.InitialCharacterRotation, r.character.Rotation())
	assert.False(t, r.session.Gate().Initiated())
	assert.Equal(t, moves+1, r.camera.Moves)
}

func TestSessionPauseFreezesTicks(t *testing.T) {
	r := newRig(t, testCatalog(t, "one")).attach()
	r.jump()
	r.session.Tick(dt)

	r.session.Pause()
	before := r.session.Snapshot()
	for i := 0; i < 30; i++ {
		r.session.Tick(dt)
	}
	after := r.session.Snapshot()
	assert.True(t, after.Paused)
	after.Paused = false
	before.Paused = false
	assert.Equal(t, before, after)

	r.session.Resume()
	r.session.Tick(dt)
	assert.Less(t, r.session.Snapshot().Pose.Position.Z(), before.Pose.Position.Z())
}

func TestSessionReplaceCatalog(t *testing.T) {
	r := newRig(t, testCatalog(t, "one", "two"), WithStartLevel(1)).attach()
	require.ErrorIs(t, r.session.ReplaceCatalog(testCatalog(t, "solo")), ErrCatalogTooShort)
	require.ErrorIs(t, r.session.ReplaceCatalog(nil), ErrCatalogTooShort)

	require.NoError(t, r.session.ReplaceCatalog(testCatalog(t, "uno", "dos", "tres")))
	assert.Equal(t, "two", r.session.Level().Name, "applies at the next replay")
	r.session.Replay()
	assert.Equal(t, "dos", r.session.Level().Name)
	assert.Equal(t, 3, r.session.Progress().LevelCount)
}

func TestSessionDunkWithQueuedCatalog(t *testing.T) {
	cases := []struct {
		name      string
		queued    []string
		outcome   component.Outcome
		wantPhase component.Phase
		wantIndex int
		wantCount int
		wantLevel string
	}{
		{
			name:      "shrinking",
			queued:    []string{"uno", "dos"},
			outcome:   component.OutcomeDunk,
			wantPhase: component.PhaseIdle,
			wantIndex: 1,
			wantCount: 2,
			wantLevel: "dos",
		},
		{
			name:      "same length",
			queued:    []string{"uno", "dos", "tres"},
			outcome:   component.OutcomeDunk,
			wantPhase: component.PhaseIdle,
			wantIndex: 1,
			wantCount: 3,
			wantLevel: "dos",
		},
		{
			name:      "current level becomes last",
			queued:    []string{"solo"},
			outcome:   component.OutcomeGameOver,
			wantPhase: component.PhaseGameOver,
			wantIndex: 0,
			wantCount: 1,
			wantLevel: "one",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := newRig(t, testCatalog(t, "one", "two", "three")).attach()
			r.jump()
			r.session.Tick(dt)
			require.NoError(t, r.session.ReplaceCatalog(testCatalog(t, c.queued...)))

			r.tickUntil(func(TickResult) bool { return r.session.Snapshot().Flight.EnoughFlips })
			r.placeGoalAtBall()
			res := r.session.Tick(dt)
			require.Equal(t, c.outcome, res.Outcome)
			r.settle()

			snap := r.session.Snapshot()
			assert.Equal(t, c.wantPhase, snap.Phase)
			assert.Equal(t, c.wantIndex, snap.Progress.CurrentLevelIndex)
			assert.Equal(t, c.wantCount, snap.Progress.LevelCount)
			assert.Less(t, snap.Progress.CurrentLevelIndex, snap.Progress.LevelCount)
			assert.Equal(t, c.wantLevel, snap.Level)

			lvl, ok := r.session.catalog.Level(snap.Progress.CurrentLevelIndex)
			require.True(t, ok)
			assert.NoError(t, lvl.Validate())
			if c.wantPhase == component.PhaseIdle {
				r.jump()
				z := r.session.Snapshot().Pose.Position.Z()
				res = r.session.Tick(dt)
				assert.Equal(t, component.OutcomeNone, res.Outcome)
				assert.Less(t, r.session.Snapshot().Pose.Position.Z(), z, "next level moves forward")
			}
		})
	}
}

func TestSessionDropsCatalogMissingCurrentLevel(t *testing.T) {
	r := newRig(t, testCatalog(t, "one", "two"), WithStartLevel(1)).attach()
	r.session.next = testCatalog(t, "solo")

	r.session.Replay()
	assert.Equal(t, "two", r.session.Level().Name)
	assert.Equal(t, 2, r.session.Progress().LevelCount)
	assert.Nil(t, r.session.next)
	assert.Contains(t, r.logs.String(), "queued catalog dropped")
}

func TestSessionSwappedLevelRunsOnEnter(t *testing.T) {
	r := newRig(t, testCatalog(t, "one")).attach()
	require.Empty(t, r.scripts)

	fresh := testLevel("fresh")
	fresh.OnEnter = "fresh.tengo"
	cat, err := levels.New(fresh)
	require.NoError(t, err)
	require.NoError(t, r.session.ReplaceCatalog(cat))

	r.session.Replay()
	assert.Equal(t, []string{"fresh.tengo"}, r.scripts)
	assert.Equal(t, 2, r.session.Progress().Attempts, "player replay still counts")

	r.session.Replay()
	assert.Equal(t, []string{"fresh.tengo"}, r.scripts, "once per installed level")
	assert.Equal(t, 3, r.session.Progress().Attempts)
}

func TestSessionMissingAttachmentsWarnOnce(t *testing.T) {
	r := newRig(t, testCatalog(t, "one"))
	r.bindings.Hand = nil
	r.bindings.GoalCollider = nil
	r.attach()
	r.jump()

	res := r.tickUntil(func(res TickResult) bool {
		return res.Outcome != component.OutcomeNone
	})
	assert.Equal(t, component.OutcomeFell, res.Outcome, "no contact without a collider")
	assert.Equal(t, 1, strings.Count(r.logs.String(), "hand attachment missing"))
	assert.Equal(t, 1, strings.Count(r.logs.String(), "goal collider missing"))
}

func TestNewSessionRejectsBadInput(t *testing.T) {
	_, err := NewSession(nil, DefaultTuning(), Collaborators{})
	require.ErrorIs(t, err, levels.ErrEmptyCatalog)

	_, err = NewSession(testCatalog(t, "one"), DefaultTuning(), Collaborators{}, WithStartLevel(3))
	require.Error(t, err)

	bad := DefaultTuning()
	bad.ReferenceFPS = 0
	_, err = NewSession(testCatalog(t, "one"), bad, Collaborators{})
	require.Error(t, err)
}
