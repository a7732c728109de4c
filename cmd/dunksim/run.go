package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/milk9111/dunk/component"
	"github.com/milk9111/dunk/levels"
	"github.com/milk9111/dunk/obj"
	"github.com/milk9111/dunk/prefabs"
	"github.com/milk9111/dunk/system"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var errBadWindow = errors.New("bad hold window")

// holdWindow is an inclusive range of flight ticks.
type holdWindow struct {
	From, To int
}

func parseHoldWindows(specs []string) ([]holdWindow, error) {
	out := make([]holdWindow, 0, len(specs))
	for _, spec := range specs {
		from, to, ok := strings.Cut(strings.TrimSpace(spec), "-")
		if !ok {
			return nil, fmt.Errorf("%w %q: want FROM-TO", errBadWindow, spec)
		}
		f, err := strconv.Atoi(strings.TrimSpace(from))
		if err != nil {
			return nil, fmt.Errorf("%w %q: %w", errBadWindow, spec, err)
		}
		t, err := strconv.Atoi(strings.TrimSpace(to))
		if err != nil {
			return nil, fmt.Errorf("%w %q: %w", errBadWindow, spec, err)
		}
		if f < 0 || t < f {
			return nil, fmt.Errorf("%w %q: need 0 <= FROM <= TO", errBadWindow, spec)
		}
		out = append(out, holdWindow{From: f, To: t})
	}
	return out, nil
}

type runOptions struct {
	Catalog     string
	Level       string
	Holds       []holdWindow
	HoldFalling bool
	Attempts    int
	MaxTicks    int
	Delta       float64
	All         bool
}

func (o runOptions) holding(st component.FlightState) bool {
	if o.HoldFalling && st.Falling {
		return true
	}
	for _, w := range o.Holds {
		if st.Ticks >= w.From && st.Ticks <= w.To {
			return true
		}
	}
	return false
}

type attemptReport struct {
	Level   string
	Attempt int
	Outcome component.Outcome
	Ticks   int
	Flips   int
}

type simulation struct {
	session *system.Session
	anim    *obj.Animator
	delta   float64
}

func newSimulation(opts runOptions, logger zerolog.Logger) (*simulation, error) {
	if !(opts.Delta > 0) {
		return nil, fmt.Errorf("delta must be > 0, got %v", opts.Delta)
	}
	catalog, err := levels.LoadCatalog(opts.Catalog)
	if err != nil {
		return nil, err
	}
	start := 0
	if opts.Level != "" {
		start = -1
		for i, n := range catalog.Names() {
			if n == opts.Level {
				start = i
			}
		}
		if start < 0 {
			return nil, fmt.Errorf("level %q not in catalog %v", opts.Level, catalog.Names())
		}
	}
	tuning, err := system.LoadTuning()
	if err != nil {
		return nil, err
	}
	manifest, err := prefabs.LoadManifest("")
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	bindings, err := system.Bind(ctx, &obj.PrefabLoader{}, manifest, logger)
	if err != nil {
		return nil, err
	}

	anim := obj.NewAnimatorFor(bindings.Character)
	session, err := system.NewSession(catalog, tuning,
		system.Collaborators{Animator: anim, Feedback: &obj.FeedbackLog{}, Camera: &obj.CameraRig{}, Scenery: obj.NewSceneryRoot()},
		system.WithStartLevel(start),
		system.WithClips(manifest.Clips),
		system.WithLogger(logger.With().Str("component", "session").Logger()),
	)
	if err != nil {
		return nil, err
	}
	if err := session.Attach(bindings); err != nil {
		return nil, err
	}
	return &simulation{session: session, anim: anim, delta: opts.Delta}, nil
}

func (s *simulation) tick() system.TickResult {
	s.anim.Update(s.delta)
	return s.session.Tick(s.delta)
}

// attempt plays one jump until it resolves. It returns OutcomeNone when the
// tick limit is hit first.
func (s *simulation) attempt(opts runOptions) attemptReport {
	gate := s.session.Gate()
	report := attemptReport{Level: s.session.Level().Name, Attempt: s.session.Progress().Attempts}

	gate.JumpPressed()
	for i := 0; i < opts.MaxTicks; i++ {
		snap := s.session.Snapshot()
		want := opts.holding(snap.Flight)
		switch {
		case want && !gate.Held():
			gate.JumpPressed()
		case !want && gate.Held():
			gate.JumpReleased()
		}

		res := s.tick()
		if res.Outcome == component.OutcomeNone {
			continue
		}
		snap = s.session.Snapshot()
		report.Outcome = res.Outcome
		report.Ticks = snap.Flight.Ticks
		report.Flips = snap.Flight.FlipCount
		return report
	}
	return report
}

// settle ticks through the outcome pause until the next attempt is ready.
func (s *simulation) settle(limit int) {
	for i := 0; i < limit; i++ {
		switch s.session.Phase() {
		case component.PhaseIdle, component.PhaseGameOver:
			return
		}
		s.tick()
	}
}

func run(opts runOptions, logger zerolog.Logger) ([]attemptReport, error) {
	sim, err := newSimulation(opts, logger)
	if err != nil {
		return nil, err
	}

	var reports []attemptReport
	tries := 0
	for tries < opts.Attempts {
		tries++
		r := sim.attempt(opts)
		reports = append(reports, r)
		logger.Info().
			Str("level", r.Level).
			Int("attempt", r.Attempt).
			Str("outcome", r.Outcome.String()).
			Int("ticks", r.Ticks).
			Int("flips", r.Flips).
			Msg("attempt")

		switch r.Outcome {
		case component.OutcomeGameOver:
			return reports, nil
		case component.OutcomeNone:
			return reports, fmt.Errorf("attempt on %s did not resolve within %d ticks", r.Level, opts.MaxTicks)
		case component.OutcomeDunk:
			if !opts.All {
				return reports, nil
			}
			tries = 0
		}
		sim.settle(opts.MaxTicks)
	}
	return reports, nil
}

func summarize(reports []attemptReport) {
	counts := map[component.Outcome]int{}
	for _, r := range reports {
		counts[r.Outcome]++
	}
	log.Info().
		Int("attempts", len(reports)).
		Int("dunks", counts[component.OutcomeDunk]+counts[component.OutcomeGameOver]).
		Int("near_misses", counts[component.OutcomeNearMiss]).
		Int("falls", counts[component.OutcomeFell]).
		Msg("done")
}

func listLevels(name string) error {
	c, err := levels.LoadCatalog(name)
	if err != nil {
		return err
	}
	for i, l := range c.Levels() {
		log.Info().
			Int("index", i).
			Str("name", l.Name).
			Int("min_flips", l.MinimumFlips).
			Float64("flip_threshold_deg", l.FlipThresholdDegrees()).
			Str("on_enter", l.OnEnter).
			Msg("level")
	}
	log.Info().Uint64("fingerprint", c.Fingerprint()).Msg("catalog")
	return nil
}
