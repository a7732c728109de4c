package system

import (
	"fmt"

	"github.com/milk9111/dunk/prefabs"
)

// Tuning holds constants shared by every level.
type Tuning struct {
	// ReferenceFPS converts frame time into reference ticks.
	ReferenceFPS float64
	TiltStep     float64
	// TiltBound stops the base tilt at -TiltBound radians.
	TiltBound    float64
	BallDropStep float64
	FloorY       float64
	// SettleTicks is how long an outcome stays on screen before replay.
	SettleTicks int
	// ScaleByDelta multiplies per-tick steps by frame time. Off by default
	// since flip thresholds were tuned against fixed steps.
	ScaleByDelta bool
}

func DefaultTuning() Tuning {
	return Tuning{
		ReferenceFPS: 60,
		TiltStep:     0.02,
		TiltBound:    4,
		BallDropStep: 0.08,
		FloorY:       0,
		SettleTicks:  45,
	}
}

// TuningFromSpec fills unset spec fields from DefaultTuning.
func TuningFromSpec(spec prefabs.TuningSpec) (Tuning, error) {
	t := DefaultTuning()
	if spec.ReferenceFPS != 0 {
		t.ReferenceFPS = spec.ReferenceFPS
	}
	if spec.TiltStep != 0 {
		t.TiltStep = spec.TiltStep
	}
	if spec.TiltBound != 0 {
		t.TiltBound = spec.TiltBound
	}
	if spec.BallDropStep != 0 {
		t.BallDropStep = spec.BallDropStep
	}
	t.FloorY = spec.FloorY
	if spec.SettleTicks != 0 {
		t.SettleTicks = spec.SettleTicks
	}
	t.ScaleByDelta = spec.ScaleByDelta
	return t, t.Validate()
}

func (t Tuning) Validate() error {
	switch {
	case t.ReferenceFPS <= 0:
		return fmt.Errorf("system: tuning: reference_fps must be > 0, got %v", t.ReferenceFPS)
	case t.TiltStep < 0:
		return fmt.Errorf("system: tuning: tilt_step must be >= 0, got %v", t.TiltStep)
	case t.TiltBound < 0:
		return fmt.Errorf("system: tuning: tilt_bound must be >= 0, got %v", t.TiltBound)
	case t.BallDropStep <= 0:
		return fmt.Errorf("system: tuning: ball_drop_step must be > 0, got %v", t.BallDropStep)
	case t.SettleTicks < 0:
		return fmt.Errorf("system: tuning: settle_ticks must be >= 0, got %d", t.SettleTicks)
	}
	return nil
}

// LoadTuning reads tuning.yaml from prefabs.
func LoadTuning() (Tuning, error) {
	spec, err := prefabs.LoadTuningSpec()
	if err != nil {
		return Tuning{}, fmt.Errorf("system: load tuning: %w", err)
	}
	return TuningFromSpec(spec)
}
