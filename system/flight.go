package system

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/dunk/component"
	"github.com/milk9111/dunk/levels"
)

// FlightStep reports the edges crossed by one simulation step.
type FlightStep struct {
	StartedFalling       bool
	CrossedFlipThreshold bool
}

// FlightSimulator advances the character through the air one tick at a time.
type FlightSimulator struct {
	Tuning Tuning
}

func NewFlightSimulator(t Tuning) *FlightSimulator {
	return &FlightSimulator{Tuning: t}
}

// Step moves pose and updates st for one tick of delta seconds. It does
// nothing unless the character is flying and has not reached the goal.
func (f *FlightSimulator) Step(pose *component.Pose, st *component.FlightState, lvl levels.LevelConfig, delta float64) FlightStep {
	var out FlightStep
	if f == nil || pose == nil || st == nil || !st.Flying || st.GoalContact || !(delta > 0) {
		return out
	}

	frames := delta * f.Tuning.ReferenceFPS
	step := 1.0
	if f.Tuning.ScaleByDelta {
		step = frames
	}

	pos := pose.Position
	traveled := st.InitialForwardDistance - pos.Z()
	if !st.Falling && traveled >= lvl.FallingStartFraction*st.InitialForwardDistance {
		st.Falling = true
		out.StartedFalling = true
	}

	y := pos.Y()
	if st.Falling {
		y -= lvl.FallingSpeed * step
	} else {
		y += lvl.RisingSpeed * frames
	}
	z := pos.Z() - lvl.ForwardSpeed*step
	pose.Position = mgl64.Vec3{pos.X(), y, z}

	if st.Tilt > -f.Tuning.TiltBound {
		st.Tilt -= f.Tuning.TiltStep * step
	}
	if st.Falling && st.TouchHeld {
		st.Tilt -= lvl.FlipSpeedPerFlipInput * step
	}
	*pose = pose.WithTilt(lvl.InitialCharacterRotation.X() + st.Tilt)

	deg := mgl64.RadToDeg(st.Tilt)
	st.FlipCount = int(math.Max(0, math.Floor(-deg/360)))
	if !st.EnoughFlips && deg <= lvl.FlipThresholdDegrees() {
		st.EnoughFlips = true
		out.CrossedFlipThreshold = true
	}

	st.Ticks++
	return out
}
