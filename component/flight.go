package component

// FlightState is scoped to a single attempt of the active level. It is created
// on replay and mutated every tick while Flying.
type FlightState struct {
	// JumpInitiated mirrors the input gate: true from the first jump press
	// until the next replay.
	JumpInitiated bool
	// TakingOff is true between the jump press and the end of the take-off clip.
	TakingOff bool
	Flying    bool
	// Falling latches once the descent threshold is crossed.
	Falling     bool
	TouchHeld   bool
	HoldingBall bool
	GoalContact bool
	// EnoughFlips latches once the tilt passes the level's flip threshold.
	EnoughFlips bool
	FlipCount   int
	// Tilt is the accumulated rotation in radians; negative is forward.
	Tilt                   float64
	InitialForwardDistance float64
	// Ticks counts flight ticks in this attempt.
	Ticks int
}

// NewFlightState returns the state of a fresh attempt starting at forward
// coordinate z.
func NewFlightState(z float64) FlightState {
	return FlightState{
		HoldingBall:            true,
		InitialForwardDistance: z,
	}
}

// GameProgress tracks which level is active.
type GameProgress struct {
	CurrentLevelIndex int
	LevelCount        int
	// Attempts counts attempts on the current level, starting at 1.
	Attempts int
	GameOver bool
}

// IsLastLevel reports whether the current level is the final one.
func (g GameProgress) IsLastLevel() bool {
	return g.CurrentLevelIndex >= g.LevelCount-1
}
