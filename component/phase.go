package component

// Phase is the progression state of a session.
type Phase uint8

const (
	// PhaseLoading means the required roles are not bound yet.
	PhaseLoading Phase = iota
	PhaseIdle
	PhaseAscending
	PhaseDescending
	PhaseSucceeded
	PhaseFailed
	PhaseGameOver
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseIdle:
		return "idle"
	case PhaseAscending:
		return "ascending"
	case PhaseDescending:
		return "descending"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	case PhaseGameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// Outcome is what a tick resolved the current attempt to.
type Outcome uint8

const (
	OutcomeNone Outcome = iota
	OutcomeDunk
	OutcomeNearMiss
	OutcomeFell
	OutcomeGameOver
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDunk:
		return "dunk"
	case OutcomeNearMiss:
		return "near_miss"
	case OutcomeFell:
		return "fell"
	case OutcomeGameOver:
		return "game_over"
	default:
		return "none"
	}
}

// Contact is the result of a goal contact check.
type Contact uint8

const (
	// ContactNotReady means the ball or the goal collider is not bound.
	ContactNotReady Contact = iota
	ContactMiss
	ContactHit
)

func (c Contact) String() string {
	switch c {
	case ContactMiss:
		return "miss"
	case ContactHit:
		return "hit"
	default:
		return "not_ready"
	}
}

// MessageID names a feedback message shown to the player.
type MessageID string

const (
	MessageSuccess       MessageID = "success"
	MessageFailure       MessageID = "failure"
	MessageNeedMoreFlips MessageID = "need_more_flips"
	MessageGameOver      MessageID = "game_over"
)
