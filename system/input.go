package system

// Source is a physical input that can hold the jump button down.
type Source uint8

const (
	SourceKeyboard Source = 1 << iota
	SourceTouch
	SourcePointer
	SourceGamepad
)

// Event is an edge produced by the input gate.
type Event uint8

const (
	EventNone Event = iota
	// EventStartJump fires on the first press of an attempt.
	EventStartJump
)

func (e Event) String() string {
	switch e {
	case EventStartJump:
		return "start_jump"
	default:
		return "none"
	}
}

// InputGate turns raw press and release events into a held flag and a single
// start event per attempt. It stays initiated until Reset.
type InputGate struct {
	down      Source
	initiated bool
	pending   []Event
}

func NewInputGate() *InputGate {
	return &InputGate{}
}

// Press marks src as down. It reports whether a start event was queued.
func (g *InputGate) Press(src Source) bool {
	if g == nil || src == 0 || g.down&src != 0 {
		return false
	}
	g.down |= src
	if g.initiated {
		return false
	}
	g.initiated = true
	g.pending = append(g.pending, EventStartJump)
	return true
}

// Release marks src as up. Other sources may still hold.
func (g *InputGate) Release(src Source) {
	if g == nil {
		return
	}
	g.down &^= src
}

// Merge folds several devices sharing src into one reading: pressed when any
// device went down this frame, down while any device is still held. src is
// released only once no device holds it.
func (g *InputGate) Merge(src Source, pressed, down bool) {
	switch {
	case pressed:
		g.Press(src)
	case !down:
		g.Release(src)
	}
}

func (g *InputGate) JumpPressed() bool { return g.Press(SourceKeyboard) }

func (g *InputGate) JumpReleased() { g.Release(SourceKeyboard) }

// Held reports whether any source is down.
func (g *InputGate) Held() bool {
	return g != nil && g.down != 0
}

// Initiated reports whether the current attempt has started.
func (g *InputGate) Initiated() bool {
	return g != nil && g.initiated
}

// Drain returns and clears queued events in arrival order.
func (g *InputGate) Drain() []Event {
	if g == nil || len(g.pending) == 0 {
		return nil
	}
	out := g.pending
	g.pending = nil
	return out
}

// Rearm drops queued events and allows the next press to start a jump.
// Sources already down stay down.
func (g *InputGate) Rearm() {
	if g == nil {
		return
	}
	g.initiated = false
	g.pending = nil
}

// Reset clears everything, including held sources. It is only called when an
// attempt is replayed.
func (g *InputGate) Reset() {
	if g == nil {
		return
	}
	g.Rearm()
	g.down = 0
}
