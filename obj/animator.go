package obj

import "github.com/milk9111/dunk/component"

// Clip is a named animation of fixed duration in seconds.
type Clip struct {
	Name     string
	Duration float64
	Loop     bool
}

// Animator plays clips by name on a timeline advanced by Update. A clip
// played once is clamped at its end and notifies OnFinished handlers once.
type Animator struct {
	clips    map[string]Clip
	handlers []func(clip string)

	current  string
	elapsed  float64
	once     bool
	finished bool
}

var _ component.Animator = (*Animator)(nil)

func NewAnimator(clips ...Clip) *Animator {
	a := &Animator{clips: make(map[string]Clip, len(clips))}
	for _, c := range clips {
		a.clips[c.Name] = c
	}
	return a
}

// NewAnimatorFor builds an animator from the clips declared on a loaded node.
func NewAnimatorFor(n component.Node) *Animator {
	if node, ok := n.(*Node); ok && node != nil {
		return NewAnimator(node.clips...)
	}
	return NewAnimator()
}

// Play starts clip from its first frame. Unknown clips finish on the next update.
func (a *Animator) Play(clip string, once bool) {
	if a == nil {
		return
	}
	a.current = clip
	a.elapsed = 0
	a.once = once
	a.finished = false
}

func (a *Animator) OnFinished(fn func(clip string)) {
	if a == nil || fn == nil {
		return
	}
	a.handlers = append(a.handlers, fn)
}

// Update advances the current clip by delta seconds.
func (a *Animator) Update(delta float64) {
	if a == nil || a.current == "" || a.finished || delta <= 0 {
		return
	}
	clip := a.clips[a.current]
	a.elapsed += delta
	if a.elapsed < clip.Duration {
		return
	}
	if clip.Loop && !a.once && clip.Duration > 0 {
		for a.elapsed >= clip.Duration {
			a.elapsed -= clip.Duration
		}
		return
	}
	a.elapsed = clip.Duration
	if !a.once {
		return
	}
	a.finished = true
	name := a.current
	for _, h := range a.handlers {
		h(name)
	}
}

// Current returns the playing clip name.
func (a *Animator) Current() string {
	if a == nil {
		return ""
	}
	return a.current
}

// Progress returns how far into the current clip playback is, in [0,1].
func (a *Animator) Progress() float64 {
	if a == nil {
		return 0
	}
	clip, ok := a.clips[a.current]
	if !ok || clip.Duration <= 0 {
		return 1
	}
	return a.elapsed / clip.Duration
}
