package animation

import (
	"sync"
	"time"
)

type LoopMode uint8

const (
	LoopRepeat LoopMode = iota
	LoopOnce
	LoopPingPong
)

// Clip is a named, fixed-length animation. Apply samples the clip at the
// given local time and writes the result to target scaled by weight.
type Clip struct {
	Name     string
	Duration time.Duration
	Apply    func(target any, at time.Duration, weight float32)
}

// Action is a clip bound to one mixer. Its controls are safe to call from
// any goroutine while the coordinator advances it.
type Action struct {
	clip   *Clip
	target any

	mu        sync.Mutex
	loop      LoopMode
	timeScale float64
	weight    float32

	phase    time.Duration
	local    time.Duration
	running  bool
	paused   bool
	finished bool
}

// PlayOption configures an action before Play starts it.
type PlayOption func(*Action)

func WithLoop(mode LoopMode) PlayOption {
	return func(a *Action) { a.loop = mode }
}

func WithTimeScale(scale float64) PlayOption {
	return func(a *Action) { a.timeScale = scale }
}

// WithWeight sets the blend weight, clamped to [0, 1].
func WithWeight(weight float32) PlayOption {
	return func(a *Action) { a.weight = clampWeight(weight) }
}

func newAction(clip *Clip, target any) *Action {
	return &Action{
		clip:      clip,
		target:    target,
		loop:      LoopRepeat,
		timeScale: 1,
		weight:    1,
	}
}

func (a *Action) Clip() *Clip { return a.clip }

func (a *Action) Loop() LoopMode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loop
}

func (a *Action) TimeScale() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.timeScale
}

func (a *Action) Weight() float32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.weight
}

// Time is the current position inside the clip.
func (a *Action) Time() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.local
}

func (a *Action) IsRunning() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running && !a.paused
}

func (a *Action) Finished() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.finished
}

func (a *Action) SetWeight(w float32) {
	a.mu.Lock()
	a.weight = clampWeight(w)
	a.mu.Unlock()
}

func (a *Action) SetTimeScale(f float64) {
	a.mu.Lock()
	a.timeScale = f
	a.mu.Unlock()
}

func (a *Action) configure(opts []PlayOption) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, opt := range opts {
		opt(a)
	}
}

// Play (re)starts the action from the beginning.
func (a *Action) Play() *Action {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.phase = 0
	a.local = 0
	a.running = true
	a.paused = false
	a.finished = false
	return a
}

// Stop halts the action and rewinds it. Play starts it again.
func (a *Action) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.running = false
	a.paused = false
	a.phase = 0
	a.local = 0
}

// Pause freezes the action at its current time.
func (a *Action) Pause() {
	a.mu.Lock()
	a.paused = true
	a.mu.Unlock()
}

func (a *Action) Resume() {
	a.mu.Lock()
	a.paused = false
	a.mu.Unlock()
}

// advance moves the action by delta and reports whether it just finished.
// Apply runs after the lock is released so it may call back into a.
func (a *Action) advance(delta time.Duration) bool {
	a.mu.Lock()
	if !a.running || a.paused {
		a.mu.Unlock()
		return false
	}
	a.phase += time.Duration(float64(delta) * a.timeScale)

	dur := a.clip.Duration
	justFinished := false
	switch {
	case dur <= 0:
		a.local = 0
	case a.loop == LoopOnce:
		switch {
		case a.phase >= dur:
			a.local = dur
			a.running = false
			a.finished = true
			justFinished = true
		case a.phase < 0:
			a.local = 0
		default:
			a.local = a.phase
		}
	case a.loop == LoopPingPong:
		p := mod(a.phase, 2*dur)
		if p <= dur {
			a.local = p
		} else {
			a.local = 2*dur - p
		}
	default:
		a.local = mod(a.phase, dur)
	}
	at, weight := a.local, a.weight
	a.mu.Unlock()

	if a.clip.Apply != nil {
		a.clip.Apply(a.target, at, weight)
	}
	return justFinished
}

func mod(x, m time.Duration) time.Duration {
	r := x % m
	if r < 0 {
		r += m
	}
	return r
}

func clampWeight(w float32) float32 {
	if w < 0 {
		return 0
	}
	if w > 1 {
		return 1
	}
	return w
}
