// Package animation keeps one mixer per animated target and advances all of
// them from a single shared clock.
package animation

import (
	"reflect"
	"sync"
	"time"

	"github.com/zeusync/zeuscene/internal/core/clock"
	"github.com/zeusync/zeuscene/internal/core/events/bus"
	"github.com/zeusync/zeuscene/internal/core/observability/log"
)

// EventFinished is published with the *Action as data when a LoopOnce
// action reaches its end.
const EventFinished = "finished"

// Coordinator owns one Mixer per target and is safe for concurrent use.
type Coordinator struct {
	mu     sync.Mutex
	clock  *clock.Clock
	mixers map[any]*Mixer
	order  []any
	hub    *bus.Hub
	logger log.Log
}

// NewCoordinator creates a coordinator whose shared clock reads src.
func NewCoordinator(src clock.TimeSource, logger log.Log) *Coordinator {
	if logger == nil {
		logger = log.Nop()
	}
	return &Coordinator{
		clock:  clock.New(src),
		mixers: make(map[any]*Mixer),
		hub:    bus.New("animation"),
		logger: logger.Named("animation"),
	}
}

// CreateMixer binds a fresh mixer to target. A mixer already bound to the
// same target is replaced without stopping its actions; callers stop it
// first when that matters.
func (c *Coordinator) CreateMixer(target any) (*Mixer, error) {
	if err := validateTarget(target); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.createLocked(target), nil
}

// Mixer returns the mixer bound to target, if any.
func (c *Coordinator) Mixer(target any) (*Mixer, bool) {
	if validateTarget(target) != nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.mixers[target]
	return m, ok
}

// Play starts clip on target, creating the target's mixer on first use.
func (c *Coordinator) Play(target any, clip *Clip, opts ...PlayOption) (*Action, error) {
	if clip == nil {
		return nil, ErrNilClip
	}
	if err := validateTarget(target); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.mixers[target]
	if !ok {
		m = c.createLocked(target)
	}
	a := m.ClipAction(clip)
	a.configure(opts)
	return a.Play(), nil
}

// Update reads one delta from the shared clock and advances every mixer by it.
func (c *Coordinator) Update() time.Duration {
	delta := c.clock.Delta()
	c.Advance(delta)
	return delta
}

// Advance moves every mixer by the same delta.
func (c *Coordinator) Advance(delta time.Duration) {
	c.mu.Lock()
	var finished []*Action
	for _, target := range c.order {
		finished = append(finished, c.mixers[target].update(delta)...)
	}
	c.mu.Unlock()

	for _, a := range finished {
		if err := c.hub.Emit(EventFinished, a); err != nil {
			c.logger.Warn("finished handler failed", log.String("clip", a.clip.Name), log.Error(err))
		}
	}
}

// Remove stops the target's actions and drops its mixer.
func (c *Coordinator) Remove(target any) {
	if validateTarget(target) != nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.mixers[target]
	if !ok {
		return
	}
	m.StopAll()
	delete(c.mixers, target)
	for i, t := range c.order {
		if t == target {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Dispose stops everything and forgets all mixers.
func (c *Coordinator) Dispose() {
	c.mu.Lock()
	for _, m := range c.mixers {
		m.StopAll()
	}
	c.mixers = make(map[any]*Mixer)
	c.order = nil
	c.mu.Unlock()
	c.hub.Clear()
	c.clock.Stop()
}

func (c *Coordinator) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.mixers)
}

func (c *Coordinator) Subscribe(eventType string, handler bus.EventHandler) bus.Subscription {
	return c.hub.Subscribe(eventType, handler)
}

func (c *Coordinator) createLocked(target any) *Mixer {
	if _, exists := c.mixers[target]; !exists {
		c.order = append(c.order, target)
	}
	m := newMixer(target)
	c.mixers[target] = m
	return m
}

func validateTarget(target any) error {
	if target == nil || !reflect.TypeOf(target).Comparable() {
		return ErrInvalidTarget
	}
	return nil
}
