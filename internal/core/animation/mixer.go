package animation

import (
	"sync"
	"time"
)

// Mixer advances every action of a single target.
type Mixer struct {
	target any

	mu      sync.Mutex
	actions []*Action
	time    time.Duration
}

func newMixer(target any) *Mixer {
	return &Mixer{target: target}
}

func (m *Mixer) Target() any { return m.target }

// Time is the total delta this mixer has been advanced by.
func (m *Mixer) Time() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.time
}

func (m *Mixer) Actions() []*Action {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*Action(nil), m.actions...)
}

// ClipAction returns the action already bound to clip, or binds a new one.
func (m *Mixer) ClipAction(clip *Clip) *Action {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.actions {
		if a.clip == clip {
			return a
		}
	}
	a := newAction(clip, m.target)
	m.actions = append(m.actions, a)
	return a
}

func (m *Mixer) StopAll() {
	for _, a := range m.Actions() {
		a.Stop()
	}
}

func (m *Mixer) update(delta time.Duration) []*Action {
	m.mu.Lock()
	m.time += delta
	actions := append([]*Action(nil), m.actions...)
	m.mu.Unlock()

	var finished []*Action
	for _, a := range actions {
		if a.advance(delta) {
			finished = append(finished, a)
		}
	}
	return finished
}
