// Package scheduler drives the per-frame update loop of a scene.
package scheduler

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zeusync/zeuscene/internal/core/observability/log"
)

// Config controls the frame rate of the default ticker source.
type Config struct {
	FPS int `yaml:"fps"`
	// MaxDelta caps the delta handed to controls after a long stall.
	MaxDelta time.Duration `yaml:"max_delta"`
}

func DefaultConfig() Config {
	return Config{
		FPS:      60,
		MaxDelta: 100 * time.Millisecond,
	}
}

// Frame describes one completed tick.
type Frame struct {
	Number uint64
	Time   time.Time
	Delta  time.Duration
}

// Animator advances animations by its own clock and returns the delta used.
type Animator interface {
	Update() time.Duration
}

type Updater interface {
	Update()
}

type Controls interface {
	Update(dt time.Duration) bool
}

// Renderer is the last step of a frame. An error is logged and the loop
// keeps running.
type Renderer interface {
	Render(frame Frame) error
}

// Steps are the per-frame stages, run in field order. Nil stages are skipped.
type Steps struct {
	Animations Animator
	Components Updater
	Controls   Controls
	Renderer   Renderer
}

// Loop requests frames from a FrameSource and runs Steps on each one.
type Loop struct {
	source FrameSource
	steps  Steps
	config Config
	logger log.Log

	// tick is held while a frame's steps run; Stop takes it to wait them out.
	tick sync.Mutex

	mu         sync.Mutex
	running    bool
	generation uint64
	cancel     func()

	frames   atomic.Uint64
	lastTime time.Time
	last     atomic.Pointer[Frame]
}

// NewLoop creates a stopped loop.
func NewLoop(source FrameSource, steps Steps, cfg Config, logger log.Log) (*Loop, error) {
	if source == nil {
		return nil, ErrNoFrameSource
	}
	if logger == nil {
		logger = log.Provide()
	}
	return &Loop{
		source: source,
		steps:  steps,
		config: cfg,
		logger: logger.Named("scheduler"),
	}, nil
}

// Start schedules the first frame. It is a no-op while running.
func (l *Loop) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running {
		return
	}
	l.running = true
	l.generation++
	l.lastTime = time.Time{}
	l.requestLocked(l.generation)
	l.logger.Info("frame loop started", log.Int("fps", l.config.FPS))
}

// Stop cancels the pending frame and waits for a frame already in progress
// to finish, so no step runs once Stop returns. It must not be called from
// inside a step.
func (l *Loop) Stop() {
	l.halt()
	l.tick.Lock()
	l.tick.Unlock()
}

func (l *Loop) halt() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.running {
		return
	}
	l.running = false
	l.generation++
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.logger.Info("frame loop stopped", log.Uint64("frames", l.frames.Load()))
}

func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

func (l *Loop) Frames() uint64 { return l.frames.Load() }

// LastFrame returns the most recent tick, if any.
func (l *Loop) LastFrame() (Frame, bool) {
	f := l.last.Load()
	if f == nil {
		return Frame{}, false
	}
	return *f, true
}

func (l *Loop) requestLocked(gen uint64) {
	l.cancel = l.source.RequestFrame(func(now time.Time) {
		l.onFrame(gen, now)
	})
}

func (l *Loop) onFrame(gen uint64, now time.Time) {
	l.tick.Lock()
	defer l.tick.Unlock()

	l.mu.Lock()
	if !l.running || gen != l.generation {
		l.mu.Unlock()
		return
	}
	delta := time.Duration(0)
	if !l.lastTime.IsZero() {
		delta = now.Sub(l.lastTime)
	}
	l.lastTime = now
	l.mu.Unlock()

	if err := l.safeTick(now, delta); err != nil {
		l.logger.Error("frame failed, stopping loop", log.Error(err))
		l.halt()
		return
	}

	l.mu.Lock()
	if l.running && gen == l.generation {
		l.requestLocked(gen)
	}
	l.mu.Unlock()
}

func (l *Loop) safeTick(now time.Time, delta time.Duration) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in frame: %v", r)
		}
	}()
	l.Tick(now, delta)
	return nil
}

// Tick runs one frame: animations, then components, then controls, then
// the render call. It can be called directly when no FrameSource drives
// the loop.
func (l *Loop) Tick(now time.Time, delta time.Duration) Frame {
	if delta < 0 {
		delta = 0
	}
	if l.config.MaxDelta > 0 && delta > l.config.MaxDelta {
		delta = l.config.MaxDelta
	}

	frame := Frame{Number: l.frames.Add(1), Time: now, Delta: delta}

	if l.steps.Animations != nil {
		l.steps.Animations.Update()
	}
	if l.steps.Components != nil {
		l.steps.Components.Update()
	}
	if l.steps.Controls != nil {
		l.steps.Controls.Update(delta)
	}
	if l.steps.Renderer != nil {
		if err := l.steps.Renderer.Render(frame); err != nil {
			l.logger.Warn("render failed", log.Uint64("frame", frame.Number), log.Error(err))
		}
	}

	l.last.Store(&frame)
	return frame
}
