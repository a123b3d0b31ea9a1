package component

import (
	"context"
	"time"

	"github.com/zeusync/zeuscene/internal/core/events/bus"
	"github.com/zeusync/zeuscene/internal/core/interaction"
	"github.com/zeusync/zeuscene/internal/core/observability/log"
)

// State is the lifecycle position of an instance. Transitions only move
// forward: Created -> Mounting -> Mounted|Failed -> Disposed.
type State uint32

const (
	StateCreated State = iota
	StateMounting
	StateMounted
	StateFailed
	StateDisposed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateMounting:
		return "mounting"
	case StateMounted:
		return "mounted"
	case StateFailed:
		return "failed"
	case StateDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}

// Component is the lifecycle contract every registered factory must return.
// Hooks run in this order:
//
//	OnCreate -> OnBeforeMount -> OnMounted -> OnUpdate... -> OnBeforeDispose -> OnDispose
//
// OnMounted may block on I/O; it must return promptly once ctx is done.
// OnUpdate runs on the frame goroutine and must not block.
// Embed Base to get no-op defaults.
type Component interface {
	OnCreate()
	OnBeforeMount()
	OnMounted(ctx context.Context) error
	OnUpdate(delta time.Duration)
	OnBeforeDispose()
	OnDispose() error
}

// Interactive components contribute objects to pointer hit-testing. They
// should stop returning objects they have released.
type Interactive interface {
	InteractiveObjects() []interaction.Object
}

type binder interface {
	bind(inst *Instance)
}

// Base gives a component no-op hooks and access to its instance.
type Base struct {
	inst *Instance
}

func (b *Base) bind(inst *Instance) { b.inst = inst }

// Instance is nil until the registry binds the component.
func (b *Base) Instance() *Instance { return b.inst }

func (b *Base) Config() Config { return b.inst.Config() }

func (b *Base) Host() Host { return b.inst.host }

func (b *Base) Logger() log.Log { return b.inst.logger }

// Context is cancelled when the instance is disposed.
func (b *Base) Context() context.Context { return b.inst.ctx }

func (b *Base) Disposed() bool { return b.inst.Disposed() }

// Emit publishes on the instance emitter.
func (b *Base) Emit(eventType string, data any) error {
	return b.inst.Emit(eventType, data)
}

func (b *Base) On(eventType string, handler bus.EventHandler) bus.Subscription {
	return b.inst.On(eventType, handler)
}

func (*Base) OnCreate()                       {}
func (*Base) OnBeforeMount()                  {}
func (*Base) OnMounted(context.Context) error { return nil }
func (*Base) OnUpdate(time.Duration)          {}
func (*Base) OnBeforeDispose()                {}
func (*Base) OnDispose() error                { return nil }
