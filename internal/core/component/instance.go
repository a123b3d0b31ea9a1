package component

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/zeusync/zeuscene/internal/core/clock"
	"github.com/zeusync/zeuscene/internal/core/events/bus"
	"github.com/zeusync/zeuscene/internal/core/interaction"
	"github.com/zeusync/zeuscene/internal/core/observability/log"
)

// Instance is a live component together with its lifecycle state, its
// private event emitter and its per-instance clock.
type Instance struct {
	id        string
	name      string
	kind      string
	config    Config
	comp      Component
	host      Host
	container Container
	logger    log.Log

	hub   *bus.Hub
	clock *clock.Clock

	ctx    context.Context
	cancel context.CancelFunc

	state       atomic.Uint32
	disposeOnce sync.Once
}

func newInstance(parent context.Context, id, name, kind string, cfg Config, host Host, container Container, src clock.TimeSource, logger log.Log) *Instance {
	ctx, cancel := context.WithCancel(parent)
	return &Instance{
		id:        id,
		name:      name,
		kind:      kind,
		config:    cfg,
		host:      host,
		container: container,
		logger:    logger.With(log.Instance(name), log.Component(kind)),
		hub:       bus.New(name),
		clock:     clock.New(src),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// ID is unique per instance, even across instances sharing a name.
func (i *Instance) ID() string { return i.id }

// Name is the registry key: the configured name, or the id when none was given.
func (i *Instance) Name() string { return i.name }

// Kind is the registered component name the instance was built from.
func (i *Instance) Kind() string { return i.kind }

// Config returns a copy of the merged configuration.
func (i *Instance) Config() Config { return i.config.Clone() }

func (i *Instance) Component() Component { return i.comp }

// Emitter is cleared when the instance is disposed.
func (i *Instance) Emitter() bus.Emitter { return i.hub }

func (i *Instance) Emit(eventType string, data any) error {
	return i.hub.Emit(eventType, data)
}

func (i *Instance) On(eventType string, handler bus.EventHandler) bus.Subscription {
	return i.hub.Subscribe(eventType, handler)
}

// State is safe to read from any goroutine.
func (i *Instance) State() State { return State(i.state.Load()) }

func (i *Instance) Mounted() bool { return i.State() == StateMounted }

func (i *Instance) Disposed() bool { return i.State() == StateDisposed }

// Context is cancelled when the instance is disposed.
func (i *Instance) Context() context.Context { return i.ctx }

// InteractiveObjects returns the component's hit-test objects while the
// instance is live.
func (i *Instance) InteractiveObjects() []interaction.Object {
	if !i.Mounted() {
		return nil
	}
	if it, ok := i.comp.(Interactive); ok {
		return it.InteractiveObjects()
	}
	return nil
}

// transition moves from one state to another, failing if the instance has
// already moved on (typically because it was disposed concurrently).
func (i *Instance) transition(from, to State) bool {
	return i.state.CompareAndSwap(uint32(from), uint32(to))
}

func (i *Instance) mount(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in OnMounted: %v", r)
		}
	}()
	return i.comp.OnMounted(ctx)
}

func (i *Instance) update() {
	if !i.Mounted() {
		return
	}
	i.comp.OnUpdate(i.clock.Delta())
}

// dispose tears the instance down. It is idempotent and best-effort: a
// panicking or failing hook is logged and the remaining steps still run.
func (i *Instance) dispose() {
	i.disposeOnce.Do(func() {
		i.safely("OnBeforeDispose", func() error {
			i.comp.OnBeforeDispose()
			return nil
		})

		i.state.Store(uint32(StateDisposed))
		i.cancel()
		i.clock.Stop()
		i.hub.Clear()

		i.safely("OnDispose", i.comp.OnDispose)

		if i.container != nil {
			i.container.Detach(i)
		}
		i.logger.Debug("instance disposed")
	})
}

func (i *Instance) safely(hook string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			i.logger.Error("dispose hook panicked", log.String("hook", hook), log.Any("panic", r))
		}
	}()
	if err := fn(); err != nil {
		i.logger.Error("dispose hook failed", log.String("hook", hook), log.Error(err))
	}
}
