package component

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/zeusync/zeuscene/internal/core/clock"
	"github.com/zeusync/zeuscene/internal/core/interaction"
	"github.com/zeusync/zeuscene/internal/core/observability/log"
)

// Factory builds a component from its merged configuration.
type Factory func(host Host, cfg Config) (Component, error)

// Descriptor binds a component name to its factory and defaults.
type Descriptor struct {
	Name     string
	Factory  Factory
	Defaults Config
	// DeepMerge merges nested maps of the add-time config into the
	// defaults instead of replacing them.
	DeepMerge bool
}

// DescriptorOption adjusts a Descriptor at registration time.
type DescriptorOption func(*Descriptor)

// WithDefaults sets the config merged under every instance config.
func WithDefaults(defaults Config) DescriptorOption {
	return func(d *Descriptor) { d.Defaults = defaults }
}

// WithDeepMerge merges nested maps key by key instead of replacing them.
func WithDeepMerge() DescriptorOption {
	return func(d *Descriptor) { d.DeepMerge = true }
}

// Option configures a Registry.
type Option func(*Registry)

// WithTimeSource sets the source of the per-instance clocks. Defaults to
// clock.System.
func WithTimeSource(src clock.TimeSource) Option {
	return func(r *Registry) { r.clock = src }
}

// WithContainer sets where instances are attached before OnMounted runs.
func WithContainer(c Container) Option {
	return func(r *Registry) { r.container = c }
}

// WithLogger sets the logger the registry and its instances log through.
func WithLogger(l log.Log) Option {
	return func(r *Registry) { r.logger = l }
}

// Registry owns the component descriptors and the live instance table.
// All methods are safe for concurrent use; Update is expected to be driven
// by a single frame goroutine.
type Registry struct {
	host      Host
	container Container
	clock     clock.TimeSource
	logger    log.Log

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.RWMutex
	descriptors map[string]Descriptor
	instances   map[string]*Instance
	order       []*Instance
}

// NewRegistry creates an empty registry whose instances see host.
func NewRegistry(host Host, opts ...Option) *Registry {
	ctx, cancel := context.WithCancel(context.Background())
	r := &Registry{
		host:        host,
		clock:       clock.System{},
		logger:      log.Provide(),
		ctx:         ctx,
		cancel:      cancel,
		descriptors: make(map[string]Descriptor),
		instances:   make(map[string]*Instance),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.Named("components")
	return r
}

// Register adds a component descriptor. Registering a name twice keeps the
// first descriptor and logs a warning.
func (r *Registry) Register(name string, factory Factory, opts ...DescriptorOption) error {
	d := Descriptor{Name: name, Factory: factory}
	for _, opt := range opts {
		opt(&d)
	}
	return r.RegisterDescriptor(d)
}

// RegisterDescriptor validates d and adds it. Registering a name twice
// keeps the first descriptor and logs a warning.
func (r *Registry) RegisterDescriptor(d Descriptor) error {
	if d.Name == "" || d.Factory == nil {
		return ErrInvalidDescriptor
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.descriptors[d.Name]; exists {
		r.logger.Warn("component already registered, ignoring", log.Component(d.Name))
		return nil
	}
	d.Defaults = d.Defaults.Clone()
	r.descriptors[d.Name] = d
	r.logger.Debug("component registered", log.Component(d.Name))
	return nil
}

// Registered reports whether a factory exists under name.
func (r *Registry) Registered(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.descriptors[name]
	return ok
}

// Descriptors lists registered component names in lexical order.
func (r *Registry) Descriptors() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.descriptors))
	for name := range r.descriptors {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Add instantiates a registered component and blocks until it is mounted.
//
// The instance is visible through Get and attached to the container as soon
// as it is constructed, before OnMounted runs. If OnMounted fails the
// instance is disposed and removed and the error wraps ErrMountFailed. If
// the instance is removed while mounting, Add returns ErrDisposedDuringMount.
// Cancelling ctx cancels the context handed to OnMounted.
func (r *Registry) Add(ctx context.Context, name string, cfg Config) (*Instance, error) {
	r.mu.RLock()
	d, ok := r.descriptors[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotRegistered, name)
	}

	var merged Config
	if d.DeepMerge {
		merged = DeepMerge(d.Defaults, cfg)
	} else {
		merged = Merge(d.Defaults, cfg)
	}

	id := uuid.NewString()
	key := merged.Name()
	if key == "" {
		key = id
	}

	r.mu.RLock()
	_, taken := r.instances[key]
	r.mu.RUnlock()
	if taken {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateInstance, key)
	}

	comp, err := d.Factory(r.host, merged)
	if err != nil {
		return nil, fmt.Errorf("create %q: %w", name, err)
	}
	if comp == nil {
		return nil, fmt.Errorf("create %q: %w", name, ErrInvalidDescriptor)
	}

	inst := newInstance(r.ctx, id, key, name, merged, r.host, r.container, r.clock, r.logger)
	inst.comp = comp
	if b, ok := comp.(binder); ok {
		b.bind(inst)
	}

	if err := r.insert(inst); err != nil {
		return nil, err
	}

	if err := r.premount(inst); err != nil {
		return nil, err
	}

	mountCtx, cancelMount := context.WithCancel(inst.ctx)
	stop := context.AfterFunc(ctx, cancelMount)
	err = inst.mount(mountCtx)
	stop()
	cancelMount()

	if inst.Disposed() {
		return nil, fmt.Errorf("%w: %q", ErrDisposedDuringMount, key)
	}
	if err != nil {
		inst.transition(StateMounting, StateFailed)
		r.logger.Error("component mount failed", log.Instance(key), log.Component(name), log.Error(err))
		r.remove(inst)
		return nil, fmt.Errorf("%w: %q: %w", ErrMountFailed, key, err)
	}
	if !inst.transition(StateMounting, StateMounted) {
		return nil, fmt.Errorf("%w: %q", ErrDisposedDuringMount, key)
	}
	inst.clock.Start()

	r.logger.Debug("component mounted", log.Instance(key), log.Component(name))
	return inst, nil
}

func (r *Registry) insert(inst *Instance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.instances[inst.name]; taken {
		return fmt.Errorf("%w: %q", ErrDuplicateInstance, inst.name)
	}
	r.instances[inst.name] = inst
	r.order = append(r.order, inst)
	return nil
}

// premount runs the synchronous hooks and attaches the instance. A panic in
// OnCreate or OnBeforeMount propagates to the caller after the instance is
// taken out of the table.
func (r *Registry) premount(inst *Instance) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r.remove(inst)
			panic(rec)
		}
	}()

	inst.comp.OnCreate()
	inst.comp.OnBeforeMount()
	if r.container != nil {
		r.container.Attach(inst)
	}
	if !inst.transition(StateCreated, StateMounting) {
		return fmt.Errorf("%w: %q", ErrDisposedDuringMount, inst.name)
	}
	return nil
}

// Get returns the instance registered under name, including one that is
// still mounting.
func (r *Registry) Get(name string) (*Instance, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inst, ok := r.instances[name]
	return inst, ok
}

// Remove disposes the named instance and deletes it from the table.
func (r *Registry) Remove(name string) bool {
	r.mu.RLock()
	inst, ok := r.instances[name]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	r.remove(inst)
	return true
}

func (r *Registry) remove(inst *Instance) {
	r.mu.Lock()
	if cur, ok := r.instances[inst.name]; ok && cur == inst {
		delete(r.instances, inst.name)
		for idx, o := range r.order {
			if o == inst {
				r.order = append(r.order[:idx], r.order[idx+1:]...)
				break
			}
		}
	}
	r.mu.Unlock()

	inst.dispose()
}

// All returns every instance in insertion order.
func (r *Registry) All() []*Instance {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Instance, len(r.order))
	copy(out, r.order)
	return out
}

// Len is the number of live instances.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Update ticks every mounted instance once, in insertion order. Instances
// added during the tick wait for the next one; instances disposed during
// the tick are skipped.
func (r *Registry) Update() {
	for _, inst := range r.All() {
		inst.update()
	}
}

// InteractiveObjects collects hit-test objects from all live instances.
func (r *Registry) InteractiveObjects() []interaction.Object {
	var out []interaction.Object
	for _, inst := range r.All() {
		out = append(out, inst.InteractiveObjects()...)
	}
	return out
}

// Dispose tears down every instance, newest first, and cancels the
// contexts of any mounts still in progress.
func (r *Registry) Dispose() {
	all := r.All()
	for idx := len(all) - 1; idx >= 0; idx-- {
		r.remove(all[idx])
	}
	r.cancel()
}

var _ interaction.Source = (*Registry)(nil)
