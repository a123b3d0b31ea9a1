// Package scene wires the component registry, resource manager, animation
// coordinator, interaction dispatcher and frame loop into one unit.
package scene

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/zeusync/zeuscene/internal/core/animation"
	"github.com/zeusync/zeuscene/internal/core/cache"
	"github.com/zeusync/zeuscene/internal/core/camera"
	"github.com/zeusync/zeuscene/internal/core/clock"
	"github.com/zeusync/zeuscene/internal/core/component"
	"github.com/zeusync/zeuscene/internal/core/interaction"
	"github.com/zeusync/zeuscene/internal/core/observability/log"
	"github.com/zeusync/zeuscene/internal/core/resource"
	"github.com/zeusync/zeuscene/internal/core/scheduler"
)

var ErrClosed = errors.New("scene: closed")

type options struct {
	logger   log.Log
	source   scheduler.FrameSource
	time     clock.TimeSource
	renderer scheduler.Renderer
}

// Option overrides one of the collaborators New builds by default.
type Option func(*options)

// WithLogger replaces the logger built from Config.Log.
func WithLogger(l log.Log) Option {
	return func(o *options) { o.logger = l }
}

// WithFrameSource replaces the ticker that drives the frame loop.
func WithFrameSource(src scheduler.FrameSource) Option {
	return func(o *options) { o.source = src }
}

// WithTimeSource sets the time source of the animation and instance clocks.
func WithTimeSource(src clock.TimeSource) Option {
	return func(o *options) { o.time = src }
}

// WithRenderer sets the last step of every frame. Defaults to a
// CountingRenderer over the stage.
func WithRenderer(r scheduler.Renderer) Option {
	return func(o *options) { o.renderer = r }
}

// Scene owns every core module and is the Host handed to component factories.
type Scene struct {
	config Config
	logger log.Log

	store      *cache.Store
	resources  *resource.Manager
	animations *animation.Coordinator
	camera     *camera.Perspective
	controls   *camera.OrbitControls
	registry   *component.Registry
	dispatcher *interaction.Dispatcher
	stage      *Stage
	renderer   scheduler.Renderer
	loop       *scheduler.Loop

	closed atomic.Bool
}

// New wires every module of a scene from cfg. The loop is not started.
func New(cfg Config, opts ...Option) (*Scene, error) {
	o := options{time: clock.System{}}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		logger, err := log.New(cfg.Log)
		if err != nil {
			return nil, err
		}
		o.logger = logger
	}
	if o.source == nil {
		o.source = scheduler.NewTickerSource(cfg.Scheduler.FPS)
	}

	s := &Scene{
		config: cfg,
		logger: o.logger.Named("scene"),
	}

	s.store = cache.New(cfg.Cache, cache.WithLogger(o.logger), cache.WithTimeSource(o.time))
	s.resources = resource.NewManager(s.store, cfg.Resource, o.logger)
	s.animations = animation.NewCoordinator(o.time, o.logger)
	s.camera = camera.NewPerspective(cfg.Camera)
	s.controls = camera.NewOrbitControls(s.camera, cfg.Camera.Orbit)
	s.stage = NewStage(s.logger)

	s.registry = component.NewRegistry(s,
		component.WithContainer(s.stage),
		component.WithTimeSource(o.time),
		component.WithLogger(o.logger),
	)
	s.dispatcher = interaction.NewDispatcher(s.registry, s.camera, o.logger)

	s.renderer = o.renderer
	if s.renderer == nil {
		s.renderer = NewCountingRenderer(s.stage)
	}

	loop, err := scheduler.NewLoop(o.source, scheduler.Steps{
		Animations: s.animations,
		Components: s.registry,
		Controls:   s.controls,
		Renderer:   s.renderer,
	}, cfg.Scheduler, o.logger)
	if err != nil {
		return nil, err
	}
	s.loop = loop

	return s, nil
}

func (s *Scene) Logger() log.Log                      { return s.logger }
func (s *Scene) Resources() *resource.Manager         { return s.resources }
func (s *Scene) Animations() *animation.Coordinator   { return s.animations }
func (s *Scene) Interaction() *interaction.Dispatcher { return s.dispatcher }

func (s *Scene) Config() Config                  { return s.config }
func (s *Scene) Cache() *cache.Store             { return s.store }
func (s *Scene) Registry() *component.Registry   { return s.registry }
func (s *Scene) Camera() *camera.Perspective     { return s.camera }
func (s *Scene) Controls() *camera.OrbitControls { return s.controls }
func (s *Scene) Stage() *Stage                   { return s.stage }
func (s *Scene) Renderer() scheduler.Renderer    { return s.renderer }
func (s *Scene) Loop() *scheduler.Loop           { return s.loop }

// Register makes a component available to Add and Populate.
func (s *Scene) Register(name string, factory component.Factory, opts ...component.DescriptorOption) error {
	return s.registry.Register(name, factory, opts...)
}

// Add creates and mounts an instance. It returns once OnMounted settled.
func (s *Scene) Add(ctx context.Context, name string, cfg component.Config) (*component.Instance, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	return s.registry.Add(ctx, name, cfg)
}

func (s *Scene) Remove(name string) bool {
	return s.registry.Remove(name)
}

// Populate adds the instances listed in the config, in order. It stops at
// the first failure; instances already added stay mounted.
func (s *Scene) Populate(ctx context.Context) error {
	for i, spec := range s.config.Components {
		cfg := component.Config(spec.Config).Clone()
		if spec.Name != "" {
			cfg[component.NameKey] = spec.Name
		}
		if _, err := s.Add(ctx, spec.Component, cfg); err != nil {
			return fmt.Errorf("components[%d] %s: %w", i, spec.Component, err)
		}
	}
	return nil
}

// Dispatch routes a pointer event through the interaction dispatcher.
func (s *Scene) Dispatch(kind interaction.EventKind, in interaction.Input) error {
	if s.closed.Load() {
		return ErrClosed
	}
	return s.dispatcher.Dispatch(kind, in)
}

// Resize updates the camera aspect ratio for a new viewport.
func (s *Scene) Resize(width, height float32) {
	if width <= 0 || height <= 0 {
		return
	}
	s.camera.SetAspect(width / height)
}

// Start begins requesting frames.
func (s *Scene) Start() error {
	if s.closed.Load() {
		return ErrClosed
	}
	s.loop.Start()
	return nil
}

// Stop pauses the frame loop. Instances stay mounted.
func (s *Scene) Stop() {
	s.loop.Stop()
}

// Close stops the loop and disposes every instance, mixer and cached
// resource. It is safe to call more than once.
func (s *Scene) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	s.loop.Stop()
	if err := s.dispatcher.Reset(); err != nil {
		s.logger.Warn("hover reset failed", log.Error(err))
	}
	s.registry.Dispose()
	s.animations.Dispose()
	s.resources.Clear()
	s.logger.Info("scene closed")
	return nil
}

var _ component.Host = (*Scene)(nil)
