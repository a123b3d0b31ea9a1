package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"cogentcore.org/core/math32"

	"github.com/zeusync/zeuscene/internal/core/animation"
	"github.com/zeusync/zeuscene/internal/core/component"
	"github.com/zeusync/zeuscene/internal/core/events/bus"
	"github.com/zeusync/zeuscene/internal/core/interaction"
	"github.com/zeusync/zeuscene/internal/core/observability/log"
	"github.com/zeusync/zeuscene/internal/core/resource"
	"github.com/zeusync/zeuscene/internal/core/resource/loaders"
	"github.com/zeusync/zeuscene/internal/core/scene"
)

const (
	spinnerName = "Spinner"
	markerName  = "Marker"
)

func builtinNames() []string {
	return []string{spinnerName, markerName}
}

func registerBuiltins(s *scene.Scene) error {
	if err := s.Register(spinnerName, newSpinner, component.WithDefaults(component.Config{
		"size":      1.0,
		"period":    "2s",
		"amplitude": 0.5,
	})); err != nil {
		return err
	}
	return s.Register(markerName, newMarker,
		component.WithDefaults(component.Config{
			"label": "marker",
			"size":  0.5,
			"style": map[string]any{"color": "#ffffff", "scale": 1.0},
		}),
		component.WithDeepMerge(),
	)
}

func position(cfg component.Config) math32.Vector3 {
	return math32.Vec3(
		float32(cfg.Float("x", 0)),
		float32(cfg.Float("y", 0)),
		float32(cfg.Float("z", 0)),
	)
}

// spinner is a cube bobbing on a looping clip. Clicking it toggles the clip.
type spinner struct {
	component.Base
	center    math32.Vector3
	size      float32
	amplitude float32
	box       *interaction.BoxObject
	clip      *animation.Clip
	action    *animation.Action
	sub       bus.Subscription
}

func newSpinner(_ component.Host, cfg component.Config) (component.Component, error) {
	sp := &spinner{
		center:    position(cfg),
		size:      float32(cfg.Float("size", 1)),
		amplitude: float32(cfg.Float("amplitude", 0.5)),
	}
	period := cfg.Duration("period", 2*time.Second)
	if period <= 0 {
		return nil, fmt.Errorf("spinner period must be positive, got %v", period)
	}
	sp.clip = &animation.Clip{
		Name:     "bob",
		Duration: period,
		Apply:    sp.apply,
	}
	return sp, nil
}

func (sp *spinner) OnCreate() {
	sp.box = interaction.NewCubeObject(sp.Instance().Name(), sp.center, sp.size)
}

// OnMounted starts the bob animation and toggles it on click.
func (sp *spinner) OnMounted(context.Context) error {
	action, err := sp.Host().Animations().Play(sp.box, sp.clip, animation.WithLoop(animation.LoopRepeat))
	if err != nil {
		return err
	}
	sp.action = action
	sp.sub = sp.box.On(interaction.Click, func(interaction.PointerEvent) error {
		if sp.action.IsRunning() {
			sp.action.Pause()
		} else {
			sp.action.Resume()
		}
		return sp.Emit("toggled", sp.action.IsRunning())
	})
	return nil
}

func (sp *spinner) apply(_ any, at time.Duration, weight float32) {
	phase := float32(at) / float32(sp.clip.Duration) * 2 * math32.Pi
	c := sp.center
	c.Y += math32.Sin(phase) * sp.amplitude * weight
	half := sp.size / 2
	sp.box.SetBox(math32.B3(c.X-half, c.Y-half, c.Z-half, c.X+half, c.Y+half, c.Z+half))
}

func (sp *spinner) OnBeforeDispose() {
	if sp.sub != nil {
		sp.sub.Cancel()
	}
}

// OnDispose releases the box and drops its mixer.
func (sp *spinner) OnDispose() error {
	sp.Host().Animations().Remove(sp.box)
	sp.box.Dispose()
	return nil
}

func (sp *spinner) InteractiveObjects() []interaction.Object {
	if sp.box == nil || sp.box.Disposed() {
		return nil
	}
	return []interaction.Object{sp.box}
}

// marker is a labelled pick target whose label can come from a YAML file.
type marker struct {
	component.Base
	box   *interaction.BoxObject
	label string
	style component.Config
}

func newMarker(_ component.Host, cfg component.Config) (component.Component, error) {
	return &marker{
		box:   interaction.NewCubeObject(cfg.Name(), position(cfg), float32(cfg.Float("size", 0.5))),
		label: cfg.String("label"),
		style: cfg.Map("style"),
	}, nil
}

// OnMounted loads the optional label through the resource manager.
func (m *marker) OnMounted(ctx context.Context) error {
	cfg := m.Config()
	if src := cfg.String("source"); src != "" {
		dir := cfg.String("dir")
		if dir == "" {
			dir = "."
		}
		res, err := m.Host().Resources().Load(ctx, src, resource.KindYAML, loaders.YAML(loaders.File(os.DirFS(dir))))
		if err != nil {
			return err
		}
		if doc, ok := res.Value.(map[string]any); ok {
			if label := component.Config(doc).String("label"); label != "" {
				m.label = label
			}
		}
	}

	m.box.On(interaction.MouseEnter, func(interaction.PointerEvent) error {
		m.Logger().Info("marker hovered", log.String("label", m.label), log.String("color", m.style.String("color")))
		return nil
	})
	m.box.On(interaction.Click, func(interaction.PointerEvent) error {
		return m.Emit("selected", m.label)
	})
	return nil
}

func (m *marker) OnDispose() error {
	m.box.Dispose()
	return nil
}

func (m *marker) InteractiveObjects() []interaction.Object {
	if m.box.Disposed() {
		return nil
	}
	return []interaction.Object{m.box}
}
