// Package interaction turns pointer input into hit-tested scene events.
package interaction

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"cogentcore.org/core/math32"

	"github.com/zeusync/zeuscene/internal/core/events/bus"
	"github.com/zeusync/zeuscene/internal/core/observability/log"
)

// Dispatcher owns the hover state of one scene. Dispatch calls must not
// overlap: a handler dispatching again, or a second goroutine dispatching
// concurrently, is rejected with ErrReentrantDispatch.
type Dispatcher struct {
	source Source
	caster Raycaster
	global *bus.Hub
	logger log.Log

	mu          sync.RWMutex
	hovered     Object
	dispatching atomic.Bool
}

func NewDispatcher(source Source, caster Raycaster, logger log.Log) *Dispatcher {
	if logger == nil {
		logger = log.Nop()
	}
	return &Dispatcher{
		source: source,
		caster: caster,
		global: bus.New("interaction"),
		logger: logger.Named("interaction"),
	}
}

// On registers a global listener for kind.
func (d *Dispatcher) On(kind EventKind, handler func(PointerEvent) error) bus.Subscription {
	return d.global.Subscribe(string(kind), func(e bus.Event) error {
		return handler(e.Data().(PointerEvent))
	})
}

func (d *Dispatcher) Hovered() Object {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.hovered
}

// Reset clears the hover state, emitting mouseleave for the hovered object.
func (d *Dispatcher) Reset() error {
	if !d.dispatching.CompareAndSwap(false, true) {
		return ErrReentrantDispatch
	}
	defer d.dispatching.Store(false)

	d.mu.Lock()
	prev := d.hovered
	d.hovered = nil
	d.mu.Unlock()
	if prev == nil {
		return nil
	}
	return d.emit(PointerEvent{Type: MouseLeave, Object: prev})
}

// Dispatch hit-tests in and emits the resulting events.
func (d *Dispatcher) Dispatch(kind EventKind, in Input) error {
	if !kind.Dispatchable() {
		return fmt.Errorf("%w: %q", ErrUnknownEvent, kind)
	}
	if !d.dispatching.CompareAndSwap(false, true) {
		return ErrReentrantDispatch
	}
	defer d.dispatching.Store(false)

	hits := d.Intersect(in)
	var nearest *Hit
	if len(hits) > 0 {
		nearest = &hits[0]
	}

	if kind == MouseMove {
		return d.move(nearest, in)
	}
	if nearest == nil {
		return nil
	}
	return d.emit(PointerEvent{Type: kind, Object: nearest.Object, Point: &nearest.Point, Input: in})
}

// Intersect returns every interactive object under in, nearest first.
func (d *Dispatcher) Intersect(in Input) []Hit {
	if d.source == nil || d.caster == nil {
		return nil
	}
	ray := d.caster.Ray(in.X, in.Y)
	far := d.caster.Far()

	var hits []Hit
	for _, obj := range d.source.InteractiveObjects() {
		if obj == nil {
			continue
		}
		if disp, ok := obj.(Disposable); ok && disp.Disposed() {
			continue
		}
		point, ok := d.safeIntersect(obj, ray)
		if !ok {
			continue
		}
		dist := point.DistanceTo(ray.Origin)
		if far > 0 && dist > far {
			continue
		}
		hits = append(hits, Hit{Object: obj, Point: point, Distance: dist})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	return hits
}

func (d *Dispatcher) move(nearest *Hit, in Input) error {
	d.mu.Lock()
	prev := d.hovered
	if nearest == nil {
		d.hovered = nil
	} else {
		d.hovered = nearest.Object
	}
	d.mu.Unlock()

	var errs error
	if nearest == nil {
		if prev != nil {
			errs = d.emit(PointerEvent{Type: MouseLeave, Object: prev, Input: in})
		}
		return errs
	}

	if prev == nil || prev.ID() != nearest.Object.ID() {
		if prev != nil {
			errs = errors.Join(errs, d.emit(PointerEvent{Type: MouseLeave, Object: prev, Input: in}))
		}
		errs = errors.Join(errs, d.emit(PointerEvent{Type: MouseEnter, Object: nearest.Object, Point: &nearest.Point, Input: in}))
	}
	return errors.Join(errs, d.emit(PointerEvent{Type: MouseMove, Object: nearest.Object, Point: &nearest.Point, Input: in}))
}

// emit delivers ev to the global listeners and, independently, to the
// object's own emitter.
func (d *Dispatcher) emit(ev PointerEvent) error {
	errs := d.global.Emit(string(ev.Type), ev)
	if em, ok := ev.Object.(Emitting); ok {
		if local := em.Emitter(); local != nil {
			errs = errors.Join(errs, local.Emit(string(ev.Type), ev))
		}
	}
	if errs != nil {
		d.logger.Warn("pointer handler failed", log.Event(string(ev.Type)), log.String("object", ev.Object.ID()), log.Error(errs))
	}
	return errs
}

func (d *Dispatcher) safeIntersect(obj Object, ray math32.Ray) (point math32.Vector3, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Warn("hit test failed", log.String("object", fmt.Sprintf("%T", obj)), log.Any("panic", r))
			ok = false
		}
	}()
	return obj.Intersect(ray)
}
