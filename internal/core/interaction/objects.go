package interaction

import (
	"sync"
	"sync/atomic"

	"cogentcore.org/core/math32"

	"github.com/zeusync/zeuscene/internal/core/camera"
	"github.com/zeusync/zeuscene/internal/core/events/bus"
)

var (
	_ Object     = (*BoxObject)(nil)
	_ Emitting   = (*BoxObject)(nil)
	_ Disposable = (*BoxObject)(nil)
)

// BoxObject is an axis-aligned, world-space pickable box with its own emitter.
type BoxObject struct {
	id       string
	mu       sync.RWMutex
	box      math32.Box3
	hub      *bus.Hub
	disposed atomic.Bool

	// Data is free for the owning component.
	Data any
}

// NewBoxObject creates an interactive axis aligned box.
func NewBoxObject(id string, box math32.Box3) *BoxObject {
	return &BoxObject{id: id, box: box, hub: bus.New(id)}
}

// NewCubeObject is a box of the given edge length centred on center.
func NewCubeObject(id string, center math32.Vector3, size float32) *BoxObject {
	half := size / 2
	return NewBoxObject(id, math32.B3(
		center.X-half, center.Y-half, center.Z-half,
		center.X+half, center.Y+half, center.Z+half,
	))
}

func (b *BoxObject) ID() string { return b.id }

func (b *BoxObject) Box() math32.Box3 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.box
}

func (b *BoxObject) SetBox(box math32.Box3) {
	b.mu.Lock()
	b.box = box
	b.mu.Unlock()
}

// Intersect returns the entry point of ray into the box. An empty box
// never intersects.
func (b *BoxObject) Intersect(ray math32.Ray) (math32.Vector3, bool) {
	box := b.Box()
	if box.IsEmpty() {
		return math32.Vector3{}, false
	}
	return ray.IntersectBox(box)
}

func (b *BoxObject) Emitter() bus.Emitter { return b.hub }

// On subscribes to pointer events that hit this object.
func (b *BoxObject) On(kind EventKind, handler func(PointerEvent) error) bus.Subscription {
	return b.hub.Subscribe(string(kind), func(e bus.Event) error {
		return handler(e.Data().(PointerEvent))
	})
}

func (b *BoxObject) Disposed() bool { return b.disposed.Load() }

// Dispose drops the object's listeners and excludes it from hit-testing.
func (b *BoxObject) Dispose() {
	if b.disposed.Swap(true) {
		return
	}
	b.hub.Clear()
}

// PointerAt converts a pixel position in a width x height viewport into an Input.
func PointerAt(px, py, width, height float32) Input {
	x, y := camera.NDC(px, py, width, height)
	return Input{X: x, Y: y}
}
