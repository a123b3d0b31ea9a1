package interaction

import (
	"time"

	"cogentcore.org/core/math32"

	"github.com/zeusync/zeuscene/internal/core/events/bus"
)

type EventKind string

const (
	Click      EventKind = "click"
	DblClick   EventKind = "dblclick"
	MouseDown  EventKind = "mousedown"
	MouseUp    EventKind = "mouseup"
	MouseMove  EventKind = "mousemove"
	MouseEnter EventKind = "mouseenter"
	MouseLeave EventKind = "mouseleave"
)

// Dispatchable reports whether kind is accepted by Dispatcher.Dispatch.
func (k EventKind) Dispatchable() bool {
	switch k {
	case Click, DblClick, MouseDown, MouseUp, MouseMove:
		return true
	default:
		return false
	}
}

// Object is anything that can be hit-tested. IDs must be unique among the
// objects visible to one dispatcher.
type Object interface {
	ID() string
	Intersect(ray math32.Ray) (math32.Vector3, bool)
}

// Emitting objects receive their own copy of every event that hits them.
type Emitting interface {
	Emitter() bus.Emitter
}

// Disposable objects are skipped by hit-testing once disposed.
type Disposable interface {
	Disposed() bool
}

// Source yields the interactive objects contributed by live components.
type Source interface {
	InteractiveObjects() []Object
}

type SourceFunc func() []Object

func (f SourceFunc) InteractiveObjects() []Object { return f() }

// Raycaster builds picking rays from normalized device coordinates.
type Raycaster interface {
	Ray(ndcX, ndcY float32) math32.Ray
	Far() float32
}

// Input is one raw pointer sample in normalized device coordinates.
type Input struct {
	X, Y   float32
	Button int
	Time   time.Time
	Raw    any
}

type Hit struct {
	Object   Object
	Point    math32.Vector3
	Distance float32
}

// PointerEvent is the payload delivered to global listeners and to the hit
// object's emitter. Point is nil for mouseleave.
type PointerEvent struct {
	Type   EventKind
	Object Object
	Point  *math32.Vector3
	Input  Input
}
