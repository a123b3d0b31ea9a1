package interaction

import (
	"errors"
	"fmt"
	"testing"

	"cogentcore.org/core/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/zeuscene/internal/core/camera"
)

// camera at z=10 looking at the origin, square viewport
func testCamera() *camera.Perspective {
	cfg := camera.DefaultConfig()
	cfg.Aspect = 1
	return camera.NewPerspective(cfg)
}

// pointerOver returns the input whose ray crosses (x, y, 0).
func pointerOver(x, y float32) Input {
	h := math32.Tan(math32.DegToRad(45) / 2)
	return Input{X: x / (10 * h), Y: y / (10 * h)}
}

type recorder struct {
	events []string
}

func (r *recorder) hook(d *Dispatcher, kinds ...EventKind) {
	for _, k := range kinds {
		d.On(k, func(ev PointerEvent) error {
			r.events = append(r.events, fmt.Sprintf("%s:%s", ev.Type, ev.Object.ID()))
			return nil
		})
	}
}

var allKinds = []EventKind{Click, DblClick, MouseDown, MouseUp, MouseMove, MouseEnter, MouseLeave}

func newScene(objs ...Object) *Dispatcher {
	return NewDispatcher(SourceFunc(func() []Object { return objs }), testCamera(), nil)
}

func TestMoveBetweenObjectsEmitsLeaveBeforeEnter(t *testing.T) {
	a := NewCubeObject("A", math32.Vec3(-3, 0, 0), 2)
	b := NewCubeObject("B", math32.Vec3(3, 0, 0), 2)
	d := newScene(a, b)
	rec := &recorder{}
	rec.hook(d, allKinds...)

	require.NoError(t, d.Dispatch(MouseMove, pointerOver(-3, 0)))
	require.NoError(t, d.Dispatch(MouseMove, pointerOver(-3, 0.2)))
	require.NoError(t, d.Dispatch(MouseMove, pointerOver(3, 0)))

	assert.Equal(t, []string{
		"mouseenter:A", "mousemove:A",
		"mousemove:A",
		"mouseleave:A", "mouseenter:B", "mousemove:B",
	}, rec.events)
	assert.Equal(t, "B", d.Hovered().ID())
}

func TestMoveOffObjectClearsHover(t *testing.T) {
	a := NewCubeObject("A", math32.Vec3(0, 0, 0), 2)
	d := newScene(a)
	rec := &recorder{}
	rec.hook(d, allKinds...)

	require.NoError(t, d.Dispatch(MouseMove, pointerOver(0, 0)))
	require.NoError(t, d.Dispatch(MouseMove, pointerOver(5, 5)))
	require.NoError(t, d.Dispatch(MouseMove, pointerOver(6, 6)))

	assert.Equal(t, []string{"mouseenter:A", "mousemove:A", "mouseleave:A"}, rec.events)
	assert.Nil(t, d.Hovered())
}

func TestClickMissEmitsNothing(t *testing.T) {
	d := newScene(NewCubeObject("A", math32.Vec3(0, 0, 0), 2))
	rec := &recorder{}
	rec.hook(d, allKinds...)

	for _, k := range []EventKind{Click, DblClick, MouseDown, MouseUp} {
		require.NoError(t, d.Dispatch(k, pointerOver(4, 4)))
	}
	assert.Empty(t, rec.events)
}

func TestClickHitsNearestAndCarriesPoint(t *testing.T) {
	front := NewCubeObject("front", math32.Vec3(0, 0, 0), 2)
	back := NewCubeObject("back", math32.Vec3(0, 0, -5), 2)
	d := newScene(back, front)

	var got PointerEvent
	d.On(Click, func(ev PointerEvent) error { got = ev; return nil })

	in := pointerOver(0, 0)
	in.Button = 1
	require.NoError(t, d.Dispatch(Click, in))

	require.NotNil(t, got.Object)
	assert.Equal(t, "front", got.Object.ID())
	require.NotNil(t, got.Point)
	assert.InDelta(t, 1, got.Point.Z, 1e-3)
	assert.Equal(t, 1, got.Input.Button)

	hits := d.Intersect(in)
	require.Len(t, hits, 2)
	assert.Less(t, hits[0].Distance, hits[1].Distance)
}

func TestBothChannelsFire(t *testing.T) {
	a := NewCubeObject("A", math32.Vec3(0, 0, 0), 2)
	d := newScene(a)

	var global, local []EventKind
	d.On(MouseDown, func(ev PointerEvent) error { global = append(global, ev.Type); return nil })
	a.On(MouseDown, func(ev PointerEvent) error { local = append(local, ev.Type); return nil })
	a.On(MouseEnter, func(ev PointerEvent) error { local = append(local, ev.Type); return nil })

	require.NoError(t, d.Dispatch(MouseDown, pointerOver(0, 0)))
	require.NoError(t, d.Dispatch(MouseMove, pointerOver(0, 0)))

	assert.Equal(t, []EventKind{MouseDown}, global)
	assert.Equal(t, []EventKind{MouseDown, MouseEnter}, local)
}

type brokenObject struct{}

func (brokenObject) ID() string { return "broken" }
func (brokenObject) Intersect(math32.Ray) (math32.Vector3, bool) {
	panic("geometry released")
}

func TestBrokenAndDisposedObjectsAreSkipped(t *testing.T) {
	gone := NewCubeObject("gone", math32.Vec3(0, 0, 0), 2)
	gone.Dispose()
	ok := NewCubeObject("ok", math32.Vec3(0, 0, -4), 2)
	d := newScene(brokenObject{}, gone, nil, ok)

	var clicked []string
	d.On(Click, func(ev PointerEvent) error { clicked = append(clicked, ev.Object.ID()); return nil })

	require.NoError(t, d.Dispatch(Click, pointerOver(0, 0)))
	assert.Equal(t, []string{"ok"}, clicked)
}

func TestReentrantDispatchIsRejected(t *testing.T) {
	d := newScene(NewCubeObject("A", math32.Vec3(0, 0, 0), 2))
	var inner error
	d.On(Click, func(PointerEvent) error {
		inner = d.Dispatch(Click, pointerOver(0, 0))
		return nil
	})
	require.NoError(t, d.Dispatch(Click, pointerOver(0, 0)))
	assert.ErrorIs(t, inner, ErrReentrantDispatch)
}

func TestHandlerErrorsAreReturned(t *testing.T) {
	d := newScene(NewCubeObject("A", math32.Vec3(0, 0, 0), 2))
	boom := errors.New("boom")
	d.On(Click, func(PointerEvent) error { return boom })
	assert.ErrorIs(t, d.Dispatch(Click, pointerOver(0, 0)), boom)
}

func TestUnknownKindAndReset(t *testing.T) {
	a := NewCubeObject("A", math32.Vec3(0, 0, 0), 2)
	d := newScene(a)
	assert.ErrorIs(t, d.Dispatch(MouseEnter, Input{}), ErrUnknownEvent)

	rec := &recorder{}
	rec.hook(d, MouseLeave)
	require.NoError(t, d.Dispatch(MouseMove, pointerOver(0, 0)))
	require.NoError(t, d.Reset())
	require.NoError(t, d.Reset())
	assert.Equal(t, []string{"mouseleave:A"}, rec.events)
	assert.Nil(t, d.Hovered())
}

func TestFarPlaneLimitsPicking(t *testing.T) {
	cfg := camera.DefaultConfig()
	cfg.Aspect = 1
	cfg.Far = 5
	d := NewDispatcher(SourceFunc(func() []Object {
		return []Object{NewCubeObject("A", math32.Vec3(0, 0, 0), 2)}
	}), camera.NewPerspective(cfg), nil)
	assert.Empty(t, d.Intersect(pointerOver(0, 0)))
}

func TestPointerAt(t *testing.T) {
	in := PointerAt(400, 300, 800, 600)
	assert.InDelta(t, 0, in.X, 1e-6)
	assert.InDelta(t, 0, in.Y, 1e-6)
}
