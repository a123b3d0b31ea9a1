package scene

import (
	"sync/atomic"

	"github.com/zeusync/zeuscene/internal/core/scheduler"
)

// CountingRenderer stands in for a GPU backend: it records how many frames
// were rendered and how many stage nodes each one saw.
type CountingRenderer struct {
	stage   *Stage
	frames  atomic.Uint64
	visible atomic.Int64
	last    atomic.Pointer[scheduler.Frame]
}

func NewCountingRenderer(stage *Stage) *CountingRenderer {
	return &CountingRenderer{stage: stage}
}

// Render records the frame and the number of staged instances.
func (r *CountingRenderer) Render(frame scheduler.Frame) error {
	r.frames.Add(1)
	if r.stage != nil {
		r.visible.Store(int64(r.stage.Len()))
	}
	r.last.Store(&frame)
	return nil
}

func (r *CountingRenderer) Frames() uint64 { return r.frames.Load() }

// Visible is the stage size at the last render.
func (r *CountingRenderer) Visible() int { return int(r.visible.Load()) }

func (r *CountingRenderer) Last() (scheduler.Frame, bool) {
	f := r.last.Load()
	if f == nil {
		return scheduler.Frame{}, false
	}
	return *f, true
}

// RenderFunc adapts a function to scheduler.Renderer.
type RenderFunc func(frame scheduler.Frame) error

func (f RenderFunc) Render(frame scheduler.Frame) error { return f(frame) }
