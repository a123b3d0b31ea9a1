package scheduler

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/zeuscene/internal/core/observability/log"
)

type trace struct {
	mu    sync.Mutex
	steps []string
}

func (t *trace) add(s string) {
	t.mu.Lock()
	t.steps = append(t.steps, s)
	t.mu.Unlock()
}

func (t *trace) all() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.steps...)
}

type animStep struct{ t *trace }

func (a animStep) Update() time.Duration { a.t.add("animations"); return 0 }

type componentStep struct {
	t     *trace
	panic bool
}

func (c componentStep) Update() {
	c.t.add("components")
	if c.panic {
		panic("component blew up")
	}
}

type controlStep struct {
	t      *trace
	deltas *[]time.Duration
}

func (c controlStep) Update(dt time.Duration) bool {
	c.t.add("controls")
	*c.deltas = append(*c.deltas, dt)
	return false
}

type renderStep struct {
	t   *trace
	err error
}

func (r renderStep) Render(Frame) error { r.t.add("render"); return r.err }

func newTestLoop(t *testing.T, tr *trace, deltas *[]time.Duration) (*Loop, *ManualSource) {
	t.Helper()
	src := NewManualSource()
	loop, err := NewLoop(src, Steps{
		Animations: animStep{tr},
		Components: componentStep{t: tr},
		Controls:   controlStep{t: tr, deltas: deltas},
		Renderer:   renderStep{t: tr},
	}, DefaultConfig(), log.Nop())
	require.NoError(t, err)
	return loop, src
}

func TestNewLoopRequiresSource(t *testing.T) {
	_, err := NewLoop(nil, Steps{}, DefaultConfig(), log.Nop())
	assert.ErrorIs(t, err, ErrNoFrameSource)
}

func TestTickOrder(t *testing.T) {
	tr := &trace{}
	var deltas []time.Duration
	loop, src := newTestLoop(t, tr, &deltas)

	loop.Start()
	require.True(t, src.Fire(time.Unix(0, 0)))

	assert.Equal(t, []string{"animations", "components", "controls", "render"}, tr.all())
	assert.EqualValues(t, 1, loop.Frames())
	assert.True(t, src.Pending())
}

func TestFrameDeltaFromTimestamps(t *testing.T) {
	tr := &trace{}
	var deltas []time.Duration
	loop, src := newTestLoop(t, tr, &deltas)

	base := time.Unix(10, 0)
	loop.Start()
	src.Fire(base)
	src.Fire(base.Add(16 * time.Millisecond))
	src.Fire(base.Add(5 * time.Second))

	assert.Equal(t, []time.Duration{0, 16 * time.Millisecond, 100 * time.Millisecond}, deltas)

	last, ok := loop.LastFrame()
	require.True(t, ok)
	assert.EqualValues(t, 3, last.Number)
}

func TestStopCancelsPendingFrame(t *testing.T) {
	tr := &trace{}
	var deltas []time.Duration
	loop, src := newTestLoop(t, tr, &deltas)

	loop.Start()
	src.Fire(time.Unix(0, 0))
	loop.Stop()

	assert.False(t, src.Pending())
	assert.False(t, src.Fire(time.Unix(1, 0)))
	assert.EqualValues(t, 1, loop.Frames())
	assert.False(t, loop.Running())
}

func TestStaleCallbackIgnored(t *testing.T) {
	tr := &trace{}
	src := &recordingSource{}
	loop, err := NewLoop(src, Steps{Components: componentStep{t: tr}}, DefaultConfig(), log.Nop())
	require.NoError(t, err)

	loop.Start()
	stale := src.last()
	loop.Stop()
	loop.Start()

	stale(time.Unix(0, 0))
	assert.Empty(t, tr.all())

	src.last()(time.Unix(0, 0))
	assert.Equal(t, []string{"components"}, tr.all())
}

func TestStartTwiceIsNoop(t *testing.T) {
	src := &recordingSource{}
	loop, err := NewLoop(src, Steps{}, DefaultConfig(), log.Nop())
	require.NoError(t, err)

	loop.Start()
	loop.Start()
	assert.Equal(t, 1, src.count())
}

func TestRenderErrorKeepsLooping(t *testing.T) {
	tr := &trace{}
	src := NewManualSource()
	loop, err := NewLoop(src, Steps{Renderer: renderStep{t: tr, err: errors.New("device lost")}}, DefaultConfig(), log.Nop())
	require.NoError(t, err)

	loop.Start()
	src.Fire(time.Unix(0, 0))
	assert.True(t, loop.Running())
	assert.True(t, src.Pending())
}

func TestPanickingFrameStopsLoop(t *testing.T) {
	tr := &trace{}
	src := NewManualSource()
	loop, err := NewLoop(src, Steps{Components: componentStep{t: tr, panic: true}}, DefaultConfig(), log.Nop())
	require.NoError(t, err)

	loop.Start()
	assert.NotPanics(t, func() { src.Fire(time.Unix(0, 0)) })
	assert.False(t, loop.Running())
	assert.False(t, src.Pending())
}

func TestTickerSourceDrivesLoop(t *testing.T) {
	tr := &trace{}
	src := NewTickerSource(200)
	assert.Equal(t, 5*time.Millisecond, src.Interval())

	loop, err := NewLoop(src, Steps{Components: componentStep{t: tr}}, DefaultConfig(), log.Nop())
	require.NoError(t, err)

	loop.Start()
	require.Eventually(t, func() bool { return loop.Frames() >= 3 }, time.Second, time.Millisecond)
	loop.Stop()

	stopped := loop.Frames()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, loop.Frames())
}

type blockingStep struct {
	entered chan struct{}
	release chan struct{}
	done    atomic.Bool
}

func (b *blockingStep) Update() {
	close(b.entered)
	<-b.release
	b.done.Store(true)
}

func TestStopWaitsForRunningFrame(t *testing.T) {
	step := &blockingStep{entered: make(chan struct{}), release: make(chan struct{})}
	src := NewManualSource()
	loop, err := NewLoop(src, Steps{Components: step}, DefaultConfig(), log.Nop())
	require.NoError(t, err)

	loop.Start()
	go src.Fire(time.Unix(0, 0))
	select {
	case <-step.entered:
	case <-time.After(time.Second):
		t.Fatal("frame did not start")
	}

	stopped := make(chan struct{})
	go func() {
		loop.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while a frame was running")
	case <-time.After(50 * time.Millisecond):
	}

	close(step.release)
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return after the frame finished")
	}
	assert.True(t, step.done.Load())
	assert.False(t, src.Pending())
}

type recordingSource struct {
	mu  sync.Mutex
	cbs []func(time.Time)
}

func (s *recordingSource) RequestFrame(cb func(time.Time)) func() {
	s.mu.Lock()
	s.cbs = append(s.cbs, cb)
	s.mu.Unlock()
	return func() {}
}

func (s *recordingSource) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cbs)
}

func (s *recordingSource) last() func(time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cbs[len(s.cbs)-1]
}
