package animation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/zeuscene/internal/core/clock"
	"github.com/zeusync/zeuscene/internal/core/events/bus"
)

type node struct {
	name   string
	sample time.Duration
	weight float32
}

func sampleClip(name string, d time.Duration) *Clip {
	return &Clip{
		Name:     name,
		Duration: d,
		Apply: func(target any, at time.Duration, weight float32) {
			n := target.(*node)
			n.sample = at
			n.weight = weight
		},
	}
}

func TestMixersShareOneDelta(t *testing.T) {
	src := clock.NewMock(time.Unix(0, 0))
	c := NewCoordinator(src, nil)
	a, b := &node{name: "a"}, &node{name: "b"}

	ma, err := c.CreateMixer(a)
	require.NoError(t, err)
	mb, err := c.CreateMixer(b)
	require.NoError(t, err)

	c.Update() // starts the shared clock
	src.Advance(16 * time.Millisecond)
	delta := c.Update()

	assert.Equal(t, 16*time.Millisecond, delta)
	assert.Equal(t, delta, ma.Time())
	assert.Equal(t, delta, mb.Time())
}

func TestPlayCreatesMixerLazily(t *testing.T) {
	c := NewCoordinator(clock.NewMock(time.Unix(0, 0)), nil)
	n := &node{}
	action, err := c.Play(n, sampleClip("spin", time.Second), WithWeight(0.5), WithTimeScale(2))
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())
	assert.True(t, action.IsRunning())

	c.Advance(100 * time.Millisecond)
	assert.Equal(t, 200*time.Millisecond, n.sample)
	assert.Equal(t, float32(0.5), n.weight)

	again, err := c.Play(n, action.Clip())
	require.NoError(t, err)
	assert.Same(t, action, again)
	assert.Equal(t, 1, c.Len())
}

func TestLoopModes(t *testing.T) {
	c := NewCoordinator(nil, nil)
	repeat, once, pingpong := &node{}, &node{}, &node{}
	_, _ = c.Play(repeat, sampleClip("r", time.Second))
	onceAction, _ := c.Play(once, sampleClip("o", time.Second), WithLoop(LoopOnce))
	_, _ = c.Play(pingpong, sampleClip("p", time.Second), WithLoop(LoopPingPong))

	var finished []*Action
	c.Subscribe(EventFinished, func(e bus.Event) error {
		finished = append(finished, e.Data().(*Action))
		return nil
	})

	c.Advance(1300 * time.Millisecond)

	assert.Equal(t, 300*time.Millisecond, repeat.sample)
	assert.Equal(t, time.Second, once.sample)
	assert.Equal(t, 700*time.Millisecond, pingpong.sample)
	assert.True(t, onceAction.Finished())
	assert.False(t, onceAction.IsRunning())
	require.Len(t, finished, 1)
	assert.Same(t, onceAction, finished[0])

	c.Advance(time.Second)
	assert.Len(t, finished, 1)
}

func TestRecreateDoesNotStopPreviousActions(t *testing.T) {
	c := NewCoordinator(nil, nil)
	n := &node{}
	action, _ := c.Play(n, sampleClip("idle", time.Second))
	_, err := c.CreateMixer(n)
	require.NoError(t, err)
	assert.True(t, action.IsRunning())
	assert.Equal(t, 1, c.Len())
}

func TestRemoveAndDispose(t *testing.T) {
	c := NewCoordinator(nil, nil)
	a, b := &node{}, &node{}
	actA, _ := c.Play(a, sampleClip("x", time.Second))
	actB, _ := c.Play(b, sampleClip("y", time.Second))

	c.Remove(a)
	assert.False(t, actA.IsRunning())
	_, ok := c.Mixer(a)
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())

	c.Dispose()
	assert.False(t, actB.IsRunning())
	assert.Zero(t, c.Len())
}

func TestInvalidTargets(t *testing.T) {
	c := NewCoordinator(nil, nil)
	_, err := c.CreateMixer(nil)
	assert.ErrorIs(t, err, ErrInvalidTarget)
	_, err = c.CreateMixer([]int{1})
	assert.ErrorIs(t, err, ErrInvalidTarget)
	_, err = c.Play(&node{}, nil)
	assert.ErrorIs(t, err, ErrNilClip)
}

func TestActionControlsWhileAdvancing(t *testing.T) {
	c := NewCoordinator(clock.NewMock(time.Unix(0, 0)), nil)
	n := &node{}
	action, err := c.Play(n, &Clip{Name: "idle", Duration: time.Second})
	require.NoError(t, err)
	m, ok := c.Mixer(n)
	require.True(t, ok)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for range 200 {
			c.Advance(time.Millisecond)
		}
	}()

	for range 200 {
		action.Pause()
		action.SetWeight(0.5)
		action.SetTimeScale(2)
		_ = action.IsRunning()
		_ = action.Time()
		action.Resume()
		_ = m.Time()
		_ = m.Actions()
	}
	<-done

	assert.True(t, action.IsRunning())
	assert.Equal(t, float32(0.5), action.Weight())
	assert.Equal(t, 200*time.Millisecond, m.Time())
}
