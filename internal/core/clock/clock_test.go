package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDeltaFromStart(t *testing.T) {
	src := NewMock(time.Unix(100, 0))
	c := New(src)
	c.Start()

	src.Advance(16 * time.Millisecond)
	assert.Equal(t, 16*time.Millisecond, c.Delta())

	src.Advance(4 * time.Millisecond)
	assert.Equal(t, 4*time.Millisecond, c.Delta())
	assert.Equal(t, 20*time.Millisecond, c.Elapsed())
}

func TestStoppedClockAutoStarts(t *testing.T) {
	src := NewMock(time.Unix(0, 0))
	c := New(src)
	assert.False(t, c.Running())
	assert.Zero(t, c.Delta())
	assert.True(t, c.Running())

	src.Advance(time.Second)
	assert.Equal(t, time.Second, c.Delta())
}

func TestBackwardsTimeIsClamped(t *testing.T) {
	src := NewMock(time.Unix(10, 0))
	c := New(src)
	c.Start()
	src.Set(time.Unix(5, 0))
	assert.Zero(t, c.Delta())
}
