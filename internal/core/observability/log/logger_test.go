package log

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelError, ParseLevel(" error "))
	assert.Equal(t, LevelSilent, ParseLevel("off"))
	assert.Equal(t, LevelInfo, ParseLevel("bogus"))
}

func TestToZapFieldsNilError(t *testing.T) {
	fields := toZapFields(Error(nil), Error(errors.New("boom")), Component("Box"))
	assert.Len(t, fields, 3)
	assert.Equal(t, "error", fields[1].Key)
	assert.Equal(t, "component", fields[2].Key)
}

func TestNopLoggerDoesNotPanic(t *testing.T) {
	l := Nop()
	l.Info("hello", Int("n", 1))
	l.With(Instance("b1")).Named("registry").Warn("warned", Error(errors.New("x")))
	assert.NoError(t, l.Sync())
}

func TestLevelRoundTrip(t *testing.T) {
	l, err := New(Config{Level: "warn", OutputPaths: []string{"stderr"}})
	require.NoError(t, err)
	assert.Equal(t, LevelWarn, l.GetLevel())
	l.SetLevel(LevelDebug)
	assert.Equal(t, LevelDebug, l.GetLevel())
	assert.NotNil(t, Provide())
}

func TestNewReportsUnopenableSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "dir", "scene.log")
	l, err := New(Config{Level: "info", OutputPaths: []string{path}})
	require.Error(t, err)
	assert.Nil(t, l)
	assert.Contains(t, err.Error(), "build logger")
}
