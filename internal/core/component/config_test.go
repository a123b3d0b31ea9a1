package component

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMergeIsShallow(t *testing.T) {
	defaults := Config{"color": "#fff", "material": map[string]any{"metal": 0.5, "rough": 0.2}}
	got := Merge(defaults, Config{"material": map[string]any{"metal": 1.0}})

	assert.Equal(t, map[string]any{"metal": 1.0}, got["material"])
	assert.Equal(t, "#fff", got["color"])
	assert.Equal(t, map[string]any{"metal": 0.5, "rough": 0.2}, defaults["material"])
}

func TestDeepMergeKeepsNestedDefaults(t *testing.T) {
	defaults := Config{"material": map[string]any{"metal": 0.5, "rough": 0.2}}
	got := DeepMerge(defaults, Config{"material": map[string]any{"metal": 1.0}, "name": "m"})

	assert.Equal(t, Config{"metal": 1.0, "rough": 0.2}, got.Map("material"))
	assert.Equal(t, "m", got.Name())
	assert.Equal(t, 0.5, defaults.Map("material")["metal"])
}

func TestDeepMergeScalarReplacesMap(t *testing.T) {
	got := DeepMerge(Config{"material": map[string]any{"metal": 0.5}}, Config{"material": "flat"})
	assert.Equal(t, "flat", got["material"])
}

func TestConfigAccessors(t *testing.T) {
	c := Config{
		"speed":   "1.5",
		"count":   3.0,
		"visible": "true",
		"period":  "250ms",
		"tags":    []any{"a", "b"},
		"bad":     "x",
	}

	assert.Equal(t, 1.5, c.Float("speed", 0))
	assert.Equal(t, 3, c.Int("count", 0))
	assert.True(t, c.Bool("visible", false))
	assert.Equal(t, 250*time.Millisecond, c.Duration("period", 0))
	assert.Equal(t, []string{"a", "b"}, c.Strings("tags"))

	assert.Equal(t, 7.0, c.Float("bad", 7))
	assert.Equal(t, 9, c.Int("missing", 9))
	assert.Nil(t, c.Map("speed"))
	assert.True(t, c.Has("bad"))
	assert.Empty(t, c.Name())
}
