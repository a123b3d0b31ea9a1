package component

import (
	"time"

	"github.com/spf13/cast"
)

// NameKey is the config key that names an instance in the registry.
const NameKey = "name"

// Config is a component configuration document.
type Config map[string]any

// Merge overlays overrides on defaults one level deep: a key present in
// overrides replaces the default value wholesale, nested maps included.
// Neither input is modified.
func Merge(defaults, overrides Config) Config {
	out := make(Config, len(defaults)+len(overrides))
	for k, v := range defaults {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

// DeepMerge overlays overrides on defaults recursively. When both sides hold
// a map under the same key the maps are merged key by key; any other
// override value replaces the default. Neither input is modified.
func DeepMerge(defaults, overrides Config) Config {
	out := make(Config, len(defaults)+len(overrides))
	for k, v := range defaults {
		if m, ok := asMap(v); ok {
			out[k] = DeepMerge(m, nil)
			continue
		}
		out[k] = v
	}
	for k, v := range overrides {
		om, overrideIsMap := asMap(v)
		dm, defaultIsMap := asMap(out[k])
		if overrideIsMap && defaultIsMap {
			out[k] = DeepMerge(dm, om)
			continue
		}
		out[k] = v
	}
	return out
}

func asMap(v any) (Config, bool) {
	switch m := v.(type) {
	case Config:
		return m, true
	case map[string]any:
		return Config(m), true
	default:
		return nil, false
	}
}

// Clone returns a shallow copy. Nested maps are shared.
func (c Config) Clone() Config {
	return Merge(c, nil)
}

func (c Config) Has(key string) bool {
	_, ok := c[key]
	return ok
}

// Name is the explicit instance name, empty when unset.
func (c Config) Name() string {
	return c.String(NameKey)
}

func (c Config) String(key string) string {
	return cast.ToString(c[key])
}

// Float returns the value under key converted to float64, or def when
// missing or not convertible.
func (c Config) Float(key string, def float64) float64 {
	if v, ok := c[key]; ok {
		if f, err := cast.ToFloat64E(v); err == nil {
			return f
		}
	}
	return def
}

func (c Config) Int(key string, def int) int {
	if v, ok := c[key]; ok {
		if i, err := cast.ToIntE(v); err == nil {
			return i
		}
	}
	return def
}

func (c Config) Bool(key string, def bool) bool {
	if v, ok := c[key]; ok {
		if b, err := cast.ToBoolE(v); err == nil {
			return b
		}
	}
	return def
}

// Duration accepts durations, strings such as "250ms" and integer nanoseconds.
func (c Config) Duration(key string, def time.Duration) time.Duration {
	if v, ok := c[key]; ok {
		if d, err := cast.ToDurationE(v); err == nil {
			return d
		}
	}
	return def
}

// Strings returns nil when key is missing.
func (c Config) Strings(key string) []string {
	return cast.ToStringSlice(c[key])
}

// Map returns the nested document under key, or nil.
func (c Config) Map(key string) Config {
	if m, ok := asMap(c[key]); ok {
		return m
	}
	if m, err := cast.ToStringMapE(c[key]); err == nil && len(m) > 0 {
		return m
	}
	return nil
}
