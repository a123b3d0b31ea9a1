package scene

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/zeuscene/internal/core/cache"
	"github.com/zeusync/zeuscene/internal/core/camera"
	"github.com/zeusync/zeuscene/internal/core/observability/log"
	"github.com/zeusync/zeuscene/internal/core/resource"
	"github.com/zeusync/zeuscene/internal/core/scheduler"
)

// Config describes a whole scene: module settings plus the component
// instances to add on Populate.
type Config struct {
	Log        log.Config       `yaml:"log"`
	Cache      cache.Config     `yaml:"cache"`
	Resource   resource.Config  `yaml:"resource"`
	Scheduler  scheduler.Config `yaml:"scheduler"`
	Camera     camera.Config    `yaml:"camera"`
	Inspector  InspectorConfig  `yaml:"inspector"`
	Components []ComponentSpec  `yaml:"components"`
}

// InspectorConfig controls the live stats server.
type InspectorConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Interval time.Duration `yaml:"interval"`
	// Token, when set, must be passed as ?token= or a Bearer header.
	Token string `yaml:"token"`
}

// ComponentSpec is one Registry.Add call.
type ComponentSpec struct {
	Component string         `yaml:"component"`
	Name      string         `yaml:"name"`
	Config    map[string]any `yaml:"config"`
}

func DefaultConfig() Config {
	return Config{
		Log:       log.DefaultConfig(),
		Cache:     cache.DefaultConfig(),
		Resource:  resource.DefaultConfig(),
		Scheduler: scheduler.DefaultConfig(),
		Camera:    camera.DefaultConfig(),
		Inspector: InspectorConfig{
			Addr:     ":7070",
			Interval: time.Second,
		},
	}
}

// LoadConfig decodes YAML over DefaultConfig, so omitted sections keep
// their defaults.
func LoadConfig(r io.Reader) (*Config, error) {
	c := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode scene config: %w", err)
	}
	for i, spec := range c.Components {
		if spec.Component == "" {
			return nil, fmt.Errorf("components[%d]: component is required", i)
		}
	}
	return &c, nil
}

// LoadConfigFile reads and validates the scene config at path.
func LoadConfigFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return LoadConfig(f)
}
