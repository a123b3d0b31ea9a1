package resource

import (
	"context"
	"time"
)

// Kind classifies a resource. It is informational only; the loader decides
// how bytes become a value.
type Kind string

const (
	KindBinary  Kind = "binary"
	KindText    Kind = "text"
	KindYAML    Kind = "yaml"
	KindJSON    Kind = "json"
	KindTexture Kind = "texture"
	KindModel   Kind = "model"
)

// Resource is a loaded value plus the accounting the cache needs.
type Resource struct {
	Key      string
	Kind     Kind
	Value    any
	Size     int64
	Checksum uint64
	LoadedAt time.Time
}

// ProgressFunc receives a completion fraction in [0, 1].
type ProgressFunc func(fraction float64)

// Loader performs the physical load of key. Implementations should report
// progress when they can and must honour ctx cancellation.
type Loader func(ctx context.Context, key string, progress ProgressFunc) (Resource, error)

// Request is one entry of a batch load.
type Request struct {
	Key    string
	Kind   Kind
	Loader Loader
}

const (
	EventLoadStart    = "loadStart"
	EventLoadProgress = "loadProgress"
	EventLoadComplete = "loadComplete"
	EventLoadError    = "loadError"
)

// LoadEvent is the payload of every resource lifecycle event.
type LoadEvent struct {
	Key      string
	Kind     Kind
	Progress float64
	Resource *Resource
	Err      error
	Stats    Stats
}

type Stats struct {
	Total    uint64 `json:"total"`
	Loaded   uint64 `json:"loaded"`
	Failed   uint64 `json:"failed"`
	InFlight int64  `json:"in_flight"`
	// Deduplicated counts callers served by another caller's in-flight load.
	Deduplicated uint64 `json:"deduplicated"`
	// Progress is Loaded/Total, zero before the first load.
	Progress float64 `json:"progress"`
}

type Config struct {
	// Concurrency bounds LoadAll; zero or less means unbounded.
	Concurrency int `yaml:"concurrency"`
}

func DefaultConfig() Config {
	return Config{Concurrency: 4}
}
