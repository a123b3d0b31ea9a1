// Package resource loads and caches scene resources, de-duplicating
// concurrent requests for the same key.
package resource

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/zeusync/zeuscene/internal/core/cache"
	"github.com/zeusync/zeuscene/internal/core/events/bus"
	"github.com/zeusync/zeuscene/internal/core/observability/log"
)

// Manager is safe for concurrent use.
type Manager struct {
	cache  *cache.Store
	group  singleflight.Group
	hub    *bus.Hub
	config Config
	logger log.Log

	total        atomic.Uint64
	loaded       atomic.Uint64
	failed       atomic.Uint64
	inFlight     atomic.Int64
	deduplicated atomic.Uint64
}

// NewManager creates a manager that caches loaded resources in store.
func NewManager(store *cache.Store, cfg Config, logger log.Log) *Manager {
	if logger == nil {
		logger = log.Nop()
	}
	return &Manager{
		cache:  store,
		hub:    bus.New("resources"),
		config: cfg,
		logger: logger.Named("resources"),
	}
}

// Load returns the resource cached under key, or runs loader once for all
// concurrent callers asking for the same key. The physical load is detached
// from the cancellation of any single caller; ctx only bounds how long this
// caller waits.
func (m *Manager) Load(ctx context.Context, key string, kind Kind, loader Loader) (Resource, error) {
	if key == "" {
		return Resource{}, ErrEmptyKey
	}
	if loader == nil {
		return Resource{}, ErrNilLoader
	}
	if res, ok := m.Get(key); ok {
		return res, nil
	}

	ran := false
	ch := m.group.DoChan(key, func() (any, error) {
		ran = true
		return m.load(context.WithoutCancel(ctx), key, kind, loader)
	})

	select {
	case <-ctx.Done():
		return Resource{}, ctx.Err()
	case r := <-ch:
		if !ran {
			m.deduplicated.Add(1)
		}
		if r.Err != nil {
			return Resource{}, r.Err
		}
		return r.Val.(Resource), nil
	}
}

// LoadAll loads every request with bounded concurrency and returns results
// in request order. The first failure cancels the waits of the rest.
func (m *Manager) LoadAll(ctx context.Context, reqs ...Request) ([]Resource, error) {
	out := make([]Resource, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	if m.config.Concurrency > 0 {
		g.SetLimit(m.config.Concurrency)
	}
	for i, req := range reqs {
		g.Go(func() error {
			res, err := m.Load(gctx, req.Key, req.Kind, req.Loader)
			if err != nil {
				return err
			}
			out[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns a cached resource without loading it.
func (m *Manager) Get(key string) (Resource, bool) {
	v, ok := m.cache.Get(key)
	if !ok {
		return Resource{}, false
	}
	res, ok := v.(Resource)
	return res, ok
}

func (m *Manager) Remove(key string) bool {
	return m.cache.Delete(key)
}

func (m *Manager) Clear() {
	m.cache.Clear()
}

// Stats counts physical loads only. Callers served from the cache or from
// another caller's flight are not added to Total.
func (m *Manager) Stats() Stats {
	st := Stats{
		Total:        m.total.Load(),
		Loaded:       m.loaded.Load(),
		Failed:       m.failed.Load(),
		InFlight:     m.inFlight.Load(),
		Deduplicated: m.deduplicated.Load(),
	}
	if st.Total > 0 {
		st.Progress = float64(st.Loaded) / float64(st.Total)
	}
	return st
}

func (m *Manager) CacheStats() cache.Stats {
	return m.cache.Stats()
}

// Subscribe registers a handler for one of the EventLoad* event types. The
// event data is a LoadEvent.
func (m *Manager) Subscribe(eventType string, handler bus.EventHandler) bus.Subscription {
	return m.hub.Subscribe(eventType, handler)
}

func (m *Manager) Events() bus.Emitter {
	return m.hub
}

func (m *Manager) load(ctx context.Context, key string, kind Kind, loader Loader) (Resource, error) {
	// a flight that finished between the cache check and DoChan already stored it
	if res, ok := m.Get(key); ok {
		return res, nil
	}

	m.total.Add(1)
	m.inFlight.Add(1)
	defer m.inFlight.Add(-1)

	m.emit(EventLoadStart, LoadEvent{Key: key, Kind: kind})
	m.logger.Debug("load started", log.Key(key), log.String("kind", string(kind)))

	res, err := runLoader(ctx, key, loader, func(fraction float64) {
		m.emit(EventLoadProgress, LoadEvent{Key: key, Kind: kind, Progress: clamp01(fraction)})
	})
	if err != nil {
		m.failed.Add(1)
		err = fmt.Errorf("load %q: %w", key, err)
		m.emit(EventLoadError, LoadEvent{Key: key, Kind: kind, Err: err})
		m.logger.Warn("load failed", log.Key(key), log.Error(err))
		return Resource{}, err
	}

	res.Key = key
	if res.Kind == "" {
		res.Kind = kind
	}
	if res.LoadedAt.IsZero() {
		res.LoadedAt = time.Now()
	}
	if cerr := m.cache.Set(key, res, res.Size); cerr != nil {
		// still handed to the caller, just not cached
		m.logger.Warn("resource not cached", log.Key(key), log.Int64("size", res.Size), log.Error(cerr))
	}

	m.loaded.Add(1)
	m.emit(EventLoadComplete, LoadEvent{Key: key, Kind: res.Kind, Progress: 1, Resource: &res})
	m.logger.Debug("load complete", log.Key(key), log.Int64("size", res.Size))
	return res, nil
}

// runLoader turns a loader panic into an error. singleflight re-panics on
// its own goroutine, where no caller could recover it.
func runLoader(ctx context.Context, key string, loader Loader, progress ProgressFunc) (res Resource, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrLoaderPanic, r)
		}
	}()
	return loader(ctx, key, progress)
}

func (m *Manager) emit(eventType string, ev LoadEvent) {
	ev.Stats = m.Stats()
	if err := m.hub.Emit(eventType, ev); err != nil {
		m.logger.Warn("resource event handler failed", log.Event(eventType), log.Key(ev.Key), log.Error(err))
	}
}

func clamp01(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}
