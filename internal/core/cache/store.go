// Package cache implements a byte-budgeted least-recently-used store.
package cache

import (
	"container/list"
	"sync"
	"time"

	"github.com/zeusync/zeuscene/internal/core/clock"
	"github.com/zeusync/zeuscene/internal/core/observability/log"
)

// Entry is a snapshot of one cached item.
type Entry struct {
	Key        string
	Value      any
	Size       int64
	LastAccess time.Time
}

// Stats is a point-in-time view of a Store.
type Stats struct {
	Count       int     `json:"count"`
	Size        int64   `json:"size"`
	MaxSize     int64   `json:"max_size"`
	Utilization float64 `json:"utilization"`
	Hits        uint64  `json:"hits"`
	Misses      uint64  `json:"misses"`
	Evictions   uint64  `json:"evictions"`
}

// Option configures a Store.
type Option func(*Store)

// WithOnEvict registers a callback fired (outside the lock) for every
// entry removed by the eviction policy.
func WithOnEvict(fn func(Entry)) Option {
	return func(s *Store) { s.onEvict = fn }
}

func WithTimeSource(src clock.TimeSource) Option {
	return func(s *Store) { s.now = src }
}

func WithLogger(l log.Log) Option {
	return func(s *Store) { s.logger = l }
}

// Store is safe for concurrent use. The front of the list is the most
// recently used entry.
type Store struct {
	mu          sync.Mutex
	items       map[string]*list.Element
	order       *list.List
	currentSize int64
	maxSize     int64
	policy      EvictionPolicy

	hits      uint64
	misses    uint64
	evictions uint64

	now     clock.TimeSource
	onEvict func(Entry)
	logger  log.Log
}

// New creates an empty store bounded by cfg.MaxSize bytes.
func New(cfg Config, opts ...Option) *Store {
	s := &Store{
		items:   make(map[string]*list.Element),
		order:   list.New(),
		maxSize: cfg.MaxSize,
		policy:  ParsePolicy(cfg.Policy),
		now:     clock.System{},
		logger:  log.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Set inserts or overwrites key. When the insertion would exceed the budget
// least recently used entries are evicted according to the policy.
func (s *Store) Set(key string, value any, size int64) error {
	if size < 0 {
		return ErrInvalidSize
	}
	if s.maxSize > 0 && size > s.maxSize && s.policy == EvictUntilFit {
		return ErrEntryTooLarge
	}

	s.mu.Lock()
	if el, ok := s.items[key]; ok {
		s.removeElement(el)
	}

	var evicted []Entry
	if s.maxSize > 0 {
		switch s.policy {
		case EvictOne:
			if s.currentSize+size > s.maxSize {
				if e, ok := s.evictOldest(); ok {
					evicted = append(evicted, e)
				}
			}
		default:
			for s.currentSize+size > s.maxSize {
				e, ok := s.evictOldest()
				if !ok {
					break
				}
				evicted = append(evicted, e)
			}
		}
	}

	s.items[key] = s.order.PushFront(&Entry{
		Key:        key,
		Value:      value,
		Size:       size,
		LastAccess: s.now.Now(),
	})
	s.currentSize += size
	s.mu.Unlock()

	for _, e := range evicted {
		s.logger.Debug("cache entry evicted", log.Key(e.Key), log.Int64("size", e.Size))
		if s.onEvict != nil {
			s.onEvict(e)
		}
	}
	return nil
}

// Get returns the value and marks the entry as most recently used.
func (s *Store) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	el, ok := s.items[key]
	if !ok {
		s.misses++
		return nil, false
	}
	s.hits++
	entry := el.Value.(*Entry)
	entry.LastAccess = s.now.Now()
	s.order.MoveToFront(el)
	return entry.Value, true
}

// Has reports presence without touching recency.
func (s *Store) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.items[key]
	return ok
}

// Delete reports whether key was present.
func (s *Store) Delete(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	el, ok := s.items[key]
	if !ok {
		return false
	}
	s.removeElement(el)
	return true
}

func (s *Store) Clear() {
	s.mu.Lock()
	s.items = make(map[string]*list.Element)
	s.order.Init()
	s.currentSize = 0
	s.mu.Unlock()
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Size is the sum of the sizes of all entries.
func (s *Store) Size() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentSize
}

// Keys lists keys from most to least recently used.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.items))
	for el := s.order.Front(); el != nil; el = el.Next() {
		keys = append(keys, el.Value.(*Entry).Key)
	}
	return keys
}

func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Stats{
		Count:     len(s.items),
		Size:      s.currentSize,
		MaxSize:   s.maxSize,
		Hits:      s.hits,
		Misses:    s.misses,
		Evictions: s.evictions,
	}
	if s.maxSize > 0 {
		st.Utilization = float64(s.currentSize) / float64(s.maxSize)
	}
	return st
}

func (s *Store) evictOldest() (Entry, bool) {
	el := s.order.Back()
	if el == nil {
		return Entry{}, false
	}
	e := *el.Value.(*Entry)
	s.removeElement(el)
	s.evictions++
	return e, true
}

func (s *Store) removeElement(el *list.Element) {
	entry := s.order.Remove(el).(*Entry)
	delete(s.items, entry.Key)
	s.currentSize -= entry.Size
}
