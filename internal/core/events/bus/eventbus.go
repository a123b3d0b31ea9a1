package bus

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

var _ Emitter = (*Hub)(nil)

// simpleEvent is a basic implementation of Event.
type simpleEvent struct {
	typeStr string
	source  string
	ts      time.Time
	data    any
}

func (e simpleEvent) Type() string         { return e.typeStr }
func (e simpleEvent) Source() string       { return e.source }
func (e simpleEvent) Timestamp() time.Time { return e.ts }
func (e simpleEvent) Data() any            { return e.data }

// NewEvent creates a simple Event implementation.
func NewEvent(typ, src string, data any) Event {
	return simpleEvent{typeStr: typ, source: src, ts: time.Now(), data: data}
}

type subscription struct {
	id        string
	eventType string
	handler   EventHandler
	once      bool
	active    atomic.Bool
	hub       *Hub
}

func (s *subscription) ID() string        { return s.id }
func (s *subscription) EventType() string { return s.eventType }
func (s *subscription) IsActive() bool    { return s.active.Load() }
func (s *subscription) Cancel() {
	if !s.active.Swap(false) {
		return
	}
	s.hub.remove(s)
}

// Hub is a goroutine-safe, ordered in-process event emitter.
type Hub struct {
	mu       sync.RWMutex
	source   string
	handlers map[string][]*subscription

	published atomic.Uint64
	delivered atomic.Uint64
	errs      atomic.Uint64
}

// New creates a hub whose events carry the given source name.
func New(source string) *Hub {
	return &Hub{
		source:   source,
		handlers: make(map[string][]*subscription),
	}
}

// Publish delivers event to the current listeners of its type in
// subscription order and joins their errors.
func (b *Hub) Publish(event Event) error {
	b.mu.RLock()
	subs := append([]*subscription(nil), b.handlers[event.Type()]...)
	b.mu.RUnlock()

	b.published.Add(1)

	var all error
	for _, s := range subs {
		if s.once {
			if !s.active.Swap(false) {
				continue
			}
			b.remove(s)
		} else if !s.active.Load() {
			continue
		}
		b.delivered.Add(1)
		if err := s.handler(event); err != nil {
			all = errors.Join(all, err)
		}
	}
	if all != nil {
		b.errs.Add(1)
	}
	return all
}

// Emit wraps data into an Event sourced from this hub and publishes it.
func (b *Hub) Emit(eventType string, data any) error {
	return b.Publish(NewEvent(eventType, b.source, data))
}

// Subscribe adds handler after the existing listeners of eventType.
func (b *Hub) Subscribe(eventType string, handler EventHandler) Subscription {
	return b.add(eventType, handler, false)
}

// Once registers a handler that is removed after its first delivery.
func (b *Hub) Once(eventType string, handler EventHandler) Subscription {
	return b.add(eventType, handler, true)
}

func (b *Hub) Unsubscribe(sub Subscription) {
	if sub == nil {
		return
	}
	sub.Cancel()
}

// Clear cancels every subscription on the hub.
func (b *Hub) Clear() {
	b.mu.Lock()
	old := b.handlers
	b.handlers = make(map[string][]*subscription)
	b.mu.Unlock()

	for _, subs := range old {
		for _, s := range subs {
			s.active.Store(false)
		}
	}
}

func (b *Hub) Listeners(eventType string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[eventType])
}

func (b *Hub) GetMetrics() Metrics {
	b.mu.RLock()
	var active uint64
	for _, subs := range b.handlers {
		active += uint64(len(subs))
	}
	b.mu.RUnlock()
	return Metrics{
		Published:         b.published.Load(),
		DeliveredHandlers: b.delivered.Load(),
		Errors:            b.errs.Load(),
		SubscribersActive: active,
	}
}

func (b *Hub) add(eventType string, handler EventHandler, once bool) Subscription {
	s := &subscription{
		id:        uuid.NewString(),
		eventType: eventType,
		handler:   handler,
		once:      once,
		hub:       b,
	}
	s.active.Store(true)

	b.mu.Lock()
	b.handlers[eventType] = append(b.handlers[eventType], s)
	b.mu.Unlock()
	return s
}

func (b *Hub) remove(s *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.handlers[s.eventType]
	for i := range subs {
		if subs[i] == s {
			b.handlers[s.eventType] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(b.handlers[s.eventType]) == 0 {
		delete(b.handlers, s.eventType)
	}
}
