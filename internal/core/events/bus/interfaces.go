package bus

import "time"

// Event is an immutable message transported by a Hub.
//
// Fields:
// - Type: routing key used to select handlers (required for delivery).
// - Source: identifier of the publisher (free-form).
// - Timestamp: creation time of the event.
// - Data: opaque payload for consumers.
//
// Implementations should treat Event values as read-only.
type Event interface {
	Type() string
	Source() string
	Timestamp() time.Time
	Data() any
}

// EventHandler is a user callback invoked per delivered event. If it returns an
// error, Publish aggregates and returns it.
type EventHandler func(event Event) error

// Subscription represents a registered handler bound to an event type.
// Use Cancel or Hub.Unsubscribe to stop receiving events.
type Subscription interface {
	// ID is a unique identifier for this subscription.
	ID() string
	// EventType returns the event type this subscription listens to.
	EventType() string
	// IsActive reports whether this subscription is still registered.
	IsActive() bool
	// Cancel de-registers the handler from the hub. Multiple calls are safe.
	Cancel()
}

// Emitter is the publish/subscribe surface shared by component instances,
// the resource manager and the interaction dispatcher.
//
// Delivery is synchronous, in the publisher goroutine, and in subscription
// order. Handlers subscribed during a delivery receive events from the next
// Publish on; a cancelled handler stops receiving immediately.
type Emitter interface {
	Publish(event Event) error
	Emit(eventType string, data any) error
	Subscribe(eventType string, handler EventHandler) Subscription
	Once(eventType string, handler EventHandler) Subscription
	Unsubscribe(Subscription)
	Clear()
	Listeners(eventType string) int
}

// Metrics is a snapshot of hub counters.
type Metrics struct {
	Published         uint64
	DeliveredHandlers uint64
	Errors            uint64
	SubscribersActive uint64
}
