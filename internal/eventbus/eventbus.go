// Package eventbus provides the in-process publish/subscribe bus connecting
// the route service to the metrics collector and the route log.
package eventbus

// Event represents an arbitrary event passed on the bus.
type Event interface{}

// EventBus implements a simple publish/subscribe event bus.
type EventBus interface {
	Publish(Event)
	Subscribe() <-chan Event
	Unsubscribe(<-chan Event)
	Close()
}

// Bus is the default EventBus implementation using fan-out channels.
type Bus = TypedBus[Event]

// New creates a new Bus.
func New(opts ...Option) *Bus { return NewTyped[Event](opts...) }
