package outbox

import "context"

// Event is a domain event. EventName routes it to subscribers; Key groups
// events that must stay ordered downstream (the aggregate id).
type Event interface {
	EventName() string
	Key() string
}

// Handler processes a published event.
type Handler func(ctx context.Context, e Event) error

// Publisher hands events to whatever transport sits behind it.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Subscriber registers handlers for event names.
type Subscriber interface {
	Subscribe(eventName string, h Handler)
}
