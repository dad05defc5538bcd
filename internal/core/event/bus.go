package event

import (
	"reflect"
)

// Bus collects events emitted during a tick and delivers them, in emission
// order, when Dispatch is called by the output phase. Handlers run on the
// simulation goroutine; events they emit are queued for the next Dispatch.
type Bus struct {
	queue    []any
	handlers map[reflect.Type][]any
}

func NewBus() *Bus {
	return &Bus{
		handlers: make(map[reflect.Type][]any),
	}
}

// Emit queues an event for the next Dispatch.
func Emit[T any](b *Bus, event T) {
	b.queue = append(b.queue, event)
}

// Subscribe registers a typed handler for events of type T.
func Subscribe[T any](b *Bus, fn func(T)) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	b.handlers[t] = append(b.handlers[t], fn)
}

// Pending is the number of queued events.
func (b *Bus) Pending() int { return len(b.queue) }

// Dispatch delivers every queued event to its subscribers and empties the
// queue. It returns the number of events delivered.
func (b *Bus) Dispatch() int {
	events := b.queue
	b.queue = nil
	for _, ev := range events {
		for _, h := range b.handlers[reflect.TypeOf(ev)] {
			callHandler(h, ev)
		}
	}
	return len(events)
}

func callHandler(handler any, event any) {
	reflect.ValueOf(handler).Call([]reflect.Value{reflect.ValueOf(event)})
}
