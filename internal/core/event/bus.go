package event

import (
	"reflect"
	"sync"
)

// Bus is a double-buffered typed event bus. Events emitted during tick N are
// delivered in tick N+1, so a handler never observes state mid-mutation and
// delivery order is independent of system registration order.
//
// Emit and dispatch run on the game loop goroutine. The mutex guards only
// handler registration, which happens from main before the loop starts.
type Bus struct {
	mu       sync.Mutex
	handlers map[reflect.Type][]func(any)

	front []queued
	back  []queued
}

// queued keeps the emission order across event types; a map keyed by type
// would shuffle same-tick events against each other.
type queued struct {
	t  reflect.Type
	ev any
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[reflect.Type][]func(any))}
}

// Emit queues an event for the next dispatch.
func Emit[T any](b *Bus, ev T) {
	b.back = append(b.back, queued{t: typeOf[T](), ev: ev})
}

// Subscribe registers a handler for events of type T. Handlers for the same
// type run in subscription order.
func Subscribe[T any](b *Bus, fn func(T)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := typeOf[T]()
	b.handlers[t] = append(b.handlers[t], func(ev any) { fn(ev.(T)) })
}

// SwapBuffers rotates the back buffer to the front. Called once at tick
// start, before DispatchAll; anything a handler emits lands in the fresh
// back buffer and waits for the next tick.
func (b *Bus) SwapBuffers() {
	b.front, b.back = b.back, b.front[:0]
}

// DispatchAll delivers the front buffer in emission order. Events nobody
// subscribed to are dropped silently.
func (b *Bus) DispatchAll() {
	for _, q := range b.front {
		for _, h := range b.handlers[q.t] {
			h(q.ev)
		}
	}
}

// Pending reports how many events wait for the next swap.
func (b *Bus) Pending() int { return len(b.back) }

func typeOf[T any]() reflect.Type { return reflect.TypeOf((*T)(nil)).Elem() }
