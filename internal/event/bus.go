// Package event provides the in-process publish/subscribe bus and the single
// dispatch loop every room mutation runs on.
package event

import (
	"context"
	"fmt"
	"reflect"
	"sync"
)

type (
	handler      func(ctx context.Context, ev any)
	awaitHandler func(ctx context.Context, ev any) error
)

// Bus routes events to handlers keyed by the event's exact dynamic type.
type Bus struct {
	mu        sync.RWMutex
	immediate map[reflect.Type][]handler
	awaited   map[reflect.Type][]awaitHandler
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{
		immediate: make(map[reflect.Type][]handler),
		awaited:   make(map[reflect.Type][]awaitHandler),
	}
}

// Subscribe registers a fire-and-forget handler for events of type T.
func Subscribe[T any](b *Bus, fn func(ctx context.Context, ev T)) {
	t := reflect.TypeFor[T]()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.immediate[t] = append(b.immediate[t], func(ctx context.Context, ev any) {
		fn(ctx, ev.(T))
	})
}

// SubscribeAwait registers a handler for events of type T that runs after all
// fire-and-forget handlers, in registration order.
func SubscribeAwait[T any](b *Bus, fn func(ctx context.Context, ev T) error) {
	t := reflect.TypeFor[T]()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.awaited[t] = append(b.awaited[t], func(ctx context.Context, ev any) error {
		return fn(ctx, ev.(T))
	})
}

// Publish delivers ev to every handler registered for its type. Fire-and-forget
// handlers run first; awaited handlers follow one at a time and the first
// error stops delivery. Publishing an event nobody listens to is a no-op.
func (b *Bus) Publish(ctx context.Context, ev any) error {
	if ev == nil {
		return nil
	}
	t := reflect.TypeOf(ev)

	b.mu.RLock()
	immediate := b.immediate[t]
	awaited := b.awaited[t]
	b.mu.RUnlock()

	for _, h := range immediate {
		h(ctx, ev)
	}
	for _, h := range awaited {
		if err := h(ctx, ev); err != nil {
			return fmt.Errorf("handle %s: %w", t, err)
		}
	}
	return nil
}

// HasSubscribers reports whether any handler is registered for the type of ev.
func (b *Bus) HasSubscribers(ev any) bool {
	t := reflect.TypeOf(ev)
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.immediate[t])+len(b.awaited[t]) > 0
}
