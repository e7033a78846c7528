// Package events provides a typed, in-process publish/subscribe bus that
// connects the page components without them knowing about each other.
package events

import (
	"sync"
)

// Topic names an event stream and fixes its payload type.
type Topic[T any] struct {
	name string
}

// NewTopic declares a topic. Topics with the same name share subscribers,
// so a name must always be declared with the same payload type.
func NewTopic[T any](name string) Topic[T] {
	return Topic[T]{name: name}
}

// Name returns the topic's event name.
func (t Topic[T]) Name() string {
	return t.name
}

type subscription struct {
	id      uint64
	handler any
}

// Bus dispatches events synchronously, in subscription order, on the
// publisher's goroutine.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[string][]subscription
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[string][]subscription)}
}

// Subscribe registers fn for topic and returns a function that removes it.
func Subscribe[T any](b *Bus, topic Topic[T], fn func(T)) (unsubscribe func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[topic.name] = append(b.subs[topic.name], subscription{id: id, handler: fn})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			list := b.subs[topic.name]
			for i, s := range list {
				if s.id == id {
					b.subs[topic.name] = append(list[:i:i], list[i+1:]...)
					break
				}
			}
		})
	}
}

// SubscribeOnce registers fn to run for the next event on topic only.
func SubscribeOnce[T any](b *Bus, topic Topic[T], fn func(T)) (unsubscribe func()) {
	var (
		once  sync.Once
		unsub func()
		ready = make(chan struct{})
	)
	unsub = Subscribe(b, topic, func(payload T) {
		once.Do(func() {
			<-ready
			unsub()
			fn(payload)
		})
	})
	close(ready)
	return unsub
}

// Publish delivers payload to every handler subscribed to topic at the time
// of the call. Handlers may subscribe or unsubscribe while being called.
func Publish[T any](b *Bus, topic Topic[T], payload T) {
	b.mu.RLock()
	list := append([]subscription(nil), b.subs[topic.name]...)
	b.mu.RUnlock()

	for _, s := range list {
		if fn, ok := s.handler.(func(T)); ok {
			fn(payload)
		}
	}
}

// Subscribers returns the number of handlers currently registered for name.
func (b *Bus) Subscribers(name string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[name])
}
