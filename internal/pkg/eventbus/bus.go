package eventbus

import (
	"sync"

	"golang.org/x/exp/slices"
)

type EventBus struct {
	mu          sync.RWMutex
	subscribers map[string]map[int]EventBusEventCallback
	nextID      int
}

type EventBusEventCallback func(data interface{})

// Publish calls the subscribers of name synchronously, in subscription order.
func (bus *EventBus) Publish(name string, data interface{}) {
	bus.mu.RLock()
	subs := bus.subscribers[name]
	ids := make([]int, 0, len(subs))
	for id := range subs {
		ids = append(ids, id)
	}
	callbacks := make([]EventBusEventCallback, 0, len(ids))
	slices.Sort(ids)
	for _, id := range ids {
		callbacks = append(callbacks, subs[id])
	}
	bus.mu.RUnlock()

	for _, v := range callbacks {
		v(data)
	}
}

// Subscribe returns a func that removes the subscription.
func (bus *EventBus) Subscribe(name string, callback EventBusEventCallback) func() {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	if bus.subscribers[name] == nil {
		bus.subscribers[name] = make(map[int]EventBusEventCallback)
	}

	id := bus.nextID
	bus.nextID++
	bus.subscribers[name][id] = callback

	return func() {
		bus.mu.Lock()
		defer bus.mu.Unlock()
		delete(bus.subscribers[name], id)
	}
}

func NewEventBus() *EventBus {
	subscribers := make(map[string]map[int]EventBusEventCallback)
	return &EventBus{
		subscribers: subscribers,
	}
}
