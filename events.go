package agentrt

import "sync"

// Event is a lightweight, type-tagged fact published on a Tree's EventBus.
// Leaves and decorators publish events to let external observers (logging,
// metrics, replay tooling) follow tree execution without threading a
// callback through every node constructor.
type Event struct {
	// Topic names the event, e.g. "node.tick", "decorator.timeout".
	Topic string
	// NodeName is the Name of the node that published the event, if any.
	NodeName string
	// Status is the tick Status associated with the event, when relevant.
	Status Status
	// Data carries topic-specific detail; nil when unused.
	Data any
}

// EventHandler receives events published on an EventBus. A handler must
// not block; the bus invokes handlers synchronously on the publishing
// goroutine: wildcard handlers first, then topic handlers, each group in
// subscription order.
type EventHandler func(Event)

// EventBus is a concurrent-safe, synchronous publish/subscribe hub. The
// zero value is ready to use.
type EventBus struct {
	mu   sync.RWMutex
	subs map[string][]EventHandler
	all  []EventHandler
}

// NewEventBus returns a ready-to-use EventBus.
func NewEventBus() *EventBus {
	return &EventBus{subs: make(map[string][]EventHandler)}
}

// Subscribe registers handler for topic. Passing an empty topic subscribes
// to every event regardless of topic. Returns an unsubscribe function.
func (b *EventBus) Subscribe(topic string, handler EventHandler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if topic == "" {
		idx := len(b.all)
		b.all = append(b.all, handler)
		return func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if idx < len(b.all) {
				b.all[idx] = nil
			}
		}
	}
	idx := len(b.subs[topic])
	b.subs[topic] = append(b.subs[topic], handler)
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if list := b.subs[topic]; idx < len(list) {
			list[idx] = nil
		}
	}
}

// Publish delivers evt to every wildcard handler and then to every handler
// subscribed to evt.Topic, each group in subscription order. A publish during a
// publish (re-entrant) is safe: it observes the subscriber list as it
// existed when Publish started iterating, not handlers added mid-call.
func (b *EventBus) Publish(evt Event) {
	b.mu.RLock()
	topicHandlers := append([]EventHandler(nil), b.subs[evt.Topic]...)
	wildcard := append([]EventHandler(nil), b.all...)
	b.mu.RUnlock()

	for _, h := range wildcard {
		if h != nil {
			h(evt)
		}
	}
	for _, h := range topicHandlers {
		if h != nil {
			h(evt)
		}
	}
}
