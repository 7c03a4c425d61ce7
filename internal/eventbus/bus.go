package eventbus

import (
	"context"
	"sync"

	"pkt.systems/gdbx/schema"
	"pkt.systems/pslog"
)

// EventType identifies the event payload.
type EventType string

const (
	// EventStatus carries running/idle status updates.
	EventStatus EventType = "status"
	// EventPanel carries refreshed panel text.
	EventPanel EventType = "panel"
	// EventStack carries refreshed stack views.
	EventStack EventType = "stack"
)

// Event is a tagged update for the rendering context.
type Event struct {
	Type   EventType
	Status schema.StatusEvent
	Panel  schema.PanelEvent
	Stack  schema.StackEvent
}

// Bus fans events out to subscribers. Publishing never blocks; a full
// subscriber drops events.
type Bus struct {
	mu    sync.Mutex
	subs  map[chan Event]struct{}
	log   pslog.Logger
	depth int
}

// New constructs a Bus.
func New(logger pslog.Logger) *Bus {
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	return &Bus{
		subs:  make(map[chan Event]struct{}),
		log:   logger,
		depth: 256,
	}
}

// Subscribe registers a subscriber and returns its channel plus a cancel.
// The cancel must be called exactly once; it closes the channel.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	if b == nil {
		return nil, func() {}
	}
	ch := make(chan Event, b.depth)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	count := len(b.subs)
	b.mu.Unlock()
	if b.log != nil {
		b.log.Debug("eventbus subscribe", "subs", count)
	}
	return ch, func() {
		b.mu.Lock()
		delete(b.subs, ch)
		b.mu.Unlock()
		close(ch)
		if b.log != nil {
			b.log.Debug("eventbus unsubscribe")
		}
	}
}

// OnStatus publishes a status update.
func (b *Bus) OnStatus(event schema.StatusEvent) {
	b.publish(Event{Type: EventStatus, Status: event})
}

// OnPanel publishes refreshed panel text.
func (b *Bus) OnPanel(event schema.PanelEvent) {
	b.publish(Event{Type: EventPanel, Panel: event})
}

// OnStack publishes a refreshed stack view.
func (b *Bus) OnStack(event schema.StackEvent) {
	b.publish(Event{Type: EventStack, Stack: event})
}

func (b *Bus) publish(event Event) {
	if b == nil {
		return
	}
	b.mu.Lock()
	subs := make([]chan Event, 0, len(b.subs))
	for sub := range b.subs {
		subs = append(subs, sub)
	}
	b.mu.Unlock()
	dropped := 0
	for _, sub := range subs {
		select {
		case sub <- event:
		default:
			dropped++
		}
	}
	if dropped > 0 && b.log != nil {
		b.log.Warn("eventbus dropped events", "type", event.Type, "dropped", dropped)
	}
}
