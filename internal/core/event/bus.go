package event

import (
	"github.com/evogame/evolution/internal/core/id"
)

// Event is a game-level notification: a player death, a finished level.
// Entity events stay on the entity; these go to the states.
type Event struct {
	Type    id.ID
	Sender  any
	Payload any
}

// Handler receives dispatched events.
type Handler func(Event)

// Bus is a double-buffered event bus. Events emitted during a frame are
// delivered at the next DispatchAll, after SwapBuffers has rotated them to
// the front. A handler that emits lands in the following frame.
type Bus struct {
	front    []Event
	back     []Event
	handlers map[id.ID][]Handler
	all      []Handler
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[id.ID][]Handler)}
}

// Emit queues an event into the back buffer.
func (b *Bus) Emit(ev Event) {
	b.back = append(b.back, ev)
}

// Subscribe registers a handler for one event type.
func (b *Bus) Subscribe(t id.ID, fn Handler) {
	b.handlers[t] = append(b.handlers[t], fn)
}

// SubscribeAll registers a handler for every event type.
func (b *Bus) SubscribeAll(fn Handler) {
	b.all = append(b.all, fn)
}

// SwapBuffers rotates back→front and clears the new back buffer.
func (b *Bus) SwapBuffers() {
	b.front, b.back = b.back, b.front[:0]
}

// DispatchAll delivers front-buffer events in emission order.
func (b *Bus) DispatchAll() {
	for _, ev := range b.front {
		for _, h := range b.handlers[ev.Type] {
			h(ev)
		}
		for _, h := range b.all {
			h(ev)
		}
	}
	clear(b.front)
	b.front = b.front[:0]
}

// Pending is the number of events waiting for the next swap.
func (b *Bus) Pending() int { return len(b.back) }
