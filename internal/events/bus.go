// Package events fans strip state changes out to SSE subscribers.
package events

import (
	"sync"

	"github.com/micro-nova/ws281x-go/internal/models"
)

const subBufferSize = 8

// Event kinds.
const (
	KindState  = "state"  // configuration or brightness changed
	KindFrame  = "frame"  // a frame was rendered
	KindError  = "error"  // render or wait failed
	KindConfig = "config" // config file reloaded from disk
)

// Event is one notification delivered to subscribers.
type Event struct {
	Seq   uint64       `json:"seq"`
	Kind  string       `json:"kind"`
	State models.State `json:"state"`
}

// Bus is a non-blocking publish-subscribe event bus.
// Subscribers that are slow to consume events have events dropped rather
// than blocking the renderer.
type Bus struct {
	mu      sync.Mutex
	subs    map[<-chan Event]subscriber
	seq     uint64
	dropped uint64
}

type subscriber struct {
	id string
	ch chan Event
}

// NewBus creates a new event bus.
func NewBus() *Bus {
	return &Bus{
		subs: make(map[<-chan Event]subscriber),
	}
}

// Subscribe creates a new subscription labelled id. Subscriptions are
// keyed by their channel, so two callers using the same id do not affect
// each other. Pass the returned channel to Unsubscribe when done.
func (b *Bus) Subscribe(id string) <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan Event, subBufferSize)
	b.subs[ch] = subscriber{id: id, ch: ch}
	return ch
}

// Unsubscribe removes the subscription owning ch and closes it. Unknown or
// already removed channels are ignored.
func (b *Bus) Unsubscribe(ch <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if sub, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(sub.ch)
	}
}

// Publish sends an event of the given kind to all subscribers and returns
// its sequence number. Full subscriber channels drop the event.
func (b *Bus) Publish(kind string, state models.State) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	ev := Event{Seq: b.seq, Kind: kind, State: state}
	for _, sub := range b.subs {
		select {
		case sub.ch <- ev:
		default:
			b.dropped++
		}
	}
	return b.seq
}

// SubscriberCount returns the current number of subscribers.
func (b *Bus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Dropped returns how many deliveries were skipped because a subscriber was full.
func (b *Bus) Dropped() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}
