// Package preview serves the generated artifacts over HTTP for local
// inspection: screen schemas, routes, menu, merge history, and a WebSocket
// feed of regeneration events.
package preview

import (
	"log"
	"sync"
	"time"
)

// Event is one regeneration notice streamed to watch subscribers.
type Event struct {
	Type            string    `json:"type"`
	DocumentVersion string    `json:"documentVersion"`
	Operations      []string  `json:"operations"`
	Decisions       int       `json:"decisions"`
	At              time.Time `json:"at"`
}

// EventRegenerated is published after every completed generation pass.
const EventRegenerated = "regenerated"

// Bus fans regeneration events out to subscriber channels. Publish never
// blocks — a subscriber that cannot keep up loses events.
type Bus struct {
	mu   sync.Mutex
	next int
	subs map[int]chan Event
}

// NewBus creates an empty Bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Event)}
}

// Subscribe registers a new subscriber. The returned cancel func must be
// called when the subscriber is done.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	ch := make(chan Event, 16)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if ch, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}

// Publish delivers evt to every subscriber, dropping for slow ones.
func (b *Bus) Publish(evt Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subs {
		select {
		case ch <- evt:
		default:
			log.Printf("preview: subscriber %d slow, dropping event", id)
		}
	}
}
