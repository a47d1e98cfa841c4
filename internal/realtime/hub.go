// Package realtime fans ephemeral events out to connected listeners.
package realtime

import (
	"sync"
	"sync/atomic"
)

// defaultOutbox bounds how many undelivered frames a listener may hold.
const defaultOutbox = 16

// Subscription is one registered listener. Frames arrive on C until the
// subscription is removed, after which C is closed.
type Subscription struct {
	C       <-chan []byte
	ch      chan []byte
	dropped atomic.Uint64
}

// Dropped reports how many frames were discarded because the outbox was full.
func (s *Subscription) Dropped() uint64 {
	return s.dropped.Load()
}

// Hub is a connection registry with at-most-once, non-blocking fan-out.
type Hub struct {
	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	outbox int
}

// NewHub creates an empty hub. outbox <= 0 selects the default size.
func NewHub(outbox int) *Hub {
	if outbox <= 0 {
		outbox = defaultOutbox
	}
	return &Hub{subs: make(map[*Subscription]struct{}), outbox: outbox}
}

// Subscribe registers a new listener.
func (h *Hub) Subscribe() *Subscription {
	ch := make(chan []byte, h.outbox)
	sub := &Subscription{C: ch, ch: ch}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

// Unsubscribe removes the listener and closes its channel. Safe to call twice.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	if _, ok := h.subs[sub]; ok {
		delete(h.subs, sub)
		close(sub.ch)
	}
	h.mu.Unlock()
}

// Publish hands payload to every current listener and returns how many
// accepted it. A listener whose outbox is full misses the frame.
func (h *Hub) Publish(payload []byte) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	delivered := 0
	for sub := range h.subs {
		select {
		case sub.ch <- payload:
			delivered++
		default:
			sub.dropped.Add(1)
		}
	}
	return delivered
}

// Len returns the number of registered listeners.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
