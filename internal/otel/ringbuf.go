package otel

import (
	"maps"
	"sync"
)

// DefaultRingSize is the default ring buffer capacity.
const DefaultRingSize = 512

// RingBuffer keeps the most recent Events in memory for the debug overlay.
// Safe for concurrent use.
type RingBuffer struct {
	mu     sync.Mutex
	events []Event
	next   int
	full   bool
}

// NewRingBuffer creates a ring buffer holding up to size events.
func NewRingBuffer(size int) *RingBuffer {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &RingBuffer{events: make([]Event, size)}
}

// Push appends e, evicting the oldest event once the buffer is full.
// Extra is cloned so callers may reuse their map.
func (r *RingBuffer) Push(e Event) {
	e.Extra = maps.Clone(e.Extra)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[r.next] = e
	r.next++
	if r.next == len(r.events) {
		r.next = 0
		r.full = true
	}
}

// Snapshot returns every buffered event, oldest first.
func (r *RingBuffer) Snapshot() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tail(r.lenLocked())
}

// Last returns up to n of the newest events, oldest first.
func (r *RingBuffer) Last(n int) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tail(min(n, r.lenLocked()))
}

// Latest returns the newest event of the given kind.
func (r *RingBuffer) Latest(kind EventKind) (Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	size := len(r.events)
	for i := 1; i <= r.lenLocked(); i++ {
		e := r.events[(r.next-i+size)%size]
		if e.Kind == kind {
			return e, true
		}
	}
	return Event{}, false
}

// tail copies the n newest events. Caller holds r.mu.
func (r *RingBuffer) tail(n int) []Event {
	if n <= 0 {
		return nil
	}
	size := len(r.events)
	out := make([]Event, 0, n)
	for i := n; i > 0; i-- {
		out = append(out, r.events[(r.next-i+size)%size])
	}
	return out
}

func (r *RingBuffer) lenLocked() int {
	if r.full {
		return len(r.events)
	}
	return r.next
}

// Len returns the number of buffered events.
func (r *RingBuffer) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lenLocked()
}

// Cap returns the buffer capacity.
func (r *RingBuffer) Cap() int {
	return len(r.events)
}

// Stats counts buffered events by kind.
func (r *RingBuffer) Stats() map[EventKind]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[EventKind]int)
	for _, e := range r.tail(r.lenLocked()) {
		counts[e.Kind]++
	}
	return counts
}
