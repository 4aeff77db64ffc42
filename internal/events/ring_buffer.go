package events

import (
	"strconv"
	"sync"
)

const defaultRingBufferSize = 256

// RingBuffer retains the most recent events so reconnecting subscribers can
// replay what they missed via Last-Event-ID.
type RingBuffer struct {
	mu     sync.RWMutex
	events []Event
	size   int
}

// NewRingBuffer allocates a buffer holding up to size events.
func NewRingBuffer(size int) *RingBuffer {
	if size <= 0 {
		size = defaultRingBufferSize
	}
	return &RingBuffer{
		events: make([]Event, 0, size),
		size:   size,
	}
}

// Push appends an event, evicting the oldest when full.
func (b *RingBuffer) Push(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.events) >= b.size {
		copy(b.events, b.events[1:])
		b.events[len(b.events)-1] = event
		return
	}
	b.events = append(b.events, event)
}

// Since returns buffered events with IDs greater than lastID. An empty or
// unparsable lastID yields nothing: the client starts fresh.
func (b *RingBuffer) Since(lastID string) []Event {
	if lastID == "" {
		return nil
	}
	threshold, err := strconv.ParseInt(lastID, 10, 64)
	if err != nil {
		return nil
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	var missed []Event
	for _, event := range b.events {
		id, err := strconv.ParseInt(event.ID, 10, 64)
		if err != nil {
			continue
		}
		if id > threshold {
			missed = append(missed, event)
		}
	}
	return missed
}
