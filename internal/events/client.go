package events

import (
	"sync"
	"sync/atomic"
)

const clientBufferSize = 16

// Client is a single connected feed subscriber.
type Client struct {
	ID   string
	Ch   chan Event
	Done chan struct{}

	closeOnce  sync.Once
	fullStreak int32
}

// NewClient allocates a subscriber with a buffered event channel.
func NewClient(id string) *Client {
	return &Client{
		ID:   id,
		Ch:   make(chan Event, clientBufferSize),
		Done: make(chan struct{}),
	}
}

// Close signals the subscriber's stream loop to exit. Safe to call repeatedly.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.Done)
	})
}

// MarkDispatchSuccess resets the consecutive-full counter.
func (c *Client) MarkDispatchSuccess() {
	atomic.StoreInt32(&c.fullStreak, 0)
}

// MarkDispatchFull increments and returns the consecutive-full counter.
func (c *Client) MarkDispatchFull() int32 {
	return atomic.AddInt32(&c.fullStreak, 1)
}
