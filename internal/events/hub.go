package events

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	heartbeatInterval     = 30 * time.Second
	backpressureFullLimit = 5
)

// Hub fans notice change events out to connected feed subscribers. Any
// insert, update or delete in the notice collection is broadcast to every
// subscriber; the payload carries only the change kind and notice ID.
type Hub struct {
	clients  sync.Map
	eventBuf *RingBuffer

	onClientCount func(int)
	logger        *zap.Logger
	stopCh        chan struct{}
	stopOnce      sync.Once
}

// NewHub builds a hub and starts its heartbeat loop. The optional
// onClientCount callback receives the connected subscriber count on every
// register/unregister, used to feed the metrics gauge.
func NewHub(logger *zap.Logger, onClientCount func(int)) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}

	hub := &Hub{
		eventBuf:      NewRingBuffer(defaultRingBufferSize),
		onClientCount: onClientCount,
		logger:        logger,
		stopCh:        make(chan struct{}),
	}

	go hub.startHeartbeat()

	return hub
}

// Register attaches a subscriber, replacing any earlier one with the same ID.
func (h *Hub) Register(client *Client) {
	if h == nil || client == nil || client.ID == "" {
		return
	}

	if current, loaded := h.clients.Load(client.ID); loaded {
		if oldClient, ok := current.(*Client); ok && oldClient != client {
			oldClient.Close()
		}
	}

	h.clients.Store(client.ID, client)
	h.notifyClientCount()
}

// Unregister detaches and closes a subscriber.
func (h *Hub) Unregister(clientID string) {
	if h == nil || clientID == "" {
		return
	}

	value, loaded := h.clients.LoadAndDelete(clientID)
	if !loaded {
		return
	}

	if client, ok := value.(*Client); ok {
		client.Close()
	}
	h.notifyClientCount()
}

// Broadcast buffers the event for replay and dispatches it to all subscribers.
func (h *Hub) Broadcast(event Event) {
	if h == nil {
		return
	}

	h.eventBuf.Push(event)
	h.clients.Range(func(_, value interface{}) bool {
		if client, ok := value.(*Client); ok {
			h.dispatch(client, event)
		}
		return true
	})
}

// Since returns buffered events newer than the provided Last-Event-ID.
func (h *Hub) Since(lastID string) []Event {
	if h == nil {
		return nil
	}
	return h.eventBuf.Since(lastID)
}

// Close stops the heartbeat loop.
func (h *Hub) Close() {
	if h == nil {
		return
	}
	h.stopOnce.Do(func() {
		close(h.stopCh)
	})
}

// ConnectedCount returns the number of attached subscribers.
func (h *Hub) ConnectedCount() int {
	if h == nil {
		return 0
	}

	count := 0
	h.clients.Range(func(_, _ interface{}) bool {
		count++
		return true
	})
	return count
}

func (h *Hub) dispatch(client *Client, event Event) {
	if client == nil {
		return
	}

	select {
	case <-client.Done:
		return
	case client.Ch <- event:
		client.MarkDispatchSuccess()
		return
	default:
		streak := client.MarkDispatchFull()
		h.logger.Warn("drop feed event due to full buffer",
			zap.String("client_id", client.ID),
			zap.String("type", event.Type),
			zap.Int32("full_streak", streak),
		)
		if streak >= backpressureFullLimit {
			h.logger.Warn("disconnect slow feed subscriber",
				zap.String("client_id", client.ID),
				zap.Int32("full_streak", streak),
			)
			h.Unregister(client.ID)
		}
	}
}

func (h *Hub) notifyClientCount() {
	if h.onClientCount != nil {
		h.onClientCount(h.ConnectedCount())
	}
}

func (h *Hub) startHeartbeat() {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-h.stopCh:
			return
		case now := <-ticker.C:
			heartbeat := NewEvent(EventHeartbeat, map[string]interface{}{
				"ts": now.UTC().Format(time.RFC3339Nano),
			})
			h.Broadcast(heartbeat)
		}
	}
}
