package events

import (
	"encoding/json"
	"strconv"
	"sync/atomic"
)

// Event is a single server-sent event describing a notice collection change.
// Subscribers are expected to refetch the feed on any change event rather
// than patch state incrementally.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data string `json:"data"`
}

const (
	EventHeartbeat      = "heartbeat"
	EventNoticeCreated  = "notice.created"
	EventNoticeUpdated  = "notice.updated"
	EventNoticeDeleted  = "notice.deleted"
	EventNoticeArchived = "notice.archived"
)

var globalEventID int64

// NewEvent assigns a monotonically increasing ID and JSON-encodes the payload.
func NewEvent(eventType string, payload any) Event {
	id := atomic.AddInt64(&globalEventID, 1)
	data, err := json.Marshal(payload)
	if err != nil {
		data = []byte("null")
	}

	return Event{
		ID:   strconv.FormatInt(id, 10),
		Type: eventType,
		Data: string(data),
	}
}
