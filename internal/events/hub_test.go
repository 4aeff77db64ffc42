package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubBroadcastReachesAllSubscribers(t *testing.T) {
	hub := NewHub(nil, nil)
	defer hub.Close()

	a := NewClient("a")
	b := NewClient("b")
	hub.Register(a)
	hub.Register(b)
	require.Equal(t, 2, hub.ConnectedCount())

	event := NewEvent(EventNoticeCreated, map[string]string{"id": "n1"})
	hub.Broadcast(event)

	got := <-a.Ch
	assert.Equal(t, EventNoticeCreated, got.Type)
	assert.Equal(t, event.ID, got.ID)
	got = <-b.Ch
	assert.Equal(t, event.ID, got.ID)
}

func TestHubUnregisterClosesClient(t *testing.T) {
	hub := NewHub(nil, nil)
	defer hub.Close()

	client := NewClient("a")
	hub.Register(client)
	hub.Unregister("a")

	assert.Equal(t, 0, hub.ConnectedCount())
	select {
	case <-client.Done:
	default:
		t.Fatal("expected client to be closed after unregister")
	}
}

func TestHubRegisterReplacesDuplicateID(t *testing.T) {
	hub := NewHub(nil, nil)
	defer hub.Close()

	first := NewClient("dup")
	second := NewClient("dup")
	hub.Register(first)
	hub.Register(second)

	assert.Equal(t, 1, hub.ConnectedCount())
	select {
	case <-first.Done:
	default:
		t.Fatal("expected earlier client with same id to be closed")
	}
}

func TestHubSinceReplaysMissedEvents(t *testing.T) {
	hub := NewHub(nil, nil)
	defer hub.Close()

	first := NewEvent(EventNoticeCreated, map[string]string{"id": "n1"})
	second := NewEvent(EventNoticeUpdated, map[string]string{"id": "n1"})
	hub.Broadcast(first)
	hub.Broadcast(second)

	missed := hub.Since(first.ID)
	require.Len(t, missed, 1)
	assert.Equal(t, second.ID, missed[0].ID)

	assert.Nil(t, hub.Since(""))
	assert.Nil(t, hub.Since("not-a-number"))
}

func TestHubDisconnectsSlowSubscriber(t *testing.T) {
	hub := NewHub(nil, nil)
	defer hub.Close()

	slow := NewClient("slow")
	hub.Register(slow)

	// fill the buffer, then exceed the consecutive-full limit
	for i := 0; i < clientBufferSize+backpressureFullLimit; i++ {
		hub.Broadcast(NewEvent(EventNoticeUpdated, map[string]string{"id": "n1"}))
	}

	assert.Equal(t, 0, hub.ConnectedCount())
	select {
	case <-slow.Done:
	default:
		t.Fatal("expected slow subscriber to be disconnected")
	}
}

func TestHubClientCountCallback(t *testing.T) {
	var counts []int
	hub := NewHub(nil, func(n int) { counts = append(counts, n) })
	defer hub.Close()

	hub.Register(NewClient("a"))
	hub.Register(NewClient("b"))
	hub.Unregister("a")

	assert.Equal(t, []int{1, 2, 1}, counts)
}

func TestRingBufferEvictsOldest(t *testing.T) {
	buf := NewRingBuffer(2)
	first := NewEvent(EventNoticeCreated, nil)
	second := NewEvent(EventNoticeUpdated, nil)
	third := NewEvent(EventNoticeDeleted, nil)
	buf.Push(first)
	buf.Push(second)
	buf.Push(third)

	missed := buf.Since(first.ID)
	require.Len(t, missed, 2)
	assert.Equal(t, second.ID, missed[0].ID)
	assert.Equal(t, third.ID, missed[1].ID)
}
