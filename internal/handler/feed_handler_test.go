package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harinimohanakrishnan-coder/noticeboard-freshly-posted/internal/events"
	"github.com/harinimohanakrishnan-coder/noticeboard-freshly-posted/internal/models"
	"github.com/harinimohanakrishnan-coder/noticeboard-freshly-posted/internal/service"
)

type fakeFeedRepo struct {
	notices []models.Notice
}

func (f *fakeFeedRepo) List(context.Context, models.NoticeFilter) ([]models.Notice, error) {
	return f.notices, nil
}

func (f *fakeFeedRepo) GetByID(context.Context, string) (*models.Notice, error) {
	return nil, nil
}

func (f *fakeFeedRepo) Create(context.Context, *models.Notice) error { return nil }

func (f *fakeFeedRepo) Update(context.Context, *models.Notice, *int) error { return nil }

func (f *fakeFeedRepo) SetArchived(context.Context, string, bool) error { return nil }

func (f *fakeFeedRepo) Delete(context.Context, string) error { return nil }

func (f *fakeFeedRepo) Stats(context.Context, time.Time) (*models.NoticeStats, error) {
	return &models.NoticeStats{}, nil
}

type feedEnvelope struct {
	Data struct {
		Notices []models.Notice `json:"notices"`
		Urgent  []models.Notice `json:"urgent"`
	} `json:"data"`
	Meta map[string]interface{} `json:"meta"`
}

func TestFeedHandlerReturnsUrgentBand(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &fakeFeedRepo{notices: []models.Notice{
		{ID: "n1", Title: "Fire Drill", Priority: models.PriorityUrgent, Category: models.CategoryCirculars},
		{ID: "n2", Title: "Sports Day", Priority: models.PriorityGeneral, Category: models.CategorySports},
	}}
	svc := service.NewNoticeService(repo, nil, nil, nil, nil, 0)
	handler := NewFeedHandler(svc, nil, nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/feed?category=sports", nil)

	handler.Feed(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var envelope feedEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.Notices, 1)
	assert.Equal(t, "n2", envelope.Data.Notices[0].ID)
	require.Len(t, envelope.Data.Urgent, 1)
	assert.Equal(t, "n1", envelope.Data.Urgent[0].ID)
}

func newStreamServer(t *testing.T, hub *events.Hub) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	handler := NewFeedHandler(service.NewNoticeService(&fakeFeedRepo{}, nil, hub, nil, nil, 0), hub, nil)

	r := gin.New()
	r.GET("/feed/stream", handler.Stream)
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server
}

func readStreamLines(t *testing.T, reader *bufio.Reader, want string, lines *[]string) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	found := make(chan struct{})
	go func() {
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				return
			}
			*lines = append(*lines, strings.TrimRight(line, "\n"))
			if strings.TrimRight(line, "\n") == want {
				close(found)
				return
			}
		}
	}()
	select {
	case <-found:
	case <-deadline:
		t.Fatalf("did not receive %q on the stream", want)
	}
}

func TestFeedHandlerStreamDeliversEvents(t *testing.T) {
	hub := events.NewHub(nil, nil)
	defer hub.Close()
	server := newStreamServer(t, hub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/feed/stream", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	require.Eventually(t, func() bool {
		return hub.ConnectedCount() == 1
	}, time.Second, 5*time.Millisecond)

	event := events.NewEvent(events.EventNoticeCreated, map[string]string{"id": "n1"})
	hub.Broadcast(event)

	var lines []string
	readStreamLines(t, bufio.NewReader(resp.Body), `data: {"id":"n1"}`, &lines)

	assert.Contains(t, lines, "id: "+event.ID)
	assert.Contains(t, lines, "event: notice.created")
}

func TestFeedHandlerStreamReplaysFromLastEventID(t *testing.T) {
	hub := events.NewHub(nil, nil)
	defer hub.Close()
	server := newStreamServer(t, hub)

	first := events.NewEvent(events.EventNoticeCreated, map[string]string{"id": "n1"})
	second := events.NewEvent(events.EventNoticeDeleted, map[string]string{"id": "n1"})
	hub.Broadcast(first)
	hub.Broadcast(second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/feed/stream", nil)
	require.NoError(t, err)
	req.Header.Set("Last-Event-ID", first.ID)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var lines []string
	readStreamLines(t, bufio.NewReader(resp.Body), "event: notice.deleted", &lines)

	assert.NotContains(t, lines, "event: notice.created")
	assert.Contains(t, lines, "id: "+second.ID)
}
