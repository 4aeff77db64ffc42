package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/harinimohanakrishnan-coder/noticeboard-freshly-posted/internal/events"
	"github.com/harinimohanakrishnan-coder/noticeboard-freshly-posted/internal/service"
	appErrors "github.com/harinimohanakrishnan-coder/noticeboard-freshly-posted/pkg/errors"
	"github.com/harinimohanakrishnan-coder/noticeboard-freshly-posted/pkg/response"
)

// FeedHandler serves the public read-only board: the notice list and the
// change stream. No authentication is required on either endpoint.
type FeedHandler struct {
	notices *service.NoticeService
	hub     *events.Hub
	metrics *service.MetricsService
}

// NewFeedHandler creates a new handler.
func NewFeedHandler(notices *service.NoticeService, hub *events.Hub, metrics *service.MetricsService) *FeedHandler {
	return &FeedHandler{notices: notices, hub: hub, metrics: metrics}
}

// Feed godoc
// @Summary Public notice feed
// @Description Returns visible notices urgent-first plus the urgent band; category and search narrow the list but not the band
// @Tags Feed
// @Produce json
// @Param category query string false "Category filter"
// @Param search query string false "Search term"
// @Success 200 {object} response.Envelope
// @Router /feed [get]
func (h *FeedHandler) Feed(c *gin.Context) {
	feed, err := h.notices.PublicFeed(c.Request.Context(), c.Query("category"), c.Query("search"), h.metrics)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, feed, nil, map[string]interface{}{
		"count":  len(feed.Notices),
		"urgent": len(feed.Urgent),
	})
}

// Stream godoc
// @Summary Public feed change stream
// @Description Server-sent events; emits notice change events and heartbeats, supports Last-Event-ID replay
// @Tags Feed
// @Produce text/event-stream
// @Success 200 {string} string "event stream"
// @Router /feed/stream [get]
func (h *FeedHandler) Stream(c *gin.Context) {
	if h.hub == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "event stream unavailable"))
		return
	}

	flusher, ok := c.Writer.(interface{ Flush() })
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "streaming unsupported"))
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)

	client := events.NewClient(uuid.NewString())
	h.hub.Register(client)
	defer h.hub.Unregister(client.ID)

	lastID := c.GetHeader("Last-Event-ID")
	for _, event := range h.hub.Since(lastID) {
		if err := writeEvent(c, event); err != nil {
			return
		}
		flusher.Flush()
	}

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case <-client.Done:
			return
		case event := <-client.Ch:
			if err := writeEvent(c, event); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeEvent(c *gin.Context, event events.Event) error {
	if _, err := fmt.Fprintf(c.Writer, "id: %s\n", event.ID); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(c.Writer, "event: %s\n", event.Type); err != nil {
		return err
	}
	for _, line := range strings.Split(event.Data, "\n") {
		if _, err := fmt.Fprintf(c.Writer, "data: %s\n", line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprint(c.Writer, "\n")
	return err
}
