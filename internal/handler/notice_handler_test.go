package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harinimohanakrishnan-coder/noticeboard-freshly-posted/internal/middleware"
	"github.com/harinimohanakrishnan-coder/noticeboard-freshly-posted/internal/models"
	"github.com/harinimohanakrishnan-coder/noticeboard-freshly-posted/internal/service"
)

func newNoticeTestHandler() *NoticeHandler {
	svc := service.NewNoticeService(&fakeFeedRepo{}, nil, nil, nil, nil, 0)
	return NewNoticeHandler(svc, nil, nil)
}

func TestNoticeHandlerCreateRequiresClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newNoticeTestHandler()

	body, _ := json.Marshal(map[string]string{"title": "t", "content": "c"})
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/notices", bytes.NewReader(body))

	handler.Create(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestNoticeHandlerCreateSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newNoticeTestHandler()

	body, _ := json.Marshal(map[string]string{"title": "Library Hours", "content": "Extended"})
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/notices", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u1"})

	handler.Create(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	var envelope struct {
		Data models.Notice `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "u1", envelope.Data.CreatedBy)
	assert.Equal(t, models.CategoryAcademic, envelope.Data.Category)
	assert.Equal(t, models.PriorityGeneral, envelope.Data.Priority)
}

func TestNoticeHandlerListRejectsBadArchivedFlag(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newNoticeTestHandler()

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/notices?archived=maybe", nil)

	handler.List(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNoticeHandlerArchiveRequiresFlag(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newNoticeTestHandler()

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/notices/n1/archive", bytes.NewReader([]byte(`{}`)))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: "n1"}}

	handler.Archive(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
