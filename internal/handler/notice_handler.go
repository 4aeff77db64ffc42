package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/harinimohanakrishnan-coder/noticeboard-freshly-posted/internal/service"
	appErrors "github.com/harinimohanakrishnan-coder/noticeboard-freshly-posted/pkg/errors"
	"github.com/harinimohanakrishnan-coder/noticeboard-freshly-posted/pkg/response"
)

// NoticeHandler exposes the staff dashboard notice endpoints.
type NoticeHandler struct {
	notices     *service.NoticeService
	attachments *service.AttachmentService
	exports     *service.ExportService
}

// NewNoticeHandler creates a new handler.
func NewNoticeHandler(notices *service.NoticeService, attachments *service.AttachmentService, exports *service.ExportService) *NoticeHandler {
	return &NoticeHandler{notices: notices, attachments: attachments, exports: exports}
}

// List godoc
// @Summary List notices for the dashboard
// @Description Lists notices newest first; archived=true switches to the archive tab, search filters by title and content
// @Tags Notices
// @Produce json
// @Param archived query bool false "Archived tab"
// @Param search query string false "Search term"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /notices [get]
func (h *NoticeHandler) List(c *gin.Context) {
	var archived *bool
	if raw := c.Query("archived"); raw != "" {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "archived must be true or false"))
			return
		}
		archived = &value
	}

	notices, err := h.notices.List(c.Request.Context(), archived, c.Query("search"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, notices, nil, map[string]interface{}{"count": len(notices)})
}

// Get godoc
// @Summary Get a notice
// @Tags Notices
// @Produce json
// @Param id path string true "Notice ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /notices/{id} [get]
func (h *NoticeHandler) Get(c *gin.Context) {
	notice, err := h.notices.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, notice, nil)
}

// Create godoc
// @Summary Create a notice
// @Description Creates a notice owned by the authenticated user; category, priority and content type default to academic, general and text
// @Tags Notices
// @Accept json
// @Produce json
// @Param payload body service.CreateNoticeRequest true "Notice payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /notices [post]
func (h *NoticeHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.CreateNoticeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid notice payload"))
		return
	}

	notice, err := h.notices.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, notice)
}

// Update godoc
// @Summary Update a notice
// @Description Updates a notice; include the version field to enable the concurrent-edit check
// @Tags Notices
// @Accept json
// @Produce json
// @Param id path string true "Notice ID"
// @Param payload body service.UpdateNoticeRequest true "Notice payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /notices/{id} [put]
func (h *NoticeHandler) Update(c *gin.Context) {
	var req service.UpdateNoticeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid notice payload"))
		return
	}

	notice, err := h.notices.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, notice, nil)
}

// Archive godoc
// @Summary Archive or restore a notice
// @Description Sets the archive flag; restoring returns the notice to the active list unchanged
// @Tags Notices
// @Accept json
// @Produce json
// @Param id path string true "Notice ID"
// @Param payload body object true "Archive flag"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /notices/{id}/archive [post]
func (h *NoticeHandler) Archive(c *gin.Context) {
	var payload struct {
		Archived *bool `json:"archived" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "archived flag required"))
		return
	}

	if err := h.notices.SetArchived(c.Request.Context(), c.Param("id"), *payload.Archived); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// Delete godoc
// @Summary Delete a notice permanently
// @Tags Notices
// @Produce json
// @Param id path string true "Notice ID"
// @Success 204 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /notices/{id} [delete]
func (h *NoticeHandler) Delete(c *gin.Context) {
	if err := h.notices.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Stats godoc
// @Summary Dashboard counters
// @Description Returns total, active, draft, archived and urgent counts
// @Tags Notices
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /notices/stats [get]
func (h *NoticeHandler) Stats(c *gin.Context) {
	stats, err := h.notices.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// UploadAttachments godoc
// @Summary Upload notice attachments
// @Description Stores the uploaded files and returns their public URLs for use in attachment_urls
// @Tags Notices
// @Accept multipart/form-data
// @Produce json
// @Param files formData file true "Attachment files"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /notices/attachments [post]
func (h *NoticeHandler) UploadAttachments(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid multipart form"))
		return
	}

	headers := form.File["files"]
	files := make([]service.UploadFile, 0, len(headers))
	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "failed to read uploaded file"))
			return
		}
		defer file.Close() //nolint:errcheck
		files = append(files, service.UploadFile{
			Filename:    header.Filename,
			Size:        header.Size,
			ContentType: header.Header.Get("Content-Type"),
			Content:     file,
		})
	}

	urls, err := h.attachments.Upload(c.Request.Context(), claims.UserID, files)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, gin.H{"attachment_urls": urls})
}

// ExportPDF godoc
// @Summary Export the visible board as PDF
// @Tags Notices
// @Produce application/pdf
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Router /notices/export.pdf [get]
func (h *NoticeHandler) ExportPDF(c *gin.Context) {
	data, err := h.exports.BoardPDF(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+service.ExportFilename("noticeboard", "pdf"))
	c.Data(http.StatusOK, "application/pdf", data)
}

// ExportCSV godoc
// @Summary Export all notices as CSV
// @Tags Notices
// @Produce text/csv
// @Success 200 {file} binary
// @Router /notices/export.csv [get]
func (h *NoticeHandler) ExportCSV(c *gin.Context) {
	data, err := h.exports.NoticesCSV(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+service.ExportFilename("notices", "csv"))
	c.Data(http.StatusOK, "text/csv", data)
}
