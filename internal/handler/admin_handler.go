package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harinimohanakrishnan-coder/noticeboard-freshly-posted/internal/service"
	appErrors "github.com/harinimohanakrishnan-coder/noticeboard-freshly-posted/pkg/errors"
	"github.com/harinimohanakrishnan-coder/noticeboard-freshly-posted/pkg/response"
)

// AdminHandler exposes the account approval panel.
type AdminHandler struct {
	identity *service.IdentityService
}

// NewAdminHandler creates a new handler.
func NewAdminHandler(identity *service.IdentityService) *AdminHandler {
	return &AdminHandler{identity: identity}
}

// ListUsers godoc
// @Summary List accounts for the approval panel
// @Description Returns every account with per-status counts in the meta block
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, counts, err := h.identity.ListUsers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	meta := make(map[string]interface{}, len(counts))
	for status, count := range counts {
		meta[status] = count
	}
	response.JSON(c, http.StatusOK, users, nil, meta)
}

// UpdateUserStatus godoc
// @Summary Approve or reject an account
// @Description Sets the account status; the change applies to the user's next request immediately
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param payload body object true "Account status"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/users/{id}/status [put]
func (h *AdminHandler) UpdateUserStatus(c *gin.Context) {
	var payload struct {
		AccountStatus string `json:"account_status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "account_status required"))
		return
	}

	user, err := h.identity.UpdateStatus(c.Request.Context(), c.Param("id"), payload.AccountStatus)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, user, nil)
}
