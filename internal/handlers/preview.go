package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"diygenie-backend/internal/decor8"
	"diygenie-backend/internal/middleware"
	"diygenie-backend/internal/models"
	"diygenie-backend/internal/preview"
	"diygenie-backend/internal/supabase"
)

type PreviewHandler struct {
	service *preview.Service
}

func NewPreviewHandler(service *preview.Service) *PreviewHandler {
	return &PreviewHandler{
		service: service,
	}
}

// Start godoc
// @Summary     Start a preview generation job
// @Description Submits the project's input image to the design generator and marks the project queued. Re-calling on a completed preview returns the cached result without starting a new job.
// @Tags        preview
// @Accept      json
// @Produce     json
// @Param       project_id path string true "Project ID (UUID)"
// @Param       request body models.PreviewStartRequest true "Start options"
// @Success     200 {object} models.PreviewStartResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /api/projects/{project_id}/preview/start [post]
func (h *PreviewHandler) Start(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("project_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid_project_id"})
		return
	}

	var req models.PreviewStartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid_request_body", Message: err.Error()})
		return
	}

	userID, ok := callerUUID(c, req.UserID)
	if !ok {
		return
	}

	result, err := h.service.Start(userID, projectID, preview.StartOptions{
		ImageURL:    req.ImageURL,
		RoomType:    req.RoomType,
		DesignStyle: req.DesignStyle,
		ROI:         req.ROI,
	})
	if err != nil {
		writePreviewError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.PreviewStartResponse{
		OK:     true,
		Status: result.Status,
		JobID:  result.JobID,
		URL:    result.URL,
	})
}

// Status godoc
// @Summary     Poll preview job status
// @Description Returns the current preview state, advancing it from the provider when the job is still in flight. A done preview is served from the stored row.
// @Tags        preview
// @Produce     json
// @Param       project_id path string true "Project ID (UUID)"
// @Param       user_id query string true "Caller user ID"
// @Success     200 {object} models.PreviewStatusResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /api/projects/{project_id}/preview/status [get]
func (h *PreviewHandler) Status(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("project_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid_project_id"})
		return
	}

	userID, ok := callerUUID(c, c.Query("user_id"))
	if !ok {
		return
	}

	result, err := h.service.Status(userID, projectID)
	if err != nil {
		writePreviewError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.PreviewStatusResponse{
		OK:     true,
		Status: result.Status,
		URL:    result.URL,
	})
}

// callerUUID resolves and parses the caller identity, writing the error
// response itself when the request has to be refused.
func callerUUID(c *gin.Context, requestUserID string) (uuid.UUID, bool) {
	caller := middleware.CallerID(c, requestUserID)
	if caller == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "user_id_required"})
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(caller)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid_user_id"})
		return uuid.Nil, false
	}
	return userID, true
}

func writePreviewError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, supabase.ErrProjectNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "project_not_found"})
	case errors.Is(err, preview.ErrImageRequired):
		c.JSON(http.StatusConflict, models.ErrorResponse{Error: "image_required"})
	case errors.Is(err, decor8.ErrInvalidResponse):
		c.JSON(http.StatusBadGateway, models.ErrorResponse{Error: "invalid_provider_response", Message: err.Error()})
	case errors.Is(err, decor8.ErrProviderUnavailable):
		c.JSON(http.StatusBadGateway, models.ErrorResponse{Error: "provider_unavailable", Message: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal_error", Message: err.Error()})
	}
}
