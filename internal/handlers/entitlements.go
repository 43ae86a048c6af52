package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"diygenie-backend/internal/entitlements"
	"diygenie-backend/internal/models"
	"diygenie-backend/internal/supabase"
)

type EntitlementsHandler struct {
	service *entitlements.Service
}

func NewEntitlementsHandler(service *entitlements.Service) *EntitlementsHandler {
	return &EntitlementsHandler{
		service: service,
	}
}

// Check godoc
// @Summary     Read quota state
// @Description Reports used and remaining credits for the current period without consuming any.
// @Tags        entitlements
// @Accept      json
// @Produce     json
// @Param       request body models.EntitlementsRequest true "Caller"
// @Success     200 {object} models.EntitlementsResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /entitlements/check [post]
func (h *EntitlementsHandler) Check(c *gin.Context) {
	var req models.EntitlementsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid_request_body", Message: err.Error()})
		return
	}

	userID, ok := callerUUID(c, req.UserID)
	if !ok {
		return
	}

	status, err := h.service.Check(userID)
	if err != nil {
		writeEntitlementsError(c, err, status)
		return
	}

	c.JSON(http.StatusOK, models.EntitlementsResponse{
		OK:        true,
		Tier:      status.Tier,
		Quota:     status.Quota,
		Used:      status.Used,
		Remaining: status.Remaining,
	})
}

// Consume godoc
// @Summary     Consume one credit
// @Description Spends one plan/preview credit via a conditional increment. Quota exhaustion is a 402; an unresolved write race is a 409 the caller can retry.
// @Tags        entitlements
// @Accept      json
// @Produce     json
// @Param       request body models.EntitlementsRequest true "Caller"
// @Success     200 {object} models.EntitlementsResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     402 {object} models.EntitlementsResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /entitlements/consume [post]
func (h *EntitlementsHandler) Consume(c *gin.Context) {
	var req models.EntitlementsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid_request_body", Message: err.Error()})
		return
	}

	userID, ok := callerUUID(c, req.UserID)
	if !ok {
		return
	}

	status, err := h.service.Consume(userID)
	if err != nil {
		writeEntitlementsError(c, err, status)
		return
	}

	c.JSON(http.StatusOK, models.EntitlementsResponse{
		OK:        true,
		Tier:      status.Tier,
		Quota:     status.Quota,
		Used:      status.Used,
		Remaining: status.Remaining,
	})
}

func writeEntitlementsError(c *gin.Context, err error, status entitlements.Status) {
	switch {
	case errors.Is(err, supabase.ErrProfileNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "profile_not_found"})
	case errors.Is(err, entitlements.ErrQuotaExhausted):
		c.JSON(http.StatusPaymentRequired, gin.H{
			"ok":        false,
			"error":     "quota_exhausted",
			"quota":     status.Quota,
			"used":      status.Used,
			"remaining": 0,
		})
	case errors.Is(err, entitlements.ErrConsumeConflict):
		c.JSON(http.StatusConflict, models.ErrorResponse{Error: "consume_conflict"})
	default:
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal_error", Message: err.Error()})
	}
}
