package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"diygenie-backend/internal/config"
	"diygenie-backend/internal/models"
	"diygenie-backend/internal/supabase"
)

type HealthHandler struct {
	cfg      *config.Config
	dbClient *supabase.DatabaseClient
}

func NewHealthHandler(cfg *config.Config, dbClient *supabase.DatabaseClient) *HealthHandler {
	return &HealthHandler{
		cfg:      cfg,
		dbClient: dbClient,
	}
}

// Live godoc
// @Summary     Liveness probe
// @Description Returns ok while the process is serving requests
// @Tags        health
// @Produce     json
// @Success     200 {object} models.HealthResponse
// @Router      /health [get]
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{Status: "ok"})
}

// Ready godoc
// @Summary     Readiness probe
// @Description Verifies the database connection is usable
// @Tags        health
// @Produce     json
// @Success     200 {object} models.ReadyResponse
// @Failure     503 {object} models.ReadyResponse
// @Router      /health/ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	if h.dbClient == nil {
		c.JSON(http.StatusServiceUnavailable, models.ReadyResponse{Status: "unavailable", Database: "not configured"})
		return
	}
	if err := h.dbClient.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, models.ReadyResponse{Status: "unavailable", Database: err.Error()})
		return
	}
	c.JSON(http.StatusOK, models.ReadyResponse{Status: "ok", Database: "ok"})
}

// Full godoc
// @Summary     Full health report
// @Description Readiness plus provider modes and storage configuration
// @Tags        health
// @Produce     json
// @Success     200 {object} models.FullHealthResponse
// @Router      /health/full [get]
func (h *HealthHandler) Full(c *gin.Context) {
	dbStatus := "not configured"
	status := "degraded"
	if h.dbClient != nil {
		if err := h.dbClient.Ping(); err != nil {
			dbStatus = err.Error()
		} else {
			dbStatus = "ok"
			status = "ok"
		}
	}

	previewMode := "stub"
	if h.cfg.Decor8Live() {
		previewMode = "live"
	}
	planMode := "stub"
	if h.cfg.OpenAILive() {
		planMode = "live"
	}

	c.JSON(http.StatusOK, models.FullHealthResponse{
		Status:        status,
		Database:      dbStatus,
		PreviewMode:   previewMode,
		PlanMode:      planMode,
		StorageBucket: h.cfg.SupabaseStorageBucket,
		Environment:   h.cfg.Environment,
	})
}
