package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"diygenie-backend/internal/config"
	"diygenie-backend/internal/handlers"
)

func TestHealthLive(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := handlers.NewHealthHandler(&config.Config{}, nil)

	router := gin.New()
	router.GET("/health", handler.Live)

	req, _ := http.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestHealthReady_NoDatabase(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := handlers.NewHealthHandler(&config.Config{}, nil)

	router := gin.New()
	router.GET("/health/ready", handler.Ready)

	req, _ := http.NewRequest("GET", "/health/ready", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHealthFull_ReportsStubModes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		SupabaseStorageBucket: "project-images",
		Environment:           "test",
	}
	handler := handlers.NewHealthHandler(cfg, nil)

	router := gin.New()
	router.GET("/health/full", handler.Full)

	req, _ := http.NewRequest("GET", "/health/full", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"preview_mode":"stub"`)
	assert.Contains(t, w.Body.String(), `"plan_mode":"stub"`)
	assert.Contains(t, w.Body.String(), "project-images")
}
