package handlers_test

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diygenie-backend/internal/decor8"
	"diygenie-backend/internal/handlers"
	"diygenie-backend/internal/models"
	"diygenie-backend/internal/preview"
	"diygenie-backend/internal/supabase"
)

type memProjectStore struct {
	projects map[uuid.UUID]*models.Project
}

func newMemProjectStore() *memProjectStore {
	return &memProjectStore{projects: make(map[uuid.UUID]*models.Project)}
}

func (m *memProjectStore) put(p models.Project) {
	cp := p
	m.projects[p.ID] = &cp
}

func (m *memProjectStore) GetProject(projectID, userID uuid.UUID) (*models.Project, error) {
	p, ok := m.projects[projectID]
	if !ok || p.UserID != userID {
		return nil, supabase.ErrProjectNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memProjectStore) MarkPreviewQueued(projectID uuid.UUID, jobID string) error {
	p := m.projects[projectID]
	p.PreviewStatus = models.PreviewStatusQueued
	p.PreviewJobID = sql.NullString{String: jobID, Valid: true}
	p.PreviewURL = sql.NullString{}
	return nil
}

func (m *memProjectStore) SetPreviewState(projectID uuid.UUID, status string) error {
	m.projects[projectID].PreviewStatus = status
	return nil
}

func (m *memProjectStore) CompletePreview(projectID uuid.UUID, previewURL string) error {
	p := m.projects[projectID]
	p.PreviewStatus = models.PreviewStatusDone
	p.PreviewURL = sql.NullString{String: previewURL, Valid: true}
	return nil
}

func (m *memProjectStore) FailPreview(projectID uuid.UUID) error {
	m.projects[projectID].PreviewStatus = models.PreviewStatusError
	return nil
}

// countingStub wraps the decor8 stub and tallies provider traffic.
type countingStub struct {
	inner       *decor8.Stub
	submitCalls int
	statusCalls int
}

func (c *countingStub) Submit(req decor8.SubmitRequest) (string, error) {
	c.submitCalls++
	return c.inner.Submit(req)
}

func (c *countingStub) JobStatus(jobID string) (decor8.Job, error) {
	c.statusCalls++
	return c.inner.JobStatus(jobID)
}

func previewRouter(store preview.ProjectStore, gen decor8.Generator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := handlers.NewPreviewHandler(preview.NewService(store, gen))

	router := gin.New()
	router.POST("/api/projects/:project_id/preview/start", handler.Start)
	router.GET("/api/projects/:project_id/preview/status", handler.Status)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	jsonData, err := json.Marshal(body)
	require.NoError(t, err)
	req, _ := http.NewRequest("POST", path, bytes.NewBuffer(jsonData))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestPreview_StubLifecycle(t *testing.T) {
	store := newMemProjectStore()
	userID := uuid.New()
	projectID := uuid.New()
	store.put(models.Project{
		ID:            projectID,
		UserID:        userID,
		PreviewStatus: models.PreviewStatusNone,
		InputImageURL: sql.NullString{String: "https://x/img.jpg", Valid: true},
	})

	stub := &countingStub{inner: decor8.NewStub()}
	router := previewRouter(store, stub)

	// Start
	w := postJSON(t, router, fmt.Sprintf("/api/projects/%s/preview/start", projectID), models.PreviewStartRequest{UserID: userID.String()})
	require.Equal(t, http.StatusOK, w.Code)

	var started models.PreviewStartResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &started))
	assert.True(t, started.OK)
	assert.Equal(t, "queued", started.Status)
	require.NotEmpty(t, started.JobID)

	// First poll completes against the stub.
	statusPath := fmt.Sprintf("/api/projects/%s/preview/status?user_id=%s", projectID, userID)
	req, _ := http.NewRequest("GET", statusPath, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var first models.PreviewStatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))
	assert.Equal(t, "done", first.Status)
	assert.Equal(t, decor8.StubResultURL(started.JobID), first.URL)
	assert.Equal(t, 1, stub.statusCalls)

	// Second poll is served from the row, identical body, no provider call.
	req, _ = http.NewRequest("GET", statusPath, nil)
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, req)
	require.Equal(t, http.StatusOK, w2.Code)
	assert.JSONEq(t, w.Body.String(), w2.Body.String())
	assert.Equal(t, 1, stub.statusCalls)
}

func TestPreview_StartMissingImage(t *testing.T) {
	store := newMemProjectStore()
	userID := uuid.New()
	projectID := uuid.New()
	store.put(models.Project{ID: projectID, UserID: userID, PreviewStatus: models.PreviewStatusNone})

	router := previewRouter(store, decor8.NewStub())

	w := postJSON(t, router, fmt.Sprintf("/api/projects/%s/preview/start", projectID), models.PreviewStartRequest{UserID: userID.String()})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "image_required")
}

func TestPreview_StartUserIDRequired(t *testing.T) {
	router := previewRouter(newMemProjectStore(), decor8.NewStub())

	w := postJSON(t, router, fmt.Sprintf("/api/projects/%s/preview/start", uuid.New()), models.PreviewStartRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "user_id_required")
}

func TestPreview_StartUnknownProject(t *testing.T) {
	router := previewRouter(newMemProjectStore(), decor8.NewStub())

	w := postJSON(t, router, fmt.Sprintf("/api/projects/%s/preview/start", uuid.New()), models.PreviewStartRequest{UserID: uuid.New().String()})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "project_not_found")
}

type failingGenerator struct{}

func (failingGenerator) Submit(req decor8.SubmitRequest) (string, error) {
	return "", fmt.Errorf("%w: status 503", decor8.ErrProviderUnavailable)
}

func (failingGenerator) JobStatus(jobID string) (decor8.Job, error) {
	return decor8.Job{}, fmt.Errorf("%w: status 503", decor8.ErrProviderUnavailable)
}

func TestPreview_StartProviderDown(t *testing.T) {
	store := newMemProjectStore()
	userID := uuid.New()
	projectID := uuid.New()
	store.put(models.Project{
		ID:            projectID,
		UserID:        userID,
		PreviewStatus: models.PreviewStatusNone,
		InputImageURL: sql.NullString{String: "https://x/img.jpg", Valid: true},
	})

	router := previewRouter(store, failingGenerator{})

	w := postJSON(t, router, fmt.Sprintf("/api/projects/%s/preview/start", projectID), models.PreviewStartRequest{UserID: userID.String()})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "provider_unavailable")

	// Prior state kept, so the client can retry start.
	assert.Equal(t, models.PreviewStatusNone, store.projects[projectID].PreviewStatus)
}

func TestPreview_StatusInvalidProjectID(t *testing.T) {
	router := previewRouter(newMemProjectStore(), decor8.NewStub())

	req, _ := http.NewRequest("GET", "/api/projects/not-a-uuid/preview/status?user_id="+uuid.New().String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_project_id")
}
