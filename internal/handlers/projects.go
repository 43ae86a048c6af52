package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"diygenie-backend/internal/models"
	"diygenie-backend/internal/supabase"
)

type ProjectsHandler struct {
	dbClient      *supabase.DatabaseClient
	storageClient *supabase.StorageClient
}

func NewProjectsHandler(dbClient *supabase.DatabaseClient, storageClient *supabase.StorageClient) *ProjectsHandler {
	return &ProjectsHandler{
		dbClient:      dbClient,
		storageClient: storageClient,
	}
}

func (h *ProjectsHandler) CreateProject(c *gin.Context) {
	var req models.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid_request_body", Message: err.Error()})
		return
	}

	userID, ok := callerUUID(c, req.UserID)
	if !ok {
		return
	}

	if req.Name == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "name_required"})
		return
	}

	project, err := h.dbClient.CreateProject(userID, req.Name, req.RoomType, req.DesignStyle)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed_to_create_project", Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, projectResponse(project))
}

func (h *ProjectsHandler) ListProjects(c *gin.Context) {
	userID, ok := callerUUID(c, c.Query("user_id"))
	if !ok {
		return
	}

	projects, err := h.dbClient.ListProjects(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed_to_list_projects", Message: err.Error()})
		return
	}

	summaries := make([]models.ProjectSummary, len(projects))
	for i, p := range projects {
		summaries[i] = models.ProjectSummary{
			ID:            p.ID.String(),
			Name:          p.Name,
			PreviewStatus: p.PreviewStatus,
			CreatedAt:     p.CreatedAt,
			UpdatedAt:     p.UpdatedAt,
		}
	}

	c.JSON(http.StatusOK, models.ProjectListResponse{Projects: summaries})
}

func (h *ProjectsHandler) GetProject(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("project_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid_project_id"})
		return
	}

	userID, ok := callerUUID(c, c.Query("user_id"))
	if !ok {
		return
	}

	project, err := h.dbClient.GetProject(projectID, userID)
	if errors.Is(err, supabase.ErrProjectNotFound) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "project_not_found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed_to_get_project", Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, projectResponse(project))
}

func (h *ProjectsHandler) DeleteProject(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("project_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid_project_id"})
		return
	}

	userID, ok := callerUUID(c, c.Query("user_id"))
	if !ok {
		return
	}

	if _, err := h.dbClient.GetProject(projectID, userID); err != nil {
		if errors.Is(err, supabase.ErrProjectNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "project_not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed_to_get_project", Message: err.Error()})
		return
	}

	// Storage cleanup failure should not block row deletion.
	if h.storageClient != nil {
		if err := h.storageClient.DeleteProjectFiles(userID, projectID); err != nil {
			log.Printf("failed to delete storage files for project %s: %v", projectID, err)
		}
	}

	if err := h.dbClient.DeleteProject(projectID, userID); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed_to_delete_project", Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func projectResponse(p *models.Project) models.ProjectResponse {
	resp := models.ProjectResponse{
		ID:            p.ID.String(),
		Name:          p.Name,
		PreviewStatus: p.PreviewStatus,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	if p.RoomType.Valid {
		resp.RoomType = p.RoomType.String
	}
	if p.DesignStyle.Valid {
		resp.DesignStyle = p.DesignStyle.String
	}
	if p.InputImageURL.Valid {
		resp.InputImageURL = p.InputImageURL.String
	}
	if p.PreviewURL.Valid {
		resp.PreviewURL = p.PreviewURL.String
	}
	if p.PlanText.Valid {
		resp.PlanText = p.PlanText.String
	}
	return resp
}
