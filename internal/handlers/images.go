package handlers

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"diygenie-backend/internal/models"
	"diygenie-backend/internal/supabase"
)

// Input photos above this size are rejected before touching storage.
const maxImageSize = 20 << 20

type ImagesHandler struct {
	dbClient      *supabase.DatabaseClient
	storageClient *supabase.StorageClient
}

func NewImagesHandler(dbClient *supabase.DatabaseClient, storageClient *supabase.StorageClient) *ImagesHandler {
	return &ImagesHandler{
		dbClient:      dbClient,
		storageClient: storageClient,
	}
}

// Upload godoc
// @Summary     Upload a project's input photo
// @Description Stores the photo in Supabase Storage and records its public URL as the project's input image.
// @Tags        images
// @Accept      multipart/form-data
// @Produce     json
// @Param       project_id path string true "Project ID (UUID)"
// @Param       user_id formData string true "Caller user ID"
// @Param       file formData file true "Image file (jpeg/png/heic)"
// @Success     200 {object} models.ImageUploadResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /api/projects/{project_id}/image [post]
func (h *ImagesHandler) Upload(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("project_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid_project_id"})
		return
	}

	userID, ok := callerUUID(c, c.PostForm("user_id"))
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

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "file_required", Message: err.Error()})
		return
	}
	if fileHeader.Size > maxImageSize {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "file_too_large"})
		return
	}

	filename := sanitizeFilename(fileHeader.Filename)
	if !allowedImage(filename) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "unsupported_file_type"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed_to_read_file", Message: err.Error()})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed_to_read_file", Message: err.Error()})
		return
	}

	_, publicURL, err := h.storageClient.UploadImage(userID, projectID, filename, fileHeader.Header.Get("Content-Type"), data)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed_to_upload", Message: err.Error()})
		return
	}

	if err := h.dbClient.SetProjectImage(projectID, publicURL); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed_to_save_image_url", Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.ImageUploadResponse{
		OK:            true,
		InputImageURL: publicURL,
	})
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, " ", "_")
	if name == "" || name == "." {
		name = "image.jpg"
	}
	return name
}

func allowedImage(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg", ".png", ".heic", ".webp":
		return true
	default:
		return false
	}
}
