package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"diygenie-backend/internal/entitlements"
	"diygenie-backend/internal/llm"
	"diygenie-backend/internal/models"
	"diygenie-backend/internal/supabase"
)

// PlanStore is the database slice the plans endpoint needs.
type PlanStore interface {
	GetProject(projectID, userID uuid.UUID) (*models.Project, error)
	SetPlanText(projectID uuid.UUID, planText string) error
}

type PlansHandler struct {
	store        PlanStore
	entitlements *entitlements.Service
	generator    llm.PlanGenerator
}

func NewPlansHandler(store PlanStore, ents *entitlements.Service, generator llm.PlanGenerator) *PlansHandler {
	return &PlansHandler{
		store:        store,
		entitlements: ents,
		generator:    generator,
	}
}

// Generate godoc
// @Summary     Generate the DIY plan text for a project
// @Description Consumes one credit, then asks the plan provider for step-by-step text and stores it on the project. A provider failure after the consume does not refund the credit.
// @Tags        plans
// @Accept      json
// @Produce     json
// @Param       project_id path string true "Project ID (UUID)"
// @Param       request body models.PlanRequest true "Plan brief"
// @Success     200 {object} models.PlanResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     402 {object} models.EntitlementsResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /api/projects/{project_id}/plan [post]
func (h *PlansHandler) Generate(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("project_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid_project_id"})
		return
	}

	var req models.PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid_request_body", Message: err.Error()})
		return
	}

	userID, ok := callerUUID(c, req.UserID)
	if !ok {
		return
	}

	project, err := h.store.GetProject(projectID, userID)
	if errors.Is(err, supabase.ErrProjectNotFound) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "project_not_found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed_to_get_project", Message: err.Error()})
		return
	}

	status, err := h.entitlements.Consume(userID)
	if err != nil {
		writeEntitlementsError(c, err, status)
		return
	}

	input := llm.PlanInput{Brief: req.Brief}
	if project.RoomType.Valid {
		input.RoomType = project.RoomType.String
	}
	if project.DesignStyle.Valid {
		input.DesignStyle = project.DesignStyle.String
	}

	planText, err := h.generator.GeneratePlan(input)
	if err != nil {
		c.JSON(http.StatusBadGateway, models.ErrorResponse{Error: "plan_provider_unavailable", Message: err.Error()})
		return
	}

	if err := h.store.SetPlanText(projectID, planText); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed_to_save_plan", Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.PlanResponse{
		OK:        true,
		PlanText:  planText,
		Remaining: status.Remaining,
	})
}
