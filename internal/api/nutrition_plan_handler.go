package api

import (
	"errors"
	"net/http"
	"time"

	"nutriplat/coaching-api/internal/domain"
	"nutriplat/coaching-api/internal/service"

	"github.com/gin-gonic/gin"
)

// NutritionPlanHandler exposes plan CRUD and plan assignment endpoints.
type NutritionPlanHandler struct {
	planService service.NutritionPlanService
}

// NewNutritionPlanHandler creates a new NutritionPlanHandler.
func NewNutritionPlanHandler(planService service.NutritionPlanService) *NutritionPlanHandler {
	return &NutritionPlanHandler{planService: planService}
}

// --- DTOs ---

type PlanRequest struct {
	Name        string `json:"name" binding:"required,max=200"`
	Description string `json:"description" binding:"max=2000"`
}

// AssignRequest carries the assignment target and the optional validity
// window. The active flag defaults to true when omitted.
type AssignRequest struct {
	ClientID  string     `json:"clientId" binding:"required"`
	StartDate *time.Time `json:"startDate"`
	EndDate   *time.Time `json:"endDate"`
	IsActive  *bool      `json:"isActive"`
}

func (r *AssignRequest) window() service.AssignmentWindow {
	window := service.AssignmentWindow{
		StartDate: r.StartDate,
		EndDate:   r.EndDate,
		IsActive:  true,
	}
	if r.IsActive != nil {
		window.IsActive = *r.IsActive
	}
	return window
}

// abortWithAssignmentError maps the shared assignment error kinds.
func abortWithAssignmentError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrRoleDenied), errors.Is(err, service.ErrOwnershipDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrNotLinked):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrPersistenceConflict):
		abortWithError(c, http.StatusConflict, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, fallback)
	}
}

// --- Plan CRUD ---

// CreatePlan godoc
// @Summary Create a nutrition plan
// @Tags NutritionPlans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param plan body PlanRequest true "Plan details"
// @Success 201 {object} domain.NutritionPlan
// @Router /nutrition-plans [post]
func (h *NutritionPlanHandler) CreatePlan(c *gin.Context) {
	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	creatorID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	plan, err := h.planService.CreatePlan(c.Request.Context(), creatorID, req.Name, req.Description)
	if err != nil {
		abortWithAssignmentError(c, err, "Failed to create plan.")
		return
	}

	c.JSON(http.StatusCreated, plan)
}

// GetPlans godoc
// @Summary List all nutrition plans
// @Tags NutritionPlans
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.NutritionPlan
// @Router /nutrition-plans [get]
func (h *NutritionPlanHandler) GetPlans(c *gin.Context) {
	plans, err := h.planService.GetPlans(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve plans.")
		return
	}
	if plans == nil {
		plans = []domain.NutritionPlan{}
	}
	c.JSON(http.StatusOK, plans)
}

// GetPlan godoc
// @Summary Get a nutrition plan by ID
// @Tags NutritionPlans
// @Produce json
// @Security BearerAuth
// @Param id path string true "Plan ID"
// @Success 200 {object} domain.NutritionPlan
// @Router /nutrition-plans/{id} [get]
func (h *NutritionPlanHandler) GetPlan(c *gin.Context) {
	planID, ok := parseObjectIDParam(c, "id")
	if !ok {
		return
	}

	plan, err := h.planService.GetPlan(c.Request.Context(), planID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			abortWithError(c, http.StatusNotFound, "Plan not found.")
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve plan.")
		}
		return
	}

	c.JSON(http.StatusOK, plan)
}

// UpdatePlan godoc
// @Summary Update a nutrition plan
// @Description Only the creating nutritionist or an admin may update.
// @Tags NutritionPlans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Plan ID"
// @Param plan body PlanRequest true "Plan details"
// @Success 200 {object} domain.NutritionPlan
// @Router /nutrition-plans/{id} [put]
func (h *NutritionPlanHandler) UpdatePlan(c *gin.Context) {
	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	planID, ok := parseObjectIDParam(c, "id")
	if !ok {
		return
	}
	requesterID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	plan, err := h.planService.UpdatePlan(c.Request.Context(), planID, requesterID, req.Name, req.Description)
	if err != nil {
		abortWithAssignmentError(c, err, "Failed to update plan.")
		return
	}

	c.JSON(http.StatusOK, plan)
}

// DeletePlan godoc
// @Summary Delete a nutrition plan
// @Description Removes the plan and every assignment referencing it.
// @Tags NutritionPlans
// @Produce json
// @Security BearerAuth
// @Param id path string true "Plan ID"
// @Success 204 "Plan deleted"
// @Router /nutrition-plans/{id} [delete]
func (h *NutritionPlanHandler) DeletePlan(c *gin.Context) {
	planID, ok := parseObjectIDParam(c, "id")
	if !ok {
		return
	}
	requesterID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	if err := h.planService.DeletePlan(c.Request.Context(), planID, requesterID); err != nil {
		abortWithAssignmentError(c, err, "Failed to delete plan.")
		return
	}

	c.Status(http.StatusNoContent)
}

// --- Assignment ---

// AssignPlan godoc
// @Summary Assign a nutrition plan to a linked client
// @Description Upsert semantics: re-assigning the same plan refreshes the window instead of duplicating.
// @Tags NutritionPlans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Plan ID"
// @Param assignment body AssignRequest true "Assignment details"
// @Success 200 {object} service.AssignmentView
// @Failure 409 {object} gin.H "Client not linked to this nutritionist"
// @Router /nutrition-plans/{id}/assign [post]
func (h *NutritionPlanHandler) AssignPlan(c *gin.Context) {
	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	planID, ok := parseObjectIDParam(c, "id")
	if !ok {
		return
	}
	clientID, ok := parseObjectIDString(c, req.ClientID, "clientId")
	if !ok {
		return
	}
	nutritionistID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	view, err := h.planService.AssignPlan(c.Request.Context(), nutritionistID, clientID, planID, req.window())
	if err != nil {
		abortWithAssignmentError(c, err, "Failed to assign plan.")
		return
	}

	c.JSON(http.StatusOK, view)
}

// UnassignPlan godoc
// @Summary Remove a plan assignment from a client
// @Description The assigning nutritionist or an admin may unassign.
// @Tags NutritionPlans
// @Produce json
// @Security BearerAuth
// @Param id path string true "Plan ID"
// @Param clientId path string true "Client ID"
// @Success 204 "Assignment removed"
// @Router /nutrition-plans/{id}/assign/{clientId} [delete]
func (h *NutritionPlanHandler) UnassignPlan(c *gin.Context) {
	planID, ok := parseObjectIDParam(c, "id")
	if !ok {
		return
	}
	clientID, ok := parseObjectIDParam(c, "clientId")
	if !ok {
		return
	}
	requesterID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	if err := h.planService.UnassignPlan(c.Request.Context(), clientID, planID, requesterID); err != nil {
		abortWithAssignmentError(c, err, "Failed to unassign plan.")
		return
	}

	c.Status(http.StatusNoContent)
}

// GetMyAssignedPlans godoc
// @Summary List plans assigned to the authenticated client
// @Tags NutritionPlans
// @Produce json
// @Security BearerAuth
// @Success 200 {array} service.AssignmentView
// @Router /nutrition-plans/client/my [get]
func (h *NutritionPlanHandler) GetMyAssignedPlans(c *gin.Context) {
	clientID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	views, err := h.planService.AssignedToClient(c.Request.Context(), clientID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve assigned plans.")
		return
	}

	c.JSON(http.StatusOK, views)
}

// GetPlansIAssigned godoc
// @Summary List assignments issued by the authenticated nutritionist
// @Tags NutritionPlans
// @Produce json
// @Security BearerAuth
// @Success 200 {array} service.AssignmentView
// @Router /nutrition-plans/nutritionist/assigned [get]
func (h *NutritionPlanHandler) GetPlansIAssigned(c *gin.Context) {
	nutritionistID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	views, err := h.planService.AssignedByNutritionist(c.Request.Context(), nutritionistID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve assignments.")
		return
	}

	c.JSON(http.StatusOK, views)
}
