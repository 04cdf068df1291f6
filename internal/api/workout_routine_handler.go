package api

import (
	"errors"
	"net/http"

	"nutriplat/coaching-api/internal/domain"
	"nutriplat/coaching-api/internal/service"

	"github.com/gin-gonic/gin"
)

// WorkoutRoutineHandler exposes routine CRUD and routine assignment
// endpoints. Mirrors NutritionPlanHandler for the trainer side.
type WorkoutRoutineHandler struct {
	routineService service.WorkoutRoutineService
}

// NewWorkoutRoutineHandler creates a new WorkoutRoutineHandler.
func NewWorkoutRoutineHandler(routineService service.WorkoutRoutineService) *WorkoutRoutineHandler {
	return &WorkoutRoutineHandler{routineService: routineService}
}

// CreateRoutine godoc
// @Summary Create a workout routine
// @Tags WorkoutRoutines
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param routine body PlanRequest true "Routine details"
// @Success 201 {object} domain.WorkoutRoutine
// @Router /workout-routines [post]
func (h *WorkoutRoutineHandler) CreateRoutine(c *gin.Context) {
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

	routine, err := h.routineService.CreateRoutine(c.Request.Context(), creatorID, req.Name, req.Description)
	if err != nil {
		abortWithAssignmentError(c, err, "Failed to create routine.")
		return
	}

	c.JSON(http.StatusCreated, routine)
}

// GetRoutines godoc
// @Summary List all workout routines
// @Tags WorkoutRoutines
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.WorkoutRoutine
// @Router /workout-routines [get]
func (h *WorkoutRoutineHandler) GetRoutines(c *gin.Context) {
	routines, err := h.routineService.GetRoutines(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve routines.")
		return
	}
	if routines == nil {
		routines = []domain.WorkoutRoutine{}
	}
	c.JSON(http.StatusOK, routines)
}

// GetRoutine godoc
// @Summary Get a workout routine by ID
// @Tags WorkoutRoutines
// @Produce json
// @Security BearerAuth
// @Param id path string true "Routine ID"
// @Success 200 {object} domain.WorkoutRoutine
// @Router /workout-routines/{id} [get]
func (h *WorkoutRoutineHandler) GetRoutine(c *gin.Context) {
	routineID, ok := parseObjectIDParam(c, "id")
	if !ok {
		return
	}

	routine, err := h.routineService.GetRoutine(c.Request.Context(), routineID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			abortWithError(c, http.StatusNotFound, "Routine not found.")
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve routine.")
		}
		return
	}

	c.JSON(http.StatusOK, routine)
}

// UpdateRoutine godoc
// @Summary Update a workout routine
// @Description Only the creating trainer or an admin may update.
// @Tags WorkoutRoutines
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Routine ID"
// @Param routine body PlanRequest true "Routine details"
// @Success 200 {object} domain.WorkoutRoutine
// @Router /workout-routines/{id} [put]
func (h *WorkoutRoutineHandler) UpdateRoutine(c *gin.Context) {
	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	routineID, ok := parseObjectIDParam(c, "id")
	if !ok {
		return
	}
	requesterID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	routine, err := h.routineService.UpdateRoutine(c.Request.Context(), routineID, requesterID, req.Name, req.Description)
	if err != nil {
		abortWithAssignmentError(c, err, "Failed to update routine.")
		return
	}

	c.JSON(http.StatusOK, routine)
}

// DeleteRoutine godoc
// @Summary Delete a workout routine
// @Description Removes the routine and every assignment referencing it.
// @Tags WorkoutRoutines
// @Produce json
// @Security BearerAuth
// @Param id path string true "Routine ID"
// @Success 204 "Routine deleted"
// @Router /workout-routines/{id} [delete]
func (h *WorkoutRoutineHandler) DeleteRoutine(c *gin.Context) {
	routineID, ok := parseObjectIDParam(c, "id")
	if !ok {
		return
	}
	requesterID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	if err := h.routineService.DeleteRoutine(c.Request.Context(), routineID, requesterID); err != nil {
		abortWithAssignmentError(c, err, "Failed to delete routine.")
		return
	}

	c.Status(http.StatusNoContent)
}

// AssignRoutine godoc
// @Summary Assign a workout routine to a linked client
// @Description Upsert semantics: re-assigning the same routine refreshes the window instead of duplicating.
// @Tags WorkoutRoutines
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Routine ID"
// @Param assignment body AssignRequest true "Assignment details"
// @Success 200 {object} service.AssignmentView
// @Failure 409 {object} gin.H "Client not linked to this trainer"
// @Router /workout-routines/{id}/assign [post]
func (h *WorkoutRoutineHandler) AssignRoutine(c *gin.Context) {
	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	routineID, ok := parseObjectIDParam(c, "id")
	if !ok {
		return
	}
	clientID, ok := parseObjectIDString(c, req.ClientID, "clientId")
	if !ok {
		return
	}
	trainerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	view, err := h.routineService.AssignRoutine(c.Request.Context(), trainerID, clientID, routineID, req.window())
	if err != nil {
		abortWithAssignmentError(c, err, "Failed to assign routine.")
		return
	}

	c.JSON(http.StatusOK, view)
}

// UnassignRoutine godoc
// @Summary Remove a routine assignment from a client
// @Description The assigning trainer or an admin may unassign.
// @Tags WorkoutRoutines
// @Produce json
// @Security BearerAuth
// @Param id path string true "Routine ID"
// @Param clientId path string true "Client ID"
// @Success 204 "Assignment removed"
// @Router /workout-routines/{id}/assign/{clientId} [delete]
func (h *WorkoutRoutineHandler) UnassignRoutine(c *gin.Context) {
	routineID, ok := parseObjectIDParam(c, "id")
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

	if err := h.routineService.UnassignRoutine(c.Request.Context(), clientID, routineID, requesterID); err != nil {
		abortWithAssignmentError(c, err, "Failed to unassign routine.")
		return
	}

	c.Status(http.StatusNoContent)
}

// GetMyAssignedRoutines godoc
// @Summary List routines assigned to the authenticated client
// @Tags WorkoutRoutines
// @Produce json
// @Security BearerAuth
// @Success 200 {array} service.AssignmentView
// @Router /workout-routines/client/my [get]
func (h *WorkoutRoutineHandler) GetMyAssignedRoutines(c *gin.Context) {
	clientID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	views, err := h.routineService.AssignedToClient(c.Request.Context(), clientID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve assigned routines.")
		return
	}

	c.JSON(http.StatusOK, views)
}

// GetRoutinesIAssigned godoc
// @Summary List assignments issued by the authenticated trainer
// @Tags WorkoutRoutines
// @Produce json
// @Security BearerAuth
// @Success 200 {array} service.AssignmentView
// @Router /workout-routines/trainer/assigned [get]
func (h *WorkoutRoutineHandler) GetRoutinesIAssigned(c *gin.Context) {
	trainerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	views, err := h.routineService.AssignedByTrainer(c.Request.Context(), trainerID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve assignments.")
		return
	}

	c.JSON(http.StatusOK, views)
}
