package api

import (
	"errors"
	"net/http"

	"nutriplat/coaching-api/internal/domain"
	"nutriplat/coaching-api/internal/service"

	"github.com/gin-gonic/gin"
)

// UserHandler exposes profile, directory, linking and admin endpoints.
type UserHandler struct {
	userService service.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// --- DTOs ---

type UpdateProfileRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
}

type UpdateRoleRequest struct {
	Role domain.Role `json:"role" binding:"required,oneof=client nutritionist trainer admin"`
}

// --- Profile ---

// GetMe godoc
// @Summary Get the authenticated user's profile
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Router /users/me [get]
func (h *UserHandler) GetMe(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	user, err := h.userService.GetUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			abortWithError(c, http.StatusNotFound, "User not found.")
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve profile.")
		}
		return
	}

	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// UpdateMe godoc
// @Summary Update the authenticated user's profile
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param profile body UpdateProfileRequest true "Profile fields"
// @Success 200 {object} UserResponse
// @Router /users/me [put]
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), userID, req.FirstName, req.LastName)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			abortWithError(c, http.StatusNotFound, "User not found.")
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to update profile.")
		}
		return
	}

	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// GetUserByID godoc
// @Summary Get a user by ID
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} UserResponse
// @Router /users/{id} [get]
func (h *UserHandler) GetUserByID(c *gin.Context) {
	id, ok := parseObjectIDParam(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.GetUser(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			abortWithError(c, http.StatusNotFound, "User not found.")
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve user.")
		}
		return
	}

	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// GetClients godoc
// @Summary List all client users
// @Description Directory of clients, available to professionals and admins.
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} UserResponse
// @Router /users/clients [get]
func (h *UserHandler) GetClients(c *gin.Context) {
	clients, err := h.userService.GetClients(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve clients.")
		return
	}
	c.JSON(http.StatusOK, MapUsersToResponse(clients))
}

// --- Linking ---

// LinkClient godoc
// @Summary Link a client to the authenticated professional
// @Description Claims the client's matching slot. Fails if the slot is held by another professional.
// @Tags Linking
// @Produce json
// @Security BearerAuth
// @Param clientId path string true "Client ID"
// @Success 204 "Linked"
// @Failure 403 {object} gin.H "Role not allowed"
// @Failure 404 {object} gin.H "Client not found"
// @Failure 409 {object} gin.H "Client already linked to another professional"
// @Router /users/me/clients/{clientId}/link [post]
func (h *UserHandler) LinkClient(c *gin.Context) {
	professionalID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	role, err := getUserRoleFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify role from token.")
		return
	}
	clientID, ok := parseObjectIDParam(c, "clientId")
	if !ok {
		return
	}

	err = h.userService.Link(c.Request.Context(), professionalID, clientID, role)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			abortWithError(c, http.StatusNotFound, "Client not found.")
		} else if errors.Is(err, service.ErrRoleDenied) {
			abortWithError(c, http.StatusForbidden, err.Error())
		} else if errors.Is(err, service.ErrAlreadyLinkedElsewhere) {
			abortWithError(c, http.StatusConflict, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to link client.")
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// UnlinkClient godoc
// @Summary Unlink a client from the authenticated professional
// @Tags Linking
// @Produce json
// @Security BearerAuth
// @Param clientId path string true "Client ID"
// @Success 204 "Unlinked"
// @Failure 409 {object} gin.H "Client is not linked to this professional"
// @Router /users/me/clients/{clientId}/link [delete]
func (h *UserHandler) UnlinkClient(c *gin.Context) {
	professionalID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	role, err := getUserRoleFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify role from token.")
		return
	}
	clientID, ok := parseObjectIDParam(c, "clientId")
	if !ok {
		return
	}

	err = h.userService.Unlink(c.Request.Context(), professionalID, clientID, role)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			abortWithError(c, http.StatusNotFound, "Client not found.")
		} else if errors.Is(err, service.ErrRoleDenied) {
			abortWithError(c, http.StatusForbidden, err.Error())
		} else if errors.Is(err, service.ErrNotLinked) {
			abortWithError(c, http.StatusConflict, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to unlink client.")
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// GetMyClients godoc
// @Summary List clients linked to the authenticated professional
// @Tags Linking
// @Produce json
// @Security BearerAuth
// @Success 200 {array} UserResponse
// @Router /users/me/clients [get]
func (h *UserHandler) GetMyClients(c *gin.Context) {
	professionalID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	role, err := getUserRoleFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify role from token.")
		return
	}

	clients, err := h.userService.LinkedClients(c.Request.Context(), professionalID, role)
	if err != nil {
		if errors.Is(err, service.ErrRoleDenied) {
			abortWithError(c, http.StatusForbidden, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve linked clients.")
		}
		return
	}

	c.JSON(http.StatusOK, MapUsersToResponse(clients))
}

// GetMyNutritionist godoc
// @Summary Get the professional linked to the authenticated client's nutritionist slot
// @Tags Linking
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Failure 404 {object} gin.H "No nutritionist linked"
// @Router /users/me/nutritionist [get]
func (h *UserHandler) GetMyNutritionist(c *gin.Context) {
	h.getLinkedProfessional(c, domain.RoleNutritionist)
}

// GetMyTrainer godoc
// @Summary Get the professional linked to the authenticated client's trainer slot
// @Tags Linking
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Failure 404 {object} gin.H "No trainer linked"
// @Router /users/me/trainer [get]
func (h *UserHandler) GetMyTrainer(c *gin.Context) {
	h.getLinkedProfessional(c, domain.RoleTrainer)
}

func (h *UserHandler) getLinkedProfessional(c *gin.Context, slot domain.Role) {
	clientID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	professional, err := h.userService.LinkedProfessional(c.Request.Context(), clientID, slot)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			abortWithError(c, http.StatusNotFound, "No professional linked.")
		} else if errors.Is(err, service.ErrRoleDenied) {
			abortWithError(c, http.StatusForbidden, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve linked professional.")
		}
		return
	}

	c.JSON(http.StatusOK, MapUserToResponse(professional))
}

// --- Admin ---

// GetAllUsers godoc
// @Summary List all users (admin only)
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} UserResponse
// @Router /users/admin/users [get]
func (h *UserHandler) GetAllUsers(c *gin.Context) {
	users, err := h.userService.GetAllUsers(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve users.")
		return
	}
	c.JSON(http.StatusOK, MapUsersToResponse(users))
}

// UpdateUserRole godoc
// @Summary Change a user's role (admin only)
// @Description Demoting a professional clears their slot on every linked client.
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param role body UpdateRoleRequest true "New role"
// @Success 204 "Role updated"
// @Router /users/admin/users/{id}/role [put]
func (h *UserHandler) UpdateUserRole(c *gin.Context) {
	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	id, ok := parseObjectIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.userService.UpdateUserRole(c.Request.Context(), id, req.Role); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			abortWithError(c, http.StatusNotFound, "User not found.")
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to update role.")
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// DeleteUser godoc
// @Summary Delete a user (admin only)
// @Description Deleting a professional clears their slot on linked clients; deleting a client removes their assignments and progress entries.
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 204 "User deleted"
// @Router /users/admin/users/{id} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := parseObjectIDParam(c, "id")
	if !ok {
		return
	}
	adminID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	if err := h.userService.DeleteUser(c.Request.Context(), id, adminID); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			abortWithError(c, http.StatusNotFound, "User not found.")
		} else if errors.Is(err, service.ErrSelfDeletion) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to delete user.")
		}
		return
	}

	c.Status(http.StatusNoContent)
}
