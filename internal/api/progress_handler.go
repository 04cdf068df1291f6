package api

import (
	"errors"
	"net/http"
	"time"

	"nutriplat/coaching-api/internal/domain"
	"nutriplat/coaching-api/internal/service"

	"github.com/gin-gonic/gin"
)

// ProgressHandler exposes progress entry and photo endpoints.
type ProgressHandler struct {
	progressService service.ProgressService
}

// NewProgressHandler creates a new ProgressHandler.
func NewProgressHandler(progressService service.ProgressService) *ProgressHandler {
	return &ProgressHandler{progressService: progressService}
}

// --- DTOs ---

type ProgressEntryRequest struct {
	EntryDate         time.Time           `json:"entryDate" binding:"required"`
	WeightKg          *float64            `json:"weightKg"`
	BodyFatPercentage *float64            `json:"bodyFatPercentage"`
	Measurements      domain.Measurements `json:"measurements"`
	Notes             string              `json:"notes"`
}

func (r *ProgressEntryRequest) input() service.ProgressEntryInput {
	return service.ProgressEntryInput{
		EntryDate:         r.EntryDate,
		WeightKg:          r.WeightKg,
		BodyFatPercentage: r.BodyFatPercentage,
		Measurements:      r.Measurements,
		Notes:             r.Notes,
	}
}

type PhotoUploadRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

type AttachPhotoRequest struct {
	ObjectKey string `json:"objectKey" binding:"required"`
}

func abortWithProgressError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrRoleDenied), errors.Is(err, service.ErrOwnershipDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, fallback)
	}
}

// --- Handler Methods ---

// CreateEntry godoc
// @Summary Record a progress entry
// @Description Clients record their own progress; professionals get read access via linking.
// @Tags Progress
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param entry body ProgressEntryRequest true "Progress entry"
// @Success 201 {object} domain.ProgressEntry
// @Router /progress [post]
func (h *ProgressHandler) CreateEntry(c *gin.Context) {
	var req ProgressEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	clientID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	entry, err := h.progressService.CreateEntry(c.Request.Context(), clientID, req.input())
	if err != nil {
		if errors.Is(err, service.ErrRoleDenied) {
			abortWithError(c, http.StatusForbidden, err.Error())
		} else if errors.Is(err, service.ErrNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			// Validation errors from the domain surface here.
			abortWithError(c, http.StatusBadRequest, err.Error())
		}
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// GetMyEntries godoc
// @Summary List the authenticated client's progress entries
// @Tags Progress
// @Produce json
// @Security BearerAuth
// @Success 200 {array} service.ProgressEntryView
// @Router /progress/my [get]
func (h *ProgressHandler) GetMyEntries(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	views, err := h.progressService.GetClientEntries(c.Request.Context(), userID, userID)
	if err != nil {
		abortWithProgressError(c, err, "Failed to retrieve progress entries.")
		return
	}

	c.JSON(http.StatusOK, views)
}

// GetClientEntries godoc
// @Summary List a client's progress entries
// @Description Readable by the client, a currently linked professional, or an admin.
// @Tags Progress
// @Produce json
// @Security BearerAuth
// @Param clientId path string true "Client ID"
// @Success 200 {array} service.ProgressEntryView
// @Failure 403 {object} gin.H "Not linked to this client"
// @Router /progress/client/{clientId} [get]
func (h *ProgressHandler) GetClientEntries(c *gin.Context) {
	clientID, ok := parseObjectIDParam(c, "clientId")
	if !ok {
		return
	}
	requesterID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	views, err := h.progressService.GetClientEntries(c.Request.Context(), clientID, requesterID)
	if err != nil {
		abortWithProgressError(c, err, "Failed to retrieve progress entries.")
		return
	}

	c.JSON(http.StatusOK, views)
}

// GetEntry godoc
// @Summary Get a single progress entry
// @Tags Progress
// @Produce json
// @Security BearerAuth
// @Param id path string true "Entry ID"
// @Success 200 {object} service.ProgressEntryView
// @Router /progress/{id} [get]
func (h *ProgressHandler) GetEntry(c *gin.Context) {
	entryID, ok := parseObjectIDParam(c, "id")
	if !ok {
		return
	}
	requesterID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	view, err := h.progressService.GetEntry(c.Request.Context(), entryID, requesterID)
	if err != nil {
		abortWithProgressError(c, err, "Failed to retrieve progress entry.")
		return
	}

	c.JSON(http.StatusOK, view)
}

// UpdateEntry godoc
// @Summary Update a progress entry
// @Description Only the owning client may update. Photos are managed separately.
// @Tags Progress
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Entry ID"
// @Param entry body ProgressEntryRequest true "Progress entry"
// @Success 200 {object} domain.ProgressEntry
// @Router /progress/{id} [put]
func (h *ProgressHandler) UpdateEntry(c *gin.Context) {
	var req ProgressEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	entryID, ok := parseObjectIDParam(c, "id")
	if !ok {
		return
	}
	requesterID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	entry, err := h.progressService.UpdateEntry(c.Request.Context(), entryID, requesterID, req.input())
	if err != nil {
		if errors.Is(err, service.ErrNotFound) ||
			errors.Is(err, service.ErrRoleDenied) ||
			errors.Is(err, service.ErrOwnershipDenied) {
			abortWithProgressError(c, err, "")
		} else {
			abortWithError(c, http.StatusBadRequest, err.Error())
		}
		return
	}

	c.JSON(http.StatusOK, entry)
}

// DeleteEntry godoc
// @Summary Delete a progress entry
// @Description The owning client or an admin may delete. Stored photos are removed as well.
// @Tags Progress
// @Produce json
// @Security BearerAuth
// @Param id path string true "Entry ID"
// @Success 204 "Entry deleted"
// @Router /progress/{id} [delete]
func (h *ProgressHandler) DeleteEntry(c *gin.Context) {
	entryID, ok := parseObjectIDParam(c, "id")
	if !ok {
		return
	}
	requesterID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	if err := h.progressService.DeleteEntry(c.Request.Context(), entryID, requesterID); err != nil {
		abortWithProgressError(c, err, "Failed to delete progress entry.")
		return
	}

	c.Status(http.StatusNoContent)
}

// RequestPhotoUpload godoc
// @Summary Request a presigned upload URL for a progress photo
// @Description Returns an object key and a presigned PUT URL. The client uploads directly to storage, then attaches the key to an entry.
// @Tags Progress
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param upload body PhotoUploadRequest true "Content type of the photo"
// @Success 200 {object} service.PhotoUpload
// @Router /progress/photos/upload-url [post]
func (h *ProgressHandler) RequestPhotoUpload(c *gin.Context) {
	var req PhotoUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	clientID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	upload, err := h.progressService.RequestPhotoUpload(c.Request.Context(), clientID, req.ContentType)
	if err != nil {
		abortWithProgressError(c, err, "Failed to generate upload URL.")
		return
	}

	c.JSON(http.StatusOK, upload)
}

// AttachPhoto godoc
// @Summary Attach an uploaded photo to a progress entry
// @Tags Progress
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Entry ID"
// @Param photo body AttachPhotoRequest true "Uploaded object key"
// @Success 200 {object} domain.ProgressEntry
// @Router /progress/{id}/photos [post]
func (h *ProgressHandler) AttachPhoto(c *gin.Context) {
	var req AttachPhotoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	entryID, ok := parseObjectIDParam(c, "id")
	if !ok {
		return
	}
	requesterID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	entry, err := h.progressService.AttachPhoto(c.Request.Context(), entryID, requesterID, req.ObjectKey)
	if err != nil {
		abortWithProgressError(c, err, "Failed to attach photo.")
		return
	}

	c.JSON(http.StatusOK, entry)
}
