package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Sallvainian/teaching-tools-api/internal/models"
	"github.com/Sallvainian/teaching-tools-api/internal/service"
	appErrors "github.com/Sallvainian/teaching-tools-api/pkg/errors"
	"github.com/Sallvainian/teaching-tools-api/pkg/response"
)

type sharingService interface {
	GetEffectivePermission(ctx context.Context, fileID, userID string) models.EffectivePermission
	ShareFile(ctx context.Context, req service.ShareFileRequest, currentUserID string) (*models.PermissionGrant, error)
	GetFilePermissions(ctx context.Context, fileID string) []models.PermissionGrantDetail
	RemovePermission(ctx context.Context, permissionID, currentUserID string) error
	GetAvailableClasses(ctx context.Context, userID string) ([]models.ClassContext, error)
	GetSharedWithUser(ctx context.Context, userID string) ([]models.SharedFile, error)
	ExportFilePermissions(ctx context.Context, fileID, currentUserID, format string) ([]byte, string, error)
}

// SharingHandler exposes file-sharing endpoints.
type SharingHandler struct {
	sharing sharingService
}

// NewSharingHandler constructs SharingHandler.
func NewSharingHandler(sharing sharingService) *SharingHandler {
	return &SharingHandler{sharing: sharing}
}

// MyPermission godoc
// @Summary Resolve the caller's effective permission on a file
// @Tags Sharing
// @Produce json
// @Param id path string true "File ID"
// @Success 200 {object} response.Envelope
// @Router /files/{id}/permission [get]
func (h *SharingHandler) MyPermission(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	effective := h.sharing.GetEffectivePermission(c.Request.Context(), c.Param("id"), claims.UserID)
	response.JSON(c, http.StatusOK, effective, nil)
}

// Share godoc
// @Summary Share a file with a user, class or role
// @Tags Sharing
// @Accept json
// @Produce json
// @Param id path string true "File ID"
// @Param payload body service.ShareFileRequest true "Share payload"
// @Success 201 {object} response.Envelope
// @Router /files/{id}/share [post]
func (h *SharingHandler) Share(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.ShareFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	req.FileID = c.Param("id")
	grant, err := h.sharing.ShareFile(c.Request.Context(), req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, grant)
}

// List godoc
// @Summary List all grants on a file
// @Tags Sharing
// @Produce json
// @Param id path string true "File ID"
// @Success 200 {object} response.Envelope
// @Router /files/{id}/permissions [get]
func (h *SharingHandler) List(c *gin.Context) {
	details := h.sharing.GetFilePermissions(c.Request.Context(), c.Param("id"))
	response.JSON(c, http.StatusOK, details, nil)
}

// Export godoc
// @Summary Export the grant list for a file
// @Tags Sharing
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "File ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {string} string "export payload"
// @Router /files/{id}/permissions/export [get]
func (h *SharingHandler) Export(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	fileID := c.Param("id")
	format := c.DefaultQuery("format", "csv")
	payload, contentType, err := h.sharing.ExportFilePermissions(c.Request.Context(), fileID, claims.UserID, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := fmt.Sprintf("sharing-%s.%s", fileID, format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, payload)
}

// Remove godoc
// @Summary Remove a sharing grant
// @Tags Sharing
// @Produce json
// @Param id path string true "Permission ID"
// @Success 204 {string} string "removed"
// @Router /permissions/{id} [delete]
func (h *SharingHandler) Remove(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.sharing.RemovePermission(c.Request.Context(), c.Param("id"), claims.UserID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// SharedWithMe godoc
// @Summary List files shared directly with the caller
// @Tags Sharing
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /shared-with-me [get]
func (h *SharingHandler) SharedWithMe(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	files, err := h.sharing.GetSharedWithUser(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, files, nil)
}

// AvailableClasses godoc
// @Summary List classes the caller can share into
// @Tags Sharing
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /classes/available [get]
func (h *SharingHandler) AvailableClasses(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	classes, err := h.sharing.GetAvailableClasses(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classes, nil)
}
