package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Sallvainian/teaching-tools-api/internal/service"
	"github.com/Sallvainian/teaching-tools-api/pkg/response"
)

type grantPurger interface {
	PurgeExpiredGrants(ctx context.Context) (int64, error)
}

// MaintenanceHandler exposes admin-only housekeeping endpoints.
type MaintenanceHandler struct {
	purger  grantPurger
	metrics *service.MetricsService
}

// NewMaintenanceHandler constructs MaintenanceHandler.
func NewMaintenanceHandler(purger grantPurger, metrics *service.MetricsService) *MaintenanceHandler {
	return &MaintenanceHandler{purger: purger, metrics: metrics}
}

// PurgeExpired godoc
// @Summary Delete expired sharing grants now
// @Tags Maintenance
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /maintenance/purge-expired [post]
func (h *MaintenanceHandler) PurgeExpired(c *gin.Context) {
	removed, err := h.purger.PurgeExpiredGrants(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.AddGrantsPurged(removed)
	}
	response.JSON(c, http.StatusOK, gin.H{"removed": removed}, nil)
}
