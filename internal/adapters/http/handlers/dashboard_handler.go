package handlers

import (
	"medirelay/internal/core/services"
	"medirelay/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DashboardHandler handles dashboard endpoints
type DashboardHandler struct {
	dashboardService *services.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
	}
}

// GetAdminStats returns platform counters
// @Summary Admin statistics
// @Description Users, profiles, missions, applications, proposals and documents by status (Admin only)
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /admin/stats [get]
func (h *DashboardHandler) GetAdminStats(c *fiber.Ctx) error {
	stats, err := h.dashboardService.GetAdminStats(c.Context())
	if err != nil {
		return handleError(c, err, "Failed to get statistics")
	}

	return response.Success(c, "Statistics retrieved successfully", stats)
}
