package handlers

import (
	"strings"

	"medirelay/internal/adapters/persistence/repositories"
	"medirelay/internal/core/services"
	"medirelay/internal/pkg/pagination"
	"medirelay/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ApplicationHandler handles application endpoints
type ApplicationHandler struct {
	applicationService *services.ApplicationService
}

// NewApplicationHandler creates a new application handler
func NewApplicationHandler(applicationService *services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{
		applicationService: applicationService,
	}
}

// ApplyRequest represents an application body
type ApplyRequest struct {
	MissionID    uint     `json:"missionId"`
	CoverLetter  string   `json:"coverLetter"`
	ProposedRate *float64 `json:"proposedRate"`
}

// StatusRequest represents a status change body
type StatusRequest struct {
	Status string `json:"status"`
}

// Apply applies to a mission
// @Summary Apply to a mission
// @Tags Applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ApplyRequest true "Application"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /applications [post]
func (h *ApplicationHandler) Apply(c *fiber.Ctx) error {
	userID, _, ok := currentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req ApplyRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	// POST /missions/:id/applications carries the mission in the path
	if c.Params("id") != "" {
		id, ok := paramID(c, "id")
		if !ok {
			return response.BadRequest(c, "Invalid mission ID")
		}
		req.MissionID = id
	}

	app, err := h.applicationService.Apply(c.Context(), userID, &services.ApplyInput{
		MissionID:    req.MissionID,
		CoverLetter:  req.CoverLetter,
		ProposedRate: req.ProposedRate,
	})
	if err != nil {
		return handleError(c, err, "Failed to apply")
	}

	return response.Created(c, "Application submitted successfully", app)
}

// ListApplications lists the caller's applications
// @Summary List applications
// @Description Doctors see their own applications, employers those to their missions
// @Tags Applications
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, accepted, rejected or withdrawn"
// @Param missionId query int false "Mission ID"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Router /applications [get]
func (h *ApplicationHandler) ListApplications(c *fiber.Ctx) error {
	userID, role, ok := currentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)
	filter := repositories.ApplicationFilter{
		MissionID: queryUint(c, "missionId"),
		Status:    c.Query("status"),
	}

	apps, total, err := h.applicationService.List(c.Context(), userID, role, filter, params)
	if err != nil {
		return handleError(c, err, "Failed to list applications")
	}

	return response.Success(c, "Applications retrieved successfully", pagination.NewResponse(apps, params, total))
}

// ListMissionApplications lists the applications of a mission
// @Summary List applications of a mission
// @Tags Applications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Mission ID"
// @Param status query string false "Application status"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /missions/{id}/applications [get]
func (h *ApplicationHandler) ListMissionApplications(c *fiber.Ctx) error {
	userID, role, ok := currentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	missionID, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid mission ID")
	}

	params := pagination.GetParams(c)
	apps, total, err := h.applicationService.ListForMission(c.Context(), userID, role, missionID, c.Query("status"), params)
	if err != nil {
		return handleError(c, err, "Failed to list applications")
	}

	return response.Success(c, "Applications retrieved successfully", pagination.NewResponse(apps, params, total))
}

// MissionApplicationSummary counts the applications of a mission per status
// @Summary Application counts of a mission
// @Tags Applications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Mission ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /missions/{id}/applications/summary [get]
func (h *ApplicationHandler) MissionApplicationSummary(c *fiber.Ctx) error {
	userID, role, ok := currentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	missionID, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid mission ID")
	}

	summary, err := h.applicationService.StatusSummary(c.Context(), userID, role, missionID)
	if err != nil {
		return handleError(c, err, "Failed to count applications")
	}

	return response.Success(c, "Application summary retrieved successfully", summary)
}

// RespondApplication accepts or rejects an application
// @Summary Answer an application
// @Description Mission owner only; accepting rejects the other pending applications and starts the mission
// @Tags Applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Param body body StatusRequest true "accepted or rejected"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /applications/{id} [put]
func (h *ApplicationHandler) RespondApplication(c *fiber.Ctx) error {
	userID, _, ok := currentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid application ID")
	}

	// ownership is checked before the body is; a malformed body reads as an empty status
	var req StatusRequest
	_ = c.BodyParser(&req)

	app, err := h.applicationService.Respond(c.Context(), userID, id, strings.TrimSpace(req.Status))
	if err != nil {
		return handleError(c, err, "Failed to update application")
	}

	return response.Success(c, "Application updated successfully", app)
}

// WithdrawApplication withdraws a pending application
// @Summary Withdraw an application
// @Tags Applications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /applications/{id} [delete]
func (h *ApplicationHandler) WithdrawApplication(c *fiber.Ctx) error {
	userID, _, ok := currentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid application ID")
	}

	app, err := h.applicationService.Withdraw(c.Context(), userID, id)
	if err != nil {
		return handleError(c, err, "Failed to withdraw application")
	}

	return response.Success(c, "Application withdrawn successfully", app)
}
