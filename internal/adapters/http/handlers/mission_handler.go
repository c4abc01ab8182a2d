package handlers

import (
	"strings"

	"medirelay/internal/adapters/persistence/repositories"
	"medirelay/internal/core/services"
	"medirelay/internal/pkg/pagination"
	"medirelay/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// MissionHandler handles mission endpoints
type MissionHandler struct {
	missionService *services.MissionService
}

// NewMissionHandler creates a new mission handler
func NewMissionHandler(missionService *services.MissionService) *MissionHandler {
	return &MissionHandler{
		missionService: missionService,
	}
}

// MissionRequest represents a mission body (create and full update)
type MissionRequest struct {
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	SpecialtyRequired string   `json:"specialtyRequired"`
	Location          string   `json:"location"`
	StartDate         string   `json:"startDate"`
	EndDate           string   `json:"endDate"`
	Rate              *float64 `json:"rate"`
	RateUnit          string   `json:"rateUnit"`
	IsUrgent          bool     `json:"isUrgent"`
	MissionType       string   `json:"missionType"`
	Status            string   `json:"status"`
}

func (r *MissionRequest) toInput() (*services.MissionInput, string) {
	start, err := parseDate(strings.TrimSpace(r.StartDate))
	if err != nil {
		return nil, "Invalid startDate"
	}
	end, err := parseDate(strings.TrimSpace(r.EndDate))
	if err != nil {
		return nil, "Invalid endDate"
	}

	return &services.MissionInput{
		Title:             r.Title,
		Description:       r.Description,
		SpecialtyRequired: r.SpecialtyRequired,
		Location:          r.Location,
		StartDate:         start,
		EndDate:           end,
		Rate:              r.Rate,
		RateUnit:          r.RateUnit,
		IsUrgent:          r.IsUrgent,
		MissionType:       r.MissionType,
		Status:            strings.TrimSpace(r.Status),
	}, ""
}

// missionFilter reads the listing filter from the query string
func missionFilter(c *fiber.Ctx) (repositories.MissionFilter, string) {
	filter := repositories.MissionFilter{
		Status:      c.Query("status"),
		Specialty:   c.Query("specialty"),
		Location:    c.Query("location"),
		MissionType: c.Query("missionType"),
		Query:       c.Query("q"),
		EmployerID:  queryUint(c, "employerId"),
	}

	var err error
	if filter.StartDate, err = parseDate(c.Query("startDate")); err != nil {
		return filter, "Invalid startDate"
	}
	if filter.EndDate, err = parseDate(c.Query("endDate")); err != nil {
		return filter, "Invalid endDate"
	}
	if filter.MinRate, err = queryFloat(c, "minRate"); err != nil {
		return filter, "Invalid minRate"
	}
	if filter.MaxRate, err = queryFloat(c, "maxRate"); err != nil {
		return filter, "Invalid maxRate"
	}
	if filter.IsUrgent, err = queryBool(c, "isUrgent"); err != nil {
		return filter, "Invalid isUrgent"
	}
	return filter, ""
}

// ListMissions lists missions
// @Summary List missions
// @Description Filter missions; urgent first, then newest
// @Tags Missions
// @Produce json
// @Param status query string false "open, in_progress, completed or cancelled"
// @Param specialty query string false "Specialty"
// @Param location query string false "Location substring"
// @Param startDate query string false "Start on or after (YYYY-MM-DD)"
// @Param endDate query string false "End on or before (YYYY-MM-DD)"
// @Param minRate query number false "Minimum rate"
// @Param maxRate query number false "Maximum rate"
// @Param isUrgent query bool false "Urgent only"
// @Param missionType query string false "Mission type"
// @Param q query string false "Title or description substring"
// @Param employerId query int false "Employer ID"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /missions [get]
func (h *MissionHandler) ListMissions(c *fiber.Ctx) error {
	filter, msg := missionFilter(c)
	if msg != "" {
		return response.BadRequest(c, msg)
	}
	params := pagination.GetParams(c)

	missions, total, err := h.missionService.List(c.Context(), filter, params)
	if err != nil {
		return handleError(c, err, "Failed to list missions")
	}

	return response.Success(c, "Missions retrieved successfully", pagination.NewResponse(missions, params, total))
}

// ListMyMissions lists the employer's own missions with application counts
// @Summary List own missions
// @Tags Missions
// @Produce json
// @Security BearerAuth
// @Param status query string false "Mission status"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Router /missions/mine [get]
func (h *MissionHandler) ListMyMissions(c *fiber.Ctx) error {
	userID, _, ok := currentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	filter, msg := missionFilter(c)
	if msg != "" {
		return response.BadRequest(c, msg)
	}
	params := pagination.GetParams(c)

	missions, total, err := h.missionService.ListMine(c.Context(), userID, filter, params)
	if err != nil {
		return handleError(c, err, "Failed to list missions")
	}

	return response.Success(c, "Missions retrieved successfully", pagination.NewResponse(missions, params, total))
}

// GetMission returns one mission
// @Summary Get mission
// @Tags Missions
// @Produce json
// @Param id path int true "Mission ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /missions/{id} [get]
func (h *MissionHandler) GetMission(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid mission ID")
	}

	mission, err := h.missionService.Get(c.Context(), id)
	if err != nil {
		return handleError(c, err, "Failed to get mission")
	}

	return response.Success(c, "Mission retrieved successfully", mission)
}

// CreateMission creates a mission
// @Summary Create mission
// @Tags Missions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body MissionRequest true "Mission"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /missions [post]
func (h *MissionHandler) CreateMission(c *fiber.Ctx) error {
	userID, _, ok := currentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req MissionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	input, msg := req.toInput()
	if msg != "" {
		return response.BadRequest(c, msg)
	}

	mission, err := h.missionService.Create(c.Context(), userID, input)
	if err != nil {
		return handleError(c, err, "Failed to create mission")
	}

	return response.Created(c, "Mission created successfully", mission)
}

// UpdateMission replaces a mission. status may only move open|in_progress -> cancelled or in_progress -> completed
// @Summary Update mission
// @Tags Missions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Mission ID"
// @Param body body MissionRequest true "Mission"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /missions/{id} [put]
func (h *MissionHandler) UpdateMission(c *fiber.Ctx) error {
	userID, _, ok := currentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid mission ID")
	}

	var req MissionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	input, msg := req.toInput()
	if msg != "" {
		return response.BadRequest(c, msg)
	}

	mission, err := h.missionService.Update(c.Context(), userID, id, input)
	if err != nil {
		return handleError(c, err, "Failed to update mission")
	}

	return response.Success(c, "Mission updated successfully", mission)
}

// DeleteMission deletes a mission with its applications and proposals
// @Summary Delete mission
// @Tags Missions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Mission ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /missions/{id} [delete]
func (h *MissionHandler) DeleteMission(c *fiber.Ctx) error {
	userID, _, ok := currentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid mission ID")
	}

	if err := h.missionService.Delete(c.Context(), userID, id); err != nil {
		return handleError(c, err, "Failed to delete mission")
	}

	return response.Success(c, "Mission deleted successfully", nil)
}
