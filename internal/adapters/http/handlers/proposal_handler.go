package handlers

import (
	"strings"

	"medirelay/internal/adapters/persistence/repositories"
	"medirelay/internal/core/services"
	"medirelay/internal/pkg/pagination"
	"medirelay/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ProposalHandler handles proposal endpoints
type ProposalHandler struct {
	proposalService *services.ProposalService
}

// NewProposalHandler creates a new proposal handler
func NewProposalHandler(proposalService *services.ProposalService) *ProposalHandler {
	return &ProposalHandler{
		proposalService: proposalService,
	}
}

// ProposalRequest represents a proposal body
type ProposalRequest struct {
	MissionID     uint     `json:"missionId"`
	ReplacementID uint     `json:"replacementId"`
	Message       string   `json:"message"`
	ProposedRate  *float64 `json:"proposedRate"`
}

// CreateProposal sends a mission offer to a doctor
// @Summary Send a proposal
// @Tags Proposals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ProposalRequest true "Proposal"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /proposals [post]
func (h *ProposalHandler) CreateProposal(c *fiber.Ctx) error {
	userID, _, ok := currentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req ProposalRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	proposal, err := h.proposalService.Create(c.Context(), userID, &services.ProposalInput{
		MissionID:     req.MissionID,
		ReplacementID: req.ReplacementID,
		Message:       req.Message,
		ProposedRate:  req.ProposedRate,
	})
	if err != nil {
		return handleError(c, err, "Failed to send proposal")
	}

	return response.Created(c, "Proposal sent successfully", proposal)
}

// ListProposals lists received or sent proposals
// @Summary List proposals
// @Tags Proposals
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, accepted or rejected"
// @Param missionId query int false "Mission ID"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Router /proposals [get]
func (h *ProposalHandler) ListProposals(c *fiber.Ctx) error {
	userID, role, ok := currentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)
	filter := repositories.ProposalFilter{
		MissionID: queryUint(c, "missionId"),
		Status:    c.Query("status"),
	}

	proposals, total, err := h.proposalService.List(c.Context(), userID, role, filter, params)
	if err != nil {
		return handleError(c, err, "Failed to list proposals")
	}

	return response.Success(c, "Proposals retrieved successfully", pagination.NewResponse(proposals, params, total))
}

// RespondProposal accepts or rejects a proposal
// @Summary Answer a proposal
// @Tags Proposals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Proposal ID"
// @Param body body StatusRequest true "accepted or rejected"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /proposals/{id} [put]
func (h *ProposalHandler) RespondProposal(c *fiber.Ctx) error {
	userID, _, ok := currentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid proposal ID")
	}

	var req StatusRequest
	_ = c.BodyParser(&req)

	proposal, err := h.proposalService.Respond(c.Context(), userID, id, strings.TrimSpace(req.Status))
	if err != nil {
		return handleError(c, err, "Failed to update proposal")
	}

	return response.Success(c, "Proposal updated successfully", proposal)
}
