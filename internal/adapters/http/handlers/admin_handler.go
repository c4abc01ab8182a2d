package handlers

import (
	"fmt"
	"strings"
	"time"

	"medirelay/internal/adapters/persistence/repositories"
	"medirelay/internal/core/domain"
	"medirelay/internal/core/services"
	"medirelay/internal/pkg/pagination"
	"medirelay/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler handles user moderation endpoints (Admin only)
type AdminHandler struct {
	adminService *services.AdminService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminService *services.AdminService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
	}
}

// ProfileStatusRequest represents a profile moderation body
type ProfileStatusRequest struct {
	ProfileStatus string `json:"profile_status"`
	Status        string `json:"status"`
	Reason        string `json:"reason"`
}

// ReasonRequest represents an optional moderation reason
type ReasonRequest struct {
	Reason string `json:"reason"`
}

// ActiveRequest represents an enable/disable body
type ActiveRequest struct {
	IsActive *bool `json:"isActive"`
}

// ListUsers lists users
// @Summary List users
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param role query string false "replacement, employer or admin"
// @Param profileStatus query string false "pending, approved or rejected"
// @Param isActive query bool false "Active flag"
// @Param q query string false "Email or name substring"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	isActive, err := queryBool(c, "isActive")
	if err != nil {
		return response.BadRequest(c, "Invalid isActive flag")
	}

	params := pagination.GetParams(c)
	filter := repositories.UserFilter{
		Role:          c.Query("role"),
		ProfileStatus: c.Query("profileStatus"),
		IsActive:      isActive,
		Query:         c.Query("q"),
	}

	users, total, err := h.adminService.ListUsers(c.Context(), filter, params)
	if err != nil {
		return handleError(c, err, "Failed to list users")
	}

	return response.Success(c, "Users retrieved successfully", pagination.NewResponse(users, params, total))
}

// GetUser returns a user with profile and documents
// @Summary Get user
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/users/{id} [get]
func (h *AdminHandler) GetUser(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid user ID")
	}

	view, err := h.adminService.GetUser(c.Context(), id)
	if err != nil {
		return handleError(c, err, "Failed to get user")
	}

	return response.Success(c, "User retrieved successfully", view)
}

// SetProfileStatus moderates a user's professional profile
// @Summary Set profile status
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param body body ProfileStatusRequest true "pending, approved or rejected"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/users/{id}/status [put]
func (h *AdminHandler) SetProfileStatus(c *fiber.Ctx) error {
	var req ProfileStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	status := req.ProfileStatus
	if status == "" {
		status = req.Status
	}
	return h.setProfileStatus(c, strings.TrimSpace(status), req.Reason)
}

// ApproveUser approves a user's profile
// @Summary Approve profile
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/users/{id}/approve [post]
func (h *AdminHandler) ApproveUser(c *fiber.Ctx) error {
	return h.setProfileStatus(c, string(domain.ProfileApproved), "")
}

// RejectUser rejects a user's profile
// @Summary Reject profile
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param body body ReasonRequest false "Reason"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/users/{id}/reject [post]
func (h *AdminHandler) RejectUser(c *fiber.Ctx) error {
	var req ReasonRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return response.BadRequest(c, "Invalid request body")
		}
	}
	return h.setProfileStatus(c, string(domain.ProfileRejected), req.Reason)
}

func (h *AdminHandler) setProfileStatus(c *fiber.Ctx, status, reason string) error {
	adminID, _, ok := currentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid user ID")
	}

	user, err := h.adminService.SetProfileStatus(c.Context(), adminID, id, status, reason)
	if err != nil {
		return handleError(c, err, "Failed to update profile status")
	}

	return response.Success(c, "Profile status updated successfully", user)
}

// SetActive enables or disables a user
// @Summary Enable or disable a user
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param body body ActiveRequest true "Active flag"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/users/{id}/active [put]
func (h *AdminHandler) SetActive(c *fiber.Ctx) error {
	adminID, _, ok := currentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid user ID")
	}

	var req ActiveRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.IsActive == nil {
		return response.BadRequest(c, "isActive is required")
	}

	user, err := h.adminService.SetActive(c.Context(), adminID, id, *req.IsActive)
	if err != nil {
		return handleError(c, err, "Failed to update user")
	}

	return response.Success(c, "User updated successfully", user)
}

// ExportUsers downloads every user as an Excel workbook
// @Summary Export users (XLSX)
// @Tags Admin
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Success 200 {file} file
// @Router /admin/users/export [get]
func (h *AdminHandler) ExportUsers(c *fiber.Ctx) error {
	data, err := h.adminService.ExportUsers(c.Context())
	if err != nil {
		return handleError(c, err, "Failed to export users")
	}

	filename := fmt.Sprintf("users-%s.xlsx", time.Now().Format("20060102"))
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(data)
}
