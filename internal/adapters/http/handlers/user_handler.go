package handlers

import (
	"medirelay/internal/adapters/persistence/repositories"
	"medirelay/internal/core/services"
	"medirelay/internal/pkg/pagination"
	"medirelay/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles profile, CV and directory endpoints
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// UpdateProfileRequest represents profile update body; omitted fields are unchanged
type UpdateProfileRequest struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`

	Specialty       *string  `json:"specialty"`
	Location        *string  `json:"location"`
	ExperienceYears *int     `json:"experienceYears"`
	Bio             *string  `json:"bio"`
	Languages       []string `json:"languages"`
	HourlyRate      *float64 `json:"hourlyRate"`
	DailyRate       *float64 `json:"dailyRate"`
	AvailableFrom   *string  `json:"availableFrom"`
	AvailableTo     *string  `json:"availableTo"`

	OrganizationName *string `json:"organizationName"`
	OrganizationType *string `json:"organizationType"`
	Address          *string `json:"address"`
	City             *string `json:"city"`
	PostalCode       *string `json:"postalCode"`
	Siret            *string `json:"siret"`
	Description      *string `json:"description"`
}

// ExperienceRequest represents an experience body
type ExperienceRequest struct {
	Title         *string `json:"title"`
	Establishment *string `json:"establishment"`
	Location      *string `json:"location"`
	StartDate     *string `json:"startDate"`
	EndDate       *string `json:"endDate"`
	Description   *string `json:"description"`
}

// DiplomaRequest represents a diploma body
type DiplomaRequest struct {
	Title       string `json:"title"`
	Institution string `json:"institution"`
	Year        int    `json:"year"`
	Description string `json:"description"`
}

// GetProfile returns the current user's profile
// @Summary Get own profile
// @Description User, role profile, CV entries and documents
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /users/profile [get]
func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	userID, _, ok := currentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	profile, err := h.userService.GetProfile(c.Context(), userID)
	if err != nil {
		return handleError(c, err, "Failed to get profile")
	}

	return response.Success(c, "Profile retrieved successfully", profile)
}

// UpdateProfile updates the current user's profile
// @Summary Update own profile
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body UpdateProfileRequest true "Profile fields"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /users/profile [put]
func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, _, ok := currentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	input := &services.UpdateProfileInput{
		Name:             req.Name,
		Phone:            req.Phone,
		Specialty:        req.Specialty,
		Location:         req.Location,
		ExperienceYears:  req.ExperienceYears,
		Bio:              req.Bio,
		Languages:        req.Languages,
		HourlyRate:       req.HourlyRate,
		DailyRate:        req.DailyRate,
		OrganizationName: req.OrganizationName,
		OrganizationType: req.OrganizationType,
		Address:          req.Address,
		City:             req.City,
		PostalCode:       req.PostalCode,
		Siret:            req.Siret,
		Description:      req.Description,
	}

	var err error
	if input.AvailableFrom, err = optionalDate(req.AvailableFrom); err != nil {
		return response.BadRequest(c, "Invalid availableFrom date")
	}
	if input.AvailableTo, err = optionalDate(req.AvailableTo); err != nil {
		return response.BadRequest(c, "Invalid availableTo date")
	}

	user, err := h.userService.UpdateProfile(c.Context(), userID, input)
	if err != nil {
		return handleError(c, err, "Failed to update profile")
	}

	return response.Success(c, "Profile updated successfully", user)
}

// PublicProfile returns a user's public card
// @Summary Public profile
// @Description Name, role and profile without contact data
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id}/public [get]
func (h *UserHandler) PublicProfile(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid user ID")
	}

	user, err := h.userService.PublicProfile(c.Context(), id)
	if err != nil {
		return handleError(c, err, "Failed to get user")
	}

	return response.Success(c, "User retrieved successfully", user)
}

// SearchReplacements lists approved doctors
// @Summary Search replacement doctors
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param specialty query string false "Specialty"
// @Param location query string false "Location"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Router /users/replacements [get]
func (h *UserHandler) SearchReplacements(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	search := repositories.ReplacementSearch{
		Specialty: c.Query("specialty"),
		Location:  c.Query("location"),
	}

	users, total, err := h.userService.SearchReplacements(c.Context(), search, params)
	if err != nil {
		return handleError(c, err, "Failed to search doctors")
	}

	return response.Success(c, "Doctors retrieved successfully", pagination.NewResponse(users, params, total))
}

// ListExperiences lists the current doctor's experiences
// @Summary List experiences
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /users/experiences [get]
func (h *UserHandler) ListExperiences(c *fiber.Ctx) error {
	userID, _, ok := currentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	items, err := h.userService.ListExperiences(c.Context(), userID)
	if err != nil {
		return handleError(c, err, "Failed to list experiences")
	}

	return response.Success(c, "Experiences retrieved successfully", items)
}

// CreateExperience adds an experience
// @Summary Create experience
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ExperienceRequest true "Experience"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /users/experiences [post]
func (h *UserHandler) CreateExperience(c *fiber.Ctx) error {
	userID, _, ok := currentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	input, msg := parseExperience(c)
	if msg != "" {
		return response.BadRequest(c, msg)
	}

	item, err := h.userService.CreateExperience(c.Context(), userID, input)
	if err != nil {
		return handleError(c, err, "Failed to create experience")
	}

	return response.Created(c, "Experience created successfully", item)
}

// ReplaceExperience replaces every field of an experience
// @Summary Replace experience
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Experience ID"
// @Param body body ExperienceRequest true "Experience"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/experiences/{id} [put]
func (h *UserHandler) ReplaceExperience(c *fiber.Ctx) error {
	return h.updateExperience(c, true)
}

// PatchExperience updates the given fields of an experience
// @Summary Patch experience
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Experience ID"
// @Param body body ExperienceRequest true "Experience fields"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/experiences/{id} [patch]
func (h *UserHandler) PatchExperience(c *fiber.Ctx) error {
	return h.updateExperience(c, false)
}

func (h *UserHandler) updateExperience(c *fiber.Ctx, full bool) error {
	userID, _, ok := currentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid experience ID")
	}

	input, msg := parseExperience(c)
	if msg != "" {
		return response.BadRequest(c, msg)
	}

	var item interface{}
	var err error
	if full {
		item, err = h.userService.ReplaceExperience(c.Context(), userID, id, input)
	} else {
		item, err = h.userService.PatchExperience(c.Context(), userID, id, input)
	}
	if err != nil {
		return handleError(c, err, "Failed to update experience")
	}

	return response.Success(c, "Experience updated successfully", item)
}

// DeleteExperience removes an experience
// @Summary Delete experience
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "Experience ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/experiences/{id} [delete]
func (h *UserHandler) DeleteExperience(c *fiber.Ctx) error {
	userID, _, ok := currentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid experience ID")
	}

	if err := h.userService.DeleteExperience(c.Context(), userID, id); err != nil {
		return handleError(c, err, "Failed to delete experience")
	}

	return response.Success(c, "Experience deleted successfully", nil)
}

// ListDiplomas lists the current doctor's diplomas
// @Summary List diplomas
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /users/diplomas [get]
func (h *UserHandler) ListDiplomas(c *fiber.Ctx) error {
	userID, _, ok := currentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	items, err := h.userService.ListDiplomas(c.Context(), userID)
	if err != nil {
		return handleError(c, err, "Failed to list diplomas")
	}

	return response.Success(c, "Diplomas retrieved successfully", items)
}

// CreateDiploma adds a diploma
// @Summary Create diploma
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body DiplomaRequest true "Diploma"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /users/diplomas [post]
func (h *UserHandler) CreateDiploma(c *fiber.Ctx) error {
	userID, _, ok := currentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req DiplomaRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	item, err := h.userService.CreateDiploma(c.Context(), userID, &services.DiplomaInput{
		Title:       req.Title,
		Institution: req.Institution,
		Year:        req.Year,
		Description: req.Description,
	})
	if err != nil {
		return handleError(c, err, "Failed to create diploma")
	}

	return response.Created(c, "Diploma created successfully", item)
}

// DeleteDiploma removes a diploma
// @Summary Delete diploma
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "Diploma ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/diplomas/{id} [delete]
func (h *UserHandler) DeleteDiploma(c *fiber.Ctx) error {
	userID, _, ok := currentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid diploma ID")
	}

	if err := h.userService.DeleteDiploma(c.Context(), userID, id); err != nil {
		return handleError(c, err, "Failed to delete diploma")
	}

	return response.Success(c, "Diploma deleted successfully", nil)
}

// parseExperience reads an ExperienceRequest; msg is set when the body is invalid
func parseExperience(c *fiber.Ctx) (*services.ExperienceInput, string) {
	var req ExperienceRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, "Invalid request body"
	}

	input := &services.ExperienceInput{
		Title:         req.Title,
		Establishment: req.Establishment,
		Location:      req.Location,
		Description:   req.Description,
	}

	var err error
	if input.StartDate, err = optionalDate(req.StartDate); err != nil {
		return nil, "Invalid startDate"
	}
	if input.EndDate, err = optionalDate(req.EndDate); err != nil {
		return nil, "Invalid endDate"
	}
	return input, ""
}
