package handlers

import (
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	"medirelay/internal/core/domain"
	"medirelay/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// handleError maps service errors to API responses. Unknown errors are
// logged and surface as a generic 500 with fallback as message.
func handleError(c *fiber.Ctx, err error, fallback string) error {
	message := fallback
	var de *domain.Error
	if errors.As(err, &de) {
		message = de.Message
	}

	switch {
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrMissionNotOpen),
		errors.Is(err, domain.ErrInvalidDocumentType),
		errors.Is(err, domain.ErrUnsupportedFile),
		errors.Is(err, domain.ErrInvalidPassword):
		return response.BadRequest(c, message)
	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrTokenExpired),
		errors.Is(err, domain.ErrTokenInvalid):
		return response.Unauthorized(c, message)
	case errors.Is(err, domain.ErrForbidden),
		errors.Is(err, domain.ErrUserInactive):
		return response.Forbidden(c, message)
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrProfileNotFound):
		return response.NotFound(c, message)
	case errors.Is(err, domain.ErrDuplicateEntry),
		errors.Is(err, domain.ErrUserAlreadyExists):
		return response.Conflict(c, message)
	case errors.Is(err, domain.ErrFileTooLarge):
		return response.PayloadTooLarge(c, message)
	}

	log.Printf("❌ %s %s: %v", c.Method(), c.Path(), err)
	return response.InternalServerError(c, fallback)
}

// currentUser returns the user id and role set by AuthMiddleware
func currentUser(c *fiber.Ctx) (uint, string, bool) {
	userID, ok := c.Locals("userID").(uint)
	if !ok || userID == 0 {
		return 0, "", false
	}
	role, _ := c.Locals("role").(string)
	return userID, role, true
}

// paramID parses a positive numeric route parameter
func paramID(c *fiber.Ctx, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// queryUint parses an optional numeric query parameter; 0 when absent or invalid
func queryUint(c *fiber.Ctx, name string) uint {
	v, err := strconv.ParseUint(c.Query(name), 10, 64)
	if err != nil {
		return 0
	}
	return uint(v)
}

// queryFloat parses an optional float query parameter
func queryFloat(c *fiber.Ctx, name string) (*float64, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// queryBool parses an optional boolean query parameter
func queryBool(c *fiber.Ctx, name string) (*bool, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// parseDate accepts YYYY-MM-DD or RFC3339; empty input is nil
func parseDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// optionalDate parses an optional date field from a JSON body
func optionalDate(raw *string) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	return parseDate(strings.TrimSpace(*raw))
}
