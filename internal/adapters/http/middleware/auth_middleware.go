package middleware

import (
	"context"
	"errors"
	"log"
	"strings"

	"medirelay/internal/config"
	"medirelay/internal/pkg/jwt"
	"medirelay/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AccountChecker reports whether the user behind a token may still act
type AccountChecker interface {
	IsActive(ctx context.Context, id uint) (bool, error)
}

// AuthMiddleware creates authentication middleware. When accounts is set,
// every request re-reads the user's is_active flag so a deactivation applies
// to sessions that are already open.
func AuthMiddleware(cfg *config.Config, accounts AccountChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := extractToken(c)
		if token == "" {
			return response.Unauthorized(c, "Authentication required")
		}

		claims, err := jwt.ValidateToken(token, cfg.JWT.Secret)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return response.Unauthorized(c, "Session expired")
			}
			return response.Unauthorized(c, "Invalid session token")
		}

		if accounts != nil {
			active, err := accounts.IsActive(c.Context(), claims.UserID)
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				return response.Unauthorized(c, "Account no longer exists")
			case err != nil:
				log.Printf("❌ Account check for user %d failed: %v", claims.UserID, err)
				return response.InternalServerError(c, "Failed to verify session")
			case !active:
				return response.Forbidden(c, "User account is inactive")
			}
		}

		// Set user info in context
		c.Locals("userID", claims.UserID)
		c.Locals("email", claims.Email)
		c.Locals("role", claims.Role)

		return c.Next()
	}
}

// extractToken reads the session cookie, then the Authorization header
func extractToken(c *fiber.Ctx) string {
	if token := c.Cookies(config.AuthCookieName); token != "" {
		return token
	}

	authHeader := c.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}

// RoleMiddleware creates role-based authorization middleware
func RoleMiddleware(allowedRoles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals("role").(string)
		if !ok {
			return response.Unauthorized(c, "Authentication required")
		}

		// Check if user's role is in allowed roles
		for _, allowedRole := range allowedRoles {
			if role == allowedRole {
				return c.Next()
			}
		}

		return response.Forbidden(c, "You don't have permission to access this resource")
	}
}

// AdminOnly middleware allows only the admin role
func AdminOnly() fiber.Handler {
	return RoleMiddleware("admin")
}

// EmployerOnly middleware allows only establishments
func EmployerOnly() fiber.Handler {
	return RoleMiddleware("employer")
}

// ReplacementOnly middleware allows only replacement doctors
func ReplacementOnly() fiber.Handler {
	return RoleMiddleware("replacement")
}
