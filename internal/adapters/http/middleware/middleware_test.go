package middleware

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"medirelay/internal/config"
	"medirelay/internal/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func testConfig() *config.Config {
	return &config.Config{
		AppMode:   "dev",
		JWT:       config.JWTConfig{Secret: "middleware-test-secret-0123456789", ExpiryDays: 1},
		RateLimit: config.RateLimitConfig{Global: 1000, Auth: 2},
	}
}

// accountStates is an AccountChecker backed by a map; missing ids are unknown users
type accountStates map[uint]bool

func (a accountStates) IsActive(_ context.Context, id uint) (bool, error) {
	active, ok := a[id]
	if !ok {
		return false, gorm.ErrRecordNotFound
	}
	return active, nil
}

type failingAccounts struct{}

func (failingAccounts) IsActive(context.Context, uint) (bool, error) {
	return false, errors.New("connection refused")
}

func protectedApp(cfg *config.Config, accounts AccountChecker) *fiber.App {
	app := fiber.New()
	app.Get("/me", AuthMiddleware(cfg, accounts), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"id": c.Locals("userID"), "role": c.Locals("role")})
	})
	app.Get("/admin", AuthMiddleware(cfg, accounts), AdminOnly(), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func TestAuthMiddleware(t *testing.T) {
	cfg := testConfig()
	app := protectedApp(cfg, nil)

	token, err := jwt.GenerateToken(7, "doc@example.com", "replacement", cfg.JWT.Secret, 1)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	foreign, _ := jwt.GenerateToken(7, "doc@example.com", "replacement", "another-secret", 1)

	tests := []struct {
		name   string
		cookie string
		header string
		want   int
	}{
		{"no credentials", "", "", fiber.StatusUnauthorized},
		{"cookie", token, "", fiber.StatusOK},
		{"bearer header", "", "Bearer " + token, fiber.StatusOK},
		{"wrong scheme", "", "Basic " + token, fiber.StatusUnauthorized},
		{"foreign secret", foreign, "", fiber.StatusUnauthorized},
		{"garbage", "garbage", "", fiber.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me", nil)
			if tt.cookie != "" {
				req.Header.Set("Cookie", config.AuthCookieName+"="+tt.cookie)
			}
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test() error = %v", err)
			}
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestAuthMiddlewareChecksAccount(t *testing.T) {
	cfg := testConfig()

	tests := []struct {
		name     string
		accounts AccountChecker
		want     int
	}{
		{"active", accountStates{7: true}, fiber.StatusOK},
		{"deactivated", accountStates{7: false}, fiber.StatusForbidden},
		{"deleted", accountStates{}, fiber.StatusUnauthorized},
		{"lookup fails", failingAccounts{}, fiber.StatusInternalServerError},
	}
	token, _ := jwt.GenerateToken(7, "doc@example.com", "replacement", cfg.JWT.Secret, 1)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := protectedApp(cfg, tt.accounts)
			req := httptest.NewRequest("GET", "/me", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test() error = %v", err)
			}
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestRoleMiddleware(t *testing.T) {
	cfg := testConfig()
	app := protectedApp(cfg, nil)

	for role, want := range map[string]int{
		"admin":       fiber.StatusOK,
		"employer":    fiber.StatusForbidden,
		"replacement": fiber.StatusForbidden,
	} {
		token, _ := jwt.GenerateToken(1, role+"@example.com", role, cfg.JWT.Secret, 1)
		req := httptest.NewRequest("GET", "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test() error = %v", err)
		}
		if resp.StatusCode != want {
			t.Errorf("%s: status = %d, want %d", role, resp.StatusCode, want)
		}
	}

	// without AuthMiddleware there is no role at all
	bare := fiber.New()
	bare.Get("/", EmployerOnly(), func(c *fiber.Ctx) error { return c.SendString("ok") })
	resp, _ := bare.Test(httptest.NewRequest("GET", "/", nil))
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestCacheHeaders(t *testing.T) {
	app := fiber.New()
	app.Get("/public", PublicCache(30*time.Second), func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/missing", PublicCache(30*time.Second), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNotFound) })
	app.Get("/private", NoCacheHeaders(), func(c *fiber.Ctx) error { return c.SendString("ok") })

	tests := []struct {
		path string
		want string
	}{
		{"/public", "public, max-age=30"},
		{"/missing", ""},
		{"/private", "no-store, no-cache, must-revalidate"},
	}
	for _, tt := range tests {
		resp, err := app.Test(httptest.NewRequest("GET", tt.path, nil))
		if err != nil {
			t.Fatalf("app.Test() error = %v", err)
		}
		if got := resp.Header.Get("Cache-Control"); got != tt.want {
			t.Errorf("%s Cache-Control = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestAuthRateLimiterInMemory(t *testing.T) {
	cfg := testConfig()
	app := fiber.New()
	app.Post("/login", AuthRateLimiter(cfg, nil), func(c *fiber.Ctx) error { return c.SendString("ok") })

	for i, want := range []int{200, 200, 429} {
		resp, err := app.Test(httptest.NewRequest("POST", "/login", nil))
		if err != nil {
			t.Fatalf("app.Test() error = %v", err)
		}
		if resp.StatusCode != want {
			t.Errorf("request %d: status = %d, want %d", i+1, resp.StatusCode, want)
		}
	}
}

func TestRedisLimiterFailsOpen(t *testing.T) {
	if NewRedisLimiter(nil) != nil {
		t.Fatal("NewRedisLimiter(nil) should be nil")
	}

	var nilLimiter *RedisLimiter
	if !nilLimiter.Allow(context.Background(), "k", 1, time.Minute) {
		t.Error("nil limiter denied a request")
	}

	// nothing listens on port 1
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 100 * time.Millisecond})
	defer client.Close()
	limiter := NewRedisLimiter(client)
	if !limiter.Allow(context.Background(), "k", 1, time.Minute) {
		t.Error("unreachable redis denied a request")
	}
}

func TestCustomErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: CustomErrorHandler})
	app.Get("/teapot", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusTeapot, "short and stout") })

	resp, err := app.Test(httptest.NewRequest("GET", "/teapot", nil))
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusTeapot {
		t.Errorf("status = %d, want 418", resp.StatusCode)
	}

	resp, _ = app.Test(httptest.NewRequest("GET", "/nowhere", nil))
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}
