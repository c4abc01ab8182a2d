package services

import (
	"context"
	"testing"
	"time"

	"medirelay/internal/adapters/persistence/models"
	"medirelay/internal/core/domain"
	"medirelay/internal/pkg/jwt"
	"medirelay/internal/pkg/password"
)

func TestRegister(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.auth.Register(ctx, &RegisterInput{
		Email:     "  Doc@Example.COM ",
		Password:  "password123",
		Role:      "replacement",
		Name:      "Dr House",
		Specialty: "Médecine générale",
		Location:  "Lyon",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if res.User.Email != "doc@example.com" {
		t.Errorf("email = %q, want normalized", res.User.Email)
	}
	if res.User.ReplacementProfile == nil || res.User.ProfileStatus != "pending" {
		t.Errorf("user = %+v, want pending replacement profile", res.User)
	}

	claims, err := jwt.ValidateToken(res.Token, env.cfg.JWT.Secret)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.UserID != res.User.ID || claims.Role != "replacement" {
		t.Errorf("claims = %+v", claims)
	}

	var stored models.User
	env.db.First(&stored, res.User.ID)
	if stored.Password == "password123" || !password.Verify("password123", stored.Password) {
		t.Error("password not stored as a bcrypt hash")
	}

	_, err = env.auth.Register(ctx, &RegisterInput{Email: "doc@example.com", Password: "password123", Role: "employer", Name: "Again", OrganizationName: "Clinique"})
	assertKind(t, err, domain.ErrUserAlreadyExists)
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name  string
		input RegisterInput
	}{
		{"bad email", RegisterInput{Email: "not-an-email", Password: "password123", Role: "replacement", Name: "A"}},
		{"short password", RegisterInput{Email: "a@example.com", Password: "short", Role: "replacement", Name: "A"}},
		{"admin role", RegisterInput{Email: "a@example.com", Password: "password123", Role: "admin", Name: "A"}},
		{"unknown role", RegisterInput{Email: "a@example.com", Password: "password123", Role: "nurse", Name: "A"}},
		{"missing name", RegisterInput{Email: "a@example.com", Password: "password123", Role: "employer", OrganizationName: "Clinique"}},
		{"doctor without specialty", RegisterInput{Email: "a@example.com", Password: "password123", Role: "replacement", Name: "A", Location: "Lyon"}},
		{"doctor without location", RegisterInput{Email: "a@example.com", Password: "password123", Role: "replacement", Name: "A", Specialty: "Cardiologie"}},
		{"employer without organization", RegisterInput{Email: "a@example.com", Password: "password123", Role: "employer", Name: "A", OrganizationName: "  "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := tt.input
			_, err := env.auth.Register(context.Background(), &input)
			assertKind(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "doc@example.com", domain.RoleReplacement)

	res, err := env.auth.Login(ctx, &LoginInput{Email: "DOC@example.com", Password: "password123"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if res.Token == "" {
		t.Error("empty token")
	}

	tests := []struct {
		name  string
		input LoginInput
	}{
		{"wrong password", LoginInput{Email: "doc@example.com", Password: "password124"}},
		{"unknown email", LoginInput{Email: "nobody@example.com", Password: "password123"}},
		{"wrong role", LoginInput{Email: "doc@example.com", Password: "password123", Role: "employer"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := tt.input
			_, err := env.auth.Login(ctx, &input)
			assertKind(t, err, domain.ErrInvalidCredentials)
		})
	}
}

func TestPasswordResetFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "doc@example.com", domain.RoleReplacement)

	token, err := env.auth.ForgotPassword(ctx, "nobody@example.com")
	if err != nil || token != "" {
		t.Fatalf("ForgotPassword(unknown) = %q, %v; want no token", token, err)
	}

	token, err = env.auth.ForgotPassword(ctx, "doc@example.com")
	if err != nil || token == "" {
		t.Fatalf("ForgotPassword() = %q, %v", token, err)
	}

	assertKind(t, env.auth.ResetPassword(ctx, "bogus", "newpassword1"), domain.ErrInvalidInput)

	if err := env.auth.ResetPassword(ctx, token, "newpassword1"); err != nil {
		t.Fatalf("ResetPassword() error = %v", err)
	}
	// single use
	assertKind(t, env.auth.ResetPassword(ctx, token, "newpassword2"), domain.ErrInvalidInput)

	if _, err := env.auth.Login(ctx, &LoginInput{Email: "doc@example.com", Password: "newpassword1"}); err != nil {
		t.Errorf("Login() with new password error = %v", err)
	}
}

func TestResetTokenExpires(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "doc@example.com", domain.RoleReplacement)

	token, err := env.auth.ForgotPassword(ctx, "doc@example.com")
	if err != nil {
		t.Fatalf("ForgotPassword() error = %v", err)
	}
	env.db.Model(&models.PasswordReset{}).Where("1 = 1").Update("expires_at", time.Now().Add(-time.Minute))

	assertKind(t, env.auth.ResetPassword(ctx, token, "newpassword1"), domain.ErrInvalidInput)

	// the hourly purge removes it
	env.cron.PurgeResetTokens()
	var count int64
	env.db.Model(&models.PasswordReset{}).Count(&count)
	if count != 0 {
		t.Errorf("reset tokens = %d, want 0", count)
	}
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	doctor := env.register(t, "doc@example.com", domain.RoleReplacement)

	assertKind(t, env.auth.ChangePassword(ctx, doctor.ID, "wrong-password", "newpassword1"), domain.ErrInvalidPassword)
	assertKind(t, env.auth.ChangePassword(ctx, doctor.ID, "password123", "short"), domain.ErrInvalidInput)

	if err := env.auth.ChangePassword(ctx, doctor.ID, "password123", "newpassword1"); err != nil {
		t.Fatalf("ChangePassword() error = %v", err)
	}
	_, err := env.auth.Login(ctx, &LoginInput{Email: "doc@example.com", Password: "password123"})
	assertKind(t, err, domain.ErrInvalidCredentials)
}
