package services

import (
	"context"
	"errors"
	"log"
	"net/mail"
	"strings"
	"time"

	"medirelay/internal/adapters/persistence/models"
	"medirelay/internal/adapters/persistence/repositories"
	"medirelay/internal/config"
	"medirelay/internal/core/domain"
	"medirelay/internal/pkg/jwt"
	"medirelay/internal/pkg/password"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuthService handles authentication business logic
type AuthService struct {
	db        *gorm.DB
	userRepo  repositories.UserRepository
	profiles  *repositories.ProfileRepository
	resetRepo *repositories.PasswordResetRepository
	cfg       *config.Config
}

// NewAuthService creates a new auth service
func NewAuthService(
	db *gorm.DB,
	userRepo repositories.UserRepository,
	profiles *repositories.ProfileRepository,
	resetRepo *repositories.PasswordResetRepository,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		db:        db,
		userRepo:  userRepo,
		profiles:  profiles,
		resetRepo: resetRepo,
		cfg:       cfg,
	}
}

// RegisterInput represents registration input
type RegisterInput struct {
	Email    string
	Password string
	Role     string
	Name     string
	Phone    string

	// replacement
	Specialty string
	Location  string

	// employer
	OrganizationName string
	OrganizationType string
}

// LoginInput represents login input; Role is the role the user claims to log in as
type LoginInput struct {
	Email    string
	Password string
	Role     string
}

// AuthResult is returned by register and login
type AuthResult struct {
	User  *models.UserResponse `json:"user"`
	Token string               `json:"token"`
}

// NormalizeEmail lowercases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail reports whether email parses as a bare address
func ValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// Register creates the user and its role profile in one transaction
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*AuthResult, error) {
	email := NormalizeEmail(input.Email)
	if !ValidEmail(email) {
		return nil, invalid("A valid email is required")
	}
	if !password.ValidatePassword(input.Password) {
		return nil, invalid("Password must be between 8 and 72 characters")
	}

	role := domain.Role(input.Role)
	if !role.HasProfile() {
		return nil, invalid("Role must be replacement or employer")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, invalid("Name is required")
	}
	switch role {
	case domain.RoleReplacement:
		if strings.TrimSpace(input.Specialty) == "" || strings.TrimSpace(input.Location) == "" {
			return nil, invalid("Specialty and location are required")
		}
	case domain.RoleEmployer:
		if strings.TrimSpace(input.OrganizationName) == "" {
			return nil, invalid("Organization name is required")
		}
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.NewError(domain.ErrUserAlreadyExists, "Email already registered")
	}

	hashedPassword, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:    email,
		Password: hashedPassword,
		Role:     string(role),
		Name:     strings.TrimSpace(input.Name),
		Phone:    strings.TrimSpace(input.Phone),
		IsActive: true,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.userRepo.WithTx(tx).Create(ctx, user); err != nil {
			return err
		}

		profiles := s.profiles.WithTx(tx)
		switch role {
		case domain.RoleReplacement:
			profile := &models.ReplacementProfile{
				UserID:        user.ID,
				Specialty:     strings.TrimSpace(input.Specialty),
				Location:      strings.TrimSpace(input.Location),
				ProfileStatus: string(domain.ProfilePending),
			}
			profile.SetLanguages(nil)
			return profiles.CreateReplacement(ctx, profile)
		default:
			return profiles.CreateEmployer(ctx, &models.EmployerProfile{
				UserID:           user.ID,
				OrganizationName: strings.TrimSpace(input.OrganizationName),
				OrganizationType: strings.TrimSpace(input.OrganizationType),
				ProfileStatus:    string(domain.ProfilePending),
			})
		}
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.NewError(domain.ErrUserAlreadyExists, "Email already registered")
		}
		return nil, err
	}

	log.Printf("👤 New %s registered: %s (id=%d)", role, email, user.ID)

	return s.issue(ctx, user.ID)
}

// Login authenticates a user for the claimed role
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*AuthResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, NormalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			password.VerifyMissing(input.Password)
			return nil, domain.NewError(domain.ErrInvalidCredentials, "Invalid email or password")
		}
		return nil, err
	}

	// every failure path pays one bcrypt comparison
	matches := password.Verify(input.Password, user.Password)
	if !matches || (input.Role != "" && input.Role != user.Role) {
		return nil, domain.NewError(domain.ErrInvalidCredentials, "Invalid email or password")
	}
	if !user.IsActive {
		return nil, domain.NewError(domain.ErrUserInactive, "User account is inactive")
	}

	return s.respond(user)
}

// Me returns the current user with its role profile
func (s *AuthService) Me(ctx context.Context, userID uint) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "User not found")
	}
	return user.ToResponse(), nil
}

// ForgotPassword creates a reset token when the email belongs to an active user.
// It returns the raw token ("" when nothing was issued); callers must not reveal
// whether the account exists.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	user, err := s.userRepo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	if !user.IsActive {
		return "", nil
	}

	token := uuid.NewString()
	reset := &models.PasswordReset{
		UserID:    user.ID,
		TokenHash: password.HashToken(token),
		ExpiresAt: time.Now().Add(time.Duration(s.cfg.ResetTokenMinutes) * time.Minute),
	}
	if err := s.resetRepo.Create(ctx, reset); err != nil {
		return "", err
	}

	log.Printf("🔑 Password reset requested for user %d (expires %s)", user.ID, reset.ExpiresAt.Format(time.RFC3339))
	return token, nil
}

// ResetPassword consumes a reset token and sets a new password
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if !password.ValidatePassword(newPassword) {
		return invalid("Password must be between 8 and 72 characters")
	}

	badToken := invalid("Invalid or expired reset token")

	reset, err := s.resetRepo.GetByTokenHash(ctx, password.HashToken(strings.TrimSpace(token)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return badToken
		}
		return err
	}
	if reset.IsUsed() || reset.IsExpired() {
		return badToken
	}

	hash, err := password.Hash(newPassword)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := s.resetRepo.WithTx(tx).MarkUsed(ctx, reset.ID, time.Now())
		if err != nil {
			return err
		}
		if n == 0 {
			return badToken
		}
		return s.userRepo.WithTx(tx).UpdatePassword(ctx, reset.UserID, hash)
	})
}

// ChangePassword changes the password of a logged-in user
func (s *AuthService) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	if !password.ValidatePassword(newPassword) {
		return invalid("Password must be between 8 and 72 characters")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return notFoundOr(err, "User not found")
	}
	if !password.Verify(oldPassword, user.Password) {
		return domain.NewError(domain.ErrInvalidPassword, "Current password is incorrect")
	}

	hash, err := password.Hash(newPassword)
	if err != nil {
		return err
	}
	return s.userRepo.UpdatePassword(ctx, userID, hash)
}

// issue reloads the user with profiles and signs a token
func (s *AuthService) issue(ctx context.Context, userID uint) (*AuthResult, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.respond(user)
}

func (s *AuthService) respond(user *models.User) (*AuthResult, error) {
	token, err := jwt.GenerateToken(user.ID, user.Email, user.Role, s.cfg.JWT.Secret, s.cfg.JWT.ExpiryDays)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user.ToResponse(), Token: token}, nil
}
