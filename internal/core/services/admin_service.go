package services

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"

	"medirelay/internal/adapters/persistence/models"
	"medirelay/internal/adapters/persistence/repositories"
	"medirelay/internal/adapters/storage"
	"medirelay/internal/core/domain"
	"medirelay/internal/pkg/pagination"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// AdminService handles user moderation
type AdminService struct {
	db       *gorm.DB
	userRepo repositories.UserRepository
	profiles *repositories.ProfileRepository
	docs     *repositories.DocumentRepository
	store    storage.Storage
	notifier Notifier
}

// NewAdminService creates a new admin service
func NewAdminService(
	db *gorm.DB,
	userRepo repositories.UserRepository,
	profiles *repositories.ProfileRepository,
	docs *repositories.DocumentRepository,
	store storage.Storage,
	notifier Notifier,
) *AdminService {
	return &AdminService{
		db:       db,
		userRepo: userRepo,
		profiles: profiles,
		docs:     docs,
		store:    store,
		notifier: notifier,
	}
}

// AdminUserView is a user with its documents
type AdminUserView struct {
	User      *models.UserResponse       `json:"user"`
	Documents []*models.DocumentResponse `json:"documents"`
}

// ListUsers lists users with filters
func (s *AdminService) ListUsers(ctx context.Context, filter repositories.UserFilter, params *pagination.Params) ([]*models.UserResponse, int64, error) {
	if filter.Role != "" && !domain.Role(filter.Role).Valid() {
		return nil, 0, invalid("Invalid role")
	}
	if filter.ProfileStatus != "" && !domain.ProfileStatus(filter.ProfileStatus).Valid() {
		return nil, 0, domain.NewError(domain.ErrInvalidStatus, "Invalid profile status")
	}

	users, total, err := s.userRepo.List(ctx, filter, params)
	if err != nil {
		return nil, 0, err
	}
	items := make([]*models.UserResponse, len(users))
	for i, u := range users {
		items[i] = u.ToResponse()
	}
	return items, total, nil
}

// GetUser returns one user with documents
func (s *AdminService) GetUser(ctx context.Context, id uint) (*AdminUserView, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "User not found")
	}

	docs, err := s.docs.ListByUser(ctx, id)
	if err != nil {
		return nil, err
	}
	view := &AdminUserView{User: user.ToResponse(), Documents: make([]*models.DocumentResponse, len(docs))}
	for i, d := range docs {
		view.Documents[i] = d.ToResponse(s.store.URL)
	}
	return view, nil
}

// SetProfileStatus moves a user's role profile to status and notifies the user.
// The status is validated before anything is read or written.
func (s *AdminService) SetProfileStatus(ctx context.Context, adminID, userID uint, status, reason string) (*models.UserResponse, error) {
	target := domain.ProfileStatus(status)
	if !target.Valid() {
		return nil, domain.NewError(domain.ErrInvalidStatus, "profile_status must be pending, approved or rejected")
	}
	reason = strings.TrimSpace(reason)

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "User not found")
	}
	if !domain.Role(user.Role).HasProfile() {
		return nil, invalid("This user has no professional profile")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		profiles := s.profiles.WithTx(tx)

		var n int64
		var err error
		if user.Role == string(domain.RoleReplacement) {
			n, err = profiles.SetReplacementStatus(ctx, userID, string(target), reason)
		} else {
			n, err = profiles.SetEmployerStatus(ctx, userID, string(target), reason)
		}
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.NewError(domain.ErrProfileNotFound, "Profile not found")
		}

		notifyType, title, message := profileNotification(target, reason)
		return s.notifier.NotifyTx(ctx, tx, NewNotification(userID, notifyType, title, message, 0))
	})
	if err != nil {
		return nil, err
	}

	log.Printf("🛡️ Profile of user %d set to %s by admin %d", userID, target, adminID)

	updated, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return updated.ToResponse(), nil
}

func profileNotification(status domain.ProfileStatus, reason string) (domain.NotificationType, string, string) {
	switch status {
	case domain.ProfileApproved:
		return domain.NotifyProfileApproved, "Profile approved", "Your profile has been approved."
	case domain.ProfileRejected:
		message := "Your profile has been rejected."
		if reason != "" {
			message += " Reason: " + reason
		}
		return domain.NotifyProfileRejected, "Profile rejected", message
	default:
		return domain.NotifyProfilePending, "Profile under review", "Your profile is pending review."
	}
}

// SetActive enables or soft-disables a user; admins cannot disable themselves
func (s *AdminService) SetActive(ctx context.Context, adminID, userID uint, active bool) (*models.UserResponse, error) {
	if adminID == userID && !active {
		return nil, invalid("You cannot deactivate your own account")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "User not found")
	}
	if err := s.userRepo.SetActive(ctx, userID, active); err != nil {
		return nil, err
	}
	user.IsActive = active

	log.Printf("🛡️ User %d active=%t set by admin %d", userID, active, adminID)
	return user.ToResponse(), nil
}

// ExportUsers renders every user as an XLSX workbook
func (s *AdminService) ExportUsers(ctx context.Context) ([]byte, error) {
	users, err := s.userRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Users"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	headers := []interface{}{"ID", "Email", "Name", "Phone", "Role", "Active", "Profile status", "Created at"}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return nil, err
	}

	for i, u := range users {
		resp := u.ToResponse()
		row := []interface{}{
			u.ID, u.Email, u.Name, u.Phone, u.Role, u.IsActive, resp.ProfileStatus,
			u.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
