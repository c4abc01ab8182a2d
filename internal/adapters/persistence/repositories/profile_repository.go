package repositories

import (
	"context"
	"strings"

	"medirelay/internal/adapters/persistence/models"
	"medirelay/internal/pkg/pagination"

	"gorm.io/gorm"
)

// ProfileRepository handles replacement and employer profiles
type ProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *ProfileRepository) WithTx(tx *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: tx}
}

// CreateReplacement creates a doctor profile
func (r *ProfileRepository) CreateReplacement(ctx context.Context, profile *models.ReplacementProfile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

// CreateEmployer creates an establishment profile
func (r *ProfileRepository) CreateEmployer(ctx context.Context, profile *models.EmployerProfile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

// GetReplacementByUserID gets a doctor profile
func (r *ProfileRepository) GetReplacementByUserID(ctx context.Context, userID uint) (*models.ReplacementProfile, error) {
	var profile models.ReplacementProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetEmployerByUserID gets an establishment profile
func (r *ProfileRepository) GetEmployerByUserID(ctx context.Context, userID uint) (*models.EmployerProfile, error) {
	var profile models.EmployerProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// SaveReplacement persists every editable column of a doctor profile
func (r *ProfileRepository) SaveReplacement(ctx context.Context, profile *models.ReplacementProfile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}

// SaveEmployer persists every editable column of an establishment profile
func (r *ProfileRepository) SaveEmployer(ctx context.Context, profile *models.EmployerProfile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}

// SetReplacementStatus sets the moderation status, returns rows affected
func (r *ProfileRepository) SetReplacementStatus(ctx context.Context, userID uint, status, reason string) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.ReplacementProfile{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{"profile_status": status, "status_reason": reason})
	return result.RowsAffected, result.Error
}

// SetEmployerStatus sets the moderation status, returns rows affected
func (r *ProfileRepository) SetEmployerStatus(ctx context.Context, userID uint, status, reason string) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.EmployerProfile{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{"profile_status": status, "status_reason": reason})
	return result.RowsAffected, result.Error
}

// ReplacementSearch filters the doctor directory
type ReplacementSearch struct {
	Specialty string
	Location  string
}

// SearchReplacements lists approved and active doctors
func (r *ProfileRepository) SearchReplacements(ctx context.Context, search ReplacementSearch, params *pagination.Params) ([]*models.User, int64, error) {
	var users []*models.User
	var total int64

	base := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&models.User{}).
			Joins("JOIN replacement_profiles rp ON rp.user_id = users.id").
			Where("users.role = ? AND users.is_active = ? AND rp.profile_status = ?", "replacement", true, "approved")
		if s := strings.TrimSpace(search.Specialty); s != "" {
			q = q.Where("LOWER(rp.specialty) = ?", strings.ToLower(s))
		}
		if l := strings.TrimSpace(search.Location); l != "" {
			q = q.Where("LOWER(rp.location) LIKE ?", "%"+strings.ToLower(l)+"%")
		}
		return q
	}

	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := base().
		Preload("ReplacementProfile").
		Order("users.name ASC, users.id ASC").
		Scopes(params.Scope()).
		Find(&users).Error

	return users, total, err
}
