package repositories

import (
	"context"

	"medirelay/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// CVRepository handles experiences and diplomas of replacement doctors
type CVRepository struct {
	db *gorm.DB
}

// NewCVRepository creates a new CV repository
func NewCVRepository(db *gorm.DB) *CVRepository {
	return &CVRepository{db: db}
}

// ============================================================
// Experiences
// ============================================================

// ListExperiences lists a user's experiences, most recent first
func (r *CVRepository) ListExperiences(ctx context.Context, userID uint) ([]*models.Experience, error) {
	var items []*models.Experience
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("start_date DESC, id DESC").
		Find(&items).Error
	return items, err
}

// GetExperience gets an experience by ID
func (r *CVRepository) GetExperience(ctx context.Context, id uint) (*models.Experience, error) {
	var item models.Experience
	if err := r.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateExperience creates an experience
func (r *CVRepository) CreateExperience(ctx context.Context, item *models.Experience) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// SaveExperience saves every column of an experience
func (r *CVRepository) SaveExperience(ctx context.Context, item *models.Experience) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// DeleteExperience deletes an experience
func (r *CVRepository) DeleteExperience(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Experience{}, id).Error
}

// ============================================================
// Diplomas
// ============================================================

// ListDiplomas lists a user's diplomas, most recent first
func (r *CVRepository) ListDiplomas(ctx context.Context, userID uint) ([]*models.Diploma, error) {
	var items []*models.Diploma
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("year DESC, id DESC").
		Find(&items).Error
	return items, err
}

// GetDiploma gets a diploma by ID
func (r *CVRepository) GetDiploma(ctx context.Context, id uint) (*models.Diploma, error) {
	var item models.Diploma
	if err := r.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateDiploma creates a diploma
func (r *CVRepository) CreateDiploma(ctx context.Context, item *models.Diploma) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// DeleteDiploma deletes a diploma
func (r *CVRepository) DeleteDiploma(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Diploma{}, id).Error
}
