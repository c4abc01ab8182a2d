package repositories

import (
	"context"
	"time"

	"medirelay/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// PasswordResetRepository handles password reset tokens
type PasswordResetRepository struct {
	db *gorm.DB
}

// NewPasswordResetRepository creates a new password reset repository
func NewPasswordResetRepository(db *gorm.DB) *PasswordResetRepository {
	return &PasswordResetRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *PasswordResetRepository) WithTx(tx *gorm.DB) *PasswordResetRepository {
	return &PasswordResetRepository{db: tx}
}

// Create stores a new reset token (hashed)
func (r *PasswordResetRepository) Create(ctx context.Context, reset *models.PasswordReset) error {
	return r.db.WithContext(ctx).Create(reset).Error
}

// GetByTokenHash gets a reset by its token hash
func (r *PasswordResetRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*models.PasswordReset, error) {
	var reset models.PasswordReset
	if err := r.db.WithContext(ctx).Where("token_hash = ?", tokenHash).First(&reset).Error; err != nil {
		return nil, err
	}
	return &reset, nil
}

// MarkUsed consumes a token once; zero rows affected means it was already used
func (r *PasswordResetRepository) MarkUsed(ctx context.Context, id uint, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.PasswordReset{}).
		Where("id = ? AND used_at IS NULL", id).
		Update("used_at", at)
	return result.RowsAffected, result.Error
}

// DeleteStale removes used or expired tokens
func (r *PasswordResetRepository) DeleteStale(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("used_at IS NOT NULL OR expires_at < ?", now).
		Delete(&models.PasswordReset{})
	return result.RowsAffected, result.Error
}
