package repositories

import (
	"context"
	"time"

	"medirelay/internal/adapters/persistence/models"
	"medirelay/internal/pkg/pagination"

	"gorm.io/gorm"
)

// NotificationRepository handles notification rows
type NotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *NotificationRepository) WithTx(tx *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: tx}
}

// Create inserts notifications
func (r *NotificationRepository) Create(ctx context.Context, items ...*models.Notification) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(items).Error
}

// ListByUser lists a user's notifications, newest first
func (r *NotificationRepository) ListByUser(ctx context.Context, userID uint, unreadOnly bool, params *pagination.Params) ([]*models.Notification, int64, error) {
	var items []*models.Notification
	var total int64

	base := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ?", userID)
		if unreadOnly {
			q = q.Where("is_read = ?", false)
		}
		return q
	}

	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := base().
		Order("created_at DESC, id DESC").
		Scopes(params.Scope()).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

// CountUnread counts a user's unread notifications
func (r *NotificationRepository) CountUnread(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// GetByID gets a notification by ID
func (r *NotificationRepository) GetByID(ctx context.Context, id uint) (*models.Notification, error) {
	var n models.Notification
	if err := r.db.WithContext(ctx).First(&n, id).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

// MarkRead flips the read flag of one notification
func (r *NotificationRepository) MarkRead(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND is_read = ?", id, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": at}).Error
}

// MarkAllRead flips the read flag of every unread notification of a user
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID uint, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": at})
	return result.RowsAffected, result.Error
}
