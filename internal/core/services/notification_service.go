package services

import (
	"context"
	"time"

	"medirelay/internal/adapters/persistence/models"
	"medirelay/internal/adapters/persistence/repositories"
	"medirelay/internal/core/domain"
	"medirelay/internal/pkg/pagination"

	"gorm.io/gorm"
)

// NotificationService stores in-app notifications read by polling
type NotificationService struct {
	repo *repositories.NotificationRepository
}

// NewNotificationService creates a new notification service
func NewNotificationService(repo *repositories.NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

// NewNotification builds a notification row
func NewNotification(userID uint, t domain.NotificationType, title, message string, relatedID uint) *models.Notification {
	n := &models.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    string(t),
	}
	if relatedID != 0 {
		n.RelatedID = uintPtr(relatedID)
	}
	return n
}

// NotifyTx inserts notifications, inside tx when given
func (s *NotificationService) NotifyTx(ctx context.Context, tx *gorm.DB, items ...*models.Notification) error {
	repo := s.repo
	if tx != nil {
		repo = repo.WithTx(tx)
	}
	return repo.Create(ctx, items...)
}

// List lists a user's notifications
func (s *NotificationService) List(ctx context.Context, userID uint, unreadOnly bool, params *pagination.Params) ([]*models.Notification, int64, error) {
	return s.repo.ListByUser(ctx, userID, unreadOnly, params)
}

// UnreadCount counts a user's unread notifications
func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

// MarkRead marks one of the user's notifications as read
func (s *NotificationService) MarkRead(ctx context.Context, userID, id uint) error {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "Notification not found")
	}
	if n.UserID != userID {
		return forbidden("You cannot modify this notification")
	}
	return s.repo.MarkRead(ctx, id, time.Now())
}

// MarkAllRead marks every notification of the user as read
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID, time.Now())
}
