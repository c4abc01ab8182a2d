package services

import (
	"context"
	"errors"

	"medirelay/internal/adapters/persistence/models"
	"medirelay/internal/core/domain"

	"gorm.io/gorm"
)

// Note: every workflow service writes its notifications through a Notifier
// bound to the same transaction as the state change.

// Notifier inserts notification rows, inside tx when tx is not nil
type Notifier interface {
	NotifyTx(ctx context.Context, tx *gorm.DB, items ...*models.Notification) error
}

// notFoundOr maps gorm.ErrRecordNotFound to a 404 domain error
func notFoundOr(err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NewError(domain.ErrNotFound, message)
	}
	return err
}

// duplicateOr maps unique index violations to a 409 domain error
func duplicateOr(err error, message string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.NewError(domain.ErrDuplicateEntry, message)
	}
	return err
}

func invalid(message string) error {
	return domain.NewError(domain.ErrInvalidInput, message)
}

func forbidden(message string) error {
	return domain.NewError(domain.ErrForbidden, message)
}

func uintPtr(v uint) *uint {
	return &v
}
