package repositories

import (
	"context"

	"medirelay/internal/adapters/persistence/models"
	"medirelay/internal/pkg/pagination"

	"gorm.io/gorm"
)

// UserRepository defines user repository interface
type UserRepository interface {
	WithTx(tx *gorm.DB) UserRepository
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, id uint, hash string) error
	SetActive(ctx context.Context, id uint, active bool) error
	IsActive(ctx context.Context, id uint) (bool, error)
	List(ctx context.Context, filter UserFilter, params *pagination.Params) ([]*models.User, int64, error)
	ListAll(ctx context.Context) ([]*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// UserFilter narrows admin user listings. Zero values are ignored.
type UserFilter struct {
	Role          string
	ProfileStatus string
	IsActive      *bool
	Query         string
}
