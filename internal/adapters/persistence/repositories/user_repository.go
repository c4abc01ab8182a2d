package repositories

import (
	"context"
	"strings"

	"medirelay/internal/adapters/persistence/models"
	"medirelay/internal/pkg/pagination"

	"gorm.io/gorm"
)

// userRepository implements UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *userRepository) WithTx(tx *gorm.DB) UserRepository {
	return &userRepository{db: tx}
}

// Create creates a new user
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetByID gets a user by ID together with its role profile
func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Preload("ReplacementProfile").
		Preload("EmployerProfile").
		Where("id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail gets a user by email
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Preload("ReplacementProfile").
		Preload("EmployerProfile").
		Where("email = ?", strings.ToLower(email)).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Update updates the user's own columns (profiles are saved separately)
func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Omit("ReplacementProfile", "EmployerProfile").Save(user).Error
}

// UpdatePassword replaces the password hash
func (r *userRepository) UpdatePassword(ctx context.Context, id uint, hash string) error {
	return r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("password", hash).Error
}

// SetActive toggles the soft-disable flag
func (r *userRepository) SetActive(ctx context.Context, id uint, active bool) error {
	return r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("is_active", active).Error
}

// IsActive reads only the soft-disable flag of a user
func (r *userRepository) IsActive(ctx context.Context, id uint) (bool, error) {
	var user models.User
	err := r.db.WithContext(ctx).Select("id", "is_active").Where("id = ?", id).First(&user).Error
	if err != nil {
		return false, err
	}
	return user.IsActive, nil
}

// List lists users with filters and pagination
func (r *userRepository) List(ctx context.Context, filter UserFilter, params *pagination.Params) ([]*models.User, int64, error) {
	var users []*models.User
	var total int64

	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&models.User{}).Scopes(filter.scopes()...)
	}

	// Count total
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := base().
		Preload("ReplacementProfile").
		Preload("EmployerProfile").
		Order("users.created_at DESC, users.id DESC").
		Scopes(params.Scope()).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// ListAll returns every user ordered by id (export)
func (r *userRepository) ListAll(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	err := r.db.WithContext(ctx).
		Preload("ReplacementProfile").
		Preload("EmployerProfile").
		Order("id ASC").
		Find(&users).Error
	return users, err
}

// ExistsByEmail checks if email exists
func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", strings.ToLower(email)).Count(&count).Error
	return count > 0, err
}

func (f UserFilter) scopes() []func(*gorm.DB) *gorm.DB {
	var scopes []func(*gorm.DB) *gorm.DB

	if f.Role != "" {
		role := f.Role
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("users.role = ?", role)
		})
	}
	if f.IsActive != nil {
		active := *f.IsActive
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("users.is_active = ?", active)
		})
	}
	if f.ProfileStatus != "" {
		status := f.ProfileStatus
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where(
				"(users.id IN (?) OR users.id IN (?))",
				db.Session(&gorm.Session{NewDB: true}).Model(&models.ReplacementProfile{}).Select("user_id").Where("profile_status = ?", status),
				db.Session(&gorm.Session{NewDB: true}).Model(&models.EmployerProfile{}).Select("user_id").Where("profile_status = ?", status),
			)
		})
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("(LOWER(users.email) LIKE ? OR LOWER(users.name) LIKE ?)", like, like)
		})
	}

	return scopes
}
