package config

import (
	"context"
	"errors"
	"log"
	"strings"

	"medirelay/internal/adapters/persistence/models"
	"medirelay/internal/pkg/password"

	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db    *gorm.DB
	admin AdminSeedConfig
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB, cfg *Config) *Seeder {
	return &Seeder{db: db, admin: cfg.Admin}
}

// Run executes all seeders
func (s *Seeder) Run(ctx context.Context) error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedAdminUser(ctx); err != nil {
		log.Printf("⚠️ Admin seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedAdminUser creates the bootstrap admin from ADMIN_EMAIL / ADMIN_PASSWORD.
// Nothing happens when they are unset or the email is already taken.
func (s *Seeder) seedAdminUser(ctx context.Context) error {
	email := strings.ToLower(strings.TrimSpace(s.admin.Email))
	if email == "" || s.admin.Password == "" {
		return nil
	}
	if !password.ValidatePassword(s.admin.Password) {
		return errors.New("ADMIN_PASSWORD must be between 8 and 72 characters")
	}

	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil // Admin already exists
	}

	hashedPassword, err := password.Hash(s.admin.Password)
	if err != nil {
		return err
	}

	admin := &models.User{
		Email:         email,
		Password:      hashedPassword,
		Role:          "admin",
		Name:          s.admin.Name,
		IsActive:      true,
		EmailVerified: true,
	}
	if err := db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Admin user created: %s", admin.Email)
	return nil
}
