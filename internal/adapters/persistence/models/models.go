package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ============================================================
// Users & Auth
// ============================================================

// User represents users table
type User struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Email         string    `gorm:"uniqueIndex;size:191;not null" json:"email"`
	Password      string    `gorm:"size:255;not null" json:"-"`
	Role          string    `gorm:"size:20;not null;index" json:"role"`
	Name          string    `gorm:"size:150" json:"name"`
	Phone         string    `gorm:"size:30" json:"phone"`
	IsActive      bool      `gorm:"default:true" json:"is_active"`
	EmailVerified bool      `gorm:"default:false" json:"email_verified"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	ReplacementProfile *ReplacementProfile `gorm:"foreignKey:UserID" json:"-"`
	EmployerProfile    *EmployerProfile    `gorm:"foreignKey:UserID" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	ID                 uint                        `json:"id"`
	Email              string                      `json:"email"`
	Role               string                      `json:"role"`
	Name               string                      `json:"name"`
	Phone              string                      `json:"phone"`
	IsActive           bool                        `json:"is_active"`
	EmailVerified      bool                        `json:"email_verified"`
	ProfileStatus      string                      `json:"profile_status,omitempty"`
	ReplacementProfile *ReplacementProfileResponse `json:"replacement_profile,omitempty"`
	EmployerProfile    *EmployerProfileResponse    `json:"employer_profile,omitempty"`
	CreatedAt          time.Time                   `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	resp := &UserResponse{
		ID:            u.ID,
		Email:         u.Email,
		Role:          u.Role,
		Name:          u.Name,
		Phone:         u.Phone,
		IsActive:      u.IsActive,
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
	}
	if u.ReplacementProfile != nil {
		resp.ReplacementProfile = u.ReplacementProfile.ToResponse()
		resp.ProfileStatus = u.ReplacementProfile.ProfileStatus
	}
	if u.EmployerProfile != nil {
		resp.EmployerProfile = u.EmployerProfile.ToResponse()
		resp.ProfileStatus = u.EmployerProfile.ProfileStatus
	}
	return resp
}

// PublicUserResponse is what other marketplace users may see (no contact data)
type PublicUserResponse struct {
	ID                 uint                        `json:"id"`
	Role               string                      `json:"role"`
	Name               string                      `json:"name"`
	ReplacementProfile *ReplacementProfileResponse `json:"replacement_profile,omitempty"`
	EmployerProfile    *EmployerProfileResponse    `json:"employer_profile,omitempty"`
}

func (u *User) ToPublicResponse() *PublicUserResponse {
	full := u.ToResponse()
	return &PublicUserResponse{
		ID:                 u.ID,
		Role:               u.Role,
		Name:               u.Name,
		ReplacementProfile: full.ReplacementProfile,
		EmployerProfile:    full.EmployerProfile,
	}
}

// PasswordReset represents password_resets table
type PasswordReset struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:64;not null;uniqueIndex" json:"-"`
	ExpiresAt time.Time  `gorm:"not null;index" json:"expires_at"`
	UsedAt    *time.Time `json:"used_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (PasswordReset) TableName() string {
	return "password_resets"
}

func (pr *PasswordReset) IsUsed() bool {
	return pr.UsedAt != nil
}

func (pr *PasswordReset) IsExpired() bool {
	return time.Now().After(pr.ExpiresAt)
}

// ============================================================
// Profiles
// ============================================================

// ReplacementProfile represents replacement_profiles table (role=replacement)
type ReplacementProfile struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	UserID          uint           `gorm:"uniqueIndex;not null" json:"user_id"`
	Specialty       string         `gorm:"size:120;index" json:"specialty"`
	Location        string         `gorm:"size:150" json:"location"`
	ExperienceYears int            `json:"experience_years"`
	Bio             string         `gorm:"type:text" json:"bio"`
	Languages       datatypes.JSON `json:"languages"`
	HourlyRate      *float64       `json:"hourly_rate"`
	DailyRate       *float64       `json:"daily_rate"`
	AvailableFrom   *time.Time     `json:"available_from"`
	AvailableTo     *time.Time     `json:"available_to"`
	ProfileStatus   string         `gorm:"size:20;not null;default:'pending';index" json:"profile_status"`
	StatusReason    string         `gorm:"type:text" json:"status_reason"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ReplacementProfile) TableName() string {
	return "replacement_profiles"
}

// ReplacementProfileResponse DTO
type ReplacementProfileResponse struct {
	Specialty       string     `json:"specialty"`
	Location        string     `json:"location"`
	ExperienceYears int        `json:"experience_years"`
	Bio             string     `json:"bio"`
	Languages       []string   `json:"languages"`
	HourlyRate      *float64   `json:"hourly_rate"`
	DailyRate       *float64   `json:"daily_rate"`
	AvailableFrom   *time.Time `json:"available_from"`
	AvailableTo     *time.Time `json:"available_to"`
	ProfileStatus   string     `json:"profile_status"`
	StatusReason    string     `json:"status_reason,omitempty"`
}

func (p *ReplacementProfile) ToResponse() *ReplacementProfileResponse {
	return &ReplacementProfileResponse{
		Specialty:       p.Specialty,
		Location:        p.Location,
		ExperienceYears: p.ExperienceYears,
		Bio:             p.Bio,
		Languages:       p.LanguageList(),
		HourlyRate:      p.HourlyRate,
		DailyRate:       p.DailyRate,
		AvailableFrom:   p.AvailableFrom,
		AvailableTo:     p.AvailableTo,
		ProfileStatus:   p.ProfileStatus,
		StatusReason:    p.StatusReason,
	}
}

// LanguageList decodes the JSON languages column
func (p *ReplacementProfile) LanguageList() []string {
	langs := []string{}
	if len(p.Languages) > 0 {
		_ = json.Unmarshal(p.Languages, &langs)
	}
	return langs
}

// SetLanguages encodes the languages column
func (p *ReplacementProfile) SetLanguages(langs []string) {
	if langs == nil {
		langs = []string{}
	}
	raw, _ := json.Marshal(langs)
	p.Languages = datatypes.JSON(raw)
}

// EmployerProfile represents employer_profiles table (role=employer)
type EmployerProfile struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	UserID           uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	OrganizationName string    `gorm:"size:200" json:"organization_name"`
	OrganizationType string    `gorm:"size:80" json:"organization_type"`
	Address          string    `gorm:"size:255" json:"address"`
	City             string    `gorm:"size:120" json:"city"`
	PostalCode       string    `gorm:"size:10" json:"postal_code"`
	Siret            string    `gorm:"size:14" json:"siret"`
	Description      string    `gorm:"type:text" json:"description"`
	ProfileStatus    string    `gorm:"size:20;not null;default:'pending';index" json:"profile_status"`
	StatusReason     string    `gorm:"type:text" json:"status_reason"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (EmployerProfile) TableName() string {
	return "employer_profiles"
}

// EmployerProfileResponse DTO
type EmployerProfileResponse struct {
	OrganizationName string `json:"organization_name"`
	OrganizationType string `json:"organization_type"`
	Address          string `json:"address"`
	City             string `json:"city"`
	PostalCode       string `json:"postal_code"`
	Siret            string `json:"siret"`
	Description      string `json:"description"`
	ProfileStatus    string `json:"profile_status"`
	StatusReason     string `json:"status_reason,omitempty"`
}

func (p *EmployerProfile) ToResponse() *EmployerProfileResponse {
	return &EmployerProfileResponse{
		OrganizationName: p.OrganizationName,
		OrganizationType: p.OrganizationType,
		Address:          p.Address,
		City:             p.City,
		PostalCode:       p.PostalCode,
		Siret:            p.Siret,
		Description:      p.Description,
		ProfileStatus:    p.ProfileStatus,
		StatusReason:     p.StatusReason,
	}
}

// ============================================================
// CV entries (replacement doctors)
// ============================================================

// Experience represents experiences table
type Experience struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	UserID        uint       `gorm:"index;not null" json:"user_id"`
	Title         string     `gorm:"size:150;not null" json:"title"`
	Establishment string     `gorm:"size:200;not null" json:"establishment"`
	Location      string     `gorm:"size:150" json:"location"`
	StartDate     time.Time  `gorm:"not null" json:"start_date"`
	EndDate       *time.Time `json:"end_date"`
	Description   string     `gorm:"type:text" json:"description"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Experience) TableName() string {
	return "experiences"
}

// Diploma represents diplomas table
type Diploma struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index;not null" json:"user_id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Institution string    `gorm:"size:200;not null" json:"institution"`
	Year        int       `gorm:"not null" json:"year"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Diploma) TableName() string {
	return "diplomas"
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate creates or updates every table
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&PasswordReset{},
		&ReplacementProfile{},
		&EmployerProfile{},
		&Experience{},
		&Diploma{},
		&Mission{},
		&Application{},
		&Proposal{},
		&Document{},
		&Notification{},
	)
}
