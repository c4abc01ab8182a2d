package services

import (
	"context"
	"regexp"
	"strings"
	"time"

	"medirelay/internal/adapters/persistence/models"
	"medirelay/internal/adapters/persistence/repositories"
	"medirelay/internal/adapters/storage"
	"medirelay/internal/core/domain"
	"medirelay/internal/pkg/pagination"

	"gorm.io/gorm"
)

var siretPattern = regexp.MustCompile(`^[0-9]{14}$`)

// UserService handles profile and CV operations
type UserService struct {
	db       *gorm.DB
	userRepo repositories.UserRepository
	profiles *repositories.ProfileRepository
	cv       *repositories.CVRepository
	docs     *repositories.DocumentRepository
	store    storage.Storage
}

// NewUserService creates a new user service
func NewUserService(
	db *gorm.DB,
	userRepo repositories.UserRepository,
	profiles *repositories.ProfileRepository,
	cv *repositories.CVRepository,
	docs *repositories.DocumentRepository,
	store storage.Storage,
) *UserService {
	return &UserService{
		db:       db,
		userRepo: userRepo,
		profiles: profiles,
		cv:       cv,
		docs:     docs,
		store:    store,
	}
}

// ProfileView is the full profile of the current user
type ProfileView struct {
	User        *models.UserResponse       `json:"user"`
	Experiences []*models.Experience       `json:"experiences,omitempty"`
	Diplomas    []*models.Diploma          `json:"diplomas,omitempty"`
	Documents   []*models.DocumentResponse `json:"documents"`
}

// UpdateProfileInput carries editable fields; nil means unchanged
type UpdateProfileInput struct {
	Name  *string
	Phone *string

	// replacement
	Specialty       *string
	Location        *string
	ExperienceYears *int
	Bio             *string
	Languages       []string
	HourlyRate      *float64
	DailyRate       *float64
	AvailableFrom   *time.Time
	AvailableTo     *time.Time

	// employer
	OrganizationName *string
	OrganizationType *string
	Address          *string
	City             *string
	PostalCode       *string
	Siret            *string
	Description      *string
}

// GetProfile returns the user, its role profile, CV entries and documents
func (s *UserService) GetProfile(ctx context.Context, userID uint) (*ProfileView, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "User not found")
	}

	view := &ProfileView{User: user.ToResponse(), Documents: []*models.DocumentResponse{}}

	if user.Role == string(domain.RoleReplacement) {
		if view.Experiences, err = s.cv.ListExperiences(ctx, userID); err != nil {
			return nil, err
		}
		if view.Diplomas, err = s.cv.ListDiplomas(ctx, userID); err != nil {
			return nil, err
		}
	}

	docs, err := s.docs.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, d := range docs {
		view.Documents = append(view.Documents, d.ToResponse(s.store.URL))
	}

	return view, nil
}

// UpdateProfile updates the user and its role profile in one transaction
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, input *UpdateProfileInput) (*models.UserResponse, error) {
	if err := validateProfileInput(input); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "User not found")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if input.Name != nil || input.Phone != nil {
			setString(&user.Name, input.Name)
			setString(&user.Phone, input.Phone)
			if err := s.userRepo.WithTx(tx).Update(ctx, user); err != nil {
				return err
			}
		}

		profiles := s.profiles.WithTx(tx)
		switch {
		case user.ReplacementProfile != nil:
			p := user.ReplacementProfile
			setString(&p.Specialty, input.Specialty)
			setString(&p.Location, input.Location)
			setString(&p.Bio, input.Bio)
			if input.ExperienceYears != nil {
				p.ExperienceYears = *input.ExperienceYears
			}
			if input.Languages != nil {
				p.SetLanguages(cleanList(input.Languages))
			}
			if input.HourlyRate != nil {
				p.HourlyRate = input.HourlyRate
			}
			if input.DailyRate != nil {
				p.DailyRate = input.DailyRate
			}
			if input.AvailableFrom != nil {
				p.AvailableFrom = input.AvailableFrom
			}
			if input.AvailableTo != nil {
				p.AvailableTo = input.AvailableTo
			}
			if p.AvailableFrom != nil && p.AvailableTo != nil && p.AvailableTo.Before(*p.AvailableFrom) {
				return invalid("Availability end must be after its start")
			}
			return profiles.SaveReplacement(ctx, p)
		case user.EmployerProfile != nil:
			p := user.EmployerProfile
			setString(&p.OrganizationName, input.OrganizationName)
			setString(&p.OrganizationType, input.OrganizationType)
			setString(&p.Address, input.Address)
			setString(&p.City, input.City)
			setString(&p.PostalCode, input.PostalCode)
			setString(&p.Siret, input.Siret)
			setString(&p.Description, input.Description)
			return profiles.SaveEmployer(ctx, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return updated.ToResponse(), nil
}

func validateProfileInput(input *UpdateProfileInput) error {
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return invalid("Name cannot be empty")
	}
	if input.ExperienceYears != nil && (*input.ExperienceYears < 0 || *input.ExperienceYears > 70) {
		return invalid("Experience years must be between 0 and 70")
	}
	if input.HourlyRate != nil && *input.HourlyRate < 0 {
		return invalid("Hourly rate cannot be negative")
	}
	if input.DailyRate != nil && *input.DailyRate < 0 {
		return invalid("Daily rate cannot be negative")
	}
	if input.Siret != nil {
		siret := strings.ReplaceAll(strings.TrimSpace(*input.Siret), " ", "")
		if siret != "" && !siretPattern.MatchString(siret) {
			return invalid("SIRET must be 14 digits")
		}
		input.Siret = &siret
	}
	return nil
}

// PublicProfile returns the public card of a doctor or employer
func (s *UserService) PublicProfile(ctx context.Context, id uint) (*models.PublicUserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "User not found")
	}
	if !user.IsActive || !domain.Role(user.Role).HasProfile() {
		return nil, domain.NewError(domain.ErrNotFound, "User not found")
	}
	return user.ToPublicResponse(), nil
}

// SearchReplacements lists approved doctors for employers
func (s *UserService) SearchReplacements(ctx context.Context, search repositories.ReplacementSearch, params *pagination.Params) ([]*models.PublicUserResponse, int64, error) {
	users, total, err := s.profiles.SearchReplacements(ctx, search, params)
	if err != nil {
		return nil, 0, err
	}
	items := make([]*models.PublicUserResponse, len(users))
	for i, u := range users {
		items[i] = u.ToPublicResponse()
	}
	return items, total, nil
}

// ============================================================
// Experiences
// ============================================================

// ExperienceInput carries experience fields; nil means absent
type ExperienceInput struct {
	Title         *string
	Establishment *string
	Location      *string
	StartDate     *time.Time
	EndDate       *time.Time
	Description   *string
}

// ListExperiences lists the user's experiences
func (s *UserService) ListExperiences(ctx context.Context, userID uint) ([]*models.Experience, error) {
	return s.cv.ListExperiences(ctx, userID)
}

// CreateExperience adds an experience
func (s *UserService) CreateExperience(ctx context.Context, userID uint, input *ExperienceInput) (*models.Experience, error) {
	item := &models.Experience{UserID: userID}
	if err := applyExperience(item, input, true); err != nil {
		return nil, err
	}
	if err := s.cv.CreateExperience(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// ReplaceExperience overwrites every field (PUT)
func (s *UserService) ReplaceExperience(ctx context.Context, userID, id uint, input *ExperienceInput) (*models.Experience, error) {
	item, err := s.ownedExperience(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	replaced := &models.Experience{ID: item.ID, UserID: item.UserID, CreatedAt: item.CreatedAt}
	if err := applyExperience(replaced, input, true); err != nil {
		return nil, err
	}
	if err := s.cv.SaveExperience(ctx, replaced); err != nil {
		return nil, err
	}
	return replaced, nil
}

// PatchExperience updates only the provided fields (PATCH)
func (s *UserService) PatchExperience(ctx context.Context, userID, id uint, input *ExperienceInput) (*models.Experience, error) {
	item, err := s.ownedExperience(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := applyExperience(item, input, false); err != nil {
		return nil, err
	}
	if err := s.cv.SaveExperience(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteExperience deletes one of the user's experiences
func (s *UserService) DeleteExperience(ctx context.Context, userID, id uint) error {
	if _, err := s.ownedExperience(ctx, userID, id); err != nil {
		return err
	}
	return s.cv.DeleteExperience(ctx, id)
}

func (s *UserService) ownedExperience(ctx context.Context, userID, id uint) (*models.Experience, error) {
	item, err := s.cv.GetExperience(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Experience not found")
	}
	if item.UserID != userID {
		return nil, forbidden("You cannot modify this experience")
	}
	return item, nil
}

// applyExperience copies input onto item; full requires every mandatory field
func applyExperience(item *models.Experience, input *ExperienceInput, full bool) error {
	if full {
		if input.Title == nil || strings.TrimSpace(*input.Title) == "" {
			return invalid("Title is required")
		}
		if input.Establishment == nil || strings.TrimSpace(*input.Establishment) == "" {
			return invalid("Establishment is required")
		}
		if input.StartDate == nil {
			return invalid("Start date is required")
		}
		item.Location = ""
		item.Description = ""
		item.EndDate = nil
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return invalid("Title cannot be empty")
		}
		item.Title = strings.TrimSpace(*input.Title)
	}
	if input.Establishment != nil {
		if strings.TrimSpace(*input.Establishment) == "" {
			return invalid("Establishment cannot be empty")
		}
		item.Establishment = strings.TrimSpace(*input.Establishment)
	}
	setString(&item.Location, input.Location)
	setString(&item.Description, input.Description)
	if input.StartDate != nil {
		item.StartDate = *input.StartDate
	}
	if input.EndDate != nil {
		item.EndDate = input.EndDate
	}

	if item.EndDate != nil && item.EndDate.Before(item.StartDate) {
		return invalid("End date must be after start date")
	}
	return nil
}

// ============================================================
// Diplomas
// ============================================================

// DiplomaInput carries diploma fields
type DiplomaInput struct {
	Title       string
	Institution string
	Year        int
	Description string
}

// ListDiplomas lists the user's diplomas
func (s *UserService) ListDiplomas(ctx context.Context, userID uint) ([]*models.Diploma, error) {
	return s.cv.ListDiplomas(ctx, userID)
}

// CreateDiploma adds a diploma
func (s *UserService) CreateDiploma(ctx context.Context, userID uint, input *DiplomaInput) (*models.Diploma, error) {
	title := strings.TrimSpace(input.Title)
	institution := strings.TrimSpace(input.Institution)
	if title == "" {
		return nil, invalid("Title is required")
	}
	if institution == "" {
		return nil, invalid("Institution is required")
	}
	if input.Year < 1900 || input.Year > time.Now().Year()+1 {
		return nil, invalid("Year is invalid")
	}

	item := &models.Diploma{
		UserID:      userID,
		Title:       title,
		Institution: institution,
		Year:        input.Year,
		Description: strings.TrimSpace(input.Description),
	}
	if err := s.cv.CreateDiploma(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteDiploma deletes one of the user's diplomas
func (s *UserService) DeleteDiploma(ctx context.Context, userID, id uint) error {
	item, err := s.cv.GetDiploma(ctx, id)
	if err != nil {
		return notFoundOr(err, "Diploma not found")
	}
	if item.UserID != userID {
		return forbidden("You cannot delete this diploma")
	}
	return s.cv.DeleteDiploma(ctx, id)
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if v := strings.TrimSpace(item); v != "" {
			out = append(out, v)
		}
	}
	return out
}
