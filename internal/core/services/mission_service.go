package services

import (
	"context"
	"log"
	"slices"
	"strings"
	"time"

	"medirelay/internal/adapters/persistence/models"
	"medirelay/internal/adapters/persistence/repositories"
	"medirelay/internal/core/domain"
	"medirelay/internal/pkg/pagination"

	"gorm.io/gorm"
)

// Rate units accepted on missions
var rateUnits = map[string]bool{"hour": true, "day": true, "mission": true}

// Statuses an employer may set on update, keyed by target with the allowed
// sources. open and in_progress are only reached by creation and acceptance.
var missionTransitions = map[domain.MissionStatus][]string{
	domain.MissionCancelled: {string(domain.MissionOpen), string(domain.MissionInProgress)},
	domain.MissionCompleted: {string(domain.MissionInProgress)},
}

// MissionService handles mission postings
type MissionService struct {
	db       *gorm.DB
	missions *repositories.MissionRepository
}

// NewMissionService creates a new mission service
func NewMissionService(db *gorm.DB, missions *repositories.MissionRepository) *MissionService {
	return &MissionService{db: db, missions: missions}
}

// MissionInput carries every mission field (create and full replace)
type MissionInput struct {
	Title             string
	Description       string
	SpecialtyRequired string
	Location          string
	StartDate         *time.Time
	EndDate           *time.Time
	Rate              *float64
	RateUnit          string
	IsUrgent          bool
	MissionType       string
	Status            string
}

func (in *MissionInput) normalize() error {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.SpecialtyRequired = strings.TrimSpace(in.SpecialtyRequired)
	in.Location = strings.TrimSpace(in.Location)
	in.RateUnit = strings.ToLower(strings.TrimSpace(in.RateUnit))
	in.MissionType = strings.TrimSpace(in.MissionType)

	switch {
	case in.Title == "":
		return invalid("Title is required")
	case in.Description == "":
		return invalid("Description is required")
	case in.SpecialtyRequired == "":
		return invalid("Specialty is required")
	case in.Location == "":
		return invalid("Location is required")
	}
	if in.Rate != nil && *in.Rate < 0 {
		return invalid("Rate cannot be negative")
	}
	if in.RateUnit != "" && !rateUnits[in.RateUnit] {
		return invalid("Rate unit must be hour, day or mission")
	}
	if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
		return invalid("End date must be after start date")
	}
	if in.Status != "" && !domain.MissionStatus(in.Status).Valid() {
		return domain.NewError(domain.ErrInvalidStatus, "Invalid mission status")
	}
	return nil
}

// Create creates an open mission owned by employerID
func (s *MissionService) Create(ctx context.Context, employerID uint, input *MissionInput) (*models.MissionResponse, error) {
	if err := input.normalize(); err != nil {
		return nil, err
	}

	mission := &models.Mission{
		EmployerID:        employerID,
		Title:             input.Title,
		Description:       input.Description,
		SpecialtyRequired: input.SpecialtyRequired,
		Location:          input.Location,
		StartDate:         input.StartDate,
		EndDate:           input.EndDate,
		Rate:              input.Rate,
		RateUnit:          input.RateUnit,
		Status:            string(domain.MissionOpen),
		IsUrgent:          input.IsUrgent,
		MissionType:       input.MissionType,
	}
	if err := s.missions.Create(ctx, mission); err != nil {
		return nil, err
	}

	log.Printf("📋 Mission %d created by employer %d", mission.ID, employerID)
	return s.Get(ctx, mission.ID)
}

// Get returns one mission
func (s *MissionService) Get(ctx context.Context, id uint) (*models.MissionResponse, error) {
	mission, err := s.missions.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Mission not found")
	}
	return mission.ToResponse(), nil
}

// List lists missions matching filter
func (s *MissionService) List(ctx context.Context, filter repositories.MissionFilter, params *pagination.Params) ([]*models.MissionResponse, int64, error) {
	if filter.Status != "" && !domain.MissionStatus(filter.Status).Valid() {
		return nil, 0, domain.NewError(domain.ErrInvalidStatus, "Invalid mission status")
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return nil, 0, invalid("endDate must not be before startDate")
	}

	missions, total, err := s.missions.List(ctx, filter, params)
	if err != nil {
		return nil, 0, err
	}

	items := make([]*models.MissionResponse, len(missions))
	for i, m := range missions {
		items[i] = m.ToResponse()
	}
	return items, total, nil
}

// ListMine lists an employer's missions with application counts
func (s *MissionService) ListMine(ctx context.Context, employerID uint, filter repositories.MissionFilter, params *pagination.Params) ([]*models.MissionResponse, int64, error) {
	filter.EmployerID = employerID
	items, total, err := s.List(ctx, filter, params)
	if err != nil {
		return nil, 0, err
	}

	ids := make([]uint, len(items))
	for i, m := range items {
		ids[i] = m.ID
	}
	counts, err := s.missions.CountApplications(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for _, m := range items {
		n := counts[m.ID]
		m.ApplicationCount = &n
	}
	return items, total, nil
}

// Update replaces every field of a mission owned by employerID
func (s *MissionService) Update(ctx context.Context, employerID, id uint, input *MissionInput) (*models.MissionResponse, error) {
	mission, err := s.owned(ctx, employerID, id)
	if err != nil {
		return nil, err
	}
	if err := input.normalize(); err != nil {
		return nil, err
	}

	mission.Title = input.Title
	mission.Description = input.Description
	mission.SpecialtyRequired = input.SpecialtyRequired
	mission.Location = input.Location
	mission.StartDate = input.StartDate
	mission.EndDate = input.EndDate
	mission.Rate = input.Rate
	mission.RateUnit = input.RateUnit
	mission.IsUrgent = input.IsUrgent
	mission.MissionType = input.MissionType

	target, from, err := statusChange(mission.Status, input.Status)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		missions := s.missions.WithTx(tx)
		if err := missions.UpdateDetails(ctx, mission); err != nil {
			return err
		}
		if target == "" {
			return nil
		}
		n, err := missions.TransitionStatus(ctx, id, from, target)
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.NewError(domain.ErrInvalidTransition, "Mission status changed, reload and retry")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if target != "" {
		log.Printf("📋 Mission %d moved %s -> %s by employer %d", id, mission.Status, target, employerID)
	}
	return s.Get(ctx, id)
}

// statusChange resolves a requested mission status against the current one.
// An empty or unchanged status is a no-op.
func statusChange(current, requested string) (string, []string, error) {
	if requested == "" || requested == current {
		return "", nil, nil
	}
	from, ok := missionTransitions[domain.MissionStatus(requested)]
	if !ok || !slices.Contains(from, current) {
		return "", nil, domain.NewError(domain.ErrInvalidTransition,
			"Mission cannot move from "+current+" to "+requested)
	}
	return requested, from, nil
}

// Delete removes a mission owned by employerID
func (s *MissionService) Delete(ctx context.Context, employerID, id uint) error {
	if _, err := s.owned(ctx, employerID, id); err != nil {
		return err
	}
	if err := s.missions.Delete(ctx, id); err != nil {
		return err
	}
	log.Printf("🗑️ Mission %d deleted by employer %d", id, employerID)
	return nil
}

// owned loads a mission: 404 when missing, 403 when owned by someone else
func (s *MissionService) owned(ctx context.Context, employerID, id uint) (*models.Mission, error) {
	mission, err := s.missions.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Mission not found")
	}
	if mission.EmployerID != employerID {
		return nil, forbidden("You are not the owner of this mission")
	}
	return mission, nil
}
