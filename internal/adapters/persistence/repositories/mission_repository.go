package repositories

import (
	"context"
	"strings"
	"time"

	"medirelay/internal/adapters/persistence/models"
	"medirelay/internal/pkg/pagination"

	"gorm.io/gorm"
)

// MissionFilter is the set of listing predicates; every non-zero field adds
// one parameterized condition and all conditions are ANDed.
type MissionFilter struct {
	Status      string
	Specialty   string
	Location    string
	StartDate   *time.Time
	EndDate     *time.Time
	MinRate     *float64
	MaxRate     *float64
	IsUrgent    *bool
	MissionType string
	Query       string
	EmployerID  uint
}

// Scopes returns the filter as gorm scopes
func (f MissionFilter) Scopes() []func(*gorm.DB) *gorm.DB {
	var scopes []func(*gorm.DB) *gorm.DB
	where := func(cond string, args ...interface{}) {
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where(cond, args...)
		})
	}

	if f.Status != "" {
		where("missions.status = ?", f.Status)
	}
	if s := strings.TrimSpace(f.Specialty); s != "" {
		where("LOWER(missions.specialty_required) = ?", strings.ToLower(s))
	}
	if l := strings.TrimSpace(f.Location); l != "" {
		where("LOWER(missions.location) LIKE ?", "%"+strings.ToLower(l)+"%")
	}
	if f.StartDate != nil {
		where("missions.start_date >= ?", *f.StartDate)
	}
	if f.EndDate != nil {
		where("missions.end_date <= ?", *f.EndDate)
	}
	if f.MinRate != nil {
		where("missions.rate >= ?", *f.MinRate)
	}
	if f.MaxRate != nil {
		where("missions.rate <= ?", *f.MaxRate)
	}
	if f.IsUrgent != nil {
		where("missions.is_urgent = ?", *f.IsUrgent)
	}
	if f.MissionType != "" {
		where("missions.mission_type = ?", f.MissionType)
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		where("(LOWER(missions.title) LIKE ? OR LOWER(missions.description) LIKE ?)", like, like)
	}
	if f.EmployerID != 0 {
		where("missions.employer_id = ?", f.EmployerID)
	}

	return scopes
}

// MissionRepository handles mission data access
type MissionRepository struct {
	db *gorm.DB
}

// NewMissionRepository creates a new mission repository
func NewMissionRepository(db *gorm.DB) *MissionRepository {
	return &MissionRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *MissionRepository) WithTx(tx *gorm.DB) *MissionRepository {
	return &MissionRepository{db: tx}
}

// Create creates a new mission
func (r *MissionRepository) Create(ctx context.Context, mission *models.Mission) error {
	return r.db.WithContext(ctx).Omit("Employer").Create(mission).Error
}

// GetByID gets a mission with its employer
func (r *MissionRepository) GetByID(ctx context.Context, id uint) (*models.Mission, error) {
	var mission models.Mission
	err := r.db.WithContext(ctx).
		Preload("Employer.EmployerProfile").
		First(&mission, id).Error
	if err != nil {
		return nil, err
	}
	return &mission, nil
}

// UpdateDetails writes the editable columns of a mission. Status only moves
// through TransitionStatus.
func (r *MissionRepository) UpdateDetails(ctx context.Context, mission *models.Mission) error {
	return r.db.WithContext(ctx).Model(mission).
		Select("Title", "Description", "SpecialtyRequired", "Location", "StartDate", "EndDate",
			"Rate", "RateUnit", "IsUrgent", "MissionType").
		Updates(mission).Error
}

// Delete removes a mission together with its applications and proposals
func (r *MissionRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("mission_id = ?", id).Delete(&models.Application{}).Error; err != nil {
			return err
		}
		if err := tx.Where("mission_id = ?", id).Delete(&models.Proposal{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Mission{}, id).Error
	})
}

// TransitionStatus moves a mission to `to` only if its status is one of `from`.
// Returns rows affected so callers can detect a lost race.
func (r *MissionRepository) TransitionStatus(ctx context.Context, id uint, from []string, to string) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Mission{}).
		Where("id = ? AND status IN ?", id, from).
		Update("status", to)
	return result.RowsAffected, result.Error
}

// List lists missions matching filter; urgent first, then newest
func (r *MissionRepository) List(ctx context.Context, filter MissionFilter, params *pagination.Params) ([]*models.Mission, int64, error) {
	var missions []*models.Mission
	var total int64

	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&models.Mission{}).Scopes(filter.Scopes()...)
	}

	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := base().
		Preload("Employer.EmployerProfile").
		Order("missions.is_urgent DESC, missions.created_at DESC, missions.id DESC").
		Scopes(params.Scope()).
		Find(&missions).Error
	if err != nil {
		return nil, 0, err
	}

	return missions, total, nil
}

// CountApplications returns non-withdrawn application counts keyed by mission id
func (r *MissionRepository) CountApplications(ctx context.Context, missionIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(missionIDs))
	if len(missionIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		MissionID uint
		Total     int64
	}
	err := r.db.WithContext(ctx).Model(&models.Application{}).
		Select("mission_id, COUNT(*) AS total").
		Where("mission_id IN ? AND status <> ?", missionIDs, "withdrawn").
		Group("mission_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.MissionID] = row.Total
	}
	return counts, nil
}
