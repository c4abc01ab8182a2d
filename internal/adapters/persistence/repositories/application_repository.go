package repositories

import (
	"context"
	"time"

	"medirelay/internal/adapters/persistence/models"
	"medirelay/internal/pkg/pagination"

	"gorm.io/gorm"
)

// ApplicationFilter narrows application listings
type ApplicationFilter struct {
	ReplacementID uint
	EmployerID    uint
	MissionID     uint
	Status        string
}

// ApplicationRepository handles application data access
type ApplicationRepository struct {
	db *gorm.DB
}

// NewApplicationRepository creates a new application repository
func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *ApplicationRepository) WithTx(tx *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{db: tx}
}

// Create creates a new application; the unique index rejects duplicates
func (r *ApplicationRepository) Create(ctx context.Context, app *models.Application) error {
	return r.db.WithContext(ctx).Omit("Mission", "Replacement").Create(app).Error
}

// GetByID gets an application with its mission and applicant
func (r *ApplicationRepository) GetByID(ctx context.Context, id uint) (*models.Application, error) {
	var app models.Application
	err := r.db.WithContext(ctx).
		Preload("Mission").
		Preload("Replacement.ReplacementProfile").
		First(&app, id).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// FindByMissionAndReplacement gets the (mission, doctor) application if any
func (r *ApplicationRepository) FindByMissionAndReplacement(ctx context.Context, missionID, replacementID uint) (*models.Application, error) {
	var app models.Application
	err := r.db.WithContext(ctx).
		Where("mission_id = ? AND replacement_id = ?", missionID, replacementID).
		First(&app).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// Reopen turns a withdrawn application back into a pending one
func (r *ApplicationRepository) Reopen(ctx context.Context, id uint, coverLetter string, proposedRate *float64) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Application{}).
		Where("id = ? AND status = ?", id, "withdrawn").
		Updates(map[string]interface{}{
			"status":        "pending",
			"cover_letter":  coverLetter,
			"proposed_rate": proposedRate,
			"applied_at":    time.Now(),
			"responded_at":  nil,
		})
	return result.RowsAffected, result.Error
}

// TransitionStatus moves an application from `from` to `to` and stamps responded_at.
// Returns rows affected; zero means the application was no longer in `from`.
func (r *ApplicationRepository) TransitionStatus(ctx context.Context, id uint, from, to string, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Application{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{"status": to, "responded_at": at})
	return result.RowsAffected, result.Error
}

// RejectPendingSiblings rejects every other pending application of the mission
// and returns the rows it rejected.
func (r *ApplicationRepository) RejectPendingSiblings(ctx context.Context, missionID, acceptedID uint, at time.Time) ([]*models.Application, error) {
	var siblings []*models.Application
	err := r.db.WithContext(ctx).
		Where("mission_id = ? AND id <> ? AND status = ?", missionID, acceptedID, "pending").
		Order("id ASC").
		Find(&siblings).Error
	if err != nil {
		return nil, err
	}
	if len(siblings) == 0 {
		return siblings, nil
	}

	ids := make([]uint, len(siblings))
	for i, s := range siblings {
		ids[i] = s.ID
	}

	err = r.db.WithContext(ctx).Model(&models.Application{}).
		Where("id IN ? AND status = ?", ids, "pending").
		Updates(map[string]interface{}{"status": "rejected", "responded_at": at}).Error
	if err != nil {
		return nil, err
	}

	for _, s := range siblings {
		s.Status = "rejected"
		s.RespondedAt = &at
	}
	return siblings, nil
}

// List lists applications matching filter, newest first
func (r *ApplicationRepository) List(ctx context.Context, filter ApplicationFilter, params *pagination.Params) ([]*models.Application, int64, error) {
	var apps []*models.Application
	var total int64

	base := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&models.Application{})
		if filter.ReplacementID != 0 {
			q = q.Where("applications.replacement_id = ?", filter.ReplacementID)
		}
		if filter.EmployerID != 0 {
			q = q.Where("applications.mission_id IN (?)",
				r.db.Session(&gorm.Session{NewDB: true}).Model(&models.Mission{}).Select("id").Where("employer_id = ?", filter.EmployerID))
		}
		if filter.MissionID != 0 {
			q = q.Where("applications.mission_id = ?", filter.MissionID)
		}
		if filter.Status != "" {
			q = q.Where("applications.status = ?", filter.Status)
		}
		return q
	}

	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := base().
		Preload("Mission").
		Preload("Replacement.ReplacementProfile").
		Order("applications.applied_at DESC, applications.id DESC").
		Scopes(params.Scope()).
		Find(&apps).Error
	if err != nil {
		return nil, 0, err
	}

	return apps, total, nil
}

// CountByStatus returns the number of applications of a mission per status
func (r *ApplicationRepository) CountByStatus(ctx context.Context, missionID uint) (map[string]int64, error) {
	var rows []struct {
		Status string
		Total  int64
	}
	err := r.db.WithContext(ctx).Model(&models.Application{}).
		Select("status, COUNT(*) AS total").
		Where("mission_id = ?", missionID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}
