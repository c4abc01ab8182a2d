package repositories

import (
	"context"
	"time"

	"medirelay/internal/adapters/persistence/models"
	"medirelay/internal/pkg/pagination"

	"gorm.io/gorm"
)

// ProposalFilter narrows proposal listings
type ProposalFilter struct {
	ReplacementID uint
	EmployerID    uint
	MissionID     uint
	Status        string
}

// ProposalRepository handles proposal data access
type ProposalRepository struct {
	db *gorm.DB
}

// NewProposalRepository creates a new proposal repository
func NewProposalRepository(db *gorm.DB) *ProposalRepository {
	return &ProposalRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *ProposalRepository) WithTx(tx *gorm.DB) *ProposalRepository {
	return &ProposalRepository{db: tx}
}

// Create creates a proposal; the unique index rejects duplicates
func (r *ProposalRepository) Create(ctx context.Context, p *models.Proposal) error {
	return r.db.WithContext(ctx).Omit("Mission", "Employer", "Replacement").Create(p).Error
}

// GetByID gets a proposal with its mission and parties
func (r *ProposalRepository) GetByID(ctx context.Context, id uint) (*models.Proposal, error) {
	var p models.Proposal
	err := r.db.WithContext(ctx).
		Preload("Mission").
		Preload("Employer.EmployerProfile").
		Preload("Replacement").
		First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// TransitionStatus moves a proposal from `from` to `to` and stamps responded_at
func (r *ProposalRepository) TransitionStatus(ctx context.Context, id uint, from, to string, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Proposal{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{"status": to, "responded_at": at})
	return result.RowsAffected, result.Error
}

// List lists proposals matching filter, newest first
func (r *ProposalRepository) List(ctx context.Context, filter ProposalFilter, params *pagination.Params) ([]*models.Proposal, int64, error) {
	var items []*models.Proposal
	var total int64

	base := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&models.Proposal{})
		if filter.ReplacementID != 0 {
			q = q.Where("replacement_id = ?", filter.ReplacementID)
		}
		if filter.EmployerID != 0 {
			q = q.Where("employer_id = ?", filter.EmployerID)
		}
		if filter.MissionID != 0 {
			q = q.Where("mission_id = ?", filter.MissionID)
		}
		if filter.Status != "" {
			q = q.Where("status = ?", filter.Status)
		}
		return q
	}

	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := base().
		Preload("Mission").
		Preload("Employer.EmployerProfile").
		Preload("Replacement").
		Order("sent_at DESC, id DESC").
		Scopes(params.Scope()).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}

	return items, total, nil
}
