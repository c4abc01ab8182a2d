package repositories

import (
	"context"
	"time"

	"medirelay/internal/adapters/persistence/models"
	"medirelay/internal/pkg/pagination"

	"gorm.io/gorm"
)

// DocumentFilter narrows the admin document queue
type DocumentFilter struct {
	UserID       uint
	DocumentType string
	Status       string
}

// DocumentRepository handles uploaded document metadata
type DocumentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *DocumentRepository) WithTx(tx *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: tx}
}

// Create creates a document row
func (r *DocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	return r.db.WithContext(ctx).Omit("User").Create(doc).Error
}

// GetByID gets a document by ID
func (r *DocumentRepository) GetByID(ctx context.Context, id uint) (*models.Document, error) {
	var doc models.Document
	if err := r.db.WithContext(ctx).Preload("User").First(&doc, id).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

// GetByUserAndType gets the live document of a type for a user
func (r *DocumentRepository) GetByUserAndType(ctx context.Context, userID uint, docType string) (*models.Document, error) {
	var doc models.Document
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND document_type = ?", userID, docType).
		First(&doc).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// Delete deletes a document row
func (r *DocumentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Document{}, id).Error
}

// ListByUser lists a user's documents
func (r *DocumentRepository) ListByUser(ctx context.Context, userID uint) ([]*models.Document, error) {
	var docs []*models.Document
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("document_type ASC").
		Find(&docs).Error
	return docs, err
}

// List lists documents for review, oldest pending first
func (r *DocumentRepository) List(ctx context.Context, filter DocumentFilter, params *pagination.Params) ([]*models.Document, int64, error) {
	var docs []*models.Document
	var total int64

	base := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&models.Document{})
		if filter.UserID != 0 {
			q = q.Where("user_id = ?", filter.UserID)
		}
		if filter.DocumentType != "" {
			q = q.Where("document_type = ?", filter.DocumentType)
		}
		if filter.Status != "" {
			q = q.Where("verification_status = ?", filter.Status)
		}
		return q
	}

	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := base().
		Preload("User").
		Order("uploaded_at ASC, id ASC").
		Scopes(params.Scope()).
		Find(&docs).Error
	if err != nil {
		return nil, 0, err
	}

	return docs, total, nil
}

// SetVerification records an admin decision
func (r *DocumentRepository) SetVerification(ctx context.Context, id uint, status string, verifierID uint, reason string, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Document{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"verification_status": status,
			"verified_by":         verifierID,
			"verified_at":         at,
			"rejection_reason":    reason,
		})
	return result.RowsAffected, result.Error
}

// ReferencedPaths returns the subset of keys that a document row points to
func (r *DocumentRepository) ReferencedPaths(ctx context.Context, keys []string) (map[string]bool, error) {
	refs := make(map[string]bool, len(keys))
	if len(keys) == 0 {
		return refs, nil
	}

	var paths []string
	err := r.db.WithContext(ctx).Model(&models.Document{}).
		Where("file_path IN ?", keys).
		Pluck("file_path", &paths).Error
	if err != nil {
		return nil, err
	}

	for _, p := range paths {
		refs[p] = true
	}
	return refs, nil
}
