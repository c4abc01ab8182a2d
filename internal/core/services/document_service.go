package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"medirelay/internal/adapters/persistence/models"
	"medirelay/internal/adapters/persistence/repositories"
	"medirelay/internal/adapters/storage"
	"medirelay/internal/core/domain"
	"medirelay/internal/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// allowedMimeTypes maps accepted MIME types to the stored file extension
var allowedMimeTypes = map[string]string{
	"application/pdf": ".pdf",
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
}

// DocumentService handles document upload and verification
type DocumentService struct {
	db       *gorm.DB
	docs     *repositories.DocumentRepository
	store    storage.Storage
	notifier Notifier
	maxBytes int64
}

// NewDocumentService creates a new document service
func NewDocumentService(
	db *gorm.DB,
	docs *repositories.DocumentRepository,
	store storage.Storage,
	notifier Notifier,
	maxBytes int64,
) *DocumentService {
	return &DocumentService{
		db:       db,
		docs:     docs,
		store:    store,
		notifier: notifier,
		maxBytes: maxBytes,
	}
}

// UploadInput describes an uploaded file
type UploadInput struct {
	DocumentType string
	FileName     string
	ContentType  string
	Size         int64
	Content      io.ReadSeeker
}

// Upload stores the file and replaces any previous document of the same type.
// The old row is deleted and the new one inserted in one transaction; a new
// file whose row could not be written is removed, and the replaced file is
// removed after commit. Either removal may fail and leave an orphan for the
// sweep job.
func (s *DocumentService) Upload(ctx context.Context, userID uint, input *UploadInput) (*models.DocumentResponse, error) {
	docType, ok := domain.ParseDocumentType(input.DocumentType)
	if !ok {
		return nil, domain.NewError(domain.ErrInvalidDocumentType, "Document type must be one of rpps, diploma, cv, cin")
	}
	if input.Size <= 0 {
		return nil, invalid("File is empty")
	}
	if input.Size > s.maxBytes {
		return nil, domain.NewError(domain.ErrFileTooLarge, fmt.Sprintf("File exceeds the %d MB limit", s.maxBytes/(1024*1024)))
	}

	mimeType, err := s.detectType(input)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s/%d/%s%s", docType, userID, uuid.NewString(), allowedMimeTypes[mimeType])
	if err := s.store.Save(ctx, key, mimeType, input.Content, input.Size); err != nil {
		return nil, fmt.Errorf("store document: %w", err)
	}

	doc := &models.Document{
		UserID:             userID,
		DocumentType:       string(docType),
		FileName:           cleanFileName(input.FileName),
		FilePath:           key,
		FileSize:           input.Size,
		MimeType:           mimeType,
		VerificationStatus: string(domain.VerificationPending),
	}

	var previous *models.Document
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		docs := s.docs.WithTx(tx)

		old, err := docs.GetByUserAndType(ctx, userID, string(docType))
		switch {
		case err == nil:
			if err := docs.Delete(ctx, old.ID); err != nil {
				return err
			}
			previous = old
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		return docs.Create(ctx, doc)
	})
	if err != nil {
		if rmErr := s.store.Delete(ctx, key); rmErr != nil {
			log.Printf("⚠️ Failed to remove orphan upload %s: %v", key, rmErr)
		}
		return nil, duplicateOr(err, "A document of this type is being uploaded concurrently")
	}

	if previous != nil {
		if err := s.store.Delete(ctx, previous.FilePath); err != nil {
			log.Printf("⚠️ Failed to remove replaced document %s: %v", previous.FilePath, err)
		}
	}

	log.Printf("📄 Document %d (%s) uploaded by user %d", doc.ID, docType, userID)
	return doc.ToResponse(s.store.URL), nil
}

// detectType checks the declared content type and the sniffed bytes
func (s *DocumentService) detectType(input *UploadInput) (string, error) {
	unsupported := domain.NewError(domain.ErrUnsupportedFile, "File must be a PDF, JPEG, PNG or WebP")

	declared, _, err := mime.ParseMediaType(input.ContentType)
	if err != nil {
		return "", unsupported
	}
	if declared == "image/jpg" {
		declared = "image/jpeg"
	}
	if _, ok := allowedMimeTypes[declared]; !ok {
		return "", unsupported
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(input.Content, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	if _, err := input.Content.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	sniffed, _, _ := mime.ParseMediaType(http.DetectContentType(head[:n]))
	if sniffed != declared {
		return "", unsupported
	}
	return declared, nil
}

func cleanFileName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "document"
	}
	if len(name) > 255 {
		name = name[len(name)-255:]
	}
	return name
}

// List lists the user's documents
func (s *DocumentService) List(ctx context.Context, userID uint) ([]*models.DocumentResponse, error) {
	docs, err := s.docs.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	items := make([]*models.DocumentResponse, len(docs))
	for i, d := range docs {
		items[i] = d.ToResponse(s.store.URL)
	}
	return items, nil
}

// Delete removes the row, then the file; a file removal failure is only logged
func (s *DocumentService) Delete(ctx context.Context, userID, id uint) error {
	doc, err := s.docs.GetByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "Document not found")
	}
	if doc.UserID != userID {
		return forbidden("You cannot delete this document")
	}

	if err := s.docs.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, doc.FilePath); err != nil {
		log.Printf("⚠️ Failed to remove document file %s: %v", doc.FilePath, err)
	}
	return nil
}

// ListForReview lists documents for admins
func (s *DocumentService) ListForReview(ctx context.Context, filter repositories.DocumentFilter, params *pagination.Params) ([]*models.DocumentResponse, int64, error) {
	if filter.Status != "" && !domain.VerificationStatus(filter.Status).Valid() {
		return nil, 0, domain.NewError(domain.ErrInvalidStatus, "Invalid verification status")
	}
	if filter.DocumentType != "" {
		docType, ok := domain.ParseDocumentType(filter.DocumentType)
		if !ok {
			return nil, 0, domain.NewError(domain.ErrInvalidDocumentType, "Invalid document type")
		}
		filter.DocumentType = string(docType)
	}

	docs, total, err := s.docs.List(ctx, filter, params)
	if err != nil {
		return nil, 0, err
	}
	items := make([]*models.DocumentResponse, len(docs))
	for i, d := range docs {
		items[i] = d.ToResponse(s.store.URL)
	}
	return items, total, nil
}

// Verify records an admin decision and notifies the owner
func (s *DocumentService) Verify(ctx context.Context, adminID, id uint, status, reason string) (*models.DocumentResponse, error) {
	target := domain.VerificationStatus(status)
	if target != domain.VerificationApproved && target != domain.VerificationRejected {
		return nil, domain.NewError(domain.ErrInvalidStatus, "Status must be approved or rejected")
	}
	reason = strings.TrimSpace(reason)
	if target == domain.VerificationApproved {
		reason = ""
	}

	doc, err := s.docs.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Document not found")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.docs.WithTx(tx).SetVerification(ctx, id, string(target), adminID, reason, time.Now()); err != nil {
			return err
		}

		notifyType := domain.NotifyDocumentVerified
		title := "Document approved"
		message := fmt.Sprintf("Your %s document was approved.", doc.DocumentType)
		if target == domain.VerificationRejected {
			notifyType = domain.NotifyDocumentRejected
			title = "Document rejected"
			message = fmt.Sprintf("Your %s document was rejected.", doc.DocumentType)
			if reason != "" {
				message += " Reason: " + reason
			}
		}
		return s.notifier.NotifyTx(ctx, tx, NewNotification(doc.UserID, notifyType, title, message, doc.ID))
	})
	if err != nil {
		return nil, err
	}

	log.Printf("🔍 Document %d %s by admin %d", id, target, adminID)

	updated, err := s.docs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return updated.ToResponse(s.store.URL), nil
}

// isDocumentKey reports whether key has the <type>/<userID>/<uuid><ext> shape
// Upload writes. Anything else in the store is left alone.
func isDocumentKey(key string) bool {
	parts := strings.Split(key, "/")
	if len(parts) != 3 {
		return false
	}
	if t, ok := domain.ParseDocumentType(parts[0]); !ok || string(t) != parts[0] {
		return false
	}
	if id, err := strconv.ParseUint(parts[1], 10, 64); err != nil || id == 0 {
		return false
	}
	ext := path.Ext(parts[2])
	known := false
	for _, allowed := range allowedMimeTypes {
		known = known || ext == allowed
	}
	name := strings.TrimSuffix(parts[2], ext)
	if !known || len(name) != 36 {
		return false
	}
	_, err := uuid.Parse(name)
	return err == nil
}

// SweepOrphans deletes stored document files older than minAge that no document row references
func (s *DocumentService) SweepOrphans(ctx context.Context, minAge time.Duration) (int, error) {
	objects, err := s.store.List(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-minAge)
	var candidates []string
	for _, obj := range objects {
		if obj.ModTime.Before(cutoff) && isDocumentKey(obj.Key) {
			candidates = append(candidates, obj.Key)
		}
	}

	removed := 0
	for start := 0; start < len(candidates); start += 500 {
		end := start + 500
		if end > len(candidates) {
			end = len(candidates)
		}
		batch := candidates[start:end]

		refs, err := s.docs.ReferencedPaths(ctx, batch)
		if err != nil {
			return removed, err
		}
		for _, key := range batch {
			if refs[key] {
				continue
			}
			if err := s.store.Delete(ctx, key); err != nil {
				log.Printf("⚠️ Failed to remove orphan %s: %v", key, err)
				continue
			}
			removed++
		}
	}
	return removed, nil
}
