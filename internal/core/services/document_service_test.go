package services

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"medirelay/internal/adapters/persistence/models"
	"medirelay/internal/adapters/persistence/repositories"
	"medirelay/internal/core/domain"
	"medirelay/internal/pkg/pagination"

	"github.com/google/uuid"
)

var pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n%%EOF\n")

func pdfUpload(docType string, content []byte) *UploadInput {
	return &UploadInput{
		DocumentType: docType,
		FileName:     "scan.pdf",
		ContentType:  "application/pdf",
		Size:         int64(len(content)),
		Content:      bytes.NewReader(content),
	}
}

func (e *testEnv) fileExists(key string) bool {
	_, err := os.Stat(filepath.Join(e.store.Root(), filepath.FromSlash(key)))
	return err == nil
}

func TestUploadReplacesDocumentOfSameType(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	doctor := env.register(t, "doc@example.com", domain.RoleReplacement)

	first, err := env.documents.Upload(ctx, doctor.ID, pdfUpload("rpps", pdfBytes))
	if err != nil {
		t.Fatalf("first Upload() error = %v", err)
	}
	var firstRow models.Document
	env.db.First(&firstRow, first.ID)

	second, err := env.documents.Upload(ctx, doctor.ID, pdfUpload("rpps", pdfBytes))
	if err != nil {
		t.Fatalf("second Upload() error = %v", err)
	}
	if second.VerificationStatus != "pending" {
		t.Errorf("status = %q, want pending", second.VerificationStatus)
	}

	var count int64
	env.db.Model(&models.Document{}).Where("user_id = ? AND document_type = ?", doctor.ID, "rpps").Count(&count)
	if count != 1 {
		t.Fatalf("rpps rows = %d, want 1", count)
	}

	var secondRow models.Document
	env.db.First(&secondRow, second.ID)
	if env.fileExists(firstRow.FilePath) {
		t.Errorf("replaced file %s still on disk", firstRow.FilePath)
	}
	if !env.fileExists(secondRow.FilePath) {
		t.Errorf("new file %s missing", secondRow.FilePath)
	}

	// Another type is kept alongside
	if _, err := env.documents.Upload(ctx, doctor.ID, pdfUpload("diplome", pdfBytes)); err != nil {
		t.Fatalf("diploma Upload() error = %v", err)
	}
	docs, err := env.documents.List(ctx, doctor.ID)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(docs) != 2 {
		t.Errorf("documents = %d, want 2", len(docs))
	}
}

func TestUploadValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	doctor := env.register(t, "doc@example.com", domain.RoleReplacement)

	tooBig := pdfUpload("cv", pdfBytes)
	tooBig.Size = testMaxBytes + 1

	spoofed := pdfUpload("cv", []byte("#!/bin/sh\necho hi\n"))

	unknownType := pdfUpload("cv", pdfBytes)
	unknownType.ContentType = "application/zip"

	tests := []struct {
		name  string
		input *UploadInput
		want  error
	}{
		{"bad document type", pdfUpload("passport", pdfBytes), domain.ErrInvalidDocumentType},
		{"too large", tooBig, domain.ErrFileTooLarge},
		{"content does not match type", spoofed, domain.ErrUnsupportedFile},
		{"unsupported content type", unknownType, domain.ErrUnsupportedFile},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.documents.Upload(ctx, doctor.ID, tt.input)
			assertKind(t, err, tt.want)
		})
	}

	var count int64
	env.db.Model(&models.Document{}).Count(&count)
	if count != 0 {
		t.Errorf("document rows = %d, want 0", count)
	}
}

func TestVerifyDocument(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.createAdmin(t, "admin@example.com")
	doctor := env.register(t, "doc@example.com", domain.RoleReplacement)

	doc, err := env.documents.Upload(ctx, doctor.ID, pdfUpload("cin", pdfBytes))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	_, err = env.documents.Verify(ctx, admin.ID, doc.ID, "pending", "")
	assertKind(t, err, domain.ErrInvalidStatus)

	rejected, err := env.documents.Verify(ctx, admin.ID, doc.ID, "rejected", "Illisible")
	if err != nil {
		t.Fatalf("Verify(rejected) error = %v", err)
	}
	if rejected.VerificationStatus != "rejected" || rejected.RejectionReason != "Illisible" {
		t.Errorf("rejected = %+v", rejected)
	}
	if rejected.VerifiedBy == nil || *rejected.VerifiedBy != admin.ID {
		t.Errorf("verified_by = %v, want %d", rejected.VerifiedBy, admin.ID)
	}

	approved, err := env.documents.Verify(ctx, admin.ID, doc.ID, "approved", "ignored")
	if err != nil {
		t.Fatalf("Verify(approved) error = %v", err)
	}
	if approved.RejectionReason != "" {
		t.Errorf("rejection reason = %q, want empty", approved.RejectionReason)
	}

	items, total, err := env.documents.ListForReview(ctx, repositories.DocumentFilter{Status: "approved"}, pagination.New(1, 20))
	if err != nil || total != 1 || len(items) != 1 {
		t.Errorf("ListForReview() = %d items, total %d, err %v", len(items), total, err)
	}

	var notes int64
	env.db.Model(&models.Notification{}).Where("user_id = ?", doctor.ID).Count(&notes)
	if notes != 2 {
		t.Errorf("notifications = %d, want 2", notes)
	}

	_, err = env.documents.Verify(ctx, admin.ID, 9999, "approved", "")
	assertKind(t, err, domain.ErrNotFound)
}

func TestDeleteDocumentChecksOwner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.register(t, "owner@example.com", domain.RoleReplacement)
	other := env.register(t, "other@example.com", domain.RoleReplacement)

	doc, err := env.documents.Upload(ctx, owner.ID, pdfUpload("cv", pdfBytes))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	assertKind(t, env.documents.Delete(ctx, other.ID, doc.ID), domain.ErrForbidden)

	if err := env.documents.Delete(ctx, owner.ID, doc.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	assertKind(t, env.documents.Delete(ctx, owner.ID, doc.ID), domain.ErrNotFound)
}

func TestSweepOrphansKeepsReferencedFiles(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	doctor := env.register(t, "doc@example.com", domain.RoleReplacement)

	doc, err := env.documents.Upload(ctx, doctor.ID, pdfUpload("cv", pdfBytes))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	var row models.Document
	env.db.First(&row, doc.ID)

	orphan := "cv/999/" + uuid.NewString() + ".pdf"
	foreign := []string{
		"exports/2026/users.pdf",
		"cv/999/notes.pdf",
		"cv/abc/" + uuid.NewString() + ".pdf",
		"diplome/999/" + uuid.NewString() + ".pdf",
		"cv/999/" + uuid.NewString() + ".exe",
	}
	for _, key := range append([]string{orphan}, foreign...) {
		if err := env.store.Save(ctx, key, "application/pdf", bytes.NewReader(pdfBytes), int64(len(pdfBytes))); err != nil {
			t.Fatalf("Save(%s) error = %v", key, err)
		}
	}

	// Nothing is old enough yet
	removed, err := env.documents.SweepOrphans(ctx, time.Hour)
	if err != nil || removed != 0 {
		t.Fatalf("SweepOrphans(1h) = %d, %v; want 0", removed, err)
	}

	removed, err = env.documents.SweepOrphans(ctx, -time.Minute)
	if err != nil {
		t.Fatalf("SweepOrphans() error = %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if env.fileExists(orphan) {
		t.Error("orphan still on disk")
	}
	if !env.fileExists(row.FilePath) {
		t.Error("referenced file was removed")
	}
	// keys outside the upload layout are never swept
	for _, key := range foreign {
		if !env.fileExists(key) {
			t.Errorf("%s was removed", key)
		}
	}
}
