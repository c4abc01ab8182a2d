package handlers

import (
	"strings"

	"medirelay/internal/adapters/persistence/repositories"
	"medirelay/internal/core/services"
	"medirelay/internal/pkg/pagination"
	"medirelay/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DocumentHandler handles document upload and review endpoints
type DocumentHandler struct {
	documentService *services.DocumentService
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(documentService *services.DocumentService) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
	}
}

// VerifyDocumentRequest represents an admin decision on a document
type VerifyDocumentRequest struct {
	Status          string `json:"status"`
	RejectionReason string `json:"rejectionReason"`
}

// UploadDocument stores a verification document
// @Summary Upload a document
// @Description Replaces any previous document of the same type
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param documentType formData string true "rpps, diploma, cv or cin"
// @Param file formData file true "PDF, JPEG, PNG or WebP"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 413 {object} response.Response
// @Router /documents [post]
func (h *DocumentHandler) UploadDocument(c *fiber.Ctx) error {
	userID, _, ok := currentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "File is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return response.BadRequest(c, "Failed to read uploaded file")
	}
	defer file.Close()

	input := &services.UploadInput{
		DocumentType: strings.TrimSpace(c.FormValue("documentType")),
		FileName:     fileHeader.Filename,
		ContentType:  fileHeader.Header.Get("Content-Type"),
		Size:         fileHeader.Size,
		Content:      file,
	}

	doc, err := h.documentService.Upload(c.Context(), userID, input)
	if err != nil {
		return handleError(c, err, "Failed to upload document")
	}

	return response.Created(c, "Document uploaded successfully", doc)
}

// ListDocuments lists the current user's documents
// @Summary List own documents
// @Tags Documents
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /documents [get]
func (h *DocumentHandler) ListDocuments(c *fiber.Ctx) error {
	userID, _, ok := currentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	docs, err := h.documentService.List(c.Context(), userID)
	if err != nil {
		return handleError(c, err, "Failed to list documents")
	}

	return response.Success(c, "Documents retrieved successfully", docs)
}

// DeleteDocument removes one of the current user's documents
// @Summary Delete a document
// @Tags Documents
// @Produce json
// @Security BearerAuth
// @Param id path int true "Document ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /documents/{id} [delete]
func (h *DocumentHandler) DeleteDocument(c *fiber.Ctx) error {
	userID, _, ok := currentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid document ID")
	}

	if err := h.documentService.Delete(c.Context(), userID, id); err != nil {
		return handleError(c, err, "Failed to delete document")
	}

	return response.Success(c, "Document deleted successfully", nil)
}

// ListForReview lists documents for admins
// @Summary List documents (Admin)
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, approved or rejected"
// @Param type query string false "rpps, diploma, cv or cin"
// @Param userId query int false "Owner ID"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Router /admin/documents [get]
func (h *DocumentHandler) ListForReview(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	filter := repositories.DocumentFilter{
		UserID:       queryUint(c, "userId"),
		DocumentType: c.Query("type"),
		Status:       c.Query("status"),
	}

	docs, total, err := h.documentService.ListForReview(c.Context(), filter, params)
	if err != nil {
		return handleError(c, err, "Failed to list documents")
	}

	return response.Success(c, "Documents retrieved successfully", pagination.NewResponse(docs, params, total))
}

// VerifyDocument approves or rejects a document
// @Summary Verify a document (Admin)
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Document ID"
// @Param body body VerifyDocumentRequest true "Decision"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/documents/{id}/verify [post]
func (h *DocumentHandler) VerifyDocument(c *fiber.Ctx) error {
	adminID, _, ok := currentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid document ID")
	}

	var req VerifyDocumentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	doc, err := h.documentService.Verify(c.Context(), adminID, id, strings.TrimSpace(req.Status), req.RejectionReason)
	if err != nil {
		return handleError(c, err, "Failed to verify document")
	}

	return response.Success(c, "Document verified successfully", doc)
}
