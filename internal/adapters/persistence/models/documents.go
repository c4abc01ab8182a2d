package models

import "time"

// Document represents documents table.
// (user_id, document_type) is unique: uploading again replaces the row.
type Document struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	UserID             uint       `gorm:"not null;uniqueIndex:idx_document_user_type;index" json:"user_id"`
	DocumentType       string     `gorm:"size:20;not null;uniqueIndex:idx_document_user_type" json:"document_type"`
	FileName           string     `gorm:"size:255;not null" json:"file_name"`
	FilePath           string     `gorm:"size:500;not null;index" json:"file_path"`
	FileSize           int64      `gorm:"not null" json:"file_size"`
	MimeType           string     `gorm:"size:100;not null" json:"mime_type"`
	VerificationStatus string     `gorm:"size:20;not null;default:'pending';index" json:"verification_status"`
	VerifiedBy         *uint      `json:"verified_by"`
	VerifiedAt         *time.Time `json:"verified_at"`
	RejectionReason    string     `gorm:"type:text" json:"rejection_reason"`
	UploadedAt         time.Time  `gorm:"autoCreateTime" json:"uploaded_at"`
	UpdatedAt          time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (Document) TableName() string {
	return "documents"
}

// DocumentResponse DTO
type DocumentResponse struct {
	ID                 uint       `json:"id"`
	UserID             uint       `json:"user_id"`
	UserName           string     `json:"user_name,omitempty"`
	UserEmail          string     `json:"user_email,omitempty"`
	DocumentType       string     `json:"document_type"`
	FileName           string     `json:"file_name"`
	FileURL            string     `json:"file_url"`
	FileSize           int64      `json:"file_size"`
	MimeType           string     `json:"mime_type"`
	VerificationStatus string     `json:"verification_status"`
	VerifiedBy         *uint      `json:"verified_by"`
	VerifiedAt         *time.Time `json:"verified_at"`
	RejectionReason    string     `json:"rejection_reason,omitempty"`
	UploadedAt         time.Time  `json:"uploaded_at"`
}

// ToResponse builds the DTO; urlFor maps the storage key to a public URL
func (d *Document) ToResponse(urlFor func(key string) string) *DocumentResponse {
	resp := &DocumentResponse{
		ID:                 d.ID,
		UserID:             d.UserID,
		DocumentType:       d.DocumentType,
		FileName:           d.FileName,
		FileSize:           d.FileSize,
		MimeType:           d.MimeType,
		VerificationStatus: d.VerificationStatus,
		VerifiedBy:         d.VerifiedBy,
		VerifiedAt:         d.VerifiedAt,
		RejectionReason:    d.RejectionReason,
		UploadedAt:         d.UploadedAt,
	}
	if urlFor != nil {
		resp.FileURL = urlFor(d.FilePath)
	}
	if d.User != nil {
		resp.UserName = d.User.Name
		resp.UserEmail = d.User.Email
	}
	return resp
}

// Notification represents notifications table (append-only except is_read)
type Notification struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"not null;index" json:"user_id"`
	Title     string     `gorm:"size:200;not null" json:"title"`
	Message   string     `gorm:"type:text" json:"message"`
	Type      string     `gorm:"size:50;not null;index" json:"type"`
	RelatedID *uint      `json:"related_id"`
	IsRead    bool       `gorm:"default:false;index" json:"is_read"`
	ReadAt    *time.Time `json:"read_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
